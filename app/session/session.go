// Package session keeps the single active operator session of the terminal
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/shopfloor/app/persistence"
)

// Key is the storage key for the active session
const Key = "employee_session"

// Workstations is the list of preset workstations offered by the login form
var Workstations = []string{
	"Station 1 - Assembly",
	"Station 2 - Packaging",
	"Station 3 - Quality Control",
	"Station 4 - Preparation",
	"Station 5 - Finishing",
}

// SampleEmployees are employee numbers offered as quick-fill buttons on the login form
var SampleEmployees = []string{"1001", "1002", "1003"}

// login errors
var (
	ErrEmployeeRequired    = errors.New("employee number is required")
	ErrWorkstationRequired = errors.New("workstation is required")
)

// EmployeeSession is the operator identity and workstation
type EmployeeSession struct {
	EmployeeNumber string
	Workstation    string
	LoginTime      time.Time
}

type jsonSession struct {
	EmployeeNumber string `json:"employeeNumber"`
	Workstation    string `json:"workstation"`
	LoginTime      int64  `json:"loginTime"` // unix ms
}

// MarshalJSON writes session with login time in unix milliseconds
func (s EmployeeSession) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonSession{EmployeeNumber: s.EmployeeNumber, Workstation: s.Workstation,
		LoginTime: s.LoginTime.UnixMilli()})
}

// UnmarshalJSON reads session with login time in unix milliseconds
func (s *EmployeeSession) UnmarshalJSON(data []byte) error {
	var js jsonSession
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	*s = EmployeeSession{EmployeeNumber: js.EmployeeNumber, Workstation: js.Workstation,
		LoginTime: time.UnixMilli(js.LoginTime)}
	return nil
}

// ShortWorkstation returns workstation part before the first "-", i.e. "Station 1" for "Station 1 - Assembly"
func (s EmployeeSession) ShortWorkstation() string {
	return ShortWorkstation(s.Workstation)
}

// ShortWorkstation returns part of the name before the first "-"
func ShortWorkstation(ws string) string {
	before, _, _ := strings.Cut(ws, "-")
	return strings.TrimSpace(before)
}

// Store holds the active session and persists it
type Store struct {
	storage persistence.Storage
	now     func() time.Time

	mu      sync.RWMutex
	current *EmployeeSession
}

// NewStore makes session store without active session. Call Load to restore persisted one.
func NewStore(storage persistence.Storage) *Store {
	return &Store{storage: storage, now: time.Now}
}

// Load restores persisted session. Missing or malformed data means no session.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil

	data, err := s.storage.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			log.Printf("[WARN] can't read session, %v", err)
		}
		return
	}
	var sess EmployeeSession
	if err := json.Unmarshal(data, &sess); err != nil {
		log.Printf("[WARN] session data is corrupted, ignored, %v", err)
		return
	}
	if sess.EmployeeNumber == "" || sess.Workstation == "" {
		log.Printf("[WARN] incomplete session ignored, %+v", sess)
		return
	}
	s.current = &sess
	log.Printf("[INFO] session restored, employee %s at %s", sess.EmployeeNumber, sess.Workstation)
}

// Current returns the active session
func (s *Store) Current() (EmployeeSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return EmployeeSession{}, false
	}
	return *s.current, true
}

// Login starts a new session, replacing the active one. Both values trimmed and required.
func (s *Store) Login(ctx context.Context, employeeNumber, workstation string) (EmployeeSession, error) {
	employeeNumber, workstation = strings.TrimSpace(employeeNumber), strings.TrimSpace(workstation)
	if employeeNumber == "" {
		return EmployeeSession{}, ErrEmployeeRequired
	}
	if workstation == "" {
		return EmployeeSession{}, ErrWorkstationRequired
	}

	sess := EmployeeSession{EmployeeNumber: employeeNumber, Workstation: workstation, LoginTime: s.now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &sess

	data, err := json.Marshal(sess)
	if err != nil {
		log.Printf("[WARN] can't marshal session, %v", err)
		return sess, nil
	}
	if err := s.storage.Set(ctx, Key, data); err != nil {
		log.Printf("[WARN] can't save session, %v", err)
	}
	log.Printf("[INFO] employee %s logged in at %s", sess.EmployeeNumber, sess.Workstation)
	return sess, nil
}

// Logout clears the active session
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		log.Printf("[INFO] employee %s logged out", s.current.EmployeeNumber)
	}
	s.current = nil
	if err := s.storage.Remove(ctx, Key); err != nil {
		log.Printf("[WARN] can't remove session, %v", err)
	}
}

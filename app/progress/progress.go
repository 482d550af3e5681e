// Package progress keeps paused work-order progress records, one per order number.
// Records persisted as a json array under a single storage key and survive restarts.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/shopfloor/app/catalog"
	"github.com/umputun/shopfloor/app/persistence"
)

// Key is the storage key for pending records
const Key = "work_orders_progress"

// OrderProgress is a snapshot of how far an operator has gotten on a given order
type OrderProgress struct {
	OrderNumber      string
	ProductName      string
	CurrentStepIndex int
	CompletedSteps   []int // step ids, not indexes
	Timestamp        time.Time
	EmployeeNumber   string
	Workstation      string
}

type jsonProgress struct {
	OrderNumber      string `json:"orderNumber"`
	ProductName      string `json:"productName"`
	CurrentStepIndex int    `json:"currentStepIndex"`
	CompletedSteps   []int  `json:"completedSteps"`
	Timestamp        int64  `json:"timestamp"` // unix ms
	EmployeeNumber   string `json:"employeeNumber,omitempty"`
	Workstation      string `json:"workstation,omitempty"`
}

// MarshalJSON writes record with timestamp in unix milliseconds
func (p OrderProgress) MarshalJSON() ([]byte, error) {
	completed := p.CompletedSteps
	if completed == nil {
		completed = []int{}
	}
	return json.Marshal(jsonProgress{
		OrderNumber:      p.OrderNumber,
		ProductName:      p.ProductName,
		CurrentStepIndex: p.CurrentStepIndex,
		CompletedSteps:   completed,
		Timestamp:        p.Timestamp.UnixMilli(),
		EmployeeNumber:   p.EmployeeNumber,
		Workstation:      p.Workstation,
	})
}

// UnmarshalJSON reads record with timestamp in unix milliseconds
func (p *OrderProgress) UnmarshalJSON(data []byte) error {
	var jp jsonProgress
	if err := json.Unmarshal(data, &jp); err != nil {
		return err
	}
	*p = OrderProgress{
		OrderNumber:      jp.OrderNumber,
		ProductName:      jp.ProductName,
		CurrentStepIndex: jp.CurrentStepIndex,
		CompletedSteps:   jp.CompletedSteps,
		Timestamp:        time.UnixMilli(jp.Timestamp),
		EmployeeNumber:   jp.EmployeeNumber,
		Workstation:      jp.Workstation,
	}
	return nil
}

// IsCompleted checks if step id marked as done
func (p OrderProgress) IsCompleted(stepID int) bool {
	return slices.Contains(p.CompletedSteps, stepID)
}

// Reconcile fits the record to the order's steps. Index clamped into range, ids not in the order
// dropped, the rest sorted ascending without duplicates. Product name refreshed from the order.
func (p OrderProgress) Reconcile(wo catalog.WorkOrder) OrderProgress {
	res := p
	res.ProductName = wo.ProductName
	if res.CurrentStepIndex < 0 {
		res.CurrentStepIndex = 0
	}
	if n := len(wo.Steps); res.CurrentStepIndex > n-1 {
		res.CurrentStepIndex = max(n-1, 0)
	}

	res.CompletedSteps = make([]int, 0, len(p.CompletedSteps))
	for _, id := range p.CompletedSteps {
		if wo.HasStep(id) && !slices.Contains(res.CompletedSteps, id) {
			res.CompletedSteps = append(res.CompletedSteps, id)
		}
	}
	sort.Ints(res.CompletedSteps)
	return res
}

// SortRecent returns a copy of records ordered by timestamp, most recent first
func SortRecent(records []OrderProgress) []OrderProgress {
	res := make([]OrderProgress, len(records))
	copy(res, records)
	sort.SliceStable(res, func(i, j int) bool { return res[i].Timestamp.After(res[j].Timestamp) })
	return res
}

// Store is a keyed collection of pending records. In-memory list is authoritative,
// storage written after each mutation on best-effort basis.
type Store struct {
	storage persistence.Storage

	mu      sync.RWMutex
	records []OrderProgress
}

// New makes empty store backed by storage. Call Load to read persisted records.
func New(storage persistence.Storage) *Store {
	return &Store{storage: storage}
}

// Load reads records from storage. Missing, unreadable or malformed data results in empty store.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil

	data, err := s.storage.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			log.Printf("[WARN] can't read pending orders, %v", err)
		}
		return
	}

	var records []OrderProgress
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("[WARN] pending orders data is corrupted, ignored, %v", err)
		return
	}

	// keep the first record for each order number
	for _, r := range records {
		if r.OrderNumber == "" || s.index(r.OrderNumber) >= 0 {
			log.Printf("[DEBUG] skip pending record %q", r.OrderNumber)
			continue
		}
		s.records = append(s.records, r)
	}
	log.Printf("[DEBUG] loaded %d pending orders", len(s.records))
}

// Upsert replaces record with the same order number in place, or appends it
func (s *Store) Upsert(ctx context.Context, p OrderProgress) {
	p.CompletedSteps = slices.Clone(p.CompletedSteps)

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(p.OrderNumber); i >= 0 {
		s.records[i] = p
	} else {
		s.records = append(s.records, p)
	}
	s.save(ctx)
}

// Remove deletes record for the order number. Returns false and writes nothing if absent.
func (s *Store) Remove(ctx context.Context, orderNumber string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(orderNumber)
	if i < 0 {
		return false
	}
	s.records = slices.Delete(s.records, i, i+1)
	s.save(ctx)
	return true
}

// Find returns record for the order number
func (s *Store) Find(orderNumber string) (OrderProgress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(orderNumber)
	if i < 0 {
		return OrderProgress{}, false
	}
	res := s.records[i]
	res.CompletedSteps = slices.Clone(res.CompletedSteps)
	return res, true
}

// List returns copy of all records in insertion order
func (s *Store) List() []OrderProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]OrderProgress, len(s.records))
	for i, r := range s.records {
		r.CompletedSteps = slices.Clone(r.CompletedSteps)
		res[i] = r
	}
	return res
}

// Len returns number of pending records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) index(orderNumber string) int {
	return slices.IndexFunc(s.records, func(r OrderProgress) bool { return r.OrderNumber == orderNumber })
}

// save writes all records, must be called under lock
func (s *Store) save(ctx context.Context) {
	records := s.records
	if records == nil {
		records = []OrderProgress{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		log.Printf("[WARN] can't marshal pending orders, %v", err)
		return
	}
	if err := s.storage.Set(ctx, Key, data); err != nil {
		log.Printf("[WARN] can't save pending orders, %v", err)
	}
}

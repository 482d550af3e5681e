package web

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/shopfloor/app/catalog"
	"github.com/umputun/shopfloor/app/health"
	"github.com/umputun/shopfloor/app/progress"
	"github.com/umputun/shopfloor/app/session"
)

// APIStateResponse is the JSON response for /api/v1/state
type APIStateResponse struct {
	Session      *session.EmployeeSession `json:"session"`
	Active       *APIRun                  `json:"active"`
	Confirmation *APIConfirmation         `json:"confirmation"`
	Pending      int                      `json:"pending"`
	Timestamp    time.Time                `json:"timestamp"`
}

// APIRun represents the foreground order in JSON API response
type APIRun struct {
	OrderNumber      string       `json:"order_number"`
	ProductName      string       `json:"product_name"`
	CurrentStepIndex int          `json:"current_step_index"`
	CurrentStep      catalog.Step `json:"current_step"`
	CompletedSteps   []int        `json:"completed_steps"`
	TotalSteps       int          `json:"total_steps"`
	ProgressPercent  int          `json:"progress_percent"`
	AllComplete      bool         `json:"all_complete"`
	Resumed          bool         `json:"resumed"`
	StartedAt        time.Time    `json:"started_at,omitzero"`
}

// APIConfirmation represents pending confirmation in JSON API response
type APIConfirmation struct {
	Action      string `json:"action"`
	OrderNumber string `json:"order_number,omitempty"`
	Message     string `json:"message"`
}

// handleAPIState returns session, active order and pending confirmation
func (s *Server) handleAPIState(w http.ResponseWriter, _ *http.Request) {
	resp := APIStateResponse{Pending: len(s.terminal.Pending()), Timestamp: s.now()}
	if sess, ok := s.terminal.Session(); ok {
		resp.Session = &sess
	}
	if run, ok := s.terminal.Active(); ok {
		resp.Active = &APIRun{
			OrderNumber:      run.Order.OrderNumber,
			ProductName:      run.Order.ProductName,
			CurrentStepIndex: run.CurrentStepIndex,
			CurrentStep:      run.Step(),
			CompletedSteps:   run.CompletedSteps,
			TotalSteps:       len(run.Order.Steps),
			ProgressPercent:  run.ProgressPercent(),
			AllComplete:      run.AllComplete(),
			Resumed:          run.Resumed,
			StartedAt:        run.StartedAt,
		}
	}
	if c, ok := s.terminal.Confirmation(); ok {
		resp.Confirmation = &APIConfirmation{Action: c.Action.String(), OrderNumber: c.OrderNumber, Message: c.Message()}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleAPIPending returns pending records, most recent first, in the stored format
func (s *Server) handleAPIPending(w http.ResponseWriter, _ *http.Request) {
	records := s.terminal.Pending()
	if records == nil {
		records = []progress.OrderProgress{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

// handleAPICatalog returns all work orders
func (s *Server) handleAPICatalog(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.terminal.Catalog().List())
}

// handleAPIHealth returns host report, 503 if the host is degraded
func (s *Server) handleAPIHealth(w http.ResponseWriter, r *http.Request) {
	rep := s.health.Check(r.Context())
	status := http.StatusOK
	if rep.Status != health.StatusOK {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, rep)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[WARN] failed to encode JSON error response: %v", err)
	}
}

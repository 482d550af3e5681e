package workorder

import (
	"time"

	"github.com/umputun/shopfloor/app/enums"
	"github.com/umputun/shopfloor/app/progress"
)

//go:generate moq -out mocks/event_handler.go -pkg mocks -skip-ensure -fmt goimports . EventHandler

// EventHandler gets notified about terminal events. Called synchronously, after the state change,
// outside of terminal lock.
type EventHandler interface {
	OnScanned(orderNumber string, result enums.ScanResult)
	OnStarted(run Run)
	OnResumed(run Run)
	OnPaused(rec progress.OrderProgress)
	OnFinished(c Completion)
	OnDeleted(orderNumber string)
}

// Completion describes a finished order
type Completion struct {
	OrderNumber    string    `json:"orderNumber"`
	ProductName    string    `json:"productName"`
	CompletedSteps int       `json:"completedSteps"`
	TotalSteps     int       `json:"totalSteps"`
	EmployeeNumber string    `json:"employeeNumber"`
	Workstation    string    `json:"workstation"`
	FinishedAt     time.Time `json:"finishedAt"`
}

// Handlers sends each event to all handlers in order
type Handlers []EventHandler

// OnScanned implements EventHandler
func (h Handlers) OnScanned(orderNumber string, result enums.ScanResult) {
	for _, e := range h {
		e.OnScanned(orderNumber, result)
	}
}

// OnStarted implements EventHandler
func (h Handlers) OnStarted(run Run) {
	for _, e := range h {
		e.OnStarted(run)
	}
}

// OnResumed implements EventHandler
func (h Handlers) OnResumed(run Run) {
	for _, e := range h {
		e.OnResumed(run)
	}
}

// OnPaused implements EventHandler
func (h Handlers) OnPaused(rec progress.OrderProgress) {
	for _, e := range h {
		e.OnPaused(rec)
	}
}

// OnFinished implements EventHandler
func (h Handlers) OnFinished(c Completion) {
	for _, e := range h {
		e.OnFinished(c)
	}
}

// OnDeleted implements EventHandler
func (h Handlers) OnDeleted(orderNumber string) {
	for _, e := range h {
		e.OnDeleted(orderNumber)
	}
}

// LogHandler writes events to the log
type LogHandler struct {
	Logf func(format string, args ...any)
}

// OnScanned implements EventHandler
func (l LogHandler) OnScanned(orderNumber string, result enums.ScanResult) {
	l.Logf("[INFO] order %q scanned, %s", orderNumber, result)
}

// OnStarted implements EventHandler
func (l LogHandler) OnStarted(run Run) {
	l.Logf("[INFO] order %s started, %d steps", run.Order.OrderNumber, len(run.Order.Steps))
}

// OnResumed implements EventHandler
func (l LogHandler) OnResumed(run Run) {
	l.Logf("[INFO] order %s resumed at step %d, completed %v", run.Order.OrderNumber, run.CurrentStepIndex+1,
		run.CompletedSteps)
}

// OnPaused implements EventHandler
func (l LogHandler) OnPaused(rec progress.OrderProgress) {
	l.Logf("[INFO] order %s paused at step %d, completed %v", rec.OrderNumber, rec.CurrentStepIndex+1, rec.CompletedSteps)
}

// OnFinished implements EventHandler
func (l LogHandler) OnFinished(c Completion) {
	l.Logf("[INFO] order %s finished by %s, %d of %d steps completed", c.OrderNumber, c.EmployeeNumber,
		c.CompletedSteps, c.TotalSteps)
}

// OnDeleted implements EventHandler
func (l LogHandler) OnDeleted(orderNumber string) {
	l.Logf("[INFO] order %s removed from pending", orderNumber)
}

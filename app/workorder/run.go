package workorder

import (
	"slices"
	"time"

	"github.com/umputun/shopfloor/app/catalog"
	"github.com/umputun/shopfloor/app/progress"
)

// Run is the foreground order the operator works on. Changes stay in memory until paused.
type Run struct {
	Order            catalog.WorkOrder
	CurrentStepIndex int
	CompletedSteps   []int // step ids, ascending
	StartedAt        time.Time
	Resumed          bool
}

// Step returns the current step
func (r Run) Step() catalog.Step {
	if r.CurrentStepIndex < 0 || r.CurrentStepIndex >= len(r.Order.Steps) {
		return catalog.Step{}
	}
	return r.Order.Steps[r.CurrentStepIndex]
}

// IsLastStep checks if current step is the last one of the order
func (r Run) IsLastStep() bool {
	return r.CurrentStepIndex == len(r.Order.Steps)-1
}

// IsCompleted checks if step id marked as done
func (r Run) IsCompleted(stepID int) bool {
	_, found := slices.BinarySearch(r.CompletedSteps, stepID)
	return found
}

// AllComplete checks if every step of the order is marked as done
func (r Run) AllComplete() bool {
	for _, s := range r.Order.Steps {
		if !r.IsCompleted(s.ID) {
			return false
		}
	}
	return len(r.Order.Steps) > 0
}

// ProgressPercent returns share of completed steps, 0-100
func (r Run) ProgressPercent() int {
	if len(r.Order.Steps) == 0 {
		return 0
	}
	return len(r.CompletedSteps) * 100 / len(r.Order.Steps)
}

// Snapshot makes progress record from the run
func (r Run) Snapshot(ts time.Time, employee, workstation string) progress.OrderProgress {
	return progress.OrderProgress{
		OrderNumber:      r.Order.OrderNumber,
		ProductName:      r.Order.ProductName,
		CurrentStepIndex: r.CurrentStepIndex,
		CompletedSteps:   slices.Clone(r.CompletedSteps),
		Timestamp:        ts,
		EmployeeNumber:   employee,
		Workstation:      workstation,
	}
}

// markCurrent adds current step id to completed ones, keeps ids sorted
func (r *Run) markCurrent() {
	id := r.Step().ID
	pos, found := slices.BinarySearch(r.CompletedSteps, id)
	if found {
		return
	}
	r.CompletedSteps = slices.Insert(r.CompletedSteps, pos, id)
}

func (r Run) clone() Run {
	r.CompletedSteps = slices.Clone(r.CompletedSteps)
	r.Order.Steps = slices.Clone(r.Order.Steps)
	return r
}

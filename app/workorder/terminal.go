// Package workorder implements the operator terminal: order resolution by scanned number,
// step navigation of the foreground order, pausing into pending records and confirmation
// of destructive actions.
package workorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/shopfloor/app/catalog"
	"github.com/umputun/shopfloor/app/enums"
	"github.com/umputun/shopfloor/app/progress"
	"github.com/umputun/shopfloor/app/session"
)

// DefaultScanDelay is the simulated scanner latency
const DefaultScanDelay = 500 * time.Millisecond

// terminal errors, all of them leave the state unchanged
var (
	ErrNoSession        = errors.New("no active session")
	ErrOrderActive      = errors.New("another order is in progress")
	ErrNoActiveOrder    = errors.New("no active order")
	ErrEmptyOrderNumber = errors.New("order number is required")
	ErrUnknownOrder     = errors.New("order not found")
	ErrNotPending       = errors.New("order is not pending")
	ErrStepOutOfRange   = errors.New("step out of range")
	ErrNotOnLastStep    = errors.New("last step is not reached")
	ErrNoConfirmation   = errors.New("nothing to confirm")
)

// Params for the terminal. Catalog, Progress and Session are required.
type Params struct {
	Catalog   *catalog.Catalog
	Progress  *progress.Store
	Session   *session.Store
	Events    EventHandler
	ScanDelay time.Duration
}

// Terminal is the application state of a single operator station: the catalog, pending records,
// active session, the foreground order and the pending confirmation. Safe for concurrent use.
type Terminal struct {
	catalog   *catalog.Catalog
	progress  *progress.Store
	sessions  *session.Store
	events    EventHandler
	scanDelay time.Duration
	now       func() time.Time

	mu      sync.Mutex
	run     *Run
	confirm *Confirmation
}

// New makes idle terminal
func New(p Params) *Terminal {
	res := &Terminal{
		catalog:   p.Catalog,
		progress:  p.Progress,
		sessions:  p.Session,
		events:    p.Events,
		scanDelay: p.ScanDelay,
		now:       time.Now,
	}
	if res.events == nil {
		res.events = Handlers{}
	}
	return res
}

// Login starts operator session, replacing the current one
func (t *Terminal) Login(ctx context.Context, employeeNumber, workstation string) (session.EmployeeSession, error) {
	return t.sessions.Login(ctx, employeeNumber, workstation)
}

// Session returns the active operator session
func (t *Terminal) Session() (session.EmployeeSession, bool) {
	return t.sessions.Current()
}

// Catalog returns catalog used by the terminal
func (t *Terminal) Catalog() *catalog.Catalog {
	return t.catalog
}

// Pending returns pending records, most recent first
func (t *Terminal) Pending() []progress.OrderProgress {
	return progress.SortRecent(t.progress.List())
}

// Active returns copy of the foreground order
func (t *Terminal) Active() (Run, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.run == nil {
		return Run{}, false
	}
	return t.run.clone(), true
}

// Confirmation returns action waiting for confirmation
func (t *Terminal) Confirmation() (Confirmation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.confirm == nil {
		return Confirmation{Action: enums.ConfirmNone}, false
	}
	return *t.confirm, true
}

// Scan resolves the scanned order number after the scanner delay. Unknown order returns
// ErrUnknownOrder and changes nothing. A pending record for the order is not resumed right away,
// the terminal asks for resume confirmation and returns ScanResultResume. Otherwise a new run
// is started from the first step.
func (t *Terminal) Scan(ctx context.Context, orderNumber string) (enums.ScanResult, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if err := t.checkScan(orderNumber); err != nil {
		return enums.ScanResultUnknown, err
	}

	if t.scanDelay > 0 {
		select {
		case <-time.After(t.scanDelay):
		case <-ctx.Done():
			return enums.ScanResultUnknown, ctx.Err()
		}
	}

	wo, ok := t.catalog.Find(orderNumber)
	if !ok {
		t.events.OnScanned(orderNumber, enums.ScanResultUnknown)
		return enums.ScanResultUnknown, fmt.Errorf("%w: %s", ErrUnknownOrder, orderNumber)
	}

	t.mu.Lock()
	// state may change during the delay
	if err := t.checkIdle(); err != nil {
		t.mu.Unlock()
		return enums.ScanResultUnknown, err
	}

	if _, pending := t.progress.Find(orderNumber); pending {
		t.confirm = &Confirmation{Action: enums.ConfirmResume, OrderNumber: orderNumber}
		t.mu.Unlock()
		t.events.OnScanned(orderNumber, enums.ScanResultResume)
		return enums.ScanResultResume, nil
	}

	t.run = &Run{Order: wo, CurrentStepIndex: 0, CompletedSteps: []int{}, StartedAt: t.now()}
	t.confirm = nil
	run := t.run.clone()
	t.mu.Unlock()

	t.events.OnScanned(orderNumber, enums.ScanResultStarted)
	t.events.OnStarted(run)
	return enums.ScanResultStarted, nil
}

// Continue resumes pending order without confirmation
func (t *Terminal) Continue(orderNumber string) (Run, error) {
	t.mu.Lock()
	if err := t.checkIdle(); err != nil {
		t.mu.Unlock()
		return Run{}, err
	}
	run, err := t.resume(orderNumber)
	t.mu.Unlock()
	if err != nil {
		return Run{}, err
	}
	t.events.OnResumed(run)
	return run, nil
}

// Advance marks current step as completed and moves to the next one. On the last step
// only the mark is set.
func (t *Terminal) Advance() (Run, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.run == nil {
		return Run{}, ErrNoActiveOrder
	}
	t.run.markCurrent()
	if !t.run.IsLastStep() {
		t.run.CurrentStepIndex++
	}
	return t.run.clone(), nil
}

// Retreat moves to the previous step, stays on the first one. Completion marks are not changed.
func (t *Terminal) Retreat() (Run, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.run == nil {
		return Run{}, ErrNoActiveOrder
	}
	if t.run.CurrentStepIndex > 0 {
		t.run.CurrentStepIndex--
	}
	if !t.run.IsLastStep() {
		t.dropConfirm(enums.ConfirmFinish)
	}
	return t.run.clone(), nil
}

// JumpTo moves to any step by its index
func (t *Terminal) JumpTo(index int) (Run, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.run == nil {
		return Run{}, ErrNoActiveOrder
	}
	if index < 0 || index >= len(t.run.Order.Steps) {
		return Run{}, fmt.Errorf("%w: %d of %d", ErrStepOutOfRange, index, len(t.run.Order.Steps))
	}
	t.run.CurrentStepIndex = index
	if !t.run.IsLastStep() {
		t.dropConfirm(enums.ConfirmFinish)
	}
	return t.run.clone(), nil
}

// Pause saves the foreground order into pending records and returns the terminal to idle
func (t *Terminal) Pause(ctx context.Context) (progress.OrderProgress, error) {
	t.mu.Lock()
	if t.run == nil {
		t.mu.Unlock()
		return progress.OrderProgress{}, ErrNoActiveOrder
	}
	sess, _ := t.sessions.Current()
	rec := t.run.Snapshot(t.now(), sess.EmployeeNumber, sess.Workstation)
	t.progress.Upsert(ctx, rec)
	t.run = nil
	t.dropConfirm(enums.ConfirmFinish)
	t.mu.Unlock()

	t.events.OnPaused(rec)
	return rec, nil
}

// Exit leaves the foreground order without saving. Pending records are not touched.
func (t *Terminal) Exit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.run == nil {
		return ErrNoActiveOrder
	}
	log.Printf("[DEBUG] leave order %s without saving", t.run.Order.OrderNumber)
	t.run = nil
	t.dropConfirm(enums.ConfirmFinish)
	return nil
}

// RequestFinish asks for finish confirmation. Allowed once the last step is reached,
// completion of all steps is not required.
func (t *Terminal) RequestFinish() (Confirmation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.run == nil {
		return Confirmation{}, ErrNoActiveOrder
	}
	if !t.run.IsLastStep() {
		return Confirmation{}, ErrNotOnLastStep
	}
	t.confirm = &Confirmation{Action: enums.ConfirmFinish, OrderNumber: t.run.Order.OrderNumber}
	return *t.confirm, nil
}

// RequestDelete asks for confirmation to remove the order from pending
func (t *Terminal) RequestDelete(orderNumber string) (Confirmation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.progress.Find(orderNumber); !ok {
		return Confirmation{}, fmt.Errorf("%w: %s", ErrNotPending, orderNumber)
	}
	t.confirm = &Confirmation{Action: enums.ConfirmDelete, OrderNumber: orderNumber}
	return *t.confirm, nil
}

// RequestLogout asks for logout confirmation
func (t *Terminal) RequestLogout() (Confirmation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions.Current(); !ok {
		return Confirmation{}, ErrNoSession
	}
	t.confirm = &Confirmation{Action: enums.ConfirmLogout}
	return *t.confirm, nil
}

// Cancel declines the pending confirmation, nothing else changes. Returns false if nothing was pending.
func (t *Terminal) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.confirm == nil {
		return false
	}
	log.Printf("[DEBUG] %s declined", t.confirm.Action)
	t.confirm = nil
	return true
}

// Confirm executes the pending confirmation and clears it
func (t *Terminal) Confirm(ctx context.Context) (Confirmation, error) {
	t.mu.Lock()
	if t.confirm == nil {
		t.mu.Unlock()
		return Confirmation{}, ErrNoConfirmation
	}
	c := *t.confirm
	t.confirm = nil

	var fire func()
	var err error
	switch c.Action {
	case enums.ConfirmFinish:
		fire, err = t.finish(ctx, c.OrderNumber)
	case enums.ConfirmDelete:
		if t.progress.Remove(ctx, c.OrderNumber) {
			fire = func() { t.events.OnDeleted(c.OrderNumber) }
		}
	case enums.ConfirmLogout:
		if t.run != nil {
			log.Printf("[INFO] order %s discarded on logout", t.run.Order.OrderNumber)
		}
		t.run = nil
		t.sessions.Logout(ctx)
	case enums.ConfirmResume:
		var run Run
		if err = t.checkIdle(); err == nil {
			if run, err = t.resume(c.OrderNumber); err == nil {
				fire = func() { t.events.OnResumed(run) }
			}
		}
	default:
		err = fmt.Errorf("unexpected confirmation %q", c.Action)
	}
	t.mu.Unlock()

	if err != nil {
		return c, err
	}
	if fire != nil {
		fire()
	}
	return c, nil
}

// finish removes pending record of the foreground order and reports completion, must be called under lock
func (t *Terminal) finish(ctx context.Context, orderNumber string) (func(), error) {
	if t.run == nil || t.run.Order.OrderNumber != orderNumber {
		return nil, ErrNoActiveOrder
	}
	if !t.run.IsLastStep() {
		return nil, ErrNotOnLastStep
	}
	t.progress.Remove(ctx, orderNumber)
	sess, _ := t.sessions.Current()
	c := Completion{
		OrderNumber:    orderNumber,
		ProductName:    t.run.Order.ProductName,
		CompletedSteps: len(t.run.CompletedSteps),
		TotalSteps:     len(t.run.Order.Steps),
		EmployeeNumber: sess.EmployeeNumber,
		Workstation:    sess.Workstation,
		FinishedAt:     t.now(),
	}
	t.run = nil
	return func() { t.events.OnFinished(c) }, nil
}

// resume makes the pending record foreground, must be called under lock
func (t *Terminal) resume(orderNumber string) (Run, error) {
	rec, ok := t.progress.Find(orderNumber)
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotPending, orderNumber)
	}
	wo, ok := t.catalog.Find(orderNumber)
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrUnknownOrder, orderNumber)
	}
	rec = rec.Reconcile(wo)
	t.run = &Run{Order: wo, CurrentStepIndex: rec.CurrentStepIndex, CompletedSteps: rec.CompletedSteps,
		StartedAt: rec.Timestamp, Resumed: true}
	t.confirm = nil
	return t.run.clone(), nil
}

func (t *Terminal) checkScan(orderNumber string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkIdle(); err != nil {
		return err
	}
	if orderNumber == "" {
		return ErrEmptyOrderNumber
	}
	return nil
}

// checkIdle verifies session is active and no order in progress, must be called under lock
func (t *Terminal) checkIdle() error {
	if _, ok := t.sessions.Current(); !ok {
		return ErrNoSession
	}
	if t.run != nil {
		return fmt.Errorf("%w: %s", ErrOrderActive, t.run.Order.OrderNumber)
	}
	return nil
}

// dropConfirm clears pending confirmation of given kind, must be called under lock
func (t *Terminal) dropConfirm(action enums.Confirm) {
	if t.confirm != nil && t.confirm.Action == action {
		t.confirm = nil
	}
}

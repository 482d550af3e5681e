package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/shopfloor/app/enums"
	"github.com/umputun/shopfloor/app/session"
	"github.com/umputun/shopfloor/app/workorder"
)

const (
	flashCookie       = "flash"
	customWorkstation = "custom"
)

// handleIndex renders the screen for the current terminal state: login form, scanner with
// pending list or the steps of the active order
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := TemplateData{
		Theme:        s.getTheme(r),
		BaseURL:      s.baseURL,
		Version:      s.version,
		CurrentYear:  s.now().Year(),
		Flash:        s.popFlash(w, r),
		Workstations: session.Workstations,
		Employees:    session.SampleEmployees,
	}

	if sess, ok := s.terminal.Session(); ok {
		data.Session = &sess
	}
	if run, ok := s.terminal.Active(); ok {
		data.Run = &run
	}
	if c, ok := s.terminal.Confirmation(); ok {
		data.Confirm = &c
	}
	if data.Session != nil && data.Run == nil {
		data.Pending = s.pendingItems()
		data.SampleOrders = sampleOrders(s.terminal.Catalog().Numbers())
	}

	s.render(w, "base.html", "base", data)
}

// sampleOrders returns up to 5 catalog numbers for the scanner quick-fill buttons
func sampleOrders(numbers []string) []string {
	if len(numbers) > 5 {
		return numbers[:5]
	}
	return numbers
}

// pendingItems returns pending records, most recent first, with catalog info
func (s *Server) pendingItems() []PendingItem {
	records := s.terminal.Pending()
	res := make([]PendingItem, 0, len(records))
	for _, rec := range records {
		item := PendingItem{OrderProgress: rec}
		if wo, ok := s.terminal.Catalog().Find(rec.OrderNumber); ok {
			item.Known = true
			item.TotalSteps = len(wo.Steps)
		}
		res = append(res, item)
	}
	return res
}

// handleLogin starts operator session. Workstation is either one of presets or a custom value.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	workstation := r.FormValue("workstation")
	if workstation == customWorkstation {
		workstation = r.FormValue("workstation_custom")
	}
	if _, err := s.terminal.Login(r.Context(), r.FormValue("employee"), workstation); err != nil {
		s.redirect(w, r, s.errorMessage(err))
		return
	}
	s.redirect(w, r, "")
}

// handleLogout asks for logout confirmation
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := s.terminal.RequestLogout(); err != nil {
		s.redirect(w, r, s.errorMessage(err))
		return
	}
	s.redirect(w, r, "")
}

// handleScan resolves the scanned order number. Pending order leads to resume confirmation.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	number := strings.TrimSpace(r.FormValue("order"))
	res, err := s.terminal.Scan(r.Context(), number)
	if errors.Is(err, workorder.ErrUnknownOrder) {
		s.redirect(w, r, s.notFoundMessage(number))
		return
	}
	if err != nil {
		s.redirect(w, r, s.errorMessage(err))
		return
	}
	log.Printf("[DEBUG] scan %s, %s", number, res)
	s.redirect(w, r, "")
}

// handleConfirm executes pending confirmation
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	c, err := s.terminal.Confirm(r.Context())
	if err != nil {
		s.redirect(w, r, s.errorMessage(err))
		return
	}
	switch c.Action {
	case enums.ConfirmFinish:
		s.redirect(w, r, fmt.Sprintf("Order %s completed", c.OrderNumber))
	case enums.ConfirmDelete:
		s.redirect(w, r, fmt.Sprintf("Order %s removed from pending", c.OrderNumber))
	default:
		s.redirect(w, r, "")
	}
}

// handleCancel declines pending confirmation
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.terminal.Cancel()
	s.redirect(w, r, "")
}

// handleContinue resumes order from the pending list
func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	_, err := s.terminal.Continue(number)
	if errors.Is(err, workorder.ErrUnknownOrder) {
		s.redirect(w, r, s.notFoundMessage(number))
		return
	}
	s.redirect(w, r, s.errorMessage(err))
}

// handleDelete asks for confirmation to remove order from the pending list
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := s.terminal.RequestDelete(r.PathValue("number")); err != nil {
		s.redirect(w, r, s.errorMessage(err))
		return
	}
	s.redirect(w, r, "")
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	_, err := s.terminal.Advance()
	s.redirect(w, r, s.errorMessage(err))
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	_, err := s.terminal.Retreat()
	s.redirect(w, r, s.errorMessage(err))
}

// handleJump moves to the step by its index, as clicked in the sidebar
func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.redirect(w, r, "Step does not exist")
		return
	}
	_, err = s.terminal.JumpTo(index)
	s.redirect(w, r, s.errorMessage(err))
}

// handlePause saves the active order to the pending list
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	rec, err := s.terminal.Pause(r.Context())
	if err != nil {
		s.redirect(w, r, s.errorMessage(err))
		return
	}
	s.redirect(w, r, fmt.Sprintf("Order %s saved to pending", rec.OrderNumber))
}

// handleFinish asks for finish confirmation
func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	_, err := s.terminal.RequestFinish()
	s.redirect(w, r, s.errorMessage(err))
}

// handleExit leaves the active order without saving
func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	s.redirect(w, r, s.errorMessage(s.terminal.Exit()))
}

// handleThemeToggle toggles the theme
func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	nextTheme := enums.ThemeDark
	if s.getTheme(r) == enums.ThemeDark {
		nextTheme = enums.ThemeLight
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "theme",
		Value:    nextTheme.String(),
		Path:     s.cookiePath(),
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.redirect(w, r, "")
}

// notFoundMessage makes message for unknown order with a hint of existing numbers
func (s *Server) notFoundMessage(number string) string {
	msg := fmt.Sprintf("Order %s not found.", number)
	if hint := orderHint(s.terminal.Catalog().Numbers()); hint != "" {
		msg += " " + hint
	}
	return msg
}

// errorMessage converts terminal error to the message shown to operator, empty for nil error
func (s *Server) errorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, workorder.ErrUnknownOrder):
		return "Order not found"
	case errors.Is(err, workorder.ErrEmptyOrderNumber):
		return "Please enter an order number"
	case errors.Is(err, workorder.ErrNoSession):
		return "Please log in first"
	case errors.Is(err, workorder.ErrOrderActive):
		return "Pause or finish the current order first"
	case errors.Is(err, workorder.ErrNoActiveOrder):
		return "No active order"
	case errors.Is(err, workorder.ErrNotPending):
		return "Order is not in the pending list"
	case errors.Is(err, workorder.ErrStepOutOfRange):
		return "Step does not exist"
	case errors.Is(err, workorder.ErrNotOnLastStep):
		return "Go to the last step to finish the order"
	case errors.Is(err, workorder.ErrNoConfirmation):
		return "Nothing to confirm"
	case errors.Is(err, session.ErrEmployeeRequired):
		return "Please enter your employee number"
	case errors.Is(err, session.ErrWorkstationRequired):
		return "Please select a workstation"
	default:
		log.Printf("[WARN] unexpected terminal error: %v", err)
		return "Something went wrong, please try again"
	}
}

// redirect sends operator back to the index with optional message
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, msg string) {
	if msg != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    url.QueryEscape(msg),
			Path:     s.cookiePath(),
			MaxAge:   60,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	http.Redirect(w, r, s.url("/"), http.StatusSeeOther)
}

// popFlash returns message set by the previous action and clears it
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: s.cookiePath(), MaxAge: -1, HttpOnly: true,
		SameSite: http.SameSiteLaxMode})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}

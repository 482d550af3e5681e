package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	log "github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/shopfloor/app/enums"
)

func TestServer_handleIndex(t *testing.T) {
	t.Run("login form without session", func(t *testing.T) {
		srv, _ := newTestServer(t, false)
		w := get(t, srv.routes(), "/")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Employee login")
		assert.Contains(t, body, `<option value="Station 3 - Quality Control">`)
		assert.Contains(t, body, `<option value="custom">Other...</option>`)
		assert.NotContains(t, body, "Scan work order")
		assert.Contains(t, body, `data-theme="light"`)
	})

	t.Run("scanner when idle", func(t *testing.T) {
		srv, _ := newTestServer(t, true)
		w := get(t, srv.routes(), "/", &http.Cookie{Name: "theme", Value: "dark"})
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Scan work order")
		assert.Contains(t, body, "No orders in progress")
		assert.Contains(t, body, "Employee <b>1001</b> at <b>Station 1 - Assembly</b>")
		assert.Contains(t, body, `data-theme="dark"`)
		assert.NotContains(t, body, "Employee login")
	})

	t.Run("steps of active order", func(t *testing.T) {
		srv, term := newTestServer(t, true)
		_, err := term.Scan(context.Background(), "001")
		require.NoError(t, err)

		w := get(t, srv.routes(), "/")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Assembly of Chair Model A")
		assert.Contains(t, body, "Step 1 of 4")
		assert.Contains(t, body, "Prepare components")
		assert.Contains(t, body, "Attach legs to seat")
		assert.Contains(t, body, "0 of 4 steps completed")
		assert.Contains(t, body, "Done, next step")
		assert.NotContains(t, body, "Finish order")
		assert.NotContains(t, body, "Scan work order")
		assert.NotContains(t, body, "All steps completed")
	})

	t.Run("quick-fill buttons", func(t *testing.T) {
		srv, term := newTestServer(t, false)
		body := get(t, srv.routes(), "/").Body.String()
		assert.Contains(t, body, "Sample employees:")
		assert.Contains(t, body, `data-fill="employee" data-value="1002"`)
		assert.NotContains(t, body, "Example orders for testing:")

		_, err := term.Login(context.Background(), "1001", "Station 1 - Assembly")
		require.NoError(t, err)
		body = get(t, srv.routes(), "/").Body.String()
		assert.Contains(t, body, "Example orders for testing:")
		for _, num := range []string{"001", "002", "003"} {
			assert.Contains(t, body, `data-fill="order" data-value="`+num+`"`)
		}
		assert.NotContains(t, body, "Sample employees:")
	})

	t.Run("unknown path", func(t *testing.T) {
		srv, _ := newTestServer(t, true)
		assert.Equal(t, http.StatusNotFound, get(t, srv.routes(), "/nope").Code)
	})
}

func TestServer_Login(t *testing.T) {
	tests := []struct {
		name        string
		form        url.Values
		flash       string
		employee    string
		workstation string
	}{
		{name: "preset workstation", form: url.Values{"employee": {" 1001 "}, "workstation": {"Station 2 - Packaging"}},
			employee: "1001", workstation: "Station 2 - Packaging"},
		{name: "custom workstation", form: url.Values{"employee": {"42"}, "workstation": {"custom"},
			"workstation_custom": {"Line B"}}, employee: "42", workstation: "Line B"},
		{name: "no employee", form: url.Values{"workstation": {"Station 2 - Packaging"}},
			flash: "Please enter your employee number"},
		{name: "empty custom workstation", form: url.Values{"employee": {"42"}, "workstation": {"custom"}},
			flash: "Please select a workstation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, term := newTestServer(t, false)
			w := post(t, srv.routes(), "/login", tt.form)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/", w.Header().Get("Location"))
			assert.Equal(t, tt.flash, flash(t, w))

			sess, ok := term.Session()
			if tt.flash != "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.employee, sess.EmployeeNumber)
			assert.Equal(t, tt.workstation, sess.Workstation)
		})
	}
}

func TestServer_LoginLoggedOnce(t *testing.T) {
	buf := bytes.Buffer{}
	log.Setup(log.Out(&buf), log.Err(&buf))
	defer log.Setup(log.Out(os.Stdout), log.Err(os.Stderr))

	srv, _ := newTestServer(t, false)
	w := post(t, srv.routes(), "/login", url.Values{"employee": {"1001"}, "workstation": {"Station 2 - Packaging"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, strings.Count(buf.String(), "employee 1001 logged in"), buf.String())
}

func TestServer_ScanUnknown(t *testing.T) {
	srv, term := newTestServer(t, true)
	h := srv.routes()

	w := post(t, h, "/scan", url.Values{"order": {"999"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	msg := flash(t, w)
	assert.Equal(t, "Order 999 not found. Try 001, 002 or 003", msg)
	_, active := term.Active()
	assert.False(t, active)
	assert.Empty(t, term.Pending())

	// message shown once on the next page
	w = get(t, h, "/", &http.Cookie{Name: flashCookie, Value: url.QueryEscape(msg)})
	assert.Contains(t, w.Body.String(), "Order 999 not found. Try 001, 002 or 003")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge, "flash cleared")

	w = post(t, h, "/scan", url.Values{"order": {"  "}})
	assert.Equal(t, "Please enter an order number", flash(t, w))
}

func TestServer_ScanWithoutSession(t *testing.T) {
	srv, _ := newTestServer(t, false)
	w := post(t, srv.routes(), "/scan", url.Values{"order": {"001"}})
	assert.Equal(t, "Please log in first", flash(t, w))
}

func TestServer_Scenario001(t *testing.T) {
	srv, term := newTestServer(t, true)
	h := srv.routes()

	w := post(t, h, "/scan", url.Values{"order": {"001"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, flash(t, w))

	for range 3 {
		w = post(t, h, "/step/next", nil)
		assert.Empty(t, flash(t, w))
	}
	run, ok := term.Active()
	require.True(t, ok)
	assert.Equal(t, 3, run.CurrentStepIndex)
	assert.Equal(t, []int{1, 2, 3}, run.CompletedSteps)

	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, "Step 4 of 4")
	assert.Contains(t, body, "Finish order")
	assert.Contains(t, body, "3 of 4 steps completed")

	w = post(t, h, "/pause", nil)
	assert.Equal(t, "Order 001 saved to pending", flash(t, w))
	_, ok = term.Active()
	assert.False(t, ok)

	body = get(t, h, "/").Body.String()
	assert.Contains(t, body, "Orders in progress")
	assert.Contains(t, body, "step 4 of 4, 3 done, employee 1001 at Station 1, just now")
	assert.Contains(t, body, `action="/orders/001/continue"`)

	w = post(t, h, "/orders/001/continue", nil)
	assert.Empty(t, flash(t, w))
	run, ok = term.Active()
	require.True(t, ok)
	assert.Equal(t, 3, run.CurrentStepIndex)
	assert.True(t, run.Resumed)

	w = post(t, h, "/finish", nil)
	assert.Empty(t, flash(t, w))
	body = get(t, h, "/").Body.String()
	assert.Contains(t, body, "Do you confirm that the order is complete?")

	w = post(t, h, "/confirm", nil)
	assert.Equal(t, "Order 001 completed", flash(t, w))
	assert.Empty(t, term.Pending())
	_, ok = term.Active()
	assert.False(t, ok)
}

func TestServer_FinishNotOnLastStep(t *testing.T) {
	srv, term := newTestServer(t, true)
	h := srv.routes()
	_, err := term.Scan(context.Background(), "002")
	require.NoError(t, err)

	w := post(t, h, "/finish", nil)
	assert.Equal(t, "Go to the last step to finish the order", flash(t, w))
	_, pending := term.Confirmation()
	assert.False(t, pending)
}

func TestServer_FinishDroppedByNavigation(t *testing.T) {
	srv, term := newTestServer(t, true)
	h := srv.routes()
	_, err := term.Scan(context.Background(), "001")
	require.NoError(t, err)

	post(t, h, "/step/3", nil)
	w := post(t, h, "/finish", nil)
	assert.Empty(t, flash(t, w))
	post(t, h, "/step/0", nil)

	w = post(t, h, "/confirm", nil)
	assert.Equal(t, "Nothing to confirm", flash(t, w))
	run, ok := term.Active()
	require.True(t, ok, "order still active")
	assert.Equal(t, 0, run.CurrentStepIndex)
}

func TestServer_ScanPendingOrder(t *testing.T) {
	srv, term := newTestServer(t, true)
	h := srv.routes()
	ctx := context.Background()

	_, err := term.Scan(ctx, "003")
	require.NoError(t, err)
	_, err = term.Advance()
	require.NoError(t, err)
	_, err = term.Pause(ctx)
	require.NoError(t, err)

	w := post(t, h, "/scan", url.Values{"order": {"003"}})
	assert.Empty(t, flash(t, w))
	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, "Order 003 is already in progress. Do you want to continue it?")
	assert.Contains(t, body, `data-action="resume"`)

	// declined, nothing changes
	post(t, h, "/cancel", nil)
	_, active := term.Active()
	assert.False(t, active)
	_, pending := term.Confirmation()
	assert.False(t, pending)

	post(t, h, "/scan", url.Values{"order": {"003"}})
	post(t, h, "/confirm", nil)
	run, active := term.Active()
	require.True(t, active)
	assert.Equal(t, 1, run.CurrentStepIndex)
	assert.Equal(t, []int{1}, run.CompletedSteps)

	w = post(t, h, "/scan", url.Values{"order": {"001"}})
	assert.Equal(t, "Pause or finish the current order first", flash(t, w))
}

func TestServer_Navigation(t *testing.T) {
	srv, term := newTestServer(t, true)
	h := srv.routes()
	_, err := term.Scan(context.Background(), "003")
	require.NoError(t, err)

	tests := []struct {
		path  string
		index int
		flash string
	}{
		{"/step/2", 2, ""},
		{"/step/prev", 1, ""},
		{"/step/next", 2, ""},
		{"/step/5", 5, ""},
		{"/step/next", 5, ""},
		{"/step/6", 5, "Step does not exist"},
		{"/step/-1", 5, "Step does not exist"},
		{"/step/abc", 5, "Step does not exist"},
		{"/step/0", 0, ""},
		{"/step/prev", 0, ""},
	}
	for _, tt := range tests {
		w := post(t, h, tt.path, nil)
		assert.Equal(t, tt.flash, flash(t, w), tt.path)
		run, ok := term.Active()
		require.True(t, ok)
		assert.Equal(t, tt.index, run.CurrentStepIndex, tt.path)
	}

	run, _ := term.Active()
	assert.Equal(t, []int{2, 6}, run.CompletedSteps, "marks only for advanced steps")

	w := post(t, h, "/exit", nil)
	assert.Empty(t, flash(t, w))
	_, ok := term.Active()
	assert.False(t, ok)
	assert.Empty(t, term.Pending(), "exit does not save")

	w = post(t, h, "/step/next", nil)
	assert.Equal(t, "No active order", flash(t, w))
	w = post(t, h, "/pause", nil)
	assert.Equal(t, "No active order", flash(t, w))
}

func TestServer_AllStepsCompletedBanner(t *testing.T) {
	srv, term := newTestServer(t, true)
	h := srv.routes()
	_, err := term.Scan(context.Background(), "001")
	require.NoError(t, err)
	for range 4 {
		_, err = term.Advance()
		require.NoError(t, err)
	}
	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, "All steps completed")
	assert.Contains(t, body, "4 of 4 steps completed")
	assert.Contains(t, body, `width: 100%`)
}

func TestServer_Delete(t *testing.T) {
	srv, term := newTestServer(t, true)
	h := srv.routes()
	ctx := context.Background()
	_, err := term.Scan(ctx, "002")
	require.NoError(t, err)
	_, err = term.Pause(ctx)
	require.NoError(t, err)

	w := post(t, h, "/orders/001/delete", nil)
	assert.Equal(t, "Order is not in the pending list", flash(t, w))

	post(t, h, "/orders/002/delete", nil)
	c, ok := term.Confirmation()
	require.True(t, ok)
	assert.Equal(t, enums.ConfirmDelete, c.Action)
	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, "Do you want to remove order 002 from pending?")

	w = post(t, h, "/confirm", nil)
	assert.Equal(t, "Order 002 removed from pending", flash(t, w))
	assert.Empty(t, term.Pending())

	w = post(t, h, "/confirm", nil)
	assert.Equal(t, "Nothing to confirm", flash(t, w))
}

func TestServer_Logout(t *testing.T) {
	srv, term := newTestServer(t, true)
	h := srv.routes()

	post(t, h, "/logout", nil)
	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, "Do you want to log out?")

	post(t, h, "/cancel", nil)
	_, ok := term.Session()
	assert.True(t, ok, "declined logout keeps session")

	post(t, h, "/logout", nil)
	post(t, h, "/confirm", nil)
	_, ok = term.Session()
	assert.False(t, ok)
	assert.Contains(t, get(t, h, "/").Body.String(), "Employee login")

	w := post(t, h, "/logout", nil)
	assert.Equal(t, "Please log in first", flash(t, w))
}

func TestServer_ContinueUnknown(t *testing.T) {
	srv, _ := newTestServer(t, true)
	w := post(t, srv.routes(), "/orders/001/continue", nil)
	assert.Equal(t, "Order is not in the pending list", flash(t, w))
}

func TestServer_handleThemeToggle(t *testing.T) {
	srv, _ := newTestServer(t, false)
	tests := []struct {
		current string
		next    string
	}{
		{"", "dark"},
		{"light", "dark"},
		{"dark", "light"},
	}
	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			var cookies []*http.Cookie
			if tt.current != "" {
				cookies = append(cookies, &http.Cookie{Name: "theme", Value: tt.current})
			}
			w := post(t, srv.routes(), "/theme", nil, cookies...)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			res := w.Result().Cookies()
			require.Len(t, res, 1)
			assert.Equal(t, "theme", res[0].Name)
			assert.Equal(t, tt.next, res[0].Value)
			assert.Equal(t, 365*24*60*60, res[0].MaxAge)
		})
	}
}

func TestServer_CrossOriginRejected(t *testing.T) {
	srv, term := newTestServer(t, true)
	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader("order=001"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	_, active := term.Active()
	assert.False(t, active)
}

func TestServer_RateLimit(t *testing.T) {
	term := newTestTerminal(t, true)
	srv, err := New(Config{Terminal: term, FormRateLimit: 1})
	require.NoError(t, err)
	h := srv.routes()

	w := post(t, h, "/scan", url.Values{"order": {"999"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	w = post(t, h, "/scan", url.Values{"order": {"999"}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// navigation is not limited
	w = post(t, h, "/step/next", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

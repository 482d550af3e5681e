//go:build e2e

// Package e2e provides end-to-end browser tests for the shopfloor terminal UI.
//
// Test organization:
// - e2e_test.go: TestMain, shared helpers, constants, page load tests
// - session_test.go: employee login and logout, theme toggle
// - orders_test.go: scanning, step navigation, pending orders, confirmations
//
// The terminal has a single shared state, so every test starts from resetTerminal.
package e2e

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	baseURL     = "http://localhost:18080"
	testCatalog = "e2e/testdata/catalog.yml"
	binPath     = "/tmp/shopfloor-e2e"
)

var (
	pw        *playwright.Playwright
	serverCmd *exec.Cmd
)

func TestMain(m *testing.M) {
	if err := createTestCatalog(); err != nil {
		fmt.Printf("failed to create test catalog: %v\n", err)
		os.Exit(1)
	}

	// build test binary
	ctx := context.Background()
	build := exec.CommandContext(ctx, "go", "build", "-o", binPath, "./app")
	build.Dir = ".."
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Printf("failed to build: %v\n", err)
		os.Exit(1)
	}

	// in-memory storage, each run starts clean
	serverCmd = exec.CommandContext(ctx, binPath,
		"--catalog=../"+testCatalog,
		"--storage.type=memory",
		"--web.address=:18080",
		"--web.rate-limit=100",
		"--scan-delay=100ms",
	)
	serverCmd.Stdout = os.Stdout
	serverCmd.Stderr = os.Stderr
	if err := serverCmd.Start(); err != nil {
		fmt.Printf("failed to start server: %v\n", err)
		os.Exit(1)
	}

	if err := waitForServer(baseURL+"/ping", 30*time.Second); err != nil {
		fmt.Printf("server not ready: %v\n", err)
		_ = serverCmd.Process.Kill()
		os.Exit(1)
	}

	if err := playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	}); err != nil {
		fmt.Printf("failed to install playwright: %v\n", err)
		_ = serverCmd.Process.Kill()
		os.Exit(1)
	}

	var err error
	pw, err = playwright.Run()
	if err != nil {
		fmt.Printf("failed to start playwright: %v\n", err)
		_ = serverCmd.Process.Kill()
		os.Exit(1)
	}

	code := m.Run()

	_ = pw.Stop()
	_ = serverCmd.Process.Kill()
	_ = os.Remove("../" + testCatalog)

	os.Exit(code)
}

// createTestCatalog writes catalog with unreachable images for order 001
func createTestCatalog() error {
	content := `orders:
  - orderNumber: "001"
    productName: Assembly of Chair Model A
    steps:
      - {id: 1, title: Prepare components, description: Verify that all components are present., imageUrl: "http://127.0.0.1:1/prepare.jpg"}
      - {id: 2, title: Attach legs to seat, description: Attach the 4 legs to the seat., imageUrl: "http://127.0.0.1:1/legs.jpg"}
      - {id: 3, title: Install backrest, description: Fasten the backrest with 4 screws.}
      - {id: 4, title: Quality control, description: Check that the chair is stable.}
  - orderNumber: "002"
    productName: Packaging of Electronics Model B
    steps:
      - {id: 1, title: Initial inspection, description: Verify the product works.}
      - {id: 2, title: Place in box, description: Put the product into the box.}
  - orderNumber: "003"
    productName: Assembly of Shelf Model C
    steps:
      - {id: 1, title: Sort parts, description: Sort boards and screws.}
`
	if err := os.MkdirAll("../e2e/testdata", 0o750); err != nil {
		return fmt.Errorf("failed to make testdata dir: %w", err)
	}
	if err := os.WriteFile("../"+testCatalog, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write test catalog: %w", err)
	}
	return nil
}

func waitForServer(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("server not ready after %v", timeout)
		default:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody) // #nosec G107 - test url
			if err != nil {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			resp, err := client.Do(req)
			if err == nil {
				_ = resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return nil
				}
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
}

func newPage(t *testing.T) playwright.Page {
	t.Helper()
	headless := os.Getenv("E2E_HEADLESS") != "false"
	slowMo := 0.0
	if !headless {
		slowMo = 50 // 50ms slowdown for UI mode
	}
	brow, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		SlowMo:   playwright.Float(slowMo),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = brow.Close() })

	ctx, err := brow.NewContext()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })

	page, err := ctx.NewPage()
	require.NoError(t, err)
	return page
}

// openTerminal navigates to the terminal and waits for the header
func openTerminal(t *testing.T, page playwright.Page) {
	t.Helper()
	_, err := page.Goto(baseURL)
	require.NoError(t, err)
	waitVisible(t, page, ".topbar")
}

func waitVisible(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	err := page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(5000),
	})
	require.NoError(t, err, "%s should be visible", selector)
}

func isVisible(t *testing.T, page playwright.Page, selector string) bool {
	t.Helper()
	count, err := page.Locator(selector).Count()
	require.NoError(t, err)
	return count > 0
}

// clickButton submits the form of the button with given text, scoped by selector
func clickButton(t *testing.T, page playwright.Page, scope, text string) {
	t.Helper()
	require.NoError(t, page.Locator(fmt.Sprintf("%s button:has-text(%q)", scope, text)).First().Click())
	require.NoError(t, page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: playwright.LoadStateLoad}))
}

// confirm answers the confirmation dialog
func confirm(t *testing.T, page playwright.Page, yes bool) {
	t.Helper()
	waitVisible(t, page, ".modal")
	if yes {
		clickButton(t, page, ".modal", "Yes")
		return
	}
	clickButton(t, page, ".modal", "No")
}

// resetTerminal drops any dialog, active order, pending records and session left by other tests
func resetTerminal(t *testing.T, page playwright.Page) {
	t.Helper()
	openTerminal(t, page)

	if isVisible(t, page, ".modal") {
		confirm(t, page, false)
	}
	if isVisible(t, page, "section.order") {
		clickButton(t, page, ".actions", "Exit without saving")
	}
	for isVisible(t, page, ".pending-item") {
		clickButton(t, page, ".pending-item", "Delete")
		confirm(t, page, true)
	}
	if isVisible(t, page, ".session") {
		clickButton(t, page, ".session", "Log out")
		confirm(t, page, true)
	}
	waitVisible(t, page, ".login")
}

// login resets the terminal and starts the shift for employee at workstation
func login(t *testing.T, page playwright.Page, employee, workstation string) {
	t.Helper()
	resetTerminal(t, page)
	require.NoError(t, page.Locator("#employee").Fill(employee))
	_, err := page.Locator("#workstation").SelectOption(playwright.SelectOptionValues{Values: playwright.StringSlice(workstation)})
	require.NoError(t, err)
	clickButton(t, page, ".login", "Start shift")
	waitVisible(t, page, ".scanner")
}

// scan enters the order number and waits for the scanner delay to pass
func scan(t *testing.T, page playwright.Page, orderNumber string) {
	t.Helper()
	require.NoError(t, page.Locator("#order").Fill(orderNumber))
	clickButton(t, page, ".scan-form", "Scan")
}

func text(t *testing.T, page playwright.Page, selector string) string {
	t.Helper()
	res, err := page.Locator(selector).First().TextContent()
	require.NoError(t, err)
	return res
}

// --- page load tests ---

func TestTerminal_PageLoads(t *testing.T) {
	page := newPage(t)
	resetTerminal(t, page)

	title, err := page.Title()
	require.NoError(t, err)
	assert.Equal(t, "Shopfloor", title)

	assert.Contains(t, text(t, page, ".login h2"), "Employee login")
	assert.Contains(t, text(t, page, "footer"), "shopfloor")
}

func TestTerminal_StaticAssets(t *testing.T) {
	page := newPage(t)
	for _, f := range []string{"/static/style.css", "/static/app.js", "/static/placeholder.svg"} {
		resp, err := page.Goto(baseURL + f)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status(), f)
	}
}

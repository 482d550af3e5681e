package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/shopfloor/app/enums"
	"github.com/umputun/shopfloor/app/notify/mocks"
	"github.com/umputun/shopfloor/app/progress"
	"github.com/umputun/shopfloor/app/workorder"
)

var completion = workorder.Completion{OrderNumber: "001", ProductName: "Assembly of Chair Model A", CompletedSteps: 3,
	TotalSteps: 4, EmployeeNumber: "1001", Workstation: "Station 1 - Assembly",
	FinishedAt: time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)}

func TestService_EmptyDestinations(t *testing.T) {
	svc := NewService(Params{}, SendersParams{})
	require.Nil(t, svc)
}

func TestMakeCompletionHTMLDefault(t *testing.T) {
	svc := NewService(Params{}, SendersParams{ToEmails: []string{"test@example.com"}})
	require.NotNil(t, svc)
	res, err := svc.MakeCompletionHTML(completion)
	require.NoError(t, err)
	assert.Contains(t, res, `Order <span class="bold">001</span> completed at 2025-03-14T10:30:00Z`)
	assert.Contains(t, res, `<li>Product: <span class="bold">Assembly of Chair Model A</span></li>`)
	assert.Contains(t, res, `<li>Workstation: <span class="bold">Station 1 - Assembly</span></li>`)
	assert.Contains(t, res, "Steps: 3 of 4")
	assert.Contains(t, res, "not all steps marked")

	all := completion
	all.CompletedSteps = 4
	res, err = svc.MakeCompletionHTML(all)
	require.NoError(t, err)
	assert.NotContains(t, res, "not all steps marked")
}

func TestMakeCompletionHTMLCustom(t *testing.T) {
	svc := NewService(Params{CompletionTemplate: "testfiles/completed.tmpl"}, SendersParams{ToEmails: []string{"test@example.com"}})
	require.NotNil(t, svc)
	res, err := svc.MakeCompletionHTML(completion)
	require.NoError(t, err)
	assert.Contains(t, res, "Order done: 001")
	assert.Contains(t, res, "By: 1001")

	for _, fname := range []string{"testfiles/completed-bad.tmpl", "testfiles/no-such-file.tmpl"} {
		svc = NewService(Params{CompletionTemplate: fname}, SendersParams{ToEmails: []string{"test@example.com"}})
		res, err = svc.MakeCompletionHTML(completion)
		require.NoError(t, err, fname)
		assert.Contains(t, res, `<li>Employee: <span class="bold">1001</span></li>`, "fallback to default for %s", fname)
	}
}

func TestMakeCompletionText(t *testing.T) {
	svc := NewService(Params{}, SendersParams{WebhookURLs: []string{"http://example.com/hook"}})
	require.NotNil(t, svc)
	assert.Equal(t, "order 001 (Assembly of Chair Model A) completed by 1001 at Station 1 - Assembly, 3 of 4 steps, "+
		"2025-03-14T10:30:00Z", svc.MakeCompletionText(completion))
}

func TestService_Send(t *testing.T) {
	tests := []struct {
		name           string
		mockSendErr    error
		expectedErrMsg string
	}{
		{name: "successful send"},
		{name: "send error", mockSendErr: errors.New("mock error"), expectedErrMsg: "mock error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailtoNotifier := &mocks.NotifierMock{
				SendFunc: func(_ context.Context, dest string, text string) error {
					assert.Equal(t, "mailto:to@example.com,to2@example.com?from=from@example.com&subject=order+completed,+001", dest)
					assert.Contains(t, text, "<!DOCTYPE html>")
					return tt.mockSendErr
				},
				SchemaFunc: func() string { return "mailto" },
			}
			var mu sync.Mutex
			var hooks []string
			webhookNotifier := &mocks.NotifierMock{
				SendFunc: func(_ context.Context, dest string, text string) error {
					mu.Lock()
					hooks = append(hooks, dest)
					mu.Unlock()
					assert.Contains(t, text, "order 001")
					return nil
				},
				SchemaFunc: func() string { return "http" },
			}

			s := Service{
				notifiers:   []notify.Notifier{mailtoNotifier, webhookNotifier},
				fromEmail:   "from@example.com",
				toEmails:    []string{"to@example.com", "to2@example.com"},
				webhooks:    []string{"http://example.com/h1", "https://example.com/h2"},
				subject:     "order completed",
				concurrency: 2,
			}

			err := s.Send(context.Background(), completion)
			assert.Len(t, mailtoNotifier.SendCalls(), 1)
			assert.ElementsMatch(t, []string{"http://example.com/h1", "https://example.com/h2"}, hooks)
			if tt.expectedErrMsg == "" {
				require.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.expectedErrMsg)
			}
		})
	}
}

func TestService_SendWebhook(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	svc := NewService(Params{}, SendersParams{WebhookURLs: []string{ts.URL + "/hook"},
		WebhookHeaders: []string{"X-Token:secret"}, WebhookTimeout: time.Second})
	require.NotNil(t, svc)
	require.NoError(t, svc.Send(context.Background(), completion))

	svc.OnFinished(completion)
	svc.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2)
	assert.Contains(t, bodies[0], "order 001 (Assembly of Chair Model A) completed by 1001")
}

func TestService_SendWebhookFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	svc := NewService(Params{}, SendersParams{WebhookURLs: []string{ts.URL}, WebhookTimeout: time.Second})
	require.NotNil(t, svc)
	assert.Error(t, svc.Send(context.Background(), completion))

	// background send logs the failure only
	svc.OnFinished(completion)
	svc.Wait()
}

func TestService_NoopEvents(t *testing.T) {
	svc := NewService(Params{}, SendersParams{WebhookURLs: []string{"http://127.0.0.1:1/hook"}})
	require.NotNil(t, svc)
	svc.OnScanned("001", enums.ScanResultStarted)
	svc.OnStarted(workorder.Run{})
	svc.OnResumed(workorder.Run{})
	svc.OnPaused(progress.OrderProgress{})
	svc.OnDeleted("001")
}

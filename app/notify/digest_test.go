package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/shopfloor/app/notify/mocks"
	"github.com/umputun/shopfloor/app/progress"
)

var digestNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

var pendingRecords = []progress.OrderProgress{
	{OrderNumber: "001", ProductName: "Assembly of Chair Model A", CurrentStepIndex: 2, CompletedSteps: []int{1, 2},
		Timestamp: digestNow.Add(-90 * time.Minute), EmployeeNumber: "1001", Workstation: "Station 1 - Assembly"},
	{OrderNumber: "003", ProductName: "Assembly of Bicycle Model C", CompletedSteps: []int{},
		Timestamp: digestNow.Add(-5*time.Minute - 20*time.Second)},
}

func TestService_MakeDigestText(t *testing.T) {
	svc := NewService(Params{}, SendersParams{WebhookURLs: []string{"http://example.com/hook"}})
	require.NotNil(t, svc)
	res := svc.MakeDigestText(pendingRecords, digestNow)
	assert.Equal(t, "pending orders: 2\n"+
		"003 Assembly of Bicycle Model C, step 1, 0 done, paused 5m0s ago\n"+
		"001 Assembly of Chair Model A, step 3, 2 done, employee 1001 at Station 1, paused 1h30m0s ago\n", res)
}

func TestService_SendDigest(t *testing.T) {
	mailtoNotifier := &mocks.NotifierMock{
		SendFunc: func(_ context.Context, dest string, text string) error {
			assert.Equal(t, "mailto:to@example.com?subject=pending+orders,+2", dest)
			assert.Contains(t, text, "<pre>pending orders: 2\n")
			return nil
		},
		SchemaFunc: func() string { return "mailto" },
	}
	webhookNotifier := &mocks.NotifierMock{
		SendFunc: func(_ context.Context, dest string, text string) error {
			assert.Equal(t, "http://example.com/h1", dest)
			assert.Contains(t, text, "001 Assembly of Chair Model A, step 3")
			return nil
		},
		SchemaFunc: func() string { return "http" },
	}

	s := Service{
		notifiers:   []notify.Notifier{mailtoNotifier, webhookNotifier},
		toEmails:    []string{"to@example.com"},
		webhooks:    []string{"http://example.com/h1"},
		concurrency: 1,
		now:         func() time.Time { return digestNow },
	}

	require.NoError(t, s.SendDigest(context.Background(), nil))
	assert.Empty(t, mailtoNotifier.SendCalls(), "nothing sent for empty list")

	require.NoError(t, s.SendDigest(context.Background(), pendingRecords))
	assert.Len(t, mailtoNotifier.SendCalls(), 1)
	assert.Len(t, webhookNotifier.SendCalls(), 1)
}

func TestService_ScheduleDigest(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	svc := NewService(Params{Timeout: time.Second}, SendersParams{WebhookURLs: []string{ts.URL}, WebhookTimeout: time.Second})
	require.NotNil(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Error(t, svc.ScheduleDigest(ctx, "bad spec", nil))

	pending := func() []progress.OrderProgress { return pendingRecords[:1] }
	require.NoError(t, svc.ScheduleDigest(ctx, "@every 1s", pending))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(bodies) > 0
	}, 3*time.Second, 50*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, bodies[0], "pending orders: 1\n001 Assembly of Chair Model A")
}

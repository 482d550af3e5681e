package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"

	"github.com/umputun/shopfloor/app/progress"
	"github.com/umputun/shopfloor/app/session"
)

// MakeDigestText renders list of paused orders, one line per order, most recent first
func (s *Service) MakeDigestText(records []progress.OrderProgress, now time.Time) string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "pending orders: %d\n", len(records))
	for _, r := range progress.SortRecent(records) {
		fmt.Fprintf(&sb, "%s %s, step %d, %d done", r.OrderNumber, r.ProductName, r.CurrentStepIndex+1, len(r.CompletedSteps))
		if r.EmployeeNumber != "" {
			fmt.Fprintf(&sb, ", employee %s", r.EmployeeNumber)
		}
		if ws := session.ShortWorkstation(r.Workstation); ws != "" {
			fmt.Fprintf(&sb, " at %s", ws)
		}
		fmt.Fprintf(&sb, ", paused %s ago\n", now.Sub(r.Timestamp).Truncate(time.Minute))
	}
	return sb.String()
}

// SendDigest delivers list of paused orders to all destinations. Nothing sent for empty list.
func (s *Service) SendDigest(ctx context.Context, records []progress.OrderProgress) error {
	if len(records) == 0 {
		return nil
	}
	text := s.MakeDigestText(records, s.now())
	var dests []destination
	if len(s.toEmails) > 0 {
		subj := fmt.Sprintf("pending orders, %d", len(records))
		dests = append(dests, destination{s.mailtoDestination(subj), "<pre>" + html.EscapeString(text) + "</pre>"})
	}
	for _, wh := range s.webhooks {
		dests = append(dests, destination{wh, text})
	}
	return s.deliver(ctx, dests)
}

// ScheduleDigest starts cron scheduler sending digest of pending records on the given schedule.
// Standard 5-field spec and descriptors like @daily or @every 1h are accepted.
// Scheduler stops when context is canceled.
func (s *Service) ScheduleDigest(ctx context.Context, spec string, pending func() []progress.OrderProgress) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}

	sched := cron.New()
	if _, err := sched.AddFunc(spec, func() {
		records := pending()
		sctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if err := s.SendDigest(sctx, records); err != nil {
			log.Printf("[WARN] failed to send pending digest, %v", err)
			return
		}
		log.Printf("[DEBUG] pending digest sent, %d orders", len(records))
	}); err != nil {
		return fmt.Errorf("can't schedule digest: %w", err)
	}
	sched.Start()
	log.Printf("[INFO] pending digest scheduled, %q", spec)

	go func() {
		<-ctx.Done()
		<-sched.Stop().Done()
		log.Printf("[DEBUG] pending digest scheduler stopped")
	}()
	return nil
}

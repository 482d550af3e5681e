// Package notify delivers order completion messages to email and webhook destinations
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/notify"
	"github.com/go-pkgz/syncs"

	"github.com/umputun/shopfloor/app/enums"
	"github.com/umputun/shopfloor/app/progress"
	"github.com/umputun/shopfloor/app/workorder"
)

const defaultCompletionTemplate = `<!DOCTYPE html>
<html>
	<head>
		<meta name="viewport" content="width=device-width" />
		<meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
		<style type="text/css">
			body {
				font-family: "Arial";
				font-size: 1.0em;
			}
			ul {
				margin-top: -0.5em;
				margin-left: -0.5em;
			}
			.bold {
				color: #1d5f2a;
				font-weight: 900;
			}
			.warn {
				color: #882828;
			}
		</style>
	</head>

	<body>
		<p>Order <span class="bold">{{.OrderNumber}}</span> completed at {{.FinishedAt.Format "2006-01-02T15:04:05Z07:00"}}</p>
		<ul>
			<li>Product: <span class="bold">{{.ProductName}}</span></li>
			<li>Employee: <span class="bold">{{.EmployeeNumber}}</span></li>
			<li>Workstation: <span class="bold">{{.Workstation}}</span></li>
			<li>Steps: {{.CompletedSteps}} of {{.TotalSteps}}{{if lt .CompletedSteps .TotalSteps}} <span class="warn">(not all steps marked)</span>{{end}}</li>
		</ul>
	</body>
</html>
`

//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier

// Notifier is a single delivery channel, email or webhook
type Notifier interface {
	notify.Notifier
}

// Service sends completion notifications to all configured destinations
type Service struct {
	notifiers   []notify.Notifier
	webhooks    []string
	toEmails    []string
	fromEmail   string
	subject     string
	tmplFile    string
	concurrency int
	timeout     time.Duration
	inFlight    sync.WaitGroup
	now         func() time.Time
}

// Params defines message rendering and delivery options
type Params struct {
	CompletionTemplate string        // optional template file for completion email
	Subject            string        // email subject, order number appended
	Timeout            time.Duration // timeout for a single notification round
	Concurrency        int           // max destinations notified in parallel
}

// SendersParams defines destinations and senders
type SendersParams struct {
	SMTPHost     string
	SMTPPort     int
	SMTPTLS      bool
	SMTPUsername string
	SMTPPassword string
	SMTPTimeout  time.Duration
	FromEmail    string
	ToEmails     []string

	WebhookURLs    []string
	WebhookHeaders []string // "Name:Value" pairs
	WebhookTimeout time.Duration
}

// NewService makes notification service. Returns nil if no destinations defined.
func NewService(p Params, sp SendersParams) *Service {
	if len(sp.ToEmails) == 0 && len(sp.WebhookURLs) == 0 {
		return nil
	}

	res := &Service{
		toEmails:    sp.ToEmails,
		fromEmail:   sp.FromEmail,
		webhooks:    sp.WebhookURLs,
		subject:     p.Subject,
		tmplFile:    p.CompletionTemplate,
		concurrency: p.Concurrency,
		timeout:     p.Timeout,
		now:         time.Now,
	}
	if res.concurrency <= 0 {
		res.concurrency = 4
	}
	if res.timeout <= 0 {
		res.timeout = 30 * time.Second
	}
	if res.subject == "" {
		res.subject = "order completed"
	}

	if len(sp.ToEmails) > 0 {
		res.notifiers = append(res.notifiers, notify.NewEmail(notify.SMTPParams{
			Host:        sp.SMTPHost,
			Port:        sp.SMTPPort,
			TLS:         sp.SMTPTLS,
			ContentType: "text/html",
			Username:    sp.SMTPUsername,
			Password:    sp.SMTPPassword,
			TimeOut:     sp.SMTPTimeout,
		}))
	}
	if len(sp.WebhookURLs) > 0 {
		res.notifiers = append(res.notifiers, notify.NewWebhook(notify.WebhookParams{
			Timeout: sp.WebhookTimeout,
			Headers: sp.WebhookHeaders,
		}))
	}
	log.Printf("[INFO] notifications enabled, emails: %v, webhooks: %d", sp.ToEmails, len(sp.WebhookURLs))
	return res
}

// MakeCompletionHTML renders completion email. Custom template used if set and valid,
// default one otherwise.
func (s *Service) MakeCompletionHTML(c workorder.Completion) (string, error) {
	tmpl := defaultCompletionTemplate
	if s.tmplFile != "" {
		data, err := os.ReadFile(s.tmplFile)
		if err != nil {
			log.Printf("[WARN] can't read completion template %s, using default, %v", s.tmplFile, err)
		} else {
			tmpl = string(data)
		}
	}

	t, err := template.New("completion").Parse(tmpl)
	if err != nil && tmpl != defaultCompletionTemplate {
		log.Printf("[WARN] can't parse completion template %s, using default, %v", s.tmplFile, err)
		t, err = template.New("completion").Parse(defaultCompletionTemplate)
	}
	if err != nil {
		return "", fmt.Errorf("can't parse completion template: %w", err)
	}
	buf := bytes.Buffer{}
	if err := t.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("failed to apply template: %w", err)
	}
	return buf.String(), nil
}

// MakeCompletionText renders short plain text message for webhooks
func (s *Service) MakeCompletionText(c workorder.Completion) string {
	return fmt.Sprintf("order %s (%s) completed by %s at %s, %d of %d steps, %s", c.OrderNumber, c.ProductName,
		c.EmployeeNumber, c.Workstation, c.CompletedSteps, c.TotalSteps, c.FinishedAt.Format(time.RFC3339))
}

// Send delivers completion of the order to all destinations in parallel
func (s *Service) Send(ctx context.Context, c workorder.Completion) error {
	var dests []destination
	if len(s.toEmails) > 0 {
		html, err := s.MakeCompletionHTML(c)
		if err != nil {
			return fmt.Errorf("can't make html email: %w", err)
		}
		subj := s.subject + ", " + c.OrderNumber
		dests = append(dests, destination{s.mailtoDestination(subj), html})
	}
	for _, wh := range s.webhooks {
		dests = append(dests, destination{wh, s.MakeCompletionText(c)})
	}

	return s.deliver(ctx, dests)
}

type destination struct{ dest, text string }

// deliver sends all messages in parallel, limited by concurrency
func (s *Service) deliver(ctx context.Context, dests []destination) error {
	var mu sync.Mutex
	var errs []error
	gr := syncs.NewSizedGroup(s.concurrency)
	for _, d := range dests {
		gr.Go(func(ctx context.Context) {
			if err := notify.Send(ctx, s.notifiers, d.dest, d.text); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
	}
	gr.Wait()
	return errors.Join(errs...)
}

// mailtoDestination makes destination for email notifier, i.e. mailto:a@example.com,b@example.com?from=x&subject=y
func (s *Service) mailtoDestination(subj string) string {
	res := "mailto:" + strings.Join(s.toEmails, ",")
	params := []string{}
	if s.fromEmail != "" {
		params = append(params, "from="+s.fromEmail)
	}
	params = append(params, "subject="+strings.ReplaceAll(subj, " ", "+"))
	return res + "?" + strings.Join(params, "&")
}

// OnFinished sends completion in background, failures logged
func (s *Service) OnFinished(c workorder.Completion) {
	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.Send(ctx, c); err != nil {
			log.Printf("[WARN] failed to notify about order %s, %v", c.OrderNumber, err)
			return
		}
		log.Printf("[DEBUG] completion of order %s sent", c.OrderNumber)
	}()
}

// Wait blocks until all background notifications are done
func (s *Service) Wait() {
	s.inFlight.Wait()
}

// OnScanned does nothing, only completion is notified
func (s *Service) OnScanned(string, enums.ScanResult) {}

// OnStarted does nothing
func (s *Service) OnStarted(workorder.Run) {}

// OnResumed does nothing
func (s *Service) OnResumed(workorder.Run) {}

// OnPaused does nothing
func (s *Service) OnPaused(progress.OrderProgress) {}

// OnDeleted does nothing
func (s *Service) OnDeleted(string) {}

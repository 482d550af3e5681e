package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/shopfloor/app/catalog"
	"github.com/umputun/shopfloor/app/enums"
	"github.com/umputun/shopfloor/app/health"
	"github.com/umputun/shopfloor/app/metrics"
	"github.com/umputun/shopfloor/app/notify"
	"github.com/umputun/shopfloor/app/persistence"
	"github.com/umputun/shopfloor/app/progress"
	"github.com/umputun/shopfloor/app/session"
	"github.com/umputun/shopfloor/app/web"
	"github.com/umputun/shopfloor/app/workorder"
)

var opts struct {
	Catalog   string        `short:"c" long:"catalog" env:"SHOPFLOOR_CATALOG" description:"work orders catalog file (yaml), built-in sample if empty"`
	ScanDelay time.Duration `long:"scan-delay" env:"SHOPFLOOR_SCAN_DELAY" default:"500ms" description:"simulated scanner delay"`
	Dbg       bool          `long:"dbg" env:"SHOPFLOOR_DEBUG" description:"debug mode"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging to file"`
		Filename        string `long:"filename" env:"FILENAME" default:"shopfloor.log" description:"log file name"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in megabytes"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max days to retain old log files"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of old log files to retain"`
		EnabledCompress bool   `long:"enabled-compress" env:"ENABLED_COMPRESS" description:"compress rotated log files"`
	} `group:"log" namespace:"log" env-namespace:"SHOPFLOOR_LOG"`

	Web struct {
		Address         string  `long:"address" env:"ADDRESS" default:":8080" description:"web server listen address"`
		BaseURL         string  `long:"base-url" env:"BASE_URL" description:"base URL path for reverse proxy (e.g., /shopfloor)"`
		Metrics         bool    `long:"metrics" env:"METRICS" description:"expose prometheus metrics on /metrics"`
		APIPasswordHash string  `long:"api-password-hash" env:"API_PASSWORD_HASH" description:"bcrypt hash protecting api and metrics, user shopfloor"`
		RateLimit       float64 `long:"rate-limit" env:"RATE_LIMIT" default:"10" description:"login and scan requests per second per client"`
	} `group:"web" namespace:"web" env-namespace:"SHOPFLOOR_WEB"`

	Storage struct {
		Type          string        `long:"type" env:"TYPE" default:"file" choice:"memory" choice:"file" choice:"sqlite" choice:"badger" choice:"redis" description:"storage backend"`
		Location      string        `long:"location" env:"LOCATION" description:"directory for file and badger, db file for sqlite (default: var, var/badger, var/shopfloor.db)"`
		RedisAddr     string        `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"redis address"`
		RedisPassword string        `long:"redis-password" env:"REDIS_PASSWORD" description:"redis password"`
		RedisDB       int           `long:"redis-db" env:"REDIS_DB" default:"0" description:"redis database"`
		Prefix        string        `long:"prefix" env:"PREFIX" default:"shopfloor:" description:"redis key prefix"`
		Attempts      int           `long:"attempts" env:"ATTEMPTS" default:"5" description:"how many times to try opening storage"`
		Duration      time.Duration `long:"duration" env:"DURATION" default:"500ms" description:"initial delay between open attempts"`
	} `group:"storage" namespace:"storage" env-namespace:"SHOPFLOOR_STORAGE"`

	Notify struct {
		SMTPHost       string        `long:"smtp-host" env:"SMTP_HOST" description:"SMTP host"`
		SMTPPort       int           `long:"smtp-port" env:"SMTP_PORT" description:"SMTP port"`
		SMTPUsername   string        `long:"smtp-username" env:"SMTP_USERNAME" description:"SMTP user name"`
		SMTPPassword   string        `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password"`
		SMTPTLS        bool          `long:"smtp-tls" env:"SMTP_TLS" description:"enable SMTP TLS"`
		SMTPTimeOut    time.Duration `long:"smtp-timeout" env:"SMTP_TIMEOUT" default:"10s" description:"SMTP TCP connection timeout"`
		From           string        `long:"from" env:"FROM" description:"SMTP from email"`
		To             []string      `long:"to" env:"TO" description:"SMTP to email(s)" env-delim:","`
		Webhooks       []string      `long:"webhook" env:"WEBHOOK" description:"webhook url(s)" env-delim:","`
		WebhookHeaders []string      `long:"webhook-header" env:"WEBHOOK_HEADER" description:"webhook header, Name:Value" env-delim:","`
		WebhookTimeout time.Duration `long:"webhook-timeout" env:"WEBHOOK_TIMEOUT" default:"10s" description:"webhook request timeout"`
		Timeout        time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"timeout for a single notification"`
		Template       string        `long:"template" env:"TEMPLATE" description:"completion email template file"`
		Digest         string        `long:"digest" env:"DIGEST" description:"cron spec for pending orders digest, e.g. @daily"`
		HostName       string        `long:"host" env:"HOSTNAME" description:"host name of the terminal"`
	} `group:"notify" namespace:"notify" env-namespace:"SHOPFLOOR_NOTIFY"`

	Health struct {
		MemoryBelow   int     `long:"memory-below" env:"MEMORY_BELOW" default:"90" description:"max memory used, percent"`
		LoadAvgBelow  float64 `long:"load-below" env:"LOAD_BELOW" default:"0" description:"max 1m load average, 0 to skip"`
		DiskFreeAbove int     `long:"disk-free-above" env:"DISK_FREE_ABOVE" default:"5" description:"min disk free of storage location, percent"`
		CPUBelow      int     `long:"cpu-below" env:"CPU_BELOW" default:"0" description:"max cpu used, percent, 0 to skip"`
	} `group:"health" namespace:"health" env-namespace:"SHOPFLOOR_HEALTH"`
}

var revision = "unknown"

func main() {
	fmt.Printf("shopfloor %s\n", revision)

	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(2)
	}
	setupLogs()

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals(cancel) // handle SIGQUIT and SIGTERM

	if err := run(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cat, err := makeCatalog()
	if err != nil {
		return fmt.Errorf("can't load catalog: %w", err)
	}

	backend, err := enums.ParseBackend(opts.Storage.Type)
	if err != nil {
		return fmt.Errorf("invalid storage type: %w", err)
	}
	storage, err := persistence.Open(ctx, persistence.Params{
		Type:          backend,
		Location:      storageLocation(backend),
		RedisAddr:     opts.Storage.RedisAddr,
		RedisPassword: opts.Storage.RedisPassword,
		RedisDB:       opts.Storage.RedisDB,
		Prefix:        opts.Storage.Prefix,
		Attempts:      opts.Storage.Attempts,
		Duration:      opts.Storage.Duration,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Printf("[WARN] can't close storage, %v", err)
		}
	}()

	prog := progress.New(storage)
	prog.Load(ctx)
	sess := session.NewStore(storage)
	sess.Load(ctx)

	recorder := metrics.NewRecorder(prog.Len)
	handlers := workorder.Handlers{workorder.LogHandler{Logf: log.Printf}, recorder}

	notifier := makeNotifier()
	if notifier != nil {
		handlers = append(handlers, notifier)
		defer notifier.Wait()
	}

	term := workorder.New(workorder.Params{
		Catalog:   cat,
		Progress:  prog,
		Session:   sess,
		Events:    handlers,
		ScanDelay: opts.ScanDelay,
	})

	if notifier != nil && opts.Notify.Digest != "" {
		if err := notifier.ScheduleDigest(ctx, opts.Notify.Digest, term.Pending); err != nil {
			return fmt.Errorf("can't schedule digest: %w", err)
		}
	}

	cfg := web.Config{
		Terminal:        term,
		BaseURL:         validateBaseURL(opts.Web.BaseURL),
		Version:         revision,
		Health:          health.NewChecker(makeThresholds(backend)),
		APIPasswordHash: opts.Web.APIPasswordHash,
		FormRateLimit:   opts.Web.RateLimit,
	}
	if opts.Web.Metrics {
		cfg.Metrics = recorder.Handler()
	}

	srv, err := web.New(cfg)
	if err != nil {
		return fmt.Errorf("can't make web server: %w", err)
	}
	if err := srv.Run(ctx, opts.Web.Address); err != nil {
		return err
	}
	log.Printf("[INFO] terminal stopped")
	return nil
}

func makeCatalog() (*catalog.Catalog, error) {
	if opts.Catalog == "" {
		log.Printf("[INFO] using built-in catalog")
		return catalog.Default()
	}
	log.Printf("[INFO] loading catalog from %s", opts.Catalog)
	return catalog.Load(opts.Catalog)
}

// makeNotifier returns nil if neither emails nor webhooks are set
func makeNotifier() *notify.Service {
	if len(opts.Notify.To) == 0 && len(opts.Notify.Webhooks) == 0 {
		return nil
	}

	if opts.Notify.From == "" {
		opts.Notify.From = "shopfloor@" + makeHostName()
	}

	return notify.NewService(
		notify.Params{
			CompletionTemplate: opts.Notify.Template,
			Subject:            "order completed on " + makeHostName(),
			Timeout:            opts.Notify.Timeout,
		},
		notify.SendersParams{
			SMTPHost:       opts.Notify.SMTPHost,
			SMTPPort:       opts.Notify.SMTPPort,
			SMTPTLS:        opts.Notify.SMTPTLS,
			SMTPUsername:   opts.Notify.SMTPUsername,
			SMTPPassword:   opts.Notify.SMTPPassword,
			SMTPTimeout:    opts.Notify.SMTPTimeOut,
			FromEmail:      opts.Notify.From,
			ToEmails:       opts.Notify.To,
			WebhookURLs:    opts.Notify.Webhooks,
			WebhookHeaders: opts.Notify.WebhookHeaders,
			WebhookTimeout: opts.Notify.WebhookTimeout,
		},
	)
}

// makeThresholds checks disk of the storage location, root for memory and redis
func makeThresholds(backend enums.Backend) health.Thresholds {
	res := health.Thresholds{
		MemoryBelow:   opts.Health.MemoryBelow,
		LoadAvgBelow:  opts.Health.LoadAvgBelow,
		DiskFreeAbove: opts.Health.DiskFreeAbove,
		CPUBelow:      opts.Health.CPUBelow,
	}
	switch backend {
	case enums.BackendFile, enums.BackendBadger:
		res.DiskPath = storageLocation(backend)
	case enums.BackendSqlite:
		res.DiskPath = filepath.Dir(storageLocation(backend))
	}
	return res
}

// storageLocation returns --storage.location or the default of the backend,
// sqlite needs a db file while file and badger need a directory
func storageLocation(backend enums.Backend) string {
	if opts.Storage.Location != "" {
		return opts.Storage.Location
	}
	switch backend {
	case enums.BackendFile:
		return "var"
	case enums.BackendBadger:
		return filepath.Join("var", "badger")
	case enums.BackendSqlite:
		return filepath.Join("var", "shopfloor.db")
	default:
		return ""
	}
}

func makeHostName() string {
	if opts.Notify.HostName != "" {
		return opts.Notify.HostName
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}

// validateBaseURL drops trailing slash, "/" means no base url
func validateBaseURL(u string) string {
	if u == "" || u == "/" {
		return ""
	}
	return strings.TrimSuffix(u, "/")
}

// setupLogs configures lgr and returns the writer logs go to
func setupLogs() io.Writer {
	var out io.Writer = os.Stdout
	if opts.Log.Enabled {
		out = &lumberjack.Logger{
			Filename:   opts.Log.Filename,
			MaxSize:    opts.Log.MaxSize,
			MaxBackups: opts.Log.MaxBackups,
			MaxAge:     opts.Log.MaxAge,
			Compress:   opts.Log.EnabledCompress,
		}
	}

	logOpts := []log.Option{log.Msec, log.Out(out), log.Err(out)}
	if opts.Dbg {
		logOpts = []log.Option{log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile, log.Out(out), log.Err(out)}
	}
	log.Setup(logOpts...)
	return out
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			if sig == syscall.SIGQUIT { // catch SIGQUIT and print stack traces
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
				continue
			}
			log.Printf("[INFO] %s received, shutting down", sig)
			cancel() // terminate on SIGTERM and interrupt
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, os.Interrupt)
}

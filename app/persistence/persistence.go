package persistence

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"

	"github.com/umputun/shopfloor/app/enums"
)

// ErrNotFound returned by Get if key is not present
var ErrNotFound = errors.New("key not found")

var reKey = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

//go:generate moq -out mocks/storage.go -pkg mocks -skip-ensure -fmt goimports . Storage

// Storage defines local key/value storage operations
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Params defines storage backend and its location
type Params struct {
	Type     enums.Backend
	Location string // directory for file and badger, db file for sqlite, empty badger location means in-memory

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string // key prefix for redis, allows several terminals to share one instance

	Attempts int           // open attempts, 1 by default
	Duration time.Duration // initial delay between attempts
}

// Open makes storage for given params. Opening retried with backoff, as a file lock or
// redis may be unavailable for a short time on startup.
func Open(ctx context.Context, p Params) (Storage, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	rptr := repeater.New(&strategy.Backoff{Repeats: attempts, Duration: p.Duration, Factor: 2})

	var res Storage
	err := rptr.Do(ctx, func() error {
		s, err := open(ctx, p)
		if err != nil {
			log.Printf("[WARN] can't open %s storage, %v", p.Type, err)
			return err
		}
		res = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", p.Type, err)
	}
	log.Printf("[INFO] %s storage opened, %s", p.Type, p.String())
	return res, nil
}

func open(ctx context.Context, p Params) (Storage, error) {
	switch p.Type {
	case enums.BackendMemory:
		return NewMemory(), nil
	case enums.BackendFile:
		return NewFiles(p.Location)
	case enums.BackendSqlite:
		return NewSQLite(p.Location)
	case enums.BackendBadger:
		return NewBadger(p.Location)
	case enums.BackendRedis:
		return NewRedisWithAddr(ctx, RedisParams{Addr: p.RedisAddr, Password: p.RedisPassword, DB: p.RedisDB, Prefix: p.Prefix})
	default:
		return nil, fmt.Errorf("unsupported storage type %q", p.Type)
	}
}

func (p Params) String() string {
	switch p.Type {
	case enums.BackendMemory:
		return "in-memory"
	case enums.BackendRedis:
		return fmt.Sprintf("addr:%s, db:%d, prefix:%s", p.RedisAddr, p.RedisDB, p.Prefix)
	default:
		return "location:" + p.Location
	}
}

func checkKey(key string) error {
	if !reKey.MatchString(key) {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

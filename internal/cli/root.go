package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/proofstreak/internal/config"
	"github.com/julianstephens/proofstreak/internal/constants"
	"github.com/julianstephens/proofstreak/internal/habits"
	"github.com/julianstephens/proofstreak/internal/keyring"
	"github.com/julianstephens/proofstreak/internal/notify"
	"github.com/julianstephens/proofstreak/internal/pending"
	"github.com/julianstephens/proofstreak/internal/reminders"
	"github.com/julianstephens/proofstreak/internal/storage"
	"github.com/julianstephens/proofstreak/internal/storage/bolt"
	"github.com/julianstephens/proofstreak/internal/storage/postgres"
	"github.com/julianstephens/proofstreak/internal/storage/sqlite"
	"github.com/julianstephens/proofstreak/internal/streaks"
	"github.com/julianstephens/proofstreak/internal/submissions"
	"github.com/julianstephens/proofstreak/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	Config   config.Config
	Store    storage.Provider
	Clock    utils.Clock
	Channel  notify.Channel
	Cache    pending.Cache
	Habits   *habits.Registry
	Ledger   *streaks.Ledger
	Workflow *submissions.Workflow
	Sweeper  *reminders.Sweeper

	// Out receives command output. Defaults to stdout.
	Out io.Writer

	closers []io.Closer
}

// KeyringDatabase is the database value that defers to the connection
// string stored in the OS keyring.
const KeyringDatabase = "keyring"

type storeOptions struct {
	trustedCredentials bool
}

// StoreOption adjusts how NewStore validates the config.
type StoreOption func(*storeOptions)

// TrustedCredentials lets a Postgres connection string carry a password.
// Only strings read back from the OS keyring are built with it.
func TrustedCredentials() StoreOption {
	return func(o *storeOptions) { o.trustedCredentials = true }
}

// NewStore picks the storage backend named by the config.
func NewStore(cfg config.Config, opts ...StoreOption) (storage.Provider, error) {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	switch cfg.Driver {
	case constants.DriverPostgres:
		if valid, err := postgres.ValidateConnString(cfg.Database); !valid {
			if !o.trustedCredentials || !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, err
			}
		}
		return postgres.New(cfg.Database), nil
	case constants.DriverBolt:
		return bolt.NewStore(cfg.Database), nil
	case constants.DriverSQLite:
		return sqlite.NewStore(cfg.Database), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// OpenStore builds the store for cfg. When the database is "keyring" the
// connection string is read from the OS keyring and may embed a password;
// any other value goes through the full NewStore checks. The returned
// config carries the resolved database and driver.
func OpenStore(cfg config.Config) (config.Config, storage.Provider, error) {
	if cfg.Database != KeyringDatabase {
		store, err := NewStore(cfg)
		return cfg, store, err
	}
	connStr, err := keyring.Get(keyring.ConnectionString)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to read connection string from keyring: %w", err)
	}
	cfg.Database = connStr
	cfg.Driver = config.DriverFor(connStr)
	store, err := NewStore(cfg, TrustedCredentials())
	return cfg, store, err
}

// NewContext wires the domain services around store. Secrets missing from
// the config are looked up in the OS keyring.
func NewContext(cfg config.Config, store storage.Provider) (*Context, error) {
	clock, err := utils.NewClock(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	ctx := &Context{Config: cfg, Store: store, Clock: clock, Out: os.Stdout}

	if cfg.Webhook.URL != "" {
		secret := cfg.Webhook.Secret
		if secret == "" {
			secret = keyring.Lookup(keyring.WebhookSecret, "")
		}
		webhook, err := notify.NewWebhook(cfg.Webhook.URL, secret)
		if err != nil {
			return nil, err
		}
		ctx.Channel = webhook
	} else {
		ctx.Channel = notify.Log{}
	}

	if cfg.Redis.Addr != "" {
		password := cfg.Redis.Password
		if password == "" {
			password = keyring.Lookup(keyring.RedisPassword, "")
		}
		cache, err := pending.NewRedis(pending.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.ProofTTL,
		})
		if err != nil {
			return nil, err
		}
		ctx.Cache = cache
		ctx.closers = append(ctx.closers, cache)
	} else {
		ctx.Cache = pending.NewMemory(cfg.ProofTTL)
	}

	ctx.Wire()
	return ctx, nil
}

// Wire builds the domain services from the context's store, clock, channel
// and cache. Call it again after replacing any of them.
func (c *Context) Wire() {
	c.Habits = habits.NewRegistry(c.Store, c.Clock)
	c.Ledger = streaks.NewLedger(c.Store, c.Clock)
	c.Workflow = submissions.New(submissions.Options{
		Store:          c.Store,
		Habits:         c.Habits,
		Ledger:         c.Ledger,
		Channel:        c.Channel,
		Cache:          c.Cache,
		Clock:          c.Clock,
		Admins:         c.Config.Admins,
		ForwardWorkers: c.Config.SweepWorkers,
	})
	c.Sweeper = reminders.NewSweeper(reminders.Options{
		Habits:      c.Habits,
		Ledger:      c.Ledger,
		Submissions: c.Store,
		Channel:     c.Channel,
		Clock:       c.Clock,
		Workers:     c.Config.SweepWorkers,
	})
}

// Close releases the store and any connections opened by NewContext.
func (c *Context) Close() error {
	var errs []error
	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

// Background is the context commands run their operations under.
func (c *Context) Background() context.Context {
	return context.Background()
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// FormatDay renders an optional YYYY-MM-DD, using "never" when absent.
func FormatDay(day *string) string {
	if day == nil {
		return "never"
	}
	return *day
}

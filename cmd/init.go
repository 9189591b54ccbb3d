package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/quote-sync/internal/config"
	"github.com/sells-group/quote-sync/internal/engine"
	"github.com/sells-group/quote-sync/internal/resilience"
	"github.com/sells-group/quote-sync/internal/scanner"
	"github.com/sells-group/quote-sync/internal/sheet"
	"github.com/sells-group/quote-sync/internal/store"
	"github.com/sells-group/quote-sync/pkg/gdrive"
)

// initStore opens and migrates the configured store.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case "sqlite":
		dsn := c.Store.DatabaseURL
		if dsn == "" {
			dsn = "quotes.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// initDrive builds the authenticated Drive client.
func initDrive(ctx context.Context, c *config.Config) (gdrive.Client, error) {
	ts, err := gdrive.NewTokenSource(ctx, c.Drive.Auth())
	if err != nil {
		return nil, eris.Wrap(err, "init drive credentials")
	}

	retry := resilience.DefaultRetryConfig()
	if c.Drive.RetryAttempts > 0 {
		retry.MaxAttempts = c.Drive.RetryAttempts
	}
	opts := []gdrive.Option{
		gdrive.WithRetry(retry),
		gdrive.WithHTTPClient(&http.Client{Timeout: time.Duration(c.Drive.TimeoutSecs) * time.Second}),
	}
	if c.Drive.Endpoint != "" {
		opts = append(opts, gdrive.WithEndpoint(c.Drive.Endpoint))
	}
	return gdrive.NewClient(ctx, ts, opts...)
}

// initEngine wires the Drive client, scanner and optional store into an
// engine. st may be nil for read-only commands.
func initEngine(ctx context.Context, c *config.Config, st store.Store) (*engine.Engine, error) {
	client, err := initDrive(ctx, c)
	if err != nil {
		return nil, err
	}
	return newEngine(client, c, st), nil
}

func newEngine(client gdrive.Client, c *config.Config, st store.Store) *engine.Engine {
	sc := scanner.New(client, scanner.NewCache(c.Scan.CacheTTL()), scanner.WithRootNames(c.Drive.RootFolders...))
	opts := []engine.Option{
		engine.WithTempDir(c.Scan.TempDir),
		engine.WithSheet(sheet.XLSXOptions{SheetName: c.Scan.SheetName}),
	}
	if st != nil {
		opts = append(opts, engine.WithRepository(st))
	}
	return engine.New(client, sc, opts...)
}

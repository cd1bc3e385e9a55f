package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletfy/internal/adapter/repository/memory"
	"github.com/iho/walletfy/internal/app"
	"github.com/iho/walletfy/internal/domain"
	"github.com/iho/walletfy/internal/infrastructure/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		StorageBackend:   config.BackendMemory,
		SeedSampleData:   true,
		Publisher:        config.PublisherNone,
		Locale:           "en",
		Timezone:         "UTC",
		DatabaseMaxConns: 1,
	}
}

func newApp(t *testing.T, cfg *config.Config, opts app.Options) *app.App {
	t.Helper()
	if opts.Registerer == nil {
		opts.Registerer = prometheus.NewRegistry()
	}
	a, err := app.New(context.Background(), cfg, zerolog.Nop(), opts)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, err)
	return a
}

func TestNew_MemoryBackendSeedsSampleData(t *testing.T) {
	a := newApp(t, baseConfig(), app.Options{})

	assert.Len(t, a.Store.ListEvents(), 6)
	assert.Nil(t, a.Publisher)
	assert.Nil(t, a.Idempotency)

	summary := a.Balances.Summary(context.Background())
	assert.Equal(t, "3440", summary.FinalBalance.String())
}

func TestNew_FileBackendPersistsAcrossRestarts(t *testing.T) {
	cfg := baseConfig()
	cfg.StorageBackend = config.BackendFile
	cfg.DataDir = t.TempDir()
	cfg.SeedSampleData = false

	first := newApp(t, cfg, app.Options{})
	_, err := first.Store.SetInitialBalance(context.Background(), decimal.NewFromInt(42))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newApp(t, cfg, app.Options{})
	assert.Equal(t, "42", second.Store.Settings().InitialBalance.String())
	assert.Empty(t, second.Store.ListEvents())
}

func TestNew_SQLiteBackend(t *testing.T) {
	cfg := baseConfig()
	cfg.StorageBackend = config.BackendSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "ledger.db")

	a := newApp(t, cfg, app.Options{})

	assert.Len(t, a.Store.ListEvents(), 6)
	require.Contains(t, a.Checks, "sqlite")
	assert.NoError(t, a.Checks["sqlite"](context.Background()))
}

func TestNew_RedisBackendWithCacheAndPublisher(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := baseConfig()
	cfg.StorageBackend = config.BackendRedis
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.CacheEnabled = true
	cfg.Publisher = config.PublisherLog
	cfg.Locale = "es"

	a := newApp(t, cfg, app.Options{})

	require.NotNil(t, a.Publisher)
	require.NotNil(t, a.Idempotency)
	assert.True(t, mr.Exists("walletfy:state:walletfy-events"))

	months := a.Balances.MonthlyBalances(context.Background())
	require.Len(t, months, 2)
	assert.Equal(t, "enero 2025", months[0].MonthLabel)
	assert.NotEmpty(t, mr.Keys())
	assert.NoError(t, a.Checks["redis"](context.Background()))
}

func TestNew_InjectedStore(t *testing.T) {
	cfg := baseConfig()
	cfg.SeedSampleData = false

	kv := memory.NewStore()
	a := newApp(t, cfg, app.Options{KV: kv})

	_, err := a.Store.CreateEvent(context.Background(), domain.EventDraft{
		Name:   "Rent",
		Amount: decimal.NewFromInt(900),
		Date:   domain.SampleEvents()[0].Date,
		Type:   domain.EventTypeExpense,
	})
	require.NoError(t, err)

	_, err = kv.Get(context.Background(), "walletfy-events")
	assert.NoError(t, err)
}

func TestNew_RejectsUnknownLocale(t *testing.T) {
	cfg := baseConfig()
	cfg.Locale = "tlh"

	a, err := app.New(context.Background(), cfg, zerolog.Nop(), app.Options{Registerer: prometheus.NewRegistry()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedLocale)
	assert.NoError(t, a.Close())
}

func TestRun_ReturnsOnCancel(t *testing.T) {
	cfg := baseConfig()
	cfg.Publisher = config.PublisherLog
	a := newApp(t, cfg, app.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.Run(ctx))
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iho/walletfy/internal/domain"
)

// BalanceService derives monthly balances from the current ledger.
//
// Results are memoized by a fingerprint of everything that affects them,
// so they can never go stale: any change to the ledger changes the key.
// An optional shared Cache holds results across processes.
type BalanceService struct {
	reader   LedgerReader
	cache    Cache
	cacheTTL time.Duration
	recorder Recorder
	logger   zerolog.Logger

	locale   domain.Locale
	location *time.Location

	group singleflight.Group

	mu       sync.Mutex
	lastKey  string
	lastRows []domain.MonthlyBalance
}

// BalanceOption configures a BalanceService.
type BalanceOption func(*BalanceService)

// WithBalanceCache stores computed months in cache for ttl.
func WithBalanceCache(cache Cache, ttl time.Duration) BalanceOption {
	return func(s *BalanceService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithBalanceLocale sets the language of month labels.
func WithBalanceLocale(locale domain.Locale) BalanceOption {
	return func(s *BalanceService) {
		s.locale = locale
	}
}

// WithBalanceLocation sets the time zone months are grouped in.
func WithBalanceLocation(loc *time.Location) BalanceOption {
	return func(s *BalanceService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithBalanceRecorder sets the metrics recorder.
func WithBalanceRecorder(r Recorder) BalanceOption {
	return func(s *BalanceService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithBalanceLogger sets the logger.
func WithBalanceLogger(logger zerolog.Logger) BalanceOption {
	return func(s *BalanceService) {
		s.logger = logger
	}
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(reader LedgerReader, opts ...BalanceOption) *BalanceService {
	s := &BalanceService{
		reader:   reader,
		cacheTTL: DefaultBalanceCacheTTL,
		recorder: nopRecorder{},
		logger:   zerolog.Nop(),
		locale:   domain.LocaleEnglish,
		location: time.UTC,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// MonthlyBalances returns every month that has at least one event, oldest first.
// The result is shared; callers must not modify it.
func (s *BalanceService) MonthlyBalances(ctx context.Context) []domain.MonthlyBalance {
	return s.monthsFor(ctx, s.reader.Snapshot())
}

// Search filters months by label. With fill set, months without events
// between the first and last month are included before filtering.
func (s *BalanceService) Search(ctx context.Context, query string, fill bool) []domain.MonthlyBalance {
	months := s.MonthlyBalances(ctx)
	if fill {
		months = domain.FillEmptyMonths(months, s.aggregateOptions()...)
	}
	return domain.FilterByMonthLabel(months, query)
}

// Summary totals the whole ledger from a single snapshot.
func (s *BalanceService) Summary(ctx context.Context) domain.LedgerSummary {
	state := s.reader.Snapshot()
	return domain.Summarize(state.Settings.InitialBalance, s.monthsFor(ctx, state))
}

func (s *BalanceService) aggregateOptions() []domain.AggregateOption {
	return []domain.AggregateOption{
		domain.WithLocale(s.locale),
		domain.WithLocation(s.location),
	}
}

func (s *BalanceService) monthsFor(ctx context.Context, state domain.LedgerState) []domain.MonthlyBalance {
	key := s.fingerprint(state)

	s.mu.Lock()
	if key == s.lastKey {
		rows := s.lastRows
		s.mu.Unlock()
		return rows
	}
	s.mu.Unlock()

	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.compute(ctx, key, state), nil
	})
	rows := v.([]domain.MonthlyBalance)

	s.mu.Lock()
	s.lastKey, s.lastRows = key, rows
	s.mu.Unlock()

	return rows
}

func (s *BalanceService) compute(ctx context.Context, key string, state domain.LedgerState) []domain.MonthlyBalance {
	if rows, ok := s.fromCache(ctx, key); ok {
		return rows
	}

	start := time.Now()
	rows := domain.ComputeMonthlyBalances(state.Events, state.Settings.InitialBalance, s.aggregateOptions()...)
	s.recorder.AggregationComputed(time.Since(start), len(rows))

	s.toCache(ctx, key, rows)

	return rows
}

func (s *BalanceService) fromCache(ctx context.Context, key string) ([]domain.MonthlyBalance, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("balance cache read failed")
		}
		s.recorder.CacheLookup(false)
		return nil, false
	}

	var rows []domain.MonthlyBalance
	if err := json.Unmarshal(data, &rows); err != nil {
		s.logger.Warn().Err(err).Msg("discarding undecodable cached balances")
		s.recorder.CacheLookup(false)
		return nil, false
	}

	s.recorder.CacheLookup(true)
	return rows, true
}

func (s *BalanceService) toCache(ctx context.Context, key string, rows []domain.MonthlyBalance) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(rows)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encode balances for cache")
		return
	}

	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("balance cache write failed")
	}
}

// fingerprint hashes the ledger together with the grouping options.
func (s *BalanceService) fingerprint(state domain.LedgerState) string {
	d := xxhash.New()

	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = d.WriteString(p)
			_, _ = d.Write([]byte{0})
		}
	}

	write(s.locale.String(), s.location.String(), state.Settings.InitialBalance.String())

	for _, e := range state.Events {
		write(
			e.ID,
			e.Name,
			e.Description,
			e.Amount.String(),
			e.Date.UTC().Format(time.RFC3339Nano),
			string(e.Type),
			e.Attachment,
		)
	}

	return balanceCacheKeyPrefix + strconv.FormatUint(d.Sum64(), 16)
}

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// RecentLimit is how many transactions the dashboard shows.
const RecentLimit = 5

// AnalyticsReader is the slice of storage the analytics side needs.
type AnalyticsReader interface {
	storage.TransactionReader
	storage.CategoryStore
}

// Dashboard is the landing-page summary for one user.
type Dashboard struct {
	Totals     analytics.Totals     `json:"totals"`
	Breakdown  []analytics.PieSlice `json:"breakdown"`
	Recent     []core.Transaction   `json:"recent"`
	Categories []string             `json:"categories"`
}

// AnalyticsService builds reports from one snapshot per user and caches
// them until the user writes again or the TTL runs out.
type AnalyticsService struct {
	reader AnalyticsReader
	cache  cache.Cache[int64, analytics.Report]
	opts   analytics.Options
	logger *log.Logger
	now    func() time.Time

	group singleflight.Group

	mu          sync.Mutex
	generations map[int64]uint64
}

func NewAnalyticsService(reader AnalyticsReader, reports cache.Cache[int64, analytics.Report], opts analytics.Options, logger *log.Logger) *AnalyticsService {
	if logger == nil {
		logger = log.Discard()
	}
	return &AnalyticsService{
		reader:      reader,
		cache:       reports,
		opts:        opts,
		logger:      logger.WithComponent(log.ComponentAnalytics),
		now:         time.Now,
		generations: make(map[int64]uint64),
	}
}

// ReportCost sizes a cached report by the rows behind it.
func ReportCost(r analytics.Report) int64 {
	return int64(1 + r.Totals.Count)
}

func (s *AnalyticsService) generation(userID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

// Invalidate drops the cached report. A build already in flight for the
// user will not store its result, and later calls start a new build instead
// of joining it.
func (s *AnalyticsService) Invalidate(userID int64) {
	s.mu.Lock()
	s.generations[userID]++
	s.mu.Unlock()
	if s.cache != nil {
		s.cache.Delete(userID)
	}
}

// Report returns the full analytics report for userID as of today.
func (s *AnalyticsService) Report(ctx context.Context, userID int64) (analytics.Report, error) {
	start := time.Now()
	sl := log.NewStructuredLogger(s.logger)

	if s.cache != nil {
		if r, ok := s.cache.Get(userID); ok {
			sl.LogReportBuilt(ctx, userID, r.Totals.Count, true, time.Since(start))
			return r, nil
		}
	}

	gen := s.generation(userID)
	v, err, _ := s.group.Do(fmt.Sprintf("%d:%d", userID, gen), func() (any, error) {
		r, err := s.build(ctx, userID)
		if err != nil {
			return analytics.Report{}, err
		}
		if s.cache != nil && s.generation(userID) == gen {
			s.cache.Set(userID, r)
		}
		return r, nil
	})
	if err != nil {
		return analytics.Report{}, err
	}

	r := v.(analytics.Report)
	sl.LogReportBuilt(ctx, userID, r.Totals.Count, false, time.Since(start))
	return r, nil
}

func (s *AnalyticsService) build(ctx context.Context, userID int64) (analytics.Report, error) {
	txs, err := s.reader.FetchTransactions(ctx, userID)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	snap := analytics.NewSnapshot(txs, core.DateOf(s.now()))
	return analytics.Build(snap, s.opts), nil
}

func (s *AnalyticsService) Insights(ctx context.Context, userID int64) ([]analytics.Insight, error) {
	r, err := s.Report(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.Insights, nil
}

// Dashboard loads the report, recent rows and categories concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID int64) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := s.Report(gctx, userID)
		if err != nil {
			return err
		}
		d.Totals = r.Totals
		d.Breakdown = r.ExpensePie
		return nil
	})
	g.Go(func() error {
		recent, err := s.reader.RecentTransactions(gctx, userID, RecentLimit)
		if err != nil {
			return fmt.Errorf("recent transactions: %w", err)
		}
		d.Recent = recent
		return nil
	})
	g.Go(func() error {
		cats, err := s.reader.FetchCategories(gctx, userID)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		d.Categories = cats
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/lender-qualify/internal/criteria"
	"github.com/sells-group/lender-qualify/internal/model"
)

const cacheKeyPrefix = "qualify:catalog:"

// SnapshotRecorder persists a record of each load from the source.
type SnapshotRecorder interface {
	SaveCatalogSnapshot(ctx context.Context, snap *model.CatalogSnapshot) error
}

// ServiceConfig wires optional collaborators into a Service.
type ServiceConfig struct {
	Cache     Cache
	Snapshots SnapshotRecorder
	// TTL bounds the in-process copy. Zero keeps it until Refresh.
	TTL time.Duration
	Now func() time.Time
}

// Service hands out the current lender catalog. The returned slice is shared
// and must not be modified.
type Service struct {
	loader    Loader
	cache     Cache
	snapshots SnapshotRecorder
	ttl       time.Duration
	now       func() time.Time
	group     singleflight.Group

	mu       sync.RWMutex
	lenders  []model.LenderCriteria
	loadedAt time.Time
}

// NewService creates a Service reading from loader.
func NewService(loader Loader, cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		loader:    loader,
		cache:     cfg.Cache,
		snapshots: cfg.Snapshots,
		ttl:       cfg.TTL,
		now:       now,
	}
}

// Load returns the catalog from memory, then the cache, then the source.
func (s *Service) Load(ctx context.Context) ([]model.LenderCriteria, error) {
	if lenders, ok := s.fresh(); ok {
		return lenders, nil
	}

	if s.cache != nil {
		lenders, ok, err := s.cache.Get(ctx, s.cacheKey())
		switch {
		case err != nil:
			zap.L().Warn("catalog: cache read failed", zap.String("source", s.loader.Name()), zap.Error(err))
		case ok:
			zap.L().Debug("catalog: loaded from cache", zap.Int("lenders", len(lenders)))
			s.remember(lenders)
			return lenders, nil
		}
	}

	return s.loadSource(ctx)
}

// Refresh reloads the catalog from the source, bypassing every cache.
func (s *Service) Refresh(ctx context.Context) ([]model.LenderCriteria, error) {
	return s.loadSource(ctx)
}

// LoadedAt reports when the in-process copy was last filled.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *Service) fresh() ([]model.LenderCriteria, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lenders == nil {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(s.loadedAt) >= s.ttl {
		return nil, false
	}
	return s.lenders, true
}

func (s *Service) remember(lenders []model.LenderCriteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lenders = lenders
	s.loadedAt = s.now()
}

func (s *Service) cacheKey() string {
	return cacheKeyPrefix + s.loader.Name()
}

// loadSource collapses concurrent source reads into one.
func (s *Service) loadSource(ctx context.Context) ([]model.LenderCriteria, error) {
	v, err, _ := s.group.Do("source", func() (any, error) {
		return s.readSource(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.LenderCriteria), nil
}

func (s *Service) readSource(ctx context.Context) ([]model.LenderCriteria, error) {
	start := s.now()
	rows, err := s.loader.Rows(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: load %s", s.loader.Name())
	}

	lenders := criteria.ParseRows(rows)
	dataRows := len(rows) - 1
	if dataRows < 0 {
		dataRows = 0
	}
	skipped := dataRows - len(lenders)

	log := zap.L().With(zap.String("source", s.loader.Name()))
	log.Info("catalog: loaded from source",
		zap.Int("rows", dataRows),
		zap.Int("lenders", len(lenders)),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", s.now().Sub(start)),
	)

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cacheKey(), lenders); err != nil {
			log.Warn("catalog: cache write failed", zap.Error(err))
		}
	}
	if s.snapshots != nil {
		snap := &model.CatalogSnapshot{
			ID:          uuid.New().String(),
			Source:      s.loader.Name(),
			RowCount:    dataRows,
			SkippedRows: skipped,
			Lenders:     lenders,
			LoadedAt:    s.now().UTC(),
		}
		if err := s.snapshots.SaveCatalogSnapshot(ctx, snap); err != nil {
			log.Warn("catalog: snapshot save failed", zap.Error(err))
		}
	}

	s.remember(lenders)
	return lenders, nil
}

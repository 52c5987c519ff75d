package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lender-qualify/internal/catalog"
	"github.com/sells-group/lender-qualify/internal/config"
	"github.com/sells-group/lender-qualify/internal/fetcher"
	"github.com/sells-group/lender-qualify/internal/qualify"
	"github.com/sells-group/lender-qualify/internal/resilience"
	"github.com/sells-group/lender-qualify/internal/store"
)

// initStore opens and migrates the configured store.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	if err := c.Validate("store"); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, c.Store.Driver, c.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: c.Store.MaxConns,
		MinConns: c.Store.MinConns,
	})
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// catalogEnv bundles the catalog service with the resources it holds.
type catalogEnv struct {
	Service *catalog.Service
	redis   *catalog.RedisCache
}

// Close releases the Redis connection, if any.
func (e *catalogEnv) Close() {
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			zap.L().Warn("close redis cache", zap.Error(err))
		}
	}
}

// initCatalog builds the catalog service from config. snapshots may be nil.
func initCatalog(ctx context.Context, c *config.Config, snapshots catalog.SnapshotRecorder) (*catalogEnv, error) {
	if err := c.Validate("catalog"); err != nil {
		return nil, err
	}

	dl := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.Fetch.UserAgent,
		Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		RatePerSec: c.Fetch.RatePerSec,
		Retry:      resilience.FromSettings(c.Fetch.MaxRetries, c.Fetch.InitialBackoffMs),
	})
	src := catalog.NewSource(c.Catalog.Source, catalog.Format(c.Catalog.Format), fetcher.XLSXOptions{
		SheetName:  c.Catalog.SheetName,
		SheetIndex: c.Catalog.SheetIndex,
	}, dl)

	ttl := time.Duration(c.Catalog.CacheTTLMins) * time.Minute
	env := &catalogEnv{}
	svcCfg := catalog.ServiceConfig{TTL: ttl, Snapshots: snapshots}

	if c.Catalog.RedisURL != "" {
		rc, err := catalog.DialRedisCache(ctx, c.Catalog.RedisURL, ttl)
		if err != nil {
			// The source is still reachable, so run without the shared cache.
			zap.L().Warn("redis cache unavailable", zap.Error(err))
		} else {
			env.redis = rc
			svcCfg.Cache = rc
		}
	}

	env.Service = catalog.NewService(src, svcCfg)
	return env, nil
}

func fundingPolicy(c *config.Config) qualify.FundingPolicy {
	return qualify.FundingPolicy{
		RevenueMultiplier: c.Funding.RevenueMultiplier,
		UnlimitedCeiling:  c.Funding.UnlimitedCeiling,
	}
}

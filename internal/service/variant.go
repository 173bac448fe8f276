package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/repository"
)

// VariantService serves variant categories and the variant facet map.
type VariantService struct {
	repo     repository.VariantRepository
	cache    repository.VariantOptionsCache
	cacheTTL time.Duration
	metrics  *Metrics
	logger   *slog.Logger
}

// NewVariantService creates a new variant service. cache may be nil, in
// which case every Options call reads the database.
func NewVariantService(
	repo repository.VariantRepository,
	cache repository.VariantOptionsCache,
	cacheTTL time.Duration,
	metrics *Metrics,
	logger *slog.Logger,
) *VariantService {
	return &VariantService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
		logger:   logger,
	}
}

// ListActive returns the active variant categories ordered by title.
func (s *VariantService) ListActive(ctx context.Context) ([]domain.Variant, error) {
	variants, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active variants: %w", err)
	}
	return variants, nil
}

// Options returns, for every active variant, the sorted distinct values
// recorded under it. A cache failure falls back to the database.
func (s *VariantService) Options(ctx context.Context) (domain.VariantOptions, error) {
	var (
		gen      int64
		cacheErr error
	)
	if s.cache != nil {
		var (
			opts domain.VariantOptions
			ok   bool
		)
		opts, gen, ok, cacheErr = s.cache.Get(ctx)
		switch {
		case cacheErr != nil:
			s.metrics.optionsLookup("error")
			s.logger.WarnContext(ctx, "variant options cache read failed",
				slog.String("error", cacheErr.Error()),
			)
		case ok:
			s.metrics.optionsLookup("hit")
			return opts, nil
		default:
			s.metrics.optionsLookup("miss")
		}
	}

	opts, err := s.repo.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute variant options: %w", err)
	}

	// The map is stored under the generation observed before the read, so
	// an invalidation that raced with it retires this entry.
	if s.cache != nil && cacheErr == nil {
		if err := s.cache.Set(ctx, gen, opts, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "variant options cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}
	return opts, nil
}

// InvalidateOptions retires the cached facet map. Failures are logged only;
// the entry still expires after the cache TTL.
func (s *VariantService) InvalidateOptions(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate variant options cache",
			slog.String("error", err.Error()),
		)
	}
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
)

// catalogGateway is the slice of the backend client the catalog depends on.
type catalogGateway interface {
	ActiveBatches(ctx context.Context) ([]models.Batch, error)
	PromotedCourses(ctx context.Context) ([]models.PromotedCourse, error)
	Instructors(ctx context.Context) ([]models.Instructor, error)
}

// CatalogService serves the public landing-page data. Everything here is
// identical for every visitor, so responses are cached and the second return
// value reports cache utilisation.
type CatalogService struct {
	upstream catalogGateway
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
}

func NewCatalogService(gateway catalogGateway, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogService{upstream: gateway, cache: cache, ttl: ttl, logger: logger}
}

// ActiveBatches lists batches open for enrollment payments.
func (s *CatalogService) ActiveBatches(ctx context.Context) ([]models.Batch, bool, error) {
	var cached []models.Batch
	if hit, _ := s.cache.Get(ctx, "catalog:batches", &cached); hit {
		return cached, true, nil
	}
	batches, err := s.upstream.ActiveBatches(ctx)
	if err != nil {
		return nil, false, s.unreachable("active batches", err)
	}
	if batches == nil {
		batches = []models.Batch{}
	}
	s.persist(ctx, "catalog:batches", batches)
	return batches, false, nil
}

// PromotedCourses lists the promoted courses for the guest landing page.
func (s *CatalogService) PromotedCourses(ctx context.Context) ([]models.PromotedCourse, bool, error) {
	var cached []models.PromotedCourse
	if hit, _ := s.cache.Get(ctx, "catalog:promos", &cached); hit {
		return cached, true, nil
	}
	courses, err := s.upstream.PromotedCourses(ctx)
	if err != nil {
		return nil, false, s.unreachable("promoted courses", err)
	}
	if courses == nil {
		courses = []models.PromotedCourse{}
	}
	s.persist(ctx, "catalog:promos", courses)
	return courses, false, nil
}

// Instructors lists public instructor profiles.
func (s *CatalogService) Instructors(ctx context.Context) ([]models.Instructor, bool, error) {
	var cached []models.Instructor
	if hit, _ := s.cache.Get(ctx, "catalog:instructors", &cached); hit {
		return cached, true, nil
	}
	instructors, err := s.upstream.Instructors(ctx)
	if err != nil {
		return nil, false, s.unreachable("instructors", err)
	}
	if instructors == nil {
		instructors = []models.Instructor{}
	}
	s.persist(ctx, "catalog:instructors", instructors)
	return instructors, false, nil
}

// Invalidate drops all cached catalog payloads.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, "catalog:*")
}

func (s *CatalogService) persist(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CatalogService) unreachable(what string, err error) error {
	s.logger.Warn("catalog fetch failed", zap.String("resource", what), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrUpstreamUnreachable.Code, appErrors.ErrUpstreamUnreachable.Status, appErrors.ErrUpstreamUnreachable.Message)
}

package user

import (
	"context"
	"errors"

	domain "github.com/AgroMunicipal/CitizenAssistant/pkg/domain/user"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidCacheType = errors.New("invalid type assertion for profile model")

//go:generate mockery --name=Finder --dir=. --output=./mocks --filename=profile_finder_mock.go --case=underscore
type Finder interface {
	Find(ctx context.Context, actorID string) (*domain.Profile, error)
}

type finder struct {
	directory   domain.Directory
	cache       cache.Client
	memoryCache *cache.TTLMap
	logger      *logrus.Logger
	sf          singleflight.Group
}

// NewFinder looks profiles up in memory, then in the distributed cache when
// c is non-nil, then in the directory.
func NewFinder(
	directory domain.Directory,
	c cache.Client,
	memoryCache *cache.TTLMap,
	logger *logrus.Logger,
) Finder {
	return &finder{
		directory:   directory,
		cache:       c,
		memoryCache: memoryCache,
		logger:      logger,
	}
}

func (f *finder) Find(ctx context.Context, actorID string) (*domain.Profile, error) {
	if entity, err := f.getFromMemoryCache(actorID); err == nil {
		return entity, nil
	} else if errors.Is(err, ErrInvalidCacheType) {
		f.logger.WithError(err).Debug("memory cache read profile failure")
	}

	v, err, _ := f.sf.Do(actorID, func() (interface{}, error) {
		if f.cache != nil {
			if cached, err := f.cache.GetProfile(ctx, actorID); err == nil && cached != nil {
				f.memoryCache.Set(actorID, cached)
				return cached, nil
			} else if err != nil {
				f.logger.WithError(err).Debug("distributed cache read profile miss")
			}
		}

		entity, err := f.directory.GetUser(ctx, actorID)
		if err != nil {
			return nil, err
		}
		f.save(ctx, actorID, entity)
		return entity, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Profile), nil
}

func (f *finder) getFromMemoryCache(actorID string) (*domain.Profile, error) {
	cachedValue, found := f.memoryCache.Get(actorID)
	if !found {
		return nil, errors.New("profile not found in memory cache")
	}
	entity, ok := cachedValue.(*domain.Profile)
	if !ok {
		return nil, ErrInvalidCacheType
	}
	return entity, nil
}

func (f *finder) save(ctx context.Context, actorID string, entity *domain.Profile) {
	f.memoryCache.Set(actorID, entity)
	if f.cache == nil {
		return
	}
	if err := f.cache.SaveProfile(ctx, entity); err != nil {
		f.logger.WithError(err).Warn("failed to save profile to distributed cache")
	}
}

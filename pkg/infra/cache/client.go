package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/user"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	ProfileKeyPattern = "assistant:profile:%s"

	ProfileTTLName = "profile"

	defaultProfileTTL = 10 * time.Minute
)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	RedisClient() *redis.Client
	CreateTTLMap(name string, ttl time.Duration) *TTLMap
	GetTTLMap(name string) *TTLMap
	ClearAllTTLMaps()

	GetProfile(ctx context.Context, actorID string) (*user.Profile, error)
	SaveProfile(ctx context.Context, profile *user.Profile) error
}

type Config struct {
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	TLS        bool          `mapstructure:"tls"`
	ProfileTTL time.Duration `mapstructure:"profile_ttl"`
}

type client struct {
	redisClient *redis.Client
	ttlMaps     sync.Map
	profileTTL  time.Duration
}

func NewClient(config Config, logger *logrus.Logger) (Client, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	redisClient := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	return NewClientFromRedis(redisClient, config.ProfileTTL), nil
}

// NewClientFromRedis wraps an existing connection without pinging it.
func NewClientFromRedis(redisClient *redis.Client, profileTTL time.Duration) Client {
	if profileTTL <= 0 {
		profileTTL = defaultProfileTTL
	}
	return &client{
		redisClient: redisClient,
		profileTTL:  profileTTL,
	}
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	return c.redisClient.Get(ctx, key).Result()
}

func (c *client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.redisClient.Set(ctx, key, value, expiration).Err()
}

func (c *client) Delete(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, key).Err()
}

func (c *client) RedisClient() *redis.Client {
	return c.redisClient
}

func (c *client) CreateTTLMap(name string, ttl time.Duration) *TTLMap {
	ttlMap := NewTTLMap(ttl)
	actual, _ := c.ttlMaps.LoadOrStore(name, ttlMap)
	return actual.(*TTLMap)
}

func (c *client) GetTTLMap(name string) *TTLMap {
	if value, ok := c.ttlMaps.Load(name); ok {
		if ttlMap, ok := value.(*TTLMap); ok {
			return ttlMap
		}
	}
	return nil
}

func (c *client) ClearAllTTLMaps() {
	c.ttlMaps.Range(func(_, value interface{}) bool {
		if ttlMap, ok := value.(*TTLMap); ok {
			ttlMap.Clear()
		}
		return true
	})
}

func (c *client) GetProfile(ctx context.Context, actorID string) (*user.Profile, error) {
	res, err := c.Get(ctx, fmt.Sprintf(ProfileKeyPattern, actorID))
	if err != nil {
		return nil, err
	}
	profile := new(user.Profile)
	if err := json.Unmarshal([]byte(res), profile); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}
	return profile, nil
}

func (c *client) SaveProfile(ctx context.Context, profile *user.Profile) error {
	b, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.Set(ctx, fmt.Sprintf(ProfileKeyPattern, profile.ID), string(b), c.profileTTL)
}

package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/carscout/carscout/internal/entities"
	gocache "github.com/patrickmn/go-cache"
)

type userDirectory interface {
	GetOrCreate(ctx context.Context, telegramID int64, username, firstName, lastName string) (*entities.User, error)
	NotificationsEnabled(ctx context.Context, telegramID int64) (bool, error)
	SetNotificationsEnabled(ctx context.Context, telegramID int64, enabled bool) error
}

// CachedUsers keeps the per-user opt-out flag in memory so the processor does
// not hit the database once per listing.
type CachedUsers struct {
	repo  userDirectory
	cache *gocache.Cache
}

func NewCachedUsers(repo userDirectory) *CachedUsers {
	return &CachedUsers{repo: repo, cache: gocache.New(10*time.Minute, 20*time.Minute)}
}

func (c *CachedUsers) GetOrCreate(ctx context.Context, telegramID int64, username, firstName,
	lastName string) (*entities.User, error) {
	return c.repo.GetOrCreate(ctx, telegramID, username, firstName, lastName)
}

func (c *CachedUsers) NotificationsEnabled(ctx context.Context, telegramID int64) (bool, error) {
	key := strconv.FormatInt(telegramID, 10)
	if value, found := c.cache.Get(key); found {
		return value.(bool), nil
	}

	enabled, err := c.repo.NotificationsEnabled(ctx, telegramID)
	if err != nil {
		return false, err
	}
	if err = c.cache.Add(key, enabled, gocache.DefaultExpiration); err != nil {
		return enabled, err
	}
	return enabled, nil
}

func (c *CachedUsers) SetNotificationsEnabled(ctx context.Context, telegramID int64, enabled bool) error {
	err := c.repo.SetNotificationsEnabled(ctx, telegramID, enabled)
	if err == nil {
		c.cache.Delete(strconv.FormatInt(telegramID, 10))
	}
	return err
}

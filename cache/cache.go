package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// Cache holds smart query answers. Every committed transaction may change
// any answer, so callers Reset it after each commit.
type Cache struct {
	Cache ICache
}

type ICache interface {
	Set(key string, entry []byte) error

	Get(key string) ([]byte, error)

	Reset() error

	Stats() Stats
}

type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

func NewLocalCache(allKeysExpTime time.Duration) (*Cache, error) {
	cache, err := NewBigCache(allKeysExpTime)
	if err != nil {
		return nil, err
	}
	return &Cache{Cache: cache}, nil
}

func QueryKey(contract string, msg []byte) string {
	h := sha256.Sum256(msg)
	return contract + "/" + hex.EncodeToString(h[:])
}

// GetQuery returns the cached answer; ok is false on a miss.
func (c *Cache) GetQuery(contract string, msg []byte) (res []byte, ok bool) {
	res, err := c.Cache.Get(QueryKey(contract, msg))
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			log.Warn("cache get failed", "err", err)
		}
		return nil, false
	}
	return res, true
}

func (c *Cache) SetQuery(contract string, msg, res []byte) {
	if err := c.Cache.Set(QueryKey(contract, msg), res); err != nil {
		log.Warn("cache set failed", "err", err)
	}
}

func (c *Cache) Reset() error {
	return c.Cache.Reset()
}

func (c *Cache) Stats() Stats {
	return c.Cache.Stats()
}

package cache

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"xmr_faucet_back/models"
)

type cachedBalance struct {
	Balance   models.Balance
	Timestamp time.Time
}

// BalanceCache keeps the last wallet balance for a short time so that polling
// front-ends do not hit the wallet daemon on every request.
type BalanceCache struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	cached *cachedBalance
	gen    uint64
}

// NewBalanceCache returns a cache that holds a balance for ttl. A zero ttl disables caching.
func NewBalanceCache(ttl time.Duration) *BalanceCache {
	return &BalanceCache{ttl: ttl, now: time.Now}
}

// GetCachedBalance returns the cached balance, or false if there is none or it expired.
func (c *BalanceCache) GetCachedBalance() (models.Balance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached == nil || c.ttl <= 0 {
		return models.Balance{}, false
	}
	if c.now().Sub(c.cached.Timestamp) > c.ttl {
		return models.Balance{}, false
	}
	return c.cached.Balance, true
}

// Generation must be read before fetching the balance that is later passed to
// SetCachedBalance.
func (c *BalanceCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetCachedBalance stores b unless the cache was invalidated since gen was read.
func (c *BalanceCache) SetCachedBalance(b models.Balance, gen uint64) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		logrus.Debug("balance read raced with invalidation, not cached")
		return
	}
	c.cached = &cachedBalance{Balance: b, Timestamp: c.now()}
}

// Invalidate drops the cached balance, e.g. after funds left the wallet.
func (c *BalanceCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil {
		logrus.Debug("balance cache invalidated")
	}
	c.cached = nil
	c.gen++
}

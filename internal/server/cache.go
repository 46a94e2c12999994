package server

import (
	"encoding/hex"
	"strconv"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/fathom-metrics/quantale/pkg/quantale/prefix"
	"github.com/fathom-metrics/quantale/pkg/quantale/unit"
)

// unitCache memoises unit.Parse results by a blake2b digest of the
// expression plus prefix family, the content-addressed analogue of the
// "driver:dsn" cache keys the registry uses for pooled SQL connections.
type unitCache struct {
	mu sync.RWMutex
	m  map[string]unit.DimensionalUnit
}

func newUnitCache() *unitCache {
	return &unitCache{m: map[string]unit.DimensionalUnit{}}
}

func cacheKey(expression string, family prefix.Family) string {
	sum := blake2b.Sum256([]byte(strconv.Itoa(int(family)) + ":" + expression))
	return hex.EncodeToString(sum[:])
}

// parseCached parses expression with ParseWith, serving a cached result
// when the same expression/family pair has been seen before.
func (c *unitCache) parseCached(expression string, family prefix.Family) (unit.DimensionalUnit, error) {
	key := cacheKey(expression, family)

	c.mu.RLock()
	if u, ok := c.m[key]; ok {
		c.mu.RUnlock()
		return u, nil
	}
	c.mu.RUnlock()

	u, err := unit.ParseWith(expression, family)
	if err != nil {
		return unit.DimensionalUnit{}, err
	}

	c.mu.Lock()
	c.m[key] = u
	c.mu.Unlock()
	return u, nil
}

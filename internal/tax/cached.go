package tax

import (
	"strconv"
	"strings"
	"time"

	"budget/internal/cache"
	"budget/internal/metrics"
)

// Cached memoizes net salary computations of an Engine. Results are identical
// to the wrapped engine because the engine is pure.
type Cached struct {
	*Engine
	results *cache.LRUCache[Breakdown]
}

func NewCached(e *Engine, size int, ttl time.Duration) *Cached {
	return &Cached{
		Engine:  e,
		results: cache.NewLRUCache[Breakdown](size, ttl),
	}
}

func (c *Cached) CalculateNetSalary(gross float64, age int, opts ...Option) Breakdown {
	d := ResolveOptions(opts...)
	key := cacheKey(gross, age, d)
	if b, ok := c.results.Get(key); ok {
		return b
	}
	b := c.Engine.calculate(gross, age, d)
	c.results.Set(key, b)
	return b
}

// CleanExpired lets a cache.Manager evict stale results.
func (c *Cached) CleanExpired() int {
	n := c.results.CleanExpired()
	metrics.TaxCacheEvictions.Add(float64(n))
	return n
}

func (c *Cached) Stats() cache.Stats {
	return c.results.Stats()
}

func cacheKey(gross float64, age int, d Deductions) string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(gross, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(age))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(d.Pension, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(d.TravelAllowance, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(d.Annual))
	return b.String()
}

// cache.go — кэш построенного timeline.
// Обёртка над hashicorp/golang-lru/v2/expirable с поколениями:
// любая запись в Record Store увеличивает поколение, и результат,
// построенный до инвалидации, в кэш уже не попадёт.
package service

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/memory-timeline/internal/domain/model"
)

// timelineKey — единственный ключ кэша: timeline строится целиком.
const timelineKey = "timeline"

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mt_timeline_cache_hits_total",
		Help: "Общее количество попаданий в кэш timeline.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mt_timeline_cache_misses_total",
		Help: "Общее количество промахов кэша timeline.",
	})
)

// timelineEntry — закэшированный timeline и поколение, в котором он построен.
type timelineEntry struct {
	generation uint64
	groups     []model.MonthGroup
}

// TimelineCache — кэш timeline с TTL.
// nil *TimelineCache допустим и означает «кэш отключён».
type TimelineCache struct {
	cache      *expirable.LRU[string, timelineEntry]
	generation atomic.Uint64
}

// NewTimelineCache создаёт кэш с указанным TTL.
// При ttl <= 0 возвращает nil (кэш отключён).
func NewTimelineCache(ttl time.Duration) *TimelineCache {
	if ttl <= 0 {
		return nil
	}
	return &TimelineCache{
		cache: expirable.NewLRU[string, timelineEntry](1, nil, ttl),
	}
}

// Generation возвращает текущее поколение данных.
func (c *TimelineCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	return c.generation.Load()
}

// Get возвращает timeline текущего поколения.
// Обновляет Prometheus-метрики hit/miss.
func (c *TimelineCache) Get() ([]model.MonthGroup, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.cache.Get(timelineKey)
	if ok && entry.generation == c.generation.Load() {
		cacheHitsTotal.Inc()
		return entry.groups, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set сохраняет timeline, построенный в поколении generation.
// Если с тех пор была инвалидация, значение отбрасывается.
func (c *TimelineCache) Set(generation uint64, groups []model.MonthGroup) {
	if c == nil || generation != c.generation.Load() {
		return
	}
	c.cache.Add(timelineKey, timelineEntry{generation: generation, groups: groups})
}

// Invalidate сбрасывает кэш после изменения записей.
func (c *TimelineCache) Invalidate() {
	if c == nil {
		return
	}
	c.generation.Add(1)
	c.cache.Remove(timelineKey)
}

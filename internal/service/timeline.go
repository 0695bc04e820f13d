// timeline.go — Timeline Aggregator: группировка воспоминаний по месяцам
// в обратном хронологическом порядке.
package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bigkaa/memory-timeline/internal/domain/model"
)

// MemoryLister — источник полного списка записей для timeline.
// Реализуется MemoryService.
type MemoryLister interface {
	ListAll(ctx context.Context) ([]*model.Memory, error)
}

// TimelineService — построение timeline из плоского списка записей.
// Только читает записи.
type TimelineService struct {
	store  MemoryLister
	cache  *TimelineCache
	logger *slog.Logger
}

// NewTimelineService создаёт сервис timeline. cache может быть nil.
func NewTimelineService(store MemoryLister, cache *TimelineCache, logger *slog.Logger) *TimelineService {
	return &TimelineService{
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "timeline_service")),
	}
}

// BuildTimeline возвращает группы месяцев в порядке убывания дат.
// Пустой набор записей даёт пустой (не nil) срез групп.
func (s *TimelineService) BuildTimeline(ctx context.Context) ([]model.MonthGroup, error) {
	if groups, ok := s.cache.Get(); ok {
		return groups, nil
	}
	generation := s.cache.Generation()

	start := time.Now()
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("построение timeline: %w", err)
	}

	SortForTimeline(records)
	groups := GroupByMonth(records)
	timelineBuildDuration.Observe(time.Since(start).Seconds())

	s.cache.Set(generation, groups)

	s.logger.Debug("Timeline построен",
		slog.Int("records", len(records)),
		slog.Int("months", len(groups)),
	)
	return groups, nil
}

// SortForTimeline сортирует записи по дате по убыванию.
// Записи с одинаковой датой: сначала созданные позже (CreatedAt по убыванию),
// затем по ID по убыванию — порядок полностью детерминирован.
func SortForTimeline(records []*model.Memory) {
	slices.SortStableFunc(records, func(a, b *model.Memory) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

// GroupByMonth группирует подряд идущие записи с одинаковым ключом месяца.
// Порядок групп — порядок первого появления ключа при проходе по срезу,
// повторная сортировка групп не выполняется. Если вход не отсортирован
// по дате, один месяц может дать несколько отдельных групп.
func GroupByMonth(records []*model.Memory) []model.MonthGroup {
	groups := make([]model.MonthGroup, 0)
	for _, m := range records {
		key := m.MonthKey()
		if n := len(groups); n > 0 && groups[n-1].Month == key {
			groups[n-1].Events = append(groups[n-1].Events, m.ToEvent())
			continue
		}
		groups = append(groups, model.MonthGroup{
			Month:  key,
			Events: []model.TimelineEvent{m.ToEvent()},
		})
	}
	return groups
}

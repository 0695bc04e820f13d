// Пакет seed — загрузка демонстрационных воспоминаний.
// Записи создаются через сервисный слой, поэтому проходят ту же валидацию
// и нормализацию изображений, что и запросы API.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/bigkaa/memory-timeline/internal/domain/model"
	"github.com/bigkaa/memory-timeline/internal/service"
)

// MemoryWriter — операции записи, нужные для seed. Реализуется service.MemoryService.
type MemoryWriter interface {
	Create(ctx context.Context, in service.CreateInput) (*model.Memory, error)
	SetFavorite(ctx context.Context, id string, favorite bool) error
	Reset(ctx context.Context) (int64, error)
}

// Options — параметры загрузки.
type Options struct {
	// Count — количество записей; 0 — весь набор демо-данных.
	// Если Count больше набора, записи повторяются по кругу.
	Count int
	// Reset — удалить существующие записи перед загрузкой
	Reset bool
	// From, To — диапазон случайных дат (To по умолчанию — текущий момент)
	From time.Time
	To   time.Time
	// Rand — источник случайности; nil — случайный seed
	Rand *rand.Rand
}

// entry — демо-запись без даты и отметки «избранное».
type entry struct {
	title       string
	description string
	images      []string
}

const unsplashParams = "?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=400"

func unsplash(id string) string {
	return "https://images.unsplash.com/" + id + unsplashParams
}

var demoEntries = []entry{
	{"Family Picnic", "A relaxing day at the park with the whole family.",
		[]string{unsplash("photo-1506784365847-bbad939e9335"), unsplash("photo-1560807707-8cc77767d783")}},
	{"Beach Day", "A sunny day spent building sandcastles and swimming.",
		[]string{unsplash("photo-1507525428034-b723cf961d3e"), unsplash("photo-1506784365847-bbad939e9335")}},
	{"John's First Steps", "John took his first steps today, a huge milestone!",
		[]string{unsplash("photo-1504151932400-72d4384f04b3"), unsplash("photo-1519455953755-af066f52f1ea")}},
	{"Mountain Hike", "An adventurous hike to the peak of Mount Eagle.",
		[]string{unsplash("photo-1486915309851-b0cc1f8a0089"), unsplash("photo-1513836279014-a89f7a76ae86")}},
	{"Mountain Bike", "An adventurous bike to the peak of Mount Doom.",
		[]string{unsplash("photo-1486915309851-b0cc1f8a0089"), unsplash("photo-1513836279014-a89f7a76ae86")}},
	{"Winter Skiing Adventure", "Hit the slopes for an exciting day of skiing.",
		[]string{unsplash("photo-1519817914152-22f0c05bc5b9"), unsplash("photo-1506748686214-e9df14d4d9d0")}},
	{"Graduation Day Celebration", "Celebrated a milestone achievement with family and friends.",
		[]string{unsplash("photo-1559494003-ecfbc529c7a1"), unsplash("photo-1523050854058-8df90110c9f1")}},
	{"Camping in the Woods", "A serene weekend camping under the stars with family.",
		[]string{unsplash("photo-1470770841072-f978cf4d019e"), unsplash("photo-1506702315536-dd8b83e2dcf9")}},
	{"Hot Air Balloon Ride", "Soared high above the landscape in a colorful hot air balloon.",
		[]string{unsplash("photo-1519377209673-470db620ee9f"), unsplash("photo-1517697471339-4aa320d295fc")}},
}

// DefaultFrom — начало диапазона дат демо-данных.
var DefaultFrom = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

// Result — итог загрузки.
type Result struct {
	Removed  int64
	Created  int
	Favorite int
}

// Run загружает демо-данные.
func Run(ctx context.Context, w MemoryWriter, opts Options, logger *slog.Logger) (*Result, error) {
	if opts.Count < 0 {
		return nil, fmt.Errorf("некорректное количество записей: %d", opts.Count)
	}
	count := opts.Count
	if count == 0 {
		count = len(demoEntries)
	}
	from := opts.From
	if from.IsZero() {
		from = DefaultFrom
	}
	to := opts.To
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if !to.After(from) {
		return nil, fmt.Errorf("некорректный диапазон дат: %s - %s", from.Format(model.DateLayout), to.Format(model.DateLayout))
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	res := &Result{}
	if opts.Reset {
		n, err := w.Reset(ctx)
		if err != nil {
			return nil, err
		}
		res.Removed = n
	}

	for i := range count {
		e := demoEntries[i%len(demoEntries)]

		m, err := w.Create(ctx, service.CreateInput{
			Title:       e.title,
			Description: e.description,
			Date:        randomDate(rnd, from, to),
			URLs:        e.images,
		})
		if err != nil {
			return res, fmt.Errorf("создание %q: %w", e.title, err)
		}
		res.Created++

		if rnd.IntN(2) == 1 {
			if err := w.SetFavorite(ctx, m.ID, true); err != nil {
				return res, fmt.Errorf("отметка избранного %q: %w", e.title, err)
			}
			res.Favorite++
		}
	}

	logger.Info("Демо-данные загружены",
		slog.Int64("removed", res.Removed),
		slog.Int("created", res.Created),
		slog.Int("favorite", res.Favorite),
	)
	return res, nil
}

// randomDate возвращает случайную дату в диапазоне [from, to) в формате YYYY-MM-DD.
func randomDate(rnd *rand.Rand, from, to time.Time) string {
	span := to.Sub(from)
	return from.Add(time.Duration(rnd.Int64N(int64(span)))).UTC().Format(model.DateLayout)
}

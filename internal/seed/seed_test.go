package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/bigkaa/memory-timeline/internal/domain/model"
	"github.com/bigkaa/memory-timeline/internal/service"
)

// fakeWriter — MemoryWriter в памяти.
type fakeWriter struct {
	created   []service.CreateInput
	favorites map[string]bool
	resets    int
	failAt    int
}

func (f *fakeWriter) Create(_ context.Context, in service.CreateInput) (*model.Memory, error) {
	if f.failAt > 0 && len(f.created)+1 == f.failAt {
		return nil, errors.New("db down")
	}
	f.created = append(f.created, in)
	return &model.Memory{ID: in.Title + "-" + in.Date}, nil
}

func (f *fakeWriter) SetFavorite(_ context.Context, id string, favorite bool) error {
	if f.favorites == nil {
		f.favorites = map[string]bool{}
	}
	f.favorites[id] = favorite
	return nil
}

func (f *fakeWriter) Reset(context.Context) (int64, error) {
	f.resets++
	return 3, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_Defaults(t *testing.T) {
	w := &fakeWriter{}
	from := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	res, err := Run(context.Background(), w, Options{
		Reset: true,
		From:  from,
		To:    to,
		Rand:  rand.New(rand.NewPCG(1, 2)),
	}, testLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if w.resets != 1 || res.Removed != 3 {
		t.Errorf("reset: вызовов %d, удалено %d", w.resets, res.Removed)
	}
	if res.Created != len(demoEntries) || len(w.created) != len(demoEntries) {
		t.Fatalf("создано %d, ожидается %d", res.Created, len(demoEntries))
	}
	if res.Favorite != len(w.favorites) {
		t.Errorf("Favorite = %d, отмечено %d", res.Favorite, len(w.favorites))
	}

	for _, in := range w.created {
		d, err := model.ParseDate(in.Date)
		if err != nil {
			t.Fatalf("некорректная дата %q: %v", in.Date, err)
		}
		if d.Before(from) || !d.Before(to) {
			t.Errorf("дата %s вне диапазона", in.Date)
		}
		if len(in.URLs) != 2 {
			t.Errorf("%q: %d изображений, ожидается 2", in.Title, len(in.URLs))
		}
	}
}

func TestRun_CountWrapsAround(t *testing.T) {
	w := &fakeWriter{}

	res, err := Run(context.Background(), w, Options{Count: len(demoEntries) + 2}, testLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Created != len(demoEntries)+2 {
		t.Errorf("создано %d", res.Created)
	}
	if w.created[len(demoEntries)].Title != demoEntries[0].title {
		t.Errorf("после конца набора записи должны повторяться с начала")
	}
	if w.resets != 0 {
		t.Error("без Reset существующие записи не удаляются")
	}
}

func TestRun_Errors(t *testing.T) {
	if _, err := Run(context.Background(), &fakeWriter{}, Options{Count: -1}, testLogger()); err == nil {
		t.Error("отрицательный Count: ожидалась ошибка")
	}

	now := time.Now()
	if _, err := Run(context.Background(), &fakeWriter{}, Options{From: now, To: now.Add(-time.Hour)}, testLogger()); err == nil {
		t.Error("пустой диапазон дат: ожидалась ошибка")
	}

	w := &fakeWriter{failAt: 2}
	res, err := Run(context.Background(), w, Options{}, testLogger())
	if err == nil {
		t.Fatal("ожидалась ошибка создания")
	}
	if res == nil || res.Created != 1 {
		t.Errorf("частичный результат = %+v, ожидается Created=1", res)
	}
}

package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/bigkaa/memory-timeline/internal/domain/model"
)

// testLogger — логгер для тестов (только ошибки).
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockMemoryRepo — мок repository.MemoryRepository с настраиваемыми функциями.
type mockMemoryRepo struct {
	createFn      func(ctx context.Context, m *model.Memory) error
	getByIDFn     func(ctx context.Context, id string) (*model.Memory, error)
	updateFn      func(ctx context.Context, m *model.Memory) error
	setFavoriteFn func(ctx context.Context, id string, favorite bool) error
	deleteFn      func(ctx context.Context, id string) (bool, error)
	deleteAllFn   func(ctx context.Context) (int64, error)
	listAllFn     func(ctx context.Context) ([]*model.Memory, error)
}

func (m *mockMemoryRepo) Create(ctx context.Context, mem *model.Memory) error {
	if m.createFn != nil {
		return m.createFn(ctx, mem)
	}
	return nil
}

func (m *mockMemoryRepo) GetByID(ctx context.Context, id string) (*model.Memory, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMemoryRepo) Update(ctx context.Context, mem *model.Memory) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, mem)
	}
	return nil
}

func (m *mockMemoryRepo) SetFavorite(ctx context.Context, id string, favorite bool) error {
	if m.setFavoriteFn != nil {
		return m.setFavoriteFn(ctx, id, favorite)
	}
	return nil
}

func (m *mockMemoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

func (m *mockMemoryRepo) DeleteAll(ctx context.Context) (int64, error) {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx)
	}
	return 0, nil
}

func (m *mockMemoryRepo) ListAll(ctx context.Context) ([]*model.Memory, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

// listerFunc — адаптер функции к MemoryLister.
type listerFunc func(ctx context.Context) ([]*model.Memory, error)

func (f listerFunc) ListAll(ctx context.Context) ([]*model.Memory, error) {
	return f(ctx)
}

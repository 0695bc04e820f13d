package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/memory-timeline/internal/domain/model"
)

// memoryColumns — список столбцов таблицы memories для SELECT-запросов.
const memoryColumns = `id, title, description, date, images, favorite, created_at, updated_at`

// MemoryRepository — интерфейс CRUD для таблицы memories.
type MemoryRepository interface {
	// Create создаёт новую запись. ID должен быть заполнен вызывающим кодом.
	Create(ctx context.Context, m *model.Memory) error
	// GetByID возвращает запись по UUID.
	GetByID(ctx context.Context, id string) (*model.Memory, error)
	// Update обновляет title, description, date и images. Favorite не меняется.
	Update(ctx context.Context, m *model.Memory) error
	// SetFavorite меняет только отметку «избранное».
	SetFavorite(ctx context.Context, id string, favorite bool) error
	// Delete удаляет запись. Возвращает false, если запись не существовала.
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteAll удаляет все записи (используется seed --reset).
	DeleteAll(ctx context.Context) (int64, error)
	// ListAll возвращает все записи без гарантии порядка.
	ListAll(ctx context.Context) ([]*model.Memory, error)
}

// memoryRepo — реализация MemoryRepository через pgx.
type memoryRepo struct {
	db DBTX
}

// NewMemoryRepository создаёт репозиторий воспоминаний.
func NewMemoryRepository(db DBTX) MemoryRepository {
	return &memoryRepo{db: db}
}

func (r *memoryRepo) Create(ctx context.Context, m *model.Memory) error {
	query := `
		INSERT INTO memories (id, title, description, date, images, favorite)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		m.ID, m.Title, m.Description, m.Date, nonNil(m.Images), m.Favorite,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания записи: %w", err)
	}
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*model.Memory, error) {
	query := fmt.Sprintf(`SELECT %s FROM memories WHERE id = $1`, memoryColumns)

	m, err := scanMemory(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи: %w", err)
	}
	return m, nil
}

func (r *memoryRepo) Update(ctx context.Context, m *model.Memory) error {
	query := `
		UPDATE memories
		SET title = $2, description = $3, date = $4, images = $5, updated_at = now()
		WHERE id = $1
		RETURNING favorite, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		m.ID, m.Title, m.Description, m.Date, nonNil(m.Images),
	).Scan(&m.Favorite, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления записи: %w", err)
	}
	return nil
}

func (r *memoryRepo) SetFavorite(ctx context.Context, id string, favorite bool) error {
	// Остальные поля, включая updated_at, не меняются.
	query := `UPDATE memories SET favorite = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, favorite)
	if err != nil {
		if isInvalidText(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления избранного: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM memories WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return false, nil
		}
		return false, fmt.Errorf("ошибка удаления записи: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *memoryRepo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM memories`)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки таблицы: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *memoryRepo) ListAll(ctx context.Context) ([]*model.Memory, error) {
	query := fmt.Sprintf(`SELECT %s FROM memories`, memoryColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка записей: %w", err)
	}
	defer rows.Close()

	var result []*model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// scanMemory сканирует строку memories в порядке memoryColumns.
func scanMemory(row pgx.Row) (*model.Memory, error) {
	m := &model.Memory{}
	if err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.Date, &m.Images, &m.Favorite, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if m.Images == nil {
		m.Images = []string{}
	}
	return m, nil
}

// nonNil заменяет nil-срез пустым, чтобы в TEXT[] NOT NULL попадал '{}', а не NULL.
func nonNil(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

// memories.go — сервис записей воспоминаний (Record Store).
// Валидация обязательных полей, назначение ID, слияние списков изображений
// и инвалидация кэша timeline на каждой записи.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/memory-timeline/internal/domain/images"
	"github.com/bigkaa/memory-timeline/internal/domain/model"
	"github.com/bigkaa/memory-timeline/internal/repository"
)

// CreateInput — данные для создания воспоминания.
type CreateInput struct {
	Title       string
	Description string
	// Date — дата в формате YYYY-MM-DD
	Date string
	// URLs — внешние ссылки на изображения, переданные клиентом
	URLs []string
	// Uploaded — ссылки blob store на файлы, загруженные в этом запросе
	Uploaded []string
}

// UpdateInput — данные для обновления воспоминания.
// ExistingImages — авторитетный список ранее прикреплённых изображений:
// всё, что в нём отсутствует, открепляется.
type UpdateInput struct {
	Title          string
	Description    string
	Date           string
	ExistingImages []string
	Uploaded       []string
}

// MemoryService — сервис записей воспоминаний.
type MemoryService struct {
	repo   repository.MemoryRepository
	cache  *TimelineCache
	logger *slog.Logger
}

// NewMemoryService создаёт сервис записей.
// cache может быть nil — тогда инвалидация не выполняется.
func NewMemoryService(repo repository.MemoryRepository, cache *TimelineCache, logger *slog.Logger) *MemoryService {
	return &MemoryService{
		repo:   repo,
		cache:  cache,
		logger: logger.With(slog.String("component", "memory_service")),
	}
}

// Create создаёт воспоминание. Изображения — URL клиента, затем загруженные
// файлы, в порядке передачи. Повторы и эфемерные ссылки предпросмотра отбрасываются.
func (s *MemoryService) Create(ctx context.Context, in CreateInput) (*model.Memory, error) {
	date, err := validateFields(in.Title, in.Description, in.Date)
	if err == nil {
		err = validateImageRefs("urls", in.URLs)
	}
	if err != nil {
		memoryOperationsTotal.WithLabelValues("create", resultValidation).Inc()
		return nil, err
	}

	m := &model.Memory{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Date:        date,
		Images:      images.Merge(images.StripEphemeral(in.URLs), in.Uploaded),
		Favorite:    false,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		memoryOperationsTotal.WithLabelValues("create", resultError).Inc()
		return nil, fmt.Errorf("создание воспоминания: %w", err)
	}
	s.cache.Invalidate()
	memoryOperationsTotal.WithLabelValues("create", resultOK).Inc()

	s.logger.Info("Воспоминание создано",
		slog.String("id", m.ID),
		slog.String("date", m.DateString()),
		slog.Int("images", len(m.Images)),
	)
	return m, nil
}

// Update обновляет воспоминание. Итоговый список изображений — объединение
// сохраняемых (без эфемерных ссылок) и новых загруженных, без повторов.
// Favorite не меняется.
func (s *MemoryService) Update(ctx context.Context, id string, in UpdateInput) (*model.Memory, error) {
	date, err := validateFields(in.Title, in.Description, in.Date)
	if err == nil {
		err = validateImageRefs("existingImages", in.ExistingImages)
	}
	if err != nil {
		memoryOperationsTotal.WithLabelValues("update", resultValidation).Inc()
		return nil, err
	}
	if !isValidID(id) {
		memoryOperationsTotal.WithLabelValues("update", resultNotFound).Inc()
		return nil, ErrNotFound
	}

	m := &model.Memory{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Date:        date,
		Images:      images.Merge(images.StripEphemeral(in.ExistingImages), in.Uploaded),
	}

	if err := s.repo.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			memoryOperationsTotal.WithLabelValues("update", resultNotFound).Inc()
			return nil, ErrNotFound
		}
		memoryOperationsTotal.WithLabelValues("update", resultError).Inc()
		return nil, fmt.Errorf("обновление воспоминания: %w", err)
	}
	s.cache.Invalidate()
	memoryOperationsTotal.WithLabelValues("update", resultOK).Inc()

	s.logger.Info("Воспоминание обновлено",
		slog.String("id", m.ID),
		slog.Int("images", len(m.Images)),
	)
	return m, nil
}

// SetFavorite меняет отметку «избранное», не затрагивая остальные поля.
func (s *MemoryService) SetFavorite(ctx context.Context, id string, favorite bool) error {
	if !isValidID(id) {
		memoryOperationsTotal.WithLabelValues("set_favorite", resultNotFound).Inc()
		return ErrNotFound
	}

	if err := s.repo.SetFavorite(ctx, id, favorite); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			memoryOperationsTotal.WithLabelValues("set_favorite", resultNotFound).Inc()
			return ErrNotFound
		}
		memoryOperationsTotal.WithLabelValues("set_favorite", resultError).Inc()
		return fmt.Errorf("изменение избранного: %w", err)
	}
	s.cache.Invalidate()
	memoryOperationsTotal.WithLabelValues("set_favorite", resultOK).Inc()

	s.logger.Debug("Избранное изменено",
		slog.String("id", id),
		slog.Bool("favorite", favorite),
	)
	return nil
}

// Delete удаляет воспоминание. Удаление отсутствующей записи — не ошибка.
// Файлы blob store, на которые ссылалась запись, не удаляются.
func (s *MemoryService) Delete(ctx context.Context, id string) error {
	if !isValidID(id) {
		memoryOperationsTotal.WithLabelValues("delete", resultNotFound).Inc()
		return nil
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		memoryOperationsTotal.WithLabelValues("delete", resultError).Inc()
		return fmt.Errorf("удаление воспоминания: %w", err)
	}
	if !removed {
		memoryOperationsTotal.WithLabelValues("delete", resultNotFound).Inc()
		s.logger.Debug("Удаление отсутствующего воспоминания", slog.String("id", id))
		return nil
	}
	s.cache.Invalidate()
	memoryOperationsTotal.WithLabelValues("delete", resultOK).Inc()

	s.logger.Info("Воспоминание удалено", slog.String("id", id))
	return nil
}

// Get возвращает воспоминание по ID.
func (s *MemoryService) Get(ctx context.Context, id string) (*model.Memory, error) {
	if !isValidID(id) {
		return nil, ErrNotFound
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение воспоминания: %w", err)
	}
	return m, nil
}

// ListAll возвращает все воспоминания без гарантии порядка.
func (s *MemoryService) ListAll(ctx context.Context) ([]*model.Memory, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка воспоминаний: %w", err)
	}
	return list, nil
}

// Reset удаляет все воспоминания. Используется командой seed --reset.
func (s *MemoryService) Reset(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("очистка воспоминаний: %w", err)
	}
	s.cache.Invalidate()
	s.logger.Info("Все воспоминания удалены", slog.Int64("count", n))
	return n, nil
}

// validateFields проверяет обязательные поля и разбирает дату.
func validateFields(title, description, date string) (time.Time, error) {
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(date) == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return time.Time{}, fmt.Errorf("%w: обязательные поля не заполнены: %s",
			ErrValidation, strings.Join(missing, ", "))
	}

	d, err := model.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: некорректная дата %q, ожидается формат YYYY-MM-DD", ErrValidation, date)
	}
	return d, nil
}

// validateImageRefs отвергает пустые ссылки на изображения:
// каждая переданная ссылка либо сохраняется, либо является эфемерной.
func validateImageRefs(field string, refs []string) error {
	for i, ref := range refs {
		if strings.TrimSpace(ref) == "" {
			return fmt.Errorf("%w: пустая ссылка на изображение в %s[%d]", ErrValidation, field, i)
		}
	}
	return nil
}

// isValidID проверяет формат UUID. Запись с некорректным ID существовать не может.
func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// upload.go — сохранение загруженных изображений в blob store.
// Файлы одного запроса сохраняются атомарно: при ошибке на любом файле
// уже записанные файлы удаляются.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bigkaa/memory-timeline/internal/storage/filestore"
)

// BlobStore — хранилище загруженных файлов. Реализуется filestore.FileStore.
type BlobStore interface {
	SaveFile(reader io.Reader, originalFilename string) (*filestore.SaveResult, error)
	Delete(reference string) error
}

// UploadFile — один файл из multipart-запроса.
type UploadFile struct {
	// Filename — оригинальное имя файла клиента
	Filename string
	// Open открывает поток содержимого (multipart.FileHeader.Open)
	Open func() (io.ReadCloser, error)
}

// UploadService — сервис сохранения изображений.
type UploadService struct {
	store  BlobStore
	logger *slog.Logger
}

// NewUploadService создаёт сервис сохранения изображений.
func NewUploadService(store BlobStore, logger *slog.Logger) *UploadService {
	return &UploadService{
		store:  store,
		logger: logger.With(slog.String("component", "upload_service")),
	}
}

// SaveAll сохраняет файлы по порядку и возвращает их ссылки в том же порядке.
// При ошибке сохранённые в этом вызове файлы удаляются.
func (s *UploadService) SaveAll(ctx context.Context, files []UploadFile) ([]string, error) {
	refs := make([]string, 0, len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			s.Discard(refs)
			return nil, err
		}

		res, err := s.saveOne(f)
		if err != nil {
			s.Discard(refs)
			s.logger.Error("Ошибка сохранения изображения",
				slog.String("filename", f.Filename),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("сохранение файла %q: %w", f.Filename, err)
		}

		refs = append(refs, res.Reference)
		uploadedFilesTotal.Inc()
		uploadedBytesTotal.Add(float64(res.Size))

		s.logger.Info("Изображение сохранено",
			slog.String("filename", f.Filename),
			slog.String("reference", res.Reference),
			slog.Int64("size", res.Size),
			slog.String("sha256", res.Checksum),
		)
	}
	return refs, nil
}

// Discard удаляет файлы по ссылкам. Используется для отката,
// когда запись воспоминания после загрузки не удалась.
func (s *UploadService) Discard(refs []string) {
	for _, ref := range refs {
		if err := s.store.Delete(ref); err != nil {
			s.logger.Warn("Не удалось удалить файл при откате",
				slog.String("reference", ref),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *UploadService) saveOne(f UploadFile) (*filestore.SaveResult, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return s.store.SaveFile(rc, f.Filename)
}

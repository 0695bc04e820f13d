// Пакет filestore — blob store загруженных изображений на локальном диске.
// Запись через временный файл с подсчётом SHA-256 на лету и атомарным rename.
// Снаружи файлы адресуются ссылками вида /uploads/{имя}, которые
// сохраняются в записях воспоминаний как есть.
package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix — префикс ссылок на файлы blob store. По этому же пути
// файлы раздаются HTTP-сервером.
const URLPrefix = "/uploads/"

// ErrInvalidReference — ссылка не принадлежит blob store или содержит
// недопустимое имя файла.
var ErrInvalidReference = errors.New("некорректная ссылка на файл")

// ErrNotFound — файл по ссылке отсутствует на диске.
var ErrNotFound = errors.New("файл не найден")

// tempSuffix — суффикс файла, запись которого ещё не завершена.
// Такие файлы не адресуются ссылками.
const tempSuffix = ".tmp"

// FileStore — управление загруженными файлами на диске.
type FileStore struct {
	// dataDir — корневая директория хранения файлов (MT_UPLOAD_DIR)
	dataDir string
}

// SaveResult — результат сохранения файла на диск.
type SaveResult struct {
	// Reference — стабильная ссылка на файл (/uploads/{имя})
	Reference string
	// Size — размер записанных данных в байтах
	Size int64
	// Checksum — SHA-256 хэш содержимого файла
	Checksum string
}

// New создаёт новый FileStore. Создаёт директорию, если она не существует.
func New(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию загрузок %s: %w", dataDir, err)
	}

	return &FileStore{dataDir: dataDir}, nil
}

// SaveFile записывает данные из reader на диск с подсчётом SHA-256 на лету.
// Формат имени файла: {timestamp}-{uuid}-{имя}.{ext}
//
// Паттерн: temp файл → запись + SHA-256 → fsync → atomic rename.
// При ошибке temp файл удаляется.
func (fs *FileStore) SaveFile(reader io.Reader, originalFilename string) (*SaveResult, error) {
	storageName := generateStorageName(originalFilename)
	fullPath := filepath.Join(fs.dataDir, storageName)
	tmpPath := fullPath + tempSuffix

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	hasher := sha256.New()
	tee := io.TeeReader(reader, hasher)

	size, err := io.Copy(f, tee)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		Reference: URLPrefix + storageName,
		Size:      size,
		Checksum:  hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Open открывает файл по ссылке для чтения.
// Вызывающий код обязан закрыть файл.
func (fs *FileStore) Open(reference string) (*os.File, error) {
	name, err := nameFromReference(reference)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(fs.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, reference)
		}
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", reference, err)
	}
	return f, nil
}

// Delete удаляет файл по ссылке.
// Возвращает nil, если файл уже не существует.
func (fs *FileStore) Delete(reference string) error {
	name, err := nameFromReference(reference)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(fs.dataDir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", reference, err)
	}
	return nil
}

// Exists проверяет существование файла по ссылке.
func (fs *FileStore) Exists(reference string) bool {
	name, err := nameFromReference(reference)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(fs.dataDir, name))
	return err == nil
}

// DataDir возвращает путь к директории загрузок.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

// IsReference сообщает, является ли строка ссылкой на файл blob store.
func IsReference(s string) bool {
	_, err := nameFromReference(s)
	return err == nil
}

// nameFromReference извлекает имя файла из ссылки /uploads/{имя}.
// Вложенные пути, «..» и незавершённые временные файлы отвергаются.
func nameFromReference(reference string) (string, error) {
	if !strings.HasPrefix(reference, URLPrefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, reference)
	}
	name := strings.TrimPrefix(reference, URLPrefix)
	if name == "" || name != path.Base(name) || name == "." || name == ".." ||
		strings.HasSuffix(name, tempSuffix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, reference)
	}
	return name, nil
}

// generateStorageName генерирует имя файла для хранения на диске.
// Формат: {timestamp}-{uuid}-{имя}.{ext}
// Пример: 20240305150405-a1b2c3d4-beach.jpg
func generateStorageName(originalFilename string) string {
	base := filepath.Base(strings.ReplaceAll(originalFilename, "\\", "/"))
	rawExt := filepath.Ext(base)
	name := sanitize(strings.TrimSuffix(base, rawExt))

	// Ограничиваем длину имени для предотвращения проблем с FS
	if len(name) > 50 {
		name = name[:50]
	}

	ts := time.Now().UTC().Format("20060102150405")
	uid := uuid.New().String()[:8]

	if rawExt != "" && rawExt != "." {
		ext := strings.ToLower(sanitize(rawExt[1:]))
		// Расширение .tmp зарезервировано под незавершённую запись
		if "."+ext == tempSuffix {
			return fmt.Sprintf("%s-%s-%s_%s", ts, uid, name, ext)
		}
		return fmt.Sprintf("%s-%s-%s.%s", ts, uid, name, ext)
	}
	return fmt.Sprintf("%s-%s-%s", ts, uid, name)
}

// sanitize убирает небезопасные символы из строки для использования в имени файла.
// Оставляет только латинские буквы, цифры, дефис и подчёркивание.
func sanitize(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "file"
	}
	return result.String()
}

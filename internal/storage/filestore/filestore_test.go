package filestore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNew_CreatesDirectory проверяет создание директории загрузок.
func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	fs, err := New(dir)
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}
	if fs.DataDir() != dir {
		t.Errorf("ожидался путь %s, получен %s", dir, fs.DataDir())
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("директория не создана: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("путь не является директорией")
	}
}

// TestSaveFile проверяет сохранение файла и формат ссылки.
func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	fs, err := New(dir)
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	content := []byte("JPEG bytes for the beach day")
	result, err := fs.SaveFile(bytes.NewReader(content), "Beach Day.JPG")
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}

	if result.Size != int64(len(content)) {
		t.Errorf("размер: ожидалось %d, получено %d", len(content), result.Size)
	}

	expectedHash := sha256.Sum256(content)
	if result.Checksum != hex.EncodeToString(expectedHash[:]) {
		t.Errorf("checksum не совпадает: %s", result.Checksum)
	}

	if !strings.HasPrefix(result.Reference, URLPrefix) {
		t.Errorf("ссылка должна начинаться с %s: %s", URLPrefix, result.Reference)
	}
	if !strings.HasSuffix(result.Reference, "-BeachDay.jpg") {
		t.Errorf("ссылка должна содержать очищенное имя и расширение: %s", result.Reference)
	}
	if !IsReference(result.Reference) {
		t.Errorf("IsReference(%q) = false", result.Reference)
	}

	// Временный файл не остаётся на диске
	name := strings.TrimPrefix(result.Reference, URLPrefix)
	if _, err := os.Stat(filepath.Join(dir, name+tempSuffix)); !os.IsNotExist(err) {
		t.Error("временный файл не удалён")
	}

	f, err := fs.Open(result.Reference)
	if err != nil {
		t.Fatalf("ошибка открытия: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("содержимое файла не совпадает")
	}
}

// TestSaveFile_UniqueNames проверяет, что одинаковые имена не перезаписывают друг друга.
func TestSaveFile_UniqueNames(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	r1, err := fs.SaveFile(strings.NewReader("one"), "photo.png")
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}
	r2, err := fs.SaveFile(strings.NewReader("two"), "photo.png")
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}
	if r1.Reference == r2.Reference {
		t.Errorf("ссылки совпадают: %s", r1.Reference)
	}
}

// failingReader возвращает ошибку после первого чтения.
type failingReader struct{ read bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.read {
		return 0, errors.New("обрыв соединения")
	}
	r.read = true
	return copy(p, "partial"), nil
}

// TestSaveFile_ReaderError проверяет удаление временного файла при ошибке чтения.
func TestSaveFile_ReaderError(t *testing.T) {
	dir := t.TempDir()
	fs, err := New(dir)
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	if _, err := fs.SaveFile(&failingReader{}, "broken.jpg"); err == nil {
		t.Fatal("ожидалась ошибка сохранения")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ошибка чтения директории: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("в директории остались файлы: %d", len(entries))
	}
}

// TestDelete проверяет удаление и идемпотентность.
func TestDelete(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	r, err := fs.SaveFile(strings.NewReader("data"), "x.gif")
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}
	if !fs.Exists(r.Reference) {
		t.Fatal("файл должен существовать")
	}

	if err := fs.Delete(r.Reference); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	if fs.Exists(r.Reference) {
		t.Error("файл не удалён")
	}
	// Повторное удаление — без ошибки
	if err := fs.Delete(r.Reference); err != nil {
		t.Errorf("повторное удаление вернуло ошибку: %v", err)
	}
	if _, err := fs.Open(r.Reference); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open удалённого файла: ожидался ErrNotFound, получено %v", err)
	}
}

// TestInvalidReferences проверяет защиту от выхода за пределы директории.
func TestInvalidReferences(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	refs := []string{
		"",
		"/uploads/",
		"/uploads/../secret",
		"/uploads/a/b.jpg",
		"/uploads/..",
		"/uploads/20240305150405-a1b2c3d4-beach.jpg.tmp",
		"https://example.com/a.jpg",
		"uploads/a.jpg",
	}
	for _, ref := range refs {
		if IsReference(ref) {
			t.Errorf("IsReference(%q) = true", ref)
		}
		if err := fs.Delete(ref); !errors.Is(err, ErrInvalidReference) {
			t.Errorf("Delete(%q): ожидался ErrInvalidReference, получено %v", ref, err)
		}
		if _, err := fs.Open(ref); !errors.Is(err, ErrInvalidReference) {
			t.Errorf("Open(%q): ожидался ErrInvalidReference, получено %v", ref, err)
		}
	}
}

func TestGenerateStorageName(t *testing.T) {
	tests := []struct {
		input      string
		wantSuffix string
	}{
		{"photo.jpg", "-photo.jpg"},
		{"IMG 0001.HEIC", "-IMG0001.heic"},
		{"../../etc/passwd", "-passwd"},
		{"C:\\Users\\me\\pic.png", "-pic.png"},
		{"", "-file"},
		{"пляж.jpg", "-file.jpg"},
		{"notes.TMP", "-notes_tmp"},
	}
	for _, tt := range tests {
		got := generateStorageName(tt.input)
		if !strings.HasSuffix(got, tt.wantSuffix) {
			t.Errorf("generateStorageName(%q) = %q, ожидался суффикс %q", tt.input, got, tt.wantSuffix)
		}
		if strings.ContainsAny(got, "/\\ ") {
			t.Errorf("generateStorageName(%q) = %q содержит недопустимые символы", tt.input, got)
		}
	}
}

// TestOpen_PendingTempFile проверяет, что незавершённая запись не отдаётся по ссылке.
func TestOpen_PendingTempFile(t *testing.T) {
	dir := t.TempDir()
	fs, err := New(dir)
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	// Состояние между записью во временный файл и rename
	pending := "20240305150405-a1b2c3d4-beach.jpg" + tempSuffix
	if err := os.WriteFile(filepath.Join(dir, pending), []byte("half"), 0o600); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	if _, err := fs.Open(URLPrefix + pending); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Open временного файла: ожидался ErrInvalidReference, получено %v", err)
	}
	if fs.Exists(URLPrefix + pending) {
		t.Error("Exists временного файла = true")
	}
}

// TestSaveFile_TmpExtension проверяет, что загруженный файл с расширением
// .tmp остаётся доступным по ссылке.
func TestSaveFile_TmpExtension(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	r, err := fs.SaveFile(strings.NewReader("draft"), "notes.tmp")
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}
	if !IsReference(r.Reference) {
		t.Fatalf("IsReference(%q) = false", r.Reference)
	}
	f, err := fs.Open(r.Reference)
	if err != nil {
		t.Fatalf("ошибка открытия: %v", err)
	}
	f.Close()
}

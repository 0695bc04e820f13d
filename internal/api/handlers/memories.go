// memories.go — обработчики Record Store: создание, обновление,
// «избранное», удаление и получение воспоминания.
// Тело POST/PUT — multipart/form-data или application/x-www-form-urlencoded,
// файлы изображений передаются в поле images.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/memory-timeline/internal/api/errors"
	"github.com/bigkaa/memory-timeline/internal/domain/model"
	"github.com/bigkaa/memory-timeline/internal/service"
)

// multipartMemory — объём multipart-тела, держимый в памяти;
// остальное multipart пишет во временные файлы.
const multipartMemory = 8 << 20

// memoryResponse — воспоминание в ответах API.
type memoryResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Images      []string  `json:"images"`
	Favorite    bool      `json:"favorite"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toMemoryResponse(m *model.Memory) memoryResponse {
	images := m.Images
	if images == nil {
		images = []string{}
	}
	return memoryResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Date:        m.DateString(),
		Images:      images,
		Favorite:    m.Favorite,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CreateMemory — POST /memories.
// Поля: title, description, date, urls (JSON-массив внешних URL), файлы images.
func (h *APIHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseMemoryForm(w, r)
	if !ok {
		return
	}
	defer form.cleanup()

	urls, err := parseJSONList(form.value("urls"))
	if err != nil {
		apierrors.ValidationError(w, "Некорректный формат urls: ожидается JSON-массив строк")
		return
	}

	uploaded, err := h.uploads.SaveAll(r.Context(), form.files)
	if err != nil {
		h.handleServiceError(w, err, "create")
		return
	}

	m, err := h.memories.Create(r.Context(), service.CreateInput{
		Title:       form.value("title"),
		Description: form.value("description"),
		Date:        form.value("date"),
		URLs:        urls,
		Uploaded:    uploaded,
	})
	if err != nil {
		h.discardUploads(uploaded)
		h.handleServiceError(w, err, "create")
		return
	}

	writeSuccess(w, http.StatusCreated, "Воспоминание создано", toMemoryResponse(m))
}

// UpdateMemory — PUT /memories/{id}.
// Поля: title, description, date, existingImages (JSON-массив сохраняемых
// изображений), файлы images.
func (h *APIHandler) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	form, ok := h.parseMemoryForm(w, r)
	if !ok {
		return
	}
	defer form.cleanup()

	existing, err := parseJSONList(form.value("existingImages"))
	if err != nil {
		apierrors.ValidationError(w, "Некорректный формат existingImages: ожидается JSON-массив строк")
		return
	}

	uploaded, err := h.uploads.SaveAll(r.Context(), form.files)
	if err != nil {
		h.handleServiceError(w, err, "update")
		return
	}

	m, err := h.memories.Update(r.Context(), id, service.UpdateInput{
		Title:          form.value("title"),
		Description:    form.value("description"),
		Date:           form.value("date"),
		ExistingImages: existing,
		Uploaded:       uploaded,
	})
	if err != nil {
		h.discardUploads(uploaded)
		h.handleServiceError(w, err, "update")
		return
	}

	writeSuccess(w, http.StatusOK, "Воспоминание обновлено", toMemoryResponse(m))
}

// SetFavorite — PATCH /memories/{id}/favorite.
// Тело: JSON {"favorite": ...} или поле формы favorite.
func (h *APIHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	favorite, err := h.readFavorite(w, r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	if err := h.memories.SetFavorite(r.Context(), id, favorite); err != nil {
		h.handleServiceError(w, err, "set_favorite")
		return
	}

	writeSuccess(w, http.StatusOK, "Отметка «избранное» обновлена", map[string]any{
		"id":       id,
		"favorite": favorite,
	})
}

// DeleteMemory — DELETE /memories/{id}. Удаление отсутствующей записи — успех.
func (h *APIHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.memories.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "delete")
		return
	}

	writeSuccess(w, http.StatusOK, "Воспоминание удалено", nil)
}

// GetMemory — GET /memories/{id}.
func (h *APIHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, err := h.memories.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get")
		return
	}

	writeSuccess(w, http.StatusOK, "", toMemoryResponse(m))
}

// --- Разбор тела запроса ---

// memoryForm — разобранные поля и файлы формы воспоминания.
type memoryForm struct {
	req   *http.Request
	files []service.UploadFile
}

func (f *memoryForm) value(key string) string {
	return f.req.FormValue(key)
}

// cleanup удаляет временные файлы multipart.
func (f *memoryForm) cleanup() {
	if f.req.MultipartForm != nil {
		_ = f.req.MultipartForm.RemoveAll()
	}
}

// parseMemoryForm разбирает multipart или urlencoded тело с ограничением размера
// и количества файлов. При ошибке ответ уже записан, возвращается false.
func (h *APIHandler) parseMemoryForm(w http.ResponseWriter, r *http.Request) (*memoryForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.ValidationError(w, fmt.Sprintf("Тело запроса превышает %d байт", tooLarge.Limit))
			return nil, false
		}
		apierrors.ValidationError(w, "Некорректное тело запроса")
		return nil, false
	}

	form := &memoryForm{req: r}
	if r.MultipartForm == nil {
		return form, true
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) > h.opts.MaxFiles {
		form.cleanup()
		apierrors.ValidationError(w, fmt.Sprintf("Можно загрузить не более %d изображений", h.opts.MaxFiles))
		return nil, false
	}

	form.files = make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		form.files = append(form.files, uploadFromHeader(fh))
	}
	return form, true
}

func uploadFromHeader(fh *multipart.FileHeader) service.UploadFile {
	return service.UploadFile{
		Filename: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

// parseJSONList разбирает JSON-массив строк. Пустое значение — пустой список.
func parseJSONList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// readFavorite извлекает значение favorite из JSON или формы.
// Отсутствующее значение — false.
func (h *APIHandler) readFavorite(w http.ResponseWriter, r *http.Request) (bool, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Favorite any `json:"favorite"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return false, errors.New("некорректный JSON в теле запроса")
		}
		return coerceFavorite(body.Favorite)
	}

	if err := r.ParseForm(); err != nil {
		return false, errors.New("некорректное тело запроса")
	}
	return coerceFavorite(r.FormValue("favorite"))
}

// coerceFavorite приводит значение favorite к bool:
// bool как есть, числа — ненулевое значение, строки true/false/1/0/on/off.
func coerceFavorite(v any) (bool, error) {
	switch val := v.(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	case float64:
		return val != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "", "false", "0", "off", "no":
			return false, nil
		case "true", "1", "on", "yes":
			return true, nil
		}
		if n, err := strconv.ParseFloat(val, 64); err == nil {
			return n != 0, nil
		}
		return false, fmt.Errorf("некорректное значение favorite: %q", val)
	default:
		return false, fmt.Errorf("некорректное значение favorite: %v", val)
	}
}

// discardUploads удаляет файлы, сохранённые до ошибки записи воспоминания.
func (h *APIHandler) discardUploads(refs []string) {
	if len(refs) == 0 {
		return
	}
	h.uploads.Discard(refs)
	h.logger.Debug("Загруженные файлы удалены после ошибки", slog.Int("count", len(refs)))
}

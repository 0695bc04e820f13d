// Пакет errors — конструкторы ответов с ошибкой в формате Memory Timeline.
// Единый формат конверта: {"status": "error", "message": "..."}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// StatusError — значение поля status в конверте ошибки.
const StatusError = "error"

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном конверте.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Status:  StatusError,
		Message: message,
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// InternalError — 500 внутренняя ошибка. Детали пишутся только в лог.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

// Пакет images — операции над списками ссылок на изображения воспоминания:
// фильтрация эфемерных ссылок предпросмотра и слияние списков без дубликатов
// с сохранением порядка первого появления.
package images

import "strings"

// EphemeralPrefix — схема ссылок локального предпросмотра (URL.createObjectURL
// в браузере). Такие ссылки валидны только внутри сессии клиента.
const EphemeralPrefix = "blob:"

// IsEphemeral сообщает, является ли ссылка эфемерной ссылкой предпросмотра.
func IsEphemeral(ref string) bool {
	return strings.HasPrefix(ref, EphemeralPrefix)
}

// StripEphemeral возвращает новый список без эфемерных ссылок.
// Порядок остальных элементов сохраняется.
func StripEphemeral(refs []string) []string {
	result := make([]string, 0, len(refs))
	for _, ref := range refs {
		if IsEphemeral(ref) {
			continue
		}
		result = append(result, ref)
	}
	return result
}

// Merge объединяет списки в один без дубликатов.
// Элемент остаётся на позиции первого появления, последующие повторы
// (в том же или следующих списках) отбрасываются. Пустые строки пропускаются.
// Всегда возвращает не-nil срез.
func Merge(lists ...[]string) []string {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	seen := make(map[string]struct{}, total)
	result := make([]string, 0, total)
	for _, l := range lists {
		for _, ref := range l {
			if ref == "" {
				continue
			}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			result = append(result, ref)
		}
	}
	return result
}

// Пакет model — доменные модели Memory Timeline.
// Memory — маппинг таблицы memories, MonthGroup/TimelineEvent — производное
// представление для timeline (не хранится).
package model

import (
	"strconv"
	"time"
)

// DateLayout — формат календарной даты воспоминания (ISO YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Memory — запись воспоминания.
type Memory struct {
	// ID — UUID записи, назначается при создании и не меняется
	ID string
	// Title — заголовок (непустой)
	Title string
	// Description — описание (непустое)
	Description string
	// Date — календарная дата без времени суток (UTC, 00:00)
	Date time.Time
	// Images — упорядоченный список ссылок на изображения без дубликатов
	// (внешние URL или ссылки blob store вида /uploads/...)
	Images []string
	// Favorite — отметка «избранное», по умолчанию false
	Favorite bool
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// DateString возвращает дату в исходном строковом виде YYYY-MM-DD.
func (m *Memory) DateString() string {
	return m.Date.Format(DateLayout)
}

// MonthKey возвращает ключ группировки timeline: "{Месяц} {год}" на английском,
// например "March 2024". Вычисляется по календарной дате, без сдвига часового пояса.
func (m *Memory) MonthKey() string {
	return MonthKey(m.Date)
}

// MonthKey возвращает ключ группировки для календарной даты.
func MonthKey(date time.Time) string {
	year, month, _ := date.Date()
	return month.String() + " " + strconv.Itoa(year)
}

// TimelineEvent — событие timeline в представлении для клиента.
type TimelineEvent struct {
	ID          string
	Title       string
	Date        string
	Description string
	Images      []string
	Favorite    bool
}

// MonthGroup — группа событий одного месяца в порядке timeline.
type MonthGroup struct {
	Month  string
	Events []TimelineEvent
}

// ToEvent конвертирует запись в событие timeline.
// Images копируется, чтобы кэшированный timeline не разделял память с записью.
func (m *Memory) ToEvent() TimelineEvent {
	images := make([]string, len(m.Images))
	copy(images, m.Images)

	return TimelineEvent{
		ID:          m.ID,
		Title:       m.Title,
		Date:        m.DateString(),
		Description: m.Description,
		Images:      images,
		Favorite:    m.Favorite,
	}
}

// ParseDate разбирает календарную дату в формате YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// timeline.go — GET /timeline: воспоминания, сгруппированные по месяцам.
package handlers

import (
	"net/http"

	"github.com/bigkaa/memory-timeline/internal/domain/model"
)

// timelineEventResponse — событие timeline.
type timelineEventResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Favorite    bool     `json:"favorite"`
}

// monthGroupResponse — группа событий одного месяца.
type monthGroupResponse struct {
	Month  string                  `json:"month"`
	Events []timelineEventResponse `json:"events"`
}

// GetTimeline — GET /timeline.
// Пустое хранилище даёт data: [].
func (h *APIHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	groups, err := h.timeline.BuildTimeline(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "timeline")
		return
	}

	writeJSON(w, http.StatusOK, successBody{
		Status: StatusSuccess,
		Data:   toTimelineResponse(groups),
	})
}

func toTimelineResponse(groups []model.MonthGroup) []monthGroupResponse {
	out := make([]monthGroupResponse, 0, len(groups))
	for _, g := range groups {
		events := make([]timelineEventResponse, 0, len(g.Events))
		for _, e := range g.Events {
			images := e.Images
			if images == nil {
				images = []string{}
			}
			events = append(events, timelineEventResponse{
				ID:          e.ID,
				Title:       e.Title,
				Date:        e.Date,
				Description: e.Description,
				Images:      images,
				Favorite:    e.Favorite,
			})
		}
		out = append(out, monthGroupResponse{Month: g.Month, Events: events})
	}
	return out
}

package mapper

import (
	"fmt"
	"strings"

	"storyspark-be/internal/dto"
	"storyspark-be/pkg/inspiration"
	"storyspark-be/pkg/store"
)

type SessionMapper struct {
	previewBase string
}

// NewSessionMapper builds preview links under apiPrefix (e.g. "/api").
func NewSessionMapper(apiPrefix string) *SessionMapper {
	return &SessionMapper{previewBase: strings.TrimRight(apiPrefix, "/") + "/session/previews/"}
}

// ToResponse snapshots a session. The caller holds the session lock.
func (m *SessionMapper) ToResponse(s *store.Session) *dto.SessionResponse {
	if s == nil {
		return nil
	}
	return &dto.SessionResponse{
		Id:             s.ID,
		ActiveModality: s.Active.String(),
		Text:           m.ToSelection(s.Text),
		Emoji:          m.ToSelection(s.Emoji),
		Images:         m.ToImages(s.Images),
		CanGenerate:    s.CanGenerate(),
		Ideas:          m.ToIdeas(s),
		Status:         m.ToStatus(s.Status),
		CreatedAt:      s.CreatedAt,
	}
}

func (m *SessionMapper) ToSelection(sel *inspiration.Selection) dto.SelectionResponse {
	res := dto.SelectionResponse{
		Offered:        sel.Offered(),
		Chosen:         sel.Chosen(),
		Freeform:       sel.Freeform(),
		EffectiveCount: sel.EffectiveCount(),
		Full:           sel.Full(),
		Valid:          sel.Valid(),
	}
	// the entry stays locked while full unless it already holds something
	res.FreeformDisabled = sel.Full() && strings.TrimSpace(sel.Freeform()) == ""
	if res.Offered == nil {
		res.Offered = []string{}
	}
	if res.Chosen == nil {
		res.Chosen = []string{}
	}
	return res
}

func (m *SessionMapper) ToImages(images *inspiration.ImageSelection) dto.ImageSelectionResponse {
	res := dto.ImageSelectionResponse{
		Images:    make([]dto.ImageResponse, 0, images.Count()),
		Remaining: inspiration.MaxImages - images.Count(),
		Valid:     images.Valid(),
	}
	for i, img := range images.Images() {
		item := dto.ImageResponse{Index: i, MediaType: img.MediaType, Size: len(img.Data)}
		if img.PreviewID != "" {
			item.PreviewURL = fmt.Sprintf("%s%s", m.previewBase, img.PreviewID)
		}
		res.Images = append(res.Images, item)
	}
	return res
}

func (m *SessionMapper) ToIdeas(s *store.Session) []dto.IdeaResponse {
	ideas := s.Ideas.Get()
	res := make([]dto.IdeaResponse, 0, len(ideas))
	for i, it := range ideas {
		res = append(res, dto.IdeaResponse{
			Index:        i,
			Title:        it.Title,
			Summary:      it.Summary,
			ResearchPlan: it.ResearchPlan,
		})
	}
	return res
}

func (m *SessionMapper) ToStatus(st store.Status) dto.StatusResponse {
	res := dto.StatusResponse{
		Phase:           st.Phase(),
		GeneratingIdeas: st.GeneratingIdeas,
		LastError:       st.LastError,
	}
	if st.PlanTarget != nil {
		target := *st.PlanTarget
		res.PlanTarget = &target
	}
	return res
}

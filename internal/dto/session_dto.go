package dto

import "time"

type CreateSessionResponse struct {
	SessionId string           `json:"session_id"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Session   *SessionResponse `json:"session"`
}

type SetModalityRequest struct {
	Modality string `json:"modality" validate:"required,oneof=text emoji image TEXT EMOJI IMAGE"`
}

type ToggleOptionRequest struct {
	Item string `json:"item" validate:"required,max=64"`
}

// Value may be empty to clear the entry. Long text is truncated, not rejected.
type SetFreeformRequest struct {
	Value string `json:"value" validate:"max=1024"`
}

type SelectionResponse struct {
	Offered          []string `json:"offered"`
	Chosen           []string `json:"chosen"`
	Freeform         string   `json:"freeform"`
	EffectiveCount   int      `json:"effective_count"`
	Full             bool     `json:"full"`
	Valid            bool     `json:"valid"`
	FreeformDisabled bool     `json:"freeform_disabled"`
}

type ImageResponse struct {
	Index      int    `json:"index"`
	MediaType  string `json:"media_type"`
	Size       int    `json:"size"`
	PreviewURL string `json:"preview_url,omitempty"`
}

type ImageSelectionResponse struct {
	Images    []ImageResponse `json:"images"`
	Remaining int             `json:"remaining"`
	Valid     bool            `json:"valid"`
}

type IdeaResponse struct {
	Index        int     `json:"index"`
	Title        string  `json:"title"`
	Summary      string  `json:"summary"`
	ResearchPlan *string `json:"research_plan,omitempty"`
}

type StatusResponse struct {
	Phase           string `json:"phase"`
	GeneratingIdeas bool   `json:"generating_ideas"`
	PlanTarget      *int   `json:"plan_target"`
	LastError       string `json:"last_error,omitempty"`
}

type SessionResponse struct {
	Id             string                 `json:"id"`
	ActiveModality string                 `json:"active_modality"`
	Text           SelectionResponse      `json:"text"`
	Emoji          SelectionResponse      `json:"emoji"`
	Images         ImageSelectionResponse `json:"images"`
	CanGenerate    bool                   `json:"can_generate"`
	Ideas          []IdeaResponse         `json:"ideas"`
	Status         StatusResponse         `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
}

type FreeformResponse struct {
	Stored    string            `json:"stored"`
	Selection SelectionResponse `json:"selection"`
}

// Accepted is false when the request had nothing to do, e.g. a plan that
// already exists.
type GenerationResponse struct {
	Accepted bool             `json:"accepted"`
	Session  *SessionResponse `json:"session"`
}

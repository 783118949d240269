package service

import (
	"context"
	"fmt"
	"time"

	"storyspark-be/internal/dto"
	"storyspark-be/internal/mapper"
	"storyspark-be/internal/pkg/logger"
	"storyspark-be/internal/pkg/serverutils"
	"storyspark-be/internal/repository/memory"
	"storyspark-be/pkg/inspiration"
	"storyspark-be/pkg/store"

	"github.com/google/uuid"
)

// Session tokens outlive the sliding session expiry; an expired session
// answers 404 even with a valid token.
const tokenLifetime = 24 * time.Hour

type ISessionService interface {
	Create(ctx context.Context) (*dto.CreateSessionResponse, error)
	Get(ctx context.Context, sessionId string) (*dto.SessionResponse, error)
	End(ctx context.Context, sessionId string) error

	SetModality(ctx context.Context, sessionId string, req dto.SetModalityRequest) (*dto.SessionResponse, error)
	RefreshOptions(ctx context.Context, sessionId string) (*dto.SelectionResponse, error)
	ToggleOption(ctx context.Context, sessionId string, req dto.ToggleOptionRequest) (*dto.SelectionResponse, error)
	SetFreeform(ctx context.Context, sessionId string, req dto.SetFreeformRequest) (*dto.FreeformResponse, error)

	AddImages(ctx context.Context, sessionId string, files []inspiration.ImageFile) (*dto.ImageSelectionResponse, error)
	RemoveImage(ctx context.Context, sessionId string, index int) (*dto.ImageSelectionResponse, error)
	GetPreview(ctx context.Context, sessionId, previewId string) (*memory.Preview, error)
}

type sessionService struct {
	sessions *memory.SessionRepository
	previews *memory.PreviewRepository
	mapper   *mapper.SessionMapper
	secret   string
	logger   logger.ILogger
}

func NewSessionService(
	sessions *memory.SessionRepository,
	previews *memory.PreviewRepository,
	mapper *mapper.SessionMapper,
	secret string,
	logger logger.ILogger,
) ISessionService {
	return &sessionService{
		sessions: sessions,
		previews: previews,
		mapper:   mapper,
		secret:   secret,
		logger:   logger,
	}
}

func (s *sessionService) Create(ctx context.Context) (*dto.CreateSessionResponse, error) {
	id := uuid.NewString()
	sess := store.NewSession(id, s.previews, nil)

	token, err := serverutils.IssueSessionToken(s.secret, id, tokenLifetime)
	if err != nil {
		return nil, err
	}
	s.sessions.Save(sess)

	s.logger.Info("SessionService", "Session created", map[string]interface{}{"session_id": id})

	sess.Lock()
	snapshot := s.mapper.ToResponse(sess)
	sess.Unlock()

	return &dto.CreateSessionResponse{
		SessionId: id,
		Token:     token,
		ExpiresAt: time.Now().Add(tokenLifetime),
		Session:   snapshot,
	}, nil
}

func (s *sessionService) load(sessionId string) (*store.Session, error) {
	sess, ok := s.sessions.Get(sessionId)
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionService) Get(ctx context.Context, sessionId string) (*dto.SessionResponse, error) {
	sess, err := s.load(sessionId)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	return s.mapper.ToResponse(sess), nil
}

func (s *sessionService) End(ctx context.Context, sessionId string) error {
	if _, err := s.load(sessionId); err != nil {
		return err
	}
	s.sessions.Delete(sessionId)
	s.logger.Info("SessionService", "Session ended", map[string]interface{}{"session_id": sessionId})
	return nil
}

func (s *sessionService) SetModality(ctx context.Context, sessionId string, req dto.SetModalityRequest) (*dto.SessionResponse, error) {
	modality, err := inspiration.ParseModality(req.Modality)
	if err != nil {
		return nil, err
	}
	sess, err := s.load(sessionId)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Activate(modality); err != nil {
		return nil, err
	}
	return s.mapper.ToResponse(sess), nil
}

func (s *sessionService) RefreshOptions(ctx context.Context, sessionId string) (*dto.SelectionResponse, error) {
	sess, err := s.load(sessionId)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	sel, err := sess.ActiveSelection()
	if err != nil {
		return nil, err
	}
	sel.RefreshOffered()
	res := s.mapper.ToSelection(sel)
	return &res, nil
}

func (s *sessionService) ToggleOption(ctx context.Context, sessionId string, req dto.ToggleOptionRequest) (*dto.SelectionResponse, error) {
	sess, err := s.load(sessionId)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	sel, err := sess.ActiveSelection()
	if err != nil {
		return nil, err
	}
	if _, err := sel.Toggle(req.Item); err != nil {
		return nil, err
	}
	res := s.mapper.ToSelection(sel)
	return &res, nil
}

func (s *sessionService) SetFreeform(ctx context.Context, sessionId string, req dto.SetFreeformRequest) (*dto.FreeformResponse, error) {
	sess, err := s.load(sessionId)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	sel, err := sess.ActiveSelection()
	if err != nil {
		return nil, err
	}
	stored, err := sel.SetFreeform(req.Value)
	if err != nil {
		return nil, err
	}
	return &dto.FreeformResponse{Stored: stored, Selection: s.mapper.ToSelection(sel)}, nil
}

func (s *sessionService) AddImages(ctx context.Context, sessionId string, files []inspiration.ImageFile) (*dto.ImageSelectionResponse, error) {
	sess, err := s.load(sessionId)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Images.AddImages(files); err != nil {
		s.logger.Warn("SessionService", "Image batch rejected", map[string]interface{}{
			"session_id": sessionId,
			"files":      len(files),
			"error":      err.Error(),
		})
		return nil, err
	}
	res := s.mapper.ToImages(sess.Images)
	return &res, nil
}

func (s *sessionService) RemoveImage(ctx context.Context, sessionId string, index int) (*dto.ImageSelectionResponse, error) {
	sess, err := s.load(sessionId)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Images.RemoveImage(index); err != nil {
		return nil, err
	}
	res := s.mapper.ToImages(sess.Images)
	return &res, nil
}

func (s *sessionService) GetPreview(ctx context.Context, sessionId, previewId string) (*memory.Preview, error) {
	sess, err := s.load(sessionId)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	owned := false
	for _, img := range sess.Images.Images() {
		if img.PreviewID == previewId {
			owned = true
			break
		}
	}
	sess.Unlock()

	if !owned {
		return nil, fmt.Errorf("preview %s: %w", previewId, memory.ErrPreviewNotFound)
	}
	preview, ok := s.previews.Get(previewId)
	if !ok {
		return nil, fmt.Errorf("preview %s: %w", previewId, memory.ErrPreviewNotFound)
	}
	return &preview, nil
}

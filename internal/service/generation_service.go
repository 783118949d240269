package service

import (
	"context"
	"sync"
	"time"

	"storyspark-be/internal/dto"
	"storyspark-be/internal/mapper"
	"storyspark-be/internal/pkg/logger"
	"storyspark-be/internal/repository/memory"
	"storyspark-be/internal/tracer"
	"storyspark-be/pkg/generation"
	"storyspark-be/pkg/store"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type IGenerationService interface {
	// GenerateIdeas starts idea generation. With wait the call returns once
	// the ideas are in, otherwise as soon as the request was accepted.
	GenerateIdeas(ctx context.Context, sessionId string, wait bool) (*dto.GenerationResponse, error)
	GeneratePlan(ctx context.Context, sessionId string, index int, wait bool) (*dto.GenerationResponse, error)
	// Shutdown waits for background generations until ctx is done.
	Shutdown(ctx context.Context) error
}

type job interface {
	Run(ctx context.Context) error
}

type generationService struct {
	sessions     *memory.SessionRepository
	orchestrator *generation.Orchestrator
	mapper       *mapper.SessionMapper
	timeout      time.Duration
	logger       logger.ILogger

	wg sync.WaitGroup
}

func NewGenerationService(
	sessions *memory.SessionRepository,
	orchestrator *generation.Orchestrator,
	mapper *mapper.SessionMapper,
	timeout time.Duration,
	logger logger.ILogger,
) IGenerationService {
	return &generationService{
		sessions:     sessions,
		orchestrator: orchestrator,
		mapper:       mapper,
		timeout:      timeout,
		logger:       logger,
	}
}

func (s *generationService) GenerateIdeas(ctx context.Context, sessionId string, wait bool) (*dto.GenerationResponse, error) {
	sess, ok := s.sessions.Get(sessionId)
	if !ok {
		return nil, store.ErrSessionNotFound
	}

	j, err := s.orchestrator.BeginIdeas(sess)
	if err != nil {
		return nil, err
	}
	if err := s.dispatch(ctx, "GenerateIdeas", sess.ID, j, wait, attribute.Bool("wait", wait)); err != nil {
		return nil, err
	}
	return s.respond(sess, true), nil
}

func (s *generationService) GeneratePlan(ctx context.Context, sessionId string, index int, wait bool) (*dto.GenerationResponse, error) {
	sess, ok := s.sessions.Get(sessionId)
	if !ok {
		return nil, store.ErrSessionNotFound
	}

	j, err := s.orchestrator.BeginPlan(sess, index)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return s.respond(sess, false), nil
	}
	if err := s.dispatch(ctx, "GeneratePlan", sess.ID, j, wait, attribute.Int("index", index)); err != nil {
		return nil, err
	}
	return s.respond(sess, true), nil
}

// dispatch runs an accepted job under the generation timeout, inline when
// wait is set and on its own goroutine otherwise.
func (s *generationService) dispatch(ctx context.Context, name, sessionID string, j job, wait bool, attrs ...attribute.KeyValue) error {
	if wait {
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.run(runCtx, name, sessionID, j, attrs)
	}

	// The request context ends with the response, keep only its span
	parent := trace.ContextWithSpan(context.Background(), trace.SpanFromContext(ctx))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		runCtx, cancel := context.WithTimeout(parent, s.timeout)
		defer cancel()
		// Failures are recorded on the session and announced as events
		_ = s.run(runCtx, name, sessionID, j, attrs)
	}()
	return nil
}

func (s *generationService) run(ctx context.Context, name, sessionID string, j job, attrs []attribute.KeyValue) error {
	ctx, span := tracer.Tracer("generation").Start(ctx, name,
		trace.WithAttributes(append(attrs, attribute.String("session_id", sessionID))...))
	defer span.End()

	start := time.Now()
	err := j.Run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	s.logger.Debug("GenerationService", name+" finished", map[string]interface{}{
		"session_id":  sessionID,
		"duration_ms": time.Since(start).Milliseconds(),
		"failed":      err != nil,
	})
	return err
}

func (s *generationService) respond(sess *store.Session, accepted bool) *dto.GenerationResponse {
	sess.Lock()
	defer sess.Unlock()
	return &dto.GenerationResponse{Accepted: accepted, Session: s.mapper.ToResponse(sess)}
}

func (s *generationService) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

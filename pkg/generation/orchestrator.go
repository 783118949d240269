package generation

import (
	"context"
	"fmt"

	"storyspark-be/internal/constant"
	"storyspark-be/internal/pkg/logger"
	"storyspark-be/pkg/events"
	"storyspark-be/pkg/idea"
	"storyspark-be/pkg/inspiration"
	"storyspark-be/pkg/prompt"
	"storyspark-be/pkg/store"
)

const logModule = "GENERATION"

// Failure is returned by a job whose model call failed. Message is the text
// recorded as the session's last error.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// PlanFailedMessage names the idea whose plan could not be generated.
func PlanFailedMessage(title string) string {
	return fmt.Sprintf("Failed to generate research plan for \"%s\". %s", title, constant.PlanFailedMessage)
}

// Orchestrator drives idea and plan generation for sessions. Each operation
// is split in a synchronous Begin, which gates and marks the session busy,
// and a Run that talks to the model and applies the result. Run always
// clears the in-flight flag it owns.
type Orchestrator struct {
	client    ModelClient
	publisher events.Publisher
	logger    logger.ILogger
}

// NewOrchestrator wires the model client. publisher may be nil.
func NewOrchestrator(client ModelClient, publisher events.Publisher, logger logger.ILogger) *Orchestrator {
	return &Orchestrator{client: client, publisher: publisher, logger: logger}
}

// IdeasJob is an accepted idea generation waiting to be run.
type IdeasJob struct {
	o        *Orchestrator
	sess     *store.Session
	modality inspiration.Modality
	req      prompt.Request
}

// BeginIdeas validates the active selection and marks the session as
// generating. The previous ideas and last error are cleared.
func (o *Orchestrator) BeginIdeas(sess *store.Session) (*IdeasJob, error) {
	sess.Lock()
	if sess.Status.GeneratingIdeas {
		sess.Unlock()
		return nil, ErrIdeasInFlight
	}
	if !sess.ValidActive() {
		modality := sess.Active
		sess.Unlock()
		return nil, selectionError(modality)
	}

	req, err := prompt.Build(sess.Active, sess.Payload())
	if err != nil {
		sess.Unlock()
		return nil, fmt.Errorf("begin ideas: %w", err)
	}

	job := &IdeasJob{o: o, sess: sess, modality: sess.Active, req: req}
	sess.Status.LastError = ""
	sess.Status.GeneratingIdeas = true
	sess.Ideas = sess.Ideas.ReplaceAll(nil)
	sess.Unlock()

	o.publish(events.IdeasRequested, sess.ID, map[string]interface{}{
		"modality":    job.modality.String(),
		"attachments": len(req.Attachments),
	})
	return job, nil
}

// Run calls the model and applies its answer. A model failure is returned as
// a *Failure after being recorded on the session.
func (j *IdeasJob) Run(ctx context.Context) (err error) {
	var ideas []idea.StoryIdea
	defer func() {
		if r := recover(); r != nil {
			err = newModelError(KindTransport, fmt.Errorf("model client panic: %v", r))
		}
		err = j.finish(ideas, err)
	}()

	ideas, err = j.o.client.GenerateIdeas(ctx, j.req)
	return err
}

func (j *IdeasJob) finish(ideas []idea.StoryIdea, err error) error {
	sess := j.sess
	sess.Lock()
	sess.Status.GeneratingIdeas = false
	if err != nil {
		sess.Status.LastError = constant.IdeasFailedMessage
		sess.Ideas = sess.Ideas.ReplaceAll(nil)
	} else {
		sess.Status.LastError = ""
		sess.Ideas = sess.Ideas.ReplaceAll(ideas)
	}
	sess.Unlock()

	if err != nil {
		j.o.logger.Error(logModule, "Idea generation failed", map[string]interface{}{
			"session_id": sess.ID,
			"modality":   j.modality.String(),
			"kind":       string(KindOf(err)),
			"class":      ClassOf(err),
			"error":      err.Error(),
		})
		j.o.publish(events.IdeasFailed, sess.ID, map[string]interface{}{
			"modality": j.modality.String(),
			"kind":     string(KindOf(err)),
		})
		return &Failure{Message: constant.IdeasFailedMessage, Err: err}
	}

	j.o.logger.Info(logModule, "Ideas generated", map[string]interface{}{
		"session_id": sess.ID,
		"modality":   j.modality.String(),
		"count":      len(ideas),
	})
	j.o.publish(events.IdeasGenerated, sess.ID, map[string]interface{}{
		"modality": j.modality.String(),
		"count":    len(ideas),
	})
	return nil
}

// GenerateIdeas runs a whole idea generation synchronously.
func (o *Orchestrator) GenerateIdeas(ctx context.Context, sess *store.Session) error {
	job, err := o.BeginIdeas(sess)
	if err != nil {
		return err
	}
	return job.Run(ctx)
}

// PlanJob is an accepted plan generation waiting to be run.
type PlanJob struct {
	o      *Orchestrator
	sess   *store.Session
	index  int
	target idea.StoryIdea
}

// BeginPlan marks the session as generating a plan for the idea at index.
// It returns a nil job when there is nothing to do: no idea at index, or the
// idea already has a plan.
func (o *Orchestrator) BeginPlan(sess *store.Session, index int) (*PlanJob, error) {
	sess.Lock()
	target, ok := sess.Ideas.At(index)
	if !ok || target.HasPlan() {
		sess.Unlock()
		return nil, nil
	}
	if sess.Status.PlanTarget != nil {
		sess.Unlock()
		return nil, ErrPlanInFlight
	}

	planTarget := index
	sess.Status.PlanTarget = &planTarget
	sess.Status.LastError = ""
	sess.Unlock()

	o.publish(events.PlanRequested, sess.ID, map[string]interface{}{
		"index": index,
		"title": target.Title,
	})
	return &PlanJob{o: o, sess: sess, index: index, target: target}, nil
}

// Run calls the model and patches the plan onto the idea. A plan arriving
// after its idea was replaced is dropped.
func (j *PlanJob) Run(ctx context.Context) (err error) {
	var plan string
	defer func() {
		if r := recover(); r != nil {
			err = newModelError(KindTransport, fmt.Errorf("model client panic: %v", r))
		}
		err = j.finish(plan, err)
	}()

	plan, err = j.o.client.GeneratePlan(ctx, j.target.Title, j.target.Summary)
	return err
}

func (j *PlanJob) finish(plan string, err error) error {
	sess := j.sess
	sess.Lock()
	sess.Status.PlanTarget = nil

	if err != nil {
		message := PlanFailedMessage(j.target.Title)
		sess.Status.LastError = message
		sess.Unlock()

		j.o.logger.Error(logModule, "Plan generation failed", map[string]interface{}{
			"session_id": sess.ID,
			"index":      j.index,
			"kind":       string(KindOf(err)),
			"class":      ClassOf(err),
			"error":      err.Error(),
		})
		j.o.publish(events.PlanFailed, sess.ID, map[string]interface{}{
			"index": j.index,
			"title": j.target.Title,
			"kind":  string(KindOf(err)),
		})
		return &Failure{Message: message, Err: err}
	}

	current, ok := sess.Ideas.At(j.index)
	if !ok || !current.SameIdea(j.target) {
		sess.Unlock()
		j.o.logger.Warn(logModule, "Discarding plan for a replaced idea", map[string]interface{}{
			"session_id": sess.ID,
			"index":      j.index,
			"title":      j.target.Title,
		})
		return nil
	}

	patched, patchErr := sess.Ideas.PatchAt(j.index, idea.Patch{ResearchPlan: &plan})
	if patchErr == nil {
		sess.Ideas = patched
	}
	sess.Unlock()

	if patchErr != nil {
		j.o.logger.Warn(logModule, "Plan not applied", map[string]interface{}{
			"session_id": sess.ID,
			"index":      j.index,
			"error":      patchErr.Error(),
		})
		return nil
	}

	j.o.logger.Info(logModule, "Plan generated", map[string]interface{}{
		"session_id": sess.ID,
		"index":      j.index,
	})
	j.o.publish(events.PlanGenerated, sess.ID, map[string]interface{}{
		"index": j.index,
		"title": j.target.Title,
	})
	return nil
}

// GeneratePlan runs a whole plan generation synchronously. Nothing happens
// when the idea is missing or already has a plan.
func (o *Orchestrator) GeneratePlan(ctx context.Context, sess *store.Session, index int) error {
	job, err := o.BeginPlan(sess, index)
	if err != nil || job == nil {
		return err
	}
	return job.Run(ctx)
}

func (o *Orchestrator) publish(eventType, sessionID string, data map[string]interface{}) {
	if o.publisher == nil {
		return
	}
	data[events.SessionIDKey] = sessionID
	if err := o.publisher.Publish(context.Background(), events.NewEvent(eventType, data)); err != nil {
		o.logger.Warn(logModule, "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func selectionError(modality inspiration.Modality) error {
	if modality == inspiration.ModalityImage {
		return &inspiration.ValidationError{
			Field:   "images",
			Message: fmt.Sprintf("Add %d or %d images before generating.", inspiration.MinImages, inspiration.MaxImages),
		}
	}
	return &inspiration.ValidationError{
		Field: "selection",
		Message: fmt.Sprintf("Select between %d and %d %s options before generating.",
			inspiration.MinOptionSelections, inspiration.MaxOptionSelections, modality),
	}
}

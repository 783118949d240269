package generation

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"storyspark-be/internal/constant"
	"storyspark-be/internal/pkg/logger"
	"storyspark-be/pkg/events"
	"storyspark-be/pkg/idea"
	"storyspark-be/pkg/inspiration"
	"storyspark-be/pkg/llm"
	"storyspark-be/pkg/prompt"
	"storyspark-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu sync.Mutex

	ideas    []idea.StoryIdea
	ideasErr error
	plan     string
	planErr  error
	panics   bool

	// release, when set, blocks calls until closed
	release chan struct{}

	ideaCalls []prompt.Request
	planCalls []string
}

func (f *fakeClient) GenerateIdeas(ctx context.Context, req prompt.Request) ([]idea.StoryIdea, error) {
	f.mu.Lock()
	f.ideaCalls = append(f.ideaCalls, req)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	if f.panics {
		panic("boom")
	}
	return f.ideas, f.ideasErr
}

func (f *fakeClient) GeneratePlan(ctx context.Context, title, summary string) (string, error) {
	f.mu.Lock()
	f.planCalls = append(f.planCalls, title)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.plan, f.planErr
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, e.EventType())
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

var threeIdeas = []idea.StoryIdea{
	{Title: "One", Summary: "first"},
	{Title: "Two", Summary: "second"},
	{Title: "Three", Summary: "third"},
}

// readySession has "Health" and "Technology" chosen on the text modality.
func readySession(t *testing.T) *store.Session {
	t.Helper()
	rng := rand.New(rand.NewPCG(3, 5))
	sess := store.NewSession("sess-1", nil, rng)
	sess.Text = inspiration.NewSelection(inspiration.ModalityText, []string{
		"Health", "Technology", "Science", "Sports", "Culture",
		"Travel", "Food", "Education", "Climate Change", "Space",
	}, rng)
	require.NoError(t, sess.Activate(inspiration.ModalityText))
	for _, topic := range []string{"Health", "Technology"} {
		changed, err := sess.Text.Toggle(topic)
		require.NoError(t, err)
		require.True(t, changed)
	}
	return sess
}

func withIdeas(t *testing.T, sess *store.Session, ideas []idea.StoryIdea) {
	t.Helper()
	sess.Lock()
	sess.Ideas = idea.NewCollection(ideas)
	sess.Unlock()
}

func newOrchestrator(client ModelClient, pub events.Publisher) *Orchestrator {
	return NewOrchestrator(client, pub, logger.NewNopLogger())
}

func TestGenerateIdeasSuccess(t *testing.T) {
	client := &fakeClient{ideas: threeIdeas}
	pub := &recordingPublisher{}
	sess := readySession(t)
	sess.Status.LastError = "old failure"

	err := newOrchestrator(client, pub).GenerateIdeas(context.Background(), sess)
	require.NoError(t, err)

	require.Len(t, client.ideaCalls, 1)
	assert.Contains(t, client.ideaCalls[0].InstructionText, "Health, Technology")
	assert.Equal(t, threeIdeas, sess.Ideas.Get())
	for _, got := range sess.Ideas.Get() {
		assert.False(t, got.HasPlan())
	}
	assert.False(t, sess.Status.GeneratingIdeas)
	assert.Empty(t, sess.Status.LastError)
	assert.Equal(t, []string{events.IdeasRequested, events.IdeasGenerated}, pub.Types())
}

func TestGenerateIdeasFailure(t *testing.T) {
	cause := newModelError(KindSchema, errors.New("idea 1 is missing title or summary"))
	client := &fakeClient{ideasErr: cause}
	pub := &recordingPublisher{}
	sess := readySession(t)
	withIdeas(t, sess, threeIdeas)

	err := newOrchestrator(client, pub).GenerateIdeas(context.Background(), sess)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, constant.IdeasFailedMessage, failure.Message)
	assert.Equal(t, KindSchema, KindOf(err))

	assert.Zero(t, sess.Ideas.Len())
	assert.Equal(t, constant.IdeasFailedMessage, sess.Status.LastError)
	assert.False(t, sess.Status.GeneratingIdeas)
	assert.Equal(t, []string{events.IdeasRequested, events.IdeasFailed}, pub.Types())
}

func TestGenerateIdeasNonArrayAnswerRecordsError(t *testing.T) {
	for _, answer := range []string{`null`, `{}`} {
		t.Run(answer, func(t *testing.T) {
			sess := readySession(t)
			client := NewLLMClient(&stubProvider{answer: answer})

			err := newOrchestrator(client, nil).GenerateIdeas(context.Background(), sess)

			var failure *Failure
			require.ErrorAs(t, err, &failure)
			assert.Equal(t, KindSchema, KindOf(err))
			assert.Equal(t, constant.IdeasFailedMessage, sess.Status.LastError)
			assert.Zero(t, sess.Ideas.Len())
			assert.False(t, sess.Status.GeneratingIdeas)
		})
	}
}

type recordingLogger struct {
	logger.ILogger
	mu     sync.Mutex
	errors []map[string]interface{}
}

func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, details)
}

func TestFailureLogCarriesProviderClass(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "rate limited", err: llm.ClassifyHTTPError("gemini", 429, nil), want: "transient"},
		{name: "rejected", err: llm.ClassifyHTTPError("gemini", 400, nil), want: "fatal"},
		{name: "unclassified", err: errors.New("boom"), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{ILogger: logger.NewNopLogger()}
			client := NewLLMClient(&stubProvider{err: tt.err})
			sess := readySession(t)

			err := NewOrchestrator(client, nil, log).GenerateIdeas(context.Background(), sess)

			require.Error(t, err)
			assert.Equal(t, tt.want, ClassOf(err))
			require.Len(t, log.errors, 1)
			assert.Equal(t, tt.want, log.errors[0]["class"])
		})
	}
}

func TestGenerateIdeasClearsFlagOnPanic(t *testing.T) {
	sess := readySession(t)

	err := newOrchestrator(&fakeClient{panics: true}, nil).GenerateIdeas(context.Background(), sess)

	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.False(t, sess.Status.GeneratingIdeas)
	assert.NotEmpty(t, sess.Status.LastError)
}

func TestBeginIdeasGating(t *testing.T) {
	t.Run("invalid selection", func(t *testing.T) {
		client := &fakeClient{}
		sess := store.NewSession("s", nil, nil)

		_, err := newOrchestrator(client, nil).BeginIdeas(sess)

		assert.True(t, inspiration.IsValidation(err))
		assert.False(t, sess.Status.GeneratingIdeas)
		assert.Empty(t, client.ideaCalls)
	})

	t.Run("already in flight", func(t *testing.T) {
		o := newOrchestrator(&fakeClient{ideas: threeIdeas}, nil)
		sess := readySession(t)

		job, err := o.BeginIdeas(sess)
		require.NoError(t, err)
		assert.True(t, sess.Status.GeneratingIdeas)
		assert.False(t, sess.CanGenerate())

		_, err = o.BeginIdeas(sess)
		assert.ErrorIs(t, err, ErrIdeasInFlight)

		require.NoError(t, job.Run(context.Background()))
		assert.True(t, sess.CanGenerate())
	})

	t.Run("begin clears previous ideas", func(t *testing.T) {
		sess := readySession(t)
		withIdeas(t, sess, threeIdeas)

		_, err := newOrchestrator(&fakeClient{}, nil).BeginIdeas(sess)
		require.NoError(t, err)
		assert.Zero(t, sess.Ideas.Len())
	})
}

func TestGeneratePlanPatchesSingleIdea(t *testing.T) {
	client := &fakeClient{plan: "### Story Outline\n..."}
	pub := &recordingPublisher{}
	sess := readySession(t)
	withIdeas(t, sess, threeIdeas)

	require.NoError(t, newOrchestrator(client, pub).GeneratePlan(context.Background(), sess, 1))

	got := sess.Ideas.Get()
	assert.Equal(t, threeIdeas[0], got[0])
	assert.Equal(t, threeIdeas[2], got[2])
	require.True(t, got[1].HasPlan())
	assert.Equal(t, "### Story Outline\n...", *got[1].ResearchPlan)
	assert.Nil(t, sess.Status.PlanTarget)
	assert.Equal(t, []string{"Two"}, client.planCalls)
	assert.Equal(t, []string{events.PlanRequested, events.PlanGenerated}, pub.Types())
}

func TestGeneratePlanNoOps(t *testing.T) {
	existing := "already"
	ideas := []idea.StoryIdea{{Title: "A", Summary: "a", ResearchPlan: &existing}}

	tests := []struct {
		name  string
		index int
	}{
		{name: "idea has plan", index: 0},
		{name: "missing index", index: 4},
		{name: "negative index", index: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{plan: "new"}
			sess := readySession(t)
			withIdeas(t, sess, ideas)

			require.NoError(t, newOrchestrator(client, nil).GeneratePlan(context.Background(), sess, tt.index))

			assert.Empty(t, client.planCalls)
			assert.Equal(t, "already", *sess.Ideas.Get()[0].ResearchPlan)
			assert.Nil(t, sess.Status.PlanTarget)
		})
	}
}

func TestGeneratePlanFailureNamesIdea(t *testing.T) {
	client := &fakeClient{planErr: newModelError(KindTransport, errors.New("503"))}
	sess := readySession(t)
	withIdeas(t, sess, threeIdeas)

	err := newOrchestrator(client, nil).GeneratePlan(context.Background(), sess, 2)

	require.Error(t, err)
	want := `Failed to generate research plan for "Three". Failed to generate research plan. Please try again.`
	assert.Equal(t, want, err.Error())
	assert.Equal(t, want, sess.Status.LastError)
	assert.Nil(t, sess.Status.PlanTarget)
	assert.False(t, sess.Ideas.Get()[2].HasPlan())
}

func TestBeginPlanRefusesSecondPlan(t *testing.T) {
	o := newOrchestrator(&fakeClient{plan: "p"}, nil)
	sess := readySession(t)
	withIdeas(t, sess, threeIdeas)

	job, err := o.BeginPlan(sess, 0)
	require.NoError(t, err)
	require.NotNil(t, job)
	require.NotNil(t, sess.Status.PlanTarget)
	assert.Equal(t, 0, *sess.Status.PlanTarget)

	_, err = o.BeginPlan(sess, 1)
	assert.ErrorIs(t, err, ErrPlanInFlight)

	require.NoError(t, job.Run(context.Background()))
	assert.Nil(t, sess.Status.PlanTarget)
}

func TestPlanForReplacedIdeaIsDropped(t *testing.T) {
	o := newOrchestrator(&fakeClient{plan: "late plan", ideas: []idea.StoryIdea{{Title: "New", Summary: "n"}}}, nil)
	sess := readySession(t)
	withIdeas(t, sess, threeIdeas)

	planJob, err := o.BeginPlan(sess, 0)
	require.NoError(t, err)

	// ideas are regenerated while the plan is in flight
	require.NoError(t, o.GenerateIdeas(context.Background(), sess))

	require.NoError(t, planJob.Run(context.Background()))

	got := sess.Ideas.Get()
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].Title)
	assert.False(t, got[0].HasPlan())
	assert.Nil(t, sess.Status.PlanTarget)
}

func TestIdeasAndPlanMayOverlap(t *testing.T) {
	release := make(chan struct{})
	client := &fakeClient{ideas: threeIdeas, plan: "plan", release: release}
	o := newOrchestrator(client, nil)
	sess := readySession(t)
	withIdeas(t, sess, threeIdeas)

	planJob, err := o.BeginPlan(sess, 0)
	require.NoError(t, err)
	ideasJob, err := o.BeginIdeas(sess)
	require.NoError(t, err)
	assert.Equal(t, store.PhaseGeneratingBoth, sess.Status.Phase())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = planJob.Run(context.Background()) }()
	go func() { defer wg.Done(); _ = ideasJob.Run(context.Background()) }()
	close(release)
	wg.Wait()

	assert.Equal(t, store.PhaseIdle, sess.Status.Phase())
	assert.Equal(t, 3, sess.Ideas.Len())
}

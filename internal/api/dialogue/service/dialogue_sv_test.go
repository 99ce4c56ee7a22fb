package dialogueService

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SupportDesk/internal/api/dialogue"
	dialogueRepository "SupportDesk/internal/api/dialogue/repository"
	"SupportDesk/internal/entity"
	"SupportDesk/pkg/classifier"
	redisPkg "SupportDesk/pkg/redis"
	"SupportDesk/pkg/utils"
)

type fakeVectorizer struct{}

func (fakeVectorizer) Transform(text string) []float64 {
	return []float64{1, 0}
}

type scriptedPrimary struct {
	classes []string
	probs   []float64
}

func (p *scriptedPrimary) PredictProba(features []float64) []float64 {
	return p.probs
}

func (p *scriptedPrimary) Classes() []string {
	return p.classes
}

type fakeSecondary struct {
	label string
}

func (f fakeSecondary) Predict(features []float64) string {
	return f.label
}

type fakeEncoder struct {
	err error
}

func (f fakeEncoder) Transform(category string, hour int) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float64{1}, nil
}

type memSessions struct {
	store map[string]entity.DialogueSession
}

func newMemSessions() *memSessions {
	return &memSessions{store: make(map[string]entity.DialogueSession)}
}

func (m *memSessions) GetSession(ctx context.Context, conversationID string) (entity.DialogueSession, error) {
	session, ok := m.store[conversationID]
	if !ok {
		return entity.DialogueSession{}, redisPkg.ErrSessionNotFound
	}
	return session, nil
}

func (m *memSessions) SaveSession(ctx context.Context, session entity.DialogueSession) error {
	m.store[session.ID] = session
	return nil
}

func (m *memSessions) DeleteSession(ctx context.Context, conversationID string) error {
	delete(m.store, conversationID)
	return nil
}

type captureSink struct {
	records []entity.SubmissionRecord
	err     error
}

func (c *captureSink) AppendSubmission(ctx context.Context, record entity.SubmissionRecord) error {
	if c.err != nil {
		return c.err
	}
	c.records = append(c.records, record)
	return nil
}

type fakeMailer struct {
	notices int
}

func (f *fakeMailer) SendEscalationNotice(conversationID string, message string) error {
	f.notices++
	return nil
}

type stubMessages struct {
	rows []entity.ConversationMessage
}

func (s *stubMessages) CreateMessage(c context.Context, message entity.ConversationMessage) error {
	s.rows = append(s.rows, message)
	return nil
}

func (s *stubMessages) GetMessagesByConversationID(c context.Context, conversationID string) ([]entity.ConversationMessage, error) {
	var result []entity.ConversationMessage
	for _, row := range s.rows {
		if row.ConversationID == conversationID {
			result = append(result, row)
		}
	}
	return result, nil
}

type stubSubmissions struct{}

func (stubSubmissions) CreateSubmission(c context.Context, record entity.SubmissionRecord) error {
	return nil
}

func (stubSubmissions) GetSubmissionsByBaseIntent(c context.Context, baseIntent string) ([]entity.SubmissionRecord, error) {
	return nil, nil
}

func (stubSubmissions) GetAllSubmissions(c context.Context) ([]entity.SubmissionRecord, error) {
	return nil, nil
}

type stubMappings struct {
	rows []entity.IntentMapping
}

func (s *stubMappings) CreateMapping(c context.Context, mapping entity.IntentMapping) error {
	s.rows = append(s.rows, mapping)
	return nil
}

func (s *stubMappings) UpdateMapping(c context.Context, mapping entity.IntentMapping) error {
	return nil
}

func (s *stubMappings) DeleteMapping(c context.Context, id string) error {
	return nil
}

func (s *stubMappings) GetMappingByID(c context.Context, id string) (entity.IntentMapping, error) {
	return entity.IntentMapping{}, dialogue.ErrMappingNotFound
}

func (s *stubMappings) GetActiveMappings(c context.Context) ([]entity.IntentMapping, error) {
	return s.rows, nil
}

type fakeRepo struct {
	messages    *stubMessages
	submissions *stubSubmissions
	mappings    *stubMappings
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		messages:    &stubMessages{},
		submissions: &stubSubmissions{},
		mappings:    &stubMappings{},
	}
}

func (f *fakeRepo) NewClient(tx bool) (dialogueRepository.Client, error) {
	return dialogueRepository.Client{
		Messages:    f.messages,
		Submissions: f.submissions,
		Mappings:    f.mappings,
		Commit:      func() error { return nil },
		Rollback:    func() error { return nil },
	}, nil
}

type testEnv struct {
	service  IDialogueService
	sessions *memSessions
	sink     *captureSink
	mailer   *fakeMailer
	primary  *scriptedPrimary
	repo     *fakeRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	primary := &scriptedPrimary{
		classes: []string{"Refund request", "Technical issue", "Billing inquiry", "Cancellation request", "Product inquiry"},
		probs:   []float64{0.2, 0.2, 0.2, 0.2, 0.2},
	}

	sessions := newMemSessions()
	sink := &captureSink{}
	mailer := &fakeMailer{}
	repo := newFakeRepo()

	models := &classifier.Models{
		Vectorizer:  fakeVectorizer{},
		MetaEncoder: fakeEncoder{},
		Primary:     primary,
		Secondary:   fakeSecondary{label: "Warranty"},
	}

	config := &DialogueConfig{
		ConfidenceThreshold: 0.4,
		DefaultCategory:     "Electronics",
		DefaultHour:         12,
		HistoryLimit:        50,
		SimilarNeighbors:    3,
	}

	service := NewDialogueService(log, repo, sessions, sink, models, nil, mailer, nil, utils.New(), config)

	return &testEnv{
		service:  service,
		sessions: sessions,
		sink:     sink,
		mailer:   mailer,
		primary:  primary,
		repo:     repo,
	}
}

func (e *testEnv) setClassification(label string, confidence float64) {
	rest := (1 - confidence) / float64(len(e.primary.classes)-1)
	probs := make([]float64, len(e.primary.classes))
	for i, class := range e.primary.classes {
		if class == label {
			probs[i] = confidence
		} else {
			probs[i] = rest
		}
	}
	e.primary.probs = probs
}

func TestHandleTurn_CancellationSingleTurn(t *testing.T) {
	env := newTestEnv(t)
	env.setClassification("Cancellation request", 0.9)

	res, err := env.service.HandleTurn(context.Background(), dialogue.TurnRequest{
		ConversationID: "conv-1",
		Message:        "Please cancel my order 482910",
	})
	require.NoError(t, err)

	assert.Equal(t, dialogue.ActionSubmitted, res.Action)
	assert.Equal(t, "Cancellation request", res.Intent)
	assert.Contains(t, res.Reply, "has been submitted")
	assert.Contains(t, res.Reply, "order_id=482910")

	require.Len(t, env.sink.records, 1)
	assert.Equal(t, "Cancellation request", env.sink.records[0].Intent.Base)
	assert.Equal(t, "482910", env.sink.records[0].Slots["order_id"])

	session := env.sessions.store["conv-1"]
	assert.Equal(t, entity.SessionStatusEmpty, session.Status)
	assert.True(t, session.Intent.IsZero())
}

func TestHandleTurn_RefundMultiTurn(t *testing.T) {
	env := newTestEnv(t)
	env.setClassification("Refund request", 0.8)
	ctx := context.Background()

	res, err := env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-2",
		Message:        "I want to return my laptop",
	})
	require.NoError(t, err)
	assert.Equal(t, dialogue.ActionPrompt, res.Action)
	assert.Equal(t, "order_id", res.MissingSlot)
	assert.Equal(t, "Please provide: order_id", res.Reply)

	// The classifier flips mid-conversation; an open session must keep its
	// intent instead of resolving again.
	env.setClassification("Billing inquiry", 0.9)

	res, err = env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-2",
		Message:        "order 778823, it was broken",
	})
	require.NoError(t, err)
	assert.Equal(t, dialogue.ActionSubmitted, res.Action)
	assert.Equal(t, "Refund request", res.Intent)

	require.Len(t, env.sink.records, 1)
	record := env.sink.records[0]
	assert.Equal(t, "laptop", record.Slots["product_name"])
	assert.Equal(t, "778823", record.Slots["order_id"])
	assert.Equal(t, "broken", record.Slots["reason"])
}

func TestHandleTurn_PromptsFollowSchemaOrder(t *testing.T) {
	env := newTestEnv(t)
	env.setClassification("Refund request", 0.8)
	ctx := context.Background()

	res, err := env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-3",
		Message:        "I would like a refund",
	})
	require.NoError(t, err)
	assert.Equal(t, "product_name", res.MissingSlot)

	res, err = env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-3",
		Message:        "it was the fan",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_id", res.MissingSlot)

	res, err = env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-3",
		Message:        "order number 990011",
	})
	require.NoError(t, err)
	assert.Equal(t, "reason", res.MissingSlot)

	res, err = env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-3",
		Message:        "it arrived damaged",
	})
	require.NoError(t, err)
	assert.Equal(t, dialogue.ActionSubmitted, res.Action)
}

func TestHandleTurn_GreetingLeavesSessionUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.setClassification("Refund request", 0.8)
	ctx := context.Background()

	res, err := env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-4",
		Message:        "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, dialogue.ActionGreeting, res.Action)
	assert.Equal(t, "Hi there! How can I assist you today?", res.Reply)
	assert.Equal(t, entity.SessionStatusEmpty, env.sessions.store["conv-4"].Status)

	// Open a ticket, then greet mid-collection.
	_, err = env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-4",
		Message:        "refund for my laptop please",
	})
	require.NoError(t, err)
	require.Equal(t, entity.SessionStatusCollecting, env.sessions.store["conv-4"].Status)

	res, err = env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-4",
		Message:        "good morning",
	})
	require.NoError(t, err)
	assert.Equal(t, dialogue.ActionGreeting, res.Action)

	session := env.sessions.store["conv-4"]
	assert.Equal(t, entity.SessionStatusCollecting, session.Status)
	assert.Equal(t, "Refund request", session.Intent.Base)
	assert.Equal(t, "laptop", session.Slots["product_name"])
}

func TestHandleTurn_EscalatesWhenNothingMatches(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.service.HandleTurn(context.Background(), dialogue.TurnRequest{
		ConversationID: "conv-5",
		Message:        "qwerty asdf zxcv",
	})
	require.NoError(t, err)

	assert.Equal(t, dialogue.ActionEscalated, res.Action)
	assert.Equal(t, "Sorry, I couldn't understand. Escalating to human support.", res.Reply)
	assert.Equal(t, 1, env.mailer.notices)

	session := env.sessions.store["conv-5"]
	assert.Equal(t, entity.SessionStatusEmpty, session.Status)
	assert.True(t, session.Intent.IsZero())
	assert.Empty(t, env.sink.records)
}

func TestHandleTurn_KeywordFallbackBelowThreshold(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.service.HandleTurn(context.Background(), dialogue.TurnRequest{
		ConversationID: "conv-6",
		Message:        "I want a refund",
	})
	require.NoError(t, err)

	assert.Equal(t, dialogue.ActionPrompt, res.Action)
	assert.Equal(t, "Refund request", res.Intent)
	assert.Equal(t, "product_name", res.MissingSlot)
	assert.Equal(t, 0, env.mailer.notices)
}

func TestHandleTurn_ProductInquirySubIntent(t *testing.T) {
	env := newTestEnv(t)
	env.setClassification("Product inquiry", 0.7)

	res, err := env.service.HandleTurn(context.Background(), dialogue.TurnRequest{
		ConversationID: "conv-7",
		Message:        "does the tv come with warranty coverage",
	})
	require.NoError(t, err)

	assert.Equal(t, dialogue.ActionPrompt, res.Action)
	assert.Equal(t, "Product inquiry → Warranty", res.Intent)
	assert.Equal(t, "order_id", res.MissingSlot)
	assert.Equal(t, "tv", env.sessions.store["conv-7"].Slots["product_name"])
}

func TestHandleTurn_IntentWithoutSlotSchemaFinalizesImmediately(t *testing.T) {
	env := newTestEnv(t)
	// A label the slot schema does not know: zero required slots, so the
	// turn that resolves it also finalizes it, with an empty slot map.
	env.primary.classes = append(env.primary.classes, "Order status")
	env.setClassification("Order status", 0.95)

	res, err := env.service.HandleTurn(context.Background(), dialogue.TurnRequest{
		ConversationID: "conv-14",
		Message:        "where is my package",
	})
	require.NoError(t, err)

	assert.Equal(t, dialogue.ActionSubmitted, res.Action)
	assert.Equal(t, "Order status", res.Intent)

	require.Len(t, env.sink.records, 1)
	assert.Equal(t, "Order status", env.sink.records[0].Intent.Base)
	assert.Empty(t, env.sink.records[0].Slots)

	session := env.sessions.store["conv-14"]
	assert.Equal(t, entity.SessionStatusEmpty, session.Status)
	assert.True(t, session.Intent.IsZero())
}

func TestHandleTurn_SinkFailureKeepsSessionCollecting(t *testing.T) {
	env := newTestEnv(t)
	env.setClassification("Cancellation request", 0.9)
	env.sink.err = errors.New("sheet unavailable")
	ctx := context.Background()

	_, err := env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-8",
		Message:        "cancel order 555444",
	})
	require.ErrorIs(t, err, dialogue.ErrSubmissionFailed)

	session := env.sessions.store["conv-8"]
	assert.Equal(t, entity.SessionStatusCollecting, session.Status)
	assert.Equal(t, "555444", session.Slots["order_id"])

	// Resending after the sink recovers finalizes with the kept slots.
	env.sink.err = nil
	res, err := env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-8",
		Message:        "cancel order 555444",
	})
	require.NoError(t, err)
	assert.Equal(t, dialogue.ActionSubmitted, res.Action)
	require.Len(t, env.sink.records, 1)
	assert.Equal(t, "555444", env.sink.records[0].Slots["order_id"])
}

func TestHandleTurn_RejectsEmptyMessage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.HandleTurn(context.Background(), dialogue.TurnRequest{
		ConversationID: "conv-9",
		Message:        "   ",
	})
	assert.ErrorIs(t, err, dialogue.ErrEmptyMessage)
}

func TestHandleTurn_RejectsBadTicketMeta(t *testing.T) {
	env := newTestEnv(t)

	log := logrus.New()
	log.SetOutput(io.Discard)

	models := &classifier.Models{
		Vectorizer:  fakeVectorizer{},
		MetaEncoder: fakeEncoder{err: errors.New("unknown category")},
		Primary:     env.primary,
		Secondary:   fakeSecondary{label: "Warranty"},
	}

	service := NewDialogueService(log, env.repo, env.sessions, env.sink, models, nil, env.mailer, nil, utils.New(), &DialogueConfig{
		ConfidenceThreshold: 0.4,
		DefaultCategory:     "Electronics",
		DefaultHour:         12,
		HistoryLimit:        50,
	})

	_, err := service.HandleTurn(context.Background(), dialogue.TurnRequest{
		ConversationID: "conv-10",
		Message:        "something about my order",
	})
	assert.ErrorIs(t, err, dialogue.ErrInvalidTicketMeta)
}

func TestHandleTurn_MintsConversationID(t *testing.T) {
	env := newTestEnv(t)
	env.setClassification("Billing inquiry", 0.9)

	res, err := env.service.HandleTurn(context.Background(), dialogue.TurnRequest{
		Message: "question about my bill",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ConversationID)
	assert.Contains(t, env.sessions.store, res.ConversationID)
}

func TestHandleTurn_HistoryIsCapped(t *testing.T) {
	env := newTestEnv(t)
	env.setClassification("Billing inquiry", 0.9)
	ctx := context.Background()

	config := &DialogueConfig{
		ConfidenceThreshold: 0.4,
		DefaultCategory:     "Electronics",
		DefaultHour:         12,
		HistoryLimit:        4,
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	models := &classifier.Models{
		Vectorizer:  fakeVectorizer{},
		MetaEncoder: fakeEncoder{},
		Primary:     env.primary,
		Secondary:   fakeSecondary{label: "Warranty"},
	}

	service := NewDialogueService(log, env.repo, env.sessions, env.sink, models, nil, env.mailer, nil, utils.New(), config)

	for i := 0; i < 5; i++ {
		_, err := service.HandleTurn(ctx, dialogue.TurnRequest{
			ConversationID: "conv-11",
			Message:        "hello",
		})
		require.NoError(t, err)
	}

	assert.Len(t, env.sessions.store["conv-11"].History, 4)
}

func TestGetHistory_ReturnsTranscript(t *testing.T) {
	env := newTestEnv(t)
	env.setClassification("Billing inquiry", 0.9)
	ctx := context.Background()

	_, err := env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-12",
		Message:        "question about invoice 123456",
	})
	require.NoError(t, err)

	history, err := env.service.GetHistory(ctx, "conv-12")
	require.NoError(t, err)
	require.Len(t, history.Entries, 2)
	assert.Equal(t, entity.RoleUser, history.Entries[0].Role)
	assert.Equal(t, entity.RoleBot, history.Entries[1].Role)
}

func TestGetHistory_UnknownConversation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.GetHistory(context.Background(), "missing")
	assert.ErrorIs(t, err, dialogue.ErrConversationNotFound)
}

func TestCreateMapping_RejectsUnknownIntent(t *testing.T) {
	env := newTestEnv(t)

	err := env.service.CreateMapping(context.Background(), dialogue.MappingRequest{
		Intent:  "Totally made up",
		Phrases: []string{"whatever"},
	})
	assert.ErrorIs(t, err, dialogue.ErrInvalidIntentLabel)
}

func TestEnsureDefaultMappings_SeedsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.service.EnsureDefaultMappings(ctx))
	seeded := len(env.repo.mappings.rows)
	assert.Greater(t, seeded, 0)

	require.NoError(t, env.service.EnsureDefaultMappings(ctx))
	assert.Len(t, env.repo.mappings.rows, seeded)
}

func TestCreateMapping_StoredAndUsedByFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.service.CreateMapping(ctx, dialogue.MappingRequest{
		Intent:   "Technical issue",
		Phrases:  []string{"blue screen"},
		Priority: 0,
	})
	require.NoError(t, err)

	res, err := env.service.HandleTurn(ctx, dialogue.TurnRequest{
		ConversationID: "conv-13",
		Message:        "I keep getting a blue screen",
	})
	require.NoError(t, err)
	assert.Equal(t, "Technical issue", res.Intent)
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"askalma-be/internal/config"
	"askalma-be/internal/constant"
	"askalma-be/internal/dto"
	"askalma-be/internal/entity"
	"askalma-be/internal/repository/contract"
	"askalma-be/internal/repository/memory"
	"askalma-be/internal/repository/specification"
	"askalma-be/internal/repository/unitofwork"
	"askalma-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Generate(context.Context, string) ([]float32, error) {
	e.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *countingEmbedder) Model() string { return "fake-embed" }

type fakeLLM struct {
	answer string
	err    error
	calls  int
}

func (f *fakeLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeLLM) Model() string { return "fake:model" }

// fakeStore backs all repositories of a fake unit of work with in-memory
// state so a whole Ask round trip can run against it.
type fakeStore struct {
	conversations map[uuid.UUID]*entity.Conversation
	messages      []*entity.Message
	passages      []*entity.Passage
	profiles      map[string]*entity.UserProfile

	touched   []uuid.UUID
	begins    int
	commits   int
	rollbacks int
	searchErr error

	// One entry per store read, true when the context carried a deadline.
	readDeadlines []bool
}

func (s *fakeStore) recordRead(ctx context.Context) {
	_, ok := ctx.Deadline()
	s.readDeadlines = append(s.readDeadlines, ok)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conversations: map[uuid.UUID]*entity.Conversation{},
		profiles:      map[string]*entity.UserProfile{},
	}
}

type fakeFactory struct{ store *fakeStore }

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct{ store *fakeStore }

func (u *fakeUow) Begin(context.Context) error { u.store.begins++; return nil }
func (u *fakeUow) Commit() error               { u.store.commits++; return nil }
func (u *fakeUow) Rollback() error             { u.store.rollbacks++; return nil }

func (u *fakeUow) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{store: u.store}
}

func (u *fakeUow) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}

func (u *fakeUow) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepo{store: u.store}
}

func (u *fakeUow) UserProfileRepository() contract.UserProfileRepository {
	return &fakeProfileRepo{store: u.store}
}

type fakeConversationRepo struct{ store *fakeStore }

func (r *fakeConversationRepo) Create(_ context.Context, conversation *entity.Conversation) error {
	conversation.Id = uuid.New()
	conversation.CreatedAt = time.Now()
	r.store.conversations[conversation.Id] = conversation
	return nil
}

func (r *fakeConversationRepo) Update(_ context.Context, conversation *entity.Conversation) error {
	r.store.conversations[conversation.Id] = conversation
	return nil
}

func (r *fakeConversationRepo) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	r.store.touched = append(r.store.touched, id)
	if c, ok := r.store.conversations[id]; ok {
		c.UpdatedAt = &at
	}
	return nil
}

func (r *fakeConversationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.conversations, id)
	return nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	r.store.recordRead(ctx)
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			return r.store.conversations[byId.ID], nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Conversation, error) {
	result := make([]*entity.Conversation, 0, len(r.store.conversations))
	for _, c := range r.store.conversations {
		result = append(result, c)
	}
	return result, nil
}

func (r *fakeConversationRepo) ListWithCounts(context.Context, *string, int) ([]*contract.ConversationSummary, error) {
	return nil, nil
}

func (r *fakeConversationRepo) SearchWithCounts(context.Context, string, string, int) ([]*contract.ConversationSummary, error) {
	return nil, nil
}

type fakeMessageRepo struct{ store *fakeStore }

func (r *fakeMessageRepo) Create(_ context.Context, message *entity.Message) error {
	message.Id = uuid.New()
	message.CreatedAt = time.Now()
	r.store.messages = append(r.store.messages, message)
	return nil
}

func (r *fakeMessageRepo) DeleteByConversationId(_ context.Context, conversationId uuid.UUID) error {
	kept := r.store.messages[:0]
	for _, m := range r.store.messages {
		if m.ConversationId != conversationId {
			kept = append(kept, m)
		}
	}
	r.store.messages = kept
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.store.recordRead(ctx)
	var conversationId uuid.UUID
	for _, spec := range specs {
		if byConv, ok := spec.(specification.ByConversationID); ok {
			conversationId = byConv.ConversationID
		}
	}
	var result []*entity.Message
	for _, m := range r.store.messages {
		if m.ConversationId == conversationId {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(r.store.messages)), nil
}

type fakeDocumentRepo struct{ store *fakeStore }

func (r *fakeDocumentRepo) SearchSimilar(_ context.Context, _ []float32, topK int, _ contract.SearchFilter) ([]*entity.Passage, error) {
	if r.store.searchErr != nil {
		return nil, r.store.searchErr
	}
	if len(r.store.passages) > topK {
		return r.store.passages[:topK], nil
	}
	return r.store.passages, nil
}

type fakeProfileRepo struct{ store *fakeStore }

func (r *fakeProfileRepo) FindByUserId(ctx context.Context, userId string) (*entity.UserProfile, error) {
	r.store.recordRead(ctx)
	return r.store.profiles[userId], nil
}

// ---- helpers ----

func newTestChatService(store *fakeStore, llmProvider *fakeLLM, embedder *countingEmbedder) IChatService {
	return NewChatService(
		&fakeFactory{store: store},
		embedder,
		llmProvider,
		memory.NewProfileCache(time.Minute),
		nil,
		nopLogger{},
		config.RetrievalConfig{
			TopK:               10,
			MaxContextChars:    8000,
			MaxHistoryMessages: 10,
		},
		30*time.Second,
	)
}

func corpusPassages(n int) []*entity.Passage {
	passages := make([]*entity.Passage, 0, n)
	for i := 0; i < n; i++ {
		passages = append(passages, &entity.Passage{
			Id:         string(rune('a' + i)),
			Content:    "Passage content " + string(rune('a'+i)),
			Source:     "culpa_reviews.json",
			Similarity: 0.9 - float64(i)*0.05,
		})
	}
	return passages
}

// ---- tests ----

func TestAskRejectsEmptyQuestion(t *testing.T) {
	store := newFakeStore()
	embedder := &countingEmbedder{}
	svc := newTestChatService(store, &fakeLLM{answer: "unused"}, embedder)

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := svc.Ask(context.Background(), &dto.AskRequest{Question: question})
		require.Error(t, err)
	}

	// Validation happens before any embedding or store work.
	assert.Zero(t, embedder.calls)
	assert.Zero(t, store.begins)
}

func TestAskRoundTripNewConversation(t *testing.T) {
	store := newFakeStore()
	store.passages = corpusPassages(3)
	llmProvider := &fakeLLM{answer: "Take Data Structures with Blaer."}
	svc := newTestChatService(store, llmProvider, &countingEmbedder{})

	resp, err := svc.Ask(context.Background(), &dto.AskRequest{
		Question: "Who should I take for data structures?",
		UserId:   "student-1",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "Take Data Structures with Blaer.", resp.Answer)
	assert.NotEmpty(t, resp.ConversationId)
	assert.False(t, resp.Comparison)
	assert.Len(t, resp.Sources, 3)

	// One conversation, titled from the question, owned by the caller.
	require.Len(t, store.conversations, 1)
	for _, c := range store.conversations {
		assert.Equal(t, "Who should I take for data structures?", c.Title)
		require.NotNil(t, c.UserId)
		assert.Equal(t, "student-1", *c.UserId)
	}

	// Exactly the user and assistant messages, committed once.
	require.Len(t, store.messages, 2)
	assert.Equal(t, constant.MessageRoleUser, store.messages[0].Role)
	assert.Equal(t, "Who should I take for data structures?", store.messages[0].Content)
	assert.Equal(t, constant.MessageRoleAssistant, store.messages[1].Role)
	assert.Equal(t, resp.Answer, store.messages[1].Content)
	assert.Len(t, store.messages[1].Metadata.Passages, 3)
	assert.Equal(t, 1, store.commits)
	assert.Zero(t, store.rollbacks)
}

func TestAskContinuesExistingConversation(t *testing.T) {
	store := newFakeStore()
	store.passages = corpusPassages(1)
	existing := &entity.Conversation{Id: uuid.New(), Title: "Earlier chat"}
	store.conversations[existing.Id] = existing

	svc := newTestChatService(store, &fakeLLM{answer: "Sure."}, &countingEmbedder{})

	resp, err := svc.Ask(context.Background(), &dto.AskRequest{
		Question:       "And what about the workload?",
		ConversationId: existing.Id.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, existing.Id.String(), resp.ConversationId)
	assert.Len(t, store.conversations, 1)
	assert.Contains(t, store.touched, existing.Id)
}

func TestAskUnknownConversationStartsNew(t *testing.T) {
	store := newFakeStore()
	store.passages = corpusPassages(1)
	svc := newTestChatService(store, &fakeLLM{answer: "Answer."}, &countingEmbedder{})

	for _, raw := range []string{"not-a-uuid", uuid.New().String()} {
		resp, err := svc.Ask(context.Background(), &dto.AskRequest{
			Question:       "What is the core?",
			ConversationId: raw,
		})
		require.NoError(t, err)
		assert.NotEqual(t, raw, resp.ConversationId)
	}
	assert.Len(t, store.conversations, 2)
}

func TestAskGenerationFailureReturnsFallback(t *testing.T) {
	store := newFakeStore()
	store.passages = corpusPassages(2)
	svc := newTestChatService(store, &fakeLLM{err: errors.New("model unavailable")}, &countingEmbedder{})

	resp, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "What is the core?"})
	require.NoError(t, err)

	assert.Equal(t, constant.FallbackAnswer, resp.Answer)
	assert.Len(t, resp.Sources, 2)

	// Failed turns are never persisted.
	assert.Empty(t, store.conversations)
	assert.Empty(t, store.messages)
	assert.Zero(t, store.begins)
}

func TestAskRetrievalFailure(t *testing.T) {
	store := newFakeStore()
	store.searchErr = errors.New("connection refused")
	svc := newTestChatService(store, &fakeLLM{answer: "unused"}, &countingEmbedder{})

	_, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "What is the core?"})
	require.Error(t, err)
	assert.Empty(t, store.messages)
}

func TestAskTruncatesLongTitle(t *testing.T) {
	store := newFakeStore()
	store.passages = corpusPassages(1)
	svc := newTestChatService(store, &fakeLLM{answer: "Answer."}, &countingEmbedder{})

	question := strings.Repeat("why ", 50)
	_, err := svc.Ask(context.Background(), &dto.AskRequest{Question: question})
	require.NoError(t, err)

	require.Len(t, store.conversations, 1)
	for _, c := range store.conversations {
		assert.Len(t, c.Title, constant.ConversationTitleMaxChars)
	}
}

func TestAskTitleKeepsMultibyteRunesIntact(t *testing.T) {
	store := newFakeStore()
	store.passages = corpusPassages(1)
	svc := newTestChatService(store, &fakeLLM{answer: "Answer."}, &countingEmbedder{})

	// The 100th character is multibyte; a byte-based cut would leave an
	// orphaned lead byte and Postgres would reject the insert.
	question := strings.Repeat("a", 99) + "é and then some more question text"
	_, err := svc.Ask(context.Background(), &dto.AskRequest{Question: question})
	require.NoError(t, err)

	require.Len(t, store.conversations, 1)
	for _, c := range store.conversations {
		assert.True(t, utf8.ValidString(c.Title))
		assert.Equal(t, constant.ConversationTitleMaxChars, utf8.RuneCountInString(c.Title))
		assert.Equal(t, strings.Repeat("a", 99)+"é", c.Title)
	}
}

func TestAskSourcePreviewKeepsMultibyteRunesIntact(t *testing.T) {
	store := newFakeStore()
	store.passages = []*entity.Passage{{
		Id:         "p1",
		Content:    strings.Repeat("é", 250),
		Source:     "culpa_reviews.json",
		Similarity: 0.9,
	}}
	svc := newTestChatService(store, &fakeLLM{answer: "Answer."}, &countingEmbedder{})

	resp, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "What is the core?"})
	require.NoError(t, err)

	require.Len(t, resp.Sources, 1)
	preview := resp.Sources[0].ContentPreview
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, 200, utf8.RuneCountInString(preview))
}

func TestAskBoundsStoreReads(t *testing.T) {
	store := newFakeStore()
	store.passages = corpusPassages(1)
	existing := &entity.Conversation{Id: uuid.New(), Title: "Earlier chat"}
	store.conversations[existing.Id] = existing
	store.profiles["student-1"] = &entity.UserProfile{UserId: "student-1", School: "barnard"}

	svc := newTestChatService(store, &fakeLLM{answer: "Answer."}, &countingEmbedder{})

	_, err := svc.Ask(context.Background(), &dto.AskRequest{
		Question:       "And the workload?",
		ConversationId: existing.Id.String(),
		UserId:         "student-1",
	})
	require.NoError(t, err)

	// Conversation lookup, profile load and history load must all carry a
	// deadline so a stalled connection cannot hang the request.
	require.GreaterOrEqual(t, len(store.readDeadlines), 3)
	for i, hasDeadline := range store.readDeadlines {
		assert.True(t, hasDeadline, "store read %d ran without a deadline", i)
	}
}

func TestAskSourcesCappedAtFive(t *testing.T) {
	store := newFakeStore()
	store.passages = corpusPassages(8)
	svc := newTestChatService(store, &fakeLLM{answer: "Answer."}, &countingEmbedder{})

	resp, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "What is the core?"})
	require.NoError(t, err)

	assert.Len(t, resp.Sources, 5)
	// All used passages are still recorded in the assistant metadata.
	require.Len(t, store.messages, 2)
	assert.Len(t, store.messages[1].Metadata.Passages, 8)
}

func TestAskComparisonFlag(t *testing.T) {
	store := newFakeStore()
	store.passages = corpusPassages(4)
	svc := newTestChatService(store, &fakeLLM{answer: "Both are solid."}, &countingEmbedder{})

	resp, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "Cannon vs Blaer for data structures?"})
	require.NoError(t, err)
	assert.True(t, resp.Comparison)
}

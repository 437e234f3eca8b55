package service

import (
	"context"
	"strings"
	"time"

	"askalma-be/internal/config"
	"askalma-be/internal/constant"
	"askalma-be/internal/dto"
	"askalma-be/internal/entity"
	"askalma-be/internal/pkg/logger"
	"askalma-be/internal/pkg/serverutils"
	"askalma-be/internal/repository/contract"
	"askalma-be/internal/repository/memory"
	"askalma-be/internal/repository/specification"
	"askalma-be/internal/repository/unitofwork"
	"askalma-be/pkg/embedding"
	"askalma-be/pkg/events"
	"askalma-be/pkg/llm"
	"askalma-be/pkg/rag/compare"
	"askalma-be/pkg/rag/history"
	"askalma-be/pkg/rag/prompt"
	"askalma-be/pkg/rag/response"
	"askalma-be/pkg/rag/retrieve"

	"github.com/google/uuid"
)

// IChatService answers questions over the document corpus.
type IChatService interface {
	Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error)
}

// EventPublisher is the slice of the NATS publisher the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// chatService coordinates the question-answering pipeline: comparison
// detection, retrieval, history loading, prompt assembly, generation and
// conversation persistence.
type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	profileCache *memory.ProfileCache
	detector     *compare.Detector
	retriever    *retrieve.Retriever
	history      *history.Loader
	generator    *response.Generator
	publisher    EventPublisher
	logger       logger.ILogger

	retrieval config.RetrievalConfig
	aiTimeout time.Duration
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	profileCache *memory.ProfileCache,
	publisher EventPublisher,
	log logger.ILogger,
	retrieval config.RetrievalConfig,
	aiTimeout time.Duration,
) IChatService {
	searcher := newDocumentSearcher(uowFactory)
	return &chatService{
		uowFactory:   uowFactory,
		profileCache: profileCache,
		detector:     compare.NewDetector(),
		retriever:    retrieve.NewRetriever(searcher, embeddingProvider, log),
		history:      history.NewLoader(uowFactory, log),
		generator:    response.NewGenerator(llmProvider, log),
		publisher:    publisher,
		logger:       log,
		retrieval:    retrieval,
		aiTimeout:    aiTimeout,
	}
}

// documentSearcher adapts the unit-of-work factory into the retriever's
// Searcher interface; vector search never joins a transaction.
type documentSearcher struct {
	uowFactory unitofwork.RepositoryFactory
}

func newDocumentSearcher(uowFactory unitofwork.RepositoryFactory) *documentSearcher {
	return &documentSearcher{uowFactory: uowFactory}
}

func (s *documentSearcher) SearchSimilar(ctx context.Context, vector []float32, topK int, filter contract.SearchFilter) ([]*entity.Passage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentRepository().SearchSimilar(ctx, vector, topK, filter)
}

func (s *chatService) Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error) {
	question := strings.TrimSpace(request.Question)
	if question == "" {
		return nil, serverutils.NewMalformedQueryError("question must not be empty")
	}

	// Store reads and writes run under their own deadline so a stalled
	// connection fails into the degradation paths instead of hanging.
	dbCtx, cancelDb := context.WithTimeout(ctx, s.aiTimeout)
	defer cancelDb()

	conversationId := s.resolveConversation(dbCtx, request.ConversationId)
	profile := s.loadProfile(dbCtx, request.UserId)

	filter := contract.SearchFilter{}
	if profile != nil {
		filter.SourcePattern = constant.SchoolSourcePatterns[profile.School]
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	target, isComparison := s.detector.Detect(question)

	var passages []*entity.Passage
	var err error
	if isComparison {
		s.logger.Info("chat", "Comparison query detected", map[string]interface{}{
			"entity1": target.Entity1,
			"entity2": target.Entity2,
		})
		passages, err = s.retriever.RetrieveComparison(aiCtx, target.Entity1, target.Entity2, s.retrieval.TopK, filter)
	} else {
		passages, err = s.retriever.RetrieveSingle(aiCtx, question, s.retrieval.TopK, filter)
	}
	if err != nil {
		return nil, serverutils.NewTransientDependencyError("passage retrieval failed", err)
	}

	chatHistory := s.history.LoadHistory(dbCtx, conversationId, s.retrieval.MaxHistoryMessages)

	promptText := prompt.NewBuilder(question, passages, chatHistory, profile, s.retrieval.MaxContextChars).Build()

	answer, err := s.generator.Generate(aiCtx, promptText)
	if err != nil {
		// The turn is not persisted; the user gets a safe fallback and can
		// simply retry.
		return s.fallbackResponse(conversationId, passages), nil
	}

	persistedId, persistErr := s.persistTurn(dbCtx, conversationId, request.UserId, question, answer, passages)
	if persistErr != nil {
		// Best-effort UX: the answer is still returned even though the next
		// history load will be missing this turn.
		s.logger.Error("chat", "Failed to persist conversation turn", map[string]interface{}{
			"error": persistErr.Error(),
		})
	} else {
		conversationId = &persistedId
		s.publishAnswered(ctx, persistedId, len(passages), isComparison)
	}

	return s.buildResponse(conversationId, answer, passages, isComparison), nil
}

// resolveConversation parses and verifies the supplied conversation id. An
// unknown or malformed id starts a new conversation rather than failing.
func (s *chatService) resolveConversation(ctx context.Context, raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("chat", "Malformed conversation id, starting new conversation", map[string]interface{}{
			"conversation_id": raw,
		})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil || conversation == nil {
		s.logger.Warn("chat", "Conversation not found, starting new conversation", map[string]interface{}{
			"conversation_id": raw,
		})
		return nil
	}
	return &id
}

func (s *chatService) loadProfile(ctx context.Context, userId string) *entity.UserProfile {
	if userId == "" {
		return nil
	}
	if cached, found := s.profileCache.Get(userId); found {
		return cached
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.UserProfileRepository().FindByUserId(ctx, userId)
	if err != nil {
		s.logger.Warn("chat", "Failed to load user profile", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		return nil
	}
	if profile != nil {
		s.profileCache.Save(profile)
	}
	return profile
}

// persistTurn writes the user and assistant messages in one transaction,
// creating the conversation first when this is the opening turn. Either the
// whole turn becomes visible or none of it.
func (s *chatService) persistTurn(ctx context.Context, conversationId *uuid.UUID, userId, question, answer string, passages []*entity.Passage) (uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	if conversationId != nil {
		id = *conversationId
		if err := uow.ConversationRepository().Touch(ctx, id, time.Now()); err != nil {
			uow.Rollback()
			return uuid.Nil, err
		}
	} else {
		conversation := &entity.Conversation{
			Title: deriveTitle(question),
		}
		if userId != "" {
			conversation.UserId = &userId
		}
		if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
			uow.Rollback()
			return uuid.Nil, err
		}
		id = conversation.Id
	}

	userMessage := &entity.Message{
		ConversationId: id,
		Role:           constant.MessageRoleUser,
		Content:        question,
	}
	if err := uow.MessageRepository().Create(ctx, userMessage); err != nil {
		uow.Rollback()
		return uuid.Nil, err
	}

	assistantMessage := &entity.Message{
		ConversationId: id,
		Role:           constant.MessageRoleAssistant,
		Content:        answer,
		Metadata:       buildMetadata(passages),
	}
	if err := uow.MessageRepository().Create(ctx, assistantMessage); err != nil {
		uow.Rollback()
		return uuid.Nil, err
	}

	if err := uow.Commit(); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *chatService) publishAnswered(ctx context.Context, conversationId uuid.UUID, passageCount int, comparison bool) {
	if s.publisher == nil {
		return
	}
	event := events.NewChatAnsweredEvent(conversationId.String(), s.generator.Model(), passageCount, comparison)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("chat", "Failed to publish answered event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *chatService) fallbackResponse(conversationId *uuid.UUID, passages []*entity.Passage) *dto.AskResponse {
	id := ""
	if conversationId != nil {
		id = conversationId.String()
	}
	return &dto.AskResponse{
		ConversationId:  id,
		Answer:          constant.FallbackAnswer,
		Sources:         buildSources(passages),
		ModelIdentifier: s.generator.Model(),
	}
}

func (s *chatService) buildResponse(conversationId *uuid.UUID, answer string, passages []*entity.Passage, comparison bool) *dto.AskResponse {
	id := ""
	if conversationId != nil {
		id = conversationId.String()
	}
	return &dto.AskResponse{
		ConversationId:  id,
		Answer:          answer,
		Sources:         buildSources(passages),
		ModelIdentifier: s.generator.Model(),
		Comparison:      comparison,
	}
}

func deriveTitle(question string) string {
	return truncateRunes(strings.TrimSpace(question), constant.ConversationTitleMaxChars)
}

// truncateRunes cuts on rune boundaries; a byte slice could split a
// multibyte character and produce invalid UTF-8, which Postgres rejects.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func buildMetadata(passages []*entity.Passage) entity.MessageMetadata {
	refs := make([]entity.PassageRef, len(passages))
	for i, p := range passages {
		refs[i] = entity.PassageRef{
			Id:         p.Id,
			Similarity: p.Similarity,
		}
	}
	return entity.MessageMetadata{Passages: refs}
}

// buildSources exposes the top matches to the HTTP layer with short content
// previews.
func buildSources(passages []*entity.Passage) []dto.SourceDTO {
	limit := 5
	if len(passages) < limit {
		limit = len(passages)
	}
	sources := make([]dto.SourceDTO, limit)
	for i := 0; i < limit; i++ {
		p := passages[i]
		preview := truncateRunes(p.Content, 200)
		sources[i] = dto.SourceDTO{
			Id:             p.Id,
			Similarity:     p.Similarity,
			ContentPreview: preview,
			Source:         p.Source,
		}
	}
	return sources
}

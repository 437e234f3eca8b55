package service

import (
	"context"

	"askalma-be/internal/dto"
	"askalma-be/internal/pkg/logger"
	"askalma-be/internal/pkg/serverutils"
	"askalma-be/internal/repository/specification"
	"askalma-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IConversationService manages stored conversations outside the answer path.
type IConversationService interface {
	List(ctx context.Context, userId string, limit int) ([]*dto.ConversationSummaryResponse, error)
	GetHistory(ctx context.Context, conversationId uuid.UUID) (*dto.ConversationHistoryResponse, error)
	Search(ctx context.Context, userId, query string, limit int) ([]*dto.ConversationSummaryResponse, error)
	Rename(ctx context.Context, conversationId uuid.UUID, title string) error
	Delete(ctx context.Context, conversationId uuid.UUID) error
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

const defaultListLimit = 20

func (s *conversationService) List(ctx context.Context, userId string, limit int) ([]*dto.ConversationSummaryResponse, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	var userFilter *string
	if userId != "" {
		userFilter = &userId
	}
	summaries, err := uow.ConversationRepository().ListWithCounts(ctx, userFilter, limit)
	if err != nil {
		return nil, serverutils.NewTransientDependencyError("failed to list conversations", err)
	}

	result := make([]*dto.ConversationSummaryResponse, len(summaries))
	for i, summary := range summaries {
		result[i] = &dto.ConversationSummaryResponse{
			Id:           summary.Conversation.Id.String(),
			Title:        summary.Conversation.Title,
			MessageCount: summary.MessageCount,
			CreatedAt:    summary.Conversation.CreatedAt,
			UpdatedAt:    summary.Conversation.UpdatedAt,
		}
	}
	return result, nil
}

func (s *conversationService) GetHistory(ctx context.Context, conversationId uuid.UUID) (*dto.ConversationHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, serverutils.NewTransientDependencyError("failed to load conversation", err)
	}
	if conversation == nil {
		return nil, serverutils.NewNotFoundError("conversation not found")
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, serverutils.NewTransientDependencyError("failed to load messages", err)
	}

	response := &dto.ConversationHistoryResponse{
		Id:       conversation.Id.String(),
		Title:    conversation.Title,
		Messages: make([]dto.ConversationMessageResponse, len(messages)),
	}
	for i, msg := range messages {
		sources := make([]dto.SourceDTO, len(msg.Metadata.Passages))
		for j, ref := range msg.Metadata.Passages {
			sources[j] = dto.SourceDTO{
				Id:         ref.Id,
				Similarity: ref.Similarity,
			}
		}
		response.Messages[i] = dto.ConversationMessageResponse{
			Id:        msg.Id.String(),
			Role:      msg.Role,
			Content:   msg.Content,
			Sources:   sources,
			CreatedAt: msg.CreatedAt,
		}
	}
	return response, nil
}

func (s *conversationService) Search(ctx context.Context, userId, query string, limit int) ([]*dto.ConversationSummaryResponse, error) {
	if query == "" {
		return s.List(ctx, userId, limit)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	summaries, err := uow.ConversationRepository().SearchWithCounts(ctx, userId, query, limit)
	if err != nil {
		return nil, serverutils.NewTransientDependencyError("failed to search conversations", err)
	}

	result := make([]*dto.ConversationSummaryResponse, len(summaries))
	for i, summary := range summaries {
		result[i] = &dto.ConversationSummaryResponse{
			Id:           summary.Conversation.Id.String(),
			Title:        summary.Conversation.Title,
			MessageCount: summary.MessageCount,
			CreatedAt:    summary.Conversation.CreatedAt,
			UpdatedAt:    summary.Conversation.UpdatedAt,
		}
	}
	return result, nil
}

func (s *conversationService) Rename(ctx context.Context, conversationId uuid.UUID, title string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return serverutils.NewTransientDependencyError("failed to load conversation", err)
	}
	if conversation == nil {
		return serverutils.NewNotFoundError("conversation not found")
	}

	conversation.Title = title
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return serverutils.NewTransientDependencyError("failed to rename conversation", err)
	}
	return nil
}

// Delete removes a conversation and all its messages in one transaction.
func (s *conversationService) Delete(ctx context.Context, conversationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return serverutils.NewTransientDependencyError("failed to load conversation", err)
	}
	if conversation == nil {
		return serverutils.NewNotFoundError("conversation not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return serverutils.NewTransientDependencyError("failed to start transaction", err)
	}
	if err := uow.MessageRepository().DeleteByConversationId(ctx, conversationId); err != nil {
		uow.Rollback()
		return serverutils.NewTransientDependencyError("failed to delete messages", err)
	}
	if err := uow.ConversationRepository().Delete(ctx, conversationId); err != nil {
		uow.Rollback()
		return serverutils.NewTransientDependencyError("failed to delete conversation", err)
	}
	if err := uow.Commit(); err != nil {
		return serverutils.NewTransientDependencyError("failed to commit deletion", err)
	}

	s.logger.Info("conversation", "Conversation deleted", map[string]interface{}{
		"conversation_id": conversationId.String(),
	})
	return nil
}

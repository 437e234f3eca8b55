package implementation

import (
	"context"
	"errors"
	"time"

	"askalma-be/internal/entity"
	"askalma-be/internal/mapper"
	"askalma-be/internal/model"
	"askalma-be/internal/repository/contract"
	"askalma-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ConversationToModel(conversation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) Update(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ConversationToModel(conversation)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
}

func (r *ConversationRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Conversation{}, id).Error
}

func (r *ConversationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var m model.Conversation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ConversationToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var models []*model.Conversation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Conversation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ConversationToEntity(m)
	}
	return entities, nil
}

func (r *ConversationRepositoryImpl) ListWithCounts(ctx context.Context, userId *string, limit int) ([]*contract.ConversationSummary, error) {
	type row struct {
		model.Conversation
		MessageCount int64
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Table("conversations").
		Select("conversations.*, COUNT(messages.id) as message_count").
		Joins("LEFT JOIN messages ON messages.conversation_id = conversations.id").
		Group("conversations.id").
		Order("conversations.updated_at DESC")

	if userId != nil {
		query = specification.OwnedByUser{UserID: *userId}.Apply(query)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]*contract.ConversationSummary, len(rows))
	for i, res := range rows {
		conv := res.Conversation
		summaries[i] = &contract.ConversationSummary{
			Conversation: r.mapper.ConversationToEntity(&conv),
			MessageCount: res.MessageCount,
		}
	}
	return summaries, nil
}

func (r *ConversationRepositoryImpl) SearchWithCounts(ctx context.Context, userId, query string, limit int) ([]*contract.ConversationSummary, error) {
	type row struct {
		model.Conversation
		MessageCount int64
	}
	var rows []row

	pattern := "%" + query + "%"
	q := r.db.WithContext(ctx).
		Table("conversations").
		Select("conversations.*, COUNT(messages.id) as message_count").
		Joins("LEFT JOIN messages ON messages.conversation_id = conversations.id").
		Where("conversations.title ILIKE ? OR messages.content ILIKE ?", pattern, pattern).
		Group("conversations.id").
		Order("conversations.updated_at DESC")

	if userId != "" {
		q = specification.OwnedByUser{UserID: userId}.Apply(q)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]*contract.ConversationSummary, len(rows))
	for i, res := range rows {
		conv := res.Conversation
		summaries[i] = &contract.ConversationSummary{
			Conversation: r.mapper.ConversationToEntity(&conv),
			MessageCount: res.MessageCount,
		}
	}
	return summaries, nil
}

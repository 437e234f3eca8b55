package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"askalma-be/internal/constant"
	"askalma-be/internal/entity"
	"askalma-be/internal/repository/contract"
	"askalma-be/internal/repository/specification"
	"askalma-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// fakeMessageRepo honors the desc-order and limit specs the loader sends, so
// the reversal back to chronological order is actually exercised.
type fakeMessageRepo struct {
	messages []*entity.Message
	err      error
}

func (r *fakeMessageRepo) Create(context.Context, *entity.Message) error { return nil }

func (r *fakeMessageRepo) DeleteByConversationId(context.Context, uuid.UUID) error { return nil }

func (r *fakeMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	if r.err != nil {
		return nil, r.err
	}
	limit := len(r.messages)
	for _, spec := range specs {
		if l, ok := spec.(specification.Limit); ok {
			limit = l.N
		}
	}

	sorted := make([]*entity.Message, len(r.messages))
	copy(sorted, r.messages)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (r *fakeMessageRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(r.messages)), nil
}

type fakeUow struct{ messages *fakeMessageRepo }

func (u *fakeUow) Begin(context.Context) error { return nil }
func (u *fakeUow) Commit() error               { return nil }
func (u *fakeUow) Rollback() error             { return nil }

func (u *fakeUow) ConversationRepository() contract.ConversationRepository { return nil }
func (u *fakeUow) MessageRepository() contract.MessageRepository           { return u.messages }
func (u *fakeUow) DocumentRepository() contract.DocumentRepository         { return nil }
func (u *fakeUow) UserProfileRepository() contract.UserProfileRepository   { return nil }

type fakeFactory struct{ messages *fakeMessageRepo }

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUow{messages: f.messages}
}

func seedMessages(n int) []*entity.Message {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	messages := make([]*entity.Message, 0, n)
	for i := 0; i < n; i++ {
		role := constant.MessageRoleUser
		if i%2 == 1 {
			role = constant.MessageRoleAssistant
		}
		messages = append(messages, &entity.Message{
			Id:        uuid.New(),
			Role:      role,
			Content:   fmt.Sprintf("turn %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return messages
}

func TestLoadHistoryChronologicalOrder(t *testing.T) {
	repo := &fakeMessageRepo{messages: seedMessages(4)}
	loader := NewLoader(&fakeFactory{messages: repo}, nopLogger{})
	id := uuid.New()

	result := loader.LoadHistory(context.Background(), &id, 10)

	if len(result) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(result))
	}
	for i, msg := range result {
		want := fmt.Sprintf("turn %d", i)
		if msg.Content != want {
			t.Errorf("message %d = %q, want %q (oldest first)", i, msg.Content, want)
		}
	}
	if result[0].Role != constant.MessageRoleUser || result[1].Role != constant.MessageRoleAssistant {
		t.Error("roles not preserved through reversal")
	}
}

func TestLoadHistoryKeepsMostRecentWhenOverLimit(t *testing.T) {
	repo := &fakeMessageRepo{messages: seedMessages(8)}
	loader := NewLoader(&fakeFactory{messages: repo}, nopLogger{})
	id := uuid.New()

	result := loader.LoadHistory(context.Background(), &id, 4)

	if len(result) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(result))
	}
	// The oldest turns are dropped, not the newest.
	if result[0].Content != "turn 4" || result[3].Content != "turn 7" {
		t.Errorf("expected turns 4..7, got %q..%q", result[0].Content, result[3].Content)
	}
}

func TestLoadHistoryDegradesToEmpty(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		conversationId *uuid.UUID
		maxMessages    int
		repo           *fakeMessageRepo
	}{
		{"nil conversation id", nil, 10, &fakeMessageRepo{messages: seedMessages(2)}},
		{"zero limit", &id, 0, &fakeMessageRepo{messages: seedMessages(2)}},
		{"store failure", &id, 10, &fakeMessageRepo{err: errors.New("connection reset")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(&fakeFactory{messages: tt.repo}, nopLogger{})
			result := loader.LoadHistory(context.Background(), tt.conversationId, tt.maxMessages)
			if len(result) != 0 {
				t.Errorf("expected empty history, got %d messages", len(result))
			}
		})
	}
}

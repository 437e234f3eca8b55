package contract

import (
	"context"

	"askalma-be/internal/entity"
)

type UserProfileRepository interface {
	// FindByUserId returns nil without error when no profile exists.
	FindByUserId(ctx context.Context, userId string) (*entity.UserProfile, error)
}

package mapper

import (
	"askalma-be/internal/entity"
	"askalma-be/internal/model"
)

type UserProfileMapper struct{}

func NewUserProfileMapper() *UserProfileMapper {
	return &UserProfileMapper{}
}

func (m *UserProfileMapper) ToEntity(p *model.UserProfile) *entity.UserProfile {
	if p == nil {
		return nil
	}
	return &entity.UserProfile{
		UserId:       p.UserId,
		School:       p.School,
		AcademicYear: p.AcademicYear,
		Major:        p.Major,
		Minors:       p.Minors,
		ClassesTaken: p.ClassesTaken,
	}
}

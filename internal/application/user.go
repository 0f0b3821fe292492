package app

import (
	"context"

	"skin-vision-bot/internal/domain/entity"
	"skin-vision-bot/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) {
		u.SetState(state)
	})
}

func (s *UserService) BeginAnalysis(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// SetThreshold сохраняет порог отрисовки в процентах; значение обрезается до 0–100.
func (s *UserService) SetThreshold(ctx context.Context, userID, chatID int64, percent int) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) {
		u.SetThreshold(percent)
	})
}

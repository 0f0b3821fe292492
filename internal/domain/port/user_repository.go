package port

import (
	"context"

	"skin-vision-bot/internal/domain/entity"
)

// UserRepository интерфейс хранилища пользователей и их настроек
type UserRepository interface {
	// Get возвращает копию пользователя, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет пользователя целиком
	Save(ctx context.Context, user *entity.User) error

	// Update атомарно применяет fn к сохранённому пользователю
	Update(ctx context.Context, userID, chatID int64, fn func(*entity.User)) (*entity.User, error)
}

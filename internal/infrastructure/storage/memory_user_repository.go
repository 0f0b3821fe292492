package storage

import (
	"context"
	"sync"

	"skin-vision-bot/internal/domain/entity"
	"skin-vision-bot/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей и их порогов
type MemoryUserRepository struct {
	mu               sync.Mutex
	users            map[int64]entity.User
	defaultThreshold int
}

// NewMemoryUserRepository создаёт хранилище; новые пользователи получают defaultThreshold
func NewMemoryUserRepository(defaultThreshold int) *MemoryUserRepository {
	return &MemoryUserRepository{
		users:            make(map[int64]entity.User),
		defaultThreshold: defaultThreshold,
	}
}

// Get возвращает копию пользователя по ID, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.loadLocked(userID, chatID)
	return &u, nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = *user
	r.mu.Unlock()

	return nil
}

// Update применяет fn под блокировкой и возвращает обновлённую копию
func (r *MemoryUserRepository) Update(ctx context.Context, userID, chatID int64, fn func(*entity.User)) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.loadLocked(userID, chatID)
	fn(&u)
	r.users[userID] = u
	return &u, nil
}

func (r *MemoryUserRepository) loadLocked(userID, chatID int64) entity.User {
	if u, ok := r.users[userID]; ok {
		return u
	}
	u := entity.NewUser(userID, chatID)
	u.SetThreshold(r.defaultThreshold)
	r.users[userID] = *u
	return *u
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)

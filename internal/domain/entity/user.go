package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото кожи
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// DefaultThresholdPercent порог уверенности по умолчанию, в процентах.
const DefaultThresholdPercent = 40

// User представляет пользователя бота
type User struct {
	ID               int64     // Telegram User ID
	ChatID           int64     // Telegram Chat ID
	State            UserState // Текущее состояние пользователя
	ThresholdPercent int       // Порог уверенности для отрисовки, 0–100
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:               userID,
		ChatID:           chatID,
		State:            StateMainMenu,
		ThresholdPercent: DefaultThresholdPercent,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// SetThreshold обновляет порог, обрезая значение до 0–100
func (u *User) SetThreshold(percent int) {
	switch {
	case percent < 0:
		percent = 0
	case percent > 100:
		percent = 100
	}
	u.ThresholdPercent = percent
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "skin-vision-bot/internal/application"
	"skin-vision-bot/internal/container"
	"skin-vision-bot/internal/domain/entity"
	"skin-vision-bot/internal/infrastructure/roboflow"
	"skin-vision-bot/internal/infrastructure/vision"
	"skin-vision-bot/internal/overlay"
)

const downloadTimeout = 30 * time.Second

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	users    *app.UserService
	analysis *app.AnalysisService
	logger   *zap.Logger
	client   *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:      api,
		users:    c.UserService,
		analysis: c.AnalysisService,
		logger:   logger,
		client:   &http.Client{Timeout: downloadTimeout},
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx.
// Каждое сообщение обрабатывается в своей горутине.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			msg := update.Message
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.handleMessage(ctx, msg)
			}()
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if fileID, uniqueID, ok := imageFile(msg); ok {
		b.handlePhoto(ctx, msg, fileID, uniqueID)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// imageFile выбирает фото максимального размера или документ-изображение.
func imageFile(msg *tgbotapi.Message) (fileID, uniqueID string, ok bool) {
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		return photo.FileID, photo.FileUniqueID, true
	}
	if doc := msg.Document; doc != nil && strings.HasPrefix(doc.MimeType, "image/") {
		return doc.FileID, doc.FileUniqueID, true
	}
	return "", "", false
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.setState(ctx, userID, chatID, entity.StateMainMenu)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		if _, err := b.users.BeginAnalysis(ctx, userID, chatID); err != nil {
			b.logger.Error("begin analysis", zap.Int64("user_id", userID), zap.Error(err))
		}
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "threshold":
		b.handleThreshold(ctx, msg)

	case "stats":
		b.handleStats(ctx, userID, chatID)

	case "guide":
		b.sendMessage(chatID, msgGuide)

	case "cancel":
		if _, err := b.users.Cancel(ctx, userID, chatID); err != nil {
			b.logger.Error("cancel", zap.Int64("user_id", userID), zap.Error(err))
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleThreshold меняет порог и перерисовывает последний анализ из кэша.
func (b *Bot) handleThreshold(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	args := msg.CommandArguments()
	if strings.TrimSpace(args) == "" {
		user, err := b.users.Get(ctx, userID, chatID)
		if err != nil {
			b.logger.Error("get user", zap.Int64("user_id", userID), zap.Error(err))
			return
		}
		b.sendMessage(chatID, fmt.Sprintf(msgThresholdUsage, user.ThresholdPercent))
		return
	}

	percent, err := parseThreshold(args)
	if err != nil {
		b.sendMessage(chatID, "⚠️ "+err.Error())
		return
	}
	if _, err := b.users.SetThreshold(ctx, userID, chatID, percent); err != nil {
		b.logger.Error("set threshold", zap.Int64("user_id", userID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	out, err := b.analysis.Rerender(ctx, userID, chatID)
	switch {
	case errors.Is(err, app.ErrNoAnalysis):
		b.sendMessage(chatID, fmt.Sprintf(msgThresholdSet, percent))
	case err != nil:
		b.reportError(chatID, userID, err)
	default:
		b.sendPhoto(chatID, out.Annotated, formatCaption(out))
	}
}

func (b *Bot) handleStats(ctx context.Context, userID, chatID int64) {
	res, ok := b.analysis.Last(userID)
	if !ok {
		b.sendMessage(chatID, msgNoAnalysis)
		return
	}
	user, err := b.users.Get(ctx, userID, chatID)
	if err != nil {
		b.logger.Error("get user", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	b.sendMessage(chatID, formatStats(res, user.ThresholdPercent))
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, fileID, uniqueID string) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	b.setState(ctx, userID, chatID, entity.StateProcessing)
	defer b.setState(ctx, userID, chatID, entity.StateMainMenu)

	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error("download photo", zap.Int64("user_id", userID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	out, err := b.analysis.Analyze(ctx, userID, chatID, uniqueID, imageData)
	if err != nil {
		b.reportError(chatID, userID, err)
		return
	}

	if !out.Superseded {
		b.sendPhoto(chatID, out.Annotated, formatCaption(out))
	}
	for _, part := range splitMessage(formatInsight(out.Insight, out.InsightErr), maxMessageRunes) {
		b.sendMessage(chatID, part)
	}
}

// reportError переводит ошибку анализа в сообщение пользователю.
// Вытесненная более новым снимком отрисовка молча отбрасывается.
func (b *Bot) reportError(chatID, userID int64, err error) {
	if errors.Is(err, overlay.ErrSuperseded) {
		b.logger.Debug("stale render dropped", zap.Int64("user_id", userID))
		return
	}
	b.logger.Error("analysis failed", zap.Int64("user_id", userID), zap.Error(err))
	b.sendMessage(chatID, errorMessage(err))
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, vision.ErrPoorQuality):
		return msgPoorQuality
	case errors.Is(err, roboflow.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.Is(err, overlay.ErrImageDecode):
		return msgDecodeError
	default:
		return msgProcessingError
	}
}

func (b *Bot) setState(ctx context.Context, userID, chatID int64, state entity.UserState) {
	if _, err := b.users.SetState(ctx, userID, chatID, state); err != nil {
		b.logger.Error("set state", zap.Int64("user_id", userID), zap.String("state", string(state)), zap.Error(err))
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendPhoto отправляет аннотированный снимок с подписью
func (b *Bot) sendPhoto(chatID int64, data []byte, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "analysis.jpg", Bytes: data})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("send photo", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

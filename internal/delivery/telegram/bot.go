package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/configs"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/pkg/prometheus"
)

// botAPI is the slice of tgbotapi.BotAPI the controller uses; the
// handler tests substitute a fake.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	ListenForWebhook(pattern string) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api            botAPI
	states         StateProvider
	resolver       SpeciesResolver
	log            *slog.Logger
	selfID         int64
	webhookBaseURL string
	webhookPath    string
	client         *http.Client
}

func NewBot(ctx context.Context, cfg *configs.Config, states StateProvider, resolver SpeciesResolver, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TG.Token)
	if err != nil {
		return nil, err
	}
	api.Client = &http.Client{
		Timeout: cfg.TG.ConnectionTimeout,
	}

	return &Bot{
		api:            api,
		states:         states,
		resolver:       resolver,
		log:            log,
		selfID:         api.Self.ID,
		webhookBaseURL: cfg.TG.WebhookBaseURL,
		webhookPath:    "/bot" + cfg.TG.Token,
		client: &http.Client{
			Timeout: cfg.TG.ConnectionTimeout,
		},
	}, nil
}

// Run consumes the update stream until Stop. Every update is handled
// in its own goroutine so one user's identification never blocks
// another's; a panicking handler is logged and dropped.
func (b *Bot) Run(ctx context.Context) {
	updates := b.updateStream()

	for update := range updates {
		update := update
		go func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("update handler panicked", "panic", r)
				}
			}()
			b.handleUpdate(ctx, update)
		}()
	}
}

// updateStream selects webhook delivery when a base URL is configured,
// otherwise long polling. The webhook handler registers on the default
// mux served by the metrics listener in cmd.
func (b *Bot) updateStream() tgbotapi.UpdatesChannel {
	if b.webhookBaseURL != "" {
		wh, err := tgbotapi.NewWebhook(b.webhookBaseURL + b.webhookPath)
		if err == nil {
			if _, err = b.api.Request(wh); err == nil {
				b.log.Info("receiving updates via webhook")
				return b.api.ListenForWebhook(b.webhookPath)
			}
		}
		b.log.Error("webhook setup failed, falling back to polling", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	return b.api.GetUpdatesChan(u)
}

func (b *Bot) Stop(ctx context.Context) {
	b.api.StopReceivingUpdates()
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	_, err := b.sendText(chatID, text)
	return err
}

func (b *Bot) sendText(chatID int64, text string) (int, error) {
	if len(text) > 4000 {
		text = text[:4000] + "..."
	}
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Warn("failed to send message", chatIDKey, chatID, errorKey, err)
		return 0, fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	prometheus.MessagesSent.WithLabelValues("text").Inc()
	return sent.MessageID, nil
}

func (b *Bot) sendHTML(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	prometheus.MessagesSent.WithLabelValues("text").Inc()
	return nil
}

func (b *Bot) sendPhoto(chatID int64, photoURL string, caption string) error {
	data := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
	data.Caption = caption
	data.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	prometheus.MessagesSent.WithLabelValues("photo").Inc()
	return nil
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	prometheus.MessagesSent.WithLabelValues("text").Inc()
	return nil
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Debug("failed to delete message", chatIDKey, chatID, errorKey, err)
	}
}

func (b *Bot) editMessageText(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Debug("failed to edit message", chatIDKey, chatID, errorKey, err)
	}
}

func (b *Bot) answerCallback(callbackID string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		b.log.Debug("failed to answer callback", errorKey, err)
	}
}

// fileBytes resolves a Telegram file ID to its direct download URL and
// fetches the payload whole.
func (b *Bot) fileBytes(ctx context.Context, fileID string) ([]byte, error) {
	const op = "Bot.fileBytes"

	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		prometheus.APIFailures.WithLabelValues("get_file").Inc()
		return nil, fmt.Errorf("%s: failed to resolve file link: %w", op, err)
	}
	return b.downloadFile(ctx, url)
}

func (b *Bot) downloadFile(ctx context.Context, url string) ([]byte, error) {
	const op = "Bot.downloadFile"

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		prometheus.APIFailures.WithLabelValues("download_file").Inc()
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: bad status %d", op, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

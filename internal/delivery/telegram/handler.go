package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/pkg/prometheus"
)

const (
	correlationIDKey = "correlation_id"
	chatIDKey        = "chat_id"
	userIDKey        = "user_id"
	commandKey       = "command"
	errorKey         = "error"
	successKey       = "success"
)

const (
	callbackPrefix = "loc:"
	callbackSkip   = "loc:skip"
	callbackOther  = "loc:other"
)

const (
	welcomeMessage = "🐾 Welcome to the Animal Identification Bot!\n\n" +
		"📸 How to use:\n" +
		"1. Send me a photo of an animal\n" +
		"2. Type /identify to identify the species\n\n" +
		"Commands:\n" +
		"/start - Show this message\n" +
		"/help - Get help\n" +
		"/identify - Identify the last uploaded animal photo"

	helpMessage = "🔍 How to use this bot:\n\n" +
		"1. Upload a photo of an animal\n" +
		"2. Type /identify\n" +
		"3. Wait for the AI to analyze\n" +
		"4. Get the species information!\n\n" +
		"💡 Tips:\n" +
		"- Use clear, well-lit photos\n" +
		"- Make sure the animal is visible\n" +
		"- Close-up photos work best"

	photoPromptMessage = "❌ No photo found! Please reply to this message with a photo of an animal, " +
		"or upload one and type /identify"

	locationPromptMessage = "✅ Photo received!\n\n" +
		"📍 Where was this photo taken? Pick a region, type a location, or choose Skip."

	locationThenIdentifyMessage = "✅ Photo received!\n\n" +
		"📍 Where was this photo taken? Pick a region, type a location, or choose Skip.\n" +
		"Then type /identify to identify the species."

	customLocationPromptMessage = "📍 Type the location where the photo was taken:"

	locationSavedMessage = "📍 Location saved. Type /identify when you are ready."

	analyzingMessage = "🔍 Analyzing image with AI... Please wait."

	transientErrorMessage = "⚠️ An error occurred. Please try again."

	nudgeMessage = "📸 Please send me a photo of an animal, then type /identify"

	unknownCommandMessage = "Unknown command. Type /help to see what I can do."

	groupFallbackNotice = "I couldn't message you privately, so here is your result:"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)

	case update.Message == nil || update.Message.From == nil:
		return

	case len(update.Message.Photo) > 0:
		b.handlePhoto(ctx, update.Message)

	case update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)

	case update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	command := msg.Command()
	startTime := time.Now()
	defer func() {
		prometheus.CommandDuration.WithLabelValues(command).Observe(time.Since(startTime).Seconds())
	}()

	status := successKey
	defer func() {
		prometheus.CommandCounter.WithLabelValues(command, status).Inc()
	}()

	corrID := b.states.GetCorrelationID(ctx, msg.From.ID)
	b.log.Info("command received",
		chatIDKey, msg.Chat.ID,
		userIDKey, msg.From.ID,
		commandKey, command,
		correlationIDKey, corrID)

	switch command {
	case "start":
		b.SendMessage(msg.Chat.ID, welcomeMessage)
	case "help":
		b.SendMessage(msg.Chat.ID, helpMessage)
	case "identify":
		b.handleIdentify(ctx, msg)
	default:
		status = errorKey
		if msg.Chat.IsPrivate() {
			b.SendMessage(msg.Chat.ID, unknownCommandMessage)
		}
	}
}

func (b *Bot) handleIdentify(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	state := b.states.GetStateByID(ctx, userID)

	switch {
	case state.PhotoFileID == "":
		state.Step = domain.StepAwaitingPhoto
		state.AutoIdentify = false
		b.states.SetState(ctx, userID, state)
		b.SendMessage(chatID, photoPromptMessage)

	case state.LocationSet:
		// Location already chosen earlier, no re-prompt.
		b.runIdentification(ctx, chatID, msg.Chat.IsPrivate(), userID, state)

	default:
		state.Step = domain.StepAwaitingLocation
		state.AutoIdentify = true
		b.states.SetState(ctx, userID, state)
		b.askLocation(chatID, locationPromptMessage)
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	// Telegram sends several sizes of the same photo, largest last.
	photo := msg.Photo[len(msg.Photo)-1]
	caption := strings.TrimSpace(msg.Caption)

	corrID := b.states.GetCorrelationID(ctx, userID)
	b.log.Info("photo received",
		chatIDKey, chatID,
		userIDKey, userID,
		correlationIDKey, corrID)

	// Uploading with caption /identify skips the whole flow.
	if strings.EqualFold(caption, "/identify") {
		b.runIdentification(ctx, chatID, msg.Chat.IsPrivate(), userID,
			&domain.Session{PhotoFileID: photo.FileID})
		return
	}

	state := b.states.GetStateByID(ctx, userID)
	freshFlow := state.PhotoFileID == ""
	state.PhotoFileID = photo.FileID
	state.Location = nil
	state.LocationSet = false

	isReplyToBot := msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil &&
		msg.ReplyToMessage.From.ID == b.selfID

	switch {
	case state.Step == domain.StepAwaitingPhoto || isReplyToBot:
		state.Step = domain.StepAwaitingLocation
		state.AutoIdentify = true
		b.states.SetState(ctx, userID, state)
		b.askLocation(chatID, locationPromptMessage)

	case msg.Chat.IsPrivate():
		state.Step = domain.StepAwaitingLocation
		state.AutoIdentify = false
		b.states.SetState(ctx, userID, state)
		b.askLocation(chatID, locationThenIdentifyMessage)

	default:
		// Group photo with no command context: store silently, group
		// members have to invoke /identify explicitly.
		b.states.SetState(ctx, userID, state)
	}

	if freshFlow {
		prometheus.ActiveSessions.Inc()
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	state, ok := b.states.PeekStateByID(ctx, userID)
	if ok && (state.Step == domain.StepAwaitingLocation || state.Step == domain.StepAwaitingCustomLocation) {
		b.handleLocationInput(ctx, msg.Chat.ID, msg.Chat.IsPrivate(), userID,
			strings.TrimSpace(msg.Text))
		return
	}

	// Idle free text: nudge in private chats, stay quiet in groups.
	if msg.Chat.IsPrivate() {
		b.SendMessage(msg.Chat.ID, nudgeMessage)
	}
}

func (b *Bot) handleLocationInput(ctx context.Context, chatID int64, private bool, userID int64, text string) {
	state := b.states.GetStateByID(ctx, userID)

	if strings.EqualFold(text, "skip") {
		state.Location = nil
	} else if text != "" {
		location := text
		state.Location = &location
	}
	state.LocationSet = true

	if state.AutoIdentify {
		b.states.SetState(ctx, userID, state)
		b.runIdentification(ctx, chatID, private, userID, state)
		return
	}

	state.Step = domain.StepIdle
	b.states.SetState(ctx, userID, state)
	b.SendMessage(chatID, locationSavedMessage)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	b.answerCallback(query.ID)
	if query.Message == nil {
		return
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID
	data := query.Data

	corrID := b.states.GetCorrelationID(ctx, userID)
	b.log.Info("callback received",
		chatIDKey, chatID,
		userIDKey, userID,
		"data", data,
		correlationIDKey, corrID)

	state := b.states.GetStateByID(ctx, userID)
	if state.Step != domain.StepAwaitingLocation && state.Step != domain.StepAwaitingCustomLocation {
		// Stale keyboard from an already-finished flow.
		return
	}

	switch {
	case data == callbackOther:
		state.Step = domain.StepAwaitingCustomLocation
		b.states.SetState(ctx, userID, state)
		b.editMessageText(chatID, query.Message.MessageID, customLocationPromptMessage)

	case data == callbackSkip:
		b.editMessageText(chatID, query.Message.MessageID, "📍 Location: skipped")
		b.handleLocationInput(ctx, chatID, query.Message.Chat.IsPrivate(), userID, "skip")

	case strings.HasPrefix(data, callbackPrefix):
		region := strings.TrimPrefix(data, callbackPrefix)
		b.editMessageText(chatID, query.Message.MessageID, "📍 Location: "+region)
		b.handleLocationInput(ctx, chatID, query.Message.Chat.IsPrivate(), userID, region)
	}
}

// runIdentification downloads the stored photo, runs the resolver and
// reports the outcome. A download failure keeps the session so the user
// can retry /identify; any resolver outcome ends the flow and clears
// the session.
func (b *Bot) runIdentification(ctx context.Context, chatID int64, private bool, userID int64, state *domain.Session) {
	corrID := b.states.GetCorrelationID(ctx, userID)

	processingID, err := b.sendText(chatID, analyzingMessage)
	if err != nil {
		b.log.Warn("failed to send processing notice",
			chatIDKey, chatID, errorKey, err, correlationIDKey, corrID)
	}

	image, err := b.fileBytes(ctx, state.PhotoFileID)
	if err != nil {
		b.log.Error("photo download failed",
			chatIDKey, chatID, errorKey, err, correlationIDKey, corrID)
		if processingID != 0 {
			b.deleteMessage(chatID, processingID)
		}
		b.SendMessage(chatID, transientErrorMessage)
		return
	}

	result, err := b.resolver.Identify(ctx, image, state.Location)
	if processingID != 0 {
		b.deleteMessage(chatID, processingID)
	}

	if err != nil {
		b.log.Info("identification failed",
			chatIDKey, chatID, errorKey, err, correlationIDKey, corrID)
		b.SendMessage(chatID, failureMessage(err))
		b.resetSession(ctx, userID)
		return
	}

	b.log.Info("identification succeeded",
		chatIDKey, chatID,
		"commonName", result.CommonName,
		"scientificName", result.ScientificName,
		correlationIDKey, corrID)
	b.deliverResult(ctx, chatID, private, userID, result)
	b.resetSession(ctx, userID)
}

// deliverResult sends the result privately for group-triggered runs and
// degrades to a notice in the group when the user is unreachable.
func (b *Bot) deliverResult(ctx context.Context, originChatID int64, private bool, userID int64, result domain.Identification) {
	target := originChatID
	if !private {
		target = userID
	}

	err := b.sendIdentificationResult(target, result)
	if err == nil {
		return
	}

	if private || !errors.Is(err, domain.ErrUnreachable) {
		b.log.Error("failed to deliver result",
			chatIDKey, target, errorKey, err)
		return
	}

	b.log.Warn("user unreachable, falling back to group delivery",
		userIDKey, userID, chatIDKey, originChatID, errorKey, err)
	b.SendMessage(originChatID, groupFallbackNotice)
	if err := b.sendIdentificationResult(originChatID, result); err != nil {
		b.log.Error("failed to deliver result",
			chatIDKey, originChatID, errorKey, err)
	}
}

func (b *Bot) sendIdentificationResult(chatID int64, result domain.Identification) error {
	caption := fmt.Sprintf("<b>%s</b>\n<i>%s</i>",
		html.EscapeString(result.CommonName),
		html.EscapeString(result.ScientificName))

	if result.ReferenceImageURL != "" {
		if err := b.sendPhoto(chatID, result.ReferenceImageURL, caption); err == nil {
			return nil
		}
		// The reference image URL may have gone stale; the names still
		// make a useful answer.
	}
	return b.sendHTML(chatID, caption)
}

func (b *Bot) askLocation(chatID int64, intro string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Africa", callbackPrefix+"Africa"),
			tgbotapi.NewInlineKeyboardButtonData("Asia", callbackPrefix+"Asia"),
			tgbotapi.NewInlineKeyboardButtonData("Europe", callbackPrefix+"Europe"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Americas", callbackPrefix+"Americas"),
			tgbotapi.NewInlineKeyboardButtonData("Oceania", callbackPrefix+"Oceania"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Other…", callbackOther),
			tgbotapi.NewInlineKeyboardButtonData("Skip", callbackSkip),
		),
	)
	if err := b.sendWithKeyboard(chatID, intro, keyboard); err != nil {
		b.log.Warn("failed to send location keyboard", chatIDKey, chatID, errorKey, err)
	}
}

func (b *Bot) resetSession(ctx context.Context, userID int64) {
	state, ok := b.states.PeekStateByID(ctx, userID)
	if ok && state.PhotoFileID != "" {
		prometheus.ActiveSessions.Dec()
	}
	b.states.ResetUserState(ctx, userID)
}

func failureMessage(err error) string {
	return "❌ Sorry, I couldn't identify the animal.\n\n" +
		"Error: " + err.Error() + "\n\n" +
		"Please try with a clearer photo."
}

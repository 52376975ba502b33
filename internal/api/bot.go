package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "frame-guide/internal/application"
	"frame-guide/internal/container"
	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/port"
	"frame-guide/internal/log"
)

const (
	msgStart = `👋 Hi! I help you frame an object with your camera.

🎯 Tell me what to look for, point the camera, and I will guide you until the object is centered and fills the frame.

📋 Commands:
/frame — start live guidance
/find <object> — name the object to frame
/stop — stop guidance
/status — last guidance message
/help — help`

	msgHelp = `ℹ️ How it works:

1️⃣ Send /frame or /find cup
2️⃣ Keep sending photos from the camera (or stream them to the web page)
3️⃣ Follow the hints: move left, right, up, down or closer
4️⃣ I stop once the object is centered and covers enough of the target area

📸 Outside a session any photo gets a one-off assessment.

📋 Commands:
/frame — start live guidance
/find <object> — name the object to frame
/stop — stop guidance
/status — last guidance message`

	msgFraming         = "🧭 Guidance started. Send photos and follow the hints."
	msgAlreadyFraming  = "🧭 Guidance is already running, you will receive the hints too."
	msgStopped         = "⏹ Guidance stopped. Send /frame to start again."
	msgFindUsage       = "🔎 Tell me what to look for, e.g. /find cup"
	msgUnknownCommand  = "❓ Unknown command. Use /help."
	msgProcessing      = "⏳ Looking at the photo..."
	msgFrameQueued     = "📥 Frame received."
	msgProcessingError = "⚠️ Could not process the photo. Try another one."
)

// sender is the part of the Bot API the bot talks through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot is the Telegram boundary of the guidance engine.
type Bot struct {
	api       *tgbotapi.BotAPI
	sender    sender
	container *container.Container
	download  func(fileID string) ([]byte, error)

	mu      sync.Mutex
	lastKey string // last guidance update pushed to chats
}

// NewBot connects to the Bot API.
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info("authorized on telegram", "account", api.Self.UserName)

	b := newBot(api, c)
	b.api = api
	b.download = b.downloadFile
	return b, nil
}

func newBot(s sender, c *container.Container) *Bot {
	return &Bot{
		sender:    s,
		container: c,
	}
}

// Run handles updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// NotifyGuidance pushes guidance changes to every framing chat. Repeats of
// the last pushed update are suppressed.
func (b *Bot) NotifyGuidance(ctx context.Context, state entity.GuidanceState) {
	text, ok := guidanceText(state)
	if !ok {
		return
	}

	key := state.SessionID + "|" + string(state.Status) + "|" + text
	b.mu.Lock()
	if key == b.lastKey {
		b.mu.Unlock()
		return
	}
	b.lastKey = key
	b.mu.Unlock()

	subscribers, err := b.container.SubscriberService.Framing(ctx)
	if err != nil {
		log.Error("list framing chats", "error", err)
		return
	}

	for _, s := range subscribers {
		b.sendMessage(s.ChatID, text)
		if !state.Running {
			if _, err := b.container.SubscriberService.Cancel(ctx, s.ID, s.ChatID); err != nil {
				log.Error("reset chat state", "chat", s.ChatID, "error", err)
			}
		}
	}
}

// guidanceText renders state for chats. Session starts and idle states
// produce nothing.
func guidanceText(state entity.GuidanceState) (string, bool) {
	switch state.Status {
	case entity.StatusRunning:
		if state.Cycles == 0 {
			return "", false
		}
		return "🧭 " + state.DisplayMessage(), true
	case entity.StatusStopped:
		return "⏹ Guidance finished: " + state.DisplayMessage(), true
	default:
		return "", false
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	subscriber, err := b.container.SubscriberService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Error("get subscriber", "chat", msg.Chat.ID, "error", err)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, subscriber)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, subscriber)
		return
	}

	// plain text names the object, the way a spoken phrase would
	b.handleFind(ctx, msg, strings.TrimSpace(msg.Text))
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, subscriber *entity.Subscriber) {
	switch msg.Command() {
	case "start":
		b.setState(ctx, subscriber, entity.StateIdle)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "frame":
		b.setState(ctx, subscriber, entity.StateFraming)
		if b.container.StartGuidance(ctx) {
			b.sendMessage(msg.Chat.ID, msgFraming)
		} else {
			b.sendMessage(msg.Chat.ID, msgAlreadyFraming)
		}

	case "find":
		b.handleFind(ctx, msg, strings.TrimSpace(msg.CommandArguments()))

	case "stop":
		b.setState(ctx, subscriber, entity.StateIdle)
		b.container.StopGuidance(ctx)
		b.sendMessage(msg.Chat.ID, msgStopped)

	case "status":
		b.sendMessage(msg.Chat.ID, statusText(b.container.Snapshot()))

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

func (b *Bot) handleFind(ctx context.Context, msg *tgbotapi.Message, text string) {
	if text == "" {
		b.sendMessage(msg.Chat.ID, msgFindUsage)
		return
	}

	if _, err := b.container.SubscriberService.BeginFraming(ctx, msg.From.ID, msg.Chat.ID); err != nil {
		log.Error("begin framing", "chat", msg.Chat.ID, "error", err)
	}
	b.container.Find(ctx, text)
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("🔎 Looking for %q. Send photos and follow the hints.", strings.ToLower(text)))
}

// handlePhoto feeds a framing chat's photo to the live session when frames
// are pushed, and assesses it on its own otherwise.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, subscriber *entity.Subscriber) {
	photo := msg.Photo[len(msg.Photo)-1]

	data, err := b.download(photo.FileID)
	if err != nil {
		log.Error("download photo", "chat", msg.Chat.ID, "error", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	if subscriber.ReceivesGuidance() && b.container.PushEnabled() {
		if _, err := b.container.PushFrame(data); err != nil {
			log.Warn("push photo frame", "chat", msg.Chat.ID, "error", err)
			b.sendMessage(msg.Chat.ID, msgProcessingError)
			return
		}
		b.sendMessage(msg.Chat.ID, msgFrameQueued)
		return
	}

	previous := subscriber.State
	b.setState(ctx, subscriber, entity.StateProcessing)
	defer b.setState(ctx, subscriber, previous)

	b.sendMessage(msg.Chat.ID, msgProcessing)

	assessment, err := b.container.PhotoService.Assess(ctx, data)
	if err != nil {
		log.Warn("assess photo", "chat", msg.Chat.ID, "error", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	b.sendMessage(msg.Chat.ID, assessmentText(assessment))
}

func (b *Bot) setState(ctx context.Context, subscriber *entity.Subscriber, state entity.SubscriberState) {
	if _, err := b.container.SubscriberService.SetState(ctx, subscriber.ID, subscriber.ChatID, state); err != nil {
		log.Error("save subscriber", "chat", subscriber.ChatID, "error", err)
		return
	}
	subscriber.SetState(state)
}

func statusText(state entity.GuidanceState) string {
	var sb strings.Builder
	switch state.Status {
	case entity.StatusRunning:
		sb.WriteString("🧭 Guidance is running.\n")
	case entity.StatusStopped:
		sb.WriteString("⏹ Guidance is stopped.\n")
	default:
		sb.WriteString("💤 No guidance yet. Send /frame to start.\n")
	}
	fmt.Fprintf(&sb, "Last hint: %s", state.DisplayMessage())
	if len(state.Detections) > 0 {
		fmt.Fprintf(&sb, "\nCoverage: %.0f%%\nSeen: %s", state.Coverage, objectNames(state.Detections))
	}
	return sb.String()
}

func assessmentText(a *app.PhotoAssessment) string {
	if a.Verdict == nil {
		return "🤷 " + a.Message()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 %s: %s\n", a.Verdict.Object.Name, a.Message())
	fmt.Fprintf(&sb, "Coverage: %.0f%%", a.Verdict.Coverage)
	if len(a.Detections) > 1 {
		fmt.Fprintf(&sb, "\nSeen: %s", objectNames(a.Detections))
	}
	return sb.String()
}

func objectNames(objects []entity.DetectedObject) string {
	names := make([]string, 0, len(objects))
	for _, o := range objects {
		names = append(names, o.Name)
	}
	return strings.Join(names, ", ")
}

// downloadFile fetches a file from Telegram.
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	resp, err := http.Get(file.Link(b.api.Token))
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

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		log.Error("send message", "chat", chatID, "error", err)
	}
}

var _ port.GuidanceNotifier = (*Bot)(nil)

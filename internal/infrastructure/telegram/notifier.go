package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"TeluguNews/internal/ports"
	"TeluguNews/internal/textutil"
)

// ErrMisconfigured is returned when the token or chat is missing.
var ErrMisconfigured = errors.New("telegram notifier misconfigured")

// maxMessageLen is the Bot API limit for one text message.
const maxMessageLen = 4096

// Notifier sends run reports to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	endpoint string
	client   *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. chatID is either a
// numeric id or an @channel username.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   strings.TrimSpace(chatID),
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithEndpoint points the bot at another API host (format as tgbotapi.APIEndpoint).
func (n *Notifier) WithEndpoint(endpoint string, client *http.Client) *Notifier {
	n.endpoint = endpoint
	if client != nil {
		n.client = client
	}
	return n
}

// PublishReport posts a plain-text message to the configured chat.
func (n *Notifier) PublishReport(ctx context.Context, report string) error {
	if n.botToken == "" || n.chatID == "" {
		return ErrMisconfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	bot, err := n.api()
	if err != nil {
		return err
	}

	report = textutil.Truncate(report, maxMessageLen)

	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(n.chatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, report)
	} else {
		msg = tgbotapi.NewMessageToChannel(n.chatID, report)
	}
	msg.DisableWebPagePreview = true

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// api builds the bot lazily; construction performs a getMe round trip.
func (n *Notifier) api() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(n.botToken, n.endpoint, n.client)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	n.bot = bot
	return bot, nil
}

// Package bot answers incoming updates with the replies configured for
// each /command.
package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/dev-dhg/tgbot/pkg/botapi"
	"github.com/dev-dhg/tgbot/pkg/config"
)

var logger = loggo.GetLogger("tgbot.bot")

// API is the part of the Bot API the handler calls.
type API interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts botapi.SendMessageOptions) (*botapi.Message, error)
	SendChatAction(ctx context.Context, chatID int64, action botapi.ChatAction) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string, opts botapi.AnswerCallbackQueryOptions) error
}

// Bot implements updates.Handler.
type Bot struct {
	api API

	mu  sync.RWMutex
	cfg *config.Config
}

func New(api API, cfg *config.Config) *Bot {
	return &Bot{api: api, cfg: cfg}
}

// UpdateConfig swaps the replies and the allow list.
func (b *Bot) UpdateConfig(cfg *config.Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = cfg
}

func (b *Bot) config() *config.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg
}

func (b *Bot) HandleUpdate(ctx context.Context, update botapi.Update) {
	var err error
	switch {
	case update.Message != nil:
		err = b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.handleCallback(ctx, update.CallbackQuery)
	default:
		logger.Debugf("ignoring update %d", update.UpdateID)
	}
	if err != nil {
		logger.Errorf("handling update %d: %v", update.UpdateID, err)
	}
}

func (b *Bot) allowed(user *botapi.User) bool {
	if user == nil {
		return false
	}
	username := ""
	if user.Username != nil {
		username = *user.Username
	}
	if b.config().IsUserAllowed(strconv.FormatInt(user.ID, 10), username) {
		return true
	}
	logger.Warningf("unauthorized access attempt from user %d", user.ID)
	return false
}

func (b *Bot) handleMessage(ctx context.Context, msg *botapi.Message) error {
	if msg.Text == nil || !b.allowed(msg.From) {
		return nil
	}
	command, ok := ParseCommand(*msg.Text)
	if !ok {
		logger.Debugf("ignoring plain text in chat %d", msg.Chat.ID)
		return nil
	}
	logger.Infof("command /%s from chat %d", command, msg.Chat.ID)
	return errors.Trace(b.reply(ctx, msg.Chat.ID, command))
}

// handleCallback acknowledges every button press and answers presses
// whose data names a configured reply.
func (b *Bot) handleCallback(ctx context.Context, q *botapi.CallbackQuery) error {
	if !b.allowed(&q.From) {
		return errors.Trace(b.api.AnswerCallbackQuery(ctx, q.ID, botapi.AnswerCallbackQueryOptions{
			Text: botapi.Some("Not allowed"),
		}))
	}
	if err := b.api.AnswerCallbackQuery(ctx, q.ID, botapi.AnswerCallbackQueryOptions{}); err != nil {
		return errors.Annotate(err, "answering callback query")
	}
	if q.Data == nil || q.Message == nil || b.config().FindReply(*q.Data) == nil {
		return nil
	}
	return errors.Trace(b.reply(ctx, q.Message.Chat.ID, *q.Data))
}

func (b *Bot) reply(ctx context.Context, chatID int64, command string) error {
	cfg := b.config()
	r := cfg.FindReply(command)
	if r == nil {
		text := fmt.Sprintf("Unknown command /%s.", command)
		if strings.EqualFold(command, "help") {
			text = helpText(cfg)
		} else if len(cfg.Replies) > 0 {
			text += " Try /help."
		}
		_, err := b.api.SendMessage(ctx, chatID, text, botapi.SendMessageOptions{})
		return errors.Trace(err)
	}

	if err := b.api.SendChatAction(ctx, chatID, botapi.ActionTyping); err != nil {
		logger.Debugf("chat action for %d: %v", chatID, err)
	}
	opts := botapi.SendMessageOptions{}
	if r.ParseMode != "" {
		opts.ParseMode = botapi.Some(r.ParseMode)
	}
	opts.ReplyMarkup = Markup(r)
	_, err := b.api.SendMessage(ctx, chatID, r.Text, opts)
	return errors.Trace(err)
}

// Markup builds the keyboard of r, or nil when it has none.
func Markup(r *config.Reply) botapi.ReplyMarkup {
	if len(r.Keyboard) == 0 {
		return nil
	}
	if r.Inline {
		rows := make([][]botapi.InlineKeyboardButton, len(r.Keyboard))
		for i, row := range r.Keyboard {
			for _, label := range row {
				rows[i] = append(rows[i], botapi.CallbackButton(label, label))
			}
		}
		return botapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	}
	return botapi.ReplyKeyboardMarkup{
		Keyboard:        r.Keyboard,
		ResizeKeyboard:  true,
		OneTimeKeyboard: r.OneTime,
	}
}

// ParseCommand extracts the command name from "/name@bot args".
func ParseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", false
	}
	name, _, _ := strings.Cut(fields[0], "@")
	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}

func helpText(cfg *config.Config) string {
	if len(cfg.Replies) == 0 {
		return "No commands configured."
	}
	names := make([]string, 0, len(cfg.Replies))
	for _, r := range cfg.Replies {
		names = append(names, "/"+strings.TrimPrefix(r.Command, "/"))
	}
	sort.Strings(names)
	return "Available commands:\n" + strings.Join(names, "\n")
}

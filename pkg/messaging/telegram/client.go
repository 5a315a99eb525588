package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/dev-dhg/tgbot/pkg/botapi"
	"github.com/dev-dhg/tgbot/pkg/media"
)

var logger = loggo.GetLogger("tgbot.messaging.telegram")

// MaxMessageLength is Telegram's limit for one text message, in runes.
const MaxMessageLength = 4096

// Client adapts a botapi.Client to messaging.Provider.
type Client struct {
	api       *botapi.Client
	resolver  *media.Resolver
	parseMode string
}

// NewClient returns a provider sending through api. parseMode ("Markdown",
// "HTML" or empty) applies to text messages.
func NewClient(api *botapi.Client, resolver *media.Resolver, parseMode string) *Client {
	return &Client{api: api, resolver: resolver, parseMode: parseMode}
}

func (c *Client) Name() string {
	return "telegram"
}

// ParseChatID converts a target id into a Telegram chat id.
func ParseChatID(targetID string) (int64, error) {
	chatID, err := strconv.ParseInt(strings.TrimSpace(targetID), 10, 64)
	if err != nil {
		return 0, errors.NotValidf("telegram chat id %q", targetID)
	}
	return chatID, nil
}

func (c *Client) SendMessage(ctx context.Context, targetID string, message string) error {
	chatID, err := ParseChatID(targetID)
	if err != nil {
		return errors.Trace(err)
	}
	text, items := parseMedia(message)

	var lastErr error
	for i, chunk := range splitText(text, MaxMessageLength) {
		if err := c.sendText(ctx, chatID, chunk); err != nil {
			logger.Errorf("sending text chunk %d to %d: %v", i+1, chatID, err)
			lastErr = err
		}
	}
	for i, item := range items {
		if err := c.sendItem(ctx, chatID, item); err != nil {
			logger.Errorf("sending media item %d (%s) to %d: %v", i, item.Kind, chatID, err)
			lastErr = err
		}
	}
	return errors.Trace(lastErr)
}

// sendText retries as plain text when Telegram rejects the markup.
func (c *Client) sendText(ctx context.Context, chatID int64, text string) error {
	opts := botapi.SendMessageOptions{}
	if c.parseMode != "" {
		opts.ParseMode = botapi.Some(c.parseMode)
	}
	_, err := c.api.SendMessage(ctx, chatID, text, opts)
	var apiErr *botapi.APIError
	if c.parseMode != "" && errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "can't parse entities") {
		logger.Warningf("%s parsing failed (%v), retrying as plain text", c.parseMode, apiErr)
		_, err = c.api.SendMessage(ctx, chatID, text, botapi.SendMessageOptions{})
	}
	return errors.Trace(err)
}

func (c *Client) SendImage(ctx context.Context, targetID string, ref string, caption string) error {
	return c.sendRef(ctx, targetID, KindImage, ref, caption)
}

func (c *Client) SendAudio(ctx context.Context, targetID string, ref string, caption string) error {
	return c.sendRef(ctx, targetID, KindAudio, ref, caption)
}

func (c *Client) SendVideo(ctx context.Context, targetID string, ref string, caption string) error {
	return c.sendRef(ctx, targetID, KindVideo, ref, caption)
}

func (c *Client) SendDocument(ctx context.Context, targetID string, ref string, caption string) error {
	return c.sendRef(ctx, targetID, KindDocument, ref, caption)
}

// SendSticker sends a sticker. It is not part of messaging.Provider.
func (c *Client) SendSticker(ctx context.Context, targetID string, ref string) error {
	return c.sendRef(ctx, targetID, KindSticker, ref, "")
}

func (c *Client) sendRef(ctx context.Context, targetID string, kind Kind, ref, caption string) error {
	chatID, err := ParseChatID(targetID)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.sendItem(ctx, chatID, MediaItem{Kind: kind, Ref: ref, Caption: caption}))
}

func (c *Client) sendItem(ctx context.Context, chatID int64, item MediaItem) error {
	file, err := c.resolver.Resolve(ctx, item.Ref)
	if err != nil {
		return errors.Annotatef(err, "resolving %s", item.Kind)
	}
	caption := optionalString(item.Caption)
	switch item.Kind {
	case KindImage:
		_, err = c.api.SendPhoto(ctx, chatID, file, botapi.SendPhotoOptions{Caption: caption})
	case KindAudio:
		_, err = c.api.SendAudio(ctx, chatID, file, botapi.SendAudioOptions{Title: caption})
	case KindVideo:
		_, err = c.api.SendVideo(ctx, chatID, file, botapi.SendVideoOptions{Caption: caption})
	case KindDocument:
		_, err = c.api.SendDocument(ctx, chatID, file, botapi.SendDocumentOptions{Caption: caption})
	case KindSticker:
		_, err = c.api.SendSticker(ctx, chatID, file, botapi.ReplyOptions{})
	default:
		return errors.NotSupportedf("media kind %q", item.Kind)
	}
	return errors.Trace(err)
}

func optionalString(s string) botapi.Optional[string] {
	if s == "" {
		return botapi.None[string]()
	}
	return botapi.Some(s)
}

package botapi

import (
	"context"
)

// Limits accepted by getUpdates and getUserProfilePhotos.
const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 100
)

// ChatAction is the status shown to users by SendChatAction.
type ChatAction string

const (
	ActionTyping         ChatAction = "typing"
	ActionUploadPhoto    ChatAction = "upload_photo"
	ActionRecordVideo    ChatAction = "record_video"
	ActionUploadVideo    ChatAction = "upload_video"
	ActionRecordAudio    ChatAction = "record_audio"
	ActionUploadAudio    ChatAction = "upload_audio"
	ActionUploadDocument ChatAction = "upload_document"
	ActionFindLocation   ChatAction = "find_location"
)

// ReplyOptions are accepted by every send* method.
type ReplyOptions struct {
	ReplyToMessageID Optional[int64]
	ReplyMarkup      ReplyMarkup
}

func (o ReplyOptions) encode(p *Params) {
	p.AddOptionalInt64("reply_to_message_id", o.ReplyToMessageID)
	p.AddMarkup("reply_markup", o.ReplyMarkup)
}

type SendMessageOptions struct {
	ParseMode             Optional[string]
	DisableWebPagePreview Optional[bool]
	ReplyOptions
}

type SendPhotoOptions struct {
	Caption Optional[string]
	ReplyOptions
}

type SendAudioOptions struct {
	Duration  Optional[int]
	Performer Optional[string]
	Title     Optional[string]
	ReplyOptions
}

type SendDocumentOptions struct {
	Caption Optional[string]
	ReplyOptions
}

type SendVideoOptions struct {
	Duration Optional[int]
	Caption  Optional[string]
	ReplyOptions
}

type SendVoiceOptions struct {
	Duration Optional[int]
	ReplyOptions
}

type GetUserProfilePhotosOptions struct {
	Offset Optional[int]
	// Limit defaults to DefaultLimit and is clamped into [MinLimit, MaxLimit].
	Limit Optional[int]
}

type GetUpdatesOptions struct {
	Offset Optional[int64]
	// Limit defaults to DefaultLimit and is clamped into [MinLimit, MaxLimit].
	Limit Optional[int]
	// Timeout is the long polling timeout in seconds.
	Timeout Optional[int]
}

type SetWebhookOptions struct {
	// Certificate is the public key certificate of a self-signed webhook.
	Certificate    InputFile
	MaxConnections Optional[int]
}

type AnswerCallbackQueryOptions struct {
	Text      Optional[string]
	ShowAlert Optional[bool]
}

// GetMe returns the bot's own user.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	resp, err := c.call(ctx, "getMe", nil)
	if err != nil {
		return nil, err
	}
	return decodeResult(resp, decodeUser)
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts SendMessageOptions) (*Message, error) {
	p := NewParams().
		AddInt64("chat_id", chatID).
		AddString("text", text).
		AddOptionalString("parse_mode", opts.ParseMode).
		AddOptionalBool("disable_web_page_preview", opts.DisableWebPagePreview)
	opts.encode(p)
	return c.sendForMessage(ctx, "sendMessage", p)
}

func (c *Client) ForwardMessage(ctx context.Context, chatID, fromChatID, messageID int64) (*Message, error) {
	p := NewParams().
		AddInt64("chat_id", chatID).
		AddInt64("from_chat_id", fromChatID).
		AddInt64("message_id", messageID)
	return c.sendForMessage(ctx, "forwardMessage", p)
}

// SendPhoto sends photo, uploading it when it is FileBytes.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo InputFile, opts SendPhotoOptions) (*Message, error) {
	p := NewParams().
		AddInt64("chat_id", chatID).
		AddFile("photo", photo).
		AddOptionalString("caption", opts.Caption)
	opts.encode(p)
	return c.sendForMessage(ctx, "sendPhoto", p)
}

func (c *Client) SendAudio(ctx context.Context, chatID int64, audio InputFile, opts SendAudioOptions) (*Message, error) {
	p := NewParams().
		AddInt64("chat_id", chatID).
		AddFile("audio", audio).
		AddOptionalInt("duration", opts.Duration).
		AddOptionalString("performer", opts.Performer).
		AddOptionalString("title", opts.Title)
	opts.encode(p)
	return c.sendForMessage(ctx, "sendAudio", p)
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, document InputFile, opts SendDocumentOptions) (*Message, error) {
	p := NewParams().
		AddInt64("chat_id", chatID).
		AddFile("document", document).
		AddOptionalString("caption", opts.Caption)
	opts.encode(p)
	return c.sendForMessage(ctx, "sendDocument", p)
}

func (c *Client) SendSticker(ctx context.Context, chatID int64, sticker InputFile, opts ReplyOptions) (*Message, error) {
	p := NewParams().
		AddInt64("chat_id", chatID).
		AddFile("sticker", sticker)
	opts.encode(p)
	return c.sendForMessage(ctx, "sendSticker", p)
}

func (c *Client) SendVideo(ctx context.Context, chatID int64, video InputFile, opts SendVideoOptions) (*Message, error) {
	p := NewParams().
		AddInt64("chat_id", chatID).
		AddFile("video", video).
		AddOptionalInt("duration", opts.Duration).
		AddOptionalString("caption", opts.Caption)
	opts.encode(p)
	return c.sendForMessage(ctx, "sendVideo", p)
}

func (c *Client) SendVoice(ctx context.Context, chatID int64, voice InputFile, opts SendVoiceOptions) (*Message, error) {
	p := NewParams().
		AddInt64("chat_id", chatID).
		AddFile("voice", voice).
		AddOptionalInt("duration", opts.Duration)
	opts.encode(p)
	return c.sendForMessage(ctx, "sendVoice", p)
}

func (c *Client) SendLocation(ctx context.Context, chatID int64, latitude, longitude float64, opts ReplyOptions) (*Message, error) {
	p := NewParams().
		AddInt64("chat_id", chatID).
		AddFloat("latitude", latitude).
		AddFloat("longitude", longitude)
	opts.encode(p)
	return c.sendForMessage(ctx, "sendLocation", p)
}

// SendChatAction shows action in the chat for a few seconds.
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action ChatAction) error {
	p := NewParams().
		AddInt64("chat_id", chatID).
		AddString("action", string(action))
	_, err := c.call(ctx, "sendChatAction", p)
	return err
}

func (c *Client) GetUserProfilePhotos(ctx context.Context, userID int64, opts GetUserProfilePhotosOptions) (*UserProfilePhotos, error) {
	p := NewParams().
		AddInt64("user_id", userID).
		AddOptionalInt("offset", opts.Offset).
		AddClampedInt("limit", opts.Limit.OrElse(DefaultLimit), MinLimit, MaxLimit)
	resp, err := c.call(ctx, "getUserProfilePhotos", p)
	if err != nil {
		return nil, err
	}
	return decodeResult(resp, decodeUserProfilePhotos)
}

// GetUpdates returns pending updates in the order the API sent them.
func (c *Client) GetUpdates(ctx context.Context, opts GetUpdatesOptions) ([]Update, error) {
	p := NewParams().
		AddOptionalInt64("offset", opts.Offset).
		AddClampedInt("limit", opts.Limit.OrElse(DefaultLimit), MinLimit, MaxLimit).
		AddOptionalInt("timeout", opts.Timeout)
	resp, err := c.call(ctx, "getUpdates", p)
	if err != nil {
		return nil, err
	}
	return decodeResultArray(resp, decodeUpdate)
}

// SetWebhook sets the URL updates are pushed to. An empty url removes it.
func (c *Client) SetWebhook(ctx context.Context, url string, opts SetWebhookOptions) error {
	p := NewParams().AddString("url", url)
	if opts.Certificate != nil {
		p.AddFile("certificate", opts.Certificate)
	}
	p.AddOptionalInt("max_connections", opts.MaxConnections)
	_, err := c.call(ctx, "setWebhook", p)
	return err
}

func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := c.call(ctx, "deleteWebhook", nil)
	return err
}

func (c *Client) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	resp, err := c.call(ctx, "getWebhookInfo", nil)
	if err != nil {
		return nil, err
	}
	return decodeResult(resp, decodeWebhookInfo)
}

// GetFile prepares a file for download; see FileURL.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	p := NewParams().AddString("file_id", fileID)
	resp, err := c.call(ctx, "getFile", p)
	if err != nil {
		return nil, err
	}
	return decodeResult(resp, decodeFile)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string, opts AnswerCallbackQueryOptions) error {
	p := NewParams().
		AddString("callback_query_id", callbackQueryID).
		AddOptionalString("text", opts.Text).
		AddOptionalBool("show_alert", opts.ShowAlert)
	_, err := c.call(ctx, "answerCallbackQuery", p)
	return err
}

func (c *Client) sendForMessage(ctx context.Context, method string, p *Params) (*Message, error) {
	resp, err := c.call(ctx, method, p)
	if err != nil {
		return nil, err
	}
	return decodeResult(resp, decodeMessage)
}

package botapi

// Optional fields of the types below are pointers or slices: nil means the
// key was absent from the JSON the API sent.

// User is a Telegram user or bot.
type User struct {
	ID           int64
	IsBot        bool
	FirstName    string
	LastName     *string
	Username     *string
	LanguageCode *string
}

// Chat is a private chat, group, supergroup or channel.
type Chat struct {
	ID        int64
	Type      string
	Title     *string
	Username  *string
	FirstName *string
	LastName  *string
}

// MessageEntity marks a special span of a message text.
type MessageEntity struct {
	Type   string
	Offset int
	Length int
	URL    *string
	User   *User
}

// PhotoSize is one size of a photo or a thumbnail.
type PhotoSize struct {
	FileID       string
	FileUniqueID *string
	Width        int
	Height       int
	FileSize     *int64
}

type Audio struct {
	FileID    string
	Duration  int
	Performer *string
	Title     *string
	MimeType  *string
	FileSize  *int64
}

type Document struct {
	FileID   string
	Thumb    *PhotoSize
	FileName *string
	MimeType *string
	FileSize *int64
}

type Sticker struct {
	FileID   string
	Width    int
	Height   int
	Thumb    *PhotoSize
	Emoji    *string
	FileSize *int64
}

type Video struct {
	FileID   string
	Width    int
	Height   int
	Duration int
	Thumb    *PhotoSize
	MimeType *string
	FileSize *int64
}

type Voice struct {
	FileID   string
	Duration int
	MimeType *string
	FileSize *int64
}

type Contact struct {
	PhoneNumber string
	FirstName   string
	LastName    *string
	UserID      *int64
}

type Location struct {
	Longitude float64
	Latitude  float64
}

// Message is a message in a chat.
type Message struct {
	MessageID        int64
	From             *User
	Date             int64
	Chat             Chat
	ForwardFrom      *User
	ForwardDate      *int64
	ReplyToMessage   *Message
	Text             *string
	Entities         []MessageEntity
	Audio            *Audio
	Document         *Document
	Photo            []PhotoSize
	Sticker          *Sticker
	Video            *Video
	Voice            *Voice
	Caption          *string
	Contact          *Contact
	Location         *Location
	NewChatMembers   []User
	LeftChatMember   *User
	NewChatTitle     *string
	NewChatPhoto     []PhotoSize
	DeleteChatPhoto  *bool
	GroupChatCreated *bool
}

// UserProfilePhotos lists profile pictures, each in several sizes.
type UserProfilePhotos struct {
	TotalCount int
	Photos     [][]PhotoSize
}

// CallbackQuery is sent when a user presses a callback button of an inline
// keyboard.
type CallbackQuery struct {
	ID              string
	From            User
	Message         *Message
	InlineMessageID *string
	ChatInstance    *string
	Data            *string
}

// Update is one incoming event.
type Update struct {
	UpdateID          int64
	Message           *Message
	EditedMessage     *Message
	ChannelPost       *Message
	EditedChannelPost *Message
	CallbackQuery     *CallbackQuery
}

// WebhookInfo describes the current webhook.
type WebhookInfo struct {
	URL                  string
	HasCustomCertificate bool
	PendingUpdateCount   int
	LastErrorDate        *int64
	LastErrorMessage     *string
	MaxConnections       *int
}

// File is a file ready to be downloaded from
// <base>/file/bot<token>/<FilePath>.
type File struct {
	FileID   string
	FileSize *int64
	FilePath *string
}

func decodeUser(o object) (*User, error) {
	var u User
	r := newReader(o)
	req(r, "id", &u.ID)
	req(r, "is_bot", &u.IsBot)
	req(r, "first_name", &u.FirstName)
	u.LastName = opt[string](r, "last_name")
	u.Username = opt[string](r, "username")
	u.LanguageCode = opt[string](r, "language_code")
	if r.err != nil {
		return nil, r.err
	}
	return &u, nil
}

func decodeChat(o object) (*Chat, error) {
	var c Chat
	r := newReader(o)
	req(r, "id", &c.ID)
	req(r, "type", &c.Type)
	c.Title = opt[string](r, "title")
	c.Username = opt[string](r, "username")
	c.FirstName = opt[string](r, "first_name")
	c.LastName = opt[string](r, "last_name")
	if r.err != nil {
		return nil, r.err
	}
	return &c, nil
}

func decodeMessageEntity(o object) (*MessageEntity, error) {
	var e MessageEntity
	r := newReader(o)
	req(r, "type", &e.Type)
	req(r, "offset", &e.Offset)
	req(r, "length", &e.Length)
	e.URL = opt[string](r, "url")
	e.User = optObj(r, "user", decodeUser)
	if r.err != nil {
		return nil, r.err
	}
	return &e, nil
}

func decodePhotoSize(o object) (*PhotoSize, error) {
	var p PhotoSize
	r := newReader(o)
	req(r, "file_id", &p.FileID)
	p.FileUniqueID = opt[string](r, "file_unique_id")
	req(r, "width", &p.Width)
	req(r, "height", &p.Height)
	p.FileSize = opt[int64](r, "file_size")
	if r.err != nil {
		return nil, r.err
	}
	return &p, nil
}

func decodeAudio(o object) (*Audio, error) {
	var a Audio
	r := newReader(o)
	req(r, "file_id", &a.FileID)
	req(r, "duration", &a.Duration)
	a.Performer = opt[string](r, "performer")
	a.Title = opt[string](r, "title")
	a.MimeType = opt[string](r, "mime_type")
	a.FileSize = opt[int64](r, "file_size")
	if r.err != nil {
		return nil, r.err
	}
	return &a, nil
}

func decodeDocument(o object) (*Document, error) {
	var d Document
	r := newReader(o)
	req(r, "file_id", &d.FileID)
	d.Thumb = optObj(r, "thumb", decodePhotoSize)
	d.FileName = opt[string](r, "file_name")
	d.MimeType = opt[string](r, "mime_type")
	d.FileSize = opt[int64](r, "file_size")
	if r.err != nil {
		return nil, r.err
	}
	return &d, nil
}

func decodeSticker(o object) (*Sticker, error) {
	var s Sticker
	r := newReader(o)
	req(r, "file_id", &s.FileID)
	req(r, "width", &s.Width)
	req(r, "height", &s.Height)
	s.Thumb = optObj(r, "thumb", decodePhotoSize)
	s.Emoji = opt[string](r, "emoji")
	s.FileSize = opt[int64](r, "file_size")
	if r.err != nil {
		return nil, r.err
	}
	return &s, nil
}

func decodeVideo(o object) (*Video, error) {
	var v Video
	r := newReader(o)
	req(r, "file_id", &v.FileID)
	req(r, "width", &v.Width)
	req(r, "height", &v.Height)
	req(r, "duration", &v.Duration)
	v.Thumb = optObj(r, "thumb", decodePhotoSize)
	v.MimeType = opt[string](r, "mime_type")
	v.FileSize = opt[int64](r, "file_size")
	if r.err != nil {
		return nil, r.err
	}
	return &v, nil
}

func decodeVoice(o object) (*Voice, error) {
	var v Voice
	r := newReader(o)
	req(r, "file_id", &v.FileID)
	req(r, "duration", &v.Duration)
	v.MimeType = opt[string](r, "mime_type")
	v.FileSize = opt[int64](r, "file_size")
	if r.err != nil {
		return nil, r.err
	}
	return &v, nil
}

func decodeContact(o object) (*Contact, error) {
	var c Contact
	r := newReader(o)
	req(r, "phone_number", &c.PhoneNumber)
	req(r, "first_name", &c.FirstName)
	c.LastName = opt[string](r, "last_name")
	c.UserID = opt[int64](r, "user_id")
	if r.err != nil {
		return nil, r.err
	}
	return &c, nil
}

func decodeLocation(o object) (*Location, error) {
	var l Location
	r := newReader(o)
	req(r, "longitude", &l.Longitude)
	req(r, "latitude", &l.Latitude)
	if r.err != nil {
		return nil, r.err
	}
	return &l, nil
}

func decodeMessage(o object) (*Message, error) {
	var m Message
	r := newReader(o)
	req(r, "message_id", &m.MessageID)
	m.From = optObj(r, "from", decodeUser)
	req(r, "date", &m.Date)
	if chat := reqObj(r, "chat", decodeChat); chat != nil {
		m.Chat = *chat
	}
	m.ForwardFrom = optObj(r, "forward_from", decodeUser)
	m.ForwardDate = opt[int64](r, "forward_date")
	m.ReplyToMessage = optObj(r, "reply_to_message", decodeMessage)
	m.Text = opt[string](r, "text")
	m.Entities = optArr(r, "entities", decodeMessageEntity)
	m.Audio = optObj(r, "audio", decodeAudio)
	m.Document = optObj(r, "document", decodeDocument)
	m.Photo = optArr(r, "photo", decodePhotoSize)
	m.Sticker = optObj(r, "sticker", decodeSticker)
	m.Video = optObj(r, "video", decodeVideo)
	m.Voice = optObj(r, "voice", decodeVoice)
	m.Caption = opt[string](r, "caption")
	m.Contact = optObj(r, "contact", decodeContact)
	m.Location = optObj(r, "location", decodeLocation)
	m.NewChatMembers = optArr(r, "new_chat_members", decodeUser)
	m.LeftChatMember = optObj(r, "left_chat_member", decodeUser)
	m.NewChatTitle = opt[string](r, "new_chat_title")
	m.NewChatPhoto = optArr(r, "new_chat_photo", decodePhotoSize)
	m.DeleteChatPhoto = opt[bool](r, "delete_chat_photo")
	m.GroupChatCreated = opt[bool](r, "group_chat_created")
	if r.err != nil {
		return nil, r.err
	}
	return &m, nil
}

func decodeUserProfilePhotos(o object) (*UserProfilePhotos, error) {
	var p UserProfilePhotos
	r := newReader(o)
	req(r, "total_count", &p.TotalCount)
	p.Photos = reqArr2(r, "photos", decodePhotoSize)
	if r.err != nil {
		return nil, r.err
	}
	return &p, nil
}

func decodeCallbackQuery(o object) (*CallbackQuery, error) {
	var q CallbackQuery
	r := newReader(o)
	req(r, "id", &q.ID)
	if from := reqObj(r, "from", decodeUser); from != nil {
		q.From = *from
	}
	q.Message = optObj(r, "message", decodeMessage)
	q.InlineMessageID = opt[string](r, "inline_message_id")
	q.ChatInstance = opt[string](r, "chat_instance")
	q.Data = opt[string](r, "data")
	if r.err != nil {
		return nil, r.err
	}
	return &q, nil
}

func decodeUpdate(o object) (*Update, error) {
	var u Update
	r := newReader(o)
	req(r, "update_id", &u.UpdateID)
	u.Message = optObj(r, "message", decodeMessage)
	u.EditedMessage = optObj(r, "edited_message", decodeMessage)
	u.ChannelPost = optObj(r, "channel_post", decodeMessage)
	u.EditedChannelPost = optObj(r, "edited_channel_post", decodeMessage)
	u.CallbackQuery = optObj(r, "callback_query", decodeCallbackQuery)
	if r.err != nil {
		return nil, r.err
	}
	return &u, nil
}

func decodeWebhookInfo(o object) (*WebhookInfo, error) {
	var w WebhookInfo
	r := newReader(o)
	req(r, "url", &w.URL)
	req(r, "has_custom_certificate", &w.HasCustomCertificate)
	req(r, "pending_update_count", &w.PendingUpdateCount)
	w.LastErrorDate = opt[int64](r, "last_error_date")
	w.LastErrorMessage = opt[string](r, "last_error_message")
	w.MaxConnections = opt[int](r, "max_connections")
	if r.err != nil {
		return nil, r.err
	}
	return &w, nil
}

func decodeFile(o object) (*File, error) {
	var f File
	r := newReader(o)
	req(r, "file_id", &f.FileID)
	f.FileSize = opt[int64](r, "file_size")
	f.FilePath = opt[string](r, "file_path")
	if r.err != nil {
		return nil, r.err
	}
	return &f, nil
}

package botapi

import (
	"encoding/json"
)

// ReplyMarkup is one of ForceReply, ReplyKeyboardMarkup, ReplyKeyboardRemove
// or InlineKeyboardMarkup. The set is closed.
type ReplyMarkup interface {
	replyMarkup()
}

// ForceReply asks the client to show a reply interface to the user.
type ForceReply struct {
	Selective bool
}

// ReplyKeyboardMarkup is a custom keyboard made of text buttons.
type ReplyKeyboardMarkup struct {
	Keyboard        [][]string
	ResizeKeyboard  bool
	OneTimeKeyboard bool
	Selective       bool
}

// ReplyKeyboardRemove removes a previously shown custom keyboard.
type ReplyKeyboardRemove struct {
	Selective bool
}

// InlineKeyboardMarkup is a keyboard attached to the message itself.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton
}

// InlineKeyboardButton carries a label and either a URL or callback data.
// When URL is non-empty the button is a URL button, otherwise it is a
// callback button.
type InlineKeyboardButton struct {
	Text         string
	URL          string
	CallbackData string
}

// CallbackButton returns a button that sends data back in a callback query.
func CallbackButton(text, data string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, CallbackData: data}
}

// URLButton returns a button that opens url.
func URLButton(text, url string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, URL: url}
}

func (ForceReply) replyMarkup()           {}
func (ReplyKeyboardMarkup) replyMarkup()  {}
func (ReplyKeyboardRemove) replyMarkup()  {}
func (InlineKeyboardMarkup) replyMarkup() {}

type forceReplyJSON struct {
	ForceReply bool `json:"force_reply"`
	Selective  bool `json:"selective"`
}

type replyKeyboardJSON struct {
	Keyboard        [][]string `json:"keyboard"`
	ResizeKeyboard  bool       `json:"resize_keyboard"`
	OneTimeKeyboard bool       `json:"one_time_keyboard"`
	Selective       bool       `json:"selective"`
}

type removeKeyboardJSON struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
	Selective      bool `json:"selective"`
}

type inlineKeyboardJSON struct {
	InlineKeyboard [][]inlineButtonJSON `json:"inline_keyboard"`
}

type inlineButtonJSON struct {
	Text         string  `json:"text"`
	URL          *string `json:"url,omitempty"`
	CallbackData *string `json:"callback_data,omitempty"`
}

// EncodeReplyMarkup returns the JSON object for markup.
func EncodeReplyMarkup(markup ReplyMarkup) []byte {
	if isNilMarkup(markup) {
		return []byte("null")
	}
	var v any
	switch m := markup.(type) {
	case ForceReply:
		v = forceReplyJSON{ForceReply: true, Selective: m.Selective}
	case *ForceReply:
		return EncodeReplyMarkup(*m)
	case ReplyKeyboardMarkup:
		v = replyKeyboardJSON{
			Keyboard:        labelRows(m.Keyboard),
			ResizeKeyboard:  m.ResizeKeyboard,
			OneTimeKeyboard: m.OneTimeKeyboard,
			Selective:       m.Selective,
		}
	case *ReplyKeyboardMarkup:
		return EncodeReplyMarkup(*m)
	case ReplyKeyboardRemove:
		v = removeKeyboardJSON{RemoveKeyboard: true, Selective: m.Selective}
	case *ReplyKeyboardRemove:
		return EncodeReplyMarkup(*m)
	case InlineKeyboardMarkup:
		v = inlineKeyboardJSON{InlineKeyboard: buttonRows(m.InlineKeyboard)}
	case *InlineKeyboardMarkup:
		return EncodeReplyMarkup(*m)
	default:
		return []byte("null")
	}
	// The wire structs hold only strings, bools and slices of them.
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// isNilMarkup reports whether markup is nil or a nil pointer to a variant.
func isNilMarkup(markup ReplyMarkup) bool {
	switch m := markup.(type) {
	case nil:
		return true
	case *ForceReply:
		return m == nil
	case *ReplyKeyboardMarkup:
		return m == nil
	case *ReplyKeyboardRemove:
		return m == nil
	case *InlineKeyboardMarkup:
		return m == nil
	}
	return false
}

func labelRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string{}, row...)
	}
	return out
}

func buttonRows(rows [][]InlineKeyboardButton) [][]inlineButtonJSON {
	out := make([][]inlineButtonJSON, len(rows))
	for i, row := range rows {
		out[i] = make([]inlineButtonJSON, len(row))
		for j, b := range row {
			btn := inlineButtonJSON{Text: b.Text}
			if b.URL != "" {
				url := b.URL
				btn.URL = &url
			} else {
				data := b.CallbackData
				btn.CallbackData = &data
			}
			out[i][j] = btn
		}
	}
	return out
}

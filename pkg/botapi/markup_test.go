package botapi

import (
	"encoding/json"
	"sort"
	"testing"

	qt "github.com/frankban/quicktest"
)

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestEncodeReplyMarkupKeys(t *testing.T) {
	tests := []struct {
		name   string
		markup ReplyMarkup
		keys   []string
	}{{
		name:   "force reply",
		markup: ForceReply{Selective: true},
		keys:   []string{"force_reply", "selective"},
	}, {
		name:   "custom keyboard",
		markup: ReplyKeyboardMarkup{Keyboard: [][]string{{"yes", "no"}}, OneTimeKeyboard: true},
		keys:   []string{"keyboard", "one_time_keyboard", "resize_keyboard", "selective"},
	}, {
		name:   "remove keyboard",
		markup: &ReplyKeyboardRemove{},
		keys:   []string{"remove_keyboard", "selective"},
	}, {
		name:   "inline keyboard",
		markup: InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{{CallbackButton("ok", "1")}}},
		keys:   []string{"inline_keyboard"},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			var got map[string]any
			c.Assert(json.Unmarshal(EncodeReplyMarkup(tt.markup), &got), qt.IsNil)
			c.Assert(keysOf(got), qt.DeepEquals, tt.keys)
		})
	}
}

func TestEncodeReplyKeyboard(t *testing.T) {
	c := qt.New(t)

	data := EncodeReplyMarkup(ReplyKeyboardMarkup{
		Keyboard:       [][]string{{"1", "2"}, {"3"}},
		ResizeKeyboard: true,
	})
	c.Assert(string(data), qt.JSONEquals, map[string]any{
		"keyboard":          [][]string{{"1", "2"}, {"3"}},
		"resize_keyboard":   true,
		"one_time_keyboard": false,
		"selective":         false,
	})
}

func TestEncodeEmptyKeyboardIsArray(t *testing.T) {
	c := qt.New(t)

	c.Assert(string(EncodeReplyMarkup(ReplyKeyboardMarkup{})), qt.Equals,
		`{"keyboard":[],"resize_keyboard":false,"one_time_keyboard":false,"selective":false}`)
	c.Assert(string(EncodeReplyMarkup(InlineKeyboardMarkup{})), qt.Equals, `{"inline_keyboard":[]}`)
}

func TestEncodeInlineButtons(t *testing.T) {
	c := qt.New(t)

	data := EncodeReplyMarkup(InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{URLButton("site", "https://example.com"), CallbackButton("vote", "up")},
			{{Text: "empty"}},
		},
	})
	var got struct {
		InlineKeyboard [][]map[string]any `json:"inline_keyboard"`
	}
	c.Assert(json.Unmarshal(data, &got), qt.IsNil)
	c.Assert(got.InlineKeyboard, qt.DeepEquals, [][]map[string]any{
		{
			{"text": "site", "url": "https://example.com"},
			{"text": "vote", "callback_data": "up"},
		},
		{
			{"text": "empty", "callback_data": ""},
		},
	})
}

package telegram

import (
	"context"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/juju/errors"
	"go.uber.org/mock/gomock"

	"github.com/dev-dhg/tgbot/pkg/botapi"
	"github.com/dev-dhg/tgbot/pkg/botapi/mocks"
	"github.com/dev-dhg/tgbot/pkg/media"
)

const (
	testBase  = "https://api.example.org"
	okMessage = `{"ok": true, "result": {"message_id": 1, "date": 1, "chat": {"id": 5, "type": "private"}}}`
)

func newTestClient(t *testing.T, parseMode string) (*Client, *mocks.MockTransport) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	api := botapi.NewClient("1:T", botapi.WithBaseURL(testBase), botapi.WithTransport(transport))
	return NewClient(api, media.NewResolver("", nil), parseMode), transport
}

// expect registers one call of method answered with body and returns where
// its fields will be stored.
func expect(transport *mocks.MockTransport, method, body string) *[]botapi.Field {
	var fields []botapi.Field
	transport.EXPECT().Do(gomock.Any(), testBase+"/bot1:T/"+method, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, f []botapi.Field) ([]byte, error) {
			fields = f
			return []byte(body), nil
		})
	return &fields
}

func value(fields []botapi.Field, name string) (string, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func TestSendMessageWithDirectives(t *testing.T) {
	c := qt.New(t)
	client, transport := newTestClient(t, "")

	text := expect(transport, "sendMessage", okMessage)
	photo := expect(transport, "sendPhoto", okMessage)
	sticker := expect(transport, "sendSticker", okMessage)

	err := client.SendMessage(context.Background(), "5", "hello\n#IMAGE#: https://x.test/cat.png\nworld\n  #STICKER#:CAADAg")
	c.Assert(err, qt.IsNil)

	c.Assert(*text, qt.DeepEquals, []botapi.Field{
		{Name: "chat_id", Value: "5"},
		{Name: "text", Value: "hello\nworld"},
	})
	v, _ := value(*photo, "photo")
	c.Assert(v, qt.Equals, "https://x.test/cat.png")
	v, _ = value(*sticker, "sticker")
	c.Assert(v, qt.Equals, "CAADAg")
}

func TestSendMessageMarkdownFallback(t *testing.T) {
	c := qt.New(t)
	client, transport := newTestClient(t, "Markdown")

	first := expect(transport, "sendMessage", `{"ok": false, "error_code": 400, "description": "Bad Request: can't parse entities"}`)
	second := expect(transport, "sendMessage", okMessage)

	c.Assert(client.SendMessage(context.Background(), "5", "*broken"), qt.IsNil)
	mode, ok := value(*first, "parse_mode")
	c.Assert(ok, qt.IsTrue)
	c.Assert(mode, qt.Equals, "Markdown")
	_, ok = value(*second, "parse_mode")
	c.Assert(ok, qt.IsFalse)
}

func TestSendMessageReportsAPIError(t *testing.T) {
	c := qt.New(t)
	client, transport := newTestClient(t, "")
	expect(transport, "sendMessage", `{"ok": false, "description": "Forbidden: bot was blocked by the user"}`)

	err := client.SendMessage(context.Background(), "5", "hi")
	var apiErr *botapi.APIError
	c.Assert(errors.As(err, &apiErr), qt.IsTrue)
	c.Assert(apiErr.Description, qt.Equals, "Forbidden: bot was blocked by the user")
}

func TestSendMessageSplitsLongText(t *testing.T) {
	c := qt.New(t)
	client, transport := newTestClient(t, "")
	first := expect(transport, "sendMessage", okMessage)
	second := expect(transport, "sendMessage", okMessage)

	long := strings.Repeat("é", MaxMessageLength+10)
	c.Assert(client.SendMessage(context.Background(), "5", long), qt.IsNil)
	a, _ := value(*first, "text")
	b, _ := value(*second, "text")
	c.Assert(len([]rune(a)), qt.Equals, MaxMessageLength)
	c.Assert(len([]rune(b)), qt.Equals, 10)
}

func TestInvalidTarget(t *testing.T) {
	c := qt.New(t)
	client, _ := newTestClient(t, "")
	err := client.SendMessage(context.Background(), "@channel", "hi")
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)
	err = client.SendImage(context.Background(), "x", "abc", "")
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)
}

func TestSendMediaMethods(t *testing.T) {
	tests := []struct {
		name   string
		send   func(*Client) error
		method string
		want   map[string]string
	}{{
		name:   "image with caption",
		send:   func(cl *Client) error { return cl.SendImage(context.Background(), "5", "file-1", "look") },
		method: "sendPhoto",
		want:   map[string]string{"photo": "file-1", "caption": "look"},
	}, {
		name:   "audio title",
		send:   func(cl *Client) error { return cl.SendAudio(context.Background(), "5", "file-2", "song") },
		method: "sendAudio",
		want:   map[string]string{"audio": "file-2", "title": "song"},
	}, {
		name:   "video",
		send:   func(cl *Client) error { return cl.SendVideo(context.Background(), "5", "file-3", "") },
		method: "sendVideo",
		want:   map[string]string{"video": "file-3"},
	}, {
		name:   "document",
		send:   func(cl *Client) error { return cl.SendDocument(context.Background(), "5", "file-4", "doc") },
		method: "sendDocument",
		want:   map[string]string{"document": "file-4", "caption": "doc"},
	}, {
		name:   "sticker",
		send:   func(cl *Client) error { return cl.SendSticker(context.Background(), "5", "file-5") },
		method: "sendSticker",
		want:   map[string]string{"sticker": "file-5"},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			client, transport := newTestClient(t, "")
			fields := expect(transport, tt.method, okMessage)
			c.Assert(tt.send(client), qt.IsNil)

			got := make(map[string]string)
			for _, f := range *fields {
				if f.Name != "chat_id" {
					got[f.Name] = f.Value
				}
			}
			c.Assert(got, qt.DeepEquals, tt.want)
		})
	}
}

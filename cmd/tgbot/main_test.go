package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/juju/errors"

	"github.com/dev-dhg/tgbot/pkg/botapi"
	"github.com/dev-dhg/tgbot/pkg/config"
)

// fakeBotAPI answers Bot API calls with canned results and records the
// form of each request.
type fakeBotAPI struct {
	url     string
	mu      sync.Mutex
	results map[string]string
	forms   map[string]map[string]string
}

func newFakeBotAPI(c *qt.C, results map[string]string) *fakeBotAPI {
	f := &fakeBotAPI{results: results, forms: map[string]map[string]string{}}
	srv := httptest.NewServer(f)
	c.Cleanup(srv.Close)
	f.url = srv.URL
	return f
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := map[string]string{}
	for k, v := range r.Form {
		form[k] = v[0]
	}
	f.mu.Lock()
	f.forms[method] = form
	result, ok := f.results[method]
	f.mu.Unlock()
	if !ok {
		w.Write([]byte(`{"ok": false, "error_code": 404, "description": "Not Found: method not found"}`))
		return
	}
	w.Write([]byte(`{"ok": true, "result": ` + result + `}`))
}

func (f *fakeBotAPI) form(method string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[method]
}

func writeConfig(c *qt.C, baseURL string) string {
	path := filepath.Join(c.TempDir(), "config.yaml")
	content := "token: \"1:T\"\nbaseUrl: " + baseURL + "\njobs:\n  - name: existing\n    schedule: \"@daily\"\n    text: hi\n    targets: [{id: \"5\"}]\n"
	c.Assert(os.WriteFile(path, []byte(content), 0600), qt.IsNil)
	return path
}

func run(c *qt.C, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMe(t *testing.T) {
	c := qt.New(t)
	api := newFakeBotAPI(c, map[string]string{
		"getMe": `{"id": 1, "is_bot": true, "first_name": "Bot", "username": "tgbot"}`,
	})
	out, err := run(c, "me", "--config", writeConfig(c, api.url))
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Bot @tgbot id=1 bot\n")
}

func TestSendText(t *testing.T) {
	c := qt.New(t)
	api := newFakeBotAPI(c, map[string]string{
		"sendMessage": `{"message_id": 9, "date": 1, "chat": {"id": 5, "type": "private"}}`,
	})
	out, err := run(c, "send", "text", "5", "hello", "--reply-to", "3", "--keyboard", "a,b;c", "--config", writeConfig(c, api.url))
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Sent message 9 to chat 5\n")

	form := api.form("sendMessage")
	c.Assert(form["chat_id"], qt.Equals, "5")
	c.Assert(form["text"], qt.Equals, "hello")
	c.Assert(form["reply_to_message_id"], qt.Equals, "3")
	c.Assert(form["reply_markup"], qt.Contains, `"keyboard":[["a","b"],["c"]]`)
	_, hasParseMode := form["parse_mode"]
	c.Assert(hasParseMode, qt.IsFalse)
}

func TestSendPhotoUploadsLocalFile(t *testing.T) {
	c := qt.New(t)
	api := newFakeBotAPI(c, map[string]string{
		"sendPhoto": `{"message_id": 10, "date": 1, "chat": {"id": 5, "type": "private"}}`,
	})
	cfgPath := writeConfig(c, api.url)
	photo := filepath.Join(filepath.Dir(cfgPath), "cat.png")
	c.Assert(os.WriteFile(photo, []byte("\x89PNG\r\n\x1a\n"), 0600), qt.IsNil)

	out, err := run(c, "send", "photo", "5", photo, "--caption", "a cat", "--config", cfgPath)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Sent message 10 to chat 5\n")
	form := api.form("sendPhoto")
	c.Assert(form["caption"], qt.Equals, "a cat")
	c.Assert(form["chat_id"], qt.Equals, "5")
}

func TestAPIErrorIsReported(t *testing.T) {
	c := qt.New(t)
	api := newFakeBotAPI(c, map[string]string{})
	_, err := run(c, "webhook", "delete", "--config", writeConfig(c, api.url))
	var apiErr *botapi.APIError
	c.Assert(errors.As(err, &apiErr), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, "Not Found: method not found")
}

func TestJobAddAndRemove(t *testing.T) {
	c := qt.New(t)
	cfgPath := writeConfig(c, "http://unused.invalid")

	out, err := run(c, "job", "add", "--name", "evening", "--schedule", "0 20 * * *", "--text", "good night", "--target", "5", "--target", "6", "--config", cfgPath)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Added job evening\n")

	data, err := os.ReadFile(cfgPath)
	c.Assert(err, qt.IsNil)
	cfg, err := config.Parse(cfgPath, data)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Jobs, qt.HasLen, 2)
	c.Assert(cfg.Jobs[1], qt.DeepEquals, config.Job{
		Name: "evening", Schedule: "0 20 * * *", Text: "good night",
		Targets: []config.Target{{Provider: "telegram", ID: "5"}, {Provider: "telegram", ID: "6"}},
	})

	out, err = run(c, "job", "remove", "existing", "--config", cfgPath)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Removed job existing\n")

	_, err = run(c, "job", "remove", "existing", "--config", cfgPath)
	c.Assert(errors.Is(err, errors.NotFound), qt.IsTrue)
}

func TestNewJob(t *testing.T) {
	c := qt.New(t)
	_, err := newJob("", "@daily", "x", "telegram", []string{"1"})
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)
	_, err = newJob("a", "@daily", "x", "telegram", nil)
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)
	_, err = newJob("a", "every tuesday", "x", "telegram", []string{"1"})
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)
	job, err := newJob("a", "@every 1h", "x", "telegram", []string{"1"})
	c.Assert(err, qt.IsNil)
	c.Assert(job.Targets, qt.DeepEquals, []config.Target{{Provider: "telegram", ID: "1"}})
}

func TestParseRows(t *testing.T) {
	c := qt.New(t)
	c.Assert(parseRows("a, b ;c;;"), qt.DeepEquals, [][]string{{"a", "b"}, {"c"}})
	c.Assert(parseRows(""), qt.IsNil)
}

func TestParseInlineKeyboard(t *testing.T) {
	c := qt.New(t)
	markup, err := parseInlineKeyboard("Yes=y,No;Docs=https://core.telegram.org")
	c.Assert(err, qt.IsNil)
	c.Assert(markup, qt.DeepEquals, botapi.InlineKeyboardMarkup{InlineKeyboard: [][]botapi.InlineKeyboardButton{
		{botapi.CallbackButton("Yes", "y"), botapi.CallbackButton("No", "No")},
		{botapi.URLButton("Docs", "https://core.telegram.org")},
	}})
	_, err = parseInlineKeyboard(" ; ")
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)
}

func TestParseAction(t *testing.T) {
	c := qt.New(t)
	a, err := parseAction("upload_photo")
	c.Assert(err, qt.IsNil)
	c.Assert(a, qt.Equals, botapi.ActionUploadPhoto)
	_, err = parseAction("dancing")
	c.Assert(err, qt.ErrorMatches, `chat action "dancing" \(want one of typing, .*\) not valid`)
}

func TestSummarize(t *testing.T) {
	text := "hi"
	data := "btn"
	tests := []struct {
		name   string
		update botapi.Update
		want   string
	}{
		{"text", botapi.Update{Message: &botapi.Message{Chat: botapi.Chat{ID: 5}, From: &botapi.User{FirstName: "Ann"}, Text: &text}}, `message in chat 5 from Ann: "hi"`},
		{"location", botapi.Update{EditedMessage: &botapi.Message{Chat: botapi.Chat{ID: 5}, Location: &botapi.Location{Latitude: 1.5, Longitude: 2}}}, "edited in chat 5: location 1.5,2"},
		{"photo", botapi.Update{ChannelPost: &botapi.Message{Chat: botapi.Chat{ID: -1}, Photo: []botapi.PhotoSize{{}, {}}}}, "channel post in chat -1: photo (2 sizes)"},
		{"callback", botapi.Update{CallbackQuery: &botapi.CallbackQuery{From: botapi.User{FirstName: "Bo"}, Data: &data}}, `callback from Bo: "btn"`},
		{"empty", botapi.Update{}, "unsupported update"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qt.Assert(t, summarize(tt.update), qt.Equals, tt.want)
		})
	}
}

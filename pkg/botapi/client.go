package botapi

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("tgbot.botapi")

// DefaultBaseURL is the public Bot API server.
const DefaultBaseURL = "https://api.telegram.org"

// DefaultTimeout is used by the HTTPTransport NewClient creates when no
// transport is given.
const DefaultTimeout = 30 * time.Second

// Client calls Bot API methods for one bot token. It holds no mutable state
// and may be used from several goroutines when its Transport allows it.
type Client struct {
	token     string
	baseURL   string
	transport Transport
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another Bot API server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// NewClient returns a client for token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(DefaultTimeout)
	}
	return c
}

func (c *Client) endpoint(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

// FileURL returns the download URL of a file obtained from GetFile. The URL
// embeds the bot token and must not be logged.
func (c *Client) FileURL(f *File) string {
	if f == nil || f.FilePath == nil {
		return ""
	}
	return c.baseURL + "/file/bot" + c.token + "/" + *f.FilePath
}

// Response is the envelope of a call. It is empty when the body could not be
// read as an envelope at all.
type Response struct {
	doc object
}

// IsEmpty reports whether the response carries no envelope.
func (r Response) IsEmpty() bool {
	return len(r.doc) == 0
}

// Raw returns the undecoded value at key.
func (r Response) Raw(key string) (json.RawMessage, bool) {
	raw, ok := r.doc[key]
	return raw, ok
}

// Call invokes method with params. See call.
func (c *Client) Call(ctx context.Context, method string, params *Params) (Response, error) {
	return c.call(ctx, method, params)
}

// call sends one request and checks the envelope.
//
// A body that is not a JSON object with a boolean "ok" yields an empty
// Response and no error; decoding "result" from it then fails with a
// DecodeError for key "result".
func (c *Client) call(ctx context.Context, method string, params *Params) (Response, error) {
	if params == nil {
		params = NewParams()
	}
	fields := params.Fields()
	if logger.IsDebugEnabled() {
		logger.Debugf("calling %s with fields %v", method, fieldNames(fields))
	}

	body, err := c.transport.Do(ctx, c.endpoint(method), fields)
	if err != nil {
		return Response{}, errors.Trace(redactToken(err, c.token))
	}

	doc, ok, err := parseEnvelope(body)
	if !ok {
		logger.Warningf("%s: response is not a valid envelope, treating it as empty", method)
		return Response{}, nil
	}
	if err != nil {
		logger.Debugf("%s failed: %v", method, err)
		return Response{}, err
	}
	return Response{doc: doc}, nil
}

// parseEnvelope reports ok=false when body is not an envelope, and an
// *APIError when the envelope says the call failed.
func parseEnvelope(body []byte) (object, bool, error) {
	doc, err := parseObject(body)
	if err != nil {
		return nil, false, nil
	}
	raw, found := doc["ok"]
	if !found {
		return nil, false, nil
	}
	var success bool
	if err := json.Unmarshal(raw, &success); err != nil {
		return nil, false, nil
	}
	if success {
		return doc, true, nil
	}
	return nil, true, apiError(doc)
}

// apiError reads what it can of a failed envelope; fields of the wrong type
// are left at their zero value.
func apiError(doc object) *APIError {
	e := &APIError{}
	if raw, ok := doc["description"]; ok {
		_ = json.Unmarshal(raw, &e.Description)
	}
	if raw, ok := doc["error_code"]; ok {
		_ = json.Unmarshal(raw, &e.ErrorCode)
	}
	if raw, ok := doc["parameters"]; ok {
		var p struct {
			RetryAfter      int   `json:"retry_after"`
			MigrateToChatID int64 `json:"migrate_to_chat_id"`
		}
		if json.Unmarshal(raw, &p) == nil {
			e.RetryAfter = p.RetryAfter
			e.MigrateToChatID = p.MigrateToChatID
		}
	}
	return e
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func decodeResult[T any](resp Response, dec func(object) (*T, error)) (*T, error) {
	r := newReader(resp.doc)
	v := reqObj(r, "result", dec)
	if r.err != nil {
		return nil, r.err
	}
	return v, nil
}

func decodeResultArray[T any](resp Response, dec func(object) (*T, error)) ([]T, error) {
	raw, ok := resp.Raw("result")
	if !ok || isNull(raw) {
		return nil, missingKey("result")
	}
	return decodeArray("result", raw, dec)
}

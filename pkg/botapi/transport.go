package botapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/transport_mock.go github.com/dev-dhg/tgbot/pkg/botapi Transport

// Transport sends the fields of one call to url and returns the raw response
// body. Implementations must be safe for concurrent use if the Client using
// them is shared.
type Transport interface {
	Do(ctx context.Context, url string, fields []Field) ([]byte, error)
}

// HTTPTransport posts fields as an urlencoded form, or as multipart/form-data
// when any field carries binary content.
type HTTPTransport struct {
	HTTPClient *http.Client
}

// NewHTTPTransport returns a transport whose requests time out after timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (t *HTTPTransport) Do(ctx context.Context, endpoint string, fields []Field) ([]byte, error) {
	body, contentType, err := encodeBody(fields)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %s", redactURL(err.Error()))
	}
	req.Header.Set("Content-Type", contentType)

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if uerr, ok := err.(*url.Error); ok {
			uerr.URL = redactURL(uerr.URL)
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode/100 != 2 && len(bytes.TrimSpace(data)) == 0 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Method: methodOf(endpoint)}
	}
	return data, nil
}

func encodeBody(fields []Field) (io.Reader, string, error) {
	hasFile := false
	for _, f := range fields {
		if f.IsFile() {
			hasFile = true
			break
		}
	}

	if !hasFile {
		form := url.Values{}
		for _, f := range fields {
			form.Add(f.Name, f.Value)
		}
		return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range fields {
		if !f.IsFile() {
			if err := writer.WriteField(f.Name, f.Value); err != nil {
				return nil, "", err
			}
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.Name), escapeQuotes(f.File.Name)))
		h.Set("Content-Type", f.File.MediaType)
		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.File.Data); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

const redacted = "<redacted>"

// redactURL hides the token segment of a ".../bot<token>/<method>" string,
// which is the last segment starting with "bot".
func redactURL(s string) string {
	i := strings.LastIndex(s, "/bot")
	if i < 0 {
		return s
	}
	start := i + len("/bot")
	end := strings.IndexByte(s[start:], '/')
	if end < 0 {
		return s[:start] + redacted
	}
	return s[:start] + redacted + s[start+end:]
}

func methodOf(endpoint string) string {
	if i := strings.LastIndexByte(endpoint, '/'); i >= 0 {
		return endpoint[i+1:]
	}
	return endpoint
}

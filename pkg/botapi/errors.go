package botapi

import (
	"fmt"
	"strings"
)

// APIError is returned when the Bot API answers with "ok": false.
// Error() is exactly the description sent by the API, possibly empty.
type APIError struct {
	Description string
	ErrorCode   int

	// RetryAfter and MigrateToChatID mirror the optional
	// "parameters" object; zero when absent.
	RetryAfter      int
	MigrateToChatID int64
}

func (e *APIError) Error() string {
	return e.Description
}

// DecodeError reports a response payload that does not have the shape the
// caller expected. Key is the dotted path of the offending key.
type DecodeError struct {
	Key    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %q: %s", e.Key, e.Reason)
}

// TransportError is returned by HTTPTransport when the server answers with a
// non-2xx status and an empty body.
type TransportError struct {
	StatusCode int
	Method     string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: unexpected HTTP status %d with empty body", e.Method, e.StatusCode)
}

// redactedError carries the text of err with the bot token replaced.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string {
	return e.msg
}

func (e *redactedError) Unwrap() error {
	return e.err
}

// redactToken hides every occurrence of token in the text of err.
func redactToken(err error, token string) error {
	if err == nil || token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, redacted), err: err}
}

func missingKey(key string) *DecodeError {
	return &DecodeError{Key: key, Reason: "required key missing"}
}

func wrongType(key, want string) *DecodeError {
	return &DecodeError{Key: key, Reason: "expected " + want}
}

// within prefixes the key of a nested decode error with parent.
func within(parent string, err error) error {
	if de, ok := err.(*DecodeError); ok {
		return &DecodeError{Key: joinKey(parent, de.Key), Reason: de.Reason}
	}
	return err
}

func joinKey(parent, key string) string {
	switch {
	case parent == "":
		return key
	case key == "" || strings.HasPrefix(key, "["):
		return parent + key
	default:
		return parent + "." + key
	}
}

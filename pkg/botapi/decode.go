package botapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// object is one parsed JSON object with its values left undecoded.
type object map[string]json.RawMessage

func parseObject(raw json.RawMessage) (object, error) {
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, wrongType("", "object")
	}
	return obj, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// reader reads keys from an object and keeps the first error it meets.
// Every read after a failure is a no-op.
type reader struct {
	obj object
	err error
}

func newReader(obj object) *reader {
	return &reader{obj: obj}
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) lookup(key string) (json.RawMessage, bool) {
	if r.err != nil {
		return nil, false
	}
	raw, ok := r.obj[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

// req decodes the scalar at key into dst; a missing key is an error.
func req[T any](r *reader, key string, dst *T) {
	raw, ok := r.lookup(key)
	if !ok {
		if r.err == nil {
			r.fail(missingKey(key))
		}
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.fail(wrongType(key, fmt.Sprintf("%T", *dst)))
	}
}

// opt decodes the scalar at key, returning nil when the key is absent.
func opt[T any](r *reader, key string) *T {
	raw, ok := r.lookup(key)
	if !ok {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		r.fail(wrongType(key, fmt.Sprintf("%T", v)))
		return nil
	}
	return &v
}

func reqObj[T any](r *reader, key string, dec func(object) (*T, error)) *T {
	raw, ok := r.lookup(key)
	if !ok {
		if r.err == nil {
			r.fail(missingKey(key))
		}
		return nil
	}
	v, err := decodeRaw(key, raw, dec)
	if err != nil {
		r.fail(err)
	}
	return v
}

func optObj[T any](r *reader, key string, dec func(object) (*T, error)) *T {
	raw, ok := r.lookup(key)
	if !ok {
		return nil
	}
	v, err := decodeRaw(key, raw, dec)
	if err != nil {
		r.fail(err)
	}
	return v
}

func optArr[T any](r *reader, key string, dec func(object) (*T, error)) []T {
	raw, ok := r.lookup(key)
	if !ok {
		return nil
	}
	v, err := decodeArray(key, raw, dec)
	if err != nil {
		r.fail(err)
	}
	return v
}

func reqArr2[T any](r *reader, key string, dec func(object) (*T, error)) [][]T {
	raw, ok := r.lookup(key)
	if !ok {
		if r.err == nil {
			r.fail(missingKey(key))
		}
		return nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil || rows == nil {
		r.fail(wrongType(key, "array"))
		return nil
	}
	out := make([][]T, 0, len(rows))
	for i, row := range rows {
		items, err := decodeArray(fmt.Sprintf("[%d]", i), row, dec)
		if err != nil {
			r.fail(within(key, err))
			return nil
		}
		out = append(out, items)
	}
	return out
}

func decodeRaw[T any](key string, raw json.RawMessage, dec func(object) (*T, error)) (*T, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return nil, within(key, err)
	}
	v, err := dec(obj)
	if err != nil {
		return nil, within(key, err)
	}
	return v, nil
}

// decodeArray decodes every element of the JSON array raw with dec,
// keeping order and length.
func decodeArray[T any](key string, raw json.RawMessage, dec func(object) (*T, error)) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, wrongType(key, "array")
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := decodeRaw(fmt.Sprintf("[%d]", i), item, dec)
		if err != nil {
			return nil, within(key, err)
		}
		out = append(out, *v)
	}
	return out, nil
}

// DecodeUpdate decodes a single Update object, as delivered to a webhook.
func DecodeUpdate(data []byte) (*Update, error) {
	return decodeRaw("", json.RawMessage(data), decodeUpdate)
}

// DecodeMessage decodes a single Message object.
func DecodeMessage(data []byte) (*Message, error) {
	return decodeRaw("", json.RawMessage(data), decodeMessage)
}

package botapi

import (
	"strconv"
)

// Field is a single request parameter. It is a plain scalar when File is nil
// and a binary attachment otherwise.
type Field struct {
	Name  string
	Value string
	File  *FilePayload
}

// FilePayload is the binary content of a Field.
type FilePayload struct {
	Name      string
	MediaType string
	Data      []byte
}

// IsFile reports whether the field carries binary content.
func (f Field) IsFile() bool {
	return f.File != nil
}

// Params accumulates the fields of one request in insertion order.
type Params struct {
	fields []Field
}

// NewParams returns an empty field set.
func NewParams() *Params {
	return &Params{}
}

// Fields returns the fields in the order they were added.
func (p *Params) Fields() []Field {
	out := make([]Field, len(p.fields))
	copy(out, p.fields)
	return out
}

// Len returns the number of fields.
func (p *Params) Len() int {
	return len(p.fields)
}

func (p *Params) AddString(name, value string) *Params {
	p.fields = append(p.fields, Field{Name: name, Value: value})
	return p
}

func (p *Params) AddInt(name string, value int) *Params {
	return p.AddString(name, strconv.Itoa(value))
}

func (p *Params) AddInt64(name string, value int64) *Params {
	return p.AddString(name, strconv.FormatInt(value, 10))
}

func (p *Params) AddFloat(name string, value float64) *Params {
	return p.AddString(name, strconv.FormatFloat(value, 'f', -1, 64))
}

func (p *Params) AddBool(name string, value bool) *Params {
	return p.AddString(name, strconv.FormatBool(value))
}

// AddClampedInt adds value after clamping it into [lo, hi].
func (p *Params) AddClampedInt(name string, value, lo, hi int) *Params {
	return p.AddInt(name, clamp(value, lo, hi))
}

func (p *Params) AddOptionalString(name string, value Optional[string]) *Params {
	if v, ok := value.Get(); ok {
		p.AddString(name, v)
	}
	return p
}

func (p *Params) AddOptionalInt(name string, value Optional[int]) *Params {
	if v, ok := value.Get(); ok {
		p.AddInt(name, v)
	}
	return p
}

func (p *Params) AddOptionalInt64(name string, value Optional[int64]) *Params {
	if v, ok := value.Get(); ok {
		p.AddInt64(name, v)
	}
	return p
}

func (p *Params) AddOptionalBool(name string, value Optional[bool]) *Params {
	if v, ok := value.Get(); ok {
		p.AddBool(name, v)
	}
	return p
}

// AddMarkup adds the JSON encoding of markup. A nil markup, or a nil pointer
// to a variant, is skipped.
func (p *Params) AddMarkup(name string, markup ReplyMarkup) *Params {
	if isNilMarkup(markup) {
		return p
	}
	return p.AddString(name, string(EncodeReplyMarkup(markup)))
}

// AddFile adds an attachment under name: a binary field for FileBytes, a
// scalar field for FileRef.
func (p *Params) AddFile(name string, file InputFile) *Params {
	switch f := file.(type) {
	case FileBytes:
		fileName := f.Name
		if fileName == "" {
			fileName = name
		}
		mediaType := f.MediaType
		if mediaType == "" {
			mediaType = defaultMediaType
		}
		p.fields = append(p.fields, Field{
			Name: name,
			File: &FilePayload{Name: fileName, MediaType: mediaType, Data: f.Data},
		})
	case FileRef:
		p.AddString(name, string(f))
	}
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

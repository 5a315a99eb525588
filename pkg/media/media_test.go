package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	qt "github.com/frankban/quicktest"
	"github.com/juju/errors"

	"github.com/dev-dhg/tgbot/pkg/botapi"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

type fakeS3 struct {
	bucket, key string
	body        []byte
	contentType *string
	err         error
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = aws.StringValue(in.Bucket), aws.StringValue(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(f.body)),
		ContentType: f.contentType,
	}, nil
}

func TestResolveReferences(t *testing.T) {
	r := NewResolver("", nil)
	tests := []struct {
		name string
		ref  string
		want botapi.InputFile
	}{
		{"file id", "AgACAgQAAxkBAAI", botapi.FileRef("AgACAgQAAxkBAAI")},
		{"url", "https://example.com/cat.png", botapi.FileRef("https://example.com/cat.png")},
		{"trimmed", "  abc  ", botapi.FileRef("abc")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			got, err := r.Resolve(context.Background(), tt.ref)
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, tt.want)
		})
	}
}

func TestResolveEmpty(t *testing.T) {
	c := qt.New(t)
	_, err := NewResolver("", nil).Resolve(context.Background(), " ")
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)
}

func TestResolveLocalFile(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "cat.png"), pngHeader, 0600), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(dir, "blob"), pngHeader, 0600), qt.IsNil)

	r := NewResolver(dir, nil)
	got, err := r.Resolve(context.Background(), "cat.png")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, botapi.FileBytes{Name: "cat.png", MediaType: "image/png", Data: pngHeader})

	// No extension: sniffed from the content.
	got, err = r.Resolve(context.Background(), filepath.Join(dir, "blob"))
	c.Assert(err, qt.IsNil)
	c.Assert(got.(botapi.FileBytes).MediaType, qt.Equals, "image/png")

	// Directories are not uploads.
	got, err = r.Resolve(context.Background(), dir)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, botapi.FileRef(dir))
}

func TestResolveDataURI(t *testing.T) {
	c := qt.New(t)
	r := NewResolver("", nil)
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)

	got, err := r.Resolve(context.Background(), ref)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, botapi.FileBytes{Name: "upload.png", MediaType: "image/png", Data: pngHeader})

	got, err = r.Resolve(context.Background(), "data:;base64,"+base64.StdEncoding.EncodeToString(pngHeader))
	c.Assert(err, qt.IsNil)
	c.Assert(got.(botapi.FileBytes).MediaType, qt.Equals, "image/png")

	_, err = r.Resolve(context.Background(), "data:text/plain,hello")
	c.Assert(errors.Is(err, errors.NotSupported), qt.IsTrue)

	_, err = r.Resolve(context.Background(), "data:image/png;base64")
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)

	_, err = r.Resolve(context.Background(), "data:image/png;base64,!!!")
	c.Assert(err, qt.ErrorMatches, "decoding data URI: .*")
}

func TestResolveS3(t *testing.T) {
	c := qt.New(t)
	fake := &fakeS3{body: []byte("ID3audio"), contentType: aws.String("audio/mpeg")}
	r := NewResolver("", fake)

	got, err := r.Resolve(context.Background(), "s3://media/songs/a.mp3")
	c.Assert(err, qt.IsNil)
	c.Assert(fake.bucket, qt.Equals, "media")
	c.Assert(fake.key, qt.Equals, "songs/a.mp3")
	c.Assert(got, qt.DeepEquals, botapi.FileBytes{Name: "a.mp3", MediaType: "audio/mpeg", Data: []byte("ID3audio")})

	// Missing content type falls back to the key extension.
	fake.contentType = nil
	got, err = r.Resolve(context.Background(), "s3://media/pic.png")
	c.Assert(err, qt.IsNil)
	c.Assert(got.(botapi.FileBytes).MediaType, qt.Equals, "image/png")
}

func TestResolveS3Errors(t *testing.T) {
	c := qt.New(t)
	_, err := NewResolver("", nil).Resolve(context.Background(), "s3://media/a.mp3")
	c.Assert(errors.Is(err, errors.NotSupported), qt.IsTrue)

	r := NewResolver("", &fakeS3{err: errors.New("access denied")})
	_, err = r.Resolve(context.Background(), "s3://media")
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)

	_, err = r.Resolve(context.Background(), "s3://media/a.mp3")
	c.Assert(err, qt.ErrorMatches, "fetching s3://media/a.mp3: access denied")
}

func TestDetectMediaType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"a.jpg", nil, "image/jpeg"},
		{"a.html", nil, "text/html"},
		{"noext", pngHeader, "image/png"},
		{"noext", []byte("plain words"), "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qt.Assert(t, DetectMediaType(tt.name, tt.data), qt.Equals, tt.want)
		})
	}
}

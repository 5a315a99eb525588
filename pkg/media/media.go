// Package media turns the file references found in config, CLI arguments
// and message directives into botapi.InputFile values.
package media

import (
	"context"
	"encoding/base64"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/dev-dhg/tgbot/pkg/botapi"
	"github.com/dev-dhg/tgbot/pkg/config"
)

var logger = loggo.GetLogger("tgbot.media")

// Resolver maps a reference to an InputFile:
//
//	data:<type>;base64,<payload>  inline bytes
//	s3://bucket/key               object fetched from S3
//	http(s)://...                 URL, fetched by Telegram
//	existing local path           file contents
//	anything else                 file_id
type Resolver struct {
	baseDir string
	s3      ObjectGetter
}

// NewResolver returns a Resolver reading relative paths from baseDir.
// s3 may be nil, in which case s3:// references are rejected.
func NewResolver(baseDir string, s3 ObjectGetter) *Resolver {
	return &Resolver{baseDir: baseDir, s3: s3}
}

// Resolve converts ref into an InputFile.
func (r *Resolver) Resolve(ctx context.Context, ref string) (botapi.InputFile, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, errors.NotValidf("empty file reference")
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "s3://"):
		return r.fetchS3(ctx, ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return botapi.FileRef(ref), nil
	}

	local := ref
	if r.baseDir != "" {
		local = config.ResolvePath(r.baseDir, ref)
	}
	if IsLocalFile(local) {
		return readLocal(local)
	}
	if local != ref && IsLocalFile(ref) {
		return readLocal(ref)
	}
	return botapi.FileRef(ref), nil
}

// IsLocalFile reports whether path names an existing regular file.
func IsLocalFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func readLocal(path string) (botapi.InputFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading %s", path)
	}
	logger.Debugf("uploading local file %s (%d bytes)", path, len(data))
	return botapi.FileBytes{
		Name:      filepath.Base(path),
		MediaType: DetectMediaType(path, data),
		Data:      data,
	}, nil
}

// decodeDataURI accepts "data:<media type>;base64,<payload>". The media
// type may be omitted; a missing ";base64" marker is rejected.
func decodeDataURI(ref string) (botapi.InputFile, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.NotValidf("data URI without payload")
	}
	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, errors.NotSupportedf("data URI without base64 encoding")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Annotate(err, "decoding data URI")
	}
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}
	return botapi.FileBytes{
		Name:      "upload" + extensionFor(mediaType),
		MediaType: mediaType,
		Data:      data,
	}, nil
}

func (r *Resolver) fetchS3(ctx context.Context, ref string) (botapi.InputFile, error) {
	if r.s3 == nil {
		return nil, errors.NotSupportedf("s3 reference %q without s3 configuration", ref)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return nil, errors.NotValidf("s3 reference %q", ref)
	}
	data, contentType, err := getObject(ctx, r.s3, bucket, key)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if contentType == "" || contentType == "binary/octet-stream" {
		contentType = DetectMediaType(key, data)
	}
	logger.Debugf("uploading s3 object %s/%s (%d bytes)", bucket, key, len(data))
	return botapi.FileBytes{
		Name:      path.Base(key),
		MediaType: contentType,
		Data:      data,
	}, nil
}

// DetectMediaType guesses the media type from the file extension and falls
// back to content sniffing.
func DetectMediaType(name string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	t := http.DetectContentType(data)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

func extensionFor(mediaType string) string {
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

func readAll(body io.ReadCloser) ([]byte, error) {
	defer body.Close()
	return io.ReadAll(body)
}

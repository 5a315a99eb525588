package botapi

// InputFile is something to attach to a send* call. It is either uploaded
// inline (FileBytes) or referenced by a value the API resolves itself
// (FileRef), never both.
type InputFile interface {
	inputFile()
}

// FileBytes is a file uploaded as a multipart part.
type FileBytes struct {
	// Name is the file name reported in the multipart header. When empty
	// the parameter name is used.
	Name      string
	MediaType string
	Data      []byte
}

// FileRef is a file_id already known to Telegram or an HTTP URL Telegram
// should fetch.
type FileRef string

func (FileBytes) inputFile() {}
func (FileRef) inputFile()   {}

const defaultMediaType = "application/octet-stream"

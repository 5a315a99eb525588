package telegram

import "strings"

// Kind names the attachment type of a media directive.
type Kind string

const (
	KindImage    Kind = "IMAGE"
	KindAudio    Kind = "AUDIO"
	KindVideo    Kind = "VIDEO"
	KindDocument Kind = "DOC"
	KindSticker  Kind = "STICKER"
)

// MediaItem is one attachment requested by a directive line.
type MediaItem struct {
	Kind    Kind
	Ref     string
	Caption string
}

var directives = []struct {
	prefix string
	kind   Kind
}{
	{"#STICKER#:", KindSticker},
	{"#IMAGE#:", KindImage},
	{"#AUDIO#:", KindAudio},
	{"#VIDEO#:", KindVideo},
	{"#DOC#:", KindDocument},
	// Raw base64 images; the payload is wrapped into a data URI.
	{"#BASE64_IMAGE#:", KindImage},
}

// parseMedia removes directive lines from text and returns them as items,
// in order of appearance.
func parseMedia(text string) (string, []MediaItem) {
	var (
		textLines []string
		items     []MediaItem
	)
	for _, line := range strings.Split(text, "\n") {
		item, ok := parseDirective(strings.TrimSpace(line))
		if ok {
			items = append(items, item)
			continue
		}
		textLines = append(textLines, line)
	}
	return strings.TrimSpace(strings.Join(textLines, "\n")), items
}

func parseDirective(line string) (MediaItem, bool) {
	for _, d := range directives {
		ref, ok := strings.CutPrefix(line, d.prefix)
		if !ok {
			continue
		}
		ref = strings.TrimSpace(ref)
		if d.prefix == "#BASE64_IMAGE#:" && !strings.HasPrefix(ref, "data:") {
			ref = "data:;base64," + ref
		}
		return MediaItem{Kind: d.kind, Ref: ref}, true
	}
	return MediaItem{}, false
}

// splitText cuts text into chunks of at most limit runes, preferring to
// break after a newline in the second half of a chunk.
func splitText(text string, limit int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i >= limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(chunks, string(runes))
}

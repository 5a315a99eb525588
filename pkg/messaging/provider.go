package messaging

import "context"

// Provider defines the interface that all messaging platforms must implement.
// Target ids are strings so jobs and HTTP callers stay platform neutral.
type Provider interface {
	// Name returns the unique name of the provider (e.g., "telegram").
	Name() string

	// SendMessage sends a text message to the specified target.
	// Media directive lines (e.g., #IMAGE#:<ref>) are sent as attachments.
	SendMessage(ctx context.Context, targetID string, message string) error

	// SendImage sends an image to the target. ref can be a URL, a local
	// path, a data URI, an s3:// reference or a file_id.
	SendImage(ctx context.Context, targetID string, ref string, caption string) error

	// SendAudio sends an audio file to the target.
	SendAudio(ctx context.Context, targetID string, ref string, caption string) error

	// SendVideo sends a video file to the target.
	SendVideo(ctx context.Context, targetID string, ref string, caption string) error

	// SendDocument sends a general document to the target.
	SendDocument(ctx context.Context, targetID string, ref string, caption string) error
}

// Registry maps provider names to providers.
type Registry map[string]Provider

// NewRegistry indexes providers by Name.
func NewRegistry(providers ...Provider) Registry {
	r := make(Registry, len(providers))
	for _, p := range providers {
		r[p.Name()] = p
	}
	return r
}

// Get returns the provider called name. An empty name selects the only
// registered provider when there is exactly one.
func (r Registry) Get(name string) (Provider, bool) {
	if name == "" && len(r) == 1 {
		for _, p := range r {
			return p, true
		}
	}
	p, ok := r[name]
	return p, ok
}

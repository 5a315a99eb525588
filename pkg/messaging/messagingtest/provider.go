// Package messagingtest provides a recording messaging.Provider for tests.
package messagingtest

import (
	"context"
	"sync"
)

// Sent is one delivery recorded by Provider.
type Sent struct {
	Kind     string // "text", "image", "audio", "video" or "document"
	TargetID string
	Body     string // message text or media reference
	Caption  string
}

// Provider records every call.
type Provider struct {
	ProviderName string

	mu   sync.Mutex
	err  error
	sent []Sent
}

func New(name string) *Provider {
	return &Provider{ProviderName: name}
}

// Sent returns a copy of the recorded deliveries.
func (p *Provider) Sent() []Sent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Sent(nil), p.sent...)
}

// SetErr makes every following send record the call and fail with err.
func (p *Provider) SetErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *Provider) record(s Sent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, s)
	return p.err
}

func (p *Provider) Name() string { return p.ProviderName }

func (p *Provider) SendMessage(_ context.Context, targetID, message string) error {
	return p.record(Sent{Kind: "text", TargetID: targetID, Body: message})
}

func (p *Provider) SendImage(_ context.Context, targetID, ref, caption string) error {
	return p.record(Sent{Kind: "image", TargetID: targetID, Body: ref, Caption: caption})
}

func (p *Provider) SendAudio(_ context.Context, targetID, ref, caption string) error {
	return p.record(Sent{Kind: "audio", TargetID: targetID, Body: ref, Caption: caption})
}

func (p *Provider) SendVideo(_ context.Context, targetID, ref, caption string) error {
	return p.record(Sent{Kind: "video", TargetID: targetID, Body: ref, Caption: caption})
}

func (p *Provider) SendDocument(_ context.Context, targetID, ref, caption string) error {
	return p.record(Sent{Kind: "document", TargetID: targetID, Body: ref, Caption: caption})
}

package bridge

import "context"

// NoopBridge is the single-instance bridge: events go nowhere.
type NoopBridge struct{}

var _ Bridge = (*NoopBridge)(nil)

// NewNoopBridge creates a bridge that drops everything
func NewNoopBridge() *NoopBridge {
	return &NoopBridge{}
}

// Publish implements Bridge.Publish
func (b *NoopBridge) Publish(_ context.Context, _ *Event) error {
	return nil
}

// Subscribe implements Bridge.Subscribe
func (b *NoopBridge) Subscribe(_ context.Context, _ Handler) error {
	return nil
}

// Close implements Bridge.Close
func (b *NoopBridge) Close() error {
	return nil
}

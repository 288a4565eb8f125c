package notifier

import "context"

// Payload is the flat string key/value document sent through the delivery
// channel. The channel template resolves the keys; nested values are not
// supported by the provider.
type Payload map[string]string

// Receipt is the channel's opaque success response.
type Receipt struct {
	Status int    `json:"status"`
	Text   string `json:"text"`
}

// Channel is the provider-agnostic interface every delivery adapter must
// implement. Send may only be called after the Lifecycle reports ready.
type Channel interface {
	// Send delivers the payload and returns the provider receipt, or a
	// *SendRejectedError describing why the channel refused it.
	Send(ctx context.Context, p Payload) (*Receipt, error)
}

// Pinger is implemented by adapters that can cheaply verify the channel
// endpoint is reachable. The Lifecycle uses it as its readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

package core

import "context"

// ParticipantSnapshot is a read-only view of one media-session
// participant as the provider reports it. Metadata is an opaque JSON
// string; it may be empty or malformed and must be parsed defensively.
type ParticipantSnapshot struct {
	Identity string
	Name     string
	Metadata string
}

// DisplayName prefers the human name, falling back to the identity.
func (p ParticipantSnapshot) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Identity
}

// PublishOptions narrows a data publish. Empty Destinations means a
// room-wide broadcast. Delivery is reliable but unordered and never
// acknowledged by this layer.
type PublishOptions struct {
	Destinations []string
}

// MediaSession abstracts the third-party media service's session
// surface: metadata, the data channel, and the reconnect cycle.
// The provider owns the transport, negotiation and delivery guarantees.
type MediaSession interface {
	LocalIdentity() string
	LocalMetadata() string
	SetLocalMetadata(ctx context.Context, metadata string) error
	// SetParticipantMetadata writes another participant's metadata; only
	// admin-granted sessions may do this.
	SetParticipantMetadata(ctx context.Context, identity, metadata string) error

	Participants() []ParticipantSnapshot

	PublishData(ctx context.Context, payload []byte, opts PublishOptions) error
	// OnData registers the data-channel handler. Registration is
	// idempotent: repeated calls replace, never stack.
	OnData(fn func(payload []byte, senderIdentity string))
	// OnMetadataChanged registers the metadata-change handler with the
	// same idempotency rule.
	OnMetadataChanged(fn func(identity, prevMetadata string))

	// Reconnect tears down and re-establishes the session with a freshly
	// issued token so permission claims are recomputed.
	Reconnect(ctx context.Context) error
	Close()
}

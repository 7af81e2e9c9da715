package media

import (
	"errors"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/scholarcast/scholarcast/internal/domain"
)

var ErrNoCredentials = errors.New("media API credentials not configured")

const defaultTokenTTL = 6 * time.Hour

// TokenMinter issues media access tokens locally when the gateway is
// configured with provider credentials, mirroring the backend's grant
// logic: publish rights follow role capabilities, admin for moderators.
type TokenMinter struct {
	APIKey    string
	APISecret string
	TTL       time.Duration
}

func (m *TokenMinter) Configured() bool {
	return m != nil && m.APIKey != "" && m.APISecret != ""
}

func (m *TokenMinter) Mint(roomID domain.RoomID, identity, name string, role domain.Role) (string, error) {
	if !m.Configured() {
		return "", ErrNoCredentials
	}
	ttl := m.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	yes := true
	canPublish := role.CanBroadcast()
	grant := &auth.VideoGrant{
		RoomJoin:       true,
		Room:           string(roomID),
		RoomAdmin:      role.CanModerate(),
		CanPublish:     &canPublish,
		CanSubscribe:   &yes,
		CanPublishData: &yes,
	}

	at := auth.NewAccessToken(m.APIKey, m.APISecret)
	at.AddGrant(grant).
		SetIdentity(identity).
		SetName(name).
		SetValidFor(ttl)
	return at.ToJWT()
}

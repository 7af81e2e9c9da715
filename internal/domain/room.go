package domain

// RoomID is the media-session room name, distinct from the directory key.
type RoomID string

// Room mirrors the backend directory record for an active livestream room.
type Room struct {
	ID                FlexID   `json:"id"`
	RoomID            RoomID   `json:"room_id"`
	Title             string   `json:"title"`
	HostID            string   `json:"hostId,omitempty"`
	HostName          string   `json:"hostName,omitempty"`
	NumParticipants   int      `json:"numParticipants,omitempty"`
	ResearchInterests []string `json:"research_interests,omitempty"`
}

// OwnedBy reports whether the room's declared host matches the given
// user identity (the directory uses the email as host identifier).
func (r *Room) OwnedBy(email string) bool {
	return email != "" && r.HostID == email
}

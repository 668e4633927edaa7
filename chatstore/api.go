package chatstore

import (
	"encoding/json"
	"time"
)

// MediaKind is the attachment kind, decided once by the source when a message is fetched.
type MediaKind int

const (
	MediaNone MediaKind = iota
	MediaPhoto
	MediaDocument
	MediaVideo
	MediaWebPage
	MediaUnknown
)

var mediaKindNames = map[MediaKind]string{
	MediaNone:     "none",
	MediaPhoto:    "photo",
	MediaDocument: "document",
	MediaVideo:    "video",
	MediaWebPage:  "webpage",
	MediaUnknown:  "unknown",
}

func (k MediaKind) String() string {
	if s, ok := mediaKindNames[k]; ok {
		return s
	}
	return "unknown"
}

func (k MediaKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText maps unrecognized names to MediaUnknown.
func (k *MediaKind) UnmarshalText(b []byte) error {
	for kind, name := range mediaKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	if len(b) == 0 {
		*k = MediaNone
	} else {
		*k = MediaUnknown
	}
	return nil
}

// Dialog is one conversation: direct, group or channel.
type Dialog struct {
	ID   int64           `json:"id"`   // stable, used as resume key
	Name string          `json:"name"` // display name, not unique
	Raw  json.RawMessage `json:"raw,omitempty"`
}

type Participant struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username,omitempty"`
	FirstName string          `json:"first_name,omitempty"`
	LastName  string          `json:"last_name,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Bot       bool            `json:"bot,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// Media describes an attachment.
// FileNames holds the filename attributes of a document, in attribute order.
type Media struct {
	Kind      MediaKind `json:"kind"`
	FileNames []string  `json:"file_names,omitempty"`
}

// Message ids are positive and increase within a dialog; 0 means "no progress".
type Message struct {
	ID       int64           `json:"id"`
	DialogID int64           `json:"dialog_id"`
	Date     time.Time       `json:"date"`
	SenderID int64           `json:"sender_id,omitempty"`
	Text     string          `json:"message"`
	Media    *Media          `json:"media,omitempty"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// HasMedia reports whether the message carries an attachment.
func (m *Message) HasMedia() bool {
	return m.Media != nil && m.Media.Kind != MediaNone
}

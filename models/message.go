package models

import "time"

const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeAudio    = "audio"
	MessageTypeDocument = "document"
)

type Message struct {
	ID            ID              `json:"id"`
	ChatID        ID              `json:"chat_id"`
	UserID        ID              `json:"user_id"`
	Content       string          `json:"content"`
	Type          string          `json:"type,omitempty"`
	CreatedAt     Timestamp       `json:"created_at"`
	UserNickname  string          `json:"user_nickname,omitempty"`
	UserAvatarURL string          `json:"user_avatar_url,omitempty"`
	Attachment    *Attachment     `json:"attachment,omitempty"`
	Reactions     []ReactionGroup `json:"reactions,omitempty"`
	MyReaction    *string         `json:"my_reaction,omitempty"`
}

// AuthorName is the denormalized author nickname, or a placeholder when the
// backend did not include one.
func (m *Message) AuthorName() string {
	if m.UserNickname != "" {
		return m.UserNickname
	}
	return "User#" + m.UserID.String()
}

// Time returns the creation time, or now for events that arrive without one.
func (m *Message) Time() time.Time {
	if m.CreatedAt.IsZero() {
		return time.Now()
	}
	return m.CreatedAt.Time
}

type SendMessageRequest struct {
	Content      string `json:"content"`
	Type         string `json:"type"`
	AttachmentID *ID    `json:"attachment_id,omitempty"`
}

type UpdateMessageRequest struct {
	Content string `json:"content"`
}

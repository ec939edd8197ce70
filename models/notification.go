package models

type Notification struct {
	ID               ID        `json:"id"`
	Type             string    `json:"type"`
	Title            string    `json:"title"`
	Content          string    `json:"content,omitempty"`
	IsRead           bool      `json:"is_read"`
	CreatedAt        Timestamp `json:"created_at"`
	RelatedMessageID *ID       `json:"related_message_id,omitempty"`
	RelatedUserID    *ID       `json:"related_user_id,omitempty"`
	RelatedSpaceID   *ID       `json:"related_space_id,omitempty"`
}

type UnreadCount struct {
	UnreadCount int `json:"unread_count"`
}

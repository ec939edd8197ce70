package models

// Space is a persistent group chat container. ChatID is nil until the
// backend has provisioned the space's chat.
type Space struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	AdminID       ID     `json:"admin_id"`
	ChatID        *ID    `json:"chat_id"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	BackgroundURL string `json:"background_url,omitempty"`
}

func (s *Space) HasChat() bool {
	return s != nil && s.ChatID != nil && *s.ChatID != 0
}

// Participant is a space member as returned by the participants listing.
type Participant struct {
	User
	RoleID *ID `json:"role_id,omitempty"`
}

type CreateSpaceRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	BackgroundURL *string `json:"background_url"`
}

type Ban struct {
	UserID   ID         `json:"user_id"`
	Nickname string     `json:"nickname,omitempty"`
	Reason   string     `json:"reason,omitempty"`
	Until    *Timestamp `json:"until,omitempty"`
}

type BanRequest struct {
	Reason *string    `json:"reason"`
	Until  *Timestamp `json:"until"`
}

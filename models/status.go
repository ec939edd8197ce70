package models

type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusDND     Status = "dnd"
	StatusOffline Status = "offline"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusAway, StatusDND, StatusOffline:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusOnline:
		return "Online"
	case StatusAway:
		return "Away"
	case StatusDND:
		return "Do not disturb"
	default:
		return "Offline"
	}
}

type UserStatus struct {
	UserID   ID        `json:"user_id"`
	Nickname string    `json:"nickname,omitempty"`
	Status   Status    `json:"status"`
	LastSeen Timestamp `json:"last_seen,omitempty"`
}

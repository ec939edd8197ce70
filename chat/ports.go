package chat

import (
	"context"
	"io"

	"spaces-client/models"
	"spaces-client/realtime"
)

// API is the slice of the REST client the workspace drives.
type API interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	Spaces(ctx context.Context) ([]models.Space, error)
	CreateSpace(ctx context.Context, req models.CreateSpaceRequest) (*models.Space, error)
	JoinSpace(ctx context.Context, spaceID models.ID) error
	Participants(ctx context.Context, spaceID models.ID) ([]models.Participant, error)
	Roles(ctx context.Context, spaceID models.ID) ([]models.Role, error)
	Kick(ctx context.Context, spaceID, userID models.ID) error
	Ban(ctx context.Context, spaceID, userID models.ID, req models.BanRequest) error

	Messages(ctx context.Context, chatID models.ID, limit, offset int) ([]models.Message, error)
	SendMessage(ctx context.Context, chatID models.ID, req models.SendMessageRequest) (*models.Message, error)
	UpdateMessage(ctx context.Context, chatID, messageID models.ID, content string) (*models.Message, error)
	DeleteMessage(ctx context.Context, chatID, messageID models.ID) error
	SearchMessages(ctx context.Context, chatID models.ID, query string, limit, offset int) ([]models.Message, error)
	ToggleReaction(ctx context.Context, chatID, messageID models.ID, reaction string) (*models.ReactionsResponse, error)
	UploadAttachment(ctx context.Context, chatID models.ID, filename string, r io.Reader) (*models.Message, error)

	SetStatus(ctx context.Context, status models.Status) error
	ProfileByNickname(ctx context.Context, nickname string) (*models.User, error)
	Notifications(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) error
}

// Realtime is the slice of the realtime channel the workspace drives.
type Realtime interface {
	Connect(ctx context.Context, token string, userID models.ID, nickname string) error
	Connected() bool
	JoinRoom(ctx context.Context, roomID, userID models.ID, nickname string) error
	LeaveRoom(ctx context.Context, roomID, userID models.ID) error
	SendMessage(ctx context.Context, roomID, userID models.ID, nickname, text string) error
	EditMessage(ctx context.Context, roomID, messageID models.ID, content string, userID models.ID) error
	DeleteMessage(ctx context.Context, roomID, messageID, userID models.ID) error
	OnEvent(fn func(realtime.Event))
	OnDisconnect(fn func(error))
	Close() error
}

// View reflects state already resolved by the workspace. It never fetches
// and never reorders.
type View interface {
	Spaces(spaces []models.Space, active models.ID)
	Room(space models.Space, msgs []models.Message, viewer models.User)
	Empty()
	AppendMessage(msg models.Message, viewer models.User)
	UpdateMessage(msg models.Message, viewer models.User)
	RemoveMessage(id models.ID)
	UpdateReactions(msg models.Message, viewer models.User)
	Members(members []models.Participant, roles *models.RoleBook, statuses map[models.ID]models.Status)
	SearchResults(query string, msgs []models.Message, viewer models.User)
	Profile(u models.User, role string)
	Notifications(list []models.Notification)
	Notice(text string)
}

// Dialogs are blocking user prompts. Implementations return false from
// Confirm when the user declines or the context ends.
type Dialogs interface {
	Error(ctx context.Context, title, message string)
	Warning(ctx context.Context, title, message string)
	Info(ctx context.Context, title, message string)
	Confirm(ctx context.Context, title, message string) bool
}

// Session is the slice of the session store the workspace needs.
type Session interface {
	Token() string
	CacheUser(u *models.User) error
	Clear() error
}

package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"spaces-client/models"
	"time"
)

type Kind string

const (
	KindConnected       Kind = "connected"
	KindNewMessage      Kind = "new_message"
	KindMessageSent     Kind = "message_sent"
	KindMessageEdited   Kind = "message_edited"
	KindMessageDeleted  Kind = "message_deleted"
	KindReactionUpdated Kind = "reaction_updated"
	KindMemberKicked    Kind = "member_kicked"
	KindStatusChanged   Kind = "user_status_changed"
	KindUserJoined      Kind = "user_joined_room"
	KindUserLeft        Kind = "user_left_room"
	KindJoinedRoom      Kind = "joined_room"
	KindLeftRoom        Kind = "left_room"
	KindError           Kind = "error"
)

// Client-emitted event names.
const (
	emitJoinRoom      = "join_room"
	emitLeaveRoom     = "leave_room"
	emitSendMessage   = "send_message"
	emitEditMessage   = "edit_message"
	emitDeleteMessage = "delete_message"
)

var ErrUnknownEvent = errors.New("unknown event")

// Event is an inbound server event. Room returns the chat the event is
// scoped to, or 0 for session-wide events such as presence changes.
type Event interface {
	Kind() Kind
	Room() models.ID
	event()
}

type Connected struct {
	Message string `json:"message"`
}

// NewMessage is a message broadcast to a room.
type NewMessage struct {
	RoomID  models.ID
	Message models.Message
}

// MessageSent acknowledges the viewer's own send_message.
type MessageSent struct {
	RoomID  models.ID
	Message models.Message
}

type MessageEdited struct {
	RoomID    models.ID `json:"room_id"`
	MessageID models.ID `json:"message_id"`
	Content   string    `json:"content"`
	UserID    models.ID `json:"user_id"`
}

type MessageDeleted struct {
	RoomID    models.ID `json:"room_id"`
	MessageID models.ID `json:"message_id"`
	UserID    models.ID `json:"user_id"`
}

// ReactionUpdated carries the full replacement aggregate for one message.
type ReactionUpdated struct {
	RoomID    models.ID              `json:"room_id"`
	MessageID models.ID              `json:"message_id"`
	UserID    models.ID              `json:"user_id"`
	Reactions []models.ReactionGroup `json:"reactions"`
}

type MemberKicked struct {
	RoomID  models.ID `json:"room_id"`
	SpaceID models.ID `json:"space_id"`
	UserID  models.ID `json:"user_id"`
	By      models.ID `json:"kicked_by"`
	Reason  string    `json:"reason"`
}

type StatusChanged struct {
	UserID models.ID     `json:"user_id"`
	Status models.Status `json:"status"`
}

type UserJoined struct {
	RoomID   models.ID `json:"room_id"`
	UserID   models.ID `json:"user_id"`
	Nickname string    `json:"nickname"`
}

type UserLeft struct {
	RoomID   models.ID `json:"room_id"`
	UserID   models.ID `json:"user_id"`
	Nickname string    `json:"nickname"`
}

type JoinedRoom struct {
	RoomID  models.ID `json:"room_id"`
	Message string    `json:"message"`
}

type LeftRoom struct {
	RoomID  models.ID `json:"room_id"`
	Message string    `json:"message"`
}

// ServerError is an error event pushed by the server, usually in reply to
// an emit it rejected.
type ServerError struct {
	Message string `json:"message"`
}

func (Connected) Kind() Kind       { return KindConnected }
func (NewMessage) Kind() Kind      { return KindNewMessage }
func (MessageSent) Kind() Kind     { return KindMessageSent }
func (MessageEdited) Kind() Kind   { return KindMessageEdited }
func (MessageDeleted) Kind() Kind  { return KindMessageDeleted }
func (ReactionUpdated) Kind() Kind { return KindReactionUpdated }
func (MemberKicked) Kind() Kind    { return KindMemberKicked }
func (StatusChanged) Kind() Kind   { return KindStatusChanged }
func (UserJoined) Kind() Kind      { return KindUserJoined }
func (UserLeft) Kind() Kind        { return KindUserLeft }
func (JoinedRoom) Kind() Kind      { return KindJoinedRoom }
func (LeftRoom) Kind() Kind        { return KindLeftRoom }
func (ServerError) Kind() Kind     { return KindError }

func (Connected) Room() models.ID         { return 0 }
func (e NewMessage) Room() models.ID      { return e.RoomID }
func (e MessageSent) Room() models.ID     { return e.RoomID }
func (e MessageEdited) Room() models.ID   { return e.RoomID }
func (e MessageDeleted) Room() models.ID  { return e.RoomID }
func (e ReactionUpdated) Room() models.ID { return e.RoomID }
func (e MemberKicked) Room() models.ID    { return e.RoomID }
func (StatusChanged) Room() models.ID     { return 0 }
func (e UserJoined) Room() models.ID      { return e.RoomID }
func (e UserLeft) Room() models.ID        { return e.RoomID }
func (e JoinedRoom) Room() models.ID      { return e.RoomID }
func (e LeftRoom) Room() models.ID        { return e.RoomID }
func (ServerError) Room() models.ID       { return 0 }

func (Connected) event()       {}
func (NewMessage) event()      {}
func (MessageSent) event()     {}
func (MessageEdited) event()   {}
func (MessageDeleted) event()  {}
func (ReactionUpdated) event() {}
func (MemberKicked) event()    {}
func (StatusChanged) event()   {}
func (UserJoined) event()      {}
func (UserLeft) event()        {}
func (JoinedRoom) event()      {}
func (LeftRoom) event()        {}
func (ServerError) event()     {}

func (e ServerError) Error() string { return e.Message }

// Envelope is the frame carried over the socket in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Ref     string          `json:"ref,omitempty"`
}

// wireMessage accepts both the current field names and the older aliases
// still sent alongside them (message, timestamp, nickname).
type wireMessage struct {
	ID            models.ID              `json:"id"`
	ChatID        models.ID              `json:"chat_id"`
	RoomID        models.ID              `json:"room_id"`
	UserID        models.ID              `json:"user_id"`
	Content       *string                `json:"content"`
	Message       string                 `json:"message"`
	Type          string                 `json:"type"`
	CreatedAt     models.Timestamp       `json:"created_at"`
	Timestamp     models.Timestamp       `json:"timestamp"`
	UserNickname  string                 `json:"user_nickname"`
	Nickname      string                 `json:"nickname"`
	UserAvatarURL string                 `json:"user_avatar_url"`
	Attachment    *models.Attachment     `json:"attachment"`
	Reactions     []models.ReactionGroup `json:"reactions"`
}

func (w wireMessage) normalize() (models.ID, models.Message) {
	room := w.RoomID
	if room == 0 {
		room = w.ChatID
	}
	msg := models.Message{
		ID:            w.ID,
		ChatID:        w.ChatID,
		UserID:        w.UserID,
		Type:          w.Type,
		CreatedAt:     w.CreatedAt,
		UserNickname:  w.UserNickname,
		UserAvatarURL: w.UserAvatarURL,
		Attachment:    w.Attachment,
		Reactions:     w.Reactions,
	}
	if msg.ID == 0 {
		msg.ID = models.ID(time.Now().UnixMilli())
	}
	if msg.ChatID == 0 {
		msg.ChatID = room
	}
	if w.Content != nil && *w.Content != "" {
		msg.Content = *w.Content
	} else {
		msg.Content = w.Message
	}
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = w.Timestamp
	}
	if msg.UserNickname == "" {
		msg.UserNickname = w.Nickname
	}
	return room, msg
}

// Decode parses one frame into its concrete event.
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return decodePayload(Kind(env.Type), env.Payload)
}

func decodePayload(kind Kind, payload json.RawMessage) (Event, error) {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	switch kind {
	case KindConnected:
		return decodeAs[Connected](kind, payload)
	case KindNewMessage:
		var w wireMessage
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, wrapDecode(kind, err)
		}
		room, msg := w.normalize()
		return NewMessage{RoomID: room, Message: msg}, nil
	case KindMessageSent:
		var w wireMessage
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, wrapDecode(kind, err)
		}
		room, msg := w.normalize()
		return MessageSent{RoomID: room, Message: msg}, nil
	case KindMessageEdited:
		return decodeAs[MessageEdited](kind, payload)
	case KindMessageDeleted:
		return decodeAs[MessageDeleted](kind, payload)
	case KindReactionUpdated:
		return decodeAs[ReactionUpdated](kind, payload)
	case KindMemberKicked:
		return decodeAs[MemberKicked](kind, payload)
	case KindStatusChanged:
		return decodeAs[StatusChanged](kind, payload)
	case KindUserJoined:
		return decodeAs[UserJoined](kind, payload)
	case KindUserLeft:
		return decodeAs[UserLeft](kind, payload)
	case KindJoinedRoom:
		return decodeAs[JoinedRoom](kind, payload)
	case KindLeftRoom:
		return decodeAs[LeftRoom](kind, payload)
	case KindError:
		return decodeAs[ServerError](kind, payload)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
}

func decodeAs[T Event](kind Kind, payload json.RawMessage) (Event, error) {
	var e T
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, wrapDecode(kind, err)
	}
	return e, nil
}

func wrapDecode(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("decode %s: %w", kind, err)
}

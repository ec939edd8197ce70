package chat

import (
	"errors"
	"spaces-client/models"
	"spaces-client/realtime"
	"strings"
)

var (
	ErrNoActiveRoom   = errors.New("no space is open")
	ErrSpaceHasNoChat = errors.New("this space has no chat yet")
	ErrSpaceNotFound  = errors.New("space not found")
)

type Change int

const (
	NoChange Change = iota
	Appended
	Updated
	Removed
	ReactionsChanged
	MembersChanged
	TornDown
)

func (c Change) String() string {
	switch c {
	case Appended:
		return "appended"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	case ReactionsChanged:
		return "reactions"
	case MembersChanged:
		return "members"
	case TornDown:
		return "torn_down"
	}
	return "none"
}

// Delta describes what a state transition did so the view can patch
// instead of redrawing.
type Delta struct {
	Change    Change
	MessageID models.ID
	Message   models.Message
	UserID    models.ID
}

var noChange = Delta{Change: NoChange}

// Ticket identifies one room entry. Results fetched under an old ticket are
// discarded once the viewer has moved on.
type Ticket struct {
	Room  models.ID
	Space models.ID
	gen   uint64
}

// State is the single owner of client-side chat state: the space list, the
// open room's ordered message buffer and its member snapshot. It is not
// safe for concurrent use; the Workspace serialises access.
type State struct {
	viewer models.User
	spaces []models.Space

	active   *models.Space
	gen      uint64
	messages []models.Message
	members  []models.Participant
	roles    *models.RoleBook
	statuses map[models.ID]models.Status
}

func NewState(viewer models.User) *State {
	return &State{
		viewer:   viewer,
		statuses: make(map[models.ID]models.Status),
	}
}

func (s *State) Viewer() models.User {
	return s.viewer
}

func (s *State) SetViewer(u models.User) {
	s.viewer = u
}

func (s *State) SetSpaces(spaces []models.Space) {
	s.spaces = append([]models.Space(nil), spaces...)
}

func (s *State) Spaces() []models.Space {
	return append([]models.Space(nil), s.spaces...)
}

// FindSpace resolves a space by numeric id or case-insensitive name.
func (s *State) FindSpace(query string) (models.Space, bool) {
	query = strings.TrimSpace(query)
	if id, err := models.ParseID(query); err == nil {
		for _, sp := range s.spaces {
			if sp.ID == id {
				return sp, true
			}
		}
	}
	for _, sp := range s.spaces {
		if strings.EqualFold(sp.Name, query) {
			return sp, true
		}
	}
	return models.Space{}, false
}

// Active returns the open space.
func (s *State) Active() (models.Space, bool) {
	if s.active == nil {
		return models.Space{}, false
	}
	return *s.active, true
}

// ActiveRoom returns the open space's chat id, or 0.
func (s *State) ActiveRoom() models.ID {
	if !s.active.HasChat() {
		return 0
	}
	return *s.active.ChatID
}

// Enter discards the previous room context and opens space.
func (s *State) Enter(space models.Space) (Ticket, error) {
	if !space.HasChat() {
		return Ticket{}, ErrSpaceHasNoChat
	}
	s.gen++
	sp := space
	s.active = &sp
	s.messages = nil
	s.members = nil
	s.roles = nil
	return Ticket{Room: *space.ChatID, Space: space.ID, gen: s.gen}, nil
}

// Leave closes the open room. In-flight fetches for it become stale.
func (s *State) Leave() {
	s.gen++
	s.active = nil
	s.messages = nil
	s.members = nil
	s.roles = nil
}

func (s *State) current(t Ticket) bool {
	return s.active != nil && t.gen == s.gen && t.Room == s.ActiveRoom()
}

// ApplyHistory installs the fetched baseline. It reports false when the
// ticket is stale and the result was dropped.
func (s *State) ApplyHistory(t Ticket, msgs []models.Message) bool {
	if !s.current(t) {
		return false
	}
	s.messages = make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if s.indexOf(m.ID) >= 0 {
			continue
		}
		m.Reactions = models.CloneReactions(m.Reactions)
		m.MyReaction = models.MyReactionIn(m.Reactions, s.viewer.ID)
		s.messages = append(s.messages, m)
	}
	return true
}

// ApplyMembers installs the member snapshot and role book for the room.
func (s *State) ApplyMembers(t Ticket, members []models.Participant, roles []models.Role) bool {
	if !s.current(t) {
		return false
	}
	s.members = append([]models.Participant(nil), members...)
	s.roles = models.NewRoleBook(s.active.AdminID, roles, members)
	for _, m := range members {
		if m.Status != "" {
			s.statuses[m.ID] = m.Status
		}
	}
	return true
}

func (s *State) Messages() []models.Message {
	out := make([]models.Message, len(s.messages))
	for i, m := range s.messages {
		m.Reactions = models.CloneReactions(m.Reactions)
		out[i] = m
	}
	return out
}

func (s *State) Message(id models.ID) (models.Message, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return models.Message{}, false
	}
	m := s.messages[i]
	m.Reactions = models.CloneReactions(m.Reactions)
	return m, true
}

func (s *State) Members() []models.Participant {
	return append([]models.Participant(nil), s.members...)
}

// Member finds a room member by nickname, case-insensitively.
func (s *State) Member(nickname string) (models.Participant, bool) {
	nickname = strings.TrimPrefix(strings.TrimSpace(nickname), "@")
	for _, m := range s.members {
		if strings.EqualFold(m.Nickname, nickname) {
			return m, true
		}
	}
	return models.Participant{}, false
}

func (s *State) Roles() *models.RoleBook {
	return s.roles
}

func (s *State) Status(userID models.ID) models.Status {
	if st, ok := s.statuses[userID]; ok {
		return st
	}
	return models.StatusOffline
}

func (s *State) Statuses() map[models.ID]models.Status {
	out := make(map[models.ID]models.Status, len(s.statuses))
	for k, v := range s.statuses {
		out[k] = v
	}
	return out
}

// Apply merges one inbound realtime event.
func (s *State) Apply(ev realtime.Event) Delta {
	switch e := ev.(type) {
	case realtime.NewMessage:
		if !s.inRoom(e.RoomID) {
			return noChange
		}
		return s.AppendLocal(e.Message)
	case realtime.MessageEdited:
		if e.UserID == s.viewer.ID || !s.inRoom(e.RoomID) {
			return noChange
		}
		return s.EditLocal(e.MessageID, e.Content)
	case realtime.MessageDeleted:
		if e.UserID == s.viewer.ID || !s.inRoom(e.RoomID) {
			return noChange
		}
		return s.DeleteLocal(e.MessageID)
	case realtime.ReactionUpdated:
		if !s.inRoom(e.RoomID) {
			return noChange
		}
		return s.ReplaceReactions(e.MessageID, e.Reactions)
	case realtime.MemberKicked:
		if !s.kickedHere(e) {
			return noChange
		}
		if e.UserID == s.viewer.ID {
			s.Leave()
			return Delta{Change: TornDown, UserID: e.UserID}
		}
		return s.RemoveMember(e.UserID)
	case realtime.StatusChanged:
		return s.SetStatus(e.UserID, e.Status)
	case realtime.MessageSent, realtime.UserJoined, realtime.UserLeft,
		realtime.JoinedRoom, realtime.LeftRoom, realtime.Connected, realtime.ServerError:
		return noChange
	}
	return noChange
}

func (s *State) inRoom(room models.ID) bool {
	return room != 0 && room == s.ActiveRoom()
}

func (s *State) kickedHere(e realtime.MemberKicked) bool {
	if s.active == nil {
		return false
	}
	if e.RoomID != 0 {
		return s.inRoom(e.RoomID)
	}
	return e.SpaceID != 0 && e.SpaceID == s.active.ID
}

// AppendLocal appends msg unless its id is already present.
func (s *State) AppendLocal(msg models.Message) Delta {
	if s.active == nil || s.indexOf(msg.ID) >= 0 {
		return noChange
	}
	msg.Reactions = models.CloneReactions(msg.Reactions)
	msg.MyReaction = models.MyReactionIn(msg.Reactions, s.viewer.ID)
	s.messages = append(s.messages, msg)
	return Delta{Change: Appended, MessageID: msg.ID, Message: msg}
}

// EditLocal replaces a message's content in place.
func (s *State) EditLocal(id models.ID, content string) Delta {
	i := s.indexOf(id)
	if i < 0 || s.messages[i].Content == content {
		return noChange
	}
	s.messages[i].Content = content
	return Delta{Change: Updated, MessageID: id, Message: s.messages[i]}
}

// DeleteLocal removes a message, keeping the others' relative order.
func (s *State) DeleteLocal(id models.ID) Delta {
	i := s.indexOf(id)
	if i < 0 {
		return noChange
	}
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	return Delta{Change: Removed, MessageID: id}
}

// ReplaceReactions swaps in the server's aggregate and recomputes the
// viewer's own reaction from the participant lists.
func (s *State) ReplaceReactions(id models.ID, groups []models.ReactionGroup) Delta {
	i := s.indexOf(id)
	if i < 0 {
		return noChange
	}
	s.messages[i].Reactions = models.CloneReactions(groups)
	s.messages[i].MyReaction = models.MyReactionIn(groups, s.viewer.ID)
	m := s.messages[i]
	m.Reactions = models.CloneReactions(m.Reactions)
	return Delta{Change: ReactionsChanged, MessageID: id, Message: m}
}

func (s *State) RemoveMember(userID models.ID) Delta {
	for i, m := range s.members {
		if m.ID == userID {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return Delta{Change: MembersChanged, UserID: userID}
		}
	}
	return noChange
}

func (s *State) SetStatus(userID models.ID, status models.Status) Delta {
	if !status.Valid() || s.statuses[userID] == status {
		return noChange
	}
	s.statuses[userID] = status
	return Delta{Change: MembersChanged, UserID: userID}
}

func (s *State) indexOf(id models.ID) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}

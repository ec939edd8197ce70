package chat

import (
	"context"
	"io"
	"sync"

	"spaces-client/models"
	"spaces-client/realtime"
)

type fakeAPI struct {
	mu       sync.Mutex
	user     models.User
	spaces   []models.Space
	history  map[models.ID][]models.Message
	members  []models.Participant
	roles    []models.Role
	joinErr  error
	sendErr  error
	nextID   models.ID
	calls    []string
	uploaded []string

	onMessages func()
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		user: models.User{ID: userB, Nickname: "bob"},
		spaces: []models.Space{
			{ID: 10, Name: "General", AdminID: userA, ChatID: idp(100)},
			{ID: 11, Name: "Random", AdminID: userA, ChatID: idp(101)},
			{ID: 12, Name: "Draft", AdminID: userA},
		},
		history: map[models.ID][]models.Message{
			100: {{ID: 1, ChatID: 100, UserID: userA, Content: "hi", UserNickname: "alice"}},
			101: {{ID: 50, ChatID: 101, UserID: userA, Content: "random"}},
		},
		members: []models.Participant{
			{User: models.User{ID: userA, Nickname: "alice"}},
			{User: models.User{ID: userB, Nickname: "bob"}},
			{User: models.User{ID: 3, Nickname: "carol"}},
		},
		nextID: 3,
	}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (*models.User, error) {
	f.record("CurrentUser")
	u := f.user
	return &u, nil
}

func (f *fakeAPI) Spaces(ctx context.Context) ([]models.Space, error) {
	f.record("Spaces")
	return f.spaces, nil
}

func (f *fakeAPI) CreateSpace(ctx context.Context, req models.CreateSpaceRequest) (*models.Space, error) {
	f.record("CreateSpace")
	sp := models.Space{ID: 99, Name: req.Name, AdminID: f.user.ID, ChatID: idp(199)}
	f.spaces = append(f.spaces, sp)
	return &sp, nil
}

func (f *fakeAPI) JoinSpace(ctx context.Context, spaceID models.ID) error {
	f.record("JoinSpace")
	return f.joinErr
}

func (f *fakeAPI) Participants(ctx context.Context, spaceID models.ID) ([]models.Participant, error) {
	f.record("Participants")
	return f.members, nil
}

func (f *fakeAPI) Roles(ctx context.Context, spaceID models.ID) ([]models.Role, error) {
	f.record("Roles")
	return f.roles, nil
}

func (f *fakeAPI) Kick(ctx context.Context, spaceID, userID models.ID) error {
	f.record("Kick")
	return nil
}

func (f *fakeAPI) Ban(ctx context.Context, spaceID, userID models.ID, req models.BanRequest) error {
	f.record("Ban")
	return nil
}

func (f *fakeAPI) Messages(ctx context.Context, chatID models.ID, limit, offset int) ([]models.Message, error) {
	f.record("Messages")
	if f.onMessages != nil {
		f.onMessages()
	}
	return f.history[chatID], nil
}

func (f *fakeAPI) SendMessage(ctx context.Context, chatID models.ID, req models.SendMessageRequest) (*models.Message, error) {
	f.record("SendMessage")
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.mu.Unlock()
	return &models.Message{ID: id, ChatID: chatID, UserID: f.user.ID, Content: req.Content}, nil
}

func (f *fakeAPI) UpdateMessage(ctx context.Context, chatID, messageID models.ID, content string) (*models.Message, error) {
	f.record("UpdateMessage")
	return &models.Message{ID: messageID, ChatID: chatID, Content: content}, nil
}

func (f *fakeAPI) DeleteMessage(ctx context.Context, chatID, messageID models.ID) error {
	f.record("DeleteMessage")
	return nil
}

func (f *fakeAPI) SearchMessages(ctx context.Context, chatID models.ID, query string, limit, offset int) ([]models.Message, error) {
	f.record("SearchMessages")
	return f.history[chatID], nil
}

func (f *fakeAPI) ToggleReaction(ctx context.Context, chatID, messageID models.ID, reaction string) (*models.ReactionsResponse, error) {
	f.record("ToggleReaction")
	return &models.ReactionsResponse{
		MessageID: messageID,
		Reactions: []models.ReactionGroup{{Reaction: reaction, Count: 1, Users: []models.ReactionUser{{ID: f.user.ID}}}},
	}, nil
}

func (f *fakeAPI) UploadAttachment(ctx context.Context, chatID models.ID, filename string, r io.Reader) (*models.Message, error) {
	f.record("UploadAttachment")
	data, _ := io.ReadAll(r)
	f.uploaded = append(f.uploaded, string(data))
	return &models.Message{ID: 77, ChatID: chatID, Type: models.MessageTypeDocument,
		Attachment: &models.Attachment{FileURL: "/uploads/" + filename, FileSize: int64(len(data))}}, nil
}

func (f *fakeAPI) SetStatus(ctx context.Context, status models.Status) error {
	f.record("SetStatus")
	return nil
}

func (f *fakeAPI) ProfileByNickname(ctx context.Context, nickname string) (*models.User, error) {
	f.record("ProfileByNickname")
	for _, m := range f.members {
		if m.Nickname == nickname {
			u := m.User
			return &u, nil
		}
	}
	return &models.User{Nickname: nickname}, nil
}

func (f *fakeAPI) Notifications(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	f.record("Notifications")
	return []models.Notification{{ID: 1, Title: "hello"}}, nil
}

func (f *fakeAPI) MarkAllNotificationsRead(ctx context.Context) error {
	f.record("MarkAllNotificationsRead")
	return nil
}

type emitted struct {
	kind string
	room models.ID
	id   models.ID
	text string
}

type fakeRT struct {
	mu         sync.Mutex
	connected  bool
	connectErr error
	emits      []emitted
	onEvent    func(realtime.Event)
}

func (r *fakeRT) emit(e emitted) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.connected {
		return realtime.ErrNotConnected
	}
	r.emits = append(r.emits, e)
	return nil
}

func (r *fakeRT) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.emits))
	for i, e := range r.emits {
		out[i] = e.kind
	}
	return out
}

func (r *fakeRT) Connect(ctx context.Context, token string, userID models.ID, nickname string) error {
	if r.connectErr != nil {
		return r.connectErr
	}
	r.mu.Lock()
	r.connected = true
	r.mu.Unlock()
	return nil
}

func (r *fakeRT) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

func (r *fakeRT) JoinRoom(ctx context.Context, roomID, userID models.ID, nickname string) error {
	return r.emit(emitted{kind: "join_room", room: roomID})
}

func (r *fakeRT) LeaveRoom(ctx context.Context, roomID, userID models.ID) error {
	return r.emit(emitted{kind: "leave_room", room: roomID})
}

func (r *fakeRT) SendMessage(ctx context.Context, roomID, userID models.ID, nickname, text string) error {
	return r.emit(emitted{kind: "send_message", room: roomID, text: text})
}

func (r *fakeRT) EditMessage(ctx context.Context, roomID, messageID models.ID, content string, userID models.ID) error {
	return r.emit(emitted{kind: "edit_message", room: roomID, id: messageID, text: content})
}

func (r *fakeRT) DeleteMessage(ctx context.Context, roomID, messageID, userID models.ID) error {
	return r.emit(emitted{kind: "delete_message", room: roomID, id: messageID})
}

func (r *fakeRT) OnEvent(fn func(realtime.Event)) { r.onEvent = fn }
func (r *fakeRT) OnDisconnect(fn func(error))     {}

func (r *fakeRT) Close() error {
	r.mu.Lock()
	r.connected = false
	r.mu.Unlock()
	return nil
}

type fakeView struct {
	mu       sync.Mutex
	calls    []string
	rendered []models.ID
	notices  []string
	profile  string
}

func (v *fakeView) record(call string) {
	v.mu.Lock()
	v.calls = append(v.calls, call)
	v.mu.Unlock()
}

func (v *fakeView) count(call string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, c := range v.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (v *fakeView) Spaces(spaces []models.Space, active models.ID) { v.record("Spaces") }

func (v *fakeView) Room(space models.Space, msgs []models.Message, viewer models.User) {
	v.record("Room")
	v.mu.Lock()
	v.rendered = ids(msgs)
	v.mu.Unlock()
}

func (v *fakeView) Empty()                                             { v.record("Empty") }
func (v *fakeView) AppendMessage(msg models.Message, viewer models.User) { v.record("AppendMessage") }
func (v *fakeView) UpdateMessage(msg models.Message, viewer models.User) { v.record("UpdateMessage") }
func (v *fakeView) RemoveMessage(id models.ID)                          { v.record("RemoveMessage") }
func (v *fakeView) UpdateReactions(msg models.Message, viewer models.User) {
	v.record("UpdateReactions")
}

func (v *fakeView) Members(members []models.Participant, roles *models.RoleBook, statuses map[models.ID]models.Status) {
	v.record("Members")
}

func (v *fakeView) SearchResults(query string, msgs []models.Message, viewer models.User) {
	v.record("SearchResults")
}

func (v *fakeView) Profile(u models.User, role string) {
	v.record("Profile")
	v.mu.Lock()
	v.profile = u.Nickname + "/" + role
	v.mu.Unlock()
}

func (v *fakeView) Notifications(list []models.Notification) { v.record("Notifications") }

func (v *fakeView) Notice(text string) {
	v.mu.Lock()
	v.notices = append(v.notices, text)
	v.mu.Unlock()
}

type fakeDialogs struct {
	mu       sync.Mutex
	confirm  bool
	errors   []string
	warnings []string
	infos    []string
	asked    int
}

func (d *fakeDialogs) Error(ctx context.Context, title, message string) {
	d.mu.Lock()
	d.errors = append(d.errors, title+": "+message)
	d.mu.Unlock()
}

func (d *fakeDialogs) Warning(ctx context.Context, title, message string) {
	d.mu.Lock()
	d.warnings = append(d.warnings, title+": "+message)
	d.mu.Unlock()
}

func (d *fakeDialogs) Info(ctx context.Context, title, message string) {
	d.mu.Lock()
	d.infos = append(d.infos, title+": "+message)
	d.mu.Unlock()
}

func (d *fakeDialogs) Confirm(ctx context.Context, title, message string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.asked++
	return d.confirm
}

type fakeSession struct {
	token  string
	cached *models.User
}

func (s *fakeSession) Token() string                  { return s.token }
func (s *fakeSession) CacheUser(u *models.User) error { s.cached = u; return nil }
func (s *fakeSession) Clear() error                   { s.token = ""; s.cached = nil; return nil }

package chat

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"spaces-client/api"
	"spaces-client/models"
	"spaces-client/realtime"

	"github.com/rs/zerolog"
)

var (
	ErrBanned           = errors.New("you are banned from this space")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrNotYourMessage   = errors.New("you can only change your own messages")
	ErrMessageNotFound  = errors.New("message not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrInsufficientRank = errors.New("your role does not allow this")
	ErrCancelled        = errors.New("cancelled")
	ErrInvalidInput     = errors.New("invalid input")
)

type Config struct {
	HistoryLimit  int
	SearchLimit   int
	MaxUploadSize int64
	EmitTimeout   time.Duration
}

func (c *Config) defaults() {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 50
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = 10 << 20
	}
	if c.EmitTimeout <= 0 {
		c.EmitTimeout = 5 * time.Second
	}
}

// Workspace runs the chat flows. It owns the State and serialises every
// mutation of it, whether triggered by the user or by realtime events.
type Workspace struct {
	api     API
	rt      Realtime
	view    View
	dialogs Dialogs
	session Session
	cfg     Config
	log     zerolog.Logger

	mu    sync.Mutex
	state *State
}

func NewWorkspace(a API, rt Realtime, view View, dialogs Dialogs, session Session, cfg Config, log zerolog.Logger) *Workspace {
	cfg.defaults()
	return &Workspace{
		api:     a,
		rt:      rt,
		view:    view,
		dialogs: dialogs,
		session: session,
		cfg:     cfg,
		log:     log,
		state:   NewState(models.User{}),
	}
}

// Start loads the viewer and the space list and connects the realtime
// channel. A failed connection is not fatal: sends fall back to HTTP.
func (w *Workspace) Start(ctx context.Context) error {
	user, err := w.api.CurrentUser(ctx)
	if err != nil {
		w.fail(ctx, "Could not load your profile", err)
		return err
	}
	if err := w.session.CacheUser(user); err != nil {
		w.log.Warn().Err(err).Msg("[chat] failed to cache user")
	}

	w.mu.Lock()
	w.state.SetViewer(*user)
	w.mu.Unlock()

	w.rt.OnEvent(w.HandleEvent)
	w.rt.OnDisconnect(func(err error) {
		w.log.Warn().Err(err).Msg("[chat] realtime disconnected, sending over HTTP")
		w.view.Notice("Live updates disconnected. Messages will be sent over HTTP.")
	})
	if err := w.rt.Connect(ctx, w.session.Token(), user.ID, user.Nickname); err != nil {
		w.log.Warn().Err(err).Msg("[chat] realtime unavailable, sending over HTTP")
	}

	return w.ReloadSpaces(ctx)
}

func (w *Workspace) Viewer() models.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Viewer()
}

// ActiveSpace returns the open space's id, or 0.
func (w *Workspace) ActiveSpace() models.ID {
	w.mu.Lock()
	defer w.mu.Unlock()
	if sp, ok := w.state.Active(); ok {
		return sp.ID
	}
	return 0
}

// MemberNicknames lists the open room's members for mention completion.
func (w *Workspace) MemberNicknames() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	members := w.state.Members()
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Nickname)
	}
	return out
}

func (w *Workspace) ReloadSpaces(ctx context.Context) error {
	spaces, err := w.api.Spaces(ctx)
	if err != nil {
		w.fail(ctx, "Could not load spaces", err)
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.SetSpaces(spaces)
	active := models.ID(0)
	if sp, ok := w.state.Active(); ok {
		active = sp.ID
	}
	w.view.Spaces(w.state.Spaces(), active)
	return nil
}

// SelectSpace joins the space, leaves the previous realtime room and loads
// the new room's history and members.
func (w *Workspace) SelectSpace(ctx context.Context, query string) error {
	w.mu.Lock()
	space, found := w.state.FindSpace(query)
	viewer := w.state.Viewer()
	prevRoom := w.state.ActiveRoom()
	w.mu.Unlock()

	if !found {
		w.dialogs.Warning(ctx, "Unknown space", fmt.Sprintf("No space matches %q.", query))
		return ErrSpaceNotFound
	}
	if !space.HasChat() {
		w.dialogs.Warning(ctx, space.Name, "This space has no chat yet.")
		return ErrSpaceHasNoChat
	}

	if err := w.api.JoinSpace(ctx, space.ID); err != nil {
		switch {
		case errors.Is(err, api.ErrSessionExpired):
			w.fail(ctx, "Could not open space", err)
			return err
		case isBanned(err):
			w.dialogs.Error(ctx, "Access denied", "You are banned from this space.")
			return ErrBanned
		case api.IsStatus(err, http.StatusNotFound):
			w.dialogs.Error(ctx, "Could not open space", "This space no longer exists.")
			return err
		default:
			w.log.Debug().Err(err).Str("space", space.Name).Msg("[chat] join refused, assuming already a member")
		}
	}

	if prevRoom != 0 && prevRoom != *space.ChatID && w.rt.Connected() {
		if err := w.rt.LeaveRoom(ctx, prevRoom, viewer.ID); err != nil {
			w.log.Warn().Err(err).Msg("[chat] failed to leave previous room")
		}
	}

	w.mu.Lock()
	ticket, err := w.state.Enter(space)
	w.mu.Unlock()
	if err != nil {
		return err
	}

	if w.rt.Connected() {
		if err := w.rt.JoinRoom(ctx, ticket.Room, viewer.ID, viewer.Nickname); err != nil {
			w.log.Warn().Err(err).Msg("[chat] failed to join realtime room")
		}
	}

	msgs, err := w.api.Messages(ctx, ticket.Room, w.cfg.HistoryLimit, 0)
	if err != nil {
		w.fail(ctx, "Could not load messages", err)
		return err
	}

	w.mu.Lock()
	if !w.state.ApplyHistory(ticket, msgs) {
		w.mu.Unlock()
		w.log.Debug().Str("room", ticket.Room.String()).Msg("[chat] dropped stale history")
		return nil
	}
	w.view.Spaces(w.state.Spaces(), space.ID)
	w.view.Room(space, w.state.Messages(), viewer)
	w.mu.Unlock()

	return w.loadMembers(ctx, ticket)
}

func (w *Workspace) loadMembers(ctx context.Context, ticket Ticket) error {
	members, err := w.api.Participants(ctx, ticket.Space)
	if err != nil {
		w.fail(ctx, "Could not load members", err)
		return err
	}
	roles, err := w.api.Roles(ctx, ticket.Space)
	if err != nil {
		// roles are optional; everyone falls back to the member role
		w.log.Debug().Err(err).Msg("[chat] roles unavailable")
		roles = nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.ApplyMembers(ticket, members, roles) {
		w.view.Members(w.state.Members(), w.state.Roles(), w.state.Statuses())
	}
	return nil
}

// Members refreshes and shows the open room's member list.
func (w *Workspace) Members(ctx context.Context) error {
	ticket, err := w.currentTicket()
	if err != nil {
		w.dialogs.Warning(ctx, "Members", "Open a space first.")
		return err
	}
	return w.loadMembers(ctx, ticket)
}

func (w *Workspace) currentTicket() (Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	sp, ok := w.state.Active()
	if !ok {
		return Ticket{}, ErrNoActiveRoom
	}
	return Ticket{Room: w.state.ActiveRoom(), Space: sp.ID, gen: w.state.gen}, nil
}

// Send posts text to the open room. With realtime up the server echo
// delivers the message; otherwise it is sent over HTTP and appended locally.
func (w *Workspace) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	w.mu.Lock()
	room := w.state.ActiveRoom()
	viewer := w.state.Viewer()
	w.mu.Unlock()
	if room == 0 {
		w.dialogs.Warning(ctx, "No space open", "Select a space before sending messages.")
		return ErrNoActiveRoom
	}

	if w.rt.Connected() {
		emitCtx, cancel := context.WithTimeout(ctx, w.cfg.EmitTimeout)
		err := w.rt.SendMessage(emitCtx, room, viewer.ID, viewer.Nickname, text)
		cancel()
		if err == nil {
			return nil
		}
		w.log.Warn().Err(err).Msg("[chat] realtime send failed, using HTTP")
	}

	msg, err := w.api.SendMessage(ctx, room, models.SendMessageRequest{Content: text, Type: models.MessageTypeText})
	if err != nil {
		w.fail(ctx, "Message not sent", err)
		return err
	}
	if msg.UserNickname == "" {
		msg.UserNickname = viewer.Nickname
	}
	if msg.UserID == 0 {
		msg.UserID = viewer.ID
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.ActiveRoom() != room {
		return nil
	}
	if d := w.state.AppendLocal(*msg); d.Change != NoChange {
		space, _ := w.state.Active()
		w.view.Room(space, w.state.Messages(), viewer)
	}
	return nil
}

// Edit changes one of the viewer's messages. Peers only see the edit live
// when the realtime channel is up; there is no HTTP broadcast.
func (w *Workspace) Edit(ctx context.Context, id models.ID, text string) error {
	text = strings.TrimSpace(text)

	w.mu.Lock()
	room := w.state.ActiveRoom()
	viewer := w.state.Viewer()
	msg, found := w.state.Message(id)
	w.mu.Unlock()

	switch {
	case room == 0:
		w.dialogs.Warning(ctx, "No space open", "Select a space first.")
		return ErrNoActiveRoom
	case !found:
		w.dialogs.Warning(ctx, "Edit message", fmt.Sprintf("Message #%d is not in this room.", id))
		return ErrMessageNotFound
	case msg.UserID != viewer.ID:
		w.dialogs.Warning(ctx, "Edit message", "You can only edit your own messages.")
		return ErrNotYourMessage
	case text == "":
		w.dialogs.Warning(ctx, "Edit message", "A message cannot be empty.")
		return ErrEmptyMessage
	case text == msg.Content:
		return nil
	}

	if _, err := w.api.UpdateMessage(ctx, room, id, text); err != nil {
		w.fail(ctx, "Could not edit message", err)
		return err
	}

	w.mu.Lock()
	if w.state.ActiveRoom() == room {
		if d := w.state.EditLocal(id, text); d.Change == Updated {
			w.view.UpdateMessage(d.Message, viewer)
		}
	}
	w.mu.Unlock()

	w.broadcast(ctx, "edit", func(ctx context.Context) error {
		return w.rt.EditMessage(ctx, room, id, text, viewer.ID)
	})
	return nil
}

// Delete removes a message after confirmation. Authors may delete their
// own messages; others need the delete_any_messages permission.
func (w *Workspace) Delete(ctx context.Context, id models.ID) error {
	w.mu.Lock()
	room := w.state.ActiveRoom()
	viewer := w.state.Viewer()
	msg, found := w.state.Message(id)
	roles := w.state.Roles()
	w.mu.Unlock()

	switch {
	case room == 0:
		w.dialogs.Warning(ctx, "No space open", "Select a space first.")
		return ErrNoActiveRoom
	case !found:
		w.dialogs.Warning(ctx, "Delete message", fmt.Sprintf("Message #%d is not in this room.", id))
		return ErrMessageNotFound
	case msg.UserID != viewer.ID && !roles.Can(viewer.ID, models.PermDeleteAnyMessages):
		w.dialogs.Warning(ctx, "Delete message", "You can only delete your own messages.")
		return ErrNotYourMessage
	}

	if !w.dialogs.Confirm(ctx, "Delete message", "Delete this message? This cannot be undone.") {
		return ErrCancelled
	}

	if err := w.api.DeleteMessage(ctx, room, id); err != nil {
		w.fail(ctx, "Could not delete message", err)
		return err
	}

	w.mu.Lock()
	if w.state.ActiveRoom() == room {
		if d := w.state.DeleteLocal(id); d.Change == Removed {
			w.view.RemoveMessage(id)
		}
	}
	w.mu.Unlock()

	w.broadcast(ctx, "delete", func(ctx context.Context) error {
		return w.rt.DeleteMessage(ctx, room, id, viewer.ID)
	})
	return nil
}

func (w *Workspace) broadcast(ctx context.Context, what string, emit func(context.Context) error) {
	if !w.rt.Connected() {
		w.log.Warn().Str("action", what).Msg("[chat] realtime down, other members will not see this until they reload")
		return
	}
	emitCtx, cancel := context.WithTimeout(ctx, w.cfg.EmitTimeout)
	defer cancel()
	if err := emit(emitCtx); err != nil {
		w.log.Warn().Err(err).Str("action", what).Msg("[chat] realtime broadcast failed")
	}
}

// React toggles the viewer's reaction and installs the server's aggregate.
func (w *Workspace) React(ctx context.Context, id models.ID, reaction string) error {
	reaction = strings.TrimSpace(reaction)

	w.mu.Lock()
	room := w.state.ActiveRoom()
	_, found := w.state.Message(id)
	w.mu.Unlock()

	switch {
	case room == 0:
		w.dialogs.Warning(ctx, "No space open", "Select a space first.")
		return ErrNoActiveRoom
	case !found:
		w.dialogs.Warning(ctx, "React", fmt.Sprintf("Message #%d is not in this room.", id))
		return ErrMessageNotFound
	case reaction == "":
		w.dialogs.Warning(ctx, "React", "Pick a reaction.")
		return ErrInvalidInput
	}

	resp, err := w.api.ToggleReaction(ctx, room, id, reaction)
	if err != nil {
		w.fail(ctx, "Could not react", err)
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.ActiveRoom() != room {
		return nil
	}
	if d := w.state.ReplaceReactions(id, resp.Reactions); d.Change == ReactionsChanged {
		w.view.UpdateReactions(d.Message, w.state.Viewer())
	}
	return nil
}

// Upload validates a local file and posts it as an attachment.
func (w *Workspace) Upload(ctx context.Context, path string) error {
	w.mu.Lock()
	room := w.state.ActiveRoom()
	viewer := w.state.Viewer()
	w.mu.Unlock()
	if room == 0 {
		w.dialogs.Warning(ctx, "No space open", "Select a space first.")
		return ErrNoActiveRoom
	}

	f, err := os.Open(path)
	if err != nil {
		w.dialogs.Warning(ctx, "Upload", fmt.Sprintf("Cannot open %s.", path))
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		w.dialogs.Warning(ctx, "Upload", fmt.Sprintf("Cannot read %s.", path))
		return err
	}
	name := filepath.Base(path)
	mimeType, err := detectMIME(f, name)
	if err != nil {
		w.dialogs.Warning(ctx, "Upload", fmt.Sprintf("Cannot read %s.", path))
		return err
	}
	if _, err := models.ValidateUpload(name, mimeType, info.Size(), w.cfg.MaxUploadSize); err != nil {
		w.dialogs.Warning(ctx, "Upload", err.Error())
		return err
	}

	msg, err := w.api.UploadAttachment(ctx, room, name, f)
	if err != nil {
		w.fail(ctx, "Upload failed", err)
		return err
	}
	if msg.UserID == 0 {
		msg.UserID = viewer.ID
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.ActiveRoom() != room {
		return nil
	}
	if d := w.state.AppendLocal(*msg); d.Change == Appended {
		w.view.AppendMessage(d.Message, viewer)
	}
	return nil
}

// detectMIME prefers the extension and sniffs the content otherwise. The
// file offset is rewound afterwards.
func detectMIME(f *os.File, name string) (string, error) {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t, nil
	}
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return "", err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

func (w *Workspace) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	w.mu.Lock()
	room := w.state.ActiveRoom()
	viewer := w.state.Viewer()
	w.mu.Unlock()

	if room == 0 {
		w.dialogs.Warning(ctx, "No space open", "Select a space first.")
		return ErrNoActiveRoom
	}
	if query == "" {
		w.dialogs.Warning(ctx, "Search", "Enter something to search for.")
		return ErrInvalidInput
	}

	msgs, err := w.api.SearchMessages(ctx, room, query, w.cfg.SearchLimit, 0)
	if err != nil {
		w.fail(ctx, "Search failed", err)
		return err
	}
	w.view.SearchResults(query, msgs, viewer)
	return nil
}

// Kick removes a member from the open space. The viewer must hold the kick
// permission and outrank the target.
func (w *Workspace) Kick(ctx context.Context, nickname string) error {
	return w.moderate(ctx, nickname, models.PermKickMembers, "Kick", func(spaceID, userID models.ID) error {
		return w.api.Kick(ctx, spaceID, userID)
	})
}

func (w *Workspace) Ban(ctx context.Context, nickname, reason string) error {
	return w.moderate(ctx, nickname, models.PermBanMembers, "Ban", func(spaceID, userID models.ID) error {
		req := models.BanRequest{}
		if reason = strings.TrimSpace(reason); reason != "" {
			req.Reason = &reason
		}
		return w.api.Ban(ctx, spaceID, userID, req)
	})
}

func (w *Workspace) moderate(ctx context.Context, nickname string, perm models.Permission, verb string, call func(spaceID, userID models.ID) error) error {
	w.mu.Lock()
	space, open := w.state.Active()
	viewer := w.state.Viewer()
	target, found := w.state.Member(nickname)
	roles := w.state.Roles()
	w.mu.Unlock()

	switch {
	case !open:
		w.dialogs.Warning(ctx, "No space open", "Select a space first.")
		return ErrNoActiveRoom
	case !found:
		w.dialogs.Warning(ctx, verb, fmt.Sprintf("%s is not a member of %s.", nickname, space.Name))
		return ErrMemberNotFound
	case !roles.CanModerate(viewer.ID, target.ID, perm):
		w.dialogs.Warning(ctx, verb, fmt.Sprintf("Your role does not allow you to %s %s.", strings.ToLower(verb), target.Nickname))
		return ErrInsufficientRank
	}

	if !w.dialogs.Confirm(ctx, verb, fmt.Sprintf("%s %s from %s?", verb, target.Nickname, space.Name)) {
		return ErrCancelled
	}
	if err := call(space.ID, target.ID); err != nil {
		w.fail(ctx, verb+" failed", err)
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if sp, ok := w.state.Active(); ok && sp.ID == space.ID {
		if d := w.state.RemoveMember(target.ID); d.Change == MembersChanged {
			w.view.Members(w.state.Members(), w.state.Roles(), w.state.Statuses())
		}
	}
	return nil
}

func (w *Workspace) CreateSpace(ctx context.Context, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		w.dialogs.Warning(ctx, "Create space", "A space needs a name.")
		return ErrInvalidInput
	}
	req := models.CreateSpaceRequest{Name: name}
	if description = strings.TrimSpace(description); description != "" {
		req.Description = &description
	}
	space, err := w.api.CreateSpace(ctx, req)
	if err != nil {
		w.fail(ctx, "Could not create space", err)
		return err
	}
	w.dialogs.Info(ctx, "Space created", fmt.Sprintf("%s is ready.", space.Name))
	return w.ReloadSpaces(ctx)
}

func (w *Workspace) SetStatus(ctx context.Context, status models.Status) error {
	if !status.Valid() {
		w.dialogs.Warning(ctx, "Status", "Status must be one of online, away, dnd or offline.")
		return ErrInvalidInput
	}
	if err := w.api.SetStatus(ctx, status); err != nil {
		w.fail(ctx, "Could not change status", err)
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	viewer := w.state.Viewer()
	viewer.Status = status
	w.state.SetViewer(viewer)
	if d := w.state.SetStatus(viewer.ID, status); d.Change == MembersChanged && w.state.ActiveRoom() != 0 {
		w.view.Members(w.state.Members(), w.state.Roles(), w.state.Statuses())
	}
	return nil
}

// ApplyStatuses merges a presence snapshot from the periodic refresh.
func (w *Workspace) ApplyStatuses(list []models.UserStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := false
	for _, st := range list {
		if w.state.SetStatus(st.UserID, st.Status).Change != NoChange {
			changed = true
		}
	}
	if changed && w.state.ActiveRoom() != 0 {
		w.view.Members(w.state.Members(), w.state.Roles(), w.state.Statuses())
	}
}

// Profile shows a mini-profile for a nickname.
func (w *Workspace) Profile(ctx context.Context, nickname string) error {
	nickname = strings.TrimPrefix(strings.TrimSpace(nickname), "@")
	if nickname == "" {
		w.dialogs.Warning(ctx, "Profile", "Whose profile?")
		return ErrInvalidInput
	}
	u, err := w.api.ProfileByNickname(ctx, nickname)
	if err != nil {
		w.fail(ctx, "Profile unavailable", err)
		return err
	}

	w.mu.Lock()
	role := ""
	if _, open := w.state.Active(); open {
		role = w.state.Roles().RoleOf(u.ID).Name
		if sp, _ := w.state.Active(); sp.AdminID == u.ID {
			role = "admin"
		}
	}
	if u.Status == "" {
		u.Status = w.state.Status(u.ID)
	}
	w.mu.Unlock()

	w.view.Profile(*u, role)
	return nil
}

func (w *Workspace) Notifications(ctx context.Context, markRead bool) error {
	list, err := w.api.Notifications(ctx, false, 20)
	if err != nil {
		w.fail(ctx, "Could not load notifications", err)
		return err
	}
	w.view.Notifications(list)
	if markRead {
		if err := w.api.MarkAllNotificationsRead(ctx); err != nil {
			w.log.Warn().Err(err).Msg("[chat] failed to mark notifications read")
		}
	}
	return nil
}

// LeaveRoom closes the open room locally and on the realtime channel.
func (w *Workspace) LeaveRoom(ctx context.Context) {
	w.mu.Lock()
	room := w.state.ActiveRoom()
	viewer := w.state.Viewer()
	w.state.Leave()
	w.view.Empty()
	w.view.Spaces(w.state.Spaces(), 0)
	w.mu.Unlock()

	if room != 0 && w.rt.Connected() {
		if err := w.rt.LeaveRoom(ctx, room, viewer.ID); err != nil {
			w.log.Warn().Err(err).Msg("[chat] failed to leave realtime room")
		}
	}
}

// HandleEvent applies a realtime event and patches the view. It runs on
// the channel's read goroutine and must not block on user input.
func (w *Workspace) HandleEvent(ev realtime.Event) {
	w.mu.Lock()
	space, _ := w.state.Active()
	room := w.state.ActiveRoom()
	d := w.state.Apply(ev)
	viewer := w.state.Viewer()

	switch d.Change {
	case Appended:
		w.view.AppendMessage(d.Message, viewer)
	case Updated:
		w.view.UpdateMessage(d.Message, viewer)
	case Removed:
		w.view.RemoveMessage(d.MessageID)
	case ReactionsChanged:
		w.view.UpdateReactions(d.Message, viewer)
	case MembersChanged:
		if w.state.ActiveRoom() != 0 {
			w.view.Members(w.state.Members(), w.state.Roles(), w.state.Statuses())
		}
	case TornDown:
		w.view.Empty()
		w.view.Spaces(w.state.Spaces(), 0)
		w.view.Notice(fmt.Sprintf("You were removed from %s.", space.Name))
	}
	w.mu.Unlock()

	if se, ok := ev.(realtime.ServerError); ok {
		w.view.Notice(se.Message)
	}
	if d.Change == TornDown && w.rt.Connected() {
		ctx, cancel := context.WithTimeout(context.Background(), w.cfg.EmitTimeout)
		defer cancel()
		if err := w.rt.LeaveRoom(ctx, room, viewer.ID); err != nil {
			w.log.Warn().Err(err).Msg("[chat] failed to leave room after kick")
		}
	}
}

// Close leaves the open room and shuts the realtime channel.
func (w *Workspace) Close(ctx context.Context) {
	w.mu.Lock()
	room := w.state.ActiveRoom()
	viewer := w.state.Viewer()
	w.mu.Unlock()

	if room != 0 && w.rt.Connected() {
		if err := w.rt.LeaveRoom(ctx, room, viewer.ID); err != nil {
			w.log.Debug().Err(err).Msg("[chat] leave on close failed")
		}
	}
	if err := w.rt.Close(); err != nil {
		w.log.Debug().Err(err).Msg("[chat] realtime close failed")
	}
}

func (w *Workspace) fail(ctx context.Context, title string, err error) {
	if errors.Is(err, api.ErrSessionExpired) {
		w.dialogs.Error(ctx, "Session expired", "Your session has expired. Please log in again.")
		return
	}
	w.log.Warn().Err(err).Msg("[chat] " + strings.ToLower(title))
	w.dialogs.Error(ctx, title, err.Error())
}

func isBanned(err error) bool {
	var se *api.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return strings.Contains(strings.ToLower(se.Detail), "banned")
}

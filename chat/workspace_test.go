package chat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"spaces-client/api"
	"spaces-client/models"
	"spaces-client/realtime"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api     *fakeAPI
	rt      *fakeRT
	view    *fakeView
	dialogs *fakeDialogs
	session *fakeSession
	ws      *Workspace
}

func newHarness(t *testing.T, connected bool) *harness {
	t.Helper()
	h := &harness{
		api:     newFakeAPI(),
		rt:      &fakeRT{},
		view:    &fakeView{},
		dialogs: &fakeDialogs{confirm: true},
		session: &fakeSession{token: "tok"},
	}
	if !connected {
		h.rt.connectErr = realtime.ErrNotConnected
	}
	h.ws = NewWorkspace(h.api, h.rt, h.view, h.dialogs, h.session, Config{}, zerolog.Nop())
	require.NoError(t, h.ws.Start(context.Background()))
	return h
}

func (h *harness) messages() []models.ID {
	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()
	return ids(h.ws.state.Messages())
}

func TestStartCachesUserAndConnects(t *testing.T) {
	h := newHarness(t, true)
	require.NotNil(t, h.session.cached)
	assert.Equal(t, "bob", h.session.cached.Nickname)
	assert.True(t, h.rt.Connected())
	assert.NotNil(t, h.rt.onEvent)
	assert.Equal(t, 1, h.view.count("Spaces"))
}

func TestSelectSpaceLeavesPreviousRoom(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	require.NoError(t, h.ws.SelectSpace(ctx, "General"))
	assert.Equal(t, []models.ID{1}, h.view.rendered)
	assert.Equal(t, models.ID(10), h.ws.ActiveSpace())
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, h.ws.MemberNicknames())

	require.NoError(t, h.ws.SelectSpace(ctx, "11"))
	assert.Equal(t, []models.ID{50}, h.view.rendered)
	assert.Equal(t, []string{"join_room", "leave_room", "join_room"}, h.rt.kinds())
	assert.Equal(t, models.ID(100), h.rt.emits[1].room)
}

func TestSelectSpaceValidation(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	assert.ErrorIs(t, h.ws.SelectSpace(ctx, "nope"), ErrSpaceNotFound)
	assert.ErrorIs(t, h.ws.SelectSpace(ctx, "Draft"), ErrSpaceHasNoChat)
	assert.Equal(t, 0, h.api.called("JoinSpace"))
	assert.Len(t, h.dialogs.warnings, 2)
}

func TestBannedJoinAbortsWithoutStateChange(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))

	h.api.joinErr = &api.ServerError{StatusCode: 403, Detail: "You are banned from this space"}
	err := h.ws.SelectSpace(ctx, "Random")
	assert.ErrorIs(t, err, ErrBanned)
	require.Len(t, h.dialogs.errors, 1)
	assert.Equal(t, models.ID(10), h.ws.ActiveSpace())
	assert.Equal(t, []models.ID{1}, h.messages())
	assert.Equal(t, []string{"join_room"}, h.rt.kinds())
}

func TestAlreadyMemberJoinErrorIsIgnored(t *testing.T) {
	h := newHarness(t, true)
	h.api.joinErr = &api.ServerError{StatusCode: 400, Detail: "Already a participant"}
	require.NoError(t, h.ws.SelectSpace(context.Background(), "General"))
	assert.Empty(t, h.dialogs.errors)
	assert.Equal(t, []models.ID{1}, h.messages())
}

func TestStaleHistoryNotRendered(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	h.api.onMessages = func() {
		h.api.onMessages = nil
		h.ws.LeaveRoom(ctx)
	}

	require.NoError(t, h.ws.SelectSpace(ctx, "General"))
	assert.Equal(t, 0, h.view.count("Room"))
	assert.Empty(t, h.messages())
	assert.Equal(t, 0, h.api.called("Participants"))
}

func TestSendOverRealtimeWaitsForEcho(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))

	require.NoError(t, h.ws.Send(ctx, "  hey  "))
	assert.Equal(t, 0, h.api.called("SendMessage"))
	last := h.rt.emits[len(h.rt.emits)-1]
	assert.Equal(t, "send_message", last.kind)
	assert.Equal(t, "hey", last.text)
	assert.Equal(t, []models.ID{1}, h.messages())

	echo := realtime.NewMessage{RoomID: 100, Message: models.Message{ID: 3, UserID: userB, Content: "hey"}}
	h.ws.HandleEvent(echo)
	h.ws.HandleEvent(echo)
	assert.Equal(t, []models.ID{1, 3}, h.messages())
	assert.Equal(t, 1, h.view.count("AppendMessage"))
}

func TestScenarioFallbackSend(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))

	h.ws.HandleEvent(realtime.NewMessage{RoomID: 100, Message: models.Message{ID: 2, UserID: userA, Content: "yo"}})
	assert.Equal(t, []models.ID{1, 2}, h.messages())

	h.ws.HandleEvent(realtime.MessageDeleted{RoomID: 100, MessageID: 1, UserID: userA})
	assert.Equal(t, []models.ID{2}, h.messages())

	rooms := h.view.count("Room")
	require.NoError(t, h.ws.Send(ctx, "hey"))
	assert.Equal(t, 1, h.api.called("SendMessage"))
	assert.Equal(t, []models.ID{2, 3}, h.messages())
	assert.Equal(t, rooms+1, h.view.count("Room"), "fallback send re-renders the room")
	assert.Equal(t, []models.ID{2, 3}, h.view.rendered)
}

func TestSendFailureLeavesStateAlone(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))

	h.api.sendErr = &api.ServerError{StatusCode: 500, Detail: "server error"}
	assert.Error(t, h.ws.Send(ctx, "hey"))
	assert.Equal(t, []models.ID{1}, h.messages())
	assert.Equal(t, []string{"Message not sent: server error"}, h.dialogs.errors)

	assert.ErrorIs(t, h.ws.Send(ctx, "   "), ErrEmptyMessage)
}

func TestSessionExpiryDuringSend(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))

	h.api.sendErr = api.ErrSessionExpired
	assert.ErrorIs(t, h.ws.Send(ctx, "hey"), api.ErrSessionExpired)
	require.Len(t, h.dialogs.errors, 1)
	assert.Contains(t, h.dialogs.errors[0], "Session expired")
}

func TestEditBroadcastOnlyWhenConnected(t *testing.T) {
	for _, connected := range []bool{true, false} {
		h := newHarness(t, connected)
		ctx := context.Background()
		h.api.history[100] = []models.Message{{ID: 1, UserID: userB, Content: "mine"}, {ID: 2, UserID: userA, Content: "theirs"}}
		require.NoError(t, h.ws.SelectSpace(ctx, "General"))

		require.NoError(t, h.ws.Edit(ctx, 1, "fixed"))
		assert.Equal(t, 1, h.api.called("UpdateMessage"))
		assert.Equal(t, 1, h.view.count("UpdateMessage"))

		m, _ := h.ws.state.Message(1)
		assert.Equal(t, "fixed", m.Content)

		kinds := h.rt.kinds()
		if connected {
			assert.Equal(t, "edit_message", kinds[len(kinds)-1])
		} else {
			assert.Empty(t, kinds)
		}

		assert.ErrorIs(t, h.ws.Edit(ctx, 2, "hijack"), ErrNotYourMessage)
		assert.NoError(t, h.ws.Edit(ctx, 1, "fixed"), "unchanged edit is a no-op")
		assert.Equal(t, 1, h.api.called("UpdateMessage"))
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	h.api.history[100] = []models.Message{{ID: 1, UserID: userB}, {ID: 2, UserID: userB}}
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))

	h.dialogs.confirm = false
	assert.ErrorIs(t, h.ws.Delete(ctx, 1), ErrCancelled)
	assert.Equal(t, 0, h.api.called("DeleteMessage"))

	h.dialogs.confirm = true
	require.NoError(t, h.ws.Delete(ctx, 1))
	assert.Equal(t, []models.ID{2}, h.messages())
	kinds := h.rt.kinds()
	assert.Equal(t, "delete_message", kinds[len(kinds)-1])

	h.ws.HandleEvent(realtime.MessageDeleted{RoomID: 100, MessageID: 2, UserID: userB})
	assert.Equal(t, []models.ID{2}, h.messages(), "own delete echo ignored")
}

func TestReactInstallsServerAggregate(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))

	require.NoError(t, h.ws.React(ctx, 1, "👍"))
	m, _ := h.ws.state.Message(1)
	require.NotNil(t, m.MyReaction)
	assert.Equal(t, "👍", *m.MyReaction)
	assert.Equal(t, 1, h.view.count("UpdateReactions"))

	assert.ErrorIs(t, h.ws.React(ctx, 404, "👍"), ErrMessageNotFound)
}

func TestUploadValidatesBeforeNetwork(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))
	dir := t.TempDir()

	bad := filepath.Join(dir, "tool.exe")
	require.NoError(t, os.WriteFile(bad, []byte("MZ\x90\x00binary"), 0o600))
	assert.ErrorIs(t, h.ws.Upload(ctx, bad), models.ErrUnsupportedFileType)
	assert.Equal(t, 0, h.api.called("UploadAttachment"))
	assert.Len(t, h.dialogs.warnings, 1)

	h.ws.cfg.MaxUploadSize = 4
	big := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(big, []byte("too large"), 0o600))
	assert.ErrorIs(t, h.ws.Upload(ctx, big), models.ErrFileTooLarge)
	assert.Equal(t, 0, h.api.called("UploadAttachment"))

	h.ws.cfg.MaxUploadSize = 1 << 20
	require.NoError(t, h.ws.Upload(ctx, big))
	assert.Equal(t, []string{"too large"}, h.api.uploaded)
	assert.Equal(t, []models.ID{1, 77}, h.messages())
}

func TestKickedSelfReturnsToEmptyView(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))

	h.ws.HandleEvent(realtime.MemberKicked{RoomID: 100, UserID: userB, By: userA})
	assert.Equal(t, models.ID(0), h.ws.ActiveSpace())
	assert.Empty(t, h.messages())
	assert.Equal(t, 1, h.view.count("Empty"))
	require.Len(t, h.view.notices, 1)
	assert.Contains(t, h.view.notices[0], "General")
	kinds := h.rt.kinds()
	assert.Equal(t, "leave_room", kinds[len(kinds)-1])

	h.ws.HandleEvent(realtime.NewMessage{RoomID: 100, Message: models.Message{ID: 9}})
	assert.Empty(t, h.messages())
}

func TestKickRespectsRank(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	mod := models.ID(7)
	h.api.roles = []models.Role{{ID: mod, Name: "moderator", Priority: 10, Permissions: []models.Permission{models.PermKickMembers}}}
	h.api.members[1].RoleID = &mod
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))

	assert.ErrorIs(t, h.ws.Kick(ctx, "alice"), ErrInsufficientRank)
	assert.ErrorIs(t, h.ws.Ban(ctx, "carol", "spam"), ErrInsufficientRank)
	assert.ErrorIs(t, h.ws.Kick(ctx, "dave"), ErrMemberNotFound)
	assert.Equal(t, 0, h.api.called("Kick"))

	require.NoError(t, h.ws.Kick(ctx, "@carol"))
	assert.Equal(t, 1, h.api.called("Kick"))
	assert.ElementsMatch(t, []string{"alice", "bob"}, h.ws.MemberNicknames())
}

func TestStatusAndProfile(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))

	assert.ErrorIs(t, h.ws.SetStatus(ctx, "sleepy"), ErrInvalidInput)
	assert.Equal(t, 0, h.api.called("SetStatus"))
	require.NoError(t, h.ws.SetStatus(ctx, models.StatusDND))
	assert.Equal(t, models.StatusDND, h.ws.Viewer().Status)

	h.ws.ApplyStatuses([]models.UserStatus{{UserID: userA, Status: models.StatusOnline}})
	require.NoError(t, h.ws.Profile(ctx, "@alice"))
	assert.Equal(t, "alice/admin", h.view.profile)
	require.NoError(t, h.ws.Profile(ctx, "carol"))
	assert.Equal(t, "carol/member", h.view.profile)
}

func TestCreateSpaceRequiresName(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	assert.ErrorIs(t, h.ws.CreateSpace(ctx, "  ", ""), ErrInvalidInput)
	assert.Equal(t, 0, h.api.called("CreateSpace"))

	require.NoError(t, h.ws.CreateSpace(ctx, "Lounge", "chill"))
	require.NoError(t, h.ws.SelectSpace(ctx, "lounge"))
}

func TestCloseLeavesRoom(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.ws.SelectSpace(ctx, "General"))
	h.ws.Close(ctx)
	kinds := h.rt.kinds()
	assert.Equal(t, "leave_room", kinds[len(kinds)-1])
	assert.False(t, h.rt.Connected())
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"spaces-client/api"
	"spaces-client/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkspace struct {
	calls     []string
	nicknames []string
	err       error
}

func (f *fakeWorkspace) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeWorkspace) Viewer() models.User { return models.User{ID: 1, Nickname: "me"} }

func (f *fakeWorkspace) MemberNicknames() []string { return f.nicknames }

func (f *fakeWorkspace) ReloadSpaces(ctx context.Context) error { return f.record("spaces") }

func (f *fakeWorkspace) SelectSpace(ctx context.Context, q string) error {
	return f.record("join %s", q)
}

func (f *fakeWorkspace) Send(ctx context.Context, text string) error {
	return f.record("send %s", text)
}

func (f *fakeWorkspace) Edit(ctx context.Context, id models.ID, text string) error {
	return f.record("edit %s %s", id, text)
}

func (f *fakeWorkspace) Delete(ctx context.Context, id models.ID) error {
	return f.record("delete %s", id)
}

func (f *fakeWorkspace) React(ctx context.Context, id models.ID, r string) error {
	return f.record("react %s %s", id, r)
}

func (f *fakeWorkspace) Upload(ctx context.Context, path string) error {
	return f.record("upload %s", path)
}

func (f *fakeWorkspace) Search(ctx context.Context, q string) error {
	return f.record("search %s", q)
}

func (f *fakeWorkspace) Members(ctx context.Context) error { return f.record("members") }

func (f *fakeWorkspace) Kick(ctx context.Context, nick string) error {
	return f.record("kick %s", nick)
}

func (f *fakeWorkspace) Ban(ctx context.Context, nick, reason string) error {
	return f.record("ban %s %s", nick, reason)
}

func (f *fakeWorkspace) SetStatus(ctx context.Context, s models.Status) error {
	return f.record("status %s", s)
}

func (f *fakeWorkspace) Profile(ctx context.Context, nick string) error {
	return f.record("profile %s", nick)
}

func (f *fakeWorkspace) Notifications(ctx context.Context, markRead bool) error {
	return f.record("notifications %t", markRead)
}

func (f *fakeWorkspace) CreateSpace(ctx context.Context, name, desc string) error {
	return f.record("create %s|%s", name, desc)
}

func (f *fakeWorkspace) LeaveRoom(ctx context.Context) { _ = f.record("leave") }

type fakePrompter struct {
	warnings []string
	answer   string
	asked    []string
}

func (p *fakePrompter) Warning(ctx context.Context, title, message string) {
	p.warnings = append(p.warnings, title+": "+message)
}

func (p *fakePrompter) Prompt(ctx context.Context, title, message, def string) (string, error) {
	p.asked = append(p.asked, def)
	if p.answer == "" {
		return def, nil
	}
	return p.answer, nil
}

func TestDispatchRoutesCommands(t *testing.T) {
	ctx := context.Background()
	ws := &fakeWorkspace{}
	d := &fakePrompter{}
	var out bytes.Buffer

	lines := []string{
		"hello :wave:",
		"/join General",
		"/spaces",
		"/edit 4 fixed",
		"/delete #5",
		"/react 6 :fire:",
		"/upload cat.png",
		"/search plan",
		"/members",
		"/kick bob",
		"/ban bob spam",
		"/status away",
		"/profile",
		"/profile alice",
		"/notifications read",
		"/create Club | books",
		"/leave",
		"   ",
	}
	for _, l := range lines {
		quit, err := dispatch(ctx, ws, d, &out, l)
		require.NoError(t, err)
		assert.False(t, quit, l)
	}

	assert.Equal(t, []string{
		"send hello 👋",
		"join General",
		"spaces",
		"edit 4 fixed",
		"delete 5",
		"react 6 🔥",
		"upload cat.png",
		"search plan",
		"members",
		"kick bob",
		"ban bob spam",
		"status away",
		"profile me",
		"profile alice",
		"notifications true",
		"create Club|books",
		"leave",
	}, ws.calls)
	assert.Empty(t, d.warnings)
}

func TestDispatchQuitAndHelp(t *testing.T) {
	ctx := context.Background()
	ws := &fakeWorkspace{}
	var out bytes.Buffer

	quit, err := dispatch(ctx, ws, &fakePrompter{}, &out, "/help")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, out.String(), "/edit <message id> <new text>")

	quit, err = dispatch(ctx, ws, &fakePrompter{}, &out, "/quit")
	require.NoError(t, err)
	assert.True(t, quit)
	assert.Empty(t, ws.calls)
}

func TestDispatchWarnsOnBadInput(t *testing.T) {
	ws := &fakeWorkspace{}
	d := &fakePrompter{}

	_, err := dispatch(context.Background(), ws, d, &bytes.Buffer{}, "/edit nope")
	require.NoError(t, err)
	_, err = dispatch(context.Background(), ws, d, &bytes.Buffer{}, "/teleport")
	require.NoError(t, err)

	require.Len(t, d.warnings, 2)
	assert.Contains(t, d.warnings[0], "usage: /edit")
	assert.Contains(t, d.warnings[1], "unknown command")
	assert.Empty(t, ws.calls)
}

func TestDispatchStopsOnExpiredSession(t *testing.T) {
	ws := &fakeWorkspace{err: fmt.Errorf("load: %w", api.ErrSessionExpired)}
	quit, err := dispatch(context.Background(), ws, &fakePrompter{}, &bytes.Buffer{}, "hi")
	assert.True(t, quit)
	assert.ErrorIs(t, err, api.ErrSessionExpired)

	ws.err = &api.ServerError{StatusCode: 500, Detail: "boom"}
	quit, err = dispatch(context.Background(), ws, &fakePrompter{}, &bytes.Buffer{}, "hi")
	assert.False(t, quit)
	assert.NoError(t, err)
}

func TestDispatchCompletesMentions(t *testing.T) {
	ctx := context.Background()
	ws := &fakeWorkspace{nicknames: []string{"alice", "bob", "bobby"}}
	d := &fakePrompter{}

	_, err := dispatch(ctx, ws, d, &bytes.Buffer{}, "thanks @al\t")
	require.NoError(t, err)
	assert.Equal(t, []string{"thanks @alice"}, d.asked)
	assert.Equal(t, []string{"send thanks @alice"}, ws.calls)

	_, err = dispatch(ctx, ws, d, &bytes.Buffer{}, "ping @bo\t")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mention: Did you mean @bob, @bobby?"}, d.warnings)

	_, err = dispatch(ctx, ws, d, &bytes.Buffer{}, "ping @zed\t")
	require.NoError(t, err)
	assert.Contains(t, d.warnings[1], "Nobody here matches @zed.")
	assert.Len(t, ws.calls, 1)
}

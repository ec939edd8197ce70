// Package render draws workspace state on a terminal. It only reflects what
// it is handed; it never fetches and never reorders.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"spaces-client/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type styles struct {
	header   lipgloss.Style
	meta     lipgloss.Style
	text     lipgloss.Style
	self     lipgloss.Style
	reaction lipgloss.Style
	notice   lipgloss.Style
	active   lipgloss.Style
	box      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:   r.NewStyle().Foreground(lipgloss.Color("231")).Bold(true),
		meta:     r.NewStyle().Foreground(lipgloss.Color("242")),
		text:     r.NewStyle().Foreground(lipgloss.Color("255")),
		self:     r.NewStyle().Foreground(lipgloss.Color("#7289da")).Bold(true),
		reaction: r.NewStyle().Foreground(lipgloss.Color("220")),
		notice:   r.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		active:   r.NewStyle().Foreground(lipgloss.Color("#43b581")).Bold(true),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
	}
}

// Terminal implements the workspace view on top of an io.Writer. Colour is
// only emitted when the writer is a terminal.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	r   *lipgloss.Renderer
	st  styles
	now func() time.Time
}

func New(out io.Writer) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{out: out, r: r, st: newStyles(r), now: time.Now}
}

func (t *Terminal) write(lines ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, l := range lines {
		fmt.Fprintln(t.out, l)
	}
}

func (t *Terminal) Spaces(spaces []models.Space, active models.ID) {
	lines := []string{t.st.header.Render("Spaces")}
	if len(spaces) == 0 {
		lines = append(lines, t.st.meta.Render("  You have not joined any spaces yet."))
	}
	for _, s := range spaces {
		marker, name := "  ", t.r.NewStyle()
		if s.ID == active {
			marker, name = "> ", t.st.active
		}
		line := marker + name.Render(Clean(s.Name)) + t.st.meta.Render(" #"+s.ID.String())
		if !s.HasChat() {
			line += t.st.meta.Render(" (no chat)")
		}
		lines = append(lines, line)
	}
	t.write(lines...)
}

func (t *Terminal) Room(space models.Space, msgs []models.Message, viewer models.User) {
	title := t.st.header.Render("# " + Clean(space.Name))
	if space.Description != "" {
		title += t.st.meta.Render("  " + Clean(space.Description))
	}
	lines := []string{"", title}
	if len(msgs) == 0 {
		lines = append(lines, t.st.meta.Render("No messages yet. Say hello!"))
	}
	for _, m := range msgs {
		lines = append(lines, t.message(m, viewer)...)
	}
	t.write(lines...)
}

func (t *Terminal) Empty() {
	t.write("", t.st.meta.Render("Select a space to start chatting."))
}

func (t *Terminal) AppendMessage(msg models.Message, viewer models.User) {
	t.write(t.message(msg, viewer)...)
}

func (t *Terminal) UpdateMessage(msg models.Message, viewer models.User) {
	lines := t.message(msg, viewer)
	lines[0] = t.st.meta.Render("edited ") + lines[0]
	t.write(lines...)
}

func (t *Terminal) RemoveMessage(id models.ID) {
	t.write(t.st.meta.Render(fmt.Sprintf("message #%s was deleted", id)))
}

func (t *Terminal) UpdateReactions(msg models.Message, _ models.User) {
	line := ReactionsLine(msg.Reactions, msg.MyReaction)
	if line == "" {
		line = "no reactions"
	}
	t.write(t.st.meta.Render(fmt.Sprintf("#%s reactions: ", msg.ID)) + t.st.reaction.Render(line))
}

func (t *Terminal) Members(members []models.Participant, roles *models.RoleBook, statuses map[models.ID]models.Status) {
	lines := []string{t.st.header.Render(fmt.Sprintf("Members (%d)", len(members)))}
	for _, m := range members {
		status, ok := statuses[m.ID]
		if !ok {
			status = m.Status
		}
		dot := t.r.NewStyle().Foreground(StatusColor(status)).Render(StatusDot(status))
		name := t.r.NewStyle().Foreground(AvatarColor(m.ID)).Render(Clean(m.User.Name()))
		role := roles.RoleOf(m.ID).Name
		if roles != nil && m.ID == roles.AdminID {
			role = "admin"
		}
		lines = append(lines, fmt.Sprintf("  %s %s %s", dot, name, t.st.meta.Render("@"+Clean(m.Nickname)+" · "+role)))
	}
	t.write(lines...)
}

func (t *Terminal) SearchResults(query string, msgs []models.Message, viewer models.User) {
	lines := []string{t.st.header.Render(fmt.Sprintf("Results for %q (%d)", query, len(msgs)))}
	if len(msgs) == 0 {
		lines = append(lines, t.st.meta.Render("  Nothing found."))
	}
	for _, m := range msgs {
		lines = append(lines, t.message(m, viewer)...)
	}
	t.write(lines...)
}

func (t *Terminal) Profile(u models.User, role string) {
	status := u.Status
	if status == "" {
		status = models.StatusOffline
	}
	body := []string{
		t.r.NewStyle().Foreground(AvatarColor(u.ID)).Bold(true).Render(Clean(u.Name())),
		t.st.meta.Render("@" + Clean(u.Nickname)),
		t.r.NewStyle().Foreground(StatusColor(status)).Render(StatusDot(status) + " " + status.Label()),
	}
	if role != "" {
		body = append(body, "Role: "+role)
	}
	if u.Bio != "" {
		body = append(body, "", Clean(u.Bio))
	}
	t.write(t.st.box.Render(strings.Join(body, "\n")))
}

func (t *Terminal) Notifications(list []models.Notification) {
	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	lines := []string{t.st.header.Render(fmt.Sprintf("Notifications (%d unread)", unread))}
	if len(list) == 0 {
		lines = append(lines, t.st.meta.Render("  You're all caught up."))
	}
	for _, n := range list {
		marker := "  "
		if !n.IsRead {
			marker = t.st.active.Render("• ")
		}
		line := marker + t.st.text.Render(Clean(n.Title))
		if n.Content != "" {
			line += " " + Clean(n.Content)
		}
		if !n.CreatedAt.IsZero() {
			line += t.st.meta.Render(" · " + humanize.RelTime(n.CreatedAt.Time, t.now(), "ago", "from now"))
		}
		lines = append(lines, line)
	}
	t.write(lines...)
}

func (t *Terminal) Notice(text string) {
	t.write(t.st.notice.Render("* " + text))
}

func (t *Terminal) message(m models.Message, viewer models.User) []string {
	author := Author(m, viewer)
	nameStyle := t.r.NewStyle().Foreground(AvatarColor(m.UserID)).Bold(true)
	if author == "You" {
		nameStyle = t.st.self
	}
	head := t.st.meta.Render(fmt.Sprintf("#%s [%s] ", m.ID, Clock(m))) + nameStyle.Render(author) + ":"
	if content := Clean(m.Content); content != "" {
		head += " " + t.st.text.Render(content)
	}
	lines := []string{head}
	if a := AttachmentLine(m); a != "" {
		lines = append(lines, "    "+t.st.meta.Render(a))
	}
	if r := ReactionsLine(m.Reactions, m.MyReaction); r != "" {
		lines = append(lines, "    "+t.st.reaction.Render(r))
	}
	return lines
}

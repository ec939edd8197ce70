package render

import (
	"fmt"
	"html"
	"math"
	"strings"

	"spaces-client/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
)

// Everything the server relays is user supplied; strip markup before it
// reaches the terminal.
var textPolicy = bluemonday.StrictPolicy()

// Clean strips markup and control characters and decodes entities.
func Clean(s string) string {
	s = html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// Author is "You" for the viewer's own messages.
func Author(msg models.Message, viewer models.User) string {
	if viewer.ID != 0 && msg.UserID == viewer.ID {
		return "You"
	}
	return Clean(msg.AuthorName())
}

func Clock(msg models.Message) string {
	return msg.Time().Local().Format("15:04")
}

// MessageLine is the unstyled one-line form: "#12 [09:41] alice: hi".
func MessageLine(msg models.Message, viewer models.User) string {
	line := fmt.Sprintf("#%s [%s] %s:", msg.ID, Clock(msg), Author(msg, viewer))
	if content := Clean(msg.Content); content != "" {
		line += " " + content
	}
	return line
}

// AttachmentLine describes the attachment or returns "" when there is none.
func AttachmentLine(msg models.Message) string {
	a := msg.Attachment
	if a == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", a.Kind(msg.Type), Clean(a.Name()))
	if a.FileSize > 0 {
		fmt.Fprintf(&b, " (%s)", humanize.Bytes(uint64(a.FileSize)))
	}
	if a.FileURL != "" {
		b.WriteString(" " + a.FileURL)
	}
	return b.String()
}

// ReactionsLine lists reaction counts; the viewer's own reaction is bracketed.
func ReactionsLine(groups []models.ReactionGroup, mine *string) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.Count <= 0 {
			continue
		}
		part := fmt.Sprintf("%s %d", g.Reaction, g.Count)
		if mine != nil && *mine == g.Reaction {
			part = "[" + part + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ")
}

func StatusDot(s models.Status) string {
	switch s {
	case models.StatusOnline:
		return "●"
	case models.StatusAway:
		return "◐"
	case models.StatusDND:
		return "⊖"
	default:
		return "○"
	}
}

func StatusColor(s models.Status) lipgloss.Color {
	switch s {
	case models.StatusOnline:
		return lipgloss.Color("#43b581")
	case models.StatusAway:
		return lipgloss.Color("#faa61a")
	case models.StatusDND:
		return lipgloss.Color("#f04747")
	default:
		return lipgloss.Color("#747f8d")
	}
}

// AvatarColor spreads user ids around the hue wheel by the golden angle so
// neighbouring ids get distinct colours.
func AvatarColor(id models.ID) lipgloss.Color {
	hue := math.Mod(float64(id)*137.5, 360)
	if hue < 0 {
		hue += 360
	}
	r, g, b := hslToRGB(hue, 0.65, 0.55)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return to(r), to(g), to(b)
}

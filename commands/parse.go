package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"spaces-client/models"
)

type Name string

const (
	Say           Name = "say"
	Join          Name = "join"
	Spaces        Name = "spaces"
	Edit          Name = "edit"
	Delete        Name = "delete"
	React         Name = "react"
	Upload        Name = "upload"
	Search        Name = "search"
	Members       Name = "members"
	Kick          Name = "kick"
	Ban           Name = "ban"
	Status        Name = "status"
	Profile       Name = "profile"
	Notifications Name = "notifications"
	Create        Name = "create"
	Leave         Name = "leave"
	Help          Name = "help"
	Quit          Name = "quit"
)

var ErrUnknownCommand = errors.New("unknown command")

// UsageError reports a known command with missing or malformed arguments.
type UsageError struct {
	Name  Name
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// Command is one parsed input line. ID is set for commands that target a
// message; Arg holds the first word and Text everything after it.
type Command struct {
	Name Name
	ID   models.ID
	Arg  string
	Text string
}

var usage = map[Name]string{
	Join:          "/join <space>",
	Spaces:        "/spaces",
	Edit:          "/edit <message id> <new text>",
	Delete:        "/delete <message id>",
	React:         "/react <message id> <emoji or :shortcode:>",
	Upload:        "/upload <path>",
	Search:        "/search <text>",
	Members:       "/members",
	Kick:          "/kick <nickname>",
	Ban:           "/ban <nickname> [reason]",
	Status:        "/status <online|away|dnd|offline>",
	Profile:       "/profile [nickname]",
	Notifications: "/notifications [read]",
	Create:        "/create <name> [| description]",
	Leave:         "/leave",
	Help:          "/help",
	Quit:          "/quit",
}

var aliases = map[string]Name{
	"j":      Join,
	"e":      Edit,
	"d":      Delete,
	"r":      React,
	"s":      Search,
	"q":      Quit,
	"exit":   Quit,
	"notifs": Notifications,
}

// Parse turns an input line into a Command. Lines not starting with '/' are
// messages; "//" escapes a message that should start with a slash.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") || strings.HasPrefix(line, "//") {
		text := line
		if strings.HasPrefix(text, "//") {
			text = text[1:]
		}
		return Command{Name: Say, Text: ExpandEmoji(text)}, nil
	}

	word, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)
	word = strings.ToLower(word)

	name := Name(word)
	if alias, ok := aliases[word]; ok {
		name = alias
	}
	if _, ok := usage[name]; !ok {
		return Command{}, fmt.Errorf("%w: /%s", ErrUnknownCommand, word)
	}

	cmd := Command{Name: name}
	bad := &UsageError{Name: name, Usage: usage[name]}

	switch name {
	case Spaces, Members, Leave, Help, Quit:
		return cmd, nil

	case Join, Upload, Search, Kick:
		if rest == "" {
			return Command{}, bad
		}
		cmd.Arg = rest

	case Profile:
		cmd.Arg = strings.TrimPrefix(rest, "@")

	case Notifications:
		if rest != "" && rest != "read" {
			return Command{}, bad
		}
		cmd.Arg = rest

	case Status:
		s := models.Status(strings.ToLower(rest))
		if !s.Valid() {
			return Command{}, bad
		}
		cmd.Arg = string(s)

	case Ban:
		nick, reason, _ := strings.Cut(rest, " ")
		if nick == "" {
			return Command{}, bad
		}
		cmd.Arg = strings.TrimPrefix(nick, "@")
		cmd.Text = strings.TrimSpace(reason)

	case Create:
		n, desc, _ := strings.Cut(rest, "|")
		cmd.Arg = strings.TrimSpace(n)
		cmd.Text = strings.TrimSpace(desc)
		if cmd.Arg == "" {
			return Command{}, bad
		}

	case Edit, Delete, React:
		idText, text, _ := strings.Cut(rest, " ")
		id, err := models.ParseID(idText)
		if err != nil || id <= 0 {
			return Command{}, bad
		}
		cmd.ID = id
		cmd.Text = strings.TrimSpace(text)
		if name != Delete {
			if cmd.Text == "" {
				return Command{}, bad
			}
			cmd.Text = ExpandEmoji(cmd.Text)
		}
	}

	if name == Kick {
		cmd.Arg = strings.TrimPrefix(cmd.Arg, "@")
	}
	return cmd, nil
}

// Usage lists every command, sorted.
func Usage() []string {
	lines := make([]string, 0, len(usage))
	for _, u := range usage {
		lines = append(lines, u)
	}
	sort.Strings(lines)
	return lines
}

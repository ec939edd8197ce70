package commands

import (
	"regexp"
	"sort"
	"strings"
)

var emoji = map[string]string{
	"+1":               "👍",
	"thumbsup":         "👍",
	"-1":               "👎",
	"thumbsdown":       "👎",
	"heart":            "❤️",
	"joy":              "😂",
	"laughing":         "😆",
	"smile":            "😄",
	"slightly_smiling": "🙂",
	"wink":             "😉",
	"open_mouth":       "😮",
	"cry":              "😢",
	"angry":            "😠",
	"thinking":         "🤔",
	"tada":             "🎉",
	"fire":             "🔥",
	"eyes":             "👀",
	"clap":             "👏",
	"pray":             "🙏",
	"rocket":           "🚀",
	"100":              "💯",
	"check":            "✅",
	"x":                "❌",
	"wave":             "👋",
	"ok_hand":          "👌",
	"star":             "⭐",
	"sparkles":         "✨",
	"coffee":           "☕",
	"skull":            "💀",
}

var shortcodePattern = regexp.MustCompile(`:([a-z0-9_+\-]+):`)

// ExpandEmoji replaces known :shortcode: tokens; unknown ones are kept.
func ExpandEmoji(text string) string {
	if !strings.Contains(text, ":") {
		return text
	}
	return shortcodePattern.ReplaceAllStringFunc(text, func(match string) string {
		if e, ok := emoji[strings.Trim(match, ":")]; ok {
			return e
		}
		return match
	})
}

// Shortcodes returns the known shortcodes in alphabetical order.
func Shortcodes() []string {
	codes := make([]string, 0, len(emoji))
	for c := range emoji {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

package commands

import (
	"sort"
	"strings"
)

// CompleteMention returns the nicknames starting with prefix, ignoring case
// and a leading '@'. Exact matches sort first, the rest alphabetically.
func CompleteMention(prefix string, nicknames []string) []string {
	prefix = strings.ToLower(strings.TrimPrefix(prefix, "@"))

	seen := make(map[string]bool, len(nicknames))
	var out []string
	for _, n := range nicknames {
		if n == "" || seen[n] {
			continue
		}
		if strings.HasPrefix(strings.ToLower(n), prefix) {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei := strings.EqualFold(out[i], prefix)
		ej := strings.EqualFold(out[j], prefix)
		if ei != ej {
			return ei
		}
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// CompleteLastMention completes a trailing "@partial" in line when exactly
// one nickname matches, and returns line unchanged otherwise.
func CompleteLastMention(line string, nicknames []string) string {
	i := strings.LastIndexByte(line, '@')
	if i < 0 || strings.ContainsAny(line[i:], " \t") {
		return line
	}
	if i > 0 && line[i-1] != ' ' {
		return line
	}
	matches := CompleteMention(line[i+1:], nicknames)
	if len(matches) != 1 {
		return line
	}
	return line[:i] + "@" + matches[0] + " "
}

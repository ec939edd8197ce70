package models

type ReactionUser struct {
	ID       ID     `json:"id"`
	Nickname string `json:"nickname,omitempty"`
}

// ReactionGroup is the server's aggregate for one emoji on one message.
type ReactionGroup struct {
	Reaction string         `json:"reaction"`
	Count    int            `json:"count"`
	Users    []ReactionUser `json:"users"`
}

func (g ReactionGroup) Has(userID ID) bool {
	for _, u := range g.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

type ReactionRequest struct {
	Reaction string `json:"reaction"`
}

type ReactionsResponse struct {
	MessageID  ID              `json:"message_id"`
	Reactions  []ReactionGroup `json:"reactions"`
	MyReaction *string         `json:"my_reaction,omitempty"`
}

// MyReactionIn scans the aggregate for the viewer. The payload's own
// my_reaction field is never trusted since it belongs to whoever reacted.
func MyReactionIn(groups []ReactionGroup, viewer ID) *string {
	for _, g := range groups {
		if g.Has(viewer) {
			r := g.Reaction
			return &r
		}
	}
	return nil
}

// CloneReactions deep-copies groups so callers never share user slices.
func CloneReactions(groups []ReactionGroup) []ReactionGroup {
	if groups == nil {
		return nil
	}
	out := make([]ReactionGroup, len(groups))
	for i, g := range groups {
		out[i] = ReactionGroup{
			Reaction: g.Reaction,
			Count:    g.Count,
			Users:    append([]ReactionUser(nil), g.Users...),
		}
	}
	return out
}

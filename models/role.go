package models

type Permission string

const (
	PermChangeInfo        Permission = "change_info"
	PermDeleteSpace       Permission = "delete_space"
	PermAddMembers        Permission = "add_members"
	PermBanMembers        Permission = "ban_members"
	PermKickMembers       Permission = "kick_members"
	PermRestrictMembers   Permission = "restrict_members"
	PermPromoteMembers    Permission = "promote_members"
	PermSendMessages      Permission = "send_messages"
	PermSendMedia         Permission = "send_media"
	PermSendStickers      Permission = "send_stickers"
	PermSendFiles         Permission = "send_files"
	PermEditOwnMessages   Permission = "edit_own_messages"
	PermDeleteOwnMessages Permission = "delete_own_messages"
	PermDeleteAnyMessages Permission = "delete_any_messages"
	PermPinMessages       Permission = "pin_messages"
	PermAddReactions      Permission = "add_reactions"
	PermMentionAll        Permission = "mention_all"
	PermCreateInvites     Permission = "create_invites"
)

// DefaultRoleName is reported for members without an assigned role.
const DefaultRoleName = "member"

var defaultPermissions = []Permission{
	PermSendMessages, PermSendMedia, PermSendStickers, PermSendFiles,
	PermEditOwnMessages, PermDeleteOwnMessages, PermAddReactions,
}

type Role struct {
	ID          ID           `json:"id"`
	Name        string       `json:"name"`
	Color       string       `json:"color,omitempty"`
	Priority    int          `json:"priority"`
	Permissions []Permission `json:"permissions"`
}

func (r Role) Has(p Permission) bool {
	for _, have := range r.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

type CreateRoleRequest struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
	Color       *string      `json:"color"`
}

type PermissionsResponse struct {
	Permissions []Permission `json:"permissions"`
	IsAdmin     bool         `json:"is_admin"`
}

// RoleBook resolves roles within one space.
type RoleBook struct {
	AdminID     ID
	Roles       map[ID]Role
	Assignments map[ID]ID
}

func NewRoleBook(adminID ID, roles []Role, members []Participant) *RoleBook {
	b := &RoleBook{
		AdminID:     adminID,
		Roles:       make(map[ID]Role, len(roles)),
		Assignments: make(map[ID]ID),
	}
	for _, r := range roles {
		b.Roles[r.ID] = r
	}
	for _, m := range members {
		if m.RoleID != nil {
			b.Assignments[m.ID] = *m.RoleID
		}
	}
	return b
}

// RoleOf returns the member's role, or the implicit member role with
// priority 0 when none is assigned or the assignment is dangling.
func (b *RoleBook) RoleOf(userID ID) Role {
	if b != nil {
		if rid, ok := b.Assignments[userID]; ok {
			if r, ok := b.Roles[rid]; ok {
				return r
			}
		}
	}
	return Role{Name: DefaultRoleName, Permissions: defaultPermissions}
}

// Can reports whether actor holds p. The space admin holds everything.
func (b *RoleBook) Can(actor ID, p Permission) bool {
	if b != nil && actor == b.AdminID {
		return true
	}
	return b.RoleOf(actor).Has(p)
}

// CanModerate reports whether actor may apply p to target: actor must hold
// the permission and strictly outrank the target. Nobody moderates the admin.
func (b *RoleBook) CanModerate(actor, target ID, p Permission) bool {
	if b == nil || actor == target || target == b.AdminID {
		return false
	}
	if actor == b.AdminID {
		return true
	}
	if !b.Can(actor, p) {
		return false
	}
	return b.RoleOf(actor).Priority > b.RoleOf(target).Priority
}

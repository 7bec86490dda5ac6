package permission

import "github.com/turtl/core/pkg/terror"

// Permission names one mutation the dispatcher may gate on space membership.
type Permission string

const (
	AddSpace    Permission = "add_space"
	EditSpace   Permission = "edit_space"
	DeleteSpace Permission = "delete_space"
	AddBoard    Permission = "add_board"
	EditBoard   Permission = "edit_board"
	DeleteBoard Permission = "delete_board"
	AddNote     Permission = "add_note"
	EditNote    Permission = "edit_note"
	DeleteNote  Permission = "delete_note"
)

// Role is a user's standing within one space.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// grants is the rule table: owners may do anything; admins may not delete
// or transfer the space itself; members may add/edit but never delete.
var grants = map[Role]map[Permission]bool{
	RoleOwner: {
		AddSpace: true, EditSpace: true, DeleteSpace: true,
		AddBoard: true, EditBoard: true, DeleteBoard: true,
		AddNote: true, EditNote: true, DeleteNote: true,
	},
	RoleAdmin: {
		EditSpace: true,
		AddBoard:  true, EditBoard: true, DeleteBoard: true,
		AddNote: true, EditNote: true, DeleteNote: true,
	},
	RoleMember: {
		AddBoard: true, EditBoard: true,
		AddNote: true, EditNote: true,
	},
}

// Membership resolves a user's role within a space. pkg/profile implements
// this over its in-memory space membership table.
type Membership interface {
	RoleInSpace(spaceID, userID string) (Role, bool)
}

// Check returns nil if userID holds perm within spaceID, terror.BadValue
// otherwise (not a member, or role doesn't grant the permission).
func Check(m Membership, spaceID, userID string, perm Permission) error {
	role, ok := m.RoleInSpace(spaceID, userID)
	if !ok {
		return terror.BadValue("user is not a member of this space")
	}
	if !grants[role][perm] {
		return terror.BadValue(string(perm) + ": not permitted for role " + string(role))
	}
	return nil
}

package engine

import "kelasku/server/internal/models"

// rosterOrder is the fixed role display order of the members view.
var rosterOrder = []models.Role{
	models.RoleAdmin,
	models.RoleTeacher,
	models.RoleReceptionist,
	models.RoleStudent,
	models.RoleGuardian,
}

// RosterGroup is one role's section of the members view.
type RosterGroup struct {
	Role    models.Role
	Members []models.Member
}

// GroupMembers partitions a member list by role into the fixed display
// order, omitting empty groups. Pure derivation; membership itself is
// managed elsewhere.
func GroupMembers(members []models.Member) []RosterGroup {
	byRole := make(map[models.Role][]models.Member)
	for _, m := range members {
		byRole[m.Role] = append(byRole[m.Role], m)
	}

	var groups []RosterGroup
	for _, role := range rosterOrder {
		if list := byRole[role]; len(list) > 0 {
			groups = append(groups, RosterGroup{Role: role, Members: list})
		}
	}
	return groups
}

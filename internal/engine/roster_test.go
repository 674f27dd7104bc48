package engine

import (
	"testing"

	"kelasku/server/internal/models"
)

func TestGroupMembers(t *testing.T) {
	members := []models.Member{
		{ID: "s1", Name: "Andi", Role: models.RoleStudent},
		{ID: "t1", Name: "Bu Sari", Role: models.RoleTeacher},
		{ID: "g1", Name: "Pak Budi", Role: models.RoleGuardian},
		{ID: "s2", Name: "Citra", Role: models.RoleStudent},
		{ID: "a1", Name: "Kepala Sekolah", Role: models.RoleAdmin},
	}

	groups := GroupMembers(members)

	wantOrder := []models.Role{models.RoleAdmin, models.RoleTeacher, models.RoleStudent, models.RoleGuardian}
	if len(groups) != len(wantOrder) {
		t.Fatalf("expected %d groups, got %d", len(wantOrder), len(groups))
	}
	for i, role := range wantOrder {
		if groups[i].Role != role {
			t.Errorf("group %d: role = %s, want %s", i, groups[i].Role, role)
		}
	}

	// No receptionists: the group is omitted, not rendered empty
	for _, g := range groups {
		if g.Role == models.RoleReceptionist {
			t.Errorf("empty receptionist group not omitted")
		}
		if len(g.Members) == 0 {
			t.Errorf("group %s is empty", g.Role)
		}
	}

	if len(groups[2].Members) != 2 {
		t.Errorf("expected 2 students, got %d", len(groups[2].Members))
	}
}

func TestGroupMembersEmpty(t *testing.T) {
	if groups := GroupMembers(nil); len(groups) != 0 {
		t.Errorf("expected no groups for empty roster, got %d", len(groups))
	}
}

package engine

import (
	"testing"
	"time"

	"kelasku/server/internal/models"
)

func entry(id, senderID string, st models.SenderType, role models.Role, offset time.Duration) Entry {
	return Entry{Message: models.Message{
		ID:         id,
		SenderID:   senderID,
		SenderType: st,
		SenderRole: role,
		Type:       models.TypeText,
		Content:    "m",
		CreatedAt:  testBase.Add(offset),
	}}
}

func TestGroupingHeaders(t *testing.T) {
	entries := []Entry{
		entry("1", "t1", models.SenderAccount, models.RoleTeacher, 0),
		entry("2", "t1", models.SenderAccount, models.RoleTeacher, time.Minute),
		entry("3", "t1", models.SenderAccount, models.RoleTeacher, 2*time.Minute),
		entry("4", "s1", models.SenderStudent, models.RoleStudent, 3*time.Minute),
		entry("5", "t1", models.SenderAccount, models.RoleTeacher, 4*time.Minute),
	}

	decos := Decorate(entries, Viewer{ID: "x", Role: models.RoleStudent})

	want := []bool{true, false, false, true, true}
	for i, w := range want {
		if decos[i].ShowHeader != w {
			t.Errorf("entry %d: ShowHeader = %v, want %v", i, decos[i].ShowHeader, w)
		}
	}
}

func TestGroupingBreaksOnSenderTypeChange(t *testing.T) {
	// Same sender id but a different party is a different run. An account
	// and a student can share a raw id; the pair is what groups.
	entries := []Entry{
		entry("1", "u1", models.SenderAccount, models.RoleAdmin, 0),
		entry("2", "u1", models.SenderStudent, models.RoleStudent, time.Minute),
	}

	decos := Decorate(entries, Viewer{})
	if !decos[1].ShowHeader {
		t.Errorf("sender-type change did not start a new run")
	}
}

func TestIsOwn(t *testing.T) {
	tests := []struct {
		name       string
		viewer     Viewer
		senderID   string
		senderType models.SenderType
		senderRole models.Role
		want       bool
	}{
		{
			name:   "teacher owns staff message with own id",
			viewer: Viewer{ID: "u1", Role: models.RoleTeacher},
			senderID: "u1", senderType: models.SenderAccount, senderRole: models.RoleTeacher,
			want: true,
		},
		{
			name:   "admin owns message sent under another staff role label",
			viewer: Viewer{ID: "u1", Role: models.RoleAdmin},
			senderID: "u1", senderType: models.SenderAccount, senderRole: models.RoleReceptionist,
			want: true,
		},
		{
			name:   "student does not own staff message with same raw id",
			viewer: Viewer{ID: "u1", Role: models.RoleStudent},
			senderID: "u1", senderType: models.SenderAccount, senderRole: models.RoleTeacher,
			want: false,
		},
		{
			name:   "guardian owns guardian message",
			viewer: Viewer{ID: "g1", Role: models.RoleGuardian},
			senderID: "g1", senderType: models.SenderGuardian, senderRole: models.RoleGuardian,
			want: true,
		},
		{
			name:   "different id is never own",
			viewer: Viewer{ID: "u1", Role: models.RoleTeacher},
			senderID: "u2", senderType: models.SenderAccount, senderRole: models.RoleTeacher,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := models.Message{
				ID:         "m1",
				SenderID:   tt.senderID,
				SenderType: tt.senderType,
				SenderRole: tt.senderRole,
			}
			if got := IsOwn(msg, tt.viewer); got != tt.want {
				t.Errorf("IsOwn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisible(t *testing.T) {
	target := "stu-7"

	broadcast := models.Message{ID: "b1"}
	targeted := models.Message{ID: "t1", TargetStudentID: &target}

	tests := []struct {
		name   string
		viewer Viewer
		msg    models.Message
		want   bool
	}{
		{"broadcast visible to student", Viewer{ID: "stu-1", Role: models.RoleStudent}, broadcast, true},
		{"staff sees targeted", Viewer{ID: "acc-1", Role: models.RoleReceptionist}, targeted, true},
		{"target student sees it", Viewer{ID: "stu-7", Role: models.RoleStudent}, targeted, true},
		{"other student does not", Viewer{ID: "stu-2", Role: models.RoleStudent}, targeted, false},
		{"ward guardian sees it", Viewer{ID: "g1", Role: models.RoleGuardian, WardIDs: []string{"stu-7"}}, targeted, true},
		{"unrelated guardian does not", Viewer{ID: "g2", Role: models.RoleGuardian, WardIDs: []string{"stu-3"}}, targeted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Visible(tt.msg, tt.viewer); got != tt.want {
				t.Errorf("Visible = %v, want %v", got, tt.want)
			}
		})
	}
}

package engine

import "kelasku/server/internal/models"

// Viewer is the current reader's identity, taken from the session context.
type Viewer struct {
	ID   string
	Name string
	Role models.Role

	// WardIDs lists the student ids under a guardian's care, used only for
	// the defensive visibility check.
	WardIDs []string
}

// Decoration is the per-message presentation derived from the sequence. It
// is a pure projection: computing it mutates nothing.
type Decoration struct {
	// ShowHeader marks the start of a consecutive run by one sender:
	// the first message, or a change in the (senderId, senderType) pair.
	ShowHeader bool
	// Own marks the viewer's messages across role families.
	Own bool
}

// Decorate computes grouping and ownership for an ordered sequence.
func Decorate(entries []Entry, viewer Viewer) []Decoration {
	out := make([]Decoration, len(entries))

	for i, e := range entries {
		show := i == 0
		if i > 0 {
			prev := entries[i-1].Message
			show = prev.SenderID != e.Message.SenderID || prev.SenderType != e.Message.SenderType
		}

		out[i] = Decoration{
			ShowHeader: show,
			Own:        IsOwn(e.Message, viewer),
		}
	}

	return out
}

// IsOwn reports whether a message belongs to the viewer. Ownership is a
// cross-type predicate: the sender id must match and the message's sender
// type must be the viewer's own party. The role-to-party mapping is the
// single lookup owned by the models package, because multiple staff roles
// collapse into one sender type on the wire.
func IsOwn(msg models.Message, viewer Viewer) bool {
	return msg.SenderID == viewer.ID &&
		msg.SenderType == models.SenderTypeForRole(viewer.Role)
}

// Visible is the defensive audience check for student-targeted messages.
// Visibility enforcement is a server concern, but a message that slips
// through outside its intended audience is still not rendered: staff see
// everything, the targeted student sees their own, a guardian sees their
// wards', and everyone sees broadcast messages.
func Visible(msg models.Message, viewer Viewer) bool {
	if msg.TargetStudentID == nil {
		return true
	}

	switch models.SenderTypeForRole(viewer.Role) {
	case models.SenderAccount:
		return true
	case models.SenderStudent:
		return viewer.ID == *msg.TargetStudentID
	case models.SenderGuardian:
		for _, ward := range viewer.WardIDs {
			if ward == *msg.TargetStudentID {
				return true
			}
		}
		return false
	}
	return false
}

package models

import "time"

// SenderType identifies which party family a sender belongs to on the wire.
// Multiple staff roles collapse into the single ACCOUNT type.
type SenderType string

const (
	SenderAccount  SenderType = "ACCOUNT"
	SenderStudent  SenderType = "STUDENT"
	SenderGuardian SenderType = "GUARDIAN"
)

// Role is the role label within a sender type.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleTeacher      Role = "TEACHER"
	RoleReceptionist Role = "RECEPTIONIST"
	RoleStudent      Role = "STUDENT"
	RoleGuardian     Role = "GUARDIAN"
)

// SenderTypeForRole maps a role to its wire-level sender type.
func SenderTypeForRole(role Role) SenderType {
	switch role {
	case RoleAdmin, RoleTeacher, RoleReceptionist:
		return SenderAccount
	case RoleStudent:
		return SenderStudent
	case RoleGuardian:
		return SenderGuardian
	default:
		return SenderAccount
	}
}

// MessageType distinguishes free text, files, and structured info cards.
type MessageType string

const (
	TypeText        MessageType = "TEXT"
	TypeFile        MessageType = "FILE"
	TypeExamResult  MessageType = "EXAM_RESULT"
	TypeGrade       MessageType = "GRADE"
	TypeSubjectInfo MessageType = "SUBJECT_INFO"
)

// IsInfoCard reports whether t is one of the structured academic card types.
func (t MessageType) IsInfoCard() bool {
	return t == TypeExamResult || t == TypeGrade || t == TypeSubjectInfo
}

// CanAuthorInfoCards reports whether a role may author the structured
// academic card types. Only elevated staff roles qualify.
func CanAuthorInfoCards(role Role) bool {
	return role == RoleAdmin || role == RoleTeacher
}

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	return t == TypeText || t == TypeFile || t.IsInfoCard()
}

// Message is the canonical chat message. Immutable once the server assigns
// an id; the id is the sole deduplication key.
type Message struct {
	ID              string         `json:"id" db:"id"`
	ConversationID  string         `json:"conversationId" db:"conversation_id"`
	SenderID        string         `json:"senderId" db:"sender_id"`
	SenderType      SenderType     `json:"senderType" db:"sender_type"`
	SenderRole      Role           `json:"senderRole" db:"sender_role"`
	SenderName      string         `json:"senderName" db:"sender_name"` // snapshot at send time
	Type            MessageType    `json:"type" db:"type"`
	Content         string         `json:"content" db:"content"`
	Metadata        map[string]any `json:"metadata,omitempty" db:"metadata"`
	TargetStudentID *string        `json:"targetStudentId,omitempty" db:"target_student_id"`

	// File fields, present only when Type == TypeFile.
	FileID       *string `json:"fileId,omitempty" db:"file_id"`
	FileName     *string `json:"fileName,omitempty" db:"file_name"`
	FileMimeType *string `json:"fileMimeType,omitempty" db:"file_mime_type"`
	FileSize     *int64  `json:"fileSize,omitempty" db:"file_size"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Before reports whether m sorts ahead of other in the global timeline
// ordering: createdAt ascending, id ascending as tiebreak.
func (m *Message) Before(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// Draft is an unsent message payload, prior to server acknowledgment and
// id assignment. ClientID is generated locally and used only for optimistic
// timeline reconciliation; the server ignores it.
type Draft struct {
	ClientID        string         `json:"clientId,omitempty"`
	Content         string         `json:"content"`
	Type            MessageType    `json:"type,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	TargetStudentID *string        `json:"targetStudentId,omitempty"`

	FileID       *string `json:"fileId,omitempty"`
	FileName     *string `json:"fileName,omitempty"`
	FileMimeType *string `json:"fileMimeType,omitempty"`
	FileSize     *int64  `json:"fileSize,omitempty"`
}

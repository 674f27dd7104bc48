package models

import "time"

// Member is a conversation participant, used only for the roster view.
type Member struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Role Role   `json:"role" db:"role"`
}

// User is a login account. Password hashes never leave the server.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Password  string    `json:"-" db:"password_hash"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UserResponse is what we send to clients (without sensitive data)
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// StoredFile is uploaded-file metadata, referenced by FILE messages.
type StoredFile struct {
	ID        string    `json:"fileId" db:"id"`
	Name      string    `json:"fileName" db:"name"`
	MimeType  string    `json:"fileMimeType" db:"mime_type"`
	Size      int64     `json:"fileSize" db:"size"`
	Path      string    `json:"-" db:"path"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

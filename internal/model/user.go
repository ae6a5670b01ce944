package model

import "time"

// User mirrors the `users` table. The password hash and row timestamps
// carry `json:"-"` so they can never leak into an API response; handlers
// serialize this struct directly as the public projection.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address.
//  FullName     – optional display name.
//  PasswordHash – bcrypt hashed password, never serialized.
//  IsActive     – whether the account may authenticate.
//  IsSuperuser  – whether the account may manage the directory.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`           // users.id
	Username     string    `json:"username"`     // users.username
	Email        string    `json:"email"`        // users.email
	FullName     string    `json:"full_name"`    // users.full_name
	PasswordHash string    `json:"-"`            // users.password_hash
	IsActive     bool      `json:"is_active"`    // users.is_active
	IsSuperuser  bool      `json:"is_superuser"` // users.is_superuser
	CreatedAt    time.Time `json:"-"`            // users.created_at
	UpdatedAt    time.Time `json:"-"`            // users.updated_at
}

// DeletedUser is the projection returned after a delete: every public
// field of the removed record except its id, plus a status marker.
type DeletedUser struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	Status      string `json:"status"` // always "deleted"
}

// Deleted builds the DeletedUser projection for a removed record.
func Deleted(u User) DeletedUser {
	return DeletedUser{
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		Status:      "deleted",
	}
}

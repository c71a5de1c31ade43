package model

import (
    "errors"
    "regexp"
    "strings"
    "time"
)

// Roles assignable to a user account.  RoleUser is the default for new
// registrations; RoleAdmin may moderate any recipe or review.
const (
    RoleUser  = "user"
    RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table.  The password hash never leaves the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Nama         – display name shown next to recipes and reviews.
//  Email        – unique, lowercased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – "user" or "admin".
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Nama         string    // users.nama
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// emailPattern accepts the common mailbox@domain.tld shape.  It is a sanity
// check, not a full RFC 5322 validator.
var emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)

// RegisterInput carries the fields accepted by POST /auth/register.
type RegisterInput struct {
    Nama     string `json:"nama"`
    Email    string `json:"email"`
    Password string `json:"password"`
    Role     string `json:"role"`
}

// Normalize trims whitespace, lowercases the email and defaults the role to
// "user" when absent.  It must run before Validate.
func (in *RegisterInput) Normalize() {
    in.Nama = strings.TrimSpace(in.Nama)
    in.Email = strings.ToLower(strings.TrimSpace(in.Email))
    in.Role = strings.ToLower(strings.TrimSpace(in.Role))
    if in.Role == "" {
        in.Role = RoleUser
    }
}

// Validate checks the registration fields and returns a human-readable error
// describing the first problem found.  Validation happens here, before any
// persistence, so it does not depend on the storage layer.
func (in *RegisterInput) Validate() error {
    if in.Nama == "" {
        return errors.New("Nama wajib diisi")
    }
    if in.Email == "" {
        return errors.New("Email wajib diisi")
    }
    if !emailPattern.MatchString(in.Email) {
        return errors.New("Email tidak valid")
    }
    if len(in.Password) < 6 {
        return errors.New("Password minimal 6 karakter")
    }
    if in.Role != RoleUser && in.Role != RoleAdmin {
        return errors.New("Role tidak dikenal")
    }
    return nil
}

package model

import (
	"strings"
	"time"
)

// UserProfile is an account identified by its email address.
type UserProfile struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username,omitempty"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	IsAdmin      bool       `json:"is_admin"`
	DateJoined   time.Time  `json:"date_joined"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	Avatar       string     `json:"avatar,omitempty"`
}

// FullName returns first and last name separated by a space, or the email
// when both are blank.
func (p UserProfile) FullName() string {
	full := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if full == "" {
		return p.Email
	}
	return full
}

func (p UserProfile) String() string { return p.Email }

// HasUsablePassword reports whether the profile can authenticate with a password.
func (p UserProfile) HasUsablePassword() bool { return p.PasswordHash != "" }

type CreateProfileInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Username  string `json:"username,omitempty" validate:"omitempty,max=255"`
	FirstName string `json:"first_name,omitempty" validate:"max=255"`
	LastName  string `json:"last_name,omitempty" validate:"max=255"`
	Avatar    string `json:"avatar,omitempty" validate:"omitempty,max=255"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}

// ProfileFilter narrows a profile listing. Nil flags match everything.
type ProfileFilter struct {
	Search      string
	IsStaff     *bool
	IsActive    *bool
	IsSuperuser *bool
	IsAdmin     *bool
}

// Match reports whether p passes the filter. Search is a case-insensitive
// substring match over email, first name, last name and username.
func (f ProfileFilter) Match(p UserProfile) bool {
	if !flagMatches(f.IsStaff, p.IsStaff) || !flagMatches(f.IsActive, p.IsActive) ||
		!flagMatches(f.IsSuperuser, p.IsSuperuser) || !flagMatches(f.IsAdmin, p.IsAdmin) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	for _, s := range []string{p.Email, p.FirstName, p.LastName, p.Username} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

func flagMatches(want *bool, got bool) bool { return want == nil || *want == got }

// NormalizeEmail lower-cases the domain part and trims surrounding space.
// The local part is kept as given.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Sign-in providers linked to an account.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google.com"
)

// User is the identity provider's account record.
type User struct {
	ID            string  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email         string  `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	DisplayName   string  `gorm:"column:display_name;type:text" json:"display_name"`
	PhotoURL      string  `gorm:"column:photo_url;type:text" json:"photo_url"`
	PasswordHash  string  `gorm:"column:password_hash;type:text" json:"-"`
	GoogleSubject *string `gorm:"column:google_subject;type:text;uniqueIndex" json:"-"`

	Providers    pq.StringArray `gorm:"column:providers;type:text[]" json:"providers"`
	ProviderData datatypes.JSON `gorm:"column:provider_data;type:jsonb" json:"-"`

	Role         UserRole  `gorm:"column:role;type:text" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	LastSignInAt time.Time `gorm:"column:last_sign_in_at;type:timestamptz" json:"last_sign_in_at"`
}

func (User) TableName() string { return "users" }

func (u *User) HasProvider(p string) bool {
	for _, x := range u.Providers {
		if x == p {
			return true
		}
	}
	return false
}

func (u *User) Identity() Identity {
	return Identity{
		UID:         u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		PhotoURL:    u.PhotoURL,
		Providers:   append([]string(nil), u.Providers...),
	}
}

// Identity is the handle the rest of the app sees for a signed-in user.
type Identity struct {
	UID         string   `json:"uid"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email"`
	PhotoURL    string   `json:"photo_url,omitempty"`
	Providers   []string `json:"providers,omitempty"`
}

// IdentityUpdate carries the fields updateProfile may change; nil means keep.
type IdentityUpdate struct {
	DisplayName *string `json:"display_name,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

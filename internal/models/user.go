package models

import (
	"time"
)

// User represents a registered portfolio owner.
// It contains authentication information and the public profile.
type User struct {
	ID                  int64      `json:"id" db:"id"`
	Name                string     `json:"name" db:"name"`
	Email               string     `json:"email,omitempty" db:"email"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	Avatar              string     `json:"avatar" db:"avatar"`
	Bio                 string     `json:"bio,omitempty" db:"bio"`
	Location            string     `json:"location,omitempty" db:"location"`
	Website             string     `json:"website,omitempty" db:"website"`
	GitHub              string     `json:"github,omitempty" db:"github"`
	LinkedIn            string     `json:"linkedin,omitempty" db:"linkedin"`
	Twitter             string     `json:"twitter,omitempty" db:"twitter"`
	ResetPasswordToken  *string    `json:"-" db:"reset_password_token"`
	ResetPasswordExpire *time.Time `json:"-" db:"reset_password_expire"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" db:"updated_at"`
}

// NewUser creates a new User instance with the given name and email.
// The password hash is filled in by the service before the row is stored.
func NewUser(name, email, avatar string) *User {
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Avatar:    avatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TableName returns the database table name for the User model.
func (u *User) TableName() string {
	return "users"
}

// Sanitize returns a copy without credential material, safe to hand to
// encoders and loggers.
func (u *User) Sanitize() *User {
	sanitized := *u
	sanitized.PasswordHash = ""
	sanitized.ResetPasswordToken = nil
	sanitized.ResetPasswordExpire = nil
	return &sanitized
}

// Public returns a sanitized copy that also hides the email address, for
// responses anyone can request.
func (u *User) Public() *User {
	public := u.Sanitize()
	public.Email = ""
	return public
}

// ApplyProfile copies every non-nil field of the update onto the user.
func (u *User) ApplyProfile(update *ProfileUpdate) {
	if update == nil {
		return
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&u.Name, update.Name)
	assign(&u.Email, update.Email)
	assign(&u.Avatar, update.Avatar)
	assign(&u.Bio, update.Bio)
	assign(&u.Location, update.Location)
	assign(&u.Website, update.Website)
	assign(&u.GitHub, update.GitHub)
	assign(&u.LinkedIn, update.LinkedIn)
	assign(&u.Twitter, update.Twitter)
}

// Owner is the slice of a user shown next to each project.
type Owner struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// UserRegistration represents the data required for user registration.
type UserRegistration struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128,strong_password"`
}

// UserCredentials represents the login credentials provided by a user.
type UserCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate holds the optional profile fields. Nil means unchanged; an
// empty string clears the optional fields.
type ProfileUpdate struct {
	Name     *string `json:"name" validate:"omitnil,notblank,max=100"`
	Email    *string `json:"email" validate:"omitnil,email,max=254"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=500"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
	Location *string `json:"location" validate:"omitempty,max=100"`
	Website  *string `json:"website" validate:"omitempty,url"`
	GitHub   *string `json:"github" validate:"omitempty,url"`
	LinkedIn *string `json:"linkedin" validate:"omitempty,url"`
	Twitter  *string `json:"twitter" validate:"omitempty,url"`
}

// PasswordChange is the body of an authenticated password change.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=128,strong_password"`
}

// ForgotPasswordRequest defines the structure for requesting a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest defines the structure for resetting a password with a token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,max=128"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=128,strong_password"`
}

package models

import (
	"errors"
	"regexp"
	"strings"
)

type User struct {
	ID          ID     `json:"id"`
	Nickname    string `json:"nickname"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	BannerURL   string `json:"profile_background_url,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Status      Status `json:"status,omitempty"`
}

// Name returns the display name, falling back to nickname and then to the id.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	return "User#" + u.ID.String()
}

type RegisterRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ProfileUpdate struct {
	DisplayName *string `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Email       *string `json:"email,omitempty"`
}

var (
	nicknamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var (
	ErrNicknameLength  = errors.New("nickname must be between 3 and 20 characters")
	ErrNicknameFormat  = errors.New("nickname must start with a letter and contain only letters, digits, '_' or '-'")
	ErrEmailFormat     = errors.New("email address is not valid")
	ErrPasswordTooWeak = errors.New("password must be at least 8 characters")
)

// Validate checks a registration request before it is sent.
func (r RegisterRequest) Validate() error {
	if err := ValidateNickname(r.Nickname); err != nil {
		return err
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	return ValidatePassword(r.Password)
}

func ValidateNickname(nickname string) error {
	nick := strings.TrimSpace(nickname)
	if len(nick) < 3 || len(nick) > 20 {
		return ErrNicknameLength
	}
	if !nicknamePattern.MatchString(nick) {
		return ErrNicknameFormat
	}
	return nil
}

// ValidateEmail accepts an empty address; email is optional.
func ValidateEmail(email string) error {
	if email != "" && !emailPattern.MatchString(email) {
		return ErrEmailFormat
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooWeak
	}
	return nil
}

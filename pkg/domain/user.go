package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// User is the logged-in user's profile record. The password is write-only:
// the server never returns it and the client never displays it.
type User struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	LastName    string  `json:"last_name"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Image       string  `json:"image,omitempty"`
	TradesCount int     `json:"trades_count"`
	Rating      float64 `json:"rating,string"`
}

// Username length bounds enforced at signup.
const (
	MinUsernameLen = 8
	MaxUsernameLen = 12
)

// MinPasswordLen is the minimum password length enforced at signup.
const MinPasswordLen = 8

// PhoneDigits is the exact number of digits a phone number must have.
const PhoneDigits = 10

// ValidPhone returns true when phone is exactly ten digits.
func ValidPhone(phone string) bool {
	if len(phone) != PhoneDigits {
		return false
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidUsername returns true when the username length is within bounds.
func ValidUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= MinUsernameLen && n <= MaxUsernameLen
}

// ValidEmail does the minimal shape check the original form relied on.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	rest := email[at+1:]
	return strings.Contains(rest, ".") && !strings.ContainsAny(email, " \t")
}

// SignUpDraft holds the registration form fields.
type SignUpDraft struct {
	Name            string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Username        string
}

// Validate reports the first problem with the draft, or "" when it is
// ready to submit. The confirmation must match before any request is made.
func (d SignUpDraft) Validate() string {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return "name is required"
	case strings.TrimSpace(d.LastName) == "":
		return "last name is required"
	case !ValidEmail(d.Email):
		return "a valid email is required"
	case utf8.RuneCountInString(d.Password) < MinPasswordLen:
		return "password must be at least 8 characters"
	case d.Password != d.ConfirmPassword:
		return "passwords do not match"
	case !ValidPhone(d.Phone):
		return "phone must be exactly 10 digits"
	case !ValidUsername(d.Username):
		return "username must be 8-12 characters"
	}
	return ""
}

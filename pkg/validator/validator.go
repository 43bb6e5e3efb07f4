package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	minPasswordLength = 6
	maxMessageLength  = 140
)

func ValidateSignup(username, email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateUsername(username, errs)
	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) < minPasswordLength {
		errs.Add("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	return errs
}

func ValidateLogin(username, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(username) == "" {
		errs.Add("username", "Username is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateProfile(username, email, bio, location string) ValidationErrors {
	errs := make(ValidationErrors)

	validateUsername(username, errs)
	validateEmail(email, errs)

	if len(bio) > 500 {
		errs.Add("bio", "Bio is too long")
	}
	if len(location) > 100 {
		errs.Add("location", "Location is too long")
	}

	return errs
}

func ValidateMessage(text string) ValidationErrors {
	errs := make(ValidationErrors)

	text = strings.TrimSpace(text)
	if text == "" {
		errs.Add("text", "Message text is required")
	} else if len([]rune(text)) > maxMessageLength {
		errs.Add("text", fmt.Sprintf("Message must be at most %d characters", maxMessageLength))
	}

	return errs
}

func validateUsername(username string, errs ValidationErrors) {
	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _ and -")
	}
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}

// utils/validators.go
package utils

import (
	"regexp"
	"strings"

	"github.com/socialape/backend/models"
)

var emailRegex = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

func isEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsEmail reports whether s looks like a valid email address.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ValidateSignupData checks the signup payload and returns field-keyed error
// messages. An empty map means the payload is valid.
func ValidateSignupData(req models.SignupRequest) (map[string]string, bool) {
	errors := make(map[string]string)

	if isEmpty(req.Email) {
		errors["email"] = "Must not be empty"
	} else if !IsEmail(req.Email) {
		errors["email"] = "Must be a valid email address"
	}

	if isEmpty(req.Password) {
		errors["password"] = "Must not be empty"
	}
	if isEmpty(req.Handle) {
		errors["handle"] = "Must not be empty"
	}
	if req.Password != req.ConfirmPassword {
		errors["confirmPassword"] = "Passwords must match"
	}

	return errors, len(errors) == 0
}

// ValidateLoginData checks presence only; the email format is not validated
// at login.
func ValidateLoginData(req models.LoginRequest) (map[string]string, bool) {
	errors := make(map[string]string)

	if isEmpty(req.Email) {
		errors["email"] = "Must not be empty"
	}
	if isEmpty(req.Password) {
		errors["password"] = "Must not be empty"
	}

	return errors, len(errors) == 0
}

// ReduceUserDetails normalizes the profile detail fields. The result always
// carries all three fields, so storing it replaces the stored details
// wholesale, including clearing fields the caller left empty. Bare websites
// get an http:// prefix.
func ReduceUserDetails(req models.UserDetailsRequest) models.UserDetails {
	details := models.UserDetails{
		Bio:      strings.TrimSpace(req.Bio),
		Website:  strings.TrimSpace(req.Website),
		Location: strings.TrimSpace(req.Location),
	}

	if details.Website != "" && !strings.HasPrefix(details.Website, "http") {
		details.Website = "http://" + details.Website
	}

	return details
}

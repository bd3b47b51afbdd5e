package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors blocks a submission before any request is made.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields keeps the first message per field.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

const (
	MsgUsernameUsed = "Username is already used!"
	MsgEmailUsed    = "Email is already used!"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
)

var captureTimeframes = map[string]bool{"": true, "1m": true, "3m": true, "6m": true, "12m": true}

func ValidateCreateAdminInput(input CreateAdminInput) ValidationErrors {
	var errs ValidationErrors

	if input.Username == "" {
		errs = append(errs, ValidationError{"username", "is required"})
	} else if !usernamePattern.MatchString(input.Username) {
		errs = append(errs, ValidationError{"username", "must be 3-32 lowercase letters, digits, dots, dashes or underscores"})
	}

	if len(input.Password) < 8 {
		errs = append(errs, ValidationError{"password", "must have at least 8 characters"})
	}

	if strings.TrimSpace(input.FirstName) == "" {
		errs = append(errs, ValidationError{"first_name", "is required"})
	}
	if strings.TrimSpace(input.LastName) == "" {
		errs = append(errs, ValidationError{"last_name", "is required"})
	}

	if input.Email == "" {
		errs = append(errs, ValidationError{"email", "is required"})
	} else if !isValidEmail(input.Email) {
		errs = append(errs, ValidationError{"email", "is invalid"})
	}

	return errs
}

// ValidateContactPatch only checks fields that would be rejected outright.
func ValidateContactPatch(patch ContactPatch) ValidationErrors {
	var errs ValidationErrors
	if patch.Email != nil && *patch.Email != "" && !isValidEmail(*patch.Email) {
		errs = append(errs, ValidationError{"email", "is invalid"})
	}
	if patch.Phone != nil && *patch.Phone != "" && !phonePattern.MatchString(*patch.Phone) {
		errs = append(errs, ValidationError{"phone", "must be a valid phone number"})
	}
	if patch.Score != nil && (*patch.Score < 0 || *patch.Score > 100) {
		errs = append(errs, ValidationError{"score", "must be between 0 and 100"})
	}
	return errs
}

func ValidateCaptureInput(input CaptureInput) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(input.FirstName) == "" {
		errs = append(errs, ValidationError{"first_name", "is required"})
	}
	if strings.TrimSpace(input.LastName) == "" {
		errs = append(errs, ValidationError{"last_name", "is required"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errs = append(errs, ValidationError{"email", "is required"})
	} else if !isValidEmail(input.Email) {
		errs = append(errs, ValidationError{"email", "is invalid"})
	}

	if strings.TrimSpace(input.Phone) == "" {
		errs = append(errs, ValidationError{"phone", "is required"})
	} else if !phonePattern.MatchString(strings.TrimSpace(input.Phone)) {
		errs = append(errs, ValidationError{"phone", "must be a valid phone number"})
	}

	if !captureTimeframes[input.Timeframe] {
		errs = append(errs, ValidationError{"timeframe", "must be one of 1m, 3m, 6m, 12m"})
	}
	if input.Selling != "" && input.Selling != "yes" && input.Selling != "no" {
		errs = append(errs, ValidationError{"selling", "must be yes or no"})
	}
	if input.Buying != "" && input.Buying != "yes" && input.Buying != "no" {
		errs = append(errs, ValidationError{"buying", "must be yes or no"})
	}

	return errs
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

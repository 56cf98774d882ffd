// Package validate checks form input before anything touches the store.
// All checks are pure; a failed check never has side effects.
package validate

import (
	"regexp"
	"strings"
	"time"

	"whenwin/model"
)

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitRe  = regexp.MustCompile(`\d`)
	letterRe = regexp.MustCompile(`[a-zA-Z]`)
	lowerRe  = regexp.MustCompile(`[a-z]`)
	upperRe  = regexp.MustCompile(`[A-Z]`)
	symbolRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Email validates an email address. Returns an empty string when valid,
// otherwise the user-facing message.
func Email(email string) string {
	if email == "" {
		return "Email is required"
	}
	if !emailRe.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

// Password requires 6..128 characters containing at least one letter and
// one number.
func Password(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) < 6 {
		return "Password must be at least 6 characters"
	}
	if len(password) > 128 {
		return "Password is too long"
	}
	if !digitRe.MatchString(password) || !letterRe.MatchString(password) {
		return "Password must contain both letters and numbers"
	}
	return ""
}

// Name requires 2..50 non-blank characters.
func Name(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required"
	}
	if len(name) < 2 {
		return "Name must be at least 2 characters"
	}
	if len(name) > 50 {
		return "Name is too long"
	}
	return ""
}

// ConfirmPassword checks the confirmation field against the password.
func ConfirmPassword(password, confirm string) string {
	if confirm == "" {
		return "Please confirm your password"
	}
	if password != confirm {
		return "Passwords do not match"
	}
	return ""
}

// Strength is a coarse password strength score for signup feedback.
type Strength struct {
	Score int    `json:"score"` // 0..6
	Label string `json:"label"` // Weak / Medium / Strong
}

// PasswordStrength scores length and character variety.
func PasswordStrength(password string) Strength {
	if password == "" {
		return Strength{}
	}

	score := 0
	if len(password) >= 6 {
		score++
	}
	if len(password) >= 10 {
		score++
	}
	if lowerRe.MatchString(password) {
		score++
	}
	if upperRe.MatchString(password) {
		score++
	}
	if digitRe.MatchString(password) {
		score++
	}
	if symbolRe.MatchString(password) {
		score++
	}

	label := "Strong"
	switch {
	case score <= 2:
		label = "Weak"
	case score <= 4:
		label = "Medium"
	}
	return Strength{Score: score, Label: label}
}

// SignUp validates the signup form fields. Returns nil when everything
// passes.
func SignUp(email, password, confirm, name string) model.ValidationError {
	errs := model.ValidationError{}
	if msg := Name(name); msg != "" {
		errs["name"] = msg
	}
	if msg := Email(email); msg != "" {
		errs["email"] = msg
	}
	if msg := Password(password); msg != "" {
		errs["password"] = msg
	}
	if msg := ConfirmPassword(password, confirm); msg != "" {
		errs["confirmPassword"] = msg
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Event validates a create/edit submission. The reference instant decides
// whether the date is in the past; it is passed in rather than read from a
// clock.
func Event(e model.Event, today time.Time) model.ValidationError {
	errs := model.ValidationError{}

	if strings.TrimSpace(e.Title) == "" {
		errs["title"] = "Event title is required"
	}

	if e.Date == "" {
		errs["date"] = "Date is required"
	} else if day, ok := e.Day(); !ok {
		errs["date"] = "Date must be in YYYY-MM-DD form"
	} else {
		y, m, d := today.Date()
		if day.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
			errs["date"] = "Event date cannot be in the past"
		}
	}

	if e.Time == "" {
		errs["time"] = "Time is required"
	}

	if strings.TrimSpace(e.Location) == "" {
		errs["location"] = "Location is required"
	}

	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		errs["description"] = "Description is required"
	} else if len(desc) < 20 {
		errs["description"] = "Description must be at least 20 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Organizer types accepted by ResolveOrganizer.
const (
	OrganizerName         = "name"
	OrganizerOrganization = "organization"
	OrganizerAnonymous    = "anonymous"
)

// ResolveOrganizer maps the create form's organizer choice to the stored
// organizer string. An empty user name falls back to "Anonymous".
func ResolveOrganizer(organizerType, organizationName, userName string) (string, model.ValidationError) {
	switch organizerType {
	case OrganizerAnonymous:
		return "Anonymous", nil
	case OrganizerOrganization:
		org := strings.TrimSpace(organizationName)
		if org == "" {
			return "", model.ValidationError{"organizationName": "Organization name is required"}
		}
		return org, nil
	default:
		if userName == "" {
			return "Anonymous", nil
		}
		return userName, nil
	}
}

package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxNameLength is the maximum customer name length in characters.
	MaxNameLength = 50

	DefaultSource = "website"
	DefaultStage  = "requirement-discussion"

	// DateLayout is the format of last_meeting and next_followup.
	DateLayout = "2006-01-02"
)

// Customer is a single sales lead persisted in the record store.
type Customer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Source       string `json:"source"`
	Contact      string `json:"contact"`
	Requirement  string `json:"requirement"`
	LastMeeting  string `json:"last_meeting"`
	NextFollowup string `json:"next_followup"`
	Stage        string `json:"stage"`
}

// Matches reports whether query is a case-insensitive substring of the
// customer's name, contact or requirement. The query is used as given, so
// surrounding spaces take part in the match. A blank query never matches.
func (c Customer) Matches(query string) bool {
	if strings.TrimSpace(query) == "" {
		return false
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Contact), q) ||
		strings.Contains(strings.ToLower(c.Requirement), q)
}

// ValidateName enforces the name invariant shared by create and update.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name", "customer name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return NewValidationError("name", "customer name must not exceed 50 characters")
	}
	return nil
}

// Today returns the local calendar date in DateLayout.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// SampleCustomer is written to a fresh data file when seeding is enabled.
func SampleCustomer() Customer {
	return Customer{
		ID:           "cus002",
		Name:         "FutureForce",
		Source:       "trade-show",
		Contact:      "contact@fd.com",
		Requirement:  "AI localization",
		LastMeeting:  "2025-05-22",
		NextFollowup: "2025-05-26",
		Stage:        "demo",
	}
}

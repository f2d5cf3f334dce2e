package models

import "strings"

// Status is the review state shared by enquiries and admissions.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewing Status = "reviewing"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusPending, StatusReviewing, StatusApproved, StatusRejected}

// statusTransitions declares which target statuses are reachable from each status.
// Staff may move a record between any two statuses, including re-opening a rejected one.
var statusTransitions = map[Status][]Status{
	StatusPending:   AllStatuses,
	StatusReviewing: AllStatuses,
	StatusApproved:  AllStatuses,
	StatusRejected:  AllStatuses,
}

// ParseStatus converts a wire value into a Status. Matching ignores case and surrounding space.
func ParseStatus(s string) (Status, bool) {
	candidate := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range AllStatuses {
		if st == candidate {
			return st, true
		}
	}
	return "", false
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition table allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Category is the reservation category recorded on an admission form.
type Category string

const (
	CategorySC          Category = "SC"
	CategoryST          Category = "ST"
	CategoryGeneral     Category = "General"
	CategoryHandicapped Category = "Handicapped"
)

// RoleType defines the staff role
type RoleType string

const (
	RoleAdmin RoleType = "ADMIN"
	RoleStaff RoleType = "STAFF"
)

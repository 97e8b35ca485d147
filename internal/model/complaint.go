package model

import "time"

// Complaint is a maintenance ticket submitted by a user and moderated by admins.
type Complaint struct {
	ID          int64     `json:"id"`
	Campus      string    `json:"campus"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	UserEmail   string    `json:"user_email"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}

// Complaint statuses, in lifecycle order.
const (
	ComplaintStatusSubmitted  = "Submitted"
	ComplaintStatusInProgress = "In Progress"
	ComplaintStatusResolved   = "Resolved"
)

// ComplaintSequence is the complaint status lifecycle, initial state first.
var ComplaintSequence = []string{
	ComplaintStatusSubmitted,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
}

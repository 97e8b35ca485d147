package model

import "time"

// Volunteer is an event-volunteer registration awaiting admin approval.
type Volunteer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RollNo    string    `json:"roll_no,omitempty"`
	Phone     string    `json:"phone"`
	Event     string    `json:"event"`
	Duration  string    `json:"duration,omitempty"`
	Status    string    `json:"status"`
	UserEmail string    `json:"user_email"`
	ImageURL  string    `json:"image_url,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Volunteer statuses, in lifecycle order.
const (
	VolunteerStatusPending  = "Pending"
	VolunteerStatusApproved = "Approved"
)

// VolunteerSequence is the volunteer status lifecycle, initial state first.
var VolunteerSequence = []string{VolunteerStatusPending, VolunteerStatusApproved}

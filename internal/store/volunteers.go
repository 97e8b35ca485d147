package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/model"
)

var volunteerTable = table[model.Volunteer]{
	name: "volunteers",
	cols: "id, name, roll_no, phone, event, duration, image_url, status, user_email, version, created_at",
	scan: func(s scanner) (*model.Volunteer, error) {
		v := &model.Volunteer{}
		var rollNo, duration, imageURL sql.NullString
		err := s.Scan(&v.ID, &v.Name, &rollNo, &v.Phone, &v.Event, &duration,
			&imageURL, &v.Status, &v.UserEmail, &v.Version, &v.CreatedAt)
		if err != nil {
			return nil, err
		}
		v.RollNo = rollNo.String
		v.Duration = duration.String
		v.ImageURL = imageURL.String
		return v, nil
	},
}

// CreateVolunteer validates and inserts a new registration at Pending.
func CreateVolunteer(ctx context.Context, db *sql.DB, v *model.Volunteer) (*model.Volunteer, error) {
	switch {
	case v.Name == "":
		return nil, apperr.Validation("name")
	case v.Phone == "":
		return nil, apperr.Validation("phone")
	case v.Event == "":
		return nil, apperr.Validation("event")
	case v.UserEmail == "":
		return nil, apperr.Validation("user_email")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO volunteers (name, roll_no, phone, event, duration, image_url, status, user_email)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Name, nullable(v.RollNo), v.Phone, v.Event, nullable(v.Duration),
		nullable(v.ImageURL), model.VolunteerStatusPending, v.UserEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("creating volunteer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting volunteer id: %w", err)
	}

	return GetVolunteer(ctx, db, id)
}

// GetVolunteer returns a registration by ID.
func GetVolunteer(ctx context.Context, db *sql.DB, id int64) (*model.Volunteer, error) {
	return volunteerTable.get(ctx, db, id)
}

// ListVolunteers returns registrations, newest first. A non-empty owner
// scopes the result to that identity's own registrations.
func ListVolunteers(ctx context.Context, db *sql.DB, owner string) ([]model.Volunteer, error) {
	fl := newFilter()
	if owner != "" {
		fl.eq("user_email", owner)
	}
	return volunteerTable.list(ctx, db, fl)
}

// UpdateVolunteerStatus sets a registration's status, guarded by the version
// the caller read.
func UpdateVolunteerStatus(ctx context.Context, db *sql.DB, id, version int64, status string) error {
	return updateVersioned(ctx, db, "volunteers", "status = ?", id, version, status)
}

// DeleteVolunteer removes a registration.
func DeleteVolunteer(ctx context.Context, db *sql.DB, id int64) error {
	return deleteRow(ctx, db, "volunteers", id)
}

// CountVolunteers returns the total number of registrations.
func CountVolunteers(ctx context.Context, db *sql.DB) (int64, error) {
	return volunteerTable.count(ctx, db)
}

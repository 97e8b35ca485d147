package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/model"
)

var complaintTable = table[model.Complaint]{
	name: "complaints",
	cols: "id, campus, category, description, status, user_email, version, created_at",
	scan: func(s scanner) (*model.Complaint, error) {
		c := &model.Complaint{}
		err := s.Scan(&c.ID, &c.Campus, &c.Category, &c.Description,
			&c.Status, &c.UserEmail, &c.Version, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
}

// CreateComplaint validates and inserts a new ticket at Submitted.
func CreateComplaint(ctx context.Context, db *sql.DB, c *model.Complaint) (*model.Complaint, error) {
	switch {
	case c.Campus == "":
		return nil, apperr.Validation("campus")
	case c.Category == "":
		return nil, apperr.Validation("category")
	case c.Description == "":
		return nil, apperr.Validation("description")
	case c.UserEmail == "":
		return nil, apperr.Validation("user_email")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO complaints (campus, category, description, status, user_email)
		 VALUES (?, ?, ?, ?, ?)`,
		c.Campus, c.Category, c.Description, model.ComplaintStatusSubmitted, c.UserEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("creating complaint: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting complaint id: %w", err)
	}

	return GetComplaint(ctx, db, id)
}

// GetComplaint returns a complaint by ID.
func GetComplaint(ctx context.Context, db *sql.DB, id int64) (*model.Complaint, error) {
	return complaintTable.get(ctx, db, id)
}

// ListComplaints returns complaints, newest first. A non-empty owner scopes
// the result to that identity's own tickets.
func ListComplaints(ctx context.Context, db *sql.DB, owner string) ([]model.Complaint, error) {
	fl := newFilter()
	if owner != "" {
		fl.eq("user_email", owner)
	}
	return complaintTable.list(ctx, db, fl)
}

// UpdateComplaintFields edits the owner-editable fields of a ticket, guarded
// by the version the caller read. Status and owner are never touched here.
func UpdateComplaintFields(ctx context.Context, db *sql.DB, id, version int64, campus, category, description string) error {
	switch {
	case campus == "":
		return apperr.Validation("campus")
	case category == "":
		return apperr.Validation("category")
	case description == "":
		return apperr.Validation("description")
	}
	return updateVersioned(ctx, db, "complaints",
		"campus = ?, category = ?, description = ?", id, version,
		campus, category, description)
}

// UpdateComplaintStatus sets a ticket's status, guarded by the version the
// caller read.
func UpdateComplaintStatus(ctx context.Context, db *sql.DB, id, version int64, status string) error {
	return updateVersioned(ctx, db, "complaints", "status = ?", id, version, status)
}

// DeleteComplaint removes a ticket.
func DeleteComplaint(ctx context.Context, db *sql.DB, id int64) error {
	return deleteRow(ctx, db, "complaints", id)
}

// CountComplaints returns the total number of tickets.
func CountComplaints(ctx context.Context, db *sql.DB) (int64, error) {
	return complaintTable.count(ctx, db)
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/model"
)

var contactTable = table[model.ContactMessage]{
	name: "contact_messages",
	cols: "id, name, email, message, created_at",
	scan: func(s scanner) (*model.ContactMessage, error) {
		m := &model.ContactMessage{}
		if err := s.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		return m, nil
	},
}

// CreateContactMessage inserts a write-once message from the contact form.
func CreateContactMessage(ctx context.Context, db *sql.DB, name, email, message string) (*model.ContactMessage, error) {
	switch {
	case name == "":
		return nil, apperr.Validation("name")
	case email == "":
		return nil, apperr.Validation("email")
	case message == "":
		return nil, apperr.Validation("message")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO contact_messages (name, email, message) VALUES (?, ?, ?)`,
		name, email, message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating contact message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting contact message id: %w", err)
	}

	return contactTable.get(ctx, db, id)
}

// ListContactMessages returns all messages, newest first. Admin-readable only;
// the API layer enforces the gate.
func ListContactMessages(ctx context.Context, db *sql.DB) ([]model.ContactMessage, error) {
	return contactTable.list(ctx, db, newFilter())
}

// DeleteContactMessage removes a message.
func DeleteContactMessage(ctx context.Context, db *sql.DB, id int64) error {
	return deleteRow(ctx, db, "contact_messages", id)
}

// CountContactMessages returns the total number of messages.
func CountContactMessages(ctx context.Context, db *sql.DB) (int64, error) {
	return contactTable.count(ctx, db)
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/model"
)

var lostFoundTable = table[model.LostFoundItem]{
	name: "lost_found_items",
	cols: "id, title, description, type, contact, status, user_email, image_url, version, created_at",
	scan: func(s scanner) (*model.LostFoundItem, error) {
		item := &model.LostFoundItem{}
		var imageURL sql.NullString
		err := s.Scan(&item.ID, &item.Title, &item.Description, &item.Type, &item.Contact,
			&item.Status, &item.UserEmail, &imageURL, &item.Version, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		item.ImageURL = imageURL.String
		return item, nil
	},
}

// LostFoundFilter selects lost/found items on equality predicates plus a
// title substring search. ExcludeOwner is used by the notification backfill.
type LostFoundFilter struct {
	Type         string
	Status       string
	Owner        string
	ExcludeOwner string
	Search       string
	Limit        int
}

// CreateLostFoundItem validates and inserts a new lost/found report. Status
// always starts at Pending and user_email comes from the acting identity,
// never from client input.
func CreateLostFoundItem(ctx context.Context, db *sql.DB, item *model.LostFoundItem) (*model.LostFoundItem, error) {
	switch {
	case item.Title == "":
		return nil, apperr.Validation("title")
	case item.Description == "":
		return nil, apperr.Validation("description")
	case item.Contact == "":
		return nil, apperr.Validation("contact")
	case item.UserEmail == "":
		return nil, apperr.Validation("user_email")
	case item.Type != model.ItemTypeLost && item.Type != model.ItemTypeFound:
		return nil, apperr.Validation("type")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO lost_found_items (title, description, type, contact, status, user_email, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Title, item.Description, item.Type, item.Contact,
		model.ItemStatusPending, item.UserEmail, nullable(item.ImageURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lost/found item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting lost/found item id: %w", err)
	}

	return GetLostFoundItem(ctx, db, id)
}

// GetLostFoundItem returns an item by ID.
func GetLostFoundItem(ctx context.Context, db *sql.DB, id int64) (*model.LostFoundItem, error) {
	return lostFoundTable.get(ctx, db, id)
}

// ListLostFoundItems returns items matching the filter, newest first.
func ListLostFoundItems(ctx context.Context, db *sql.DB, f LostFoundFilter) ([]model.LostFoundItem, error) {
	fl := newFilter().withLimit(f.Limit)
	if f.Type != "" {
		fl.eq("type", f.Type)
	}
	if f.Status != "" {
		fl.eq("status", f.Status)
	}
	if f.Owner != "" {
		fl.eq("user_email", f.Owner)
	}
	if f.ExcludeOwner != "" {
		fl.notEq("user_email", f.ExcludeOwner)
	}
	if f.Search != "" {
		fl.contains("title", f.Search)
	}
	return lostFoundTable.list(ctx, db, fl)
}

// UpdateLostFoundStatus sets an item's status, guarded by the version the
// caller read. The owner column is never touched.
func UpdateLostFoundStatus(ctx context.Context, db *sql.DB, id, version int64, status string) error {
	return updateVersioned(ctx, db, "lost_found_items", "status = ?", id, version, status)
}

// DeleteLostFoundItem removes an item.
func DeleteLostFoundItem(ctx context.Context, db *sql.DB, id int64) error {
	return deleteRow(ctx, db, "lost_found_items", id)
}

// CountLostFoundItems returns the total number of items.
func CountLostFoundItems(ctx context.Context, db *sql.DB) (int64, error) {
	return lostFoundTable.count(ctx, db)
}

// nullable maps an empty string onto SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

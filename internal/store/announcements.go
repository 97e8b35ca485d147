package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/model"
)

var announcementTable = table[model.Announcement]{
	name: "announcements",
	cols: "id, title, message, created_at",
	scan: func(s scanner) (*model.Announcement, error) {
		a := &model.Announcement{}
		if err := s.Scan(&a.ID, &a.Title, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		return a, nil
	},
}

// CreateAnnouncement inserts a broadcast notice. Announcements are immutable
// once posted.
func CreateAnnouncement(ctx context.Context, db *sql.DB, title, message string) (*model.Announcement, error) {
	switch {
	case title == "":
		return nil, apperr.Validation("title")
	case message == "":
		return nil, apperr.Validation("message")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO announcements (title, message) VALUES (?, ?)`,
		title, message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating announcement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting announcement id: %w", err)
	}

	return announcementTable.get(ctx, db, id)
}

// ListAnnouncements returns all notices, newest first.
func ListAnnouncements(ctx context.Context, db *sql.DB) ([]model.Announcement, error) {
	return announcementTable.list(ctx, db, newFilter())
}

// LatestAnnouncement returns the most recent notice, or nil when none exist.
func LatestAnnouncement(ctx context.Context, db *sql.DB) (*model.Announcement, error) {
	notices, err := announcementTable.list(ctx, db, newFilter().withLimit(1))
	if err != nil {
		return nil, err
	}
	if len(notices) == 0 {
		return nil, nil
	}
	return &notices[0], nil
}

// DeleteAnnouncement removes a notice.
func DeleteAnnouncement(ctx context.Context, db *sql.DB, id int64) error {
	return deleteRow(ctx, db, "announcements", id)
}

// CountAnnouncements returns the total number of notices.
func CountAnnouncements(ctx context.Context, db *sql.DB) (int64, error) {
	return announcementTable.count(ctx, db)
}

package api

import (
	"database/sql"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/store"
)

// AdminHandler serves the moderation dashboard snapshot.
type AdminHandler struct {
	DB *sql.DB
}

type overviewCounts struct {
	Volunteers      int64 `json:"volunteers"`
	Complaints      int64 `json:"complaints"`
	LostFoundItems  int64 `json:"lost_found_items"`
	Announcements   int64 `json:"announcements"`
	ContactMessages int64 `json:"contact_messages"`
}

type overviewResponse struct {
	Counts          overviewCounts         `json:"counts"`
	Volunteers      []model.Volunteer      `json:"volunteers"`
	Complaints      []model.Complaint      `json:"complaints"`
	LostFoundItems  []model.LostFoundItem  `json:"lost_found_items"`
	Announcements   []model.Announcement   `json:"announcements"`
	ContactMessages []model.ContactMessage `json:"contact_messages"`
}

// Overview handles GET /api/admin/overview. The per-kind reads run in
// parallel and share no snapshot isolation: the dashboard view is
// best-effort consistent.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	var resp overviewResponse
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		var err error
		resp.Volunteers, err = store.ListVolunteers(ctx, h.DB, "")
		if err != nil {
			return err
		}
		resp.Counts.Volunteers, err = store.CountVolunteers(ctx, h.DB)
		return err
	})
	g.Go(func() error {
		var err error
		resp.Complaints, err = store.ListComplaints(ctx, h.DB, "")
		if err != nil {
			return err
		}
		resp.Counts.Complaints, err = store.CountComplaints(ctx, h.DB)
		return err
	})
	g.Go(func() error {
		var err error
		resp.LostFoundItems, err = store.ListLostFoundItems(ctx, h.DB, store.LostFoundFilter{})
		if err != nil {
			return err
		}
		resp.Counts.LostFoundItems, err = store.CountLostFoundItems(ctx, h.DB)
		return err
	})
	g.Go(func() error {
		var err error
		resp.Announcements, err = store.ListAnnouncements(ctx, h.DB)
		if err != nil {
			return err
		}
		resp.Counts.Announcements, err = store.CountAnnouncements(ctx, h.DB)
		return err
	})
	g.Go(func() error {
		var err error
		resp.ContactMessages, err = store.ListContactMessages(ctx, h.DB)
		if err != nil {
			return err
		}
		resp.Counts.ContactMessages, err = store.CountContactMessages(ctx, h.DB)
		return err
	})

	if err := g.Wait(); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	if resp.Volunteers == nil {
		resp.Volunteers = []model.Volunteer{}
	}
	if resp.Complaints == nil {
		resp.Complaints = []model.Complaint{}
	}
	if resp.LostFoundItems == nil {
		resp.LostFoundItems = []model.LostFoundItem{}
	}
	if resp.Announcements == nil {
		resp.Announcements = []model.Announcement{}
	}
	if resp.ContactMessages == nil {
		resp.ContactMessages = []model.ContactMessage{}
	}

	jsonResponse(w, http.StatusOK, resp)
}

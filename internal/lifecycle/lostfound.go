package lifecycle

import (
	"context"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/feed"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/roles"
	"github.com/mkamran/campushub/internal/store"
)

// LostFoundInput carries the client-supplied fields of a new report. The
// owner and initial status are stamped by the engine, never taken from the
// client.
type LostFoundInput struct {
	Title       string
	Description string
	Type        string
	Contact     string
}

// CreateLostFoundItem uploads the optional image, persists the report at
// Pending, and publishes the insert to the notification feed. If the upload
// fails no record is written; if the insert fails the uploaded object is
// removed again.
func (e *Engine) CreateLostFoundItem(ctx context.Context, actor string, in LostFoundInput, image *Upload) (*model.LostFoundItem, error) {
	if actor == "" {
		return nil, apperr.ErrAuth
	}

	imageURL, imageKey, err := e.putImage(ctx, image)
	if err != nil {
		return nil, err
	}

	item, err := store.CreateLostFoundItem(ctx, e.DB, &model.LostFoundItem{
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Contact:     in.Contact,
		UserEmail:   store.NormalizeEmail(actor),
		ImageURL:    imageURL,
	})
	if err != nil {
		e.discardImage(ctx, imageKey)
		return nil, err
	}

	e.Feed.Publish(feed.EventInsert, item)
	return item, nil
}

// SetLostFoundStatus advances a report's status; the only defined move is
// Pending to Recovered. The transition is validated before the actor, so a
// request against a terminal record reports the bad transition rather than
// the actor. The actor must own the report or hold admin.
func (e *Engine) SetLostFoundStatus(ctx context.Context, actor string, id, version int64, status string) (*model.LostFoundItem, error) {
	item, err := store.GetLostFoundItem(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}

	if err := checkTransition("lost_found_items", model.LostFoundSequence,
		item.Status, status); err != nil {
		return nil, err
	}

	caps, err := e.caps(ctx, actor, item.UserEmail)
	if err != nil {
		return nil, err
	}
	if !caps.Has(roles.Owner) && !caps.Has(roles.Admin) {
		return nil, apperr.ErrPermission
	}

	if err := store.UpdateLostFoundStatus(ctx, e.DB, id, version, status); err != nil {
		return nil, err
	}

	updated, err := store.GetLostFoundItem(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	e.Feed.Publish(feed.EventUpdate, updated)
	return updated, nil
}

// DeleteLostFoundItem removes a report in any state. The actor must own it
// or hold admin.
func (e *Engine) DeleteLostFoundItem(ctx context.Context, actor string, id int64) error {
	item, err := store.GetLostFoundItem(ctx, e.DB, id)
	if err != nil {
		return err
	}

	caps, err := e.caps(ctx, actor, item.UserEmail)
	if err != nil {
		return err
	}
	if !caps.Has(roles.Owner) && !caps.Has(roles.Admin) {
		return apperr.ErrPermission
	}

	if err := store.DeleteLostFoundItem(ctx, e.DB, id); err != nil {
		return err
	}
	e.Feed.Publish(feed.EventDelete, item)
	return nil
}

package lifecycle

import (
	"context"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/roles"
	"github.com/mkamran/campushub/internal/store"
)

// PostAnnouncement publishes an immutable broadcast notice. Admin only.
func (e *Engine) PostAnnouncement(ctx context.Context, actor, title, message string) (*model.Announcement, error) {
	if err := e.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return store.CreateAnnouncement(ctx, e.DB, title, message)
}

// DeleteAnnouncement removes a notice. Admin only.
func (e *Engine) DeleteAnnouncement(ctx context.Context, actor string, id int64) error {
	if err := e.requireAdmin(ctx, actor); err != nil {
		return err
	}
	return store.DeleteAnnouncement(ctx, e.DB, id)
}

// SubmitContactMessage records a write-once message from the contact form.
// The form is public, so no session is required.
func (e *Engine) SubmitContactMessage(ctx context.Context, name, email, message string) (*model.ContactMessage, error) {
	return store.CreateContactMessage(ctx, e.DB, name, email, message)
}

// DeleteContactMessage removes a contact message. Admin only.
func (e *Engine) DeleteContactMessage(ctx context.Context, actor string, id int64) error {
	if err := e.requireAdmin(ctx, actor); err != nil {
		return err
	}
	return store.DeleteContactMessage(ctx, e.DB, id)
}

func (e *Engine) requireAdmin(ctx context.Context, actor string) error {
	caps, err := e.caps(ctx, actor, "")
	if err != nil {
		return err
	}
	if !caps.Has(roles.Admin) {
		return apperr.ErrPermission
	}
	return nil
}

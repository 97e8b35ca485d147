package lifecycle

import (
	"context"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/roles"
	"github.com/mkamran/campushub/internal/store"
)

// ComplaintDeletePolicy names who may delete a ticket through a given view.
// The two policies mirror the self-service and moderation surfaces; the
// deployment picks which one the self-service endpoint uses.
type ComplaintDeletePolicy string

const (
	// ComplaintDeleteOwnerOnly permits the ticket's owner.
	ComplaintDeleteOwnerOnly ComplaintDeletePolicy = "owner"
	// ComplaintDeleteAdminOnly permits admins.
	ComplaintDeleteAdminOnly ComplaintDeletePolicy = "admin"
)

// ComplaintInput carries the client-supplied fields of a ticket.
type ComplaintInput struct {
	Campus      string
	Category    string
	Description string
}

// CreateComplaint persists a new ticket at Submitted, owned by the actor.
func (e *Engine) CreateComplaint(ctx context.Context, actor string, in ComplaintInput) (*model.Complaint, error) {
	if actor == "" {
		return nil, apperr.ErrAuth
	}
	return store.CreateComplaint(ctx, e.DB, &model.Complaint{
		Campus:      in.Campus,
		Category:    in.Category,
		Description: in.Description,
		UserEmail:   store.NormalizeEmail(actor),
	})
}

// UpdateComplaint edits the owner-editable fields of a ticket. The actor
// must own the ticket or hold admin, and a resolved ticket is immutable.
func (e *Engine) UpdateComplaint(ctx context.Context, actor string, id, version int64, in ComplaintInput) (*model.Complaint, error) {
	c, err := store.GetComplaint(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}

	caps, err := e.caps(ctx, actor, c.UserEmail)
	if err != nil {
		return nil, err
	}
	if !caps.Has(roles.Owner) && !caps.Has(roles.Admin) {
		return nil, apperr.ErrPermission
	}

	if c.Status == model.ComplaintStatusResolved {
		return nil, &apperr.InvalidTransitionError{
			Resource: "complaints", From: c.Status, To: c.Status,
		}
	}

	if err := store.UpdateComplaintFields(ctx, e.DB, id, version,
		in.Campus, in.Category, in.Description); err != nil {
		return nil, err
	}
	return store.GetComplaint(ctx, e.DB, id)
}

// SetComplaintStatus advances a ticket's status. Admin only; the move must
// be strictly forward through Submitted, In Progress, Resolved.
func (e *Engine) SetComplaintStatus(ctx context.Context, actor string, id, version int64, status string) (*model.Complaint, error) {
	c, err := store.GetComplaint(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}

	if err := checkTransition("complaints", model.ComplaintSequence, c.Status, status); err != nil {
		return nil, err
	}

	caps, err := e.caps(ctx, actor, c.UserEmail)
	if err != nil {
		return nil, err
	}
	if !caps.Has(roles.Admin) {
		return nil, apperr.ErrPermission
	}

	if err := store.UpdateComplaintStatus(ctx, e.DB, id, version, status); err != nil {
		return nil, err
	}
	return store.GetComplaint(ctx, e.DB, id)
}

// DeleteComplaint removes a ticket under the given view policy.
func (e *Engine) DeleteComplaint(ctx context.Context, actor string, id int64, policy ComplaintDeletePolicy) error {
	c, err := store.GetComplaint(ctx, e.DB, id)
	if err != nil {
		return err
	}

	caps, err := e.caps(ctx, actor, c.UserEmail)
	if err != nil {
		return err
	}

	switch policy {
	case ComplaintDeleteOwnerOnly:
		if !caps.Has(roles.Owner) {
			return apperr.ErrPermission
		}
	case ComplaintDeleteAdminOnly:
		if !caps.Has(roles.Admin) {
			return apperr.ErrPermission
		}
	default:
		return apperr.ErrPermission
	}

	return store.DeleteComplaint(ctx, e.DB, id)
}

package lifecycle

import (
	"context"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/roles"
	"github.com/mkamran/campushub/internal/store"
)

// VolunteerInput carries the client-supplied fields of a registration.
type VolunteerInput struct {
	Name     string
	RollNo   string
	Phone    string
	Event    string
	Duration string
}

// CreateVolunteer uploads the optional photo and persists a registration at
// Pending, owned by the actor. A failed upload aborts the create.
func (e *Engine) CreateVolunteer(ctx context.Context, actor string, in VolunteerInput, image *Upload) (*model.Volunteer, error) {
	if actor == "" {
		return nil, apperr.ErrAuth
	}

	imageURL, imageKey, err := e.putImage(ctx, image)
	if err != nil {
		return nil, err
	}

	v, err := store.CreateVolunteer(ctx, e.DB, &model.Volunteer{
		Name:      in.Name,
		RollNo:    in.RollNo,
		Phone:     in.Phone,
		Event:     in.Event,
		Duration:  in.Duration,
		UserEmail: store.NormalizeEmail(actor),
		ImageURL:  imageURL,
	})
	if err != nil {
		e.discardImage(ctx, imageKey)
		return nil, err
	}
	return v, nil
}

// SetVolunteerStatus advances a registration's status; the only defined move
// is Pending to Approved. The transition is validated before the actor.
// Admin only.
func (e *Engine) SetVolunteerStatus(ctx context.Context, actor string, id, version int64, status string) (*model.Volunteer, error) {
	v, err := store.GetVolunteer(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}

	if err := checkTransition("volunteers", model.VolunteerSequence,
		v.Status, status); err != nil {
		return nil, err
	}

	caps, err := e.caps(ctx, actor, v.UserEmail)
	if err != nil {
		return nil, err
	}
	if !caps.Has(roles.Admin) {
		return nil, apperr.ErrPermission
	}

	if err := store.UpdateVolunteerStatus(ctx, e.DB, id, version, status); err != nil {
		return nil, err
	}
	return store.GetVolunteer(ctx, e.DB, id)
}

// DeleteVolunteer removes a registration in any state. The actor must own
// it or hold admin.
func (e *Engine) DeleteVolunteer(ctx context.Context, actor string, id int64) error {
	v, err := store.GetVolunteer(ctx, e.DB, id)
	if err != nil {
		return err
	}

	caps, err := e.caps(ctx, actor, v.UserEmail)
	if err != nil {
		return err
	}
	if !caps.Has(roles.Owner) && !caps.Has(roles.Admin) {
		return apperr.ErrPermission
	}

	return store.DeleteVolunteer(ctx, e.DB, id)
}

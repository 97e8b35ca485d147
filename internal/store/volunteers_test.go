package store

import (
	"context"
	"errors"
	"testing"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/db"
	"github.com/mkamran/campushub/internal/model"
)

func newVolunteer(owner string) *model.Volunteer {
	return &model.Volunteer{
		Name:      "Ali Khan",
		RollNo:    "CS-2021-042",
		Phone:     "555-0100",
		Event:     "Blood Drive",
		Duration:  "4 hours",
		UserEmail: owner,
	}
}

func TestCreateVolunteer(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	v, err := CreateVolunteer(ctx, database, newVolunteer("ali@example.com"))
	if err != nil {
		t.Fatalf("CreateVolunteer: %v", err)
	}
	if v.Status != model.VolunteerStatusPending {
		t.Errorf("expected status 'Pending', got %q", v.Status)
	}
}

func TestListVolunteersOwnerScoped(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateVolunteer(ctx, database, newVolunteer("ali@example.com"))
	CreateVolunteer(ctx, database, newVolunteer("sara@example.com"))

	mine, err := ListVolunteers(ctx, database, "ali@example.com")
	if err != nil {
		t.Fatalf("ListVolunteers: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("expected 1 registration for owner, got %d", len(mine))
	}

	all, _ := ListVolunteers(ctx, database, "")
	if len(all) != 2 {
		t.Errorf("expected 2 registrations unscoped, got %d", len(all))
	}
}

func TestUpdateVolunteerStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	v, _ := CreateVolunteer(ctx, database, newVolunteer("ali@example.com"))

	if err := UpdateVolunteerStatus(ctx, database, v.ID, v.Version, model.VolunteerStatusApproved); err != nil {
		t.Fatalf("UpdateVolunteerStatus: %v", err)
	}
	got, _ := GetVolunteer(ctx, database, v.ID)
	if got.Status != model.VolunteerStatusApproved {
		t.Errorf("expected status 'Approved', got %q", got.Status)
	}

	err := UpdateVolunteerStatus(ctx, database, v.ID, v.Version, model.VolunteerStatusApproved)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected ErrConflict on stale version, got %v", err)
	}
}

func TestDeleteVolunteer(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	v, _ := CreateVolunteer(ctx, database, newVolunteer("ali@example.com"))

	if err := DeleteVolunteer(ctx, database, v.ID); err != nil {
		t.Fatalf("DeleteVolunteer: %v", err)
	}
	if _, err := GetVolunteer(ctx, database, v.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

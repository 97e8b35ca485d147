// Package roles computes the capability set an identity holds on a record.
// Admin membership comes from a pluggable Resolver so deployments can grant
// the role to any number of accounts instead of one hardcoded email.
package roles

import (
	"context"
	"database/sql"

	"github.com/mkamran/campushub/internal/store"
)

// Capability is a permission token gating actions on a record.
type Capability uint8

const (
	// Owner holds iff the record's user_email equals the acting identity.
	Owner Capability = 1 << iota
	// Admin holds iff the resolver grants the admin role to the identity.
	Admin
)

// Has reports whether the set contains the given capability.
func (c Capability) Has(cap Capability) bool { return c&cap != 0 }

// Resolver answers whether an identity holds the admin role.
type Resolver interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Capabilities returns the capability set the identity holds on a record
// owned by ownerEmail. An empty set means the action is forbidden; the
// resolver itself never treats that as an error.
func Capabilities(ctx context.Context, r Resolver, identity, ownerEmail string) (Capability, error) {
	var caps Capability
	if identity != "" && store.NormalizeEmail(identity) == store.NormalizeEmail(ownerEmail) {
		caps |= Owner
	}
	admin, err := r.IsAdmin(ctx, identity)
	if err != nil {
		return 0, err
	}
	if admin {
		caps |= Admin
	}
	return caps, nil
}

// StaticResolver grants admin to a fixed list of emails from configuration.
// It is the deployment analogue of the portal's original single-admin check.
type StaticResolver struct {
	admins map[string]bool
}

// NewStaticResolver builds a resolver over the given admin emails.
func NewStaticResolver(emails []string) *StaticResolver {
	admins := make(map[string]bool, len(emails))
	for _, e := range emails {
		admins[store.NormalizeEmail(e)] = true
	}
	return &StaticResolver{admins: admins}
}

func (r *StaticResolver) IsAdmin(_ context.Context, email string) (bool, error) {
	return r.admins[store.NormalizeEmail(email)], nil
}

// StoreResolver reads the admin role from the users table.
type StoreResolver struct {
	DB *sql.DB
}

func (r *StoreResolver) IsAdmin(ctx context.Context, email string) (bool, error) {
	return store.IsAdminEmail(ctx, r.DB, email)
}

// Chain grants admin when any of the underlying resolvers does. It lets a
// deployment combine configured admin emails with store-managed roles.
type Chain []Resolver

func (c Chain) IsAdmin(ctx context.Context, email string) (bool, error) {
	for _, r := range c {
		admin, err := r.IsAdmin(ctx, email)
		if err != nil {
			return false, err
		}
		if admin {
			return true, nil
		}
	}
	return false, nil
}

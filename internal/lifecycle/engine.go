// Package lifecycle is the single mutation path for portal records. Every
// create, status transition, field edit, and delete passes through the
// Engine, which resolves the actor's capabilities, validates the transition
// against the kind's status sequence, applies the write, and publishes the
// resulting mutation event.
package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/feed"
	"github.com/mkamran/campushub/internal/objectstore"
	"github.com/mkamran/campushub/internal/roles"
)

// Engine applies lifecycle operations on behalf of an acting identity.
type Engine struct {
	DB      *sql.DB
	Roles   roles.Resolver
	Feed    *feed.Bus
	Objects objectstore.Store

	// now is overridable in tests for deterministic object keys.
	now func() time.Time
}

// New wires an engine over its collaborators.
func New(db *sql.DB, resolver roles.Resolver, bus *feed.Bus, objects objectstore.Store) *Engine {
	return &Engine{DB: db, Roles: resolver, Feed: bus, Objects: objects, now: time.Now}
}

// Upload is an image attached to a create request, already validated and
// re-encoded by the imaging pipeline.
type Upload struct {
	Filename    string
	Data        []byte
	ContentType string
}

// caps resolves the actor's capability set on a record owned by ownerEmail.
// An empty actor has no session at all.
func (e *Engine) caps(ctx context.Context, actor, ownerEmail string) (roles.Capability, error) {
	if actor == "" {
		return 0, apperr.ErrAuth
	}
	return roles.Capabilities(ctx, e.Roles, actor, ownerEmail)
}

// checkTransition enforces monotonic forward movement through the kind's
// status sequence. Terminal states admit no transition at all.
func checkTransition(resource string, seq []string, from, to string) error {
	fromIdx, toIdx := -1, -1
	for i, s := range seq {
		if s == from {
			fromIdx = i
		}
		if s == to {
			toIdx = i
		}
	}
	if fromIdx < 0 || toIdx < 0 || toIdx <= fromIdx {
		return &apperr.InvalidTransitionError{Resource: resource, From: from, To: to}
	}
	return nil
}

// putImage stores an upload and returns its public URL. A storage failure
// aborts the caller's create before any record is written.
func (e *Engine) putImage(ctx context.Context, up *Upload) (string, string, error) {
	if up == nil {
		return "", "", nil
	}
	key := fmt.Sprintf("%d-%s", e.now().UnixMilli(), sanitizeFilename(up.Filename))
	url, err := e.Objects.Put(ctx, key, up.Data, up.ContentType)
	if err != nil {
		return "", "", &apperr.StorageError{Err: err}
	}
	return url, key, nil
}

// discardImage best-effort removes an object left behind by a failed insert.
func (e *Engine) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	_ = e.Objects.Delete(ctx, key)
}

// sanitizeFilename strips directories and characters that have no business
// in an object key.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}

package store

import (
	"context"

	"github.com/hasibdev/portfeed/model"
	"github.com/pkg/errors"
)

// TopicPostsChanged is the in-process event bus topic carrying change
// notifications for the active post collection. Consumers re-read the
// collection on every message; payloads carry no diff.
const TopicPostsChanged = "posts.changed"

var (
	// ErrNotFound signals a get for an id the backend does not hold. Distinct
	// from an operational failure so callers can render "not found" instead of
	// an error state.
	ErrNotFound = errors.New("post not found")

	// ErrBackendUnavailable signals that the remote backend could not be
	// initialized at bootstrap. The session stays on the local backend.
	ErrBackendUnavailable = errors.New("remote backend unavailable")

	// ErrRemoteOp signals a per-call failure against an initialized remote
	// backend. Each call site defines its own fallback.
	ErrRemoteOp = errors.New("remote operation failed")
)

// DocumentStore is the capability contract the repository and the migration
// need from the remote document collection: per-document add/get/delete plus
// an ordered listing. Ids are assigned by the store at insertion.
type DocumentStore interface {
	// Add inserts the post with its incoming id discarded and returns the
	// store-assigned id.
	Add(ctx context.Context, post model.Post) (string, error)
	// Get returns the post with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Post, error)
	// Delete removes the post with the given id. Failure means the caller must
	// not assume the deletion happened.
	Delete(ctx context.Context, id string) error
	// List returns all posts ordered by creation time, newest first.
	List(ctx context.Context) ([]model.Post, error)
}

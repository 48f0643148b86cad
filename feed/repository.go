package feed

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hasibdev/portfeed/imaging"
	"github.com/hasibdev/portfeed/model"
	"github.com/hasibdev/portfeed/store"
	Logger "github.com/hasibdev/portfeed/utils/log"
	"github.com/pkg/errors"
)

// ErrEmptyTitle blocks a save whose title is empty after trimming. The only
// write-time validation; everything else on a post is opaque.
var ErrEmptyTitle = errors.New("title must not be empty")

// SaveStatus tells the caller how far a save got.
type SaveStatus string

const (
	// StatusPublished means the post landed on the session's authoritative
	// backend.
	StatusPublished SaveStatus = "published"
	// StatusSavedLocally means the remote write failed and the post was kept
	// on the device instead. It will not reach the shared collection later;
	// there is no replay queue.
	StatusSavedLocally SaveStatus = "saved_locally"
)

// SaveInput is the raw editor form: trimmed and validated here, never by the
// entity itself.
type SaveInput struct {
	Title    string
	External string
	Content  string
	// ImageData holds the uploaded cover image bytes, nil when none attached.
	ImageData []byte
}

// Repository is the unified read/write/delete surface consumed by
// presentation code. Every call dispatches to the backend chosen at bootstrap
// and every incoming image runs through the pipeline before anything is
// persisted.
type Repository struct {
	sel      *store.Selection
	pipeline *imaging.Pipeline

	now func() time.Time
}

func NewRepository(sel *store.Selection, pipeline *imaging.Pipeline) *Repository {
	return &Repository{sel: sel, pipeline: pipeline, now: time.Now}
}

// Save validates input, derives the image artifacts and persists a new post.
//
// On the remote backend a failed add falls back to a device-local write and
// reports StatusSavedLocally. That is a deliberate deviation from the
// behavior this service replaces, which acknowledged the post without
// persisting it anywhere.
func (r *Repository) Save(ctx context.Context, input SaveInput) (*model.Post, SaveStatus, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, "", ErrEmptyTitle
	}

	processed := r.pipeline.Process(input.ImageData)
	now := r.now()
	post := model.Post{
		Id:       model.NewLocalID(now),
		Title:    title,
		External: strings.TrimSpace(input.External),
		Image:    processed.Image,
		Thumb:    processed.Thumb,
		Content:  input.Content,
		Created:  model.Timestamp(now),
	}

	if r.sel.Backend == store.BackendRemote {
		id, err := r.sel.Remote.Add(ctx, post)
		if err == nil {
			post.Id = id
			return &post, StatusPublished, nil
		}
		Logger.Log.Warn("remote save failed, keeping post on device: ", err)
		if err := r.sel.Local.Append(post); err != nil {
			return nil, "", errors.Wrap(err, "cannot save post locally after remote failure")
		}
		return &post, StatusSavedLocally, nil
	}

	if err := r.sel.Local.Append(post); err != nil {
		return nil, "", errors.Wrap(err, "cannot save post")
	}
	return &post, StatusPublished, nil
}

// List returns every post, newest first. A remote listing failure falls back
// to the device-local list rather than surfacing an error to the end user.
func (r *Repository) List(ctx context.Context) []model.Post {
	if r.sel.Backend == store.BackendRemote {
		posts, err := r.sel.Remote.List(ctx)
		if err == nil {
			return posts
		}
		Logger.Log.Warn("remote list failed, falling back to local posts: ", err)
	}
	return sortNewestFirst(r.sel.Local.ListAll())
}

// Get fetches a single post from the active backend. store.ErrNotFound is
// returned for an unknown id, distinct from a backend failure.
func (r *Repository) Get(ctx context.Context, id string) (*model.Post, error) {
	if r.sel.Backend == store.BackendRemote {
		return r.sel.Remote.Get(ctx, id)
	}
	for _, p := range r.sel.Local.ListAll() {
		if p.Id == id {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

// Delete removes a post from the active backend. On the remote backend a
// failure is returned to the caller untouched: there is no local mirror, so
// the caller must surface it as an actionable error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.sel.Backend == store.BackendRemote {
		return r.sel.Remote.Delete(ctx, id)
	}
	return r.sel.Local.Remove(id)
}

func sortNewestFirst(posts []model.Post) []model.Post {
	sorted := append([]model.Post{}, posts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Created > sorted[j].Created })
	return sorted
}

package feed

import (
	"encoding/json"
	"time"

	"github.com/hasibdev/portfeed/model"
	"github.com/hasibdev/portfeed/store"
	Logger "github.com/hasibdev/portfeed/utils/log"
	"github.com/pkg/errors"
)

// ErrNotArray rejects an import whose top-level value is not a JSON array.
// The whole import is refused; there is no partial merge.
var ErrNotArray = errors.New("import payload must be a JSON array")

// ImportExport moves the device-local post list in and out of the process as
// a JSON document. It operates on local data only, whatever backend is
// active: remote posts are not exported, and imports never touch the remote
// collection.
type ImportExport struct {
	local *store.LocalStore

	now func() time.Time
}

func NewImportExport(local *store.LocalStore) *ImportExport {
	return &ImportExport{local: local, now: time.Now}
}

// Export serializes the full local post list, indented for human readability.
func (s *ImportExport) Export() ([]byte, error) {
	raw, err := json.MarshalIndent(s.local.ListAll(), "", "  ")
	return raw, errors.Wrap(err, "cannot export local posts")
}

// importedPost is the permissive wire shape accepted at the import boundary.
// Any subset of post fields may be present; Created is a pointer so a missing
// timestamp can be told apart from an explicit zero.
type importedPost struct {
	Id       string `json:"id"`
	Title    string `json:"title"`
	External string `json:"external"`
	Image    string `json:"image"`
	Thumb    string `json:"thumb"`
	Content  string `json:"content"`
	Created  *int64 `json:"created"`
}

// Import parses data, normalizes each element and appends the result to the
// existing local list. Returns how many posts were merged in.
//
// Duplicate ids between the import and the existing list are not detected;
// an import of previously exported data merges, it does not replace.
func (s *ImportExport) Import(data []byte) (int, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return 0, ErrNotArray
	}

	now := s.now()
	posts := make([]model.Post, 0, len(elems))
	for i, raw := range elems {
		var in importedPost
		if err := json.Unmarshal(raw, &in); err != nil {
			// A non-object element normalizes to all defaults, same as a
			// record missing every field.
			Logger.Log.Warnf("import element %d is not an object, using defaults: %v", i, err)
			in = importedPost{}
		}
		posts = append(posts, normalize(in, now, i))
	}

	if err := s.local.Append(posts...); err != nil {
		return 0, errors.Wrap(err, "cannot persist imported posts")
	}
	return len(posts), nil
}

// normalize applies the per-field defaults exactly once, at the boundary:
// a missing id gets a fresh local token, missing scalars stay empty strings,
// a missing created timestamp becomes the import time. seq keeps generated
// ids distinct within one import batch.
func normalize(in importedPost, now time.Time, seq int) model.Post {
	id := in.Id
	if id == "" {
		id = model.NewLocalID(now.Add(time.Duration(seq) * time.Millisecond))
	}
	created := model.Timestamp(now)
	if in.Created != nil {
		created = *in.Created
	}
	return model.Post{
		Id:       id,
		Title:    in.Title,
		External: in.External,
		Image:    in.Image,
		Thumb:    in.Thumb,
		Content:  in.Content,
		Created:  created,
	}
}

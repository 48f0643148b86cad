package feed

import (
	"context"

	"github.com/hasibdev/portfeed/model"
	"github.com/hasibdev/portfeed/store"
	Logger "github.com/hasibdev/portfeed/utils/log"
	"github.com/jinzhu/copier"
)

// Migrate copies every device-local post into the remote collection exactly
// once, on the first session where the remote backend activated. It must run
// after backend selection and before the live subscription starts.
//
// The protocol is best-effort by design: each post is attempted in original
// order, a per-post failure is logged and skipped, and the persisted
// completion flag is set unconditionally after the loop. Partial failure
// still completes the migration — posts that failed to copy remain only in
// the local store and are never retried. There is no verification pass.
func Migrate(ctx context.Context, sel *store.Selection) error {
	if sel.Backend != store.BackendRemote {
		return nil
	}
	if sel.Local.MigrationDone() {
		Logger.Log.Info("local posts already migrated, skipping")
		return nil
	}

	posts := sel.Local.ListAll()
	if len(posts) == 0 {
		// Nothing to migrate. Still mark complete so later sessions never
		// re-attempt after local posts appear for other reasons.
		return sel.Local.MarkMigrationDone()
	}

	migrated := 0
	for i := range posts {
		// The remote store assigns a fresh id at insertion; the local token is
		// stripped here so it can never leak into the shared collection. Every
		// other field, including the precomputed thumbnail, is preserved.
		var stripped model.Post
		if err := copier.Copy(&stripped, &posts[i]); err != nil {
			Logger.Log.Warnf("cannot copy local post %s for migration, skipping: %v", posts[i].Id, err)
			continue
		}
		stripped.Id = ""
		if _, err := sel.Remote.Add(ctx, stripped); err != nil {
			Logger.Log.Warnf("cannot migrate local post %s, skipping: %v", posts[i].Id, err)
			continue
		}
		migrated++
	}
	Logger.Log.Infof("migrated %d/%d local posts to the remote store", migrated, len(posts))

	return sel.Local.MarkMigrationDone()
}

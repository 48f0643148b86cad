package store

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hasibdev/portfeed/model"
	Logger "github.com/hasibdev/portfeed/utils/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// redisChangeChannel carries one message per mutation of the remote post
// collection, fanned out to every session subscribed to it.
const redisChangeChannel = "portfeed__posts_changed"

// RemoteStore is the capability-restricted facade over the shared document
// collection: per-document add/get/delete, a created-desc listing, and a
// change subscription. The collection itself lives in Postgres; change
// notifications travel over a Redis channel and are bridged onto the
// in-process event bus.
//
// Ids are assigned here at insertion and are opaque to callers.
type RemoteStore struct {
	db  *gorm.DB
	rdb *redis.Client
	bus *gochannel.GoChannel
}

func NewRemoteStore(db *gorm.DB, rdb *redis.Client, bus *gochannel.GoChannel) *RemoteStore {
	return &RemoteStore{db: db, rdb: rdb, bus: bus}
}

// Add inserts post into the collection under a fresh store-assigned id,
// discarding whatever id the caller put on it. Returns the assigned id, or
// an empty id and ErrRemoteOp on failure.
func (s *RemoteStore) Add(ctx context.Context, post model.Post) (string, error) {
	post.Id = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		Logger.Log.Error("cannot add post to remote collection: ", err)
		return "", errors.Wrapf(ErrRemoteOp, "add post: %v", err)
	}
	s.publishChange(ctx)
	return post.Id, nil
}

// Get returns the post with the given id, ErrNotFound if the collection does
// not hold it, or ErrRemoteOp on call failure.
func (s *RemoteStore) Get(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(ErrRemoteOp, "get post %s: %v", id, err)
	}
	return &post, nil
}

// Delete removes the post with the given id. A returned error means the
// caller must not assume the deletion happened; there is no local mirror to
// fall back to.
func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&model.Post{}, "id = ?", id).Error; err != nil {
		return errors.Wrapf(ErrRemoteOp, "delete post %s: %v", id, err)
	}
	s.publishChange(ctx)
	return nil
}

// List returns the whole collection ordered by creation time descending. On
// failure callers fall back to the device-local list instead of surfacing the
// error to the end user.
func (s *RemoteStore) List(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := s.db.WithContext(ctx).Order("created DESC").Find(&posts).Error; err != nil {
		return nil, errors.Wrapf(ErrRemoteOp, "list posts: %v", err)
	}
	return posts, nil
}

// Subscribe opens the session's single subscription to the remote change
// channel and bridges every notification onto the event bus topic
// TopicPostsChanged until ctx is cancelled.
func (s *RemoteStore) Subscribe(ctx context.Context) error {
	pubsub := s.rdb.Subscribe(ctx, redisChangeChannel)
	// Force the subscription to be established before returning so no change
	// emitted after Subscribe is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		return errors.Wrapf(ErrRemoteOp, "subscribe to change channel: %v", err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				msg := message.NewMessage(watermill.NewUUID(), []byte("changed"))
				if err := s.bus.Publish(TopicPostsChanged, msg); err != nil {
					Logger.Log.Warn("cannot forward change notification: ", err)
				}
			}
		}
	}()
	return nil
}

// publishChange notifies every subscribed session that the collection
// changed. Best effort: a lost notification only delays the next re-render.
func (s *RemoteStore) publishChange(ctx context.Context) {
	if err := s.rdb.Publish(ctx, redisChangeChannel, "changed").Err(); err != nil {
		Logger.Log.Warn("cannot publish change notification: ", err)
	}
}

package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/hasibdev/portfeed/model"
)

// FakeDocumentStore is an in-memory DocumentStore for tests. Each failure
// switch makes the corresponding call fail the way the real remote store
// does.
type FakeDocumentStore struct {
	Posts []model.Post

	FailAdd    bool
	FailGet    bool
	FailDelete bool
	FailList   bool

	nextID int
}

func NewFakeDocumentStore() *FakeDocumentStore {
	return &FakeDocumentStore{Posts: []model.Post{}}
}

func (f *FakeDocumentStore) Add(ctx context.Context, post model.Post) (string, error) {
	if f.FailAdd {
		return "", ErrRemoteOp
	}
	f.nextID++
	post.Id = fmt.Sprintf("remote-%d", f.nextID)
	f.Posts = append(f.Posts, post)
	return post.Id, nil
}

func (f *FakeDocumentStore) Get(ctx context.Context, id string) (*model.Post, error) {
	if f.FailGet {
		return nil, ErrRemoteOp
	}
	for i := range f.Posts {
		if f.Posts[i].Id == id {
			p := f.Posts[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (f *FakeDocumentStore) Delete(ctx context.Context, id string) error {
	if f.FailDelete {
		return ErrRemoteOp
	}
	for i := range f.Posts {
		if f.Posts[i].Id == id {
			f.Posts = append(f.Posts[:i], f.Posts[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *FakeDocumentStore) List(ctx context.Context) ([]model.Post, error) {
	if f.FailList {
		return nil, ErrRemoteOp
	}
	posts := append([]model.Post{}, f.Posts...)
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Created > posts[j].Created })
	return posts, nil
}

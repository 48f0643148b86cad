package model

import (
	"strconv"
	"time"
)

/*

Post is a single entry in the portfolio's feed

Id: primary key. Generated locally as a time-based token at creation, but when
		the post is persisted to the remote document store the store assigns a
		fresh identifier at insertion and that one is authoritative from then on.
		Treat as opaque and immutable either way.
Title: post's title in plain text, required to be non-empty at write time
External: optional URL. A non-empty value routes the post into the "external"
		display group, regardless of whether Content is also present
Image: bounded full-size encoding of the uploaded cover image, empty if none
Thumb: fixed-dimension center-cropped thumbnail derived from the same upload
Content: raw markup produced by the editor, opaque to the store
Created: unix milliseconds at write time, the sole sort key (descending),
		never mutated

A post is only ever created and deleted, never updated in place.
*/

type Post struct {
	Id       string `json:"id" gorm:"primaryKey"`
	Title    string `json:"title"`
	External string `json:"external"`
	Image    string `json:"image"`
	Thumb    string `json:"thumb"`
	Content  string `json:"content"`
	Created  int64  `json:"created" gorm:"index:idx_posts_created,sort:desc"`
}

func (p *Post) IsExternal() bool {
	return p.External != ""
}

// NewLocalID generates the device-local post identifier, a time-based token.
// Only meaningful while the local backend is authoritative; the remote store
// replaces it on insert.
func NewLocalID(t time.Time) string {
	return "p" + strconv.FormatInt(t.UnixNano()/int64(time.Millisecond), 36)
}

// Timestamp returns t as the epoch-millisecond value stored in Created.
func Timestamp(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// SplitGroups partitions posts into the external and internal display groups.
// Grouping is decided by the presence of the external link alone.
func SplitGroups(posts []Post) (external []Post, internal []Post) {
	external = []Post{}
	internal = []Post{}
	for _, p := range posts {
		if p.IsExternal() {
			external = append(external, p)
		} else {
			internal = append(internal, p)
		}
	}
	return external, internal
}

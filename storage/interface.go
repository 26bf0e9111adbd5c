package storage

import "context"

// Database records the ids of content that has already been submitted,
// so a restarted robot never posts the same item twice. The engine
// only ever asks two things of it: remember an id, and answer whether
// an id was seen before.
type Database interface {
	// StorePostedTweet records that the content identified by id was
	// submitted as tweetID. Storing the same id twice is not an error.
	StorePostedTweet(ctx context.Context, id, tweetID string) error
	// IsTweetPosted reports whether id was recorded before.
	IsTweetPosted(ctx context.Context, id string) (bool, error)
	Close() error
}

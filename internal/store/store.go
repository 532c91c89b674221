// Package store provides access to the document database holding users and
// tweets. Backends address records by collection name and document key.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/hmans/tweetgraph/internal/model"
)

// Collection names.
const (
	UsersCollection  = "users"
	TweetsCollection = "tweets"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Store is the set of document database calls the API makes. Each method
// maps to a single read or write against the backend.
type Store interface {
	// ListTweets returns every tweet, unfiltered and unpaginated.
	ListTweets(ctx context.Context) ([]*model.Tweet, error)
	// TweetsByUser returns the tweets whose userId equals userID.
	TweetsByUser(ctx context.Context, userID string) ([]*model.Tweet, error)
	// GetTweet returns the tweet stored under id, or ErrNotFound.
	GetTweet(ctx context.Context, id string) (*model.Tweet, error)
	// CreateTweet stores a new tweet under a freshly allocated id.
	CreateTweet(ctx context.Context, input model.TweetInput) (*model.Tweet, error)
	// GetUser returns the user stored under id, or ErrNotFound.
	GetUser(ctx context.Context, id string) (*model.User, error)
	// PutUser creates or replaces the user stored under u.ID.
	PutUser(ctx context.Context, u *model.User) error
	Close() error
}

// IsNotFound reports whether err signals a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// validID reports whether id names a single document. A slash would
// address a subcollection path instead.
func validID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}

func userPath(id string) string {
	return UsersCollection + "/" + id
}

func tweetPath(id string) string {
	return TweetsCollection + "/" + id
}

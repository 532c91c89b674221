// Package model holds the records stored in the document database.
package model

// User is a document in the users collection, keyed by ID.
type User struct {
	ID            string `firestore:"id" json:"id" yaml:"id"`
	Name          string `firestore:"name" json:"name" yaml:"name"`
	ScreenName    string `firestore:"screenName" json:"screenName" yaml:"screenName"`
	StatusesCount int    `firestore:"statusesCount" json:"statusesCount" yaml:"statusesCount"`
}

// Tweet is a document in the tweets collection. UserID is not checked
// against the users collection.
type Tweet struct {
	ID     string `firestore:"id" json:"id" yaml:"id"`
	Text   string `firestore:"text" json:"text" yaml:"text"`
	UserID string `firestore:"userId" json:"userId" yaml:"userId"`
	Likes  int    `firestore:"likes" json:"likes" yaml:"likes"`
}

// TweetInput carries the caller-supplied fields of a new tweet.
type TweetInput struct {
	Text   string `json:"text" yaml:"text"`
	UserID string `json:"userId" yaml:"userId"`
}

// NewTweet builds the record persisted for input under the given id.
// Likes always start at zero.
func NewTweet(id string, input TweetInput) *Tweet {
	return &Tweet{
		ID:     id,
		Text:   input.Text,
		UserID: input.UserID,
	}
}

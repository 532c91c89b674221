package graph

import (
	"context"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"github.com/hmans/tweetgraph/internal/model"
	"github.com/hmans/tweetgraph/internal/store"
)

// Resolver is the root resolver for the GraphQL schema. It serves both the
// Query and Mutation types. Every field makes exactly one store call; nested
// relationships are fetched again for each parent record.
type Resolver struct {
	Store  store.Store
	Logger *zap.Logger

	// CheckTweetAuthor makes CreateTweet reject a userId with no matching user.
	CheckTweetAuthor bool
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// fail logs a store failure and converts it to the generic API error.
func (r *Resolver) fail(ctx context.Context, field string, err error) error {
	if ctx.Err() == nil {
		r.logger().Error("resolver failed", zap.String("field", field), zap.Error(err))
	}
	return internalError(err)
}

// Tweets resolves Query.tweets.
func (r *Resolver) Tweets(ctx context.Context) (*[]*TweetResolver, error) {
	tweets, err := r.Store.ListTweets(ctx)
	if err != nil {
		return nil, r.fail(ctx, "Query.tweets", err)
	}
	list := r.tweetResolvers(tweets)
	return &list, nil
}

// UserArgs are the arguments of Query.user.
type UserArgs struct {
	ID string
}

// User resolves Query.user. An unknown id resolves to null.
func (r *Resolver) User(ctx context.Context, args UserArgs) (*UserResolver, error) {
	return r.lookupUser(ctx, "Query.user", args.ID)
}

// CreateTweetArgs are the arguments of Mutation.createTweet.
type CreateTweetArgs struct {
	Input model.TweetInput
}

// CreateTweet resolves Mutation.createTweet. Each call stores a new record,
// so repeating a request creates a duplicate with a different id.
func (r *Resolver) CreateTweet(ctx context.Context, args CreateTweetArgs) (*TweetResolver, error) {
	if r.CheckTweetAuthor {
		_, err := r.Store.GetUser(ctx, args.Input.UserID)
		if store.IsNotFound(err) {
			return nil, badUserInput(fmt.Sprintf("user %q does not exist", args.Input.UserID))
		}
		if err != nil {
			return nil, r.fail(ctx, "Mutation.createTweet", err)
		}
	}

	tweet, err := r.Store.CreateTweet(ctx, args.Input)
	if err != nil {
		return nil, r.fail(ctx, "Mutation.createTweet", err)
	}
	r.logger().Debug("created tweet", zap.String("id", tweet.ID), zap.String("user_id", tweet.UserID))
	return &TweetResolver{r: r, tweet: tweet}, nil
}

// lookupUser maps a missing user to a nil resolver rather than an error.
func (r *Resolver) lookupUser(ctx context.Context, field, id string) (*UserResolver, error) {
	user, err := r.Store.GetUser(ctx, id)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, field, err)
	}
	return &UserResolver{r: r, user: user}, nil
}

func (r *Resolver) tweetResolvers(tweets []*model.Tweet) []*TweetResolver {
	list := make([]*TweetResolver, len(tweets))
	for i, t := range tweets {
		list[i] = &TweetResolver{r: r, tweet: t}
	}
	return list
}

// UserResolver resolves the fields of the User type.
type UserResolver struct {
	r    *Resolver
	user *model.User
}

func (u *UserResolver) ID() graphql.ID {
	return graphql.ID(u.user.ID)
}

func (u *UserResolver) Name() string {
	return u.user.Name
}

func (u *UserResolver) ScreenName() string {
	return u.user.ScreenName
}

func (u *UserResolver) StatusesCount() int32 {
	return int32(u.user.StatusesCount)
}

// Tweets queries the tweets whose userId matches this user.
func (u *UserResolver) Tweets(ctx context.Context) ([]*TweetResolver, error) {
	tweets, err := u.r.Store.TweetsByUser(ctx, u.user.ID)
	if err != nil {
		return nil, u.r.fail(ctx, "User.tweets", err)
	}
	return u.r.tweetResolvers(tweets), nil
}

// TweetResolver resolves the fields of the Tweets type.
type TweetResolver struct {
	r     *Resolver
	tweet *model.Tweet
}

func (t *TweetResolver) ID() graphql.ID {
	return graphql.ID(t.tweet.ID)
}

func (t *TweetResolver) Text() string {
	return t.tweet.Text
}

func (t *TweetResolver) UserID() string {
	return t.tweet.UserID
}

func (t *TweetResolver) Likes() int32 {
	return int32(t.tweet.Likes)
}

// User fetches the author; null when the referenced user does not exist.
func (t *TweetResolver) User(ctx context.Context) (*UserResolver, error) {
	return t.r.lookupUser(ctx, "Tweets.user", t.tweet.UserID)
}

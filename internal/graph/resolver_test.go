package graph

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/hmans/tweetgraph/internal/model"
	"github.com/hmans/tweetgraph/internal/store"
)

func setupTestResolver(t *testing.T) (*Resolver, store.Store) {
	t.Helper()
	s, err := store.OpenBadger("", nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Resolver{Store: s}, s
}

func createTestUser(t *testing.T, s store.Store, id, name string) *model.User {
	t.Helper()
	u := &model.User{ID: id, Name: name, ScreenName: id, StatusesCount: 1}
	if err := s.PutUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func createTestTweet(t *testing.T, s store.Store, text, userID string) *model.Tweet {
	t.Helper()
	tw, err := s.CreateTweet(context.Background(), model.TweetInput{Text: text, UserID: userID})
	if err != nil {
		t.Fatalf("failed to create test tweet: %v", err)
	}
	return tw
}

// failingStore fails every call.
type failingStore struct {
	store.Store
	err error
}

func (f *failingStore) ListTweets(context.Context) ([]*model.Tweet, error) { return nil, f.err }
func (f *failingStore) TweetsByUser(context.Context, string) ([]*model.Tweet, error) {
	return nil, f.err
}
func (f *failingStore) GetUser(context.Context, string) (*model.User, error) { return nil, f.err }
func (f *failingStore) CreateTweet(context.Context, model.TweetInput) (*model.Tweet, error) {
	return nil, f.err
}

func sortedIDs(tweets []*TweetResolver) []string {
	ids := make([]string, len(tweets))
	for i, tw := range tweets {
		ids[i] = string(tw.ID())
	}
	sort.Strings(ids)
	return ids
}

func TestQueryUser(t *testing.T) {
	resolver, s := setupTestResolver(t)
	ctx := context.Background()

	createTestUser(t, s, "jack", "Jack Dorsey")

	t.Run("found", func(t *testing.T) {
		got, err := resolver.User(ctx, UserArgs{ID: "jack"})
		if err != nil {
			t.Fatalf("User() error = %v", err)
		}
		if got == nil {
			t.Fatal("User() returned nil")
		}
		if got.ID() != "jack" {
			t.Errorf("User().ID() = %q, want %q", got.ID(), "jack")
		}
		if got.Name() != "Jack Dorsey" {
			t.Errorf("User().Name() = %q, want %q", got.Name(), "Jack Dorsey")
		}
		if got.ScreenName() != "jack" {
			t.Errorf("User().ScreenName() = %q, want %q", got.ScreenName(), "jack")
		}
		if got.StatusesCount() != 1 {
			t.Errorf("User().StatusesCount() = %d, want 1", got.StatusesCount())
		}
	})

	t.Run("not found", func(t *testing.T) {
		got, err := resolver.User(ctx, UserArgs{ID: "nonexistent"})
		if err != nil {
			t.Fatalf("User() error = %v", err)
		}
		if got != nil {
			t.Errorf("User() = %v, want nil", got)
		}
	})
}

func TestQueryTweets(t *testing.T) {
	resolver, s := setupTestResolver(t)
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		got, err := resolver.Tweets(ctx)
		if err != nil {
			t.Fatalf("Tweets() error = %v", err)
		}
		if got == nil || len(*got) != 0 {
			t.Errorf("Tweets() = %v, want empty list", got)
		}
	})

	createTestTweet(t, s, "first", "jack")
	createTestTweet(t, s, "second", "jill")
	createTestTweet(t, s, "third", "ghost")

	t.Run("all tweets", func(t *testing.T) {
		got, err := resolver.Tweets(ctx)
		if err != nil {
			t.Fatalf("Tweets() error = %v", err)
		}
		if len(*got) != 3 {
			t.Errorf("Tweets() count = %d, want 3", len(*got))
		}
	})
}

func TestUserTweets(t *testing.T) {
	resolver, s := setupTestResolver(t)
	ctx := context.Background()

	createTestUser(t, s, "jack", "Jack")
	createTestUser(t, s, "jill", "Jill")
	want := []string{
		createTestTweet(t, s, "one", "jack").ID,
		createTestTweet(t, s, "two", "jack").ID,
	}
	sort.Strings(want)
	createTestTweet(t, s, "three", "jill")

	user, err := resolver.User(ctx, UserArgs{ID: "jack"})
	if err != nil || user == nil {
		t.Fatalf("User() = %v, %v", user, err)
	}

	got, err := user.Tweets(ctx)
	if err != nil {
		t.Fatalf("Tweets() error = %v", err)
	}
	gotIDs := sortedIDs(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("Tweets() count = %d, want %d", len(gotIDs), len(want))
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Errorf("Tweets()[%d].ID = %q, want %q", i, gotIDs[i], want[i])
		}
	}

	t.Run("user without tweets", func(t *testing.T) {
		createTestUser(t, s, "quiet", "Quiet")
		quiet, _ := resolver.User(ctx, UserArgs{ID: "quiet"})
		got, err := quiet.Tweets(ctx)
		if err != nil {
			t.Fatalf("Tweets() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Tweets() = %v, want empty non-nil list", got)
		}
	})
}

func TestTweetUser(t *testing.T) {
	resolver, s := setupTestResolver(t)
	ctx := context.Background()

	createTestUser(t, s, "jack", "Jack")
	createTestTweet(t, s, "mine", "jack")
	createTestTweet(t, s, "orphan", "ghost")

	tweets, err := resolver.Tweets(ctx)
	if err != nil {
		t.Fatalf("Tweets() error = %v", err)
	}

	for _, tw := range *tweets {
		author, err := tw.User(ctx)
		if err != nil {
			t.Fatalf("User() error = %v", err)
		}
		switch tw.Text() {
		case "mine":
			if author == nil || author.ID() != "jack" {
				t.Errorf("author of %q = %v, want jack", tw.Text(), author)
			}
		case "orphan":
			if author != nil {
				t.Errorf("author of %q = %v, want nil", tw.Text(), author)
			}
		}
	}
}

func TestCreateTweet(t *testing.T) {
	resolver, s := setupTestResolver(t)
	ctx := context.Background()
	input := model.TweetInput{Text: "hello world", UserID: "jack"}

	got, err := resolver.CreateTweet(ctx, CreateTweetArgs{Input: input})
	if err != nil {
		t.Fatalf("CreateTweet() error = %v", err)
	}
	if got.ID() == "" {
		t.Error("CreateTweet().ID() is empty")
	}
	if got.Text() != "hello world" {
		t.Errorf("Text() = %q, want %q", got.Text(), "hello world")
	}
	if got.UserID() != "jack" {
		t.Errorf("UserID() = %q, want %q", got.UserID(), "jack")
	}
	if got.Likes() != 0 {
		t.Errorf("Likes() = %d, want 0", got.Likes())
	}

	stored, err := s.GetTweet(ctx, string(got.ID()))
	if err != nil {
		t.Fatalf("GetTweet() error = %v", err)
	}
	if stored.Text != input.Text || stored.UserID != input.UserID || stored.Likes != 0 {
		t.Errorf("stored tweet = %+v, want text/userId from input and zero likes", stored)
	}

	t.Run("duplicate input creates a new record", func(t *testing.T) {
		again, err := resolver.CreateTweet(ctx, CreateTweetArgs{Input: input})
		if err != nil {
			t.Fatalf("CreateTweet() error = %v", err)
		}
		if again.ID() == got.ID() {
			t.Errorf("CreateTweet() reused id %q", got.ID())
		}
	})
}

func TestCreateTweetCheckAuthor(t *testing.T) {
	resolver, s := setupTestResolver(t)
	resolver.CheckTweetAuthor = true
	ctx := context.Background()

	createTestUser(t, s, "jack", "Jack")

	t.Run("known author", func(t *testing.T) {
		_, err := resolver.CreateTweet(ctx, CreateTweetArgs{Input: model.TweetInput{Text: "ok", UserID: "jack"}})
		if err != nil {
			t.Fatalf("CreateTweet() error = %v", err)
		}
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := resolver.CreateTweet(ctx, CreateTweetArgs{Input: model.TweetInput{Text: "nope", UserID: "ghost"}})
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("CreateTweet() error = %v, want *APIError", err)
		}
		if apiErr.Code != CodeBadUserInput {
			t.Errorf("Code = %q, want %q", apiErr.Code, CodeBadUserInput)
		}
	})
}

func TestStoreFailuresBecomeInternalErrors(t *testing.T) {
	cause := errors.New("connection reset")
	resolver := &Resolver{Store: &failingStore{err: cause}}
	ctx := context.Background()

	checkErr := func(t *testing.T, err error) {
		t.Helper()
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want *APIError", err)
		}
		if apiErr.Code != CodeInternal {
			t.Errorf("Code = %q, want %q", apiErr.Code, CodeInternal)
		}
		if apiErr.Error() != "internal server error" {
			t.Errorf("Error() = %q, want generic message", apiErr.Error())
		}
		if !errors.Is(err, cause) {
			t.Error("cause not preserved for logging")
		}
	}

	t.Run("tweets", func(t *testing.T) {
		_, err := resolver.Tweets(ctx)
		checkErr(t, err)
	})
	t.Run("user", func(t *testing.T) {
		_, err := resolver.User(ctx, UserArgs{ID: "jack"})
		checkErr(t, err)
	})
	t.Run("createTweet", func(t *testing.T) {
		_, err := resolver.CreateTweet(ctx, CreateTweetArgs{Input: model.TweetInput{Text: "x", UserID: "jack"}})
		checkErr(t, err)
	})
	t.Run("user tweets", func(t *testing.T) {
		u := &UserResolver{r: resolver, user: &model.User{ID: "jack"}}
		_, err := u.Tweets(ctx)
		checkErr(t, err)
	})
	t.Run("tweet user", func(t *testing.T) {
		tw := &TweetResolver{r: resolver, tweet: &model.Tweet{ID: "t1", UserID: "jack"}}
		_, err := tw.User(ctx)
		checkErr(t, err)
	})
}

package store

import (
	"context"
	"time"

	"github.com/hmans/tweetgraph/internal/metrics"
	"github.com/hmans/tweetgraph/internal/model"
)

// Instrumented decorates a Store with per-operation call counts and latency.
type Instrumented struct {
	next    Store
	metrics *metrics.Metrics
}

// Instrument wraps s so every call is recorded in m.
func Instrument(s Store, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: s, metrics: m}
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case IsNotFound(err):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	s.metrics.StoreOperationsTotal.WithLabelValues(op, result).Inc()
	s.metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *Instrumented) ListTweets(ctx context.Context) ([]*model.Tweet, error) {
	start := time.Now()
	tweets, err := s.next.ListTweets(ctx)
	s.observe("list_tweets", start, err)
	return tweets, err
}

func (s *Instrumented) TweetsByUser(ctx context.Context, userID string) ([]*model.Tweet, error) {
	start := time.Now()
	tweets, err := s.next.TweetsByUser(ctx, userID)
	s.observe("tweets_by_user", start, err)
	return tweets, err
}

func (s *Instrumented) GetTweet(ctx context.Context, id string) (*model.Tweet, error) {
	start := time.Now()
	t, err := s.next.GetTweet(ctx, id)
	s.observe("get_tweet", start, err)
	return t, err
}

func (s *Instrumented) CreateTweet(ctx context.Context, input model.TweetInput) (*model.Tweet, error) {
	start := time.Now()
	t, err := s.next.CreateTweet(ctx, input)
	s.observe("create_tweet", start, err)
	return t, err
}

func (s *Instrumented) GetUser(ctx context.Context, id string) (*model.User, error) {
	start := time.Now()
	u, err := s.next.GetUser(ctx, id)
	s.observe("get_user", start, err)
	return u, err
}

func (s *Instrumented) PutUser(ctx context.Context, u *model.User) error {
	start := time.Now()
	err := s.next.PutUser(ctx, u)
	s.observe("put_user", start, err)
	return err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}

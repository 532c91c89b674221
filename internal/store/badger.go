package store

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hmans/tweetgraph/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxTxnAttempts bounds retries of a write transaction that lost a conflict.
const maxTxnAttempts = 5

// BadgerStore keeps each document as a JSON value under "<collection>/<id>".
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
}

// OpenBadger opens an embedded store at dir. An empty dir keeps all data in
// memory, which is what tests use.
func OpenBadger(dir string, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir).WithLogger(&badgerLogger{logger.Sugar()})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger store at %q", dir)
	}
	logger.Info("opened badger store", zap.String("dir", dir), zap.Bool("in_memory", dir == ""))
	return &BadgerStore{db: db, logger: logger}, nil
}

func (s *BadgerStore) ListTweets(ctx context.Context) ([]*model.Tweet, error) {
	return s.scanTweets(ctx, func(*model.Tweet) bool { return true })
}

func (s *BadgerStore) TweetsByUser(ctx context.Context, userID string) ([]*model.Tweet, error) {
	return s.scanTweets(ctx, func(t *model.Tweet) bool { return t.UserID == userID })
}

func (s *BadgerStore) GetTweet(ctx context.Context, id string) (*model.Tweet, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var t model.Tweet
	if err := s.get(ctx, tweetPath(id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *BadgerStore) CreateTweet(ctx context.Context, input model.TweetInput) (*model.Tweet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tweet *model.Tweet
	err := s.update(func(txn *badger.Txn) error {
		// Regenerate on the (unlikely) collision with an existing key
		for {
			tweet = model.NewTweet(NewID(), input)
			_, err := txn.Get([]byte(tweetPath(tweet.ID)))
			if errors.Is(err, badger.ErrKeyNotFound) {
				break
			}
			if err != nil {
				return err
			}
		}
		return setJSON(txn, tweetPath(tweet.ID), tweet)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating document in %s", TweetsCollection)
	}
	return tweet, nil
}

func (s *BadgerStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var u model.User
	if err := s.get(ctx, userPath(id), &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		u.ID = id
	}
	return &u, nil
}

func (s *BadgerStore) PutUser(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.ID == "" {
		return errors.New("user id is required")
	}
	if !validID(u.ID) {
		return errors.Errorf("invalid user id %q", u.ID)
	}
	err := s.update(func(txn *badger.Txn) error {
		return setJSON(txn, userPath(u.ID), u)
	})
	return errors.Wrapf(err, "writing %s", userPath(u.ID))
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// get decodes the document at path into v.
func (s *BadgerStore) get(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return errors.Wrapf(err, "reading %s", path)
}

// scanTweets iterates the tweets collection, keeping documents for which
// keep returns true.
func (s *BadgerStore) scanTweets(ctx context.Context, keep func(*model.Tweet) bool) ([]*model.Tweet, error) {
	prefix := []byte(TweetsCollection + "/")
	tweets := []*model.Tweet{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var t model.Tweet
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				return errors.Wrapf(err, "decoding %s", it.Item().Key())
			}
			if keep(&t) {
				tweets = append(tweets, &t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", TweetsCollection)
	}
	return tweets, nil
}

// update runs fn in a read-write transaction, retrying when another
// transaction committed a conflicting write first.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 1; attempt <= maxTxnAttempts; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug("badger transaction conflict, retrying", zap.Int("attempt", attempt))
	}
	return err
}

func setJSON(txn *badger.Txn, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(path), data)
}

// badgerLogger routes badger's internal logging onto zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

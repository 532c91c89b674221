package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hmans/tweetgraph/internal/config"
	"github.com/hmans/tweetgraph/internal/model"
)

// FirestoreStore reads and writes users and tweets in Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// OpenFirestore creates a Firestore client authenticated with the
// service-account file named in cfg. The project id is taken from the
// credentials when cfg leaves it empty. When FIRESTORE_EMULATOR_HOST is set
// the client talks to the emulator instead.
func OpenFirestore(ctx context.Context, cfg config.FirestoreConfig, logger *zap.Logger) (*FirestoreStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	databaseID := cfg.DatabaseID
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to firestore with credentials %q", cfg.CredentialsFile)
	}
	logger.Info("connected to firestore",
		zap.String("project_id", cfg.ProjectID),
		zap.String("database_id", databaseID),
		zap.String("credentials_file", cfg.CredentialsFile))

	return NewFirestore(client, logger), nil
}

// NewFirestore wraps an existing client.
func NewFirestore(client *firestore.Client, logger *zap.Logger) *FirestoreStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirestoreStore{client: client, logger: logger}
}

func (s *FirestoreStore) ListTweets(ctx context.Context) ([]*model.Tweet, error) {
	snaps, err := s.client.Collection(TweetsCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading collection %s", TweetsCollection)
	}
	return decodeTweets(snaps)
}

func (s *FirestoreStore) TweetsByUser(ctx context.Context, userID string) ([]*model.Tweet, error) {
	snaps, err := s.client.Collection(TweetsCollection).
		Where("userId", "==", userID).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s where userId == %q", TweetsCollection, userID)
	}
	return decodeTweets(snaps)
}

func (s *FirestoreStore) GetTweet(ctx context.Context, id string) (*model.Tweet, error) {
	snap, err := s.getDoc(ctx, TweetsCollection, id)
	if err != nil {
		return nil, err
	}
	var t model.Tweet
	if err := snap.DataTo(&t); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", snap.Ref.Path)
	}
	if t.ID == "" {
		t.ID = snap.Ref.ID
	}
	return &t, nil
}

func (s *FirestoreStore) CreateTweet(ctx context.Context, input model.TweetInput) (*model.Tweet, error) {
	ref := s.client.Collection(TweetsCollection).NewDoc()
	tweet := model.NewTweet(ref.ID, input)
	if _, err := ref.Set(ctx, tweet); err != nil {
		return nil, errors.Wrapf(err, "writing %s", tweetPath(ref.ID))
	}
	return tweet, nil
}

func (s *FirestoreStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	snap, err := s.getDoc(ctx, UsersCollection, id)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := snap.DataTo(&u); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", snap.Ref.Path)
	}
	if u.ID == "" {
		u.ID = snap.Ref.ID
	}
	return &u, nil
}

func (s *FirestoreStore) PutUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		return errors.New("user id is required")
	}
	if !validID(u.ID) {
		return errors.Errorf("invalid user id %q", u.ID)
	}
	_, err := s.client.Collection(UsersCollection).Doc(u.ID).Set(ctx, u)
	return errors.Wrapf(err, "writing %s", userPath(u.ID))
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// getDoc fetches document id of collection. An id that cannot name a
// document in that collection is reported as not found.
func (s *FirestoreStore) getDoc(ctx context.Context, collection, id string) (*firestore.DocumentSnapshot, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s/%s", collection, id)
	}
	return snap, nil
}

func decodeTweets(snaps []*firestore.DocumentSnapshot) ([]*model.Tweet, error) {
	tweets := make([]*model.Tweet, 0, len(snaps))
	for _, snap := range snaps {
		var t model.Tweet
		if err := snap.DataTo(&t); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", snap.Ref.Path)
		}
		if t.ID == "" {
			t.ID = snap.Ref.ID
		}
		tweets = append(tweets, &t)
	}
	return tweets, nil
}

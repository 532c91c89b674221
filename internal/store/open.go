package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hmans/tweetgraph/internal/config"
)

// Open creates the backend selected by cfg.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendFirestore:
		s, err = OpenFirestore(ctx, cfg.Firestore, logger)
	case config.BackendBadger:
		s, err = OpenBadger(cfg.Badger.Dir, logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

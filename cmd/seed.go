package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hmans/tweetgraph/internal/model"
	"github.com/hmans/tweetgraph/internal/store"
)

// SeedFile is the layout of a seed file.
type SeedFile struct {
	Users  []model.User       `yaml:"users"`
	Tweets []model.TweetInput `yaml:"tweets"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load users and tweets from a YAML file",
	Long: `Writes the users and tweets listed in a YAML file to the store.

Users are written under their id, replacing any existing user with the same
id. Tweets are always created as new records with generated ids.

Example file:

  users:
    - id: jack
      name: Jack Dorsey
      screenName: jack
      statusesCount: 1
  tweets:
    - text: just setting up my twttr
      userId: jack`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		seed, err := loadSeedFile(args[0])
		if err != nil {
			return err
		}

		users, tweets, err := applySeed(ctx, db, seed)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users and %d tweets\n", users, tweets)
		return nil
	},
}

func loadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	for i, u := range seed.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("users[%d]: id is required", i)
		}
	}
	return &seed, nil
}

// applySeed writes seed to s and returns how many users and tweets it wrote.
func applySeed(ctx context.Context, s store.Store, seed *SeedFile) (int, int, error) {
	for i := range seed.Users {
		if err := s.PutUser(ctx, &seed.Users[i]); err != nil {
			return i, 0, fmt.Errorf("writing user %q: %w", seed.Users[i].ID, err)
		}
	}
	for i, input := range seed.Tweets {
		if _, err := s.CreateTweet(ctx, input); err != nil {
			return len(seed.Users), i, fmt.Errorf("writing tweets[%d]: %w", i, err)
		}
	}
	return len(seed.Users), len(seed.Tweets), nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

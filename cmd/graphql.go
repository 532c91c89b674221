package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"golang.org/x/term"

	"github.com/hmans/tweetgraph/internal/graph"
)

var (
	queryJSON       bool
	queryVariables  string
	queryOperation  string
	querySchemaOnly bool
)

var graphqlCmd = &cobra.Command{
	Use:     "graphql <query>",
	Aliases: []string{"query", "q"},
	Short:   "Execute a GraphQL query or mutation",
	Long: `Execute a GraphQL query or mutation against the configured store.

The argument should be a valid GraphQL query or mutation string.

Examples:
  # List all tweets
  tweetgraph graphql '{ tweets { id text likes } }'

  # Get a user with their tweets
  tweetgraph graphql '{ user(id: "jack") { name tweets { text } } }'

  # Create a tweet
  tweetgraph graphql 'mutation { createTweet(input: {text: "hi", userId: "jack"}) { id } }'

  # Use variables
  tweetgraph graphql -v '{"id": "jack"}' 'query GetUser($id: String!) { user(id: $id) { name } }'

  # Read from stdin
  cat query.graphql | tweetgraph graphql

  # Print the schema
  tweetgraph graphql --schema`,
	Args: func(cmd *cobra.Command, args []string) error {
		if querySchemaOnly {
			return nil
		}
		// Allow 0 args if stdin has data, or exactly 1 arg
		if len(args) > 1 {
			return fmt.Errorf("accepts at most 1 argument (the GraphQL query)")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if querySchemaOnly {
			return printSchema(cmd.OutOrStdout())
		}

		var query string
		if len(args) == 1 {
			query = args[0]
		} else {
			stdinQuery, err := readFromStdin()
			if err != nil {
				return err
			}
			if stdinQuery == "" {
				return fmt.Errorf("no query provided (pass as argument or pipe to stdin)")
			}
			query = stdinQuery
		}

		var variables map[string]interface{}
		if queryVariables != "" {
			if err := json.Unmarshal([]byte(queryVariables), &variables); err != nil {
				return fmt.Errorf("invalid variables JSON: %w", err)
			}
		}

		result, err := executeQuery(cmd.Context(), query, variables, queryOperation)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case queryJSON:
			fmt.Fprintln(out, string(result))
		case isTerminal(out):
			fmt.Fprintln(out, string(pretty.Color(pretty.Pretty(result), nil)))
		default:
			fmt.Fprint(out, string(pretty.Pretty(result)))
		}
		return nil
	},
}

// readFromStdin reads the query from stdin if data is available.
func readFromStdin() (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("checking stdin: %w", err)
	}

	// If stdin is a terminal (no pipe), return empty
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// executeQuery runs a GraphQL request against the configured store.
// On success, it returns just the data portion of the response.
func executeQuery(ctx context.Context, query string, variables map[string]interface{}, operationName string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	schema, err := graph.NewSchema(newResolver())
	if err != nil {
		return nil, err
	}

	resp := graph.Execute(ctx, schema, query, variables, operationName)
	if len(resp.Errors) > 0 {
		return nil, formatGraphQLErrors(resp.Errors)
	}
	return resp.Data, nil
}

// formatGraphQLErrors formats GraphQL errors into a single error.
func formatGraphQLErrors(errs []*gqlerrors.QueryError) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return fmt.Errorf("graphql: %s", errs[0].Message)
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("graphql errors:\n  %s", strings.Join(msgs, "\n  "))
}

func printSchema(w io.Writer) error {
	sdl, err := graph.FormatSchema()
	if err != nil {
		return err
	}
	fmt.Fprint(w, sdl)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func init() {
	graphqlCmd.Flags().BoolVar(&queryJSON, "json", false, "Output raw JSON (no formatting)")
	graphqlCmd.Flags().StringVarP(&queryVariables, "variables", "v", "", "Query variables as JSON string")
	graphqlCmd.Flags().StringVarP(&queryOperation, "operation", "o", "", "Operation name (for multi-operation documents)")
	graphqlCmd.Flags().BoolVar(&querySchemaOnly, "schema", false, "Print the GraphQL schema and exit")
	rootCmd.AddCommand(graphqlCmd)
}

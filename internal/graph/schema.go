package graph

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"go.uber.org/zap"
)

//go:embed schema.graphqls
var schemaSDL string

// NewSchema parses the schema and binds it to the resolver.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	s, err := graphql.ParseSchema(schemaSDL, r,
		graphql.Logger(&panicLogger{logger: r.logger()}),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	return s, nil
}

// Execute runs a single GraphQL request against s.
func Execute(ctx context.Context, s *graphql.Schema, query string, variables map[string]interface{}, operationName string) *graphql.Response {
	return s.Exec(ctx, query, operationName, variables)
}

// FormatSchema returns the schema in canonical SDL form.
func FormatSchema() (string, error) {
	parsed, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSDL})
	if err != nil {
		return "", fmt.Errorf("loading schema: %w", err)
	}

	var buf bytes.Buffer
	f := formatter.NewFormatter(&buf, formatter.WithIndent("  "))
	f.FormatSchema(parsed)
	return buf.String(), nil
}

// panicLogger reports resolver panics through zap. graphql-go recovers the
// panic and turns it into a field error.
type panicLogger struct {
	logger *zap.Logger
}

func (l *panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.Error("graphql resolver panic", zap.Any("panic", value), zap.Stack("stack"))
}

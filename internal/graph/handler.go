package graph

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	graphql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"
)

// Request is a GraphQL request as sent over HTTP.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves GraphQL over HTTP: POST with a JSON body, or GET with the
// request in the query string.
type Handler struct {
	Schema *graphql.Schema
	Logger *zap.Logger
}

// NewHandler returns an HTTP handler executing requests against s.
func NewHandler(s *graphql.Schema, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Schema: s, Logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, status, err := readRequest(r)
	if err != nil {
		if status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", "GET, POST")
		}
		writeJSON(w, status, &graphql.Response{Errors: []*gqlerrors.QueryError{gqlerrors.Errorf("%s", err)}}, h.Logger)
		return
	}

	resp := Execute(r.Context(), h.Schema, req.Query, req.Variables, req.OperationName)
	writeJSON(w, http.StatusOK, resp, h.Logger)
}

// readRequest decodes the GraphQL request, returning the HTTP status to
// answer with when it cannot.
func readRequest(r *http.Request) (*Request, int, error) {
	req := &Request{}

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.NewDecoder(strings.NewReader(vars)).Decode(&req.Variables); err != nil {
				return nil, http.StatusBadRequest, errors.New("variables is not a valid JSON object")
			}
		}
	case http.MethodPost:
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			return nil, http.StatusUnsupportedMediaType, errors.New("unsupported Content-Type, use application/json")
		}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return nil, http.StatusBadRequest, errors.New("request body is not a valid GraphQL request")
		}
	default:
		return nil, http.StatusMethodNotAllowed, errors.New("unsupported request method, use GET or POST")
	}

	if req.Query == "" {
		return nil, http.StatusBadRequest, errors.New("query is required")
	}
	if r.Method == http.MethodGet && isMutation(req) {
		return nil, http.StatusMethodNotAllowed, errors.New("mutations must be sent with POST")
	}
	return req, http.StatusOK, nil
}

// isMutation reports whether the operation req selects is a mutation.
// Unparseable documents are left for the executor to report.
func isMutation(req *Request) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: req.Query})
	if err != nil {
		return false
	}
	op := doc.Operations.ForName(req.OperationName)
	return op != nil && op.Operation == ast.Mutation
}

func writeJSON(w http.ResponseWriter, status int, resp *graphql.Response, logger *zap.Logger) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error("encoding graphql response", zap.Error(err))
		http.Error(w, `{"errors":[{"message":"internal server error"}]}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.Debug("writing graphql response", zap.Error(err))
	}
}

package graph

// Error codes reported in the extensions of a GraphQL error.
const (
	CodeInternal     = "INTERNAL_SERVER_ERROR"
	CodeBadUserInput = "BAD_USER_INPUT"
)

// APIError is the error a resolver hands to the GraphQL layer. Only the
// message and code reach the client; the cause is kept for logging.
type APIError struct {
	Code    string
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Extensions implements graphql-go's ResolverError.
func (e *APIError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

func internalError(cause error) *APIError {
	return &APIError{Code: CodeInternal, Message: "internal server error", Cause: cause}
}

func badUserInput(msg string) *APIError {
	return &APIError{Code: CodeBadUserInput, Message: msg}
}

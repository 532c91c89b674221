package store

import gonanoid "github.com/matoous/go-nanoid/v2"

// Auto-ids follow Firestore's format so records move between backends
// without rewriting keys.
const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 20
)

// NewID returns a random 20-character document id.
func NewID() string {
	return gonanoid.MustGenerate(idAlphabet, idLength)
}

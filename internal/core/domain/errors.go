package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Adapters map these to transport-level responses;
// everything below the ports layer wraps its failures into one of them.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrIndexCorrupt     = errors.New("lexical index corrupt")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError attaches a sentinel kind and operation context to err while
// keeping the original chain intact for errors.Is.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}

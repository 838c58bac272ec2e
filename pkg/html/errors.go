package html

import (
	"errors"
	"fmt"
)

// ErrTruncated is matched by TruncatedError via errors.Is.
var ErrTruncated = errors.New("markup truncated")

// TruncatedError reports that input ended inside a tag, quoted attribute or
// script block. The partially buffered content was dropped; the tree built so
// far is still usable.
type TruncatedError struct {
	State State
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("markup truncated: input ended in %s", e.State)
}

func (e *TruncatedError) Unwrap() error {
	return ErrTruncated
}

package engine

import (
	"errors"
	"fmt"
	"strings"
)

// CyclicChainError indicates an artifact's parent chain loops back on
// itself. The chain lists artifact names in walk order, ending with the name
// that closed the cycle.
type CyclicChainError struct {
	Chain []string
}

func (e *CyclicChainError) Error() string {
	return fmt.Sprintf("cyclic parent chain: %s", strings.Join(e.Chain, " -> "))
}

// IsCyclicChain reports whether err is a CyclicChainError.
// Uses errors.As to handle wrapped errors.
func IsCyclicChain(err error) bool {
	var ce *CyclicChainError
	return errors.As(err, &ce)
}

package farm

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrFarmNotFound matches any NotFoundError via eris.Is / errors.Is.
var ErrFarmNotFound = eris.New("farm: not found")

// NotFoundError reports a lookup for an id outside the generated set.
type NotFoundError struct {
	ID    string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("farm: no farm with id %q (known ids: %s)", e.ID, strings.Join(e.Known, ", "))
}

// Is lets callers match on ErrFarmNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrFarmNotFound
}

package collectors

import (
	"errors"
	"fmt"

	"github.com/jaehwan-dev/naverflow/internal/models"
)

// Collector is implemented by the metadata, content and comment collectors.
// Dispatch happens on the kind tag; each concrete type exposes its own
// typed Collect method since the inputs differ per kind.
type Collector interface {
	Kind() models.MessageKind
}

// Collection methods for article metadata.
const (
	MethodAPI    = "api"
	MethodSearch = "search"
)

// ErrCollection is the job-level fatal failure: nothing at all could be
// collected. Partial failures (skipped pages) are warnings, not this.
var ErrCollection = errors.New("collection failed")

// ErrNotFound marks a page that no longer exists; never retried.
var ErrNotFound = errors.New("page not found")

// ErrParse marks a page whose expected structure is missing, which means
// the site template changed and the parser needs maintenance. Never retried.
var ErrParse = errors.New("unexpected page structure")

func collectionErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCollection, fmt.Sprintf(format, args...))
}

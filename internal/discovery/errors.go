package discovery

import (
	"errors"
	"fmt"
)

// ErrNotConfigured means the discovery API key is absent. Distinct from
// the service being unreachable: there is no point retrying this one.
var ErrNotConfigured = errors.New("ad discovery service not configured: missing API key")

// ServiceError carries the upstream status of a failed discovery or
// detail call. The engine never retries on its own; callers may re-issue.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ad discovery service error (status=%d): %s", e.Status, e.Message)
}

// AsServiceError unwraps err into a *ServiceError if possible.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

package kiturami

import "fmt"

// MissingFieldError is returned when a required field is absent from a
// vendor response.
type MissingFieldError struct {
	Endpoint string
	Field    string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("kiturami %s: response missing %q", e.Endpoint, e.Field)
}

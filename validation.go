package research

import (
	"fmt"
	"strings"
)

// ValidationError represents a request validation error with context
type ValidationError struct {
	Message string
	Details string
}

func (e ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// ValidateQueries checks a research request's query list. Validation
// failures are reported before any producer is opened.
func ValidateQueries(queries []string) error {
	if len(queries) == 0 {
		return ValidationError{
			Message: "request validation failed",
			Details: "at least one query is required",
		}
	}

	for i, q := range queries {
		if strings.TrimSpace(q) == "" {
			return ValidationError{
				Message: "request validation failed",
				Details: fmt.Sprintf("query %d is empty", i),
			}
		}
	}

	return nil
}

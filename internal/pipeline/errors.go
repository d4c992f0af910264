package pipeline

import "fmt"

// ValidationError reports malformed upload content.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid upload: %s: %v", e.Reason, e.Err)
	}
	return "invalid upload: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError reports that the output dataset name is already taken. The
// computed join result is discarded; the caller must resubmit under another
// name.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("dataset %q already exists; join result discarded", e.Name)
}

// NotFoundError reports an unknown source dataset id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dataset with id %d not found", e.ID)
}

// FetchError reports a failed remote fetch: transport failure, non-success
// status or a body that is not a JSON array of objects.
type FetchError struct {
	Address string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch JSON from %s: %v", e.Address, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and backend errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrAnalysisNotFound   = fmt.Errorf("analysis not found")
	ErrStreamClosed       = fmt.Errorf("response stream closed")

	// Session errors
	ErrNotLoggedIn       = fmt.Errorf("not logged in")
	ErrBusyResponding    = fmt.Errorf("assistant is already responding")
	ErrInvalidViewState  = fmt.Errorf("invalid view state")
	ErrLibraryItemAbsent = fmt.Errorf("library item not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrEmptyMessage    = fmt.Errorf("message is empty")
	ErrUnsupportedFile = fmt.Errorf("unsupported audio file type")
)

package errors

import "errors"

// Sentinel errors for the pipeline stages. Each stage wraps its failures
// with the matching sentinel so callers can identify where a query died
// without parsing error strings.
var (
	// ErrContextProcessing indicates conversation summarization failed
	ErrContextProcessing = errors.New("context processing failed")

	// ErrQueryReformulation indicates reference resolution failed
	ErrQueryReformulation = errors.New("query reformulation failed")

	// ErrQueryClassification indicates the needs-documents gate failed
	ErrQueryClassification = errors.New("query classification failed")

	// ErrTaskPlanning indicates initial planning or a plan update failed
	ErrTaskPlanning = errors.New("task planning failed")

	// ErrPageSelection indicates vision page selection failed
	ErrPageSelection = errors.New("page selection failed")

	// ErrTaskAnalysis indicates per-task vision analysis failed
	ErrTaskAnalysis = errors.New("task analysis failed")

	// ErrResponseSynthesis indicates final answer synthesis failed
	ErrResponseSynthesis = errors.New("response synthesis failed")
)

// Sentinel errors for storage operations
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")
)

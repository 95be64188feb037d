package types

// ValidationError flags a defect in the incoming request. Its message is safe
// to show to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

package audiocompile

// CompilationError is a failed compilation. Message is written to the
// publication row and shown to the user as is.
type CompilationError struct {
	Message string
	Err     error
}

func (e *CompilationError) Error() string {
	return e.Message
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func compilationError(err error, message string) *CompilationError {
	return &CompilationError{Message: message, Err: err}
}

package shared

type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }

func (e *domainError) Unwrap() error { return e.kind }

// E attaches a user-facing message to one of the sentinel error kinds.
// errors.Is against the sentinel still matches.
func E(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}

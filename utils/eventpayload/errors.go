package eventpayload

import "fmt"

// FormatError indicates an unsupported output format.
type FormatError struct {
	Format string
}

func (e FormatError) Error() string {
	return fmt.Sprintf("unsupported payload format %q (want yaml or json)", e.Format)
}

// WriteError wraps failures encoding or writing the event.
type WriteError struct {
	Target string
	Err    error
}

func (e WriteError) Error() string {
	return fmt.Sprintf("write payload to %s: %v", e.Target, e.Err)
}

func (e WriteError) Unwrap() error {
	return e.Err
}

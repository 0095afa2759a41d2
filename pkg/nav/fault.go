package nav

import (
	"fmt"
)

// LoaderFault is any error or panic raised inside a loader. The controller
// renders it as an error panel; it never escapes as a panic.
type LoaderFault struct {
	Section SectionID
	Err     error
	// Panic holds the recovered value when the loader panicked.
	Panic any
}

func (f *LoaderFault) Error() string {
	if f.Panic != nil {
		return fmt.Sprintf("nav: section %s panicked: %v", f.Section, f.Panic)
	}
	return fmt.Sprintf("nav: section %s: %v", f.Section, f.Err)
}

func (f *LoaderFault) Unwrap() error {
	return f.Err
}

// Reason is the user-facing message.
func (f *LoaderFault) Reason() string {
	if f.Panic != nil {
		return fmt.Sprintf("unexpected error: %v", f.Panic)
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return "unknown error"
}

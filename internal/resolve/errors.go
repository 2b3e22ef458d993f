package resolve

import "fmt"

// AmbiguousMappingError reports a stream specifier that matches more than
// one candidate file or stream with nothing to disambiguate.
type AmbiguousMappingError struct {
	Spec   string
	Reason string
}

func (e *AmbiguousMappingError) Error() string {
	return fmt.Sprintf("ambiguous stream mapping %q: %s", e.Spec, e.Reason)
}

// IncompatibleOptionError reports an option combination the engine cannot
// honor.
type IncompatibleOptionError struct {
	Option string
	Reason string
}

func (e *IncompatibleOptionError) Error() string {
	return fmt.Sprintf("incompatible option %q: %s", e.Option, e.Reason)
}

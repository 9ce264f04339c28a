package domain

import "fmt"

// SchemaError reports a required column missing from the whole upstream
// record set. It is fatal to the request; rows that merely lack a value
// in a present column are dropped instead.
type SchemaError struct {
	Column RecordColumn
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("required column %q missing from record set", string(e.Column))
}

// UpstreamError wraps failures of the upstream record source so callers
// can tell them apart from engine failures.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

package core

// Result is the outcome of a single lookup: either a version or the error
// that prevented finding one.
type Result struct {
	Value string
	Err   error
}

// Found returns a successful Result.
func Found(version string) Result {
	return Result{Value: version}
}

// Failed returns a failed Result wrapping err.
func Failed(err error) Result {
	if err == nil {
		err = ErrNotFound
	}
	return Result{Err: err}
}

// OK reports whether the lookup produced a version.
func (r Result) OK() bool {
	return r.Err == nil && r.Value != ""
}

// Ptr returns the version, or nil when the lookup failed.
func (r Result) Ptr() *string {
	if !r.OK() {
		return nil
	}
	v := r.Value
	return &v
}

package caterr

import "github.com/hashicorp/go-multierror"

// An Aggregator collects independent failures from a phase that can
// discover more than one before aborting (e.g. the loader finding several
// missing dependency directories at once). A phase with only a single
// cause should return its concrete typed error directly rather than going
// through an Aggregator, so errors.As keeps working for callers and tests.
type Aggregator struct {
	err *multierror.Error
}

// Add records a failure. A nil error is ignored.
func (a *Aggregator) Add(err error) {
	if err == nil {
		return
	}
	a.err = multierror.Append(a.err, err)
}

// Err returns the aggregated error, or nil if nothing was added.
func (a *Aggregator) Err() error {
	if a.err == nil {
		return nil
	}
	return a.err.ErrorOrNil()
}

// HasErrors reports whether any failure has been recorded.
func (a *Aggregator) HasErrors() bool {
	return a.err != nil && len(a.err.Errors) > 0
}

package caterr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregatorCollectsMultipleErrors(t *testing.T) {
	var agg Aggregator
	assert.False(t, agg.HasErrors())
	assert.NoError(t, agg.Err())

	agg.Add(&IOError{Path: "/a", Message: "missing"})
	agg.Add(nil)
	agg.Add(&IOError{Path: "/b", Message: "missing"})

	assert.True(t, agg.HasErrors())
	err := agg.Err()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "/a")
	assert.Contains(t, err.Error(), "/b")
}

func TestAggregatorErrIsNilWhenNothingAdded(t *testing.T) {
	var agg Aggregator
	assert.NoError(t, agg.Err())
}

func TestGraphInvariantOmitsLocationWhenFileIsEmpty(t *testing.T) {
	err := &GraphInvariant{Message: "cycle detected"}
	assert.Equal(t, "graph error: cycle detected", err.Error())
}

func TestIOErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := &IOError{Path: "/x", Message: "failed to open", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "permission denied")
}

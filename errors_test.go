package filter

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	assert := assert.New(t)

	cfg := NewConfigError("new", "invalid A matrix dimensions: [%d x %d]", 2, 3)
	assert.EqualError(cfg, "config: new: invalid A matrix dimensions: [2 x 3]")
	assert.True(IsConfig(cfg))
	assert.False(IsInput(cfg))

	wrapped := fmt.Errorf("tick 3: %w", NewInputError("z", "invalid length: %d", 3))
	assert.True(IsInput(wrapped))
	assert.False(IsNumerical(wrapped))

	var in *InputError
	assert.True(errors.As(wrapped, &in))
	assert.Equal("z", in.Name)

	num := &NumericalError{Cond: math.Inf(1), Err: errors.New("singular innovation covariance")}
	assert.True(IsNumerical(num))
	assert.Contains(num.Error(), "+Inf")
	assert.EqualError(errors.Unwrap(num), "singular innovation covariance")
}

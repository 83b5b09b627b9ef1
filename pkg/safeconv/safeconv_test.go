package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustUint32ToInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, MustUint32ToInt(0))
	assert.Equal(t, 42, MustUint32ToInt(42))
	assert.Equal(t, int(math.MaxUint32), MustUint32ToInt(math.MaxUint32))
}

func TestMustIntToUint32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), MustIntToUint32(0))
	assert.Equal(t, uint32(7), MustIntToUint32(7))

	assert.Panics(t, func() { MustIntToUint32(-1) })
}

package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustIntToUint64(t *testing.T) {
	t.Parallel()

	t.Run("zero", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, uint64(0), MustIntToUint64(0))
	})

	t.Run("max_int", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, uint64(math.MaxInt), MustIntToUint64(math.MaxInt))
	})

	t.Run("negative_panics", func(t *testing.T) {
		t.Parallel()
		assert.PanicsWithValue(t, "safeconv: negative int to uint64 conversion", func() {
			MustIntToUint64(-1)
		})
	})
}

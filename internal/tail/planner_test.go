package tail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanRangeFirstLoad(t *testing.T) {
	plan := PlanRange(nil, 30720)

	assert.Equal(t, "-30720", plan.RangeSpec)
	assert.True(t, plan.FirstLoad)
	assert.False(t, plan.ExpectPartial, "a 200 is legitimate when the whole file fits")
}

func TestPlanRangeAnchorsOnLastKnownByte(t *testing.T) {
	size := int64(100)
	plan := PlanRange(&size, 30720)

	assert.Equal(t, "99-", plan.RangeSpec)
	assert.False(t, plan.FirstLoad)
	assert.True(t, plan.ExpectPartial)
}

func TestPlanRangeTinyFiles(t *testing.T) {
	t.Run("one byte file may answer 200", func(t *testing.T) {
		size := int64(1)
		plan := PlanRange(&size, 1024)
		assert.Equal(t, "0-", plan.RangeSpec)
		assert.False(t, plan.ExpectPartial)
	})

	t.Run("empty file clamps anchor to zero", func(t *testing.T) {
		size := int64(0)
		plan := PlanRange(&size, 1024)
		assert.Equal(t, "0-", plan.RangeSpec)
		assert.False(t, plan.ExpectPartial)
	})
}

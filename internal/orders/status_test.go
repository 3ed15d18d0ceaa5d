package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid(), "status %s", s)
	}
	assert.False(t, Status("SHIPPED_TO_MARS").Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("paid").Valid(), "status is case sensitive")
}

func TestNeedsStockDecrement(t *testing.T) {
	tests := []struct {
		name     string
		prev     Status
		next     Status
		reserved bool
		want     bool
	}{
		{"new to paid, not reserved", StatusNew, StatusPaid, false, true},
		{"processing to paid, not reserved", StatusProcessing, StatusPaid, false, true},
		{"new to paid, already reserved at creation", StatusNew, StatusPaid, true, false},
		{"paid to paid is a no-op", StatusPaid, StatusPaid, false, false},
		{"paid to paid, reserved", StatusPaid, StatusPaid, true, false},
		{"paid to closed never decrements", StatusPaid, StatusClosed, false, false},
		{"new to cancelled never decrements", StatusNew, StatusCancelled, false, false},
		{"cancelled back to paid, reserved once before", StatusCancelled, StatusPaid, true, false},
		{"cancelled to paid, never reserved", StatusCancelled, StatusPaid, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsStockDecrement(tt.prev, tt.next, tt.reserved))
		})
	}
}

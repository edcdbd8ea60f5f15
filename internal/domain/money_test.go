package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(150000), ToMinorUnits(150000, "IDR"))
	assert.Equal(t, int64(150000), ToMinorUnits(150000, ""))
	assert.Equal(t, int64(1250), ToMinorUnits(12.5, "USD"))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99, "usd"))
	assert.Equal(t, int64(300), ToMinorUnits(300, "JPY"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "IDR 150000", FormatAmount(150000, "IDR"))
	assert.Equal(t, "IDR 0", FormatAmount(0, ""))
	assert.Equal(t, "USD 12.50", FormatAmount(1250, "USD"))
	assert.Equal(t, "USD -0.05", FormatAmount(-5, "USD"))
}

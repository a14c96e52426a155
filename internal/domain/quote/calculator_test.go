package quote

import (
	"testing"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalculator() *Calculator {
	return NewCalculator(rate.Default(), Bounds{MinAmountMinor: 1000, MaxAmountMinor: 500000})
}

func TestQuoteScenarios(t *testing.T) {
	calc := testCalculator()

	cases := []struct {
		name         string
		principal    int64
		durationDays int
		wantRate     int64
		wantInterest int64
		wantTotal    int64
	}{
		{"ten days at ten percent", 5000, 10, 10, 500, 5500},
		{"fifteen days at fifteen percent", 10000, 15, 15, 1500, 11500},
		{"thirty days at twenty-five percent", 20000, 30, 25, 5000, 25000},
		{"five days at six percent", 5000, 5, 6, 300, 5300},
		{"twenty days at twenty-two percent", 10000, 20, 22, 2200, 12200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := calc.Quote(tc.principal, tc.durationDays)
			require.NoError(t, err)
			assert.Equal(t, tc.wantRate, q.RatePercent)
			assert.Equal(t, tc.wantInterest, q.InterestMinor)
			assert.Equal(t, tc.wantTotal, q.TotalDueMinor)
			assert.Equal(t, q.PrincipalMinor+q.InterestMinor, q.TotalDueMinor)
		})
	}
}

func TestQuoteDeterministic(t *testing.T) {
	calc := testCalculator()

	first, err := calc.Quote(12345, 17)
	require.NoError(t, err)
	second, err := calc.Quote(12345, 17)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQuoteRoundsHalfUpOnce(t *testing.T) {
	calc := testCalculator()

	// 5008 * 6% = 300.48 -> 300
	q, err := calc.Quote(5008, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(300), q.InterestMinor)

	// 5009 * 6% = 300.54 -> 301
	q, err = calc.Quote(5009, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(301), q.InterestMinor)

	// 1050 * 10% = 105, exact
	q, err = calc.Quote(1050, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(105), q.InterestMinor)
	assert.Equal(t, int64(1155), q.TotalDueMinor)
}

func TestQuoteOutOfRangePrincipal(t *testing.T) {
	calc := testCalculator()

	_, err := calc.Quote(999, 10)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = calc.Quote(500001, 10)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestQuoteUnknownDuration(t *testing.T) {
	calc := testCalculator()

	_, err := calc.Quote(5000, 45)
	assert.ErrorIs(t, err, rate.ErrUnknownDuration)
}

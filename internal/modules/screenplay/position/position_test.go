package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestNextIsMonotonic(t *testing.T) {
	var got []float64
	for k := 1; k <= 6; k++ {
		p := Next(got)
		assert.Equal(t, Step*float64(k), p)
		got = append(got, p)
	}
	assert.Equal(t, Sequence(6), got)
}

func TestNextUsesMaxNotLast(t *testing.T) {
	assert.Equal(t, 4500.0, Next([]float64{3500, 1000, 2000}))
	assert.Equal(t, Step, Next(nil))
}

func TestAfter(t *testing.T) {
	assert.Equal(t, Step, After(nil))
	assert.Equal(t, 3000.0, After(f(2000)))
}

func TestBetween(t *testing.T) {
	cases := []struct {
		name       string
		prev, next *float64
		want       float64
	}{
		{"empty", nil, nil, 1000},
		{"end", f(3000), nil, 4000},
		{"start", nil, f(1000), 500},
		{"start non-positive", nil, f(0), -1000},
		{"middle", f(1000), f(2000), 1500},
		{"tight", f(1000), f(1000.5), 1000.25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Between(tc.prev, tc.next))
		})
	}
}

func TestBeatPositions(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, BeatPositions(3))
	assert.Nil(t, BeatPositions(0))
}

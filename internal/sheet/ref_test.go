package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref      string
		row, col int
	}{
		{"A1", 0, 0},
		{"C5", 4, 2},
		{"f22", 21, 5},
		{"Z10", 9, 25},
		{"AA1", 0, 26},
		{"AB12", 11, 27},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			row, col, err := ParseRef(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.row, row)
			assert.Equal(t, tt.col, col)
		})
	}
}

func TestParseRef_Invalid(t *testing.T) {
	for _, ref := range []string{"", "A", "12", "A0", "1A", "A-1"} {
		_, _, err := ParseRef(ref)
		assert.Error(t, err, ref)
	}
}

func TestRefName_RoundTrip(t *testing.T) {
	for _, ref := range []string{"A1", "C5", "Z9", "AA1", "AZ40", "BA3"} {
		row, col := MustRef(ref)
		assert.Equal(t, ref, RefName(row, col))
	}
}

func TestMustRef_Panics(t *testing.T) {
	assert.Panics(t, func() { MustRef("bogus") })
}

func TestGrid(t *testing.T) {
	g := NewGrid().Set("C5", Text("hello")).SetError("B2", assert.AnError)

	v, err := At(g, "C5")
	require.NoError(t, err)
	assert.Equal(t, KindText, v.Kind)
	assert.Equal(t, "hello", v.String())

	v, err = At(g, "Z99")
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())

	_, err = At(g, "B2")
	assert.ErrorIs(t, err, assert.AnError)

	rows, cols := g.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 3, cols)
}

func TestText_BlankIsEmpty(t *testing.T) {
	assert.True(t, Text("   ").IsEmpty())
	assert.Equal(t, "x", Text("  x ").Text)
}

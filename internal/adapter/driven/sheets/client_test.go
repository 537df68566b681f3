package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColLetter(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{col: 1, want: "A"},
		{col: 2, want: "B"},
		{col: 26, want: "Z"},
		{col: 27, want: "AA"},
		{col: 52, want: "AZ"},
		{col: 53, want: "BA"},
		{col: 702, want: "ZZ"},
		{col: 703, want: "AAA"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, colLetter(tt.col), "col %d", tt.col)
	}
}

func TestA1(t *testing.T) {
	assert.Equal(t, "'A-101'!E9", a1("A-101", 9, 5))
	assert.Equal(t, "'Group 2'!AB2", a1("Group 2", 2, 28))
}

func TestParseDeadline(t *testing.T) {
	t.Run("day-first with time", func(t *testing.T) {
		got, err := parseDeadline("15.03.2024 23:59")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 0, 0, time.Local), got)
	})

	t.Run("day-first date only", func(t *testing.T) {
		got, err := parseDeadline("15.03.2024")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), got)
	})

	t.Run("iso datetime", func(t *testing.T) {
		got, err := parseDeadline("2024-03-15 23:59")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 0, 0, time.Local), got)
	})

	t.Run("surrounding whitespace tolerated", func(t *testing.T) {
		_, err := parseDeadline("  15.03.2024 23:59 ")
		assert.NoError(t, err)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := parseDeadline("next friday")
		assert.Error(t, err)
	})
}

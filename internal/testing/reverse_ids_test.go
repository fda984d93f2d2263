package testing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReverseIDs(t *testing.T) {
	ids := []int64{1, 2, 3, 4, 5}
	require.Equal(t, []int64{5, 4, 3, 2, 1}, ReverseIDs(ids))
	require.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
	require.Equal(t, []int64{}, ReverseIDs([]int64{}))
}

func TestRandString(t *testing.T) {
	s := RandString()
	require.Len(t, s, 10)
	require.Regexp(t, `^[a-zA-Z]+$`, s)
}

func TestRandEmail(t *testing.T) {
	require.Regexp(t, `^[a-z]{10}@example\.com$`, RandEmail())
}

package page

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructDecode_RoundTripNoOverflow(t *testing.T) {
	pairs := []KV{
		{Key: "alpha", Value: "1"},
		{Key: "beta", Value: "two"},
		{Key: "gamma", Value: "three point one four"},
	}

	buf, overflow, err := Construct(pairs)
	require.NoError(t, err)
	require.Empty(t, overflow)
	require.Len(t, buf, Size)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, pairs, got)
}

func TestConstruct_KeyTooLong(t *testing.T) {
	_, _, err := Construct([]KV{{Key: strings.Repeat("k", MaxKeyLen+1), Value: "v"}})
	require.Error(t, err)
	var tooLong *KeyTooLongError
	assert.ErrorAs(t, err, &tooLong)
	assert.Equal(t, MaxKeyLen, tooLong.Max)
	assert.Equal(t, MaxKeyLen+1, tooLong.Actual)
}

func TestConstruct_MaxLengthKeyFits(t *testing.T) {
	key := strings.Repeat("k", MaxKeyLen)
	buf, overflow, err := Construct([]KV{{Key: key, Value: "v"}})
	require.NoError(t, err)
	require.Empty(t, overflow)

	got, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, key, got[0].Key)
}

func TestConstruct_OverflowWhenPageIsFull(t *testing.T) {
	pairs := make([]KV, 300)
	for i := range pairs {
		pairs[i] = KV{Key: fmt.Sprintf("key-%04d", i), Value: strings.Repeat("x", 40)}
	}

	buf, overflow, err := Construct(pairs)
	require.NoError(t, err)
	require.NotEmpty(t, overflow)
	require.Less(t, len(overflow), len(pairs))

	got, err := Decode(buf)
	require.NoError(t, err)
	want := pairs[:len(pairs)-len(overflow)]
	assert.Equal(t, want, got)
}

func TestConstruct_ProgressGuarantee(t *testing.T) {
	pairs := make([]KV, 300)
	for i := range pairs {
		pairs[i] = KV{Key: fmt.Sprintf("key-%04d", i), Value: strings.Repeat("x", 40)}
	}

	_, overflow, err := Construct(pairs)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(pairs)-len(overflow), 1)
}

func TestDecode_RejectsWrongSize(t *testing.T) {
	_, err := Decode(make([]byte, 100))
	require.Error(t, err)
}

func TestDecode_RejectsBadPageSizeField(t *testing.T) {
	buf := make([]byte, Size)
	// Leave header's page_size field at zero instead of 8192.
	_, err := Decode(buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadPageSize)
}

func TestConstruct_EmptyPageDecodesToNoPairs(t *testing.T) {
	buf, overflow, err := Construct(nil)
	require.NoError(t, err)
	require.Empty(t, overflow)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

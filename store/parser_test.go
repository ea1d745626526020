package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intellect4all/kvstore/wal"
)

func TestParseLine_AllThreeVerbs(t *testing.T) {
	ops, err := ParseLine("SET key1 TO value1 AND GET key1 AND DEL key1 AND SET key2 TO value2 AND GET key2 AND DEL key2")
	require.NoError(t, err)
	assert.Equal(t, []wal.Op{
		wal.NewSet(0, "key1", "value1"),
		wal.NewGet(0, "key1"),
		wal.NewDel(0, "key1"),
		wal.NewSet(0, "key2", "value2"),
		wal.NewGet(0, "key2"),
		wal.NewDel(0, "key2"),
	}, ops)
}

func TestParseLine_SingleGet(t *testing.T) {
	ops, err := ParseLine("GET a")
	require.NoError(t, err)
	assert.Equal(t, []wal.Op{wal.NewGet(0, "a")}, ops)
}

func TestParseLine_EmptyLineHasNoOperations(t *testing.T) {
	_, err := ParseLine("\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoOperations)
}

func TestParseLine_InvalidTransitionErrors(t *testing.T) {
	_, err := ParseLine("SET key1 DEL key2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedToken)
}

func TestParseLine_EndToEndScenario(t *testing.T) {
	ops, err := ParseLine("SET a TO 1 AND SET b TO 2 AND DEL a")
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, wal.NewSet(0, "a", "1"), ops[0])
	assert.Equal(t, wal.NewSet(0, "b", "2"), ops[1])
	assert.Equal(t, wal.NewDel(0, "a"), ops[2])
}

package custody_test

import (
	"errors"
	"testing"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shukrishariff-oms/pms-istmo/internal/utils/custody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestTransferNote(t *testing.T) {
	assert.Equal(t, "Transferred to Bob", custody.TransferNote("Bob"))
}

func TestIsGeneratedNote(t *testing.T) {
	assert.True(t, custody.IsGeneratedNote(nil))
	assert.True(t, custody.IsGeneratedNote(ptr("")))
	assert.True(t, custody.IsGeneratedNote(ptr("Transferred to Alice")))
	assert.False(t, custody.IsGeneratedNote(ptr("Physical tracking started.")))
	assert.False(t, custody.IsGeneratedNote(ptr("Left at reception")))
}

func TestVerify(t *testing.T) {
	chain := []domain.CustodyLogEntry{
		{EntryID: 1, ToHolder: "Alice"},
		{EntryID: 2, FromHolder: ptr("Alice"), ToHolder: "Bob"},
		{EntryID: 5, FromHolder: ptr("Bob"), ToHolder: "Carol"},
	}

	assert.NoError(t, custody.Verify("Carol", chain))

	var chainErr *custody.ChainError
	err := custody.Verify("Dave", chain)
	require.True(t, errors.As(err, &chainErr))
	assert.Equal(t, 2, chainErr.Index)

	broken := append([]domain.CustodyLogEntry{}, chain...)
	broken[1].FromHolder = ptr("Mallory")
	err = custody.Verify("Carol", broken)
	require.True(t, errors.As(err, &chainErr))
	assert.Equal(t, 1, chainErr.Index)

	rooted := append([]domain.CustodyLogEntry{}, chain...)
	rooted[0].FromHolder = ptr("Nobody")
	err = custody.Verify("Carol", rooted)
	require.True(t, errors.As(err, &chainErr))
	assert.Equal(t, 0, chainErr.Index)

	assert.Error(t, custody.Verify("Alice", nil))
}

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindAssignsIdentity(t *testing.T) {
	b := NewBinder()

	sess, err := b.Bind("conn-1234567890", "ROOM1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "conn-1234567890", sess.ConnID)
	assert.Equal(t, "ROOM1", sess.RoomID)
	assert.Equal(t, "alice", sess.Username)
	assert.Contains(t, Palette(), sess.Color)
}

func TestBindDerivesDefaultName(t *testing.T) {
	b := NewBinder()

	sess, err := b.Bind("abcdef123456", "ROOM1", "")
	require.NoError(t, err)
	assert.Equal(t, "user-abcdef", sess.Username)

	sess, err = b.Bind("xyz", "ROOM1", "   ")
	require.NoError(t, err)
	assert.Equal(t, "user-xyz", sess.Username)
}

func TestBindIsWriteOnce(t *testing.T) {
	b := NewBinder()

	first, err := b.Bind("c1", "ROOM1", "alice")
	require.NoError(t, err)

	_, err = b.Bind("c1", "ROOM2", "bob")
	assert.ErrorIs(t, err, ErrAlreadyBound)

	// the first binding stands
	got := b.Get("c1")
	require.NotNil(t, got)
	assert.Equal(t, first.RoomID, got.RoomID)
	assert.Equal(t, "alice", got.Username)
}

func TestGetUnboundReturnsNil(t *testing.T) {
	b := NewBinder()
	assert.Nil(t, b.Get("ghost"))
}

func TestReleaseRemovesBinding(t *testing.T) {
	b := NewBinder()
	_, err := b.Bind("c1", "ROOM1", "alice")
	require.NoError(t, err)

	released := b.Release("c1")
	require.NotNil(t, released)
	assert.Equal(t, "alice", released.Username)
	assert.Nil(t, b.Get("c1"))

	// releasing again is a no-op
	assert.Nil(t, b.Release("c1"))
}

package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"peercall/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomDirectory_JoinCreatesRoom(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	members, err := dir.Join(ctx, "abc", "conn-a")
	require.NoError(t, err)
	assert.Equal(t, 1, members)
	assert.True(t, dir.Exists(ctx, "abc"))
	assert.Equal(t, 1, dir.Rooms(ctx))
}

func TestRoomDirectory_CapacityInvariant(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	_, err := dir.Join(ctx, "abc", "conn-a")
	require.NoError(t, err)
	members, err := dir.Join(ctx, "abc", "conn-b")
	require.NoError(t, err)
	assert.Equal(t, 2, members)

	// Third join is always rejected and membership is unchanged.
	_, err = dir.Join(ctx, "abc", "conn-c")
	assert.ErrorIs(t, err, domain.ErrRoomFull)

	peers, err := dir.Peers(ctx, "abc", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.ConnID{"conn-a", "conn-b"}, peers)
}

func TestRoomDirectory_LeaveDeletesEmptyRoom(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	dir.Join(ctx, "abc", "conn-a")
	dir.Join(ctx, "abc", "conn-b")

	remaining, err := dir.Leave(ctx, "abc", "conn-a")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
	assert.True(t, dir.Exists(ctx, "abc"))

	remaining, err = dir.Leave(ctx, "abc", "conn-b")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.False(t, dir.Exists(ctx, "abc"))
	assert.Equal(t, 0, dir.Rooms(ctx))
}

func TestRoomDirectory_LeaveIsIdempotent(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	dir.Join(ctx, "abc", "conn-a")

	_, err := dir.Leave(ctx, "abc", "conn-a")
	require.NoError(t, err)
	_, err = dir.Leave(ctx, "abc", "conn-a")
	require.NoError(t, err)

	// Rooms and members that never existed are a no-op too.
	_, err = dir.Leave(ctx, "nope", "ghost")
	require.NoError(t, err)
}

func TestRoomDirectory_RejoinAfterDeleteStartsFresh(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	dir.Join(ctx, "abc", "conn-a")
	dir.Leave(ctx, "abc", "conn-a")

	members, err := dir.Join(ctx, "abc", "conn-b")
	require.NoError(t, err)
	assert.Equal(t, 1, members)

	peers, err := dir.Peers(ctx, "abc", "")
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"conn-b"}, peers)
}

func TestRoomDirectory_PeersExcludesSender(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	dir.Join(ctx, "abc", "conn-a")
	dir.Join(ctx, "abc", "conn-b")

	peers, err := dir.Peers(ctx, "abc", "conn-a")
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"conn-b"}, peers)

	peers, err = dir.Peers(ctx, "missing", "conn-a")
	require.NoError(t, err)
	assert.Empty(t, peers)
}

// Two racing joins for the last slot: exactly one wins.
func TestRoomDirectory_ConcurrentJoinsRespectCapacity(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	_, err := dir.Join(ctx, "abc", "conn-a")
	require.NoError(t, err)

	const contenders = 16
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = dir.Join(ctx, "abc", domain.ConnID(fmt.Sprintf("conn-%d", n)))
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
		} else {
			assert.ErrorIs(t, err, domain.ErrRoomFull)
		}
	}
	assert.Equal(t, 1, admitted)

	peers, err := dir.Peers(ctx, "abc", "")
	require.NoError(t, err)
	assert.Len(t, peers, 2)
}

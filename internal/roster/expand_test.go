package roster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysy950803/chatroster/internal/errors"
)

type fakeRooms map[string][]string

func (f fakeRooms) ChatRoomMembers(ctx context.Context, name string) ([]string, error) {
	ids, ok := f[name]
	if !ok {
		return nil, errors.ErrChatRoomNotFound
	}
	return ids, nil
}

func waitIdle(t *testing.T, e *Expansion) ExpansionStatus {
	t.Helper()
	require.Eventually(t, func() bool {
		return !e.Status().Resolving
	}, time.Second, 5*time.Millisecond)
	return e.Status()
}

func TestExpandResolvesInBackground(t *testing.T) {
	rooms := fakeRooms{"dev@chatroom": memberIDs("m", 7)}
	lookup := &fakeLookup{}
	clock := &fakeClock{}
	x := NewExpansions(rooms, lookup, func() ResolverConfig { return testConfig(clock) })
	defer x.Close()

	e, err := x.Expand(context.Background(), "dev@chatroom", 2)
	require.NoError(t, err)
	st := waitIdle(t, e)

	assert.Empty(t, st.Error)
	assert.Equal(t, 8, st.Total)
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, 2, st.Windows)
	assert.NotEmpty(t, st.Run)
	assert.NotNil(t, st.FinishedAt)
	assert.Equal(t, "M3", st.Members[3].Member.NickName)

	same, ok := x.Get("dev@chatroom")
	require.True(t, ok)
	assert.Same(t, e, same)
}

func TestExpandUnknownRoom(t *testing.T) {
	x := NewExpansions(fakeRooms{}, &fakeLookup{}, nil)
	defer x.Close()

	_, err := x.Expand(context.Background(), "nope@chatroom", 10)
	assert.ErrorIs(t, err, errors.ErrChatRoomNotFound)
	_, ok := x.Get("nope@chatroom")
	assert.False(t, ok)
}

func TestExpandRejectsConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	lookup := &fakeLookup{fail: func(call int, ids []string) error {
		<-release
		return nil
	}}
	clock := &fakeClock{}
	x := NewExpansions(fakeRooms{"r@chatroom": memberIDs("m", 3)}, lookup, func() ResolverConfig { return testConfig(clock) })
	defer x.Close()

	e, err := x.Expand(context.Background(), "r@chatroom", 10)
	require.NoError(t, err)

	_, err = x.Expand(context.Background(), "r@chatroom", 10)
	assert.ErrorIs(t, err, errors.ErrResolveInProgress)

	close(release)
	st := waitIdle(t, e)
	assert.Equal(t, 1, st.Pending)
}

func TestExpandRecordsFailure(t *testing.T) {
	lookup := &fakeLookup{fail: func(call int, ids []string) error {
		return errors.New(nil, 502, "upstream down")
	}}
	clock := &fakeClock{}
	x := NewExpansions(fakeRooms{"r@chatroom": memberIDs("m", 3)}, lookup, func() ResolverConfig { return testConfig(clock) })
	defer x.Close()

	e, err := x.Expand(context.Background(), "r@chatroom", 10)
	require.NoError(t, err)
	st := waitIdle(t, e)

	assert.Contains(t, st.Error, "upstream down")
	assert.Equal(t, 0, st.Windows)
	assert.Equal(t, 4, st.Pending)
}

func TestExpandSkipsResolvedRoom(t *testing.T) {
	lookup := &fakeLookup{}
	clock := &fakeClock{}
	x := NewExpansions(fakeRooms{"r@chatroom": memberIDs("m", 3)}, lookup, func() ResolverConfig { return testConfig(clock) })
	defer x.Close()

	e, err := x.Expand(context.Background(), "r@chatroom", 10)
	require.NoError(t, err)
	first := waitIdle(t, e)
	require.Len(t, lookup.Calls(), 1)

	again, err := x.Expand(context.Background(), "r@chatroom", 10)
	require.NoError(t, err)
	assert.Same(t, e, again)
	st := waitIdle(t, again)
	assert.Equal(t, first.Run, st.Run)
	assert.Len(t, lookup.Calls(), 1)
}

func TestExpansionStatusCountsMatchMembers(t *testing.T) {
	release := make(chan struct{})
	lookup := &fakeLookup{fail: func(call int, ids []string) error {
		if call == 2 {
			<-release
		}
		return nil
	}}
	clock := &fakeClock{}
	x := NewExpansions(fakeRooms{"r@chatroom": memberIDs("m", 9)}, lookup, func() ResolverConfig { return testConfig(clock) })
	defer x.Close()

	e, err := x.Expand(context.Background(), "r@chatroom", 2)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(lookup.Calls()) == 2 }, time.Second, 5*time.Millisecond)

	st := e.Status()
	pending := 0
	for _, m := range st.Members {
		if m.IsPlaceholder() {
			pending++
		}
	}
	assert.Equal(t, len(st.Members), st.Total)
	assert.Equal(t, pending, st.Pending)
	assert.Equal(t, 6, st.Pending)

	close(release)
	st = waitIdle(t, e)
	assert.Equal(t, 1, st.Pending)
}

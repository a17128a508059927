package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populatedConversations builds a list with two one-to-one records, one
// open group, and one legacy closed group.
func populatedConversations(t *testing.T) *Conversations {
	t.Helper()
	c := newTestConversations(t, nil)
	for _, id := range []string{bobID, aliceID} {
		rec, err := c.GetOrConstructOneToOne(id)
		require.NoError(t, err)
		require.NoError(t, c.Set(rec))
	}
	og, err := NewOpenGroup("http://example.com", "general", testPubkey)
	require.NoError(t, err)
	require.NoError(t, c.Set(og))
	lcg, err := NewLegacyClosedGroup(groupID)
	require.NoError(t, err)
	require.NoError(t, c.Set(lcg))
	return c
}

func TestIteratorTotalOrder(t *testing.T) {
	c := populatedConversations(t)

	var kinds []string
	var ids []string
	for it := c.Begin(); !it.Done(); it.Next() {
		switch rec := it.Value().(type) {
		case OneToOne:
			kinds = append(kinds, "1to1")
			ids = append(ids, rec.SessionID)
		case OpenGroup:
			kinds = append(kinds, "open")
			ids = append(ids, rec.BaseURL())
		case LegacyClosedGroup:
			kinds = append(kinds, "legacy")
			ids = append(ids, rec.ID)
		}
	}
	// one-to-one sorted by id, then open groups, then legacy groups
	assert.Equal(t, []string{"1to1", "1to1", "open", "legacy"}, kinds)
	assert.Equal(t, []string{aliceID, bobID, "http://example.com", groupID}, ids)
}

func TestIteratorEraseDuringIteration(t *testing.T) {
	c := populatedConversations(t)

	removed := 0
	for it := c.Begin(); !it.Done(); {
		if _, ok := it.Value().(OneToOne); ok {
			it = c.EraseIt(it)
			removed++
		} else {
			it.Next()
		}
	}
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, c.SizeOneToOne())
	assert.Equal(t, 2, c.Size())
}

func TestEraseItInvalidatesOldIterator(t *testing.T) {
	c := populatedConversations(t)

	it := c.Begin()
	stale := it
	_ = c.EraseIt(it)

	assert.PanicsWithValue(t,
		"session: use of invalidated conversations iterator",
		func() { stale.Next() },
	)
	assert.PanicsWithValue(t,
		"session: use of invalidated conversations iterator",
		func() { it.Value() },
	)
}

func TestEraseItReturnsNextPosition(t *testing.T) {
	c := populatedConversations(t)

	it := c.Begin()
	first, ok := it.Value().(OneToOne)
	require.True(t, ok)
	require.Equal(t, aliceID, first.SessionID)

	it = c.EraseIt(it)
	next, ok := it.Value().(OneToOne)
	require.True(t, ok)
	assert.Equal(t, bobID, next.SessionID)
}

func TestSetDuringIterationAllowed(t *testing.T) {
	c := populatedConversations(t)

	for it := c.Begin(); !it.Done(); it.Next() {
		if rec, ok := it.Value().(OneToOne); ok {
			rec.LastRead = 12345
			require.NoError(t, c.Set(rec))
		}
	}
	got, err := c.GetOneToOne(aliceID)
	require.NoError(t, err)
	assert.EqualValues(t, 12345, got.LastRead)
}

func TestIteratorSkipsRecordsErasedBehindSnapshot(t *testing.T) {
	c := populatedConversations(t)

	it := c.Begin()
	// erase the second one-to-one out-of-band; the iterator must skip it
	existed, err := c.EraseOneToOne(bobID)
	require.NoError(t, err)
	require.True(t, existed)

	var ids []string
	for ; !it.Done(); it.Next() {
		if rec, ok := it.Value().(OneToOne); ok {
			ids = append(ids, rec.SessionID)
		}
	}
	assert.Equal(t, []string{aliceID}, ids)
}

// TestDoneAfterTrailingErase erases the iterator's remaining records
// out-of-band; Done must then report true instead of leaving the loop to
// call Value on a finished iterator.
func TestDoneAfterTrailingErase(t *testing.T) {
	c := populatedConversations(t)

	it := c.Begin()
	for !it.Done() {
		if _, ok := it.Value().(LegacyClosedGroup); ok {
			break
		}
		it.Next()
	}
	require.False(t, it.Done())

	existed, err := c.EraseLegacyClosedGroup(groupID)
	require.NoError(t, err)
	require.True(t, existed)

	assert.True(t, it.Done())
	assert.NotPanics(t, func() {
		for ; !it.Done(); it.Next() {
			it.Value()
		}
	})
}

func TestEmptyIterator(t *testing.T) {
	c := newTestConversations(t, nil)
	it := c.Begin()
	require.True(t, it.Done())
	assert.Panics(t, func() { it.Value() })
}

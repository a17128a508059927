package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigAndDigOrCreate(t *testing.T) {
	c := newTestConversations(t, nil)

	require.Nil(t, c.dig("1", aliceID))

	d := c.digOrCreate("1", aliceID)
	require.NotNil(t, d)
	assert.True(t, c.NeedsPush())

	// a second dig lands on the same dict
	c.setInt(d, "r", 7)
	got := c.dig("1", aliceID)
	require.NotNil(t, got)
	n, ok := maybeInt(got, "r")
	require.True(t, ok)
	assert.EqualValues(t, 7, n)
}

func TestSetIntSkipsNoOpWrites(t *testing.T) {
	c := newTestConversations(t, nil)
	d := c.digOrCreate("1", aliceID)
	c.setInt(d, "r", 42)
	c.ConfirmPushed()
	require.False(t, c.NeedsPush())

	// rewriting the same value must not dirty the object
	c.setInt(d, "r", 42)
	assert.False(t, c.NeedsPush())

	c.setInt(d, "r", 43)
	assert.True(t, c.NeedsPush())
}

func TestSetFlag(t *testing.T) {
	c := newTestConversations(t, nil)
	d := c.digOrCreate("1", aliceID)

	c.setFlag(d, "f", true)
	n, ok := maybeInt(d, "f")
	require.True(t, ok)
	assert.EqualValues(t, 1, n)

	c.setFlag(d, "f", false)
	_, ok = maybeInt(d, "f")
	assert.False(t, ok, "false flag must be absent, not stored as 0")
}

func TestSetNonemptyStr(t *testing.T) {
	c := newTestConversations(t, nil)
	d := c.digOrCreate("1", aliceID)

	c.setNonemptyStr(d, "n", "nickname")
	s, ok := maybeStr(d, "n")
	require.True(t, ok)
	assert.Equal(t, "nickname", s)

	c.setNonemptyStr(d, "n", "")
	_, ok = maybeStr(d, "n")
	assert.False(t, ok)
}

func TestSetNonzeroAndPositiveInt(t *testing.T) {
	c := newTestConversations(t, nil)
	d := c.digOrCreate("1", aliceID)

	c.setNonzeroInt(d, "x", -5)
	n, ok := maybeInt(d, "x")
	require.True(t, ok)
	assert.EqualValues(t, -5, n)
	c.setNonzeroInt(d, "x", 0)
	_, ok = maybeInt(d, "x")
	assert.False(t, ok)

	c.setPositiveInt(d, "y", 10)
	n, ok = maybeInt(d, "y")
	require.True(t, ok)
	assert.EqualValues(t, 10, n)
	c.setPositiveInt(d, "y", -1)
	_, ok = maybeInt(d, "y")
	assert.False(t, ok)
}

func TestSetPairIf(t *testing.T) {
	c := newTestConversations(t, nil)
	d := c.digOrCreate("1", aliceID)

	c.setPairIf(true, d, "e", 2, "E", 90)
	mode, ok := maybeInt(d, "e")
	require.True(t, ok)
	assert.EqualValues(t, 2, mode)
	timer, ok := maybeInt(d, "E")
	require.True(t, ok)
	assert.EqualValues(t, 90, timer)

	// both leave together
	c.setPairIf(false, d, "e", 0, "E", 0)
	_, ok = maybeInt(d, "e")
	assert.False(t, ok)
	_, ok = maybeInt(d, "E")
	assert.False(t, ok)
}

func TestEraseFieldReportsPresence(t *testing.T) {
	c := newTestConversations(t, nil)
	d := c.digOrCreate("1", aliceID)
	c.setInt(d, "r", 1)
	c.ConfirmPushed()

	assert.True(t, c.eraseField(d, "r"))
	assert.True(t, c.NeedsPush())
	assert.False(t, c.eraseField(d, "r"))
	assert.False(t, c.eraseField(nil, "r"))
}

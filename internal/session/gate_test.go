package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutTokenIsEnded(t *testing.T) {
	g := New("")
	assert.False(t, g.Active())
	assert.Equal(t, "no credentials", g.Reason())
}

func TestEndRunsCallbacksOnce(t *testing.T) {
	g := New("tok")
	require.True(t, g.Active())
	require.Equal(t, "tok", g.Token())

	calls := 0
	var got string
	g.OnEnd(func(reason string) {
		calls++
		got = reason
	})

	g.End("logout")
	g.End("again")

	assert.False(t, g.Active())
	assert.Equal(t, "", g.Token())
	assert.Equal(t, 1, calls)
	assert.Equal(t, "logout", got)
}

func TestOnEndAfterEndFiresImmediately(t *testing.T) {
	g := New("tok")
	g.End("expired")

	fired := ""
	g.OnEnd(func(reason string) { fired = reason })
	assert.Equal(t, "expired", fired)
}

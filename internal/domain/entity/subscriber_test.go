package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSubscriber_DefaultState(t *testing.T) {
	s := NewSubscriber(1, 10)
	require.Equal(t, StateSubscribed, s.State)
	require.Equal(t, int64(1), s.UserID)
	require.Equal(t, int64(10), s.ChatID)
	require.True(t, s.Active())

	s.SetState(StateUnsubscribed)
	require.False(t, s.Active())
}

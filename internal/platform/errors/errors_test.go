package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrap_KeepsTypedError(t *testing.T) {
	inner := New(KindCapture, "capture", "no monitors found")
	wrapped := Wrap(KindAnalysis, "analyze", "should not replace", fmt.Errorf("outer: %w", inner))

	require.Same(t, inner, wrapped)
	require.True(t, IsKind(wrapped, KindCapture))
}

func TestWrap_Nil(t *testing.T) {
	require.Nil(t, Wrap(KindLogging, "append", "write", nil))
}

func TestError_Message(t *testing.T) {
	err := Wrap(KindLogging, "append", "write log", errors.New("disk full"))
	require.Equal(t, "[logging:append] write log: disk full", err.Error())
	require.Equal(t, "[config:load] api key missing", New(KindConfig, "load", "api key missing").Error())
}

func TestKindOf(t *testing.T) {
	require.Equal(t, KindAnalysis, KindOf(fmt.Errorf("ctx: %w", New(KindAnalysis, "analyze", "timeout"))))
	require.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	require.False(t, IsKind(errors.New("plain"), KindCapture))
}

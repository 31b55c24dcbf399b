package pacer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPacerSpacesCalls(t *testing.T) {
	p := New(40*time.Millisecond, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(ctx))
	}
	require.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestPacerFirstSlotImmediate(t *testing.T) {
	p := New(time.Hour, 1)
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	require.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPacerHonorsContext(t *testing.T) {
	p := New(time.Hour, 1)
	require.True(t, p.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, p.Wait(ctx))
}

func TestPacerDisabled(t *testing.T) {
	p := New(0, 1)
	for i := 0; i < 100; i++ {
		require.True(t, p.Allow())
	}
}

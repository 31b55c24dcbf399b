package runlog

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-astrology/internal/domain/history"
)

func TestMemoryRepositoryKeepsNewest(t *testing.T) {
	repo := NewMemoryRepository(3)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, history.RunRecord{ID: strconv.Itoa(i)}))
	}

	runs, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	require.Equal(t, []string{"4", "3", "2"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	runs, err = repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "4", runs[0].ID)
}

func TestNullString(t *testing.T) {
	require.False(t, nullString("").Valid)
	require.True(t, nullString("x").Valid)
}

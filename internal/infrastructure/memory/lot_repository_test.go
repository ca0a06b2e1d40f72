package memory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/infrastructure/memory"
)

func TestLotRepository_ConsumeYRestore(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLotRepository(&entity.InventoryLot{
		IntakeLotID: "IL-1", ReCode: "RE-1", RemainingVolume: decimal.NewFromInt(10),
	})

	require.NoError(t, repo.Consume(ctx, "il-1", decimal.RequireFromString("4.5")))
	l, err := repo.GetByIntakeLotID(ctx, "IL-1")
	require.NoError(t, err)
	assert.True(t, l.RemainingVolume.Equal(decimal.RequireFromString("5.5")))

	require.NoError(t, repo.Restore(ctx, "IL-1", decimal.RequireFromString("4.5")))
	l, _ = repo.GetByIntakeLotID(ctx, "IL-1")
	assert.True(t, l.RemainingVolume.Equal(decimal.NewFromInt(10)))
}

func TestLotRepository_ConsumeRechazaSobregiroYLoteDesconocido(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLotRepository(&entity.InventoryLot{
		IntakeLotID: "IL-1", ReCode: "RE-1", RemainingVolume: decimal.NewFromInt(3),
	})

	assert.ErrorIs(t, repo.Consume(ctx, "IL-1", decimal.NewFromInt(4)), domain.ErrInsufficientStock)
	assert.ErrorIs(t, repo.Consume(ctx, "IL-X", decimal.NewFromInt(1)), domain.ErrUnknownLot)

	l, _ := repo.GetByIntakeLotID(ctx, "IL-1")
	assert.True(t, l.RemainingVolume.Equal(decimal.NewFromInt(3)), "un rechazo no modifica el saldo")
}

func TestLotRepository_ListDevuelveCopias(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLotRepository(&entity.InventoryLot{
		IntakeLotID: "IL-1", ReCode: "RE-1", RemainingVolume: decimal.NewFromInt(3),
	})

	lots, err := repo.ListByReCode(ctx, "re-1")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	lots[0].RemainingVolume = decimal.Zero

	l, _ := repo.GetByIntakeLotID(ctx, "IL-1")
	assert.True(t, l.RemainingVolume.Equal(decimal.NewFromInt(3)))
}

func TestLotRepository_SetStatus(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLotRepository(&entity.InventoryLot{
		IntakeLotID: "IL-1", ReCode: "RE-1", RemainingVolume: decimal.NewFromInt(10), Status: entity.LotStatusActive,
	})

	require.NoError(t, repo.SetStatus(ctx, "il-1", entity.LotStatusInactive))
	l, err := repo.GetByIntakeLotID(ctx, "IL-1")
	require.NoError(t, err)
	assert.False(t, l.IsActive())
	assert.False(t, l.UpdatedAt.IsZero())

	assert.ErrorIs(t, repo.SetStatus(ctx, "IL-X", entity.LotStatusActive), domain.ErrUnknownLot)
}

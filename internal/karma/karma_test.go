package karma

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/internal/store/memstore"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name string
		prev models.Direction
		next models.Direction
		want int
	}{
		{"retract up", models.DirectionUp, models.DirectionNone, -1},
		{"retract down", models.DirectionDown, models.DirectionNone, 1},
		{"new up", models.DirectionNone, models.DirectionUp, 1},
		{"new down", models.DirectionNone, models.DirectionDown, -1},
		{"down to up", models.DirectionDown, models.DirectionUp, 2},
		{"up to down", models.DirectionUp, models.DirectionDown, -2},
		{"no change", models.DirectionUp, models.DirectionUp, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Delta(tt.prev, tt.next); got != tt.want {
				t.Errorf("Delta(%q, %q) = %d, want %d", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}

func TestAccumulator(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	author := &models.User{Username: "author", AuthProvider: "test", ProviderID: "1"}
	require.NoError(t, s.Users().Create(ctx, author))

	acc := NewAccumulator()
	require.NoError(t, acc.OnContentAuthored(ctx, s.Users(), author.ID))

	delta, err := acc.OnVoteApplied(ctx, s.Users(), author.ID, models.DirectionDown, models.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, 2, delta)

	got, err := s.Users().GetByID(ctx, author.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.Karma)
}

func adjustmentTotal(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "agora.karma.adjustments" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestAdjustmentsCountedAfterCommit(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	counter, err := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).
		Meter("karma-test").
		Int64Counter("agora.karma.adjustments")
	require.NoError(t, err)
	acc := newAccumulator(counter)

	s := memstore.New()
	author := &models.User{Username: "author", AuthProvider: "test", ProviderID: "1"}
	require.NoError(t, s.Users().Create(ctx, author))

	boom := errors.New("boom")
	err = s.Transaction(ctx, func(tx store.Repository) error {
		if _, err := acc.OnVoteApplied(ctx, tx.Users(), author.ID, models.DirectionNone, models.DirectionUp); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, adjustmentTotal(t, reader), "rolled back adjustment must not be counted")

	got, err := s.Users().GetByID(ctx, author.ID)
	require.NoError(t, err)
	require.Zero(t, got.Karma)

	acc.Record(ctx, ReasonVote)
	require.Equal(t, int64(1), adjustmentTotal(t, reader))
}

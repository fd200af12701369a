package shared

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuditTrailRecentNewestFirst(t *testing.T) {
	trail := NewAuditTrail(nil, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, trail.Record(ctx, AuditLog{
			Actor:    "ana",
			Action:   "product.create",
			Entity:   "product",
			EntityID: fmt.Sprintf("p-%d", i),
		}))
	}

	recent := trail.Recent(2)
	require.Len(t, recent, 2)
	require.Equal(t, "p-2", recent[0].EntityID)
	require.Equal(t, "p-1", recent[1].EntityID)
	require.False(t, recent[0].At.IsZero())
}

func TestAuditTrailBoundedByLimit(t *testing.T) {
	trail := NewAuditTrail(nil, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, trail.Record(ctx, AuditLog{EntityID: fmt.Sprintf("p-%d", i)}))
	}

	all := trail.Recent(0)
	require.Len(t, all, 3)
	require.Equal(t, "p-4", all[0].EntityID)
	require.Equal(t, "p-2", all[2].EntityID)
}

func TestAuditTrailNilReceiverIsNoop(t *testing.T) {
	var trail *AuditTrail
	require.NoError(t, trail.Record(context.Background(), AuditLog{Action: "noop"}))
}

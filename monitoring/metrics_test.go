package monitoring

import (
	"context"
	"testing"
	"time"

	"nightmarket/internal/store"
	"nightmarket/internal/store/memstore"
	"nightmarket/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackConfirm(t *testing.T) {
	before := testutil.ToFloat64(gateConfirmations.WithLabelValues("admitted"))
	TrackConfirm("admitted")
	TrackConfirm("admitted")
	assert.Equal(t, before+2, testutil.ToFloat64(gateConfirmations.WithLabelValues("admitted")))
}

func TestMonitor_CollectCapacity(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	ev := &models.Event{ID: "ev1", Title: "Vol. 4", TotalTickets: 300, SoldTickets: 120, Status: models.EventActive}
	draft := &models.Event{ID: "ev2", Title: "Vol. 5", TotalTickets: 50, Status: models.EventDraft}
	require.NoError(t, s.RunInTransaction(ctx, func(tx store.Tx) error {
		if err := tx.CreateEvent(ctx, ev); err != nil {
			return err
		}
		return tx.CreateEvent(ctx, draft)
	}))

	NewMonitor(s, time.Minute).CollectCapacity(ctx)

	assert.Equal(t, 300.0, testutil.ToFloat64(eventCapacity.WithLabelValues("ev1", "total")))
	assert.Equal(t, 120.0, testutil.ToFloat64(eventCapacity.WithLabelValues("ev1", "sold")))
}

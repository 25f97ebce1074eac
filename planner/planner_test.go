package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-query/internal/testfeed"
	"github.com/theoremus-urban-solutions/transit-query/planner"
)

func TestPlan_Direct(t *testing.T) {
	d := testfeed.Minimal().Load(t)

	it := planner.Plan(d, "S1", "S2", "")
	assert.Equal(t, planner.Direct, it.Kind)
	assert.Equal(t, "T1", it.TripID)
	assert.Equal(t, "08:00:00", it.DepartureTime)
	assert.Equal(t, "08:10:00", it.ArrivalTime)
	require.Len(t, it.Legs, 1)
	assert.Equal(t, planner.Leg{
		TripID: "T1", RouteID: "R1", FromStopID: "S1", ToStopID: "S2",
		DepartureTime: "08:00:00", ArrivalTime: "08:10:00", FromSequence: 1, ToSequence: 2,
	}, it.Legs[0])
}

func TestPlan_WrongDirectionIsNoPath(t *testing.T) {
	d := testfeed.Minimal().Load(t)

	it := planner.Plan(d, "S2", "S1", "")
	assert.Equal(t, planner.Itinerary{Kind: planner.NoPath}, it)
}

func TestPlan_ReferenceTimeOrdersBoardings(t *testing.T) {
	d := testfeed.Minimal().
		With("trips.txt", "route_id,service_id,trip_id\nR1,WK,T1\nR1,WK,T2\n").
		With("stop_times.txt", `trip_id,arrival_time,departure_time,stop_id,stop_sequence
T1,08:00:00,08:00:00,S1,1
T1,08:10:00,08:10:00,S2,2
T2,09:00:00,09:00:00,S1,1
T2,09:10:00,09:10:00,S2,2
`).Load(t)

	tests := []struct {
		ref  string
		want string
	}{
		{ref: "", want: "T1"},
		{ref: "07:00:00", want: "T1"},
		{ref: "08:30:00", want: "T2"},
		{ref: "09:00:00", want: "T2"},
		// Nothing departs after the reference, so earlier trips are used.
		{ref: "10:00:00", want: "T1"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			it := planner.Plan(d, "S1", "S2", tt.ref)
			assert.Equal(t, planner.Direct, it.Kind)
			assert.Equal(t, tt.want, it.TripID)
		})
	}
}

func TestPlan_Network(t *testing.T) {
	d := testfeed.Network().Load(t)

	t.Run("direct", func(t *testing.T) {
		it := planner.Plan(d, "A", "C", "")
		assert.Equal(t, planner.Direct, it.Kind)
		assert.Equal(t, "T1", it.TripID)
		assert.Equal(t, "08:00:00", it.DepartureTime)
		assert.Equal(t, "08:20:00", it.ArrivalTime)
	})

	t.Run("direct on reverse route", func(t *testing.T) {
		it := planner.Plan(d, "E", "D", "")
		assert.Equal(t, planner.Direct, it.Kind)
		assert.Equal(t, "T4", it.TripID)
	})

	t.Run("one transfer prefers a connection that can be made", func(t *testing.T) {
		it := planner.Plan(d, "A", "E", "")
		require.Equal(t, planner.OneTransfer, it.Kind)
		assert.Equal(t, "C", it.TransferStopID)
		assert.Equal(t, "T1", it.FirstTripID)
		assert.Equal(t, "08:20:00", it.TransferDepartureTime)
		// T3 also reaches E from C but leaves at 07:00, before T1 arrives.
		assert.Equal(t, "T2", it.SecondTripID)
		assert.Equal(t, "08:00:00", it.DepartureTime)
		assert.Equal(t, "08:45:00", it.ArrivalTime)
		require.Len(t, it.Legs, 2)
		assert.Equal(t, "A", it.Legs[0].FromStopID)
		assert.Equal(t, "C", it.Legs[0].ToStopID)
		assert.Equal(t, "C", it.Legs[1].FromStopID)
		assert.Equal(t, "E", it.Legs[1].ToStopID)
		assert.Less(t, it.Legs[0].FromSequence, it.Legs[0].ToSequence)
		assert.Less(t, it.Legs[1].FromSequence, it.Legs[1].ToSequence)
	})

	t.Run("wrong direction", func(t *testing.T) {
		assert.Equal(t, planner.NoPath, planner.Plan(d, "C", "A", "").Kind)
	})

	t.Run("unserved stop", func(t *testing.T) {
		assert.Equal(t, planner.NoPath, planner.Plan(d, "A", "X", "").Kind)
		assert.Equal(t, planner.NoPath, planner.Plan(d, "X", "A", "").Kind)
	})

	t.Run("unknown stops", func(t *testing.T) {
		assert.Equal(t, planner.NoPath, planner.Plan(d, "nope", "E", "").Kind)
	})
}

func TestPlan_SequenceOnlyTransferFallback(t *testing.T) {
	// The only connection at Q leaves before the first trip arrives.
	d := testfeed.Minimal().
		With("stops.txt", "stop_id,stop_name,stop_lat,stop_lon\nP,P,0,0\nQ,Q,0,0.01\nR,R,0,0.02\n").
		With("trips.txt", "route_id,service_id,trip_id\nR1,WK,T1\nR1,WK,T2\n").
		With("stop_times.txt", `trip_id,arrival_time,departure_time,stop_id,stop_sequence
T1,09:00:00,09:00:00,P,1
T1,09:10:00,09:10:00,Q,2
T2,08:00:00,08:00:00,Q,1
T2,08:10:00,08:10:00,R,2
`).Load(t)

	it := planner.Plan(d, "P", "R", "")
	require.Equal(t, planner.OneTransfer, it.Kind)
	assert.Equal(t, "Q", it.TransferStopID)
	assert.Equal(t, "T1", it.FirstTripID)
	assert.Equal(t, "T2", it.SecondTripID)
	assert.Equal(t, "08:10:00", it.ArrivalTime)
}

func TestPlan_Deterministic(t *testing.T) {
	d := testfeed.Network().Load(t)

	first := planner.Plan(d, "A", "E", "")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, planner.Plan(d, "A", "E", ""))
	}
}

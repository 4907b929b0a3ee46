package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/soundcheck/internal/contract"
	"github.com/roach88/soundcheck/internal/testutil"
)

func TestRenderSortsAndResolves(t *testing.T) {
	payload := contract.Payload{
		testutil.NewFestival("Reading",
			testutil.NewBand("Zephyr", "Rough Trade"),
			testutil.NewBand("Echo", "EMI"),
		),
		testutil.NewFestival("Glasto",
			testutil.NewBand("Pulse", "Sub Pop"),
		),
	}
	st := State{Phase: Normal, Cards: []CardState{Collapsed, Collapsed}}

	snap := Render(payload, st)

	require.Len(t, snap.Festivals, 2)
	// Festivals sorted by display name, bands sorted within.
	assert.Equal(t, "Glasto", snap.Festivals[0].Name)
	assert.Equal(t, "Reading", snap.Festivals[1].Name)
	require.Len(t, snap.Festivals[1].Bands, 2)
	assert.Equal(t, "Echo", snap.Festivals[1].Bands[0].Name)
	assert.Equal(t, "Zephyr", snap.Festivals[1].Bands[1].Name)
	assert.Empty(t, snap.Notices)
}

func TestRenderAppliesFallback(t *testing.T) {
	payload := contract.Payload{
		testutil.NewFestivalNoName(
			contract.Band{Name: testutil.Str(""), RecordLabel: nil},
		),
	}
	st := State{Phase: Normal, Cards: []CardState{Collapsed}}

	snap := Render(payload, st)

	require.Len(t, snap.Festivals, 1)
	assert.Equal(t, contract.Sentinel, snap.Festivals[0].Name)
	require.Len(t, snap.Festivals[0].Bands, 1)
	assert.Equal(t, contract.Sentinel, snap.Festivals[0].Bands[0].Name)
	assert.Equal(t, contract.Sentinel, snap.Festivals[0].Bands[0].Label)
}

func TestRenderVisibilityFollowsCards(t *testing.T) {
	payload := contract.Payload{
		testutil.NewFestival("Glasto", testutil.NewBand("Echo", "EMI")),
		testutil.NewFestival("Reading"),
	}
	st := State{Phase: Normal, Cards: []CardState{Expanded, Collapsed}}

	snap := Render(payload, st)

	require.Len(t, snap.Festivals, 2)
	assert.True(t, snap.Festivals[0].BandsVisible)
	assert.False(t, snap.Festivals[1].BandsVisible)
	// Collapsed containers still hold their band nodes; they are hidden,
	// not absent.
	assert.Len(t, snap.Festivals[0].Bands, 1)
}

func TestRenderStableForEqualNames(t *testing.T) {
	// Equal resolved names keep payload order under the stable sort.
	payload := contract.Payload{
		testutil.NewFestivalNoName(testutil.NewBand("Alpha", "A")),
		testutil.NewFestivalNoName(testutil.NewBand("Beta", "B")),
	}
	st := State{Phase: Normal, Cards: []CardState{Collapsed, Collapsed}}

	snap := Render(payload, st)

	require.Len(t, snap.Festivals, 2)
	assert.Equal(t, "Alpha", snap.Festivals[0].Bands[0].Name)
	assert.Equal(t, "Beta", snap.Festivals[1].Bands[0].Name)
}

func TestRenderTerminalStates(t *testing.T) {
	empty := Render(nil, State{Phase: Empty})
	assert.Empty(t, empty.Festivals)
	assert.True(t, empty.HasNotice(EmptyNotice))

	errored := Render(nil, State{Phase: ErrorState})
	assert.True(t, errored.HasNotice(ErrorNotice))

	loading := Render(nil, State{Phase: Loading})
	assert.Empty(t, loading.Festivals)
	assert.Empty(t, loading.Notices)
}

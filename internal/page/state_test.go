package page

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/soundcheck/internal/gate"
)

func TestTransitionSettlesNormal(t *testing.T) {
	resp := gate.Response{
		StatusCode: 200,
		Body:       []byte(`[{"name":"Glasto","bands":[{"name":"Echo","recordLabel":"EMI"}]},{"name":"Reading","bands":[]}]`),
	}

	st := Transition(resp)
	assert.Equal(t, Normal, st.Phase)
	// Every card starts collapsed.
	require.Len(t, st.Cards, 2)
	assert.Equal(t, []CardState{Collapsed, Collapsed}, st.Cards)
}

func TestTransitionSettlesEmpty(t *testing.T) {
	st := Transition(gate.Response{StatusCode: 200, Body: []byte(`[]`)})
	assert.Equal(t, Empty, st.Phase)
	assert.Empty(t, st.Cards)
}

func TestTransitionSettlesErrorState(t *testing.T) {
	tests := []struct {
		name string
		resp gate.Response
	}{
		{"500", gate.Response{StatusCode: 500, Body: []byte(`boom`)}},
		{"404", gate.Response{StatusCode: 404}},
		{"request failure", gate.Response{Err: errors.New("connection refused")}},
		{"200 with undecodable body", gate.Response{StatusCode: 200, Body: []byte(`{"oops":`)}},
		{"200 with object body", gate.Response{StatusCode: 200, Body: []byte(`{}`)}},
		{"200 with null body", gate.Response{StatusCode: 200, Body: []byte(`null`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Transition(tt.resp)
			assert.Equal(t, ErrorState, st.Phase)
			assert.Empty(t, st.Cards)
		})
	}
}

func TestToggleFlipsIndependently(t *testing.T) {
	st := State{Phase: Normal, Cards: []CardState{Collapsed, Collapsed, Collapsed}}

	require.NoError(t, st.Toggle(1))
	assert.Equal(t, []CardState{Collapsed, Expanded, Collapsed}, st.Cards)

	require.NoError(t, st.Toggle(0))
	assert.Equal(t, []CardState{Expanded, Expanded, Collapsed}, st.Cards)

	// A second toggle collapses again and leaves the others alone.
	require.NoError(t, st.Toggle(1))
	assert.Equal(t, []CardState{Expanded, Collapsed, Collapsed}, st.Cards)
}

func TestToggleRejectsNonNormalPhases(t *testing.T) {
	for _, phase := range []Phase{Loading, Empty, ErrorState} {
		st := State{Phase: phase}
		assert.Error(t, st.Toggle(0), "phase %s", phase)
	}
}

func TestToggleRejectsOutOfRange(t *testing.T) {
	st := State{Phase: Normal, Cards: []CardState{Collapsed}}
	assert.Error(t, st.Toggle(-1))
	assert.Error(t, st.Toggle(1))
}

package page

import (
	"fmt"
	"net/http"

	"github.com/roach88/soundcheck/internal/contract"
	"github.com/roach88/soundcheck/internal/gate"
)

// Phase is the top-level page state.
type Phase string

const (
	Loading    Phase = "loading"
	Normal     Phase = "normal"
	Empty      Phase = "empty"
	ErrorState Phase = "error"
)

// CardState is the per-festival sub-state of a Normal page.
type CardState string

const (
	Collapsed CardState = "collapsed"
	Expanded  CardState = "expanded"
)

// State is the oracle's model of the page. Cards holds one entry per
// displayed festival container, indexed in display order; it is empty
// outside the Normal phase.
type State struct {
	Phase Phase       `json:"phase"`
	Cards []CardState `json:"cards,omitempty"`
}

// Transition resolves the Loading phase from an upstream exchange.
//
// A 200 whose body decodes to a non-empty payload settles Normal with every
// card Collapsed; a 200 with an empty array settles Empty; everything else -
// non-200 status, request-level failure, or a success body that does not
// decode - settles ErrorState.
func Transition(resp gate.Response) State {
	if resp.Err != nil || resp.StatusCode != http.StatusOK {
		return State{Phase: ErrorState}
	}

	payload, err := contract.DecodePayload(resp.Body)
	if err != nil {
		return State{Phase: ErrorState}
	}

	if len(payload) == 0 {
		return State{Phase: Empty}
	}

	cards := make([]CardState, len(payload))
	for i := range cards {
		cards[i] = Collapsed
	}
	return State{Phase: Normal, Cards: cards}
}

// Toggle flips the card at display position i. Toggling is independent per
// card and only meaningful on a Normal page.
func (s *State) Toggle(i int) error {
	if s.Phase != Normal {
		return fmt.Errorf("toggle festival %d: page is %s, not %s", i, s.Phase, Normal)
	}
	if i < 0 || i >= len(s.Cards) {
		return fmt.Errorf("toggle festival %d: index out of range (%d cards)", i, len(s.Cards))
	}
	if s.Cards[i] == Expanded {
		s.Cards[i] = Collapsed
	} else {
		s.Cards[i] = Expanded
	}
	return nil
}

// cardAt returns the state of card i, defaulting to Collapsed when the
// state carries fewer cards than the snapshot shows.
func cardAt(s State, i int) CardState {
	if i < 0 || i >= len(s.Cards) {
		return Collapsed
	}
	return s.Cards[i]
}

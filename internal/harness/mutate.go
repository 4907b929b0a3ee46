package harness

import (
	"fmt"

	"github.com/roach88/soundcheck/internal/page"
)

// applyMutations injects the scenario's defects into a rendered snapshot.
// Out-of-range positions are scenario authoring errors, not verdicts.
func applyMutations(snap *page.Snapshot, muts []Mutation) error {
	for i, m := range muts {
		if err := applyMutation(snap, m); err != nil {
			return fmt.Errorf("mutations[%d]: %w", i, err)
		}
	}
	return nil
}

func applyMutation(snap *page.Snapshot, m Mutation) error {
	switch m.Op {
	case MutSwapFestivals:
		if err := checkPos(len(snap.Festivals), m.A, m.B); err != nil {
			return err
		}
		snap.Festivals[m.A], snap.Festivals[m.B] = snap.Festivals[m.B], snap.Festivals[m.A]

	case MutSwapBands:
		if err := checkPos(len(snap.Festivals), m.Festival); err != nil {
			return err
		}
		bands := snap.Festivals[m.Festival].Bands
		if err := checkPos(len(bands), m.A, m.B); err != nil {
			return err
		}
		bands[m.A], bands[m.B] = bands[m.B], bands[m.A]

	case MutBlankName:
		if err := checkPos(len(snap.Festivals), m.Festival); err != nil {
			return err
		}
		snap.Festivals[m.Festival].Name = ""

	case MutDropFestival:
		if err := checkPos(len(snap.Festivals), m.Index); err != nil {
			return err
		}
		snap.Festivals = append(snap.Festivals[:m.Index], snap.Festivals[m.Index+1:]...)

	case MutSetVisibility:
		if err := checkPos(len(snap.Festivals), m.Festival); err != nil {
			return err
		}
		snap.Festivals[m.Festival].BandsVisible = m.Visible

	default:
		return fmt.Errorf("unknown op %q", m.Op)
	}
	return nil
}

func checkPos(n int, positions ...int) error {
	for _, p := range positions {
		if p < 0 || p >= n {
			return fmt.Errorf("position %d out of range (have %d)", p, n)
		}
	}
	return nil
}

package page

import (
	"sort"

	"github.com/roach88/soundcheck/internal/contract"
	"github.com/roach88/soundcheck/internal/order"
)

// renderedFestival is one festival in canonical display form: resolved
// name, bands resolved and sorted. Visibility is positional state, not
// content, so it lives outside the projection.
type renderedFestival struct {
	name  string
	bands []BandNode
}

// displayProjection maps a payload to canonical display order: every text
// field resolved through the fallback rule, bands sorted within each
// festival, festivals sorted across the payload. Sorting is stable, so
// equal resolved names keep payload order.
func displayProjection(payload contract.Payload) []renderedFestival {
	cmp := order.Default()

	out := make([]renderedFestival, len(payload))
	for i, fest := range payload {
		name, _ := contract.Display(fest.Name)

		list := fest.BandList()
		bands := make([]BandNode, len(list))
		for j, band := range list {
			bandName, _ := contract.Display(band.Name)
			label, _ := contract.Display(band.RecordLabel)
			bands[j] = BandNode{Name: bandName, Label: label}
		}
		sort.SliceStable(bands, func(a, b int) bool {
			return cmp.Compare(bands[a].Name, bands[b].Name) < 0
		})

		out[i] = renderedFestival{name: name, bands: bands}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return cmp.Compare(out[a].name, out[b].name) < 0
	})
	return out
}

// Render produces the snapshot a correctly behaving page would show for
// the given payload and interaction state.
//
// This is the reference renderer used by the simulated-page path in the
// harness and by tests; captures of a real page come from the browser
// driver instead. Verify builds its expectations from the projection
// directly and never calls Render.
func Render(payload contract.Payload, st State) Snapshot {
	switch st.Phase {
	case Normal:
		proj := displayProjection(payload)
		nodes := make([]FestivalNode, len(proj))
		for i, rf := range proj {
			nodes[i] = FestivalNode{
				Name:         rf.name,
				BandsVisible: cardAt(st, i) == Expanded,
				Bands:        rf.bands,
			}
		}
		return Snapshot{Festivals: nodes}
	case Empty:
		return Snapshot{Festivals: []FestivalNode{}, Notices: []string{EmptyNotice}}
	case ErrorState:
		return Snapshot{Notices: []string{ErrorNotice}}
	default:
		return Snapshot{}
	}
}

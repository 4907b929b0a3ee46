package page

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/soundcheck/internal/contract"
	"github.com/roach88/soundcheck/internal/order"
)

// Mismatch is one divergence between the expected rendering and the
// observed snapshot. Diff carries a structural diff when a whole group of
// nodes was compared at once.
type Mismatch struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Observed string `json:"observed"`
	Diff     string `json:"diff,omitempty"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected %s, observed %s", m.Path, m.Expected, m.Observed)
}

// Verify checks a snapshot against the contract for the given settled state
// and source payload. It accumulates every mismatch; an empty result means
// the page is correct for that state.
func Verify(st State, payload contract.Payload, snap Snapshot) []Mismatch {
	switch st.Phase {
	case Loading:
		return []Mismatch{{
			Path:     "page",
			Expected: "a settled phase",
			Observed: "page did not settle",
		}}
	case Empty:
		return verifyEmpty(snap)
	case ErrorState:
		return verifyError(snap)
	default:
		return verifyNormal(st, payload, snap)
	}
}

func verifyEmpty(snap Snapshot) []Mismatch {
	var ms []Mismatch
	if n := len(snap.Festivals); n != 0 {
		ms = append(ms, Mismatch{
			Path:     "festivals",
			Expected: "no festival containers",
			Observed: fmt.Sprintf("%d containers", n),
		})
	}
	if !snap.HasNotice(EmptyNotice) {
		ms = append(ms, Mismatch{
			Path:     "notices",
			Expected: fmt.Sprintf("%q visible", EmptyNotice),
			Observed: observedNotices(snap),
		})
	}
	return ms
}

func verifyError(snap Snapshot) []Mismatch {
	// Festival containers are not asserted either way in the error state.
	if snap.HasNotice(ErrorNotice) {
		return nil
	}
	return []Mismatch{{
		Path:     "notices",
		Expected: fmt.Sprintf("%q visible", ErrorNotice),
		Observed: observedNotices(snap),
	}}
}

func verifyNormal(st State, payload contract.Payload, snap Snapshot) []Mismatch {
	var ms []Mismatch
	coll := order.Default()
	exp := displayProjection(payload)
	obs := snap.Festivals

	if len(obs) != len(exp) {
		ms = append(ms, Mismatch{
			Path:     "festivals",
			Expected: fmt.Sprintf("%d containers", len(exp)),
			Observed: fmt.Sprintf("%d containers", len(obs)),
		})
	}

	// Observed ordering at both levels.
	if v := order.NonDecreasing(coll, festivalNames(obs)); v != nil {
		ms = append(ms, orderingMismatch("festivals", v))
	}
	for i, node := range obs {
		if v := order.NonDecreasing(coll, bandNames(node.Bands)); v != nil {
			ms = append(ms, orderingMismatch(fmt.Sprintf("festivals[%d].bands", i), v))
		}
	}

	// Content, windowed over runs of equal expected names so that equally
	// named festivals tolerate mutual reordering.
	n := min(len(exp), len(obs))
	for i := 0; i < n; {
		j := i + 1
		for j < n && exp[j].name == exp[i].name {
			j++
		}
		if j-i == 1 {
			ms = append(ms, compareFestival(i, exp[i], obs[i])...)
		} else {
			ms = append(ms, compareFestivalRun(i, j, exp, obs)...)
		}
		i = j
	}

	// Visibility is positional: a toggle targets the container at a display
	// position, whatever content it holds.
	for i := 0; i < n; i++ {
		want := cardAt(st, i) == Expanded
		if obs[i].BandsVisible != want {
			ms = append(ms, Mismatch{
				Path:     fmt.Sprintf("festivals[%d]", i),
				Expected: visibility(want),
				Observed: visibility(obs[i].BandsVisible),
			})
		}
	}

	return ms
}

func compareFestival(pos int, exp renderedFestival, obs FestivalNode) []Mismatch {
	var ms []Mismatch
	path := fmt.Sprintf("festivals[%d]", pos)

	if obs.Name != exp.name {
		ms = append(ms, Mismatch{
			Path:     path + ".name",
			Expected: fmt.Sprintf("%q", exp.name),
			Observed: fmt.Sprintf("%q", obs.Name),
		})
	}
	ms = append(ms, compareBands(path, exp.bands, obs.Bands)...)
	return ms
}

// compareFestivalRun compares positions [i, j) as a multiset: every
// expected festival must appear exactly once, in any mutual order.
func compareFestivalRun(i, j int, exp []renderedFestival, obs []FestivalNode) []Mismatch {
	expKeys := make([]string, 0, j-i)
	obsKeys := make([]string, 0, j-i)
	for k := i; k < j; k++ {
		expKeys = append(expKeys, festivalKey(exp[k].name, exp[k].bands))
		obsKeys = append(obsKeys, festivalKey(obs[k].Name, obs[k].Bands))
	}
	if d := multisetDiff(expKeys, obsKeys); d != "" {
		return []Mismatch{{
			Path:     fmt.Sprintf("festivals[%d:%d]", i, j),
			Expected: "the same festivals in any mutual order",
			Observed: "different content",
			Diff:     d,
		}}
	}
	return nil
}

func compareBands(path string, exp, obs []BandNode) []Mismatch {
	var ms []Mismatch
	if len(obs) != len(exp) {
		ms = append(ms, Mismatch{
			Path:     path + ".bands",
			Expected: fmt.Sprintf("%d bands", len(exp)),
			Observed: fmt.Sprintf("%d bands", len(obs)),
		})
	}

	n := min(len(exp), len(obs))
	for i := 0; i < n; {
		j := i + 1
		for j < n && exp[j].Name == exp[i].Name {
			j++
		}
		if j-i == 1 {
			bandPath := fmt.Sprintf("%s.bands[%d]", path, i)
			if obs[i].Name != exp[i].Name {
				ms = append(ms, Mismatch{
					Path:     bandPath + ".name",
					Expected: fmt.Sprintf("%q", exp[i].Name),
					Observed: fmt.Sprintf("%q", obs[i].Name),
				})
			}
			if obs[i].Label != exp[i].Label {
				ms = append(ms, Mismatch{
					Path:     bandPath + ".label",
					Expected: fmt.Sprintf("%q", exp[i].Label),
					Observed: fmt.Sprintf("%q", obs[i].Label),
				})
			}
		} else {
			if d := multisetDiff(bandKeys(exp[i:j]), bandKeys(obs[i:j])); d != "" {
				ms = append(ms, Mismatch{
					Path:     fmt.Sprintf("%s.bands[%d:%d]", path, i, j),
					Expected: "the same bands in any mutual order",
					Observed: "different content",
					Diff:     d,
				})
			}
		}
		i = j
	}
	return ms
}

func orderingMismatch(path string, v *order.Violation) Mismatch {
	return Mismatch{
		Path:     path,
		Expected: "non-decreasing display order",
		Observed: fmt.Sprintf("%q before %q at index %d", v.Prev, v.Next, v.Index),
	}
}

// festivalKey serializes container content for order-insensitive
// comparison. Visibility is positional state and excluded.
func festivalKey(name string, bands []BandNode) string {
	raw, _ := json.Marshal(struct {
		Name  string     `json:"name"`
		Bands []BandNode `json:"bands"`
	}{name, bands})
	return string(raw)
}

func bandKeys(bands []BandNode) []string {
	keys := make([]string, len(bands))
	for i, b := range bands {
		raw, _ := json.Marshal(b)
		keys[i] = string(raw)
	}
	return keys
}

func multisetDiff(exp, obs []string) string {
	sort.Strings(exp)
	sort.Strings(obs)
	return cmp.Diff(exp, obs)
}

func festivalNames(nodes []FestivalNode) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}

func bandNames(bands []BandNode) []string {
	names := make([]string, len(bands))
	for i, b := range bands {
		names[i] = b.Name
	}
	return names
}

func visibility(visible bool) string {
	if visible {
		return "bands visible"
	}
	return "bands hidden"
}

func observedNotices(snap Snapshot) string {
	if len(snap.Notices) == 0 {
		return "no notices"
	}
	return fmt.Sprintf("%q", snap.Notices)
}

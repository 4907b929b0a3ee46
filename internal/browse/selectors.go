package browse

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/roach88/soundcheck/internal/page"
)

// Selectors names the page nodes a capture reads. The json tags are the
// names the snapshot script sees them under.
type Selectors struct {
	// Festival matches one festival card container.
	Festival string `json:"festival"`
	// Name matches the festival name header inside a card. Activating
	// it toggles the card's band visibility.
	Name string `json:"name"`
	// Bands matches the band container inside a card; its computed
	// visibility is the card's collapsed/expanded presentation.
	Bands string `json:"bands"`
	// Band matches one band row inside a card.
	Band string `json:"band"`
	// BandName and BandLabel match the text nodes inside a band row.
	BandName  string `json:"bandName"`
	BandLabel string `json:"bandLabel"`
	// Notice matches a terminal-state notice node.
	Notice string `json:"notice"`
}

// DefaultSelectors matches the data-testid hooks the reference page
// emits.
func DefaultSelectors() Selectors {
	return Selectors{
		Festival:  `[data-testid="festival-card"]`,
		Name:      `[data-testid="festival-name"]`,
		Bands:     `[data-testid="band-list"]`,
		Band:      `[data-testid="band-row"]`,
		BandName:  `[data-testid="band-name"]`,
		BandLabel: `[data-testid="band-label"]`,
		Notice:    `[data-testid="notice"]`,
	}
}

// merged overlays the non-zero fields of o.
func (s Selectors) merged(o Selectors) Selectors {
	if o.Festival != "" {
		s.Festival = o.Festival
	}
	if o.Name != "" {
		s.Name = o.Name
	}
	if o.Bands != "" {
		s.Bands = o.Bands
	}
	if o.Band != "" {
		s.Band = o.Band
	}
	if o.BandName != "" {
		s.BandName = o.BandName
	}
	if o.BandLabel != "" {
		s.BandLabel = o.BandLabel
	}
	if o.Notice != "" {
		s.Notice = o.Notice
	}
	return s
}

// snapshotJS reads every festival, band, and notice node in one atomic
// evaluation. Text is whitespace-trimmed; a band container counts as
// visible unless computed styles (or the hidden attribute) hide it.
// Notices are reported only while visible.
const snapshotJS = `(sel) => {
	const text = (el) => (el && el.textContent ? el.textContent.trim() : "");
	const visible = (el) => {
		if (!el) return false;
		const cs = window.getComputedStyle(el);
		return cs.display !== "none" && cs.visibility !== "hidden" && !el.hidden;
	};
	const festivals = Array.from(document.querySelectorAll(sel.festival)).map((card) => ({
		name: text(card.querySelector(sel.name)),
		bands_visible: visible(card.querySelector(sel.bands)),
		bands: Array.from(card.querySelectorAll(sel.band)).map((row) => ({
			name: text(row.querySelector(sel.bandName)),
			label: text(row.querySelector(sel.bandLabel)),
		})),
	}));
	const notices = Array.from(document.querySelectorAll(sel.notice))
		.filter(visible)
		.map(text);
	return { festivals, notices };
}`

// readSnapshot evaluates the snapshot script against the settled page.
func (d *Driver) readSnapshot(pg *rod.Page) (page.Snapshot, error) {
	res, err := pg.Eval(snapshotJS, d.sel)
	if err != nil {
		return page.Snapshot{}, fmt.Errorf("read page nodes: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return page.Snapshot{}, fmt.Errorf("marshal page nodes: %w", err)
	}

	var snap page.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return page.Snapshot{}, fmt.Errorf("decode page nodes: %w", err)
	}
	if len(snap.Notices) == 0 {
		snap.Notices = nil
	}
	return snap, nil
}

package page

// Fixed notice texts the page must show verbatim in its terminal states.
const (
	EmptyNotice = "No festivals available at this time"
	ErrorNotice = "Something went wrong. Please try again later."
)

// BandNode is one rendered band row: display name and record label, both
// post-fallback.
type BandNode struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// FestivalNode is one rendered festival container. Bands are captured
// whether or not they are visible; BandsVisible records the collapsed/
// expanded presentation of the band container.
type FestivalNode struct {
	Name         string     `json:"name"`
	BandsVisible bool       `json:"bands_visible"`
	Bands        []BandNode `json:"bands"`
}

// Snapshot is a point-in-time read of the rendered page: festival
// containers in display order plus any visible notice texts.
type Snapshot struct {
	Festivals []FestivalNode `json:"festivals"`
	Notices   []string       `json:"notices,omitempty"`
}

// HasNotice reports whether the snapshot shows the given notice verbatim.
func (s Snapshot) HasNotice(text string) bool {
	for _, n := range s.Notices {
		if n == text {
			return true
		}
	}
	return false
}

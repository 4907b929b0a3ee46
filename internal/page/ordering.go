package page

import (
	"fmt"

	"github.com/roach88/soundcheck/internal/contract"
	"github.com/roach88/soundcheck/internal/order"
)

// ServedOrder checks the payload's own ordering, before any rendering:
// resolved festival names across the payload, then each festival's
// resolved band names. The returned path names the sequence holding the
// first violation ("festivals" or "festivals[i].bands"); both returns
// are zero when the payload is ordered.
func ServedOrder(p contract.Payload) (string, *order.Violation) {
	cmp := order.Default()

	names := make([]string, len(p))
	for i, f := range p {
		names[i], _ = contract.Display(f.Name)
	}
	if v := order.NonDecreasing(cmp, names); v != nil {
		return "festivals", v
	}

	for i, f := range p {
		bands := f.BandList()
		bandNames := make([]string, len(bands))
		for j, b := range bands {
			bandNames[j], _ = contract.Display(b.Name)
		}
		if v := order.NonDecreasing(cmp, bandNames); v != nil {
			return fmt.Sprintf("festivals[%d].bands", i), v
		}
	}

	return "", nil
}

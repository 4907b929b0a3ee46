package schema

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed contract.cue
var contractCUE []byte

// ValidateCUE unifies a raw payload with the embedded CUE contract.
//
// The CUE definition declares the same structure Validate walks, written
// once as data. It does not know about modes: an empty array unifies fine,
// the non-empty healthy gate stays with Validate. Strict runs call both and
// a disagreement between them is itself a finding.
func ValidateCUE(raw []byte) error {
	ctx := cuecontext.New()

	value := ctx.CompileBytes(contractCUE, cue.Filename("contract.cue"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("compile contract: %w", err)
	}

	payload := value.LookupPath(cue.ParsePath("#Payload"))
	if err := payload.Err(); err != nil {
		return fmt.Errorf("lookup #Payload: %w", err)
	}

	if err := cuejson.Validate(raw, payload); err != nil {
		return fmt.Errorf("payload does not satisfy contract: %w", err)
	}
	return nil
}

package harness

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/roach88/soundcheck/internal/upstream"
)

//go:embed scenario.schema.json
var scenarioSchemaJSON string

// scenarioSchema guards scenario files before they reach the strict YAML
// decoder, so malformed scenarios fail with a precise path instead of a
// cryptic type error.
var scenarioSchema = jsonschema.MustCompileString("scenario.schema.json", scenarioSchemaJSON)

// Scenario defines one verification scenario: how to stand up the
// upstream, how to probe it, and which way each check is expected to
// come out.
type Scenario struct {
	// Name uniquely identifies this scenario. Doubles as the golden file
	// name, so it is restricted to [a-z0-9_].
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Mode selects upstream behavior (ok, empty, error, throttle, slow).
	// Defaults to ok.
	Mode string `yaml:"mode,omitempty"`

	// Fixture is a payload file served by the upstream, relative to the
	// scenario file. Mutually exclusive with Payload.
	Fixture string `yaml:"fixture,omitempty"`

	// Payload is an inline JSON payload served by the upstream.
	Payload string `yaml:"payload,omitempty"`

	// Path is probed on the upstream. Defaults to /festivals; negative
	// path scenarios point it at an unknown sub-path.
	Path string `yaml:"path,omitempty"`

	// Budget is the latency budget for this scenario ("800ms", "1.5s").
	// Zero means the default budget.
	Budget Duration `yaml:"budget,omitempty"`

	// Delay is the slow-mode response delay.
	Delay Duration `yaml:"delay,omitempty"`

	// Strict additionally runs the CUE contract cross-check.
	Strict bool `yaml:"strict,omitempty"`

	// Toggles lists card positions to expand before verification.
	Toggles []int `yaml:"toggles,omitempty"`

	// Mutations are defects injected into the rendered snapshot before
	// the oracle sees it.
	Mutations []Mutation `yaml:"mutations,omitempty"`

	// Expect declares which way each check must come out. The scenario
	// passes when every declared expectation matches the computed
	// verdicts - including expectations of failure.
	Expect Expect `yaml:"expect"`
}

// Mutation is one snapshot defect. Op selects the mutation; the other
// fields parameterize it.
type Mutation struct {
	// Op is one of swap_festivals, swap_bands, blank_name,
	// drop_festival, set_visibility.
	Op string `yaml:"op"`

	// Festival targets a container (swap_bands, blank_name,
	// set_visibility).
	Festival int `yaml:"festival,omitempty"`

	// A and B are the positions exchanged by the swap ops.
	A int `yaml:"a,omitempty"`
	B int `yaml:"b,omitempty"`

	// Index is the container removed by drop_festival.
	Index int `yaml:"index,omitempty"`

	// Visible is the visibility forced by set_visibility.
	Visible bool `yaml:"visible,omitempty"`
}

// Mutation op constants.
const (
	MutSwapFestivals = "swap_festivals"
	MutSwapBands     = "swap_bands"
	MutBlankName     = "blank_name"
	MutDropFestival  = "drop_festival"
	MutSetVisibility = "set_visibility"
)

// Expect declares expected check outcomes. Nil fields are unchecked, so
// a scenario only constrains the checks it cares about.
type Expect struct {
	// State is the expected settled page phase (loading, normal, empty,
	// error). Empty means unchecked.
	State string `yaml:"state,omitempty"`

	Schema       *bool `yaml:"schema,omitempty"`
	Contract     *bool `yaml:"contract,omitempty"`
	Ordered      *bool `yaml:"ordered,omitempty"`
	Page         *bool `yaml:"page,omitempty"`
	Healthy      *bool `yaml:"healthy,omitempty"`
	Throttled    *bool `yaml:"throttled,omitempty"`
	WithinBudget *bool `yaml:"within_budget,omitempty"`
	NotFound     *bool `yaml:"not_found,omitempty"`
}

// Empty reports whether no expectation is declared.
func (e Expect) Empty() bool {
	return e.State == "" &&
		e.Schema == nil &&
		e.Contract == nil &&
		e.Ordered == nil &&
		e.Page == nil &&
		e.Healthy == nil &&
		e.Throttled == nil &&
		e.WithinBudget == nil &&
		e.NotFound == nil
}

// Duration wraps time.Duration with YAML string parsing ("800ms", "1.5s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ProbePath returns the path to probe, defaulting to /festivals.
func (s *Scenario) ProbePath() string {
	if s.Path == "" {
		return "/festivals"
	}
	return s.Path
}

// UpstreamMode returns the parsed upstream mode, defaulting to ok.
func (s *Scenario) UpstreamMode() upstream.Mode {
	if s.Mode == "" {
		return upstream.ModeOK
	}
	// Validated at load time; direct construction goes through the same
	// parse in validateScenario.
	m, _ := upstream.ParseMode(s.Mode)
	return m
}

// PayloadBytes returns the payload the upstream serves: the inline
// payload, the fixture file contents, or the default fixture.
func (s *Scenario) PayloadBytes() ([]byte, error) {
	switch {
	case s.Payload != "":
		return []byte(s.Payload), nil
	case s.Fixture != "":
		data, err := os.ReadFile(s.Fixture)
		if err != nil {
			return nil, fmt.Errorf("read fixture: %w", err)
		}
		return data, nil
	default:
		return upstream.DefaultFixture, nil
	}
}

// LoadScenario reads, schema-validates, and parses a scenario YAML file.
// Fixture paths are resolved relative to the scenario file. Returns an
// error if the file doesn't exist, violates the scenario schema, contains
// unknown fields (typos), or fails cross-field validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Structural validation first: precise error paths for malformed files.
	if err := validateAgainstSchema(data); err != nil {
		return nil, fmt.Errorf("scenario schema: %w", err)
	}

	// Strict decode catches any drift between schema and struct.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve fixture path relative to the scenario file BEFORE validation
	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) {
		scenario.Fixture = filepath.Join(filepath.Dir(path), scenario.Fixture)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateAgainstSchema checks a raw scenario document against the
// embedded JSON Schema. The YAML document is normalized through a JSON
// round-trip so the validator sees plain JSON types.
func validateAgainstSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return err
	}
	return scenarioSchema.Validate(normalized)
}

// validateScenario checks required fields and cross-field rules.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Mode != "" {
		if _, err := upstream.ParseMode(s.Mode); err != nil {
			return err
		}
	}

	if s.Fixture != "" && s.Payload != "" {
		return fmt.Errorf("fixture and payload are mutually exclusive")
	}

	if s.Fixture != "" {
		if _, err := os.Stat(s.Fixture); os.IsNotExist(err) {
			return fmt.Errorf("fixture file not found: %s", s.Fixture)
		}
	}

	for i, idx := range s.Toggles {
		if idx < 0 {
			return fmt.Errorf("toggles[%d]: position must be non-negative", i)
		}
	}

	for i, m := range s.Mutations {
		if err := validateMutation(i, m); err != nil {
			return err
		}
	}

	if s.Expect.Empty() {
		return fmt.Errorf("expect block must declare at least one expectation")
	}

	return nil
}

// validateMutation validates a single mutation based on its op.
func validateMutation(index int, m Mutation) error {
	switch m.Op {
	case MutSwapFestivals, MutSwapBands:
		if m.A == m.B {
			return fmt.Errorf("mutations[%d]: swap positions must differ", index)
		}
	case MutBlankName, MutDropFestival, MutSetVisibility:
		// Position bounds are checked against the snapshot at apply time.
	case "":
		return fmt.Errorf("mutations[%d]: op is required", index)
	default:
		return fmt.Errorf("mutations[%d]: unknown op %q", index, m.Op)
	}
	return nil
}

// FindScenarios returns the scenario files under dir in sorted order.
func FindScenarios(dir string) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

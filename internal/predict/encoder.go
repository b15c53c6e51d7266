package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrUnknownCategory is returned when a categorical value was not present
// in the model's training data. Encoding must fail loudly: substituting an
// arbitrary code would silently corrupt the prediction.
var ErrUnknownCategory = errors.New("unknown category")

// StateEncoder maps state names to the integer codes the model was trained
// with.
type StateEncoder struct {
	codes map[string]int
}

// NewStateEncoder builds an encoder from the ordered category list: the
// code of each state is its position in the list.
func NewStateEncoder(states []string) (*StateEncoder, error) {
	if len(states) == 0 {
		return nil, errors.New("encoder: no state categories")
	}

	codes := make(map[string]int, len(states))
	for i, state := range states {
		if _, dup := codes[state]; dup {
			return nil, fmt.Errorf("encoder: duplicate state category %q", state)
		}
		codes[state] = i
	}

	return &StateEncoder{codes: codes}, nil
}

// Encode returns the trained integer code for the state name. Matching is
// exact, as it was at training time.
func (e *StateEncoder) Encode(state string) (int, error) {
	code, ok := e.codes[state]
	if !ok {
		return 0, fmt.Errorf("%w: state %q", ErrUnknownCategory, state)
	}
	return code, nil
}

// Categories returns the number of trained state categories.
func (e *StateEncoder) Categories() int {
	return len(e.codes)
}

// Artifacts holds the serialized encoder categories exported from the
// training pipeline.
type Artifacts struct {
	// States is the ordered category list of the trained state encoder.
	States []string `json:"states"`
}

// LoadArtifacts reads the encoder artifact file and builds the state
// encoder. It is called once at process start; any failure is a startup
// failure, not a per-request one.
func LoadArtifacts(path string) (*StateEncoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encoder artifacts: %w", err)
	}

	var artifacts Artifacts
	if err := json.Unmarshal(data, &artifacts); err != nil {
		return nil, fmt.Errorf("parse encoder artifacts %s: %w", path, err)
	}

	encoder, err := NewStateEncoder(artifacts.States)
	if err != nil {
		return nil, fmt.Errorf("encoder artifacts %s: %w", path, err)
	}

	return encoder, nil
}

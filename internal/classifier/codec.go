package classifier

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/codeadvisor/internal/common"
)

// FormatVersion is the version of the serialized classifier layout.
const FormatVersion = 1

// Envelope is the serialized form of a classifier: its kind plus the
// kind-specific payload.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Model   json.RawMessage `json:"model"`
	Version int             `json:"version"`
}

// Encode wraps a fitted classifier in an Envelope.
func Encode(c Classifier) (*Envelope, error) {
	switch c.(type) {
	case *DecisionTree, *RandomForest:
	default:
		return nil, fmt.Errorf("%w: cannot encode %T", common.ErrInvalidModelKind, c)
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s classifier: %w", c.Kind(), err)
	}
	return &Envelope{
		Kind:    c.Kind(),
		Version: FormatVersion,
		Model:   payload,
	}, nil
}

// Decode rebuilds the classifier held by an Envelope and checks its structure.
func Decode(env *Envelope) (Classifier, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: missing classifier", common.ErrCorruptModel)
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported classifier format version %d", common.ErrCorruptModel, env.Version)
	}

	switch env.Kind {
	case KindTree:
		tree := &DecisionTree{}
		if err := json.Unmarshal(env.Model, tree); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCorruptModel, err)
		}
		if err := tree.validate(); err != nil {
			return nil, err
		}
		return tree, nil
	case KindEnsemble:
		forest := &RandomForest{Workers: 1}
		if err := json.Unmarshal(env.Model, forest); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCorruptModel, err)
		}
		if err := forest.validate(); err != nil {
			return nil, err
		}
		return forest, nil
	default:
		return nil, fmt.Errorf("%w: %w: %q", common.ErrCorruptModel, common.ErrInvalidModelKind, env.Kind)
	}
}

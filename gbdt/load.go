package gbdt

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmrl789/ippan-core/canon"
)

// LoadModelFile reads and validates a canonical-JSON model file, returning
// the parsed model. A hash mismatch against
// expectedHashHex aborts loading — this is the startup-time guard spec.md
// §6 requires ("Hash stored in config alongside path; mismatch aborts
// startup").
func LoadModelFile(path string, expectedHashHex string) (GBDTModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GBDTModel{}, fmt.Errorf("gbdt: read model file: %w", err)
	}

	var model GBDTModel
	if err := json.Unmarshal(data, &model); err != nil {
		return GBDTModel{}, fmt.Errorf("gbdt: parse model file: %w", err)
	}

	if err := model.Validate(); err != nil {
		return GBDTModel{}, fmt.Errorf("gbdt: invalid model: %w", err)
	}

	actualHash, err := ModelHashHex(model)
	if err != nil {
		return GBDTModel{}, err
	}
	if expectedHashHex != "" && actualHash != expectedHashHex {
		return GBDTModel{}, fmt.Errorf("gbdt: model hash mismatch: expected %s, got %s", expectedHashHex, actualHash)
	}

	return model, nil
}

// SaveModelFile writes a model as canonical JSON and returns its hex hash.
func SaveModelFile(path string, model GBDTModel) (string, error) {
	if err := model.Validate(); err != nil {
		return "", fmt.Errorf("gbdt: refusing to save invalid model: %w", err)
	}
	hashHex, err := ModelHashHex(model)
	if err != nil {
		return "", err
	}
	encoded, err := canon.CanonicalJSON(model)
	if err != nil {
		return "", fmt.Errorf("gbdt: marshal model: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", fmt.Errorf("gbdt: write model file: %w", err)
	}
	return hashHex, nil
}

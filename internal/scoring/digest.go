package scoring

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/privacyscan/internal/model"
)

// Digest returns the hex encoded SHA3-256 hash of the JSON form of result.
// Scoring is deterministic, so equal digests mean equal results; the store
// uses it to detect score changes and the HTTP adapter uses it as an ETag.
func Digest(result *model.ScoreResult) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode score result: %w", err)
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

package platform

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scores carries per-modality similarity scores. On the wire they are a
// bare three-element array in face, fingerprint, voice order.
type Scores struct {
	Face        decimal.Decimal
	Fingerprint decimal.Decimal
	Voice       decimal.Decimal
}

// MarshalJSON emits the scores as unquoted numbers.
func (s Scores) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%s,%s,%s]", s.Face, s.Fingerprint, s.Voice)), nil
}

// UnmarshalJSON accepts the wire array form.
func (s *Scores) UnmarshalJSON(data []byte) error {
	var values []decimal.Decimal
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if len(values) != 3 {
		return fmt.Errorf("expected 3 scores, got %d", len(values))
	}
	s.Face, s.Fingerprint, s.Voice = values[0], values[1], values[2]
	return nil
}

package scoring

import "fmt"

// Labels assigned by the default Thresholds labeler.
const (
	LabelSafe     = "Safe"
	LabelCaution  = "Caution"
	LabelHighRisk = "High-Risk"
)

// Labeler maps a clamped score to a qualitative label.
type Labeler interface {
	Label(score int) string
}

// Thresholds is a Labeler with fixed lower bounds. A score of at least Safe
// is labeled LabelSafe, at least Caution is LabelCaution, and anything
// lower is LabelHighRisk.
type Thresholds struct {
	Safe    int `yaml:"safe" json:"safe"`
	Caution int `yaml:"caution" json:"caution"`
}

// DefaultThresholds returns the built-in label bands.
func DefaultThresholds() Thresholds {
	return Thresholds{Safe: 80, Caution: 50}
}

// Label implements Labeler.
func (t Thresholds) Label(score int) string {
	switch {
	case score >= t.Safe:
		return LabelSafe
	case score >= t.Caution:
		return LabelCaution
	default:
		return LabelHighRisk
	}
}

// Validate checks that the bands are ordered and inside the score range.
func (t Thresholds) Validate() error {
	if t.Safe < 0 || t.Safe > 100 || t.Caution < 0 || t.Caution > 100 {
		return fmt.Errorf("%w: safe=%d caution=%d", ErrInvalidThresholds, t.Safe, t.Caution)
	}
	if t.Caution > t.Safe {
		return fmt.Errorf("%w: caution (%d) is above safe (%d)", ErrInvalidThresholds, t.Caution, t.Safe)
	}
	return nil
}

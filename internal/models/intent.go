package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// IntentLabel is the tagged enum of activities the intent classifier can
// predict. The string table is resolved once here, not at prediction time.
type IntentLabel int

const (
	IntentUnknown IntentLabel = iota
	IntentStudying
	IntentCoding
	IntentWriting
	IntentBrowsing
	IntentIdle
)

var (
	intentNames = map[IntentLabel]string{
		IntentUnknown:  "unknown",
		IntentStudying: "studying",
		IntentCoding:   "coding",
		IntentWriting:  "writing",
		IntentBrowsing: "browsing",
		IntentIdle:     "idle",
	}
	intentByName = map[string]IntentLabel{}
)

func init() {
	for label, name := range intentNames {
		intentByName[name] = label
	}
}

// ParseIntentLabel resolves a label name through the bidirectional table.
func ParseIntentLabel(name string) (IntentLabel, error) {
	label, ok := intentByName[name]
	if !ok {
		return IntentUnknown, fmt.Errorf("%w: %q", ErrInvalidLabel, name)
	}
	return label, nil
}

func (l IntentLabel) IsValid() bool {
	_, ok := intentNames[l]
	return ok
}

// String returns the label name, or "IntentLabel(n)" for invalid values.
func (l IntentLabel) String() string {
	if name, ok := intentNames[l]; ok {
		return name
	}
	return fmt.Sprintf("IntentLabel(%d)", int(l))
}

// MarshalJSON serializes the label as its name.
func (l IntentLabel) MarshalJSON() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLabel, int(l))
	}
	return json.Marshal(intentNames[l])
}

// UnmarshalJSON expects a label name string.
func (l *IntentLabel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLabel, data)
	}
	v, err := ParseIntentLabel(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// IntentPrediction is one classifier output, optionally resolved later by
// explicit user feedback.
type IntentPrediction struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Label      IntentLabel `json:"label"`
	Confidence float64     `json:"confidence"`
	Feedback   *bool       `json:"feedback,omitempty"`
	SessionID  string      `json:"sessionId,omitempty"`
}

// LabelAccuracy is the per-label slice of an accuracy report.
type LabelAccuracy struct {
	Label    IntentLabel `json:"label"`
	Total    int         `json:"total"`
	Correct  int         `json:"correct"`
	Accuracy float64     `json:"accuracy"`
}

// AccuracyReport summarizes how well intent predictions matched user
// feedback. Labels without resolved feedback are excluded from best/worst.
type AccuracyReport struct {
	PerLabel   []LabelAccuracy `json:"perLabel"`
	Overall    float64         `json:"overall"`
	Resolved   int             `json:"resolved"`
	Unresolved int             `json:"unresolved"`
	BestLabel  *IntentLabel    `json:"bestLabel,omitempty"`
	WorstLabel *IntentLabel    `json:"worstLabel,omitempty"`
}

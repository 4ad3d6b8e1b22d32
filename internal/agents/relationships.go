package agents

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Trust bounds.
const (
	TrustMin = -100
	TrustMax = 100
)

// Category is the discrete label derived from trust.
type Category uint8

const (
	CategoryNeutral Category = iota
	CategoryEnemy
	CategoryAlly
	CategoryCloseAlly
	CategorySoulmate
)

// Category thresholds on trust.
const (
	EnemyAtOrBelow     = -20
	AllyAtOrAbove      = 20
	CloseAllyAtOrAbove = 60
	SoulmateAtOrAbove  = 90
)

var categoryNames = [...]string{
	CategoryNeutral:   "Neutral",
	CategoryEnemy:     "Enemy",
	CategoryAlly:      "Ally",
	CategoryCloseAlly: "Close Ally",
	CategorySoulmate:  "Soulmate",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(text []byte) error {
	i := slices.Index(categoryNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown relationship category %q", text)
	}
	*c = Category(i)
	return nil
}

// Friendly reports whether the category is ally or better.
func (c Category) Friendly() bool {
	return c == CategoryAlly || c == CategoryCloseAlly || c == CategorySoulmate
}

// CategoryFor maps a trust score onto its category.
func CategoryFor(trust int) Category {
	switch {
	case trust >= SoulmateAtOrAbove:
		return CategorySoulmate
	case trust >= CloseAllyAtOrAbove:
		return CategoryCloseAlly
	case trust >= AllyAtOrAbove:
		return CategoryAlly
	case trust <= EnemyAtOrBelow:
		return CategoryEnemy
	default:
		return CategoryNeutral
	}
}

// Relationship is one tribute's directed view of another.
// The category is never stored; it is always computed from trust.
type Relationship struct {
	Trust int `json:"trust"`
}

// Category returns the label for the current trust.
func (r Relationship) Category() Category {
	return CategoryFor(r.Trust)
}

type relationshipJSON struct {
	Trust    int      `json:"trust"`
	Category Category `json:"category"`
}

// MarshalJSON includes the derived category for consumers.
func (r Relationship) MarshalJSON() ([]byte, error) {
	return json.Marshal(relationshipJSON{Trust: r.Trust, Category: r.Category()})
}

// UnmarshalJSON reads trust only; any encoded category is ignored.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	var raw relationshipJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Trust = clampTrust(raw.Trust)
	return nil
}

func clampTrust(v int) int {
	return min(TrustMax, max(TrustMin, v))
}

// ModifyTrust shifts subject's trust toward target by delta, creating a
// Neutral/0 relationship on first contact.
func ModifyTrust(subject *Tribute, target AgentID, delta int) {
	if subject.Relationships == nil {
		subject.Relationships = make(map[AgentID]Relationship)
	}
	rel := subject.Relationships[target]
	rel.Trust = clampTrust(rel.Trust + delta)
	subject.Relationships[target] = rel
}

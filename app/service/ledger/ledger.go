package ledger

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Ledger is the versioned set of trip facts for one conversation. It is the
// only place allowed to mutate a Fact; everything else goes through Merge.
type Ledger struct {
	facts map[Key]*Fact
}

func New() *Ledger {
	facts := make(map[Key]*Fact, len(Keys))
	for _, key := range Keys {
		facts[key] = &Fact{
			Status:   StatusUnknown,
			Priority: keyPriorities[key],
		}
	}

	return &Ledger{facts: facts}
}

func (l *Ledger) Get(key Key) (Fact, bool) {
	fact, ok := l.facts[key]
	if !ok {
		return Fact{}, false
	}

	return *fact, true
}

// Merge applies one update under the monotonicity rule: a fact's status only
// moves to equal-or-higher rank. Downgrade attempts are dropped. OPTIONAL
// facts additionally accept a direct UNKNOWN -> SET write without passing
// through the suggestion ranks.
func (l *Ledger) Merge(key Key, update Update) bool {
	fact, ok := l.facts[key]
	if !ok {
		slog.Debug("Ignoring update for unknown fact key", "key", key)
		return false
	}

	if !update.Status.Valid() {
		slog.Debug("Ignoring update with invalid status", "key", key, "status", update.Status)
		return false
	}

	if update.Status.Rank() < fact.Status.Rank() {
		slog.Debug("Rejecting fact downgrade",
			"key", key,
			"from", fact.Status,
			"to", update.Status)
		return false
	}

	fact.Value = update.Value
	fact.Status = update.Status
	fact.Confidence = clampConfidence(update.Confidence)
	if update.Provenance != "" {
		fact.Provenance = update.Provenance
	}

	return true
}

// SetDirect records a user-confirmed value, used by the numeric pre-pass,
// guided flows and seed commands. Same monotonicity rule; the OPTIONAL
// UNKNOWN -> SET jump is what makes this legal for unpopulated optional facts.
func (l *Ledger) SetDirect(key Key, value any, provenance string) bool {
	return l.Merge(key, Update{
		Value:      value,
		Status:     StatusSet,
		Confidence: 1,
		Provenance: provenance,
	})
}

// EssentialsSet reports whether every ESSENTIAL fact is at SET. The
// destination alone may instead sit at ASSUMED when its value equals the
// single supported city.
func (l *Ledger) EssentialsSet(supportedCity string) bool {
	for key, fact := range l.facts {
		if fact.Priority != PriorityEssential {
			continue
		}

		if fact.Status.Rank() >= StatusSet.Rank() {
			continue
		}

		if key == KeyDestination && fact.Status == StatusAssumed &&
			strings.EqualFold(l.stringValue(key), supportedCity) {
			continue
		}

		return false
	}

	return true
}

// HelpfulAddressed reports whether no HELPFUL fact is still UNKNOWN.
func (l *Ledger) HelpfulAddressed() bool {
	for _, fact := range l.facts {
		if fact.Priority == PriorityHelpful && fact.Status == StatusUnknown {
			return false
		}
	}

	return true
}

// FirstUnknownEssential returns the next essential fact worth asking about.
func (l *Ledger) FirstUnknownEssential() (Key, bool) {
	for _, key := range Keys {
		fact := l.facts[key]
		if fact.Priority == PriorityEssential && fact.Status == StatusUnknown {
			return key, true
		}
	}

	return "", false
}

// Format renders the ledger for prompt injection.
func (l *Ledger) Format() string {
	var builder strings.Builder

	for _, key := range Keys {
		fact := l.facts[key]

		value := "?"
		if fact.Value != nil {
			value = fmt.Sprint(fact.Value)
		}

		builder.WriteString(fmt.Sprintf("%s: %s [%s, confidence %.2f]\n",
			key, value, fact.Status, fact.Confidence))
	}

	return builder.String()
}

// FlattenPreferences converts the ledger into the planner's input shape.
func (l *Ledger) FlattenPreferences() Preferences {
	return Preferences{
		Destination:  l.stringValue(KeyDestination),
		GroupSize:    l.intValue(KeyGroupSize),
		StartDate:    l.stringValue(KeyStartDate),
		EndDate:      l.stringValue(KeyEndDate),
		Wildness:     l.stringValue(KeyWildnessLevel),
		Relationship: l.stringValue(KeyRelationship),
		Interests:    l.listValue(KeyInterestedActivities),
		AgeRange:     l.stringValue(KeyAgeRange),
		Budget:       l.stringValue(KeyBudget),
	}
}

// Export copies the facts out for snapshots and turn results.
func (l *Ledger) Export() map[Key]Fact {
	return lo.MapEntries(l.facts, func(key Key, fact *Fact) (Key, Fact) {
		return key, *fact
	})
}

// Import replaces the ledger contents from a snapshot. Unknown keys are
// dropped, missing keys keep their zero UNKNOWN fact, and priorities are
// always re-derived rather than trusted from the wire.
func (l *Ledger) Import(facts map[Key]Fact) {
	for key, fact := range facts {
		current, ok := l.facts[key]
		if !ok {
			continue
		}

		*current = fact
		current.Priority = keyPriorities[key]
		if !current.Status.Valid() {
			current.Status = StatusUnknown
		}
		current.Confidence = clampConfidence(current.Confidence)
	}
}

func (l *Ledger) stringValue(key Key) string {
	fact, ok := l.facts[key]
	if !ok || fact.Value == nil {
		return ""
	}

	return fmt.Sprint(fact.Value)
}

func (l *Ledger) intValue(key Key) int {
	fact, ok := l.facts[key]
	if !ok || fact.Value == nil {
		return 0
	}

	switch v := fact.Value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func (l *Ledger) listValue(key Key) []string {
	fact, ok := l.facts[key]
	if !ok || fact.Value == nil {
		return nil
	}

	switch v := fact.Value.(type) {
	case []string:
		return v
	case []any:
		return lo.Map(v, func(item any, _ int) string {
			return fmt.Sprint(item)
		})
	case string:
		parts := strings.Split(v, ",")
		return lo.FilterMap(parts, func(part string, _ int) (string, bool) {
			part = strings.TrimSpace(part)
			return part, part != ""
		})
	default:
		return []string{fmt.Sprint(v)}
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}

	return c
}

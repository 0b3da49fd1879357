package ledger

import (
	"testing"
)

func TestMergeMonotonicity(t *testing.T) {
	led := New()

	if !led.Merge(KeyDestination, Update{Value: "Austin", Status: StatusSuggested, Confidence: 0.4}) {
		t.Fatal("expected SUGGESTED to apply over UNKNOWN")
	}
	if !led.Merge(KeyDestination, Update{Value: "Austin", Status: StatusSet, Confidence: 0.9}) {
		t.Fatal("expected SET to apply over SUGGESTED")
	}

	// Downgrade attempts must be dropped.
	if led.Merge(KeyDestination, Update{Value: "Dallas", Status: StatusAssumed, Confidence: 0.9}) {
		t.Error("expected ASSUMED to be rejected over SET")
	}

	fact, _ := led.Get(KeyDestination)
	if fact.Value != "Austin" || fact.Status != StatusSet {
		t.Errorf("downgrade mutated the fact: %+v", fact)
	}

	// CORRECTED outranks SET and may change the value.
	if !led.Merge(KeyDestination, Update{Value: "Dallas", Status: StatusCorrected, Confidence: 0.95}) {
		t.Fatal("expected CORRECTED to apply over SET")
	}
	fact, _ = led.Get(KeyDestination)
	if fact.Value != "Dallas" {
		t.Errorf("expected corrected value, got %v", fact.Value)
	}
}

func TestMergeRankNeverDecreases(t *testing.T) {
	sequences := [][]Status{
		{StatusSuggested, StatusAssumed, StatusSet, StatusCorrected},
		{StatusSet, StatusSuggested, StatusCorrected},
		{StatusCorrected, StatusSet, StatusAssumed},
		{StatusAssumed, StatusAssumed, StatusSuggested, StatusSet},
	}

	for _, sequence := range sequences {
		led := New()
		lastRank := StatusUnknown.Rank()

		for _, status := range sequence {
			led.Merge(KeyBudget, Update{Value: "x", Status: status, Confidence: 0.5})

			fact, _ := led.Get(KeyBudget)
			if fact.Status.Rank() < lastRank {
				t.Fatalf("rank decreased: sequence %v ended at %s after rank %d", sequence, fact.Status, lastRank)
			}
			lastRank = fact.Status.Rank()
		}
	}
}

func TestOptionalDirectSet(t *testing.T) {
	led := New()

	// budget is OPTIONAL and UNKNOWN: a direct SET write lands.
	if !led.SetDirect(KeyBudget, "moderate", "seed") {
		t.Fatal("expected OPTIONAL UNKNOWN -> SET to apply")
	}

	fact, _ := led.Get(KeyBudget)
	if fact.Status != StatusSet || fact.Value != "moderate" {
		t.Errorf("unexpected fact after direct set: %+v", fact)
	}
}

func TestEssentialsSet(t *testing.T) {
	led := New()

	led.SetDirect(KeyGroupSize, 7, "")
	led.SetDirect(KeyStartDate, "2025-09-05", "")
	led.SetDirect(KeyEndDate, "2025-09-07", "")

	if led.EssentialsSet("Austin") {
		t.Fatal("essentials should be incomplete without destination")
	}

	// ASSUMED destination counts only when it names the supported city.
	led.Merge(KeyDestination, Update{Value: "Dallas", Status: StatusAssumed, Confidence: 0.5})
	if led.EssentialsSet("Austin") {
		t.Fatal("assumed non-supported city should not satisfy the gate")
	}

	led.Merge(KeyDestination, Update{Value: "Austin", Status: StatusCorrected, Confidence: 0.9})
	if !led.EssentialsSet("Austin") {
		t.Fatal("expected essentials satisfied")
	}
}

func TestEssentialsSetAssumedSupportedCity(t *testing.T) {
	led := New()

	led.Merge(KeyDestination, Update{Value: "austin", Status: StatusAssumed, Confidence: 0.6})
	led.SetDirect(KeyGroupSize, 5, "")
	led.SetDirect(KeyStartDate, "2025-09-05", "")
	led.SetDirect(KeyEndDate, "2025-09-06", "")

	if !led.EssentialsSet("Austin") {
		t.Fatal("assumed supported city (case-insensitive) should satisfy the gate")
	}
}

func TestHelpfulAddressed(t *testing.T) {
	led := New()

	if led.HelpfulAddressed() {
		t.Fatal("fresh ledger should have unaddressed helpful facts")
	}

	led.Merge(KeyWildnessLevel, Update{Value: "medium", Status: StatusSuggested, Confidence: 0.3})
	led.Merge(KeyRelationship, Update{Value: "college friends", Status: StatusSet, Confidence: 0.9})
	led.Merge(KeyInterestedActivities, Update{Value: "bbq, live music", Status: StatusAssumed, Confidence: 0.5})

	if !led.HelpfulAddressed() {
		t.Fatal("all helpful facts are addressed")
	}
}

func TestFlattenPreferences(t *testing.T) {
	led := New()

	led.SetDirect(KeyDestination, "Austin", "")
	led.SetDirect(KeyGroupSize, float64(7), "") // JSON numbers arrive as float64
	led.SetDirect(KeyInterestedActivities, []any{"bbq", "kayaking"}, "")

	prefs := led.FlattenPreferences()
	if prefs.Destination != "Austin" {
		t.Errorf("destination = %q", prefs.Destination)
	}
	if prefs.GroupSize != 7 {
		t.Errorf("groupSize = %d", prefs.GroupSize)
	}
	if len(prefs.Interests) != 2 || prefs.Interests[0] != "bbq" {
		t.Errorf("interests = %v", prefs.Interests)
	}
}

func TestImportDropsUnknownKeysAndFixesShape(t *testing.T) {
	led := New()

	led.Import(map[Key]Fact{
		KeyGroupSize: {Value: 7, Status: StatusSet, Confidence: 1.7},
		"bogus":      {Value: "x", Status: StatusSet, Confidence: 1},
		KeyBudget:    {Value: "low", Status: "WEIRD", Confidence: 0.5},
	})

	if _, ok := led.Get("bogus"); ok {
		t.Error("unknown key should be dropped")
	}

	groupSize, _ := led.Get(KeyGroupSize)
	if groupSize.Confidence != 1 {
		t.Errorf("confidence not clamped: %v", groupSize.Confidence)
	}

	budget, _ := led.Get(KeyBudget)
	if budget.Status != StatusUnknown {
		t.Errorf("invalid status not reset: %v", budget.Status)
	}
	if budget.Priority != PriorityOptional {
		t.Errorf("priority not re-derived: %v", budget.Priority)
	}
}

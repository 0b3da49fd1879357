package planner

import (
	"testing"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/service/ledger"
)

var testCatalog = []catalog.Service{
	{ID: "svc-steak", Name: "Steakhouse 77", Category: "restaurant", Price: 120},
	{ID: "svc-bbq", Name: "BBQ Joint", Category: "restaurant", Price: 45},
	{ID: "svc-bar", Name: "Dive Bar", Category: "bar", Price: 20},
	{ID: "svc-club", Name: "Night Club", Category: "nightlife", Price: 50},
	{ID: "svc-kayak", Name: "Kayak Tour", Category: "outdoor activity", Price: 60},
	{ID: "svc-spa", Name: "Spa Morning", Category: "wellness", Price: 90},
}

func slotOf(plan *DayPlan, slot TimeSlot) (ServiceSelection, bool) {
	for _, sel := range plan.SelectedServices {
		if sel.TimeSlot == slot {
			return sel, true
		}
	}

	return ServiceSelection{}, false
}

func TestFallbackPlanBuckets(t *testing.T) {
	plan := FallbackPlan(testCatalog, ledger.Preferences{}, DayDescriptor{DayNumber: 0, TotalDays: 3}, DedupContext{})

	if len(plan.SelectedServices) != 3 {
		t.Fatalf("expected 3 selections, got %d", len(plan.SelectedServices))
	}

	dinner, ok := slotOf(plan, SlotEvening)
	if !ok || dinner.ServiceID != "svc-bbq" {
		t.Errorf("evening should hold the cheapest restaurant, got %+v", dinner)
	}

	night, ok := slotOf(plan, SlotNight)
	if !ok || night.ServiceID != "svc-bar" {
		t.Errorf("night should hold the cheapest nightlife pick, got %+v", night)
	}

	daytime, ok := slotOf(plan, SlotAfternoon)
	if !ok || daytime.ServiceID != "svc-kayak" {
		t.Errorf("afternoon should hold the cheapest activity, got %+v", daytime)
	}
}

func TestFallbackPlanHonorsKeywords(t *testing.T) {
	prefs := ledger.Preferences{Interests: []string{"steak"}}

	plan := FallbackPlan(testCatalog, prefs, DayDescriptor{}, DedupContext{})

	dinner, ok := slotOf(plan, SlotEvening)
	if !ok || dinner.ServiceID != "svc-steak" {
		t.Errorf("steak interest should win the dinner slot, got %+v", dinner)
	}
}

func TestFallbackPlanDedup(t *testing.T) {
	dedup := DedupContext{UsedServices: map[string]bool{"svc-bbq": true, "svc-bar": true}}

	plan := FallbackPlan(testCatalog, ledger.Preferences{}, DayDescriptor{DayNumber: 1}, dedup)

	for _, sel := range plan.SelectedServices {
		if dedup.UsedServices[sel.ServiceID] {
			t.Errorf("used service %s picked again", sel.ServiceID)
		}
	}

	if dinner, ok := slotOf(plan, SlotEvening); !ok || dinner.ServiceID != "svc-steak" {
		t.Errorf("dinner should fall through to svc-steak, got %+v", dinner)
	}

	// AllowRepeats turns the filter off entirely.
	plan = FallbackPlan(testCatalog, ledger.Preferences{}, DayDescriptor{}, DedupContext{
		UsedServices: map[string]bool{"svc-bbq": true},
		AllowRepeats: true,
	})
	if dinner, ok := slotOf(plan, SlotEvening); !ok || dinner.ServiceID != "svc-bbq" {
		t.Errorf("repeats allowed, cheapest restaurant should return, got %+v", dinner)
	}
}

func TestFallbackPlanEnrichment(t *testing.T) {
	plan := FallbackPlan(testCatalog, ledger.Preferences{}, DayDescriptor{}, DedupContext{})

	dinner, ok := slotOf(plan, SlotEvening)
	if !ok {
		t.Fatal("no dinner selected")
	}
	if dinner.ServiceName != "BBQ Joint" || dinner.Category != "restaurant" || dinner.Price != 45 {
		t.Errorf("selection not enriched from catalog: %+v", dinner)
	}
}

func TestFallbackPlanEmptyCatalog(t *testing.T) {
	plan := FallbackPlan(nil, ledger.Preferences{}, DayDescriptor{}, DedupContext{})

	if plan == nil {
		t.Fatal("plan must never be nil")
	}
	if len(plan.SelectedServices) != 0 {
		t.Errorf("empty catalog should yield an empty plan, got %+v", plan.SelectedServices)
	}
}

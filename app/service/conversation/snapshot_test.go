package conversation

import (
	"encoding/json"
	"testing"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/service/guided"
	"github.com/DBravy/connected-chatbot-sub000/app/service/ledger"
	"github.com/DBravy/connected-chatbot-sub000/app/service/planner"
)

func populatedConversation() *Conversation {
	conv := newConversation("snap-test")
	conv.Phase = PhasePlanning
	conv.Ledger.SetDirect(ledger.KeyDestination, "Austin", "")
	conv.Ledger.SetDirect(ledger.KeyGroupSize, 7, "")
	conv.Ledger.SetDirect(ledger.KeyStartDate, "2025-09-05", "")
	conv.Ledger.SetDirect(ledger.KeyEndDate, "2025-09-07", "")

	conv.AvailableServices = []catalog.Service{
		{ID: "svc-bbq", Name: "BBQ Joint", Category: "restaurant", Price: 45},
		{ID: "svc-bar", Name: "Dive Bar", Category: "bar", Price: 20},
	}

	conv.Planning.TotalDays = 3
	conv.Planning.CurrentDay = 1
	conv.Planning.CompletedDays[0] = &planner.DayPlan{
		DayTheme: "arrival day",
		SelectedServices: []planner.ServiceSelection{
			{ServiceID: "svc-bbq", ServiceName: "BBQ Joint", TimeSlot: planner.SlotEvening},
		},
	}
	conv.Planning.CurrentDayPlan = &planner.DayPlan{
		DayTheme: "day two",
		SelectedServices: []planner.ServiceSelection{
			{ServiceID: "svc-bar", ServiceName: "Dive Bar", TimeSlot: planner.SlotNight},
		},
	}
	conv.Planning.RebuildUsedServices()

	conv.addMessage("user", "hey")
	conv.addMessage("assistant", "hey yourself")

	return conv
}

func TestSnapshotRoundTrip(t *testing.T) {
	original := populatedConversation()

	// Through JSON, as a real client would carry it.
	data, err := json.Marshal(Export(original))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := newConversation("snap-test")
	Import(restored, &snap)

	if restored.Phase != PhasePlanning {
		t.Errorf("phase = %s", restored.Phase)
	}
	if restored.Planning.CurrentDay != 1 || restored.Planning.TotalDays != 3 {
		t.Errorf("planning cursor = %d/%d", restored.Planning.CurrentDay, restored.Planning.TotalDays)
	}

	day0 := restored.Planning.CompletedDays[0]
	if day0 == nil || day0.DayTheme != "arrival day" {
		t.Fatalf("completed day 0 lost: %+v", day0)
	}
	if !restored.Planning.UsedServiceIDs["svc-bbq"] {
		t.Error("used set not restored from completed days")
	}
	if restored.Planning.UsedServiceIDs["svc-bar"] {
		t.Error("in-progress day must not count as used")
	}

	if restored.Planning.CurrentDayPlan == nil || restored.Planning.CurrentDayPlan.DayTheme != "day two" {
		t.Errorf("current day plan lost: %+v", restored.Planning.CurrentDayPlan)
	}

	fact, _ := restored.Ledger.Get(ledger.KeyGroupSize)
	if fact.Status != ledger.StatusSet {
		t.Errorf("groupSize status = %s", fact.Status)
	}

	if len(restored.Messages) != 2 {
		t.Errorf("messages = %d", len(restored.Messages))
	}
	if len(restored.AvailableServices) != 2 {
		t.Errorf("catalog = %d services", len(restored.AvailableServices))
	}
}

func TestSnapshotRoundTripMidGuidedFlow(t *testing.T) {
	conv := newConversation("guided-snap")
	conv.Phase = PhaseGuidedFirstDay
	conv.Planning.TotalDays = 2

	state := guided.NewState(0)
	state.StepIndex = 1
	state.Choices["morning choice"] = "easy_brunch"
	conv.Planning.Guided[0] = state

	var snap Snapshot
	data, _ := json.Marshal(Export(conv))
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := newConversation("guided-snap")
	Import(restored, &snap)

	got := restored.Planning.Guided[0]
	if got == nil {
		t.Fatal("guided state lost")
	}
	if got.StepIndex != 1 || got.Choices["morning choice"] != "easy_brunch" || got.Complete {
		t.Errorf("guided state mangled: %+v", got)
	}
}

func TestImportRebuildsUsedServicesWhateverTheShape(t *testing.T) {
	completed := map[string]*planner.DayPlan{
		"0": {SelectedServices: []planner.ServiceSelection{
			{ServiceID: "svc-bbq", TimeSlot: planner.SlotEvening},
		}},
	}

	shapes := []json.RawMessage{
		json.RawMessage(`["svc-stale"]`),
		json.RawMessage(`{"svc-stale": true}`),
		json.RawMessage(`{"0": "svc-stale"}`),
		nil,
	}

	for _, shape := range shapes {
		conv := newConversation("x")
		Import(conv, &Snapshot{
			Phase: PhasePlanning,
			DayByDayPlanning: &PlanningSnapshot{
				CurrentDay:    1,
				TotalDays:     2,
				CompletedDays: completed,
				UsedServices:  shape,
			},
		})

		if !conv.Planning.UsedServiceIDs["svc-bbq"] {
			t.Errorf("shape %s: used set missing svc-bbq", shape)
		}
		if conv.Planning.UsedServiceIDs["svc-stale"] {
			t.Errorf("shape %s: stale id survived the rebuild", shape)
		}
	}
}

func TestImportNilAndEmptySnapshot(t *testing.T) {
	conv := newConversation("x")
	Import(conv, nil)
	if conv.Phase != PhaseGathering {
		t.Errorf("nil snapshot changed phase to %s", conv.Phase)
	}

	Import(conv, &Snapshot{})
	if conv.Phase != PhaseGathering {
		t.Errorf("empty snapshot changed phase to %s", conv.Phase)
	}
	if conv.Planning.CompletedDays == nil || conv.Planning.Guided == nil {
		t.Error("planning maps must be initialized after import")
	}
}

func TestDecodeUsedServices(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{`["a","b"]`, []string{"a", "b"}},
		{`{"a": true, "b": false}`, []string{"a"}},
		{`{"0": "a", "1": "b"}`, []string{"a", "b"}},
		{``, nil},
		{`42`, nil},
	}

	for _, tc := range cases {
		got := decodeUsedServices(json.RawMessage(tc.raw))
		if len(got) != len(tc.want) {
			t.Errorf("decodeUsedServices(%q) = %v, want ids %v", tc.raw, got, tc.want)
			continue
		}
		for _, id := range tc.want {
			if !got[id] {
				t.Errorf("decodeUsedServices(%q) missing %q", tc.raw, id)
			}
		}
	}
}

package guided

import (
	"strings"
	"testing"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/service/planner"
)

func TestFlowLiteralFallbacks(t *testing.T) {
	flow := NewFlow(nil)
	st := NewState(0)

	step, ok := flow.Current(st)
	if !ok || step.Name != "morning choice" {
		t.Fatalf("expected morning step, got %+v (ok=%v)", step, ok)
	}
	if len(step.Options) != 3 {
		t.Fatalf("empty catalog should still yield 3 options, got %d", len(step.Options))
	}
	if step.Options[0].Token != "easy_brunch" {
		t.Errorf("first fallback token = %q", step.Options[0].Token)
	}
}

func TestFlowAdvanceRejectsFreeText(t *testing.T) {
	flow := NewFlow(nil)
	st := NewState(0)

	for _, input := range []string{"sounds good", "brunch please", "yes", ""} {
		if flow.Advance(st, input) {
			t.Errorf("input %q should not advance the flow", input)
		}
	}
	if st.StepIndex != 0 || len(st.Choices) != 0 {
		t.Errorf("rejected input mutated the state: %+v", st)
	}
}

func TestFlowAdvanceNormalizesTokens(t *testing.T) {
	flow := NewFlow(nil)
	st := NewState(0)

	if !flow.Advance(st, "  Easy Brunch ") {
		t.Fatal("spaced, cased token should be accepted")
	}
	if st.Choices["morning choice"] != "easy_brunch" {
		t.Errorf("choice not recorded: %+v", st.Choices)
	}
	if !flow.Advance(st, "tex-mex") {
		t.Fatal("hyphenated token should be accepted")
	}
	if st.Choices["dinner choice"] != "tex_mex" {
		t.Errorf("choice not recorded: %+v", st.Choices)
	}
}

func TestFlowCompletion(t *testing.T) {
	flow := NewFlow(nil)
	st := NewState(2)

	for _, token := range []string{"sleep_in", "food_trucks", "bar_crawl"} {
		if !flow.Advance(st, token) {
			t.Fatalf("token %q rejected", token)
		}
	}

	if !st.Complete {
		t.Fatal("flow should be complete after three choices")
	}
	if _, ok := flow.Current(st); ok {
		t.Error("complete flow must have no current step")
	}
	if flow.Advance(st, "bar_crawl") {
		t.Error("complete flow must reject further input")
	}
}

func TestFlowPromptListsTokens(t *testing.T) {
	flow := NewFlow(nil)
	prompt := flow.Prompt(NewState(0))

	if !strings.Contains(prompt, "easy_brunch") || !strings.Contains(prompt, "sleep_in") {
		t.Errorf("prompt should list option tokens:\n%s", prompt)
	}
}

func TestBuildPlanLiteralChoices(t *testing.T) {
	flow := NewFlow(nil)
	st := NewState(0)
	for _, token := range []string{"get_moving", "steakhouse", "live_music"} {
		flow.Advance(st, token)
	}

	plan := flow.BuildPlan(st, nil)
	if len(plan.SelectedServices) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(plan.SelectedServices))
	}

	dinner := plan.SelectedServices[1]
	if dinner.ServiceID != "choice:steakhouse" {
		t.Errorf("literal choice should carry a synthetic id, got %q", dinner.ServiceID)
	}
	if dinner.TimeSlot != planner.SlotEvening {
		t.Errorf("dinner slot = %s", dinner.TimeSlot)
	}
	if dinner.Price != 0 {
		t.Errorf("literal choice should be zero-priced, got %v", dinner.Price)
	}
}

func TestBuildPlanCatalogBackedChoices(t *testing.T) {
	services := []catalog.Service{
		{ID: "svc-steak", Name: "Steakhouse 77", Category: "restaurant", Price: 120},
	}

	flow := NewFlow(services)
	st := NewState(0)

	dinnerStep := flow.steps[1]
	if dinnerStep.Options[0].ServiceID != "svc-steak" {
		t.Fatalf("catalog hit should lead the dinner options: %+v", dinnerStep.Options)
	}

	flow.Advance(st, "easy_brunch")
	if !flow.Advance(st, dinnerStep.Options[0].Token) {
		t.Fatal("catalog-backed token rejected")
	}
	flow.Advance(st, "bar_crawl")

	plan := flow.BuildPlan(st, services)

	var dinner planner.ServiceSelection
	for _, sel := range plan.SelectedServices {
		if sel.TimeSlot == planner.SlotEvening {
			dinner = sel
		}
	}

	if dinner.ServiceID != "svc-steak" {
		t.Fatalf("catalog-backed choice should use the real service id, got %q", dinner.ServiceID)
	}
	if dinner.Price != 120 || dinner.Category != "restaurant" {
		t.Errorf("catalog-backed choice not enriched: %+v", dinner)
	}
}

func TestChoicePayloadTracksCurrentStep(t *testing.T) {
	flow := NewFlow(nil)
	st := NewState(0)

	payload := flow.ChoicePayload(st)
	if len(payload) != 3 || payload[0].Token != "easy_brunch" {
		t.Fatalf("unexpected first payload: %+v", payload)
	}

	flow.Advance(st, "sleep_in")
	payload = flow.ChoicePayload(st)
	if len(payload) != 3 || payload[0].Token != "steakhouse" {
		t.Fatalf("payload should follow the step, got %+v", payload)
	}

	flow.Advance(st, "tex_mex")
	flow.Advance(st, "chill_night")
	if payload = flow.ChoicePayload(st); payload != nil {
		t.Errorf("complete flow should expose no choices, got %+v", payload)
	}
}

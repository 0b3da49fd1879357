// Package guided implements the fixed-choice sub-flow used on the
// designated weekday: a small finite machine that walks morning, dinner
// and night choices instead of delegating to the open-ended planner.
package guided

import (
	"fmt"
	"strings"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/service/planner"
)

// State is the serializable progress of one day's guided flow.
type State struct {
	DayIndex  int               `json:"dayIndex"`
	StepIndex int               `json:"stepIndex"`
	Choices   map[string]string `json:"choices"`
	Complete  bool              `json:"complete"`
}

func NewState(dayIndex int) *State {
	return &State{
		DayIndex: dayIndex,
		Choices:  map[string]string{},
	}
}

type Option struct {
	Token     string `json:"token"`
	Label     string `json:"label"`
	ServiceID string `json:"serviceId,omitempty"`
}

type Step struct {
	Name    string
	Prompt  string
	Options []Option
}

// Flow is the ordered list of steps, built deterministically from the
// catalog. Rebuilding it from the same catalog always yields the same
// steps, which is what makes mid-flow snapshots safe.
type Flow struct {
	steps []Step
}

const (
	stepMorning = "morning choice"
	stepDinner  = "dinner choice"
	stepNight   = "night choice"
)

func NewFlow(services []catalog.Service) *Flow {
	return &Flow{
		steps: []Step{
			{
				Name:    stepMorning,
				Prompt:  "How should the crew start the day?",
				Options: morningOptions(services),
			},
			{
				Name:    stepDinner,
				Prompt:  "Where's dinner?",
				Options: dinnerOptions(services),
			},
			{
				Name:    stepNight,
				Prompt:  "And how does the night go?",
				Options: nightOptions(services),
			},
		},
	}
}

// Current returns the step the state is waiting on.
func (f *Flow) Current(st *State) (Step, bool) {
	if st == nil || st.Complete || st.StepIndex >= len(f.steps) {
		return Step{}, false
	}

	return f.steps[st.StepIndex], true
}

// Prompt renders the current step's question with its option tokens.
func (f *Flow) Prompt(st *State) string {
	step, ok := f.Current(st)
	if !ok {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(step.Prompt)
	builder.WriteString("\n")

	for _, option := range step.Options {
		fmt.Fprintf(&builder, "- %s (%s)\n", option.Label, option.Token)
	}

	return strings.TrimSpace(builder.String())
}

// Advance feeds one user input into the flow. Only an exact option token
// (case-insensitive, spaces tolerated) is accepted; anything else leaves
// the state untouched and the caller re-prompts.
func (f *Flow) Advance(st *State, input string) bool {
	step, ok := f.Current(st)
	if !ok {
		return false
	}

	token := normalizeToken(input)

	for _, option := range step.Options {
		if option.Token != token {
			continue
		}

		if st.Choices == nil {
			st.Choices = map[string]string{}
		}
		st.Choices[step.Name] = option.Token

		st.StepIndex++
		if st.StepIndex >= len(f.steps) {
			st.Complete = true
		}

		return true
	}

	return false
}

// BuildPlan converts the recorded choices into a day plan without going
// through the planner. Catalog-backed options carry real pricing; literal
// options become zero-priced placeholder entries.
func (f *Flow) BuildPlan(st *State, services []catalog.Service) *planner.DayPlan {
	plan := &planner.DayPlan{
		DayTheme: "Guided day",
	}

	slots := map[string]planner.TimeSlot{
		stepMorning: planner.SlotMorning,
		stepDinner:  planner.SlotEvening,
		stepNight:   planner.SlotNight,
	}

	byID := map[string]catalog.Service{}
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	for _, step := range f.steps {
		token, ok := st.Choices[step.Name]
		if !ok {
			continue
		}

		option, ok := findOption(step, token)
		if !ok {
			continue
		}

		sel := planner.ServiceSelection{
			ServiceID:   "choice:" + option.Token,
			ServiceName: option.Label,
			TimeSlot:    slots[step.Name],
			Reason:      "picked in guided flow",
		}

		if svc, ok := byID[option.ServiceID]; ok {
			sel = planner.Enrich(sel, svc)
			sel.ServiceID = svc.ID
		}

		plan.SelectedServices = append(plan.SelectedServices, sel)
	}

	return plan
}

// ChoicePayload exposes the current step's options for button-style clients.
func (f *Flow) ChoicePayload(st *State) []Option {
	step, ok := f.Current(st)
	if !ok {
		return nil
	}

	return step.Options
}

func findOption(step Step, token string) (Option, bool) {
	for _, option := range step.Options {
		if option.Token == token {
			return option, true
		}
	}

	return Option{}, false
}

func normalizeToken(input string) string {
	token := strings.ToLower(strings.TrimSpace(input))
	token = strings.ReplaceAll(token, " ", "_")
	token = strings.ReplaceAll(token, "-", "_")

	return token
}

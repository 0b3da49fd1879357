package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DBravy/connected-chatbot-sub000/app/service/guided"
	"github.com/DBravy/connected-chatbot-sub000/app/service/ledger"
	"github.com/DBravy/connected-chatbot-sub000/app/service/planner"
)

// handleCommand intercepts /-prefixed developer shortcuts before any phase
// logic. Commands are fully deterministic and never touch the language
// model; planning side effects use the local fallback selector.
func (s *Service) handleCommand(ctx context.Context, conv *Conversation, message string) (string, *Conversation) {
	fields := strings.Fields(message)
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "/help":
		return "Commands: /seed key=value..., /phase NAME, /snapshot, /restore {json}, /reset, /help", nil

	case "/reset":
		fresh := s.store.Reset(conv.ID)
		return "Conversation reset. Starting from scratch — where's the trip?", fresh

	case "/seed":
		return s.commandSeed(ctx, conv, args), nil

	case "/phase":
		if len(args) == 0 {
			return fmt.Sprintf("Current phase: %s", conv.Phase), nil
		}
		return s.commandPhase(ctx, conv, strings.ToUpper(args[0])), nil

	case "/snapshot":
		data, err := json.Marshal(Export(conv))
		if err != nil {
			return "Failed to export snapshot: " + err.Error(), nil
		}
		return string(data), nil

	case "/restore":
		payload := strings.TrimSpace(strings.TrimPrefix(message, "/restore"))
		var snap Snapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			return "Failed to parse snapshot: " + err.Error(), nil
		}
		Import(conv, &snap)
		return fmt.Sprintf("Snapshot restored (phase %s).", conv.Phase), nil

	default:
		return fmt.Sprintf("Unknown command %q. Try /help.", command), nil
	}
}

// commandSeed writes key=value pairs straight into the ledger at SET, then
// runs the normal gathering exit gate.
func (s *Service) commandSeed(ctx context.Context, conv *Conversation, args []string) string {
	if conv.Phase != PhaseGathering {
		return fmt.Sprintf("Seeding only works in %s (currently %s). /reset first.", PhaseGathering, conv.Phase)
	}

	seeded := 0
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			continue
		}
		if conv.Ledger.SetDirect(ledger.Key(key), value, "seed command") {
			seeded++
		}
	}

	reply := fmt.Sprintf("Seeded %d fact(s).", seeded)

	if s.canLeaveGathering(conv, true) {
		transitionReply, _ := s.beginItineraryLocal(ctx, conv)
		reply += "\n" + transitionReply
	}

	return reply
}

func (s *Service) commandPhase(ctx context.Context, conv *Conversation, name string) string {
	switch Phase(name) {
	case PhaseGathering:
		conv.Phase = PhaseGathering
	case PhaseGuidedFirstDay:
		conv.Phase = PhaseGuidedFirstDay
		if _, ok := conv.Planning.Guided[0]; !ok {
			conv.Planning.Guided[0] = guided.NewState(0)
		}
	case PhasePlanning:
		conv.Phase = PhasePlanning
		if conv.Planning.TotalDays == 0 {
			conv.Planning.TotalDays = conv.totalDays()
		}
		if len(conv.AvailableServices) == 0 {
			s.loadCatalog(ctx, conv)
		}
		if conv.Planning.CurrentDayPlan == nil {
			s.planCurrentDayLocal(conv)
		}
	case PhaseStandby:
		conv.Phase = PhaseStandby
	default:
		return fmt.Sprintf("Unknown phase %q.", name)
	}

	return fmt.Sprintf("Phase forced to %s.", conv.Phase)
}

// beginItineraryLocal mirrors beginItinerary with the deterministic
// selector so seeded transitions stay model-free.
func (s *Service) beginItineraryLocal(ctx context.Context, conv *Conversation) (string, []Choice) {
	conv.Planning.TotalDays = conv.totalDays()
	s.loadCatalog(ctx, conv)

	if wd, ok := conv.dayWeekday(0); ok && wd == s.cfg.Trip.ParseGuidedWeekday() {
		conv.Phase = PhaseGuidedFirstDay

		state := guided.NewState(0)
		conv.Planning.Guided[0] = state

		flow := guided.NewFlow(conv.AvailableServices)
		return fmt.Sprintf("First day is a %s — guided flow engaged.\n\n%s",
			wd, flow.Prompt(state)), guidedChoices(flow, state)
	}

	conv.Phase = PhasePlanning
	s.planCurrentDayLocal(conv)

	return fmt.Sprintf("Moved to %s. Here's day %d:\n%s",
		conv.Phase, conv.Planning.CurrentDay+1, describePlan(conv.Planning.CurrentDayPlan)), nil
}

func (s *Service) planCurrentDayLocal(conv *Conversation) {
	conv.Planning.CurrentDayPlan = planner.FallbackPlan(
		conv.AvailableServices,
		conv.Ledger.FlattenPreferences(),
		s.dayDescriptor(conv, conv.Planning.CurrentDay),
		s.dedupContext(conv, ""),
	)
}

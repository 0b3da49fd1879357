package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/config"
	"github.com/DBravy/connected-chatbot-sub000/app/service/editor"
	"github.com/DBravy/connected-chatbot-sub000/app/service/guided"
	"github.com/DBravy/connected-chatbot-sub000/app/service/ledger"
	"github.com/DBravy/connected-chatbot-sub000/app/service/planner"
	"github.com/DBravy/connected-chatbot-sub000/app/service/reducer"

	"github.com/samber/do"
)

const historyWindow = 10

// TurnResult is everything the transport layer needs to answer one turn.
type TurnResult struct {
	Response    string                     `json:"response"`
	Phase       Phase                      `json:"phase"`
	Facts       map[ledger.Key]ledger.Fact `json:"facts"`
	Assumptions []string                   `json:"assumptions"`
	Itinerary   []DayView                  `json:"itinerary"`
	Snapshot    *Snapshot                  `json:"snapshot"`
	Choices     []Choice                   `json:"choices,omitempty"`
}

// DayView is one day of the itinerary as shown to the user.
type DayView struct {
	Day      int              `json:"day"`
	Plan     *planner.DayPlan `json:"plan"`
	Approved bool             `json:"approved"`
}

// Choice is one enumerated option for button-style clients.
type Choice struct {
	Token string `json:"token"`
	Label string `json:"label"`
}

type Service struct {
	cfg        *config.Config
	store      Store
	catalogSrc catalog.Source
	reducerSvc *reducer.Service
	plannerSvc *planner.Service
	editorSvc  *editor.Service
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*MemoryStore](di),
		do.MustInvoke[*catalog.Client](di),
		do.MustInvoke[*reducer.Service](di),
		do.MustInvoke[*planner.Service](di),
		do.MustInvoke[*editor.Service](di),
	), nil
}

func NewService(cfg *config.Config, store Store, catalogSrc catalog.Source, reducerSvc *reducer.Service, plannerSvc *planner.Service, editorSvc *editor.Service) *Service {
	return &Service{
		cfg:        cfg,
		store:      store,
		catalogSrc: catalogSrc,
		reducerSvc: reducerSvc,
		plannerSvc: plannerSvc,
		editorSvc:  editorSvc,
	}
}

// HandleTurn processes one inbound message against a conversation. The
// caller guarantees turns on the same id are serialized; across ids the
// engine is free to interleave. HandleTurn itself never fails a turn on a
// collaborator error; every path degrades to a deterministic reply.
func (s *Service) HandleTurn(ctx context.Context, conversationID, message string, snapshot *Snapshot) (*TurnResult, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}

	conv := s.store.GetOrCreate(conversationID)
	if snapshot != nil {
		Import(conv, snapshot)
	}

	trimmed := strings.TrimSpace(message)

	// Developer shortcuts bypass all phase logic and never touch the model.
	if strings.HasPrefix(trimmed, "/") {
		reply, replaced := s.handleCommand(ctx, conv, trimmed)
		if replaced != nil {
			conv = replaced
		}
		s.store.Save(conv)
		return s.result(conv, reply, nil, nil), nil
	}

	conv.addMessage("user", trimmed)

	var (
		reply       string
		choices     []Choice
		assumptions []string
	)

	switch conv.Phase {
	case PhaseGathering:
		reply, choices, assumptions = s.handleGathering(ctx, conv, trimmed)
	case PhaseGuidedFirstDay:
		reply, choices = s.handleGuidedDay(ctx, conv, 0, trimmed)
	case PhasePlanning:
		reply, choices = s.handlePlanning(ctx, conv, trimmed)
	case PhaseStandby:
		reply = s.handleStandby(ctx, conv, trimmed)
	default:
		conv.Phase = PhaseGathering
		reply, choices, assumptions = s.handleGathering(ctx, conv, trimmed)
	}

	conv.addMessage("assistant", reply)
	s.store.Save(conv)

	return s.result(conv, reply, choices, assumptions), nil
}

func (s *Service) handleGathering(ctx context.Context, conv *Conversation, message string) (string, []Choice, []string) {
	// Deterministic pre-pass: a terse numeric reply while we are waiting
	// on group size never depends on the model.
	if conv.Awaiting == AwaitingGroupSize {
		if n, ok := reducer.ParseGroupSize(message); ok {
			conv.Ledger.SetDirect(ledger.KeyGroupSize, n, "numeric pre-pass")
			conv.Awaiting = AwaitingNone
		}
	}

	response := s.reducerSvc.Reduce(ctx, conv.Ledger, conv.recentHistory(historyWindow), message, "")

	for key, update := range response.Facts {
		conv.Ledger.Merge(key, update)
	}

	conv.Awaiting = AwaitingNone
	for _, blocked := range response.BlockingQuestions {
		if ledger.Key(blocked) == ledger.KeyGroupSize {
			conv.Awaiting = AwaitingGroupSize
		}
	}

	reply := response.Reply

	if s.canLeaveGathering(conv, response.SafeTransition) {
		transitionReply, choices := s.beginItinerary(ctx, conv, message)
		if reply != "" {
			reply += "\n\n"
		}
		reply += transitionReply

		return reply, choices, response.Assumptions
	}

	return reply, nil, response.Assumptions
}

// canLeaveGathering is the GATHERING exit gate: every essential fact SET
// (destination may be ASSUMED when it names the supported city), a sane
// date window, and either the reducer vouching for the transition or every
// helpful fact at least addressed.
func (s *Service) canLeaveGathering(conv *Conversation, safeTransition bool) bool {
	if !conv.Ledger.EssentialsSet(s.cfg.Trip.SupportedCity) {
		return false
	}

	if conv.totalDays() <= 0 {
		return false
	}

	return safeTransition || conv.Ledger.HelpfulAddressed()
}

// beginItinerary performs the gathering exit side effects: catalog search,
// then either the guided first-day flow or planner selection for day 0.
func (s *Service) beginItinerary(ctx context.Context, conv *Conversation, message string) (string, []Choice) {
	conv.Planning.TotalDays = conv.totalDays()
	s.loadCatalog(ctx, conv)

	if wd, ok := conv.dayWeekday(0); ok && wd == s.cfg.Trip.ParseGuidedWeekday() {
		conv.Phase = PhaseGuidedFirstDay

		state := guided.NewState(0)
		conv.Planning.Guided[0] = state

		flow := guided.NewFlow(conv.AvailableServices)
		return fmt.Sprintf("Alright, I have what I need. Your first day lands on a %s, so let's build it together.\n\n%s",
			wd, flow.Prompt(state)), guidedChoices(flow, state)
	}

	conv.Phase = PhasePlanning

	return s.planCurrentDay(ctx, conv, message)
}

func (s *Service) loadCatalog(ctx context.Context, conv *Conversation) {
	services, err := s.catalogSrc.Search(ctx, s.cfg.Trip.SupportedCity, "", "")
	if err != nil {
		slog.Warn("Catalog search failed, continuing with empty catalog",
			"conversation", conv.ID,
			"error", err)
		return
	}

	conv.AvailableServices = services
}

// planCurrentDay fills the current day: the guided flow when its weekday
// is the designated one, the planner otherwise.
func (s *Service) planCurrentDay(ctx context.Context, conv *Conversation, explicitRequest string) (string, []Choice) {
	day := conv.Planning.CurrentDay

	if wd, ok := conv.dayWeekday(day); ok && wd == s.cfg.Trip.ParseGuidedWeekday() {
		state, exists := conv.Planning.Guided[day]
		if !exists {
			state = guided.NewState(day)
			conv.Planning.Guided[day] = state
		}

		flow := guided.NewFlow(conv.AvailableServices)
		return fmt.Sprintf("Day %d is a %s, so it gets the guided treatment.\n\n%s",
			day+1, wd, flow.Prompt(state)), guidedChoices(flow, state)
	}

	plan := s.plannerSvc.PlanDay(ctx,
		conv.AvailableServices,
		conv.Ledger.FlattenPreferences(),
		s.dayDescriptor(conv, day),
		s.dedupContext(conv, explicitRequest),
	)
	conv.Planning.CurrentDayPlan = plan

	return fmt.Sprintf("Here's day %d:\n%s\nSay the word and I'll lock it in, or tell me what to change.",
		day+1, describePlan(plan)), nil
}

func (s *Service) dayDescriptor(conv *Conversation, day int) planner.DayDescriptor {
	return planner.DayDescriptor{
		DayNumber:  day,
		TotalDays:  conv.Planning.TotalDays,
		TimeSlots:  planner.DefaultSlotOrder,
		IsFirstDay: day == 0,
		IsLastDay:  day == conv.Planning.TotalDays-1,
	}
}

func (s *Service) dedupContext(conv *Conversation, explicitRequest string) planner.DedupContext {
	return planner.DedupContext{
		UsedServices:        conv.Planning.UsedServiceIDs,
		AllowRepeats:        false,
		UserExplicitRequest: explicitRequest,
	}
}

// handleGuidedDay advances the guided flow for the given day index. Used
// both for the GUIDED_FIRST_DAY phase and for guided weekdays mid-trip.
func (s *Service) handleGuidedDay(ctx context.Context, conv *Conversation, day int, message string) (string, []Choice) {
	state, exists := conv.Planning.Guided[day]
	if !exists {
		state = guided.NewState(day)
		conv.Planning.Guided[day] = state
	}

	flow := guided.NewFlow(conv.AvailableServices)

	if !flow.Advance(state, message) {
		return "That wasn't one of the options — pick one of these:\n\n" + flow.Prompt(state),
			guidedChoices(flow, state)
	}

	if !state.Complete {
		return flow.Prompt(state), guidedChoices(flow, state)
	}

	// Final step answered: emit the plan and move on.
	plan := flow.BuildPlan(state, conv.AvailableServices)
	conv.Planning.CompletedDays[day] = plan
	conv.Planning.CurrentDayPlan = nil
	if day == conv.Planning.CurrentDay {
		conv.Planning.CurrentDay++
	}
	conv.Planning.RebuildUsedServices()

	if conv.Phase == PhaseGuidedFirstDay {
		conv.Phase = PhasePlanning
	}

	reply := fmt.Sprintf("Day %d locked in:\n%s", day+1, describePlan(plan))

	if conv.Planning.IsComplete() {
		conv.Phase = PhaseStandby
		return reply + "\n\nThat's the whole trip planned. I'm here if anything needs changing.", nil
	}

	nextReply, choices := s.planCurrentDay(ctx, conv, "")
	return reply + "\n\n" + nextReply, choices
}

func (s *Service) handlePlanning(ctx context.Context, conv *Conversation, message string) (string, []Choice) {
	day := conv.Planning.CurrentDay

	if state, ok := conv.Planning.Guided[day]; ok && !state.Complete {
		return s.handleGuidedDay(ctx, conv, day, message)
	}

	intent, target, hasTarget := classifyPlanningIntent(message, day, conv.Planning.TotalDays)

	if intent == intentUnknown {
		intent, target, hasTarget = s.classifyViaReducer(ctx, conv, message)
	}

	switch intent {
	case intentApprove:
		return s.approveCurrentDay(ctx, conv, message)
	case intentNavigate:
		if !hasTarget {
			return fmt.Sprintf("We're working on day %d right now — which day did you mean?", day+1), nil
		}
		return s.describeDay(conv, target), nil
	case intentEdit:
		editTarget := day
		if hasTarget {
			editTarget = target
		}
		return s.editDay(ctx, conv, editTarget, message), nil
	default:
		response := s.reducerSvc.Reduce(ctx, conv.Ledger, conv.recentHistory(historyWindow), message, s.planningContext(conv))
		return response.Reply, nil
	}
}

// classifyViaReducer asks the model for an intent when the deterministic
// keyword pass is inconclusive. A failed call keeps intent unknown and the
// caller falls through to a conversational reply.
func (s *Service) classifyViaReducer(ctx context.Context, conv *Conversation, message string) (planningIntent, int, bool) {
	response := s.reducerSvc.Reduce(ctx, conv.Ledger, conv.recentHistory(historyWindow), message, s.planningContext(conv))

	target := conv.Planning.CurrentDay
	hasTarget := false
	if response.TargetDayIndex != nil {
		if t, ok := clampDay(*response.TargetDayIndex, conv.Planning.TotalDays); ok {
			target = t
			hasTarget = true
		}
	}

	switch response.IntentType {
	case reducer.IntentApproval:
		return intentApprove, target, hasTarget
	case reducer.IntentNavigation:
		return intentNavigate, target, hasTarget
	case reducer.IntentEditRequest:
		return intentEdit, target, hasTarget
	default:
		return intentUnknown, target, hasTarget
	}
}

func (s *Service) approveCurrentDay(ctx context.Context, conv *Conversation, message string) (string, []Choice) {
	day := conv.Planning.CurrentDay

	if conv.Planning.CurrentDayPlan == nil {
		return s.planCurrentDay(ctx, conv, message)
	}

	conv.Planning.CompletedDays[day] = conv.Planning.CurrentDayPlan
	conv.Planning.CurrentDayPlan = nil
	conv.Planning.CurrentDay++
	conv.Planning.RebuildUsedServices()

	if conv.Planning.IsComplete() {
		conv.Phase = PhaseStandby
		return fmt.Sprintf("Day %d approved — and that's the whole trip! Ask me anything or tell me what to tweak.", day+1), nil
	}

	nextReply, choices := s.planCurrentDay(ctx, conv, "")
	return fmt.Sprintf("Day %d approved.\n\n%s", day+1, nextReply), choices
}

func (s *Service) describeDay(conv *Conversation, day int) string {
	if plan, ok := conv.Planning.CompletedDays[day]; ok && plan != nil {
		return fmt.Sprintf("Day %d (approved):\n%s", day+1, describePlan(plan))
	}

	if day == conv.Planning.CurrentDay && conv.Planning.CurrentDayPlan != nil {
		return fmt.Sprintf("Day %d (in progress):\n%s", day+1, describePlan(conv.Planning.CurrentDayPlan))
	}

	return fmt.Sprintf("Day %d isn't planned yet — we're currently on day %d.",
		day+1, conv.Planning.CurrentDay+1)
}

// editDay routes a change request through the edit-directive engine
// against whichever day it targets, then restores the dedup invariant.
func (s *Service) editDay(ctx context.Context, conv *Conversation, day int, message string) string {
	var target *planner.DayPlan
	editingCurrent := false

	if plan, ok := conv.Planning.CompletedDays[day]; ok && plan != nil {
		target = plan
	} else if day == conv.Planning.CurrentDay && conv.Planning.CurrentDayPlan != nil {
		target = conv.Planning.CurrentDayPlan
		editingCurrent = true
	} else {
		return fmt.Sprintf("Day %d isn't planned yet, so there's nothing to change there. We're on day %d.",
			day+1, conv.Planning.CurrentDay+1)
	}

	// The day being rewritten must not count against itself in dedup.
	dedup := planner.DedupContext{
		UsedServices:        usedExcludingDay(conv, day, editingCurrent),
		AllowRepeats:        false,
		UserExplicitRequest: message,
	}

	edited, _ := s.editorSvc.EditDay(ctx, target, message, conv.AvailableServices, dedup)

	if editingCurrent {
		conv.Planning.CurrentDayPlan = edited
	} else {
		conv.Planning.CompletedDays[day] = edited
	}

	// Whatever day index was written, rebuild the set from scratch.
	conv.Planning.RebuildUsedServices()

	return fmt.Sprintf("Updated day %d:\n%s", day+1, describePlan(edited))
}

func usedExcludingDay(conv *Conversation, day int, editingCurrent bool) map[string]bool {
	used := map[string]bool{}

	for index, plan := range conv.Planning.CompletedDays {
		if plan == nil || (!editingCurrent && index == day) {
			continue
		}
		for _, sel := range plan.SelectedServices {
			used[sel.ServiceID] = true
		}
	}

	return used
}

var standbyReplies = []string{
	"The itinerary is locked and loaded. Want a recap of any day?",
	"Everything's booked in the plan — tell me if the crew changes its mind.",
	"Trip's fully planned. I can swap, add or drop anything, just say which day.",
}

// handleStandby answers post-planning chatter: edits still work, anything
// else rotates through the recap replies.
func (s *Service) handleStandby(ctx context.Context, conv *Conversation, message string) string {
	intent, target, hasTarget := classifyPlanningIntent(message, conv.Planning.TotalDays-1, conv.Planning.TotalDays)

	switch intent {
	case intentEdit:
		day := conv.Planning.TotalDays - 1
		if hasTarget {
			day = target
		}
		return s.editDay(ctx, conv, day, message)
	case intentNavigate:
		if hasTarget {
			return s.describeDay(conv, target)
		}
	}

	reply := standbyReplies[conv.StandbyIndex%len(standbyReplies)]
	conv.StandbyIndex++

	return reply
}

func (s *Service) planningContext(conv *Conversation) string {
	return fmt.Sprintf("phase=%s currentDay=%d totalDays=%d approvedDays=%d",
		conv.Phase, conv.Planning.CurrentDay, conv.Planning.TotalDays, len(conv.Planning.CompletedDays))
}

func (s *Service) result(conv *Conversation, reply string, choices []Choice, assumptions []string) *TurnResult {
	if assumptions == nil {
		assumptions = []string{}
	}

	return &TurnResult{
		Response:    reply,
		Phase:       conv.Phase,
		Facts:       conv.Ledger.Export(),
		Assumptions: assumptions,
		Itinerary:   itineraryView(conv),
		Snapshot:    Export(conv),
		Choices:     choices,
	}
}

func itineraryView(conv *Conversation) []DayView {
	total := conv.Planning.TotalDays
	views := make([]DayView, 0, total)

	for day := 0; day < total; day++ {
		view := DayView{Day: day}

		if plan, ok := conv.Planning.CompletedDays[day]; ok {
			view.Plan = plan
			view.Approved = true
		} else if day == conv.Planning.CurrentDay {
			view.Plan = conv.Planning.CurrentDayPlan
		}

		views = append(views, view)
	}

	return views
}

func describePlan(plan *planner.DayPlan) string {
	if plan == nil || len(plan.SelectedServices) == 0 {
		return "(nothing scheduled yet)"
	}

	var builder strings.Builder

	if plan.DayTheme != "" {
		builder.WriteString(plan.DayTheme + "\n")
	}

	for _, sel := range plan.SelectedServices {
		fmt.Fprintf(&builder, "- %s: %s", sel.TimeSlot, sel.ServiceName)
		if sel.Price > 0 {
			fmt.Fprintf(&builder, " ($%.0f)", sel.Price)
		}
		builder.WriteString("\n")
	}

	if plan.LogisticsNotes != "" {
		builder.WriteString("Notes: " + plan.LogisticsNotes + "\n")
	}

	return strings.TrimRight(builder.String(), "\n")
}

func guidedChoices(flow *guided.Flow, state *guided.State) []Choice {
	var choices []Choice
	for _, option := range flow.ChoicePayload(state) {
		choices = append(choices, Choice{Token: option.Token, Label: option.Label})
	}

	return choices
}

package conversation

import (
	"time"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/service/guided"
	"github.com/DBravy/connected-chatbot-sub000/app/service/ledger"
	"github.com/DBravy/connected-chatbot-sub000/app/service/planner"

	"github.com/google/uuid"
)

// Phase is the top-level conversation state. Phases never regress except
// through an explicit reset.
type Phase string

const (
	PhaseGathering      Phase = "GATHERING"
	PhaseGuidedFirstDay Phase = "GUIDED_FIRST_DAY"
	PhasePlanning       Phase = "PLANNING"
	PhaseStandby        Phase = "STANDBY"
)

// Awaiting marks a deterministic sub-state of the gathering phase.
type Awaiting string

const (
	AwaitingNone      Awaiting = ""
	AwaitingGroupSize Awaiting = "groupSize"
)

const messageLogSize = 50

type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// DayByDayPlanning is the per-trip planning cursor. UsedServiceIDs is a
// derived set: always rebuilt from CompletedDays, never patched.
type DayByDayPlanning struct {
	CurrentDay     int
	TotalDays      int
	CompletedDays  map[int]*planner.DayPlan
	UsedServiceIDs map[string]bool
	CurrentDayPlan *planner.DayPlan
	Guided         map[int]*guided.State
}

func newPlanning() DayByDayPlanning {
	return DayByDayPlanning{
		CompletedDays:  map[int]*planner.DayPlan{},
		UsedServiceIDs: map[string]bool{},
		Guided:         map[int]*guided.State{},
	}
}

// RebuildUsedServices recomputes the dedup set as the union of service ids
// across all completed days. Called after every write to any day, whatever
// the day index, so partial failures can never leave the set drifted.
func (p *DayByDayPlanning) RebuildUsedServices() {
	used := map[string]bool{}

	for _, plan := range p.CompletedDays {
		if plan == nil {
			continue
		}
		for _, sel := range plan.SelectedServices {
			used[sel.ServiceID] = true
		}
	}

	p.UsedServiceIDs = used
}

// IsComplete reports whether the approved day cursor reached the trip end.
func (p *DayByDayPlanning) IsComplete() bool {
	return p.TotalDays > 0 && p.CurrentDay >= p.TotalDays
}

// Conversation is the aggregate root for one chat session.
type Conversation struct {
	ID                string
	Phase             Phase
	Ledger            *ledger.Ledger
	Messages          []Message
	AvailableServices []catalog.Service
	Planning          DayByDayPlanning
	Awaiting          Awaiting
	StandbyIndex      int
}

func newConversation(id string) *Conversation {
	return &Conversation{
		ID:       id,
		Phase:    PhaseGathering,
		Ledger:   ledger.New(),
		Planning: newPlanning(),
	}
}

func (c *Conversation) addMessage(role, content string) {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}

	if len(c.Messages) >= messageLogSize {
		c.Messages = append(c.Messages[1:], msg)
	} else {
		c.Messages = append(c.Messages, msg)
	}
}

// recentHistory renders the last n messages for prompt context.
func (c *Conversation) recentHistory(n int) []string {
	start := len(c.Messages) - n
	if start < 0 {
		start = 0
	}

	var lines []string
	for _, msg := range c.Messages[start:] {
		lines = append(lines, msg.Role+": "+msg.Content)
	}

	return lines
}

// tripDates parses the ledger's start and end dates. ok is false unless
// both parse and the range is sane.
func (c *Conversation) tripDates() (start, end time.Time, ok bool) {
	prefs := c.Ledger.FlattenPreferences()

	start, err := time.Parse("2006-01-02", prefs.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	end, err = time.Parse("2006-01-02", prefs.EndDate)
	if err != nil || end.Before(start) {
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

// totalDays is the inclusive day count of the trip window.
func (c *Conversation) totalDays() int {
	start, end, ok := c.tripDates()
	if !ok {
		return 0
	}

	return int(end.Sub(start).Hours()/24) + 1
}

// dayWeekday returns the weekday of the given 0-based day index.
func (c *Conversation) dayWeekday(dayIndex int) (time.Weekday, bool) {
	start, _, ok := c.tripDates()
	if !ok {
		return time.Sunday, false
	}

	return start.AddDate(0, 0, dayIndex).Weekday(), true
}

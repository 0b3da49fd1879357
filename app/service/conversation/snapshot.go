package conversation

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/service/guided"
	"github.com/DBravy/connected-chatbot-sub000/app/service/ledger"
	"github.com/DBravy/connected-chatbot-sub000/app/service/planner"
)

// Snapshot is the wire form of a conversation for stateless transport.
// Export and import are symmetric; import additionally tolerates snapshots
// produced before newer fields existed.
type Snapshot struct {
	Phase             Phase                      `json:"phase"`
	Facts             map[ledger.Key]ledger.Fact `json:"facts"`
	AvailableServices []catalog.Service          `json:"availableServices"`
	SelectedServices  []planner.ServiceSelection `json:"selectedServices"`
	DayByDayPlanning  *PlanningSnapshot          `json:"dayByDayPlanning"`
	GuidedFirstDay    *guided.State              `json:"guidedFirstDay,omitempty"`
	Awaiting          Awaiting                   `json:"awaiting,omitempty"`
	Messages          []Message                  `json:"messages"`
	StandbyIndex      int                        `json:"standbyIndex,omitempty"`
}

type PlanningSnapshot struct {
	CurrentDay     int                         `json:"currentDay"`
	TotalDays      int                         `json:"totalDays"`
	CompletedDays  map[string]*planner.DayPlan `json:"completedDays"`
	UsedServices   json.RawMessage             `json:"usedServices,omitempty"`
	CurrentDayPlan *planner.DayPlan            `json:"currentDayPlan,omitempty"`
	Guided         map[string]*guided.State    `json:"guided,omitempty"`
}

// Export serializes the whole conversation state.
func Export(conv *Conversation) *Snapshot {
	completed := map[string]*planner.DayPlan{}
	for day, plan := range conv.Planning.CompletedDays {
		completed[strconv.Itoa(day)] = plan
	}

	guidedStates := map[string]*guided.State{}
	for day, state := range conv.Planning.Guided {
		guidedStates[strconv.Itoa(day)] = state
	}

	used := make([]string, 0, len(conv.Planning.UsedServiceIDs))
	for id := range conv.Planning.UsedServiceIDs {
		used = append(used, id)
	}
	sort.Strings(used)
	usedJSON, _ := json.Marshal(used)

	var selected []planner.ServiceSelection
	if conv.Planning.CurrentDayPlan != nil {
		selected = conv.Planning.CurrentDayPlan.SelectedServices
	}

	return &Snapshot{
		Phase:             conv.Phase,
		Facts:             conv.Ledger.Export(),
		AvailableServices: conv.AvailableServices,
		SelectedServices:  selected,
		DayByDayPlanning: &PlanningSnapshot{
			CurrentDay:     conv.Planning.CurrentDay,
			TotalDays:      conv.Planning.TotalDays,
			CompletedDays:  completed,
			UsedServices:   usedJSON,
			CurrentDayPlan: conv.Planning.CurrentDayPlan,
			Guided:         guidedStates,
		},
		GuidedFirstDay: conv.Planning.Guided[0],
		Awaiting:       conv.Awaiting,
		Messages:       conv.Messages,
		StandbyIndex:   conv.StandbyIndex,
	}
}

// Import restores a conversation from a snapshot, applying defaults for
// anything the snapshot predates. The used-services set is reconstructed
// from whatever shape is present, then rebuilt from the completed days so
// the dedup invariant holds regardless of what was imported.
func Import(conv *Conversation, snap *Snapshot) {
	if snap == nil {
		return
	}

	if snap.Phase != "" {
		conv.Phase = snap.Phase
	}

	if snap.Facts != nil {
		conv.Ledger.Import(snap.Facts)
	}

	conv.AvailableServices = snap.AvailableServices
	conv.Awaiting = snap.Awaiting
	conv.StandbyIndex = snap.StandbyIndex

	if snap.Messages != nil {
		conv.Messages = snap.Messages
	}

	conv.Planning = newPlanning()

	if planning := snap.DayByDayPlanning; planning != nil {
		conv.Planning.CurrentDay = planning.CurrentDay
		conv.Planning.TotalDays = planning.TotalDays
		conv.Planning.CurrentDayPlan = planning.CurrentDayPlan

		for key, plan := range planning.CompletedDays {
			day, err := strconv.Atoi(key)
			if err != nil || plan == nil {
				continue
			}
			conv.Planning.CompletedDays[day] = plan
		}

		for key, state := range planning.Guided {
			day, err := strconv.Atoi(key)
			if err != nil || state == nil {
				continue
			}
			conv.Planning.Guided[day] = state
		}

		conv.Planning.UsedServiceIDs = decodeUsedServices(planning.UsedServices)
	}

	if snap.GuidedFirstDay != nil {
		conv.Planning.Guided[0] = snap.GuidedFirstDay
	}

	conv.Planning.RebuildUsedServices()
}

// decodeUsedServices accepts an array of ids, an object whose values are
// ids, or a set-shaped object mapping id -> true.
func decodeUsedServices(raw json.RawMessage) map[string]bool {
	used := map[string]bool{}
	if len(raw) == 0 {
		return used
	}

	var asArray []string
	if err := json.Unmarshal(raw, &asArray); err == nil {
		for _, id := range asArray {
			used[id] = true
		}
		return used
	}

	var asSet map[string]bool
	if err := json.Unmarshal(raw, &asSet); err == nil {
		for id, present := range asSet {
			if present {
				used[id] = true
			}
		}
		return used
	}

	var asObject map[string]string
	if err := json.Unmarshal(raw, &asObject); err == nil {
		for _, id := range asObject {
			used[id] = true
		}
		return used
	}

	return used
}

package ledger

// Status is the lifecycle stage of a fact. Rank order matters: merges may
// never move a fact to a lower-ranked status.
type Status string

const (
	StatusUnknown   Status = "UNKNOWN"
	StatusSuggested Status = "SUGGESTED"
	StatusAssumed   Status = "ASSUMED"
	StatusSet       Status = "SET"
	StatusCorrected Status = "CORRECTED"
)

var statusRanks = map[Status]int{
	StatusUnknown:   0,
	StatusSuggested: 1,
	StatusAssumed:   2,
	StatusSet:       3,
	StatusCorrected: 4,
}

func (s Status) Rank() int {
	return statusRanks[s]
}

func (s Status) Valid() bool {
	_, ok := statusRanks[s]
	return ok
}

type Priority string

const (
	PriorityEssential Priority = "ESSENTIAL"
	PriorityHelpful   Priority = "HELPFUL"
	PriorityOptional  Priority = "OPTIONAL"
)

type Key string

const (
	KeyDestination          Key = "destination"
	KeyGroupSize            Key = "groupSize"
	KeyStartDate            Key = "startDate"
	KeyEndDate              Key = "endDate"
	KeyWildnessLevel        Key = "wildnessLevel"
	KeyRelationship         Key = "relationship"
	KeyInterestedActivities Key = "interestedActivities"
	KeyAgeRange             Key = "ageRange"
	KeyBudget               Key = "budget"
)

var keyPriorities = map[Key]Priority{
	KeyDestination:          PriorityEssential,
	KeyGroupSize:            PriorityEssential,
	KeyStartDate:            PriorityEssential,
	KeyEndDate:              PriorityEssential,
	KeyWildnessLevel:        PriorityHelpful,
	KeyRelationship:         PriorityHelpful,
	KeyInterestedActivities: PriorityHelpful,
	KeyAgeRange:             PriorityOptional,
	KeyBudget:               PriorityOptional,
}

// Keys lists every ledger key in a stable order.
var Keys = []Key{
	KeyDestination,
	KeyGroupSize,
	KeyStartDate,
	KeyEndDate,
	KeyWildnessLevel,
	KeyRelationship,
	KeyInterestedActivities,
	KeyAgeRange,
	KeyBudget,
}

type Fact struct {
	Value      any      `json:"value"`
	Status     Status   `json:"status"`
	Confidence float64  `json:"confidence"`
	Provenance string   `json:"provenance,omitempty"`
	Priority   Priority `json:"priority"`
}

// Update is one proposed change to a fact, produced by the reducer or a
// deterministic pre-pass. The merge rule decides whether it lands.
type Update struct {
	Value      any     `json:"value"`
	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"`
	Provenance string  `json:"provenance,omitempty"`
}

// Preferences is the planner-facing flattening of the ledger.
type Preferences struct {
	Destination  string
	GroupSize    int
	StartDate    string
	EndDate      string
	Wildness     string
	Relationship string
	Interests    []string
	AgeRange     string
	Budget       string
}

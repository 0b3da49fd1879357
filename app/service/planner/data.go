package planner

// TimeSlot is a coarse position within one day of the trip.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
	SlotNight     TimeSlot = "night"
	SlotLateNight TimeSlot = "late_night"
)

// DefaultSlotOrder is the canonical chronological slot sequence.
var DefaultSlotOrder = []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening, SlotNight, SlotLateNight}

// ServiceSelection binds a catalog item to a time slot. Price, duration
// and image are denormalized snapshots copied from the catalog at
// selection time so the plan survives later catalog changes.
type ServiceSelection struct {
	ServiceID        string   `json:"serviceId"`
	ServiceName      string   `json:"serviceName"`
	TimeSlot         TimeSlot `json:"timeSlot"`
	Reason           string   `json:"reason,omitempty"`
	Category         string   `json:"category,omitempty"`
	Price            float64  `json:"price"`
	PricePerPerson   float64  `json:"pricePerPerson,omitempty"`
	DurationHours    float64  `json:"durationHours,omitempty"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	EstimatedDuration string  `json:"estimatedDuration,omitempty"`
	GroupSuitability string   `json:"groupSuitability,omitempty"`
}

// DayPlan is the ordered set of selections for one day.
type DayPlan struct {
	SelectedServices []ServiceSelection `json:"selectedServices"`
	DayTheme         string             `json:"dayTheme"`
	LogisticsNotes   string             `json:"logisticsNotes,omitempty"`
}

// Clone deep-copies a plan so editors never mutate an approved day in place.
func (p *DayPlan) Clone() *DayPlan {
	if p == nil {
		return nil
	}

	clone := *p
	clone.SelectedServices = append([]ServiceSelection(nil), p.SelectedServices...)

	return &clone
}

// DayDescriptor tells the selector where in the trip the day sits.
type DayDescriptor struct {
	DayNumber  int        `json:"dayNumber"`
	TotalDays  int        `json:"totalDays"`
	TimeSlots  []TimeSlot `json:"timeSlots"`
	IsFirstDay bool       `json:"isFirstDay"`
	IsLastDay  bool       `json:"isLastDay"`
}

// DedupContext carries cross-day repeat constraints into selection.
type DedupContext struct {
	UsedServices        map[string]bool
	AllowRepeats        bool
	UserExplicitRequest string
}

// selectResponse is the structured output of the select collaborator.
type selectResponse struct {
	SelectedServices   []selectedService `json:"selectedServices"`
	AlternativeOptions []selectedService `json:"alternativeOptions"`
	DayTheme           string            `json:"dayTheme"`
	LogisticsNotes     string            `json:"logisticsNotes"`
}

type selectedService struct {
	ServiceID         string   `json:"serviceId"`
	ServiceName       string   `json:"serviceName"`
	TimeSlot          TimeSlot `json:"timeSlot"`
	Reason            string   `json:"reason"`
	EstimatedDuration string   `json:"estimatedDuration"`
	GroupSuitability  string   `json:"groupSuitability"`
}

package editor

import "github.com/DBravy/connected-chatbot-sub000/app/service/planner"

// OpKind tags the operation variants of an edit directive.
type OpKind string

const (
	OpAddActivity       OpKind = "add_activity"
	OpReplaceActivity   OpKind = "replace_activity"
	OpRemoveActivity    OpKind = "remove_activity"
	OpSubstituteService OpKind = "substitute_service"
	OpReorder           OpKind = "reorder"
	OpAdjustTime        OpKind = "adjust_time"
	OpSetConstraint     OpKind = "set_constraint"
)

// Operation is one typed change request. Target fields narrow which entry
// it applies to; payload fields describe the new state.
type Operation struct {
	Kind OpKind `json:"type"`

	// Targeting
	TargetID       string           `json:"target_id,omitempty"`
	TargetName     string           `json:"target_name,omitempty"`
	TargetCategory string           `json:"target_category,omitempty"`
	TargetTime     planner.TimeSlot `json:"target_time,omitempty"`

	// Payload
	Keywords     []string           `json:"keywords,omitempty"`
	CategoryHint string             `json:"category_hint,omitempty"`
	NewTime      planner.TimeSlot   `json:"new_time,omitempty"`
	NewName      string             `json:"new_name,omitempty"`
	NewID        string             `json:"new_id,omitempty"`
	SlotOrder    []planner.TimeSlot `json:"slot_order,omitempty"`
	Constraint   string             `json:"constraint,omitempty"`
}

// Directive is an ordered list of operations plus the interpreter's own
// confidence in its reading of the request.
type Directive struct {
	Ops        []Operation `json:"ops"`
	Confidence float64     `json:"confidence"`
}

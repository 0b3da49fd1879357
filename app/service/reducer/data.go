package reducer

import "github.com/DBravy/connected-chatbot-sub000/app/service/ledger"

// IntentType classifies what the user's utterance is trying to do.
type IntentType string

const (
	IntentAnswer      IntentType = "answer"
	IntentQuestion    IntentType = "question"
	IntentApproval    IntentType = "approval"
	IntentNavigation  IntentType = "navigation"
	IntentEditRequest IntentType = "edit_request"
	IntentChitchat    IntentType = "chitchat"
)

// Response is the structured-output contract of the reduce call. Every
// field is always present, even when empty, so downstream code never
// branches on missing keys.
type Response struct {
	Facts             map[ledger.Key]ledger.Update `json:"facts"`
	Assumptions       []string                     `json:"assumptions"`
	BlockingQuestions []string                     `json:"blocking_questions"`
	SafeTransition    bool                         `json:"safe_transition"`
	Reply             string                       `json:"reply"`
	IntentType        IntentType                   `json:"intent_type"`
	TargetDayIndex    *int                         `json:"target_day_index"`
}

package reducer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DBravy/connected-chatbot-sub000/app/client/llm"
	"github.com/DBravy/connected-chatbot-sub000/app/config"
	"github.com/DBravy/connected-chatbot-sub000/app/service/ledger"

	_ "embed"

	"github.com/samber/do"
)

//go:embed reduce_prompt_template.txt
var reducePromptTemplate string

type Service struct {
	cfg       *config.Config
	completer llm.Completer
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(cfg, llm.NewClient(cfg.OpenAI.Reducer)), nil
}

func NewService(cfg *config.Config, completer llm.Completer) *Service {
	return &Service{
		cfg:       cfg,
		completer: completer,
	}
}

// Reduce turns one utterance plus the current ledger into fact updates, an
// intent and a reply. It never fails: a collaborator error degrades to a
// minimal blocking-question response and the ledger stays untouched.
func (s *Service) Reduce(ctx context.Context, led *ledger.Ledger, history []string, message, planningContext string) *Response {
	prompt := llm.RenderPrompt(reducePromptTemplate, map[string]any{
		"city":             s.cfg.Trip.SupportedCity,
		"facts":            led.Format(),
		"history":          strings.Join(history, "\n"),
		"planning_context": planningContext,
		"message":          message,
	})

	var response Response
	if err := s.completer.CompleteJSON(ctx, prompt, &response); err != nil {
		slog.Warn("Reduce call failed, using fallback", "error", err)
		return s.Fallback(led)
	}

	normalize(&response)

	return &response
}

// Fallback is the deterministic no-model response: ask about the next
// unknown essential fact and change nothing.
func (s *Service) Fallback(led *ledger.Ledger) *Response {
	reply := "Sorry, I didn't catch that. Could you say it again?"
	var blocking []string

	if key, ok := led.FirstUnknownEssential(); ok {
		question := questionFor(key, s.cfg.Trip.SupportedCity)
		reply = question
		blocking = []string{string(key)}
	}

	return &Response{
		Facts:             map[ledger.Key]ledger.Update{},
		Assumptions:       []string{},
		BlockingQuestions: blocking,
		SafeTransition:    false,
		Reply:             reply,
		IntentType:        IntentAnswer,
		TargetDayIndex:    nil,
	}
}

func questionFor(key ledger.Key, city string) string {
	switch key {
	case ledger.KeyDestination:
		return fmt.Sprintf("Where is the trip happening? (%s is where I know best)", city)
	case ledger.KeyGroupSize:
		return "How many people are coming?"
	case ledger.KeyStartDate:
		return "What date does the trip start?"
	case ledger.KeyEndDate:
		return "And what date does it wrap up?"
	default:
		return "Tell me a bit more about the trip."
	}
}

// normalize guarantees the required-fields-always-present contract even
// when the model omits them.
func normalize(r *Response) {
	if r.Facts == nil {
		r.Facts = map[ledger.Key]ledger.Update{}
	}
	if r.Assumptions == nil {
		r.Assumptions = []string{}
	}
	if r.BlockingQuestions == nil {
		r.BlockingQuestions = []string{}
	}
	if r.IntentType == "" {
		r.IntentType = IntentAnswer
	}
	r.Reply = strings.TrimSpace(r.Reply)
}

package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/client/llm"
	"github.com/DBravy/connected-chatbot-sub000/app/config"
	"github.com/DBravy/connected-chatbot-sub000/app/service/match"
	"github.com/DBravy/connected-chatbot-sub000/app/service/planner"

	_ "embed"

	"github.com/samber/do"
	"github.com/samber/lo"
)

//go:embed edit_prompt_template.txt
var editPromptTemplate string

//go:embed rewrite_prompt_template.txt
var rewritePromptTemplate string

type Service struct {
	cfg       *config.Config
	completer llm.Completer
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(cfg, llm.NewClient(cfg.OpenAI.Selector)), nil
}

func NewService(cfg *config.Config, completer llm.Completer) *Service {
	return &Service{
		cfg:       cfg,
		completer: completer,
	}
}

// EditDay runs the two-stage pipeline: interpret the free-form request
// into a typed directive, then rewrite the day. Both stages degrade to
// deterministic local logic, so EditDay always yields a plan.
func (s *Service) EditDay(ctx context.Context, day *planner.DayPlan, request string, services []catalog.Service, dedup planner.DedupContext) (*planner.DayPlan, *Directive) {
	directive := s.Interpret(ctx, day, request, services)

	rewritten, err := s.rewrite(ctx, day, directive, services, dedup)
	if err != nil {
		slog.Warn("Rewrite call failed, applying directive locally", "error", err)
		rewritten = Apply(day, directive, services)
	}

	return rewritten, directive
}

// Interpret asks the model for a directive; a failed call or an empty op
// list falls back to the heuristic single-add matcher.
func (s *Service) Interpret(ctx context.Context, day *planner.DayPlan, request string, services []catalog.Service) *Directive {
	dayJSON, _ := json.Marshal(day)
	catalogJSON, _ := json.Marshal(services)

	prompt := llm.RenderPrompt(editPromptTemplate, map[string]any{
		"city":     s.cfg.Trip.SupportedCity,
		"day_plan": string(dayJSON),
		"catalog":  string(catalogJSON),
		"request":  request,
	})

	var directive Directive
	if err := s.completer.CompleteJSON(ctx, prompt, &directive); err != nil {
		slog.Warn("Interpret call failed, using heuristic directive", "error", err)
		return HeuristicDirective(request, services)
	}

	if len(directive.Ops) == 0 {
		return HeuristicDirective(request, services)
	}

	return &directive
}

// HeuristicDirective scans the catalog for items mentioned in the request
// and synthesizes a single add operation. It is intentionally modest: one
// op, low confidence.
func HeuristicDirective(request string, services []catalog.Service) *Directive {
	keywords := match.Keywords(request)

	op := Operation{
		Kind:     OpAddActivity,
		Keywords: keywords,
	}

	if svc, ok := match.Best(services, keywords, ""); ok {
		op.NewID = svc.ID
	}

	return &Directive{
		Ops:        []Operation{op},
		Confidence: 0.3,
	}
}

func (s *Service) rewrite(ctx context.Context, day *planner.DayPlan, directive *Directive, services []catalog.Service, dedup planner.DedupContext) (*planner.DayPlan, error) {
	dayJSON, err := json.Marshal(day)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal day plan: %w", err)
	}

	directiveJSON, err := json.Marshal(directive)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal directive: %w", err)
	}

	catalogJSON, err := json.Marshal(services)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}

	prompt := llm.RenderPrompt(rewritePromptTemplate, map[string]any{
		"city":          s.cfg.Trip.SupportedCity,
		"day_plan":      string(dayJSON),
		"directive":     string(directiveJSON),
		"catalog":       string(catalogJSON),
		"used_services": strings.Join(lo.Keys(dedup.UsedServices), ", "),
	})

	var response struct {
		SelectedServices []struct {
			ServiceID string           `json:"serviceId"`
			TimeSlot  planner.TimeSlot `json:"timeSlot"`
			Reason    string           `json:"reason"`
		} `json:"selectedServices"`
		DayTheme       string `json:"dayTheme"`
		LogisticsNotes string `json:"logisticsNotes"`
	}

	if err := s.completer.CompleteJSON(ctx, prompt, &response); err != nil {
		return nil, fmt.Errorf("completer.CompleteJSON: %w", err)
	}

	if len(response.SelectedServices) == 0 {
		return nil, fmt.Errorf("rewrite returned an empty day")
	}

	byID := lo.SliceToMap(services, func(svc catalog.Service) (string, catalog.Service) {
		return svc.ID, svc
	})

	plan := &planner.DayPlan{
		DayTheme:       strings.TrimSpace(response.DayTheme),
		LogisticsNotes: strings.TrimSpace(response.LogisticsNotes),
	}
	if plan.DayTheme == "" && day != nil {
		plan.DayTheme = day.DayTheme
	}

	for _, sel := range response.SelectedServices {
		svc, ok := byID[sel.ServiceID]
		if !ok {
			slog.Debug("Rewrite referenced unknown service, skipping", "serviceId", sel.ServiceID)
			continue
		}

		entry := planner.Enrich(planner.ServiceSelection{
			ServiceID: sel.ServiceID,
			TimeSlot:  sel.TimeSlot,
			Reason:    sel.Reason,
		}, svc)

		if duplicateAt(plan.SelectedServices, entry, -1) {
			continue
		}

		plan.SelectedServices = append(plan.SelectedServices, entry)
	}

	if len(plan.SelectedServices) == 0 {
		return nil, fmt.Errorf("rewrite produced no resolvable services")
	}

	return plan, nil
}

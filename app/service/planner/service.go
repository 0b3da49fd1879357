package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/client/llm"
	"github.com/DBravy/connected-chatbot-sub000/app/config"
	"github.com/DBravy/connected-chatbot-sub000/app/service/ledger"

	_ "embed"

	"github.com/samber/do"
	"github.com/samber/lo"
)

//go:embed select_prompt_template.txt
var selectPromptTemplate string

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

// PlanDay asks the selection collaborator for a day plan and enriches the
// result from the catalog. A collaborator failure degrades to the local
// bucket selector; PlanDay always returns a usable plan.
func (s *Service) PlanDay(ctx context.Context, services []catalog.Service, prefs ledger.Preferences, day DayDescriptor, dedup DedupContext) *DayPlan {
	response, err := s.callSelector(ctx, services, prefs, day, dedup)
	if err != nil {
		slog.Warn("Select call failed, using local fallback",
			"day", day.DayNumber,
			"error", err)
		return FallbackPlan(services, prefs, day, dedup)
	}

	plan := s.materialize(response, services, dedup)
	if len(plan.SelectedServices) == 0 {
		slog.Warn("Select call returned nothing usable, using local fallback", "day", day.DayNumber)
		return FallbackPlan(services, prefs, day, dedup)
	}

	return plan
}

func (s *Service) callSelector(ctx context.Context, services []catalog.Service, prefs ledger.Preferences, day DayDescriptor, dedup DedupContext) (*selectResponse, error) {
	catalogJSON, err := json.Marshal(services)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}

	slots := day.TimeSlots
	if len(slots) == 0 {
		slots = DefaultSlotOrder
	}

	prompt := llm.RenderPrompt(selectPromptTemplate, map[string]any{
		"city":             s.cfg.Trip.SupportedCity,
		"day_number":       day.DayNumber + 1,
		"total_days":       day.TotalDays,
		"is_first_day":     day.IsFirstDay,
		"is_last_day":      day.IsLastDay,
		"time_slots":       joinSlots(slots),
		"preferences":      formatPreferences(prefs),
		"used_services":    strings.Join(lo.Keys(dedup.UsedServices), ", "),
		"allow_repeats":    dedup.AllowRepeats,
		"explicit_request": dedup.UserExplicitRequest,
		"catalog":          string(catalogJSON),
	})

	var response selectResponse
	if err := s.completer.CompleteJSON(ctx, prompt, &response); err != nil {
		return nil, fmt.Errorf("completer.CompleteJSON: %w", err)
	}

	return &response, nil
}

// materialize turns selector output into a DayPlan. Selection output is
// trusted only for identity and slot; pricing, duration and imagery always
// come from the catalog, and unknown ids are dropped.
func (s *Service) materialize(response *selectResponse, services []catalog.Service, dedup DedupContext) *DayPlan {
	plan := &DayPlan{
		DayTheme:       strings.TrimSpace(response.DayTheme),
		LogisticsNotes: strings.TrimSpace(response.LogisticsNotes),
	}

	byID := lo.SliceToMap(services, func(svc catalog.Service) (string, catalog.Service) {
		return svc.ID, svc
	})

	for _, sel := range response.SelectedServices {
		svc, ok := byID[sel.ServiceID]
		if !ok {
			slog.Debug("Selector referenced unknown service, skipping", "serviceId", sel.ServiceID)
			continue
		}

		if !dedup.AllowRepeats && dedup.UsedServices[sel.ServiceID] {
			slog.Debug("Selector repeated a used service, skipping", "serviceId", sel.ServiceID)
			continue
		}

		plan.SelectedServices = append(plan.SelectedServices, Enrich(ServiceSelection{
			ServiceID:         sel.ServiceID,
			TimeSlot:          sel.TimeSlot,
			Reason:            sel.Reason,
			EstimatedDuration: sel.EstimatedDuration,
			GroupSuitability:  sel.GroupSuitability,
		}, svc))
	}

	return plan
}

// Enrich copies the denormalized catalog fields onto a selection. Name,
// category, price, duration and image always mirror the catalog item.
func Enrich(sel ServiceSelection, svc catalog.Service) ServiceSelection {
	sel.ServiceName = svc.Name
	sel.Category = svc.Category
	sel.Price = svc.Price
	sel.PricePerPerson = svc.PricePerPerson
	sel.DurationHours = svc.DurationHours
	sel.ImageURL = svc.ImageURL

	return sel
}

func formatPreferences(prefs ledger.Preferences) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "destination: %s\n", prefs.Destination)
	fmt.Fprintf(&builder, "group size: %d\n", prefs.GroupSize)
	fmt.Fprintf(&builder, "dates: %s to %s\n", prefs.StartDate, prefs.EndDate)
	fmt.Fprintf(&builder, "wildness: %s\n", prefs.Wildness)
	fmt.Fprintf(&builder, "relationship: %s\n", prefs.Relationship)
	fmt.Fprintf(&builder, "interests: %s\n", strings.Join(prefs.Interests, ", "))
	fmt.Fprintf(&builder, "age range: %s\n", prefs.AgeRange)
	fmt.Fprintf(&builder, "budget: %s\n", prefs.Budget)

	return builder.String()
}

func joinSlots(slots []TimeSlot) string {
	parts := lo.Map(slots, func(slot TimeSlot, _ int) string {
		return string(slot)
	})

	return strings.Join(parts, ", ")
}

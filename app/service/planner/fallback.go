package planner

import (
	"fmt"
	"strings"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/service/ledger"
	"github.com/DBravy/connected-chatbot-sub000/app/service/match"

	"github.com/elliotchance/pie/v2"
)

var nightlifeWords = []string{"bar", "club", "nightlife", "comedy", "music", "casino", "karaoke"}

// FallbackPlan is the deterministic selector used when the collaborator
// fails: one restaurant for the evening, one nightlife pick for the night,
// one daytime activity, each the best keyword/price match in its bucket.
func FallbackPlan(services []catalog.Service, prefs ledger.Preferences, day DayDescriptor, dedup DedupContext) *DayPlan {
	available := pie.Filter(services, func(svc catalog.Service) bool {
		return dedup.AllowRepeats || !dedup.UsedServices[svc.ID]
	})

	keywords := append([]string{}, prefs.Interests...)
	keywords = append(keywords, match.Keywords(dedup.UserExplicitRequest)...)

	plan := &DayPlan{
		DayTheme: fmt.Sprintf("Day %d essentials", day.DayNumber+1),
	}

	picked := map[string]bool{}

	restaurants := pie.Filter(available, isRestaurant)
	if svc, ok := pickBest(restaurants, keywords); ok {
		plan.SelectedServices = append(plan.SelectedServices, fallbackSelection(svc, SlotEvening, "group dinner"))
		picked[svc.ID] = true
	}

	nightlife := pie.Filter(available, func(svc catalog.Service) bool {
		return !picked[svc.ID] && isNightlife(svc)
	})
	if svc, ok := pickBest(nightlife, keywords); ok {
		plan.SelectedServices = append(plan.SelectedServices, fallbackSelection(svc, SlotNight, "night out"))
		picked[svc.ID] = true
	}

	activities := pie.Filter(available, func(svc catalog.Service) bool {
		return !picked[svc.ID] && !isRestaurant(svc) && !isNightlife(svc)
	})
	if svc, ok := pickBest(activities, keywords); ok {
		plan.SelectedServices = append(plan.SelectedServices, fallbackSelection(svc, SlotAfternoon, "daytime activity"))
	}

	return plan
}

// pickBest prefers keyword relevance, then price. With no keyword signal it
// falls back to the cheapest item in the bucket.
func pickBest(services []catalog.Service, keywords []string) (catalog.Service, bool) {
	if len(services) == 0 {
		return catalog.Service{}, false
	}

	if svc, ok := match.Best(services, keywords, ""); ok {
		return svc, true
	}

	cheapestIndex := 0
	for i, svc := range services {
		if svc.Price < services[cheapestIndex].Price {
			cheapestIndex = i
		}
	}

	return services[cheapestIndex], true
}

func fallbackSelection(svc catalog.Service, slot TimeSlot, reason string) ServiceSelection {
	return Enrich(ServiceSelection{
		ServiceID: svc.ID,
		TimeSlot:  slot,
		Reason:    reason,
	}, svc)
}

func isRestaurant(svc catalog.Service) bool {
	category := strings.ToLower(svc.Category)

	return strings.Contains(category, "restaurant") ||
		strings.Contains(category, "dining") ||
		strings.Contains(category, "food")
}

func isNightlife(svc catalog.Service) bool {
	category := strings.ToLower(svc.Category)

	for _, word := range nightlifeWords {
		if strings.Contains(category, word) {
			return true
		}
	}

	return false
}

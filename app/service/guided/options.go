package guided

import (
	"strings"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/service/match"

	"github.com/elliotchance/pie/v2"
)

const maxCatalogOptions = 3

// Each step looks for catalog items by name/category pattern and falls
// back to literal options when the catalog has nothing that fits, so the
// flow always presents a full choice set.

func morningOptions(services []catalog.Service) []Option {
	options := catalogOptions(services, []string{"brunch", "breakfast", "coffee", "pool", "spa", "kayak", "outdoor"}, "")

	return withFallbacks(options, []Option{
		{Token: "easy_brunch", Label: "Easy brunch somewhere chill"},
		{Token: "get_moving", Label: "Something active outside"},
		{Token: "sleep_in", Label: "Sleep in and regroup at noon"},
	})
}

func dinnerOptions(services []catalog.Service) []Option {
	options := catalogOptions(services, []string{"steak", "bbq", "tacos", "dinner"}, "restaurant")

	return withFallbacks(options, []Option{
		{Token: "steakhouse", Label: "Big group steakhouse dinner"},
		{Token: "tex_mex", Label: "Tex-Mex feast"},
		{Token: "food_trucks", Label: "Food truck crawl"},
	})
}

func nightOptions(services []catalog.Service) []Option {
	options := catalogOptions(services, []string{"bar", "club", "comedy", "karaoke", "music"}, "nightlife")

	return withFallbacks(options, []Option{
		{Token: "bar_crawl", Label: "Classic bar crawl"},
		{Token: "live_music", Label: "Live music night"},
		{Token: "chill_night", Label: "Low-key night, save energy"},
	})
}

// catalogOptions ranks the catalog against the step's patterns and turns
// the best hits into options with deterministic tokens.
func catalogOptions(services []catalog.Service, keywords []string, categoryHint string) []Option {
	scored := pie.Filter(services, func(svc catalog.Service) bool {
		return match.Score(svc, keywords, categoryHint) > 0
	})

	scored = pie.SortUsing(scored, func(a, b catalog.Service) bool {
		scoreA := match.Score(a, keywords, categoryHint)
		scoreB := match.Score(b, keywords, categoryHint)
		if scoreA != scoreB {
			return scoreA > scoreB
		}
		return a.Price < b.Price
	})

	if len(scored) > maxCatalogOptions {
		scored = scored[:maxCatalogOptions]
	}

	var options []Option
	seen := map[string]bool{}

	for _, svc := range scored {
		token := optionToken(svc.Name)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true

		options = append(options, Option{
			Token:     token,
			Label:     svc.Name,
			ServiceID: svc.ID,
		})
	}

	return options
}

func withFallbacks(options, fallbacks []Option) []Option {
	if len(options) >= maxCatalogOptions {
		return options
	}

	seen := map[string]bool{}
	for _, option := range options {
		seen[option.Token] = true
	}

	for _, fallback := range fallbacks {
		if len(options) >= maxCatalogOptions {
			break
		}
		if seen[fallback.Token] {
			continue
		}
		options = append(options, fallback)
	}

	return options
}

func optionToken(name string) string {
	return normalizeToken(strings.Join(strings.Fields(name), " "))
}

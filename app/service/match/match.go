// Package match scores catalog services against free-text keywords and
// category hints. It is deliberately pure: the planner fallback, the edit
// engine and the guided flows all rank with it, none of them own it.
package match

import (
	"strings"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
)

const (
	nameHitWeight        = 3
	categoryHitWeight    = 2
	descriptionHitWeight = 1
	categoryHintWeight   = 4
)

// Score rates how well a service fits the given keywords and category hint.
// Zero means no signal at all.
func Score(svc catalog.Service, keywords []string, categoryHint string) int {
	name := strings.ToLower(svc.Name)
	category := strings.ToLower(svc.Category)
	description := strings.ToLower(svc.Description)

	score := 0

	for _, raw := range keywords {
		keyword := strings.ToLower(strings.TrimSpace(raw))
		if keyword == "" {
			continue
		}

		if strings.Contains(name, keyword) {
			score += nameHitWeight
		}
		if strings.Contains(category, keyword) {
			score += categoryHitWeight
		}
		if strings.Contains(description, keyword) {
			score += descriptionHitWeight
		}
	}

	if categoryHint != "" && strings.Contains(category, strings.ToLower(categoryHint)) {
		score += categoryHintWeight
	}

	return score
}

// Best returns the highest scoring service; ties break toward the cheaper
// item, then catalog order. ok is false when nothing scored above zero.
func Best(services []catalog.Service, keywords []string, categoryHint string) (catalog.Service, bool) {
	bestScore := 0
	bestIndex := -1

	for i, svc := range services {
		score := Score(svc, keywords, categoryHint)
		if score == 0 {
			continue
		}

		if bestIndex < 0 || score > bestScore ||
			(score == bestScore && svc.Price < services[bestIndex].Price) {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex < 0 {
		return catalog.Service{}, false
	}

	return services[bestIndex], true
}

// Keywords splits free text into lowercase tokens worth matching on,
// dropping short stopwords.
func Keywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	var keywords []string
	for _, field := range fields {
		if len(field) < 3 || stopwords[field] {
			continue
		}
		keywords = append(keywords, field)
	}

	return keywords
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "our": true, "you": true, "can": true, "add": true,
	"want": true, "like": true, "some": true, "something": true,
	"instead": true, "please": true, "maybe": true, "about": true,
	"day": true, "from": true, "more": true, "less": true, "get": true,
	"have": true, "there": true, "would": true, "could": true,
}

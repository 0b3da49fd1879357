package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

// planningIntent is the deterministic pre-classification of a message in
// the planning and standby phases. The reducer is only consulted when this
// comes back unknown.
type planningIntent string

const (
	intentApprove  planningIntent = "approve"
	intentNavigate planningIntent = "navigate"
	intentEdit     planningIntent = "edit"
	intentUnknown  planningIntent = "unknown"
)

var approvalWords = []string{
	"sounds good", "looks good", "looks great", "perfect", "love it",
	"approve", "approved", "lgtm", "book it", "lock it in", "next day",
	"that works", "let's do it", "lets do it", "yep", "yes",
}

var editWords = []string{
	"swap", "replace", "remove", "instead", "change", "drop",
	"different", "move ", "add ", "switch", "take out", "get rid",
}

var navigateWords = []string{
	"show me", "show day", "go to", "go back", "what about day",
	"what's day", "whats day", "look at day", "see day",
}

var dayNumberPattern = regexp.MustCompile(`day\s+(\d{1,2})`)

var ordinalDays = map[string]int{
	"first": 0, "second": 1, "third": 2, "fourth": 3,
	"fifth": 4, "sixth": 5, "seventh": 6,
}

// classifyPlanningIntent resolves the approval/navigation/edit ambiguity
// with fixed precedence: edit phrasing wins outright; then an approval
// phrase approves unless the message targets a specific day other than the
// current or next one, in which case it is navigation. "day 1 sounds good,
// next day" approves; "actually show me day 3" navigates.
func classifyPlanningIntent(message string, currentDay, totalDays int) (planningIntent, int, bool) {
	lowered := strings.ToLower(message)

	target, hasTarget := parseDayReference(lowered, currentDay, totalDays)

	for _, word := range editWords {
		if strings.Contains(lowered, word) {
			return intentEdit, target, hasTarget
		}
	}

	hasApproval := false
	for _, word := range approvalWords {
		if strings.Contains(lowered, word) {
			hasApproval = true
			break
		}
	}

	hasNavigation := false
	for _, word := range navigateWords {
		if strings.Contains(lowered, word) {
			hasNavigation = true
			break
		}
	}

	if hasApproval {
		if !hasTarget || target == currentDay || target == currentDay+1 {
			return intentApprove, currentDay, true
		}
		return intentNavigate, target, true
	}

	if hasNavigation && hasTarget {
		return intentNavigate, target, true
	}
	if hasNavigation {
		return intentNavigate, currentDay, false
	}

	return intentUnknown, target, hasTarget
}

// parseDayReference reads "day 2", ordinal phrasings, "tomorrow" and
// "today" into a 0-based day index. Unresolvable or out-of-range
// references report !ok and the caller falls back to the current day.
func parseDayReference(lowered string, currentDay, totalDays int) (int, bool) {
	if m := dayNumberPattern.FindStringSubmatch(lowered); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return clampDay(n-1, totalDays)
		}
	}

	for word, index := range ordinalDays {
		if strings.Contains(lowered, word+" day") || strings.Contains(lowered, "the "+word) {
			return clampDay(index, totalDays)
		}
	}

	if strings.Contains(lowered, "last day") {
		return clampDay(totalDays-1, totalDays)
	}

	if strings.Contains(lowered, "tomorrow") {
		return clampDay(currentDay+1, totalDays)
	}

	if strings.Contains(lowered, "today") || strings.Contains(lowered, "this day") {
		return clampDay(currentDay, totalDays)
	}

	return 0, false
}

func clampDay(day, totalDays int) (int, bool) {
	if day < 0 || (totalDays > 0 && day >= totalDays) {
		return 0, false
	}

	return day, true
}

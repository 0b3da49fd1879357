package conversation

import "testing"

func TestClassifyPlanningIntent(t *testing.T) {
	cases := []struct {
		name       string
		message    string
		currentDay int
		totalDays  int
		wantIntent planningIntent
		wantTarget int
		wantHas    bool
	}{
		{"plain approval", "sounds good!", 0, 3, intentApprove, 0, true},
		{"approval of current day by number", "day 1 sounds good, next day", 0, 3, intentApprove, 0, true},
		{"approval mentioning tomorrow", "perfect, on to tomorrow", 0, 3, intentApprove, 0, true},
		{"approval of a distant day is navigation", "day 3 looks good", 0, 3, intentNavigate, 2, true},
		{"explicit navigation", "show me day 3", 0, 3, intentNavigate, 2, true},
		{"navigation without a day", "show me", 0, 3, intentNavigate, 0, false},
		{"ordinal navigation", "show me the second day", 0, 3, intentNavigate, 1, true},
		{"edit beats approval", "looks good but swap the comedy club", 0, 3, intentEdit, 0, false},
		{"edit with day target", "replace the bar on day 2", 0, 3, intentEdit, 1, true},
		{"chitchat is unknown", "how hot is it there in september?", 0, 3, intentUnknown, 0, false},
		{"out of range day dropped", "show me day 9", 0, 3, intentNavigate, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent, target, has := classifyPlanningIntent(tc.message, tc.currentDay, tc.totalDays)
			if intent != tc.wantIntent || target != tc.wantTarget || has != tc.wantHas {
				t.Errorf("got (%s, %d, %v), want (%s, %d, %v)",
					intent, target, has, tc.wantIntent, tc.wantTarget, tc.wantHas)
			}
		})
	}
}

func TestParseDayReference(t *testing.T) {
	cases := []struct {
		message    string
		currentDay int
		totalDays  int
		want       int
		ok         bool
	}{
		{"day 2 please", 0, 3, 1, true},
		{"the first one", 1, 3, 0, true},
		{"last day", 0, 4, 3, true},
		{"tomorrow", 1, 3, 2, true},
		{"tomorrow", 2, 3, 0, false}, // past the end
		{"today", 1, 3, 1, true},
		{"day 0", 0, 3, 0, false},
		{"no reference here", 0, 3, 0, false},
	}

	for _, tc := range cases {
		got, ok := parseDayReference(tc.message, tc.currentDay, tc.totalDays)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parseDayReference(%q, %d, %d) = (%d, %v), want (%d, %v)",
				tc.message, tc.currentDay, tc.totalDays, got, ok, tc.want, tc.ok)
		}
	}
}

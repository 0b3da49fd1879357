package match

import (
	"reflect"
	"testing"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
)

var fixtures = []catalog.Service{
	{ID: "svc-steak", Name: "Steakhouse 77", Category: "restaurant", Price: 120, Description: "prime cuts for big groups"},
	{ID: "svc-bbq", Name: "BBQ Joint", Category: "restaurant", Price: 45, Description: "brisket and ribs"},
	{ID: "svc-comedy", Name: "Comedy Cellar", Category: "comedy club", Price: 30, Description: "standup showcase"},
	{ID: "svc-kayak", Name: "Kayak Tour", Category: "outdoor activity", Price: 60, Description: "paddle the river"},
}

func TestScore(t *testing.T) {
	cases := []struct {
		name     string
		svc      catalog.Service
		keywords []string
		hint     string
		want     int
	}{
		{"name hit", fixtures[0], []string{"steakhouse"}, "", 3},
		{"category hit", fixtures[1], []string{"restaurant"}, "", 2},
		{"description hit", fixtures[1], []string{"brisket"}, "", 1},
		{"hint hit", fixtures[2], nil, "comedy", 4},
		{"stacked hits", fixtures[1], []string{"bbq"}, "restaurant", 8},
		{"case insensitive", fixtures[0], []string{"STEAK"}, "", 3},
		{"no signal", fixtures[3], []string{"pizza"}, "", 0},
		{"blank keyword ignored", fixtures[0], []string{"  "}, "", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.svc, tc.keywords, tc.hint); got != tc.want {
				t.Errorf("Score = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBest(t *testing.T) {
	svc, ok := Best(fixtures, []string{"kayak"}, "")
	if !ok || svc.ID != "svc-kayak" {
		t.Errorf("expected svc-kayak, got %q (ok=%v)", svc.ID, ok)
	}

	// Equal scores break toward the cheaper service.
	svc, ok = Best(fixtures, nil, "restaurant")
	if !ok || svc.ID != "svc-bbq" {
		t.Errorf("expected cheaper restaurant svc-bbq, got %q (ok=%v)", svc.ID, ok)
	}

	if _, ok = Best(fixtures, []string{"spaceship"}, ""); ok {
		t.Error("zero-score pool must report no match")
	}

	if _, ok = Best(nil, []string{"steak"}, ""); ok {
		t.Error("empty pool must report no match")
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("Can you add some LIVE music instead of the bar?")
	want := []string{"live", "music", "bar"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords = %v, want %v", got, want)
	}

	if kw := Keywords("to a of"); kw != nil {
		t.Errorf("short tokens should be dropped, got %v", kw)
	}
}

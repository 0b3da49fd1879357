package editor

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/service/match"
	"github.com/DBravy/connected-chatbot-sub000/app/service/planner"
)

var nightlifeWords = []string{"bar", "club", "nightlife", "comedy", "music", "casino", "karaoke"}

// Apply is the deterministic local interpreter: it executes every
// operation of the directive against a copy of the day plan. It is the
// stage-2 fallback when the rewrite collaborator is unavailable.
func Apply(day *planner.DayPlan, directive *Directive, services []catalog.Service) *planner.DayPlan {
	result := day.Clone()
	if result == nil {
		result = &planner.DayPlan{}
	}

	for _, op := range directive.Ops {
		switch op.Kind {
		case OpRemoveActivity:
			result.SelectedServices = applyRemove(result.SelectedServices, op)
		case OpSubstituteService:
			result.SelectedServices = applySubstitute(result.SelectedServices, op, services)
		case OpReplaceActivity:
			result.SelectedServices = applyReplace(result.SelectedServices, op, services)
		case OpAddActivity:
			result.SelectedServices = applyAdd(result.SelectedServices, op, services)
		case OpAdjustTime:
			applyAdjustTime(result.SelectedServices, op)
		case OpReorder:
			applyReorder(result.SelectedServices, op.SlotOrder)
		case OpSetConstraint:
			if op.Constraint != "" {
				if result.LogisticsNotes != "" {
					result.LogisticsNotes += "; "
				}
				result.LogisticsNotes += op.Constraint
			}
		default:
			slog.Debug("Skipping unknown edit operation", "type", op.Kind)
		}
	}

	return result
}

// matchesAllTargets checks every target field the operation actually
// provides, independently. An operation with no target fields matches
// nothing: removals never fire on ambiguity.
func matchesAllTargets(sel planner.ServiceSelection, op Operation) bool {
	provided := false

	if op.TargetID != "" {
		provided = true
		if sel.ServiceID != op.TargetID {
			return false
		}
	}

	if op.TargetName != "" {
		provided = true
		if !containsFold(sel.ServiceName, op.TargetName) {
			return false
		}
	}

	if op.TargetCategory != "" {
		provided = true
		if !containsFold(sel.Category, op.TargetCategory) {
			return false
		}
	}

	if op.TargetTime != "" {
		provided = true
		if sel.TimeSlot != op.TargetTime {
			return false
		}
	}

	return provided
}

func applyRemove(entries []planner.ServiceSelection, op Operation) []planner.ServiceSelection {
	var kept []planner.ServiceSelection
	for _, sel := range entries {
		if matchesAllTargets(sel, op) {
			continue
		}
		kept = append(kept, sel)
	}

	return kept
}

// findTarget locates the entry to change: id, then name substring, then
// category, then time slot. Each criterion is tried in isolation.
func findTarget(entries []planner.ServiceSelection, op Operation) int {
	if op.TargetID != "" {
		for i, sel := range entries {
			if sel.ServiceID == op.TargetID {
				return i
			}
		}
	}

	if op.TargetName != "" {
		for i, sel := range entries {
			if containsFold(sel.ServiceName, op.TargetName) {
				return i
			}
		}
	}

	if op.TargetCategory != "" {
		for i, sel := range entries {
			if containsFold(sel.Category, op.TargetCategory) {
				return i
			}
		}
	}

	if op.TargetTime != "" {
		for i, sel := range entries {
			if sel.TimeSlot == op.TargetTime {
				return i
			}
		}
	}

	return -1
}

// lastNightlife is the final substitution fallback: the last entry that
// looks like a night-out pick.
func lastNightlife(entries []planner.ServiceSelection) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if isNightlifeEntry(entries[i]) {
			return i
		}
	}

	return -1
}

func applySubstitute(entries []planner.ServiceSelection, op Operation, services []catalog.Service) []planner.ServiceSelection {
	index := findTarget(entries, op)
	if index < 0 {
		index = lastNightlife(entries)
	}
	if index < 0 {
		return entries
	}

	svc, ok := resolveItem(op, services)
	if !ok {
		return entries
	}

	slot := entries[index].TimeSlot
	if op.NewTime != "" {
		slot = op.NewTime
	}

	replacement := planner.Enrich(planner.ServiceSelection{
		ServiceID: svc.ID,
		TimeSlot:  slot,
		Reason:    "swapped in on request",
	}, svc)

	if duplicateAt(entries, replacement, index) {
		return entries
	}

	entries[index] = replacement

	return entries
}

func applyReplace(entries []planner.ServiceSelection, op Operation, services []catalog.Service) []planner.ServiceSelection {
	svc, ok := resolveItem(op, services)
	if !ok {
		return entries
	}

	slot := op.NewTime

	index := findItemLevelTarget(entries, op)
	if index >= 0 {
		if slot == "" {
			slot = entries[index].TimeSlot
		}
		entries = append(entries[:index], entries[index+1:]...)
	} else if op.TargetTime != "" {
		// No item-level match: clear the targeted slot instead.
		if slot == "" {
			slot = op.TargetTime
		}
		entries = applyRemove(entries, Operation{Kind: OpRemoveActivity, TargetTime: op.TargetTime})
	}

	if slot == "" {
		slot = inferSlot(svc)
	}

	return appendUnique(entries, planner.Enrich(planner.ServiceSelection{
		ServiceID: svc.ID,
		TimeSlot:  slot,
		Reason:    "replaced on request",
	}, svc))
}

func applyAdd(entries []planner.ServiceSelection, op Operation, services []catalog.Service) []planner.ServiceSelection {
	svc, ok := resolveItem(op, services)
	if !ok {
		return entries
	}

	slot := op.NewTime
	if slot == "" {
		slot = op.TargetTime
	}
	if slot == "" {
		slot = inferSlot(svc)
	}

	return appendUnique(entries, planner.Enrich(planner.ServiceSelection{
		ServiceID: svc.ID,
		TimeSlot:  slot,
		Reason:    "added on request",
	}, svc))
}

func applyAdjustTime(entries []planner.ServiceSelection, op Operation) {
	if op.NewTime == "" {
		return
	}

	index := findTarget(entries, op)
	if index < 0 {
		return
	}

	entries[index].TimeSlot = op.NewTime
}

// applyReorder sorts entries by slot position in the supplied sequence.
// Slots missing from the sequence sort last in original relative order.
func applyReorder(entries []planner.ServiceSelection, order []planner.TimeSlot) {
	if len(order) == 0 {
		order = planner.DefaultSlotOrder
	}

	position := make(map[planner.TimeSlot]int, len(order))
	for i, slot := range order {
		position[slot] = i
	}

	sort.SliceStable(entries, func(i, j int) bool {
		pi, iKnown := position[entries[i].TimeSlot]
		pj, jKnown := position[entries[j].TimeSlot]

		if !iKnown {
			pi = len(order)
		}
		if !jKnown {
			pj = len(order)
		}

		return pi < pj
	})
}

// findItemLevelTarget matches by identity only (id, name, category), not
// by time slot; replace treats a bare slot match differently.
func findItemLevelTarget(entries []planner.ServiceSelection, op Operation) int {
	itemOp := Operation{
		TargetID:       op.TargetID,
		TargetName:     op.TargetName,
		TargetCategory: op.TargetCategory,
	}

	return findTarget(entries, itemOp)
}

// resolveItem finds the incoming catalog item: explicit id, then exact
// name, then keyword+category scoring.
func resolveItem(op Operation, services []catalog.Service) (catalog.Service, bool) {
	if op.NewID != "" {
		for _, svc := range services {
			if svc.ID == op.NewID {
				return svc, true
			}
		}
	}

	if op.NewName != "" {
		for _, svc := range services {
			if strings.EqualFold(svc.Name, op.NewName) {
				return svc, true
			}
		}
	}

	keywords := append([]string{}, op.Keywords...)
	if op.NewName != "" {
		keywords = append(keywords, match.Keywords(op.NewName)...)
	}

	return match.Best(services, keywords, op.CategoryHint)
}

// appendUnique adds an entry unless the same service already sits in the
// same time slot.
func appendUnique(entries []planner.ServiceSelection, sel planner.ServiceSelection) []planner.ServiceSelection {
	if duplicateAt(entries, sel, -1) {
		return entries
	}

	return append(entries, sel)
}

func duplicateAt(entries []planner.ServiceSelection, sel planner.ServiceSelection, ignoreIndex int) bool {
	for i, existing := range entries {
		if i == ignoreIndex {
			continue
		}
		if existing.ServiceID == sel.ServiceID && existing.TimeSlot == sel.TimeSlot {
			return true
		}
	}

	return false
}

func inferSlot(svc catalog.Service) planner.TimeSlot {
	category := strings.ToLower(svc.Category)

	for _, word := range nightlifeWords {
		if strings.Contains(category, word) {
			return planner.SlotNight
		}
	}

	if strings.Contains(category, "restaurant") ||
		strings.Contains(category, "dining") ||
		strings.Contains(category, "food") {
		return planner.SlotEvening
	}

	return planner.SlotAfternoon
}

func isNightlifeEntry(sel planner.ServiceSelection) bool {
	if sel.TimeSlot == planner.SlotNight || sel.TimeSlot == planner.SlotLateNight {
		return true
	}

	category := strings.ToLower(sel.Category)
	for _, word := range nightlifeWords {
		if strings.Contains(category, word) {
			return true
		}
	}

	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

package availability

import (
	"fmt"
	"sort"
	"strings"

	"thuere/models"
)

// BuildTimeGroups merges the flat per-court slot list into time groups,
// one per (play_date, start_time, end_time) window, sorted by date then
// start time. When an authoritative court roster is supplied, courts the
// upstream omitted are synthesized as available placeholders; without a
// roster the group keeps whatever court entries were present.
func BuildTimeGroups(rawSlots []models.RawSlot, fieldQuantities []models.FieldQuantity) []models.TimeGroup {
	if len(rawSlots) == 0 {
		return nil
	}

	type groupAccum struct {
		aggregate *models.RawSlot
		courts    []models.RawSlot
		template  models.RawSlot
	}

	accums := make(map[string]*groupAccum)
	var order []string
	for _, slot := range rawSlots {
		key := groupKey(slot.PlayDate, slot.StartTime, slot.EndTime)
		acc, ok := accums[key]
		if !ok {
			acc = &groupAccum{template: slot}
			accums[key] = acc
			order = append(order, key)
		}
		if slot.QuantityID == nil {
			s := slot
			acc.aggregate = &s
		} else {
			acc.courts = append(acc.courts, slot)
		}
	}

	groups := make([]models.TimeGroup, 0, len(order))
	for _, key := range order {
		acc := accums[key]
		courts := acc.courts

		if len(fieldQuantities) > 0 {
			courts = synthesizeMissingCourts(courts, fieldQuantities, acc.template)
		}
		sort.SliceStable(courts, func(i, j int) bool {
			return courtSortValue(courts[i]) < courtSortValue(courts[j])
		})

		base := acc.template
		if acc.aggregate != nil {
			base = *acc.aggregate
		}

		groups = append(groups, models.TimeGroup{
			Key:           key,
			PlayDate:      acc.template.PlayDate,
			StartTime:     acc.template.StartTime,
			EndTime:       acc.template.EndTime,
			BaseSlot:      base,
			Courts:        courts,
			IsFullyBooked: isFullyBooked(courts),
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].PlayDate != groups[j].PlayDate {
			return groups[i].PlayDate < groups[j].PlayDate
		}
		return groups[i].StartTime < groups[j].StartTime
	})
	return groups
}

func groupKey(playDate, startTime, endTime string) string {
	return fmt.Sprintf("%s|%s|%s", playDate, startTime, endTime)
}

// synthesizeMissingCourts fills the gap left by an upstream that only
// reports non-default court states. Placeholders get a deterministic
// negative id derived from the template slot so they can never collide
// with a real id.
func synthesizeMissingCourts(courts []models.RawSlot, roster []models.FieldQuantity, template models.RawSlot) []models.RawSlot {
	present := make(map[int]struct{}, len(courts))
	for _, c := range courts {
		if c.QuantityID != nil {
			present[*c.QuantityID] = struct{}{}
		}
	}

	templateID := template.SlotID
	if templateID < 0 {
		templateID = -templateID
	}

	for _, q := range roster {
		if _, ok := present[q.QuantityID]; ok {
			continue
		}
		qid := q.QuantityID
		qnum := q.QuantityNumber
		courts = append(courts, models.RawSlot{
			SlotID:         -(templateID*1000 + qid),
			FieldCode:      template.FieldCode,
			PlayDate:       template.PlayDate,
			StartTime:      template.StartTime,
			EndTime:        template.EndTime,
			QuantityID:     &qid,
			QuantityNumber: &qnum,
			Status:         "available",
			Synthetic:      true,
		})
	}
	return courts
}

func courtSortValue(slot models.RawSlot) int {
	if slot.QuantityNumber != nil {
		return *slot.QuantityNumber
	}
	if slot.QuantityID != nil {
		return *slot.QuantityID
	}
	return int(^uint(0) >> 1)
}

// isFullyBooked holds iff the group has courts and none of them reports
// the raw status "available". A group without per-court data is never
// fully booked, the aggregate slot stays selectable.
func isFullyBooked(courts []models.RawSlot) bool {
	if len(courts) == 0 {
		return false
	}
	for _, c := range courts {
		if strings.ToLower(strings.TrimSpace(c.Status)) == "available" {
			return false
		}
	}
	return true
}

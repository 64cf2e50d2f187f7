package selection

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"thuere/models"
)

// Engine tracks a user's multi-slot selection against the current time
// groups. All derived values (contiguity, duration, windows) are
// recomputed from the source state on every read.
type Engine struct {
	mu       sync.Mutex
	groups   []models.TimeGroup
	byBaseID map[int]models.TimeGroup
	selected []int
}

func NewEngine() *Engine {
	return &Engine{byBaseID: make(map[int]models.TimeGroup)}
}

// SetGroups replaces the visible time groups and prunes selected ids that
// no longer resolve (date change, refreshed schedule).
func (e *Engine) SetGroups(groups []models.TimeGroup) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.groups = groups
	e.byBaseID = make(map[int]models.TimeGroup, len(groups))
	for _, g := range groups {
		e.byBaseID[g.BaseSlot.SlotID] = g
	}
	e.selected = e.rebuildLocked(e.selected)
}

// SetSelected restores a previously persisted selection, pruned and
// re-sorted against the current groups.
func (e *Engine) SetSelected(slotIDs []int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = e.rebuildLocked(slotIDs)
}

// Toggle adds or removes a base slot id. Toggling a fully booked group is
// a no-op; the return value reports whether anything changed.
func (e *Engine) Toggle(slotID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	group, ok := e.byBaseID[slotID]
	if !ok || group.IsFullyBooked {
		return false
	}

	next := make([]int, 0, len(e.selected)+1)
	removed := false
	for _, id := range e.selected {
		if id == slotID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		next = append(next, slotID)
	}
	e.selected = e.rebuildLocked(next)
	return true
}

// Prefill greedily collects consecutive slots starting at (date, startTime)
// until durationHours is exactly met. A gap or an inexact total abandons
// the prefill and leaves the selection empty.
func (e *Engine) Prefill(date, startTime string, durationHours float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	requiredMinutes := int(durationHours * 60)
	if requiredMinutes <= 0 {
		e.selected = nil
		return false
	}

	byStart := make(map[string]models.TimeGroup)
	for _, g := range e.groups {
		if g.PlayDate == date {
			byStart[g.StartTime] = g
		}
	}

	var ids []int
	total := 0
	cursor := startTime
	for {
		group, ok := byStart[cursor]
		if !ok || group.IsFullyBooked {
			e.selected = nil
			return false
		}
		minutes, err := windowMinutes(group.StartTime, group.EndTime)
		if err != nil || minutes <= 0 {
			e.selected = nil
			return false
		}
		ids = append(ids, group.BaseSlot.SlotID)
		total += minutes
		if total == requiredMinutes {
			e.selected = e.rebuildLocked(ids)
			return true
		}
		if total > requiredMinutes {
			// Partial or approximate matches are rejected, not rounded.
			e.selected = nil
			return false
		}
		cursor = group.EndTime
	}
}

// Selected returns the chosen base slots sorted by start time.
func (e *Engine) Selected() []models.RawSlot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedSlotsLocked()
}

// SelectedIDs returns the chosen base slot ids in start-time order.
func (e *Engine) SelectedIDs() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.selected...)
}

// View is the recomputed selection summary.
type View struct {
	Slots        []models.RawSlot `json:"slots"`
	IsContiguous bool             `json:"isContiguous"`
	TotalHours   float64          `json:"totalHours"`
	NeedsCourt   bool             `json:"needsCourt"`
	Windows      []Window         `json:"windows"`
}

// Window is one unique selected time window.
type Window struct {
	PlayDate  string `json:"play_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// View computes the current selection summary. Duration is the sum of each
// slot's own duration, the only correct measure for non-contiguous
// selections.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	slots := e.selectedSlotsLocked()
	view := View{Slots: slots, IsContiguous: true}

	totalMinutes := 0
	for i, s := range slots {
		if minutes, err := windowMinutes(s.StartTime, s.EndTime); err == nil {
			totalMinutes += minutes
		}
		if i > 0 && slots[i-1].EndTime != s.StartTime {
			view.IsContiguous = false
		}
		view.Windows = append(view.Windows, Window{
			PlayDate:  s.PlayDate,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		})
		if group, ok := e.byBaseID[s.SlotID]; ok && len(group.Courts) > 0 {
			view.NeedsCourt = true
		}
	}
	view.TotalHours = float64(totalMinutes) / 60.0
	return view
}

// rebuildLocked re-resolves ids against the current base slots, drops any
// that vanished and re-sorts by start time.
func (e *Engine) rebuildLocked(ids []int) []int {
	type resolved struct {
		id    int
		start string
		date  string
	}
	seen := make(map[int]struct{}, len(ids))
	var kept []resolved
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		group, ok := e.byBaseID[id]
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, resolved{id: id, start: group.StartTime, date: group.PlayDate})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].date != kept[j].date {
			return kept[i].date < kept[j].date
		}
		return kept[i].start < kept[j].start
	})
	result := make([]int, len(kept))
	for i, r := range kept {
		result[i] = r.id
	}
	return result
}

func (e *Engine) selectedSlotsLocked() []models.RawSlot {
	slots := make([]models.RawSlot, 0, len(e.selected))
	for _, id := range e.selected {
		if group, ok := e.byBaseID[id]; ok {
			slots = append(slots, group.BaseSlot)
		}
	}
	return slots
}

// parseClockMinutes converts "HH:MM" to minutes from midnight.
func parseClockMinutes(clock string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	return hours*60 + minutes, nil
}

func windowMinutes(startTime, endTime string) (int, error) {
	start, err := parseClockMinutes(startTime)
	if err != nil {
		return 0, err
	}
	end, err := parseClockMinutes(endTime)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

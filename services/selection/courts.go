package selection

import (
	"context"
	"sort"
	"sync"

	"thuere/models"
	"thuere/services/availability"
)

// WindowSource fetches the authoritative court availability for one time
// window.
type WindowSource interface {
	AvailableQuantities(ctx context.Context, fieldCode, date, startTime, endTime string) (*models.WindowQuantities, error)
}

// ResolveCourtOptions computes the unified court list valid across every
// selected window. Window fetches run in parallel and join all-or-nothing:
// if any window fails, the whole resolution fails with that error.
//
// Per window a court is available when listed in the window's available
// set, held when its booked entry normalizes to a still-active hold, and
// booked otherwise. Across windows availability is a conjunction: a court
// must be free for the entire multi-slot booking.
func ResolveCourtOptions(
	ctx context.Context,
	src WindowSource,
	fieldCode string,
	windows []Window,
	rawSlots []models.RawSlot,
	roster []models.FieldQuantity,
) ([]models.CourtOption, error) {
	windows = dedupeWindows(windows)
	if len(windows) == 0 {
		return nil, nil
	}

	results := make([]*models.WindowQuantities, len(windows))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, w := range windows {
		wg.Add(1)
		go func(i int, w Window) {
			defer wg.Done()
			res, err := src.AvailableQuantities(ctx, fieldCode, w.PlayDate, w.StartTime, w.EndTime)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[i] = res
		}(i, w)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	// Union of known court ids across the roster and every response.
	numbers := make(map[int]int)
	for _, q := range roster {
		numbers[q.QuantityID] = q.QuantityNumber
	}
	for _, res := range results {
		for _, q := range res.AvailableQuantities {
			numbers[q.QuantityID] = q.QuantityNumber
		}
		for _, q := range res.BookedQuantities {
			numbers[q.QuantityID] = q.QuantityNumber
		}
	}

	holdMeta := collectHoldMetadata(rawSlots)

	options := make([]models.CourtOption, 0, len(numbers))
	for qid, qnum := range numbers {
		option := models.CourtOption{
			QuantityID:     qid,
			QuantityNumber: qnum,
			Status:         models.CourtAvailable,
		}
		anyHeld := false
		for i, res := range results {
			status, meta := classifyCourtInWindow(qid, res, windows[i], holdMeta)
			switch status {
			case models.CourtHeld:
				anyHeld = true
				if meta != nil {
					option.HoldExpiresAt = meta.holdExpiresAt
					option.HoldExpiresAtTs = meta.holdExpiresAtTs
				}
			case models.CourtBooked:
				option.Status = models.CourtBooked
			}
		}
		if option.Status != models.CourtBooked && anyHeld {
			option.Status = models.CourtHeld
		} else if option.Status == models.CourtBooked && anyHeld {
			// Booked anywhere wins over held, drop the hold metadata.
			option.HoldExpiresAt = nil
			option.HoldExpiresAtTs = nil
		}
		options = append(options, option)
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].QuantityNumber != options[j].QuantityNumber {
			return options[i].QuantityNumber < options[j].QuantityNumber
		}
		return options[i].QuantityID < options[j].QuantityID
	})
	return options, nil
}

// PickDefaultCourt keeps the previously selected court when it is still
// available, else falls back to the first available one, else none.
func PickDefaultCourt(options []models.CourtOption, previous *int) *int {
	if previous != nil {
		for _, o := range options {
			if o.QuantityID == *previous && o.Status == models.CourtAvailable {
				id := o.QuantityID
				return &id
			}
		}
	}
	for _, o := range options {
		if o.Status == models.CourtAvailable {
			id := o.QuantityID
			return &id
		}
	}
	return nil
}

type holdInfo struct {
	holdExpiresAt   *string
	holdExpiresAtTs *float64
}

type windowCourtKey struct {
	date, start, end string
	quantityID       int
}

// collectHoldMetadata indexes still-active hold expiries observed on the
// raw slot data, keyed by window and court.
func collectHoldMetadata(rawSlots []models.RawSlot) map[windowCourtKey]holdInfo {
	meta := make(map[windowCourtKey]holdInfo)
	for _, s := range rawSlots {
		if s.QuantityID == nil {
			continue
		}
		if s.HoldExpiresAt == nil && s.HoldExpiresAtTs == nil {
			continue
		}
		if !availability.IsHoldStillActive(s.HoldExpiresAt, s.HoldExpiresAtTs) {
			continue
		}
		key := windowCourtKey{
			date:       s.PlayDate,
			start:      s.StartTime,
			end:        s.EndTime,
			quantityID: *s.QuantityID,
		}
		meta[key] = holdInfo{holdExpiresAt: s.HoldExpiresAt, holdExpiresAtTs: s.HoldExpiresAtTs}
	}
	return meta
}

// classifyCourtInWindow resolves one court's status for one window.
// Absence from both the available and booked sets fails safe to booked.
func classifyCourtInWindow(qid int, res *models.WindowQuantities, w Window, holdMeta map[windowCourtKey]holdInfo) (models.CourtStatus, *holdInfo) {
	for _, q := range res.AvailableQuantities {
		if q.QuantityID == qid {
			return models.CourtAvailable, nil
		}
	}
	for _, q := range res.BookedQuantities {
		if q.QuantityID != qid {
			continue
		}
		if availability.NormalizeCourtStatus(q.Status, q.HoldExpiresAt, q.HoldExpiresAtTs) == models.CourtHeld {
			info := holdInfo{holdExpiresAt: q.HoldExpiresAt, holdExpiresAtTs: q.HoldExpiresAtTs}
			key := windowCourtKey{date: w.PlayDate, start: w.StartTime, end: w.EndTime, quantityID: qid}
			if observed, ok := holdMeta[key]; ok {
				info = observed
			}
			return models.CourtHeld, &info
		}
		return models.CourtBooked, nil
	}
	return models.CourtBooked, nil
}

func dedupeWindows(windows []Window) []Window {
	seen := make(map[Window]struct{}, len(windows))
	var unique []Window
	for _, w := range windows {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		unique = append(unique, w)
	}
	return unique
}

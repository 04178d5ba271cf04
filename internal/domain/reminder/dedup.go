package reminder

import (
	"sort"
)

// SaveDecision is the outcome of a strict duplicate check before commit.
type SaveDecision struct {
	// Allowed is false when a record other than the one being edited already
	// holds the candidate time.
	Allowed bool
	// DeleteIDs lists redundant records that share the candidate's time beyond
	// the first by arrival order. They are left over from unchecked inserts.
	DeleteIDs []string
}

// FindDuplicates returns the records whose time equals candidate, in arrival order.
func FindDuplicates(existing []*Reminder, candidate Time) []*Reminder {
	var matches []*Reminder
	for _, r := range arrivalOrder(existing) {
		if r.Time == candidate {
			matches = append(matches, r)
		}
	}
	return matches
}

// ResolveSave runs the strict check used to enable or disable a save. When
// editingID is non-empty that record is excluded from the comparison, so
// saving a reminder onto its own time is not a conflict.
func ResolveSave(existing []*Reminder, candidate Time, editingID string) (SaveDecision, error) {
	if err := candidate.Validate(); err != nil {
		return SaveDecision{}, err
	}

	matches := FindDuplicates(existing, candidate)
	decision := SaveDecision{Allowed: true}
	for i, r := range matches {
		if r.ID != editingID {
			decision.Allowed = false
		}
		if i > 0 {
			decision.DeleteIDs = append(decision.DeleteIDs, r.ID)
		}
	}
	return decision, nil
}

// IsDuplicate is the boolean form of ResolveSave for UIs that only toggle a
// save button. Invalid candidates never count as duplicates.
func IsDuplicate(existing []*Reminder, candidate Time, editingID string) bool {
	decision, err := ResolveSave(existing, candidate, editingID)
	return err == nil && !decision.Allowed
}

// Sweep is the cleanup policy run after unconditional inserts: for every time
// it keeps the first record by arrival order and returns the ids of the rest.
func Sweep(existing []*Reminder) []string {
	seen := make(map[Time]bool, len(existing))
	var redundant []string
	for _, r := range arrivalOrder(existing) {
		if seen[r.Time] {
			redundant = append(redundant, r.ID)
			continue
		}
		seen[r.Time] = true
	}
	return redundant
}

// arrivalOrder returns a copy ordered by CreatedAt; equal timestamps keep
// their input order.
func arrivalOrder(existing []*Reminder) []*Reminder {
	ordered := make([]*Reminder, 0, len(existing))
	for _, r := range existing {
		if r != nil {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered
}

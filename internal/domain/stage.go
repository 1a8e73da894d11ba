package domain

import "time"

// StageKind identifies the action a task currently owes.
type StageKind string

// Possible stage kinds.
const (
	StageNone            StageKind = "none"
	StageInitialReminder StageKind = "initial_reminder"
	StagePreDueReminder  StageKind = "pre_due_reminder"
	StageCloseDue        StageKind = "close_due"
)

// Stage is the resolved next action for a task. Hours is only meaningful for
// StagePreDueReminder, where it names the offset being fired.
type Stage struct {
	Kind  StageKind
	Hours int
}

// NextAction resolves the action the task owes at now, evaluated in strict
// priority order:
//
//  1. Closing, once the due instant has passed and no closing ran yet.
//     Closing always wins, even if an earlier reminder was never sent,
//     because the task's active window has ended.
//  2. The initial reminder, once its instant has passed and it never fired.
//  3. Nothing, if the task is past due (closing already ran).
//  4. The most urgent unsent pre-due warning whose trigger instant has
//     arrived: among configured hours not yet in the pre-notified set with
//     dueAt - h <= now, the one with the latest trigger, i.e. the smallest
//     such h. With {24,3,1} at dueAt-3h this is PreDueReminder(3) — the 1h
//     warning has not triggered yet and the 24h warning is less urgent.
//
// Tasks that are not PENDING owe nothing.
func (t *Task) NextAction(now time.Time) Stage {
	if t.Status != TaskStatusPending {
		return Stage{Kind: StageNone}
	}

	due := !t.DueAt.After(now)

	if t.ClosedAt == nil && due {
		return Stage{Kind: StageCloseDue}
	}

	if t.NotifiedAt == nil && !t.RemindAt.After(now) {
		return Stage{Kind: StageInitialReminder}
	}

	if due {
		return Stage{Kind: StageNone}
	}

	// PreDueHours is sorted descending; walking it backwards visits hours
	// ascending, so the first unsent hour whose trigger has arrived is the
	// most urgent qualifying one.
	for i := len(t.PreDueHours) - 1; i >= 0; i-- {
		h := t.PreDueHours[i]
		if t.PreNotifiedHours.Contains(h) {
			continue
		}
		trigger := t.DueAt.Add(-time.Duration(h) * time.Hour)
		if !trigger.After(now) {
			return Stage{Kind: StagePreDueReminder, Hours: h}
		}
	}

	return Stage{Kind: StageNone}
}

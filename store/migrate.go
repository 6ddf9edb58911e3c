package store

import (
	"regexp"
	"sort"

	"github.com/radum/pontaj/internal/models"
)

// Older revisions of the persisted state logged each pause as a
// free-standing break/cigarette session whose note pointed at the parent
// work session. The current model embeds pauses in the work session
// record instead.
var legacyBreakNote = regexp.MustCompile(`^Pauză din sesiunea (\S+)$`)

// migrateLegacyBreaks upgrades free-standing break sessions into embedded
// WorkBreak records and reports how many were migrated. The note-string
// match and the timestamp-containment test are best-effort: a record that
// does not resolve cleanly to a parent is left untouched.
func migrateLegacyBreaks(state *models.TimerState) int {
	workByID := make(map[string]int)

	for i := range state.Sessions {
		sess := &state.Sessions[i]
		if sess.Type == models.Work && sess.EndedAt != nil {
			workByID[sess.ID] = i
		}
	}

	// Decide first, mutate after: embedding shifts indices, so the scan
	// must not run over a slice it is compacting.
	removed := make(map[int]bool)

	for i := range state.Sessions {
		sess := &state.Sessions[i]

		parentIdx, ok := matchLegacyBreak(sess, workByID)
		if !ok || parentIdx == i {
			continue
		}

		parent := &state.Sessions[parentIdx]

		if !containedIn(sess, parent) {
			continue
		}

		wb := models.WorkBreak{
			ID:        sess.ID,
			Type:      sess.Type,
			StartedAt: sess.StartedAt,
			EndedAt:   *sess.EndedAt,
			Duration:  *sess.EndedAt - sess.StartedAt,
		}

		if overlapsExisting(parent.Breaks, wb) {
			continue
		}

		parent.Breaks = append(parent.Breaks, wb)
		removed[i] = true
	}

	if len(removed) == 0 {
		return 0
	}

	remaining := make([]models.Session, 0, len(state.Sessions)-len(removed))

	for i := range state.Sessions {
		if removed[i] {
			continue
		}

		sess := state.Sessions[i]

		sort.Slice(sess.Breaks, func(a, b int) bool {
			return sess.Breaks[a].StartedAt < sess.Breaks[b].StartedAt
		})

		remaining = append(remaining, sess)
	}

	state.Sessions = remaining

	return len(removed)
}

// matchLegacyBreak resolves a free-standing break session to the index of
// its parent work session, requiring both the note-id reference and
// containment of the break interval within the parent's interval.
func matchLegacyBreak(
	sess *models.Session,
	workByID map[string]int,
) (int, bool) {
	if sess.Type != models.Break && sess.Type != models.Cigarette {
		return 0, false
	}

	if sess.EndedAt == nil {
		return 0, false
	}

	m := legacyBreakNote.FindStringSubmatch(sess.Note)
	if m == nil {
		return 0, false
	}

	idx, ok := workByID[m[1]]
	if !ok {
		return 0, false
	}

	return idx, true
}

// containedIn checks the break interval against the parent work session.
// Finalized work sessions have paused time compressed out of their end
// timestamp, so only the start bound is reliable; the end bound is given
// a slack of the break's own duration.
func containedIn(sess *models.Session, parent *models.Session) bool {
	if sess.StartedAt < parent.StartedAt {
		return false
	}

	slack := *sess.EndedAt - sess.StartedAt

	return *sess.EndedAt <= *parent.EndedAt+slack
}

func overlapsExisting(breaks []models.WorkBreak, wb models.WorkBreak) bool {
	for _, b := range breaks {
		if wb.StartedAt < b.EndedAt && b.StartedAt < wb.EndedAt {
			return true
		}
	}

	return false
}

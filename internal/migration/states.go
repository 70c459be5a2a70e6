package migration

import (
	"log/slog"
	"sort"

	"github.com/alan/pivotal-to-linear/internal/source"
)

// stateNames maps a Pivotal lifecycle state to the Linear workflow-state
// name an issue lands in.
var stateNames = map[string]string{
	"unscheduled": "Triage",
	"unstarted":   "Backlog",
	"started":     "In Progress",
	"finished":    "Finished",
	"delivered":   "Ready to Merge",
	"accepted":    "Done",
	"rejected":    "Todo",
}

// stateTypes maps a destination workflow-state name to the state type it is
// created with when the team does not have it yet.
var stateTypes = map[string]string{
	"Triage":         "triage",
	"Backlog":        "backlog",
	"Todo":           "unstarted",
	"In Progress":    "started",
	"Finished":       "started",
	"Ready to Merge": "started",
	"Done":           "completed",
}

// stateRank is the migration order of lifecycle states. Stories migrate
// most-done-first (accepted last) so the sort-position chain reproduces the
// board's visual order.
var stateRank = map[string]int{
	"delivered":   0,
	"finished":    1,
	"started":     2,
	"unstarted":   3,
	"unscheduled": 4,
	"accepted":    5,
}

// unknownStateRank sorts anything outside the table after everything known.
const unknownStateRank = 6

func rankOf(state string) int {
	if rank, ok := stateRank[state]; ok {
		return rank
	}
	return unknownStateRank
}

// destinationStateName resolves the workflow-state name for a lifecycle
// state, falling back to Backlog with a warning for anything unmapped.
func destinationStateName(lifecycle string) string {
	if name, ok := stateNames[lifecycle]; ok {
		return name
	}
	slog.Warn("Unmapped lifecycle state, using Backlog", "state", lifecycle)
	return "Backlog"
}

// SortStories orders stories for migration: lifecycle rank first, creation
// time ascending within a rank.
func SortStories(items []source.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := rankOf(items[i].State), rankOf(items[j].State)
		if ri != rj {
			return ri < rj
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alan/pivotal-to-linear/internal/linear"
	"github.com/alan/pivotal-to-linear/internal/source"
)

func TestParseOwnerLineRoundTrip(t *testing.T) {
	item := source.Item{ID: 100, Owner: "Bob Jones <bob@example.com>"}

	header := storyHeader(item, nil)

	assert.Equal(t, "Bob Jones <bob@example.com>", parseOwnerLine(header),
		"render and parse must agree on the owner line")
}

func TestParseOwnerLine(t *testing.T) {
	assert.Equal(t, "Alice Smith <alice@example.com>",
		parseOwnerLine("intro\n**Owner:** Alice Smith <alice@example.com>\n**Requester:** x"))
	assert.Equal(t, "", parseOwnerLine("no owner anywhere"))
}

func TestAssignPass(t *testing.T) {
	dest := newFakeDest()
	dest.users = []linear.User{{ID: "user-bob", Name: "Bob Jones", Email: "bob@example.com"}}
	dest.unassigned = []linear.Issue{
		{ID: "issue-1", Identifier: "ENG-1", Description: "**Owner:** Bob Jones <bob@example.com>"},
		{ID: "issue-2", Identifier: "ENG-2", Description: "**Owner:** Nobody Known"},
		{ID: "issue-3", Identifier: "ENG-3", Description: "hand-written issue, no owner line"},
	}

	m := New(&fakeSource{}, dest, testOptions())
	require.NoError(t, m.Assign(context.Background()))

	updates := dest.updates["issue-1"]
	require.Len(t, updates, 1)
	assert.Equal(t, "user-bob", updates[0].AssigneeID)
	assert.Empty(t, dest.updates["issue-2"], "unknown owners are skipped")
	assert.Empty(t, dest.updates["issue-3"], "issues without an owner line are skipped")

	assert.Equal(t, 1, m.Report().Assignments.Created)
	assert.Equal(t, 2, m.Report().Assignments.Skipped)
}

func TestAssignPassDryRun(t *testing.T) {
	dest := newFakeDest()
	dest.users = []linear.User{{ID: "user-bob", Name: "Bob Jones", Email: "bob@example.com"}}
	dest.unassigned = []linear.Issue{
		{ID: "issue-1", Identifier: "ENG-1", Description: "**Owner:** Bob Jones <bob@example.com>"},
	}

	opts := testOptions()
	opts.DryRun = true
	m := New(&fakeSource{}, dest, opts)
	require.NoError(t, m.Assign(context.Background()))

	assert.Empty(t, dest.updates)
	assert.Equal(t, 1, m.Report().Assignments.Created)
}

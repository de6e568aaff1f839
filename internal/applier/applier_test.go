// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package applier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/docpatch/pkg/types"
)

var taskDoc = []string{"## Tasks", "- [ ] Implement auth", "- [ ] Add tests"}

func TestApply_ReplaceTaskLine(t *testing.T) {
	// Replace keyed on the line itself: the before-match ends at the
	// target, so anchor is the line after it.
	got, region, err := Apply(taskDoc, types.ContextPatch{
		Operation:     types.OpReplace,
		BeforeContext: []string{"- [ ] Implement auth"},
		Content:       "- [x] Implement auth",
	}, types.MatchCandidate{Anchor: 2, BeforeStart: 1, AfterEnd: 2, AfterEmpty: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"## Tasks", "- [x] Implement auth", "- [ ] Add tests"}, got)
	assert.Equal(t, Region{Start: 1, End: 2}, region)
}

func TestApply_InsertBetweenWindows(t *testing.T) {
	got, region, err := Apply(taskDoc, types.ContextPatch{
		Operation:     types.OpInsert,
		BeforeContext: []string{"## Tasks"},
		AfterContext:  []string{"- [ ] Implement auth"},
		Content:       "- [ ] Setup CI",
	}, types.MatchCandidate{Anchor: 1, BeforeStart: 0, AfterEnd: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"## Tasks", "- [ ] Setup CI", "- [ ] Implement auth", "- [ ] Add tests"}, got)
	assert.Equal(t, Region{Start: 1, End: 2}, region)
}

func TestApply_DeleteLastLine(t *testing.T) {
	got, region, err := Apply(taskDoc, types.ContextPatch{
		Operation:     types.OpDelete,
		BeforeContext: []string{"- [ ] Add tests"},
	}, types.MatchCandidate{Anchor: 3, BeforeStart: 2, AfterEnd: 3, AfterEmpty: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"## Tasks", "- [ ] Implement auth"}, got)
	assert.Equal(t, Region{Start: 2, End: 2}, region)
}

func TestApply_InsertAtDocumentStart(t *testing.T) {
	got, _, err := Apply([]string{"a", "b", "c"}, types.ContextPatch{
		Operation:    types.OpInsert,
		AfterContext: []string{"a"},
		Content:      "new first",
	}, types.MatchCandidate{Anchor: 0, BeforeStart: 0, AfterEnd: 1, BeforeEmpty: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"new first", "a", "b", "c"}, got)
}

func TestApply_InsertAtDocumentEnd(t *testing.T) {
	got, _, err := Apply([]string{"a", "b", "c"}, types.ContextPatch{
		Operation:     types.OpInsert,
		BeforeContext: []string{"c"},
		Content:       "new last",
	}, types.MatchCandidate{Anchor: 3, BeforeStart: 2, AfterEnd: 3, AfterEmpty: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "new last"}, got)
}

func TestApply_InsertMultiLineContent(t *testing.T) {
	got, region, err := Apply([]string{"a", "b"}, types.ContextPatch{
		Operation:     types.OpInsert,
		BeforeContext: []string{"a"},
		AfterContext:  []string{"b"},
		Content:       "x\ny\n",
	}, types.MatchCandidate{Anchor: 1, BeforeStart: 0, AfterEnd: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x", "y", "b"}, got)
	assert.Equal(t, Region{Start: 1, End: 3}, region)
}

func TestApply_ReplaceWithEmptyBeforeTargetsAfterMatch(t *testing.T) {
	// Boundary rule: with no before context the target is the FIRST
	// line of the after-match, not the line preceding it.
	got, _, err := Apply([]string{"a", "b", "c"}, types.ContextPatch{
		Operation:    types.OpReplace,
		AfterContext: []string{"a", "b"},
		Content:      "A",
	}, types.MatchCandidate{Anchor: 0, BeforeStart: 0, AfterEnd: 2, BeforeEmpty: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "b", "c"}, got)
}

func TestApply_DeleteWithEmptyBeforeTargetsAfterMatch(t *testing.T) {
	got, _, err := Apply([]string{"a", "b", "c"}, types.ContextPatch{
		Operation:    types.OpDelete,
		AfterContext: []string{"a"},
	}, types.MatchCandidate{Anchor: 0, BeforeStart: 0, AfterEnd: 1, BeforeEmpty: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got)
}

func TestApply_ReplaceWithMultiLineContent(t *testing.T) {
	got, region, err := Apply([]string{"a", "b", "c"}, types.ContextPatch{
		Operation:     types.OpReplace,
		BeforeContext: []string{"b"},
		Content:       "b1\nb2",
	}, types.MatchCandidate{Anchor: 2, BeforeStart: 1, AfterEnd: 2, AfterEmpty: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, got)
	assert.Equal(t, Region{Start: 1, End: 3}, region)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	original := []string{"a", "b", "c"}
	input := make([]string, len(original))
	copy(input, original)

	_, _, err := Apply(input, types.ContextPatch{
		Operation:     types.OpReplace,
		BeforeContext: []string{"b"},
		Content:       "B",
	}, types.MatchCandidate{Anchor: 2, BeforeStart: 1, AfterEnd: 2, AfterEmpty: true})

	require.NoError(t, err)
	assert.Equal(t, original, input)
}

func TestExcerpt(t *testing.T) {
	lines := []string{"l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8"}

	got, first := Excerpt(lines, Region{Start: 3, End: 4}, 2)
	assert.Equal(t, []string{"l2", "l3", "l4", "l5", "l6"}, got)
	assert.Equal(t, 2, first)

	// Clamped at document boundaries.
	got, first = Excerpt(lines, Region{Start: 0, End: 1}, 2)
	assert.Equal(t, []string{"l1", "l2", "l3"}, got)
	assert.Equal(t, 1, first)

	got, _ = Excerpt(lines, Region{Start: 7, End: 8}, 2)
	assert.Equal(t, []string{"l6", "l7", "l8"}, got)
}

func TestSplitContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", nil},
		{"single line", "x", []string{"x"}},
		{"trailing newline dropped", "x\n", []string{"x"}},
		{"multi line", "x\ny", []string{"x", "y"}},
		{"crlf normalized", "x\r\ny\r\n", []string{"x", "y"}},
		{"interior blank preserved", "x\n\ny", []string{"x", "", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitContent(tt.content))
		})
	}
}

package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPath() Path {
	return Path{
		ID:    "path-1",
		Title: "Backend fundamentals",
		Topics: []Topic{
			{
				ID:           PersistedID("topic-1"),
				Title:        "HTTP basics",
				DisplayIndex: 1,
				Status:       StatusInProgress,
				Notes: []Note{
					{ID: "note-t1", TargetType: TargetTopic, TargetID: "topic-1", Title: "Reading list"},
				},
				Lessons: []Lesson{
					{
						ID:           PersistedID("lesson-1"),
						Title:        "Request lifecycle",
						Status:       StatusCompleted,
						DisplayIndex: 1,
						Unlocked:     true,
						Notes:        []Note{{ID: "note-l1", TargetType: TargetLesson, TargetID: "lesson-1"}},
					},
					{
						ID:           PersistedID("lesson-2"),
						Title:        "Routing",
						Status:       StatusNotStarted,
						DisplayIndex: 2,
						Unlocked:     true,
						Notes:        []Note{{ID: "note-l2", TargetType: TargetLesson, TargetID: "lesson-2"}},
					},
				},
			},
			{
				ID:           PersistedID("topic-2"),
				Title:        "Databases",
				DisplayIndex: 2,
				Status:       StatusNotStarted,
			},
		},
	}
}

func requireUniqueSiblingIDs(t *testing.T, p Path) {
	t.Helper()
	seenTopics := map[string]bool{}
	for _, topic := range p.Topics {
		require.False(t, seenTopics[topic.ID.String()], "duplicate topic id %s", topic.ID)
		seenTopics[topic.ID.String()] = true

		seenLessons := map[string]bool{}
		for _, lesson := range topic.Lessons {
			require.False(t, seenLessons[lesson.ID.String()], "duplicate lesson id %s", lesson.ID)
			seenLessons[lesson.ID.String()] = true
		}
	}
}

func TestCreateTopicReplacesDraft(t *testing.T) {
	gen := NewIDGenerator()
	path := testPath()

	draft := Topic{ID: gen.NextDraftID(), Title: "New topic"}
	path.Topics = append(path.Topics, draft)

	persisted := Topic{ID: PersistedID("topic-3"), Title: "New topic", DisplayIndex: 3}
	path = path.WithTopicCreated(persisted)

	require.Len(t, path.Topics, 3)
	_, hasDraft := path.DraftTopic()
	require.False(t, hasDraft, "create must convert the draft in place, not append a duplicate")
	requireUniqueSiblingIDs(t, path)
}

func TestCreateTopicKeepsAtMostOneDraft(t *testing.T) {
	gen := NewIDGenerator()
	path := testPath()

	first := Topic{ID: gen.NextDraftID(), Title: "Draft A"}
	path = path.WithTopicCreated(first)
	second := Topic{ID: gen.NextDraftID(), Title: "Draft B"}
	path = path.WithTopicCreated(second)

	drafts := 0
	for _, topic := range path.Topics {
		if topic.ID.IsDraft() {
			drafts++
			require.Equal(t, "Draft B", topic.Title)
		}
	}
	require.Equal(t, 1, drafts)
}

func TestUpdateTopicStaleReferenceIsNoOp(t *testing.T) {
	path := testPath()

	updated, ok := path.WithTopicUpdated(Topic{ID: PersistedID("missing"), Title: "ghost"})
	require.False(t, ok)
	require.Equal(t, path, updated)

	renamed, ok := path.WithTopicUpdated(Topic{ID: PersistedID("topic-2"), Title: "Storage", DisplayIndex: 2})
	require.True(t, ok)
	topic, found := renamed.FindTopic(PersistedID("topic-2"))
	require.True(t, found)
	require.Equal(t, "Storage", topic.Title)
	requireUniqueSiblingIDs(t, renamed)
}

func TestDeleteTopicCascadesStructurally(t *testing.T) {
	path := testPath()

	result, ok := path.WithTopicDeleted(PersistedID("topic-1"))
	require.True(t, ok)
	require.Len(t, result.Topics, 1)

	// No references to the deleted subtree may remain anywhere in the tree.
	for _, topic := range result.Topics {
		require.NotEqual(t, "topic-1", topic.ID.String())
		for _, note := range topic.Notes {
			require.NotEqual(t, "topic-1", note.TargetID)
		}
		for _, lesson := range topic.Lessons {
			require.False(t, strings.HasPrefix(lesson.ID.String(), "lesson-"))
		}
	}

	_, _, found := result.FindLesson(PersistedID("lesson-1"))
	require.False(t, found)
	_, _, found = result.FindLesson(PersistedID("lesson-2"))
	require.False(t, found)

	_, ok = result.WithTopicDeleted(PersistedID("topic-1"))
	require.False(t, ok, "second delete is a stale reference")
}

func TestCreateLessonReplacesDraftAndAssignsIndex(t *testing.T) {
	gen := NewIDGenerator()
	path := testPath()

	draft := Lesson{ID: gen.NextDraftID(), Title: "Draft lesson", Unlocked: true}
	path, ok := path.WithLessonCreated(PersistedID("topic-1"), draft)
	require.True(t, ok)

	persisted := Lesson{ID: PersistedID("lesson-3"), Title: "Middleware", Unlocked: true}
	path, ok = path.WithLessonCreated(PersistedID("topic-1"), persisted)
	require.True(t, ok)

	topic, _ := path.FindTopic(PersistedID("topic-1"))
	require.Len(t, topic.Lessons, 3)
	require.Equal(t, 3, topic.Lessons[2].DisplayIndex)
	requireUniqueSiblingIDs(t, path)

	_, ok = path.WithLessonCreated(PersistedID("missing"), persisted)
	require.False(t, ok)
}

func TestUpdateAndDeleteLesson(t *testing.T) {
	path := testPath()

	renamed, ok := path.WithLessonUpdated(PersistedID("topic-1"), Lesson{
		ID: PersistedID("lesson-2"), Title: "Routing deep dive", Status: StatusNotStarted, DisplayIndex: 2, Unlocked: true,
	})
	require.True(t, ok)
	lesson, _, found := renamed.FindLesson(PersistedID("lesson-2"))
	require.True(t, found)
	require.Equal(t, "Routing deep dive", lesson.Title)

	_, ok = path.WithLessonUpdated(PersistedID("topic-1"), Lesson{ID: PersistedID("missing")})
	require.False(t, ok)

	removed, ok := renamed.WithLessonDeleted(PersistedID("topic-1"), PersistedID("lesson-2"))
	require.True(t, ok)
	_, _, found = removed.FindLesson(PersistedID("lesson-2"))
	require.False(t, found)

	_, ok = removed.WithLessonDeleted(PersistedID("topic-1"), PersistedID("lesson-2"))
	require.False(t, ok)
}

func TestAdvanceLessonStatus(t *testing.T) {
	path := testPath()

	next, transition, ok := path.AdvanceLessonStatus(PersistedID("lesson-2"))
	require.True(t, ok)
	require.Equal(t, Transition{From: StatusNotStarted, To: StatusInProgress}, transition)

	lesson, _, _ := next.FindLesson(PersistedID("lesson-2"))
	require.Equal(t, StatusInProgress, lesson.Status)

	// The original tree value is untouched.
	original, _, _ := path.FindLesson(PersistedID("lesson-2"))
	require.Equal(t, StatusNotStarted, original.Status)
}

func TestAdvanceLessonStatusLockedIsNoOp(t *testing.T) {
	path := testPath()
	path.Topics[0].Lessons[1].Unlocked = false

	next, _, ok := path.AdvanceLessonStatus(PersistedID("lesson-2"))
	require.False(t, ok)
	require.Equal(t, path, next)
}

func TestAdvanceLessonStatusUnknownLesson(t *testing.T) {
	path := testPath()
	_, _, ok := path.AdvanceLessonStatus(PersistedID("missing"))
	require.False(t, ok)
}

func TestDraftIDNeverAliasesServerID(t *testing.T) {
	require.False(t, DraftID("abc").Equal(PersistedID("abc")))
	require.True(t, DraftID("abc").IsDraft())
	require.False(t, PersistedID("abc").IsDraft())
}

func TestIDGeneratorAllocatesUniqueDrafts(t *testing.T) {
	gen := NewIDGenerator()
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := gen.NextDraftID()
		require.True(t, id.IsDraft())
		require.True(t, strings.HasPrefix(id.String(), draftPrefix))
		require.False(t, seen[id.String()])
		seen[id.String()] = true
	}
}

func TestSortedOrdering(t *testing.T) {
	path := Path{Topics: []Topic{
		{ID: PersistedID("b"), DisplayIndex: 20},
		{ID: PersistedID("a"), DisplayIndex: 10},
	}}
	sorted := path.SortedTopics()
	require.Equal(t, "a", sorted[0].ID.String())

	notes := SortNotes([]Note{{ID: "n2", DisplayIndex: 5}, {ID: "n1", DisplayIndex: 1}})
	require.Equal(t, "n1", notes[0].ID)
}

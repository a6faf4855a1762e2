// Package tree holds the in-memory representation of a learning path and the
// pure transforms the editing session applies to it. Every operation returns
// a new tree value; callers decide whether to adopt the result, which keeps
// failed server calls from leaving partially applied mutations behind.
package tree

import (
	"sort"
	"time"
)

// OriginAuthor references the user a shared path was cloned from.
type OriginAuthor struct {
	UserID    string
	FullName  string
	AvatarURL string
}

// Path is the root aggregate of the content tree. It owns its topics
// exclusively; tags are shared lookups referenced by id.
type Path struct {
	ID              string
	Title           string
	Description     string
	StartTime       time.Time
	EndTime         time.Time
	Status          Status
	ProgressPercent int
	Tags            []Tag
	Notes           []Note
	Topics          []Topic
	Deleted         bool
	Archived        bool
	Favourite       bool
	CreatedAt       time.Time
	Origin          *OriginAuthor
}

// Topic is a child of exactly one path. A draft topic has no time range yet.
type Topic struct {
	ID           NodeID
	Title        string
	DisplayIndex int
	StartTime    time.Time
	EndTime      time.Time
	Status       Status
	Notes        []Note
	Lessons      []Lesson
	Expanded     bool
}

// Lesson is a leaf child of exactly one topic.
type Lesson struct {
	ID           NodeID
	Title        string
	StartTime    time.Time
	EndTime      time.Time
	Status       Status
	DisplayIndex int
	Unlocked     bool
	Expanded     bool
	Notes        []Note
	Resources    []Resource
}

// WithTopicCreated appends the topic after removing any surviving draft
// topic. At most one topic draft is edited at a time, so a successful create
// must never leave the placeholder behind next to the persisted node.
func (p Path) WithTopicCreated(topic Topic) Path {
	kept := make([]Topic, 0, len(p.Topics)+1)
	for _, t := range p.Topics {
		if t.ID.IsDraft() {
			continue
		}
		kept = append(kept, t)
	}
	p.Topics = append(kept, topic)
	return p
}

// WithTopicUpdated replaces the topic whose id matches. A stale reference is
// reported through the boolean and leaves the tree untouched.
func (p Path) WithTopicUpdated(topic Topic) (Path, bool) {
	topics := make([]Topic, len(p.Topics))
	found := false
	for i, t := range p.Topics {
		if t.ID.Equal(topic.ID) {
			topics[i] = topic
			found = true
			continue
		}
		topics[i] = t
	}
	if !found {
		return p, false
	}
	p.Topics = topics
	return p, true
}

// WithTopicDeleted removes the topic and, structurally, every lesson, note
// and resource beneath it.
func (p Path) WithTopicDeleted(topicID NodeID) (Path, bool) {
	topics := make([]Topic, 0, len(p.Topics))
	found := false
	for _, t := range p.Topics {
		if t.ID.Equal(topicID) {
			found = true
			continue
		}
		topics = append(topics, t)
	}
	if !found {
		return p, false
	}
	p.Topics = topics
	return p, true
}

// WithLessonCreated appends the lesson under the owning topic, removing any
// surviving lesson draft first. The display index follows the current tail of
// the list when the lesson does not carry one.
func (p Path) WithLessonCreated(topicID NodeID, lesson Lesson) (Path, bool) {
	return p.withTopic(topicID, func(t Topic) Topic {
		kept := make([]Lesson, 0, len(t.Lessons)+1)
		for _, l := range t.Lessons {
			if l.ID.IsDraft() {
				continue
			}
			kept = append(kept, l)
		}
		if lesson.DisplayIndex == 0 {
			lesson.DisplayIndex = len(kept) + 1
		}
		t.Lessons = append(kept, lesson)
		return t
	})
}

// WithLessonUpdated replaces the lesson whose id matches within the owning
// topic. Stale references are no-ops.
func (p Path) WithLessonUpdated(topicID NodeID, lesson Lesson) (Path, bool) {
	applied := false
	next, ok := p.withTopic(topicID, func(t Topic) Topic {
		lessons := make([]Lesson, len(t.Lessons))
		for i, l := range t.Lessons {
			if l.ID.Equal(lesson.ID) {
				lessons[i] = lesson
				applied = true
				continue
			}
			lessons[i] = l
		}
		t.Lessons = lessons
		return t
	})
	if !ok || !applied {
		return p, false
	}
	return next, true
}

// WithLessonDeleted removes the lesson from the owning topic.
func (p Path) WithLessonDeleted(topicID, lessonID NodeID) (Path, bool) {
	applied := false
	next, ok := p.withTopic(topicID, func(t Topic) Topic {
		lessons := make([]Lesson, 0, len(t.Lessons))
		for _, l := range t.Lessons {
			if l.ID.Equal(lessonID) {
				applied = true
				continue
			}
			lessons = append(lessons, l)
		}
		t.Lessons = lessons
		return t
	})
	if !ok || !applied {
		return p, false
	}
	return next, true
}

// AdvanceLessonStatus moves the lesson one step along the status cycle. A
// locked lesson ignores the request entirely; the boolean reports whether a
// transition was applied so the caller can feed the statistic reducer.
func (p Path) AdvanceLessonStatus(lessonID NodeID) (Path, Transition, bool) {
	var transition Transition
	applied := false

	topics := make([]Topic, len(p.Topics))
	for i, t := range p.Topics {
		if applied {
			topics[i] = t
			continue
		}
		lessons := make([]Lesson, len(t.Lessons))
		copy(lessons, t.Lessons)
		for j, l := range lessons {
			if !l.ID.Equal(lessonID) {
				continue
			}
			if !l.Unlocked {
				return p, Transition{}, false
			}
			transition = Transition{From: l.Status, To: l.Status.Next()}
			l.Status = transition.To
			lessons[j] = l
			applied = true
			break
		}
		t.Lessons = lessons
		topics[i] = t
	}
	if !applied {
		return p, Transition{}, false
	}
	p.Topics = topics
	return p, transition, true
}

// FindTopic returns the topic with the given id.
func (p Path) FindTopic(topicID NodeID) (Topic, bool) {
	for _, t := range p.Topics {
		if t.ID.Equal(topicID) {
			return t, true
		}
	}
	return Topic{}, false
}

// FindLesson locates a lesson anywhere in the tree together with its owning
// topic id.
func (p Path) FindLesson(lessonID NodeID) (Lesson, NodeID, bool) {
	for _, t := range p.Topics {
		for _, l := range t.Lessons {
			if l.ID.Equal(lessonID) {
				return l, t.ID, true
			}
		}
	}
	return Lesson{}, NodeID{}, false
}

// DraftTopic returns the current topic draft, if one exists.
func (p Path) DraftTopic() (Topic, bool) {
	for _, t := range p.Topics {
		if t.ID.IsDraft() {
			return t, true
		}
	}
	return Topic{}, false
}

// SortedTopics returns the topics ordered by display index.
func (p Path) SortedTopics() []Topic {
	topics := make([]Topic, len(p.Topics))
	copy(topics, p.Topics)
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].DisplayIndex < topics[j].DisplayIndex
	})
	return topics
}

// SortedLessons returns the topic's lessons ordered by display index.
func (t Topic) SortedLessons() []Lesson {
	lessons := make([]Lesson, len(t.Lessons))
	copy(lessons, t.Lessons)
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].DisplayIndex < lessons[j].DisplayIndex
	})
	return lessons
}

// SortNotes orders notes by display index ascending, the only externally
// meaningful note invariant.
func SortNotes(notes []Note) []Note {
	sorted := make([]Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DisplayIndex < sorted[j].DisplayIndex
	})
	return sorted
}

func (p Path) withTopic(topicID NodeID, apply func(Topic) Topic) (Path, bool) {
	topics := make([]Topic, len(p.Topics))
	found := false
	for i, t := range p.Topics {
		if t.ID.Equal(topicID) {
			topics[i] = apply(t)
			found = true
			continue
		}
		topics[i] = t
	}
	if !found {
		return p, false
	}
	p.Topics = topics
	return p, true
}

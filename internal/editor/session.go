// Package editor hosts the editing session for one learning path: the single
// in-memory tree, the derived progress statistic, and the draft/persisted
// save contract for topics and lessons. Descendant operations never mutate
// the tree directly; every change funnels through the session, which applies
// a pure tree transform only after the backing server call succeeded.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/tree"
)

var (
	// ErrEmptyTitle is returned before any network call when the edited
	// title is blank.
	ErrEmptyTitle = errors.New("editor: title must not be empty")
	// ErrSaveInFlight rejects a second submit on a node whose save has not
	// completed yet.
	ErrSaveInFlight = errors.New("editor: a save is already in flight for this node")
	// ErrNodeNotFound signals an operation on an id absent from the tree.
	ErrNodeNotFound = errors.New("editor: node not found")
)

// TopicAPI is the persistence collaborator for topics.
type TopicAPI interface {
	Create(ctx context.Context, req dto.TopicCreateRequest) (dto.TopicResponse, error)
	Update(ctx context.Context, topicID string, req dto.TopicUpdateRequest) (dto.TopicResponse, error)
	Delete(ctx context.Context, topicID string) error
	ListLessons(ctx context.Context, topicID string) ([]dto.LessonResponse, error)
	ListNotes(ctx context.Context, topicID string) ([]dto.NoteResponse, error)
}

// LessonAPI is the persistence collaborator for lessons.
type LessonAPI interface {
	Create(ctx context.Context, req dto.LessonCreateRequest) (dto.LessonResponse, error)
	Update(ctx context.Context, lessonID string, req dto.LessonUpdateRequest) (dto.LessonResponse, error)
	Delete(ctx context.Context, lessonID string) error
}

// PathAPI is the persistence collaborator for the path aggregate.
type PathAPI interface {
	Get(ctx context.Context, pathID string) (dto.LearningPathResponse, error)
	Topics(ctx context.Context, pathID string) ([]dto.TopicResponse, error)
	Notes(ctx context.Context, pathID string) ([]dto.NoteResponse, error)
	Tags(ctx context.Context, pathID string) ([]dto.TagResponse, error)
	Statistic(ctx context.Context, pathID string) (dto.LearningPathStatisticResponse, error)
}

// ProgressAPI persists lesson status changes and the derived path progress.
type ProgressAPI interface {
	UpdateLessonStatus(ctx context.Context, lessonID string, status tree.Status) error
	SavePathProgress(ctx context.Context, pathID string, percent int) error
}

// API groups the persistence collaborators a session talks to.
type API struct {
	Path     PathAPI
	Topic    TopicAPI
	Lesson   LessonAPI
	Progress ProgressAPI
}

// EditPhase is the finite-state view over one node's editing lifecycle.
type EditPhase int

const (
	PhaseViewing EditPhase = iota
	PhaseEditing
	PhaseSaving
)

// ProgressSync records a progress persistence attempt that failed. Local
// counters stay authoritative until the next full refetch.
type ProgressSync struct {
	PathID  string    `json:"path_id"`
	Percent int       `json:"percent"`
	At      time.Time `json:"at"`
}

// StatusSync records a lesson status persistence attempt that failed.
type StatusSync struct {
	LessonID string      `json:"lesson_id"`
	Status   tree.Status `json:"status"`
	At       time.Time   `json:"at"`
}

// Session owns the tree and statistic for one learning path. The mutex is
// the Go-native stand-in for the single-threaded event loop of the original
// design: tree reads and writes are serialized, server calls are not.
type Session struct {
	pathID string
	api    API
	idgen  tree.IDGenerator
	logger zerolog.Logger

	mu              sync.Mutex
	path            tree.Path
	stat            tree.Statistic
	phases          map[string]EditPhase
	pendingProgress []ProgressSync
	pendingStatus   []StatusSync
}

// NewSession builds an unloaded session for the given path.
func NewSession(pathID string, api API, idgen tree.IDGenerator, logger zerolog.Logger) *Session {
	return &Session{
		pathID: pathID,
		api:    api,
		idgen:  idgen,
		logger: logger.With().Str("component", "editor_session").Str("path_id", pathID).Logger(),
		phases: make(map[string]EditPhase),
	}
}

// Load fetches the path, its tags, topics, path-level notes and the progress
// statistic, and materializes the initial tree.
func (s *Session) Load(ctx context.Context) error {
	pathRes, err := s.api.Path.Get(ctx, s.pathID)
	if err != nil {
		return err
	}

	node := dto.LearningPathNode(pathRes)

	if tagRes, err := s.api.Path.Tags(ctx, s.pathID); err == nil {
		node.Tags = dto.TagNodes(tagRes)
	} else {
		s.logger.Warn().Err(err).Msg("failed to fetch path tags")
	}

	topicRes, err := s.api.Path.Topics(ctx, s.pathID)
	if err != nil {
		return err
	}
	node.Topics = dto.TopicNodes(topicRes)

	if noteRes, err := s.api.Path.Notes(ctx, s.pathID); err == nil {
		node.Notes = dto.NoteNodes(noteRes)
	} else {
		s.logger.Warn().Err(err).Msg("failed to fetch path notes")
	}

	statRes, err := s.api.Path.Statistic(ctx, s.pathID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.path = node
	s.stat = statRes.Snapshot()
	s.mu.Unlock()
	return nil
}

// LoadTopic lazily fetches the lessons and notes of one persisted topic.
// Drafts have nothing to fetch.
func (s *Session) LoadTopic(ctx context.Context, topicID tree.NodeID) error {
	if topicID.IsDraft() {
		return nil
	}

	lessons, err := s.api.Topic.ListLessons(ctx, topicID.String())
	if err != nil {
		return err
	}
	notes, err := s.api.Topic.ListNotes(ctx, topicID.String())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	topic, ok := s.path.FindTopic(topicID)
	if !ok {
		return ErrNodeNotFound
	}
	topic.Lessons = dto.LessonNodes(lessons)
	topic.Notes = dto.NoteNodes(notes)
	next, ok := s.path.WithTopicUpdated(topic)
	if !ok {
		return ErrNodeNotFound
	}
	s.path = next
	return nil
}

// AddTopicDraft appends a fresh draft topic to the tree and returns it.
func (s *Session) AddTopicDraft(title string) tree.Topic {
	draft := tree.Topic{
		ID:           s.idgen.NextDraftID(),
		Title:        title,
		DisplayIndex: 1000,
		Status:       tree.StatusNotStarted,
		Notes:        []tree.Note{},
		Lessons:      []tree.Lesson{},
		Expanded:     true,
	}

	s.mu.Lock()
	// At most one topic draft is edited at a time; a fresh draft replaces
	// any abandoned one instead of stacking next to it.
	kept := make([]tree.Topic, 0, len(s.path.Topics)+1)
	for _, t := range s.path.Topics {
		if t.ID.IsDraft() {
			delete(s.phases, t.ID.String())
			continue
		}
		kept = append(kept, t)
	}
	s.path.Topics = append(kept, draft)
	s.phases[draft.ID.String()] = PhaseEditing
	s.mu.Unlock()
	return draft
}

// SaveTopic commits a title edit. A draft topic issues a create and is
// converted in place on success; a persisted topic issues an update. Both
// branches converge on the same tree-event shape, so the aggregator
// operations stay interchangeable consumers.
func (s *Session) SaveTopic(ctx context.Context, topicID tree.NodeID, title string) (tree.Topic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return tree.Topic{}, ErrEmptyTitle
	}

	if err := s.beginSave(topicID); err != nil {
		return tree.Topic{}, err
	}
	defer s.endSave(topicID)

	if topicID.IsDraft() {
		res, err := s.api.Topic.Create(ctx, dto.TopicCreateRequest{PathID: s.pathID, Title: title})
		if err != nil {
			return tree.Topic{}, err
		}
		node := dto.TopicNode(res)

		s.mu.Lock()
		s.path = s.path.WithTopicCreated(node)
		s.mu.Unlock()
		return node, nil
	}

	res, err := s.api.Topic.Update(ctx, topicID.String(), dto.TopicUpdateRequest{Title: title})
	if err != nil {
		return tree.Topic{}, err
	}
	node := dto.TopicNode(res)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.path.FindTopic(node.ID); ok {
		// Keep already-fetched children; the update payload carries none.
		node.Notes = existing.Notes
		node.Lessons = existing.Lessons
	}
	next, ok := s.path.WithTopicUpdated(node)
	if !ok {
		s.logger.Warn().Str("topic_id", node.ID.String()).Msg("update targeted a topic no longer in the tree")
		return node, nil
	}
	s.path = next
	return node, nil
}

// DeleteTopic removes a topic. Draft deletion is purely local; a persisted
// topic is deleted on the server first and removed, with all descendants,
// only after success.
func (s *Session) DeleteTopic(ctx context.Context, topicID tree.NodeID) error {
	if !topicID.IsDraft() {
		if err := s.api.Topic.Delete(ctx, topicID.String()); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.path.WithTopicDeleted(topicID)
	if !ok {
		s.logger.Warn().Str("topic_id", topicID.String()).Msg("delete targeted a topic no longer in the tree")
		return nil
	}
	s.path = next
	delete(s.phases, topicID.String())
	return nil
}

// AddLessonDraft appends a fresh draft lesson under the topic.
func (s *Session) AddLessonDraft(topicID tree.NodeID, title string) (tree.Lesson, error) {
	draft := tree.Lesson{
		ID:           s.idgen.NextDraftID(),
		Title:        title,
		StartTime:    time.Now(),
		EndTime:      time.Now().Add(72 * time.Hour),
		Status:       tree.StatusNotStarted,
		DisplayIndex: 9999,
		Unlocked:     true,
		Expanded:     true,
		Notes:        []tree.Note{},
		Resources:    []tree.Resource{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	topic, ok := s.path.FindTopic(topicID)
	if !ok {
		return tree.Lesson{}, ErrNodeNotFound
	}
	topic.Lessons = append(topic.Lessons, draft)
	next, ok := s.path.WithTopicUpdated(topic)
	if !ok {
		return tree.Lesson{}, ErrNodeNotFound
	}
	s.path = next
	s.phases[draft.ID.String()] = PhaseEditing
	return draft, nil
}

// SaveLesson commits a lesson edit, branching on draft state exactly like
// SaveTopic.
func (s *Session) SaveLesson(ctx context.Context, topicID, lessonID tree.NodeID, title string, start, end time.Time) (tree.Lesson, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return tree.Lesson{}, ErrEmptyTitle
	}

	if err := s.beginSave(lessonID); err != nil {
		return tree.Lesson{}, err
	}
	defer s.endSave(lessonID)

	if lessonID.IsDraft() {
		res, err := s.api.Lesson.Create(ctx, dto.LessonCreateRequest{
			TopicID:   topicID.String(),
			Title:     title,
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return tree.Lesson{}, err
		}
		node := dto.LessonNode(res)

		s.mu.Lock()
		defer s.mu.Unlock()
		next, ok := s.path.WithLessonCreated(topicID, node)
		if !ok {
			s.logger.Warn().Str("topic_id", topicID.String()).Msg("lesson create targeted a topic no longer in the tree")
			return node, nil
		}
		s.path = next
		s.stat = tree.NewStatistic(s.stat.TotalLessons+1, s.stat.CompletedLessons)
		return node, nil
	}

	res, err := s.api.Lesson.Update(ctx, lessonID.String(), dto.LessonUpdateRequest{
		Title:     title,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return tree.Lesson{}, err
	}
	node := dto.LessonNode(res)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, _, ok := s.path.FindLesson(node.ID); ok {
		node.Notes = existing.Notes
		node.Resources = existing.Resources
	}
	next, ok := s.path.WithLessonUpdated(topicID, node)
	if !ok {
		s.logger.Warn().Str("lesson_id", node.ID.String()).Msg("update targeted a lesson no longer in the tree")
		return node, nil
	}
	s.path = next
	return node, nil
}

// DeleteLesson removes a lesson, local-only for drafts.
func (s *Session) DeleteLesson(ctx context.Context, topicID, lessonID tree.NodeID) error {
	if !lessonID.IsDraft() {
		if err := s.api.Lesson.Delete(ctx, lessonID.String()); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removed, _, found := s.path.FindLesson(lessonID)
	next, ok := s.path.WithLessonDeleted(topicID, lessonID)
	if !ok {
		s.logger.Warn().Str("lesson_id", lessonID.String()).Msg("delete targeted a lesson no longer in the tree")
		return nil
	}
	s.path = next
	delete(s.phases, lessonID.String())
	if !lessonID.IsDraft() && found {
		completed := s.stat.CompletedLessons
		if removed.Status == tree.StatusCompleted {
			completed--
		}
		s.stat = tree.NewStatistic(s.stat.TotalLessons-1, completed)
	}
	return nil
}

// AdvanceLessonStatus moves the lesson one step along the status cycle,
// folds the transition into the statistic, and reconciles both the lesson
// status and the recomputed progress with the server. Local state is applied
// first and kept regardless of persistence failures, which are recorded as
// pending sync markers.
func (s *Session) AdvanceLessonStatus(ctx context.Context, lessonID tree.NodeID) (tree.Transition, error) {
	if lessonID.IsDraft() {
		// An unsaved lesson has no server id and is not counted in the
		// statistic yet; advancing it is a no-op until it is saved.
		return tree.Transition{}, nil
	}

	s.mu.Lock()
	next, transition, ok := s.path.AdvanceLessonStatus(lessonID)
	if !ok {
		s.mu.Unlock()
		// Locked or unknown lesson: a pure no-op by contract.
		return tree.Transition{}, nil
	}
	s.path = next
	s.stat = tree.ReduceStatistic(s.stat, transition)
	percent := s.stat.OverallProgress
	s.mu.Unlock()

	if err := s.api.Progress.UpdateLessonStatus(ctx, lessonID.String(), transition.To); err != nil {
		s.logger.Warn().Err(err).Str("lesson_id", lessonID.String()).Msg("lesson status sync failed, keeping local state")
		s.mu.Lock()
		s.pendingStatus = append(s.pendingStatus, StatusSync{LessonID: lessonID.String(), Status: transition.To, At: time.Now().UTC()})
		s.mu.Unlock()
	}
	if err := s.api.Progress.SavePathProgress(ctx, s.pathID, percent); err != nil {
		s.logger.Warn().Err(err).Int("percent", percent).Msg("progress sync failed, keeping local state")
		s.mu.Lock()
		s.pendingProgress = append(s.pendingProgress, ProgressSync{PathID: s.pathID, Percent: percent, At: time.Now().UTC()})
		s.mu.Unlock()
	}

	return transition, nil
}

// BeginEdit transitions a node into the editing phase.
func (s *Session) BeginEdit(nodeID tree.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phases[nodeID.String()] == PhaseViewing {
		s.phases[nodeID.String()] = PhaseEditing
	}
}

// CancelEdit discards an edit and returns the node to viewing. A save in
// flight cannot be cancelled.
func (s *Session) CancelEdit(nodeID tree.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phases[nodeID.String()] == PhaseEditing {
		delete(s.phases, nodeID.String())
	}
}

// Phase reports the editing phase of a node.
func (s *Session) Phase(nodeID tree.NodeID) EditPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phases[nodeID.String()]
}

// Snapshot returns a copy of the current tree and statistic.
func (s *Session) Snapshot() (tree.Path, tree.Statistic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path, s.stat
}

// PendingProgress returns recorded progress reconciliation failures.
func (s *Session) PendingProgress() []ProgressSync {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make([]ProgressSync, len(s.pendingProgress))
	copy(pending, s.pendingProgress)
	return pending
}

// PendingStatus returns recorded lesson status reconciliation failures.
func (s *Session) PendingStatus() []StatusSync {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make([]StatusSync, len(s.pendingStatus))
	copy(pending, s.pendingStatus)
	return pending
}

func (s *Session) beginSave(nodeID tree.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phases[nodeID.String()] == PhaseSaving {
		return ErrSaveInFlight
	}
	s.phases[nodeID.String()] = PhaseSaving
	return nil
}

func (s *Session) endSave(nodeID tree.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.phases, nodeID.String())
}

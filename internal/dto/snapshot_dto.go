package dto

import (
	"time"

	"github.com/noah-isme/pathway-api/internal/tree"
)

// NoteSnapshot is the wire view of an in-memory note.
type NoteSnapshot struct {
	NoteID       string `json:"note_id"`
	Title        string `json:"title,omitempty"`
	Content      string `json:"content"`
	DisplayIndex int    `json:"display_index"`
}

// ResourceSnapshot is the wire view of an in-memory resource.
type ResourceSnapshot struct {
	ResourceID   string `json:"resource_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	ExternalLink string `json:"external_link,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	ResourceURL  string `json:"resource_url,omitempty"`
}

// LessonSnapshot is the wire view of an in-memory lesson node.
type LessonSnapshot struct {
	LessonID     string             `json:"lesson_id"`
	Draft        bool               `json:"draft"`
	Title        string             `json:"title"`
	DisplayIndex int                `json:"display_index"`
	StartTime    time.Time          `json:"start_time"`
	EndTime      time.Time          `json:"end_time"`
	Status       string             `json:"status"`
	Unlocked     bool               `json:"unlocked"`
	Notes        []NoteSnapshot     `json:"notes"`
	Resources    []ResourceSnapshot `json:"resources"`
}

// TopicSnapshot is the wire view of an in-memory topic node.
type TopicSnapshot struct {
	TopicID      string           `json:"topic_id"`
	Draft        bool             `json:"draft"`
	Title        string           `json:"title"`
	DisplayIndex int              `json:"display_index"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      time.Time        `json:"end_time"`
	Status       string           `json:"status"`
	Notes        []NoteSnapshot   `json:"notes"`
	Lessons      []LessonSnapshot `json:"lessons"`
}

// PathSnapshot is the wire view of a loaded editing session: the full tree
// plus the derived statistic.
type PathSnapshot struct {
	PathID          string                `json:"path_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          string                `json:"status"`
	ProgressPercent int                   `json:"progress_percent"`
	Archived        bool                  `json:"archived"`
	Favourite       bool                  `json:"favourite"`
	Origin          *OriginAuthorResponse `json:"origin,omitempty"`
	Tags            []TagResponse         `json:"tags"`
	Notes           []NoteSnapshot        `json:"notes"`
	Topics          []TopicSnapshot       `json:"topics"`
	Statistic       StatisticSnapshot     `json:"statistic"`
}

// StatisticSnapshot is the wire view of the derived progress counters.
type StatisticSnapshot struct {
	TotalLessons     int `json:"total_lessons"`
	CompletedLessons int `json:"completed_lessons"`
	RemainingLessons int `json:"remaining_lessons"`
	OverallProgress  int `json:"overall_progress"`
}

// NewPathSnapshot converts the in-memory tree and statistic into the wire
// shape. Topics and lessons come out in display order.
func NewPathSnapshot(path tree.Path, stat tree.Statistic) PathSnapshot {
	snapshot := PathSnapshot{
		PathID:          path.ID,
		Title:           path.Title,
		Description:     path.Description,
		Status:          string(path.Status),
		ProgressPercent: path.ProgressPercent,
		Archived:        path.Archived,
		Favourite:       path.Favourite,
		Tags:            make([]TagResponse, 0, len(path.Tags)),
		Notes:           noteSnapshots(path.Notes),
		Topics:          make([]TopicSnapshot, 0, len(path.Topics)),
		Statistic: StatisticSnapshot{
			TotalLessons:     stat.TotalLessons,
			CompletedLessons: stat.CompletedLessons,
			RemainingLessons: stat.RemainingLessons,
			OverallProgress:  stat.OverallProgress,
		},
	}
	if path.Origin != nil {
		snapshot.Origin = &OriginAuthorResponse{
			UserID:    path.Origin.UserID,
			FullName:  path.Origin.FullName,
			AvatarURL: path.Origin.AvatarURL,
		}
	}
	for _, tag := range path.Tags {
		snapshot.Tags = append(snapshot.Tags, TagResponse{TagID: tag.ID, Name: tag.Name, Color: tag.Color})
	}
	for _, topic := range path.SortedTopics() {
		snapshot.Topics = append(snapshot.Topics, NewTopicSnapshot(topic))
	}
	return snapshot
}

// NewTopicSnapshot converts one in-memory topic node into the wire shape.
func NewTopicSnapshot(topic tree.Topic) TopicSnapshot {
	out := TopicSnapshot{
		TopicID:      topic.ID.String(),
		Draft:        topic.ID.IsDraft(),
		Title:        topic.Title,
		DisplayIndex: topic.DisplayIndex,
		StartTime:    topic.StartTime,
		EndTime:      topic.EndTime,
		Status:       string(topic.Status),
		Notes:        noteSnapshots(topic.Notes),
		Lessons:      make([]LessonSnapshot, 0, len(topic.Lessons)),
	}
	for _, lesson := range topic.SortedLessons() {
		out.Lessons = append(out.Lessons, NewLessonSnapshot(lesson))
	}
	return out
}

// NewLessonSnapshot converts one in-memory lesson node into the wire shape.
func NewLessonSnapshot(lesson tree.Lesson) LessonSnapshot {
	out := LessonSnapshot{
		LessonID:     lesson.ID.String(),
		Draft:        lesson.ID.IsDraft(),
		Title:        lesson.Title,
		DisplayIndex: lesson.DisplayIndex,
		StartTime:    lesson.StartTime,
		EndTime:      lesson.EndTime,
		Status:       string(lesson.Status),
		Unlocked:     lesson.Unlocked,
		Notes:        noteSnapshots(lesson.Notes),
		Resources:    make([]ResourceSnapshot, 0, len(lesson.Resources)),
	}
	for _, resource := range lesson.Resources {
		out.Resources = append(out.Resources, ResourceSnapshot{
			ResourceID:   resource.ID,
			Name:         resource.Name,
			Type:         string(resource.Type),
			ExternalLink: resource.ExternalLink,
			SizeBytes:    resource.SizeBytes,
			MimeType:     resource.MimeType,
			ResourceURL:  resource.ResourceURL,
		})
	}
	return out
}

func noteSnapshots(notes []tree.Note) []NoteSnapshot {
	sorted := tree.SortNotes(notes)
	out := make([]NoteSnapshot, 0, len(sorted))
	for _, note := range sorted {
		out = append(out, NoteSnapshot{
			NoteID:       note.ID,
			Title:        note.Title,
			Content:      note.Content,
			DisplayIndex: note.DisplayIndex,
		})
	}
	return out
}

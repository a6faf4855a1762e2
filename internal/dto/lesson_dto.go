package dto

import (
	"time"

	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/tree"
)

// LessonCreateRequest is the payload for persisting a draft lesson.
type LessonCreateRequest struct {
	TopicID   string    `json:"topic_id" validate:"required,max=36"`
	Title     string    `json:"title" validate:"required,min=1,max=255"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// LessonUpdateRequest edits an existing lesson.
type LessonUpdateRequest struct {
	Title     string    `json:"title" validate:"required,min=1,max=255"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// LessonResponse is the wire representation of a lesson.
type LessonResponse struct {
	LessonID     string    `json:"lesson_id"`
	TopicID      string    `json:"topic_id"`
	Title        string    `json:"title"`
	DisplayIndex int       `json:"display_index"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
}

// NewLessonResponse converts a model into a DTO.
func NewLessonResponse(lesson models.Lesson) LessonResponse {
	return LessonResponse{
		LessonID:     lesson.ID,
		TopicID:      lesson.TopicID,
		Title:        lesson.Title,
		DisplayIndex: lesson.DisplayIndex,
		StartTime:    lesson.StartTime,
		EndTime:      lesson.EndTime,
		Status:       lesson.Status,
	}
}

// NewLessonResponseSlice converts a slice of models into DTOs.
func NewLessonResponseSlice(lessons []models.Lesson) []LessonResponse {
	out := make([]LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, NewLessonResponse(lesson))
	}
	return out
}

// LessonNode maps a wire response into a persisted tree node. A lesson is
// unlocked once its start time is not in the future; a lesson without a time
// range is always unlocked.
func LessonNode(res LessonResponse) tree.Lesson {
	return tree.Lesson{
		ID:           tree.PersistedID(res.LessonID),
		Title:        res.Title,
		DisplayIndex: res.DisplayIndex,
		StartTime:    res.StartTime,
		EndTime:      res.EndTime,
		Status:       tree.Status(res.Status),
		Unlocked:     res.StartTime.IsZero() || !res.StartTime.After(time.Now()),
		Notes:        []tree.Note{},
		Resources:    []tree.Resource{},
	}
}

// LessonNodes maps a slice of responses into tree nodes.
func LessonNodes(responses []LessonResponse) []tree.Lesson {
	out := make([]tree.Lesson, 0, len(responses))
	for _, res := range responses {
		out = append(out, LessonNode(res))
	}
	return out
}

package dto

import (
	"time"

	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/tree"
)

// LearningPathCreateRequest is the payload for creating a path.
type LearningPathCreateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=4000"`
}

// LearningPathUpdateRequest updates the title and description of a path.
type LearningPathUpdateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=4000"`
}

// LearningPathProgressRequest persists a recomputed overall progress value.
type LearningPathProgressRequest struct {
	ProgressPercent int `json:"progress_percent" validate:"min=0,max=100"`
}

// OriginAuthorResponse references the user a shared path was cloned from.
type OriginAuthorResponse struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// LearningPathResponse is the wire representation of a learning path.
type LearningPathResponse struct {
	PathID          string                `json:"path_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	StartTime       time.Time             `json:"start_time"`
	EndTime         time.Time             `json:"end_time"`
	Status          string                `json:"status"`
	ProgressPercent int                   `json:"progress_percent"`
	Deleted         bool                  `json:"deleted"`
	Archived        bool                  `json:"archived"`
	Favourite       bool                  `json:"favourite"`
	CreatedAt       time.Time             `json:"created_at"`
	Origin          *OriginAuthorResponse `json:"origin,omitempty"`
}

// NewLearningPathResponse converts a model into a DTO.
func NewLearningPathResponse(path models.LearningPath) LearningPathResponse {
	resp := LearningPathResponse{
		PathID:          path.ID,
		Title:           path.Title,
		Description:     path.Description,
		StartTime:       path.StartTime,
		EndTime:         path.EndTime,
		Status:          path.Status,
		ProgressPercent: path.ProgressPercent,
		Deleted:         path.Deleted,
		Archived:        path.Archived,
		Favourite:       path.Favourite,
		CreatedAt:       path.CreatedAt,
	}
	if path.OriginUserID != "" {
		resp.Origin = &OriginAuthorResponse{
			UserID:    path.OriginUserID,
			FullName:  path.OriginFullName,
			AvatarURL: path.OriginAvatarURL,
		}
	}
	return resp
}

// NewLearningPathResponseSlice converts a slice of models into DTOs.
func NewLearningPathResponseSlice(paths []models.LearningPath) []LearningPathResponse {
	out := make([]LearningPathResponse, 0, len(paths))
	for _, path := range paths {
		out = append(out, NewLearningPathResponse(path))
	}
	return out
}

// LearningPathNode maps a wire response into the in-memory tree root. Child
// collections start empty; they are filled in by dedicated fetches.
func LearningPathNode(res LearningPathResponse) tree.Path {
	node := tree.Path{
		ID:              res.PathID,
		Title:           res.Title,
		Description:     res.Description,
		StartTime:       res.StartTime,
		EndTime:         res.EndTime,
		Status:          tree.Status(res.Status),
		ProgressPercent: res.ProgressPercent,
		Tags:            []tree.Tag{},
		Notes:           []tree.Note{},
		Topics:          []tree.Topic{},
		Deleted:         res.Deleted,
		Archived:        res.Archived,
		Favourite:       res.Favourite,
		CreatedAt:       res.CreatedAt,
	}
	if res.Origin != nil {
		node.Origin = &tree.OriginAuthor{
			UserID:    res.Origin.UserID,
			FullName:  res.Origin.FullName,
			AvatarURL: res.Origin.AvatarURL,
		}
	}
	return node
}

// LearningPathStatisticResponse summarises progress across one path.
type LearningPathStatisticResponse struct {
	PathID           string    `json:"path_id"`
	PathTitle        string    `json:"path_title"`
	TotalTopics      int       `json:"total_topics"`
	TotalLessons     int       `json:"total_lessons"`
	CompletedLessons int       `json:"completed_lessons"`
	RemainingLessons int       `json:"remaining_lessons"`
	OverallProgress  int       `json:"overall_progress"`
	DurationDays     int       `json:"duration_days"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Snapshot extracts the reducer-facing statistic tuple.
func (r LearningPathStatisticResponse) Snapshot() tree.Statistic {
	return tree.Statistic{
		TotalLessons:     r.TotalLessons,
		CompletedLessons: r.CompletedLessons,
		RemainingLessons: r.RemainingLessons,
		OverallProgress:  r.OverallProgress,
	}
}

// ExportResourceEntry is the import/export wire shape of a resource.
type ExportResourceEntry struct {
	Name         string `json:"name" validate:"required,max=255"`
	Type         string `json:"type" validate:"required,oneof=LINK FILE"`
	ExternalLink string `json:"external_link" validate:"omitempty,url"`
	SizeBytes    int64  `json:"size_bytes"`
	MimeType     string `json:"mime_type"`
}

// ExportLessonEntry is the import/export wire shape of a lesson.
type ExportLessonEntry struct {
	Title        string                `json:"title" validate:"required,max=255"`
	DisplayIndex int                   `json:"display_index"`
	Resources    []ExportResourceEntry `json:"resources" validate:"dive"`
}

// ExportTopicEntry is the import/export wire shape of a topic.
type ExportTopicEntry struct {
	Title        string              `json:"title" validate:"required,max=255"`
	DisplayIndex int                 `json:"display_index"`
	Lessons      []ExportLessonEntry `json:"lessons" validate:"dive"`
}

// LearningPathExport is the JSON document produced by export and consumed by
// import.
type LearningPathExport struct {
	Title       string             `json:"title" validate:"required,max=255"`
	Description string             `json:"description"`
	Topics      []ExportTopicEntry `json:"topics" validate:"dive"`
}

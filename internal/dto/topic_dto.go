package dto

import (
	"time"

	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/tree"
)

// TopicCreateRequest is the payload for persisting a draft topic.
type TopicCreateRequest struct {
	PathID string `json:"path_id" validate:"required,max=36"`
	Title  string `json:"title" validate:"required,min=1,max=255"`
}

// TopicUpdateRequest renames an existing topic.
type TopicUpdateRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
}

// TopicResponse is the wire representation of a topic.
type TopicResponse struct {
	TopicID      string    `json:"topic_id"`
	PathID       string    `json:"path_id"`
	Title        string    `json:"title"`
	DisplayIndex int       `json:"display_index"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
}

// NewTopicResponse converts a model into a DTO.
func NewTopicResponse(topic models.Topic) TopicResponse {
	return TopicResponse{
		TopicID:      topic.ID,
		PathID:       topic.PathID,
		Title:        topic.Title,
		DisplayIndex: topic.DisplayIndex,
		StartTime:    topic.StartTime,
		EndTime:      topic.EndTime,
		Status:       topic.Status,
	}
}

// NewTopicResponseSlice converts a slice of models into DTOs.
func NewTopicResponseSlice(topics []models.Topic) []TopicResponse {
	out := make([]TopicResponse, 0, len(topics))
	for _, topic := range topics {
		out = append(out, NewTopicResponse(topic))
	}
	return out
}

// TopicNode maps a wire response into a persisted tree node. Notes and
// lessons start empty and are fetched lazily by the owning container.
func TopicNode(res TopicResponse) tree.Topic {
	return tree.Topic{
		ID:           tree.PersistedID(res.TopicID),
		Title:        res.Title,
		DisplayIndex: res.DisplayIndex,
		StartTime:    res.StartTime,
		EndTime:      res.EndTime,
		Status:       tree.Status(res.Status),
		Notes:        []tree.Note{},
		Lessons:      []tree.Lesson{},
	}
}

// TopicNodes maps a slice of responses into tree nodes.
func TopicNodes(responses []TopicResponse) []tree.Topic {
	out := make([]tree.Topic, 0, len(responses))
	for _, res := range responses {
		out = append(out, TopicNode(res))
	}
	return out
}

package dto

import (
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/tree"
)

// TagCreateRequest creates a tag in the shared lookup.
type TagCreateRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// TagUpdateRequest edits an existing tag.
type TagUpdateRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// TagResponse is the wire representation of a tag.
type TagResponse struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// NewTagResponse converts a model into a DTO.
func NewTagResponse(tag models.Tag) TagResponse {
	color := tag.Color
	if color == "" {
		color = "#000000"
	}
	return TagResponse{
		TagID: tag.ID,
		Name:  tag.Name,
		Color: color,
	}
}

// NewTagResponseSlice converts a slice of models into DTOs.
func NewTagResponseSlice(tags []models.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		out = append(out, NewTagResponse(tag))
	}
	return out
}

// TagNode maps a wire response into a tree tag.
func TagNode(res TagResponse) tree.Tag {
	return tree.Tag{
		ID:    res.TagID,
		Name:  res.Name,
		Color: res.Color,
	}
}

// TagNodes maps a slice of responses into tree tags.
func TagNodes(responses []TagResponse) []tree.Tag {
	out := make([]tree.Tag, 0, len(responses))
	for _, res := range responses {
		out = append(out, TagNode(res))
	}
	return out
}

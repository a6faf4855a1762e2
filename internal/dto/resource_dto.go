package dto

import (
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/tree"
)

// LinkResourceCreateRequest attaches an external link to a lesson.
type LinkResourceCreateRequest struct {
	LessonID     string `json:"lesson_id" validate:"required,max=36"`
	Name         string `json:"name" validate:"required,min=1,max=255"`
	ExternalLink string `json:"external_link" validate:"required,url,max=1024"`
}

// FileResourceCreateRequest registers an already uploaded file for a lesson.
// Upload mechanics live outside this service; the payload carries the stored
// object location.
type FileResourceCreateRequest struct {
	LessonID    string `json:"lesson_id" form:"lesson_id" validate:"required,max=36"`
	Name        string `json:"name" form:"name" validate:"required,min=1,max=255"`
	ResourceURL string `json:"resource_url" form:"resource_url" validate:"required,max=1024"`
	SizeBytes   int64  `json:"size_bytes" form:"size_bytes" validate:"min=0"`
	MimeType    string `json:"mime_type" form:"mime_type" validate:"omitempty,max=128"`
}

// ResourceResponse is the wire representation of a resource.
type ResourceResponse struct {
	ResourceID   string `json:"resource_id"`
	LessonID     string `json:"lesson_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	ExternalLink string `json:"external_link,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	ResourceURL  string `json:"resource_url,omitempty"`
}

// NewResourceResponse converts a model into a DTO.
func NewResourceResponse(resource models.Resource) ResourceResponse {
	return ResourceResponse{
		ResourceID:   resource.ID,
		LessonID:     resource.LessonID,
		Name:         resource.Name,
		Type:         resource.Type,
		ExternalLink: resource.ExternalLink,
		SizeBytes:    resource.SizeBytes,
		MimeType:     resource.MimeType,
		ResourceURL:  resource.ResourceURL,
	}
}

// NewResourceResponseSlice converts a slice of models into DTOs.
func NewResourceResponseSlice(resources []models.Resource) []ResourceResponse {
	out := make([]ResourceResponse, 0, len(resources))
	for _, resource := range resources {
		out = append(out, NewResourceResponse(resource))
	}
	return out
}

// ResourceNode maps a wire response into a tree resource.
func ResourceNode(res ResourceResponse) tree.Resource {
	return tree.Resource{
		ID:           res.ResourceID,
		Name:         res.Name,
		Type:         tree.ResourceType(res.Type),
		ExternalLink: res.ExternalLink,
		SizeBytes:    res.SizeBytes,
		MimeType:     res.MimeType,
		ResourceURL:  res.ResourceURL,
	}
}

// ResourceNodes maps a slice of responses into tree resources.
func ResourceNodes(responses []ResourceResponse) []tree.Resource {
	out := make([]tree.Resource, 0, len(responses))
	for _, res := range responses {
		out = append(out, ResourceNode(res))
	}
	return out
}

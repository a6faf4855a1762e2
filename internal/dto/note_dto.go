package dto

import (
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/tree"
)

// NoteCreateRequest attaches a note to a path, topic or lesson.
type NoteCreateRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=PATH TOPIC LESSON"`
	TargetID   string `json:"target_id" validate:"required,max=36"`
	Title      string `json:"title" validate:"omitempty,max=255"`
	Content    string `json:"content" validate:"required,min=1"`
}

// NoteUpdateRequest edits an existing note.
type NoteUpdateRequest struct {
	Title   string `json:"title" validate:"omitempty,max=255"`
	Content string `json:"content" validate:"required,min=1"`
}

// NoteResponse is the wire representation of a note.
type NoteResponse struct {
	NoteID       string `json:"note_id"`
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	DisplayIndex int    `json:"display_index"`
}

// NewNoteResponse converts a model into a DTO.
func NewNoteResponse(note models.Note) NoteResponse {
	return NoteResponse{
		NoteID:       note.ID,
		TargetType:   note.TargetType,
		TargetID:     note.TargetID,
		Title:        note.Title,
		Content:      note.Content,
		DisplayIndex: note.DisplayIndex,
	}
}

// NewNoteResponseSlice converts a slice of models into DTOs.
func NewNoteResponseSlice(notes []models.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, NewNoteResponse(note))
	}
	return out
}

// NoteNode maps a wire response into a tree note.
func NoteNode(res NoteResponse) tree.Note {
	return tree.Note{
		ID:           res.NoteID,
		TargetType:   tree.TargetType(res.TargetType),
		TargetID:     res.TargetID,
		Title:        res.Title,
		Content:      res.Content,
		DisplayIndex: res.DisplayIndex,
	}
}

// NoteNodes maps a slice of responses into tree notes.
func NoteNodes(responses []NoteResponse) []tree.Note {
	out := make([]tree.Note, 0, len(responses))
	for _, res := range responses {
		out = append(out, NoteNode(res))
	}
	return out
}

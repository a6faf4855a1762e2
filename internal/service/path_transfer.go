package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/models"
)

// learningPathExportSchema guards imported documents before any row is
// written. Validation failures surface the schema error verbatim so callers
// can see which field was rejected.
const learningPathExportSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string", "minLength": 1, "maxLength": 255},
    "description": {"type": "string"},
    "topics": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title": {"type": "string", "minLength": 1, "maxLength": 255},
          "display_index": {"type": "integer", "minimum": 0},
          "lessons": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["title"],
              "properties": {
                "title": {"type": "string", "minLength": 1, "maxLength": 255},
                "display_index": {"type": "integer", "minimum": 0},
                "resources": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["name", "type"],
                    "properties": {
                      "name": {"type": "string", "minLength": 1, "maxLength": 255},
                      "type": {"enum": ["LINK", "FILE"]},
                      "external_link": {"type": "string"},
                      "size_bytes": {"type": "integer", "minimum": 0},
                      "mime_type": {"type": "string"}
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var exportSchema = jsonschema.MustCompileString("learning_path_export.schema.json", learningPathExportSchema)

// Clone copies another user's path into the caller's library. Statuses and
// progress reset; the origin author is recorded so the copy can credit the
// source.
func (s *pathService) Clone(ctx context.Context, userID, sourcePathID string, origin dto.OriginAuthorResponse) (dto.LearningPathResponse, error) {
	source, err := s.paths.FindByID(ctx, sourcePathID)
	if err != nil {
		return dto.LearningPathResponse{}, err
	}

	clone := models.LearningPath{
		UserID:          userID,
		Title:           source.Title,
		Description:     source.Description,
		StartTime:       source.StartTime,
		EndTime:         source.EndTime,
		Status:          "NOT_STARTED",
		OriginUserID:    origin.UserID,
		OriginFullName:  origin.FullName,
		OriginAvatarURL: origin.AvatarURL,
	}
	if clone.OriginUserID == "" {
		clone.OriginUserID = source.UserID
	}
	if err := s.paths.Create(ctx, &clone); err != nil {
		return dto.LearningPathResponse{}, err
	}

	topics, err := s.topics.ListByPath(ctx, sourcePathID)
	if err != nil {
		return dto.LearningPathResponse{}, err
	}

	for _, sourceTopic := range topics {
		topic := models.Topic{
			PathID:       clone.ID,
			Title:        sourceTopic.Title,
			DisplayIndex: sourceTopic.DisplayIndex,
			StartTime:    sourceTopic.StartTime,
			EndTime:      sourceTopic.EndTime,
			Status:       "NOT_STARTED",
		}
		if err := s.topics.Create(ctx, &topic); err != nil {
			return dto.LearningPathResponse{}, err
		}

		lessons, err := s.lessons.ListByTopic(ctx, sourceTopic.ID)
		if err != nil {
			return dto.LearningPathResponse{}, err
		}
		for _, sourceLesson := range lessons {
			lesson := models.Lesson{
				TopicID:      topic.ID,
				Title:        sourceLesson.Title,
				DisplayIndex: sourceLesson.DisplayIndex,
				StartTime:    sourceLesson.StartTime,
				EndTime:      sourceLesson.EndTime,
				Status:       "NOT_STARTED",
			}
			if err := s.lessons.Create(ctx, &lesson); err != nil {
				return dto.LearningPathResponse{}, err
			}

			resources, err := s.resources.ListByLesson(ctx, sourceLesson.ID)
			if err != nil {
				return dto.LearningPathResponse{}, err
			}
			for _, sourceResource := range resources {
				resource := models.Resource{
					LessonID:     lesson.ID,
					Name:         sourceResource.Name,
					Type:         sourceResource.Type,
					ExternalLink: sourceResource.ExternalLink,
					SizeBytes:    sourceResource.SizeBytes,
					MimeType:     sourceResource.MimeType,
					ResourceURL:  sourceResource.ResourceURL,
				}
				if err := s.resources.Create(ctx, &resource); err != nil {
					return dto.LearningPathResponse{}, err
				}
			}
		}
	}

	s.logger.Info().
		Str("source_path_id", sourcePathID).
		Str("clone_path_id", clone.ID).
		Msg("learning path cloned")

	return dto.NewLearningPathResponse(clone), nil
}

// Export serializes the owned path into a portable document. Notes are
// deliberately excluded: they are private annotations, not shareable
// curriculum.
func (s *pathService) Export(ctx context.Context, userID, pathID string) (dto.LearningPathExport, error) {
	path, err := s.ownedPath(ctx, userID, pathID)
	if err != nil {
		return dto.LearningPathExport{}, err
	}

	topics, err := s.topics.ListByPath(ctx, pathID)
	if err != nil {
		return dto.LearningPathExport{}, err
	}

	export := dto.LearningPathExport{
		Title:       path.Title,
		Description: path.Description,
		Topics:      make([]dto.ExportTopicEntry, 0, len(topics)),
	}

	for _, topic := range topics {
		entry := dto.ExportTopicEntry{
			Title:        topic.Title,
			DisplayIndex: topic.DisplayIndex,
		}

		lessons, err := s.lessons.ListByTopic(ctx, topic.ID)
		if err != nil {
			return dto.LearningPathExport{}, err
		}
		for _, lesson := range lessons {
			lessonEntry := dto.ExportLessonEntry{
				Title:        lesson.Title,
				DisplayIndex: lesson.DisplayIndex,
			}

			resources, err := s.resources.ListByLesson(ctx, lesson.ID)
			if err != nil {
				return dto.LearningPathExport{}, err
			}
			for _, resource := range resources {
				lessonEntry.Resources = append(lessonEntry.Resources, dto.ExportResourceEntry{
					Name:         resource.Name,
					Type:         resource.Type,
					ExternalLink: resource.ExternalLink,
					SizeBytes:    resource.SizeBytes,
					MimeType:     resource.MimeType,
				})
			}

			entry.Lessons = append(entry.Lessons, lessonEntry)
		}

		export.Topics = append(export.Topics, entry)
	}

	return export, nil
}

// Import validates a portable document against the export schema and
// materializes a fresh path for the caller.
func (s *pathService) Import(ctx context.Context, userID string, payload []byte) (dto.LearningPathResponse, error) {
	var raw interface{}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return dto.LearningPathResponse{}, err
	}
	if err := exportSchema.Validate(raw); err != nil {
		return dto.LearningPathResponse{}, err
	}

	var doc dto.LearningPathExport
	if err := json.Unmarshal(payload, &doc); err != nil {
		return dto.LearningPathResponse{}, err
	}

	path := models.LearningPath{
		UserID:      userID,
		Title:       strings.TrimSpace(doc.Title),
		Description: doc.Description,
		Status:      "NOT_STARTED",
	}
	if err := s.paths.Create(ctx, &path); err != nil {
		return dto.LearningPathResponse{}, err
	}

	for i, topicEntry := range doc.Topics {
		displayIndex := topicEntry.DisplayIndex
		if displayIndex == 0 {
			displayIndex = i + 1
		}
		topic := models.Topic{
			PathID:       path.ID,
			Title:        topicEntry.Title,
			DisplayIndex: displayIndex,
			Status:       "NOT_STARTED",
		}
		if err := s.topics.Create(ctx, &topic); err != nil {
			return dto.LearningPathResponse{}, err
		}

		for j, lessonEntry := range topicEntry.Lessons {
			lessonIndex := lessonEntry.DisplayIndex
			if lessonIndex == 0 {
				lessonIndex = j + 1
			}
			lesson := models.Lesson{
				TopicID:      topic.ID,
				Title:        lessonEntry.Title,
				DisplayIndex: lessonIndex,
				Status:       "NOT_STARTED",
			}
			if err := s.lessons.Create(ctx, &lesson); err != nil {
				return dto.LearningPathResponse{}, err
			}

			for _, resourceEntry := range lessonEntry.Resources {
				resource := models.Resource{
					LessonID:     lesson.ID,
					Name:         resourceEntry.Name,
					Type:         resourceEntry.Type,
					ExternalLink: resourceEntry.ExternalLink,
					SizeBytes:    resourceEntry.SizeBytes,
					MimeType:     resourceEntry.MimeType,
				}
				if err := s.resources.Create(ctx, &resource); err != nil {
					return dto.LearningPathResponse{}, err
				}
			}
		}
	}

	s.logger.Info().Str("path_id", path.ID).Int("topics", len(doc.Topics)).Msg("learning path imported")
	return dto.NewLearningPathResponse(path), nil
}

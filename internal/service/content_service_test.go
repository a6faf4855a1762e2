package service

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/repository"
	"github.com/noah-isme/pathway-api/internal/tree"
)

func TestTopicServiceCreateAssignsDisplayIndex(t *testing.T) {
	db := newServiceTestDB(t)
	svc := NewTopicService(
		repository.NewTopicRepository(db),
		repository.NewLessonRepository(db),
		repository.NewNoteRepository(db),
		nil,
		validator.New(),
		zerolog.Nop(),
	)

	path := models.LearningPath{UserID: "user-1", Title: "Go"}
	require.NoError(t, db.Create(&path).Error)

	first, err := svc.Create(context.Background(), dto.TopicCreateRequest{PathID: path.ID, Title: "Basics"})
	require.NoError(t, err)
	require.Equal(t, 1, first.DisplayIndex)
	require.Equal(t, "NOT_STARTED", first.Status)

	second, err := svc.Create(context.Background(), dto.TopicCreateRequest{PathID: path.ID, Title: "Concurrency"})
	require.NoError(t, err)
	require.Equal(t, 2, second.DisplayIndex)
}

func TestTopicServiceDeleteInvalidatesStatisticCache(t *testing.T) {
	db := newServiceTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := NewTopicService(
		repository.NewTopicRepository(db),
		repository.NewLessonRepository(db),
		repository.NewNoteRepository(db),
		cache,
		validator.New(),
		zerolog.Nop(),
	)

	path := seedPathWithLessons(t, db, "user-1", []string{"COMPLETED"})
	require.NoError(t, mr.Set(statisticCacheKey(path.ID), `{"total_lessons":1}`))

	var topic models.Topic
	require.NoError(t, db.First(&topic, "path_id = ?", path.ID).Error)
	require.NoError(t, svc.Delete(context.Background(), topic.ID))

	require.False(t, mr.Exists(statisticCacheKey(path.ID)), "cached statistic must be dropped after a topic delete")
}

func TestLessonServiceCreateUnderMissingTopicFails(t *testing.T) {
	db := newServiceTestDB(t)
	svc := NewLessonService(
		repository.NewLessonRepository(db),
		repository.NewTopicRepository(db),
		nil,
		validator.New(),
		zerolog.Nop(),
	)

	_, err := svc.Create(context.Background(), dto.LessonCreateRequest{TopicID: "missing", Title: "Orphan"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLessonServiceDeleteRemovesDescendants(t *testing.T) {
	db := newServiceTestDB(t)
	svc := NewLessonService(
		repository.NewLessonRepository(db),
		repository.NewTopicRepository(db),
		nil,
		validator.New(),
		zerolog.Nop(),
	)

	path := seedPathWithLessons(t, db, "user-1", []string{"IN_PROGRESS"})
	var topic models.Topic
	require.NoError(t, db.First(&topic, "path_id = ?", path.ID).Error)
	var lesson models.Lesson
	require.NoError(t, db.First(&lesson, "topic_id = ?", topic.ID).Error)

	require.NoError(t, db.Create(&models.Resource{LessonID: lesson.ID, Name: "r", Type: "LINK"}).Error)
	require.NoError(t, db.Create(&models.LessonProgress{LessonID: lesson.ID, Status: "IN_PROGRESS"}).Error)

	require.NoError(t, svc.Delete(context.Background(), lesson.ID))

	var resources int64
	require.NoError(t, db.Model(&models.Resource{}).Where("lesson_id = ?", lesson.ID).Count(&resources).Error)
	require.Zero(t, resources)
	var progress int64
	require.NoError(t, db.Model(&models.LessonProgress{}).Where("lesson_id = ?", lesson.ID).Count(&progress).Error)
	require.Zero(t, progress)
}

func TestResourceServiceSniffsMimeTypeFromSample(t *testing.T) {
	db := newServiceTestDB(t)
	svc := NewResourceService(
		repository.NewResourceRepository(db),
		repository.NewLessonRepository(db),
		validator.New(),
		zerolog.Nop(),
	)

	path := seedPathWithLessons(t, db, "user-1", []string{"NOT_STARTED"})
	var topic models.Topic
	require.NoError(t, db.First(&topic, "path_id = ?", path.ID).Error)
	var lesson models.Lesson
	require.NoError(t, db.First(&lesson, "topic_id = ?", topic.ID).Error)

	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	created, err := svc.AttachFile(context.Background(), dto.FileResourceCreateRequest{
		LessonID:    lesson.ID,
		Name:        "diagram",
		ResourceURL: "https://cdn.example.com/diagram.png",
		SizeBytes:   int64(len(pngHeader)),
	}, pngHeader)
	require.NoError(t, err)
	require.Equal(t, "image/png", created.MimeType)
	require.Equal(t, "FILE", created.Type)
}

func TestResourceServiceAttachLinkValidatesURL(t *testing.T) {
	db := newServiceTestDB(t)
	svc := NewResourceService(
		repository.NewResourceRepository(db),
		repository.NewLessonRepository(db),
		validator.New(),
		zerolog.Nop(),
	)

	_, err := svc.AttachLink(context.Background(), dto.LinkResourceCreateRequest{
		LessonID:     "lesson-1",
		Name:         "bad",
		ExternalLink: "not-a-url",
	})
	require.Error(t, err)
}

func TestProgressServicePersistsStatusInBothTables(t *testing.T) {
	db := newServiceTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := NewProgressService(
		repository.NewLessonRepository(db),
		repository.NewTopicRepository(db),
		repository.NewLearningPathRepository(db),
		repository.NewProgressRepository(db),
		cache,
		zerolog.Nop(),
	)

	path := seedPathWithLessons(t, db, "user-1", []string{"NOT_STARTED"})
	require.NoError(t, mr.Set(statisticCacheKey(path.ID), `{"total_lessons":1}`))

	var topic models.Topic
	require.NoError(t, db.First(&topic, "path_id = ?", path.ID).Error)
	var lesson models.Lesson
	require.NoError(t, db.First(&lesson, "topic_id = ?", topic.ID).Error)

	require.NoError(t, svc.UpdateLessonStatus(context.Background(), lesson.ID, tree.StatusCompleted))

	var stored models.Lesson
	require.NoError(t, db.First(&stored, "id = ?", lesson.ID).Error)
	require.Equal(t, "COMPLETED", stored.Status)

	var progress models.LessonProgress
	require.NoError(t, db.First(&progress, "lesson_id = ?", lesson.ID).Error)
	require.Equal(t, "COMPLETED", progress.Status)

	require.False(t, mr.Exists(statisticCacheKey(path.ID)))
}

func TestProgressServiceRejectsUnknownStatus(t *testing.T) {
	db := newServiceTestDB(t)
	svc := NewProgressService(
		repository.NewLessonRepository(db),
		repository.NewTopicRepository(db),
		repository.NewLearningPathRepository(db),
		repository.NewProgressRepository(db),
		nil,
		zerolog.Nop(),
	)

	require.Error(t, svc.UpdateLessonStatus(context.Background(), "any", tree.Status("BOGUS")))
}

func TestProgressServiceSavePathProgressClamps(t *testing.T) {
	db := newServiceTestDB(t)
	svc := NewProgressService(
		repository.NewLessonRepository(db),
		repository.NewTopicRepository(db),
		repository.NewLearningPathRepository(db),
		repository.NewProgressRepository(db),
		nil,
		zerolog.Nop(),
	)

	path := seedPathWithLessons(t, db, "user-1", []string{"NOT_STARTED"})
	require.NoError(t, svc.SavePathProgress(context.Background(), path.ID, 250))

	var stored models.LearningPath
	require.NoError(t, db.First(&stored, "id = ?", path.ID).Error)
	require.Equal(t, 100, stored.ProgressPercent)
}

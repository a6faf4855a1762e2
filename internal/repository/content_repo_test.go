package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/models"
)

func TestTopicRepositoryDeleteCascadesToLessonContent(t *testing.T) {
	db := setupRepoTestDB(t)
	topics := NewTopicRepository(db)

	path := models.LearningPath{Title: "Go Backend", UserID: "user-cascade"}
	require.NoError(t, db.Create(&path).Error)

	topic := models.Topic{PathID: path.ID, Title: "Concurrency", DisplayIndex: 1}
	require.NoError(t, db.Create(&topic).Error)

	lesson := models.Lesson{TopicID: topic.ID, Title: "Channels", DisplayIndex: 1, Status: "IN_PROGRESS"}
	require.NoError(t, db.Create(&lesson).Error)

	resource := models.Resource{LessonID: lesson.ID, Name: "Effective Go", Type: "LINK", ExternalLink: "https://go.dev/doc/effective_go"}
	require.NoError(t, db.Create(&resource).Error)
	require.NoError(t, db.Create(&models.LessonProgress{LessonID: lesson.ID, Status: "IN_PROGRESS"}).Error)
	require.NoError(t, db.Create(&models.Note{TargetType: "LESSON", TargetID: lesson.ID, Content: "select semantics", DisplayIndex: 1}).Error)
	require.NoError(t, db.Create(&models.Note{TargetType: "TOPIC", TargetID: topic.ID, Content: "read before lab", DisplayIndex: 1}).Error)

	require.NoError(t, topics.Delete(context.Background(), topic.ID))

	for _, probe := range []struct {
		name  string
		count func() int64
	}{
		{"topics", func() int64 { return countRows(t, db, &models.Topic{}, "id = ?", topic.ID) }},
		{"lessons", func() int64 { return countRows(t, db, &models.Lesson{}, "topic_id = ?", topic.ID) }},
		{"resources", func() int64 { return countRows(t, db, &models.Resource{}, "lesson_id = ?", lesson.ID) }},
		{"progress", func() int64 { return countRows(t, db, &models.LessonProgress{}, "lesson_id = ?", lesson.ID) }},
		{"notes", func() int64 {
			return countRows(t, db, &models.Note{}, "target_id IN ?", []string{topic.ID, lesson.ID})
		}},
	} {
		require.Zero(t, probe.count(), "expected no %s rows after topic delete", probe.name)
	}
}

func TestLessonRepositoryCountByPath(t *testing.T) {
	db := setupRepoTestDB(t)
	lessons := NewLessonRepository(db)

	path := models.LearningPath{Title: "Counting", UserID: "user-count"}
	require.NoError(t, db.Create(&path).Error)
	topic := models.Topic{PathID: path.ID, Title: "Only Topic", DisplayIndex: 1}
	require.NoError(t, db.Create(&topic).Error)

	for _, status := range []string{"COMPLETED", "COMPLETED", "NOT_STARTED"} {
		require.NoError(t, db.Create(&models.Lesson{TopicID: topic.ID, Title: "L", Status: status}).Error)
	}

	total, completed, err := lessons.CountByPath(context.Background(), path.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Equal(t, int64(2), completed)
}

func TestLessonRepositoryNextDisplayIndex(t *testing.T) {
	db := setupRepoTestDB(t)
	lessons := NewLessonRepository(db)

	path := models.LearningPath{Title: "Ordering", UserID: "user-order"}
	require.NoError(t, db.Create(&path).Error)
	topic := models.Topic{PathID: path.ID, Title: "T", DisplayIndex: 1}
	require.NoError(t, db.Create(&topic).Error)

	next, err := lessons.NextDisplayIndex(context.Background(), topic.ID)
	require.NoError(t, err)
	require.Equal(t, 1, next)

	require.NoError(t, db.Create(&models.Lesson{TopicID: topic.ID, Title: "First", DisplayIndex: 4}).Error)

	next, err = lessons.NextDisplayIndex(context.Background(), topic.ID)
	require.NoError(t, err)
	require.Equal(t, 5, next)
}

func TestProgressRepositoryUpsertReplacesStatus(t *testing.T) {
	db := setupRepoTestDB(t)
	progress := NewProgressRepository(db)

	first, err := progress.Upsert(context.Background(), "lesson-upsert", "IN_PROGRESS")
	require.NoError(t, err)
	require.Equal(t, "IN_PROGRESS", first.Status)

	second, err := progress.Upsert(context.Background(), "lesson-upsert", "COMPLETED")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "upsert should reuse the existing row")
	require.Equal(t, "COMPLETED", second.Status)

	require.Equal(t, int64(1), countRows(t, db, &models.LessonProgress{}, "lesson_id = ?", "lesson-upsert"))
}

func TestNotificationRepositoryReadLifecycle(t *testing.T) {
	db := setupRepoTestDB(t)
	notifications := NewNotificationRepository(db)

	const userID = "user-notif"
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		n := models.Notification{UserID: userID, Message: "lesson due", SentAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, notifications.Create(context.Background(), &n))
	}

	listed, err := notifications.ListByUser(context.Background(), userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.True(t, listed[0].SentAt.After(listed[2].SentAt), "newest notification should come first")

	unread, err := notifications.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, int64(3), unread)

	require.NoError(t, notifications.MarkRead(context.Background(), listed[0].ID, userID))
	unread, err = notifications.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, int64(2), unread)

	require.ErrorIs(t, notifications.MarkRead(context.Background(), listed[1].ID, "someone-else"), gorm.ErrRecordNotFound)

	require.NoError(t, notifications.MarkAllRead(context.Background(), userID))
	unread, err = notifications.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	require.Zero(t, unread)

	require.NoError(t, notifications.Delete(context.Background(), listed[2].ID, userID))
	require.NoError(t, notifications.DeleteAll(context.Background(), userID))
	require.Zero(t, countRows(t, db, &models.Notification{}, "user_id = ?", userID))
}

func TestLearningPathRepositorySoftDeleteHidesPath(t *testing.T) {
	db := setupRepoTestDB(t)
	paths := NewLearningPathRepository(db)

	path := models.LearningPath{Title: "Hidden", UserID: "user-soft"}
	require.NoError(t, paths.Create(context.Background(), &path))

	require.NoError(t, paths.SoftDelete(context.Background(), []string{path.ID}))

	_, err := paths.FindByID(context.Background(), path.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Row survives for recovery, it is only filtered out of reads.
	require.Equal(t, int64(1), countRows(t, db, &models.LearningPath{}, "id = ?", path.ID))
}

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.LearningPath{},
		&models.Tag{},
		&models.Topic{},
		&models.Lesson{},
		&models.Note{},
		&models.Resource{},
		&models.LessonProgress{},
		&models.Notification{},
	))
	return db
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

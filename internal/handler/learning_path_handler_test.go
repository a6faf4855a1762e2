package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/handler"
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/repository"
	"github.com/noah-isme/pathway-api/internal/service"
)

func newHandlerTestDB(t *testing.T) *gorm.DB {
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
	))
	return db
}

func newPathTestApp(t *testing.T, db *gorm.DB, userID string) *fiber.App {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := service.NewPathService(
		repository.NewLearningPathRepository(db),
		repository.NewTopicRepository(db),
		repository.NewLessonRepository(db),
		repository.NewNoteRepository(db),
		repository.NewResourceRepository(db),
		repository.NewTagRepository(db),
		cache,
		time.Minute,
		validator.New(),
		zerolog.Nop(),
	)

	app := fiber.New()
	group := app.Group("/api/paths", func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	handler.NewLearningPathHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestLearningPathHandler_CreateAndGet(t *testing.T) {
	db := newHandlerTestDB(t)
	app := newPathTestApp(t, db, "user-1")

	resp := postJSON(t, app, http.MethodPost, "/api/paths/", map[string]string{
		"title":       "Backend Fundamentals",
		"description": "HTTP, SQL and friends",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.LearningPathResponse
	decodeEnvelope(t, resp, &created)
	require.NotEmpty(t, created.PathID)
	require.Equal(t, "Backend Fundamentals", created.Title)
	require.Equal(t, "NOT_STARTED", created.Status)

	req := httptest.NewRequest(http.MethodGet, "/api/paths/"+created.PathID, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched dto.LearningPathResponse
	decodeEnvelope(t, resp, &fetched)
	require.Equal(t, created.PathID, fetched.PathID)
}

func TestLearningPathHandler_CreateRejectsBlankTitle(t *testing.T) {
	db := newHandlerTestDB(t)
	app := newPathTestApp(t, db, "user-1")

	resp := postJSON(t, app, http.MethodPost, "/api/paths/", map[string]string{"title": ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestLearningPathHandler_RequiresUser(t *testing.T) {
	db := newHandlerTestDB(t)
	app := newPathTestApp(t, db, "")

	resp := postJSON(t, app, http.MethodPost, "/api/paths/", map[string]string{"title": "No user"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestLearningPathHandler_ArchiveHidesFromDefaultList(t *testing.T) {
	db := newHandlerTestDB(t)
	app := newPathTestApp(t, db, "user-1")

	resp := postJSON(t, app, http.MethodPost, "/api/paths/", map[string]string{"title": "Old Path"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.LearningPathResponse
	decodeEnvelope(t, resp, &created)

	resp = postJSON(t, app, http.MethodPatch, "/api/paths/"+created.PathID+"/archive", map[string]bool{"archived": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	req := httptest.NewRequest(http.MethodGet, "/api/paths/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []dto.LearningPathResponse
	decodeEnvelope(t, resp, &listed)
	require.Empty(t, listed)

	req = httptest.NewRequest(http.MethodGet, "/api/paths/?include_archived=true", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeEnvelope(t, resp, &listed)
	require.Len(t, listed, 1)
}

func TestLearningPathHandler_BulkDeleteRejectsForeignPath(t *testing.T) {
	db := newHandlerTestDB(t)
	app := newPathTestApp(t, db, "user-1")

	foreign := models.LearningPath{UserID: "someone-else", Title: "Not yours"}
	require.NoError(t, db.Create(&foreign).Error)

	resp := postJSON(t, app, http.MethodDelete, "/api/paths/", map[string][]string{"path_ids": {foreign.ID}})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestLearningPathHandler_StatisticEndpoint(t *testing.T) {
	db := newHandlerTestDB(t)
	app := newPathTestApp(t, db, "user-1")

	path := models.LearningPath{UserID: "user-1", Title: "Go Deep"}
	require.NoError(t, db.Create(&path).Error)
	topic := models.Topic{PathID: path.ID, Title: "Basics", DisplayIndex: 1}
	require.NoError(t, db.Create(&topic).Error)
	for i, status := range []string{"COMPLETED", "NOT_STARTED"} {
		lesson := models.Lesson{TopicID: topic.ID, Title: "Lesson", DisplayIndex: i + 1, Status: status}
		require.NoError(t, db.Create(&lesson).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/paths/"+path.ID+"/statistic", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stat dto.LearningPathStatisticResponse
	decodeEnvelope(t, resp, &stat)
	require.Equal(t, 2, stat.TotalLessons)
	require.Equal(t, 1, stat.CompletedLessons)
	require.Equal(t, 1, stat.RemainingLessons)
	require.Equal(t, 50, stat.OverallProgress)
}

func TestLearningPathHandler_ImportRejectsInvalidDocument(t *testing.T) {
	db := newHandlerTestDB(t)
	app := newPathTestApp(t, db, "user-1")

	resp := postJSON(t, app, http.MethodPost, "/api/paths/import", map[string]interface{}{
		"description": "missing the required title",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestLearningPathHandler_ExportImportRoundTrip(t *testing.T) {
	db := newHandlerTestDB(t)
	app := newPathTestApp(t, db, "user-1")

	path := models.LearningPath{UserID: "user-1", Title: "Shareable"}
	require.NoError(t, db.Create(&path).Error)
	topic := models.Topic{PathID: path.ID, Title: "Only Topic", DisplayIndex: 1}
	require.NoError(t, db.Create(&topic).Error)
	lesson := models.Lesson{TopicID: topic.ID, Title: "Only Lesson", DisplayIndex: 1, Status: "COMPLETED"}
	require.NoError(t, db.Create(&lesson).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/paths/"+path.ID+"/export", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var export dto.LearningPathExport
	decodeEnvelope(t, resp, &export)
	require.Equal(t, "Shareable", export.Title)
	require.Len(t, export.Topics, 1)
	require.Len(t, export.Topics[0].Lessons, 1)

	resp = postJSON(t, app, http.MethodPost, "/api/paths/import", export)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var imported dto.LearningPathResponse
	decodeEnvelope(t, resp, &imported)
	require.NotEqual(t, path.ID, imported.PathID)
	require.Equal(t, "Shareable", imported.Title)
	require.Equal(t, "NOT_STARTED", imported.Status)
}

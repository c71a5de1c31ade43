package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasakita/recipe-share/internal/imagehost"
	"github.com/rasakita/recipe-share/internal/model"
	"github.com/rasakita/recipe-share/internal/queue"
	"github.com/rasakita/recipe-share/internal/repository"
)

// recipeForm builds a multipart body with the standard create fields.
// withPhoto controls whether a foto file part is attached.
func recipeForm(t *testing.T, withPhoto bool) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := map[string]string{
		"nama":             "Rendang",
		"bahan":            `["daging sapi","santan"]`,
		"langkah":          `["masak santan","masukkan daging"]`,
		"waktuMasak":       "240",
		"porsi":            "6",
		"kategori":         "utama",
		"tingkatKesulitan": "sulit",
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withPhoto {
		fw, err := w.CreateFormFile("foto", "rendang.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func recipeCreateContext(t *testing.T, body *bytes.Buffer, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/recipes", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(9))
	c.Set("role", model.RoleUser)
	c.Set("user_nama", "Budi")
	c.Set("user_email", "budi@example.com")
	return c, rec
}

// captureCleanup swaps the background cleanup dispatch for a recorder and
// restores it when the test ends.
func captureCleanup(t *testing.T) *[]queue.ImageCleanupEvent {
	t.Helper()
	events := []queue.ImageCleanupEvent{}
	prev := cleanupPublish
	cleanupPublish = func(ev queue.ImageCleanupEvent) { events = append(events, ev) }
	t.Cleanup(func() { cleanupPublish = prev })
	return &events
}

func fakeImageHost(t *testing.T) *imagehost.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"abc","link":"https://i.example.com/abc.jpg","deletehash":"del456"},"success":true,"status":200}`))
	}))
	t.Cleanup(srv.Close)
	return imagehost.NewClientWithBaseURL("test-id", srv.URL)
}

func TestRecipeCreateMissingPhoto(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	h := NewRecipeHandler(repository.NewRecipeRepo(db), fakeImageHost(t), nil)

	body, ct := recipeForm(t, false)
	c, rec := recipeCreateContext(t, body, ct)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Foto resep wajib diupload")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeCreateSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	events := captureCleanup(t)

	now := time.Now()
	mock.ExpectExec("INSERT INTO recipes").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT average_rating, total_reviews, created_at, updated_at FROM recipes WHERE id = ?`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"average_rating", "total_reviews", "created_at", "updated_at"}).
			AddRow(0.0, 0, now, now))

	h := NewRecipeHandler(repository.NewRecipeRepo(db), fakeImageHost(t), nil)
	body, ct := recipeForm(t, true)
	c, rec := recipeCreateContext(t, body, ct)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resep berhasil dibuat")
	assert.Contains(t, rec.Body.String(), "https://i.example.com/abc.jpg")
	assert.Empty(t, *events)
	require.NoError(t, mock.ExpectationsWereMet())
}

// If the insert fails after the photo already landed on the host, the
// handler must queue the uploaded photo for deletion so it is not orphaned.
func TestRecipeCreateInsertFailureCleansUpPhoto(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	events := captureCleanup(t)

	mock.ExpectExec("INSERT INTO recipes").
		WillReturnError(assert.AnError)

	h := NewRecipeHandler(repository.NewRecipeRepo(db), fakeImageHost(t), nil)
	body, ct := recipeForm(t, true)
	c, rec := recipeCreateContext(t, body, ct)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gagal membuat resep")

	require.Len(t, *events, 1)
	assert.Equal(t, "del456", (*events)[0].DeleteRef)
	assert.Equal(t, "failed", (*events)[0].Reason)
	require.NoError(t, mock.ExpectationsWereMet())
}

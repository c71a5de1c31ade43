// Package handler exposes HTTP handlers for the recipe catalog. Create and
// update accept multipart forms because the photo travels as a file part;
// bahan/langkah arrive as JSON-encoded string arrays inside ordinary form
// fields. A recipe cannot exist without a successfully stored photo.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rasakita/recipe-share/internal/imagehost"
	"github.com/rasakita/recipe-share/internal/middleware"
	"github.com/rasakita/recipe-share/internal/model"
	"github.com/rasakita/recipe-share/internal/queue"
	"github.com/rasakita/recipe-share/internal/repository"
	queue_publisher "github.com/rasakita/recipe-share/internal/service"
)

// RecipeHandler bundles the recipe repository, the image host client and
// the response-cache invalidator.
type RecipeHandler struct {
	Recipes *repository.RecipeRepo
	Host    *imagehost.Client
	Cache   *middleware.CacheInvalidator
}

func NewRecipeHandler(r *repository.RecipeRepo, host *imagehost.Client, cache *middleware.CacheInvalidator) *RecipeHandler {
	if r == nil || host == nil {
		panic("nil dependency passed to NewRecipeHandler")
	}
	return &RecipeHandler{Recipes: r, Host: host, Cache: cache}
}

// List handles GET /recipes. Filters are exact-match equality on the enum
// columns; results are newest first with ceil-based pagination.
func (h *RecipeHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repository.RecipeFilter{
		Kategori:         c.QueryParam("kategori"),
		TingkatKesulitan: c.QueryParam("tingkatKesulitan"),
	}
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(c, "limit", 10)
	if limit < 1 {
		limit = 10
	}

	items, total, err := h.Recipes.List(ctx, filter, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal mengambil data resep"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"count":      len(items),
		"pagination": newPagination(page, limit, total),
		"data":       toRecipeResps(items),
	})
}

// GetByID handles GET /recipes/:id.
func (h *RecipeHandler) GetByID(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "ID tidak valid"})
	}
	rw, err := h.Recipes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Resep tidak ditemukan"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal mengambil data resep"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": toRecipeResp(rw)})
}

// ListMine handles GET /recipes/my-recipes.
func (h *RecipeHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Tidak ada akses. Login terlebih dahulu"})
	}
	items, err := h.Recipes.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal mengambil data resep"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(items), "data": toRecipeResps(items)})
}

// Create handles POST /recipes. The photo is mandatory: the upload to the
// image host happens before anything is persisted, so a stored recipe always
// carries a durable image reference.
func (h *RecipeHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Tidak ada akses. Login terlebih dahulu"})
	}

	in, vErr, err := recipeInputFromForm(c, model.RecipeInput{})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal membaca form"})
	}
	if vErr != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": vErr})
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
	}

	photo, err := readPhoto(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Foto resep wajib diupload"})
	}

	img, err := h.Host.Upload(c.Request().Context(), photo)
	if err != nil {
		log.Printf("recipe create: image upload failed: %v", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Gagal mengunggah foto"})
	}

	rec := model.Recipe{
		Nama:             in.Nama,
		Foto:             img.URL,
		FotoDeleteRef:    img.DeleteRef,
		Bahan:            in.Bahan,
		Langkah:          in.Langkah,
		WaktuMasak:       in.WaktuMasak,
		Porsi:            in.Porsi,
		Kategori:         in.Kategori,
		TingkatKesulitan: in.TingkatKesulitan,
		CreatedBy:        uid,
	}
	if err := h.Recipes.Create(c.Request().Context(), &rec); err != nil {
		// The photo is already on the host but no recipe row references
		// it; queue it for deletion instead of leaving it orphaned.
		publishImageCleanup(0, img.DeleteRef, "failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal membuat resep"})
	}
	h.Cache.Invalidate(c.Request().Context(), "/recipes")

	// The insert read back ID, timestamps and rating defaults; the owner is
	// the principal, so the response needs no second round trip.
	nama, _ := c.Get("user_nama").(string)
	email, _ := c.Get("user_email").(string)
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Resep berhasil dibuat",
		"data":    toRecipeResp(repository.RecipeWithOwner{Recipe: rec, OwnerNama: nama, OwnerEmail: email}),
	})
}

// Update handles PUT /recipes/:id. Only provided form fields are changed;
// when a new photo arrives it is stored first and the superseded one is
// queued for best-effort cleanup, so a failure to delete the old image
// never fails the request.
func (h *RecipeHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "ID tidak valid"})
	}
	rw, err := h.Recipes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Resep tidak ditemukan"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal mengambil data resep"})
	}
	if !canModify(c, rw.CreatedBy) {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "Anda tidak memiliki akses untuk mengupdate resep ini"})
	}

	// Seed the input with current values so omitted fields keep their state.
	base := model.RecipeInput{
		Nama:             rw.Nama,
		Bahan:            rw.Bahan,
		Langkah:          rw.Langkah,
		WaktuMasak:       rw.WaktuMasak,
		Porsi:            rw.Porsi,
		Kategori:         rw.Kategori,
		TingkatKesulitan: rw.TingkatKesulitan,
	}
	in, vErr, err := recipeInputFromForm(c, base)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal membaca form"})
	}
	if vErr != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": vErr})
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
	}

	rec := rw.Recipe
	rec.Nama = in.Nama
	rec.Bahan = in.Bahan
	rec.Langkah = in.Langkah
	rec.WaktuMasak = in.WaktuMasak
	rec.Porsi = in.Porsi
	rec.Kategori = in.Kategori
	rec.TingkatKesulitan = in.TingkatKesulitan

	oldDeleteRef := ""
	if photo, err := readPhoto(c); err == nil {
		img, err := h.Host.Upload(c.Request().Context(), photo)
		if err != nil {
			log.Printf("recipe update: image upload failed: %v", err)
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Gagal mengunggah foto"})
		}
		oldDeleteRef = rec.FotoDeleteRef
		rec.Foto = img.URL
		rec.FotoDeleteRef = img.DeleteRef
	}

	if err := h.Recipes.Update(c.Request().Context(), &rec); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Resep tidak ditemukan"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal mengupdate resep"})
	}
	h.dropCached(c, rec.ID)
	if oldDeleteRef != "" {
		publishImageCleanup(rec.ID, oldDeleteRef, "updated")
	}

	updated, err := h.Recipes.GetByID(c.Request().Context(), rec.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal mengupdate resep"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Resep berhasil diupdate",
		"data":    toRecipeResp(updated),
	})
}

// Delete handles DELETE /recipes/:id. The recipe's reviews go with it in
// the same transaction; the stored photo is queued for best-effort cleanup.
func (h *RecipeHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "ID tidak valid"})
	}
	rw, err := h.Recipes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Resep tidak ditemukan"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal menghapus resep"})
	}
	if !canModify(c, rw.CreatedBy) {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "Anda tidak memiliki akses untuk menghapus resep ini"})
	}

	if err := h.Recipes.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Resep tidak ditemukan"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal menghapus resep"})
	}
	h.dropCached(c, id)
	if rw.FotoDeleteRef != "" {
		publishImageCleanup(id, rw.FotoDeleteRef, "deleted")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Resep berhasil dihapus"})
}

// dropCached invalidates every cached read whose body includes the recipe.
func (h *RecipeHandler) dropCached(c echo.Context, id uint64) {
	p := "/recipes/" + strconv.FormatUint(id, 10)
	h.Cache.Invalidate(c.Request().Context(), "/recipes", p, p+"/reviews", "/reviews")
}

// cleanupPublish dispatches a cleanup event to the queue in the background.
// Swappable so tests can observe the events without a broker.
var cleanupPublish = func(ev queue.ImageCleanupEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishImageCleanup(ctx, ev)
	}()
}

// publishImageCleanup hands an orphaned photo to the cleanup queue without
// tying the outcome to the current request.
func publishImageCleanup(recipeID uint64, deleteRef, reason string) {
	cleanupPublish(queue.ImageCleanupEvent{
		RecipeID:    recipeID,
		DeleteRef:   deleteRef,
		Reason:      reason,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// recipeInputFromForm overlays submitted multipart form fields onto base.
// It returns (input, validationMessage, error): validationMessage is set
// for malformed field payloads, error for transport-level failures.
func recipeInputFromForm(c echo.Context, base model.RecipeInput) (model.RecipeInput, string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return base, "", err
	}
	get := func(key string) (string, bool) {
		vals, ok := form.Value[key]
		if !ok || len(vals) == 0 {
			return "", false
		}
		return vals[0], true
	}

	if v, ok := get("nama"); ok {
		base.Nama = v
	}
	if v, ok := get("bahan"); ok {
		var items []string
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			return base, "Format bahan tidak valid", nil
		}
		base.Bahan = items
	}
	if v, ok := get("langkah"); ok {
		var items []string
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			return base, "Format langkah tidak valid", nil
		}
		base.Langkah = items
	}
	if v, ok := get("waktuMasak"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return base, "Waktu masak harus berupa angka", nil
		}
		base.WaktuMasak = n
	}
	if v, ok := get("porsi"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return base, "Jumlah porsi harus berupa angka", nil
		}
		base.Porsi = n
	}
	if v, ok := get("kategori"); ok {
		base.Kategori = v
	}
	if v, ok := get("tingkatKesulitan"); ok {
		base.TingkatKesulitan = v
	}
	return base, "", nil
}

// readPhoto reads the uploaded "foto" file part into memory.
func readPhoto(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("foto")
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// queryInt parses an integer query parameter with a default.
func queryInt(c echo.Context, key string, def int) int {
	v := c.QueryParam(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

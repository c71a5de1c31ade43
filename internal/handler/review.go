package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rasakita/recipe-share/internal/middleware"
	"github.com/rasakita/recipe-share/internal/model"
	"github.com/rasakita/recipe-share/internal/repository"
)

// ReviewHandler serves review endpoints. All writes go through the review
// repository, which recomputes the recipe's aggregate rating in the same
// transaction, so a response is only sent once the aggregate is current.
// Cached catalog reads touching the recipe are invalidated on every write
// for the same reason.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
	Cache   *middleware.CacheInvalidator
}

func NewReviewHandler(r *repository.ReviewRepo, cache *middleware.CacheInvalidator) *ReviewHandler {
	if r == nil {
		panic("nil dependency passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: r, Cache: cache}
}

// dropCachedRecipe invalidates every cached read whose body reflects the
// recipe's review set or aggregate.
func (h *ReviewHandler) dropCachedRecipe(c echo.Context, recipeID uint64) {
	p := "/recipes/" + strconv.FormatUint(recipeID, 10)
	h.Cache.Invalidate(c.Request().Context(), "/recipes", p, p+"/reviews", "/reviews")
}

// ----- response DTOs -----

type reviewResp struct {
	ID        uint64     `json:"id"`
	RecipeID  uint64     `json:"resepId"`
	Rating    int        `json:"rating"`
	Komentar  string     `json:"komentar"`
	User      authorPart `json:"user"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type reviewRecipePart struct {
	ID   uint64 `json:"id"`
	Nama string `json:"nama"`
	Foto string `json:"foto"`
}

type reviewFeedResp struct {
	ID        uint64           `json:"id"`
	Rating    int              `json:"rating"`
	Komentar  string           `json:"komentar"`
	User      authorPart       `json:"user"`
	Resep     reviewRecipePart `json:"resep"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ListForRecipe handles GET /recipes/:id/reviews. A recipe with no reviews
// and a nonexistent recipe both yield an empty list.
func (h *ReviewHandler) ListForRecipe(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "ID tidak valid"})
	}
	rows, err := h.Reviews.ListByRecipe(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal mengambil data review"})
	}
	out := make([]reviewResp, 0, len(rows))
	for _, v := range rows {
		out = append(out, reviewResp{
			ID:        v.ID,
			RecipeID:  v.RecipeID,
			Rating:    v.Rating,
			Komentar:  v.Komentar,
			User:      authorPart{ID: v.UserID, Nama: v.AuthorNama},
			CreatedAt: v.CreatedAt,
			UpdatedAt: v.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(out), "data": out})
}

// ListAll handles GET /reviews: the global feed, newest first, each review
// carrying its author and the reviewed recipe's name and photo.
func (h *ReviewHandler) ListAll(c echo.Context) error {
	rows, err := h.Reviews.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal mengambil data review"})
	}
	out := make([]reviewFeedResp, 0, len(rows))
	for _, v := range rows {
		out = append(out, reviewFeedResp{
			ID:        v.ID,
			Rating:    v.Rating,
			Komentar:  v.Komentar,
			User:      authorPart{ID: v.UserID, Nama: v.AuthorNama},
			Resep:     reviewRecipePart{ID: v.RecipeID, Nama: v.RecipeNama, Foto: v.RecipeFoto},
			CreatedAt: v.CreatedAt,
			UpdatedAt: v.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(out), "data": out})
}

// Add handles POST /recipes/:id/reviews. One review per user per recipe;
// the second attempt gets a duplicate error no matter how the requests race.
func (h *ReviewHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Tidak ada akses. Login terlebih dahulu"})
	}
	recipeID, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "ID tidak valid"})
	}

	var in model.ReviewInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Body tidak valid"})
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
	}

	rev := model.Review{
		RecipeID: recipeID,
		UserID:   uid,
		Rating:   in.Rating,
		Komentar: in.Komentar,
	}
	if err := h.Reviews.Create(c.Request().Context(), &rev); err != nil {
		switch {
		case errors.Is(err, repository.ErrRecipeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Resep tidak ditemukan"})
		case errors.Is(err, repository.ErrDuplicateReview):
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Anda sudah memberikan review untuk resep ini"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal menambahkan review"})
		}
	}

	h.dropCachedRecipe(c, recipeID)

	nama, _ := c.Get("user_nama").(string)
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Review berhasil ditambahkan",
		"data": reviewResp{
			ID:        rev.ID,
			RecipeID:  rev.RecipeID,
			Rating:    rev.Rating,
			Komentar:  rev.Komentar,
			User:      authorPart{ID: uid, Nama: nama},
			CreatedAt: rev.CreatedAt,
			UpdatedAt: rev.UpdatedAt,
		},
	})
}

// Delete handles DELETE /reviews/:id. Only the author or an admin may
// remove a review.
func (h *ReviewHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "ID tidak valid"})
	}
	rev, err := h.Reviews.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Review tidak ditemukan"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal menghapus review"})
	}
	if !canModify(c, rev.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "Anda tidak memiliki akses untuk menghapus review ini"})
	}

	if err := h.Reviews.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Review tidak ditemukan"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Gagal menghapus review"})
	}
	h.dropCachedRecipe(c, rev.RecipeID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Review berhasil dihapus"})
}

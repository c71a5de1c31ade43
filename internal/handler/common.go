package handler // handler defines http handlers

import (
    "errors"  // errors provides the sentinel used in getUserID
    "strconv" // strconv converts strings to numeric types
    "time"    // timestamps in response DTOs

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/rasakita/recipe-share/internal/model"
    "github.com/rasakita/recipe-share/internal/repository"
)

// getUserID extracts the authenticated user id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get("user_id").(type) {
    case uint64:
        return t, nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// currentRole returns the authenticated user's role, or "" when absent.
func currentRole(c echo.Context) string {
    if r, ok := c.Get("role").(string); ok {
        return r
    }
    return ""
}

// canModify reports whether the request principal may mutate a resource
// owned by ownerID: the owner themselves or any admin.
func canModify(c echo.Context, ownerID uint64) bool {
    uid, err := getUserID(c)
    if err != nil {
        return false
    }
    return uid == ownerID || currentRole(c) == model.RoleAdmin
}

// parseIDParam parses the numeric :id route parameter.
func parseIDParam(c echo.Context) (uint64, error) {
    return strconv.ParseUint(c.Param("id"), 10, 64)
}

// ----- shared response DTOs -----

// ownerPart is the public identity of a recipe's creator.
type ownerPart struct {
    ID    uint64 `json:"id"`
    Nama  string `json:"nama"`
    Email string `json:"email"`
}

// authorPart is the public identity of a review's author.
type authorPart struct {
    ID   uint64 `json:"id"`
    Nama string `json:"nama"`
}

// recipeResp is the JSON shape of a recipe. The image delete reference is
// internal bookkeeping and never leaves the API.
type recipeResp struct {
    ID               uint64    `json:"id"`
    Nama             string    `json:"nama"`
    Foto             string    `json:"foto"`
    Bahan            []string  `json:"bahan"`
    Langkah          []string  `json:"langkah"`
    WaktuMasak       int       `json:"waktuMasak"`
    Porsi            int       `json:"porsi"`
    Kategori         string    `json:"kategori"`
    TingkatKesulitan string    `json:"tingkatKesulitan"`
    CreatedBy        ownerPart `json:"createdBy"`
    AverageRating    float64   `json:"averageRating"`
    TotalReviews     int       `json:"totalReviews"`
    CreatedAt        time.Time `json:"createdAt"`
    UpdatedAt        time.Time `json:"updatedAt"`
}

func toRecipeResp(rw repository.RecipeWithOwner) recipeResp {
    return recipeResp{
        ID:               rw.ID,
        Nama:             rw.Nama,
        Foto:             rw.Foto,
        Bahan:            rw.Bahan,
        Langkah:          rw.Langkah,
        WaktuMasak:       rw.WaktuMasak,
        Porsi:            rw.Porsi,
        Kategori:         rw.Kategori,
        TingkatKesulitan: rw.TingkatKesulitan,
        CreatedBy:        ownerPart{ID: rw.CreatedBy, Nama: rw.OwnerNama, Email: rw.OwnerEmail},
        AverageRating:    rw.AverageRating,
        TotalReviews:     rw.TotalReviews,
        CreatedAt:        rw.CreatedAt,
        UpdatedAt:        rw.UpdatedAt,
    }
}

func toRecipeResps(rows []repository.RecipeWithOwner) []recipeResp {
    out := make([]recipeResp, 0, len(rows))
    for _, rw := range rows {
        out = append(out, toRecipeResp(rw))
    }
    return out
}

// paginationPart mirrors the envelope's pagination object.
type paginationPart struct {
    CurrentPage int `json:"currentPage"`
    TotalPages  int `json:"totalPages"`
    TotalItems  int `json:"totalItems"`
    Limit       int `json:"limit"`
}

// newPagination computes total pages as ceil(totalItems/limit).
func newPagination(page, limit, totalItems int) paginationPart {
    totalPages := 0
    if limit > 0 {
        totalPages = (totalItems + limit - 1) / limit
    }
    return paginationPart{
        CurrentPage: page,
        TotalPages:  totalPages,
        TotalItems:  totalItems,
        Limit:       limit,
    }
}

package model

import (
    "errors"
    "strings"
    "time"
)

// MaxKomentarLen bounds the review comment length in characters.
const MaxKomentarLen = 500

// Review mirrors the `reviews` table.  At most one review exists per
// (recipe, user) pair; the pair carries a UNIQUE KEY so the constraint holds
// under concurrent submissions, not just via the handler's pre-check.
//
// Fields:
//  ID        – primary key identifier.
//  RecipeID  – recipe being reviewed.
//  UserID    – review author.
//  Rating    – integer rating 1..5.
//  Komentar  – non-empty comment, at most MaxKomentarLen characters.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Review struct {
    ID        uint64    // reviews.id
    RecipeID  uint64    // reviews.recipe_id
    UserID    uint64    // reviews.user_id
    Rating    int       // reviews.rating
    Komentar  string    // reviews.komentar
    CreatedAt time.Time // reviews.created_at
    UpdatedAt time.Time // reviews.updated_at
}

// ReviewInput carries the body of POST /recipes/:id/reviews.
type ReviewInput struct {
    Rating   int    `json:"rating"`
    Komentar string `json:"komentar"`
}

// Normalize trims the comment.  It must run before Validate.
func (in *ReviewInput) Normalize() {
    in.Komentar = strings.TrimSpace(in.Komentar)
}

// Validate checks the rating range and comment bounds.
func (in *ReviewInput) Validate() error {
    if in.Rating < 1 || in.Rating > 5 {
        return errors.New("Rating harus antara 1 sampai 5")
    }
    if in.Komentar == "" {
        return errors.New("Komentar wajib diisi")
    }
    if len([]rune(in.Komentar)) > MaxKomentarLen {
        return errors.New("Komentar maksimal 500 karakter")
    }
    return nil
}

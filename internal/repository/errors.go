// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrDuplicateReview signals that the unique
// (recipe, user) review constraint was violated.
package repository

import (
    "errors"
    "strings"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when registering with an email that is
// already taken. Translated to HTTP 400.
var ErrEmailExists = errors.New("email already exists")

// ErrRecipeNotFound indicates the requested recipe does not exist.
var ErrRecipeNotFound = errors.New("recipe not found")

// ErrReviewNotFound indicates the requested review does not exist.
var ErrReviewNotFound = errors.New("review not found")

// ErrDuplicateReview is returned when a user submits a second review
// for the same recipe. The reviews table carries a UNIQUE KEY on
// (recipe_id, user_id), so this also fires when two submissions race
// past the handler's existence pre-check.
var ErrDuplicateReview = errors.New("duplicate review")

// isDupKey reports whether err is a MySQL duplicate-key violation (1062).
func isDupKey(err error) bool {
    return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

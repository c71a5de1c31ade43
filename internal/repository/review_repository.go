package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rasakita/recipe-share/internal/model"
)

// ReviewWithAuthor decorates a review with its author's display name for
// per-recipe listings.
type ReviewWithAuthor struct {
	model.Review
	AuthorNama string
}

// ReviewFeedItem decorates a review with author and recipe context for the
// global feed.
type ReviewFeedItem struct {
	model.Review
	AuthorNama string
	RecipeNama string
	RecipeFoto string
}

// ReviewRepo manages persistence for reviews and keeps each recipe's
// average_rating/total_reviews columns consistent with its review set.
// Every review insert or delete recomputes the parent recipe's aggregate
// inside the same transaction, after taking a row lock on the recipe. The
// lock serializes concurrent recomputes per recipe so the last aggregate
// write always reflects the full current review set, and the UNIQUE KEY on
// (recipe_id, user_id) closes the check-then-insert race on duplicate
// submissions.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo constructs a ReviewRepo with the given DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Create inserts a review and synchronously recomputes the recipe's
// aggregate before committing. Returns ErrRecipeNotFound when the recipe
// is absent and ErrDuplicateReview when the (recipe, user) pair already
// reviewed.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	// Lock the recipe row first: this both validates existence and
	// serializes concurrent review writes for the same recipe.
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM recipes WHERE id=? FOR UPDATE`, rev.RecipeID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecipeNotFound
		}
		return err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (recipe_id, user_id, rating, komentar) VALUES (?,?,?,?)`,
		rev.RecipeID, rev.UserID, rev.Rating, rev.Komentar)
	if err != nil {
		if isDupKey(err) {
			err = ErrDuplicateReview
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rev.ID = uint64(id)
	if err = tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM reviews WHERE id=?`, rev.ID,
	).Scan(&rev.CreatedAt, &rev.UpdatedAt); err != nil {
		return err
	}

	err = r.recomputeTx(ctx, tx, rev.RecipeID)
	return err
}

// GetByID fetches a review by id. It returns ErrReviewNotFound when absent.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	var rev model.Review
	err := r.db.QueryRowContext(ctx,
		`SELECT id, recipe_id, user_id, rating, komentar, created_at, updated_at FROM reviews WHERE id=? LIMIT 1`,
		id).Scan(&rev.ID, &rev.RecipeID, &rev.UserID, &rev.Rating, &rev.Komentar, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rev, ErrReviewNotFound
		}
		return rev, err
	}
	return rev, nil
}

// Delete removes a review and recomputes its recipe's aggregate in the same
// transaction. Authorship/role checks happen in the handler, which loads
// the review first via GetByID.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var recipeID uint64
	err = tx.QueryRowContext(ctx, `SELECT recipe_id FROM reviews WHERE id=?`, id).Scan(&recipeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReviewNotFound
		}
		return err
	}
	// Same lock order as Create: recipe row first, then the review write.
	var one int
	if err = tx.QueryRowContext(ctx, `SELECT 1 FROM recipes WHERE id=? FOR UPDATE`, recipeID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Recipe vanished underneath the review; treat the review as gone too.
			err = ErrReviewNotFound
		}
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrReviewNotFound
		return err
	}

	err = r.recomputeTx(ctx, tx, recipeID)
	return err
}

// recomputeTx recalculates a recipe's aggregate rating from the full
// current review set and writes it onto the recipe row. Must run inside
// the transaction that mutated the reviews table, after the recipe row
// lock has been taken.
func (r *ReviewRepo) recomputeTx(ctx context.Context, tx *sql.Tx, recipeID uint64) error {
	var sum, count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(rating),0), COUNT(*) FROM reviews WHERE recipe_id=?`, recipeID,
	).Scan(&sum, &count); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE recipes SET average_rating=?, total_reviews=? WHERE id=?`,
		RatingAverage(sum, count), count, recipeID)
	return err
}

// ListByRecipe returns all reviews of one recipe, newest first, each with
// the author's display name. Returns an empty slice when there are none.
func (r *ReviewRepo) ListByRecipe(ctx context.Context, recipeID uint64) ([]ReviewWithAuthor, error) {
	const q = `SELECT v.id, v.recipe_id, v.user_id, v.rating, v.komentar, v.created_at, v.updated_at, u.nama
		FROM reviews v
		JOIN users u ON u.id = v.user_id
		WHERE v.recipe_id = ?
		ORDER BY v.created_at DESC, v.id DESC`
	rows, err := r.db.QueryContext(ctx, q, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ReviewWithAuthor{}
	for rows.Next() {
		var v ReviewWithAuthor
		if err := rows.Scan(&v.ID, &v.RecipeID, &v.UserID, &v.Rating, &v.Komentar, &v.CreatedAt, &v.UpdatedAt, &v.AuthorNama); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns the global review feed, newest first, each entry carrying
// the author's name and the reviewed recipe's name and photo.
func (r *ReviewRepo) ListAll(ctx context.Context) ([]ReviewFeedItem, error) {
	const q = `SELECT v.id, v.recipe_id, v.user_id, v.rating, v.komentar, v.created_at, v.updated_at,
			u.nama, r.nama, r.foto
		FROM reviews v
		JOIN users u ON u.id = v.user_id
		JOIN recipes r ON r.id = v.recipe_id
		ORDER BY v.created_at DESC, v.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ReviewFeedItem{}
	for rows.Next() {
		var v ReviewFeedItem
		if err := rows.Scan(&v.ID, &v.RecipeID, &v.UserID, &v.Rating, &v.Komentar, &v.CreatedAt, &v.UpdatedAt,
			&v.AuthorNama, &v.RecipeNama, &v.RecipeFoto); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rasakita/recipe-share/internal/model"
)

// RecipeFilter narrows List results. Empty fields mean "no filter";
// non-empty ones are exact-match equality on the enum columns.
type RecipeFilter struct {
	Kategori         string
	TingkatKesulitan string
}

// RecipeWithOwner decorates a recipe with its owner's public identity for
// list/detail responses.
type RecipeWithOwner struct {
	model.Recipe
	OwnerNama  string
	OwnerEmail string
}

// RecipeRepo manages persistence for recipes. The derived columns
// average_rating and total_reviews are intentionally absent from the
// INSERT/UPDATE statements here: only the review repository's recompute
// step writes them.
type RecipeRepo struct {
	db *sql.DB
}

// NewRecipeRepo constructs a RecipeRepo with the given DB handle.
func NewRecipeRepo(db *sql.DB) *RecipeRepo {
	return &RecipeRepo{db: db}
}

const recipeCols = `r.id, r.nama, r.foto, r.foto_delete_ref, r.bahan, r.langkah,
	r.waktu_masak, r.porsi, r.kategori, r.tingkat_kesulitan, r.created_by,
	r.average_rating, r.total_reviews, r.created_at, r.updated_at`

// scanRecipe reads one joined recipe row. bahan/langkah are JSON columns.
func scanRecipe(row interface{ Scan(...any) error }) (RecipeWithOwner, error) {
	var (
		rw             RecipeWithOwner
		bahan, langkah []byte
	)
	err := row.Scan(
		&rw.ID, &rw.Nama, &rw.Foto, &rw.FotoDeleteRef, &bahan, &langkah,
		&rw.WaktuMasak, &rw.Porsi, &rw.Kategori, &rw.TingkatKesulitan, &rw.CreatedBy,
		&rw.AverageRating, &rw.TotalReviews, &rw.CreatedAt, &rw.UpdatedAt,
		&rw.OwnerNama, &rw.OwnerEmail,
	)
	if err != nil {
		return rw, err
	}
	if err := json.Unmarshal(bahan, &rw.Bahan); err != nil {
		return rw, err
	}
	if err := json.Unmarshal(langkah, &rw.Langkah); err != nil {
		return rw, err
	}
	return rw, nil
}

// Create inserts a new recipe and assigns the generated ID and timestamps
// back to the struct. average_rating/total_reviews start at their DB
// defaults (0/0).
func (r *RecipeRepo) Create(ctx context.Context, rec *model.Recipe) error {
	bahan, err := json.Marshal(rec.Bahan)
	if err != nil {
		return err
	}
	langkah, err := json.Marshal(rec.Langkah)
	if err != nil {
		return err
	}
	const q = `INSERT INTO recipes
		(nama, foto, foto_delete_ref, bahan, langkah, waktu_masak, porsi, kategori, tingkat_kesulitan, created_by)
		VALUES (?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		rec.Nama, rec.Foto, rec.FotoDeleteRef, bahan, langkah,
		rec.WaktuMasak, rec.Porsi, rec.Kategori, rec.TingkatKesulitan, rec.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	// Read back DB-default fields (rating columns, timestamps).
	const sel = `SELECT average_rating, total_reviews, created_at, updated_at FROM recipes WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, rec.ID).Scan(
		&rec.AverageRating, &rec.TotalReviews, &rec.CreatedAt, &rec.UpdatedAt)
}

// GetByID retrieves a recipe joined with its owner. It returns
// ErrRecipeNotFound if there is no matching row.
func (r *RecipeRepo) GetByID(ctx context.Context, id uint64) (RecipeWithOwner, error) {
	q := `SELECT ` + recipeCols + `, u.nama, u.email
		FROM recipes r JOIN users u ON u.id = r.created_by
		WHERE r.id = ?`
	rw, err := scanRecipe(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rw, ErrRecipeNotFound
		}
		return rw, err
	}
	return rw, nil
}

// List returns one page of recipes, newest first, plus the total number of
// recipes matching the filter (before paging). page is 1-based.
func (r *RecipeRepo) List(ctx context.Context, f RecipeFilter, page, limit int) ([]RecipeWithOwner, int, error) {
	where := ""
	args := []any{}
	if f.Kategori != "" {
		where = " WHERE r.kategori = ?"
		args = append(args, f.Kategori)
	}
	if f.TingkatKesulitan != "" {
		if where == "" {
			where = " WHERE r.tingkat_kesulitan = ?"
		} else {
			where += " AND r.tingkat_kesulitan = ?"
		}
		args = append(args, f.TingkatKesulitan)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipes r"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + recipeCols + `, u.nama, u.email
		FROM recipes r JOIN users u ON u.id = r.created_by` + where + `
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []RecipeWithOwner{}
	for rows.Next() {
		rw, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByOwner returns all recipes created by the given user, newest first.
func (r *RecipeRepo) ListByOwner(ctx context.Context, userID uint64) ([]RecipeWithOwner, error) {
	q := `SELECT ` + recipeCols + `, u.nama, u.email
		FROM recipes r JOIN users u ON u.id = r.created_by
		WHERE r.created_by = ?
		ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RecipeWithOwner{}
	for rows.Next() {
		rw, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a recipe's content fields (and photo reference when it
// changed). Ownership is checked by the handler, which already loaded the
// row; created_by and the derived rating columns are never touched here.
func (r *RecipeRepo) Update(ctx context.Context, rec *model.Recipe) error {
	bahan, err := json.Marshal(rec.Bahan)
	if err != nil {
		return err
	}
	langkah, err := json.Marshal(rec.Langkah)
	if err != nil {
		return err
	}
	const q = `UPDATE recipes
		SET nama=?, foto=?, foto_delete_ref=?, bahan=?, langkah=?,
		    waktu_masak=?, porsi=?, kategori=?, tingkat_kesulitan=?, updated_at=CURRENT_TIMESTAMP
		WHERE id=?`
	res, err := r.db.ExecContext(ctx, q,
		rec.Nama, rec.Foto, rec.FotoDeleteRef, bahan, langkah,
		rec.WaktuMasak, rec.Porsi, rec.Kategori, rec.TingkatKesulitan, rec.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Row may exist with identical values; confirm before reporting not found.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM recipes WHERE id=? LIMIT 1`, rec.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRecipeNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a recipe and all reviews referencing it inside one
// transaction, so no orphaned reviews survive a recipe deletion.
func (r *RecipeRepo) Delete(ctx context.Context, id uint64) error {
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
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM recipes WHERE id=? FOR UPDATE`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecipeNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM reviews WHERE recipe_id=?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM recipes WHERE id=?`, id); err != nil {
		return err
	}
	return nil
}

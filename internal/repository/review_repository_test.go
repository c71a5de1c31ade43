package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasakita/recipe-share/internal/model"
)

const (
	lockRecipeSQL    = `SELECT 1 FROM recipes WHERE id=? FOR UPDATE`
	insertReviewSQL  = `INSERT INTO reviews (recipe_id, user_id, rating, komentar) VALUES (?,?,?,?)`
	reviewTimesSQL   = `SELECT created_at, updated_at FROM reviews WHERE id=?`
	reviewRecipeSQL  = `SELECT recipe_id FROM reviews WHERE id=?`
	deleteReviewSQL  = `DELETE FROM reviews WHERE id=?`
	sumCountSQL      = `SELECT COALESCE(SUM(rating),0), COUNT(*) FROM reviews WHERE recipe_id=?`
	updateRecipeSQL  = `UPDATE recipes SET average_rating=?, total_reviews=? WHERE id=?`
	dupReviewMessage = "Error 1062 (23000): Duplicate entry '5-9' for key 'uq_reviews_recipe_user'"
)

func newMockRepo(t *testing.T) (*ReviewRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReviewRepo(db), mock
}

// expectReviewInsert queues the full transaction for one successful review
// insert: recipe lock, insert, timestamp read-back, then the aggregate
// recompute writing the given sum/count onto the recipe row.
func expectReviewInsert(mock sqlmock.Sqlmock, recipeID, userID int64, rating int, reviewID, sum, count int64) {
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockRecipeSQL)).
		WithArgs(recipeID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(insertReviewSQL)).
		WithArgs(recipeID, userID, rating, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(reviewID, 1))
	mock.ExpectQuery(regexp.QuoteMeta(reviewTimesSQL)).
		WithArgs(reviewID).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(regexp.QuoteMeta(sumCountSQL)).
		WithArgs(recipeID).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count"}).AddRow(sum, count))
	mock.ExpectExec(regexp.QuoteMeta(updateRecipeSQL)).
		WithArgs(RatingAverage(int(sum), int(count)), count, recipeID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

// expectReviewDelete queues the transaction for one review delete followed
// by the recompute.
func expectReviewDelete(mock sqlmock.Sqlmock, reviewID, recipeID, sum, count int64) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(reviewRecipeSQL)).
		WithArgs(reviewID).
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id"}).AddRow(recipeID))
	mock.ExpectQuery(regexp.QuoteMeta(lockRecipeSQL)).
		WithArgs(recipeID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(deleteReviewSQL)).
		WithArgs(reviewID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(sumCountSQL)).
		WithArgs(recipeID).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count"}).AddRow(sum, count))
	mock.ExpectExec(regexp.QuoteMeta(updateRecipeSQL)).
		WithArgs(RatingAverage(int(sum), int(count)), count, recipeID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

// The aggregate written back to the recipe must follow the review set
// through an add, a second add and a delete: 4 -> 4.0/1, +2 -> 3.0/2,
// -2 -> 4.0/1. Every step recomputes inside the mutating transaction.
func TestReviewRepoAggregateTracksReviewSet(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	expectReviewInsert(mock, 5, 9, 4, 101, 4, 1)
	first := model.Review{RecipeID: 5, UserID: 9, Rating: 4, Komentar: "Mantap"}
	require.NoError(t, repo.Create(ctx, &first))
	assert.Equal(t, uint64(101), first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	expectReviewInsert(mock, 5, 10, 2, 102, 6, 2)
	second := model.Review{RecipeID: 5, UserID: 10, Rating: 2, Komentar: "Kurang bumbu"}
	require.NoError(t, repo.Create(ctx, &second))

	expectReviewDelete(mock, 102, 5, 4, 1)
	require.NoError(t, repo.Delete(ctx, 102))

	require.NoError(t, mock.ExpectationsWereMet())
}

// Deleting the last review must reset the aggregate to 0/0.
func TestReviewRepoDeleteLastReviewZeroesAggregate(t *testing.T) {
	repo, mock := newMockRepo(t)

	expectReviewDelete(mock, 101, 5, 0, 0)
	require.NoError(t, repo.Delete(context.Background(), 101))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepoCreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockRecipeSQL)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(insertReviewSQL)).
		WithArgs(int64(5), int64(9), 5, sqlmock.AnyArg()).
		WillReturnError(errors.New(dupReviewMessage))
	mock.ExpectRollback()

	rev := model.Review{RecipeID: 5, UserID: 9, Rating: 5, Komentar: "Lagi"}
	err := repo.Create(context.Background(), &rev)
	require.ErrorIs(t, err, ErrDuplicateReview)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepoCreateRecipeMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockRecipeSQL)).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	rev := model.Review{RecipeID: 404, UserID: 9, Rating: 3, Komentar: "Hilang"}
	err := repo.Create(context.Background(), &rev)
	require.ErrorIs(t, err, ErrRecipeNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepoDeleteMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(reviewRecipeSQL)).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 404)
	require.ErrorIs(t, err, ErrReviewNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// An insert failure after the lock must roll back without touching the
// recipe's aggregate columns.
func TestReviewRepoCreateInsertFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockRecipeSQL)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(insertReviewSQL)).
		WithArgs(int64(5), int64(9), 4, sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	rev := model.Review{RecipeID: 5, UserID: 9, Rating: 4, Komentar: "Gagal"}
	err := repo.Create(context.Background(), &rev)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDuplicateReview)
	require.NoError(t, mock.ExpectationsWereMet())
}

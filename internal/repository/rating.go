package repository

import "math"

// RatingAverage computes the aggregate rating stored on a recipe from the
// sum and count of its live reviews: the arithmetic mean rounded to one
// decimal place, or 0 when the review set is empty.  Every review insert
// and delete must write the value produced here back to the recipe row
// before the surrounding transaction commits, so clients re-fetching the
// recipe immediately after a review mutation always observe fresh
// aggregates.
func RatingAverage(sum, count int) float64 {
    if count <= 0 {
        return 0
    }
    return math.Round(float64(sum)/float64(count)*10) / 10
}

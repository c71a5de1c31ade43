package model

import (
    "errors"
    "strings"
    "time"
)

// Recipe categories (closed set).  The zero value on create is KategoriUtama.
const (
    KategoriPembuka = "pembuka"
    KategoriUtama   = "utama"
    KategoriPenutup = "penutup"
    KategoriMinuman = "minuman"
    KategoriSnack   = "snack"
)

// Difficulty levels (closed set).  The zero value on create is KesulitanSedang.
const (
    KesulitanMudah  = "mudah"
    KesulitanSedang = "sedang"
    KesulitanSulit  = "sulit"
)

// Recipe mirrors the `recipes` table.  AverageRating and TotalReviews are
// derived fields: they are written exclusively by the review repository's
// recompute step, never by recipe create/update.
//
// Fields:
//  ID               – primary key identifier.
//  Nama             – recipe name.
//  Foto             – public URL of the recipe photo on the image host.
//  FotoDeleteRef    – image host reference used to delete the photo later.
//  Bahan            – ordered ingredient list.
//  Langkah          – ordered preparation steps.
//  WaktuMasak       – cook time in minutes, positive.
//  Porsi            – serving count, positive.
//  Kategori         – one of the Kategori* constants.
//  TingkatKesulitan – one of the Kesulitan* constants.
//  CreatedBy        – owning user id, immutable after creation.
//  AverageRating    – mean of live review ratings, 1 decimal, 0 when none.
//  TotalReviews     – number of live reviews.
type Recipe struct {
    ID               uint64    // recipes.id
    Nama             string    // recipes.nama
    Foto             string    // recipes.foto
    FotoDeleteRef    string    // recipes.foto_delete_ref
    Bahan            []string  // recipes.bahan (JSON column)
    Langkah          []string  // recipes.langkah (JSON column)
    WaktuMasak       int       // recipes.waktu_masak
    Porsi            int       // recipes.porsi
    Kategori         string    // recipes.kategori
    TingkatKesulitan string    // recipes.tingkat_kesulitan
    CreatedBy        uint64    // recipes.created_by
    AverageRating    float64   // recipes.average_rating (derived)
    TotalReviews     int       // recipes.total_reviews (derived)
    CreatedAt        time.Time // recipes.created_at
    UpdatedAt        time.Time // recipes.updated_at
}

// ValidKategori reports whether k is a member of the category enum.
func ValidKategori(k string) bool {
    switch k {
    case KategoriPembuka, KategoriUtama, KategoriPenutup, KategoriMinuman, KategoriSnack:
        return true
    }
    return false
}

// ValidTingkatKesulitan reports whether t is a member of the difficulty enum.
func ValidTingkatKesulitan(t string) bool {
    switch t {
    case KesulitanMudah, KesulitanSedang, KesulitanSulit:
        return true
    }
    return false
}

// RecipeInput carries the content fields of a recipe as submitted through
// the multipart create/update forms.  The photo travels separately as a
// file part.
type RecipeInput struct {
    Nama             string
    Bahan            []string
    Langkah          []string
    WaktuMasak       int
    Porsi            int
    Kategori         string
    TingkatKesulitan string
}

// Normalize trims the name, drops empty ingredient/step entries and fills
// enum defaults (kategori "utama", tingkat kesulitan "sedang") the same way
// the storage schema used to.
func (in *RecipeInput) Normalize() {
    in.Nama = strings.TrimSpace(in.Nama)
    in.Bahan = compact(in.Bahan)
    in.Langkah = compact(in.Langkah)
    in.Kategori = strings.ToLower(strings.TrimSpace(in.Kategori))
    if in.Kategori == "" {
        in.Kategori = KategoriUtama
    }
    in.TingkatKesulitan = strings.ToLower(strings.TrimSpace(in.TingkatKesulitan))
    if in.TingkatKesulitan == "" {
        in.TingkatKesulitan = KesulitanSedang
    }
}

// Validate checks all required recipe fields and returns the first problem
// found.  The photo requirement is enforced separately by the handler since
// it arrives as a multipart file, not a content field.
func (in *RecipeInput) Validate() error {
    if in.Nama == "" {
        return errors.New("Nama resep wajib diisi")
    }
    if len(in.Bahan) == 0 {
        return errors.New("Bahan-bahan wajib diisi")
    }
    if len(in.Langkah) == 0 {
        return errors.New("Langkah-langkah wajib diisi")
    }
    if in.WaktuMasak <= 0 {
        return errors.New("Waktu masak wajib diisi")
    }
    if in.Porsi <= 0 {
        return errors.New("Jumlah porsi wajib diisi")
    }
    if !ValidKategori(in.Kategori) {
        return errors.New("Kategori tidak dikenal")
    }
    if !ValidTingkatKesulitan(in.TingkatKesulitan) {
        return errors.New("Tingkat kesulitan tidak dikenal")
    }
    return nil
}

// compact returns items with blank entries removed and whitespace trimmed.
func compact(items []string) []string {
    out := make([]string, 0, len(items))
    for _, it := range items {
        it = strings.TrimSpace(it)
        if it != "" {
            out = append(out, it)
        }
    }
    return out
}

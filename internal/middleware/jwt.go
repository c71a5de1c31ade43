package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"  // context with timeout for the user lookup
    "database/sql" // sentinel for missing user rows
    "errors"   // errors.Is for sentinel comparison
    "net/http" // HTTP status codes for responses
    "strconv"  // string-to-int conversion for string subjects
    "strings"  // string utilities for prefix checking and trimming
    "time"     // lookup timeout

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

    "github.com/rasakita/recipe-share/internal/model"
)

// UserStore is the subset of the user repository the auth middleware needs
// to resolve a token subject into a live user record.
type UserStore interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer session token
// and resolves its subject against the user store. A token whose subject no
// longer exists is rejected, so deleted or stale accounts cannot act. On
// success the principal is injected into the request context: handlers read
// it via c.Get("user_id") (uint64), c.Get("role"), c.Get("user_nama") and
// c.Get("user_email"). The provided secret must match the one used when
// issuing tokens.
func JWTAuth(secret string, users UserStore) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "success": false,
                    "message": "Tidak ada akses. Login terlebih dahulu",
                })
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse the token using the HS256 signing method and our secret.
            // The callback supplies the signing key and ensures that the
            // algorithm matches what we expect; expiry is checked by the
            // library as part of claim validation.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "success": false,
                    "message": "Token tidak valid",
                })
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "success": false,
                    "message": "Token tidak valid",
                })
            }
            uid := subjectID(claims)
            if uid == 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "success": false,
                    "message": "Token tidak valid",
                })
            }

            // Re-resolve the user so role changes and deletions take effect
            // immediately instead of at token expiry.
            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()
            u, err := users.GetByID(ctx, uid)
            if err != nil {
                if errors.Is(err, sql.ErrNoRows) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{
                        "success": false,
                        "message": "User tidak ditemukan",
                    })
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{
                    "success": false,
                    "message": "Gagal memuat data user",
                })
            }

            c.Set("user_id", u.ID)
            c.Set("role", u.Role)
            c.Set("user_nama", u.Nama)
            c.Set("user_email", u.Email)
            return next(c)
        }
    }
}

// subjectID extracts the numeric subject claim. JWT numeric values decode
// as float64; some issuers encode numeric strings instead, so both are
// accepted.
func subjectID(claims jwt.MapClaims) uint64 {
    switch v := claims["sub"].(type) {
    case float64:
        return uint64(v)
    case string:
        if n, err := strconv.ParseUint(v, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

package handler

import (
    "context"      // provides context with cancellation for DB calls
    "database/sql" // SQL sentinel errors
    "errors"       // sentinel comparison
    "net/http"     // HTTP status codes and primitives
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/rasakita/recipe-share/internal/config"     // app configuration
    "github.com/rasakita/recipe-share/internal/model"      // input validation
    "github.com/rasakita/recipe-share/internal/repository" // DB repositories
    "github.com/rasakita/recipe-share/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Nama  string `json:"nama"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register: create user and return a session token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req model.RegisterInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Body tidak valid"})
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Nama, req.Email, req.Password, req.Role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Email sudah terdaftar"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Registrasi gagal"})
	}

	token, err := utils.NewSessionToken(h.Cfg.JWTSecret, uid, req.Role, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Registrasi gagal"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Registrasi berhasil",
		"token":   token.Token,
		"data":    userPart{ID: uid, Nama: req.Nama, Email: req.Email, Role: req.Role},
	})
}

// Login: verify credentials and return a fresh session token. Unknown email
// and wrong password produce the same generic message so the response does
// not reveal which one failed.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Body tidak valid"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Email dan password wajib diisi"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Email atau password salah"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Login gagal"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Email atau password salah"})
	}

	token, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Login gagal"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Login berhasil",
		"token":   token.Token,
		"data":    userPart{ID: u.ID, Nama: u.Nama, Email: u.Email, Role: u.Role},
	})
}

// Me returns the principal's own record. The JWT middleware has already
// resolved the token subject against the user store.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Tidak ada akses. Login terlebih dahulu"})
	}
	nama, _ := c.Get("user_nama").(string)
	email, _ := c.Get("user_email").(string)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    userPart{ID: uid, Nama: nama, Email: email, Role: currentRole(c)},
	})
}

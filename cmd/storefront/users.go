package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/storefront-ecom/internal/httpx"
	"github.com/MikeMC777/storefront-ecom/internal/order"
	"github.com/MikeMC777/storefront-ecom/internal/session"
	"github.com/MikeMC777/storefront-ecom/internal/user"
)

// loginRequest credentials for POST /api/auth/login.
// swagger:model loginRequest
type loginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

// loginHandler godoc
//
//	@Summary	Log in and receive a session token
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		loginRequest	true	"credentials"
//	@Success	200		{object}	loginResponse
//	@Failure	401		{object}	httpx.ErrorBody
//	@Router		/auth/login [post]
func loginHandler(users user.Repository, iss *session.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		u, err := users.GetByEmail(c.Request.Context(), req.Email)
		if errors.Is(err, user.ErrNotFound) || (err == nil && !user.CheckPassword(u.PasswordHash, req.Password)) {
			httpx.Error(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			internalError(c, "[AUTH] lookup", err)
			return
		}
		token, exp, err := iss.Issue(u.ID, u.Email, u.Role)
		if err != nil {
			internalError(c, "[AUTH] issue", err)
			return
		}
		c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, UserID: u.ID, Email: u.Email, Role: u.Role})
	}
}

// userIDByEmailHandler answers {id} to the owner of the email or an admin.
// The id comes from the user directory.
func userIDByEmailHandler(ext *order.Ext) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := httpx.Claims(c)
		email := user.NormalizeEmail(c.Param("email"))
		if !claims.IsAdmin() && user.NormalizeEmail(claims.Email) != email {
			httpx.Error(c, http.StatusForbidden, "forbidden")
			return
		}
		id, ok, err := ext.LookupUserID(c.Request.Context(), email)
		switch {
		case err != nil:
			internalError(c, "[USERS] by email", err)
		case !ok:
			httpx.Error(c, http.StatusNotFound, "user not found")
		default:
			c.JSON(http.StatusOK, gin.H{"id": id})
		}
	}
}

func listUsersHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := httpx.Page(c, 50, 200)
		out, err := users.List(c.Request.Context(), limit, offset)
		if err != nil {
			internalError(c, "[USERS] list", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func getUserHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.GetByID(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, user.ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "user not found")
		case err != nil:
			internalError(c, "[USERS] get", err)
		default:
			c.JSON(http.StatusOK, u)
		}
	}
}

func createUserHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		hash, err := user.HashPassword(req.Password)
		if err != nil {
			internalError(c, "[USERS] hash", err)
			return
		}
		u := user.User{ID: uuid.NewString(), Email: user.NormalizeEmail(req.Email), PasswordHash: hash, Role: req.Role}
		if u.Role == "" {
			u.Role = user.RoleUser
		}
		err = users.Create(c.Request.Context(), &u)
		switch {
		case errors.Is(err, user.ErrAlreadyExist):
			httpx.Error(c, http.StatusConflict, "email already registered")
		case err != nil:
			internalError(c, "[USERS] create", err)
		default:
			c.JSON(http.StatusCreated, u)
		}
	}
}

func updateUserHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		u := user.User{ID: c.Param("id"), Email: req.Email, Role: req.Role}
		if req.Password != "" {
			hash, err := user.HashPassword(req.Password)
			if err != nil {
				internalError(c, "[USERS] hash", err)
				return
			}
			u.PasswordHash = hash
		}
		ctx := c.Request.Context()
		err := users.Update(ctx, &u, req.Password != "")
		switch {
		case errors.Is(err, user.ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "user not found")
			return
		case errors.Is(err, user.ErrAlreadyExist):
			httpx.Error(c, http.StatusConflict, "email already registered")
			return
		case err != nil:
			internalError(c, "[USERS] update", err)
			return
		}
		updated, err := users.GetByID(ctx, u.ID)
		if err != nil {
			internalError(c, "[USERS] reload", err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteUserHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := users.Delete(c.Request.Context(), c.Param("id"))
		switch {
		case err != nil:
			internalError(c, "[USERS] delete", err)
		case !ok:
			httpx.Error(c, http.StatusNotFound, "user not found")
		default:
			c.Status(http.StatusNoContent)
		}
	}
}

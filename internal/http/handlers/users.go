package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/antarn88/userserver/internal/cache"
	"github.com/antarn88/userserver/internal/config"
	"github.com/antarn88/userserver/internal/domain/user"
	"github.com/antarn88/userserver/internal/pagination"
	"github.com/antarn88/userserver/internal/service"
	"github.com/gin-gonic/gin"
)

// defaultSort keeps the HTTP surface forgiving: the service rejects an
// empty sort spec, the API picks a sensible one instead.
const defaultSort = "name"

// UserDirectory is the slice of the directory service these handlers
// need.
type UserDirectory interface {
	Create(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (user.Profile, error)
	GetByEmail(ctx context.Context, email string) (user.Profile, error)
	List(ctx context.Context, page, perPage int, sortSpec string) (pagination.Page[user.Profile], error)
}

type UsersHandler struct {
	directory UserDirectory
	profiles  *cache.Cache[user.Profile]
}

func NewUsersHandler(directory UserDirectory, profiles *cache.Cache[user.Profile]) *UsersHandler {
	return &UsersHandler{
		directory: directory,
		profiles:  profiles,
	}
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.directory.Create(cctx, req)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u.Profile())
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	id := ctx.Param("id")

	if h.profiles != nil {
		if profile, ok := h.profiles.Get(id); ok {
			ctx.JSON(http.StatusOK, profile)
			return
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	profile, err := h.directory.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	if h.profiles != nil {
		h.profiles.Set(id, profile)
	}

	ctx.JSON(http.StatusOK, profile)
}

func (h *UsersHandler) GetUserByEmail(ctx *gin.Context) {
	email := ctx.Query("email")

	if email == "" {
		RespondBadRequest(ctx, "Missing email query parameter", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	profile, err := h.directory.GetByEmail(cctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	page := intQuery(ctx, "page", 1)
	perPage := intQuery(ctx, "perPage", service.DefaultPerPage)

	sortSpec := ctx.Query("sort")
	if sortSpec == "" {
		sortSpec = defaultSort
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	result, err := h.directory.List(cctx, page, perPage, sortSpec)

	if err != nil {
		if errors.Is(err, service.ErrInvalidSortField) {
			RespondBadRequest(ctx, "Unsupported sort field", gin.H{"sort": sortSpec})
			return
		}

		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id := ctx.Param("id")

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.directory.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrEmailTaken):
			RespondConflict(ctx, "email_taken", "Email is already in use.")
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	if h.profiles != nil {
		h.profiles.Delete(id)
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	deleted, err := h.directory.Delete(cctx, id)

	if err != nil {
		RespondInternal(ctx, "Could not delete user")
		return
	}

	if !deleted {
		RespondNotFound(ctx, "User not found")
		return
	}

	if h.profiles != nil {
		h.profiles.Delete(id)
	}

	ctx.Status(http.StatusNoContent)
}

func intQuery(ctx *gin.Context, key string, fallback int) int {
	v := ctx.Query(key)

	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)

	if err != nil {
		return fallback
	}

	return n
}

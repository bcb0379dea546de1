package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// UsersStore is the slice of the record store the CRUD handlers need.
type UsersStore interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, f user.Fields) (user.User, error)
	Get(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, id string, f user.Fields) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type UsersHandler struct {
	store   UsersStore
	timeout time.Duration
	log     *slog.Logger
}

func NewUsersHandler(store UsersStore, timeout time.Duration, log *slog.Logger) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}

	return &UsersHandler{store: store, timeout: timeout, log: log}
}

// storeCtx bounds one store call by the request context and the configured
// store timeout.
func (h *UsersHandler) storeCtx(ctx *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx.Request.Context())
	}

	return context.WithTimeout(ctx.Request.Context(), h.timeout)
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	c, cancel := h.storeCtx(ctx)
	defer cancel()

	users, err := h.store.List(c)

	if err != nil {
		RespondStoreError(ctx, h.log, "list", err)
		return
	}

	respondCached(ctx, http.StatusOK, gin.H{
		"data":  users,
		"count": len(users),
	})
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	c, cancel := h.storeCtx(ctx)
	defer cancel()

	u, err := h.store.Get(c, ctx.Param("id"))

	if err != nil {
		RespondStoreError(ctx, h.log, "get", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": u})
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	c, cancel := h.storeCtx(ctx)
	defer cancel()

	u, err := h.store.Create(c, req.Fields())

	if err != nil {
		RespondStoreError(ctx, h.log, "create", err)
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "user created", "user_id", u.ID)

	ctx.JSON(http.StatusCreated, gin.H{"data": u})
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	c, cancel := h.storeCtx(ctx)
	defer cancel()

	u, err := h.store.Update(c, ctx.Param("id"), req.Fields())

	if err != nil {
		RespondStoreError(ctx, h.log, "update", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": u})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	c, cancel := h.storeCtx(ctx)
	defer cancel()

	err := h.store.Delete(c, id)

	if err != nil {
		RespondStoreError(ctx, h.log, "delete", err)
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "user deleted", "user_id", id)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
		"data":    gin.H{"id": id},
	})
}

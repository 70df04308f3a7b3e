package catalog

import (
	"context"
	"net/http"
	"strconv"

	"tripmarket/internal/domain"
	"tripmarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/packages", h.ListPackages)
	rg.GET("/search/suggest", h.Suggest)
	rg.GET("/packages/:id", h.GetPackage)
}

// RegisterVendorRoutes mounts vendor CRUD; callers guard these with the
// vendor role middleware.
func (h *Handler) RegisterVendorRoutes(rg *gin.RouterGroup) {
	rg.POST("/packages", h.CreatePackage)
	rg.GET("/my/packages", h.ListMine)
	rg.PATCH("/packages/:id", h.UpdatePackage)
	rg.POST("/packages/:id/publish", h.Publish)
	rg.POST("/packages/:id/archive", h.Archive)
}

func (h *Handler) writeErr(c *gin.Context, err error, fallback string) {
	switch err {
	case ErrValidation:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case ErrNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Package not found")
	case ErrForbidden:
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this package")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func (h *Handler) CreatePackage(c *gin.Context) {
	var req CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	p, err := h.service.CreatePackage(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeErr(c, err, "Failed to create package")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"package": p})
}

func (h *Handler) UpdatePackage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid package ID")
		return
	}

	var req UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.UpdatePackage(c.Request.Context(), id,
		c.GetInt64("user_id"), domain.UserRole(c.GetString("role")), req)
	if err != nil {
		h.writeErr(c, err, "Failed to update package")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"package": p})
}

func (h *Handler) Publish(c *gin.Context) {
	h.setStatus(c, h.service.Publish)
}

func (h *Handler) Archive(c *gin.Context) {
	h.setStatus(c, h.service.Archive)
}

func (h *Handler) setStatus(c *gin.Context, fn func(ctx context.Context, id, vendorID int64, role domain.UserRole) error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid package ID")
		return
	}

	err = fn(c.Request.Context(), id, c.GetInt64("user_id"), domain.UserRole(c.GetString("role")))
	if err != nil {
		h.writeErr(c, err, "Failed to update package status")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

func (h *Handler) GetPackage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid package ID")
		return
	}

	p, err := h.service.GetPackage(c.Request.Context(), id)
	if err != nil {
		h.writeErr(c, err, "Failed to load package")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"package": p})
}

func (h *Handler) ListPackages(c *gin.Context) {
	var q ListPackagesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	pkgs, err := h.service.ListPublished(c.Request.Context(), q)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list packages")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"packages": pkgs})
}

func (h *Handler) ListMine(c *gin.Context) {
	pkgs, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list packages")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"packages": pkgs})
}

func (h *Handler) Suggest(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	titles, err := h.service.Suggest(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load suggestions")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"suggestions": titles})
}

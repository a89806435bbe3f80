package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/middleware"
	"github.com/myanedu/portal-api/internal/service"
	"github.com/myanedu/portal-api/pkg/response"
)

// CatalogHandler serves the public landing-page data.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ActiveBatches godoc
// @Summary List batches open for enrollment
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/batches [get]
func (h *CatalogHandler) ActiveBatches(c *gin.Context) {
	batches, hit, err := h.catalog.ActiveBatches(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, batches, nil, middleware.ExtractMeta(c))
}

// PromotedCourses godoc
// @Summary List promoted courses
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/promoted [get]
func (h *CatalogHandler) PromotedCourses(c *gin.Context) {
	courses, hit, err := h.catalog.PromotedCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, courses, nil, middleware.ExtractMeta(c))
}

// Instructors godoc
// @Summary List instructor profiles
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/instructors [get]
func (h *CatalogHandler) Instructors(c *gin.Context) {
	instructors, hit, err := h.catalog.Instructors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, instructors, nil, middleware.ExtractMeta(c))
}

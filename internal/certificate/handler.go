package certificate

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// WarningsHeader lists render warnings on PDF responses
const WarningsHeader = "X-Certificate-Warnings"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.ListTemplates)

	certs := rg.Group("/certificates")
	{
		certs.POST("", h.Render)
		certs.POST("/publish", h.Publish)
	}
}

type templateInfo struct {
	Name       string  `json:"name"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	LogoPlaced bool    `json:"logo_placement"`
}

func (h *Handler) ListTemplates(c *gin.Context) {
	specs := Templates()
	out := make([]templateInfo, 0, len(specs))
	for _, t := range specs {
		out = append(out, templateInfo{
			Name:       t.Name,
			Width:      t.Sheet.Width,
			Height:     t.Sheet.Height,
			LogoPlaced: t.HonorLogoPlacement,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Render(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, result, err := h.service.Render(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if msgs := result.WarningMessages(); len(msgs) > 0 {
		c.Header(WarningsHeader, strings.Join(msgs, "; "))
	}
	c.Header("Content-Disposition", `inline; filename="certificate.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *Handler) Publish(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pub, err := h.service.Publish(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, pub)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrPublishingDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package public

import (
	"strconv"
	"strings"

	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCatalog 获取门店菜单，支持分类、关键字与仅可售过滤
func (h *Handler) GetCatalog(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	filter := service.ProductFilter{
		Category:      strings.TrimSpace(c.Query("category")),
		Search:        strings.TrimSpace(c.Query("q")),
		OnlyAvailable: queryBool(c, "available"),
	}
	products, err := h.CatalogService.Products(c.Request.Context(), sessionID, unitID, filter, queryBool(c, "refresh"))
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, gin.H{"products": products})
}

// GetCategories 获取菜单分类
func (h *Handler) GetCategories(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	categories, err := h.CatalogService.Categories(c.Request.Context(), sessionID, unitID)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, gin.H{"categories": categories})
}

func queryBool(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && value
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

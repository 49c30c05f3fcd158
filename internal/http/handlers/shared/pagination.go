package shared

import (
	"strconv"
	"strings"

	"github.com/comanda-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// PageQuery 读取 page / page_size 查询参数，非法值按默认处理
func PageQuery(c *gin.Context) (int, int) {
	return NormalizePagination(queryNumber(c, "page"), queryNumber(c, "page_size"))
}

// NormalizePagination 归一化分页参数，单页最多 50 条下单记录
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// PageInfo 构建分页响应信息
func PageInfo(page, pageSize int, total int64) response.Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

func queryNumber(c *gin.Context, name string) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

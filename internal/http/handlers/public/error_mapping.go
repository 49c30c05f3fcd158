package public

import (
	"errors"

	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			// 上游与存储错误需要保留原始错误用于排查
			var logErr error
			if rule.code >= response.CodeInternal {
				logErr = err
			}
			respondError(c, rule.code, rule.key, logErr)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var commonErrorRules = []mappedHandlerError{
	{target: service.ErrScopeInvalid, code: response.CodeBadRequest, key: "error.scope_invalid"},
	{target: service.ErrSessionInvalid, code: response.CodeUnauthorized, key: "error.session_invalid"},
	{target: service.ErrSessionExpired, code: response.CodeUnauthorized, key: "error.session_expired"},
	{target: service.ErrStorageUnavailable, code: response.CodeServiceUnavailable, key: "error.storage_unavailable"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrCartItemInvalid, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrCartQuantityInvalid, code: response.CodeBadRequest, key: "error.cart_quantity_invalid"},
}

var pricingErrorRules = []mappedHandlerError{
	{target: service.ErrSplitCountInvalid, code: response.CodeBadRequest, key: "error.split_count_invalid"},
	{target: service.ErrOrderTypeInvalid, code: response.CodeBadRequest, key: "error.order_type_invalid"},
	{target: service.ErrCatalogUnavailable, code: response.CodeBadGateway, key: "error.catalog_unavailable"},
}

var tableErrorRules = []mappedHandlerError{
	{target: service.ErrTableNumberInvalid, code: response.CodeBadRequest, key: "error.table_number_invalid"},
	{target: service.ErrTableNotBound, code: response.CodeConflict, key: "error.table_not_bound"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeConflict, key: "error.cart_empty"},
	{target: service.ErrCheckoutInFlight, code: response.CodeConflict, key: "error.checkout_in_flight"},
	{target: service.ErrOrderSubmitFailed, code: response.CodeBadGateway, key: "error.order_submit_failed"},
	{target: service.ErrBillFinalizeFailed, code: response.CodeBadGateway, key: "error.bill_finalize_failed"},
}

var cartHandlerErrorRules = concatMappedHandlerErrors(commonErrorRules, cartErrorRules)

var catalogHandlerErrorRules = concatMappedHandlerErrors(commonErrorRules, pricingErrorRules)

var tableHandlerErrorRules = concatMappedHandlerErrors(commonErrorRules, tableErrorRules)

var checkoutHandlerErrorRules = concatMappedHandlerErrors(commonErrorRules, pricingErrorRules, tableErrorRules, checkoutErrorRules)

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartHandlerErrorRules, response.CodeInternal, "error.internal")
}

func respondCatalogError(c *gin.Context, err error) {
	respondWithMappedError(c, err, catalogHandlerErrorRules, response.CodeInternal, "error.internal")
}

func respondTableError(c *gin.Context, err error) {
	respondWithMappedError(c, err, tableHandlerErrorRules, response.CodeInternal, "error.internal")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutHandlerErrorRules, response.CodeInternal, "error.internal")
}

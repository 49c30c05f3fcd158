package response

import "fmt"

// 错误消息 key 与默认文案
var messages = map[string]string{
	"error.bad_request":            "invalid request",
	"error.unauthorized":           "session token required",
	"error.session_invalid":        "session token is invalid",
	"error.session_expired":        "session expired, please scan the table code again",
	"error.session_issue_failed":   "failed to start session",
	"error.not_found":              "resource not found",
	"error.too_many_requests":      "too many requests, please retry later",
	"error.rate_limited":           "too many requests, please retry in %d seconds",
	"error.rate_limit_unavailable": "rate limiter unavailable",
	"error.internal":               "internal error",
	"error.scope_invalid":          "invalid restaurant unit",
	"error.cart_item_invalid":      "invalid product",
	"error.cart_quantity_invalid":  "quantity must be zero or greater",
	"error.cart_empty":             "cart is empty",
	"error.split_count_invalid":    "split count must be at least 1",
	"error.order_type_invalid":     "order type must be local or takeaway",
	"error.table_number_invalid":   "table number must be a positive integer",
	"error.table_not_bound":        "no table bound to this session",
	"error.checkout_in_flight":     "a checkout request is already in progress",
	"error.catalog_unavailable":    "menu is unavailable, please retry",
	"error.order_submit_failed":    "order could not be submitted, please retry",
	"error.bill_finalize_failed":   "bill request failed, please retry",
	"error.storage_unavailable":    "session storage unavailable",
}

// Message 返回消息 key 对应的文案，未登记的 key 原样返回
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}

// Messagef 返回带格式参数的文案
func Messagef(key string, args ...interface{}) string {
	return fmt.Sprintf(Message(key), args...)
}

package service

import "errors"

// 校验类错误
var (
	ErrScopeInvalid        = errors.New("restaurant scope is invalid")
	ErrCartItemInvalid     = errors.New("cart item is invalid")
	ErrCartQuantityInvalid = errors.New("cart quantity is invalid")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrSplitCountInvalid   = errors.New("split count must be at least 1")
	ErrOrderTypeInvalid    = errors.New("order type is invalid")
	ErrTableNumberInvalid  = errors.New("table number is invalid")
	ErrTableNotBound       = errors.New("table is not bound")
	ErrCheckoutInFlight    = errors.New("checkout request already in flight")
)

// 会话错误
var (
	ErrSessionInvalid = errors.New("session token is invalid")
	ErrSessionExpired = errors.New("session token is expired")
)

// 上游与存储错误
var (
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrOrderSubmitFailed  = errors.New("order submit failed")
	ErrBillFinalizeFailed = errors.New("bill finalize failed")
	ErrStorageUnavailable = errors.New("session storage unavailable")
)

package constants

import "github.com/shopspring/decimal"

// 就餐方式常量
const (
	OrderTypeLocal    = "local"
	OrderTypeTakeaway = "takeaway"
)

// ServiceFeeRate 堂食服务费比例（固定策略，不按门店配置）
var ServiceFeeRate = decimal.NewFromFloat(0.10)

// 下单阶段状态常量
const (
	OrderPhaseIdle       = "idle"
	OrderPhaseSubmitting = "submitting"
	OrderPhaseSuccess    = "success"
	OrderPhaseFailed     = "failed"
)

// 结账（请求买单）阶段状态常量
const (
	BillPhaseIdle              = "idle"
	BillPhaseFinalizeRequested = "finalize_requested"
	BillPhaseFinalizing        = "finalizing"
	BillPhaseFinalizeSuccess   = "finalize_success"
	BillPhaseFinalizeFailed    = "finalize_failed"
)

// 结账失败原因（返回给前端，不含上游原始响应）
const (
	CheckoutErrorOrderSubmitFailed   = "order_submit_failed"
	CheckoutErrorOrderSubmitTimeout  = "order_submit_timeout"
	CheckoutErrorBillFinalizeFailed  = "bill_finalize_failed"
	CheckoutErrorBillFinalizeTimeout = "bill_finalize_timeout"
)

// 下单提交流水状态常量
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusSucceeded = "succeeded"
	SubmissionStatusFailed    = "failed"
)

// 会话存储 key 前缀
const (
	StoreKeyCart     = "cart"
	StoreKeyTable    = "table"
	StoreKeyCheckout = "checkout"
	StoreKeyCatalog  = "catalog"
)

// 存储驱动常量
const (
	StoreDriverMemory   = "memory"
	StoreDriverDatabase = "database"
	StoreDriverRedis    = "redis"
)

// 队列与任务常量
const (
	QueueDefault = "default"

	TaskCheckoutReset = "checkout:reset"
	TaskTableExpire   = "table:expire"
)

// 上下文 key
const (
	ContextKeySessionID = "session_id"
	ContextKeyRequestID = "request_id"
)

// 确认页查询参数
const (
	ConfirmationQueryTable = "table"
	ConfirmationQuerySplit = "split"
)

package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCanceled   = "canceled"
	OrderStatusRefunded   = "refunded"
)

// 支付状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusExpired   = "expired"
	PaymentStatusCanceled  = "canceled"
)

// 操作者角色常量
const (
	ActorRoleCustomer = "customer"
	ActorRoleStaff    = "staff"
	ActorRoleSystem   = "system"
)

// 系统操作者标识（写入状态变更记录）
const (
	SystemActorName = "system"
)

// 队列常量
const (
	QueueDefault         = "default"
	QueueCritical        = "critical"
	TaskOrderStatusEmail = "order:status_email"
	TaskOrderRefund      = "order:refund_instruction"
	TaskPaymentExpire    = "payment:expire"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "hm"
)

// 缓存键常量
const (
	CacheKeyCancelReasonsActive = "cancel_reasons:active"
	LockKeyPaymentReconciler    = "lock:payment_reconciler"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}

// 取消原因字段约束
const (
	CancelReasonDescriptionMaxLen = 255
)

package i18n

var messages = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":                 "请求参数错误",
		"error.unauthorized":                "未登录或登录已过期",
		"error.forbidden":                   "无权执行该操作",
		"error.not_found":                   "资源不存在",
		"error.conflict":                    "数据已被修改，请刷新后重试",
		"error.too_many_requests":           "操作过于频繁，请稍后再试",
		"error.rate_limited":                "操作过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":      "限流服务暂不可用",
		"error.auth_header_missing":         "缺少认证信息",
		"error.auth_header_invalid":         "认证信息格式错误",
		"error.token_invalid":               "登录凭证无效",
		"error.internal":                    "服务器内部错误",
		"error.invalid_credentials":         "用户名或密码错误",
		"error.order_not_found":             "订单不存在",
		"error.order_details_empty":         "订单至少包含一个商品",
		"error.order_detail_invalid":        "商品数量必须大于 0",
		"error.order_user_required":         "订单缺少下单用户",
		"error.order_address_required":      "请填写收货地址",
		"error.order_total_mismatch":        "订单金额与明细合计不一致",
		"error.order_email_invalid":         "邮箱格式不正确",
		"error.order_status_invalid":        "未知的订单状态",
		"error.variation_not_found":         "商品规格不存在",
		"error.variation_unavailable":       "商品规格已下架",
		"error.stock_insufficient":          "库存不足",
		"error.transition_not_allowed":      "当前状态不允许变更为目标状态",
		"error.cancel_requires_reason":      "请通过取消订单并选择取消原因来取消",
		"error.transition_staff_only":       "仅员工可将订单推进到该状态",
		"error.status_mismatch":             "订单状态已变化，请刷新后重试",
		"error.concurrent_update":           "订单正在被其他请求处理，请稍后重试",
		"error.refund_not_computed":         "订单尚未计算退款金额",
		"error.order_cancel_not_allowed":    "仅待支付或处理中的订单可以取消",
		"error.order_access_denied":         "无权操作该订单",
		"error.staff_only":                  "仅员工可执行该操作",
		"error.status_change_not_found":     "状态变更记录不存在",
		"error.cancel_reason_required":      "请选择取消原因",
		"error.cancel_reason_not_found":     "取消原因不存在",
		"error.cancel_reason_desc_required": "请填写取消原因描述",
		"error.cancel_reason_desc_too_long": "取消原因描述过长",
		"error.refund_rate_invalid":         "退款比例必须在 0 到 1 之间",
		"error.pagination_invalid":          "分页参数必须为正数",
		"error.payment_not_found":           "支付记录不存在",
		"error.payment_not_pending":         "支付记录不是待支付状态",
		"error.payment_expired":             "支付已超时",
		"order.status.pending":              "待支付",
		"order.status.processing":           "处理中",
		"order.status.shipped":              "已发货",
		"order.status.delivered":            "已送达",
		"order.status.canceled":             "已取消",
		"order.status.refunded":             "已退款",
		"email.order_status.subject":        "订单状态更新：%s",
		"email.order_status.body":           "您的订单 %s 状态已更新为：%s\n订单金额：%s",
		"email.order_status.body_canceled":  "您的订单 %s 已取消（%s）\n订单金额：%s\n如已支付，退款将按取消原因原路退回。",
	},
	LocaleTW: {
		"error.bad_request":                "請求參數錯誤",
		"error.unauthorized":               "未登入或登入已過期",
		"error.forbidden":                  "無權執行該操作",
		"error.not_found":                  "資源不存在",
		"error.conflict":                   "資料已被修改，請重新整理後重試",
		"error.too_many_requests":          "操作過於頻繁，請稍後再試",
		"error.rate_limited":               "操作過於頻繁，請 %d 秒後再試",
		"error.rate_limit_unavailable":     "限流服務暫不可用",
		"error.auth_header_missing":        "缺少認證資訊",
		"error.auth_header_invalid":        "認證資訊格式錯誤",
		"error.token_invalid":              "登入憑證無效",
		"error.internal":                   "伺服器內部錯誤",
		"error.invalid_credentials":        "帳號或密碼錯誤",
		"error.order_not_found":            "訂單不存在",
		"error.order_details_empty":        "訂單至少包含一個商品",
		"error.order_detail_invalid":       "商品數量必須大於 0",
		"error.order_address_required":     "請填寫收貨地址",
		"error.order_total_mismatch":       "訂單金額與明細合計不一致",
		"error.stock_insufficient":         "庫存不足",
		"error.transition_not_allowed":     "目前狀態不允許變更為目標狀態",
		"error.status_mismatch":            "訂單狀態已變化，請重新整理後重試",
		"error.order_cancel_not_allowed":   "僅待付款或處理中的訂單可以取消",
		"error.order_access_denied":        "無權操作該訂單",
		"error.cancel_reason_not_found":    "取消原因不存在",
		"error.payment_expired":            "付款已逾時",
		"order.status.pending":             "待付款",
		"order.status.processing":          "處理中",
		"order.status.shipped":             "已出貨",
		"order.status.delivered":           "已送達",
		"order.status.canceled":            "已取消",
		"order.status.refunded":            "已退款",
		"email.order_status.subject":       "訂單狀態更新：%s",
		"email.order_status.body":          "您的訂單 %s 狀態已更新為：%s\n訂單金額：%s",
		"email.order_status.body_canceled": "您的訂單 %s 已取消（%s）\n訂單金額：%s\n如已付款，退款將依取消原因原路退回。",
	},
	LocaleEN: {
		"error.bad_request":                 "Invalid request parameters",
		"error.unauthorized":                "Not signed in or session expired",
		"error.forbidden":                   "You are not allowed to do this",
		"error.not_found":                   "Resource not found",
		"error.conflict":                    "The data has changed, please refresh and retry",
		"error.too_many_requests":           "Too many requests, please try again later",
		"error.rate_limited":                "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":      "Rate limiter is unavailable",
		"error.auth_header_missing":         "Missing authorization header",
		"error.auth_header_invalid":         "Malformed authorization header",
		"error.token_invalid":               "Invalid credentials token",
		"error.internal":                    "Internal server error",
		"error.invalid_credentials":         "Invalid username or password",
		"error.order_not_found":             "Order not found",
		"error.order_details_empty":         "An order needs at least one item",
		"error.order_detail_invalid":        "Item quantity must be positive",
		"error.order_user_required":         "Order has no customer",
		"error.order_address_required":      "Delivery address is required",
		"error.order_total_mismatch":        "Order total does not match its items",
		"error.order_email_invalid":         "Invalid email address",
		"error.order_status_invalid":        "Unknown order status",
		"error.variation_not_found":         "Product variation not found",
		"error.variation_unavailable":       "Product variation is unavailable",
		"error.stock_insufficient":          "Insufficient stock",
		"error.transition_not_allowed":      "The order cannot move to that status",
		"error.cancel_requires_reason":      "Use order cancellation with a reason to cancel",
		"error.transition_staff_only":       "Only staff may move the order to that status",
		"error.status_mismatch":             "The order status has changed, please refresh and retry",
		"error.concurrent_update":           "The order is being updated, please retry shortly",
		"error.refund_not_computed":         "Refund amount has not been computed",
		"error.order_cancel_not_allowed":    "Only pending or processing orders can be canceled",
		"error.order_access_denied":         "You may not act on this order",
		"error.staff_only":                  "Staff only",
		"error.status_change_not_found":     "Status change not found",
		"error.cancel_reason_required":      "Cancel reason is required",
		"error.cancel_reason_not_found":     "Cancel reason not found",
		"error.cancel_reason_desc_required": "Cancel reason description is required",
		"error.cancel_reason_desc_too_long": "Cancel reason description is too long",
		"error.refund_rate_invalid":         "Refund rate must be between 0 and 1",
		"error.pagination_invalid":          "Page and page size must be positive",
		"error.payment_not_found":           "Payment not found",
		"error.payment_not_pending":         "Payment is not pending",
		"error.payment_expired":             "Payment has expired",
		"order.status.pending":              "Pending payment",
		"order.status.processing":           "Processing",
		"order.status.shipped":              "Shipped",
		"order.status.delivered":            "Delivered",
		"order.status.canceled":             "Canceled",
		"order.status.refunded":             "Refunded",
		"email.order_status.subject":        "Order status update: %s",
		"email.order_status.body":           "Your order %s is now: %s\nOrder total: %s",
		"email.order_status.body_canceled":  "Your order %s has been canceled (%s)\nOrder total: %s\nIf you already paid, the refund follows the cancel reason policy.",
	},
}

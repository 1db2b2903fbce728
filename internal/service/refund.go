package service

import (
	"context"

	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/queue"

	"github.com/shopspring/decimal"
)

var (
	refundRateMin = decimal.Zero
	refundRateMax = decimal.NewFromInt(1)
)

// CalculateRefund 按取消原因的退款比例计算退款金额，四舍五入到分
func CalculateRefund(total models.Money, rate decimal.Decimal) (models.Money, error) {
	if !isValidRefundRate(rate) {
		return models.Money{}, ErrRefundRateInvalid
	}
	return total.MulRate(rate), nil
}

func isValidRefundRate(rate decimal.Decimal) bool {
	return !rate.LessThan(refundRateMin) && !rate.GreaterThan(refundRateMax)
}

// RefundInstruction 交给支付网关执行的退款指令
type RefundInstruction struct {
	OrderID        uint
	PaymentID      uint
	CancelReasonID uint
	Amount         models.Money
}

// RefundGateway 外部退款执行方
type RefundGateway interface {
	RequestRefund(ctx context.Context, instruction RefundInstruction) error
}

// QueueRefundGateway 通过异步队列下发退款指令
type QueueRefundGateway struct {
	client *queue.Client
}

// NewQueueRefundGateway 创建队列退款网关
func NewQueueRefundGateway(client *queue.Client) *QueueRefundGateway {
	return &QueueRefundGateway{client: client}
}

// RequestRefund 入队退款指令；同一订单重复入队会被忽略
func (g *QueueRefundGateway) RequestRefund(_ context.Context, instruction RefundInstruction) error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.EnqueueOrderRefund(queue.OrderRefundPayload{
		OrderID:        instruction.OrderID,
		PaymentID:      instruction.PaymentID,
		CancelReasonID: instruction.CancelReasonID,
		Amount:         instruction.Amount.String(),
	})
}

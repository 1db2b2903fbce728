package queue

import (
	"encoding/json"
	"testing"

	"github.com/handmade-market/internal/config"
)

func TestNewOrderRefundTaskPayload(t *testing.T) {
	task, err := NewOrderRefundTask(OrderRefundPayload{OrderID: 9, PaymentID: 4, CancelReasonID: 2, Amount: "50.00"})
	if err != nil {
		t.Fatalf("build refund task failed: %v", err)
	}
	if task.Type() != TaskOrderRefund {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var got OrderRefundPayload
	if err := json.Unmarshal(task.Payload(), &got); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if got.OrderID != 9 || got.Amount != "50.00" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestTaskBuildersRejectMissingIDs(t *testing.T) {
	if _, err := NewOrderRefundTask(OrderRefundPayload{}); err == nil {
		t.Fatalf("refund task without order id should fail")
	}
	if _, err := NewPaymentExpireTask(PaymentExpirePayload{}); err == nil {
		t.Fatalf("expire task without payment id should fail")
	}
}

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueOrderRefund(OrderRefundPayload{OrderID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380})
	if opt.Addr != "redis:6380" {
		t.Fatalf("unexpected addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

package service

import (
	"testing"

	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/queue"
)

func TestEnqueueOrderStatusEmailTaskIfEligible(t *testing.T) {
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	t.Cleanup(func() {
		_ = queueClient.Close()
	})

	tests := []struct {
		name        string
		order       *models.Order
		wantSkipped bool
	}{
		{"nil_order", nil, true},
		{"unsaved_order", &models.Order{CustomerEmail: "buyer@example.com"}, true},
		{"blank_email", &models.Order{ID: 1, CustomerEmail: "   "}, true},
		{"with_email", &models.Order{ID: 2, CustomerEmail: "buyer@example.com"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skipped, err := enqueueOrderStatusEmailTaskIfEligible(queueClient, tt.order, "processing")
			if err != nil {
				t.Fatalf("enqueue helper returned error: %v", err)
			}
			if skipped != tt.wantSkipped {
				t.Fatalf("skipped = %v, want %v", skipped, tt.wantSkipped)
			}
		})
	}

	if skipped, _ := enqueueOrderStatusEmailTaskIfEligible(nil, &models.Order{ID: 3, CustomerEmail: "a@b.c"}, "pending"); !skipped {
		t.Fatalf("expected skip without queue client")
	}
}

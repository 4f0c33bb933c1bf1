package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
)

// Mock is a synchronous processor that approves a configurable fraction of
// charges. Useful for local runs and load tests.
type Mock struct {
	mu           sync.Mutex
	random       *rand.Rand
	approvalRate float64
}

func NewMock(approvalRate float64) *Mock {
	if approvalRate < 0 {
		approvalRate = 0
	}
	if approvalRate > 1 {
		approvalRate = 1
	}
	return &Mock{
		random:       rand.New(rand.NewSource(time.Now().UnixNano())),
		approvalRate: approvalRate,
	}
}

func (m *Mock) Charge(ctx context.Context, orderID int64, amount float64) (payment.Outcome, error) {
	if orderID <= 0 {
		return "", fmt.Errorf("gateway: invalid order id %d", orderID)
	}
	if amount < 0 {
		return "", fmt.Errorf("gateway: negative amount %.2f", amount)
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.random.Float64() < m.approvalRate {
		return payment.OutcomeApproved, nil
	}
	return payment.OutcomeDeclined, nil
}

func (m *Mock) SetApprovalRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	m.approvalRate = rate
}

var _ payment.Processor = (*Mock)(nil)

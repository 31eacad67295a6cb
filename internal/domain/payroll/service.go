package payroll

import "context"

// PayrollService is the only path that mutates settlement state.
type PayrollService interface {
	// Lifecycle
	GenerateSettlement(ctx context.Context, req GenerateSettlementRequest) (SettlementResponse, error)
	GenerateForPeriod(ctx context.Context, req GenerateForPeriodRequest) (GenerateForPeriodResponse, error)
	ApproveSettlement(ctx context.Context, id string) (SettlementResponse, error)
	RejectSettlement(ctx context.Context, req RejectSettlementRequest) (SettlementResponse, error)

	// Payment
	PayPeriod(ctx context.Context, req PayPeriodRequest) (PaymentResponse, error)
	PayBatch(ctx context.Context, req PayBatchRequest) ([]PaymentResponse, error)

	// Read accessors
	GetSettlement(ctx context.Context, id string) (SettlementDetailResponse, error)
	ListSettlements(ctx context.Context, filter SettlementFilter) (ListSettlementResponse, error)
	GetPeriodSummary(ctx context.Context, month, year int) (PeriodSummaryResponse, error)
}

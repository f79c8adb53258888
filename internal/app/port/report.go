package port

import (
	"context"

	"wallet_report/internal/domain/entity"
)

// ReportService produces a narrated due-diligence report for one wallet.
type ReportService interface {
	GenerateReport(ctx context.Context, req entity.ReportRequest) (*entity.Report, error)
}

// NFTInsightService aggregates per-token NFT lookups.
type NFTInsightService interface {
	GetInsight(ctx context.Context, req entity.NFTInsightRequest) (*entity.NFTInsight, error)
}

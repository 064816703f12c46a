package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"github.com/kiwis93160/POS-OUIOUI/internal/queue"
	"go.uber.org/zap"
)

// ReportService hands report generation off to the external
// aggregation job. The actual number crunching happens there.
type ReportService struct {
	broker queue.Broker
	logger *zap.SugaredLogger
}

func NewReportService(broker queue.Broker, logger *zap.SugaredLogger) *ReportService {
	return &ReportService{
		broker: broker,
		logger: logger,
	}
}

func (s *ReportService) RequestDailyReport(ctx context.Context, day time.Time, requestedBy string) error {
	request := domain.ReportRequest{
		Day:         day.Format("2006-01-02"),
		RequestedBy: requestedBy,
		RequestedAt: time.Now(),
	}

	requestBytes, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal report request: %w", err)
	}

	if err := s.broker.Publish(ctx, queue.QueueReports, requestBytes); err != nil {
		return fmt.Errorf("failed to publish report request: %w", err)
	}

	s.logger.Infow("daily report requested", "day", request.Day, "requested_by", requestedBy)

	return nil
}

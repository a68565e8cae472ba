package service

import (
	"context"
	"time"

	"github.com/mmeshcher/puntodeagua/internal/model"
)

// Summarize возвращает выручку и число бутылей по принятым и доставленным заказам за период.
// Неизвестный период считается периодом за весь срок.
func (s *Service) Summarize(ctx context.Context, period string) (*model.SalesSummary, error) {
	p := model.ParsePeriod(period)

	var since *time.Time
	if bound, ok := p.Since(s.clock()); ok {
		since = &bound
	}

	summary, err := s.repo.SummarizeSales(ctx, model.RevenueStatuses, since)
	if err != nil {
		return nil, err
	}

	summary.Period = p
	summary.Revenue = summary.Revenue.Round(2)
	return summary, nil
}

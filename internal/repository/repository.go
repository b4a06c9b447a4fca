package repository

import (
	"context"
	"errors"

	"github.com/ivanoskov/villa_bot/internal/model"
)

// ErrStoreDisabled хранилище не настроено
var ErrStoreDisabled = errors.New("lead store disabled")

// DefaultRecentLimit сколько заявок отдавать по умолчанию
const DefaultRecentLimit = 10

type LeadRepository interface {
	// AppendLead сохраняет заявку. false без ошибки: хранилище отключено.
	AppendLead(ctx context.Context, row model.LeadRow) (bool, error)
	// RecentLeads возвращает последние заявки, новые первыми
	RecentLeads(ctx context.Context, filter LeadFilter) ([]model.LeadRow, error)
}

type LeadFilter struct {
	Limit int
}

func (f LeadFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultRecentLimit
	}
	return f.Limit
}

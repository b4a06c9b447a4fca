package app

import (
	"time"

	"github.com/ivanoskov/villa_bot/internal/model"
)

func sampleRow() model.LeadRow {
	return model.NewLeadRow(model.Lead{Name: "Анна", LotID: "1155"},
		model.UserIdentity{ChatID: 1, UserID: 2}, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/villa_bot/internal/model"
)

type SupabaseRepository struct {
	client *supabase.Client
	table  string
	log    *slog.Logger
}

func NewSupabaseRepository(url, key, table string, log *slog.Logger) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseRepository{
		client: client,
		table:  table,
		log:    log,
	}, nil
}

func (r *SupabaseRepository) AppendLead(ctx context.Context, row model.LeadRow) (bool, error) {
	_, count, err := r.client.From(r.table).Insert(row, false, "", "minimal", "").Execute()
	if err != nil {
		return false, fmt.Errorf("failed to insert lead: %w", err)
	}
	r.log.Debug("lead inserted", "table", r.table, "lead_id", row.ID, "count", count)
	return true, nil
}

func (r *SupabaseRepository) RecentLeads(ctx context.Context, filter LeadFilter) ([]model.LeadRow, error) {
	// Order без опций сортирует по убыванию
	data, _, err := r.client.From(r.table).
		Select("*", "", false).
		Order("created_at", nil).
		Limit(filter.limit(), "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get leads: %w", err)
	}

	var rows []model.LeadRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse leads: %w", err)
	}
	return rows, nil
}

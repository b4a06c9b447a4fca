package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ivanoskov/villa_bot/internal/model"
)

// sheetsAPI нужная нам часть Google Sheets API
type sheetsAPI interface {
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	WriteRange(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
	AppendRows(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
}

type sheetsFactory func(ctx context.Context) (sheetsAPI, error)

type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsJSON string
	Worksheet       string
}

// SheetsRepository пишет заявки в Google Sheets. Подключение создаётся
// при первой записи; после ошибки следующая запись пробует снова.
type SheetsRepository struct {
	cfg      SheetsConfig
	factory  sheetsFactory
	log      *slog.Logger
	disabled bool

	mu     sync.Mutex
	api    sheetsAPI
	title  string
	header []string
}

func NewSheetsRepository(cfg SheetsConfig, log *slog.Logger) *SheetsRepository {
	r := &SheetsRepository{cfg: cfg, log: log}
	r.factory = func(ctx context.Context) (sheetsAPI, error) {
		// клиент живёт дольше запроса, в котором создан
		return newGoogleSheets(context.WithoutCancel(ctx), cfg.CredentialsJSON)
	}
	if cfg.SpreadsheetID == "" || cfg.CredentialsJSON == "" {
		r.disabled = true
		log.Warn("google sheets not configured, leads will not be saved")
	}
	return r
}

func (r *SheetsRepository) Enabled() bool {
	return !r.disabled
}

// ensure подключается к таблице и выравнивает заголовок. Вызывается под r.mu.
func (r *SheetsRepository) ensure(ctx context.Context) error {
	if r.api != nil {
		return nil
	}

	api, err := r.factory(ctx)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	titles, err := api.SheetTitles(ctx, r.cfg.SpreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	title, err := pickWorksheet(titles, r.cfg.Worksheet)
	if err != nil {
		return err
	}
	if title != r.cfg.Worksheet {
		r.log.Warn("worksheet not found, using first sheet", "worksheet", r.cfg.Worksheet, "using", title)
	}

	values, err := api.ReadRange(ctx, r.cfg.SpreadsheetID, a1(title, "1:1"))
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	var existing []string
	if len(values) > 0 {
		existing = cellsToStrings(values[0])
	}

	header, changed := reconcileHeader(existing)
	if changed {
		if err := api.WriteRange(ctx, r.cfg.SpreadsheetID, a1(title, "A1"), [][]interface{}{toCells(header)}); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		r.log.Info("sheet header updated", "worksheet", title, "columns", len(header))
	}

	r.api, r.title, r.header = api, title, header
	return nil
}

func (r *SheetsRepository) AppendLead(ctx context.Context, row model.LeadRow) (bool, error) {
	if r.disabled {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return false, err
	}

	cells := alignToHeader(r.header, row)
	if err := r.api.AppendRows(ctx, r.cfg.SpreadsheetID, a1(r.title, "A1"), [][]interface{}{cells}); err != nil {
		return false, fmt.Errorf("failed to append lead: %w", err)
	}
	return true, nil
}

func (r *SheetsRepository) RecentLeads(ctx context.Context, filter LeadFilter) ([]model.LeadRow, error) {
	if r.disabled {
		return nil, ErrStoreDisabled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	values, err := r.api.ReadRange(ctx, r.cfg.SpreadsheetID, a1(r.title, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to read leads: %w", err)
	}
	if len(values) <= 1 {
		return []model.LeadRow{}, nil
	}

	header := cellsToStrings(values[0])
	limit := filter.limit()
	out := make([]model.LeadRow, 0, limit)
	for i := len(values) - 1; i >= 1 && len(out) < limit; i-- {
		out = append(out, rowFromCells(header, cellsToStrings(values[i])))
	}
	return out, nil
}

// reconcileHeader дописывает недостающие колонки в конец заголовка.
// Существующие колонки не переставляются и не удаляются.
func reconcileHeader(existing []string) ([]string, bool) {
	if len(existing) == 0 {
		return append([]string(nil), model.SheetColumns...), true
	}

	have := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		have[strings.TrimSpace(name)] = struct{}{}
	}

	header := append([]string(nil), existing...)
	changed := false
	for _, col := range model.SheetColumns {
		if _, ok := have[col]; !ok {
			header = append(header, col)
			changed = true
		}
	}
	return header, changed
}

func pickWorksheet(titles []string, want string) (string, error) {
	if len(titles) == 0 {
		return "", errors.New("spreadsheet has no worksheets")
	}
	for _, t := range titles {
		if t == want {
			return t, nil
		}
	}
	return titles[0], nil
}

// alignToHeader раскладывает значения заявки по колонкам заголовка
func alignToHeader(header []string, row model.LeadRow) []interface{} {
	byName := make(map[string]string, len(model.SheetColumns))
	for i, v := range row.Values() {
		byName[model.SheetColumns[i]] = v
	}

	cells := make([]interface{}, len(header))
	for i, name := range header {
		cells[i] = byName[strings.TrimSpace(name)]
	}
	return cells
}

func rowFromCells(header, cells []string) model.LeadRow {
	get := func(col string) string {
		for i, name := range header {
			if strings.TrimSpace(name) == col && i < len(cells) {
				return cells[i]
			}
		}
		return ""
	}

	row := model.LeadRow{
		Username: get("username"),
		Lot:      get("lots"),
		Name:     get("name"),
		District: get("location"),
		Bedrooms: get("bedrooms"),
		Budget:   get("budget"),
		CheckIn:  get("checkin"),
		CheckOut: get("checkout"),
		Type:     get("type"),
		Notes:    get("notes"),
		Contact:  get("contact"),
		Transfer: get("transfer"),
	}
	row.ChatID, _ = strconv.ParseInt(get("chat_id"), 10, 64)
	row.CreatedAt, _ = time.Parse(model.TimestampLayout, get("created_at"))
	return row
}

func a1(title, cells string) string {
	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func cellsToStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = fmt.Sprint(c)
	}
	return out
}

// googleSheets реализация sheetsAPI поверх google.golang.org/api
type googleSheets struct {
	srv *sheets.Service
}

func newGoogleSheets(ctx context.Context, credentialsJSON string) (*googleSheets, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	return &googleSheets{srv: srv}, nil
}

func (g *googleSheets) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	ss, err := g.srv.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (g *googleSheets) ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	vr, err := g.srv.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return vr.Values, nil
}

func (g *googleSheets) WriteRange(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := g.srv.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (g *googleSheets) AppendRows(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := g.srv.Spreadsheets.Values.Append(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

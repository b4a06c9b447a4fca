package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/villa_bot/internal/logger"
	"github.com/ivanoskov/villa_bot/internal/model"
)

type fakeSheets struct {
	mu        sync.Mutex
	titles    []string
	data      map[string][][]interface{} // по названию листа
	titlesErr error
	appendErr error
	writes    []string
}

func newFakeSheets(titles ...string) *fakeSheets {
	return &fakeSheets{titles: titles, data: map[string][][]interface{}{}}
}

func sheetOf(rng string) string {
	title := strings.SplitN(rng, "!", 2)[0]
	return strings.ReplaceAll(strings.Trim(title, "'"), "''", "'")
}

func (f *fakeSheets) SheetTitles(context.Context, string) ([]string, error) {
	return f.titles, f.titlesErr
}

func (f *fakeSheets) ReadRange(_ context.Context, _ string, rng string) ([][]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.data[sheetOf(rng)]
	if strings.HasSuffix(rng, "!1:1") && len(rows) > 0 {
		return rows[:1], nil
	}
	return rows, nil
}

func (f *fakeSheets) WriteRange(_ context.Context, _ string, rng string, values [][]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, rng)
	sheet := sheetOf(rng)
	if len(f.data[sheet]) == 0 {
		f.data[sheet] = values
		return nil
	}
	f.data[sheet][0] = values[0]
	return nil
}

func (f *fakeSheets) AppendRows(_ context.Context, _ string, rng string, values [][]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	sheet := sheetOf(rng)
	f.data[sheet] = append(f.data[sheet], values...)
	return nil
}

func newTestSheets(api sheetsAPI, factoryErr error) (*SheetsRepository, *int) {
	calls := 0
	r := NewSheetsRepository(SheetsConfig{SpreadsheetID: "sheet", CredentialsJSON: "{}", Worksheet: "Leads"}, logger.Discard())
	r.factory = func(context.Context) (sheetsAPI, error) {
		calls++
		if factoryErr != nil {
			return nil, factoryErr
		}
		return api, nil
	}
	return r, &calls
}

var sampleRow = model.LeadRow{
	ID: "id-1", CreatedAt: time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC),
	ChatID: 100, Username: "guest", Lot: "1155", Name: "Анна", District: "Ламай",
	Bedrooms: "3", Budget: "50000", CheckIn: "01.02", CheckOut: "01.03",
	Type: "Вилла", Notes: "бассейн", Contact: "@guest", Transfer: "Нет",
}

func TestSheetsDisabled(t *testing.T) {
	r := NewSheetsRepository(SheetsConfig{}, logger.Discard())
	assert.False(t, r.Enabled())

	saved, err := r.AppendLead(context.Background(), sampleRow)
	assert.NoError(t, err)
	assert.False(t, saved)

	_, err = r.RecentLeads(context.Background(), LeadFilter{})
	assert.ErrorIs(t, err, ErrStoreDisabled)
}

func TestSheetsEmptySheetGetsFullHeader(t *testing.T) {
	api := newFakeSheets("Leads")
	r, calls := newTestSheets(api, nil)

	saved, err := r.AppendLead(context.Background(), sampleRow)
	require.NoError(t, err)
	assert.True(t, saved)

	rows := api.data["Leads"]
	require.Len(t, rows, 2)
	assert.Equal(t, toCells(model.SheetColumns), rows[0])
	assert.Equal(t, "2026-02-01 10:30:00", rows[1][0])
	assert.Equal(t, "100", rows[1][1])
	assert.Equal(t, "Ламай", rows[1][5])

	_, err = r.AppendLead(context.Background(), sampleRow)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls, "client is created once")
	assert.Len(t, api.writes, 1, "header is reconciled once")
}

func TestSheetsHeaderReconcileKeepsExistingOrder(t *testing.T) {
	api := newFakeSheets("Leads")
	api.data["Leads"] = [][]interface{}{{"name", "comment", "created_at"}}
	r, _ := newTestSheets(api, nil)

	_, err := r.AppendLead(context.Background(), sampleRow)
	require.NoError(t, err)

	header := cellsToStrings(api.data["Leads"][0])
	assert.Equal(t, []string{"name", "comment", "created_at"}, header[:3])
	assert.ElementsMatch(t, append([]string{"comment"}, model.SheetColumns...), header)

	row := api.data["Leads"][1]
	assert.Equal(t, "Анна", row[0])
	assert.Equal(t, "", row[1])
	assert.Equal(t, "2026-02-01 10:30:00", row[2])
}

func TestSheetsWorksheetFallback(t *testing.T) {
	api := newFakeSheets("Лист1", "Other")
	r, _ := newTestSheets(api, nil)

	_, err := r.AppendLead(context.Background(), sampleRow)
	require.NoError(t, err)
	assert.Len(t, api.data["Лист1"], 2)
}

func TestSheetsInitRetriesAfterFailure(t *testing.T) {
	api := newFakeSheets("Leads")
	api.titlesErr = errors.New("unavailable")
	r, calls := newTestSheets(api, nil)

	_, err := r.AppendLead(context.Background(), sampleRow)
	require.Error(t, err)

	api.titlesErr = nil
	saved, err := r.AppendLead(context.Background(), sampleRow)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 2, *calls)
}

func TestSheetsFactoryError(t *testing.T) {
	r, _ := newTestSheets(nil, errors.New("bad credentials"))
	saved, err := r.AppendLead(context.Background(), sampleRow)
	assert.False(t, saved)
	assert.ErrorContains(t, err, "bad credentials")
}

func TestSheetsAppendError(t *testing.T) {
	api := newFakeSheets("Leads")
	api.appendErr = errors.New("quota")
	r, _ := newTestSheets(api, nil)

	saved, err := r.AppendLead(context.Background(), sampleRow)
	assert.False(t, saved)
	assert.Error(t, err)
}

func TestSheetsConcurrentInitIsOnce(t *testing.T) {
	api := newFakeSheets("Leads")
	r, calls := newTestSheets(api, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.AppendLead(context.Background(), sampleRow)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, *calls)
	assert.Len(t, api.data["Leads"], 11)
}

func TestSheetsRecentLeads(t *testing.T) {
	api := newFakeSheets("Leads")
	r, _ := newTestSheets(api, nil)

	first := sampleRow
	second := sampleRow
	second.Name = "Борис"
	_, _ = r.AppendLead(context.Background(), first)
	_, _ = r.AppendLead(context.Background(), second)

	rows, err := r.RecentLeads(context.Background(), LeadFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Борис", rows[0].Name)
	assert.Equal(t, int64(100), rows[0].ChatID)
	assert.True(t, sampleRow.CreatedAt.Equal(rows[0].CreatedAt))
}

func TestA1(t *testing.T) {
	assert.Equal(t, "'Leads'!A1", a1("Leads", "A1"))
	assert.Equal(t, "'Bob''s'!1:1", a1("Bob's", "1:1"))
	assert.Equal(t, "'Leads'", a1("Leads", ""))
}

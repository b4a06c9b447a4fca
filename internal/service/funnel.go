package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ivanoskov/villa_bot/internal/model"
)

// FunnelRepository хранит, какие пользователи дошли до какого шага
type FunnelRepository interface {
	Hit(state model.State, userID int64) error
	Counts() (map[model.State]int, error)
}

// Funnel статистика прохождения анкеты
type Funnel struct {
	repo FunnelRepository
	log  *slog.Logger
}

func NewFunnel(repo FunnelRepository, log *slog.Logger) *Funnel {
	return &Funnel{repo: repo, log: log}
}

var funnelLabels = map[model.State]string{
	model.StateName:     "Имя",
	model.StateType:     "Тип",
	model.StateDistrict: "Район",
	model.StateBudget:   "Бюджет",
	model.StateBedrooms: "Спальни",
	model.StateCheckIn:  "Заезд",
	model.StateCheckOut: "Выезд",
	model.StateNotes:    "Условия",
	model.StateContact:  "Контакты",
	model.StateTransfer: "Трансфер",
	model.StateComplete: "Заявка",
}

func funnelSteps() []model.State {
	return append(model.QuestionStates(), model.StateComplete)
}

// Reach отмечает, что пользователь дошёл до шага. Ошибка хранилища не
// влияет на диалог.
func (f *Funnel) Reach(userID int64, state model.State) {
	if f == nil || f.repo == nil {
		return
	}
	if err := f.repo.Hit(state, userID); err != nil {
		f.log.Warn("funnel hit failed", "state", state.String(), "error", err)
	}
}

// GraphData подписи и значения для столбчатой диаграммы
func (f *Funnel) GraphData() ([]string, []int, error) {
	counts, err := f.repo.Counts()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get funnel counts: %w", err)
	}

	steps := funnelSteps()
	labels := make([]string, 0, len(steps))
	values := make([]int, 0, len(steps))
	for _, st := range steps {
		labels = append(labels, funnelLabels[st])
		values = append(values, counts[st])
	}
	return labels, values, nil
}

// Summary текстовая версия воронки
func (f *Funnel) Summary() (string, error) {
	labels, values, err := f.GraphData()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("📊 Воронка анкеты\n")
	for i, label := range labels {
		fmt.Fprintf(&b, "%s: %d\n", label, values[i])
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

// ChartGenerator рисует графики по статистике анкеты
type ChartGenerator struct{}

// NewChartGenerator создает новый генератор графиков
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

func total(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum
}

// GenerateFunnelChart столбчатая диаграмма: сколько пользователей дошло до каждого шага
func (g *ChartGenerator) GenerateFunnelChart(labels []string, values []int) ([]byte, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("labels and values length mismatch: %d != %d", len(labels), len(values))
	}
	if total(values) == 0 {
		return nil, nil // нет данных для графика
	}

	bars := make([]chart.Value, 0, len(values))
	for i, v := range values {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s: %d", labels[i], v),
			Value: float64(v),
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				FillColor:   chart.ColorBlue.WithAlpha(160),
				FontSize:    10,
				FontColor:   chart.ColorBlack,
			},
		})
	}

	graph := chart.BarChart{
		Title: "Воронка анкеты",
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:    1200,
		Height:   600,
		BarWidth: 70,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render funnel chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// DropOff считает, сколько пользователей остановилось на каждом шаге.
// Последний шаг воронки (заявка) в результат не входит.
func DropOff(values []int) []int {
	if len(values) < 2 {
		return nil
	}
	out := make([]int, len(values)-1)
	for i := 0; i < len(values)-1; i++ {
		if d := values[i] - values[i+1]; d > 0 {
			out[i] = d
		}
	}
	return out
}

// GenerateDropOffChart круговая диаграмма: на каком вопросе уходят пользователи
func (g *ChartGenerator) GenerateDropOffChart(labels []string, values []int) ([]byte, error) {
	drops := DropOff(values)
	sum := total(drops)
	if sum == 0 {
		return nil, nil
	}

	// Добавляем только шаги с существенной долей (>1%)
	slices := make([]chart.Value, 0, len(drops))
	for i, d := range drops {
		percentage := float64(d) / float64(sum) * 100
		if percentage > 1.0 {
			slices = append(slices, chart.Value{
				Label: fmt.Sprintf("%s: %d (%.1f%%)", labels[i], d, percentage),
				Value: float64(d),
				Style: chart.Style{
					FontSize:  12,
					FontColor: chart.ColorBlack,
				},
			})
		}
	}

	pie := chart.PieChart{
		Title:  "Где прерывают анкету",
		Width:  800,
		Height: 800,
		Values: slices,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render drop-off chart: %w", err)
	}
	return buffer.Bytes(), nil
}

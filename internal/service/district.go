package service

import (
	"strings"

	"github.com/ivanoskov/villa_bot/internal/model"
)

// ToggleAction что сделал переключатель района
type ToggleAction int

const (
	ActionAdded ToggleAction = iota + 1
	ActionRemoved
)

func (a ToggleAction) Label() string {
	if a == ActionRemoved {
		return "Убрал"
	}
	return "Добавил"
}

// IsKnownDistrict сообщает, есть ли название в справочнике районов
func IsKnownDistrict(name string) bool {
	_, ok := model.LookupDistrict(strings.TrimSpace(name))
	return ok
}

// ToggleDistrict возвращает новый набор, в котором район d добавлен
// или убран. Исходный набор не меняется.
func ToggleDistrict(set model.DistrictSet, d model.District) (model.DistrictSet, ToggleAction) {
	next := set.Clone()
	if next.Has(d) {
		delete(next, d)
		return next, ActionRemoved
	}
	next[d] = struct{}{}
	return next, ActionAdded
}

// ParseDistricts разбирает строку вида "Ламай, Маенам; Натон".
// Неизвестные названия и повторы отбрасываются, порядок ввода сохраняется.
func ParseDistricts(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	})

	seen := make(map[model.District]struct{}, len(tokens))
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		d, ok := model.LookupDistrict(strings.TrimSpace(token))
		if !ok {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		result = append(result, string(d))
	}
	return result
}

// hasDistrictSeparator введён ли список районов одной строкой
func hasDistrictSeparator(text string) bool {
	return strings.ContainsAny(text, ",;")
}

// resolveDistrictList известные районы через ", " или исходный текст,
// если ни один не распознан
func resolveDistrictList(text string) string {
	parsed := ParseDistricts(text)
	if len(parsed) == 0 {
		return text
	}
	return strings.Join(parsed, ", ")
}

package model

import "sort"

// District район Самуи из фиксированного справочника
type District string

const (
	DistrictLamai      District = "Ламай"
	DistrictMaenam     District = "Маенам"
	DistrictChaweng    District = "Чавенг"
	DistrictBophut     District = "Бопхут"
	DistrictChawengNoi District = "Чавенг Ной"
	DistrictBangrak    District = "Банграк"
	DistrictPlaiLaem   District = "Плай Лаем"
	DistrictLipaNoi    District = "Липа Ной"
	DistrictNathon     District = "Натон"
)

// Districts справочник в порядке кнопок клавиатуры
var Districts = []District{
	DistrictLamai, DistrictMaenam, DistrictChaweng,
	DistrictBophut, DistrictChawengNoi, DistrictBangrak,
	DistrictPlaiLaem, DistrictLipaNoi, DistrictNathon,
}

// LookupDistrict ищет точное совпадение с названием района
func LookupDistrict(name string) (District, bool) {
	for _, d := range Districts {
		if string(d) == name {
			return d, true
		}
	}
	return "", false
}

// DistrictSet множество выбранных районов, живёт только на вопросе о районе
type DistrictSet map[District]struct{}

func (s DistrictSet) Has(d District) bool {
	_, ok := s[d]
	return ok
}

// Sorted возвращает выбранные районы в алфавитном порядке
func (s DistrictSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, string(d))
	}
	sort.Strings(out)
	return out
}

// Clone копирует множество, чтобы хелперы не меняли чужое состояние
func (s DistrictSet) Clone() DistrictSet {
	out := make(DistrictSet, len(s))
	for d := range s {
		out[d] = struct{}{}
	}
	return out
}

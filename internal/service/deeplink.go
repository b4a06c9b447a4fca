package service

import "strings"

const lotPrefix = "lot_"

// NormalizeLotPayload извлекает номер лота из параметра /start.
// "LOT_1155", "lot-1155" и "1155" дают "1155"; пустой результат значит,
// что лота нет.
func NormalizeLotPayload(payload string) string {
	p := strings.TrimSpace(payload)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "-", "_")
	if len(p) >= len(lotPrefix) && strings.EqualFold(p[:len(lotPrefix)], lotPrefix) {
		p = p[len(lotPrefix):]
	}
	return strings.TrimSpace(p)
}

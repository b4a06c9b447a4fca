package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLotPayload(t *testing.T) {
	tests := map[string]string{
		"LOT_1155":    "1155",
		"lot-1155":    "1155",
		"1155":        "1155",
		"  Lot_77  ":  "77",
		"lot_ 42":     "42",
		"villa-a-12":  "villa_a_12",
		"":            "",
		"   ":         "",
		"lot_":        "",
		"LOT":         "LOT",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeLotPayload(in), "payload %q", in)
	}
}

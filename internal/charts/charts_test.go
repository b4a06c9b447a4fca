package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestGenerateFunnelChart(t *testing.T) {
	g := NewChartGenerator()

	img, err := g.GenerateFunnelChart([]string{"Имя", "Тип", "Заявка"}, []int{10, 6, 3})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestGenerateFunnelChartEmpty(t *testing.T) {
	img, err := NewChartGenerator().GenerateFunnelChart([]string{"Имя"}, []int{0})
	require.NoError(t, err)
	assert.Nil(t, img)

	_, err = NewChartGenerator().GenerateFunnelChart([]string{"Имя"}, []int{1, 2})
	assert.Error(t, err)
}

func TestDropOff(t *testing.T) {
	assert.Equal(t, []int{4, 3}, DropOff([]int{10, 6, 3}))
	assert.Equal(t, []int{0}, DropOff([]int{1, 2}))
	assert.Nil(t, DropOff([]int{5}))
}

func TestGenerateDropOffChart(t *testing.T) {
	g := NewChartGenerator()

	img, err := g.GenerateDropOffChart([]string{"Имя", "Тип", "Заявка"}, []int{10, 6, 3})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	img, err = g.GenerateDropOffChart([]string{"Имя", "Заявка"}, []int{2, 2})
	require.NoError(t, err)
	assert.Nil(t, img)
}

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Routine", "Volume", "Ex"}
	rows := [][]string{
		{"Push", "600", "3"},
		{"Pernas e glúteos", "12500", "10"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	require.Len(t, lines, 3)
	assert.Equal(t, "Routine          Volume Ex", lines[0])
	assert.Equal(t, "Push                600  3", lines[1])
	assert.Equal(t, "Pernas e glúteos  12500 10", lines[2])
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "N"}, [][]string{{"深蹲", "1"}}, map[int]bool{1: true})
	require.Len(t, lines, 2)
	assert.Equal(t, "Name N", lines[0])
	assert.Equal(t, "深蹲 1", lines[1])
}

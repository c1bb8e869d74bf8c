package domain_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Arena/internal/domain"
)

func board(cells string) domain.Board {
	var b domain.Board
	for i, c := range cells {
		switch c {
		case 'X':
			b[i] = domain.RoleX
		case 'O':
			b[i] = domain.RoleO
		}
	}
	return b
}

func TestChooseBotMove(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  []int
	}{
		{name: "takes center after opening corner", board: "X________", want: []int{4}},
		{name: "blocks the open end of a row", board: "XX__O____", want: []int{2}},
		{name: "blocks a column", board: "X___O_X__", want: []int{3}},
		{name: "winning beats blocking", board: "XX_OO____", want: []int{5}},
		{name: "corner when center is taken", board: "____X____", want: []int{0, 2, 6, 8}},
		{name: "random open cell when no corner", board: "O_XXXOO_X", want: []int{1, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, 2))
			for range 20 {
				pos, ok := domain.ChooseBotMove(board(tt.board), domain.RoleO, rng)
				require.True(t, ok)
				assert.Contains(t, tt.want, pos)
			}
		})
	}
}

func TestChooseBotMove_NoOpenCell(t *testing.T) {
	pos, ok := domain.ChooseBotMove(board("XOXXOOOXX"), domain.RoleO, rand.New(rand.NewPCG(1, 2)))
	assert.False(t, ok)
	assert.Equal(t, -1, pos)
}

func TestChooseBotMove_NeverPicksFilledCell(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for range 500 {
		var b domain.Board
		for i := range b {
			switch rng.IntN(3) {
			case 1:
				b[i] = domain.RoleX
			case 2:
				b[i] = domain.RoleO
			}
		}
		pos, ok := domain.ChooseBotMove(b, domain.RoleO, rng)
		if !ok {
			require.True(t, domain.IsFull(b))
			continue
		}
		require.True(t, b.IsOpen(pos), "board %v pos %d", b, pos)
	}
}

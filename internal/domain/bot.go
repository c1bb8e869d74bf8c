package domain

import (
	"math/rand/v2"

	"github.com/samber/lo"
)

// ChooseBotMove picks the bot's cell: win, block, center, random corner,
// random cell. ok is false when the grid has no open cell.
func ChooseBotMove(b Board, bot Role, rng *rand.Rand) (position int, ok bool) {
	open := b.OpenCells()
	if len(open) == 0 {
		return -1, false
	}
	if pos, found := completingCell(b, open, bot); found {
		return pos, true
	}
	if pos, found := completingCell(b, open, bot.Opponent()); found {
		return pos, true
	}
	if b.IsOpen(center) {
		return center, true
	}
	if free := lo.Filter(corners, func(c int, _ int) bool { return b.IsOpen(c) }); len(free) > 0 {
		return free[rng.IntN(len(free))], true
	}
	return open[rng.IntN(len(open))], true
}

// completingCell finds the first open cell that would give role three in a row.
func completingCell(b Board, open []int, role Role) (int, bool) {
	return lo.Find(open, func(pos int) bool {
		next, err := b.Place(pos, role)
		return err == nil && CheckWinner(next) == role
	})
}

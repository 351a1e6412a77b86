package board

import "slices"

// 格子取值范围，0 表示已被消除的空格
const (
	MinValue   = 1
	MaxValue   = 9
	EmptyValue = 0
	TargetSum  = 10
)

// Board 一张棋盘：按行展开的格子值，以及特殊格、奖励格、冻结格的下标集合
type Board struct {
	Grid     []int `json:"grid"`
	Specials []int `json:"specials"`
	Bonuses  []int `json:"bonuses"`
	Frozen   []int `json:"frozen"`
}

// Clone 深拷贝
func (b Board) Clone() Board {
	return Board{
		Grid:     slices.Clone(b.Grid),
		Specials: slices.Clone(b.Specials),
		Bonuses:  slices.Clone(b.Bonuses),
		Frozen:   slices.Clone(b.Frozen),
	}
}

// Sanitize 整理客户端上报的棋盘快照，只用于转发给观察者，不做走法校验。
// 超出范围的格子值置为空格，越界或重复的下标被丢弃。
func (b Board) Sanitize(cellCount int) Board {
	grid := b.Grid
	if len(grid) > cellCount {
		grid = grid[:cellCount]
	}
	out := Board{Grid: make([]int, len(grid))}
	for i, v := range grid {
		if v < EmptyValue || v > MaxValue {
			v = EmptyValue
		}
		out.Grid[i] = v
	}
	out.Specials = sanitizeIndices(b.Specials, cellCount)
	out.Bonuses = sanitizeIndices(b.Bonuses, cellCount)
	out.Frozen = sanitizeIndices(b.Frozen, cellCount)
	return out
}

func sanitizeIndices(indices []int, cellCount int) []int {
	out := make([]int, 0, len(indices))
	seen := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= cellCount {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out
}

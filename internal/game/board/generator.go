package board

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// DefaultCols 默认列数（17 列 x 10 行）
const DefaultCols = 17

// Generator 棋盘生成器，可并发使用
type Generator struct {
	Cols int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator 创建生成器，src 为 nil 时使用随机种子
func NewGenerator(cols int, src rand.Source) *Generator {
	if cols <= 0 {
		cols = DefaultCols
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{Cols: cols, rng: rand.New(src)}
}

// Generate 生成一张 cellCount 格的棋盘。
// 目标数量非零的集合会先在同一行放置一对相邻的 (9,1)，两个格子都归入该集合，
// 剩余成员从未被占用的下标中随机抽取。特殊格与奖励格互不相交。
func (g *Generator) Generate(cellCount, specialTarget, bonusTarget int) Board {
	if cellCount <= 0 {
		return Board{Grid: []int{}, Specials: []int{}, Bonuses: []int{}, Frozen: []int{}}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	grid := make([]int, cellCount)
	for i := range grid {
		grid[i] = g.rng.IntN(MaxValue) + MinValue
	}

	claimed := make([]bool, cellCount)
	free := cellCount
	specials := g.fillSet(grid, claimed, &free, specialTarget)
	bonuses := g.fillSet(grid, claimed, &free, bonusTarget)

	return Board{Grid: grid, Specials: specials, Bonuses: bonuses, Frozen: []int{}}
}

// fillSet 为一个集合放置保底配对并补齐成员，调用方持有 g.mu
func (g *Generator) fillSet(grid []int, claimed []bool, free *int, target int) []int {
	if target <= 0 || *free == 0 {
		return []int{}
	}

	size := min(max(target, 2), *free)
	set := make([]int, 0, size)

	claim := func(idx int) {
		claimed[idx] = true
		*free--
		set = append(set, idx)
	}

	if size >= 2 {
		if i, ok := g.pickPairSlot(claimed); ok {
			grid[i] = MaxValue
			grid[i+1] = TargetSum - MaxValue
			claim(i)
			claim(i + 1)
		}
	}

	for len(set) < size {
		idx := g.rng.IntN(len(grid))
		if claimed[idx] {
			continue
		}
		claim(idx)
	}

	slices.Sort(set)
	return set
}

// pickPairSlot 随机选择一个同行相邻且都未被占用的位置 i, i+1
func (g *Generator) pickPairSlot(claimed []bool) (int, bool) {
	slots := make([]int, 0, len(claimed))
	for i := 0; i+1 < len(claimed); i++ {
		if (i+1)%g.Cols == 0 {
			continue
		}
		if claimed[i] || claimed[i+1] {
			continue
		}
		slots = append(slots, i)
	}
	if len(slots) == 0 {
		return 0, false
	}
	return slots[g.rng.IntN(len(slots))], true
}

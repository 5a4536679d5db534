// File: internal/tt/tt.go
package tt

// Flag 表示评分类型：Exact(0)、LowerBound(1)、UpperBound(2)
type Flag uint8

const (
	Exact Flag = iota
	Lower
	Upper
)

// Entry 是 TT 中的一条记录。终局搜索总是搜到底，不需要深度字段。
type Entry struct {
	Hash  uint64 // zobrist 哈希；用于碰撞校验
	Value int8   // -1 / 0 / +1（Max 视角）
	Flag  Flag   // 上界/下界/精确
}

// ———————————————————————————— 配置 ————————————————————————————

// DefaultPow 默认 2^20 槽（约 1 Mi * 16 B ≈ 16 MB）
const DefaultPow = 20

const emptyHash uint64 = 0 // Hash=0 视为“槽空”，因此 zobrist 键绝不能生成 0

// Table 由单个搜索器独占，不加锁
type Table struct {
	slots    []Entry
	sizeMask uint64
	hits     uint64
	stores   uint64
}

// New 创建 TT，容量 = 2^pow 个槽；pow 越大占内存越多。
func New(pow uint8) *Table {
	if pow == 0 {
		pow = DefaultPow
	}
	size := uint64(1) << pow
	return &Table{slots: make([]Entry, size), sizeMask: size - 1}
}

// Clear 把所有槽标记为空
func (t *Table) Clear() {
	for i := range t.slots {
		t.slots[i].Hash = emptyHash
	}
	t.hits, t.stores = 0, 0
}

// ———————————————————————————— API ————————————————————————————

// Probe 查表：
//
//	hit == false → 不命中
//	若 flag==Exact, value 即为精确值
//	若 flag==Lower/Upper，可配合 αβ 收紧 alpha/beta
func (t *Table) Probe(hash uint64) (hit bool, value int8, flag Flag) {
	e := &t.slots[hash&t.sizeMask]
	if e.Hash == hash && hash != emptyHash {
		t.hits++
		return true, e.Value, e.Flag
	}
	return false, 0, Exact
}

// Store 把新搜索结果写入表。替换策略：精确值不被边界值覆盖，其余总是覆盖。
func (t *Table) Store(hash uint64, value int8, flag Flag) {
	e := &t.slots[hash&t.sizeMask]
	if e.Hash == hash && e.Flag == Exact && flag != Exact {
		return
	}
	e.Hash, e.Value, e.Flag = hash, value, flag
	t.stores++
}

// FlagFor 按 fail-soft 约定推导存表标志
func FlagFor(value, alphaOrig, beta int8) Flag {
	switch {
	case value <= alphaOrig:
		return Upper
	case value >= beta:
		return Lower
	default:
		return Exact
	}
}

// Stats 命中 / 写入次数
func (t *Table) Stats() (hits, stores uint64) { return t.hits, t.stores }

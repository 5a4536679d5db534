// internal/search/ucb.go
package search

import (
	"math"

	"quarto_go/internal/tree"
)

// DefaultExploration UCB1 常数 1/√2
var DefaultExploration = 1 / math.Sqrt2

// ucb1 sign·mean + c·sqrt(2·ln N / n)；未访问的子节点优先级无穷大
func ucb1(child *tree.Node, parentVisits int, c, sign float64) float64 {
	if child.Visits == 0 {
		return math.Inf(1)
	}
	n := float64(child.Visits)
	exploit := sign * child.UtilitySum / n
	if c == 0 {
		return exploit
	}
	N := float64(parentVisits)
	if N < 1 {
		N = 1
	}
	return exploit + c*math.Sqrt(2*math.Log(N)/n)
}

// SelectUCB 按 UCB1 选子节点；同分取先出现者（稳定插入顺序）。
// Max 节点 sign=+1，Min 节点 sign=-1。没有子节点返回 nil。
func SelectUCB(n *tree.Node, c float64) *tree.Node {
	sign := 1.0
	if !n.Kind.IsMax() {
		sign = -1
	}
	var best *tree.Node
	bestScore := math.Inf(-1)
	for _, child := range n.Children() {
		s := ucb1(child, n.Visits, c, sign)
		if best == nil || s > bestScore {
			best, bestScore = child, s
		}
	}
	return best
}

// BestChild 关闭探索项后的最终选择：只在访问过的子节点里比较均值；
// 一个都没访问过时退回第一个子节点。
// 注意与 SelectUCB(n, 0) 不同：UCB1 给未访问的子节点 +Inf，这里直接跳过它们。
func BestChild(n *tree.Node) *tree.Node {
	sign := 1.0
	if !n.Kind.IsMax() {
		sign = -1
	}
	var best *tree.Node
	bestScore := math.Inf(-1)
	for _, child := range n.Children() {
		if child.Visits == 0 {
			continue
		}
		if s := ucb1(child, n.Visits, 0, sign); best == nil || s > bestScore {
			best, bestScore = child, s
		}
	}
	if best == nil && len(n.Children()) > 0 {
		best = n.Children()[0]
	}
	return best
}

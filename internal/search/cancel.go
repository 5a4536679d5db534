// internal/search/cancel.go

package search

import (
	"errors"
	"sync/atomic"
)

// ErrAborted 穷举搜索被外部中止，结果不可用
var ErrAborted = errors.New("search: aborted")

// cancelToken 跨 goroutine 的中止标志；搜索线程只读，UI/服务端线程写
type cancelToken struct{ f int32 }

func (c *cancelToken) Abort() {
	atomic.StoreInt32(&c.f, 1)
}
func (c *cancelToken) IsAborted() bool {
	return atomic.LoadInt32(&c.f) == 1
}

// Reset 新一轮搜索前清除标志
func (c *cancelToken) Reset() {
	atomic.StoreInt32(&c.f, 0)
}

// pollMask 每 4096 个节点看一次标志
const pollMask = 1<<12 - 1

package collab

import (
	"sync"
	"time"
)

// Debouncer 可取消的延迟任务：Schedule重置静默窗口，窗口内无新输入
// 才执行最后一次任务。
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Schedule 安排fn在静默窗口后执行，已挂起的任务被本次替换。
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

// Stop 取消挂起的任务。已经开始执行的任务不受影响。
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

package collab

import (
	"sync"
	"time"
)

// Field 协同文档的一个可同步字段。
type Field string

const (
	FieldCode     Field = "code"
	FieldLanguage Field = "language"
	FieldOutput   Field = "output"
)

// FieldUpdate 一次字段级整体覆盖写。没有版本号，合并规则只有
// 按时间戳的 last-write-wins。
type FieldUpdate struct {
	MeetingID string    `json:"meetingId"`
	Field     Field     `json:"field"`
	Value     string    `json:"value"`
	At        time.Time `json:"at"`
}

// Subscriber 一个meeting的订阅端。C上的通知即另一参与者的写入。
type Subscriber struct {
	C         chan FieldUpdate
	hub       *Hub
	meetingID string
}

func (s *Subscriber) Close() {
	s.hub.unsubscribe(s)
}

// Hub 按meetingId扇出字段更新的事件源，store的每次成功写都经由它
// 推送到所有在线订阅者。慢订阅者会丢通知，订阅端以store快照兜底。
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscriber]struct{}
	last        map[string]map[Field]FieldUpdate
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Subscriber]struct{}),
		last:        make(map[string]map[Field]FieldUpdate),
	}
}

const subscriberBuffer = 16

func (h *Hub) Subscribe(meetingID string) *Subscriber {
	s := &Subscriber{
		C:         make(chan FieldUpdate, subscriberBuffer),
		hub:       h,
		meetingID: meetingID,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[meetingID] == nil {
		h.subscribers[meetingID] = make(map[*Subscriber]struct{})
	}
	h.subscribers[meetingID][s] = struct{}{}
	return s
}

func (h *Hub) unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subscribers[s.meetingID]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.subscribers, s.meetingID)
	}
	close(s.C)
}

// Publish 记录并扇出一次字段写。时间戳早于已记录值的更新按
// last-write-wins丢弃。At为零值时以当前时间补齐。
func (h *Hub) Publish(u FieldUpdate) {
	if u.At.IsZero() {
		u.At = time.Now()
	}
	h.mu.Lock()
	if h.last[u.MeetingID] == nil {
		h.last[u.MeetingID] = make(map[Field]FieldUpdate)
	}
	if prev, ok := h.last[u.MeetingID][u.Field]; ok && u.At.Before(prev.At) {
		h.mu.Unlock()
		return
	}
	h.last[u.MeetingID][u.Field] = u
	subs := make([]*Subscriber, 0, len(h.subscribers[u.MeetingID]))
	for s := range h.subscribers[u.MeetingID] {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		select {
		case s.C <- u:
		default:
			// 订阅者消费不过来时丢弃，快照接口负责补齐
		}
	}
}

// Last 返回某字段最近一次记录的写。
func (h *Hub) Last(meetingID string, field Field) (FieldUpdate, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fields, ok := h.last[meetingID]
	if !ok {
		return FieldUpdate{}, false
	}
	u, ok := fields[field]
	return u, ok
}

package collab

import (
	"sync"
	"time"

	"github.com/qiniu/x/xlog"
)

// DocumentWriter session写回store用的最小接口，db.CodeService实现它。
type DocumentWriter interface {
	UpdateCode(xl *xlog.Logger, meetingID, code, language string) error
	UpdateLanguage(xl *xlog.Logger, meetingID, language string) error
	UpdateOutput(xl *xlog.Logger, meetingID, output string) error
}

// DefaultCodeDebounce 代码字段的静默窗口。语言与输出为即时写。
const DefaultCodeDebounce = 200 * time.Millisecond

// Session 单个客户端对一份协同文档的状态调和器。
//
// 每个字段各自维护本地值与最近观察到的远端值：远端通知到达且与本地
// 不同则直接采纳（远端到达即权威）；本地编辑在静默窗口后写回，且仅当
// 挂起值仍与已知远端值不同。没有OT/CRDT，字段级整体覆盖，慢网络下
// 本地编辑可能被迟到的远端回声覆盖，这是保留的既有行为。
type Session struct {
	mu        sync.Mutex
	xl        *xlog.Logger
	meetingID string
	writer    DocumentWriter
	sub       *Subscriber
	debouncer *Debouncer

	code     string
	language string
	output   string

	remoteCode     string
	remoteLanguage string
	remoteOutput   string

	// onRemote 远端值被采纳时回调，用于驱动编辑器界面刷新。
	onRemote func(FieldUpdate)
	done     chan struct{}
}

// NewSession 订阅hub并启动远端采纳循环。seed入参来自accessor的
// 快照读（缺文档时即各字段默认值）。
func NewSession(xl *xlog.Logger, hub *Hub, writer DocumentWriter, meetingID string, code, language, output string) *Session {
	return newSessionWithDebounce(xl, hub, writer, meetingID, code, language, output, DefaultCodeDebounce)
}

func newSessionWithDebounce(xl *xlog.Logger, hub *Hub, writer DocumentWriter, meetingID string, code, language, output string, debounce time.Duration) *Session {
	if xl == nil {
		xl = xlog.New("collab-session")
	}
	s := &Session{
		xl:             xl,
		meetingID:      meetingID,
		writer:         writer,
		sub:            hub.Subscribe(meetingID),
		debouncer:      NewDebouncer(debounce),
		code:           code,
		language:       language,
		output:         output,
		remoteCode:     code,
		remoteLanguage: language,
		remoteOutput:   output,
		done:           make(chan struct{}),
	}
	go s.adoptLoop()
	return s
}

// OnRemote 注册远端采纳回调。
func (s *Session) OnRemote(fn func(FieldUpdate)) {
	s.mu.Lock()
	s.onRemote = fn
	s.mu.Unlock()
}

func (s *Session) adoptLoop() {
	for {
		select {
		case u, ok := <-s.sub.C:
			if !ok {
				return
			}
			s.adoptRemote(u)
		case <-s.done:
			return
		}
	}
}

func (s *Session) adoptRemote(u FieldUpdate) {
	s.mu.Lock()
	var changed bool
	switch u.Field {
	case FieldCode:
		s.remoteCode = u.Value
		if u.Value != s.code {
			s.code = u.Value
			changed = true
		}
	case FieldLanguage:
		s.remoteLanguage = u.Value
		if u.Value != s.language {
			s.language = u.Value
			changed = true
		}
	case FieldOutput:
		s.remoteOutput = u.Value
		if u.Value != s.output {
			s.output = u.Value
			changed = true
		}
	}
	fn := s.onRemote
	s.mu.Unlock()
	if changed && fn != nil {
		fn(u)
	}
}

// SetCode 记录一次本地编辑并安排静默窗口后的写回。窗口内的连发编辑
// 收敛为最后一个值的一次写。
func (s *Session) SetCode(code string) {
	s.mu.Lock()
	s.code = code
	s.mu.Unlock()
	s.debouncer.Schedule(s.flushCode)
}

func (s *Session) flushCode() {
	s.mu.Lock()
	code, language, remote := s.code, s.language, s.remoteCode
	s.mu.Unlock()
	if code == remote {
		// 挂起值已与远端一致，省一次往返
		return
	}
	if err := s.writer.UpdateCode(s.xl, s.meetingID, code, language); err != nil {
		s.xl.Errorf("failed to write back code for meeting %s, error %v", s.meetingID, err)
	}
}

// SetLanguage 切换语言并立即写回。语言写与代码写一样走整体覆盖。
func (s *Session) SetLanguage(language string) {
	s.mu.Lock()
	s.language = language
	remote := s.remoteLanguage
	s.mu.Unlock()
	if language == remote {
		return
	}
	if err := s.writer.UpdateLanguage(s.xl, s.meetingID, language); err != nil {
		s.xl.Errorf("failed to write back language for meeting %s, error %v", s.meetingID, err)
	}
}

// SetOutput 记录执行输出并立即写回。
func (s *Session) SetOutput(output string) {
	s.mu.Lock()
	s.output = output
	remote := s.remoteOutput
	s.mu.Unlock()
	if output == remote {
		return
	}
	if err := s.writer.UpdateOutput(s.xl, s.meetingID, output); err != nil {
		s.xl.Errorf("failed to write back output for meeting %s, error %v", s.meetingID, err)
	}
}

// Snapshot 当前本地三字段。
func (s *Session) Snapshot() (code, language, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code, s.language, s.output
}

// Close 取消挂起的写回并退订。在途的网络请求不做取消。
func (s *Session) Close() {
	s.debouncer.Stop()
	close(s.done)
	s.sub.Close()
}

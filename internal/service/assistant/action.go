package assistant

import (
	"fmt"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/code-cube/internal/protodef/model"
)

// Parameter assistant动作的一个入参声明，类型为对话runtime可识别的
// 标签（string / string[]）。
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Handler 动作实现。入参为松散参数包，返回可直接JSON序列化的宽容
// 结果，永不返回error——后端故障降级为带message的空结果，不打断
// 对话循环。
type Handler func(xl *xlog.Logger, params model.FlattenMap) model.FlattenMap

// Action 暴露给对话runtime的一个具名动作。
type Action struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Handler     Handler     `json:"-"`
}

// Registry 动作注册表。
type Registry struct {
	actions map[string]Action
	order   []string
	xl      *xlog.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]Action),
		xl:      xlog.New("code-cube-assistant"),
	}
}

func (r *Registry) Register(a Action) {
	if _, ok := r.actions[a.Name]; !ok {
		r.order = append(r.order, a.Name)
	}
	r.actions[a.Name] = a
}

// Describe 按注册顺序返回动作声明，供runtime拉取schema。
func (r *Registry) Describe() []Action {
	res := make([]Action, 0, len(r.order))
	for _, name := range r.order {
		res = append(res, r.actions[name])
	}
	return res
}

// Invoke 调用一个动作。未注册返回ok=false；动作内panic兜底转为
// 带message的结果，保证对话循环不被异常打断。
func (r *Registry) Invoke(xl *xlog.Logger, name string, params model.FlattenMap) (result model.FlattenMap, ok bool) {
	if xl == nil {
		xl = r.xl
	}
	action, ok := r.actions[name]
	if !ok {
		xl.Infof("no such assistant action %s", name)
		return nil, false
	}
	defer func() {
		if p := recover(); p != nil {
			xl.Errorf("assistant action %s panicked: %v", name, p)
			result = model.MakeFlattenMap("message", fmt.Sprintf("Error running action %s: %v", name, p))
		}
	}()
	return action.Handler(xl, params), true
}

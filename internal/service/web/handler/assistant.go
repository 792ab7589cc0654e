package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/code-cube/internal/common/utils"
	model "github.com/solutions/code-cube/internal/protodef/model"
	"github.com/solutions/code-cube/internal/service/assistant"
	service "github.com/solutions/code-cube/internal/service/db"
)

// AssistantApiHandler 对话runtime的动作入口：拉取schema、按名调用。
type AssistantApiHandler struct {
	Registry *assistant.Registry
	xl       *xlog.Logger
}

func NewAssistantApiHandler(conf utils.Config) *AssistantApiHandler {
	v := new(AssistantApiHandler)
	v.xl = xlog.New("assistant-api")
	accountService, err := service.NewAccountService(*conf.Mongo, v.xl)
	if err != nil {
		panic(err)
	}
	meetingService, err := service.NewMeetingService(*conf.Mongo, v.xl)
	if err != nil {
		panic(err)
	}
	registry := assistant.NewRegistry()
	assistant.NewMeetingActions(accountService, meetingService).RegisterActions(registry)
	v.Registry = registry
	return v
}

// ListActions 按注册顺序返回全部动作声明。
func (v *AssistantApiHandler) ListActions(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	model.NewSuccessResponse(v.Registry.Describe()).WithRequestID(xl.ReqId).Send(c)
}

// InvokeAction 调用一个动作。body为松散参数包，动作结果原样透传——
// 后端故障已在动作内降级为带message的结果，这里只区分动作是否存在。
func (v *AssistantApiHandler) InvokeAction(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	actionName := c.Param("actionName")
	params := model.FlattenMap{}
	if err := c.ShouldBindJSON(&params); err != nil && err.Error() != "EOF" {
		xl.Errorf("form binding error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	result, ok := v.Registry.Invoke(xl, actionName, params)
	if !ok {
		respErr := model.NewResponseErrorNoSuchAction()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	model.NewSuccessResponse(result).WithRequestID(xl.ReqId).Send(c)
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/code-cube/internal/common/utils"
	form "github.com/solutions/code-cube/internal/protodef/form"
	model "github.com/solutions/code-cube/internal/protodef/model"
	"github.com/solutions/code-cube/internal/service/cloud"
	"github.com/solutions/code-cube/internal/service/collab"
	service "github.com/solutions/code-cube/internal/service/db"
)

// RunnerInterface 执行桥接面，cloud.RunnerService实现它。
type RunnerInterface interface {
	Run(xl *xlog.Logger, code, language string) string
}

// CodeApiHandler 协同代码文档的HTTP面：快照读、字段写、执行、长轮询。
type CodeApiHandler struct {
	Code   service.CodeInterface
	Runner RunnerInterface
	Hub    *collab.Hub
	xl     *xlog.Logger
}

func NewCodeApiHandler(conf utils.Config, hub *collab.Hub) *CodeApiHandler {
	v := new(CodeApiHandler)
	v.xl = xlog.New("code-api")
	codeService, err := service.NewCodeService(*conf.Mongo, hub, v.xl)
	if err != nil {
		panic(err)
	}
	v.Code = codeService
	v.Runner = cloud.NewRunnerService(conf)
	v.Hub = hub
	return v
}

// GetSnapshot 三字段一次取回，订阅端丢通知后的兜底。
func (v *CodeApiHandler) GetSnapshot(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	snap := v.Code.GetSnapshot(xl, meetingID)
	model.NewSuccessResponse(snap).WithRequestID(xl.ReqId).Send(c)
}

func (v *CodeApiHandler) GetCode(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	code := v.Code.GetCode(xl, meetingID)
	model.NewSuccessResponse(model.MakeFlattenMap("meetingId", meetingID, "code", code)).WithRequestID(xl.ReqId).Send(c)
}

func (v *CodeApiHandler) GetOutput(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	output := v.Code.GetOutput(xl, meetingID)
	model.NewSuccessResponse(model.MakeFlattenMap("meetingId", meetingID, "output", output)).WithRequestID(xl.ReqId).Send(c)
}

func (v *CodeApiHandler) GetLanguage(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	language := v.Code.GetLanguage(xl, meetingID)
	model.NewSuccessResponse(model.MakeFlattenMap("meetingId", meetingID, "language", language)).WithRequestID(xl.ReqId).Send(c)
}

// ListLanguages 静态语言表，editor下拉与执行分发共用。
func (v *CodeApiHandler) ListLanguages(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	model.NewSuccessResponse(model.Languages).WithRequestID(xl.ReqId).Send(c)
}

func (v *CodeApiHandler) UpdateCode(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	var codeForm form.CodeUpdateForm
	if err := c.Bind(&codeForm); err != nil {
		xl.Errorf("form binding error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := v.Code.UpdateCode(xl, meetingID, codeForm.Code, codeForm.Language); err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	model.NewSuccessResponse(nil).WithRequestID(xl.ReqId).Send(c)
}

func (v *CodeApiHandler) UpdateLanguage(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	var langForm form.LanguageUpdateForm
	if err := c.Bind(&langForm); err != nil {
		xl.Errorf("form binding error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := langForm.Validate(); err != nil {
		xl.Errorf("form validation error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := v.Code.UpdateLanguage(xl, meetingID, langForm.Language); err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	model.NewSuccessResponse(nil).WithRequestID(xl.ReqId).Send(c)
}

func (v *CodeApiHandler) UpdateOutput(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	var outputForm form.OutputUpdateForm
	if err := c.Bind(&outputForm); err != nil {
		xl.Errorf("form binding error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := v.Code.UpdateOutput(xl, meetingID, outputForm.Output); err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	model.NewSuccessResponse(nil).WithRequestID(xl.ReqId).Send(c)
}

// RunCode 提交buffer到执行服务并把归一化输出写回store。失败输出
// （"Error: ..."）与成功输出走同一条持久化路径。单客户端的并发抑制
// 在前端（busy标志），服务端不做互斥，最后完成者的输出胜出。
func (v *CodeApiHandler) RunCode(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	var runForm form.RunForm
	if err := c.Bind(&runForm); err != nil {
		xl.Errorf("form binding error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := runForm.Validate(); err != nil {
		xl.Errorf("form validation error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	code := runForm.Code
	if code == "" {
		code = v.Code.GetCode(xl, meetingID)
	}
	output := v.Runner.Run(xl, code, runForm.Language)
	if err := v.Code.UpdateOutput(xl, meetingID, output); err != nil {
		xl.Errorf("failed to persist run output for meeting %s, error %v", meetingID, err)
	}
	model.NewSuccessResponse(model.RunCodeResponse{Output: output}).WithRequestID(xl.ReqId).Send(c)
}

const (
	defaultWatchTimeoutSecond = 25
	maxWatchTimeoutSecond     = 60
)

// parseWatchTimeout 长轮询等待秒数，非法或越界取默认值。
func parseWatchTimeout(arg string) int {
	timeoutSecond, err := strconv.Atoi(arg)
	if err != nil || timeoutSecond <= 0 || timeoutSecond > maxWatchTimeoutSecond {
		return defaultWatchTimeoutSecond
	}
	return timeoutSecond
}

// WatchCode 长轮询：阻塞到该meeting出现下一次字段写或超时，返回
// 收到的更新与当前快照。轮询间隙丢掉的通知由快照补齐。
func (v *CodeApiHandler) WatchCode(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	timeoutSecond := parseWatchTimeout(c.Query("timeout"))
	sub := v.Hub.Subscribe(meetingID)
	defer sub.Close()

	updates := make([]collab.FieldUpdate, 0)
	timer := time.NewTimer(time.Duration(timeoutSecond) * time.Second)
	defer timer.Stop()
	select {
	case u, ok := <-sub.C:
		if ok {
			updates = append(updates, u)
			// 把同一批写一次性带走
			for drained := false; !drained; {
				select {
				case more, ok := <-sub.C:
					if !ok {
						drained = true
						break
					}
					updates = append(updates, more)
				default:
					drained = true
				}
			}
		}
	case <-timer.C:
	case <-c.Request.Context().Done():
		c.Status(http.StatusNoContent)
		return
	}
	snap := v.Code.GetSnapshot(xl, meetingID)
	model.NewSuccessResponse(model.MakeFlattenMap(
		"updates", updates,
		"snapshot", snap,
	)).WithRequestID(xl.ReqId).Send(c)
}

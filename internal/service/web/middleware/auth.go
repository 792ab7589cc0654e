package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/code-cube/internal/common/utils"
	model "github.com/solutions/code-cube/internal/protodef/model"
	"github.com/solutions/code-cube/internal/service/db"
)

// AccountInterface 鉴权所需的账号读取面，db.AccountService实现它。
type AccountInterface interface {
	GetIDByToken(xl *xlog.Logger, token string) (string, error)
	GetAccountByID(xl *xlog.Logger, id string) (*model.AccountDo, error)
}

var (
	accountService AccountInterface
)

// InitMiddleware 初始化中间件依赖的服务。
func InitMiddleware(conf utils.Config) {
	svc, err := db.NewAccountService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	accountService = svc
}

// Authenticate 校验请求者的身份。
func Authenticate(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	FetchTokenFromHeader(xl, xl.ReqId, c)
}

// RequireInterviewer 调度类接口的角色门槛：非面试官直接拒绝。
// 对应前端schedule页的角色重定向。
func RequireInterviewer(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	val, ok := c.Get(model.UserContextKey)
	if !ok {
		responseErr := model.NewResponseErrorNotLoggedIn()
		model.NewFailResponse(*responseErr).WithRequestID(xl.ReqId).Send(c)
		c.Abort()
		return
	}
	user := val.(model.AccountDo)
	if user.Role != model.AccountRoleInterviewer {
		xl.Infof("user %s role %s rejected by interviewer gate", user.ID, user.Role)
		responseErr := model.NewResponseErrorNoPermission()
		model.NewFailResponse(*responseErr).WithRequestID(xl.ReqId).Send(c)
		c.Abort()
		return
	}
}

func FetchTokenFromHeader(xl *xlog.Logger, requestID string, c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		xl.Debugf("%s %s: request unauthorized, wrong auth header format", c.Request.Method, c.Request.URL.Path)
		responseErr := model.NewResponseErrorNotLoggedIn()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		c.Abort()
		return
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	id, err := accountService.GetIDByToken(xl, token)
	if err != nil {
		xl.Debugf("%s %s: request unauthorized, error %v", c.Request.Method, c.Request.URL.Path, err)
		responseErr := model.NewResponseErrorBadToken()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		c.Abort()
		return
	}
	user, err := accountService.GetAccountByID(xl, id)
	if err != nil {
		// token记录残留而账号已不存在
		xl.Infof("token of user %s resolved but account missing, error %v", id, err)
		responseErr := model.NewResponseErrorBadToken()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		c.Abort()
		return
	}
	c.Set(model.UserContextKey, *user)
	c.Set(model.UserIDContextKey, id)
}

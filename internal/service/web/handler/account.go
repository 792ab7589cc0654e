package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"

	"github.com/solutions/code-cube/internal/common/utils"
	form "github.com/solutions/code-cube/internal/protodef/form"
	model "github.com/solutions/code-cube/internal/protodef/model"
	service "github.com/solutions/code-cube/internal/service/db"
)

// AccountApiHandler 账号注册、登录、信息查询。
type AccountApiHandler struct {
	Account *service.AccountService
	xl      *xlog.Logger
}

func NewAccountApiHandler(conf utils.Config) *AccountApiHandler {
	v := new(AccountApiHandler)
	v.xl = xlog.New("account-api")
	accountService, err := service.NewAccountService(*conf.Mongo, v.xl)
	if err != nil {
		panic(err)
	}
	v.Account = accountService
	return v
}

// SignUpOrIn 邮箱登录。账号不存在时按candidate角色自动注册，
// 返回登录token与用户信息。
func (v *AccountApiHandler) SignUpOrIn(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	var signForm form.SignUpOrInForm
	if err := c.Bind(&signForm); err != nil {
		xl.Errorf("form binding error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := signForm.Validate(); err != nil {
		xl.Errorf("form validation error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	account, err := v.Account.GetAccountByEmail(xl, signForm.Email)
	if err != nil {
		if err != mgo.ErrNotFound {
			respErr := model.NewResponseErrorInternal()
			model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
			return
		}
		account = &model.AccountDo{
			Email: signForm.Email,
			Name:  signForm.Name,
		}
		if err := v.Account.CreateAccount(xl, account); err != nil {
			respErr := model.NewResponseErrorInternal()
			model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
			return
		}
		xl.Infof("created account %s for email %s", account.ID, account.Email)
	}
	activeUser, err := v.Account.AccountLogin(xl, account.ID)
	if err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	model.NewSuccessResponse(model.MakeFlattenMap(
		"userInfo", account.Map(),
		"token", activeUser.Token,
	)).WithRequestID(xl.ReqId).Send(c)
}

// GetAccountInfo 当前登录用户的信息。
func (v *AccountApiHandler) GetAccountInfo(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	user := c.MustGet(model.UserContextKey).(model.AccountDo)
	model.NewSuccessResponse(user.Map()).WithRequestID(xl.ReqId).Send(c)
}

// UpdateAccountInfo 更新当前用户的姓名/头像/角色。
func (v *AccountApiHandler) UpdateAccountInfo(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	userID := c.GetString(model.UserIDContextKey)
	var updateForm form.AccountUpdateForm
	if err := c.Bind(&updateForm); err != nil {
		xl.Errorf("form binding error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := updateForm.Validate(); err != nil {
		xl.Errorf("form validation error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	account, err := v.Account.UpdateAccount(xl, userID, &model.AccountDo{
		Name:   updateForm.Name,
		Avatar: updateForm.Avatar,
		Role:   model.AccountRole(updateForm.Role),
	})
	if err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	model.NewSuccessResponse(account.Map()).WithRequestID(xl.ReqId).Send(c)
}

// ListUsers 全量用户列表，调度会议时选择候选人/面试官用。
func (v *AccountApiHandler) ListUsers(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	accounts, err := v.Account.ListAllAccounts(xl)
	if err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	users := make([]model.UserInfoResponse, 0, len(accounts))
	for _, account := range accounts {
		users = append(users, model.UserInfoResponse{
			ID:     account.ID,
			Name:   account.Name,
			Email:  account.Email,
			Role:   string(account.Role),
			Avatar: account.Avatar,
		})
	}
	model.NewSuccessResponse(users).WithRequestID(xl.ReqId).Send(c)
}

// SignOut 退出登录，使当前token失效。
func (v *AccountApiHandler) SignOut(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	userID := c.GetString(model.UserIDContextKey)
	if err := v.Account.AccountLogout(xl, userID); err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	model.NewSuccessResponse(nil).WithRequestID(xl.ReqId).Send(c)
}

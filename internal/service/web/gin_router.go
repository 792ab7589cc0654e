// Copyright 2020 Qiniu Cloud (qiniu.com)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package web

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/code-cube/internal/common/utils"
	"github.com/solutions/code-cube/internal/protodef/model"
	"github.com/solutions/code-cube/internal/service/collab"
	"github.com/solutions/code-cube/internal/service/web/handler"
	"github.com/solutions/code-cube/internal/service/web/middleware"
)

// NewRouter 返回gin router，分流API。
func NewRouter(config *utils.Config) (*gin.Engine, error) {
	// 1. 初始化GIN
	router := gin.New()
	router.Use(gin.Recovery())
	// 1.1. 全局CORS配置
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"POST", "OPTIONS", "GET", "PUT", "DELETE", "HEAD"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 2. 声明Handler
	hub := collab.NewHub()
	accountApiHandler := handler.NewAccountApiHandler(*config)
	meetingApiHandler := handler.NewMeetingApiHandler(*config)
	codeApiHandler := handler.NewCodeApiHandler(*config, hub)
	assistantApiHandler := handler.NewAssistantApiHandler(*config)

	middleware.InitMiddleware(*config)

	// 3. 配置V1路径
	v1 := router.Group("/v1", addRequestID, middleware.FetchPageInfo)
	{
		// 3.1 登录/注册
		v1.POST("signUpOrIn", accountApiHandler.SignUpOrIn)
		v1.POST("signUpOrIn/", accountApiHandler.SignUpOrIn)
		// 3.2 可执行语言表
		v1.GET("languages", codeApiHandler.ListLanguages)
	}
	baseAuth := v1.Group("", middleware.Authenticate)
	{
		// 3.3 登出
		baseAuth.POST("signOut", accountApiHandler.SignOut)
		// 3.4 用户信息获取/更新
		baseAuth.GET("accountInfo", accountApiHandler.GetAccountInfo)
		baseAuth.POST("accountInfo", accountApiHandler.UpdateAccountInfo)
		// 3.5 用户列表
		baseAuth.GET("users", accountApiHandler.ListUsers)

		// 3.6 会议列表/详情
		baseAuth.GET("meeting", meetingApiHandler.ListMeetings)
		baseAuth.GET("meeting/", meetingApiHandler.ListMeetings)
		baseAuth.GET("meeting/:meetingId", meetingApiHandler.GetMeeting)
		// 3.7 加入会议
		baseAuth.POST("joinMeeting/:meetingId", meetingApiHandler.JoinMeeting)

		// 3.8 协同代码文档
		baseAuth.GET("code/:meetingId", codeApiHandler.GetSnapshot)
		baseAuth.GET("code/:meetingId/code", codeApiHandler.GetCode)
		baseAuth.GET("code/:meetingId/language", codeApiHandler.GetLanguage)
		baseAuth.GET("code/:meetingId/output", codeApiHandler.GetOutput)
		baseAuth.POST("code/:meetingId/code", codeApiHandler.UpdateCode)
		baseAuth.POST("code/:meetingId/language", codeApiHandler.UpdateLanguage)
		baseAuth.POST("code/:meetingId/output", codeApiHandler.UpdateOutput)
		// 3.9 执行代码
		baseAuth.POST("code/:meetingId/run", codeApiHandler.RunCode)
		// 3.10 长轮询文档变更
		baseAuth.GET("code/:meetingId/watch", codeApiHandler.WatchCode)

		// 3.11 assistant动作
		baseAuth.GET("assistant/actions", assistantApiHandler.ListActions)
		baseAuth.POST("assistant/actions/:actionName", assistantApiHandler.InvokeAction)
	}
	// 调度类接口：面试官角色门槛
	interviewerAuth := v1.Group("", middleware.Authenticate, middleware.RequireInterviewer)
	{
		// 3.12 调度会议
		interviewerAuth.POST("meeting", meetingApiHandler.ScheduleMeeting)
		interviewerAuth.POST("meeting/", meetingApiHandler.ScheduleMeeting)
		// 3.13 推进会议状态
		interviewerAuth.POST("meeting/:meetingId/status", meetingApiHandler.UpdateMeetingStatus)
		// 3.14 取消会议
		interviewerAuth.DELETE("meeting/:meetingId", meetingApiHandler.CancelMeeting)
	}

	router.NoRoute(addRequestID, returnNotFound)
	router.RedirectTrailingSlash = false

	return router, nil
}

func addRequestID(c *gin.Context) {
	requestID := ""
	if requestID = c.Request.Header.Get(model.RequestIDHeader); requestID == "" {
		requestID = utils.NewReqID()
		c.Request.Header.Set(model.RequestIDHeader, requestID)
	}
	xl := xlog.New(requestID)
	xl.Debugf("request: %s %s", c.Request.Method, c.Request.URL.Path)
	c.Set(model.XLogKey, xl)
	c.Set(model.RequestStartKey, time.Now())
}

func returnNotFound(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	xl.Debugf("%s %s: not found", c.Request.Method, c.Request.URL.Path)
	responseErr := model.NewResponseErrorNotFound()
	resp := model.NewFailResponse(*responseErr)
	c.JSON(http.StatusOK, resp)
}

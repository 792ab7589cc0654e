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

package model

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

/*
	http_model.go: 规定API的参数与返回值的定义，***Args 表示 *** 接口的参数，***Response表示 *** 接口的返回体格式。
*/

const (
	// RequestIDHeader 七牛 request ID 头部。
	RequestIDHeader = "X-Reqid"
	// XLogKey gin context中，用于获取记录请求相关日志的 xlog logger的key。
	XLogKey = "xlog-logger"

	// UserIDContextKey 存放在请求context 中的用户ID。
	UserIDContextKey = "userID"
	// UserContextKey 存放用户对象
	UserContextKey = "user"

	// PageNumContextKey / PageSizeContextKey 分页参数。
	PageNumContextKey  = "pageNum"
	PageSizeContextKey = "pageSize"

	// RequestStartKey 存放在gin context中的请求开始的时间戳，单位为纳秒。
	RequestStartKey = "request-start-timestamp-nano"

	// 状态码和状态信息
	ResponseStatusCodeSuccess    ResponseStatusCode    = 0
	ResponseStatusMessageSuccess ResponseStatusMessage = "success"
)

// 状态码和状态信息
type ResponseStatusCode int
type ResponseStatusMessage string

type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    int(ResponseStatusCodeSuccess),
		Message: string(ResponseStatusMessageSuccess),
		Data:    data,
	}
}

func NewFailResponse(err ResponseError) *Response {
	return &Response{
		Code:    int(err.Code),
		Message: string(err.Message),
	}
}

func (r *Response) WithRequestID(requestID string) *Response {
	r.RequestID = requestID
	return r
}

func (r *Response) WithErrorMessage(message string) *Response {
	r.Message = string(message)
	return r
}

func (r *Response) Send(c *gin.Context) {
	c.JSON(http.StatusOK, r)
}

type Pagination struct {
	Total          int           `json:"total"`
	CurrentPageNum int           `json:"currentPageNum"`
	NextPageNum    int           `json:"nextPageNum"`
	PageSize       int           `json:"pageSize"`
	EndPage        bool          `json:"endPage"`
	List           []interface{} `json:"list"`
}

// UserInfoResponse 用户的信息，包括ID、姓名等。
type UserInfoResponse struct {
	ID     string `json:"accountId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}

// CodeSnapshotResponse 协同文档三个字段的一次快照。
type CodeSnapshotResponse struct {
	MeetingID string `json:"meetingId"`
	Code      string `json:"code"`
	Language  string `json:"language"`
	Output    string `json:"output"`
}

// RunCodeResponse 执行结果，output已归一化为展示文本。
type RunCodeResponse struct {
	Output string `json:"output"`
}

// JoinMeetingResponse 加入会议返回的音视频/聊天凭证与候选人在场状态。
type JoinMeetingResponse struct {
	Meeting         MeetingDo `json:"meeting"`
	RoomToken       string    `json:"roomToken"`
	ImToken         string    `json:"imToken,omitempty"`
	CandidateOnline bool      `json:"candidateOnline"`
}

package model

import (
	"encoding/json"
	"time"
)

/*
	db_model.go: 规定数据存储的格式。
*/

// AccountRole 账号角色，约束会议调度权限。
type AccountRole string

const (
	AccountRoleInterviewer AccountRole = "interviewer"
	AccountRoleCandidate   AccountRole = "candidate"
)

// AccountDo 用户账号信息。
type AccountDo struct {
	// 用户ID，作为数据库唯一标识。
	ID string `json:"id" bson:"_id"`
	// 用户姓名，assistant 动作用它生成候选人名单。
	Name string `json:"name" bson:"name"`
	// 邮箱，目前要求全局唯一。
	Email string `json:"email" bson:"email"`
	// Role 用户角色，interviewer / candidate。
	Role AccountRole `json:"role" bson:"role"`
	// Avatar 头像URL地址
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	// RegisterTime 用户注册（首次登录）时间。
	RegisterTime time.Time `json:"registerTime" bson:"registerTime"`
	// LastLoginTime 上次登录时间。
	LastLoginTime time.Time `json:"lastLoginTime" bson:"lastLoginTime"`
}

func (a AccountDo) Map() FlattenMap {
	val, _ := json.Marshal(&a)
	res := make(map[string]interface{})
	_ = json.Unmarshal(val, &res)
	return res
}

// AccountTokenDo 已登录用户的信息。
type AccountTokenDo struct {
	ID        string `json:"id" bson:"_id"`
	AccountId string `json:"accountId" bson:"accountId"`
	// Token 本次登录使用的token。
	Token          string    `json:"token" bson:"token"`
	LastModifyTime time.Time `json:"lastModifyTime"`
}

// 会议状态，与前端展示及assistant筛选保持一致。
const (
	MeetingStatusUpcoming  = "upcoming"
	MeetingStatusSucceeded = "succeeded"
	MeetingStatusFailed    = "failed"
	MeetingStatusCompleted = "completed"
)

// MeetingDo 一场面试会议。
type MeetingDo struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	StartTime   time.Time `json:"startTime" bson:"startTime"`
	// Status upcoming/succeeded/failed/completed。
	Status string `json:"status" bson:"status"`
	// StreamCallId 音视频房间ID，创建会议时随机生成。
	StreamCallId string `json:"streamCallId" bson:"streamCallId"`
	// Candidate 候选人账号ID。
	Candidate string `json:"candidateId" bson:"candidateId"`
	// InterviewerIds 面试官账号ID列表。
	InterviewerIds []string  `json:"interviewerIds" bson:"interviewerIds"`
	Creator        string    `json:"creator" bson:"creator"`
	CreateTime     time.Time `json:"createTime" bson:"createTime"`
	UpdateTime     time.Time `json:"updateTime" bson:"updateTime"`
}

func (m MeetingDo) Map() FlattenMap {
	val, _ := json.Marshal(&m)
	res := make(map[string]interface{})
	_ = json.Unmarshal(val, &res)
	return res
}

// HasParticipant 用户是否为该会议的候选人或面试官。
func (m MeetingDo) HasParticipant(userID string) bool {
	if m.Candidate == userID {
		return true
	}
	for _, id := range m.InterviewerIds {
		if id == userID {
			return true
		}
	}
	return false
}

// CodeDocumentDo 每场会议一份的协同代码文档。
//
// _id 即 meetingId。查找-再-插入或更新的upsert约定由CodeService维护，
// 而非数据库唯一索引；并发首写同一 meetingId 时存在竞态，与线上行为
// 保持一致，这里不做修复。
type CodeDocumentDo struct {
	MeetingID string `json:"meetingId" bson:"_id"`
	Code      string `json:"code" bson:"code"`
	// Language 语言标签，editor高亮与执行服务分发共用。
	Language string `json:"language" bson:"language"`
	// Output 最近一次执行结果（stdout/stderr/exit code 组合或错误文本）。
	Output     string    `json:"output" bson:"output"`
	UpdateTime time.Time `json:"updateTime" bson:"updateTime"`
}

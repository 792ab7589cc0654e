package assistant

import (
	"fmt"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/code-cube/internal/common/utils"
	form "github.com/solutions/code-cube/internal/protodef/form"
	model "github.com/solutions/code-cube/internal/protodef/model"
)

// AccountInterface assistant动作需要的用户读取面。
type AccountInterface interface {
	ListAllAccounts(xl *xlog.Logger) ([]model.AccountDo, error)
}

// MeetingInterface assistant动作需要的会议读写面。
type MeetingInterface interface {
	CreateMeeting(xl *xlog.Logger, meeting *model.MeetingDo) (*model.MeetingDo, error)
	ListAllMeetings(xl *xlog.Logger) ([]model.MeetingDo, error)
}

// MeetingActions 会议相关的assistant动作：自然语言调度会议、查询
// 待开会议、按结果列举候选人。
type MeetingActions struct {
	accounts AccountInterface
	meetings MeetingInterface
	xl       *xlog.Logger
}

func NewMeetingActions(accounts AccountInterface, meetings MeetingInterface) *MeetingActions {
	return &MeetingActions{
		accounts: accounts,
		meetings: meetings,
		xl:       xlog.New("code-cube-assistant-meetings"),
	}
}

// RegisterActions 向注册表声明全部动作及参数schema。
func (m *MeetingActions) RegisterActions(r *Registry) {
	r.Register(Action{
		Name:        "scheduleMeeting",
		Description: "Schedule a new meeting with title, description, date, time, candidateId, and interviewerIds.",
		Parameters: []Parameter{
			{Name: "title", Type: "string", Description: "Meeting title"},
			{Name: "description", Type: "string", Description: "Meeting description"},
			{Name: "date", Type: "string", Description: "Date in YYYY-MM-DD format"},
			{Name: "time", Type: "string", Description: "Time in HH:mm format"},
			{Name: "candidateId", Type: "string", Description: "Candidate user ID"},
			{Name: "interviewerIds", Type: "string[]", Description: "Array of interviewer user IDs"},
		},
		Handler: m.ScheduleMeeting,
	})
	r.Register(Action{
		Name:        "checkPendingMeetings",
		Description: "Check for pending (upcoming) meetings for a user.",
		Parameters: []Parameter{
			{Name: "userId", Type: "string", Description: "User ID to check for pending meetings"},
		},
		Handler: m.CheckPendingMeetings,
	})
	r.Register(Action{
		Name:        "listPassedCandidates",
		Description: "List names of candidates whose interviews succeeded.",
		Handler:     m.ListPassedCandidates,
	})
	r.Register(Action{
		Name:        "listFailedCandidates",
		Description: "List names of candidates whose interviews failed.",
		Handler:     m.ListFailedCandidates,
	})
}

// ScheduleMeeting date+time合并成时间戳，生成随机streamCallId，以
// upcoming状态创建会议。任何失败降级为 {success:false, message}。
func (m *MeetingActions) ScheduleMeeting(xl *xlog.Logger, params model.FlattenMap) model.FlattenMap {
	if xl == nil {
		xl = m.xl
	}
	f := form.MeetingScheduleForm{
		Title:          params.GetString("title"),
		Description:    params.GetString("description"),
		Date:           params.GetString("date"),
		Time:           params.GetString("time"),
		CandidateId:    params.GetString("candidateId"),
		InterviewerIds: params.GetStringSlice("interviewerIds"),
	}
	if err := f.Validate(); err != nil {
		return scheduleFailure(err)
	}
	startTime, err := f.StartTime()
	if err != nil {
		return scheduleFailure(err)
	}
	meeting := &model.MeetingDo{
		Title:          f.Title,
		Description:    f.Description,
		StartTime:      startTime,
		Status:         model.MeetingStatusUpcoming,
		StreamCallId:   utils.GenerateIDWithLength(16),
		Candidate:      f.CandidateId,
		InterviewerIds: f.InterviewerIds,
	}
	if _, err := m.meetings.CreateMeeting(xl, meeting); err != nil {
		xl.Errorf("failed to schedule meeting, error %v", err)
		return scheduleFailure(err)
	}
	return model.MakeFlattenMap("success", true, "message", "Meeting scheduled!")
}

func scheduleFailure(err error) model.FlattenMap {
	return model.MakeFlattenMap(
		"success", false,
		"message", fmt.Sprintf("Error scheduling meeting: %v", err),
	)
}

// CheckPendingMeetings 按精确ID解析用户，返回其作为候选人或面试官
// 的全部upcoming会议。
func (m *MeetingActions) CheckPendingMeetings(xl *xlog.Logger, params model.FlattenMap) model.FlattenMap {
	if xl == nil {
		xl = m.xl
	}
	userID := params.GetString("userId")
	users, err := m.accounts.ListAllAccounts(xl)
	if err != nil {
		xl.Errorf("failed to fetch users, error %v", err)
		return model.MakeFlattenMap("pending", []model.MeetingDo{}, "message", fmt.Sprintf("Error fetching meetings: %v", err))
	}
	var user *model.AccountDo
	for i := range users {
		if users[i].ID == userID {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return model.MakeFlattenMap("pending", []model.MeetingDo{}, "message", "User not found")
	}
	meetings, err := m.meetings.ListAllMeetings(xl)
	if err != nil {
		xl.Errorf("failed to fetch meetings, error %v", err)
		return model.MakeFlattenMap("pending", []model.MeetingDo{}, "message", fmt.Sprintf("Error fetching meetings: %v", err))
	}
	pending := make([]model.MeetingDo, 0)
	for _, meeting := range meetings {
		if meeting.Status == model.MeetingStatusUpcoming && meeting.HasParticipant(user.ID) {
			pending = append(pending, meeting)
		}
	}
	return model.MakeFlattenMap("pending", pending)
}

// ListPassedCandidates 面试结果为succeeded的候选人姓名列表。
func (m *MeetingActions) ListPassedCandidates(xl *xlog.Logger, params model.FlattenMap) model.FlattenMap {
	return m.listCandidatesByStatus(xl, model.MeetingStatusSucceeded, "passed")
}

// ListFailedCandidates 面试结果为failed的候选人姓名列表。
func (m *MeetingActions) ListFailedCandidates(xl *xlog.Logger, params model.FlattenMap) model.FlattenMap {
	return m.listCandidatesByStatus(xl, model.MeetingStatusFailed, "failed")
}

// listCandidatesByStatus 按会议状态筛选，与role=candidate的用户集合
// 求交，按候选人ID去重后映射为姓名。
func (m *MeetingActions) listCandidatesByStatus(xl *xlog.Logger, status, label string) model.FlattenMap {
	if xl == nil {
		xl = m.xl
	}
	users, err := m.accounts.ListAllAccounts(xl)
	if err != nil {
		xl.Errorf("failed to fetch users, error %v", err)
		return candidatesFailure(label, err)
	}
	meetings, err := m.meetings.ListAllMeetings(xl)
	if err != nil {
		xl.Errorf("failed to fetch meetings, error %v", err)
		return candidatesFailure(label, err)
	}
	candidateIDs := make(map[string]bool)
	orderedIDs := make([]string, 0)
	for _, meeting := range meetings {
		if meeting.Status != status {
			continue
		}
		if !candidateIDs[meeting.Candidate] {
			candidateIDs[meeting.Candidate] = true
			orderedIDs = append(orderedIDs, meeting.Candidate)
		}
	}
	nameByID := make(map[string]string)
	for _, u := range users {
		if u.Role == model.AccountRoleCandidate {
			nameByID[u.ID] = u.Name
		}
	}
	names := make([]string, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		if name, ok := nameByID[id]; ok {
			names = append(names, name)
		}
	}
	return model.MakeFlattenMap("candidates", names)
}

func candidatesFailure(label string, err error) model.FlattenMap {
	return model.MakeFlattenMap(
		"candidates", []string{},
		"message", fmt.Sprintf("Error fetching %s candidates: %v", label, err),
	)
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/code-cube/internal/common/utils"
	form "github.com/solutions/code-cube/internal/protodef/form"
	model "github.com/solutions/code-cube/internal/protodef/model"
	"github.com/solutions/code-cube/internal/service/cloud"
	service "github.com/solutions/code-cube/internal/service/db"
)

// MeetingInterface 会议handler需要的会议读写面，db.MeetingService实现它。
type MeetingInterface interface {
	CreateMeeting(xl *xlog.Logger, meeting *model.MeetingDo) (*model.MeetingDo, error)
	GetMeetingByID(xl *xlog.Logger, meetingID string) (*model.MeetingDo, error)
	ListMeetingsByPage(xl *xlog.Logger, userID string, pageNum int, pageSize int) ([]model.MeetingDo, int, error)
	UpdateMeetingStatus(xl *xlog.Logger, id string, status string) error
	CancelMeeting(xl *xlog.Logger, id string) error
}

// AccountInterface 会议handler需要的账号读取面。
type AccountInterface interface {
	GetAccountByID(xl *xlog.Logger, id string) (*model.AccountDo, error)
}

// RTCInterface 音视频房间面，cloud.RTCService实现它。
type RTCInterface interface {
	ListUser(roomId string) ([]string, error)
	Online(roomId, userId string) bool
	GenerateRTCRoomToken(roomId, userId, permission string) string
}

// MeetingApiHandler 会议的调度、列举、加入与状态推进。
type MeetingApiHandler struct {
	Account AccountInterface
	Meeting MeetingInterface
	RTC     RTCInterface
	IM      cloud.IMService
	xl      *xlog.Logger
}

func NewMeetingApiHandler(conf utils.Config) *MeetingApiHandler {
	v := new(MeetingApiHandler)
	v.xl = xlog.New("meeting-api")
	accountService, err := service.NewAccountService(*conf.Mongo, v.xl)
	if err != nil {
		panic(err)
	}
	meetingService, err := service.NewMeetingService(*conf.Mongo, v.xl)
	if err != nil {
		panic(err)
	}
	v.Account = accountService
	v.Meeting = meetingService
	v.RTC = cloud.NewRtcService(conf)
	if conf.IM != nil && conf.IM.Enabled {
		v.IM = cloud.NewRongCloudIMService(conf)
	}
	return v
}

// ScheduleMeeting 面试官调度一场会议。date+time合并为startTime，
// streamCallId在创建时生成，加入会议时作为RTC房间名使用。
func (v *MeetingApiHandler) ScheduleMeeting(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	userID := c.GetString(model.UserIDContextKey)
	var scheduleForm form.MeetingScheduleForm
	if err := c.Bind(&scheduleForm); err != nil {
		xl.Errorf("form binding error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := scheduleForm.Validate(); err != nil {
		xl.Errorf("form validation error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	startTime, err := scheduleForm.StartTime()
	if err != nil {
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if _, err := v.Account.GetAccountByID(xl, scheduleForm.CandidateId); err != nil {
		respErr := model.NewResponseErrorNoSuchUser()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	meeting := &model.MeetingDo{
		Title:          scheduleForm.Title,
		Description:    scheduleForm.Description,
		StartTime:      startTime,
		Status:         model.MeetingStatusUpcoming,
		StreamCallId:   utils.GenerateIDWithLength(16),
		Candidate:      scheduleForm.CandidateId,
		InterviewerIds: scheduleForm.InterviewerIds,
		Creator:        userID,
	}
	created, err := v.Meeting.CreateMeeting(xl, meeting)
	if err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	model.NewSuccessResponse(created.Map()).WithRequestID(xl.ReqId).Send(c)
}

// ListMeetings 分页列出当前用户参与的会议。
func (v *MeetingApiHandler) ListMeetings(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	userID := c.GetString(model.UserIDContextKey)
	pageNum := c.GetInt(model.PageNumContextKey)
	pageSize := c.GetInt(model.PageSizeContextKey)
	meetings, total, err := v.Meeting.ListMeetingsByPage(xl, userID, pageNum, pageSize)
	if err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	list := make([]interface{}, 0, len(meetings))
	for _, meeting := range meetings {
		list = append(list, meeting.Map())
	}
	endPage := pageNum*pageSize >= total
	nextPageNum := pageNum + 1
	if endPage {
		nextPageNum = pageNum
	}
	model.NewSuccessResponse(model.Pagination{
		Total:          total,
		CurrentPageNum: pageNum,
		NextPageNum:    nextPageNum,
		PageSize:       pageSize,
		EndPage:        endPage,
		List:           list,
	}).WithRequestID(xl.ReqId).Send(c)
}

// GetMeeting 会议详情，附带音视频房间内的在线用户列表。RTC查询失败
// 时在线列表降级为空，不影响详情本身。
func (v *MeetingApiHandler) GetMeeting(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	meeting, err := v.Meeting.GetMeetingByID(xl, meetingID)
	if err != nil {
		respErr := model.NewResponseErrorNoSuchMeeting()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	onlineUserIds, err := v.RTC.ListUser(meeting.StreamCallId)
	if err != nil {
		xl.Errorf("failed to list online users of meeting %s, error %v", meetingID, err)
		onlineUserIds = []string{}
	}
	model.NewSuccessResponse(meeting.Map().Merge(
		model.MakeFlattenMap("onlineUserIds", onlineUserIds),
	)).WithRequestID(xl.ReqId).Send(c)
}

// JoinMeeting 签发进入会议所需的RTC房间token与IM token。只有会议的
// 参与者（候选人/面试官/创建者）可以加入。
func (v *MeetingApiHandler) JoinMeeting(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	userID := c.GetString(model.UserIDContextKey)
	user := c.MustGet(model.UserContextKey).(model.AccountDo)
	meetingID := c.Param("meetingId")
	meeting, err := v.Meeting.GetMeetingByID(xl, meetingID)
	if err != nil {
		respErr := model.NewResponseErrorNoSuchMeeting()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if !meeting.HasParticipant(userID) && meeting.Creator != userID {
		respErr := model.NewResponseErrorNoPermission()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	roomToken := v.RTC.GenerateRTCRoomToken(meeting.StreamCallId, userID, "user")
	resp := model.JoinMeetingResponse{
		Meeting:   *meeting,
		RoomToken: roomToken,
		// 面试官入会时可见候选人是否已在房间
		CandidateOnline: v.RTC.Online(meeting.StreamCallId, meeting.Candidate),
	}
	if v.IM != nil {
		imToken, err := v.IM.GetUserToken(xl, userID, user.Name)
		if err != nil {
			// IM不可用时仍可进会，聊天面板降级。
			xl.Errorf("failed to get im token for user %s, error %v", userID, err)
		} else {
			resp.ImToken = imToken
		}
	}
	model.NewSuccessResponse(resp).WithRequestID(xl.ReqId).Send(c)
}

// UpdateMeetingStatus 面试官推进会议状态（succeeded/failed等）。
func (v *MeetingApiHandler) UpdateMeetingStatus(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	meetingID := c.Param("meetingId")
	var statusForm form.MeetingStatusForm
	if err := c.Bind(&statusForm); err != nil {
		xl.Errorf("form binding error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := statusForm.Validate(); err != nil {
		xl.Errorf("form validation error: %v", err)
		respErr := model.NewResponseErrorValidation(err)
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if _, err := v.Meeting.GetMeetingByID(xl, meetingID); err != nil {
		respErr := model.NewResponseErrorNoSuchMeeting()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := v.Meeting.UpdateMeetingStatus(xl, meetingID, statusForm.Status); err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	model.NewSuccessResponse(nil).WithRequestID(xl.ReqId).Send(c)
}

// CancelMeeting 创建者取消会议。
func (v *MeetingApiHandler) CancelMeeting(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	userID := c.GetString(model.UserIDContextKey)
	meetingID := c.Param("meetingId")
	meeting, err := v.Meeting.GetMeetingByID(xl, meetingID)
	if err != nil {
		respErr := model.NewResponseErrorNoSuchMeeting()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if meeting.Creator != userID {
		respErr := model.NewResponseErrorNoPermission()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	if err := v.Meeting.CancelMeeting(xl, meetingID); err != nil {
		respErr := model.NewResponseErrorInternal()
		model.NewFailResponse(*respErr).WithRequestID(xl.ReqId).Send(c)
		return
	}
	model.NewSuccessResponse(nil).WithRequestID(xl.ReqId).Send(c)
}

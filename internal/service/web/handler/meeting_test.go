package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	model "github.com/solutions/code-cube/internal/protodef/model"
)

type fakeMeetingService struct {
	meetings map[string]*model.MeetingDo
}

func (f *fakeMeetingService) CreateMeeting(xl *xlog.Logger, meeting *model.MeetingDo) (*model.MeetingDo, error) {
	f.meetings[meeting.ID] = meeting
	return meeting, nil
}

func (f *fakeMeetingService) GetMeetingByID(xl *xlog.Logger, meetingID string) (*model.MeetingDo, error) {
	meeting, ok := f.meetings[meetingID]
	if !ok {
		return nil, fmt.Errorf("no such meeting")
	}
	return meeting, nil
}

func (f *fakeMeetingService) ListMeetingsByPage(xl *xlog.Logger, userID string, pageNum int, pageSize int) ([]model.MeetingDo, int, error) {
	return nil, 0, nil
}

func (f *fakeMeetingService) UpdateMeetingStatus(xl *xlog.Logger, id string, status string) error {
	meeting, ok := f.meetings[id]
	if !ok {
		return fmt.Errorf("no such meeting")
	}
	meeting.Status = status
	return nil
}

func (f *fakeMeetingService) CancelMeeting(xl *xlog.Logger, id string) error {
	delete(f.meetings, id)
	return nil
}

type fakeRTC struct {
	users          []string
	listErr        error
	lastTokenRoom  string
	lastTokenUser  string
	lastPermission string
}

func (f *fakeRTC) ListUser(roomId string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

func (f *fakeRTC) Online(roomId, userId string) bool {
	for _, id := range f.users {
		if id == userId {
			return true
		}
	}
	return false
}

func (f *fakeRTC) GenerateRTCRoomToken(roomId, userId, permission string) string {
	f.lastTokenRoom = roomId
	f.lastTokenUser = userId
	f.lastPermission = permission
	return "rtc-token-" + roomId + "-" + userId
}

func newMeetingTestRouter(user model.AccountDo, h *MeetingApiHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(model.XLogKey, xlog.New("test-req"))
		c.Set(model.UserContextKey, user)
		c.Set(model.UserIDContextKey, user.ID)
	})
	router.GET("/v1/meeting/:meetingId", h.GetMeeting)
	router.POST("/v1/joinMeeting/:meetingId", h.JoinMeeting)
	return router
}

func sampleMeeting() *model.MeetingDo {
	return &model.MeetingDo{
		ID:             "m1",
		Title:          "Backend interview",
		Status:         model.MeetingStatusUpcoming,
		StreamCallId:   "room1",
		Candidate:      "cand-1",
		InterviewerIds: []string{"int-1"},
		Creator:        "int-1",
	}
}

func TestGetMeetingIncludesOnlineUsers(t *testing.T) {
	rtc := &fakeRTC{users: []string{"cand-1"}}
	h := &MeetingApiHandler{
		Meeting: &fakeMeetingService{meetings: map[string]*model.MeetingDo{"m1": sampleMeeting()}},
		RTC:     rtc,
		xl:      xlog.New("meeting-api-test"),
	}
	router := newMeetingTestRouter(model.AccountDo{ID: "int-1", Role: model.AccountRoleInterviewer}, h)

	w := doJSON(router, http.MethodGet, "/v1/meeting/m1", "")
	body := w.Body.String()
	assert.EqualValues(t, 0, gjson.Get(body, "code").Int())
	assert.Equal(t, "m1", gjson.Get(body, "data.id").String())
	assert.EqualValues(t, 1, gjson.Get(body, "data.onlineUserIds.#").Int())
	assert.Equal(t, "cand-1", gjson.Get(body, "data.onlineUserIds.0").String())
}

func TestGetMeetingOnlineQueryFailureDegrades(t *testing.T) {
	rtc := &fakeRTC{listErr: fmt.Errorf("rtc unavailable")}
	h := &MeetingApiHandler{
		Meeting: &fakeMeetingService{meetings: map[string]*model.MeetingDo{"m1": sampleMeeting()}},
		RTC:     rtc,
		xl:      xlog.New("meeting-api-test"),
	}
	router := newMeetingTestRouter(model.AccountDo{ID: "int-1"}, h)

	w := doJSON(router, http.MethodGet, "/v1/meeting/m1", "")
	body := w.Body.String()
	// RTC故障只降级在线列表，详情照常返回
	assert.EqualValues(t, 0, gjson.Get(body, "code").Int())
	assert.True(t, gjson.Get(body, "data.onlineUserIds").IsArray())
	assert.EqualValues(t, 0, gjson.Get(body, "data.onlineUserIds.#").Int())
}

func TestGetMeetingNotFound(t *testing.T) {
	h := &MeetingApiHandler{
		Meeting: &fakeMeetingService{meetings: map[string]*model.MeetingDo{}},
		RTC:     &fakeRTC{},
		xl:      xlog.New("meeting-api-test"),
	}
	router := newMeetingTestRouter(model.AccountDo{ID: "int-1"}, h)

	w := doJSON(router, http.MethodGet, "/v1/meeting/nope", "")
	assert.EqualValues(t, model.ResponseErrorNoSuchMeeting, gjson.Get(w.Body.String(), "code").Int())
}

func TestJoinMeetingIssuesRoomTokenAndCandidatePresence(t *testing.T) {
	rtc := &fakeRTC{users: []string{"cand-1"}}
	h := &MeetingApiHandler{
		Meeting: &fakeMeetingService{meetings: map[string]*model.MeetingDo{"m1": sampleMeeting()}},
		RTC:     rtc,
		xl:      xlog.New("meeting-api-test"),
	}
	router := newMeetingTestRouter(model.AccountDo{ID: "int-1", Name: "Grace"}, h)

	w := doJSON(router, http.MethodPost, "/v1/joinMeeting/m1", "")
	body := w.Body.String()
	assert.EqualValues(t, 0, gjson.Get(body, "code").Int())
	assert.Equal(t, "rtc-token-room1-int-1", gjson.Get(body, "data.roomToken").String())
	assert.True(t, gjson.Get(body, "data.candidateOnline").Bool())
	assert.Equal(t, "room1", rtc.lastTokenRoom)
	assert.Equal(t, "int-1", rtc.lastTokenUser)
	assert.Equal(t, "user", rtc.lastPermission)
}

func TestJoinMeetingCandidateNotArrived(t *testing.T) {
	rtc := &fakeRTC{users: []string{}}
	h := &MeetingApiHandler{
		Meeting: &fakeMeetingService{meetings: map[string]*model.MeetingDo{"m1": sampleMeeting()}},
		RTC:     rtc,
		xl:      xlog.New("meeting-api-test"),
	}
	router := newMeetingTestRouter(model.AccountDo{ID: "cand-1"}, h)

	w := doJSON(router, http.MethodPost, "/v1/joinMeeting/m1", "")
	body := w.Body.String()
	assert.EqualValues(t, 0, gjson.Get(body, "code").Int())
	assert.False(t, gjson.Get(body, "data.candidateOnline").Bool())
}

func TestJoinMeetingRejectsNonParticipant(t *testing.T) {
	h := &MeetingApiHandler{
		Meeting: &fakeMeetingService{meetings: map[string]*model.MeetingDo{"m1": sampleMeeting()}},
		RTC:     &fakeRTC{},
		xl:      xlog.New("meeting-api-test"),
	}
	router := newMeetingTestRouter(model.AccountDo{ID: "stranger"}, h)

	w := doJSON(router, http.MethodPost, "/v1/joinMeeting/m1", "")
	assert.EqualValues(t, model.ResponseErrorNoPermission, gjson.Get(w.Body.String(), "code").Int())
}

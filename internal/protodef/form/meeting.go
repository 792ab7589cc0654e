package form

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrMeetingIdNeeded = fmt.Errorf("meetingId 是必要的")
)

const (
	ErrTitleMsg = "标题过长"
	ErrDateMsg  = "日期需为 YYYY-MM-DD 格式"
	ErrTimeMsg  = "时间需为 HH:mm 格式"
)

// MeetingScheduleForm 调度一场会议的参数。assistant 动作与 REST 接口共用，
// 替代松散参数包的显式校验结构。
type MeetingScheduleForm struct {
	Title          string   `json:"title" form:"title"`
	Description    string   `json:"description" form:"description"`
	Date           string   `json:"date" form:"date"`
	Time           string   `json:"time" form:"time"`
	CandidateId    string   `json:"candidateId" form:"candidateId"`
	InterviewerIds []string `json:"interviewerIds" form:"interviewerIds"`
}

func (f *MeetingScheduleForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required, validation.Length(0, 100).Error(ErrTitleMsg)),
		validation.Field(&f.Date, validation.Required, validation.Date("2006-01-02").Error(ErrDateMsg)),
		validation.Field(&f.Time, validation.Required, validation.Date("15:04").Error(ErrTimeMsg)),
		validation.Field(&f.CandidateId, validation.Required),
		validation.Field(&f.InterviewerIds, validation.Required),
	)
}

// StartTime 将 date+time 合并为单一时间戳，与原 `new Date(date+"T"+time)` 一致。
func (f *MeetingScheduleForm) StartTime() (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04", f.Date+"T"+f.Time, time.Local)
}

// MeetingStatusForm 推进会议状态。
type MeetingStatusForm struct {
	Status string `json:"status" form:"status"`
}

func (f *MeetingStatusForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Status, validation.Required,
			validation.In("upcoming", "succeeded", "failed", "completed")),
	)
}

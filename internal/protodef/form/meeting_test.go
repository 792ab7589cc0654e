package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validScheduleForm() MeetingScheduleForm {
	return MeetingScheduleForm{
		Title:          "Backend interview",
		Description:    "Round 2",
		Date:           "2026-09-01",
		Time:           "14:30",
		CandidateId:    "cand-1",
		InterviewerIds: []string{"int-1"},
	}
}

func TestMeetingScheduleFormValidate(t *testing.T) {
	f := validScheduleForm()
	assert.NoError(t, f.Validate())

	f = validScheduleForm()
	f.Title = ""
	assert.Error(t, f.Validate())

	f = validScheduleForm()
	f.Date = "09/01/2026"
	assert.Error(t, f.Validate())

	f = validScheduleForm()
	f.Time = "2pm"
	assert.Error(t, f.Validate())

	f = validScheduleForm()
	f.InterviewerIds = nil
	assert.Error(t, f.Validate())
}

func TestMeetingScheduleFormStartTime(t *testing.T) {
	f := validScheduleForm()
	got, err := f.StartTime()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 14, 30, 0, 0, time.Local), got)
}

func TestMeetingStatusFormValidate(t *testing.T) {
	for _, status := range []string{"upcoming", "succeeded", "failed", "completed"} {
		f := MeetingStatusForm{Status: status}
		assert.NoError(t, f.Validate())
	}
	f := MeetingStatusForm{Status: "cancelled"}
	assert.Error(t, f.Validate())
	f = MeetingStatusForm{}
	assert.Error(t, f.Validate())
}

package task

import (
	"time"

	"github.com/qiniu/x/log"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	model "github.com/solutions/code-cube/internal/protodef/model"
	dao "github.com/solutions/code-cube/internal/service/db/dao"
)

type MeetingTask struct {
	mongoClient *mgo.Session
	meetingColl *mgo.Collection
}

func NewMeetingTask(mongoURI string, database string) (*MeetingTask, error) {
	mongoClient, err := mgo.Dial(mongoURI + "/" + database)
	if err != nil {
		log.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	meetingColl := mongoClient.DB(database).C(dao.CollectionMeeting)
	return &MeetingTask{
		mongoClient: mongoClient,
		meetingColl: meetingColl,
	}, nil
}

func (t *MeetingTask) listStaleUpcomingMeetings(dataSize int) ([]model.MeetingDo, error) {
	if dataSize <= 0 {
		dataSize = 10
	}
	ddl := time.Now().Add(-24 * time.Hour)
	meetings := []model.MeetingDo{}
	err := t.meetingColl.Find(bson.M{
		"status":    model.MeetingStatusUpcoming,
		"startTime": bson.M{"$lt": ddl},
	}).Sort("startTime").Limit(dataSize).All(&meetings)
	if err != nil {
		log.Errorf("failed to list stale upcoming meetings, error %v", err)
		return nil, err
	}
	return meetings, nil
}

// TaskForModifyMeetingStatus 把开始时间已过去24小时仍处于upcoming的
// 会议推进为completed。由gocron周期触发。
func (t *MeetingTask) TaskForModifyMeetingStatus() {
	log.Infof("taskForModifyMeetingStatus run at %s", time.Now().String())

	meetings, err := t.listStaleUpcomingMeetings(10)
	if err != nil {
		log.Errorf("TaskForModifyMeetingStatus find meetings, error: %v", err)
		return
	}
	if len(meetings) <= 0 {
		log.Infof("taskForModifyMeetingStatus find no meetings")
	}
	for _, meeting := range meetings {
		log.Infof("TaskForModifyMeetingStatus modify status for meeting %s, startTime: %s", meeting.ID, meeting.StartTime)
		err := t.meetingColl.UpdateId(meeting.ID, bson.M{"$set": bson.M{"status": model.MeetingStatusCompleted, "updateTime": time.Now()}})
		if err != nil {
			log.Errorf("TaskForModifyMeetingStatus modify err, %v", err)
		}
	}
}

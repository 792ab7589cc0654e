package db

import (
	"time"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/solutions/code-cube/internal/common/utils"
	errors2 "github.com/solutions/code-cube/internal/protodef/errors"
	model "github.com/solutions/code-cube/internal/protodef/model"
	dao "github.com/solutions/code-cube/internal/service/db/dao"
)

type MeetingService struct {
	mongoClient *mgo.Session
	meetingColl *mgo.Collection
	xl          *xlog.Logger
}

func NewMeetingService(conf utils.MongoConfig, xl *xlog.Logger) (*MeetingService, error) {
	if xl == nil {
		xl = xlog.New("code-cube-meeting-db")
	}
	mongoClient, err := mgo.Dial(conf.URI + "/" + conf.Database)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	meetingColl := mongoClient.DB(conf.Database).C(dao.CollectionMeeting)
	return &MeetingService{
		mongoClient: mongoClient,
		meetingColl: meetingColl,
		xl:          xl,
	}, nil
}

func (c *MeetingService) CreateMeeting(xl *xlog.Logger, meeting *model.MeetingDo) (*model.MeetingDo, error) {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	if meeting.ID == "" {
		meeting.ID = utils.GenerateIDWithLength(16)
	}
	if meeting.Status == "" {
		meeting.Status = model.MeetingStatusUpcoming
	}
	meeting.CreateTime = now
	meeting.UpdateTime = now
	err := c.meetingColl.Insert(meeting)
	if err != nil {
		xl.Errorf("failed to create meeting %s, error %v", meeting.ID, err)
		return nil, err
	}
	xl.Infof("user %s created meeting %s", meeting.Creator, meeting.ID)
	return meeting, nil
}

// GetMeetingByFields 根据一组 key/value 关系查找会议。
func (c *MeetingService) GetMeetingByFields(xl *xlog.Logger, fields map[string]interface{}) (*model.MeetingDo, error) {
	if xl == nil {
		xl = c.xl
	}
	meeting := model.MeetingDo{}
	err := c.meetingColl.Find(fields).One(&meeting)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such meeting for fields %v", fields)
			return nil, &errors2.ServerError{Code: errors2.ServerErrorMeetingNotFound}
		}
		xl.Errorf("failed to get meeting, error %v", fields)
		return nil, err
	}
	return &meeting, nil
}

func (c *MeetingService) GetMeetingByID(xl *xlog.Logger, meetingID string) (*model.MeetingDo, error) {
	return c.GetMeetingByFields(xl, map[string]interface{}{"_id": meetingID})
}

// ListAllMeetings 全量会议列表，assistant动作用它做内存侧筛选。
func (c *MeetingService) ListAllMeetings(xl *xlog.Logger) ([]model.MeetingDo, error) {
	if xl == nil {
		xl = c.xl
	}
	meetings := make([]model.MeetingDo, 0)
	err := c.meetingColl.Find(bson.M{}).Sort("-startTime").All(&meetings)
	if err != nil {
		xl.Errorf("failed to list meetings, error %v", err)
		return nil, err
	}
	return meetings, nil
}

// ListMeetingsByPage 分页列举某用户相关的会议（候选人/面试官/创建者）。
func (c *MeetingService) ListMeetingsByPage(xl *xlog.Logger, userID string, pageNum int, pageSize int) ([]model.MeetingDo, int, error) {
	if xl == nil {
		xl = c.xl
	}
	skip := (pageNum - 1) * pageSize
	condition := bson.M{"$or": []bson.M{
		{"candidateId": userID},
		{"interviewerIds": userID},
		{"creator": userID},
	}}
	meetings := []model.MeetingDo{}
	err := c.meetingColl.Find(condition).Sort("-startTime").Skip(skip).Limit(pageSize).All(&meetings)
	if err != nil {
		xl.Errorf("failed to list meetings of user %s, error %v", userID, err)
		return nil, 0, err
	}
	total, err := c.meetingColl.Find(condition).Count()
	if err != nil {
		xl.Errorf("failed to count meetings of user %s, error %v", userID, err)
		return nil, 0, err
	}
	return meetings, total, nil
}

func (c *MeetingService) UpdateMeeting(xl *xlog.Logger, id string, meeting *model.MeetingDo) (*model.MeetingDo, error) {
	if xl == nil {
		xl = c.xl
	}
	meeting.UpdateTime = time.Now()
	err := c.meetingColl.Update(bson.M{"_id": id}, bson.M{"$set": meeting})
	if err != nil {
		xl.Errorf("failed to update meeting %s, error %v", id, err)
		return nil, err
	}
	return meeting, nil
}

// UpdateMeetingStatus 单独推进会议状态。
func (c *MeetingService) UpdateMeetingStatus(xl *xlog.Logger, id string, status string) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.meetingColl.UpdateId(id, bson.M{"$set": bson.M{"status": status, "updateTime": time.Now()}})
	if err != nil {
		xl.Errorf("failed to update status of meeting %s, error %v", id, err)
	}
	return err
}

func (c *MeetingService) CancelMeeting(xl *xlog.Logger, id string) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.meetingColl.RemoveId(id)
	if err != nil {
		xl.Errorf("failed to remove meeting %s, error %v", id, err)
	}
	return err
}

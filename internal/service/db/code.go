package db

import (
	"time"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/solutions/code-cube/internal/common/utils"
	"github.com/solutions/code-cube/internal/protodef/model"
	"github.com/solutions/code-cube/internal/service/collab"
	dao "github.com/solutions/code-cube/internal/service/db/dao"
)

// CodeInterface 协同代码文档的读写面。读操作对缺失文档返回各字段的
// 类型默认值，store故障同样降级为默认值，不向上抛错。
type CodeInterface interface {
	GetCode(xl *xlog.Logger, meetingID string) string
	GetOutput(xl *xlog.Logger, meetingID string) string
	GetLanguage(xl *xlog.Logger, meetingID string) string
	GetSnapshot(xl *xlog.Logger, meetingID string) model.CodeSnapshotResponse
	UpdateCode(xl *xlog.Logger, meetingID, code, language string) error
	UpdateOutput(xl *xlog.Logger, meetingID, output string) error
	UpdateLanguage(xl *xlog.Logger, meetingID, language string) error
}

// CodeService mongo版协同文档accessor。
//
// 写操作是lookup-then-patch-or-insert：查到则只改目标字段，查不到则
// 以默认值补齐后插入。该序列没有事务保护，同一meetingId的并发首写
// 存在竞态：_id取meetingId让第二次insert报错而非产生重复文档，但
// 查找-写入整体仍非原子，保持与线上一致。
type CodeService struct {
	mongoClient *mgo.Session
	codeColl    *mgo.Collection
	hub         *collab.Hub
	xl          *xlog.Logger
}

func NewCodeService(conf utils.MongoConfig, hub *collab.Hub, xl *xlog.Logger) (*CodeService, error) {
	if xl == nil {
		xl = xlog.New("code-cube-code-db")
	}
	mongoClient, err := mgo.Dial(conf.URI + "/" + conf.Database)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	codeColl := mongoClient.DB(conf.Database).C(dao.CollectionCode)
	return &CodeService{
		mongoClient: mongoClient,
		codeColl:    codeColl,
		hub:         hub,
		xl:          xl,
	}, nil
}

func (c *CodeService) getDocument(xl *xlog.Logger, meetingID string) (*model.CodeDocumentDo, bool) {
	if xl == nil {
		xl = c.xl
	}
	var doc model.CodeDocumentDo
	err := c.codeColl.Find(bson.M{"_id": meetingID}).One(&doc)
	if err != nil {
		if err != mgo.ErrNotFound {
			xl.Errorf("failed to get code document of meeting %s, error %v", meetingID, err)
		}
		return nil, false
	}
	return &doc, true
}

// GetCode 返回当前代码buffer，无文档时为空串。
func (c *CodeService) GetCode(xl *xlog.Logger, meetingID string) string {
	doc, ok := c.getDocument(xl, meetingID)
	if !ok {
		return ""
	}
	return doc.Code
}

// GetOutput 返回最近一次执行输出，无文档时为空串。
func (c *CodeService) GetOutput(xl *xlog.Logger, meetingID string) string {
	doc, ok := c.getDocument(xl, meetingID)
	if !ok {
		return ""
	}
	return doc.Output
}

// GetLanguage 返回语言标签。无文档或字段为空串时回落到默认语言。
func (c *CodeService) GetLanguage(xl *xlog.Logger, meetingID string) string {
	doc, ok := c.getDocument(xl, meetingID)
	if !ok {
		return model.DefaultLanguage
	}
	return languageOrDefault(doc.Language)
}

// GetSnapshot 一次取回三个字段。
func (c *CodeService) GetSnapshot(xl *xlog.Logger, meetingID string) model.CodeSnapshotResponse {
	doc, ok := c.getDocument(xl, meetingID)
	if !ok {
		return emptySnapshot(meetingID)
	}
	return model.CodeSnapshotResponse{
		MeetingID: meetingID,
		Code:      doc.Code,
		Language:  languageOrDefault(doc.Language),
		Output:    doc.Output,
	}
}

// UpdateCode 写回代码buffer。语言随之落库，保证buffer与产生它的语言
// 同源；并发的UpdateLanguage可能被这里覆盖，保持既有耦合不解耦。
func (c *CodeService) UpdateCode(xl *xlog.Logger, meetingID, code, language string) error {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	var err error
	if _, ok := c.getDocument(xl, meetingID); ok {
		err = c.codeColl.UpdateId(meetingID, bson.M{"$set": bson.M{"code": code, "language": language, "updateTime": now}})
	} else {
		err = c.codeColl.Insert(model.CodeDocumentDo{MeetingID: meetingID, Code: code, Language: language, UpdateTime: now})
	}
	if err != nil {
		xl.Errorf("failed to update code of meeting %s, error %v", meetingID, err)
		return err
	}
	c.publish(collab.FieldUpdate{MeetingID: meetingID, Field: collab.FieldCode, Value: code, At: now})
	c.publish(collab.FieldUpdate{MeetingID: meetingID, Field: collab.FieldLanguage, Value: language, At: now})
	return nil
}

// UpdateOutput 写回执行输出。首写时以默认值补齐其余字段。
func (c *CodeService) UpdateOutput(xl *xlog.Logger, meetingID, output string) error {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	var err error
	if _, ok := c.getDocument(xl, meetingID); ok {
		err = c.codeColl.UpdateId(meetingID, bson.M{"$set": bson.M{"output": output, "updateTime": now}})
	} else {
		err = c.codeColl.Insert(model.CodeDocumentDo{MeetingID: meetingID, Output: output, UpdateTime: now})
	}
	if err != nil {
		xl.Errorf("failed to update output of meeting %s, error %v", meetingID, err)
		return err
	}
	c.publish(collab.FieldUpdate{MeetingID: meetingID, Field: collab.FieldOutput, Value: output, At: now})
	return nil
}

// UpdateLanguage 写回语言标签，取值不做集合校验。
func (c *CodeService) UpdateLanguage(xl *xlog.Logger, meetingID, language string) error {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	var err error
	if _, ok := c.getDocument(xl, meetingID); ok {
		err = c.codeColl.UpdateId(meetingID, bson.M{"$set": bson.M{"language": language, "updateTime": now}})
	} else {
		err = c.codeColl.Insert(model.CodeDocumentDo{MeetingID: meetingID, Language: language, UpdateTime: now})
	}
	if err != nil {
		xl.Errorf("failed to update language of meeting %s, error %v", meetingID, err)
		return err
	}
	c.publish(collab.FieldUpdate{MeetingID: meetingID, Field: collab.FieldLanguage, Value: language, At: now})
	return nil
}

func (c *CodeService) publish(u collab.FieldUpdate) {
	if c.hub == nil {
		return
	}
	c.hub.Publish(u)
}

// languageOrDefault 空语言标签回落到默认语言，与读路径的`|| "javascript"`一致。
func languageOrDefault(language string) string {
	if language == "" {
		return model.DefaultLanguage
	}
	return language
}

func emptySnapshot(meetingID string) model.CodeSnapshotResponse {
	return model.CodeSnapshotResponse{
		MeetingID: meetingID,
		Language:  model.DefaultLanguage,
	}
}

package db

import (
	"sync"
	"time"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/code-cube/internal/protodef/model"
	"github.com/solutions/code-cube/internal/service/collab"
)

// CodeServiceMock 内存版协同文档accessor，供测试及无mongo环境使用。
// upsert语义与CodeService保持一字不差。
type CodeServiceMock struct {
	mu   sync.Mutex
	docs map[string]*model.CodeDocumentDo
	hub  *collab.Hub
	xl   *xlog.Logger
}

func NewCodeServiceMock(hub *collab.Hub) *CodeServiceMock {
	return &CodeServiceMock{
		docs: make(map[string]*model.CodeDocumentDo),
		hub:  hub,
		xl:   xlog.New("code-cube-code-mock"),
	}
}

func (c *CodeServiceMock) GetCode(xl *xlog.Logger, meetingID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[meetingID]
	if !ok {
		return ""
	}
	return doc.Code
}

func (c *CodeServiceMock) GetOutput(xl *xlog.Logger, meetingID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[meetingID]
	if !ok {
		return ""
	}
	return doc.Output
}

func (c *CodeServiceMock) GetLanguage(xl *xlog.Logger, meetingID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[meetingID]
	if !ok {
		return model.DefaultLanguage
	}
	return languageOrDefault(doc.Language)
}

func (c *CodeServiceMock) GetSnapshot(xl *xlog.Logger, meetingID string) model.CodeSnapshotResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[meetingID]
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

func (c *CodeServiceMock) UpdateCode(xl *xlog.Logger, meetingID, code, language string) error {
	now := time.Now()
	c.mu.Lock()
	doc, ok := c.docs[meetingID]
	if ok {
		doc.Code = code
		doc.Language = language
		doc.UpdateTime = now
	} else {
		c.docs[meetingID] = &model.CodeDocumentDo{MeetingID: meetingID, Code: code, Language: language, UpdateTime: now}
	}
	c.mu.Unlock()
	c.publish(collab.FieldUpdate{MeetingID: meetingID, Field: collab.FieldCode, Value: code, At: now})
	c.publish(collab.FieldUpdate{MeetingID: meetingID, Field: collab.FieldLanguage, Value: language, At: now})
	return nil
}

func (c *CodeServiceMock) UpdateOutput(xl *xlog.Logger, meetingID, output string) error {
	now := time.Now()
	c.mu.Lock()
	doc, ok := c.docs[meetingID]
	if ok {
		doc.Output = output
		doc.UpdateTime = now
	} else {
		c.docs[meetingID] = &model.CodeDocumentDo{MeetingID: meetingID, Output: output, UpdateTime: now}
	}
	c.mu.Unlock()
	c.publish(collab.FieldUpdate{MeetingID: meetingID, Field: collab.FieldOutput, Value: output, At: now})
	return nil
}

func (c *CodeServiceMock) UpdateLanguage(xl *xlog.Logger, meetingID, language string) error {
	now := time.Now()
	c.mu.Lock()
	doc, ok := c.docs[meetingID]
	if ok {
		doc.Language = language
		doc.UpdateTime = now
	} else {
		c.docs[meetingID] = &model.CodeDocumentDo{MeetingID: meetingID, Language: language, UpdateTime: now}
	}
	c.mu.Unlock()
	c.publish(collab.FieldUpdate{MeetingID: meetingID, Field: collab.FieldLanguage, Value: language, At: now})
	return nil
}

func (c *CodeServiceMock) publish(u collab.FieldUpdate) {
	if c.hub == nil {
		return
	}
	c.hub.Publish(u)
}

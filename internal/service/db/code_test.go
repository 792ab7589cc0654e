package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solutions/code-cube/internal/protodef/model"
	"github.com/solutions/code-cube/internal/service/collab"
)

func TestCodeDefaultsOnMissingDocument(t *testing.T) {
	c := NewCodeServiceMock(nil)

	assert.Equal(t, "", c.GetCode(nil, "nope"))
	assert.Equal(t, "", c.GetOutput(nil, "nope"))
	assert.Equal(t, model.DefaultLanguage, c.GetLanguage(nil, "nope"))

	snap := c.GetSnapshot(nil, "nope")
	assert.Equal(t, "nope", snap.MeetingID)
	assert.Equal(t, "", snap.Code)
	assert.Equal(t, model.DefaultLanguage, snap.Language)
	assert.Equal(t, "", snap.Output)
}

func TestUpdateCodeStampsLanguage(t *testing.T) {
	c := NewCodeServiceMock(nil)

	// 代码写同时落当前语言
	assert.NoError(t, c.UpdateCode(nil, "m", "print(1)", "python"))
	assert.Equal(t, "print(1)", c.GetCode(nil, "m"))
	assert.Equal(t, "python", c.GetLanguage(nil, "m"))

	// 后续代码写携带别的语言，语言跟着变
	assert.NoError(t, c.UpdateCode(nil, "m", "fmt.Println(1)", "go"))
	assert.Equal(t, "go", c.GetLanguage(nil, "m"))
}

func TestUpdateOutputPreservesOtherFields(t *testing.T) {
	c := NewCodeServiceMock(nil)
	assert.NoError(t, c.UpdateCode(nil, "m", "print(1)", "python"))
	assert.NoError(t, c.UpdateOutput(nil, "m", "1\n"))

	assert.Equal(t, "print(1)", c.GetCode(nil, "m"))
	assert.Equal(t, "python", c.GetLanguage(nil, "m"))
	assert.Equal(t, "1\n", c.GetOutput(nil, "m"))
}

func TestUpdateOutputSeedsBareDocument(t *testing.T) {
	c := NewCodeServiceMock(nil)
	// 首写为输出时只落输出字段，语言在读侧按默认值补齐
	assert.NoError(t, c.UpdateOutput(nil, "fresh", "hello"))
	assert.Equal(t, "hello", c.GetOutput(nil, "fresh"))
	assert.Equal(t, "", c.GetCode(nil, "fresh"))
	assert.Equal(t, model.DefaultLanguage, c.GetLanguage(nil, "fresh"))
}

func TestUpdateLanguageIdempotent(t *testing.T) {
	c := NewCodeServiceMock(nil)
	assert.NoError(t, c.UpdateLanguage(nil, "m", "cpp"))
	assert.NoError(t, c.UpdateLanguage(nil, "m", "cpp"))
	assert.Equal(t, "cpp", c.GetLanguage(nil, "m"))
}

func TestEmptyStoredLanguageReadsAsDefault(t *testing.T) {
	c := NewCodeServiceMock(nil)
	assert.NoError(t, c.UpdateCode(nil, "m", "x", ""))
	assert.Equal(t, model.DefaultLanguage, c.GetLanguage(nil, "m"))
	assert.Equal(t, model.DefaultLanguage, c.GetSnapshot(nil, "m").Language)
}

func TestCodeWritesPublishFieldUpdates(t *testing.T) {
	hub := collab.NewHub()
	sub := hub.Subscribe("m")
	defer sub.Close()
	c := NewCodeServiceMock(hub)

	assert.NoError(t, c.UpdateCode(nil, "m", "print(1)", "python"))
	// 一次代码写扇出code与language两条通知
	u1 := <-sub.C
	u2 := <-sub.C
	assert.Equal(t, collab.FieldCode, u1.Field)
	assert.Equal(t, "print(1)", u1.Value)
	assert.Equal(t, collab.FieldLanguage, u2.Field)
	assert.Equal(t, "python", u2.Value)

	assert.NoError(t, c.UpdateOutput(nil, "m", "1"))
	u3 := <-sub.C
	assert.Equal(t, collab.FieldOutput, u3.Field)
}

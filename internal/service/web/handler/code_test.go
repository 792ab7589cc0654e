package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	model "github.com/solutions/code-cube/internal/protodef/model"
	"github.com/solutions/code-cube/internal/service/collab"
	service "github.com/solutions/code-cube/internal/service/db"
)

type fakeRunner struct {
	output   string
	lastCode string
	lastLang string
}

func (f *fakeRunner) Run(xl *xlog.Logger, code, language string) string {
	f.lastCode = code
	f.lastLang = language
	return f.output
}

func newCodeTestRouter(runner RunnerInterface) (*gin.Engine, *service.CodeServiceMock) {
	gin.SetMode(gin.TestMode)
	hub := collab.NewHub()
	codeService := service.NewCodeServiceMock(hub)
	h := &CodeApiHandler{
		Code:   codeService,
		Runner: runner,
		Hub:    hub,
		xl:     xlog.New("code-api-test"),
	}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(model.XLogKey, xlog.New("test-req"))
	})
	router.GET("/v1/code/:meetingId", h.GetSnapshot)
	router.GET("/v1/code/:meetingId/watch", h.WatchCode)
	router.POST("/v1/code/:meetingId/code", h.UpdateCode)
	router.POST("/v1/code/:meetingId/language", h.UpdateLanguage)
	router.POST("/v1/code/:meetingId/run", h.RunCode)
	return router, codeService
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetSnapshotDefaults(t *testing.T) {
	router, _ := newCodeTestRouter(&fakeRunner{})

	w := doJSON(router, http.MethodGet, "/v1/code/m1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.EqualValues(t, 0, gjson.Get(body, "code").Int())
	assert.Equal(t, "m1", gjson.Get(body, "data.meetingId").String())
	assert.Equal(t, "", gjson.Get(body, "data.code").String())
	assert.Equal(t, model.DefaultLanguage, gjson.Get(body, "data.language").String())
}

func TestUpdateCodeThenSnapshot(t *testing.T) {
	router, _ := newCodeTestRouter(&fakeRunner{})

	w := doJSON(router, http.MethodPost, "/v1/code/m1/code", `{"code":"print(1)","language":"python"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, gjson.Get(w.Body.String(), "code").Int())

	w = doJSON(router, http.MethodGet, "/v1/code/m1", "")
	body := w.Body.String()
	assert.Equal(t, "print(1)", gjson.Get(body, "data.code").String())
	assert.Equal(t, "python", gjson.Get(body, "data.language").String())
}

func TestUpdateLanguageRequired(t *testing.T) {
	router, _ := newCodeTestRouter(&fakeRunner{})

	w := doJSON(router, http.MethodPost, "/v1/code/m1/language", `{"language":""}`)
	assert.EqualValues(t, model.ResponseErrorValidation, gjson.Get(w.Body.String(), "code").Int())
}

func TestRunCodePersistsOutput(t *testing.T) {
	runner := &fakeRunner{output: "5\n\n[exit code]: 0"}
	router, codeService := newCodeTestRouter(runner)

	w := doJSON(router, http.MethodPost, "/v1/code/m1/run", `{"code":"console.log(5)","language":"javascript"}`)
	body := w.Body.String()
	assert.EqualValues(t, 0, gjson.Get(body, "code").Int())
	assert.Equal(t, runner.output, gjson.Get(body, "data.output").String())
	assert.Equal(t, "console.log(5)", runner.lastCode)
	assert.Equal(t, "javascript", runner.lastLang)
	assert.Equal(t, runner.output, codeService.GetOutput(nil, "m1"))
}

func TestRunCodeFallsBackToStoredBuffer(t *testing.T) {
	runner := &fakeRunner{output: "1"}
	router, codeService := newCodeTestRouter(runner)
	assert.NoError(t, codeService.UpdateCode(nil, "m1", "print(1)", "python"))

	doJSON(router, http.MethodPost, "/v1/code/m1/run", `{"language":"python"}`)
	assert.Equal(t, "print(1)", runner.lastCode)
}

func TestRunCodeErrorOutputPersistedLikeNormal(t *testing.T) {
	runner := &fakeRunner{output: "Error: connection refused"}
	router, codeService := newCodeTestRouter(runner)

	w := doJSON(router, http.MethodPost, "/v1/code/m1/run", `{"code":"x","language":"python"}`)
	// 执行失败不走fail envelope，降级文本当作一次正常输出
	assert.EqualValues(t, 0, gjson.Get(w.Body.String(), "code").Int())
	assert.Equal(t, "Error: connection refused", codeService.GetOutput(nil, "m1"))
}

func TestRunCodeLanguageRequired(t *testing.T) {
	router, _ := newCodeTestRouter(&fakeRunner{})
	w := doJSON(router, http.MethodPost, "/v1/code/m1/run", `{"code":"x"}`)
	assert.EqualValues(t, model.ResponseErrorValidation, gjson.Get(w.Body.String(), "code").Int())
}

func TestWatchCodeReceivesUpdateBatch(t *testing.T) {
	router, codeService := newCodeTestRouter(&fakeRunner{})

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- doJSON(router, http.MethodGet, "/v1/code/m1/watch?timeout=10", "")
	}()
	// 等订阅建立后再写
	time.Sleep(100 * time.Millisecond)
	assert.NoError(t, codeService.UpdateCode(nil, "m1", "print(1)", "python"))

	select {
	case w := <-done:
		body := w.Body.String()
		assert.EqualValues(t, 0, gjson.Get(body, "code").Int())
		assert.GreaterOrEqual(t, gjson.Get(body, "data.updates.#").Int(), int64(1))
		assert.Equal(t, "code", gjson.Get(body, "data.updates.0.field").String())
		assert.Equal(t, "print(1)", gjson.Get(body, "data.updates.0.value").String())
		// 响应携带当前快照，丢通知的订阅端靠它补齐
		assert.Equal(t, "print(1)", gjson.Get(body, "data.snapshot.code").String())
		assert.Equal(t, "python", gjson.Get(body, "data.snapshot.language").String())
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after a field write")
	}
}

func TestWatchCodeTimeoutReturnsSnapshot(t *testing.T) {
	router, codeService := newCodeTestRouter(&fakeRunner{})
	assert.NoError(t, codeService.UpdateCode(nil, "m1", "print(1)", "python"))

	start := time.Now()
	w := doJSON(router, http.MethodGet, "/v1/code/m1/watch?timeout=1", "")
	assert.GreaterOrEqual(t, time.Since(start), time.Second)

	body := w.Body.String()
	assert.EqualValues(t, 0, gjson.Get(body, "code").Int())
	assert.EqualValues(t, 0, gjson.Get(body, "data.updates.#").Int())
	assert.Equal(t, "print(1)", gjson.Get(body, "data.snapshot.code").String())
}

func TestParseWatchTimeout(t *testing.T) {
	assert.Equal(t, defaultWatchTimeoutSecond, parseWatchTimeout(""))
	assert.Equal(t, defaultWatchTimeoutSecond, parseWatchTimeout("abc"))
	assert.Equal(t, defaultWatchTimeoutSecond, parseWatchTimeout("0"))
	assert.Equal(t, defaultWatchTimeoutSecond, parseWatchTimeout("-3"))
	assert.Equal(t, defaultWatchTimeoutSecond, parseWatchTimeout("61"))
	assert.Equal(t, 1, parseWatchTimeout("1"))
	assert.Equal(t, maxWatchTimeoutSecond, parseWatchTimeout("60"))
}

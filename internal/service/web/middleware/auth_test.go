package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	model "github.com/solutions/code-cube/internal/protodef/model"
)

type fakeAccountService struct {
	tokens   map[string]string
	accounts map[string]*model.AccountDo
}

func (f *fakeAccountService) GetIDByToken(xl *xlog.Logger, token string) (string, error) {
	id, ok := f.tokens[token]
	if !ok {
		return "", fmt.Errorf("token not found")
	}
	return id, nil
}

func (f *fakeAccountService) GetAccountByID(xl *xlog.Logger, id string) (*model.AccountDo, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account not found")
	}
	return account, nil
}

func newAuthTestRouter(svc AccountInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	accountService = svc
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(model.XLogKey, xlog.New("test-req"))
	})
	router.GET("/v1/ping", Authenticate, func(c *gin.Context) {
		user := c.MustGet(model.UserContextKey).(model.AccountDo)
		model.NewSuccessResponse(user.Map()).Send(c)
	})
	return router
}

func doAuthed(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticateValidToken(t *testing.T) {
	router := newAuthTestRouter(&fakeAccountService{
		tokens:   map[string]string{"tok-1": "u1"},
		accounts: map[string]*model.AccountDo{"u1": {ID: "u1", Name: "Ada"}},
	})

	w := doAuthed(router, "Bearer tok-1")
	body := w.Body.String()
	assert.EqualValues(t, 0, gjson.Get(body, "code").Int())
	assert.Equal(t, "u1", gjson.Get(body, "data.id").String())
}

func TestAuthenticateMissingHeader(t *testing.T) {
	router := newAuthTestRouter(&fakeAccountService{})
	w := doAuthed(router, "")
	assert.EqualValues(t, model.ResponseErrorNotLoggedIn, gjson.Get(w.Body.String(), "code").Int())
}

func TestAuthenticateUnknownToken(t *testing.T) {
	router := newAuthTestRouter(&fakeAccountService{tokens: map[string]string{}})
	w := doAuthed(router, "Bearer nope")
	assert.EqualValues(t, model.ResponseErrorBadToken, gjson.Get(w.Body.String(), "code").Int())
}

func TestAuthenticateOrphanedTokenRejected(t *testing.T) {
	// token行残留而账号已删除：拒绝而非panic
	router := newAuthTestRouter(&fakeAccountService{
		tokens:   map[string]string{"tok-1": "ghost"},
		accounts: map[string]*model.AccountDo{},
	})

	w := doAuthed(router, "Bearer tok-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, model.ResponseErrorBadToken, gjson.Get(w.Body.String(), "code").Int())
}

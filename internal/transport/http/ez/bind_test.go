package ez

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-gorm-accounts/internal/domain"
	resp "go-gin-gorm-accounts/internal/transport/http/response"
)

type createReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,maxbytes=72"`
}

type patchReq struct {
	Name      domain.Patch[string]      `json:"name" binding:"omitnil,min=1,max=100"`
	Role      domain.Patch[domain.Role] `json:"role" binding:"omitnil,oneof=USER ADMIN"`
	AvatarURL domain.Patch[string]      `json:"avatarUrl" binding:"omitnil,url"`
}

type listReq struct {
	Page     int `form:"page,default=1" binding:"gte=1"`
	PageSize int `form:"pageSize,default=10" binding:"gte=1,lte=100"`
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	e := New(&r.RouterGroup)

	RegisterAction(e, Action[createReq, gin.H]{
		Method: http.MethodPost, Path: "/create", Binder: BindJSON, Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createReq) (gin.H, error) {
			return gin.H{"email": in.Email}, nil
		},
	})
	RegisterAction(e, Action[patchReq, patchReq]{
		Method: http.MethodPut, Path: "/patch", Binder: BindJSON,
		Handler: func(c *gin.Context, in *patchReq) (patchReq, error) { return *in, nil },
	})
	RegisterAction(e, Action[listReq, listReq]{
		Method: http.MethodGet, Path: "/list", Binder: BindQuery,
		Handler: func(c *gin.Context, in *listReq) (listReq, error) { return *in, nil },
	})
	RegisterAction(e, Action[struct{}, struct{}]{
		Method: http.MethodDelete, Path: "/gone", Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) { return struct{}{}, nil },
	})
	RegisterAction(e, Action[struct{}, struct{}]{
		Method: http.MethodGet, Path: "/missing",
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			return struct{}{}, domain.E(domain.KindNotFound, "test", nil)
		},
	})
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) resp.Body {
	t.Helper()
	var b resp.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b), w.Body.String())
	return b
}

func TestBind_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	w := do(newEngine(t), http.MethodPost, "/create", `{"email":"nope","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	b := decodeBody(t, w)
	assert.Equal(t, resp.CodeValidation, b.Error)
	rules := map[string]string{}
	for _, d := range b.Details {
		rules[d.Field] = d.Rule
		assert.NotEmpty(t, d.Message)
	}
	assert.Equal(t, map[string]string{"email": "email", "password": "min"}, rules)
}

func TestBind_SuccessStatus(t *testing.T) {
	w := do(newEngine(t), http.MethodPost, "/create", `{"email":"a@x.io","password":"password1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"email":"a@x.io"}`, w.Body.String())
}

func TestBind_PasswordLimitCountsBytes(t *testing.T) {
	r := newEngine(t)

	w := do(r, http.MethodPost, "/create", `{"email":"a@x.io","password":"`+strings.Repeat("é", 40)+`"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	b := decodeBody(t, w)
	require.Len(t, b.Details, 1)
	assert.Equal(t, "password", b.Details[0].Field)
	assert.Equal(t, "maxbytes", b.Details[0].Rule)
	assert.Equal(t, "72", b.Details[0].Param)
	assert.Equal(t, "must be at most 72 bytes", b.Details[0].Message)

	w = do(r, http.MethodPost, "/create", `{"email":"a@x.io","password":"`+strings.Repeat("é", 36)+`"}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestBind_MalformedJSON(t *testing.T) {
	w := do(newEngine(t), http.MethodPost, "/create", `{"email":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	b := decodeBody(t, w)
	require.Len(t, b.Details, 1)
	assert.Equal(t, "json", b.Details[0].Rule)
}

func TestBind_EmptyBody(t *testing.T) {
	w := do(newEngine(t), http.MethodPost, "/create", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	b := decodeBody(t, w)
	require.Len(t, b.Details, 1)
	assert.Equal(t, "required", b.Details[0].Rule)
}

func TestBind_TypeMismatch(t *testing.T) {
	w := do(newEngine(t), http.MethodPost, "/create", `{"email":42,"password":"password1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	b := decodeBody(t, w)
	require.Len(t, b.Details, 1)
	assert.Equal(t, "email", b.Details[0].Field)
	assert.Equal(t, "type", b.Details[0].Rule)
}

func TestBind_PatchFields(t *testing.T) {
	r := newEngine(t)

	t.Run("absent and null skip validation", func(t *testing.T) {
		w := do(r, http.MethodPut, "/patch", `{"name":null}`)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("present values are validated", func(t *testing.T) {
		w := do(r, http.MethodPut, "/patch", `{"name":"","role":"ROOT","avatarUrl":"not a url"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		rules := map[string]string{}
		for _, d := range decodeBody(t, w).Details {
			rules[d.Field] = d.Rule
		}
		assert.Equal(t, "min", rules["name"])
		assert.Equal(t, "oneof", rules["role"])
		assert.Equal(t, "url", rules["avatarUrl"])
	})

	t.Run("valid values pass", func(t *testing.T) {
		w := do(r, http.MethodPut, "/patch", `{"name":"Ann","role":"ADMIN","avatarUrl":"https://x.io/a.png"}`)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}

func TestBind_QueryDefaultsAndBounds(t *testing.T) {
	r := newEngine(t)

	w := do(r, http.MethodGet, "/list", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"Page":1,"PageSize":10}`, w.Body.String())

	w = do(r, http.MethodGet, "/list?pageSize=101", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "pageSize", decodeBody(t, w).Details[0].Field)

	w = do(r, http.MethodGet, "/list?page=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBind_OversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 16)
		c.Next()
	})
	RegisterAction(New(&r.RouterGroup), Action[createReq, gin.H]{
		Method: http.MethodPost, Path: "/create", Binder: BindJSON,
		Handler: func(c *gin.Context, in *createReq) (gin.H, error) { return gin.H{}, nil },
	})

	w := do(r, http.MethodPost, "/create", `{"email":"`+strings.Repeat("a", 64)+`@x.io"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, resp.CodePayloadTooLarge, decodeBody(t, w).Error)
}

func TestAction_NoContentAndErrors(t *testing.T) {
	r := newEngine(t)

	w := do(r, http.MethodDelete, "/gone", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, resp.CodeNotFound, decodeBody(t, w).Error)
}

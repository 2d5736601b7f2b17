package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"go-gin-gorm-accounts/internal/core/auth"
	"go-gin-gorm-accounts/internal/domain"
	resp "go-gin-gorm-accounts/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func newTokens() *auth.TokenService {
	return &auth.TokenService{Secret: []byte("test-secret"), AccessTTL: time.Minute, RefreshTTL: time.Hour}
}

func serve(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var b resp.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b), w.Body.String())
	return b.Error
}

func authEngine(tokens *auth.TokenService) *gin.Engine {
	r := gin.New()
	r.GET("/private", IsAuth(tokens), func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	r.GET("/admin", IsAuth(tokens), HasRole(domain.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/users/:id", IsAuth(tokens), ParamID("id"), IsSelfOrAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": ParamIDFrom(c)})
	})
	return r
}

func TestIsAuth(t *testing.T) {
	tokens := newTokens()
	r := authEngine(tokens)
	access, refresh, err := tokens.IssuePair(auth.Subject{ID: 7, Role: domain.RoleUser})
	require.NoError(t, err)

	other := &auth.TokenService{Secret: []byte("other"), AccessTTL: time.Minute}
	forged, err := other.IssueAccess(auth.Subject{ID: 7, Role: domain.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"foreign signature", "Bearer " + forged, http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"access token", "Bearer " + access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, resp.CodeInvalidToken, errorCode(t, w))
			} else {
				assert.JSONEq(t, `{"id":7,"role":"USER"}`, w.Body.String())
			}
		})
	}
}

func TestIsAuth_Expired(t *testing.T) {
	tokens := &auth.TokenService{Secret: []byte("test-secret"), AccessTTL: -time.Minute}
	tok, err := tokens.IssueAccess(auth.Subject{ID: 1, Role: domain.RoleUser})
	require.NoError(t, err)

	w := serve(authEngine(tokens), http.MethodGet, "/private", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHasRole(t *testing.T) {
	tokens := newTokens()
	r := authEngine(tokens)
	user, _ := tokens.IssueAccess(auth.Subject{ID: 1, Role: domain.RoleUser})
	admin, _ := tokens.IssueAccess(auth.Subject{ID: 2, Role: domain.RoleAdmin})

	w := serve(r, http.MethodGet, "/admin", user)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, resp.CodeForbidden, errorCode(t, w))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin", admin).Code)
}

func TestHasRole_WithoutPrincipal(t *testing.T) {
	r := gin.New()
	r.GET("/x", HasRole(domain.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/x", "").Code)
}

func TestParamIDAndSelfOrAdmin(t *testing.T) {
	tokens := newTokens()
	r := authEngine(tokens)
	user, _ := tokens.IssueAccess(auth.Subject{ID: 5, Role: domain.RoleUser})
	admin, _ := tokens.IssueAccess(auth.Subject{ID: 1, Role: domain.RoleAdmin})

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"self", "/users/5", user, http.StatusOK},
		{"other user", "/users/6", user, http.StatusForbidden},
		{"admin on other", "/users/6", admin, http.StatusOK},
		{"zero id", "/users/0", admin, http.StatusBadRequest},
		{"negative id", "/users/-3", admin, http.StatusBadRequest},
		{"non numeric", "/users/abc", admin, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tt.path, tt.token)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := serve(r, http.MethodGet, "/users/abc", admin)
	var b resp.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, resp.CodeValidation, b.Error)
	require.Len(t, b.Details, 1)
	assert.Equal(t, "id", b.Details[0].Field)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, resp.CodeTooManyRequests, errorCode(t, w))
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(0.001, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0, 0), RateLimitPerIP(0, 0))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for range 5 {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
	}
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/slow", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, resp.CodeTimeout, errorCode(t, w))
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/fast", "").Code)
}

func TestConcurrencyLimit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	r := gin.New()
	r.Use(Timeout(50*time.Millisecond), ConcurrencyLimit(1))
	r.GET("/", func(c *gin.Context) {
		entered <- struct{}{}
		<-release
		c.Status(http.StatusOK)
	})

	var wg sync.WaitGroup
	wg.Add(1)
	var first int
	go func() {
		defer wg.Done()
		first = serve(r, http.MethodGet, "/", "").Code
	}()
	<-entered

	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, resp.CodeUnavailable, errorCode(t, w))

	close(release)
	wg.Wait()
	assert.Equal(t, http.StatusOK, first)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, resp.CodeInternal, errorCode(t, w))
	assert.NotContains(t, w.Body.String(), "boom")
	assert.GreaterOrEqual(t, logs.Len(), 1)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := serve(r, http.MethodGet, "/", "")
	rid := w.Header().Get(KeyRequestID)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(KeyRequestID))
}

func TestAccessLog_MasksSecretsAndLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) {
		resp.Fail(c, domain.E(domain.KindStoreUnavailable, "test", nil))
	})

	serve(r, http.MethodGet, "/ok?token=s3cret&page=2", "")
	serve(r, http.MethodGet, "/bad", "")

	entries := logs.All()
	require.Len(t, entries, 2)

	ok := entries[0]
	assert.Equal(t, zap.InfoLevel, ok.Level)
	q := ok.ContextMap()["query"]
	assert.NotContains(t, strings.ToLower(toString(q)), "s3cret")

	bad := entries[1]
	assert.Equal(t, zap.ErrorLevel, bad.Level)
	assert.Contains(t, bad.ContextMap()["errors"], "store unavailable")
}

func toString(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ClinicDesk/models"
	"ClinicDesk/repositories"
	"ClinicDesk/services"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("patients: %w", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad json", services.ErrInvalidInput), http.StatusBadRequest},
		{repositories.ErrInvalidFilter, http.StatusBadRequest},
		{validation.Errors{"name": errors.New("cannot be blank")}, http.StatusBadRequest},
		{services.ErrEmailExists, http.StatusBadRequest},
		{services.ErrNoGuestSession, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}

func TestHTTPErrorBody(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HTTPError(c, services.ErrInvalidCredentials)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid email or password"}`, w.Body.String())
}

func roleRouter(p *services.Principal) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if p != nil {
			c.Set(principalKey, p)
		}
		c.Next()
	})
	router.GET("/staff", RequireRoles(models.StaffRoles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		name      string
		principal *services.Principal
		want      int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"guest", &services.Principal{Identity: models.GuestIdentity{ID: "guest-1"}, Role: models.RoleCustomer}, http.StatusForbidden},
		{"doctor", &services.Principal{Identity: models.UserIdentity{UserID: 1}, Role: models.RoleDoctor}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/staff", nil)
			roleRouter(tc.principal).ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestCorsPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CorsMiddleware(DefaultCorsConfig([]string{"http://localhost:3000"})))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterIsPerClient(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 1}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"))
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryMiddleware(zerolog.Nop()))
	router.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

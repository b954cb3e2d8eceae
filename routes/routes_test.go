package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ClinicDesk/config"
	"ClinicDesk/models"
	"ClinicDesk/repositories"
	"ClinicDesk/store"
	"ClinicDesk/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

type testServer struct {
	handler http.Handler
	driver  store.Driver
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	driver, err := store.NewFileDriver(filepath.Join(dir, "data"))
	require.NoError(t, err)

	cfg := &config.AppConfig{
		Env:            "test",
		Port:           "0",
		DataDir:        filepath.Join(dir, "data"),
		UploadsDir:     filepath.Join(dir, "uploads"),
		StoreDriver:    config.DriverFile,
		SymmetricKey:   testKey,
		CORSOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		SessionTTL:     time.Hour,
		MaxUploadBytes: 1 << 10,
	}
	handler, err := SetupRoutes(Dependencies{Config: cfg, Driver: driver, Log: zerolog.Nop()})
	require.NoError(t, err)
	return &testServer{handler: handler, driver: driver}
}

// session is a browser-like client that keeps the session cookie.
type session struct {
	t      *testing.T
	srv    *testServer
	cookie *http.Cookie
}

func (s *testServer) session(t *testing.T) *session {
	return &session{t: t, srv: s}
}

func (s *session) send(req *http.Request) *httptest.ResponseRecorder {
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.srv.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name != utils.SessionCookieName {
			continue
		}
		if c.MaxAge < 0 {
			s.cookie = nil
		} else {
			s.cookie = c
		}
	}
	return rec
}

func (s *session) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// staff signs up and logs in a staff account.
func (s *session) staff(email string) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/native/signup", `{"displayName":"Front Desk","email":"`+email+`","password":"Str0ng!pass"}`)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(s.t, s.cookie, "signup does not log in")

	rec = s.do(http.MethodPost, "/auth/native/login", `{"email":"`+email+`","password":"Str0ng!pass"}`)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(s.t, s.cookie)
}

func TestHealthAndRoot(t *testing.T) {
	c := newTestServer(t).session(t)

	rec := c.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ClinicDesk")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestAPIRequiresStaffSession(t *testing.T) {
	c := newTestServer(t).session(t)

	rec := c.do(http.MethodGet, "/api/patients", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodGet, "/auth/me", "")
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())

	rec = c.do(http.MethodPost, "/auth/guest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Guest session created", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "guest", user["type"])
	assert.Equal(t, "customer", user["role"])

	rec = c.do(http.MethodGet, "/api/patients", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodPost, "/auth/guest/upgrade", `{"displayName":"Visitor","email":"visitor@clinic.test","password":"Str0ng!pass"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Guest upgraded to user", decode(t, rec)["message"])

	rec = c.do(http.MethodGet, "/api/patients", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "upgraded guests are customers")

	rec = c.do(http.MethodPost, "/auth/logout", "")
	assert.JSONEq(t, `{"message":"Logged out"}`, rec.Body.String())
	assert.Nil(t, c.cookie)

	rec = c.do(http.MethodGet, "/auth/me", "")
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
}

func TestForgedCookieIsAnonymous(t *testing.T) {
	c := newTestServer(t).session(t)
	c.cookie = &http.Cookie{Name: utils.SessionCookieName, Value: "v2.local.bogus"}

	rec := c.do(http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
	assert.Nil(t, c.cookie, "an unreadable cookie is cleared")
}

func TestLoginFailures(t *testing.T) {
	c := newTestServer(t).session(t)
	c.staff("desk@clinic.test")

	anon := c.srv.session(t)
	rec := anon.do(http.MethodPost, "/auth/native/login", `{"email":"desk@clinic.test","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = anon.do(http.MethodPost, "/auth/native/signup", `{"displayName":"Again","email":"DESK@clinic.test","password":"Str0ng!pass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = anon.do(http.MethodPost, "/auth/native/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = anon.do(http.MethodPost, "/auth/send-reset-code", `{"email":"desk@clinic.test"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "reset routes need redis")
}

func TestPatientWorkflow(t *testing.T) {
	srv := newTestServer(t)
	c := srv.session(t)
	c.staff("desk@clinic.test")

	rec := c.do(http.MethodPost, "/api/patients", `{"formData":{"name":"Asha Rao","gender":"Female","phoneNumber":"98450"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	asha := decode(t, rec)
	assert.Equal(t, float64(1), asha["id"])
	assert.Equal(t, "Asha Rao", asha["name"])
	assert.Equal(t, "Active", asha["status"])
	assert.True(t, strings.HasPrefix(asha["code"].(string), "PAT-"))

	rec = c.do(http.MethodPost, "/api/patients", `{"name":"Ravi","autoCreateVisit":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode(t, rec)
	visit := reg["visit"].(map[string]any)
	assert.Equal(t, "open", visit["status"])
	assert.Equal(t, float64(2), visit["patientId"])

	rec = c.do(http.MethodPost, "/api/patients", `{"gender":"Male"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/patients/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Patient not found"}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/patients/99", "")
	assert.JSONEq(t, `{"error":"Patient not found"}`, rec.Body.String())

	rec = c.do(http.MethodPut, "/api/patients/1", `{"phoneNumber":"11111","id":55}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)
	assert.Equal(t, "11111", updated["phoneNumber"])
	assert.Equal(t, float64(1), updated["id"])
	assert.Equal(t, asha["code"], updated["code"])

	rec = c.do(http.MethodGet, "/api/patients?gender=Female", "")
	var females []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &females))
	require.Len(t, females, 1)
	assert.Equal(t, "Asha Rao", females[0]["name"])

	// nested casesheets and treatments
	rec = c.do(http.MethodPost, "/api/patients/1/casesheets", `{"chiefComplaint":"Pain","patientId":2,"visitId":7}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cs := decode(t, rec)
	assert.Equal(t, float64(1), cs["patientId"])

	rec = c.do(http.MethodGet, "/api/patients/2/casesheets/1", "")
	assert.JSONEq(t, `{"error":"Casesheet not found"}`, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/patients/1/casesheets/1/treatments", `{"treatmentName":"Scaling","cost":"800"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tr := decode(t, rec)
	assert.Equal(t, float64(1), tr["casesheetId"])
	assert.Equal(t, float64(1), tr["patientId"])
	assert.Equal(t, float64(7), tr["visitId"])

	rec = c.do(http.MethodGet, "/api/patients/1/treatments", "")
	var treatments []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &treatments))
	assert.Len(t, treatments, 1)

	rec = c.do(http.MethodGet, "/api/casesheets/1/treatments", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &treatments))
	assert.Len(t, treatments, 1)

	// deleting patients is for managers
	rec = c.do(http.MethodDelete, "/api/patients/2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	accounts := repositories.NewRepository(srv.driver, models.UsersCollection, func() *models.User { return &models.User{} })
	_, err := accounts.Update(context.Background(), 1, func(u *models.User) (*models.User, error) {
		u.Role = models.RoleOwner
		return u, nil
	})
	require.NoError(t, err)

	rec = c.do(http.MethodDelete, "/api/patients/2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Patient deleted"}`, rec.Body.String())

	rec = c.do(http.MethodDelete, "/api/patients/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodGet, "/auth/admin/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestBillingWorkflow(t *testing.T) {
	c := newTestServer(t).session(t)
	c.staff("billing@clinic.test")

	rec := c.do(http.MethodPost, "/api/invoices", `{"patientId":1,"totalAmount":1000,"discountAmount":"200"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decode(t, rec)
	assert.Equal(t, float64(800), inv["finalAmount"])

	rec = c.do(http.MethodPost, "/api/payments", `{"invoiceId":1,"amount":800,"paymentMethod":"Cash"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/invoices/1", "")
	assert.Equal(t, "Paid", decode(t, rec)["status"])

	rec = c.do(http.MethodDelete, "/api/payments/1", "")
	assert.JSONEq(t, `{"message":"Payment deleted"}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/invoices/1", "")
	assert.Equal(t, "Unpaid", decode(t, rec)["status"])

	rec = c.do(http.MethodGet, "/api/billings?patientId=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func upload(t *testing.T, name string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestMediaWorkflow(t *testing.T) {
	c := newTestServer(t).session(t)
	c.staff("xray@clinic.test")

	rec := c.send(upload(t, "xray.png", []byte("fake image"), map[string]string{"patientId": "4"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	media := decode(t, rec)
	filename := media["filename"].(string)
	assert.True(t, strings.HasSuffix(filename, "-xray.png"))
	assert.Equal(t, "/api/media/"+filename, media["path"])
	assert.Equal(t, float64(4), media["patientId"])

	rec = c.do(http.MethodGet, "/api/media/"+filename, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fake image", rec.Body.String())

	rec = c.do(http.MethodGet, "/api/media?patientId=4", "")
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	rec = c.send(upload(t, "big.bin", bytes.Repeat([]byte("x"), 2<<10), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/media", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	rec = c.send(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No file uploaded"}`, rec.Body.String())

	rec = c.do(http.MethodDelete, "/api/media/1", "")
	assert.JSONEq(t, `{"message":"Media deleted"}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/media/"+filename, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"File not found"}`, rec.Body.String())
}

func TestInvoiceStatusRoundTrip(t *testing.T) {
	c := newTestServer(t).session(t)
	c.staff("desk@clinic.test")

	rec := c.do(http.MethodPost, "/api/invoices", `{"patientId":1,"totalAmount":100,"discountAmount":0,"status":"Paid","paidAmount":100}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/invoices/1", "")
	inv := decode(t, rec)
	assert.Equal(t, "Paid", inv["status"])
	assert.Equal(t, float64(0), inv["paidAmount"])

	rec = c.do(http.MethodPut, "/api/invoices/1", `{"paidAmount":500}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(0), decode(t, rec)["paidAmount"])
}

func TestTreatmentFormDate(t *testing.T) {
	c := newTestServer(t).session(t)
	c.staff("desk@clinic.test")

	rec := c.do(http.MethodPost, "/api/treatments", `{"treatmentName":"Extraction","date":"2025-01-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/treatments/1", "")
	tr := decode(t, rec)
	assert.Equal(t, "2025-01-01", tr["date"])
	assert.Equal(t, "2025-01-01", tr["performedDate"])
}

func TestActiveSessionCookieSlides(t *testing.T) {
	c := newTestServer(t).session(t)
	c.staff("desk@clinic.test")
	sealer, err := utils.NewSessionSealer(testKey)
	require.NoError(t, err)

	fresh := c.cookie
	rec := c.do(http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, fresh, c.cookie, "a fresh cookie is left alone")

	claims, err := sealer.Open(fresh.Value)
	require.NoError(t, err)
	aging, err := sealer.Seal(claims.SID, 10*time.Minute)
	require.NoError(t, err)
	c.cookie = &http.Cookie{Name: utils.SessionCookieName, Value: aging}

	rec = c.do(http.MethodGet, "/api/patients", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, c.cookie)
	require.NotEqual(t, aging, c.cookie.Value)
	assert.Equal(t, int(time.Hour.Seconds()), c.cookie.MaxAge)

	refreshed, err := sealer.Open(c.cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, claims.SID, refreshed.SID)
	assert.Greater(t, time.Until(refreshed.Expiry), 50*time.Minute)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"demo/interview/internal/model"
	"demo/interview/internal/service"
	"demo/interview/internal/store/storemock"
)

func init() { gin.SetMode(gin.TestMode) }

const orderID = "8b0c4a1e-3f4e-4a53-9a53-0c6f1d0f2a11"

var now = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

type testServer struct {
	router   *gin.Engine
	repo     *storemock.MockRepository
	profiles *storemock.MockProfileRepository
	logs     *bytes.Buffer
}

func newTestServer(t *testing.T) testServer {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	ts := testServer{
		repo:     storemock.NewMockRepository(ctrl),
		profiles: storemock.NewMockProfileRepository(ctrl),
		logs:     &bytes.Buffer{},
	}
	n := 0
	svc := service.New(ts.repo, ts.profiles,
		service.WithClock(func() time.Time { return now }),
		service.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	ts.router = NewRouter(svc, svc, log.New(ts.logs, "", 0))
	return ts
}

func (ts testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func day(s string) time.Time {
	d, err := model.ParseDate("d", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode(t, rec)["status"])
}

func TestListOrders(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.EXPECT().ListOrders(gomock.Any()).Return([]model.Order{
		{ID: "o1", StartDate: day("2024-01-10"), IsActive: true, CreatedAt: now},
	}, nil)

	rec := ts.do(http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeList(t, rec)
	require.Len(t, got, 1)
	require.Equal(t, "2024-01-10", got[0]["start_date"])
	require.Equal(t, []any{}, got[0]["tags"])
	require.Equal(t, true, got[0]["is_active"])
}

func TestListOrders_DateRange(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.EXPECT().ListOrdersInRange(gomock.Any(), day("2024-01-10"), day("2024-01-20")).
		Return([]model.Order{{ID: "o2", StartDate: day("2024-01-10"), CreatedAt: now}}, nil)

	rec := ts.do(http.MethodGet, "/orders?start_date=2024-01-10&embargo_date=2024-01-20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeList(t, rec), 1)
}

func TestListOrders_DateRangeErrors(t *testing.T) {
	cases := []struct {
		query string
		code  string
	}{
		{"start_date=2024-01-10", "missing_date_bound"},
		{"embargo_date=2024-01-20", "missing_date_bound"},
		{"start_date=2024-13-01&embargo_date=2024-12-31", "invalid_date_format"},
		{"start_date=2024-01-01&embargo_date=tomorrow", "invalid_date_format"},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			ts := newTestServer(t)
			rec := ts.do(http.MethodGet, "/orders?"+tc.query, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, tc.code, decode(t, rec)["error"])
		})
	}
}

func TestListOrders_InvertedRangeIsEmpty(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/orders?start_date=2024-01-20&embargo_date=2024-01-10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", rec.Body.String())
}

func TestListOrders_StoreFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.EXPECT().ListOrders(gomock.Any()).Return(nil, errors.New("connection refused"))

	rec := ts.do(http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "internal_error", body["error"])
	require.NotContains(t, rec.Body.String(), "connection refused")
	require.Contains(t, ts.logs.String(), "status=500")
}

func TestCreateOrder(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil)

	rec := ts.do(http.MethodPost, "/orders", `{"start_date":"2024-03-01","tags":["rush"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "/orders/id-1", rec.Header().Get("Location"))
	body := decode(t, rec)
	require.Equal(t, "id-1", body["id"])
	require.Equal(t, "2024-03-01", body["start_date"])
	require.Equal(t, true, body["is_active"])
	require.Len(t, body["tags"], 1)
}

func TestCreateOrder_IgnoresClientIsActive(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil)

	rec := ts.do(http.MethodPost, "/orders", `{"start_date":"2024-03-01","is_active":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, decode(t, rec)["is_active"])
}

func TestCreateOrder_Invalid(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/orders", `{"start_date":"03/01/2024"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "validation_failed", body["error"])
	require.Contains(t, body["fields"], "start_date")

	rec = ts.do(http.MethodPost, "/orders", `{"start_date":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request_body", decode(t, rec)["error"])
}

func TestGetOrder(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.EXPECT().GetOrder(gomock.Any(), "o1").Return(model.Order{ID: "o1", StartDate: day("2024-01-01")}, true, nil)
	ts.repo.EXPECT().GetOrder(gomock.Any(), "nope").Return(model.Order{}, false, nil)

	rec := ts.do(http.MethodGet, "/orders/o1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "o1", decode(t, rec)["id"])

	rec = ts.do(http.MethodGet, "/orders/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "order_not_found", decode(t, rec)["error"])
}

func TestDeactivateOrder(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.EXPECT().DeactivateOrder(gomock.Any(), "o1").
		Return(model.Order{ID: "o1", StartDate: day("2024-01-01"), IsActive: false}, true, nil)
	ts.repo.EXPECT().DeactivateOrder(gomock.Any(), "nope").
		Return(model.Order{}, false, model.ErrOrderNotFound)

	rec := ts.do(http.MethodPatch, "/orders/o1/deactivate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decode(t, rec)["is_active"])

	rec = ts.do(http.MethodPatch, "/orders/nope/deactivate", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "order_not_found", decode(t, rec)["error"])
}

func TestTags(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.EXPECT().ListTags(gomock.Any()).Return([]model.OrderTag{{ID: "t1", OrderID: orderID, Label: "vip"}}, nil)
	ts.repo.EXPECT().CreateTag(gomock.Any(), gomock.Any()).Return(nil)

	rec := ts.do(http.MethodGet, "/orders/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "vip", decodeList(t, rec)[0]["label"])

	rec = ts.do(http.MethodPost, "/orders/tags", `{"order_id":"`+orderID+`","label":"gift"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "gift", body["label"])
	require.Equal(t, orderID, body["order_id"])
}

func TestCreateTag_UnknownOrder(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.EXPECT().CreateTag(gomock.Any(), gomock.Any()).Return(model.ErrOrderNotFound)

	rec := ts.do(http.MethodPost, "/orders/tags", `{"order_id":"`+orderID+`","label":"gift"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "validation_failed", body["error"])
	require.Contains(t, body["fields"], "order_id")
}

func TestListProfiles(t *testing.T) {
	ts := newTestServer(t)
	yes, no := true, false
	ts.profiles.EXPECT().ListProfiles(gomock.Any(), model.ProfileFilter{Search: "ann", IsStaff: &yes, IsAdmin: &no}).
		Return([]model.UserProfile{{ID: "p1", Email: "ann@example.com", PasswordHash: "secret-hash"}}, nil)

	rec := ts.do(http.MethodGet, "/profiles?search=ann&is_staff=true&is_admin=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ann@example.com", decodeList(t, rec)[0]["email"])
	require.NotContains(t, rec.Body.String(), "secret-hash")
}

func TestListProfiles_BadFilter(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/profiles?is_superuser=maybe", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "invalid_filter", body["error"])
	require.Contains(t, body["msg"], "is_superuser")
}

func TestCreateProfile(t *testing.T) {
	ts := newTestServer(t)
	ts.profiles.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).Return(nil)

	rec := ts.do(http.MethodPost, "/profiles", `{"email":"new@Example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "new@example.com", body["email"])
	require.NotContains(t, body, "password")
	require.NotContains(t, body, "password_hash")
	require.NotContains(t, rec.Body.String(), "hunter2")
}

func TestCreateProfile_Duplicate(t *testing.T) {
	ts := newTestServer(t)
	ts.profiles.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).Return(model.ErrProfileExists)

	rec := ts.do(http.MethodPost, "/profiles", `{"email":"dup@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode(t, rec)["fields"], "email")
}

func TestRequestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	r := gin.New()
	r.Use(RequestLogger(log.New(buf, "", 0)))
	r.POST("/holds", func(c *gin.Context) { c.Status(http.StatusCreated) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/holds", nil))

	out := buf.String()
	require.Contains(t, out, "method=POST")
	require.Contains(t, out, "path=/holds")
	require.Contains(t, out, "status=201")
}

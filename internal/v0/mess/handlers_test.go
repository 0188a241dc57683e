package mess

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MessAPI/internal/auth"
)

func newTestAuthRepo(t *testing.T) *auth.Repository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../databases/migrations/auth/000001_init.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return auth.NewRepository(db)
}

// newMarkMealRouter builds a router with the mark endpoint behind a stub
// middleware that injects the given user, standing in for the session check.
func newMarkMealRouter(h *Handler, user *auth.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/mark", func(c *gin.Context) {
		if user != nil {
			c.Set(auth.ContextUserKey, user)
		}
		c.Next()
	}, h.MarkMeal)
	return router
}

func postMark(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/mark", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type markResponse struct {
	Data MarkMealResult `json:"data"`
}

func TestMarkMealEndToEnd(t *testing.T) {
	repo := newTestRepo(t)
	seedPoints(t, repo)
	users := newTestAuthRepo(t)
	clock := fixedClock(t, "2025-06-05")
	h := NewHandler(repo, users, clock, NewPusher("", ""))
	engine := NewEngine(repo)

	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com"))
	// Existing selection: breakfast and lunch on, supper off
	_, err := repo.DB().Exec(`
		INSERT INTO month_meals (email, date, breakfast, lunch, supper)
		VALUES ('a@x.com', '2025-06-10', 1, 1, 0)
	`)
	require.NoError(t, err)

	router := newMarkMealRouter(h, &auth.User{ID: 1, Email: "a@x.com"})

	w := postMark(t, router, MarkMealRequest{Date: "2025-06-10", MealType: MealSupper})
	require.Equal(t, http.StatusOK, w.Code)

	var resp markResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Data.Status)
	require.NotNil(t, resp.Data.Value)
	assert.True(t, *resp.Data.Value)

	sel, err := repo.GetDaySelection("a@x.com", "2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, "X", DeriveKeyFromSelection(*sel))

	reports, err := engine.RangeReport("2025-06-10", "2025-06-10", clock.Today(), nil)
	require.NoError(t, err)
	assert.Equal(t, "1.00", reports[0].Total)
}

func TestMarkMealLockedOrPast(t *testing.T) {
	repo := newTestRepo(t)
	users := newTestAuthRepo(t)
	h := NewHandler(repo, users, fixedClock(t, "2025-06-05"), NewPusher("", ""))

	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com"))
	router := newMarkMealRouter(h, &auth.User{ID: 1, Email: "a@x.com"})

	w := postMark(t, router, MarkMealRequest{Date: "2025-06-05", MealType: MealBreakfast})
	require.Equal(t, http.StatusOK, w.Code)

	var resp markResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "forbidden", resp.Data.Status)
	assert.Equal(t, ReasonLockedOrPast, resp.Data.Reason)
	assert.Equal(t, "2025-06-05", resp.Data.Today)

	// Nothing was written
	sel, err := repo.GetDaySelection("a@x.com", "2025-06-05")
	require.NoError(t, err)
	assert.Nil(t, sel)
}

func TestMarkMealLockedBeforeIdentity(t *testing.T) {
	repo := newTestRepo(t)
	users := newTestAuthRepo(t)
	h := NewHandler(repo, users, fixedClock(t, "2025-06-05"), NewPusher("", ""))

	// Past dates are refused on the trusted date alone, even when the
	// caller's identity cannot be resolved.
	router := newMarkMealRouter(h, &auth.User{ID: 1, Email: "   "})

	w := postMark(t, router, MarkMealRequest{Date: "2025-06-04", MealType: MealLunch})
	require.Equal(t, http.StatusOK, w.Code)

	var resp markResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "forbidden", resp.Data.Status)
	assert.Equal(t, ReasonLockedOrPast, resp.Data.Reason)
}

func TestMarkMealNotOnRoster(t *testing.T) {
	repo := newTestRepo(t)
	users := newTestAuthRepo(t)
	h := NewHandler(repo, users, fixedClock(t, "2025-06-05"), NewPusher("", ""))

	router := newMarkMealRouter(h, &auth.User{ID: 1, Email: "b@x.com"})

	w := postMark(t, router, MarkMealRequest{Date: "2025-06-10", MealType: MealLunch})
	require.Equal(t, http.StatusOK, w.Code)

	var resp markResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "forbidden", resp.Data.Status)
	assert.Equal(t, ReasonNotInMonthlyList, resp.Data.Reason)
}

func TestMarkMealValidation(t *testing.T) {
	repo := newTestRepo(t)
	users := newTestAuthRepo(t)
	h := NewHandler(repo, users, fixedClock(t, "2025-06-05"), NewPusher("", ""))
	router := newMarkMealRouter(h, &auth.User{ID: 1, Email: "a@x.com"})

	w := postMark(t, router, map[string]string{"date": "10-06-2025", "mealType": "lunch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postMark(t, router, map[string]string{"date": "2025-06-10", "mealType": "dinner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postMark(t, router, map[string]string{"date": "2025-06-10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkMealUnresolvedIdentity(t *testing.T) {
	repo := newTestRepo(t)
	users := newTestAuthRepo(t)
	h := NewHandler(repo, users, fixedClock(t, "2025-06-05"), NewPusher("", ""))

	// User present but with no email: fail closed
	router := newMarkMealRouter(h, &auth.User{ID: 1, Email: "   "})
	w := postMark(t, router, MarkMealRequest{Date: "2025-06-10", MealType: MealLunch})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetServerNowHandler(t *testing.T) {
	repo := newTestRepo(t)
	users := newTestAuthRepo(t)
	h := NewHandler(repo, users, fixedClock(t, "2025-06-05"), NewPusher("", ""))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/now", h.GetServerNow)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/now", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ServerNow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2025-06-05", resp.Data.EffectiveDate)
	assert.Equal(t, TrustedTimezone, resp.Data.Timezone)
}

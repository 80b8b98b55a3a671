package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/crew_server/internal/api/middleware"
	"github.com/qs3c/crew_server/internal/pkg/logger"
	"github.com/qs3c/crew_server/internal/pkg/metrics"
	"github.com/qs3c/crew_server/internal/pkg/response"
	"github.com/qs3c/crew_server/internal/repository"
	"github.com/qs3c/crew_server/internal/service"
	"github.com/qs3c/crew_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

type testContext struct {
	DB       *gorm.DB
	Notifier *testutil.RecordingNotifier
}

type testHandlers struct {
	Interactions *InteractionHandler
	Teams        *TeamHandler
}

func setupHandlers(t *testing.T) (*testHandlers, *testContext) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	m := metrics.New()
	log := logger.Nop()
	notifier := &testutil.RecordingNotifier{}

	tx := repository.NewTxManager(db)
	interactionRepo := repository.NewInteractionRepository(db, repository.NewContentRegistry())
	teamRepo := repository.NewTeamRepository(db)
	membership := service.NewMembershipService(tx, repository.NewMembershipRepository(db), teamRepo,
		repository.NewUserRepository(db), notifier, m, log)

	return &testHandlers{
			Interactions: NewInteractionHandler(
				service.NewLikeService(interactionRepo, m, log),
				service.NewBookmarkService(interactionRepo, m, log),
			),
			Teams: NewTeamHandler(service.NewTeamService(tx, teamRepo, membership, log), membership),
		}, &testContext{
			DB:       db,
			Notifier: notifier,
		}
}

// mockAuth 模拟认证中间件
func mockAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

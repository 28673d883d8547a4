package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-scheduler/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
)

type fakeService struct {
	settings  map[string]availability.Settings
	lastPatch availability.Patch
}

func (f *fakeService) Get(_ context.Context, ownerID string) (*availability.Settings, error) {
	s, ok := f.settings[ownerID]
	if !ok {
		s = availability.DefaultSettings(ownerID)
	}
	return &s, nil
}

func (f *fakeService) Update(_ context.Context, ownerID string, patch availability.Patch) (*availability.Settings, error) {
	f.lastPatch = patch
	current, _ := f.Get(context.Background(), ownerID)
	next := patch.Apply(*current)
	if err := availability.Validate(next); err != nil {
		return nil, err
	}
	f.settings[ownerID] = next
	return &next, nil
}

func setupRouter(svc availability.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			auth.SetUser(c, id, id+"@example.com")
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	RegisterRoutes(r.Group(""), NewHandler(svc), fakeAuth)
	return r
}

func executeRequest(r *gin.Engine, method, path string, body any, user string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetSettings(t *testing.T) {
	r := setupRouter(&fakeService{settings: map[string]availability.Settings{}})

	t.Run("Unauthenticated", func(t *testing.T) {
		w := executeRequest(r, "GET", "/availability/settings", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Defaults As Flat Document", func(t *testing.T) {
		w := executeRequest(r, "GET", "/availability/settings", nil, "owner-1")
		require.Equal(t, http.StatusOK, w.Code)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		assert.Equal(t, "UTC", raw["timezone"])
		assert.Equal(t, true, raw["preventOverlap"])
		assert.Contains(t, raw, "monday")
		assert.Contains(t, raw, "sunday")
		assert.NotContains(t, raw, "updatedAt")

		var resp SettingsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, availability.DefaultSettings("").Template, resp.Settings().Template)
	})
}

func TestUpdateSettings(t *testing.T) {
	svc := &fakeService{settings: map[string]availability.Settings{}}
	r := setupRouter(svc)

	t.Run("Partial Update", func(t *testing.T) {
		body := map[string]any{
			"timezone":      "Asia/Taipei",
			"bufferMinutes": 15,
			"saturday": map[string]any{
				"isEnabled": true,
				"slots":     []map[string]string{{"start": "10:00", "end": "12:00"}},
			},
		}
		w := executeRequest(r, "PUT", "/availability/settings", body, "owner-1")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp SettingsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Asia/Taipei", resp.Timezone)
		assert.Equal(t, 15, resp.BufferMinutes)
		assert.True(t, resp.PreventOverlap)
		require.NotNil(t, resp.Saturday)
		assert.True(t, resp.Saturday.IsEnabled)
		require.NotNil(t, resp.Monday)
		assert.Equal(t, []TimeRangeDTO{{Start: "09:00", End: "17:00"}}, resp.Monday.Slots)

		assert.Nil(t, svc.lastPatch.MinimumNoticeHours)
		assert.Len(t, svc.lastPatch.Template, 1)
	})

	t.Run("Invalid Range", func(t *testing.T) {
		body := map[string]any{
			"monday": map[string]any{
				"isEnabled": true,
				"slots":     []map[string]string{{"start": "17:00", "end": "09:00"}},
			},
		}
		w := executeRequest(r, "PUT", "/availability/settings", body, "owner-1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Negative Notice Rejected By Binding", func(t *testing.T) {
		w := executeRequest(r, "PUT", "/availability/settings", map[string]any{"minimumNoticeHours": -2}, "owner-1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		req, _ := http.NewRequest("PUT", "/availability/settings", bytes.NewBufferString("{"))
		req.Header.Set("X-Test-User", "owner-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-scheduler/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
	availHttp "github.com/nekogravitycat/meeting-scheduler/internal/availability/http"
	bookingHttp "github.com/nekogravitycat/meeting-scheduler/internal/booking/http"
	"github.com/nekogravitycat/meeting-scheduler/internal/client"
	"github.com/nekogravitycat/meeting-scheduler/internal/db"
	"github.com/nekogravitycat/meeting-scheduler/internal/pkg/response"
)

var (
	testRouter *gin.Engine
	testPool   *pgxpool.Pool
	jwtManager *auth.JWTManager
	container  *Container
)

// Sunday noon, the day before the week the tests book into.
var testNow = time.Date(2024, time.June, 9, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		log.Warn().Msg("TEST_DB_DSN is not set, integration tests will be skipped")
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	testPool, err = db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to connect to database")
	}
	if err := db.Migrate(testPool); err != nil {
		log.Fatal().Err(err).Msg("Unable to migrate database")
	}

	gin.SetMode(gin.TestMode)
	container = NewContainer(Config{
		DBPool:             testPool,
		JWTSecret:          "integration-secret",
		RateLimitPerMinute: 1000,
		Clock:              func() time.Time { return testNow },
	})
	testRouter = container.Router
	jwtManager = container.JWTManager

	exitCode := m.Run()

	testPool.Close()
	os.Exit(exitCode)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testRouter == nil {
		t.Skip("TEST_DB_DSN is not set")
	}
	clearTables(t)
}

func clearTables(t *testing.T) {
	t.Helper()
	for _, q := range []string{
		"TRUNCATE TABLE public.bookings",
		"TRUNCATE TABLE public.availability_settings",
	} {
		_, err := testPool.Exec(context.Background(), q)
		require.NoError(t, err, "Failed to clean table")
	}
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func generateToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwtManager.GenerateAccessToken(userID, userID+"@example.com")
	require.NoError(t, err)
	return token
}

func createLink(t *testing.T, token string, duration int) bookingHttp.BookingResponse {
	t.Helper()
	w := executeRequest("POST", "/schedule/booking", bookingHttp.CreateBookingBody{
		DateRange: bookingHttp.DateRangeDTO{
			Start: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		MeetingDuration: duration,
		MeetingPurpose:  "Intro call",
		MeetingLocation: "zoom",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp bookingHttp.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func confirmBody(start time.Time, minutes int) bookingHttp.ConfirmBookingBody {
	return bookingHttp.ConfirmBookingBody{
		StartTime: start.UTC().Format(time.RFC3339),
		EndTime:   start.Add(time.Duration(minutes) * time.Minute).UTC().Format(time.RFC3339),
	}
}

func TestBookingFlow(t *testing.T) {
	requireDB(t)
	hostToken := generateToken(t, "host-a")

	t.Run("Host Saves Availability", func(t *testing.T) {
		notice, buffer := 2, 15
		w := executeRequest("PUT", "/availability/settings", availHttp.UpdateSettingsBody{
			MinimumNoticeHours: &notice,
			BufferMinutes:      &buffer,
			WeekDTO: availHttp.WeekDTO{
				Monday: &availHttp.DayAvailabilityDTO{IsEnabled: true, Slots: []availHttp.TimeRangeDTO{{Start: "09:00", End: "12:00"}}},
			},
		}, hostToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = executeRequest("GET", "/availability/settings", nil, hostToken)
		require.Equal(t, http.StatusOK, w.Code)
		var s availHttp.SettingsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
		assert.Equal(t, 15, s.BufferMinutes)
		require.NotNil(t, s.Monday)
		assert.Equal(t, "12:00", s.Monday.Slots[0].End)
		require.NotNil(t, s.Tuesday, "untouched days keep their defaults")
		assert.Equal(t, "17:00", s.Tuesday.Slots[0].End)
	})

	first := createLink(t, hostToken, 30)
	second := createLink(t, hostToken, 30)
	mondayTen := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	t.Run("Invitee Sees Slots", func(t *testing.T) {
		w := executeRequest("GET", fmt.Sprintf("/schedule/booking/%s/slots?date=2024-06-10", first.ID), nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.SlotsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Slots, 6)
		assert.Equal(t, "9:00 AM", resp.Slots[0].Start)
		assert.Equal(t, "11:30 AM", resp.Slots[5].Start)
	})

	t.Run("Invitee Confirms", func(t *testing.T) {
		w := executeRequest("POST", fmt.Sprintf("/schedule/booking/%s/confirm", first.ID), confirmBody(mondayTen, 30), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.ConfirmBookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "confirmed", resp.Booking.Status)

		w = executeRequest("POST", fmt.Sprintf("/schedule/booking/%s/confirm", first.ID), confirmBody(mondayTen, 30), "")
		assert.Equal(t, http.StatusOK, w.Code, "resubmitting the same window succeeds")
	})

	t.Run("Buffer Blocks Adjacent Slot", func(t *testing.T) {
		w := executeRequest("POST", fmt.Sprintf("/schedule/booking/%s/confirm", second.ID),
			confirmBody(mondayTen.Add(30*time.Minute), 30), "")
		assert.Equal(t, http.StatusConflict, w.Code)

		w = executeRequest("GET", fmt.Sprintf("/schedule/booking/%s/slots?date=2024-06-10", second.ID), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp bookingHttp.SlotsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		taken := map[string]bool{}
		for _, s := range resp.Slots {
			taken[s.Start] = !s.IsAvailable
		}
		assert.True(t, taken["9:30 AM"])
		assert.True(t, taken["10:00 AM"])
		assert.True(t, taken["10:30 AM"])
		assert.False(t, taken["11:00 AM"])

		w = executeRequest("POST", fmt.Sprintf("/schedule/booking/%s/confirm", second.ID),
			confirmBody(mondayTen.Add(time.Hour), 30), "")
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("Host Lists And Completes", func(t *testing.T) {
		w := executeRequest("GET", "/schedule/bookings?status=confirmed", nil, hostToken)
		require.Equal(t, http.StatusOK, w.Code)
		var page response.PageResponse[bookingHttp.BookingResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 2, page.Total)

		w = executeRequest("PATCH", "/schedule/booking/"+first.ID, bookingHttp.UpdateBookingBody{Status: "completed"}, hostToken)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = executeRequest("PATCH", "/schedule/booking/"+first.ID, bookingHttp.UpdateBookingBody{Status: "cancelled"},
			generateToken(t, "host-b"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestExpiry(t *testing.T) {
	requireDB(t)
	hostToken := generateToken(t, "host-a")
	link := createLink(t, hostToken, 30)

	n, err := container.BookingService.ExpirePending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = testPool.Exec(context.Background(),
		"UPDATE public.bookings SET date_range_start = $1, date_range_end = $2 WHERE id = $3",
		testNow.Add(-48*time.Hour), testNow.Add(-time.Hour), link.ID)
	require.NoError(t, err)

	w := executeRequest("GET", "/schedule/booking/"+link.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	n, err = container.BookingService.ExpirePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClientAgainstServer(t *testing.T) {
	requireDB(t)
	srv := httptest.NewServer(testRouter)
	defer srv.Close()

	hostToken := generateToken(t, "host-c")
	link := createLink(t, hostToken, 45)
	ctx := context.Background()

	t.Run("Booking Page Confirms", func(t *testing.T) {
		page, err := client.OpenBookingPage(ctx, client.New(srv.URL), link.ID)
		require.NoError(t, err)

		monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
		slots, err := page.Slots(monday)
		require.NoError(t, err)
		require.NotEmpty(t, slots)
		assert.Equal(t, "4:00 PM", slots[len(slots)-1].Start)

		b, err := page.Confirm(ctx, client.Selection{Date: monday, SlotStart: "4:00 PM"})
		require.NoError(t, err)
		assert.Equal(t, "confirmed", string(b.Status))
	})

	t.Run("Rejected Settings Roll Back", func(t *testing.T) {
		editor, err := client.OpenSettingsEditor(ctx, client.New(srv.URL, client.WithToken(hostToken)))
		require.NoError(t, err)
		before := editor.Settings()

		tz := "Mars/Olympus"
		_, err = editor.Update(ctx, availability.Patch{Timezone: &tz})
		assert.ErrorIs(t, err, client.ErrOptimisticConflict)
		assert.Equal(t, before, editor.Settings())
	})
}

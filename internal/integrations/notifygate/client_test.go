package notifygate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonflow/scheduling-service/internal/automation"
	"github.com/salonflow/scheduling-service/internal/domain"
)

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func testEvent() automation.Event {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return automation.Event{
		Trigger: domain.TriggerBookingConfirmation,
		Appointment: domain.Appointment{
			ID:         42,
			ClientID:   7,
			StaffID:    3,
			ServiceID:  11,
			LocationID: 1,
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			Status:     domain.StatusConfirmed,
		},
		OccurredAt: start.Add(-24 * time.Hour),
	}
}

func TestClient_Handle(t *testing.T) {
	var received WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, noopLogger{})

	err := client.Handle(context.Background(), testEvent())
	require.NoError(t, err)

	assert.Equal(t, "booking_confirmation", received.Trigger)
	assert.Equal(t, int64(42), received.AppointmentID)
	assert.Equal(t, int64(7), received.ClientID)
	assert.Equal(t, "confirmed", received.Status)
}

func TestClient_Handle_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, noopLogger{})

	err := client.Handle(context.Background(), testEvent())
	assert.ErrorIs(t, err, ErrDeliveryFailed)
}

func TestClient_Handle_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond, noopLogger{})

	err := client.Handle(context.Background(), testEvent())
	assert.ErrorIs(t, err, ErrInternal)
}

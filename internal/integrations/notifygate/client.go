package notifygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/salonflow/scheduling-service/internal/automation"
)

// Client клиент шлюза уведомлений. Реализует automation.Handler:
// каждое событие автоматизации доставляется как webhook. Ошибки
// доставки логируются диспетчером и не влияют на бизнес-операцию.
type Client struct {
	webhookURL string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента шлюза уведомлений
func NewClient(webhookURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Name имя обработчика для логов диспетчера
func (c *Client) Name() string {
	return "notifygate"
}

// Handle доставляет событие автоматизации в шлюз уведомлений
func (c *Client) Handle(ctx context.Context, event automation.Event) error {
	payload := WebhookPayload{
		Trigger:       string(event.Trigger),
		AppointmentID: event.Appointment.ID,
		ClientID:      event.Appointment.ClientID,
		StaffID:       event.Appointment.StaffID,
		ServiceID:     event.Appointment.ServiceID,
		LocationID:    event.Appointment.LocationID,
		StartTime:     event.Appointment.StartTime,
		EndTime:       event.Appointment.EndTime,
		Status:        string(event.Appointment.Status),
		OccurredAt:    event.OccurredAt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal payload: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status code %d: %s", ErrDeliveryFailed, resp.StatusCode, string(respBody))
	}

	c.log.Info("Event delivered: trigger=%s, appointment_id=%d", event.Trigger, event.Appointment.ID)
	return nil
}

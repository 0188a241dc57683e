package mess

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const (
	// PushBatchSize is the maximum recipients per FCM request
	PushBatchSize = 500

	// DefaultFCMEndpoint is the legacy FCM HTTP endpoint
	DefaultFCMEndpoint = "https://fcm.googleapis.com/fcm/send"
)

// Pusher sends broadcast notifications through Firebase Cloud Messaging
type Pusher struct {
	serverKey string
	endpoint  string
	client    *http.Client
}

// NewPusher creates an FCM pusher. An empty server key disables sending;
// every token then counts as a failure.
func NewPusher(serverKey, endpoint string) *Pusher {
	if endpoint == "" {
		endpoint = DefaultFCMEndpoint
	}
	return &Pusher{
		serverKey: serverKey,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmRequest struct {
	RegistrationIDs []string        `json:"registration_ids"`
	Notification    fcmNotification `json:"notification"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// SendToAll delivers a notification to every token, batching requests
// at PushBatchSize recipients. Failed batches count all their tokens
// as failures; delivery continues with the next batch.
func (p *Pusher) SendToAll(tokens []string, title, message string) PushResult {
	result := PushResult{Total: len(tokens)}
	if len(tokens) == 0 {
		return result
	}
	if p.serverKey == "" {
		result.Failure = len(tokens)
		return result
	}

	if title == "" {
		title = "Mess Notification"
	}

	for start := 0; start < len(tokens); start += PushBatchSize {
		end := start + PushBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		success, failure, err := p.sendBatch(batch, title, message)
		if err != nil {
			log.Printf("Error sending push batch: %v", err)
			result.Failure += len(batch)
			continue
		}
		result.Success += success
		result.Failure += failure
	}
	return result
}

func (p *Pusher) sendBatch(tokens []string, title, message string) (success, failure int, err error) {
	payload, err := json.Marshal(fcmRequest{
		RegistrationIDs: tokens,
		Notification:    fcmNotification{Title: title, Body: message},
	})
	if err != nil {
		return 0, 0, err
	}

	req, err := http.NewRequest(http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.serverKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("FCM returned status %d", resp.StatusCode)
	}

	var fcmResp fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&fcmResp); err != nil {
		return 0, 0, err
	}
	return fcmResp.Success, fcmResp.Failure, nil
}

package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
}

// NewClient creates a new FCM client using the provided credentials file
func NewClient(credentialsFile string) (*Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Client initialized successfully")
	return &Client{
		messagingClient: messagingClient,
	}, nil
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title    string
	Body     string
	Type     string            // Notification type tag (comment, like, ...)
	TargetID string            // Document the client should navigate to
	SenderID string            // User who triggered the notification
	Data     map[string]string // Extra data payload merged into the message
}

// SendReport summarizes the outcome of one multi-send operation
type SendReport struct {
	SuccessCount int
	FailureCount int
	// StaleTokens are tokens FCM reported as invalid or unregistered.
	// They are logged for later cleanup, not deleted here.
	StaleTokens []string
}

// SendEach sends one message per token in a single multi-send operation.
// A per-token failure never fails the batch; a transport-level error is
// returned to the caller.
func (c *Client) SendEach(ctx context.Context, tokens []string, notification NotificationData) (*SendReport, error) {
	if len(tokens) == 0 {
		log.Println("[FCM] No tokens to send to, skipping push")
		return &SendReport{}, nil
	}

	badge := 1
	messages := make([]*messaging.Message, 0, len(tokens))
	for _, token := range tokens {
		data := map[string]string{
			"type":     notification.Type,
			"targetId": notification.TargetID,
			"senderId": notification.SenderID,
		}
		for k, v := range notification.Data {
			data[k] = v
		}

		messages = append(messages, &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: notification.Title,
				Body:  notification.Body,
			},
			Data: data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					Sound:     "default",
					ChannelID: "high_importance_channel",
				},
			},
			APNS: &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						Sound: "default",
						Badge: &badge,
					},
				},
			},
		})
	}

	response, err := c.messagingClient.SendEach(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM messages: %w", err)
	}

	log.Printf("[FCM] Sent: %d success, %d failures", response.SuccessCount, response.FailureCount)

	report := &SendReport{
		SuccessCount: response.SuccessCount,
		FailureCount: response.FailureCount,
	}
	for i, resp := range response.Responses {
		if resp.Success {
			continue
		}
		log.Printf("[FCM] Failed to send to token %d: %v", i, resp.Error)
		if messaging.IsRegistrationTokenNotRegistered(resp.Error) || errorutils.IsInvalidArgument(resp.Error) {
			log.Printf("[FCM] Stale token detected: %s", shorten(tokens[i]))
			report.StaleTokens = append(report.StaleTokens, tokens[i])
		}
	}

	return report, nil
}

func shorten(token string) string {
	if len(token) > 20 {
		return token[:20] + "..."
	}
	return token
}

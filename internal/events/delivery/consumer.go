package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	eventdomain "modak-backend/internal/events/domain"
	notifdomain "modak-backend/internal/notification/domain"
	notifusecase "modak-backend/internal/notification/usecase"
	socialdomain "modak-backend/internal/social/domain"
	socialusecase "modak-backend/internal/social/usecase"
)

// Consumer receives domain events from a Pub/Sub subscription and routes
// them to the matching handler. Handlers always return a structured result,
// so every message is acked exactly once regardless of outcome.
type Consumer struct {
	pubsubClient *pubsub.Client
	notify       *notifusecase.NotifyUsecase
	sync         *socialusecase.SyncUsecase
	cleanup      *socialusecase.CleanupUsecase
	topicName    string
	subName      string
}

// NewConsumer creates a Pub/Sub consumer for the given topic
func NewConsumer(projectID, topicName string, notify *notifusecase.NotifyUsecase, sync *socialusecase.SyncUsecase, cleanup *socialusecase.CleanupUsecase, credentialsFile string) (*Consumer, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	return &Consumer{
		pubsubClient: client,
		notify:       notify,
		sync:         sync,
		cleanup:      cleanup,
		topicName:    topicName,
		subName:      topicName + "-sub", // Convention: topic-sub
	}, nil
}

// Start ensures the subscription exists and blocks receiving messages
func (c *Consumer) Start(ctx context.Context) {
	log.Printf("[Events] Starting consumer with topic: %s, subscription: %s", c.topicName, c.subName)

	sub := c.pubsubClient.Subscription(c.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[Events] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := c.pubsubClient.Topic(c.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[Events] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[Events] Topic %s does not exist, cannot create subscription", c.topicName)
			return
		}

		sub, err = c.pubsubClient.CreateSubscription(ctx, c.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[Events] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[Events] Created subscription: %s", c.subName)
	}

	log.Printf("[Events] Listening for events on subscription: %s", c.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		c.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[Events] Error receiving messages: %v", err)
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var event eventdomain.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		// A malformed envelope will never parse on retry, drop it
		log.Printf("[Events] Failed to unmarshal event, dropping: %v", err)
		return
	}

	log.Printf("[Events] Received %s event", event.Type)

	switch event.Type {
	case eventdomain.CommentCreated:
		var comment socialdomain.Comment
		decode(event.After, &comment)
		result := c.notify.CommentCreated(ctx, event.Param("postId"), event.Param("commentId"), comment.UserID, comment.Text)
		logResult(event.Type, result)

	case eventdomain.PostLikeCreated:
		result := c.notify.PostLikeCreated(ctx, event.Param("postId"), event.Param("userId"))
		logResult(event.Type, result)

	case eventdomain.PostLikeDeleted:
		result := c.notify.PostLikeDeleted(ctx, event.Param("postId"), event.Param("userId"))
		logResult(event.Type, result)

	case eventdomain.CommentLikeCreated:
		result := c.notify.CommentLikeCreated(ctx, event.Param("postId"), event.Param("commentId"), event.Param("userId"))
		logResult(event.Type, result)

	case eventdomain.CommentLikeDeleted:
		result := c.notify.CommentLikeDeleted(ctx, event.Param("postId"), event.Param("commentId"), event.Param("userId"))
		logResult(event.Type, result)

	case eventdomain.UserUpdated:
		var before, after socialdomain.User
		decode(event.Before, &before)
		decode(event.After, &after)
		result := c.sync.ProfileUpdated(ctx, event.Param("userId"), &before, &after)
		log.Printf("[Events] %s handled: %+v", event.Type, result)

	case eventdomain.UserDeleted:
		result := c.cleanup.AccountDeleted(ctx, event.Param("userId"))
		log.Printf("[Events] %s handled: %+v", event.Type, result)

	case eventdomain.GroupUpdated:
		var before, after socialdomain.Group
		decode(event.Before, &before)
		decode(event.After, &after)
		result := c.sync.GroupUpdated(ctx, event.Param("groupId"), &before, &after)
		log.Printf("[Events] %s handled: %+v", event.Type, result)

	case eventdomain.GroupDeleted:
		result := c.cleanup.GroupDeleted(ctx, event.Param("groupId"))
		log.Printf("[Events] %s handled: %+v", event.Type, result)

	default:
		log.Printf("[Events] Unknown event type %q, dropping", event.Type)
	}
}

func decode(raw json.RawMessage, v interface{}) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("[Events] Failed to decode document state: %v", err)
	}
}

func logResult(eventType string, result notifdomain.Result) {
	log.Printf("[Events] %s handled: %+v", eventType, result)
}

package notification

import (
	"context"
	"errors"
	"fmt"

	userRepo "creatorhub/database/repository/user"
	"creatorhub/models"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ErrNoDeviceToken is returned when the recipient has not registered a device.
var ErrNoDeviceToken = errors.New("user has no FCM token")

// NotificationService defines methods for sending FCM pushes.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
	NotifySubscriptionActivated(ctx context.Context, p models.SubscriptionActivatedPayload) error
}

// Sender is the part of the FCM client the service needs.
type Sender interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	users  userRepo.UserRepository
	sender Sender
	logger *zap.Logger
}

func NewDefaultNotificationService(users userRepo.UserRepository, sender Sender, logger *zap.Logger) (*DefaultNotificationService, error) {
	if users == nil || sender == nil {
		return nil, fmt.Errorf("notification service initialization error: user repository or sender is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{users: users, sender: sender, logger: logger}, nil
}

// SendUserPushNotification looks up a user's FCM token and sends a push.
func (s *DefaultNotificationService) SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error {
	u, err := s.users.GetByIDWithProjection(ctx, userID, bson.M{"id": 1, "fcm_token": 1})
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return fmt.Errorf("SendUserPushNotification: user %s: %w", userID, ErrNoDeviceToken)
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: failed to send FCM message: %w", err)
	}
	s.logger.Debug("push sent", zap.String("user", userID), zap.String("message", id))
	return nil
}

// NotifySubscriptionActivated tells the creator about a new subscriber and confirms the
// tier to the subscriber. Recipients without a device are skipped.
func (s *DefaultNotificationService) NotifySubscriptionActivated(ctx context.Context, p models.SubscriptionActivatedPayload) error {
	data := map[string]string{
		"type":           "subscription_activated",
		"subscriptionId": p.SubscriptionID,
		"tier":           p.Tier,
	}

	if p.CreatorID != "" {
		err := s.SendUserPushNotification(ctx, p.CreatorID,
			"New subscriber",
			fmt.Sprintf("Someone just joined your %s tier.", p.Tier),
			data)
		if err != nil && !errors.Is(err, ErrNoDeviceToken) {
			return err
		}
	}

	err := s.SendUserPushNotification(ctx, p.UserID,
		"Subscription active",
		fmt.Sprintf("Your %s subscription is now active.", p.Tier),
		data)
	if errors.Is(err, ErrNoDeviceToken) {
		s.logger.Info("subscriber has no device, skipping push", zap.String("user", p.UserID))
		return nil
	}
	return err
}

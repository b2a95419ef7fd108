package donations

import (
	"context"

	donationsv1 "github.com/louisbranch/foodshare/api/donations/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ListNotifications returns the caller's retained inbox.
func (s *Service) ListNotifications(ctx context.Context, _ *donationsv1.ListNotificationsRequest) (*donationsv1.ListNotificationsResponse, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	page, err := s.inbox.List(ctx, callerID(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &donationsv1.ListNotificationsResponse{
		Notifications: make([]*donationsv1.Notification, 0, len(page.Notifications)),
		UnreadCount:   int32(page.UnreadCount),
	}
	for _, record := range page.Notifications {
		resp.Notifications = append(resp.Notifications, notificationToProto(record))
	}
	return resp, nil
}

// MarkNotificationRead marks one of the caller's notifications read.
func (s *Service) MarkNotificationRead(ctx context.Context, in *donationsv1.MarkNotificationReadRequest) (*donationsv1.MarkNotificationReadResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "mark notification read request is required")
	}
	if err := s.configured(); err != nil {
		return nil, err
	}
	record, err := s.inbox.MarkRead(ctx, callerID(ctx), in.GetNotificationId())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &donationsv1.MarkNotificationReadResponse{Notification: notificationToProto(record)}, nil
}

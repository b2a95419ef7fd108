// Package donations exposes the donation lifecycle over donations.v1 gRPC.
package donations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	donationsv1 "github.com/louisbranch/foodshare/api/donations/v1"
	apperrors "github.com/louisbranch/foodshare/internal/platform/errors"
	"github.com/louisbranch/foodshare/internal/platform/requestctx"
	"github.com/louisbranch/foodshare/internal/services/donations/bus"
	"github.com/louisbranch/foodshare/internal/services/donations/classify"
	"github.com/louisbranch/foodshare/internal/services/donations/lifecycle"
	"github.com/louisbranch/foodshare/internal/services/donations/notify"
	"github.com/louisbranch/foodshare/internal/services/shared/grpcauthctx"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	feedRetryInitial = 100 * time.Millisecond
	feedRetryMax     = 2 * time.Second
)

// Service implements donationsv1.DonationServiceServer.
type Service struct {
	donationsv1.UnimplementedDonationServiceServer
	coordinator *lifecycle.Coordinator
	bus         *bus.Bus
	inbox       *notify.Inbox
	classifier  classify.Classifier
}

// NewService wires the API onto the lifecycle coordinator, change bus and
// notification inbox. A nil classifier uses the built-in keyword table.
func NewService(coordinator *lifecycle.Coordinator, changes *bus.Bus, inbox *notify.Inbox, classifier classify.Classifier) *Service {
	if classifier == nil {
		classifier = classify.NewKeywords()
	}
	return &Service{
		coordinator: coordinator,
		bus:         changes,
		inbox:       inbox,
		classifier:  classifier,
	}
}

// feedRetry keeps a stream open across transient feed read failures.
func feedRetry() []backoff.RetryOption {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = feedRetryInitial
	schedule.MaxInterval = feedRetryMax
	return []backoff.RetryOption{
		backoff.WithBackOff(schedule),
		backoff.WithMaxElapsedTime(0),
	}
}

func (s *Service) configured() error {
	if s == nil || s.coordinator == nil || s.bus == nil || s.inbox == nil {
		return status.Error(codes.Internal, "donation service is not configured")
	}
	return nil
}

// SuggestFoodCategory classifies free text into a food category.
func (s *Service) SuggestFoodCategory(_ context.Context, in *donationsv1.SuggestFoodCategoryRequest) (*donationsv1.SuggestFoodCategoryResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "suggest food category request is required")
	}
	if s == nil || s.classifier == nil {
		return nil, status.Error(codes.Internal, "classifier is not configured")
	}
	suggestion := s.classifier.Classify(in.GetText())
	return &donationsv1.SuggestFoodCategoryResponse{
		FoodCategory:    string(suggestion.Category),
		MatchedKeywords: suggestion.Matched,
	}, nil
}

func callerID(ctx context.Context) string {
	return requestctx.UserIDFromContext(ctx)
}

// toStatus converts coordinator errors into gRPC status errors localized for
// the caller.
func (s *Service) toStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if apperrors.GetCode(err) == apperrors.CodeUnknown {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return status.FromContextError(err).Err()
		}
	}
	return apperrors.ToGRPC(err, s.errorLocale(ctx))
}

func (s *Service) errorLocale(ctx context.Context) string {
	if locale := grpcauthctx.IncomingLocale(ctx); locale != "" {
		return locale
	}
	userID := strings.TrimSpace(callerID(ctx))
	if userID == "" || ctx.Err() != nil {
		return ""
	}
	profile, err := s.coordinator.GetProfile(ctx, userID)
	if err != nil {
		return ""
	}
	return profile.Locale
}

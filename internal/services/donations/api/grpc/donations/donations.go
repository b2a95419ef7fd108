package donations

import (
	"context"

	donationsv1 "github.com/louisbranch/foodshare/api/donations/v1"
	"github.com/louisbranch/foodshare/internal/services/donations/bus"
	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/lifecycle"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CreateProfile binds the caller to one immutable role.
func (s *Service) CreateProfile(ctx context.Context, in *donationsv1.CreateProfileRequest) (*donationsv1.CreateProfileResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "create profile request is required")
	}
	if err := s.configured(); err != nil {
		return nil, err
	}
	profile, err := s.coordinator.CreateProfile(ctx, callerID(ctx), domain.Profile{
		DisplayName:    in.DisplayName,
		Phone:          in.Phone,
		Role:           domain.Role(in.Role),
		Locale:         in.Locale,
		TelegramChatID: in.TelegramChatId,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &donationsv1.CreateProfileResponse{Profile: profileToProto(profile)}, nil
}

// GetProfile returns the caller's profile.
func (s *Service) GetProfile(ctx context.Context, _ *donationsv1.GetProfileRequest) (*donationsv1.GetProfileResponse, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	profile, err := s.coordinator.GetProfile(ctx, callerID(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &donationsv1.GetProfileResponse{Profile: profileToProto(profile)}, nil
}

// CreateDonation offers a new pending donation.
func (s *Service) CreateDonation(ctx context.Context, in *donationsv1.CreateDonationRequest) (*donationsv1.CreateDonationResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "create donation request is required")
	}
	if err := s.configured(); err != nil {
		return nil, err
	}
	donation, err := s.coordinator.Create(ctx, callerID(ctx), createInputFromProto(in))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &donationsv1.CreateDonationResponse{Donation: donationToProto(donation)}, nil
}

// GetDonation returns one donation the caller may read.
func (s *Service) GetDonation(ctx context.Context, in *donationsv1.GetDonationRequest) (*donationsv1.GetDonationResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get donation request is required")
	}
	if err := s.configured(); err != nil {
		return nil, err
	}
	donation, err := s.coordinator.Read(ctx, callerID(ctx), in.GetDonationId())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &donationsv1.GetDonationResponse{Donation: donationToProto(donation)}, nil
}

// ListDonations pages the donations the caller may read. The response carries
// the feed head observed before reading so a client can resume streaming
// without a gap.
func (s *Service) ListDonations(ctx context.Context, in *donationsv1.ListDonationsRequest) (*donationsv1.ListDonationsResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "list donations request is required")
	}
	if err := s.configured(); err != nil {
		return nil, err
	}
	head, err := s.bus.Head(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, domain.ErrLedgerUnavailable("list", err))
	}
	page, err := s.coordinator.List(ctx, callerID(ctx), lifecycle.ListInput{
		Filter:    in.GetFilter(),
		PageSize:  in.GetPageSize(),
		PageToken: in.GetPageToken(),
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &donationsv1.ListDonationsResponse{
		Donations:     make([]*donationsv1.Donation, 0, len(page.Donations)),
		NextPageToken: page.NextPageToken,
		FeedSeq:       head,
	}
	for _, donation := range page.Donations {
		resp.Donations = append(resp.Donations, donationToProto(donation))
	}
	return resp, nil
}

// AcceptDonation binds the calling shelter to a pending donation.
func (s *Service) AcceptDonation(ctx context.Context, in *donationsv1.AcceptDonationRequest) (*donationsv1.AcceptDonationResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "accept donation request is required")
	}
	if err := s.configured(); err != nil {
		return nil, err
	}
	donation, err := s.coordinator.Accept(ctx, callerID(ctx), in.GetDonationId())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &donationsv1.AcceptDonationResponse{Donation: donationToProto(donation)}, nil
}

// CompleteDonation records the calling volunteer's delivery.
func (s *Service) CompleteDonation(ctx context.Context, in *donationsv1.CompleteDonationRequest) (*donationsv1.CompleteDonationResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "complete donation request is required")
	}
	if err := s.configured(); err != nil {
		return nil, err
	}
	donation, err := s.coordinator.Complete(ctx, callerID(ctx), in.GetDonationId())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &donationsv1.CompleteDonationResponse{Donation: donationToProto(donation)}, nil
}

// SubscribeDonations streams changes the caller may read until the client
// goes away.
func (s *Service) SubscribeDonations(in *donationsv1.SubscribeDonationsRequest, stream donationsv1.DonationService_SubscribeDonationsServer) error {
	if in == nil {
		return status.Error(codes.InvalidArgument, "subscribe donations request is required")
	}
	if err := s.configured(); err != nil {
		return err
	}
	ctx := stream.Context()
	actor, err := s.coordinator.ResolveActor(ctx, callerID(ctx))
	if err != nil {
		return s.toStatus(ctx, err)
	}
	sub, err := s.bus.Subscribe(ctx, actor, bus.SubscribeOptions{
		Resume:   in.GetResume(),
		AfterSeq: in.GetAfterSeq(),
	})
	if err != nil {
		return s.toStatus(ctx, domain.ErrLedgerUnavailable("subscribe", err))
	}
	defer sub.Close()

	for {
		event, err := sub.NextRetry(ctx, feedRetry()...)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return s.toStatus(ctx, domain.ErrLedgerUnavailable("subscribe", err))
		}
		if err := stream.Send(eventToProto(event)); err != nil {
			return err
		}
	}
}

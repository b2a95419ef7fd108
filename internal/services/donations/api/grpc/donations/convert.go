package donations

import (
	"time"

	donationsv1 "github.com/louisbranch/foodshare/api/donations/v1"
	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
)

func profileToProto(p domain.Profile) *donationsv1.Profile {
	return &donationsv1.Profile{
		UserId:         p.ID,
		DisplayName:    p.DisplayName,
		Phone:          p.Phone,
		Role:           string(p.Role),
		Locale:         p.Locale,
		TelegramChatId: p.TelegramChatID,
		CreatedAt:      p.CreatedAt.UTC(),
	}
}

func donationToProto(d domain.Donation) *donationsv1.Donation {
	out := &donationsv1.Donation{
		Id:            d.ID,
		DonorId:       d.DonorID,
		DonorName:     d.DonorName,
		FoodCategory:  string(d.FoodCategory),
		Quantity:      d.Quantity,
		PickupAddress: d.PickupAddress,
		Notes:         d.Notes,
		Status:        string(d.Status),
		ShelterId:     d.ShelterID,
		VolunteerId:   d.VolunteerID,
		CreatedAt:     d.CreatedAt.UTC(),
		AcceptedAt:    utcPtr(d.AcceptedAt),
		CompletedAt:   utcPtr(d.CompletedAt),
		Version:       d.Version,
	}
	if d.Location != nil {
		out.Location = &donationsv1.Location{Lat: d.Location.Lat, Lng: d.Location.Lng}
	}
	return out
}

func eventToProto(e domain.ChangeEvent) *donationsv1.DonationEvent {
	return &donationsv1.DonationEvent{
		Seq:         e.Seq,
		Kind:        string(e.Kind),
		PriorStatus: string(e.PriorStatus),
		Donation:    donationToProto(e.Donation),
		OccurredAt:  e.OccurredAt.UTC(),
	}
}

func notificationToProto(n storage.NotificationRecord) *donationsv1.Notification {
	return &donationsv1.Notification{
		Id:          n.ID,
		DonationId:  n.DonationID,
		MessageType: n.MessageType,
		Title:       n.Title,
		Body:        n.Body,
		CreatedAt:   n.CreatedAt.UTC(),
		ReadAt:      utcPtr(n.ReadAt),
	}
}

func createInputFromProto(in *donationsv1.CreateDonationRequest) domain.CreateInput {
	out := domain.CreateInput{
		DonorName:     in.DonorName,
		FoodCategory:  in.FoodCategory,
		Quantity:      in.Quantity,
		PickupAddress: in.PickupAddress,
		Notes:         in.Notes,
	}
	if in.Location != nil {
		out.Location = &domain.Coordinates{Lat: in.Location.Lat, Lng: in.Location.Lng}
	}
	return out
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}

package notify

import (
	"context"

	"github.com/louisbranch/foodshare/internal/services/donations/domain"
)

// Delivery is one rendered notification handed to an external channel.
type Delivery struct {
	Recipient  domain.Profile
	DonationID string
	Title      string
	Body       string
}

// Channel pushes notifications outside the app. Deliver must be safe to call
// again for the same delivery.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, delivery Delivery) error
}

// Package donationsv1 is the donations.v1 gRPC contract: request and
// response messages, the service descriptor, and a typed client.
//
// Messages travel with the "json" codec registered by this package.
package donationsv1

import "time"

// Profile is a caller's identity record.
type Profile struct {
	UserId         string    `json:"user_id,omitempty"`
	DisplayName    string    `json:"display_name,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Role           string    `json:"role,omitempty"`
	Locale         string    `json:"locale,omitempty"`
	TelegramChatId int64     `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (x *Profile) GetUserId() string {
	if x == nil {
		return ""
	}
	return x.UserId
}

func (x *Profile) GetRole() string {
	if x == nil {
		return ""
	}
	return x.Role
}

func (x *Profile) GetLocale() string {
	if x == nil {
		return ""
	}
	return x.Locale
}

// Location is a WGS84 point.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Donation is the full donation record.
type Donation struct {
	Id            string     `json:"id,omitempty"`
	DonorId       string     `json:"donor_id,omitempty"`
	DonorName     string     `json:"donor_name,omitempty"`
	FoodCategory  string     `json:"food_category,omitempty"`
	Quantity      string     `json:"quantity,omitempty"`
	PickupAddress string     `json:"pickup_address,omitempty"`
	Location      *Location  `json:"location,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Status        string     `json:"status,omitempty"`
	ShelterId     string     `json:"shelter_id,omitempty"`
	VolunteerId   string     `json:"volunteer_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Version       int64      `json:"version,omitempty"`
}

func (x *Donation) GetId() string {
	if x == nil {
		return ""
	}
	return x.Id
}

func (x *Donation) GetStatus() string {
	if x == nil {
		return ""
	}
	return x.Status
}

func (x *Donation) GetShelterId() string {
	if x == nil {
		return ""
	}
	return x.ShelterId
}

func (x *Donation) GetVersion() int64 {
	if x == nil {
		return 0
	}
	return x.Version
}

// DonationEvent is one change delivered by SubscribeDonations.
type DonationEvent struct {
	Seq         int64     `json:"seq"`
	Kind        string    `json:"kind"`
	PriorStatus string    `json:"prior_status,omitempty"`
	Donation    *Donation `json:"donation"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (x *DonationEvent) GetSeq() int64 {
	if x == nil {
		return 0
	}
	return x.Seq
}

func (x *DonationEvent) GetKind() string {
	if x == nil {
		return ""
	}
	return x.Kind
}

func (x *DonationEvent) GetPriorStatus() string {
	if x == nil {
		return ""
	}
	return x.PriorStatus
}

func (x *DonationEvent) GetDonation() *Donation {
	if x == nil {
		return nil
	}
	return x.Donation
}

// Notification is one in-app inbox entry.
type Notification struct {
	Id          string     `json:"id"`
	DonationId  string     `json:"donation_id,omitempty"`
	MessageType string     `json:"message_type"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	CreatedAt   time.Time  `json:"created_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

type CreateProfileRequest struct {
	DisplayName    string `json:"display_name"`
	Phone          string `json:"phone,omitempty"`
	Role           string `json:"role"`
	Locale         string `json:"locale,omitempty"`
	TelegramChatId int64  `json:"telegram_chat_id,omitempty"`
}

type CreateProfileResponse struct {
	Profile *Profile `json:"profile"`
}

func (x *CreateProfileResponse) GetProfile() *Profile {
	if x == nil {
		return nil
	}
	return x.Profile
}

type GetProfileRequest struct{}

type GetProfileResponse struct {
	Profile *Profile `json:"profile"`
}

func (x *GetProfileResponse) GetProfile() *Profile {
	if x == nil {
		return nil
	}
	return x.Profile
}

type CreateDonationRequest struct {
	DonorName     string    `json:"donor_name,omitempty"`
	FoodCategory  string    `json:"food_category"`
	Quantity      string    `json:"quantity"`
	PickupAddress string    `json:"pickup_address"`
	Location      *Location `json:"location,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

type CreateDonationResponse struct {
	Donation *Donation `json:"donation"`
}

func (x *CreateDonationResponse) GetDonation() *Donation {
	if x == nil {
		return nil
	}
	return x.Donation
}

type GetDonationRequest struct {
	DonationId string `json:"donation_id"`
}

func (x *GetDonationRequest) GetDonationId() string {
	if x == nil {
		return ""
	}
	return x.DonationId
}

type GetDonationResponse struct {
	Donation *Donation `json:"donation"`
}

func (x *GetDonationResponse) GetDonation() *Donation {
	if x == nil {
		return nil
	}
	return x.Donation
}

type ListDonationsRequest struct {
	// Filter is an AIP-160 expression over status, food_category, donor_id
	// and created_at.
	Filter    string `json:"filter,omitempty"`
	PageSize  int32  `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

func (x *ListDonationsRequest) GetFilter() string {
	if x == nil {
		return ""
	}
	return x.Filter
}

func (x *ListDonationsRequest) GetPageSize() int32 {
	if x == nil {
		return 0
	}
	return x.PageSize
}

func (x *ListDonationsRequest) GetPageToken() string {
	if x == nil {
		return ""
	}
	return x.PageToken
}

type ListDonationsResponse struct {
	Donations     []*Donation `json:"donations"`
	NextPageToken string      `json:"next_page_token,omitempty"`
	// FeedSeq is the change feed head observed before the page was read.
	// Subscribing after it never misses a change the page does not show.
	FeedSeq int64 `json:"feed_seq"`
}

func (x *ListDonationsResponse) GetDonations() []*Donation {
	if x == nil {
		return nil
	}
	return x.Donations
}

func (x *ListDonationsResponse) GetNextPageToken() string {
	if x == nil {
		return ""
	}
	return x.NextPageToken
}

func (x *ListDonationsResponse) GetFeedSeq() int64 {
	if x == nil {
		return 0
	}
	return x.FeedSeq
}

type AcceptDonationRequest struct {
	DonationId string `json:"donation_id"`
}

func (x *AcceptDonationRequest) GetDonationId() string {
	if x == nil {
		return ""
	}
	return x.DonationId
}

type AcceptDonationResponse struct {
	Donation *Donation `json:"donation"`
}

func (x *AcceptDonationResponse) GetDonation() *Donation {
	if x == nil {
		return nil
	}
	return x.Donation
}

type CompleteDonationRequest struct {
	DonationId string `json:"donation_id"`
}

func (x *CompleteDonationRequest) GetDonationId() string {
	if x == nil {
		return ""
	}
	return x.DonationId
}

type CompleteDonationResponse struct {
	Donation *Donation `json:"donation"`
}

func (x *CompleteDonationResponse) GetDonation() *Donation {
	if x == nil {
		return nil
	}
	return x.Donation
}

type SubscribeDonationsRequest struct {
	// AfterSeq resumes after a previously observed event when Resume is set.
	// Otherwise the stream starts at the current feed head.
	AfterSeq int64 `json:"after_seq,omitempty"`
	Resume   bool  `json:"resume,omitempty"`
}

func (x *SubscribeDonationsRequest) GetAfterSeq() int64 {
	if x == nil {
		return 0
	}
	return x.AfterSeq
}

func (x *SubscribeDonationsRequest) GetResume() bool {
	if x == nil {
		return false
	}
	return x.Resume
}

type ListNotificationsRequest struct{}

type ListNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int32           `json:"unread_count"`
}

func (x *ListNotificationsResponse) GetNotifications() []*Notification {
	if x == nil {
		return nil
	}
	return x.Notifications
}

func (x *ListNotificationsResponse) GetUnreadCount() int32 {
	if x == nil {
		return 0
	}
	return x.UnreadCount
}

type MarkNotificationReadRequest struct {
	NotificationId string `json:"notification_id"`
}

func (x *MarkNotificationReadRequest) GetNotificationId() string {
	if x == nil {
		return ""
	}
	return x.NotificationId
}

type MarkNotificationReadResponse struct {
	Notification *Notification `json:"notification"`
}

func (x *MarkNotificationReadResponse) GetNotification() *Notification {
	if x == nil {
		return nil
	}
	return x.Notification
}

type SuggestFoodCategoryRequest struct {
	Text string `json:"text"`
}

func (x *SuggestFoodCategoryRequest) GetText() string {
	if x == nil {
		return ""
	}
	return x.Text
}

type SuggestFoodCategoryResponse struct {
	FoodCategory    string   `json:"food_category"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

func (x *SuggestFoodCategoryResponse) GetFoodCategory() string {
	if x == nil {
		return ""
	}
	return x.FoodCategory
}

package donationsv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified donations service name.
const ServiceName = "foodshare.donations.v1.DonationService"

const (
	DonationService_CreateProfile_FullMethodName        = "/" + ServiceName + "/CreateProfile"
	DonationService_GetProfile_FullMethodName           = "/" + ServiceName + "/GetProfile"
	DonationService_CreateDonation_FullMethodName       = "/" + ServiceName + "/CreateDonation"
	DonationService_GetDonation_FullMethodName          = "/" + ServiceName + "/GetDonation"
	DonationService_ListDonations_FullMethodName        = "/" + ServiceName + "/ListDonations"
	DonationService_AcceptDonation_FullMethodName       = "/" + ServiceName + "/AcceptDonation"
	DonationService_CompleteDonation_FullMethodName     = "/" + ServiceName + "/CompleteDonation"
	DonationService_SubscribeDonations_FullMethodName   = "/" + ServiceName + "/SubscribeDonations"
	DonationService_ListNotifications_FullMethodName    = "/" + ServiceName + "/ListNotifications"
	DonationService_MarkNotificationRead_FullMethodName = "/" + ServiceName + "/MarkNotificationRead"
	DonationService_SuggestFoodCategory_FullMethodName  = "/" + ServiceName + "/SuggestFoodCategory"
)

// DonationServiceServer is the server API for the donations service.
type DonationServiceServer interface {
	CreateProfile(context.Context, *CreateProfileRequest) (*CreateProfileResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error)
	CreateDonation(context.Context, *CreateDonationRequest) (*CreateDonationResponse, error)
	GetDonation(context.Context, *GetDonationRequest) (*GetDonationResponse, error)
	ListDonations(context.Context, *ListDonationsRequest) (*ListDonationsResponse, error)
	AcceptDonation(context.Context, *AcceptDonationRequest) (*AcceptDonationResponse, error)
	CompleteDonation(context.Context, *CompleteDonationRequest) (*CompleteDonationResponse, error)
	SubscribeDonations(*SubscribeDonationsRequest, DonationService_SubscribeDonationsServer) error
	ListNotifications(context.Context, *ListNotificationsRequest) (*ListNotificationsResponse, error)
	MarkNotificationRead(context.Context, *MarkNotificationReadRequest) (*MarkNotificationReadResponse, error)
	SuggestFoodCategory(context.Context, *SuggestFoodCategoryRequest) (*SuggestFoodCategoryResponse, error)
	mustEmbedUnimplementedDonationServiceServer()
}

// UnimplementedDonationServiceServer must be embedded by implementations.
type UnimplementedDonationServiceServer struct{}

func (UnimplementedDonationServiceServer) CreateProfile(context.Context, *CreateProfileRequest) (*CreateProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateProfile not implemented")
}
func (UnimplementedDonationServiceServer) GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedDonationServiceServer) CreateDonation(context.Context, *CreateDonationRequest) (*CreateDonationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateDonation not implemented")
}
func (UnimplementedDonationServiceServer) GetDonation(context.Context, *GetDonationRequest) (*GetDonationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDonation not implemented")
}
func (UnimplementedDonationServiceServer) ListDonations(context.Context, *ListDonationsRequest) (*ListDonationsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListDonations not implemented")
}
func (UnimplementedDonationServiceServer) AcceptDonation(context.Context, *AcceptDonationRequest) (*AcceptDonationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AcceptDonation not implemented")
}
func (UnimplementedDonationServiceServer) CompleteDonation(context.Context, *CompleteDonationRequest) (*CompleteDonationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CompleteDonation not implemented")
}
func (UnimplementedDonationServiceServer) SubscribeDonations(*SubscribeDonationsRequest, DonationService_SubscribeDonationsServer) error {
	return status.Error(codes.Unimplemented, "method SubscribeDonations not implemented")
}
func (UnimplementedDonationServiceServer) ListNotifications(context.Context, *ListNotificationsRequest) (*ListNotificationsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListNotifications not implemented")
}
func (UnimplementedDonationServiceServer) MarkNotificationRead(context.Context, *MarkNotificationReadRequest) (*MarkNotificationReadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method MarkNotificationRead not implemented")
}
func (UnimplementedDonationServiceServer) SuggestFoodCategory(context.Context, *SuggestFoodCategoryRequest) (*SuggestFoodCategoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SuggestFoodCategory not implemented")
}
func (UnimplementedDonationServiceServer) mustEmbedUnimplementedDonationServiceServer() {}

// DonationService_SubscribeDonationsServer is the server side of the change stream.
type DonationService_SubscribeDonationsServer interface {
	Send(*DonationEvent) error
	grpc.ServerStream
}

type donationServiceSubscribeDonationsServer struct {
	grpc.ServerStream
}

func (x *donationServiceSubscribeDonationsServer) Send(m *DonationEvent) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterDonationServiceServer registers srv on s.
func RegisterDonationServiceServer(s grpc.ServiceRegistrar, srv DonationServiceServer) {
	s.RegisterService(&DonationService_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(DonationServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DonationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DonationServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func subscribeDonationsHandler(srv any, stream grpc.ServerStream) error {
	m := new(SubscribeDonationsRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(DonationServiceServer).SubscribeDonations(m, &donationServiceSubscribeDonationsServer{ServerStream: stream})
}

// DonationService_ServiceDesc describes the donations service for grpc.Server.
var DonationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DonationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateProfile", Handler: unaryHandler(DonationService_CreateProfile_FullMethodName, DonationServiceServer.CreateProfile)},
		{MethodName: "GetProfile", Handler: unaryHandler(DonationService_GetProfile_FullMethodName, DonationServiceServer.GetProfile)},
		{MethodName: "CreateDonation", Handler: unaryHandler(DonationService_CreateDonation_FullMethodName, DonationServiceServer.CreateDonation)},
		{MethodName: "GetDonation", Handler: unaryHandler(DonationService_GetDonation_FullMethodName, DonationServiceServer.GetDonation)},
		{MethodName: "ListDonations", Handler: unaryHandler(DonationService_ListDonations_FullMethodName, DonationServiceServer.ListDonations)},
		{MethodName: "AcceptDonation", Handler: unaryHandler(DonationService_AcceptDonation_FullMethodName, DonationServiceServer.AcceptDonation)},
		{MethodName: "CompleteDonation", Handler: unaryHandler(DonationService_CompleteDonation_FullMethodName, DonationServiceServer.CompleteDonation)},
		{MethodName: "ListNotifications", Handler: unaryHandler(DonationService_ListNotifications_FullMethodName, DonationServiceServer.ListNotifications)},
		{MethodName: "MarkNotificationRead", Handler: unaryHandler(DonationService_MarkNotificationRead_FullMethodName, DonationServiceServer.MarkNotificationRead)},
		{MethodName: "SuggestFoodCategory", Handler: unaryHandler(DonationService_SuggestFoodCategory_FullMethodName, DonationServiceServer.SuggestFoodCategory)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeDonations",
			Handler:       subscribeDonationsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "donations/v1/donations.go",
}

// DonationServiceClient is the client API for the donations service.
type DonationServiceClient interface {
	CreateProfile(ctx context.Context, in *CreateProfileRequest, opts ...grpc.CallOption) (*CreateProfileResponse, error)
	GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*GetProfileResponse, error)
	CreateDonation(ctx context.Context, in *CreateDonationRequest, opts ...grpc.CallOption) (*CreateDonationResponse, error)
	GetDonation(ctx context.Context, in *GetDonationRequest, opts ...grpc.CallOption) (*GetDonationResponse, error)
	ListDonations(ctx context.Context, in *ListDonationsRequest, opts ...grpc.CallOption) (*ListDonationsResponse, error)
	AcceptDonation(ctx context.Context, in *AcceptDonationRequest, opts ...grpc.CallOption) (*AcceptDonationResponse, error)
	CompleteDonation(ctx context.Context, in *CompleteDonationRequest, opts ...grpc.CallOption) (*CompleteDonationResponse, error)
	SubscribeDonations(ctx context.Context, in *SubscribeDonationsRequest, opts ...grpc.CallOption) (DonationService_SubscribeDonationsClient, error)
	ListNotifications(ctx context.Context, in *ListNotificationsRequest, opts ...grpc.CallOption) (*ListNotificationsResponse, error)
	MarkNotificationRead(ctx context.Context, in *MarkNotificationReadRequest, opts ...grpc.CallOption) (*MarkNotificationReadResponse, error)
	SuggestFoodCategory(ctx context.Context, in *SuggestFoodCategoryRequest, opts ...grpc.CallOption) (*SuggestFoodCategoryResponse, error)
}

type donationServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDonationServiceClient returns a client over cc.
func NewDonationServiceClient(cc grpc.ClientConnInterface) DonationServiceClient {
	return &donationServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *donationServiceClient) CreateProfile(ctx context.Context, in *CreateProfileRequest, opts ...grpc.CallOption) (*CreateProfileResponse, error) {
	return invoke[CreateProfileResponse](ctx, c.cc, DonationService_CreateProfile_FullMethodName, in, opts)
}

func (c *donationServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*GetProfileResponse, error) {
	return invoke[GetProfileResponse](ctx, c.cc, DonationService_GetProfile_FullMethodName, in, opts)
}

func (c *donationServiceClient) CreateDonation(ctx context.Context, in *CreateDonationRequest, opts ...grpc.CallOption) (*CreateDonationResponse, error) {
	return invoke[CreateDonationResponse](ctx, c.cc, DonationService_CreateDonation_FullMethodName, in, opts)
}

func (c *donationServiceClient) GetDonation(ctx context.Context, in *GetDonationRequest, opts ...grpc.CallOption) (*GetDonationResponse, error) {
	return invoke[GetDonationResponse](ctx, c.cc, DonationService_GetDonation_FullMethodName, in, opts)
}

func (c *donationServiceClient) ListDonations(ctx context.Context, in *ListDonationsRequest, opts ...grpc.CallOption) (*ListDonationsResponse, error) {
	return invoke[ListDonationsResponse](ctx, c.cc, DonationService_ListDonations_FullMethodName, in, opts)
}

func (c *donationServiceClient) AcceptDonation(ctx context.Context, in *AcceptDonationRequest, opts ...grpc.CallOption) (*AcceptDonationResponse, error) {
	return invoke[AcceptDonationResponse](ctx, c.cc, DonationService_AcceptDonation_FullMethodName, in, opts)
}

func (c *donationServiceClient) CompleteDonation(ctx context.Context, in *CompleteDonationRequest, opts ...grpc.CallOption) (*CompleteDonationResponse, error) {
	return invoke[CompleteDonationResponse](ctx, c.cc, DonationService_CompleteDonation_FullMethodName, in, opts)
}

func (c *donationServiceClient) ListNotifications(ctx context.Context, in *ListNotificationsRequest, opts ...grpc.CallOption) (*ListNotificationsResponse, error) {
	return invoke[ListNotificationsResponse](ctx, c.cc, DonationService_ListNotifications_FullMethodName, in, opts)
}

func (c *donationServiceClient) MarkNotificationRead(ctx context.Context, in *MarkNotificationReadRequest, opts ...grpc.CallOption) (*MarkNotificationReadResponse, error) {
	return invoke[MarkNotificationReadResponse](ctx, c.cc, DonationService_MarkNotificationRead_FullMethodName, in, opts)
}

func (c *donationServiceClient) SuggestFoodCategory(ctx context.Context, in *SuggestFoodCategoryRequest, opts ...grpc.CallOption) (*SuggestFoodCategoryResponse, error) {
	return invoke[SuggestFoodCategoryResponse](ctx, c.cc, DonationService_SuggestFoodCategory_FullMethodName, in, opts)
}

// DonationService_SubscribeDonationsClient is the client side of the change stream.
type DonationService_SubscribeDonationsClient interface {
	Recv() (*DonationEvent, error)
	grpc.ClientStream
}

type donationServiceSubscribeDonationsClient struct {
	grpc.ClientStream
}

func (x *donationServiceSubscribeDonationsClient) Recv() (*DonationEvent, error) {
	m := new(DonationEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *donationServiceClient) SubscribeDonations(ctx context.Context, in *SubscribeDonationsRequest, opts ...grpc.CallOption) (DonationService_SubscribeDonationsClient, error) {
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	stream, err := c.cc.NewStream(ctx, &DonationService_ServiceDesc.Streams[0], DonationService_SubscribeDonations_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &donationServiceSubscribeDonationsClient{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// Package grpcauthctx moves caller identity between gRPC metadata and
// request context.
package grpcauthctx

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/foodshare/internal/platform/errors"
	"github.com/louisbranch/foodshare/internal/platform/requestctx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	// AuthorizationHeader carries "Bearer <token>".
	AuthorizationHeader = "authorization"
	// UserIDHeader carries a raw user id for development servers.
	UserIDHeader = "x-foodshare-user-id"
	// LocaleHeader carries the caller's preferred locale for error messages.
	LocaleHeader = "x-foodshare-locale"
)

// Authenticator resolves the caller from incoming metadata. An empty id with
// a nil error means the call is anonymous.
type Authenticator interface {
	Authenticate(ctx context.Context, md metadata.MD) (string, error)
}

// WithUserID returns a context with user-id gRPC metadata when userID is non-empty.
func WithUserID(ctx context.Context, userID string) context.Context {
	return appendOutgoing(ctx, UserIDHeader, userID)
}

// WithBearerToken returns a context with bearer authorization metadata when
// token is non-empty.
func WithBearerToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return appendOutgoing(ctx, AuthorizationHeader, "Bearer "+token)
}

// WithLocale returns a context with locale metadata when locale is non-empty.
func WithLocale(ctx context.Context, locale string) context.Context {
	return appendOutgoing(ctx, LocaleHeader, locale)
}

func appendOutgoing(ctx context.Context, key string, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, key, value)
}

// IncomingLocale returns the locale the caller asked for, or "".
func IncomingLocale(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(LocaleHeader)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// UnaryServerInterceptor authenticates unary calls and stores the identity
// with requestctx.
func UnaryServerInterceptor(auth Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := authenticate(ctx, auth)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor authenticates streaming calls.
func StreamServerInterceptor(auth Authenticator) grpc.StreamServerInterceptor {
	return func(srv any, stream grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := authenticate(stream.Context(), auth)
		if err != nil {
			return err
		}
		return handler(srv, &identityStream{ServerStream: stream, ctx: ctx})
	}
}

func authenticate(ctx context.Context, auth Authenticator) (context.Context, error) {
	if auth == nil {
		return ctx, nil
	}
	md, _ := metadata.FromIncomingContext(ctx)
	userID, err := auth.Authenticate(ctx, md)
	if err != nil {
		return ctx, apperrors.ToGRPC(err, IncomingLocale(ctx))
	}
	return requestctx.WithUserID(ctx, userID), nil
}

type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identityStream) Context() context.Context {
	return s.ctx
}

// BearerUnaryClientInterceptor attaches token to every unary call.
func BearerUnaryClientInterceptor(token string) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req any,
		reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		return invoker(WithBearerToken(ctx, token), method, req, reply, cc, opts...)
	}
}

// BearerStreamClientInterceptor attaches token to every stream.
func BearerStreamClientInterceptor(token string) grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		return streamer(WithBearerToken(ctx, token), desc, cc, method, opts...)
	}
}

package user

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	pb "github.com/MikeMC777/storefront-ecom/internal/userpb"
)

// Service serves the UserDirectory gRPC API over a Repository.
type Service struct {
	pb.UnimplementedUserDirectoryServer
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LookupByEmail
func (s *Service) LookupByEmail(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if NormalizeEmail(in.GetValue()) == "" {
		return nil, status.Error(codes.InvalidArgument, "email is required")
	}
	u, err := s.repo.GetByEmail(ctx, in.GetValue())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, status.Error(codes.NotFound, "user not found")
		}
		return nil, status.Errorf(codes.Internal, "lookup error: %v", err)
	}
	return wrapperspb.String(u.ID), nil
}

// ValidateUser (exists by id)
func (s *Service) ValidateUser(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	_, err := s.repo.GetByID(ctx, in.GetValue())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return wrapperspb.Bool(false), nil
		}
		return nil, status.Errorf(codes.Internal, "validate error: %v", err)
	}
	return wrapperspb.Bool(true), nil
}

// LocalDirectory adapts a Service to the client interface without a network
// hop, for deployments that run the storefront without a separate user-service.
type LocalDirectory struct{ svc *Service }

func NewLocalDirectory(repo Repository) *LocalDirectory {
	return &LocalDirectory{svc: NewService(repo)}
}

func (d *LocalDirectory) LookupByEmail(ctx context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return d.svc.LookupByEmail(ctx, in)
}

func (d *LocalDirectory) ValidateUser(ctx context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	return d.svc.ValidateUser(ctx, in)
}

var _ pb.UserDirectoryClient = (*LocalDirectory)(nil)

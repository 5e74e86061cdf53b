// Package userpb defines the UserDirectory gRPC contract.
//
// Requests and responses use the protobuf well-known wrapper types, so the
// service needs no generated message code:
//
//	service UserDirectory {
//	  rpc LookupByEmail(google.protobuf.StringValue) returns (google.protobuf.StringValue);
//	  rpc ValidateUser(google.protobuf.StringValue) returns (google.protobuf.BoolValue);
//	}
package userpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName                 = "storefront.user.v1.UserDirectory"
	LookupByEmailFullMethodName = "/" + ServiceName + "/LookupByEmail"
	ValidateUserFullMethodName  = "/" + ServiceName + "/ValidateUser"
)

// UserDirectoryClient resolves storefront users.
type UserDirectoryClient interface {
	// LookupByEmail returns the user id for an email, NotFound otherwise.
	LookupByEmail(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	// ValidateUser reports whether a user id exists.
	ValidateUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
}

type userDirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewUserDirectoryClient(cc grpc.ClientConnInterface) UserDirectoryClient {
	return &userDirectoryClient{cc}
}

func (c *userDirectoryClient) LookupByEmail(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, LookupByEmailFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *userDirectoryClient) ValidateUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, ValidateUserFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// UserDirectoryServer is the server API for UserDirectory.
type UserDirectoryServer interface {
	LookupByEmail(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	ValidateUser(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	mustEmbedUnimplementedUserDirectoryServer()
}

// UnimplementedUserDirectoryServer must be embedded for forward compatibility.
type UnimplementedUserDirectoryServer struct{}

func (UnimplementedUserDirectoryServer) LookupByEmail(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method LookupByEmail not implemented")
}

func (UnimplementedUserDirectoryServer) ValidateUser(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ValidateUser not implemented")
}

func (UnimplementedUserDirectoryServer) mustEmbedUnimplementedUserDirectoryServer() {}

func RegisterUserDirectoryServer(s grpc.ServiceRegistrar, srv UserDirectoryServer) {
	s.RegisterService(&UserDirectory_ServiceDesc, srv)
}

func _UserDirectory_LookupByEmail_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserDirectoryServer).LookupByEmail(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LookupByEmailFullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UserDirectoryServer).LookupByEmail(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _UserDirectory_ValidateUser_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserDirectoryServer).ValidateUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateUserFullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UserDirectoryServer).ValidateUser(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// UserDirectory_ServiceDesc is the grpc.ServiceDesc for UserDirectory.
var UserDirectory_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserDirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LookupByEmail", Handler: _UserDirectory_LookupByEmail_Handler},
		{MethodName: "ValidateUser", Handler: _UserDirectory_ValidateUser_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "userpb/directory.proto",
}

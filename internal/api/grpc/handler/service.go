package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the accounts service.
const ServiceName = "gatekeeper.Accounts"

// Full method names of the accounts service.
const (
	MethodLogin              = "/" + ServiceName + "/Login"
	MethodAddUser            = "/" + ServiceName + "/AddUser"
	MethodChangePassword     = "/" + ServiceName + "/ChangePassword"
	MethodDeleteUser         = "/" + ServiceName + "/DeleteUser"
	MethodListLockedAccounts = "/" + ServiceName + "/ListLockedAccounts"
)

// AccountsServer is the server API of the accounts service. Requests and
// responses are google.protobuf.Struct messages.
type AccountsServer interface {
	Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AddUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ChangePassword(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListLockedAccounts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(AccountsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountsServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AccountsServiceDesc describes the accounts service for grpc.ServiceRegistrar.
var AccountsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, AccountsServer.Login)},
		{MethodName: "AddUser", Handler: unaryHandler(MethodAddUser, AccountsServer.AddUser)},
		{MethodName: "ChangePassword", Handler: unaryHandler(MethodChangePassword, AccountsServer.ChangePassword)},
		{MethodName: "DeleteUser", Handler: unaryHandler(MethodDeleteUser, AccountsServer.DeleteUser)},
		{MethodName: "ListLockedAccounts", Handler: unaryHandler(MethodListLockedAccounts, AccountsServer.ListLockedAccounts)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gatekeeper/accounts.proto",
}

// RegisterAccountsServer registers srv on s.
func RegisterAccountsServer(s grpc.ServiceRegistrar, srv AccountsServer) {
	s.RegisterService(&AccountsServiceDesc, srv)
}

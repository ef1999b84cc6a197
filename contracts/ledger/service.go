package ledgerapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "lending.v1.LedgerService"

// LedgerServiceServer is the server API for the ledger service
type LedgerServiceServer interface {
	AddBook(context.Context, *AddBookRequest) (*AddBookResponse, error)
	BorrowBook(context.Context, *BorrowBookRequest) (*BorrowBookResponse, error)
	ReturnBook(context.Context, *ReturnBookRequest) (*ReturnBookResponse, error)
	GetAllAvailableBooks(context.Context, *GetAllAvailableBooksRequest) (*GetAllAvailableBooksResponse, error)
	GetAllAddressesThatBorrowedBook(context.Context, *GetAllAddressesThatBorrowedBookRequest) (*GetAllAddressesThatBorrowedBookResponse, error)
	GetBook(context.Context, *GetBookRequest) (*GetBookResponse, error)
	IsBorrowed(context.Context, *IsBorrowedRequest) (*IsBorrowedResponse, error)
	GetOwner(context.Context, *GetOwnerRequest) (*GetOwnerResponse, error)
}

// UnimplementedLedgerServiceServer can be embedded to satisfy LedgerServiceServer
type UnimplementedLedgerServiceServer struct{}

func (UnimplementedLedgerServiceServer) AddBook(context.Context, *AddBookRequest) (*AddBookResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddBook not implemented")
}

func (UnimplementedLedgerServiceServer) BorrowBook(context.Context, *BorrowBookRequest) (*BorrowBookResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BorrowBook not implemented")
}

func (UnimplementedLedgerServiceServer) ReturnBook(context.Context, *ReturnBookRequest) (*ReturnBookResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReturnBook not implemented")
}

func (UnimplementedLedgerServiceServer) GetAllAvailableBooks(context.Context, *GetAllAvailableBooksRequest) (*GetAllAvailableBooksResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAllAvailableBooks not implemented")
}

func (UnimplementedLedgerServiceServer) GetAllAddressesThatBorrowedBook(context.Context, *GetAllAddressesThatBorrowedBookRequest) (*GetAllAddressesThatBorrowedBookResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAllAddressesThatBorrowedBook not implemented")
}

func (UnimplementedLedgerServiceServer) GetBook(context.Context, *GetBookRequest) (*GetBookResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBook not implemented")
}

func (UnimplementedLedgerServiceServer) IsBorrowed(context.Context, *IsBorrowedRequest) (*IsBorrowedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method IsBorrowed not implemented")
}

func (UnimplementedLedgerServiceServer) GetOwner(context.Context, *GetOwnerRequest) (*GetOwnerResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOwner not implemented")
}

// RegisterLedgerServiceServer registers srv with s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerService_ServiceDesc, srv)
}

func _LedgerService_AddBook_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AddBookRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).AddBook(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/AddBook",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LedgerServiceServer).AddBook(ctx, req.(*AddBookRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _LedgerService_BorrowBook_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BorrowBookRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).BorrowBook(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/BorrowBook",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LedgerServiceServer).BorrowBook(ctx, req.(*BorrowBookRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _LedgerService_ReturnBook_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReturnBookRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).ReturnBook(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/ReturnBook",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LedgerServiceServer).ReturnBook(ctx, req.(*ReturnBookRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _LedgerService_GetAllAvailableBooks_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAllAvailableBooksRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).GetAllAvailableBooks(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/GetAllAvailableBooks",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LedgerServiceServer).GetAllAvailableBooks(ctx, req.(*GetAllAvailableBooksRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _LedgerService_GetAllAddressesThatBorrowedBook_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAllAddressesThatBorrowedBookRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).GetAllAddressesThatBorrowedBook(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/GetAllAddressesThatBorrowedBook",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LedgerServiceServer).GetAllAddressesThatBorrowedBook(ctx, req.(*GetAllAddressesThatBorrowedBookRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _LedgerService_GetBook_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetBookRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).GetBook(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/GetBook",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LedgerServiceServer).GetBook(ctx, req.(*GetBookRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _LedgerService_IsBorrowed_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(IsBorrowedRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).IsBorrowed(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/IsBorrowed",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LedgerServiceServer).IsBorrowed(ctx, req.(*IsBorrowedRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _LedgerService_GetOwner_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetOwnerRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).GetOwner(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/GetOwner",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LedgerServiceServer).GetOwner(ctx, req.(*GetOwnerRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// LedgerService_ServiceDesc describes the ledger service for grpc.Server
var LedgerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddBook",
			Handler:    _LedgerService_AddBook_Handler,
		},
		{
			MethodName: "BorrowBook",
			Handler:    _LedgerService_BorrowBook_Handler,
		},
		{
			MethodName: "ReturnBook",
			Handler:    _LedgerService_ReturnBook_Handler,
		},
		{
			MethodName: "GetAllAvailableBooks",
			Handler:    _LedgerService_GetAllAvailableBooks_Handler,
		},
		{
			MethodName: "GetAllAddressesThatBorrowedBook",
			Handler:    _LedgerService_GetAllAddressesThatBorrowedBook_Handler,
		},
		{
			MethodName: "GetBook",
			Handler:    _LedgerService_GetBook_Handler,
		},
		{
			MethodName: "IsBorrowed",
			Handler:    _LedgerService_IsBorrowed_Handler,
		},
		{
			MethodName: "GetOwner",
			Handler:    _LedgerService_GetOwner_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lending/v1/ledger.json",
}

// LedgerServiceClient is the client API for the ledger service
type LedgerServiceClient interface {
	AddBook(ctx context.Context, in *AddBookRequest, opts ...grpc.CallOption) (*AddBookResponse, error)
	BorrowBook(ctx context.Context, in *BorrowBookRequest, opts ...grpc.CallOption) (*BorrowBookResponse, error)
	ReturnBook(ctx context.Context, in *ReturnBookRequest, opts ...grpc.CallOption) (*ReturnBookResponse, error)
	GetAllAvailableBooks(ctx context.Context, in *GetAllAvailableBooksRequest, opts ...grpc.CallOption) (*GetAllAvailableBooksResponse, error)
	GetAllAddressesThatBorrowedBook(ctx context.Context, in *GetAllAddressesThatBorrowedBookRequest, opts ...grpc.CallOption) (*GetAllAddressesThatBorrowedBookResponse, error)
	GetBook(ctx context.Context, in *GetBookRequest, opts ...grpc.CallOption) (*GetBookResponse, error)
	IsBorrowed(ctx context.Context, in *IsBorrowedRequest, opts ...grpc.CallOption) (*IsBorrowedResponse, error)
	GetOwner(ctx context.Context, in *GetOwnerRequest, opts ...grpc.CallOption) (*GetOwnerResponse, error)
}

type ledgerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLedgerServiceClient returns a client that encodes calls with the JSON codec
func NewLedgerServiceClient(cc grpc.ClientConnInterface) LedgerServiceClient {
	return &ledgerServiceClient{cc}
}

func (c *ledgerServiceClient) AddBook(ctx context.Context, in *AddBookRequest, opts ...grpc.CallOption) (*AddBookResponse, error) {
	out := new(AddBookResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/AddBook", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) BorrowBook(ctx context.Context, in *BorrowBookRequest, opts ...grpc.CallOption) (*BorrowBookResponse, error) {
	out := new(BorrowBookResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/BorrowBook", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) ReturnBook(ctx context.Context, in *ReturnBookRequest, opts ...grpc.CallOption) (*ReturnBookResponse, error) {
	out := new(ReturnBookResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/ReturnBook", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) GetAllAvailableBooks(ctx context.Context, in *GetAllAvailableBooksRequest, opts ...grpc.CallOption) (*GetAllAvailableBooksResponse, error) {
	out := new(GetAllAvailableBooksResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetAllAvailableBooks", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) GetAllAddressesThatBorrowedBook(ctx context.Context, in *GetAllAddressesThatBorrowedBookRequest, opts ...grpc.CallOption) (*GetAllAddressesThatBorrowedBookResponse, error) {
	out := new(GetAllAddressesThatBorrowedBookResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetAllAddressesThatBorrowedBook", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) GetBook(ctx context.Context, in *GetBookRequest, opts ...grpc.CallOption) (*GetBookResponse, error) {
	out := new(GetBookResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetBook", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) IsBorrowed(ctx context.Context, in *IsBorrowedRequest, opts ...grpc.CallOption) (*IsBorrowedResponse, error) {
	out := new(IsBorrowedResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/IsBorrowed", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) GetOwner(ctx context.Context, in *GetOwnerRequest, opts ...grpc.CallOption) (*GetOwnerResponse, error) {
	out := new(GetOwnerResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetOwner", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

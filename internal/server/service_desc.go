package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "tbcparser.v1.ReceiptParser"

const (
	MethodParseReceipt       = "/" + ServiceName + "/ParseReceipt"
	MethodBatchParse         = "/" + ServiceName + "/BatchParse"
	MethodStoreReceipt       = "/" + ServiceName + "/StoreReceipt"
	MethodReloadDictionary   = "/" + ServiceName + "/ReloadDictionary"
	MethodLookupOperator     = "/" + ServiceName + "/LookupOperator"
	MethodExportTransactions = "/" + ServiceName + "/ExportTransactions"
)

// ReceiptParserServer is the server API for the ReceiptParser service. Payloads are
// google.protobuf.Struct documents so the wire contract follows the JSON field names.
type ReceiptParserServer interface {
	ParseReceipt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BatchParse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StoreReceipt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReloadDictionary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LookupOperator(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportTransactions(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

func RegisterReceiptParserServer(s grpc.ServiceRegistrar, srv ReceiptParserServer) {
	s.RegisterService(&ReceiptParser_ServiceDesc, srv)
}

func unaryHandler[Resp any](
	fullMethod string,
	call func(ReceiptParserServer, context.Context, *structpb.Struct) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReceiptParserServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReceiptParserServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ReceiptParser_ServiceDesc is the grpc.ServiceDesc for the ReceiptParser service.
var ReceiptParser_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReceiptParserServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ParseReceipt", Handler: unaryHandler(MethodParseReceipt, ReceiptParserServer.ParseReceipt)},
		{MethodName: "BatchParse", Handler: unaryHandler(MethodBatchParse, ReceiptParserServer.BatchParse)},
		{MethodName: "StoreReceipt", Handler: unaryHandler(MethodStoreReceipt, ReceiptParserServer.StoreReceipt)},
		{MethodName: "ReloadDictionary", Handler: unaryHandler(MethodReloadDictionary, ReceiptParserServer.ReloadDictionary)},
		{MethodName: "LookupOperator", Handler: unaryHandler(MethodLookupOperator, ReceiptParserServer.LookupOperator)},
		{MethodName: "ExportTransactions", Handler: unaryHandler(MethodExportTransactions, ReceiptParserServer.ExportTransactions)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tbcparser/v1/receipt_parser.proto",
}

// ReceiptParserClient is the client API for the ReceiptParser service.
type ReceiptParserClient struct {
	cc grpc.ClientConnInterface
}

func NewReceiptParserClient(cc grpc.ClientConnInterface) *ReceiptParserClient {
	return &ReceiptParserClient{cc: cc}
}

func (c *ReceiptParserClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReceiptParserClient) ParseReceipt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodParseReceipt, in, opts...)
}

func (c *ReceiptParserClient) BatchParse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodBatchParse, in, opts...)
}

func (c *ReceiptParserClient) StoreReceipt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStoreReceipt, in, opts...)
}

func (c *ReceiptParserClient) ReloadDictionary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodReloadDictionary, in, opts...)
}

func (c *ReceiptParserClient) LookupOperator(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodLookupOperator, in, opts...)
}

func (c *ReceiptParserClient) ExportTransactions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, MethodExportTransactions, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

package puzzlev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "puzzle.v1.PuzzleService"

const (
	PuzzleService_CreateTask_FullMethodName    = "/puzzle.v1.PuzzleService/CreateTask"
	PuzzleService_UpdateTask_FullMethodName    = "/puzzle.v1.PuzzleService/UpdateTask"
	PuzzleService_AttachImage_FullMethodName   = "/puzzle.v1.PuzzleService/AttachImage"
	PuzzleService_PublishTask_FullMethodName   = "/puzzle.v1.PuzzleService/PublishTask"
	PuzzleService_FeatureTask_FullMethodName   = "/puzzle.v1.PuzzleService/FeatureTask"
	PuzzleService_DeleteTask_FullMethodName    = "/puzzle.v1.PuzzleService/DeleteTask"
	PuzzleService_GetTask_FullMethodName       = "/puzzle.v1.PuzzleService/GetTask"
	PuzzleService_ListTasks_FullMethodName     = "/puzzle.v1.PuzzleService/ListTasks"
	PuzzleService_SubmitAttempt_FullMethodName = "/puzzle.v1.PuzzleService/SubmitAttempt"
	PuzzleService_IssueReward_FullMethodName   = "/puzzle.v1.PuzzleService/IssueReward"
	PuzzleService_RedeemReward_FullMethodName  = "/puzzle.v1.PuzzleService/RedeemReward"
	PuzzleService_ListRewards_FullMethodName   = "/puzzle.v1.PuzzleService/ListRewards"
)

type PuzzleServiceServer interface {
	CreateTask(context.Context, *CreateTaskRequest) (*TaskResponse, error)
	UpdateTask(context.Context, *UpdateTaskRequest) (*TaskResponse, error)
	AttachImage(context.Context, *AttachImageRequest) (*TaskResponse, error)
	PublishTask(context.Context, *PublishTaskRequest) (*TaskResponse, error)
	FeatureTask(context.Context, *FeatureTaskRequest) (*FeatureTaskResponse, error)
	DeleteTask(context.Context, *DeleteTaskRequest) (*DeleteTaskResponse, error)
	GetTask(context.Context, *GetTaskRequest) (*TaskResponse, error)
	ListTasks(context.Context, *ListTasksRequest) (*ListTasksResponse, error)
	SubmitAttempt(context.Context, *SubmitAttemptRequest) (*SubmitAttemptResponse, error)
	IssueReward(context.Context, *IssueRewardRequest) (*RewardResponse, error)
	RedeemReward(context.Context, *RedeemRewardRequest) (*RedeemRewardResponse, error)
	ListRewards(context.Context, *ListRewardsRequest) (*ListRewardsResponse, error)
}

// UnimplementedPuzzleServiceServer answers Unimplemented for every method.
// Embed it to stay forward compatible.
type UnimplementedPuzzleServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedPuzzleServiceServer) CreateTask(context.Context, *CreateTaskRequest) (*TaskResponse, error) {
	return nil, unimplemented("CreateTask")
}
func (UnimplementedPuzzleServiceServer) UpdateTask(context.Context, *UpdateTaskRequest) (*TaskResponse, error) {
	return nil, unimplemented("UpdateTask")
}
func (UnimplementedPuzzleServiceServer) AttachImage(context.Context, *AttachImageRequest) (*TaskResponse, error) {
	return nil, unimplemented("AttachImage")
}
func (UnimplementedPuzzleServiceServer) PublishTask(context.Context, *PublishTaskRequest) (*TaskResponse, error) {
	return nil, unimplemented("PublishTask")
}
func (UnimplementedPuzzleServiceServer) FeatureTask(context.Context, *FeatureTaskRequest) (*FeatureTaskResponse, error) {
	return nil, unimplemented("FeatureTask")
}
func (UnimplementedPuzzleServiceServer) DeleteTask(context.Context, *DeleteTaskRequest) (*DeleteTaskResponse, error) {
	return nil, unimplemented("DeleteTask")
}
func (UnimplementedPuzzleServiceServer) GetTask(context.Context, *GetTaskRequest) (*TaskResponse, error) {
	return nil, unimplemented("GetTask")
}
func (UnimplementedPuzzleServiceServer) ListTasks(context.Context, *ListTasksRequest) (*ListTasksResponse, error) {
	return nil, unimplemented("ListTasks")
}
func (UnimplementedPuzzleServiceServer) SubmitAttempt(context.Context, *SubmitAttemptRequest) (*SubmitAttemptResponse, error) {
	return nil, unimplemented("SubmitAttempt")
}
func (UnimplementedPuzzleServiceServer) IssueReward(context.Context, *IssueRewardRequest) (*RewardResponse, error) {
	return nil, unimplemented("IssueReward")
}
func (UnimplementedPuzzleServiceServer) RedeemReward(context.Context, *RedeemRewardRequest) (*RedeemRewardResponse, error) {
	return nil, unimplemented("RedeemReward")
}
func (UnimplementedPuzzleServiceServer) ListRewards(context.Context, *ListRewardsRequest) (*ListRewardsResponse, error) {
	return nil, unimplemented("ListRewards")
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(PuzzleServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PuzzleServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PuzzleServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var PuzzleService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PuzzleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateTask", Handler: unaryHandler(PuzzleService_CreateTask_FullMethodName, PuzzleServiceServer.CreateTask)},
		{MethodName: "UpdateTask", Handler: unaryHandler(PuzzleService_UpdateTask_FullMethodName, PuzzleServiceServer.UpdateTask)},
		{MethodName: "AttachImage", Handler: unaryHandler(PuzzleService_AttachImage_FullMethodName, PuzzleServiceServer.AttachImage)},
		{MethodName: "PublishTask", Handler: unaryHandler(PuzzleService_PublishTask_FullMethodName, PuzzleServiceServer.PublishTask)},
		{MethodName: "FeatureTask", Handler: unaryHandler(PuzzleService_FeatureTask_FullMethodName, PuzzleServiceServer.FeatureTask)},
		{MethodName: "DeleteTask", Handler: unaryHandler(PuzzleService_DeleteTask_FullMethodName, PuzzleServiceServer.DeleteTask)},
		{MethodName: "GetTask", Handler: unaryHandler(PuzzleService_GetTask_FullMethodName, PuzzleServiceServer.GetTask)},
		{MethodName: "ListTasks", Handler: unaryHandler(PuzzleService_ListTasks_FullMethodName, PuzzleServiceServer.ListTasks)},
		{MethodName: "SubmitAttempt", Handler: unaryHandler(PuzzleService_SubmitAttempt_FullMethodName, PuzzleServiceServer.SubmitAttempt)},
		{MethodName: "IssueReward", Handler: unaryHandler(PuzzleService_IssueReward_FullMethodName, PuzzleServiceServer.IssueReward)},
		{MethodName: "RedeemReward", Handler: unaryHandler(PuzzleService_RedeemReward_FullMethodName, PuzzleServiceServer.RedeemReward)},
		{MethodName: "ListRewards", Handler: unaryHandler(PuzzleService_ListRewards_FullMethodName, PuzzleServiceServer.ListRewards)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "puzzle/v1/puzzle.proto",
}

func RegisterPuzzleServiceServer(s grpc.ServiceRegistrar, srv PuzzleServiceServer) {
	s.RegisterService(&PuzzleService_ServiceDesc, srv)
}

type PuzzleServiceClient interface {
	CreateTask(ctx context.Context, in *CreateTaskRequest, opts ...grpc.CallOption) (*TaskResponse, error)
	UpdateTask(ctx context.Context, in *UpdateTaskRequest, opts ...grpc.CallOption) (*TaskResponse, error)
	AttachImage(ctx context.Context, in *AttachImageRequest, opts ...grpc.CallOption) (*TaskResponse, error)
	PublishTask(ctx context.Context, in *PublishTaskRequest, opts ...grpc.CallOption) (*TaskResponse, error)
	FeatureTask(ctx context.Context, in *FeatureTaskRequest, opts ...grpc.CallOption) (*FeatureTaskResponse, error)
	DeleteTask(ctx context.Context, in *DeleteTaskRequest, opts ...grpc.CallOption) (*DeleteTaskResponse, error)
	GetTask(ctx context.Context, in *GetTaskRequest, opts ...grpc.CallOption) (*TaskResponse, error)
	ListTasks(ctx context.Context, in *ListTasksRequest, opts ...grpc.CallOption) (*ListTasksResponse, error)
	SubmitAttempt(ctx context.Context, in *SubmitAttemptRequest, opts ...grpc.CallOption) (*SubmitAttemptResponse, error)
	IssueReward(ctx context.Context, in *IssueRewardRequest, opts ...grpc.CallOption) (*RewardResponse, error)
	RedeemReward(ctx context.Context, in *RedeemRewardRequest, opts ...grpc.CallOption) (*RedeemRewardResponse, error)
	ListRewards(ctx context.Context, in *ListRewardsRequest, opts ...grpc.CallOption) (*ListRewardsResponse, error)
}

type puzzleServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPuzzleServiceClient(cc grpc.ClientConnInterface) PuzzleServiceClient {
	return &puzzleServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *puzzleServiceClient) CreateTask(ctx context.Context, in *CreateTaskRequest, opts ...grpc.CallOption) (*TaskResponse, error) {
	return invoke[TaskResponse](ctx, c.cc, PuzzleService_CreateTask_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) UpdateTask(ctx context.Context, in *UpdateTaskRequest, opts ...grpc.CallOption) (*TaskResponse, error) {
	return invoke[TaskResponse](ctx, c.cc, PuzzleService_UpdateTask_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) AttachImage(ctx context.Context, in *AttachImageRequest, opts ...grpc.CallOption) (*TaskResponse, error) {
	return invoke[TaskResponse](ctx, c.cc, PuzzleService_AttachImage_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) PublishTask(ctx context.Context, in *PublishTaskRequest, opts ...grpc.CallOption) (*TaskResponse, error) {
	return invoke[TaskResponse](ctx, c.cc, PuzzleService_PublishTask_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) FeatureTask(ctx context.Context, in *FeatureTaskRequest, opts ...grpc.CallOption) (*FeatureTaskResponse, error) {
	return invoke[FeatureTaskResponse](ctx, c.cc, PuzzleService_FeatureTask_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) DeleteTask(ctx context.Context, in *DeleteTaskRequest, opts ...grpc.CallOption) (*DeleteTaskResponse, error) {
	return invoke[DeleteTaskResponse](ctx, c.cc, PuzzleService_DeleteTask_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) GetTask(ctx context.Context, in *GetTaskRequest, opts ...grpc.CallOption) (*TaskResponse, error) {
	return invoke[TaskResponse](ctx, c.cc, PuzzleService_GetTask_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) ListTasks(ctx context.Context, in *ListTasksRequest, opts ...grpc.CallOption) (*ListTasksResponse, error) {
	return invoke[ListTasksResponse](ctx, c.cc, PuzzleService_ListTasks_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) SubmitAttempt(ctx context.Context, in *SubmitAttemptRequest, opts ...grpc.CallOption) (*SubmitAttemptResponse, error) {
	return invoke[SubmitAttemptResponse](ctx, c.cc, PuzzleService_SubmitAttempt_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) IssueReward(ctx context.Context, in *IssueRewardRequest, opts ...grpc.CallOption) (*RewardResponse, error) {
	return invoke[RewardResponse](ctx, c.cc, PuzzleService_IssueReward_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) RedeemReward(ctx context.Context, in *RedeemRewardRequest, opts ...grpc.CallOption) (*RedeemRewardResponse, error) {
	return invoke[RedeemRewardResponse](ctx, c.cc, PuzzleService_RedeemReward_FullMethodName, in, opts)
}

func (c *puzzleServiceClient) ListRewards(ctx context.Context, in *ListRewardsRequest, opts ...grpc.CallOption) (*ListRewardsResponse, error) {
	return invoke[ListRewardsResponse](ctx, c.cc, PuzzleService_ListRewards_FullMethodName, in, opts)
}

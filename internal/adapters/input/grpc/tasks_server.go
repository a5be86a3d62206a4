package grpc

import (
	"context"

	"puzzle-rewards/internal/mapper"
	puzzlev1 "puzzle-rewards/pkg/grpc/puzzlev1"

	"go.uber.org/zap"
)

func (s *PuzzleServer) CreateTask(ctx context.Context, req *puzzlev1.CreateTaskRequest) (*puzzlev1.TaskResponse, error) {
	s.log.Info("grpc: create task", zap.String("company_id", req.GetCompanyId()), zap.Bool("with_image", req.GetImage() != nil))
	if err := s.validate("create task", req); err != nil {
		return nil, err
	}

	in, err := mapper.TaskInput(req)
	if err != nil {
		return nil, s.fail("create task", err)
	}
	task, err := s.tasks.CreateTask(ctx, req.GetCompanyId(), in, mapper.Image(req.GetImage()))
	if err != nil {
		return nil, s.fail("create task", err)
	}

	s.log.Info("grpc: create task done", zap.String("task_id", task.ID))
	return &puzzlev1.TaskResponse{Task: mapper.Task(task)}, nil
}

func (s *PuzzleServer) UpdateTask(ctx context.Context, req *puzzlev1.UpdateTaskRequest) (*puzzlev1.TaskResponse, error) {
	s.log.Info("grpc: update task", zap.String("task_id", req.GetTaskId()), zap.String("company_id", req.GetCompanyId()))
	if err := s.validate("update task", req); err != nil {
		return nil, err
	}

	patch, err := mapper.TaskPatch(req)
	if err != nil {
		return nil, s.fail("update task", err)
	}
	task, err := s.tasks.UpdateTask(ctx, req.GetTaskId(), req.GetCompanyId(), patch)
	if err != nil {
		return nil, s.fail("update task", err)
	}

	s.log.Info("grpc: update task done", zap.String("task_id", task.ID))
	return &puzzlev1.TaskResponse{Task: mapper.Task(task)}, nil
}

func (s *PuzzleServer) AttachImage(ctx context.Context, req *puzzlev1.AttachImageRequest) (*puzzlev1.TaskResponse, error) {
	s.log.Info("grpc: attach image", zap.String("task_id", req.GetTaskId()), zap.Int("bytes", len(req.GetImage().GetData())))
	if err := s.validate("attach image", req); err != nil {
		return nil, err
	}

	task, err := s.tasks.AttachImage(ctx, req.GetTaskId(), req.GetCompanyId(), *mapper.Image(req.GetImage()))
	if err != nil {
		return nil, s.fail("attach image", err)
	}

	s.log.Info("grpc: attach image done", zap.String("task_id", task.ID))
	return &puzzlev1.TaskResponse{Task: mapper.Task(task)}, nil
}

func (s *PuzzleServer) PublishTask(ctx context.Context, req *puzzlev1.PublishTaskRequest) (*puzzlev1.TaskResponse, error) {
	s.log.Info("grpc: publish task", zap.String("task_id", req.GetTaskId()))
	if err := s.validate("publish task", req); err != nil {
		return nil, err
	}

	task, err := s.tasks.PublishTask(ctx, req.GetTaskId(), req.GetCompanyId())
	if err != nil {
		return nil, s.fail("publish task", err)
	}

	s.log.Info("grpc: publish task done", zap.String("task_id", task.ID))
	return &puzzlev1.TaskResponse{Task: mapper.Task(task)}, nil
}

func (s *PuzzleServer) FeatureTask(ctx context.Context, req *puzzlev1.FeatureTaskRequest) (*puzzlev1.FeatureTaskResponse, error) {
	s.log.Info("grpc: feature task", zap.String("task_id", req.GetTaskId()), zap.Int32("days", req.GetDurationDays()))
	if err := s.validate("feature task", req); err != nil {
		return nil, err
	}

	res, err := s.tasks.FeatureTask(ctx, req.GetTaskId(), req.GetCompanyId(), int(req.GetDurationDays()))
	if err != nil {
		return nil, s.fail("feature task", err)
	}

	s.log.Info("grpc: feature task done", zap.String("task_id", res.Task.ID), zap.String("cost", res.Cost.String()))
	return &puzzlev1.FeatureTaskResponse{
		Task: mapper.Task(&res.Task),
		Cost: res.Cost.StringFixed(2),
	}, nil
}

func (s *PuzzleServer) DeleteTask(ctx context.Context, req *puzzlev1.DeleteTaskRequest) (*puzzlev1.DeleteTaskResponse, error) {
	s.log.Info("grpc: delete task", zap.String("task_id", req.GetTaskId()))
	if err := s.validate("delete task", req); err != nil {
		return nil, err
	}

	if err := s.tasks.DeleteTask(ctx, req.GetTaskId(), req.GetCompanyId()); err != nil {
		return nil, s.fail("delete task", err)
	}

	s.log.Info("grpc: delete task done", zap.String("task_id", req.GetTaskId()))
	return &puzzlev1.DeleteTaskResponse{Deleted: true}, nil
}

func (s *PuzzleServer) GetTask(ctx context.Context, req *puzzlev1.GetTaskRequest) (*puzzlev1.TaskResponse, error) {
	s.log.Debug("grpc: get task", zap.String("task_id", req.GetTaskId()))
	if err := s.validate("get task", req); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetTask(ctx, req.GetTaskId())
	if err != nil {
		return nil, s.fail("get task", err)
	}
	return &puzzlev1.TaskResponse{Task: mapper.Task(task)}, nil
}

func (s *PuzzleServer) ListTasks(ctx context.Context, req *puzzlev1.ListTasksRequest) (*puzzlev1.ListTasksResponse, error) {
	s.log.Debug("grpc: list tasks")
	if err := s.validate("list tasks", req); err != nil {
		return nil, err
	}

	page, err := s.tasks.ListTasks(ctx, mapper.TaskFilter(req))
	if err != nil {
		return nil, s.fail("list tasks", err)
	}

	resp := mapper.TaskPage(page)
	s.log.Debug("grpc: list tasks done", zap.Int("tasks", len(resp.Tasks)), zap.Int32("total", resp.Total))
	return resp, nil
}

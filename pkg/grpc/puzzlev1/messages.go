package puzzlev1

import "google.golang.org/protobuf/types/known/timestamppb"

type PuzzlePiece struct {
	Index int32  `json:"index"`
	Hash  string `json:"hash"`
}

// Puzzle is the player-facing puzzle. It never carries the solution.
type Puzzle struct {
	GridSize       int32                  `json:"grid_size"`
	Side           int32                  `json:"side"`
	Pieces         []*PuzzlePiece         `json:"pieces"`
	ShuffledOrder  []int32                `json:"shuffled_order"`
	DifficultySeed string                 `json:"difficulty_seed"`
	CreatedAt      *timestamppb.Timestamp `json:"created_at,omitempty"`
	ExpiresAt      *timestamppb.Timestamp `json:"expires_at,omitempty"`
}

type Task struct {
	Id                string                 `json:"id"`
	CompanyId         string                 `json:"company_id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	TaskType          string                 `json:"task_type"`
	Difficulty        string                 `json:"difficulty"`
	RewardType        string                 `json:"reward_type"`
	RewardValue       string                 `json:"reward_value"`
	RewardDescription string                 `json:"reward_description"`
	ImageUrl          string                 `json:"image_url,omitempty"`
	Puzzle            *Puzzle                `json:"puzzle,omitempty"`
	Status            string                 `json:"status"`
	IsFeatured        bool                   `json:"is_featured"`
	FeaturedUntil     *timestamppb.Timestamp `json:"featured_until,omitempty"`
	AttemptCount      int32                  `json:"attempt_count"`
	ConversionCount   int32                  `json:"conversion_count"`
	ConversionRate    float64                `json:"conversion_rate"`
	ExpiresAt         *timestamppb.Timestamp `json:"expires_at,omitempty"`
	CreatedAt         *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt         *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type Attempt struct {
	Id                   string                 `json:"id"`
	TaskId               string                 `json:"task_id"`
	UserId               string                 `json:"user_id"`
	StartedAt            *timestamppb.Timestamp `json:"started_at,omitempty"`
	CompletedAt          *timestamppb.Timestamp `json:"completed_at,omitempty"`
	TimeTakenSeconds     int32                  `json:"time_taken_seconds"`
	IsSuccessful         bool                   `json:"is_successful"`
	Score                int32                  `json:"score"`
	DifficultyMultiplier float64                `json:"difficulty_multiplier"`
}

type Reward struct {
	Id                string                 `json:"id"`
	UserId            string                 `json:"user_id"`
	TaskId            string                 `json:"task_id"`
	RewardCode        string                 `json:"reward_code"`
	RewardType        string                 `json:"reward_type"`
	RewardValue       string                 `json:"reward_value"`
	RewardDescription string                 `json:"reward_description"`
	IsRedeemed        bool                   `json:"is_redeemed"`
	Expired           bool                   `json:"expired"`
	RedeemedAt        *timestamppb.Timestamp `json:"redeemed_at,omitempty"`
	ExpiresAt         *timestamppb.Timestamp `json:"expires_at,omitempty"`
	CreatedAt         *timestamppb.Timestamp `json:"created_at,omitempty"`
}

type CompanyContact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Address string `json:"address"`
}

// Image is raw image bytes; JSON carries them base64 encoded.
type Image struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type,omitempty"`
}

type CreateTaskRequest struct {
	CompanyId         string                 `json:"company_id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	TaskType          string                 `json:"task_type"`
	Difficulty        string                 `json:"difficulty"`
	RewardType        string                 `json:"reward_type"`
	RewardValue       string                 `json:"reward_value"`
	RewardDescription string                 `json:"reward_description"`
	ExpiresAt         *timestamppb.Timestamp `json:"expires_at,omitempty"`
	Image             *Image                 `json:"image,omitempty"`
}

func (r *CreateTaskRequest) GetCompanyId() string {
	if r == nil {
		return ""
	}
	return r.CompanyId
}

func (r *CreateTaskRequest) GetImage() *Image {
	if r == nil {
		return nil
	}
	return r.Image
}

type TaskResponse struct {
	Task *Task `json:"task"`
}

// UpdateTaskRequest is a partial update: nil fields are left untouched.
type UpdateTaskRequest struct {
	TaskId            string                 `json:"task_id"`
	CompanyId         string                 `json:"company_id"`
	Title             *string                `json:"title,omitempty"`
	Description       *string                `json:"description,omitempty"`
	TaskType          *string                `json:"task_type,omitempty"`
	Difficulty        *string                `json:"difficulty,omitempty"`
	RewardType        *string                `json:"reward_type,omitempty"`
	RewardValue       *string                `json:"reward_value,omitempty"`
	RewardDescription *string                `json:"reward_description,omitempty"`
	ExpiresAt         *timestamppb.Timestamp `json:"expires_at,omitempty"`
	ClearExpiresAt    bool                   `json:"clear_expires_at,omitempty"`
}

func (r *UpdateTaskRequest) GetTaskId() string {
	if r == nil {
		return ""
	}
	return r.TaskId
}

func (r *UpdateTaskRequest) GetCompanyId() string {
	if r == nil {
		return ""
	}
	return r.CompanyId
}

type AttachImageRequest struct {
	TaskId    string `json:"task_id"`
	CompanyId string `json:"company_id"`
	Image     *Image `json:"image"`
}

func (r *AttachImageRequest) GetTaskId() string {
	if r == nil {
		return ""
	}
	return r.TaskId
}

func (r *AttachImageRequest) GetCompanyId() string {
	if r == nil {
		return ""
	}
	return r.CompanyId
}

func (r *AttachImageRequest) GetImage() *Image {
	if r == nil {
		return nil
	}
	return r.Image
}

// TaskRef addresses a company's own task.
type TaskRef struct {
	TaskId    string `json:"task_id"`
	CompanyId string `json:"company_id"`
}

func (r *TaskRef) GetTaskId() string {
	if r == nil {
		return ""
	}
	return r.TaskId
}

func (r *TaskRef) GetCompanyId() string {
	if r == nil {
		return ""
	}
	return r.CompanyId
}

type PublishTaskRequest = TaskRef

type DeleteTaskRequest = TaskRef

type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

type FeatureTaskRequest struct {
	TaskId       string `json:"task_id"`
	CompanyId    string `json:"company_id"`
	DurationDays int32  `json:"duration_days"`
}

func (r *FeatureTaskRequest) GetTaskId() string {
	if r == nil {
		return ""
	}
	return r.TaskId
}

func (r *FeatureTaskRequest) GetCompanyId() string {
	if r == nil {
		return ""
	}
	return r.CompanyId
}

func (r *FeatureTaskRequest) GetDurationDays() int32 {
	if r == nil {
		return 0
	}
	return r.DurationDays
}

type FeatureTaskResponse struct {
	Task *Task  `json:"task"`
	Cost string `json:"cost"`
}

type GetTaskRequest struct {
	TaskId string `json:"task_id"`
}

func (r *GetTaskRequest) GetTaskId() string {
	if r == nil {
		return ""
	}
	return r.TaskId
}

type ListTasksRequest struct {
	Status       string `json:"status,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	TaskType     string `json:"task_type,omitempty"`
	City         string `json:"city,omitempty"`
	CompanyId    string `json:"company_id,omitempty"`
	FeaturedOnly bool   `json:"featured_only,omitempty"`
	Page         int32  `json:"page,omitempty"`
	Limit        int32  `json:"limit,omitempty"`
	SortBy       string `json:"sort_by,omitempty"`
	Descending   bool   `json:"descending,omitempty"`
}

type ListTasksResponse struct {
	Tasks []*Task `json:"tasks"`
	Total int32   `json:"total"`
	Page  int32   `json:"page"`
	Limit int32   `json:"limit"`
}

type SubmitAttemptRequest struct {
	TaskId    string  `json:"task_id"`
	UserId    string  `json:"user_id"`
	Order     []int32 `json:"order"`
	ElapsedMs int64   `json:"elapsed_ms"`
}

func (r *SubmitAttemptRequest) GetTaskId() string {
	if r == nil {
		return ""
	}
	return r.TaskId
}

func (r *SubmitAttemptRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

type SubmitAttemptResponse struct {
	Attempt   *Attempt `json:"attempt"`
	IsCorrect bool     `json:"is_correct"`
	Score     int32    `json:"score"`
	TimeBonus int32    `json:"time_bonus"`
	Reward    *Reward  `json:"reward,omitempty"`
}

type IssueRewardRequest struct {
	UserId string `json:"user_id"`
	TaskId string `json:"task_id"`
}

func (r *IssueRewardRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *IssueRewardRequest) GetTaskId() string {
	if r == nil {
		return ""
	}
	return r.TaskId
}

type RewardResponse struct {
	Reward *Reward `json:"reward"`
}

type RedeemRewardRequest struct {
	UserId     string `json:"user_id"`
	RewardCode string `json:"reward_code"`
}

func (r *RedeemRewardRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *RedeemRewardRequest) GetRewardCode() string {
	if r == nil {
		return ""
	}
	return r.RewardCode
}

type RedeemRewardResponse struct {
	Reward       *Reward         `json:"reward"`
	Instructions string          `json:"instructions"`
	Company      *CompanyContact `json:"company"`
}

type ListRewardsRequest struct {
	UserId string `json:"user_id"`
}

func (r *ListRewardsRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

type ListRewardsResponse struct {
	Rewards []*Reward `json:"rewards"`
}

func (i *Image) GetData() []byte {
	if i == nil {
		return nil
	}
	return i.Data
}

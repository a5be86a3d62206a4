package entities

import (
	"strings"
	"time"
	"unicode/utf8"

	"puzzle-rewards/internal/core/domain/exceptions"

	"github.com/shopspring/decimal"
)

type TaskType string

const (
	TaskTypeImagePuzzle    TaskType = "image-puzzle"
	TaskTypeSpotDiff       TaskType = "spot-diff"
	TaskTypeSpeedChallenge TaskType = "speed-challenge"
	TaskTypeMeme           TaskType = "meme"
	TaskTypeLogic          TaskType = "logic"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeImagePuzzle, TaskTypeSpotDiff, TaskTypeSpeedChallenge, TaskTypeMeme, TaskTypeLogic:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// GridSize is the piece count used for puzzles of this difficulty.
func (d Difficulty) GridSize() int {
	switch d {
	case DifficultyEasy:
		return 9
	case DifficultyMedium:
		return 16
	default:
		return 25
	}
}

// Multiplier is recorded on attempts; it stays within [0.5, 3.0].
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyEasy:
		return 1.0
	case DifficultyMedium:
		return 1.5
	case DifficultyHard:
		return 2.0
	case DifficultyExpert:
		return 3.0
	default:
		return DefaultDifficultyMultiplier
	}
}

type RewardType string

const (
	RewardTypeDiscount RewardType = "discount"
	RewardTypeCoupon   RewardType = "coupon"
	RewardTypePoints   RewardType = "points"
	RewardTypeCashback RewardType = "cashback"
)

func (r RewardType) Valid() bool {
	switch r {
	case RewardTypeDiscount, RewardTypeCoupon, RewardTypePoints, RewardTypeCashback:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusDraft   TaskStatus = "draft"
	TaskStatusActive  TaskStatus = "active"
	TaskStatusBlocked TaskStatus = "blocked"
	TaskStatusExpired TaskStatus = "expired"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusDraft, TaskStatusActive, TaskStatusBlocked, TaskStatusExpired:
		return true
	}
	return false
}

const (
	TitleMinLen             = 3
	TitleMaxLen             = 100
	DescriptionMaxLen       = 1000
	RewardDescriptionMinLen = 10
	RewardDescriptionMaxLen = 255
	FeatureMinDays          = 1
	FeatureMaxDays          = 30
)

type Task struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Type              TaskType        `json:"task_type"`
	Difficulty        Difficulty      `json:"difficulty"`
	RewardType        RewardType      `json:"reward_type"`
	RewardValue       decimal.Decimal `json:"reward_value"`
	RewardDescription string          `json:"reward_description"`
	ImageURL          string          `json:"image_url,omitempty"`
	Puzzle            *PuzzleConfig   `json:"-"`
	Status            TaskStatus      `json:"status"`
	IsFeatured        bool            `json:"is_featured"`
	FeaturedUntil     *time.Time      `json:"featured_until,omitempty"`
	AttemptCount      int             `json:"attempt_count"`
	ConversionCount   int             `json:"conversion_count"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TaskInput carries the company-supplied fields of a task.
type TaskInput struct {
	Title             string
	Description       string
	Type              TaskType
	Difficulty        Difficulty
	RewardType        RewardType
	RewardValue       decimal.Decimal
	RewardDescription string
	ExpiresAt         *time.Time
}

// TaskPatch whitelists the fields a company may change on a draft.
// Nil pointers are left untouched.
type TaskPatch struct {
	Title             *string
	Description       *string
	Type              *TaskType
	Difficulty        *Difficulty
	RewardType        *RewardType
	RewardValue       *decimal.Decimal
	RewardDescription *string
	ExpiresAt         *time.Time
	ClearExpiresAt    bool
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Type == nil && p.Difficulty == nil &&
		p.RewardType == nil && p.RewardValue == nil && p.RewardDescription == nil &&
		p.ExpiresAt == nil && !p.ClearExpiresAt
}

// Validate checks every field constraint of a task input. maxReward is the
// configured ceiling for reward_value.
func (in TaskInput) Validate(maxReward decimal.Decimal) error {
	title := strings.TrimSpace(in.Title)
	if n := utf8.RuneCountInString(title); n < TitleMinLen || n > TitleMaxLen {
		return exceptions.Validation("title", "must be between %d and %d characters", TitleMinLen, TitleMaxLen)
	}
	if utf8.RuneCountInString(in.Description) > DescriptionMaxLen {
		return exceptions.Validation("description", "must be at most %d characters", DescriptionMaxLen)
	}
	if !in.Type.Valid() {
		return exceptions.Validation("task_type", "unsupported task type %q", in.Type)
	}
	if !in.Difficulty.Valid() {
		return exceptions.Validation("difficulty", "unsupported difficulty %q", in.Difficulty)
	}
	if !in.RewardType.Valid() {
		return exceptions.Validation("reward_type", "unsupported reward type %q", in.RewardType)
	}
	if !in.RewardValue.IsPositive() {
		return exceptions.Validation("reward_value", "must be greater than 0")
	}
	if in.RewardValue.GreaterThan(maxReward) {
		return exceptions.Validation("reward_value", "must not exceed %s", maxReward.String())
	}
	rd := strings.TrimSpace(in.RewardDescription)
	if n := utf8.RuneCountInString(rd); n < RewardDescriptionMinLen || n > RewardDescriptionMaxLen {
		return exceptions.Validation("reward_description", "must be between %d and %d characters", RewardDescriptionMinLen, RewardDescriptionMaxLen)
	}
	return nil
}

func NewTask(id, companyID string, in TaskInput, now time.Time) *Task {
	return &Task{
		ID:                id,
		CompanyID:         companyID,
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Type:              in.Type,
		Difficulty:        in.Difficulty,
		RewardType:        in.RewardType,
		RewardValue:       in.RewardValue,
		RewardDescription: strings.TrimSpace(in.RewardDescription),
		ExpiresAt:         in.ExpiresAt,
		Status:            TaskStatusDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Input returns the company-editable fields of the task.
func (t *Task) Input() TaskInput {
	return TaskInput{
		Title:             t.Title,
		Description:       t.Description,
		Type:              t.Type,
		Difficulty:        t.Difficulty,
		RewardType:        t.RewardType,
		RewardValue:       t.RewardValue,
		RewardDescription: t.RewardDescription,
		ExpiresAt:         t.ExpiresAt,
	}
}

// Apply merges a patch into the task's editable fields and returns the result
// without mutating the task.
func (p TaskPatch) Apply(in TaskInput) TaskInput {
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Type != nil {
		in.Type = *p.Type
	}
	if p.Difficulty != nil {
		in.Difficulty = *p.Difficulty
	}
	if p.RewardType != nil {
		in.RewardType = *p.RewardType
	}
	if p.RewardValue != nil {
		in.RewardValue = *p.RewardValue
	}
	if p.RewardDescription != nil {
		in.RewardDescription = *p.RewardDescription
	}
	if p.ClearExpiresAt {
		in.ExpiresAt = nil
	} else if p.ExpiresAt != nil {
		in.ExpiresAt = p.ExpiresAt
	}
	return in
}

func (t *Task) SetInput(in TaskInput, now time.Time) {
	t.Title = strings.TrimSpace(in.Title)
	t.Description = in.Description
	t.Type = in.Type
	t.Difficulty = in.Difficulty
	t.RewardType = in.RewardType
	t.RewardValue = in.RewardValue
	t.RewardDescription = strings.TrimSpace(in.RewardDescription)
	t.ExpiresAt = in.ExpiresAt
	t.UpdatedAt = now
}

func (t *Task) OwnedBy(companyID string) bool {
	return companyID != "" && t.CompanyID == companyID
}

func (t *Task) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// EffectiveStatus derives expiry at read time; the stored status is never
// flipped by a sweep.
func (t *Task) EffectiveStatus(now time.Time) TaskStatus {
	if t.Status == TaskStatusBlocked {
		return t.Status
	}
	if t.IsExpired(now) {
		return TaskStatusExpired
	}
	return t.Status
}

func (t *Task) FeaturedAt(now time.Time) bool {
	return t.IsFeatured && t.FeaturedUntil != nil && now.Before(*t.FeaturedUntil)
}

func (t *Task) CanEdit() error {
	if t.Status == TaskStatusActive {
		return exceptions.Forbidden(exceptions.ResourceTask, t.ID, "published tasks cannot be edited")
	}
	return nil
}

func (t *Task) CanPublish() error {
	if t.Status != TaskStatusDraft {
		return exceptions.Forbidden(exceptions.ResourceTask, t.ID, "only draft tasks can be published, status is %s", t.Status)
	}
	if t.ImageURL == "" || t.Puzzle == nil {
		return exceptions.Validation("image", "an image is required before publishing")
	}
	if !t.RewardValue.IsPositive() {
		return exceptions.Validation("reward_value", "must be greater than 0")
	}
	return nil
}

func (t *Task) Publish(now time.Time) error {
	if err := t.CanPublish(); err != nil {
		return err
	}
	t.Status = TaskStatusActive
	t.UpdatedAt = now
	return nil
}

func (t *Task) CanFeature(now time.Time, days int) error {
	if days < FeatureMinDays || days > FeatureMaxDays {
		return exceptions.Validation("duration_days", "must be between %d and %d", FeatureMinDays, FeatureMaxDays)
	}
	if t.EffectiveStatus(now) != TaskStatusActive {
		return exceptions.Forbidden(exceptions.ResourceTask, t.ID, "only active tasks can be featured")
	}
	return nil
}

func (t *Task) Feature(now time.Time, days int) error {
	if err := t.CanFeature(now, days); err != nil {
		return err
	}
	until := now.AddDate(0, 0, days)
	t.IsFeatured = true
	t.FeaturedUntil = &until
	t.UpdatedAt = now
	return nil
}

// CanAttempt reports whether players may submit attempts right now. A task
// that is not active is NotFound to players, an expired one is Gone.
func (t *Task) CanAttempt(now time.Time) error {
	if t.Status != TaskStatusActive {
		return exceptions.NotFound(exceptions.ResourceTask, t.ID)
	}
	if t.IsExpired(now) {
		return exceptions.Gone(exceptions.ResourceTask, t.ID, "task expired")
	}
	if t.Puzzle == nil {
		return exceptions.NotFound(exceptions.ResourcePuzzle, t.ID)
	}
	return nil
}

func (t *Task) ConversionRate() float64 {
	if t.AttemptCount == 0 {
		return 0
	}
	return float64(t.ConversionCount) / float64(t.AttemptCount)
}

// TaskView is the only representation of a task handed to callers outside the
// core. It embeds the redacted puzzle, never the solution.
type TaskView struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Type              TaskType        `json:"task_type"`
	Difficulty        Difficulty      `json:"difficulty"`
	RewardType        RewardType      `json:"reward_type"`
	RewardValue       decimal.Decimal `json:"reward_value"`
	RewardDescription string          `json:"reward_description"`
	ImageURL          string          `json:"image_url,omitempty"`
	Puzzle            *PublicPuzzle   `json:"puzzle,omitempty"`
	Status            TaskStatus      `json:"status"`
	IsFeatured        bool            `json:"is_featured"`
	FeaturedUntil     *time.Time      `json:"featured_until,omitempty"`
	AttemptCount      int             `json:"attempt_count"`
	ConversionCount   int             `json:"conversion_count"`
	ConversionRate    float64         `json:"conversion_rate"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (t *Task) View(now time.Time) TaskView {
	v := TaskView{
		ID:                t.ID,
		CompanyID:         t.CompanyID,
		Title:             t.Title,
		Description:       t.Description,
		Type:              t.Type,
		Difficulty:        t.Difficulty,
		RewardType:        t.RewardType,
		RewardValue:       t.RewardValue,
		RewardDescription: t.RewardDescription,
		ImageURL:          t.ImageURL,
		Status:            t.EffectiveStatus(now),
		IsFeatured:        t.FeaturedAt(now),
		FeaturedUntil:     t.FeaturedUntil,
		AttemptCount:      t.AttemptCount,
		ConversionCount:   t.ConversionCount,
		ConversionRate:    t.ConversionRate(),
		ExpiresAt:         t.ExpiresAt,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	if t.Puzzle != nil {
		p := t.Puzzle.Public()
		v.Puzzle = &p
	}
	return v
}

package puzzlev1

import (
	"errors"
	"fmt"
	"strings"
)

// maxIDLen bounds every identifier field.
const maxIDLen = 64

// MaxElapsedMs is the longest solve time accepted, one day.
const MaxElapsedMs int64 = 24 * 60 * 60 * 1000

// FieldError reports one request field that failed a wire-level rule.
// Business rules are checked by the core, not here.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type checker struct {
	errs []error
}

func (c *checker) id(field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		c.errs = append(c.errs, FieldError{Field: field, Reason: "value is required"})
	case len(value) > maxIDLen:
		c.errs = append(c.errs, FieldError{Field: field, Reason: fmt.Sprintf("must be at most %d bytes", maxIDLen)})
	}
}

func (c *checker) check(ok bool, field, reason string) {
	if !ok {
		c.errs = append(c.errs, FieldError{Field: field, Reason: reason})
	}
}

func (c *checker) err() error {
	return errors.Join(c.errs...)
}

func (r *CreateTaskRequest) ValidateAll() error {
	var c checker
	c.id("company_id", r.GetCompanyId())
	if img := r.GetImage(); img != nil {
		c.check(len(img.Data) > 0, "image.data", "value is required when image is set")
	}
	return c.err()
}

func (r *UpdateTaskRequest) ValidateAll() error {
	var c checker
	c.id("task_id", r.GetTaskId())
	c.id("company_id", r.GetCompanyId())
	if r != nil {
		c.check(!(r.ClearExpiresAt && r.ExpiresAt != nil), "expires_at", "cannot be set together with clear_expires_at")
	}
	return c.err()
}

func (r *AttachImageRequest) ValidateAll() error {
	var c checker
	c.id("task_id", r.GetTaskId())
	c.id("company_id", r.GetCompanyId())
	c.check(r.GetImage() != nil && len(r.GetImage().Data) > 0, "image.data", "value is required")
	return c.err()
}

func (r *TaskRef) ValidateAll() error {
	var c checker
	c.id("task_id", r.GetTaskId())
	c.id("company_id", r.GetCompanyId())
	return c.err()
}

func (r *FeatureTaskRequest) ValidateAll() error {
	var c checker
	c.id("task_id", r.GetTaskId())
	c.id("company_id", r.GetCompanyId())
	return c.err()
}

func (r *GetTaskRequest) ValidateAll() error {
	var c checker
	c.id("task_id", r.GetTaskId())
	return c.err()
}

func (r *ListTasksRequest) ValidateAll() error {
	if r == nil {
		return nil
	}
	var c checker
	c.check(r.Page >= 0, "page", "must not be negative")
	c.check(r.Limit >= 0, "limit", "must not be negative")
	return c.err()
}

func (r *SubmitAttemptRequest) ValidateAll() error {
	var c checker
	c.id("task_id", r.GetTaskId())
	c.id("user_id", r.GetUserId())
	if r != nil {
		c.check(len(r.Order) > 0, "order", "value is required")
		c.check(r.ElapsedMs >= 0, "elapsed_ms", "must not be negative")
		c.check(r.ElapsedMs <= MaxElapsedMs, "elapsed_ms", "must not exceed one day")
	}
	return c.err()
}

func (r *IssueRewardRequest) ValidateAll() error {
	var c checker
	c.id("user_id", r.GetUserId())
	c.id("task_id", r.GetTaskId())
	return c.err()
}

func (r *RedeemRewardRequest) ValidateAll() error {
	var c checker
	c.id("user_id", r.GetUserId())
	c.id("reward_code", r.GetRewardCode())
	return c.err()
}

func (r *ListRewardsRequest) ValidateAll() error {
	var c checker
	c.id("user_id", r.GetUserId())
	return c.err()
}

package entities

import (
	"time"

	"puzzle-rewards/internal/core/domain/exceptions"

	"github.com/shopspring/decimal"
)

// Reward values are copied from the task at issuance and never follow later
// task edits.
type Reward struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	TaskID      string          `json:"task_id"`
	Code        string          `json:"reward_code"`
	Type        RewardType      `json:"reward_type"`
	Value       decimal.Decimal `json:"reward_value"`
	Description string          `json:"reward_description"`
	IsRedeemed  bool            `json:"is_redeemed"`
	RedeemedAt  *time.Time      `json:"redeemed_at,omitempty"`
	ExpiresAt   time.Time       `json:"expires_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewReward(id, userID string, task *Task, code string, now time.Time, validity time.Duration) *Reward {
	return &Reward{
		ID:          id,
		UserID:      userID,
		TaskID:      task.ID,
		Code:        code,
		Type:        task.RewardType,
		Value:       task.RewardValue,
		Description: task.RewardDescription,
		ExpiresAt:   now.Add(validity),
		CreatedAt:   now,
	}
}

func (r *Reward) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r *Reward) CanRedeem(now time.Time) error {
	if r.IsRedeemed {
		return exceptions.Conflict(exceptions.ResourceReward, r.Code, "reward already redeemed")
	}
	if r.IsExpired(now) {
		return exceptions.Gone(exceptions.ResourceReward, r.Code, "reward expired at %s", r.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return nil
}

func (r *Reward) MarkRedeemed(now time.Time) error {
	if err := r.CanRedeem(now); err != nil {
		return err
	}
	r.IsRedeemed = true
	r.RedeemedAt = &now
	return nil
}

// Redemption is returned to the player after a successful redeem.
type Redemption struct {
	Reward       *Reward        `json:"reward"`
	Instructions string         `json:"instructions"`
	Company      CompanyContact `json:"company"`
}

// RedemptionInstructions returns the player guidance for a reward type.
func RedemptionInstructions(t RewardType) string {
	switch t {
	case RewardTypeDiscount:
		return "Show this code at checkout to apply your discount."
	case RewardTypeCoupon:
		return "Present this coupon code in store or enter it online to claim your coupon."
	case RewardTypePoints:
		return "Your points have been credited. Quote this code to the company to see them on your loyalty account."
	case RewardTypeCashback:
		return "Send this code to the company with your purchase receipt to receive your cashback."
	default:
		return "Contact the company with this code to claim your reward."
	}
}

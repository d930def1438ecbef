package usage

import (
	"time"

	"haircare-backend/internal/shared/server/middleware"
)

const (
	PlanMember = "member"
	PlanGuest  = "guest"

	DefaultWindow = 24 * time.Hour
)

// Policy is the quota applied to one identity kind.
type Policy struct {
	Plan   string
	Limit  int
	Window time.Duration
}

// Plans holds the member and guest policies.
type Plans struct {
	Member Policy
	Guest  Policy
}

// DailyPlans builds 24h plans from per-day limits.
func DailyPlans(memberLimit, guestLimit int) Plans {
	return Plans{
		Member: Policy{Plan: PlanMember, Limit: memberLimit, Window: DefaultWindow},
		Guest:  Policy{Plan: PlanGuest, Limit: guestLimit, Window: DefaultWindow},
	}
}

// For picks the policy by identity prefix.
func (p Plans) For(userID string) Policy {
	policy := p.Member
	if middleware.IsGuestID(userID) {
		policy = p.Guest
	}
	if policy.Window <= 0 {
		policy.Window = DefaultWindow
	}
	if policy.Plan == "" {
		policy.Plan = PlanMember
	}
	return policy
}

func freshUsage(policy Policy, now time.Time) Usage {
	return Usage{
		Plan:     policy.Plan,
		Limit:    policy.Limit,
		Used:     0,
		ResetsAt: now.Add(policy.Window),
	}
}

// roll applies the current policy and restarts an expired window.
func roll(u Usage, policy Policy, now time.Time) (Usage, bool) {
	changed := u.Plan != policy.Plan || u.Limit != policy.Limit
	u.Plan = policy.Plan
	u.Limit = policy.Limit
	if !now.Before(u.ResetsAt) {
		u.Used = 0
		u.ResetsAt = now.Add(policy.Window)
		changed = true
	}
	return u, changed
}

package config

import (
	"fmt"
	"time"

	"github.com/kingrain94/clinic-access-core/internal/domain"
)

// PlanLimits are the allowances granted by a plan. -1 means unlimited.
type PlanLimits struct {
	MaxPatients    int
	MaxUsers       int
	AIQueriesLimit int
}

type PlanConfig struct {
	Plans       map[domain.PlanType]PlanLimits
	DefaultPlan domain.PlanType
	Period      time.Duration
}

func LoadPlanConfig() *PlanConfig {
	return &PlanConfig{
		Plans: map[domain.PlanType]PlanLimits{
			domain.PlanFree: {
				MaxPatients:    getEnvIntWithDefault("PLAN_FREE_MAX_PATIENTS", 50),
				MaxUsers:       getEnvIntWithDefault("PLAN_FREE_MAX_USERS", 2),
				AIQueriesLimit: getEnvIntWithDefault("PLAN_FREE_AI_QUERIES", 50),
			},
			domain.PlanPro: {
				MaxPatients:    getEnvIntWithDefault("PLAN_PRO_MAX_PATIENTS", 1000),
				MaxUsers:       getEnvIntWithDefault("PLAN_PRO_MAX_USERS", 10),
				AIQueriesLimit: getEnvIntWithDefault("PLAN_PRO_AI_QUERIES", 1000),
			},
			domain.PlanEnterprise: {
				MaxPatients:    getEnvIntWithDefault("PLAN_ENTERPRISE_MAX_PATIENTS", domain.UnlimitedQuota),
				MaxUsers:       getEnvIntWithDefault("PLAN_ENTERPRISE_MAX_USERS", domain.UnlimitedQuota),
				AIQueriesLimit: getEnvIntWithDefault("PLAN_ENTERPRISE_AI_QUERIES", domain.UnlimitedQuota),
			},
		},
		DefaultPlan: domain.PlanType(getEnvWithDefault("PLAN_DEFAULT", string(domain.PlanFree))),
		Period:      getEnvDurationWithDefault("PLAN_PERIOD", 30*24*time.Hour),
	}
}

// Limits returns the allowances for plan.
func (c *PlanConfig) Limits(plan domain.PlanType) (PlanLimits, error) {
	limits, ok := c.Plans[plan]
	if !ok {
		return PlanLimits{}, fmt.Errorf("unknown plan type %q", plan)
	}
	return limits, nil
}

// NewSubscription builds an active subscription for tenantID on plan whose
// first period starts at now.
func (c *PlanConfig) NewSubscription(tenantID string, plan domain.PlanType, now time.Time) (*domain.Subscription, error) {
	limits, err := c.Limits(plan)
	if err != nil {
		return nil, err
	}

	return &domain.Subscription{
		TenantID:           tenantID,
		PlanType:           plan,
		Status:             domain.SubscriptionActive,
		MaxPatients:        limits.MaxPatients,
		MaxUsers:           limits.MaxUsers,
		AIQueriesLimit:     limits.AIQueriesLimit,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(c.Period),
	}, nil
}

package plan

type CreatePlanRequest struct {
	ServiceID   int64  `json:"service_id" binding:"required"`
	PlanCode    string `json:"plan_code" binding:"required,max=100"`
	PlanName    string `json:"plan_name" binding:"required,max=255"`
	Description string `json:"description" binding:"omitempty,max=1000"`

	MonthlyPrice   float64 `json:"monthly_price" binding:"omitempty,min=0"`
	QuarterlyPrice float64 `json:"quarterly_price" binding:"omitempty,min=0"`
	YearlyPrice    float64 `json:"yearly_price" binding:"omitempty,min=0"`
	LifetimePrice  float64 `json:"lifetime_price" binding:"omitempty,min=0"`

	MonthlyAvailable   bool `json:"monthly_available"`
	QuarterlyAvailable bool `json:"quarterly_available"`
	YearlyAvailable    bool `json:"yearly_available"`
	LifetimeAvailable  bool `json:"lifetime_available"`

	HasTrial        bool    `json:"has_trial"`
	TrialPeriodDays int     `json:"trial_period_days" binding:"omitempty,min=1,max=365"`
	SetupFee        float64 `json:"setup_fee" binding:"omitempty,min=0"`

	Features       map[string]interface{} `json:"features"`
	UpgradePaths   []string               `json:"upgrade_paths"`
	DowngradePaths []string               `json:"downgrade_paths"`

	ImmediateUpgrade   bool `json:"immediate_upgrade"`
	ImmediateDowngrade bool `json:"immediate_downgrade"`
	SortOrder          int  `json:"sort_order"`
}

type UpdatePlanRequest struct {
	PlanName    *string `json:"plan_name" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`

	MonthlyPrice   *float64 `json:"monthly_price" binding:"omitempty,min=0"`
	QuarterlyPrice *float64 `json:"quarterly_price" binding:"omitempty,min=0"`
	YearlyPrice    *float64 `json:"yearly_price" binding:"omitempty,min=0"`
	LifetimePrice  *float64 `json:"lifetime_price" binding:"omitempty,min=0"`

	MonthlyAvailable   *bool `json:"monthly_available"`
	QuarterlyAvailable *bool `json:"quarterly_available"`
	YearlyAvailable    *bool `json:"yearly_available"`
	LifetimeAvailable  *bool `json:"lifetime_available"`

	HasTrial        *bool    `json:"has_trial"`
	TrialPeriodDays *int     `json:"trial_period_days" binding:"omitempty,min=1,max=365"`
	SetupFee        *float64 `json:"setup_fee" binding:"omitempty,min=0"`

	Features       map[string]interface{} `json:"features"`
	UpgradePaths   []string               `json:"upgrade_paths"`
	DowngradePaths []string               `json:"downgrade_paths"`

	ImmediateUpgrade   *bool `json:"immediate_upgrade"`
	ImmediateDowngrade *bool `json:"immediate_downgrade"`
	SortOrder          *int  `json:"sort_order"`
}

type ListFilters struct {
	ServiceID *int64 `form:"service_id"`
	IsActive  *bool  `form:"is_active"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type ListResponse struct {
	Plans      []Plan `json:"plans"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

package packets

type SignupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     *string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Email string  `json:"email" binding:"required,email"`
	Name  *string `json:"name"`
}

type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateSiteRequest struct {
	Name     string  `json:"name" binding:"required"`
	Location *string `json:"location"`
	Timezone string  `json:"timezone"`
}

type UpdateSiteRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Timezone *string `json:"timezone"`
}

type CreateLibraryItemRequest struct {
	SiteID      int     `json:"site_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdateLibraryItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AddCommandRequest struct {
	ExecutionOffsetSeconds *int   `json:"execution_offset_seconds" binding:"required"`
	CommandType            string `json:"command_type" binding:"required,oneof=charge discharge trickle_charge"`
}

type UpdateCommandRequest struct {
	ExecutionOffsetSeconds *int    `json:"execution_offset_seconds"`
	CommandType            *string `json:"command_type"`
}

// CreateRuleRequest mirrors the wire contract: rule_type selects which
// payload field must be present.
type CreateRuleRequest struct {
	LibraryItemID int      `json:"library_item_id" binding:"required"`
	RuleType      string   `json:"rule_type" binding:"required,oneof=default day_of_week specific_date"`
	DaysOfWeek    []int    `json:"days_of_week"`
	SpecificDates []string `json:"specific_dates"`
}

type DateRangeRequest struct {
	Start string `json:"start" binding:"required"` // YYYY-MM-DD
	End   string `json:"end" binding:"required"`
}

type SetDefaultRequest struct {
	LibraryItemID int `json:"library_item_id" binding:"required"`
}

type CalendarQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

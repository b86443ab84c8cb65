package packets

type UserResponse struct {
	ID    int     `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

type CompanyResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type SiteResponse struct {
	ID        int     `json:"id"`
	CompanyID int     `json:"company_id"`
	Name      string  `json:"name"`
	Location  *string `json:"location"`
	Timezone  string  `json:"timezone"`
}

type CommandResponse struct {
	ID                     int    `json:"id"`
	ExecutionOffsetSeconds int    `json:"execution_offset_seconds"`
	ExecutionTime          string `json:"execution_time"` // "HH:MM"
	CommandType            string `json:"command_type"`
}

type LibraryItemResponse struct {
	ID          int               `json:"id"`
	SiteID      int               `json:"site_id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Commands    []CommandResponse `json:"commands"`
}

type RuleResponse struct {
	ID            int      `json:"id"`
	SiteID        int      `json:"site_id"`
	LibraryItemID int      `json:"library_item_id"`
	RuleType      string   `json:"rule_type"`
	DaysOfWeek    []int    `json:"days_of_week,omitempty"`
	SpecificDates []string `json:"specific_dates,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

// EffectiveResponse is the resolver verdict for one (site, date). Item
// is null and specificity -1 when no rule matches.
type EffectiveResponse struct {
	Date        string               `json:"date"`
	Specificity int                  `json:"specificity"`
	Item        *LibraryItemResponse `json:"item"`
}

type ApplicableEntry struct {
	Item        LibraryItemResponse `json:"item"`
	Specificity int                 `json:"specificity"`
	RuleID      int                 `json:"rule_id"`
	IsActive    bool                `json:"is_active"`
}

type ApplicableResponse struct {
	Date    string            `json:"date"`
	Entries []ApplicableEntry `json:"entries"`
}

type CalendarDay struct {
	Date        string  `json:"date"`
	Specificity int     `json:"specificity"`
	ItemID      *int    `json:"item_id"`
	ItemName    *string `json:"item_name"`
}

type CalendarResponse struct {
	From string        `json:"from"`
	To   string        `json:"to"`
	Days []CalendarDay `json:"days"`
}

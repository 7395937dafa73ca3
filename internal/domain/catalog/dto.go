package catalog

type CreateServiceRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"required,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	CategoryID  *int64 `json:"category_id"`
	Enable      bool   `json:"enable"`
	SortOrder   int    `json:"sort_order"`
}

type UpdateServiceRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Slug        *string `json:"slug" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	CategoryID  *int64  `json:"category_id"`
	Enable      *bool   `json:"enable"`
	SortOrder   *int    `json:"sort_order"`
}

type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	Slug      string `json:"slug" binding:"required,max=255"`
	Enable    bool   `json:"enable"`
	SortOrder int    `json:"sort_order"`
}

type UpdateCategoryRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=255"`
	Slug      *string `json:"slug" binding:"omitempty,max=255"`
	Enable    *bool   `json:"enable"`
	SortOrder *int    `json:"sort_order"`
}

type CreatePriceRequest struct {
	Name      string  `json:"name" binding:"required,max=255"`
	Price     float64 `json:"price" binding:"min=0"`
	IsDefault bool    `json:"is_default"`
	Enable    bool    `json:"enable"`
	SortOrder int     `json:"sort_order"`
}

type UpdatePriceRequest struct {
	Name      *string  `json:"name" binding:"omitempty,max=255"`
	Price     *float64 `json:"price" binding:"omitempty,min=0"`
	IsDefault *bool    `json:"is_default"`
	Enable    *bool    `json:"enable"`
	SortOrder *int     `json:"sort_order"`
}

type ServiceListFilters struct {
	CategoryID *int64 `form:"category_id"`
	Enable     *bool  `form:"enable"`
	Keyword    string `form:"keyword"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type ServiceListResponse struct {
	Services   []Service `json:"services"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

package catalog

type CreatePackageRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Destination string  `json:"destination"`
	Price       float64 `json:"price" binding:"required"`
	Currency    string  `json:"currency"`
	Capacity    *int    `json:"capacity"`
	StartDate   string  `json:"start_date"` // YYYY-MM-DD
	EndDate     string  `json:"end_date"`
}

type UpdatePackageRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Destination *string  `json:"destination"`
	Price       *float64 `json:"price"`
	Capacity    *int     `json:"capacity"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
}

type ListPackagesQuery struct {
	Destination string `form:"destination"`
	Query       string `form:"q"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

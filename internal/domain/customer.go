package domain

// MarketCustomer is a stall holder at a wholesale market.
type MarketCustomer struct {
	ID             int64  `json:"idCustomer,omitempty"`
	FirstName      string `json:"nombre"              validate:"required"`
	LastName       string `json:"apellido"            validate:"required"`
	DocumentNumber string `json:"documentNumber"      validate:"required,len=8,numeric"`
	MarketName     string `json:"marketName"          validate:"required"`
	PositionNumber string `json:"positionNumber"      validate:"required"`
	City           string `json:"city"                validate:"required"`
	District       string `json:"district"            validate:"required"`
	Phone          string `json:"phone"               validate:"required"`
	State          State  `json:"state,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

// Validate checks the mandatory market customer fields.
func (c MarketCustomer) Validate() error { return Validate(c) }

// SupermarketCustomer is a supermarket chain buying by invoice.
type SupermarketCustomer struct {
	ID              int64  `json:"idCustomer,omitempty"`
	RUC             string `json:"ruc"                 validate:"required,len=11,numeric"`
	SupermarketName string `json:"supermarketName"     validate:"required"`
	City            string `json:"city"                validate:"required"`
	District        string `json:"district"            validate:"required"`
	Phone           string `json:"phone"               validate:"required"`
	Email           string `json:"email"               validate:"required,email"`
	State           State  `json:"state,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
}

// Validate checks the mandatory supermarket customer fields.
func (c SupermarketCustomer) Validate() error { return Validate(c) }

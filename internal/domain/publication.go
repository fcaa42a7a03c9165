package domain

// ProductPublication offers part of a harvest on the marketplace.
type ProductPublication struct {
	ID              int64  `json:"idPublication,omitempty"`
	SellerID        int64  `json:"idSeller"`
	CategoryID      int64  `json:"idCategory"`
	HarvestID       int64  `json:"idHarvest"`
	ProductName     string `json:"productName"`
	Emoji           string `json:"emoji,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
	State           State  `json:"state,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

// PublicationDetail prices one selection of a publication.
type PublicationDetail struct {
	ID              int64   `json:"idPubDetail,omitempty"`
	PublicationID   int64   `json:"idPublication"`
	SelectionType   string  `json:"selectionType"`
	Quantity        int     `json:"quantity"`
	TotalWeight     float64 `json:"totalWeight"`
	AvgWeightPerBox float64 `json:"avgWeightPerBox"`
	PricePerKg      float64 `json:"pricePerKg"`
	State           State   `json:"state,omitempty"`
	CreatedAt       string  `json:"createdAt,omitempty"`
}

// PublicationHeader is the publication part of a PublicationRequest.
type PublicationHeader struct {
	SellerID    int64  `json:"idSeller"    validate:"gt=0"`
	CategoryID  int64  `json:"idCategory"  validate:"gt=0"`
	HarvestID   int64  `json:"idHarvest"   validate:"gt=0"`
	ProductName string `json:"productName" validate:"required,min=3"`
	Emoji       string `json:"emoji"`
}

// PublicationLine is one priced selection of a PublicationRequest.
type PublicationLine struct {
	SelectionType   string  `json:"selectionType"   validate:"required,oneof=1ra 3ra 5ta Madura"`
	Quantity        int     `json:"quantity"        validate:"gt=0"`
	TotalWeight     float64 `json:"totalWeight"     validate:"gt=0"`
	AvgWeightPerBox float64 `json:"avgWeightPerBox" validate:"gte=0"`
	PricePerKg      float64 `json:"pricePerKg"      validate:"gt=0"`
}

// PublicationRequest creates a publication with its details in one call.
type PublicationRequest struct {
	Publication PublicationHeader `json:"publication"`
	Details     []PublicationLine `json:"details"     validate:"min=1,dive"`
}

// WithAverages fills AvgWeightPerBox from weight and quantity on every line.
func (r PublicationRequest) WithAverages() PublicationRequest {
	details := make([]PublicationLine, len(r.Details))
	for i, d := range r.Details {
		if d.Quantity > 0 {
			d.AvgWeightPerBox = d.TotalWeight / float64(d.Quantity)
		}
		details[i] = d
	}
	r.Details = details
	return r
}

// Validate checks the header and every line.
func (r PublicationRequest) Validate() error { return Validate(r) }

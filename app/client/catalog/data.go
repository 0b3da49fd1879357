package catalog

// Service is one bookable venue or activity from the catalog search service.
type Service struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	PricePerPerson float64 `json:"pricePerPerson"`
	DurationHours  float64 `json:"durationHours"`
	ImageURL       string  `json:"imageUrl"`
	Description    string  `json:"description"`
}

type searchResponse struct {
	Services []Service `json:"services"`
}

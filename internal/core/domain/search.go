package domain

// SearchQuery is the provider-neutral nearby search request.
type SearchQuery struct {
	Center        Coordinate
	RadiusMeters  float64
	IncludedTypes []string
	MaxResults    int
	Language      string
}

// PermissionStatus is the answer of the location collaborator to a permission request.
type PermissionStatus string

const (
	PermissionGranted PermissionStatus = "granted"
	PermissionDenied  PermissionStatus = "denied"
)

// AddressComponents is the structured result of reverse geocoding.
type AddressComponents struct {
	Name        string `json:"name,omitempty"`
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Line joins the non-empty name, street, city, region and postal code with ", ".
func (a AddressComponents) Line() string {
	line := ""
	for _, part := range []string{a.Name, a.Street, a.City, a.Region, a.PostalCode} {
		if part == "" {
			continue
		}
		if line != "" {
			line += ", "
		}
		line += part
	}
	return line
}

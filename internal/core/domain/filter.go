package domain

// FilterKey selects the place category driving the nearby search.
type FilterKey string

const (
	FilterPOI         FilterKey = "poi"
	FilterHospital    FilterKey = "hospital"
	FilterPolice      FilterKey = "police"
	FilterFireStation FilterKey = "fire_station"
)

// FilterKeys lists every category in display order.
var FilterKeys = []FilterKey{FilterPOI, FilterHospital, FilterPolice, FilterFireStation}

// Valid reports whether k is a known category.
func (k FilterKey) Valid() bool {
	for _, known := range FilterKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Label is the short chip text for the category.
func (k FilterKey) Label() string {
	switch k {
	case FilterPOI:
		return "All"
	case FilterHospital:
		return "Hospital"
	case FilterPolice:
		return "Police"
	case FilterFireStation:
		return "Fire"
	}
	return string(k)
}

// Title is the heading shown above the result list.
func (k FilterKey) Title() string {
	switch k {
	case FilterPOI:
		return "Nearby Landmarks"
	case FilterHospital:
		return "Nearby Hospitals"
	case FilterPolice:
		return "Nearby Police"
	case FilterFireStation:
		return "Nearby Fire Stations"
	}
	return "Nearby Places"
}

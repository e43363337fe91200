package domain

// DefaultEmergencyNumbers are offered in this order; the first is the primary button.
var DefaultEmergencyNumbers = []string{"999", "112", "911"}

// TelURI is the dial payload for the telephony collaborator.
func TelURI(number string) string {
	return "tel:" + number
}

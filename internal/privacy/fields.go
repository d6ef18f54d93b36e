package privacy

// Field classification tables. These are declarative configuration, kept as
// constant sets so the rule vocabulary stays auditable in one place.

// nameFields are the fields whose values are masked token-by-token as person
// names.
var nameFields = map[string]bool{
	"name":       true,
	"first_name": true,
	"last_name":  true,
}

// combinatorialFields are the fields that can contribute to combinatorial
// PII: individually innocuous, but jointly re-identifying.
var combinatorialFields = map[string]bool{
	"name":       true,
	"first_name": true,
	"last_name":  true,
	"email":      true,
	"address":    true,
	"device_id":  true,
	"ip_address": true,
}

// Category labels tracked by the combinatorial test. A record contributes at
// most one instance of each category, however many fields qualify.
const (
	categoryName       = "name"
	categoryNameParts  = "name_parts"
	categoryEmail      = "email"
	categoryAddress    = "address"
	categoryDeviceInfo = "device_info"
)

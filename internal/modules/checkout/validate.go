package checkout

import (
	"regexp"
	"strings"
)

// phonePattern accepts local and international forms: optional +, then 7-15
// digits with spaces or dashes in between.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)

// validateCustomer checks the required checkout fields and returns a
// field→message map. An empty map means the info is acceptable.
func validateCustomer(info CustomerInfo) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(info.FirstName) == "" {
		errs["first_name"] = "first name is required"
	}
	if strings.TrimSpace(info.LastName) == "" {
		errs["last_name"] = "last name is required"
	}
	phone := strings.TrimSpace(info.Phone)
	if phone == "" {
		errs["phone"] = "phone number is required"
	} else if !phonePattern.MatchString(phone) {
		errs["phone"] = "phone number is not valid"
	}
	if strings.TrimSpace(info.Address) == "" {
		errs["address"] = "address is required"
	}
	if strings.TrimSpace(info.City) == "" {
		errs["city"] = "city is required"
	}
	return errs
}

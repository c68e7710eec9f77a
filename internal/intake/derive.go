package intake

import "strings"

// DerivedClient is the client identity read from a response bag.
type DerivedClient struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

// Derive reads the conventional keys name (else full_name), email, phone and
// company. Only non-empty strings count; anything else falls through.
func Derive(responses map[string]any) DerivedClient {
	return DerivedClient{
		Name:    firstString(responses, "name", "full_name"),
		Email:   firstString(responses, "email"),
		Phone:   firstString(responses, "phone"),
		Company: firstString(responses, "company"),
	}
}

func firstString(responses map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := responses[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

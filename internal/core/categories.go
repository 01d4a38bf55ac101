package core

// Category is one entry of the fixed category set.
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Categories is the closed set of categories accepted at the input boundary.
var Categories = []Category{
	{Value: "food", Label: "Food & Dining"},
	{Value: "transportation", Label: "Transportation"},
	{Value: "housing", Label: "Housing"},
	{Value: "utilities", Label: "Utilities"},
	{Value: "entertainment", Label: "Entertainment"},
	{Value: "healthcare", Label: "Healthcare"},
	{Value: "shopping", Label: "Shopping"},
	{Value: "personal", Label: "Personal Care"},
	{Value: "education", Label: "Education"},
	{Value: "travel", Label: "Travel"},
	{Value: "gifts", Label: "Gifts & Donations"},
	{Value: "income", Label: "Income"},
	{Value: "other", Label: "Other"},
}

// CategoryLabel returns the display label, or "Other" for unknown values.
func CategoryLabel(value string) string {
	for _, c := range Categories {
		if c.Value == value {
			return c.Label
		}
	}
	return "Other"
}

func IsKnownCategory(value string) bool {
	for _, c := range Categories {
		if c.Value == value {
			return true
		}
	}
	return false
}

package core

// Category suggestions for a bakery. The store accepts any category string.
var (
	expenseCategories = []string{"Ingredients", "Packaging", "Utilities", "Logistics", "Equipment", "Labor", "Inventory", "Other"}
	incomeCategories  = []string{"Counter Sales", "Wholesale", "Special Orders", "Catering", "Other"}
)

// SuggestedCategories returns a copy of the suggestion list for t.
func SuggestedCategories(t TxType) []string {
	switch t {
	case Income:
		return append([]string(nil), incomeCategories...)
	case Expense:
		return append([]string(nil), expenseCategories...)
	default:
		return nil
	}
}

// DefaultCategory is the first suggestion for t, used to pre-fill forms.
func DefaultCategory(t TxType) string {
	if c := SuggestedCategories(t); len(c) > 0 {
		return c[0]
	}
	return ""
}

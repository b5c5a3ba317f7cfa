package config

// CategoryWeights orders command categories in the help listing, lightest
// first. Unknown categories sort last.
var CategoryWeights = map[string]int{
	"🕯️ Information": 0,
	"📢 Utilities":    10,
	"⚙️ Settings":    50,
	"🛠️ Maintenance": 60,
}

const unknownCategoryWeight = 1000

// CategoryWeight returns the sort weight of category.
func CategoryWeight(category string) int {
	if w, ok := CategoryWeights[category]; ok {
		return w
	}
	return unknownCategoryWeight
}

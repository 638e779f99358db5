package waitlist

// UseCases are the optional answers offered by the signup form.
var UseCases = []string{
	"Solo exploring",
	"With partner/friends",
	"Travel",
	"Self-reflection / journaling",
	"Just curious",
}

// ValidUseCase reports whether uc is empty or one of UseCases.
func ValidUseCase(uc string) bool {
	if uc == "" {
		return true
	}
	for _, known := range UseCases {
		if uc == known {
			return true
		}
	}
	return false
}

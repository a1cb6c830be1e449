package transform

import "strings"

// MedicalKeywords is the default keyword list for medical-content
// classification. A message is medical when its lower-cased text contains
// any of these as a substring. No tokenization or negation handling: a
// message merely mentioning "health" counts. That false-positive rate is
// accepted.
var MedicalKeywords = []string{
	"medicine",
	"drug",
	"pharma",
	"medication",
	"prescription",
	"treatment",
	"symptom",
	"disease",
	"health",
	"medical",
	"doctor",
	"hospital",
	"clinic",
	"pharmacy",
	"cosmetic",
	"beauty",
	"skincare",
	"supplement",
	"vitamin",
}

// IsMedicalContent reports whether text matches any keyword,
// case-insensitively. An empty keyword list never matches.
func IsMedicalContent(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

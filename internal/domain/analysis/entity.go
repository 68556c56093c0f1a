package analysis

import (
	"fmt"
)

// ProductType enum
type ProductType string

const (
	ProductFood     ProductType = "food"
	ProductCosmetic ProductType = "cosmetic"
	ProductOther    ProductType = "other"
)

// ParseProductType maps the client-supplied value; empty defaults to food.
func ParseProductType(s string) (ProductType, error) {
	switch ProductType(s) {
	case "":
		return ProductFood, nil
	case ProductFood, ProductCosmetic, ProductOther:
		return ProductType(s), nil
	default:
		return "", fmt.Errorf("%w: unknown product type %q", ErrInvalidInput, s)
	}
}

// RiskLevel enum
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

func (r RiskLevel) valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Ingredient as reported on the product label. Field names are part of the
// wire contract with the mobile client and must not change.
type Ingredient struct {
	Name        string    `json:"name"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	AlsoKnownAs string    `json:"alsoKnownAs,omitempty"`
	WhyThisRisk string    `json:"whyThisRisk"`
	Description string    `json:"description"`
}

// Result is the normalized analysis produced by one successful orchestration.
type Result struct {
	ProductName       string       `json:"productName"`
	Category          string       `json:"category"`
	OverallScore      int          `json:"overallScore"`
	SafetyScore       int          `json:"safetyScore"`
	EfficacyScore     int          `json:"efficacyScore"`
	TransparencyScore int          `json:"transparencyScore"`
	Summary           string       `json:"summary"`
	Ingredients       []Ingredient `json:"ingredients"`
	HealthImpact      string       `json:"healthImpact"`
	ShortTermEffects  string       `json:"shortTermEffects"`
	LongTermEffects   string       `json:"longTermEffects"`
	HiddenChemicals   string       `json:"hiddenChemicals,omitempty"`
	HowToUse          string       `json:"howToUse"`
	GoodAndBad        string       `json:"goodAndBad"`
	WhatItDoes        string       `json:"whatItDoes"`
	WhatPeopleSay     string       `json:"whatPeopleSay"`
}

// Validate enforces the required shape. A Result that fails here is never
// returned to the caller; the orchestration reports a parse failure instead.
func (r *Result) Validate() error {
	if r.ProductName == "" {
		return fmt.Errorf("missing productName")
	}
	if r.Category == "" {
		return fmt.Errorf("missing category")
	}
	if r.Summary == "" {
		return fmt.Errorf("missing summary")
	}
	for name, score := range map[string]int{
		"overallScore":      r.OverallScore,
		"safetyScore":       r.SafetyScore,
		"efficacyScore":     r.EfficacyScore,
		"transparencyScore": r.TransparencyScore,
	} {
		if score < 0 || score > 100 {
			return fmt.Errorf("%s out of range: %d", name, score)
		}
	}
	for i, ing := range r.Ingredients {
		if ing.Name == "" {
			return fmt.Errorf("ingredient %d: missing name", i)
		}
		if !ing.RiskLevel.valid() {
			return fmt.Errorf("ingredient %d: invalid risk level %q", i, ing.RiskLevel)
		}
	}
	return nil
}

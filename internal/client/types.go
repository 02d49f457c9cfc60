// ABOUTME: Request and response types for the recipe backend API
// ABOUTME: Ingredient carries an explicit quantity kind: grams or freeform text

package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Credential is a sign-in request. Never persisted.
type Credential struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// SignInResult represents the /api/auth/signin response
type SignInResult struct {
	Token   string `json:"token"`
	IsAdmin bool   `json:"is_admin"`
}

// NewUserRequest is the admin-only user creation payload
type NewUserRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Recipe is a named, ordered list of ingredients
type Recipe struct {
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
}

// QuantityKind tags how an ingredient's quantity is expressed
type QuantityKind int

const (
	// QuantityWeight is an integer weight in grams
	QuantityWeight QuantityKind = iota
	// QuantityFreeform is unit-less free text ("a pinch", "2 cups")
	QuantityFreeform
)

// String returns the kind name
func (k QuantityKind) String() string {
	switch k {
	case QuantityWeight:
		return "weight"
	case QuantityFreeform:
		return "freeform"
	default:
		return "unknown"
	}
}

// Ingredient is one line of a recipe. Kind selects which of WeightGrams or
// Value is meaningful.
type Ingredient struct {
	Name        string
	Kind        QuantityKind
	WeightGrams int
	Value       string
}

// Weight creates an ingredient measured in grams
func Weight(name string, grams int) Ingredient {
	return Ingredient{Name: name, Kind: QuantityWeight, WeightGrams: grams}
}

// Freeform creates an ingredient with a free-text quantity
func Freeform(name, value string) Ingredient {
	return Ingredient{Name: name, Kind: QuantityFreeform, Value: value}
}

// Quantity renders the quantity for display
func (i Ingredient) Quantity() string {
	if i.Kind == QuantityFreeform {
		return i.Value
	}
	return fmt.Sprintf("%d g", i.WeightGrams)
}

type weightWire struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

type freeformWire struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MarshalJSON encodes {name, weight} or {name, value} depending on Kind
func (i Ingredient) MarshalJSON() ([]byte, error) {
	if i.Kind == QuantityFreeform {
		return json.Marshal(freeformWire{Name: i.Name, Value: i.Value})
	}
	return json.Marshal(weightWire{Name: i.Name, Weight: i.WeightGrams})
}

// UnmarshalJSON picks the kind from whichever quantity key is present
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	var wire struct {
		Name   string  `json:"name"`
		Weight *int    `json:"weight"`
		Value  *string `json:"value"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*i = Ingredient{Name: wire.Name}
	switch {
	case wire.Value != nil && wire.Weight == nil:
		i.Kind = QuantityFreeform
		i.Value = *wire.Value
	case wire.Weight != nil:
		i.Kind = QuantityWeight
		i.WeightGrams = *wire.Weight
	}
	return nil
}

// Validate checks the recipe before it is sent
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return validationError(opAddRecipe, "Recipe name is required")
	}
	for idx, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return validationError(opAddRecipe, fmt.Sprintf("Ingredient %d has no name", idx+1))
		}
		if ing.Kind == QuantityWeight && ing.WeightGrams < 0 {
			return validationError(opAddRecipe, fmt.Sprintf("Weight for %s must not be negative", ing.Name))
		}
	}
	return nil
}

package models

// Recipe represents a recipe the user followed, as supplied by the meal
// planning collaborator.
type Recipe struct {
	ID          string
	Name        string
	Servings    int
	Ingredients []Ingredient
}

// Ingredient represents a single recipe requirement.
type Ingredient struct {
	Name          string
	Quantity      float64
	Unit          string
	Status        IngredientStatus
	EstimatedCost float64 // pesos, for must-purchase ingredients
}

// IngredientStatus represents how an ingredient is sourced
type IngredientStatus string

const (
	// Ingredient sourcing statuses
	IngredientOwned        IngredientStatus = "owned"         // already in the pantry
	IngredientStaple       IngredientStatus = "staple"        // assumed on hand (salt, oil)
	IngredientMustPurchase IngredientStatus = "must_purchase" // needs to be bought
)

package agents

// Fixed request/response schemas, one pair per sub-agent role. The wire
// shapes match the JSON contracts the orchestrator and sub-agents exchange.

type Preferences struct {
	Likes              []string `json:"likes"`
	Dislikes           []string `json:"dislikes"`
	CuisinePreferences []string `json:"cuisine_preferences"`
	AvoidRedMeat       bool     `json:"avoid_red_meat"`
}

// MealRequest is the complete input for one-day plan generation.
type MealRequest struct {
	Age               int         `json:"age"`
	Gender            string      `json:"gender"`
	Weight            float64     `json:"weight"`
	Height            float64     `json:"height"`
	DietGoal          string      `json:"diet_goal"`
	DailyCalorieLimit float64     `json:"daily_calorie_limit"`
	ActivityLevel     string      `json:"activity_level"`
	Allergies         []string    `json:"allergies"`
	Preferences       Preferences `json:"preferences"`
	MealsPerDay       int         `json:"meals_per_day"`
}

type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

type Meal struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Items          []string `json:"items"`
	Calories       float64  `json:"calories"`
	Macros         Macros   `json:"macros"`
	TimeSuggestion string   `json:"time_suggestion"`
}

// MealPlan is the plan-generation response: one day of meals.
type MealPlan struct {
	Day           int      `json:"day"`
	TotalCalories float64  `json:"total_calories"`
	Meals         []Meal   `json:"meals"`
	Notes         []string `json:"notes"`
}

// PartialPreferences and PartialMealRequest use pointers so absent fields
// survive as nil for the profile-fill agent to default.
type PartialPreferences struct {
	Likes              []string `json:"likes"`
	Dislikes           []string `json:"dislikes"`
	CuisinePreferences []string `json:"cuisine_preferences"`
	AvoidRedMeat       *bool    `json:"avoid_red_meat"`
}

type PartialMealRequest struct {
	Age               *int                `json:"age"`
	Gender            *string             `json:"gender"`
	Weight            *float64            `json:"weight"`
	Height            *float64            `json:"height"`
	DietGoal          *string             `json:"diet_goal"`
	DailyCalorieLimit *float64            `json:"daily_calorie_limit"`
	ActivityLevel     *string             `json:"activity_level"`
	Allergies         []string            `json:"allergies"`
	Preferences       *PartialPreferences `json:"preferences"`
	MealsPerDay       *int                `json:"meals_per_day"`
}

type ProfileFillRequest struct {
	PartialMealRequest  PartialMealRequest `json:"partial_meal_request"`
	ConversationSummary string             `json:"conversation_summary"`
}

// ProfileFillResponse is the completed request plus a map of which fields
// were filled with defaults (keys like "age" or "preferences.likes").
type ProfileFillResponse struct {
	MealRequest  MealRequest     `json:"meal_request"`
	UsedDefaults map[string]bool `json:"used_defaults"`
}

type ShoppingListRequest struct {
	MealPlan MealPlan `json:"meal_plan"`
}

// ShoppingList is a human-friendly list grouped by store category.
type ShoppingList struct {
	ShoppingListText string `json:"shopping_list_text"`
}

type StoreSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type StoreLocation struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	DistanceM float64 `json:"distance_m"`
}

type StoreSearchResult struct {
	Query       string          `json:"query"`
	Explanation string          `json:"explanation"`
	Stores      []StoreLocation `json:"stores"`
}

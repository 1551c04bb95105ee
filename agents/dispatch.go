// Package agents routes requests to specialist sub-agent roles by an
// explicit enum tag, each role bound to a fixed request/response schema.
// The LLM runtime behind the roles is abstracted as a Completer; this
// layer only validates, marshals, and delegates.
package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nourish-labs/mealplan-mcp/config"
)

type Role string

const (
	RoleProfileFill    Role = "profile_fill"
	RolePlanGeneration Role = "plan_generation"
	RoleShoppingList   Role = "shopping_list"
	RoleStoreSearch    Role = "store_search"
)

// GenConfig is one agent's immutable generation configuration.
type GenConfig struct {
	Model           string
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

// Completer is the external LLM runtime: given a role and a
// JSON-serializable request payload, it returns the role's JSON response.
type Completer interface {
	Complete(ctx context.Context, cfg GenConfig, role Role, input json.RawMessage) (json.RawMessage, error)
}

// Envelope is a tagged sub-agent request.
type Envelope struct {
	Role    Role            `json:"role"`
	Payload json.RawMessage `json:"payload"`
}

type Dispatcher struct {
	completer Completer
	core      GenConfig
}

// NewDispatcher binds a completer to the core generation settings. All four
// roles are strict-JSON roles, so they share the core (low-temperature)
// configuration; the orchestrator's chattier settings stay with the
// embedding runtime.
func NewDispatcher(completer Completer, cfg config.AgentsConfig) *Dispatcher {
	return &Dispatcher{
		completer: completer,
		core: GenConfig{
			Model:           cfg.Model,
			Temperature:     cfg.TemperatureCore,
			TopP:            cfg.TopP,
			TopK:            cfg.TopK,
			MaxOutputTokens: cfg.MaxOutputTokensCore,
		},
	}
}

// Dispatch routes a tagged envelope to its role, validating the payload
// against the role's request schema and the completion against its
// response schema.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) (json.RawMessage, error) {
	switch env.Role {
	case RoleProfileFill:
		return dispatchAs[ProfileFillRequest, ProfileFillResponse](ctx, d, env)
	case RolePlanGeneration:
		return dispatchAs[MealRequest, MealPlan](ctx, d, env)
	case RoleShoppingList:
		return dispatchAs[ShoppingListRequest, ShoppingList](ctx, d, env)
	case RoleStoreSearch:
		return dispatchAs[StoreSearchRequest, StoreSearchResult](ctx, d, env)
	default:
		return nil, fmt.Errorf("unknown sub-agent role %q", env.Role)
	}
}

func dispatchAs[Req any, Resp any](ctx context.Context, d *Dispatcher, env Envelope) (json.RawMessage, error) {
	var req Req
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", env.Role, err)
	}

	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", env.Role, err)
	}

	output, err := d.completer.Complete(ctx, d.core, env.Role, input)
	if err != nil {
		return nil, fmt.Errorf("%s sub-agent: %w", env.Role, err)
	}

	var resp Resp
	if err := json.Unmarshal(output, &resp); err != nil {
		return nil, fmt.Errorf("%s returned malformed response: %w", env.Role, err)
	}

	return json.Marshal(resp)
}

// GeneratePlan delegates a complete meal request to the plan-generation role.
func (d *Dispatcher) GeneratePlan(ctx context.Context, req MealRequest) (MealPlan, error) {
	var plan MealPlan
	if req.MealsPerDay <= 0 {
		return plan, fmt.Errorf("meal request: meals_per_day must be positive")
	}
	if req.DailyCalorieLimit <= 0 {
		return plan, fmt.Errorf("meal request: daily_calorie_limit must be positive")
	}
	return callRole[MealRequest, MealPlan](ctx, d, RolePlanGeneration, req)
}

// FillProfile completes a partial meal request with safe defaults.
func (d *Dispatcher) FillProfile(ctx context.Context, req ProfileFillRequest) (ProfileFillResponse, error) {
	return callRole[ProfileFillRequest, ProfileFillResponse](ctx, d, RoleProfileFill, req)
}

// BuildShoppingList extracts a categorized grocery list from a plan.
func (d *Dispatcher) BuildShoppingList(ctx context.Context, req ShoppingListRequest) (ShoppingList, error) {
	if len(req.MealPlan.Meals) == 0 {
		return ShoppingList{}, fmt.Errorf("shopping list request: meal plan has no meals")
	}
	return callRole[ShoppingListRequest, ShoppingList](ctx, d, RoleShoppingList, req)
}

// FindStores asks the store-search role for nearby stores.
func (d *Dispatcher) FindStores(ctx context.Context, req StoreSearchRequest) (StoreSearchResult, error) {
	if req.Query == "" {
		return StoreSearchResult{}, fmt.Errorf("store search request: query is required")
	}
	return callRole[StoreSearchRequest, StoreSearchResult](ctx, d, RoleStoreSearch, req)
}

func callRole[Req any, Resp any](ctx context.Context, d *Dispatcher, role Role, req Req) (Resp, error) {
	var resp Resp

	input, err := json.Marshal(req)
	if err != nil {
		return resp, fmt.Errorf("marshal %s request: %w", role, err)
	}

	output, err := d.completer.Complete(ctx, d.core, role, input)
	if err != nil {
		return resp, fmt.Errorf("%s sub-agent: %w", role, err)
	}

	if err := json.Unmarshal(output, &resp); err != nil {
		return resp, fmt.Errorf("%s returned malformed response: %w", role, err)
	}

	return resp, nil
}

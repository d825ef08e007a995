package tools

import (
	"concierge/internal/adapter"
)

// Tool names
const (
	ToolBookSpa              = "book_spa"
	ToolConfirmDinner        = "confirm_dinner_reservation"
	ToolOrderRoomService     = "order_room_service"
	ToolRequestHousekeeping  = "request_housekeeping"
	ToolLocalRecommendations = "local_recommendations"
	ToolLookupGuestNotes     = "lookup_guest_notes"
)

// Descriptor describes one callable tool. The catalog is static and
// read-only at runtime; it defines what the orchestrator may expose to the
// LLM.
type Descriptor struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Provider       string                 `json:"provider"`
	RequiredScopes []string               `json:"required_scopes"`
	HospitalityUse string                 `json:"hospitality_use"`
	RequiresAuth   bool                   `json:"requires_auth"`
	Parameters     map[string]interface{} `json:"parameters"`
}

// Catalog returns the static list of available tools
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Name:           ToolBookSpa,
			Description:    "Book a spa treatment for the guest. Requires a treatment name and a preferred time.",
			Provider:       "serenity-spa",
			RequiredScopes: []string{"bookings:write"},
			HospitalityUse: "Spa and wellness bookings during a stay",
			RequiresAuth:   true,
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"treatment": map[string]interface{}{
						"type":        "string",
						"description": "The treatment to book (e.g. 'deep tissue massage')",
					},
					"time": map[string]interface{}{
						"type":        "string",
						"description": "Preferred time in the guest's words (e.g. 'tomorrow 3pm')",
					},
				},
				"required": []string{"treatment"},
			},
		},
		{
			Name:           ToolConfirmDinner,
			Description:    "Confirm an existing dinner reservation for the guest.",
			Provider:       "dinewise",
			RequiredScopes: []string{"reservations:write"},
			HospitalityUse: "Restaurant reservation management",
			RequiresAuth:   true,
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reservation_id": map[string]interface{}{
						"type":        "string",
						"description": "The reservation to confirm, if the guest mentioned it",
					},
				},
			},
		},
		{
			Name:           ToolOrderRoomService,
			Description:    "Place a room service order for the guest's room.",
			Provider:       "dinewise",
			RequiredScopes: []string{"orders:write"},
			HospitalityUse: "In-room dining orders",
			RequiresAuth:   true,
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"items": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Menu items to order",
					},
					"notes": map[string]interface{}{
						"type":        "string",
						"description": "Dietary notes or delivery instructions",
					},
				},
				"required": []string{"items"},
			},
		},
		{
			Name:           ToolRequestHousekeeping,
			Description:    "Open a housekeeping request for the guest's room (cleaning, towels, amenities).",
			Provider:       "propertyops",
			RequiredScopes: []string{"tickets:write"},
			HospitalityUse: "Room upkeep requests",
			RequiresAuth:   true,
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"request": map[string]interface{}{
						"type":        "string",
						"description": "What the guest needs (e.g. 'extra towels')",
					},
				},
				"required": []string{"request"},
			},
		},
		{
			Name:           ToolLocalRecommendations,
			Description:    "Look up recommended places near the property (restaurants, sights, activities).",
			Provider:       "cityguide",
			RequiredScopes: []string{},
			HospitalityUse: "Local area guidance for guests",
			RequiresAuth:   false,
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"category": map[string]interface{}{
						"type":        "string",
						"description": "Optional category filter (e.g. 'restaurants', 'museums')",
					},
				},
			},
		},
		{
			Name:           ToolLookupGuestNotes,
			Description:    "Search stored notes and preferences for the current guest.",
			Provider:       "memory",
			RequiredScopes: []string{"memory:read"},
			HospitalityUse: "Personalizing service from remembered preferences",
			RequiresAuth:   true,
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "What to look for in the guest's notes",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

// FormatForModel projects the catalog into the LLM function-calling schema
func FormatForModel(catalog []Descriptor) []adapter.Tool {
	formatted := make([]adapter.Tool, 0, len(catalog))
	for _, d := range catalog {
		params := d.Parameters
		if params == nil {
			params = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
		}
		formatted = append(formatted, adapter.Tool{
			Type: "function",
			Function: adapter.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  params,
			},
		})
	}
	return formatted
}

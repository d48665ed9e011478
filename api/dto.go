/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal simulation model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific formatting (dates as strings, decimals as strings)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - scenarios.go: ScenarioDTO presets
*/
package api

// ScenarioDTO describes a loadable population preset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Stations    int    `json:"stations"`
	Customers   int    `json:"customers"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
	Seed       *int64 `json:"seed,omitempty"`
}

// RunRequest is the request to execute a simulation run.
type RunRequest struct {
	Seed *int64 `json:"seed,omitempty"`
	// Now pins the anchor date for the run, RFC 3339. Empty means wall clock.
	Now string `json:"now,omitempty"`
}

// RunSummaryDTO summarizes one completed simulation run.
type RunSummaryDTO struct {
	Seed         int64  `json:"seed"`
	Now          string `json:"now"`
	Transactions int    `json:"transactions"`
	Lines        int    `json:"lines"`
	Redemptions  int    `json:"redemptions"`
}

// TransactionDTO represents a transaction in API responses.
type TransactionDTO struct {
	ID           string  `json:"id"`
	Timestamp    string  `json:"timestamp"`
	CashierID    string  `json:"cashier_id"`
	CardID       string  `json:"card_id"`
	OriginReason *string `json:"origin_reason,omitempty"`
	OriginTxnID  *string `json:"origin_transaction_id,omitempty"`
}

// TransactionLineDTO represents a line item in API responses. Money fields
// are decimal strings to avoid float rounding on the wire.
type TransactionLineDTO struct {
	ID            string            `json:"id"`
	TransactionID string            `json:"transaction_id"`
	ProductID     int64             `json:"product_id"`
	Product       string            `json:"product"`
	Price         string            `json:"price"`
	Discount      string            `json:"discount"`
	Quantity      string            `json:"quantity"`
	Total         string            `json:"total"`
	RedemptionID  string            `json:"redemption_id,omitempty"`
	Context       map[string]string `json:"context,omitempty"`
}

// RedemptionDTO represents a campaign redemption in API responses.
type RedemptionDTO struct {
	ID         string `json:"id"`
	CampaignID int64  `json:"campaign_id"`
	CustomerID string `json:"customer_id"`
}

// StatsDTO reports row counts across the output and reference tables.
type StatsDTO struct {
	Scenario string         `json:"scenario,omitempty"`
	Counts   map[string]int `json:"counts"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

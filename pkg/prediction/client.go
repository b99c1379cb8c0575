package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Request carries the operational features the model scores on.
type Request struct {
	EquipmentID          int     `json:"equipment_id"`
	AgeMonths            int     `json:"age_months"`
	OperatingTemperature float64 `json:"operating_temperature"`
	VibrationLevel       float64 `json:"vibration_level"`
	PowerConsumption     float64 `json:"power_consumption"`
}

// Result is the model's answer for one equipment item. A non-2xx response,
// timeout, or network error yields Success=false with ErrorMessage set; the
// caller falls back to rule-based scoring.
type Result struct {
	Success            bool      `json:"success"`
	EquipmentID        int       `json:"equipment_id"`
	FailureProbability float64   `json:"failure_probability"`
	RiskLevel          string    `json:"risk_level"`
	ConfidenceScore    float64   `json:"confidence_score"`
	ModelVersion       string    `json:"model_version"`
	Timestamp          time.Time `json:"prediction_timestamp"`
	ErrorMessage       string    `json:"-"`
}

// Client calls the external failure-prediction API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a prediction endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Predict scores one equipment item. Failures are returned in-band so one
// unreachable call never aborts the cycle for other equipment.
func (c *Client) Predict(ctx context.Context, req Request) Result {
	body, err := json.Marshal(req)
	if err != nil {
		return failed(req.EquipmentID, fmt.Sprintf("marshal request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/equipment/predict", bytes.NewReader(body))
	if err != nil {
		return failed(req.EquipmentID, fmt.Sprintf("build request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return failed(req.EquipmentID, fmt.Sprintf("prediction service unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failed(req.EquipmentID, fmt.Sprintf("prediction API returned %d", resp.StatusCode))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failed(req.EquipmentID, fmt.Sprintf("decode response: %v", err))
	}
	if result.EquipmentID == 0 {
		result.EquipmentID = req.EquipmentID
	}
	return result
}

// Healthy probes the API health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func failed(equipmentID int, msg string) Result {
	return Result{Success: false, EquipmentID: equipmentID, ErrorMessage: msg}
}

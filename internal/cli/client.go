package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// ActionResponse — action из API.
type ActionResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Name       string `json:"name,omitempty"`
	Deployment string `json:"deployment"`
	Node       string `json:"node,omitempty"`
	Status     string `json:"status"`
	Attempt    int    `json:"attempt"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// RuleResponse — indexing rule из API.
type RuleResponse struct {
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifier_type"`
	DecisionBasis  string `json:"decision_basis"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// NodeResponse — узел из пула.
type NodeResponse struct {
	ID string `json:"id"`
}

// --- Request types ---

// EnsureDeploymentRequest — постановка ENSURE.
type EnsureDeploymentRequest struct {
	Deployment string `json:"deployment"`
	Name       string `json:"name,omitempty"`
	Node       string `json:"node,omitempty"`
}

// ListActionsOpts — параметры фильтрации actions.
type ListActionsOpts struct {
	Status     string
	Deployment string
	Limit      int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Subgraphd API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Deployments ---

// EnsureDeployment ставит ENSURE в очередь.
func (c *Client) EnsureDeployment(req EnsureDeploymentRequest) (*ActionResponse, error) {
	var action ActionResponse
	err := c.post("/api/v1/deployments", req, &action)
	return &action, err
}

// RemoveDeployment ставит REMOVE в очередь.
func (c *Client) RemoveDeployment(deployment string) (*ActionResponse, error) {
	var action ActionResponse
	err := c.doData(http.MethodDelete, "/api/v1/deployments/"+url.PathEscape(deployment), nil, &action)
	return &action, err
}

// --- Actions ---

// ListActions возвращает actions с фильтрацией и общее количество.
func (c *Client) ListActions(opts ListActionsOpts) ([]ActionResponse, int, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", strings.ToUpper(opts.Status))
	}
	if opts.Deployment != "" {
		params.Set("deployment", opts.Deployment)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var actions []ActionResponse
	total, err := c.list("/api/v1/actions", params, &actions)
	return actions, total, err
}

// GetAction возвращает action по ID.
func (c *Client) GetAction(id string) (*ActionResponse, error) {
	var action ActionResponse
	err := c.get("/api/v1/actions/"+url.PathEscape(id), &action)
	return &action, err
}

// --- Rules ---

// ListRules возвращает indexing rules. Если basis не пустой — фильтрует.
func (c *Client) ListRules(basis string) ([]RuleResponse, error) {
	params := url.Values{}
	if basis != "" {
		params.Set("decision_basis", basis)
	}

	var rules []RuleResponse
	_, err := c.list("/api/v1/rules", params, &rules)
	return rules, err
}

// GetRule возвращает правило по identifier.
func (c *Client) GetRule(identifier string) (*RuleResponse, error) {
	var rule RuleResponse
	err := c.get("/api/v1/rules/"+url.PathEscape(identifier), &rule)
	return &rule, err
}

// --- Nodes ---

// ListNodes возвращает пул узлов.
func (c *Client) ListNodes() ([]NodeResponse, error) {
	var nodes []NodeResponse
	_, err := c.list("/api/v1/nodes", nil, &nodes)
	return nodes, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) (int, error) {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return 0, err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return lr.Total, json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}

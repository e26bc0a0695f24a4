package graphnode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/telemetry"
)

// DefaultDeployTimeout — жёсткий таймаут subgraph_deploy.
const DefaultDeployTimeout = 120 * time.Second

// JSON-RPC методы node-management endpoint.
const (
	MethodCreate   = "subgraph_create"
	MethodDeploy   = "subgraph_deploy"
	MethodReassign = "subgraph_reassign"
)

// Endpoints — адреса, по которым развёрнутый subgraph доступен для запросов.
type Endpoints struct {
	Playground    string `json:"playground,omitempty"`
	Queries       string `json:"queries,omitempty"`
	Subscriptions string `json:"subscriptions,omitempty"`
}

// --- JSON-RPC envelope ---

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- Params ---

type createParams struct {
	Name string `json:"name"`
}

type deployParams struct {
	Name     string `json:"name"`
	IPFSHash string `json:"ipfs_hash"`
	NodeID   string `json:"node_id,omitempty"`
}

type reassignParams struct {
	NodeID   string `json:"node_id"`
	IPFSHash string `json:"ipfs_hash"`
}

// Client — JSON-RPC клиент node-management (admin) endpoint.
//
// Клиент не классифицирует ошибки и ничего не подавляет:
// "already exists" и "unchanged" возвращаются как RemoteError.
type Client struct {
	endpoint      string
	httpClient    *http.Client
	deployTimeout time.Duration
	logger        *slog.Logger
	nextID        atomic.Uint64
}

// ClientConfig — конфигурация Client.
type ClientConfig struct {
	// Endpoint — URL admin endpoint (например, http://graph-node:8020).
	Endpoint string

	// DeployTimeout — таймаут subgraph_deploy (default: 120s).
	DeployTimeout time.Duration

	// HTTPClient — опционально. Без таймаута: create и reassign
	// ограничены только транспортом и контекстом.
	HTTPClient *http.Client

	// Logger
	Logger *slog.Logger
}

// NewClient создаёт клиент.
func NewClient(cfg ClientConfig) *Client {
	deployTimeout := cfg.DeployTimeout
	if deployTimeout <= 0 {
		deployTimeout = DefaultDeployTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:      cfg.Endpoint,
		httpClient:    httpClient,
		deployTimeout: deployTimeout,
		logger:        logger,
	}
}

// CreateSubgraph регистрирует имя subgraph.
func (c *Client) CreateSubgraph(ctx context.Context, name string) error {
	return c.call(ctx, MethodCreate, createParams{Name: name}, nil)
}

// DeploySubgraph разворачивает deployment под именем name на узле node.
// Вызов ограничен DeployTimeout; по истечении возвращается TransportError с ErrTimeout.
func (c *Client) DeploySubgraph(ctx context.Context, name string, deployment domain.DeploymentID, node domain.NodeID) (*Endpoints, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deployTimeout)
	defer cancel()

	params := deployParams{
		Name:     name,
		IPFSHash: deployment.String(),
		NodeID:   node.String(),
	}

	var endpoints Endpoints
	if err := c.call(ctx, MethodDeploy, params, &endpoints); err != nil {
		return nil, err
	}
	return &endpoints, nil
}

// ReassignSubgraph назначает deployment на узел node.
// domain.UnassignedNode снимает deployment со всех узлов.
func (c *Client) ReassignSubgraph(ctx context.Context, node domain.NodeID, deployment domain.DeploymentID) error {
	params := reassignParams{
		NodeID:   node.String(),
		IPFSHash: deployment.String(),
	}
	return c.call(ctx, MethodReassign, params, nil)
}

// call выполняет JSON-RPC вызов и учитывает его в метриках.
func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	start := time.Now()
	err := c.do(ctx, method, params, result)

	telemetry.RPCDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	telemetry.RPCRequests.WithLabelValues(method, resultLabel(err)).Inc()

	if err != nil {
		c.logger.Debug("rpc call failed",
			"method", method,
			"duration", time.Since(start),
			"error", err,
		)
	}
	return err
}

func (c *Client) do(ctx context.Context, method string, params any, result any) error {
	// 1. Формируем запрос
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Method: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	// 2. Выполняем
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportError(method, fmt.Errorf("read response: %w", err))
	}

	// 3. Разбираем envelope
	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		if resp.StatusCode >= 400 {
			return &TransportError{
				Method: method,
				Err:    fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 200)),
			}
		}
		return &TransportError{Method: method, Err: fmt.Errorf("%w: %v", ErrBadResponse, err)}
	}

	if rpcResp.Error != nil {
		return &RemoteError{
			Method:  method,
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
		}
	}

	if resp.StatusCode >= 400 {
		return &TransportError{Method: method, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	// 4. Результат (null для create/reassign)
	if result != nil && len(rpcResp.Result) > 0 && string(rpcResp.Result) != "null" {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return &TransportError{Method: method, Err: fmt.Errorf("%w: decode result: %v", ErrBadResponse, err)}
		}
	}

	return nil
}

// transportError оборачивает ошибку транспорта; истечение дедлайна — ErrTimeout.
func (c *Client) transportError(method string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return &TransportError{Method: method, Err: err}
}

// resultLabel — значение метки result для метрик.
func resultLabel(err error) string {
	switch Classify(err) {
	case KindNone:
		return "ok"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport_error"
	default:
		return "remote_error"
	}
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

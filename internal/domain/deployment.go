package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	// DeploymentIDPrefix — канонический префикс CIDv0 (base58 sha2-256 multihash).
	DeploymentIDPrefix = "Qm"

	// DeploymentIDLength — длина CIDv0 в символах.
	DeploymentIDLength = 46

	// defaultNamePrefix — префикс имени subgraph по умолчанию.
	defaultNamePrefix = "indexer-agent/"

	// multihash заголовок: sha2-256 (0x12), длина 32 байта (0x20).
	multihashSHA256 = 0x12
	multihashLength = 0x20
)

// UnassignedNode — sentinel-значение узла: deployment снимается со всех узлов.
const UnassignedNode NodeID = "removed"

// ErrInvalidDeploymentID — строка не является корректным идентификатором deployment.
var ErrInvalidDeploymentID = errors.New("invalid deployment id")

// DeploymentID — content-address (IPFS CIDv0) конкретного indexing workload.
//
// Два идентификатора равны тогда и только тогда, когда равны их строки.
// Используется как ключ корреляции в create/deploy/reassign и как
// identifier для indexing rule.
type DeploymentID string

// ParseDeploymentID разбирает идентификатор deployment.
//
// Принимает две формы:
//   - "Qm..." — 46 символов base58 (CIDv0)
//   - "0x..." — 32 байта в hex (bytes32), конвертируется в CIDv0
func ParseDeploymentID(s string) (DeploymentID, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "0x") {
		return fromBytes32(s)
	}

	if len(s) != DeploymentIDLength || !strings.HasPrefix(s, DeploymentIDPrefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDeploymentID, s)
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidDeploymentID, s, err)
	}
	if len(raw) != 34 || raw[0] != multihashSHA256 || raw[1] != multihashLength {
		return "", fmt.Errorf("%w: %q: not a sha2-256 multihash", ErrInvalidDeploymentID, s)
	}

	return DeploymentID(s), nil
}

// MustParseDeploymentID — как ParseDeploymentID, но паникует при ошибке.
// Для констант и тестов.
func MustParseDeploymentID(s string) DeploymentID {
	id, err := ParseDeploymentID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// fromBytes32 конвертирует hex-представление digest в CIDv0.
func fromBytes32(s string) (DeploymentID, error) {
	digest, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidDeploymentID, s, err)
	}
	if len(digest) != 32 {
		return "", fmt.Errorf("%w: %q: expected 32 bytes, got %d", ErrInvalidDeploymentID, s, len(digest))
	}

	raw := make([]byte, 0, 34)
	raw = append(raw, multihashSHA256, multihashLength)
	raw = append(raw, digest...)

	return DeploymentID(base58.Encode(raw)), nil
}

// String возвращает строковое представление (CIDv0).
func (d DeploymentID) String() string {
	return string(d)
}

// IsZero возвращает true для пустого идентификатора.
func (d DeploymentID) IsZero() bool {
	return d == ""
}

// Bytes32 возвращает digest в hex-форме с префиксом 0x.
// Для некорректного идентификатора возвращает пустую строку.
func (d DeploymentID) Bytes32() string {
	raw, err := base58.Decode(string(d))
	if err != nil || len(raw) != 34 {
		return ""
	}
	return "0x" + hex.EncodeToString(raw[2:])
}

// DefaultSubgraphName возвращает имя subgraph, под которым deployment
// регистрируется, если имя не указано явно: "indexer-agent/<последние 10 символов>".
func DefaultSubgraphName(d DeploymentID) string {
	s := string(d)
	if len(s) > 10 {
		s = s[len(s)-10:]
	}
	return defaultNamePrefix + s
}

// NodeID — непрозрачное имя worker-узла (index node).
type NodeID string

// String возвращает строковое представление.
func (n NodeID) String() string {
	return string(n)
}

// IsZero возвращает true, если узел не указан.
func (n NodeID) IsZero() bool {
	return n == ""
}

// DeploymentRequest — запрос на ensure одного deployment.
//
// Создаётся на каждый вызов и после него не используется.
type DeploymentRequest struct {
	// Name — имя subgraph на node-management endpoint.
	Name string `json:"name"`

	// Deployment — идентификатор deployment.
	Deployment DeploymentID `json:"deployment"`

	// Node — целевой узел. Пустое значение — выбрать из пула.
	Node NodeID `json:"node,omitempty"`

	// Depth — текущий уровень рекурсии разрешения graft base (>= 0).
	Depth int `json:"depth"`
}

// Validate проверяет запрос.
func (r DeploymentRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Deployment.IsZero() {
		return errors.New("deployment is required")
	}
	if r.Depth < 0 {
		return fmt.Errorf("depth must be >= 0, got %d", r.Depth)
	}
	return nil
}

// Package graft разбирает отказ deploy из-за отсутствующего graft base.
//
// Deployment может объявить graft base: другой deployment, с которого он
// стартует. Если base нет ни на одном узле, deploy падает с ошибкой,
// содержащей сигнатуру graphnode.GraftBaseMissingSignature и CID base.
// Resolver извлекает CID и решает, можно ли идти глубже по рекурсии.
package graft

import (
	"log/slog"
	"strings"

	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/graphnode"
	"github.com/shaiso/Subgraphd/internal/telemetry"
)

// Kind — результат разбора.
type Kind int

const (
	// NotGraftFailure — ошибка не связана с graft base.
	NotGraftFailure Kind = iota

	// Exhausted — graft base найден, но лимит глубины достигнут.
	Exhausted

	// Malformed — сигнатура есть, но CID base извлечь не удалось.
	Malformed

	// Resolved — CID base извлечён, можно разворачивать base.
	Resolved
)

func (k Kind) String() string {
	switch k {
	case NotGraftFailure:
		return "not_graft_failure"
	case Exhausted:
		return "exhausted"
	case Malformed:
		return "malformed"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Resolution — результат Resolve.
type Resolution struct {
	Kind Kind

	// Base — извлечённый graft base (Exhausted, Resolved).
	// Для Exhausted пуст, если токен не является CID.
	Base domain.DeploymentID
}

// Resolver — разбор ошибок deploy.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver создаёт Resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Resolve разбирает текст ошибки deploy на глубине depth.
//
// Порядок проверок:
//  1. нет сигнатуры → NotGraftFailure
//  2. depth >= maxDepth → Exhausted (Warn)
//  3. токен не является CID → Malformed
//  4. иначе → Resolved
func (r *Resolver) Resolve(message string, depth, maxDepth int) Resolution {
	res := r.resolve(message, depth, maxDepth)
	if res.Kind != NotGraftFailure {
		telemetry.GraftResolutions.WithLabelValues(res.Kind.String()).Inc()
	}
	return res
}

func (r *Resolver) resolve(message string, depth, maxDepth int) Resolution {
	if !strings.Contains(message, graphnode.GraftBaseMissingSignature) {
		return Resolution{Kind: NotGraftFailure}
	}

	token := ExtractGraftBase(message)

	if depth >= maxDepth {
		r.logger.Warn("graft base missing, resolver depth limit reached",
			"depth", depth,
			"max_depth", maxDepth,
			"graft_base", token,
		)
		base, err := domain.ParseDeploymentID(token)
		if err != nil {
			r.logger.Warn("graft base token is not a deployment id",
				"token", token,
				"error", err,
			)
		}
		return Resolution{Kind: Exhausted, Base: base}
	}

	base, err := domain.ParseDeploymentID(token)
	if err != nil {
		r.logger.Warn("graft base missing, cannot extract deployment from error",
			"depth", depth,
			"token", token,
			"error", err,
		)
		return Resolution{Kind: Malformed}
	}

	r.logger.Info("graft base missing, resolving",
		"depth", depth,
		"graft_base", base,
	)
	return Resolution{Kind: Resolved, Base: base}
}

// ExtractGraftBase возвращает первый токен "Qm..." после сигнатуры graft base.
//
// Токен берётся длиной domain.DeploymentIDLength символов; если сообщение
// короче, возвращается остаток. Без сигнатуры или без "Qm" — пустая строка.
// Корректность токена не проверяется.
func ExtractGraftBase(message string) string {
	i := strings.Index(message, graphnode.GraftBaseMissingSignature)
	if i < 0 {
		return ""
	}
	rest := message[i+len(graphnode.GraftBaseMissingSignature):]

	j := strings.Index(rest, domain.DeploymentIDPrefix)
	if j < 0 {
		return ""
	}
	rest = rest[j:]

	if len(rest) > domain.DeploymentIDLength {
		rest = rest[:domain.DeploymentIDLength]
	}
	return rest
}

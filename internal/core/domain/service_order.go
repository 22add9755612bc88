package domain

import (
	"fmt"
	"math"
	"time"

	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
)

// Stored values are the Portuguese labels used by the hospital's frontend.
// They are the canonical wire and persistence representation.

// OrderStatus represents the lifecycle state of a service order.
type OrderStatus string

const (
	StatusOpen          OrderStatus = "Aberto"
	StatusInProgress    OrderStatus = "Em Andamento"
	StatusAwaitingParts OrderStatus = "Aguardando Peças"
	StatusCompleted     OrderStatus = "Finalizado"
	StatusCancelled     OrderStatus = "Cancelado"
)

// ValidStatuses lists every status a service order may hold. Any status may
// move to any other; permissiveness here is a product decision, not an
// oversight, so validation is membership-only.
var ValidStatuses = []OrderStatus{
	StatusOpen,
	StatusInProgress,
	StatusAwaitingParts,
	StatusCompleted,
	StatusCancelled,
}

// IsValid reports whether the status belongs to the closed set.
func (s OrderStatus) IsValid() bool {
	for _, valid := range ValidStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// OrderPriority represents the urgency of a service order.
type OrderPriority string

const (
	PriorityLow      OrderPriority = "Baixa"
	PriorityMedium   OrderPriority = "Média"
	PriorityHigh     OrderPriority = "Alta"
	PriorityCritical OrderPriority = "Crítica"
)

// ValidPriorities lists every accepted priority value.
var ValidPriorities = []OrderPriority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityCritical,
}

// IsValid reports whether the priority belongs to the closed set.
func (p OrderPriority) IsValid() bool {
	for _, valid := range ValidPriorities {
		if p == valid {
			return true
		}
	}
	return false
}

// Team identifies a destination technical team.
type Team string

const (
	TeamIT          Team = "TI"
	TeamMaintenance Team = "Manutenção"
)

// ValidTeams is the closed set of destination teams.
var ValidTeams = []Team{TeamIT, TeamMaintenance}

// IsValid reports whether the team belongs to the closed set.
func (t Team) IsValid() bool {
	for _, valid := range ValidTeams {
		if t == valid {
			return true
		}
	}
	return false
}

// Default labels applied when a requester omits optional fields.
const (
	DefaultOriginTeam  = "Não informado"
	DefaultCategory    = "Geral"
	DefaultClientLabel = "Não informado"
	DefaultDescription = "Não informado"
)

// ServiceOrder is the core domain entity (ordem de serviço).
type ServiceOrder struct {
	ID              int64
	RequesterID     int64
	OriginTeam      string
	DestinationTeam Team
	Category        string
	ClientLabel     string
	Description     string
	Priority        OrderPriority
	Status          OrderStatus
	TechnicalReport *string
	MaterialsUsed   *string
	OpenedAt        time.Time
	ClosedAt        *time.Time
	ResolutionHours *float64

	// Display-only fields joined from the user collaborator by the store.
	RequesterName  string
	RequesterEmail string
}

// ServiceOrderParams carries the raw creation input, including the legacy
// field names still sent by older frontends (solicitante, defeito,
// equipamento).
type ServiceOrderParams struct {
	RequesterID     int64
	OriginTeam      string
	DestinationTeam string
	Category        string
	ClientLabel     string
	Description     string
	Priority        string

	// Legacy aliases.
	Solicitante string
	Defeito     string
	Equipamento string
}

// NewServiceOrder validates the creation input and builds an order in the
// initial Aberto state. The requester id must already be resolved by the
// caller (see the order service for the configurable legacy fallback).
func NewServiceOrder(params ServiceOrderParams, now time.Time) (*ServiceOrder, error) {
	team := Team(params.DestinationTeam)
	if !team.IsValid() {
		return nil, apperrors.ErrInvalidTeam
	}

	if params.RequesterID <= 0 {
		return nil, apperrors.ErrRequesterRequired
	}

	priority := PriorityMedium
	if params.Priority != "" {
		priority = OrderPriority(params.Priority)
		if !priority.IsValid() {
			return nil, apperrors.ErrInvalidPriority
		}
	}

	origin := params.OriginTeam
	if origin == "" {
		origin = DefaultOriginTeam
	}

	category := params.Category
	if category == "" {
		category = DefaultCategory
	}

	client := params.ClientLabel
	if client == "" {
		client = params.Solicitante
	}
	if client == "" {
		client = DefaultClientLabel
	}

	return &ServiceOrder{
		RequesterID:     params.RequesterID,
		OriginTeam:      origin,
		DestinationTeam: team,
		Category:        category,
		ClientLabel:     client,
		Description:     ResolveDescription(params.Description, params.Defeito, params.Equipamento),
		Priority:        priority,
		Status:          StatusOpen,
		OpenedAt:        now,
	}, nil
}

// ResolveDescription merges the current and legacy description fields. When an
// equipment label is present it is folded into the text the same way the
// legacy system recorded it.
func ResolveDescription(description, defeito, equipamento string) string {
	resolved := description
	if resolved == "" {
		resolved = defeito
	}
	if resolved == "" {
		resolved = DefaultDescription
	}
	if equipamento != "" {
		return fmt.Sprintf("Equipamento: %s. Problema: %s", equipamento, resolved)
	}
	return resolved
}

// Complete moves the order into Finalizado and stamps the closing pair.
// ClosedAt and ResolutionHours always change together.
func (o *ServiceOrder) Complete(now time.Time) {
	o.Status = StatusCompleted
	hours := RoundResolutionHours(now.Sub(o.OpenedAt).Hours())
	o.ClosedAt = &now
	o.ResolutionHours = &hours
}

// Reopen applies any non-Finalizado status and clears the closing pair,
// regardless of whether the order was previously completed.
func (o *ServiceOrder) Reopen(status OrderStatus) {
	o.Status = status
	o.ClosedAt = nil
	o.ResolutionHours = nil
}

// IsCompleted reports whether the order is in the Finalizado state.
func (o *ServiceOrder) IsCompleted() bool {
	return o.Status == StatusCompleted
}

// RoundResolutionHours rounds elapsed hours to one decimal, half away from
// zero: 6.25h becomes 6.3.
func RoundResolutionHours(hours float64) float64 {
	return math.Round(hours*10) / 10
}

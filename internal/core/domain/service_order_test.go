package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
)

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status domain.OrderStatus
		want   bool
	}{
		{"Aberto is valid", domain.StatusOpen, true},
		{"Em Andamento is valid", domain.StatusInProgress, true},
		{"Aguardando Peças is valid", domain.StatusAwaitingParts, true},
		{"Finalizado is valid", domain.StatusCompleted, true},
		{"Cancelado is valid", domain.StatusCancelled, true},
		{"empty is invalid", domain.OrderStatus(""), false},
		{"english value is invalid", domain.OrderStatus("Open"), false},
		{"lowercase is invalid", domain.OrderStatus("aberto"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsValid())
		})
	}
}

func TestTeam_IsValid(t *testing.T) {
	assert.True(t, domain.TeamIT.IsValid())
	assert.True(t, domain.TeamMaintenance.IsValid())
	assert.False(t, domain.Team("Enfermagem").IsValid())
	assert.False(t, domain.Team("").IsValid())
}

func TestNewServiceOrder(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		params  domain.ServiceOrderParams
		wantErr error
	}{
		{
			name: "valid minimal order",
			params: domain.ServiceOrderParams{
				RequesterID:     1,
				DestinationTeam: "TI",
				Description:     "Computador não liga",
			},
		},
		{
			name: "missing team",
			params: domain.ServiceOrderParams{
				RequesterID: 1,
				Description: "Computador não liga",
			},
			wantErr: apperrors.ErrInvalidTeam,
		},
		{
			name: "unknown team",
			params: domain.ServiceOrderParams{
				RequesterID:     1,
				DestinationTeam: "Enfermagem",
				Description:     "Troca de leito",
			},
			wantErr: apperrors.ErrInvalidTeam,
		},
		{
			name: "missing requester",
			params: domain.ServiceOrderParams{
				DestinationTeam: "TI",
				Description:     "Computador não liga",
			},
			wantErr: apperrors.ErrRequesterRequired,
		},
		{
			name: "unknown priority",
			params: domain.ServiceOrderParams{
				RequesterID:     1,
				DestinationTeam: "TI",
				Description:     "Computador não liga",
				Priority:        "Urgente",
			},
			wantErr: apperrors.ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := domain.NewServiceOrder(tt.params, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, order)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusOpen, order.Status)
			assert.Equal(t, now, order.OpenedAt)
			assert.Nil(t, order.ClosedAt)
			assert.Nil(t, order.ResolutionHours)
		})
	}
}

func TestNewServiceOrder_Defaults(t *testing.T) {
	now := time.Now()

	order, err := domain.NewServiceOrder(domain.ServiceOrderParams{
		RequesterID:     7,
		DestinationTeam: "Manutenção",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultOriginTeam, order.OriginTeam)
	assert.Equal(t, domain.DefaultCategory, order.Category)
	assert.Equal(t, domain.DefaultClientLabel, order.ClientLabel)
	assert.Equal(t, domain.DefaultDescription, order.Description)
	assert.Equal(t, domain.PriorityMedium, order.Priority)
}

func TestNewServiceOrder_LegacyAliases(t *testing.T) {
	now := time.Now()

	order, err := domain.NewServiceOrder(domain.ServiceOrderParams{
		RequesterID:     7,
		DestinationTeam: "TI",
		Solicitante:     "Dra. Helena",
		Defeito:         "monitor piscando",
		Equipamento:     "Monitor Dell P2419",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "Dra. Helena", order.ClientLabel)
	assert.Equal(t, "Equipamento: Monitor Dell P2419. Problema: monitor piscando", order.Description)
}

func TestResolveDescription(t *testing.T) {
	tests := []struct {
		name        string
		description string
		defeito     string
		equipamento string
		want        string
	}{
		{"description wins over defeito", "descrição nova", "defeito antigo", "", "descrição nova"},
		{"defeito fills empty description", "", "defeito antigo", "", "defeito antigo"},
		{"all empty falls back", "", "", "", domain.DefaultDescription},
		{"equipment folds into text", "tela azul", "", "Notebook HP", "Equipamento: Notebook HP. Problema: tela azul"},
		{"equipment with default text", "", "", "Impressora", "Equipamento: Impressora. Problema: Não informado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ResolveDescription(tt.description, tt.defeito, tt.equipamento))
		})
	}
}

func TestServiceOrder_CompleteAndReopen(t *testing.T) {
	opened := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	order := &domain.ServiceOrder{
		Status:   domain.StatusInProgress,
		OpenedAt: opened,
	}

	closed := opened.Add(6*time.Hour + 15*time.Minute) // 6.25h
	order.Complete(closed)

	assert.True(t, order.IsCompleted())
	require.NotNil(t, order.ClosedAt)
	require.NotNil(t, order.ResolutionHours)
	assert.Equal(t, closed, *order.ClosedAt)
	assert.Equal(t, 6.3, *order.ResolutionHours)

	order.Reopen(domain.StatusAwaitingParts)

	assert.False(t, order.IsCompleted())
	assert.Equal(t, domain.StatusAwaitingParts, order.Status)
	assert.Nil(t, order.ClosedAt)
	assert.Nil(t, order.ResolutionHours)
}

func TestRoundResolutionHours(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{6.25, 6.3},
		{6.24, 6.2},
		{0, 0},
		{0.04, 0},
		{0.05, 0.1},
		{47.96, 48},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.RoundResolutionHours(tt.in))
	}
}

package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/kronos-hms/os-tracker-backend/internal/adapters/primary/http/middleware"
	"github.com/kronos-hms/os-tracker-backend/internal/adapters/primary/validation"
	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
)

// OrderHandler handles HTTP requests for service orders.
type OrderHandler struct {
	orderService ports.OrderService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewOrderHandler creates a new service-order handler.
func NewOrderHandler(orderService ports.OrderService, errorHandler *ErrorHandler, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "order"),
	}
}

// RegisterRoutes sets up the routing for all service-order endpoints.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateOrder)
	r.Get("/", h.HandleListOrders)
	r.Get("/minhas", h.HandleListMine)
	r.Get("/setor/{setor}", h.HandleListByTeam)

	r.Route("/{orderID}", func(r chi.Router) {
		r.Get("/", h.HandleGetOrder)
		r.Put("/status", h.HandleUpdateStatus)
		r.Patch("/prioridade", h.HandleUpdatePriority)
	})
}

// --- Request/Response DTOs ---

// CreateOrderRequest is the JSON body for opening an order. The solicitante,
// defeito and equipamento fields are the older frontend's names and remain
// accepted.
type CreateOrderRequest struct {
	SolicitanteID int64  `json:"solicitante_id"`
	SetorOrigem   string `json:"setor_origem"`
	SetorDestino  string `json:"setor_destino"`
	Categoria     string `json:"categoria"`
	Cliente       string `json:"cliente"`
	Descricao     string `json:"descricao"`
	Prioridade    string `json:"prioridade"`

	Solicitante string `json:"solicitante"`
	Defeito     string `json:"defeito"`
	Equipamento string `json:"equipamento"`
}

// UpdateStatusRequest is the JSON body for a status change. Prioridade is an
// optional reclassification applied in the same write.
type UpdateStatusRequest struct {
	Status          string  `json:"status"`
	RelatoTecnico   *string `json:"relato_tecnico"`
	MateriaisUsados *string `json:"materiais_usados"`
	Prioridade      *string `json:"prioridade"`
}

// Validate checks the status against the closed set early so an obviously
// bad request never reaches the service.
func (r *UpdateStatusRequest) Validate() error {
	v := validation.NewValidator()

	allowed := make([]string, 0, len(domain.ValidStatuses))
	for _, s := range domain.ValidStatuses {
		allowed = append(allowed, string(s))
	}
	v.Required("status", r.Status).OneOf("status", r.Status, allowed)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdatePriorityRequest is the JSON body for standalone reclassification.
type UpdatePriorityRequest struct {
	Prioridade string `json:"prioridade"`
}

// OrderDTO is the JSON shape of a service order. Field names are the
// Portuguese ones the hospital frontend consumes.
type OrderDTO struct {
	ID               int64    `json:"id"`
	SolicitanteID    int64    `json:"solicitante_id"`
	SolicitanteNome  string   `json:"solicitante_nome,omitempty"`
	SolicitanteEmail string   `json:"solicitante_email,omitempty"`
	SetorOrigem      string   `json:"setor_origem"`
	SetorDestino     string   `json:"setor_destino"`
	Categoria        string   `json:"categoria"`
	Cliente          string   `json:"cliente"`
	Descricao        string   `json:"descricao"`
	Prioridade       string   `json:"prioridade"`
	Status           string   `json:"status"`
	RelatoTecnico    *string  `json:"relato_tecnico"`
	MateriaisUsados  *string  `json:"materiais_usados"`
	DataAbertura     string   `json:"data_abertura"`
	DataFechamento   *string  `json:"data_fechamento"`
	TempoResolucao   *float64 `json:"tempo_resolucao_horas"`
}

func toOrderDTO(order *domain.ServiceOrder) OrderDTO {
	var dataFechamento *string
	if order.ClosedAt != nil {
		value := order.ClosedAt.Format(time.RFC3339)
		dataFechamento = &value
	}

	return OrderDTO{
		ID:               order.ID,
		SolicitanteID:    order.RequesterID,
		SolicitanteNome:  order.RequesterName,
		SolicitanteEmail: order.RequesterEmail,
		SetorOrigem:      order.OriginTeam,
		SetorDestino:     string(order.DestinationTeam),
		Categoria:        order.Category,
		Cliente:          order.ClientLabel,
		Descricao:        order.Description,
		Prioridade:       string(order.Priority),
		Status:           string(order.Status),
		RelatoTecnico:    order.TechnicalReport,
		MateriaisUsados:  order.MaterialsUsed,
		DataAbertura:     order.OpenedAt.Format(time.RFC3339),
		DataFechamento:   dataFechamento,
		TempoResolucao:   order.ResolutionHours,
	}
}

func toOrderDTOs(orders []*domain.ServiceOrder) []OrderDTO {
	response := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		response = append(response, toOrderDTO(order))
	}
	return response
}

// --- Handlers ---

// HandleCreateOrder handles POST /os.
func (h *OrderHandler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[CreateOrderRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	requesterID := req.SolicitanteID
	if claims, ok := mw.ClaimsFromContext(r.Context()); ok {
		requesterID = claims.UserID
	}

	params := ports.CreateOrderParams{
		RequesterID:     requesterID,
		OriginTeam:      req.SetorOrigem,
		DestinationTeam: req.SetorDestino,
		Category:        req.Categoria,
		ClientLabel:     req.Cliente,
		Description:     req.Descricao,
		Priority:        req.Prioridade,
		Solicitante:     req.Solicitante,
		Defeito:         req.Defeito,
		Equipamento:     req.Equipamento,
	}

	id, err := h.orderService.CreateOrder(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("service order created", "order_id", id, "requester_id", requesterID)

	WriteCreated(w, map[string]any{
		"id":       id,
		"mensagem": "Ordem de serviço criada com sucesso",
	})
}

// HandleListOrders handles GET /os with optional setor, status and prioridade
// query filters. Absent filters and the literal "todos" mean no constraint.
func (h *OrderHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	filter := ports.OrderFilter{
		Team:     r.URL.Query().Get("setor"),
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("prioridade"),
	}

	orders, err := h.orderService.ListOrders(r.Context(), filter)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toOrderDTOs(orders))
}

// HandleListMine handles GET /os/minhas for the authenticated requester.
func (h *OrderHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.ClaimsFromContext(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}

	orders, err := h.orderService.ListByRequester(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toOrderDTOs(orders))
}

// HandleListByTeam handles GET /os/setor/{setor}, a technician pool's queue.
func (h *OrderHandler) HandleListByTeam(w http.ResponseWriter, r *http.Request) {
	team := chi.URLParam(r, "setor")

	orders, err := h.orderService.ListByDestinationTeam(r.Context(), team)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toOrderDTOs(orders))
}

// HandleGetOrder handles GET /os/{orderID}.
func (h *OrderHandler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseOrderID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toOrderDTO(order))
}

// HandleUpdateStatus handles PUT /os/{orderID}/status.
func (h *OrderHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseOrderID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	affected, err := h.orderService.UpdateStatus(r.Context(), ports.UpdateStatusParams{
		OrderID:         id,
		Status:          req.Status,
		TechnicalReport: req.RelatoTecnico,
		MaterialsUsed:   req.MateriaisUsados,
		Priority:        req.Prioridade,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if affected == 0 {
		h.errorHandler.Handle(w, r, apperrors.ErrOrderNotFound)
		return
	}

	h.logger.Info("service order status updated", "order_id", id, "status", req.Status)

	WriteSuccess(w, map[string]any{"mensagem": "Status atualizado com sucesso"})
}

// HandleUpdatePriority handles PATCH /os/{orderID}/prioridade.
func (h *OrderHandler) HandleUpdatePriority(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseOrderID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdatePriorityRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	affected, err := h.orderService.UpdatePriority(r.Context(), id, req.Prioridade)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if affected == 0 {
		h.errorHandler.Handle(w, r, apperrors.ErrOrderNotFound)
		return
	}

	h.logger.Info("service order reclassified", "order_id", id, "priority", req.Prioridade)

	WriteSuccess(w, map[string]any{"mensagem": "Prioridade atualizada com sucesso"})
}

func (h *OrderHandler) parseOrderID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError(err, "Identificador de ordem inválido")
	}
	return id, nil
}

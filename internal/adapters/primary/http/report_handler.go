package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
)

// ReportHandler handles HTTP requests for the supervisors' reports.
type ReportHandler struct {
	reportService ports.ReportService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reportService ports.ReportService, errorHandler *ErrorHandler, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "report"),
	}
}

// RegisterRoutes sets up the routing for the reporting endpoints.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleGeneralReport)
	r.Get("/tecnicos", h.HandleTeamReport)
	r.Get("/setores", h.HandleListTeams)
}

// --- Response DTOs ---

// StatisticsDTO is the JSON shape of the report summary block.
type StatisticsDTO struct {
	Total               int     `json:"total"`
	Finalizadas         int     `json:"finalizadas"`
	Abertas             int     `json:"abertas"`
	EmAndamento         int     `json:"em_andamento"`
	AguardandoPecas     int     `json:"aguardando_pecas"`
	TaxaConclusao       float64 `json:"taxa_conclusao"`
	TempoMedioResolucao float64 `json:"tempo_medio_resolucao"`
	SetorMaisDemandante string  `json:"setor_mais_demandante"`
	SLACumprido         float64 `json:"sla_cumprido"`
	OrdensDentroSLA     int     `json:"ordens_dentro_sla"`
}

// GroupingsDTO is the JSON shape of the report grouping block.
type GroupingsDTO struct {
	PorStatus        map[string]int `json:"por_status"`
	PorPrioridade    map[string]int `json:"por_prioridade"`
	PorSetorOrigem   map[string]int `json:"por_setor_origem"`
	PorSetorExecutor map[string]int `json:"por_setor_executor"`
	PorMes           map[string]int `json:"por_mes"`
}

// ReportDTO bundles the three report views the dashboard renders.
type ReportDTO struct {
	Ordens       []OrderDTO    `json:"ordens"`
	Estatisticas StatisticsDTO `json:"estatisticas"`
	Agrupamentos GroupingsDTO  `json:"agrupamentos"`
}

// TeamPerformanceDTO is one row of the per-team workload report.
type TeamPerformanceDTO struct {
	Setor           string  `json:"setor"`
	TotalOrdens     int64   `json:"total_ordens"`
	Finalizadas     int64   `json:"finalizadas"`
	TaxaSucesso     float64 `json:"taxa_sucesso"`
	TempoMedioHoras float64 `json:"tempo_medio_horas"`
}

func toReportDTO(report *domain.Report) ReportDTO {
	return ReportDTO{
		Ordens: toOrderDTOs(report.Orders),
		Estatisticas: StatisticsDTO{
			Total:               report.Statistics.TotalOrders,
			Finalizadas:         report.Statistics.Completed,
			Abertas:             report.Statistics.Open,
			EmAndamento:         report.Statistics.InProgress,
			AguardandoPecas:     report.Statistics.AwaitingParts,
			TaxaConclusao:       report.Statistics.CompletionRate,
			TempoMedioResolucao: report.Statistics.AverageResolutionTime,
			SetorMaisDemandante: report.Statistics.TopOriginTeam,
			SLACumprido:         report.Statistics.SLACompliance,
			OrdensDentroSLA:     report.Statistics.OrdersWithinSLA,
		},
		Agrupamentos: GroupingsDTO{
			PorStatus:        report.Groupings.ByStatus,
			PorPrioridade:    report.Groupings.ByPriority,
			PorSetorOrigem:   report.Groupings.ByRequestingTeam,
			PorSetorExecutor: report.Groupings.ByExecutingTeam,
			PorMes:           report.Groupings.ByMonth,
		},
	}
}

// --- Handlers ---

// HandleGeneralReport handles GET /relatorios with optional setor, status and
// prioridade filters applied to the underlying snapshot.
func (h *ReportHandler) HandleGeneralReport(w http.ResponseWriter, r *http.Request) {
	filter := ports.OrderFilter{
		Team:     r.URL.Query().Get("setor"),
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("prioridade"),
	}

	report, err := h.reportService.GeneralReport(r.Context(), filter)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toReportDTO(report))
}

// HandleTeamReport handles GET /relatorios/tecnicos.
func (h *ReportHandler) HandleTeamReport(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reportService.TeamReport(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	rows := make([]TeamPerformanceDTO, 0, len(summary))
	for _, item := range summary {
		rows = append(rows, TeamPerformanceDTO{
			Setor:           item.Team,
			TotalOrdens:     item.TotalOrders,
			Finalizadas:     item.Completed,
			TaxaSucesso:     item.SuccessRate,
			TempoMedioHoras: item.AvgResolutionHrs,
		})
	}

	WriteSuccess(w, rows)
}

// HandleListTeams handles GET /relatorios/setores, the filter dropdown source.
func (h *ReportHandler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.reportService.ListTeams(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, teams)
}

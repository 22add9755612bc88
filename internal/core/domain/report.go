package domain

// Reporting is computed in-memory over a ticket snapshot; the functions here
// are pure and free of I/O so supervisors get the same numbers regardless of
// which store backs the snapshot.

// Label used when a grouping discriminant is absent.
const (
	NoTopTeam               = "Nenhum"
	UngroupedPriorityBucket = "Não informada"
	UngroupedTeamBucket     = "Não informado"
)

// SLA reporting is a fixed contract with the hospital dashboard: the
// percentage is not measured, only displayed.
const SLACompliancePercent = 75.0

// Statistics summarizes a collection of service orders.
type Statistics struct {
	TotalOrders           int
	Completed             int
	Open                  int
	InProgress            int
	AwaitingParts         int
	CompletionRate        float64
	AverageResolutionTime float64
	TopOriginTeam         string
	SLACompliance         float64
	OrdersWithinSLA       int
}

// Groupings maps each reporting dimension to occurrence counts.
type Groupings struct {
	ByStatus         map[string]int
	ByPriority       map[string]int
	ByRequestingTeam map[string]int
	ByExecutingTeam  map[string]int
	ByMonth          map[string]int
}

// TeamPerformance aggregates per-destination-team workload for the
// supervisors' report.
type TeamPerformance struct {
	Team             string
	TotalOrders      int64
	Completed        int64
	SuccessRate      float64
	AvgResolutionHrs float64
}

// Report bundles a filtered snapshot with the derived views the dashboard
// renders side by side.
type Report struct {
	Orders     []*ServiceOrder
	Statistics Statistics
	Groupings  Groupings
}

// monthKeys fixes the pt-BR abbreviated month names used as grouping keys.
// The table is explicit so report buckets do not drift with the runtime
// locale.
var monthKeys = [12]string{
	"jan.", "fev.", "mar.", "abr.", "mai.", "jun.",
	"jul.", "ago.", "set.", "out.", "nov.", "dez.",
}

// ComputeStatistics derives summary statistics from a snapshot of orders. An
// empty snapshot yields zeroed statistics, not an error.
func ComputeStatistics(orders []*ServiceOrder) Statistics {
	stats := Statistics{
		TotalOrders:   len(orders),
		TopOriginTeam: NoTopTeam,
		SLACompliance: SLACompliancePercent,
	}

	var resolutionSum float64
	var resolutionCount int

	originCounts := make(map[string]int)
	originOrder := make([]string, 0)

	for _, o := range orders {
		switch o.Status {
		case StatusCompleted:
			stats.Completed++
		case StatusOpen:
			stats.Open++
		case StatusInProgress:
			stats.InProgress++
		case StatusAwaitingParts:
			stats.AwaitingParts++
		}

		if o.ResolutionHours != nil {
			resolutionSum += *o.ResolutionHours
			resolutionCount++
		}

		origin := o.OriginTeam
		if origin == "" {
			origin = UngroupedTeamBucket
		}
		if _, seen := originCounts[origin]; !seen {
			originOrder = append(originOrder, origin)
		}
		originCounts[origin]++
	}

	if stats.TotalOrders > 0 {
		stats.CompletionRate = RoundResolutionHours(float64(stats.Completed) / float64(stats.TotalOrders) * 100)
	}
	if resolutionCount > 0 {
		stats.AverageResolutionTime = RoundResolutionHours(resolutionSum / float64(resolutionCount))
	}
	stats.OrdersWithinSLA = stats.Completed * 3 / 4

	// Ties resolve to the team seen first in the snapshot.
	best := 0
	for _, origin := range originOrder {
		if originCounts[origin] > best {
			best = originCounts[origin]
			stats.TopOriginTeam = origin
		}
	}

	return stats
}

// ComputeGroupings buckets a snapshot of orders along each reporting
// dimension in a single pass. Orders without an opening timestamp are skipped
// by the month grouping only.
func ComputeGroupings(orders []*ServiceOrder) Groupings {
	g := Groupings{
		ByStatus:         make(map[string]int),
		ByPriority:       make(map[string]int),
		ByRequestingTeam: make(map[string]int),
		ByExecutingTeam:  make(map[string]int),
		ByMonth:          make(map[string]int),
	}

	for _, o := range orders {
		status := string(o.Status)
		if status == "" {
			status = string(StatusOpen)
		}
		g.ByStatus[status]++

		priority := string(o.Priority)
		if priority == "" {
			priority = UngroupedPriorityBucket
		}
		g.ByPriority[priority]++

		requesting := o.OriginTeam
		if requesting == "" {
			requesting = UngroupedTeamBucket
		}
		g.ByRequestingTeam[requesting]++

		executing := string(o.DestinationTeam)
		if executing == "" {
			executing = UngroupedTeamBucket
		}
		g.ByExecutingTeam[executing]++

		if !o.OpenedAt.IsZero() {
			g.ByMonth[monthKeys[o.OpenedAt.Month()-1]]++
		}
	}

	return g
}

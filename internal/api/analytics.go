package api

import (
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"

	"travelnosql/internal/etl"
	"travelnosql/pkg/utils"
)

type flightOverview struct {
	TotalFlights     int64   `json:"total_flights"`
	DelayedFlights   int64   `json:"delayed_flights"`
	CancelledFlights int64   `json:"cancelled_flights"`
	OntimeFlights    int64   `json:"ontime_flights"`
	AvgDelayMinutes  float64 `json:"avg_delay_minutes"`
}

type routeDelay struct {
	Route        string  `json:"route"`
	AvgDelayMins float64 `json:"avg_delay_mins"`
}

type flightOperationsReport struct {
	Overview            flightOverview `json:"overview"`
	LeastPunctualRoutes []routeDelay   `json:"least_punctual_routes"`
}

// FlightOperations reports fleet-wide punctuality: status counters, the
// average departure delay and the five routes with the worst arrival delays.
func (s *Server) FlightOperations(c *fiber.Ctx) error {
	const cacheKey = "analytics:flight-operations"
	var report flightOperationsReport
	if s.cache.Get(c.Context(), cacheKey, &report) {
		return utils.SuccessResponse(c, fiber.StatusOK, report)
	}

	db := s.pg.WithContext(c.Context())
	if err := db.Raw(`
		SELECT
			COUNT(*) AS total_flights,
			COALESCE(SUM(CASE WHEN status = 'Delayed' THEN 1 ELSE 0 END), 0) AS delayed_flights,
			COALESCE(SUM(CASE WHEN status = 'Cancelled' THEN 1 ELSE 0 END), 0) AS cancelled_flights,
			COALESCE(SUM(CASE WHEN status IN ('Arrived', 'On Time') THEN 1 ELSE 0 END), 0) AS ontime_flights,
			ROUND(COALESCE(AVG(
				CASE WHEN actual_departure IS NOT NULL
					THEN EXTRACT(EPOCH FROM (actual_departure - scheduled_departure)) / 60
					ELSE 0 END
			), 0)::numeric, 2)::float8 AS avg_delay_minutes
		FROM flights
	`).Scan(&report.Overview).Error; err != nil {
		s.log.Error("flight operations query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute flight operations", err)
	}

	if err := db.Raw(`
		SELECT
			departure_airport || ' -> ' || arrival_airport AS route,
			ROUND(AVG(EXTRACT(EPOCH FROM (actual_arrival - scheduled_arrival)) / 60)::numeric, 2)::float8 AS avg_delay_mins
		FROM flights
		WHERE status = 'Arrived'
			AND actual_arrival IS NOT NULL
			AND actual_arrival > scheduled_arrival
		GROUP BY departure_airport, arrival_airport
		ORDER BY avg_delay_mins DESC
		LIMIT 5
	`).Scan(&report.LeastPunctualRoutes).Error; err != nil {
		s.log.Error("route delay query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute flight operations", err)
	}

	s.cache.Set(c.Context(), cacheKey, report)
	return utils.SuccessResponse(c, fiber.StatusOK, report)
}

type busyRoute struct {
	Route            string  `json:"route"`
	FlightCount      int64   `json:"flight_count"`
	OntimePercentage float64 `json:"ontime_percentage"`
}

type busyAirport struct {
	Airport        string `json:"airport"`
	DepartureCount int64  `json:"departure_count"`
}

type ontimeRoute struct {
	Route         string  `json:"route"`
	TotalFlights  int64   `json:"total_flights"`
	OntimeFlights int64   `json:"ontime_flights"`
	OntimeRate    float64 `json:"ontime_rate"`
}

type routePerformanceReport struct {
	BusiestRoutes     []busyRoute   `json:"busiest_routes"`
	BusiestAirports   []busyAirport `json:"busiest_airports"`
	OntimePerformance []ontimeRoute `json:"ontime_performance"`
}

// RoutePerformance ranks routes by traffic and punctuality and lists the
// busiest departure airports with their localized city names.
func (s *Server) RoutePerformance(c *fiber.Ctx) error {
	const cacheKey = "analytics:route-performance"
	var report routePerformanceReport
	if s.cache.Get(c.Context(), cacheKey, &report) {
		return utils.SuccessResponse(c, fiber.StatusOK, report)
	}

	db := s.pg.WithContext(c.Context())
	if err := db.Raw(`
		SELECT
			departure_airport || ' -> ' || arrival_airport AS route,
			COUNT(*) AS flight_count,
			ROUND(AVG(CASE WHEN status IN ('Arrived', 'On Time') THEN 1.0 ELSE 0.0 END) * 100, 2)::float8 AS ontime_percentage
		FROM flights
		GROUP BY departure_airport, arrival_airport
		ORDER BY flight_count DESC
		LIMIT 10
	`).Scan(&report.BusiestRoutes).Error; err != nil {
		s.log.Error("busiest routes query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute route performance", err)
	}

	var airports []struct {
		AirportCode    string
		City           string
		DepartureCount int64
	}
	if err := db.Raw(`
		SELECT
			f.departure_airport AS airport_code,
			COALESCE(a.city::text, '') AS city,
			COUNT(*) AS departure_count
		FROM flights f
		LEFT JOIN airports_data a ON a.airport_code = f.departure_airport
		GROUP BY f.departure_airport, a.city
		ORDER BY departure_count DESC
		LIMIT 10
	`).Scan(&airports).Error; err != nil {
		s.log.Error("busiest airports query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute route performance", err)
	}
	report.BusiestAirports = make([]busyAirport, 0, len(airports))
	for _, a := range airports {
		report.BusiestAirports = append(report.BusiestAirports, busyAirport{
			Airport:        fmt.Sprintf("%s (%s)", etl.DisplayName(a.City), a.AirportCode),
			DepartureCount: a.DepartureCount,
		})
	}

	if err := db.Raw(`
		SELECT
			departure_airport || ' -> ' || arrival_airport AS route,
			COUNT(*) AS total_flights,
			SUM(CASE WHEN status IN ('Arrived', 'On Time') THEN 1 ELSE 0 END) AS ontime_flights,
			ROUND(SUM(CASE WHEN status IN ('Arrived', 'On Time') THEN 1.0 ELSE 0.0 END) / COUNT(*) * 100, 2)::float8 AS ontime_rate
		FROM flights
		GROUP BY departure_airport, arrival_airport
		HAVING COUNT(*) >= 10
		ORDER BY ontime_rate DESC
		LIMIT 10
	`).Scan(&report.OntimePerformance).Error; err != nil {
		s.log.Error("ontime performance query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute route performance", err)
	}

	s.cache.Set(c.Context(), cacheKey, report)
	return utils.SuccessResponse(c, fiber.StatusOK, report)
}

type aircraftLoad struct {
	AircraftCode  string  `json:"aircraft_code"`
	AircraftModel string  `json:"aircraft_model"`
	TotalFlights  int64   `json:"total_flights"`
	TicketsSold   int64   `json:"tickets_sold"`
	TotalSeats    int64   `json:"total_seats"`
	LoadFactor    float64 `json:"load_factor"`
}

type fareShare struct {
	FareConditions string  `json:"fare_conditions"`
	TicketCount    int64   `json:"ticket_count"`
	Percentage     float64 `json:"percentage"`
}

type passengerDemandReport struct {
	LoadFactors      []aircraftLoad `json:"load_factors"`
	FareDistribution []fareShare    `json:"fare_distribution"`
}

// PassengerDemand reports seat load factor per aircraft model and how
// ticket sales split across fare conditions.
func (s *Server) PassengerDemand(c *fiber.Ctx) error {
	const cacheKey = "analytics:passenger-demand"
	var report passengerDemandReport
	if s.cache.Get(c.Context(), cacheKey, &report) {
		return utils.SuccessResponse(c, fiber.StatusOK, report)
	}

	db := s.pg.WithContext(c.Context())
	var loads []struct {
		AircraftCode  string
		AircraftModel string
		TotalFlights  int64
		TicketsSold   int64
		TotalSeats    int64
		LoadFactor    float64
	}
	if err := db.Raw(`
		SELECT
			f.aircraft_code,
			COALESCE(ac.model::text, '') AS aircraft_model,
			COUNT(DISTINCT f.flight_id) AS total_flights,
			COUNT(tf.ticket_no) AS tickets_sold,
			(SELECT COUNT(*) FROM seats s WHERE s.aircraft_code = f.aircraft_code) AS total_seats,
			ROUND(COALESCE(
				COUNT(tf.ticket_no)::numeric * 100 / NULLIF(
					COUNT(DISTINCT f.flight_id) * (SELECT COUNT(*) FROM seats s WHERE s.aircraft_code = f.aircraft_code), 0
				), 0), 2)::float8 AS load_factor
		FROM flights f
		LEFT JOIN ticket_flights tf ON tf.flight_id = f.flight_id
		LEFT JOIN aircrafts_data ac ON ac.aircraft_code = f.aircraft_code
		GROUP BY f.aircraft_code, ac.model
		ORDER BY load_factor DESC
	`).Scan(&loads).Error; err != nil {
		s.log.Error("load factor query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute passenger demand", err)
	}
	report.LoadFactors = make([]aircraftLoad, 0, len(loads))
	for _, l := range loads {
		report.LoadFactors = append(report.LoadFactors, aircraftLoad{
			AircraftCode:  l.AircraftCode,
			AircraftModel: etl.DisplayName(l.AircraftModel),
			TotalFlights:  l.TotalFlights,
			TicketsSold:   l.TicketsSold,
			TotalSeats:    l.TotalSeats,
			LoadFactor:    l.LoadFactor,
		})
	}

	var fares []struct {
		FareConditions string
		TicketCount    int64
	}
	if err := db.Raw(`
		SELECT fare_conditions, COUNT(*) AS ticket_count
		FROM ticket_flights
		GROUP BY fare_conditions
		ORDER BY ticket_count DESC
	`).Scan(&fares).Error; err != nil {
		s.log.Error("fare distribution query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute passenger demand", err)
	}
	var total int64
	for _, f := range fares {
		total += f.TicketCount
	}
	report.FareDistribution = make([]fareShare, 0, len(fares))
	for _, f := range fares {
		share := fareShare{FareConditions: f.FareConditions, TicketCount: f.TicketCount}
		if total > 0 {
			share.Percentage = round2(float64(f.TicketCount) / float64(total) * 100)
		}
		report.FareDistribution = append(report.FareDistribution, share)
	}

	s.cache.Set(c.Context(), cacheKey, report)
	return utils.SuccessResponse(c, fiber.StatusOK, report)
}

type classRevenue struct {
	FareConditions string  `json:"fare_conditions"`
	TicketsSold    int64   `json:"tickets_sold"`
	TotalRevenue   float64 `json:"total_revenue"`
	AvgTicketPrice float64 `json:"avg_ticket_price"`
}

type routeRevenue struct {
	Route          string  `json:"route"`
	TicketsSold    int64   `json:"tickets_sold"`
	TotalRevenue   float64 `json:"total_revenue"`
	AvgTicketPrice float64 `json:"avg_ticket_price"`
}

type monthlyRevenue struct {
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Bookings int64   `json:"bookings"`
}

type revenueReport struct {
	ByClass       []classRevenue   `json:"by_class"`
	TopRoutes     []routeRevenue   `json:"top_routes"`
	MonthlyTrend  []monthlyRevenue `json:"monthly_trend"`
	MonthlyGrowth float64          `json:"monthly_growth"`
}

// RevenueAnalysis breaks revenue down by service class, route and month,
// including month-over-month growth for the latest period.
func (s *Server) RevenueAnalysis(c *fiber.Ctx) error {
	const cacheKey = "analytics:revenue"
	var report revenueReport
	if s.cache.Get(c.Context(), cacheKey, &report) {
		return utils.SuccessResponse(c, fiber.StatusOK, report)
	}

	db := s.pg.WithContext(c.Context())
	if err := db.Raw(`
		SELECT
			fare_conditions,
			COUNT(*) AS tickets_sold,
			ROUND(SUM(amount), 2)::float8 AS total_revenue,
			ROUND(AVG(amount), 2)::float8 AS avg_ticket_price
		FROM ticket_flights
		GROUP BY fare_conditions
		ORDER BY total_revenue DESC
	`).Scan(&report.ByClass).Error; err != nil {
		s.log.Error("revenue by class query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute revenue analysis", err)
	}

	if err := db.Raw(`
		SELECT
			f.departure_airport || ' -> ' || f.arrival_airport AS route,
			COUNT(tf.ticket_no) AS tickets_sold,
			ROUND(SUM(tf.amount), 2)::float8 AS total_revenue,
			ROUND(AVG(tf.amount), 2)::float8 AS avg_ticket_price
		FROM ticket_flights tf
		JOIN flights f ON f.flight_id = tf.flight_id
		GROUP BY f.departure_airport, f.arrival_airport
		ORDER BY total_revenue DESC
		LIMIT 10
	`).Scan(&report.TopRoutes).Error; err != nil {
		s.log.Error("revenue by route query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute revenue analysis", err)
	}

	var months []monthlyRevenue
	if err := db.Raw(`
		SELECT
			to_char(book_date, 'YYYY-MM') AS month,
			ROUND(SUM(total_amount), 2)::float8 AS revenue,
			COUNT(*) AS bookings
		FROM bookings
		GROUP BY to_char(book_date, 'YYYY-MM')
		ORDER BY month DESC
		LIMIT 12
	`).Scan(&months).Error; err != nil {
		s.log.Error("monthly revenue query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute revenue analysis", err)
	}
	// Chronological order for charting, newest last.
	report.MonthlyTrend = make([]monthlyRevenue, 0, len(months))
	for i := len(months) - 1; i >= 0; i-- {
		report.MonthlyTrend = append(report.MonthlyTrend, months[i])
	}
	if n := len(report.MonthlyTrend); n >= 2 {
		report.MonthlyGrowth = round2(utils.CalculateGrowth(
			report.MonthlyTrend[n-1].Revenue, report.MonthlyTrend[n-2].Revenue,
		))
	}

	s.cache.Set(c.Context(), cacheKey, report)
	return utils.SuccessResponse(c, fiber.StatusOK, report)
}

type aircraftUtilization struct {
	AircraftCode  string  `json:"aircraft_code"`
	AircraftModel string  `json:"aircraft_model"`
	TotalFlights  int64   `json:"total_flights"`
	OperatingDays int64   `json:"operating_days"`
	FlightsPerDay float64 `json:"flights_per_day"`
}

type passengerRetention struct {
	TotalPassengers        int64   `json:"total_passengers"`
	TotalTickets           int64   `json:"total_tickets"`
	AvgTicketsPerPassenger float64 `json:"avg_tickets_per_passenger"`
	RepeatPassengers       int64   `json:"repeat_passengers"`
	RepeatRate             float64 `json:"repeat_rate"`
}

type resourcePlanningReport struct {
	Utilization []aircraftUtilization `json:"utilization"`
	Retention   passengerRetention    `json:"retention"`
}

// ResourcePlanning reports fleet utilization (flights per operating day)
// and passenger retention figures.
func (s *Server) ResourcePlanning(c *fiber.Ctx) error {
	const cacheKey = "analytics:resource-planning"
	var report resourcePlanningReport
	if s.cache.Get(c.Context(), cacheKey, &report) {
		return utils.SuccessResponse(c, fiber.StatusOK, report)
	}

	db := s.pg.WithContext(c.Context())
	var rows []struct {
		AircraftCode  string
		AircraftModel string
		TotalFlights  int64
		OperatingDays int64
		FlightsPerDay float64
	}
	if err := db.Raw(`
		SELECT
			f.aircraft_code,
			COALESCE(ac.model::text, '') AS aircraft_model,
			COUNT(*) AS total_flights,
			COUNT(DISTINCT f.scheduled_departure::date) AS operating_days,
			ROUND(COALESCE(COUNT(*)::numeric / NULLIF(COUNT(DISTINCT f.scheduled_departure::date), 0), 0), 2)::float8 AS flights_per_day
		FROM flights f
		LEFT JOIN aircrafts_data ac ON ac.aircraft_code = f.aircraft_code
		GROUP BY f.aircraft_code, ac.model
		ORDER BY flights_per_day DESC
	`).Scan(&rows).Error; err != nil {
		s.log.Error("utilization query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute resource planning", err)
	}
	report.Utilization = make([]aircraftUtilization, 0, len(rows))
	for _, r := range rows {
		report.Utilization = append(report.Utilization, aircraftUtilization{
			AircraftCode:  r.AircraftCode,
			AircraftModel: etl.DisplayName(r.AircraftModel),
			TotalFlights:  r.TotalFlights,
			OperatingDays: r.OperatingDays,
			FlightsPerDay: r.FlightsPerDay,
		})
	}

	if err := db.Raw(`
		SELECT
			COUNT(DISTINCT passenger_id) AS total_passengers,
			COUNT(DISTINCT ticket_no) AS total_tickets,
			ROUND(COALESCE(COUNT(DISTINCT ticket_no)::numeric / NULLIF(COUNT(DISTINCT passenger_id), 0), 0), 2)::float8 AS avg_tickets_per_passenger
		FROM tickets
	`).Scan(&report.Retention).Error; err != nil {
		s.log.Error("passenger stats query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute resource planning", err)
	}

	var repeat struct {
		RepeatPassengers int64
	}
	if err := db.Raw(`
		SELECT COALESCE(SUM(CASE WHEN ticket_count > 1 THEN 1 ELSE 0 END), 0) AS repeat_passengers
		FROM (
			SELECT passenger_id, COUNT(DISTINCT ticket_no) AS ticket_count
			FROM tickets
			GROUP BY passenger_id
		) per_passenger
	`).Scan(&repeat).Error; err != nil {
		s.log.Error("repeat passenger query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute resource planning", err)
	}
	report.Retention.RepeatPassengers = repeat.RepeatPassengers
	if report.Retention.TotalPassengers > 0 {
		report.Retention.RepeatRate = round2(
			float64(repeat.RepeatPassengers) / float64(report.Retention.TotalPassengers) * 100,
		)
	}

	s.cache.Set(c.Context(), cacheKey, report)
	return utils.SuccessResponse(c, fiber.StatusOK, report)
}

type priceStats struct {
	FareConditions string  `json:"fare_conditions"`
	MinPrice       float64 `json:"min_price"`
	MaxPrice       float64 `json:"max_price"`
	AvgPrice       float64 `json:"avg_price"`
	TicketCount    int64   `json:"ticket_count"`
}

type routeYield struct {
	Route            string  `json:"route"`
	Revenue          float64 `json:"revenue"`
	Tickets          int64   `json:"tickets"`
	RevenuePerTicket float64 `json:"revenue_per_ticket"`
}

type advancedMetricsReport struct {
	PriceStats  []priceStats `json:"price_stats"`
	RouteYields []routeYield `json:"route_yields"`
}

// AdvancedMetrics reports price spread per service class and the routes
// with the highest revenue per ticket.
func (s *Server) AdvancedMetrics(c *fiber.Ctx) error {
	const cacheKey = "analytics:advanced-metrics"
	var report advancedMetricsReport
	if s.cache.Get(c.Context(), cacheKey, &report) {
		return utils.SuccessResponse(c, fiber.StatusOK, report)
	}

	db := s.pg.WithContext(c.Context())
	if err := db.Raw(`
		SELECT
			fare_conditions,
			MIN(amount)::float8 AS min_price,
			MAX(amount)::float8 AS max_price,
			ROUND(AVG(amount), 2)::float8 AS avg_price,
			COUNT(*) AS ticket_count
		FROM ticket_flights
		GROUP BY fare_conditions
		ORDER BY avg_price DESC
	`).Scan(&report.PriceStats).Error; err != nil {
		s.log.Error("price stats query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute advanced metrics", err)
	}

	if err := db.Raw(`
		SELECT
			f.departure_airport || ' -> ' || f.arrival_airport AS route,
			ROUND(SUM(tf.amount), 2)::float8 AS revenue,
			COUNT(tf.ticket_no) AS tickets,
			ROUND(SUM(tf.amount) / NULLIF(COUNT(tf.ticket_no), 0), 2)::float8 AS revenue_per_ticket
		FROM ticket_flights tf
		JOIN flights f ON f.flight_id = tf.flight_id
		GROUP BY f.departure_airport, f.arrival_airport
		ORDER BY revenue DESC
		LIMIT 15
	`).Scan(&report.RouteYields).Error; err != nil {
		s.log.Error("route yield query failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to compute advanced metrics", err)
	}

	s.cache.Set(c.Context(), cacheKey, report)
	return utils.SuccessResponse(c, fiber.StatusOK, report)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

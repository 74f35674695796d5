package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pelorus-nav/searisk/internal/eco"
	"github.com/pelorus-nav/searisk/internal/ports"
)

// ErrNoDestinations is returned when an alternatives request carries no
// candidate destinations.
var ErrNoDestinations = errors.New("at least one candidate destination is required")

// AlternativesRequest compares one origin against several candidate
// destinations.
type AlternativesRequest struct {
	Origin       Endpoint         `json:"origin"`
	Destinations []Endpoint       `json:"destinations"`
	Vessel       eco.VesselParams `json:"vessel"`
	Weights      *eco.RankWeights `json:"weights,omitempty"` // nil means the even default split
}

// Alternative is one candidate's outcome. Failed candidates carry an error
// string instead of an assessment and sort after every ranked one.
type Alternative struct {
	Destination string           `json:"destination"`
	Score       float64          `json:"score"`
	Assessment  *RouteAssessment `json:"assessment,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// AlternativesResult is the ranked comparison, best candidate first.
type AlternativesResult struct {
	Origin ports.Port    `json:"origin"`
	Ranked []Alternative `json:"ranked"`
}

type altJob struct {
	index       int
	destination Endpoint
}

type altOutcome struct {
	assessment *RouteAssessment
	err        error
}

// CompareAlternatives assesses every candidate destination concurrently over
// a bounded worker pool and ranks the successful ones by the weighted
// normalized score over ETA, cost, CO2 and mean risk. An unresolvable origin
// is fatal; a failed candidate only drops out of the ranking.
func (s *AssessmentService) CompareAlternatives(
	ctx context.Context,
	req AlternativesRequest,
) (*AlternativesResult, error) {
	if len(req.Destinations) == 0 {
		return nil, ErrNoDestinations
	}

	origin, err := s.resolveEndpoint(ctx, req.Origin)
	if err != nil {
		return nil, fmt.Errorf("resolve origin: %w", err)
	}

	s.log.InfoContext(ctx, "Comparing alternative destinations",
		"origin", origin.Name, "candidates", len(req.Destinations), "num_workers", s.cfg.NumWorkers)

	outcomes := make([]altOutcome, len(req.Destinations))
	jobs := make(chan altJob, len(req.Destinations))
	var wgr sync.WaitGroup

	for i := 1; i <= s.cfg.NumWorkers; i++ {
		wgr.Add(1)
		go s.alternativeWorker(ctx, &wgr, jobs, *origin, req.Vessel, outcomes)
	}

	for i, destination := range req.Destinations {
		jobs <- altJob{index: i, destination: destination}
	}
	close(jobs)

	wgr.Wait()

	return s.rankOutcomes(req, *origin, outcomes), nil
}

// alternativeWorker assesses candidates from the jobs channel. Each outcome
// lands in its own slice slot, so workers never contend.
func (s *AssessmentService) alternativeWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan altJob,
	origin ports.Port,
	vessel eco.VesselParams,
	outcomes []altOutcome,
) {
	defer wg.Done()
	for job := range jobs {
		s.metrics.ActiveWorkers.Inc()

		destination, err := s.resolveEndpoint(ctx, job.destination)
		if err == nil {
			var assessment *RouteAssessment
			assessment, err = s.assessResolved(ctx, origin, *destination, vessel)
			outcomes[job.index] = altOutcome{assessment: assessment, err: err}
		} else {
			outcomes[job.index] = altOutcome{err: err}
		}

		if err != nil {
			s.metrics.Assessments.WithLabelValues("failure").Inc()
			s.log.WarnContext(ctx, "Candidate assessment failed", "candidate", job.index, "error", err)
		} else {
			s.metrics.Assessments.WithLabelValues("success").Inc()
		}

		s.metrics.ActiveWorkers.Dec()
	}
}

// rankOutcomes orders the successful candidates by weighted normalized score
// and appends the failed ones, input order preserved inside each group.
func (s *AssessmentService) rankOutcomes(
	req AlternativesRequest,
	origin ports.Port,
	outcomes []altOutcome,
) *AlternativesResult {
	weights := eco.DefaultRankWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}

	byName := make(map[string]*RouteAssessment, len(outcomes))
	candidates := make([]eco.Candidate, 0, len(outcomes))
	failed := make([]Alternative, 0)

	for i, outcome := range outcomes {
		if outcome.err != nil {
			name := req.Destinations[i].Port
			if name == "" {
				name = fmt.Sprintf("candidate %d", i)
			}
			failed = append(failed, Alternative{Destination: name, Error: outcome.err.Error()})

			continue
		}

		assessment := outcome.assessment
		byName[assessment.Destination.Name] = assessment
		candidates = append(candidates, eco.Candidate{
			Name:      assessment.Destination.Name,
			EtaHours:  assessment.Eco.EtaHours,
			CostUSD:   assessment.Eco.CostUSD,
			CO2Tonnes: assessment.Eco.CO2Tonnes,
			RiskScore: assessment.Route.MeanScore,
		})
	}

	result := &AlternativesResult{Origin: origin, Ranked: make([]Alternative, 0, len(outcomes))}
	for _, ranked := range eco.Rank(candidates, weights) {
		result.Ranked = append(result.Ranked, Alternative{
			Destination: ranked.Name,
			Score:       ranked.Score,
			Assessment:  byName[ranked.Name],
		})
	}
	result.Ranked = append(result.Ranked, failed...)

	return result
}

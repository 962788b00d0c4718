// Package enrichment augments negotiation records with data from secondary
// hh.ru lookups.
package enrichment

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DenisStobert/hh-autoapply-backend/internal/headhunter"
)

const DefaultConcurrency = 8

// Lookup is the part of the hh.ru client needed to resolve employers.
type Lookup interface {
	Vacancy(ctx context.Context, token, id string) (*headhunter.Vacancy, error)
	Employer(ctx context.Context, token, id string) (*headhunter.EmployerDetails, error)
}

// Config controls the fan-out.
type Config struct {
	// Concurrency caps parallel lookups. Zero or less means no cap.
	Concurrency int
}

// Step describes the result of an enrichment run.
type Step struct {
	Initial  int
	Enriched int
	Skipped  int
	Failed   int
}

type outcome int

const (
	outcomeEnriched outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Employers adds employer activity (last_online, response_rate) to negotiations.
type Employers struct {
	hh     Lookup
	logger *zap.Logger
	limit  int
}

func NewEmployers(cfg *Config, hh Lookup, logger *zap.Logger) *Employers {
	limit := DefaultConcurrency
	if cfg != nil {
		limit = cfg.Concurrency
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Employers{
		hh:     hh,
		logger: logger,
		limit:  limit,
	}
}

func (e *Employers) Name() string { return "employers" }

// Apply enriches every record independently. The result has the same length
// and order as items; a record whose lookup fails is returned unchanged.
func (e *Employers) Apply(ctx context.Context, token string, items []headhunter.Negotiation) ([]headhunter.Negotiation, Step) {
	results := make([]headhunter.Negotiation, len(items))
	outcomes := make([]outcome, len(items))

	var g errgroup.Group
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for idx, item := range items {
		g.Go(func() error {
			enriched, err := e.enrich(ctx, token, item)
			switch {
			case err != nil:
				e.logger.Warn("enriching negotiation",
					zap.String("vacancy_id", item.VacancyID()),
					zap.Error(err),
				)
				results[idx], outcomes[idx] = item, outcomeFailed
			case enriched == nil:
				results[idx], outcomes[idx] = item, outcomeSkipped
			default:
				results[idx], outcomes[idx] = enriched, outcomeEnriched
			}
			// Failures stay local to their record.
			return nil
		})
	}
	_ = g.Wait()

	step := Step{Initial: len(items)}
	for _, o := range outcomes {
		switch o {
		case outcomeEnriched:
			step.Enriched++
		case outcomeSkipped:
			step.Skipped++
		case outcomeFailed:
			step.Failed++
		}
	}

	e.logger.Info("enrichment step",
		zap.String("name", e.Name()),
		zap.Int("initial", step.Initial),
		zap.Int("enriched", step.Enriched),
		zap.Int("skipped", step.Skipped),
		zap.Int("failed", step.Failed),
	)

	return results, step
}

// enrich returns nil without error when the record has no vacancy to look up.
func (e *Employers) enrich(ctx context.Context, token string, item headhunter.Negotiation) (headhunter.Negotiation, error) {
	vacancyID := item.VacancyID()
	if vacancyID == "" {
		return nil, nil
	}

	vacancy, err := e.hh.Vacancy(ctx, token, vacancyID)
	if err != nil {
		return nil, fmt.Errorf("get vacancy %s: %w", vacancyID, err)
	}

	employerID, err := vacancy.EmployerID()
	if err != nil {
		return nil, fmt.Errorf("vacancy %s: %w", vacancyID, err)
	}

	details, err := e.hh.Employer(ctx, token, employerID)
	if err != nil {
		return nil, fmt.Errorf("get employer %s: %w", employerID, err)
	}

	return item.WithEmployer(vacancy.MergeEmployer(details)), nil
}

package scenarios

import (
	"context"

	"omc/internal/queries"
)

const (
	reasonDecisionTypeNotWhitelisted = "decision type not whitelisted"
	reasonDecisionNotPublished       = "decision type is not published"
)

// DecisionMade informs the case initiator that a decision document was
// attached to a decision on their case.
type DecisionMade struct {
	caseBase
}

// NewDecisionMade creates the strategy for a newly published decision.
func NewDecisionMade(opts Options) *DecisionMade {
	return &DecisionMade{caseBase{opts: opts}}
}

func (s *DecisionMade) Name() string { return ScenarioDecisionMade }

func (s *DecisionMade) AssembleNotifications(ctx context.Context, qc *queries.QueryContext) (Result, error) {
	reason, err := runGates(ctx, qc, s.opts.Logger, []gate{
		{name: "decision type whitelist", check: func(ctx context.Context, qc *queries.QueryContext) (string, error) {
			dt, err := qc.GetDecisionType(ctx)
			if err != nil {
				return "", err
			}
			if !whitelisted(s.opts.Scenario.DecisionTypeWhitelist, dt.Name, dt.URI) {
				return reasonDecisionTypeNotWhitelisted, nil
			}
			return "", nil
		}},
		{name: "decision published", check: func(ctx context.Context, qc *queries.QueryContext) (string, error) {
			dt, err := qc.GetDecisionType(ctx)
			if err != nil {
				return "", err
			}
			if !dt.Publish {
				return reasonDecisionNotPublished, nil
			}
			return "", nil
		}},
		s.caseTypeGate(),
	})
	if err != nil {
		return Result{}, err
	}
	if reason != "" {
		return aborted(ScenarioDecisionMade, reason), nil
	}

	decision, err := qc.GetDecision(ctx)
	if err != nil {
		return Result{}, err
	}
	dt, err := qc.GetDecisionType(ctx)
	if err != nil {
		return Result{}, err
	}
	c, err := qc.GetCase(ctx)
	if err != nil {
		return Result{}, err
	}
	ct, err := s.loadCaseType(ctx, qc)
	if err != nil {
		return Result{}, err
	}
	party, err := qc.GetParty(ctx)
	if err != nil {
		return Result{}, err
	}

	fields := caseFields(c, ct)
	fields["besluit.identificatie"] = decision.Identification
	fields["besluit.datum"] = decision.DecidedOn
	fields["besluit.toelichting"] = decision.Explanation
	fields["besluittype.omschrijving"] = dt.Name
	return finish(s.opts, ScenarioDecisionMade, party, fields)
}

var _ Strategy = (*DecisionMade)(nil)

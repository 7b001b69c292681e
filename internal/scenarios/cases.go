package scenarios

import (
	"context"
	"sync"

	"omc/internal/queries"
	"omc/internal/types"
)

const (
	reasonCaseTypeNotWhitelisted = "case type not whitelisted"
	reasonInitialStatus          = "initial status is announced by case creation"
)

// caseBase holds the case type fetched by the whitelist gate so assembly
// can reuse it without asking the query context again. The held value
// belongs to one case; a context bound to another case refetches.
type caseBase struct {
	opts Options

	mu       sync.Mutex
	caseURI  string
	caseType *types.CaseType
}

func (b *caseBase) DropCache() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.caseURI, b.caseType = "", nil
}

func (b *caseBase) loadCaseType(ctx context.Context, qc *queries.QueryContext) (types.CaseType, error) {
	caseURI := qc.Event().MainObjectURI

	b.mu.Lock()
	if b.caseType != nil && b.caseURI == caseURI {
		ct := *b.caseType
		b.mu.Unlock()
		return ct, nil
	}
	b.mu.Unlock()

	ct, err := qc.GetCaseType(ctx)
	if err != nil {
		return types.CaseType{}, err
	}
	b.mu.Lock()
	b.caseURI, b.caseType = caseURI, &ct
	b.mu.Unlock()
	return ct, nil
}

func (b *caseBase) caseTypeGate() gate {
	return gate{name: "case type whitelist", check: func(ctx context.Context, qc *queries.QueryContext) (string, error) {
		ct, err := b.loadCaseType(ctx, qc)
		if err != nil {
			return "", err
		}
		if !whitelisted(b.opts.Scenario.CaseTypeWhitelist, ct.Identification) {
			return reasonCaseTypeNotWhitelisted, nil
		}
		return "", nil
	}}
}

// finish builds the packages for party, aborting when no method is usable.
func finish(opts Options, scenario string, party types.CommonPartyData, fields map[string]any) (Result, error) {
	packages, reason, err := buildPackages(opts.Templates, scenario, party, opts.Scenario.LettersEnabled, fields)
	if err != nil {
		return Result{}, err
	}
	if reason != "" {
		return aborted(scenario, reason), nil
	}
	return done(scenario, packages), nil
}

func caseFields(c types.Case, ct types.CaseType) map[string]any {
	return map[string]any{
		"zaak.identificatie":    c.Identification,
		"zaak.omschrijving":     c.Name,
		"zaak.registratiedatum": c.RegisteredAt,
		"zaaktype.omschrijving": ct.Name,
	}
}

// CaseCreated informs the initiator that their case was registered.
type CaseCreated struct {
	caseBase
}

// NewCaseCreated creates the strategy for a newly registered case.
func NewCaseCreated(opts Options) *CaseCreated {
	return &CaseCreated{caseBase{opts: opts}}
}

func (s *CaseCreated) Name() string { return ScenarioCaseCreated }

func (s *CaseCreated) AssembleNotifications(ctx context.Context, qc *queries.QueryContext) (Result, error) {
	reason, err := runGates(ctx, qc, s.opts.Logger, []gate{s.caseTypeGate()})
	if err != nil {
		return Result{}, err
	}
	if reason != "" {
		return aborted(ScenarioCaseCreated, reason), nil
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
	return finish(s.opts, ScenarioCaseCreated, party, caseFields(c, ct))
}

// CaseStatusChanged handles a new case status. A final status closes the
// case and selects the closing templates; any other status after the first
// is an update.
type CaseStatusChanged struct {
	caseBase
}

// NewCaseStatusChanged creates the strategy for a case status event.
func NewCaseStatusChanged(opts Options) *CaseStatusChanged {
	return &CaseStatusChanged{caseBase{opts: opts}}
}

func (s *CaseStatusChanged) Name() string { return ScenarioCaseStatusChanged }

func (s *CaseStatusChanged) AssembleNotifications(ctx context.Context, qc *queries.QueryContext) (Result, error) {
	reason, err := runGates(ctx, qc, s.opts.Logger, []gate{
		s.caseTypeGate(),
		{name: "not initial status", check: func(ctx context.Context, qc *queries.QueryContext) (string, error) {
			statuses, err := qc.GetCaseStatuses(ctx)
			if err != nil {
				return "", err
			}
			if len(statuses) <= 1 {
				return reasonInitialStatus, nil
			}
			return "", nil
		}},
	})
	if err != nil {
		return Result{}, err
	}
	if reason != "" {
		return aborted(s.Name(), reason), nil
	}

	status, err := qc.GetCaseStatus(ctx)
	if err != nil {
		return Result{}, err
	}
	statusType, err := qc.GetStatusType(ctx)
	if err != nil {
		return Result{}, err
	}
	scenario := ScenarioCaseStatusUpdated
	if statusType.IsFinal {
		scenario = ScenarioCaseClosed
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
	fields["status.omschrijving"] = statusType.Name
	fields["status.toelichting"] = status.Explanation
	return finish(s.opts, scenario, party, fields)
}

var (
	_ Strategy = (*CaseCreated)(nil)
	_ Strategy = (*CaseStatusChanged)(nil)
)

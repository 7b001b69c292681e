package queries

import (
	"context"
	"sync"

	"omc/internal/types"
)

// countingAdapters implements every capability with canned data and counts
// calls per operation.
type countingAdapters struct {
	mu    sync.Mutex
	calls map[string]int

	task      types.TaskObject
	caseObj   types.Case
	caseType  types.CaseType
	roles     []types.CaseRole
	parties   map[string]types.CommonPartyData
	decision  types.Decision
	failNext  map[string]error
	blockCase chan struct{}
}

func newCountingAdapters() *countingAdapters {
	return &countingAdapters{
		calls:    make(map[string]int),
		parties:  make(map[string]types.CommonPartyData),
		failNext: make(map[string]error),
	}
}

func (s *countingAdapters) adapters() *Adapters {
	return &Adapters{Cases: s, Parties: s, Objects: s, ObjectTypes: s, Decisions: s}
}

func (s *countingAdapters) hit(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	if err, ok := s.failNext[op]; ok {
		delete(s.failNext, op)
		return err
	}
	return nil
}

func (s *countingAdapters) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *countingAdapters) Name() string    { return "Stub" }
func (s *countingAdapters) Version() string { return "0.0.1" }

func (s *countingAdapters) GetCase(ctx context.Context, uri string) (types.Case, error) {
	if s.blockCase != nil {
		select {
		case <-s.blockCase:
		case <-ctx.Done():
			s.hit("GetCase")
			return types.Case{}, ctx.Err()
		}
	}
	if err := s.hit("GetCase"); err != nil {
		return types.Case{}, err
	}
	c := s.caseObj
	c.URI = uri
	return c, nil
}

func (s *countingAdapters) GetCaseStatuses(context.Context, string) ([]types.CaseStatus, error) {
	return nil, s.hit("GetCaseStatuses")
}

func (s *countingAdapters) GetCaseStatus(_ context.Context, uri string) (types.CaseStatus, error) {
	return types.CaseStatus{URI: uri}, s.hit("GetCaseStatus")
}

func (s *countingAdapters) GetStatusType(_ context.Context, uri string) (types.StatusType, error) {
	return types.StatusType{URI: uri}, s.hit("GetStatusType")
}

func (s *countingAdapters) GetCaseType(context.Context, string) (types.CaseType, error) {
	if err := s.hit("GetCaseType"); err != nil {
		return types.CaseType{}, err
	}
	return s.caseType, nil
}

func (s *countingAdapters) GetCaseRoles(context.Context, string, string) ([]types.CaseRole, error) {
	if err := s.hit("GetCaseRoles"); err != nil {
		return nil, err
	}
	return s.roles, nil
}

func (s *countingAdapters) GetPartyByBSN(_ context.Context, bsn string) (types.CommonPartyData, error) {
	if err := s.hit("GetPartyByBSN"); err != nil {
		return types.CommonPartyData{}, err
	}
	return s.parties[bsn], nil
}

func (s *countingAdapters) GetPartyByKVK(_ context.Context, kvk string) (types.CommonPartyData, error) {
	if err := s.hit("GetPartyByKVK"); err != nil {
		return types.CommonPartyData{}, err
	}
	return s.parties[kvk], nil
}

func (s *countingAdapters) GetTask(_ context.Context, uri string) (types.TaskObject, error) {
	if err := s.hit("GetTask"); err != nil {
		return types.TaskObject{}, err
	}
	t := s.task
	t.URI = uri
	return t, nil
}

func (s *countingAdapters) GetMessage(_ context.Context, uri string) (types.MessageObject, error) {
	return types.MessageObject{URI: uri}, s.hit("GetMessage")
}

func (s *countingAdapters) GetObjectType(_ context.Context, uri string) (types.ObjectType, error) {
	return types.ObjectType{URI: uri}, s.hit("GetObjectType")
}

func (s *countingAdapters) GetDecision(context.Context, string) (types.Decision, error) {
	if err := s.hit("GetDecision"); err != nil {
		return types.Decision{}, err
	}
	return s.decision, nil
}

func (s *countingAdapters) GetDecisionType(_ context.Context, uri string) (types.DecisionType, error) {
	return types.DecisionType{URI: uri}, s.hit("GetDecisionType")
}

func (s *countingAdapters) GetDecisionDocument(_ context.Context, uri string) (types.DecisionDocument, error) {
	return types.DecisionDocument{URI: uri}, s.hit("GetDecisionDocument")
}

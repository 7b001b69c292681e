package scenarios

import (
	"context"
	"sync"

	"omc/internal/config"
	"omc/internal/queries"
	"omc/internal/types"
)

const (
	taskTypeID    = "3e852115-277a-4570-873a-9a64be3aeb34"
	messageTypeID = "38327774-7023-4f25-9386-acb0c6f10636"
	caseURI       = "https://zaken.example.nl/zaken/api/v1/zaken/a7d1c9e0-2b6f-4d0e-9a2f-1c3e5b7d9f00"
	statusURI     = "https://zaken.example.nl/zaken/api/v1/statussen/1c0d6a0e-8f36-4d4f-a2b1-0e4f3c2d1b0a"
	objectURI     = "https://objecten.example.nl/api/v2/objects/0b1d2e3f-4a5b-4c6d-8e9f-a0b1c2d3e4f5"
	decisionURI   = "https://besluiten.example.nl/besluiten/api/v1/besluiten/6d7e8f90-1a2b-4c3d-8e4f-5a6b7c8d9e0f"
	testBSN       = "999990755"
)

// fakeBackend answers every query capability from fields and records the
// calls it receives.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string
	bsns  []string

	task         types.TaskObject
	message      types.MessageObject
	caseObj      types.Case
	caseType     types.CaseType
	statuses     []types.CaseStatus
	statusType   types.StatusType
	roles        []types.CaseRole
	party        types.CommonPartyData
	decision     types.Decision
	decisionType types.DecisionType
	err          error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		caseObj:  types.Case{URI: caseURI, Identification: "ZAAK-2024-1", Name: "Aanvraag parkeervergunning", CaseTypeURI: "https://zaken.example.nl/catalogi/api/v1/zaaktypen/5a1f0c3e-7b2d-4e8f-9a6c-0d1e2f3a4b5c"},
		caseType: types.CaseType{Identification: "PARKEREN", Name: "Parkeervergunning"},
		statuses: []types.CaseStatus{{URI: "s1"}, {URI: "s2"}},
		roles:    []types.CaseRole{{GenericRoleLabel: "initiator", Citizen: types.CitizenData{BSN: testBSN}}},
		party: types.CommonPartyData{
			Name:                "Jan",
			Surname:             "Dijk",
			SurnamePrefix:       "van",
			Gender:              "m",
			DistributionChannel: types.DistributionEmail,
			EmailAddress:        "jan@example.nl",
			TelephoneNumber:     "+31612345678",
		},
	}
}

func (f *fakeBackend) adapters() *queries.Adapters {
	return &queries.Adapters{Cases: f, Parties: f, Objects: f, ObjectTypes: f, Decisions: f}
}

func (f *fakeBackend) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.err
}

func (f *fakeBackend) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeBackend) Name() string    { return "Fake" }
func (f *fakeBackend) Version() string { return "1.0.0" }

func (f *fakeBackend) GetCase(context.Context, string) (types.Case, error) {
	return f.caseObj, f.record("GetCase")
}

func (f *fakeBackend) GetCaseStatuses(context.Context, string) ([]types.CaseStatus, error) {
	return f.statuses, f.record("GetCaseStatuses")
}

func (f *fakeBackend) GetCaseStatus(_ context.Context, uri string) (types.CaseStatus, error) {
	return types.CaseStatus{URI: uri, Explanation: "Uw vergunning is verleend"}, f.record("GetCaseStatus")
}

func (f *fakeBackend) GetStatusType(context.Context, string) (types.StatusType, error) {
	return f.statusType, f.record("GetStatusType")
}

func (f *fakeBackend) GetCaseType(context.Context, string) (types.CaseType, error) {
	return f.caseType, f.record("GetCaseType")
}

func (f *fakeBackend) GetCaseRoles(context.Context, string, string) ([]types.CaseRole, error) {
	return f.roles, f.record("GetCaseRoles")
}

func (f *fakeBackend) GetPartyByBSN(_ context.Context, bsn string) (types.CommonPartyData, error) {
	f.mu.Lock()
	f.bsns = append(f.bsns, bsn)
	f.mu.Unlock()
	return f.party, f.record("GetPartyByBSN")
}

func (f *fakeBackend) GetPartyByKVK(context.Context, string) (types.CommonPartyData, error) {
	return f.party, f.record("GetPartyByKVK")
}

func (f *fakeBackend) GetTask(context.Context, string) (types.TaskObject, error) {
	return f.task, f.record("GetTask")
}

func (f *fakeBackend) GetMessage(context.Context, string) (types.MessageObject, error) {
	return f.message, f.record("GetMessage")
}

func (f *fakeBackend) GetObjectType(_ context.Context, uri string) (types.ObjectType, error) {
	return types.ObjectType{URI: uri}, f.record("GetObjectType")
}

func (f *fakeBackend) GetDecision(context.Context, string) (types.Decision, error) {
	return f.decision, f.record("GetDecision")
}

func (f *fakeBackend) GetDecisionType(context.Context, string) (types.DecisionType, error) {
	return f.decisionType, f.record("GetDecisionType")
}

func (f *fakeBackend) GetDecisionDocument(_ context.Context, uri string) (types.DecisionDocument, error) {
	return types.DecisionDocument{URI: uri}, f.record("GetDecisionDocument")
}

func testScenarioConfig() config.ScenarioConfig {
	return config.ScenarioConfig{
		InitiatorRole:          "initiator",
		TaskObjectTypeUUIDs:    []string{taskTypeID},
		MessageObjectTypeUUIDs: []string{messageTypeID},
		CaseTypeWhitelist:      []string{"*"},
		DecisionTypeWhitelist:  []string{"*"},
	}
}

func testTemplates() Templates {
	ids := map[string]map[string]string{}
	for _, s := range []string{ScenarioCaseCreated, ScenarioCaseStatusUpdated, ScenarioCaseClosed,
		ScenarioTaskAssigned, ScenarioMessageReceived, ScenarioDecisionMade} {
		ids[s] = map[string]string{"email": s + "-email", "sms": s + "-sms", "letter": s + "-letter"}
	}
	return NewTemplates(ids)
}

func testOptions() Options {
	return Options{Templates: testTemplates(), Scenario: testScenarioConfig()}
}

func bind(f *fakeBackend, opts Options, event types.NotificationEvent) *queries.QueryContext {
	return queries.NewQueryContext(f.adapters(), queries.SettingsFrom(opts.Scenario)).From(event)
}

func objectEvent(objectTypeID string) types.NotificationEvent {
	return types.NotificationEvent{
		Action:        types.ActionCreate,
		Channel:       types.ChannelObjects,
		Resource:      types.ResourceObject,
		MainObjectURI: objectURI,
		ResourceURL:   objectURI,
		Attributes: types.EventAttributes{
			ObjectType: "https://objecttypen.example.nl/api/v2/objecttypes/" + objectTypeID,
		},
	}
}

func caseEvent(resource types.Resource, resourceURL string) types.NotificationEvent {
	return types.NotificationEvent{
		Action:        types.ActionCreate,
		Channel:       types.ChannelCases,
		Resource:      resource,
		MainObjectURI: caseURI,
		ResourceURL:   resourceURL,
		Attributes:    types.EventAttributes{SourceOrganization: "002220647"},
	}
}

func decisionEvent() types.NotificationEvent {
	return types.NotificationEvent{
		Action:        types.ActionCreate,
		Channel:       types.ChannelDecisions,
		Resource:      types.ResourceDecisionDocument,
		MainObjectURI: decisionURI,
		ResourceURL:   "https://besluiten.example.nl/besluiten/api/v1/besluitinformatieobjecten/7e8f9012-3b4c-4d5e-9f60-718293a4b5c6",
		Attributes:    types.EventAttributes{ResponsibleOrganization: "002220647"},
	}
}

package types

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// NotificationEvent is the inbound webhook payload published by the ZGW
// notification routing service. It is decoded once per request and treated
// as immutable afterwards.
//
// Unknown top-level keys are kept in Orphans and unknown "kenmerken" keys in
// Attributes.Orphans; neither is rejected at decode time. See Validate for
// how each is treated.
type NotificationEvent struct {
	Action        Action          `json:"actie" validate:"required"`
	Channel       Channel         `json:"kanaal" validate:"required"`
	Resource      Resource        `json:"resource" validate:"required"`
	MainObjectURI string          `json:"hoofdObject" validate:"required,url"`
	ResourceURL   string          `json:"resourceUrl" validate:"required,url"`
	CreatedAt     time.Time       `json:"aanmaakdatum"`
	Attributes    EventAttributes `json:"kenmerken"`

	Orphans map[string]json.RawMessage `json:"-"`
}

// EventAttributes are the routing attributes ("kenmerken") of an event. Which
// keys are present depends on the Channel.
type EventAttributes struct {
	// zaken
	SourceOrganization string `json:"bronorganisatie,omitempty" validate:"omitempty,rsin"`
	CaseType           string `json:"zaaktype,omitempty"`
	Confidentiality    string `json:"vertrouwelijkheidaanduiding,omitempty"`

	// objecten
	ObjectType string `json:"objectType,omitempty"`

	// besluiten
	DecisionType            string `json:"besluittype,omitempty"`
	ResponsibleOrganization string `json:"verantwoordelijkeOrganisatie,omitempty" validate:"omitempty,rsin"`

	Orphans map[string]json.RawMessage `json:"-"`
}

type notificationEventAlias NotificationEvent

type eventAttributesAlias EventAttributes

var (
	eventKnownKeys     = jsonKeys(notificationEventAlias{})
	attributeKnownKeys = jsonKeys(eventAttributesAlias{})
)

// UnmarshalJSON decodes the event and captures any unrecognized top-level keys.
func (e *NotificationEvent) UnmarshalJSON(data []byte) error {
	var alias notificationEventAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	orphans, err := collectOrphans(data, eventKnownKeys)
	if err != nil {
		return err
	}
	alias.Orphans = orphans
	*e = NotificationEvent(alias)
	return nil
}

// MarshalJSON re-emits captured orphans next to the known keys so that an
// encoded event decodes back to an identical value.
func (e NotificationEvent) MarshalJSON() ([]byte, error) {
	return marshalWithOrphans(notificationEventAlias(e), e.Orphans)
}

// UnmarshalJSON decodes the attributes and captures unrecognized keys.
func (a *EventAttributes) UnmarshalJSON(data []byte) error {
	var alias eventAttributesAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	orphans, err := collectOrphans(data, attributeKnownKeys)
	if err != nil {
		return err
	}
	alias.Orphans = orphans
	*a = EventAttributes(alias)
	return nil
}

// MarshalJSON re-emits captured attribute orphans.
func (a EventAttributes) MarshalJSON() ([]byte, error) {
	return marshalWithOrphans(eventAttributesAlias(a), a.Orphans)
}

// OrganizationID returns the organization the event belongs to: the source
// organization for cases, the responsible organization for decisions.
// Objects carry no organization and yield "".
func (e NotificationEvent) OrganizationID() string {
	if e.Attributes.SourceOrganization != "" {
		return e.Attributes.SourceOrganization
	}
	return e.Attributes.ResponsibleOrganization
}

// Validate enforces the structural contract of an inbound event. Unexpected
// top-level fields are fatal (ErrCodeValidationOrphans), while unexpected
// attribute fields are returned as warnings only.
func (e NotificationEvent) Validate() (warnings []string, err error) {
	if len(e.Orphans) > 0 {
		return nil, NewAppErrorWithDetails(
			ErrCodeValidationOrphans,
			"notification contains unexpected fields",
			nil,
			map[string]any{"fields": sortedKeys(e.Orphans)},
		)
	}
	if e.Action == ActionUnknown || e.Channel == ChannelUnknown || e.Resource == ResourceUnknown {
		return nil, NewAppErrorWithDetails(
			ErrCodeValidationInvalidEvent,
			"notification has unrecognized routing attributes",
			nil,
			map[string]any{
				"actie":    string(e.Action),
				"kanaal":   string(e.Channel),
				"resource": string(e.Resource),
			},
		)
	}
	for _, k := range sortedKeys(e.Attributes.Orphans) {
		warnings = append(warnings, fmt.Sprintf("unexpected attribute %q", k))
	}
	return warnings, nil
}

// EncodeReference serializes the event and base64-encodes it. The result is
// passed to the delivery provider as an opaque traceability reference.
func (e NotificationEvent) EncodeReference() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode reference: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeReference is the inverse of EncodeReference.
func DecodeReference(reference string) (NotificationEvent, error) {
	raw, err := base64.StdEncoding.DecodeString(reference)
	if err != nil {
		return NotificationEvent{}, fmt.Errorf("decode reference: %w", err)
	}
	var e NotificationEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return NotificationEvent{}, fmt.Errorf("decode reference: %w", err)
	}
	return e, nil
}

// jsonKeys lists the JSON names of the tagged fields of v.
func jsonKeys(v any) map[string]struct{} {
	t := reflect.TypeOf(v)
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	return keys
}

func collectOrphans(data []byte, known map[string]struct{}) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	var orphans map[string]json.RawMessage
	for k, v := range all {
		if _, ok := known[k]; ok {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, err
		}
		if orphans == nil {
			orphans = make(map[string]json.RawMessage)
		}
		orphans[k] = buf.Bytes()
	}
	return orphans, nil
}

func marshalWithOrphans(v any, orphans map[string]json.RawMessage) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(orphans) == 0 {
		return raw, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	for k, o := range orphans {
		if _, exists := m[k]; !exists {
			m[k] = o
		}
	}
	return json.Marshal(m)
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String is a compact routing summary used in log lines.
func (e NotificationEvent) String() string {
	return strings.Join([]string{string(e.Channel), string(e.Resource), string(e.Action)}, "/")
}

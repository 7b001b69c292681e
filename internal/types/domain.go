package types

import "time"

// SchemaVersion identifies the backend API version a DTO was parsed from.
type SchemaVersion string

// Case is a ZGW "zaak".
type Case struct {
	URI            string        `json:"url"`
	Identification string        `json:"identificatie"`
	Name           string        `json:"omschrijving"`
	CaseTypeURI    string        `json:"zaaktype"`
	RegisteredAt   string        `json:"registratiedatum"`
	StatusURI      string        `json:"status"`
	Version        SchemaVersion `json:"-"`
}

// CaseStatus is one entry of a case's status history.
type CaseStatus struct {
	URI           string        `json:"url"`
	CaseURI       string        `json:"zaak"`
	StatusTypeURI string        `json:"statustype"`
	SetAt         time.Time     `json:"datumStatusGezet"`
	Explanation   string        `json:"statustoelichting"`
	Version       SchemaVersion `json:"-"`
}

// CaseType is a ZGW "zaaktype" together with the status types it declares.
type CaseType struct {
	URI            string        `json:"url"`
	Identification string        `json:"identificatie"`
	Name           string        `json:"omschrijving"`
	StatusTypes    []StatusType  `json:"-"`
	Version        SchemaVersion `json:"-"`
}

// StatusType is a ZGW "statustype"; the one with IsFinal set closes a case.
type StatusType struct {
	URI         string `json:"url"`
	Name        string `json:"omschrijving"`
	SequenceNum int    `json:"volgnummer"`
	IsFinal     bool   `json:"isEindstatus"`
}

// CaseRole links a party to a case under a role label.
type CaseRole struct {
	URI              string        `json:"url"`
	CaseURI          string        `json:"zaak"`
	SubjectType      string        `json:"betrokkeneType"`
	GenericRoleLabel string        `json:"omschrijvingGeneriek"`
	Citizen          CitizenData   `json:"betrokkeneIdentificatie"`
	Version          SchemaVersion `json:"-"`
}

// CitizenData is the subject payload embedded in a case role.
type CitizenData struct {
	BSN           string `json:"inpBsn"`
	FirstName     string `json:"voornamen"`
	SurnamePrefix string `json:"voorvoegselGeslachtsnaam"`
	Surname       string `json:"geslachtsnaam"`
}

// CommonPartyData is the version-independent view of a citizen or
// organization. Callers never learn which party backend produced it.
type CommonPartyData struct {
	URI                 string              `json:"uri"`
	Name                string              `json:"name"`
	SurnamePrefix       string              `json:"surnamePrefix"`
	Surname             string              `json:"surname"`
	Gender              string              `json:"gender"`
	DistributionChannel DistributionChannel `json:"distributionChannel"`
	EmailAddress        string              `json:"emailAddress"`
	TelephoneNumber     string              `json:"telephoneNumber"`
}

// Decision is a ZGW "besluit".
type Decision struct {
	URI             string        `json:"url"`
	Identification  string        `json:"identificatie"`
	DecisionTypeURI string        `json:"besluittype"`
	CaseURI         string        `json:"zaak"`
	DecidedOn       string        `json:"datum"`
	Explanation     string        `json:"toelichting"`
	Version         SchemaVersion `json:"-"`
}

// DecisionType is a ZGW "besluittype".
type DecisionType struct {
	URI     string        `json:"url"`
	Name    string        `json:"omschrijving"`
	Publish bool          `json:"publicatieIndicatie"`
	Version SchemaVersion `json:"-"`
}

// DecisionDocument links a decision to an information object; it is the
// resource published on the besluiten channel.
type DecisionDocument struct {
	URI               string        `json:"url"`
	DecisionURI       string        `json:"besluit"`
	InformationObject string        `json:"informatieobject"`
	Version           SchemaVersion `json:"-"`
}

// ObjectType is an entry in the object types catalogue.
type ObjectType struct {
	URI     string        `json:"url"`
	UUID    string        `json:"uuid"`
	Name    string        `json:"name"`
	Version SchemaVersion `json:"-"`
}

// Identification names a party through one of its identifiers.
type Identification struct {
	Type  IdentificationType `json:"type"`
	Value string             `json:"value"`
}

// TaskObject is a task ("taak") stored in the objects API.
type TaskObject struct {
	URI            string         `json:"url"`
	ObjectTypeURI  string         `json:"type"`
	Title          string         `json:"title"`
	Status         TaskStatus     `json:"status"`
	CaseURI        string         `json:"zaak"`
	Deadline       time.Time      `json:"verloopdatum"`
	Identification Identification `json:"identificatie"`
	Version        SchemaVersion  `json:"-"`
}

// MessageObject is a portal message ("bericht") stored in the objects API.
type MessageObject struct {
	URI            string         `json:"url"`
	ObjectTypeURI  string         `json:"type"`
	Subject        string         `json:"onderwerp"`
	PublishedOn    time.Time      `json:"publicatiedatum"`
	Identification Identification `json:"identificatie"`
	Version        SchemaVersion  `json:"-"`
}

// NotifyData is one outbound package: who to contact, through which
// channel, with which template and personalization.
type NotifyData struct {
	Method          NotifyMethod   `json:"method"`
	ContactDetails  string         `json:"contactDetails"`
	TemplateID      string         `json:"templateId"`
	Personalization map[string]any `json:"personalization"`
}

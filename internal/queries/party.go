package queries

import (
	"omc/internal/types"
)

// PartyV1 is the flat klant record of the Klanten API 1.x.
type PartyV1 struct {
	URL                   string `json:"url"`
	FirstName             string `json:"voornaam"`
	SurnamePrefix         string `json:"voorvoegselAchternaam"`
	Surname               string `json:"achternaam"`
	EmailAddress          string `json:"emailadres"`
	TelephoneNumber       string `json:"telefoonnummer"`
	PreferredChannel      string `json:"voorkeurskanaal"`
	SubjectIdentification struct {
		BSN    string `json:"inpBsn"`
		Gender string `json:"geslachtsaanduiding"`
	} `json:"subjectIdentificatie"`
}

// PartyV2 is a partij of the Klantinteracties API 2.x. Names live in the
// nested identification record; addresses are fetched separately.
type PartyV2 struct {
	URL                     string `json:"url"`
	UUID                    string `json:"uuid"`
	PreferredDigitalAddress *struct {
		UUID string `json:"uuid"`
	} `json:"voorkeursDigitaalAdres"`
	Identification struct {
		Details struct {
			FirstName     string `json:"voornaam"`
			SurnamePrefix string `json:"voorvoegselAchternaam"`
			Surname       string `json:"achternaam"`
		} `json:"contactnaam"`
		Gender string `json:"geslachtsaanduiding"`
	} `json:"partijIdentificatie"`
}

// DigitalAddressV2 is one e-mail address or phone number of a partij.
type DigitalAddressV2 struct {
	UUID    string `json:"uuid"`
	Address string `json:"adres"`
	Kind    string `json:"soortDigitaalAdres"`
}

const (
	digitalAddressEmail = "email"
	digitalAddressPhone = "telefoonnummer"
)

// MapPartyV1 converts a Klanten 1.x record into CommonPartyData.
func MapPartyV1(p PartyV1) types.CommonPartyData {
	return types.CommonPartyData{
		URI:                 p.URL,
		Name:                p.FirstName,
		SurnamePrefix:       p.SurnamePrefix,
		Surname:             p.Surname,
		Gender:              p.SubjectIdentification.Gender,
		DistributionChannel: types.ParseDistributionChannel(p.PreferredChannel),
		EmailAddress:        p.EmailAddress,
		TelephoneNumber:     p.TelephoneNumber,
	}
}

// MapPartyV2 converts a Klantinteracties 2.x partij and its digital
// addresses into CommonPartyData. The preferred address decides both the
// distribution channel and which address of its kind is used; otherwise the
// first address of each kind wins and the channel is derived from what is
// present.
func MapPartyV2(p PartyV2, addresses []DigitalAddressV2) types.CommonPartyData {
	out := types.CommonPartyData{
		URI:           p.URL,
		Name:          p.Identification.Details.FirstName,
		SurnamePrefix: p.Identification.Details.SurnamePrefix,
		Surname:       p.Identification.Details.Surname,
		Gender:        p.Identification.Gender,
	}

	var preferred *DigitalAddressV2
	for i, a := range addresses {
		if p.PreferredDigitalAddress != nil && a.UUID == p.PreferredDigitalAddress.UUID {
			preferred = &addresses[i]
		}
		switch a.Kind {
		case digitalAddressEmail:
			if out.EmailAddress == "" {
				out.EmailAddress = a.Address
			}
		case digitalAddressPhone:
			if out.TelephoneNumber == "" {
				out.TelephoneNumber = a.Address
			}
		}
	}

	switch {
	case preferred != nil && preferred.Kind == digitalAddressEmail:
		out.EmailAddress = preferred.Address
		out.DistributionChannel = types.DistributionEmail
	case preferred != nil && preferred.Kind == digitalAddressPhone:
		out.TelephoneNumber = preferred.Address
		out.DistributionChannel = types.DistributionSMS
	case out.EmailAddress != "" && out.TelephoneNumber != "":
		out.DistributionChannel = types.DistributionBoth
	case out.EmailAddress != "":
		out.DistributionChannel = types.DistributionEmail
	case out.TelephoneNumber != "":
		out.DistributionChannel = types.DistributionSMS
	default:
		out.DistributionChannel = types.DistributionNone
	}
	return out
}

package scenarios

import (
	"fmt"
	"strings"

	"omc/internal/types"
)

// Templates resolves delivery template ids by scenario and method.
type Templates struct {
	ids map[string]map[string]string
}

// NewTemplates wraps a scenario -> method -> template id mapping as decoded
// by config.NotifyConfig.TemplateMap.
func NewTemplates(ids map[string]map[string]string) Templates {
	return Templates{ids: ids}
}

func (t Templates) EmailTemplateID(scenario string) (string, error) {
	return t.id(scenario, types.MethodEmail)
}

func (t Templates) SMSTemplateID(scenario string) (string, error) {
	return t.id(scenario, types.MethodSMS)
}

func (t Templates) LetterTemplateID(scenario string) (string, error) {
	return t.id(scenario, types.MethodLetter)
}

func (t Templates) id(scenario string, method types.NotifyMethod) (string, error) {
	if id := t.ids[scenario][string(method)]; id != "" {
		return id, nil
	}
	return "", types.NewAppErrorWithDetails(types.ErrCodeInternalConfig,
		"no template configured", nil,
		map[string]any{"scenario": scenario, "method": string(method)})
}

// TemplateID dispatches to the per-method lookup.
func (t Templates) TemplateID(scenario string, method types.NotifyMethod) (string, error) {
	switch method {
	case types.MethodEmail:
		return t.EmailTemplateID(scenario)
	case types.MethodSMS:
		return t.SMSTemplateID(scenario)
	case types.MethodLetter:
		return t.LetterTemplateID(scenario)
	default:
		return "", fmt.Errorf("unknown notify method %q", method)
	}
}

// Personalization keys shared by every template.
const (
	keyFirstName     = "klant.voornaam"
	keySurnamePrefix = "klant.voorvoegselAchternaam"
	keySurname       = "klant.achternaam"
	keyFullName      = "klant.volledigeNaam"
	keySalutation    = "klant.aanhef"
)

// EmailPersonalization carries the full name and a formal salutation.
func EmailPersonalization(party types.CommonPartyData, fields map[string]any) map[string]any {
	p := map[string]any{
		keyFirstName:     party.Name,
		keySurnamePrefix: party.SurnamePrefix,
		keySurname:       party.Surname,
		keySalutation:    salutation(party),
	}
	return merge(p, fields)
}

// SMSPersonalization keeps only the first name next to the scenario fields.
func SMSPersonalization(party types.CommonPartyData, fields map[string]any) map[string]any {
	return merge(map[string]any{keyFirstName: party.Name}, fields)
}

// LetterPersonalization adds the full name for the address block.
func LetterPersonalization(party types.CommonPartyData, fields map[string]any) map[string]any {
	p := EmailPersonalization(party, nil)
	p[keyFullName] = fullName(party)
	return merge(p, fields)
}

func merge(dst, src map[string]any) map[string]any {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func fullName(party types.CommonPartyData) string {
	return strings.Join(strings.Fields(party.Name+" "+party.SurnamePrefix+" "+party.Surname), " ")
}

func salutation(party types.CommonPartyData) string {
	surname := strings.Join(strings.Fields(party.SurnamePrefix+" "+party.Surname), " ")
	switch strings.ToLower(party.Gender) {
	case "m", "man", "male":
		return "Geachte heer " + surname
	case "v", "vrouw", "f", "female":
		return "Geachte mevrouw " + surname
	default:
		return "Geachte " + fullName(party)
	}
}

// methodsFor lists the delivery methods usable for party, in a stable order.
func methodsFor(party types.CommonPartyData, lettersEnabled bool) []types.NotifyMethod {
	var methods []types.NotifyMethod
	switch party.DistributionChannel {
	case types.DistributionEmail:
		if party.EmailAddress != "" {
			methods = append(methods, types.MethodEmail)
		}
	case types.DistributionSMS:
		if party.TelephoneNumber != "" {
			methods = append(methods, types.MethodSMS)
		}
	case types.DistributionBoth:
		if party.EmailAddress != "" {
			methods = append(methods, types.MethodEmail)
		}
		if party.TelephoneNumber != "" {
			methods = append(methods, types.MethodSMS)
		}
	case types.DistributionLetter:
		if lettersEnabled {
			methods = append(methods, types.MethodLetter)
		}
	}
	return methods
}

// contactFor returns the recipient string of method.
func contactFor(party types.CommonPartyData, method types.NotifyMethod) string {
	switch method {
	case types.MethodEmail:
		return party.EmailAddress
	case types.MethodSMS:
		return party.TelephoneNumber
	default:
		return party.URI
	}
}

// reasonNoChannel aborts when a party cannot be reached with any enabled
// method.
const reasonNoChannel = "party has no usable delivery channel"

// buildPackages turns one party and the scenario fields into one NotifyData
// per usable method. It returns a non-empty abort reason when there is none.
func buildPackages(t Templates, scenario string, party types.CommonPartyData, lettersEnabled bool, fields map[string]any) ([]types.NotifyData, string, error) {
	methods := methodsFor(party, lettersEnabled)
	if len(methods) == 0 {
		return nil, reasonNoChannel, nil
	}

	packages := make([]types.NotifyData, 0, len(methods))
	for _, m := range methods {
		id, err := t.TemplateID(scenario, m)
		if err != nil {
			return nil, "", err
		}
		var p map[string]any
		switch m {
		case types.MethodEmail:
			p = EmailPersonalization(party, fields)
		case types.MethodSMS:
			p = SMSPersonalization(party, fields)
		default:
			p = LetterPersonalization(party, fields)
		}
		packages = append(packages, types.NotifyData{
			Method:          m,
			ContactDetails:  contactFor(party, m),
			TemplateID:      id,
			Personalization: p,
		})
	}
	return packages, "", nil
}

package queries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"omc/internal/external"
	"omc/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const partyURI = "https://klanten.example.nl/parties/3f6c3d8e-4a6c-4f55-9f3a-2f0b3e4a5c6d"

func newTestBackendClient(t *testing.T, server *httptest.Server) *external.BackendClient {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	base := external.NewBaseClient(&http.Client{Timeout: 5 * time.Second}, t.Name(),
		external.RetryPolicy{MaxWait: time.Millisecond}, "OMC-Test/1.0",
		external.WithSleepFunc(func(time.Duration) {}))
	return external.NewBackendClientWithBase(base, nil, "http", u.Host)
}

// jsonRoutes serves fixed bodies keyed by request path.
func jsonRoutes(t *testing.T, routes map[string]string, hits map[string]int) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if hits != nil {
			mu.Lock()
			hits[r.URL.Path]++
			mu.Unlock()
		}
		if !ok {
			t.Errorf("unexpected request %s", r.URL.String())
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPartyVersionsAreTransparent(t *testing.T) {
	v1 := jsonRoutes(t, map[string]string{
		"/klanten/api/v1/klanten": `{"count":1,"next":null,"results":[{
			"url":"` + partyURI + `",
			"voornaam":"Jan","voorvoegselAchternaam":"van","achternaam":"Dijk",
			"emailadres":"jan@example.nl","telefoonnummer":"+31612345678",
			"voorkeurskanaal":"email",
			"subjectIdentificatie":{"inpBsn":"999990755","geslachtsaanduiding":"m"}}]}`,
	}, nil)
	v2 := jsonRoutes(t, map[string]string{
		"/klantinteracties/api/v1/partijen": `{"count":1,"next":null,"results":[{
			"url":"` + partyURI + `","uuid":"3f6c3d8e-4a6c-4f55-9f3a-2f0b3e4a5c6d",
			"voorkeursDigitaalAdres":{"uuid":"a1"},
			"partijIdentificatie":{"contactnaam":{"voornaam":"Jan","voorvoegselAchternaam":"van","achternaam":"Dijk"},
				"geslachtsaanduiding":"m"}}]}`,
		"/klantinteracties/api/v1/digitaleadressen": `{"count":2,"next":null,"results":[
			{"uuid":"a2","adres":"+31612345678","soortDigitaalAdres":"telefoonnummer"},
			{"uuid":"a1","adres":"jan@example.nl","soortDigitaalAdres":"email"}]}`,
	}, nil)

	fromV1, err := NewKlantenV1(newTestBackendClient(t, v1)).GetPartyByBSN(context.Background(), "999990755")
	require.NoError(t, err)
	fromV2, err := NewKlantenV2(newTestBackendClient(t, v2)).GetPartyByBSN(context.Background(), "999990755")
	require.NoError(t, err)

	assert.Equal(t, fromV1, fromV2)
	assert.Equal(t, types.CommonPartyData{
		URI:                 partyURI,
		Name:                "Jan",
		SurnamePrefix:       "van",
		Surname:             "Dijk",
		Gender:              "m",
		DistributionChannel: types.DistributionEmail,
		EmailAddress:        "jan@example.nl",
		TelephoneNumber:     "+31612345678",
	}, fromV1)
}

func TestMapPartyV2_ChannelDerivation(t *testing.T) {
	email := DigitalAddressV2{UUID: "e", Address: "a@b.nl", Kind: digitalAddressEmail}
	phone := DigitalAddressV2{UUID: "p", Address: "+31600000000", Kind: digitalAddressPhone}

	tests := []struct {
		name      string
		preferred string
		addresses []DigitalAddressV2
		want      types.DistributionChannel
	}{
		{"preferred phone", "p", []DigitalAddressV2{email, phone}, types.DistributionSMS},
		{"preferred email", "e", []DigitalAddressV2{phone, email}, types.DistributionEmail},
		{"no preference, both", "", []DigitalAddressV2{email, phone}, types.DistributionBoth},
		{"no preference, phone only", "", []DigitalAddressV2{phone}, types.DistributionSMS},
		{"nothing", "", nil, types.DistributionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p PartyV2
			if tt.preferred != "" {
				p.PreferredDigitalAddress = &struct {
					UUID string `json:"uuid"`
				}{UUID: tt.preferred}
			}
			assert.Equal(t, tt.want, MapPartyV2(p, tt.addresses).DistributionChannel)
		})
	}
}

func TestMapPartyV2_PreferredAddressWinsOverFirst(t *testing.T) {
	p := PartyV2{}
	p.PreferredDigitalAddress = &struct {
		UUID string `json:"uuid"`
	}{UUID: "second"}

	got := MapPartyV2(p, []DigitalAddressV2{
		{UUID: "first", Address: "old@example.nl", Kind: digitalAddressEmail},
		{UUID: "second", Address: "new@example.nl", Kind: digitalAddressEmail},
	})
	assert.Equal(t, "new@example.nl", got.EmailAddress)
}

func TestKlanten_NotFound(t *testing.T) {
	server := jsonRoutes(t, map[string]string{
		"/klanten/api/v1/klanten":           `{"count":0,"next":null,"results":[]}`,
		"/klantinteracties/api/v1/partijen": `{"count":0,"next":null,"results":[]}`,
	}, nil)

	_, err := NewKlantenV1(newTestBackendClient(t, server)).GetPartyByBSN(context.Background(), "1")
	assert.True(t, types.HasCode(err, types.ErrCodeUpstreamNotFound))

	_, err = NewKlantenV2(newTestBackendClient(t, server)).GetPartyByKVK(context.Background(), "69599084")
	assert.True(t, types.HasCode(err, types.ErrCodeUpstreamNotFound))
}

func TestKlantenV1_KVKUnimplemented(t *testing.T) {
	_, err := NewKlantenV1(nil).GetPartyByKVK(context.Background(), "69599084")
	assert.Equal(t, types.KindUnimplemented, types.KindOf(err))
}

package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload_Locations(t *testing.T) {
	body := []byte(`{"cwaopendata":{"resources":{"resource":{"data":{"agrWeatherForecasts":{"weatherForecasts":{"location":[
		{"locationName":"北部地區","weatherElements":{"Wx":{"daily":[]}}},
		{"locationName":"中部地區"},
		42
	]}}}}}}}`)

	p, err := ParsePayload(body)

	require.NoError(t, err)
	require.Len(t, p.Locations, 3)
	assert.Equal(t, "北部地區", p.Locations[0].Name)
	assert.JSONEq(t, `{"Wx":{"daily":[]}}`, string(p.Locations[0].WeatherElements))
	assert.Equal(t, "中部地區", p.Locations[1].Name)
	assert.Nil(t, p.Locations[1].WeatherElements)
	assert.Equal(t, RawLocation{}, p.Locations[2])
}

func TestParsePayload_ShapeFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `nope`, "document root"},
		{"missing root key", `{"other":{}}`, `missing key "cwaopendata"`},
		{"missing resource", `{"cwaopendata":{"resources":{}}}`, `missing key "resource" at cwaopendata.resources`},
		{"resource is a list", `{"cwaopendata":{"resources":{"resource":[]}}}`, "cwaopendata.resources.resource is not an object"},
		{"location not a list", `{"cwaopendata":{"resources":{"resource":{"data":{"agrWeatherForecasts":{"weatherForecasts":{"location":{}}}}}}}}`, "is not a list"},
		{"location null", `{"cwaopendata":{"resources":{"resource":{"data":{"agrWeatherForecasts":{"weatherForecasts":{"location":null}}}}}}}`, "is not a list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPayloadShape))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDailyEntry_KeepsFieldOrder(t *testing.T) {
	var e DailyEntry
	require.NoError(t, json.Unmarshal([]byte(`{"dataDate":"2024-07-01","z":"1","a":{"b":2},"m":[1]}`), &e))

	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"dataDate", "z", "a", "m"}, names)

	v, ok := e.String("dataDate")
	assert.True(t, ok)
	assert.Equal(t, "2024-07-01", v)

	_, ok = e.String("a")
	assert.False(t, ok)
	_, ok = e.Get("missing")
	assert.False(t, ok)
}

func TestDailyEntry_RejectsNonObject(t *testing.T) {
	var entries []DailyEntry
	assert.Error(t, json.Unmarshal([]byte(`[{"dataDate":"2024-07-01"}, "x"]`), &entries))
}

func TestScalarText(t *testing.T) {
	s, ok := ScalarText(json.RawMessage(`22`))
	assert.True(t, ok)
	assert.Equal(t, "22", s)

	s, ok = ScalarText(json.RawMessage(` "晴" `))
	assert.True(t, ok)
	assert.Equal(t, "晴", s)

	for _, raw := range []string{`null`, `true`, `{}`, `[]`, ``} {
		_, ok := ScalarText(json.RawMessage(raw))
		assert.False(t, ok, raw)
	}
}

func TestObjectKeys(t *testing.T) {
	keys, err := ObjectKeys(json.RawMessage(`{"b":1,"a":2,"c":{"x":1}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, keys)

	_, err = ObjectKeys(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2024, 7, 1)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-07-01"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back.Time))
	assert.Error(t, json.Unmarshal([]byte(`"07/01/2024"`), &back))
}

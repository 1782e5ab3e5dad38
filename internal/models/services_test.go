package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceList(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want ServiceList
	}{
		{name: "delimited string", raw: "Viki Pass + Kocowa+ IQIYI", want: ServiceList{"Viki Pass", "Kocowa", "IQIYI"}},
		{name: "quoted single string", raw: `"WeTV"`, want: ServiceList{"WeTV"}},
		{name: "json array text", raw: `["Viki Pass", " IQIYI "]`, want: ServiceList{"Viki Pass", "IQIYI"}},
		{name: "postgres array literal", raw: []byte(`{"Viki Pass",IQIYI}`), want: ServiceList{"Viki Pass", "IQIYI"}},
		{name: "string slice with duplicates", raw: []string{"WeTV", "WeTV", ""}, want: ServiceList{"WeTV"}},
		{name: "decoded json values", raw: []any{"Viki Pass", 42, "DramaBox"}, want: ServiceList{"Viki Pass", "DramaBox"}},
		{name: "broken json array", raw: `["Viki`, want: nil},
		{name: "unsupported type", raw: 12, want: nil},
		{name: "empty", raw: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseServiceList(tt.raw))
		})
	}
}

func TestServiceList_JSON(t *testing.T) {
	var rec struct {
		Subscriptions ServiceList `json:"subscriptions"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"subscriptions":"Viki Pass+WeTV"}`), &rec))
	assert.Equal(t, ServiceList{"Viki Pass", "WeTV"}, rec.Subscriptions)

	require.NoError(t, json.Unmarshal([]byte(`{"subscriptions":["IQIYI"]}`), &rec))
	assert.Equal(t, ServiceList{"IQIYI"}, rec.Subscriptions)

	out, err := json.Marshal(ServiceList(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))
}

func TestServiceList_ScanValue(t *testing.T) {
	var l ServiceList
	require.NoError(t, l.Scan("Viki Pass+IQIYI"))
	assert.Equal(t, ServiceList{"Viki Pass", "IQIYI"}, l)

	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, `["Viki Pass","IQIYI"]`, v)

	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)
}

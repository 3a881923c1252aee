package request

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateBody() map[string]any {
	return map[string]any{
		"name":     "default",
		"plan":     "premium",
		"price":    "49.90",
		"currency": "TRY",
		"customer": map[string]any{
			"name":    "Ada",
			"surname": "Lovelace",
			"email":   "ada@example.com",
			"address": map[string]any{
				"contact_name": "Ada Lovelace",
				"city":         "Istanbul",
				"country":      "Turkey",
				"address":      "Nidakule Göztepe",
			},
		},
		"card": map[string]any{
			"holder_name":  "Ada Lovelace",
			"number":       "5528790000000008",
			"expire_month": "12",
			"expire_year":  "2030",
			"cvc":          "123",
		},
	}
}

func decodeCreate(t *testing.T, body map[string]any) (CreateSubscription, error) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	r := httptest.NewRequest("POST", "/subscriptions", &buf)

	var req CreateSubscription
	err := Decode(r, &req)
	return req, err
}

func TestDecode_CreateSubscription(t *testing.T) {
	req, err := decodeCreate(t, validCreateBody())
	require.NoError(t, err)
	assert.Equal(t, "default", req.Name)
	assert.Equal(t, "premium", req.Plan)
	assert.Equal(t, "ada@example.com", req.Customer.Email)
}

func TestDecode_CreateSubscription_InvalidName(t *testing.T) {
	for _, name := range []string{"", "Default", "has space", "-leading"} {
		body := validCreateBody()
		body["name"] = name
		_, err := decodeCreate(t, body)
		assert.Error(t, err, "name %q must be rejected", name)
	}
}

func TestDecode_CreateSubscription_PlanReferenceReplacesPlan(t *testing.T) {
	body := validCreateBody()
	delete(body, "plan")
	body["plan_reference"] = "plan-existing"

	req, err := decodeCreate(t, body)
	require.NoError(t, err)
	assert.Equal(t, "plan-existing", req.PlanReference)
}

func TestDecode_CreateSubscription_MissingPlanAndReference(t *testing.T) {
	body := validCreateBody()
	delete(body, "plan")

	_, err := decodeCreate(t, body)
	assert.Error(t, err)
}

func TestDecode_CreateSubscription_BadCard(t *testing.T) {
	body := validCreateBody()
	body["card"].(map[string]any)["number"] = "not-a-card"

	_, err := decodeCreate(t, body)
	assert.Error(t, err)
}

func TestDecode_CreateSubscription_BadInterval(t *testing.T) {
	body := validCreateBody()
	body["interval"] = "FORTNIGHTLY"

	_, err := decodeCreate(t, body)
	assert.Error(t, err)
}

func TestDecode_InvalidJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/subscriptions", bytes.NewBufferString("{not json"))
	var req CreateSubscription
	err := Decode(r, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/subscriptions?limit=10&cursor=abc", nil)
	p := ParsePagination(r)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, "abc", p.Cursor)
}

func TestParsePagination_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/subscriptions", nil)
	p := ParsePagination(r)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Empty(t, p.Cursor)
}

func TestParsePagination_ClampsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/subscriptions?limit=100000", nil)
	p := ParsePagination(r)
	assert.Equal(t, MaxLimit, p.Limit)
}

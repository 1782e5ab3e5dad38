package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/storefront/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMerge_LaterExpiryWinsPerService(t *testing.T) {
	records := []models.ClientRecord{
		{
			ID: "new", PhoneNumber: "(88) 99999-0001", ClientName: "Ana",
			Subscriptions: models.ServiceList{"Viki Pass", "IQIYI"},
			PurchaseDate:  date(2024, 5, 1), DurationMonths: 1,
		},
		{
			ID: "old", PhoneNumber: "88999990001",
			Subscriptions: models.ServiceList{"Viki Pass"},
			PurchaseDate:  date(2024, 1, 1), DurationMonths: 3,
		},
	}

	client, ok := Merge(records)
	require.True(t, ok)

	assert.Equal(t, "88999990001", client.Phone)
	assert.Equal(t, "Ana", client.Name)
	assert.Equal(t, []string{"Viki Pass", "IQIYI"}, client.Services)
	assert.Equal(t, Detail{PurchaseDate: date(2024, 5, 1), DurationMonths: 1}, client.Details["Viki Pass"])
	assert.Equal(t, "new", client.ID)
	assert.Equal(t, date(2024, 6, 1), client.Primary.Expiry())
}

func TestMerge_OrderDoesNotMatter(t *testing.T) {
	a := models.ClientRecord{
		ID: "a", PhoneNumber: "1", Subscriptions: models.ServiceList{"WeTV"},
		PurchaseDate: date(2024, 1, 10), DurationMonths: 6,
	}
	b := models.ClientRecord{
		ID: "b", PhoneNumber: "1", Subscriptions: models.ServiceList{"WeTV"},
		PurchaseDate: date(2024, 6, 1), DurationMonths: 1,
	}

	first, ok := Merge([]models.ClientRecord{a, b})
	require.True(t, ok)
	second, ok := Merge([]models.ClientRecord{b, a})
	require.True(t, ok)

	want := Detail{PurchaseDate: date(2024, 1, 10), DurationMonths: 6}
	assert.Equal(t, want, first.Details["WeTV"])
	assert.Equal(t, want, second.Details["WeTV"])
}

func TestMerge_EqualExpiryKeepsFirst(t *testing.T) {
	records := []models.ClientRecord{
		{ID: "a", PhoneNumber: "1", Subscriptions: models.ServiceList{"WeTV"}, PurchaseDate: date(2024, 1, 1), DurationMonths: 2},
		{ID: "b", PhoneNumber: "1", Subscriptions: models.ServiceList{"WeTV"}, PurchaseDate: date(2024, 2, 1), DurationMonths: 1},
	}
	client, ok := Merge(records)
	require.True(t, ok)
	assert.Equal(t, date(2024, 1, 1), client.Details["WeTV"].PurchaseDate)
	assert.Equal(t, "a", client.ID)
}

func TestMerge_FlagsAreOred(t *testing.T) {
	records := []models.ClientRecord{
		{PhoneNumber: "1", IsDebtor: true, PurchaseDate: date(2024, 1, 1), DurationMonths: 1},
		{PhoneNumber: "1", OverrideExpiration: true, PurchaseDate: date(2024, 1, 1), DurationMonths: 1},
		{PhoneNumber: "1", PurchaseDate: date(2024, 1, 1), DurationMonths: 1, ClientPassword: "x"},
	}
	client, ok := Merge(records)
	require.True(t, ok)
	assert.True(t, client.IsDebtor)
	assert.True(t, client.OverrideExpiration)
	assert.True(t, client.HasPassword)
	assert.Equal(t, DefaultName, client.Name)
}

func TestMerge_DeletedRecordsAreIgnored(t *testing.T) {
	records := []models.ClientRecord{
		{
			PhoneNumber: "1", ClientName: "Ghost", IsDebtor: true, Deleted: true,
			Subscriptions: models.ServiceList{"Kocowa+"}, PurchaseDate: date(2030, 1, 1), DurationMonths: 12,
		},
		{PhoneNumber: "1", Subscriptions: models.ServiceList{"IQIYI"}, PurchaseDate: date(2024, 1, 1), DurationMonths: 1},
	}
	client, ok := Merge(records)
	require.True(t, ok)
	assert.Equal(t, []string{"IQIYI"}, client.Services)
	assert.False(t, client.IsDebtor)
	assert.Equal(t, DefaultName, client.Name)

	_, ok = Merge(records[:1])
	assert.False(t, ok)
	_, ok = Merge(nil)
	assert.False(t, ok)
}

func TestMerge_ServicesDedupIgnoringCase(t *testing.T) {
	records := []models.ClientRecord{
		{
			ID: "a", PhoneNumber: "88999990001",
			Subscriptions: models.ServiceList{"Viki Pass"},
			PurchaseDate:  date(2024, 1, 1), DurationMonths: 1,
		},
		{
			ID: "b", PhoneNumber: "88999990001",
			Subscriptions: models.ServiceList{"viki pass", "VIKI PASS "},
			PurchaseDate:  date(2024, 3, 1), DurationMonths: 1,
		},
	}

	client, ok := Merge(records)
	require.True(t, ok)

	assert.Equal(t, []string{"Viki Pass"}, client.Services)
	assert.Len(t, client.Details, 1)
	assert.Equal(t, date(2024, 4, 1), client.Detail("Viki Pass").Expiry())
	assert.Equal(t, date(2024, 4, 1), client.Detail("VIKI PASS").Expiry())
}

func TestClient_DetailFallsBackToPrimary(t *testing.T) {
	client := Client{Primary: Detail{PurchaseDate: date(2024, 3, 1), DurationMonths: 2}}
	assert.Equal(t, client.Primary, client.Detail("Missing"))
}

func TestClient_HasService(t *testing.T) {
	client := Client{Services: []string{"Viki Pass", "Kocowa+"}}
	assert.True(t, client.HasService("viki"))
	assert.True(t, client.HasService("KOCOWA"))
	assert.False(t, client.HasService("iqiyi"))
}

func TestGroupByPhone(t *testing.T) {
	records := []models.ClientRecord{
		{PhoneNumber: "(11) 2", Subscriptions: models.ServiceList{"WeTV"}, PurchaseDate: date(2024, 1, 1), DurationMonths: 1},
		{PhoneNumber: "03", Subscriptions: models.ServiceList{"IQIYI"}, PurchaseDate: date(2024, 1, 1), DurationMonths: 1},
		{PhoneNumber: "112", Subscriptions: models.ServiceList{"IQIYI"}, PurchaseDate: date(2024, 2, 1), DurationMonths: 1},
		{PhoneNumber: "9", Deleted: true},
	}

	clients := GroupByPhone(records)
	require.Len(t, clients, 2)
	assert.Equal(t, "03", clients[0].Phone)
	assert.Equal(t, "112", clients[1].Phone)
	assert.Equal(t, []string{"WeTV", "IQIYI"}, clients[1].Services)
}

func TestFind_ProbesCountryCodeVariants(t *testing.T) {
	clients := []Client{{Phone: "5588999990001"}, {Phone: "11988887777"}}

	c, ok := Find(clients, "88 99999-0001")
	require.True(t, ok)
	assert.Equal(t, "5588999990001", c.Phone)

	c, ok = Find(clients, "+55 11 98888-7777")
	require.True(t, ok)
	assert.Equal(t, "11988887777", c.Phone)

	_, ok = Find(clients, "")
	assert.False(t, ok)
}

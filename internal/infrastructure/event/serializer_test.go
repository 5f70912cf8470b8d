package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderpost/backend/internal/domain/sales"
)

func TestEventSerializer_RoundTrip(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	order, err := sales.NewSalesOrder(uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)
	require.NoError(t, order.AssignNumber("9"))
	original := sales.NewOrderPostedEvent(order, decimal.RequireFromString("12.50"))

	payload, err := serializer.Serialize(original)
	require.NoError(t, err)

	restored, err := serializer.Deserialize(sales.EventTypeOrderPosted, payload)
	require.NoError(t, err)

	posted, ok := restored.(*sales.OrderPostedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), posted.EventID())
	assert.Equal(t, "9", posted.Number)
	assert.Equal(t, order.OrganizationID, posted.OrganizationID)
	assert.True(t, posted.CashbackSum.Equal(decimal.RequireFromString("12.50")))
}

func TestEventSerializer_UnknownType(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Deserialize("sales_order.vanished", []byte(`{}`))

	assert.Error(t, err)
}

func TestEventSerializer_MalformedPayload(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	_, err := serializer.Deserialize(sales.EventTypeOrderPosted, []byte(`{not json`))

	assert.Error(t, err)
}

func TestRegisterAllEvents_CoversPostingEvents(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	assert.True(t, serializer.IsRegistered(sales.EventTypeOrderPosted))
	assert.True(t, serializer.IsRegistered(sales.EventTypeOrderReposted))
	assert.True(t, serializer.IsRegistered(sales.EventTypeOrderStateChanged))
	assert.Len(t, serializer.RegisteredTypes(), 3)
}

package market

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_Purchasable(t *testing.T) {
	item := Item{ItemID: "i1", Price: 19.99, IsActive: true, IsSold: false, Seller: "A"}

	assert.True(t, item.Purchasable("B"))
	assert.False(t, item.Purchasable("A"), "own listing")

	sold := item
	sold.IsSold = true
	assert.False(t, sold.Purchasable("B"))

	inactive := item
	inactive.IsActive = false
	assert.False(t, inactive.Purchasable("B"))
}

func TestItem_DecodeLooseFields(t *testing.T) {
	raw := `{
		"itemID": "i1",
		"item_name": "Lamp",
		"item_description": "Desk lamp",
		"price": "19.99",
		"seller": "u1",
		"sellerUsername": "alice",
		"isActive": "TRUE",
		"isSold": "False",
		"creationDate": "2024-03-01T10:20:30.123"
	}`

	var item Item
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	assert.Equal(t, Price(19.99), item.Price)
	assert.True(t, bool(item.IsActive))
	assert.False(t, bool(item.IsSold))
	assert.Equal(t, "2024-03-01", item.CreationDate.Date())
}

func TestStatus(t *testing.T) {
	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, StatusPending.Validate())
		assert.NoError(t, StatusAccepted.Validate())
		assert.NoError(t, StatusRejected.Validate())
		assert.Error(t, Status("cancelled").Validate())
	})

	t.Run("transitions", func(t *testing.T) {
		tests := []struct {
			from, to Status
			allowed  bool
		}{
			{StatusPending, StatusAccepted, true},
			{StatusPending, StatusRejected, true},
			{StatusPending, StatusPending, false},
			{StatusAccepted, StatusRejected, false},
			{StatusRejected, StatusAccepted, false},
			{StatusAccepted, StatusPending, false},
		}
		for _, tt := range tests {
			t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
				assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
			})
		}
	})

	t.Run("parse", func(t *testing.T) {
		s, err := ParseStatus(" Accepted ")
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, s)

		_, err = ParseStatus("done")
		assert.Error(t, err)
	})
}

func TestTransaction_Validate(t *testing.T) {
	valid := func() *Transaction {
		return &Transaction{
			TransactionID: uuid.New().String(),
			BuyerID:       "buyer",
			SellerID:      "seller",
			ItemID:        "item",
			Price:         10,
			Status:        StatusPending,
		}
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Transaction)
		errMsg string
	}{
		{"bad id", func(tx *Transaction) { tx.TransactionID = "nope" }, "not a valid UUID"},
		{"no buyer", func(tx *Transaction) { tx.BuyerID = "" }, "buyer ID cannot be empty"},
		{"no seller", func(tx *Transaction) { tx.SellerID = "" }, "seller ID cannot be empty"},
		{"own item", func(tx *Transaction) { tx.SellerID = tx.BuyerID }, "buyer and seller must differ"},
		{"no item", func(tx *Transaction) { tx.ItemID = "" }, "item ID cannot be empty"},
		{"bad status", func(tx *Transaction) { tx.Status = "open" }, "invalid status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid()
			tt.mutate(tx)
			err := tx.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTransaction_WireFormat(t *testing.T) {
	tx := Transaction{
		TransactionID: "t1",
		BuyerID:       "b",
		SellerID:      "s",
		ItemID:        "i",
		Price:         19.99,
		Status:        StatusPending,
	}
	data, err := json.Marshal(tx)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "i", m["ItemID"])
	assert.Equal(t, "19.99", m["price"])
	assert.Equal(t, "pending", m["status"])
}

func TestProfileAttributes_Empty(t *testing.T) {
	assert.True(t, ProfileAttributes{}.Empty())
	assert.False(t, ProfileAttributes{Name: "Dana"}.Empty())
}

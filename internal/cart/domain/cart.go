package domain

import "time"

// Cart is a shopper's in-progress selection, keyed by the session's user key.
// Name and UnitPrice are display snapshots taken when the item was added;
// checkout recaptures live prices before creating an order.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserKey   string     `bson:"user_key" json:"user_key"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ProductID int64     `bson:"product_id" json:"product_id"`
	Name      string    `bson:"name" json:"name"`
	UnitPrice float64   `bson:"unit_price" json:"unit_price"`
	Quantity  int32     `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// Total is recomputed on demand, never stored.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

func (c *Cart) Find(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

package domain

import "time"

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Lines     []CartLine `bson:"lines" json:"lines"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartLine is one (product, size, quantity) entry. A line present in a cart
// always has Quantity >= 1; the pair (ProductID, Size) is unique per cart.
type CartLine struct {
	ProductID string    `bson:"product_id" json:"product_id"`
	Size      string    `bson:"size" json:"size"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// ItemCount is the derived display count shown next to the cart icon.
func (c *Cart) ItemCount() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

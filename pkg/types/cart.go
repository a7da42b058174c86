package types

// CartLine is a single product entry in a cart. Price is stored in minor
// currency units. A cart never holds two lines for the same product id and a
// line with qty reduced to zero is removed rather than retained.
type CartLine struct {
	ID    int64  `json:"id" gorm:"column:id"`
	Name  string `json:"name" gorm:"column:name"`
	Price int64  `json:"price" gorm:"column:price"`
	Image string `json:"image" gorm:"column:image"`
	Qty   int    `json:"qty" gorm:"column:qty"`
}

// CartLines is the ordered working list. Insertion order is stable so UI
// diffing stays deterministic.
type CartLines []CartLine

// Clone returns a deep copy so callers cannot mutate shared state.
func (c CartLines) Clone() CartLines {
	if c == nil {
		return nil
	}
	out := make(CartLines, len(c))
	copy(out, c)
	return out
}

// Total sums price*qty across all lines.
func (c CartLines) Total() int64 {
	var total int64
	for _, line := range c {
		total += line.Price * int64(line.Qty)
	}
	return total
}

package farm

// Entry is one inventory line. Count is always at least 1.
type Entry struct {
	ItemID string `json:"item_id" yaml:"item_id"`
	Count  int    `json:"count" yaml:"count"`
}

// Inventory is the item ledger, in first-acquired order.
type Inventory []Entry

// Count returns how many of the item are held.
func (inv Inventory) Count(itemID string) int {
	for _, e := range inv {
		if e.ItemID == itemID {
			return e.Count
		}
	}
	return 0
}

// Add credits n units of the item. Non-positive n is ignored.
func (inv *Inventory) Add(itemID string, n int) {
	if n <= 0 {
		return
	}
	for i := range *inv {
		if (*inv)[i].ItemID == itemID {
			(*inv)[i].Count += n
			return
		}
	}
	*inv = append(*inv, Entry{ItemID: itemID, Count: n})
}

// Remove debits n units of the item, deleting the entry when it reaches
// zero. It returns false and leaves the ledger untouched if fewer than n
// are held.
func (inv *Inventory) Remove(itemID string, n int) bool {
	if n <= 0 {
		return false
	}
	for i := range *inv {
		e := &(*inv)[i]
		if e.ItemID != itemID {
			continue
		}
		if e.Count < n {
			return false
		}
		e.Count -= n
		if e.Count == 0 {
			*inv = append((*inv)[:i], (*inv)[i+1:]...)
		}
		return true
	}
	return false
}

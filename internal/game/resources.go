package game

import "fmt"

// Resource names a counter in the shared pool.
type Resource int

const (
	Wood Resource = iota
	Gold
	Rum
	MapParts
	resourceCount
)

// Resources lists every resource in display order.
var Resources = []Resource{Wood, Gold, Rum, MapParts}

func (r Resource) String() string {
	switch r {
	case Wood:
		return "wood"
	case Gold:
		return "gold"
	case Rum:
		return "rum"
	case MapParts:
		return "mapParts"
	default:
		return "unknown"
	}
}

// ResourcePool is the shared store of materials. Balances are fractional so
// repairs can be paid a little at a time; none ever goes negative.
type ResourcePool struct {
	amounts [resourceCount]float64
}

// NewResourcePool returns a pool with the given opening balances.
func NewResourcePool(wood, gold, rum float64) *ResourcePool {
	p := &ResourcePool{}
	p.amounts[Wood] = wood
	p.amounts[Gold] = gold
	p.amounts[Rum] = rum
	return p
}

// Get returns the balance of r.
func (p *ResourcePool) Get(r Resource) float64 {
	if r < 0 || r >= resourceCount {
		return 0
	}
	return p.amounts[r]
}

// Int returns the whole part of the balance of r.
func (p *ResourcePool) Int(r Resource) int { return int(p.Get(r)) }

// Add credits amount to r. Negative amounts are clamped at zero balance.
func (p *ResourcePool) Add(r Resource, amount float64) {
	if r < 0 || r >= resourceCount {
		return
	}
	p.amounts[r] = max(0, p.amounts[r]+amount)
}

// TrySpend debits amount from r if the balance covers it.
func (p *ResourcePool) TrySpend(r Resource, amount float64) bool {
	if r < 0 || r >= resourceCount || amount < 0 || p.amounts[r] < amount {
		return false
	}
	p.amounts[r] -= amount
	return true
}

func (p *ResourcePool) String() string {
	return fmt.Sprintf("wood=%.2f gold=%.0f rum=%.0f mapParts=%.0f",
		p.amounts[Wood], p.amounts[Gold], p.amounts[Rum], p.amounts[MapParts])
}

package game

const (
	rowSpacing      = 50.0  // gap between neighbours in a spawn row
	rearRowStagger  = 75.0  // rear row starts further left per member
	rowDepth        = 100.0 // distance of each row from the flagship
	trailOffset     = 100.0 // group moves stop this far short of the leader
	attackStandoff  = 50.0  // attack slots sit this far in front of the target
	attackFan       = 20.0  // lateral gap between attack slots
	attackSlotLimit = 150.0 // slots further out than this are pulled in
	attackSlotPull  = 70.0
)

// fleetRowOffsets returns the spawn offsets from the flagship for n escorts.
// The first half forms the front row above the flagship, the rest the rear
// row below it. Integer division is intentional: it keeps rows left-aligned
// the same way for odd counts.
func fleetRowOffsets(n int) []Vec2 {
	offsets := make([]Vec2, n)
	for i := 0; i < n; i++ {
		if i < n/2 {
			offsets[i] = V(-float64(n/4)*rowSpacing+float64(i)*rowSpacing, -rowDepth)
		} else {
			offsets[i] = V(-float64(n/2)*rearRowStagger+float64(i)*rowSpacing, rowDepth)
		}
	}
	return offsets
}

// trailingDest is where a non-leading member heads when the group moves to
// dest: short of the point, back along the line from the member to the leader.
func trailingDest(dest, leader, member Vec2) Vec2 {
	return dest.Sub(leader.Sub(member).Normalize().Scale(trailOffset))
}

// attackSlot fans attackers out in front of a target. Even slots swing
// clockwise, odd slots counter-clockwise; a slot that lands too far out is
// pulled back to attackSlotPull from the target.
func attackSlot(target, attacker Vec2, index int) Vec2 {
	front := attacker.Sub(target).Normalize()
	side := front.Perp()
	if index%2 == 0 {
		side = side.Scale(-1)
	}
	dest := target.Add(front.Scale(attackStandoff)).Add(side.Scale(attackFan * float64(index)))
	if dest.Dist(target) >= attackSlotLimit {
		dest = target.Add(dest.Sub(target).Normalize().Scale(attackSlotPull))
	}
	return dest
}

// closestTo returns the ship nearest to p, or nil for an empty slice.
func closestTo(p Vec2, ships []*Ship) *Ship {
	return nearest(p, ships)
}

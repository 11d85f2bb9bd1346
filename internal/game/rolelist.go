package game

// RoleList is the set of ships driven by one combat role. Membership is
// exclusive: adding a ship moves it out of whatever list it was in.
type RoleList struct {
	role  CombatRole
	ships []*Ship
}

func newRoleList(role CombatRole) *RoleList {
	return &RoleList{role: role}
}

// Role is the role this list drives.
func (l *RoleList) Role() CombatRole { return l.role }

// Len is the number of members.
func (l *RoleList) Len() int { return len(l.ships) }

// Ships returns the members in insertion order. The slice is shared.
func (l *RoleList) Ships() []*Ship { return l.ships }

// Contains reports membership.
func (l *RoleList) Contains(s *Ship) bool {
	return containsShip(l.ships, s)
}

// Add registers s and tags it with the list's role. Adding twice is a no-op.
func (l *RoleList) Add(s *Ship) {
	s.Role = l.role
	if l.Contains(s) {
		return
	}
	l.ships = append(l.ships, s)
}

// Compact removes, in one stable pass, every ship for which keep returns
// false. Dropped ships lose their role tag unless another list has claimed
// them since.
func (l *RoleList) Compact(keep func(*Ship) bool) {
	kept := l.ships[:0]
	for _, s := range l.ships {
		if keep(s) {
			kept = append(kept, s)
			continue
		}
		if s.Role == l.role {
			s.Role = RoleNone
		}
	}
	clearTail(l.ships, len(kept))
	l.ships = kept
}

// Clear empties the list.
func (l *RoleList) Clear() {
	for _, s := range l.ships {
		if s.Role == l.role {
			s.Role = RoleNone
		}
	}
	clearTail(l.ships, 0)
	l.ships = l.ships[:0]
}

// belongs reports whether s should stay in l this tick.
func (l *RoleList) belongs(s *Ship) bool {
	return s.Alive() && s.Role == l.role && RoleFor(s.State) == l.role
}

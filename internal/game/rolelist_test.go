package game

import "testing"

func TestRoleList_AddIsIdempotent(t *testing.T) {
	l := newRoleList(RoleAttacking)
	s := &Ship{ID: 1, HP: 10}
	l.Add(s)
	l.Add(s)
	if l.Len() != 1 || s.Role != RoleAttacking {
		t.Fatalf("len=%d role=%s", l.Len(), s.Role)
	}
}

func TestRoleList_CompactIsStable(t *testing.T) {
	l := newRoleList(RoleDefending)
	var ships []*Ship
	for i := 1; i <= 5; i++ {
		s := &Ship{ID: ShipID(i), HP: 10}
		ships = append(ships, s)
		l.Add(s)
	}
	l.Compact(func(s *Ship) bool { return s.ID%2 == 1 })
	got := l.Ships()
	if len(got) != 3 || got[0].ID != 1 || got[1].ID != 3 || got[2].ID != 5 {
		t.Fatalf("compacted order = %v", got)
	}
	if ships[1].Role != RoleNone {
		t.Fatal("dropped ship should lose its role")
	}
}

func TestRoleList_CompactKeepsForeignRole(t *testing.T) {
	att := newRoleList(RoleAttacking)
	ent := newRoleList(RoleEntering)
	s := &Ship{ID: 1, HP: 10}
	att.Add(s)
	ent.Add(s)
	att.Compact(att.belongs)
	if att.Contains(s) {
		t.Fatal("ship claimed by another list should be dropped")
	}
	if s.Role != RoleEntering {
		t.Fatalf("role = %s, want entering", s.Role)
	}
}

func TestRoleList_BelongsNeedsMatchingState(t *testing.T) {
	l := newRoleList(RoleAttacking)
	s := &Ship{ID: 1, HP: 10, State: StateAttacking}
	l.Add(s)
	if !l.belongs(s) {
		t.Fatal("attacking ship should belong")
	}
	s.State = StateIdle
	if l.belongs(s) {
		t.Fatal("idle ship should not belong")
	}
	s.State = StateAttacking
	s.HP = 0
	if l.belongs(s) {
		t.Fatal("wreck should not belong")
	}
}

func TestRoleList_Clear(t *testing.T) {
	l := newRoleList(RoleEntering)
	s := &Ship{ID: 1, HP: 10}
	l.Add(s)
	l.Clear()
	if l.Len() != 0 || s.Role != RoleNone {
		t.Fatal("clear should empty the list and reset roles")
	}
}

package devserver

// seed fills the demo society used when Options.SeedData is set.
func seed(s *Store) {
	s.Create("/society/societies/", map[string]any{"name": "Green Meadows", "city": "Pune"})

	for _, b := range []string{"A", "B"} {
		s.Create("/society/blocks/", map[string]any{"name": "Block " + b, "society": 1})
	}
	for _, f := range []map[string]any{
		{"number": "A-101", "block": 1, "status": "occupied"},
		{"number": "A-102", "block": 1, "status": "vacant"},
		{"number": "B-201", "block": 2, "status": "occupied"},
	} {
		s.Create("/society/flats/", f)
	}

	for _, n := range []map[string]any{
		{"title": "Water supply maintenance", "priority": "high", "category": "maintenance"},
		{"title": "Annual general meeting", "priority": "medium", "category": "meeting"},
		{"title": "Diwali celebration", "priority": "low", "category": "event"},
	} {
		s.Create("/notices/", n)
	}

	for _, c := range []map[string]any{
		{"title": "Leaking pipe in A-101", "status": "open", "category": "plumbing"},
		{"title": "Lift not working", "status": "in_progress", "category": "electrical"},
	} {
		s.Create("/complaints/", c)
	}

	for _, b := range []map[string]any{
		{"flat": "A-101", "amount": 2500, "status": "pending", "month": "2026-09"},
		{"flat": "B-201", "amount": 2500, "status": "paid", "month": "2026-09"},
	} {
		s.Create("/billing/bills/", b)
	}
}

package planner

// allocateCities distributes the requested cities over the trip days as
// contiguous blocks in the order given, so travel never backtracks to an
// earlier city. With N cities and D days, each city gets floor(D/N) days
// and the first D mod N cities get one extra. Zero cities yields empty
// assignments (nationwide); one city covers every day.
func allocateCities(cities []string, totalDays int) []string {
	allocation := make([]string, totalDays)
	if len(cities) == 0 {
		return allocation
	}
	if len(cities) == 1 {
		for i := range allocation {
			allocation[i] = cities[0]
		}
		return allocation
	}

	base := totalDays / len(cities)
	extra := totalDays % len(cities)

	day := 0
	for i, city := range cities {
		blockLen := base
		if i < extra {
			blockLen++
		}
		for j := 0; j < blockLen && day < totalDays; j++ {
			allocation[day] = city
			day++
		}
	}
	// More cities than days: the trailing cities simply get no block.
	return allocation
}

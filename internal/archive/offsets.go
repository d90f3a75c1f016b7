package archive

// OffsetSequence returns the candidate day offsets for an expanding
// ring search, ordered by distance from zero with forward before
// backward at equal distance: 0, 1, -1, 2, -2, ..., max, -max.
// Nearness to the target dominates; among equally near dates the later
// one wins.
func OffsetSequence(maxOffsetDays int) []int {
	if maxOffsetDays < 0 {
		maxOffsetDays = 0
	}
	offsets := make([]int, 0, 2*maxOffsetDays+1)
	offsets = append(offsets, 0)
	for i := 1; i <= maxOffsetDays; i++ {
		offsets = append(offsets, i, -i)
	}
	return offsets
}

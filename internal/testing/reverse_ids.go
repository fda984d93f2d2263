package testing

// ReverseIDs returns a reversed copy of ids; feeds listed newest first are compared against it
func ReverseIDs(ids []int64) []int64 {
	reversed := make([]int64, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		reversed = append(reversed, ids[i])
	}
	return reversed
}

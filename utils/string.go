package utils

// PadRight extends row with empty strings until it holds at least n cells.
func PadRight(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	padded := make([]string, n)
	copy(padded, row)
	return padded
}

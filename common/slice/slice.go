package slice

// ToSlice creates a slice with all string keys from a map
func ToSlice(m map[string]struct{}) (s []string) {
	for k := range m {
		s = append(s, k)
	}

	return
}

package utils

// StringPtr returns a pointer to s, or nil when s is empty. Extracted fields are
// persisted as NULL rather than empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetOrDefault returns the value if the pointer is not nil, otherwise returns the default value
func GetOrDefault[T any](ptr *T, defaultVal T) T {
	if ptr == nil {
		return defaultVal
	}
	return *ptr
}

func IntPtr(i int) *int {
	return &i
}

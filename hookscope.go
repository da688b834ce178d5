package hookscope

// Default is the process-wide collector read by Query.
var Default = NewCollector()

// Query returns the query facade over Default.
func Query() *QueryBuilder {
	return Default.Query()
}

// Reset clears everything Default has recorded.
func Reset() {
	Default.Reset()
}

package domain

// Currency is a registered currency code. Name defaults to the code itself
// until enriched from an external source. Rows are never deleted.
type Currency struct {
	Code string
	Name string
}

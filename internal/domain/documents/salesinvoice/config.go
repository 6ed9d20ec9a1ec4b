package salesinvoice

import "posline/internal/core/numerator"

const (
	// NumberPrefix is the document number prefix, e.g. SI-2026-00001.
	NumberPrefix = "SI"

	// NumeratorStrategy is Strict: invoices are accounting documents
	// and must number without gaps.
	NumeratorStrategy = numerator.StrategyStrict
)

package tui

import "github.com/csheth/legalchain/internal/nda"

type stage int

const (
	stageForm stage = iota
	stageSubmitting
	stageDocument
)

const (
	appTitle    = "NDA Generator"
	heroTagline = "Draft a mutual non-disclosure agreement in one pass."
)

// Form fields in tab order.
type field int

const (
	fieldPartyOne field = iota
	fieldPartyTwo
	fieldEffectiveDate
	fieldDescription
	fieldTermLength
	fieldCount
)

var fieldKeys = [fieldCount]string{
	fieldPartyOne:      nda.FieldPartyOne,
	fieldPartyTwo:      nda.FieldPartyTwo,
	fieldEffectiveDate: nda.FieldEffectiveDate,
	fieldDescription:   nda.FieldDescription,
	fieldTermLength:    nda.FieldTermLength,
}

var fieldPlaceholders = [fieldCount]string{
	fieldPartyOne:      "e.g. Google",
	fieldPartyTwo:      "e.g. Apple",
	fieldEffectiveDate: "YYYY-MM-DD",
	fieldDescription:   "What information is confidential?",
	fieldTermLength:    "Years, e.g. 2",
}

func (f field) label() string {
	return nda.FieldLabels[fieldKeys[f]]
}

func fieldForKey(key string) (field, bool) {
	for idx, k := range fieldKeys {
		if k == key {
			return field(idx), true
		}
	}
	return 0, false
}

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	inputWidth                = 60
	descriptionHeight         = 4
)

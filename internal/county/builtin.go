package county

// Built-in jurisdictions. Document type codes are the exact strings the
// recording service recognizes for each recipient; do not normalize them.

var fullFieldSet = FieldSet{ExecutionDate: true, LegalDescription: true, ReferenceInfo: true}

var defaultTemplates = NameTemplates{
	Package:  "{account} {owner} TD {file}",
	Deed:     "{account} {owner} TD",
	Mortgage: "{account} {owner} SAT",
}

// Builtin returns a registry preloaded with every supported jurisdiction.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(Profile{
		ID:    "SCCP49",
		Name:  "Horry County",
		State: "SC",
		DocTypes: map[DocKind]string{
			KindDeed:                 "Deed - Timeshare",
			KindMortgageSatisfaction: "Mortgage Satisfaction",
		},
		Fields: map[DocKind]FieldSet{
			KindDeed:                 fullFieldSet,
			KindMortgageSatisfaction: fullFieldSet,
		},
		GranteeRule: GranteeFromColumn,
		Templates:   defaultTemplates,
	})
	r.Register(Profile{
		ID:    "SCCY4G",
		Name:  "Beaufort County",
		State: "SC",
		DocTypes: map[DocKind]string{
			KindDeed:                 "DEED - HILTON HEAD TIMESHARE",
			KindMortgageSatisfaction: "MORT - SATISFACTION",
		},
		Fields: map[DocKind]FieldSet{
			KindDeed:                 {},
			KindMortgageSatisfaction: {},
		},
		GranteeRule: GranteeFromOwners,
		Templates:   defaultTemplates,
	})
	r.Register(Profile{
		ID:    "SCCE6P",
		Name:  "Williamsburg County",
		State: "SC",
		DocTypes: map[DocKind]string{
			KindDeed:                 "Deed - Timeshare",
			KindMortgageSatisfaction: "Mortgage Satisfaction",
		},
		Fields: map[DocKind]FieldSet{
			KindDeed:                 fullFieldSet,
			KindMortgageSatisfaction: fullFieldSet,
		},
		GranteeRule: GranteeFromColumn,
		Templates:   defaultTemplates,
	})
	// Fulton shares Beaufort's document type labels but keeps the full
	// indexing field set and the grantee column.
	r.Register(Profile{
		ID:    "GAC3TH",
		Name:  "Fulton County",
		State: "GA",
		DocTypes: map[DocKind]string{
			KindDeed:                 "DEED - HILTON HEAD TIMESHARE",
			KindMortgageSatisfaction: "MORT - SATISFACTION",
		},
		Fields: map[DocKind]FieldSet{
			KindDeed:                 fullFieldSet,
			KindMortgageSatisfaction: fullFieldSet,
		},
		GranteeRule: GranteeFromColumn,
		Templates:   defaultTemplates,
	})
	r.Register(Profile{
		ID:    "NCCHLB",
		Name:  "Forsyth County",
		State: "NC",
		DocTypes: map[DocKind]string{
			KindDeed:                 "Deed - Timeshare",
			KindMortgageSatisfaction: "Mortgage Satisfaction",
		},
		Fields: map[DocKind]FieldSet{
			KindDeed:                 fullFieldSet,
			KindMortgageSatisfaction: fullFieldSet,
		},
		GranteeRule: GranteeFromColumn,
		Templates:   defaultTemplates,
	})
	return r
}

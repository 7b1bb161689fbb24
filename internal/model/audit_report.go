package model

// AuditReport compares the effect ids an application lists against the
// ids registered in the effects library.
type AuditReport struct {
	// AppSource is the file the effect lists were read from.
	AppSource string `json:"app_source"`

	// EffectsSource is the file searched for register(...) calls.
	EffectsSource string `json:"effects_source"`

	// Mentioned holds every unique effect id listed, in first-seen order.
	Mentioned []string `json:"mentioned"`

	// Found holds the mentioned ids that are registered.
	Found []string `json:"found"`

	// Missing holds the mentioned ids with no registration.
	Missing []string `json:"missing"`
}

// HasMissing reports whether any listed effect is not registered.
func (a *AuditReport) HasMissing() bool {
	return len(a.Missing) > 0
}

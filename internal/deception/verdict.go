package deception

// Purpose labels attached to deception profiles.
const (
	PurposeSuspicious   = "suspicious activity detected"
	PurposeExfiltration = "data exfiltration"
)

// DeceptionProfile is the synthetic narrative attached to an anomalous verdict.
type DeceptionProfile struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

// Verdict is the outcome of one evaluation. A blocked verdict carries nothing
// else. Verdicts are values and are not modified after Decide returns.
type Verdict struct {
	Blocked        bool
	IsAnomaly      bool
	Profile        *DeceptionProfile
	DecoyReference string
	FabricatedRows []map[string]any
	Features       FeatureVector
	// Payload is the normalized payload text the features were computed from.
	Payload string
}

// HasDecoy reports whether a decoy reference was produced.
func (v Verdict) HasDecoy() bool { return v.DecoyReference != "" }

// Rows returns the fabricated rows, never nil.
func (v Verdict) Rows() []map[string]any {
	if v.FabricatedRows == nil {
		return []map[string]any{}
	}
	return v.FabricatedRows
}

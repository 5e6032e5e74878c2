package risk

// Profile is the short rolling behavioral profile sent with every
// assessment request. It is derived from the session ledger.
type Profile struct {
	AvgTransaction  int64  `json:"avgTransaction"`
	LastLogin       string `json:"lastLogin"`
	TypicalLocation string `json:"typicalLocation"`
}

// Context is the normalized transaction context the oracle scores.
type Context struct {
	UserID      string  `json:"userId"`
	Amount      int64   `json:"amount"`
	Merchant    string  `json:"merchant"`
	Timestamp   string  `json:"timestamp"`
	Location    string  `json:"location"`
	UserHistory Profile `json:"userHistory"`

	// NewCounterparty marks a merchant the user has never paid before.
	// Only the embedded rule scorer uses it; it is not part of the wire
	// schema.
	NewCounterparty bool `json:"-"`
}

// assessmentWire mirrors the oracle's response schema.
type assessmentWire struct {
	RiskScore *int     `json:"riskScore"`
	Decision  string   `json:"decision"`
	Reason    string   `json:"reason"`
	Flags     []string `json:"flags"`
}

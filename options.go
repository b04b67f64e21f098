package evoting

const (
	// AddressModeClient trusts the voter_address supplied with the eligibility check and only mints
	// one when the request carries none.
	AddressModeClient = "client"
	// AddressModeGenerate mints a fresh address for every eligibility check.
	AddressModeGenerate = "generate"

	DefaultThreshold        = 10
	DefaultEligibilityToken = "VOTER_TOKEN_123"
)

// Options selects between the behaviors the mock backends disagreed on.
type Options struct {
	RatingValidation     bool
	VoterAddressMode     string
	RequireAdminToEnd    bool
	IncludeWinner        bool
	UniqueCandidateNames bool
	DefaultThreshold     int
	EligibilityToken     string
}

// DefaultOptions enables every check the strictest backend performed.
func DefaultOptions() Options {
	return Options{
		RatingValidation:     true,
		VoterAddressMode:     AddressModeClient,
		RequireAdminToEnd:    true,
		IncludeWinner:        true,
		UniqueCandidateNames: true,
		DefaultThreshold:     DefaultThreshold,
		EligibilityToken:     DefaultEligibilityToken,
	}
}

func (o Options) withDefaults() Options {
	if o.DefaultThreshold <= 0 {
		o.DefaultThreshold = DefaultThreshold
	}
	if o.EligibilityToken == "" {
		o.EligibilityToken = DefaultEligibilityToken
	}
	if o.VoterAddressMode == "" {
		o.VoterAddressMode = AddressModeClient
	}
	return o
}

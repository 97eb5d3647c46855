package domain

// Snapshot is the lightweight view used for tracing and debugging.
type Snapshot struct {
	Phase              Phase `json:"phase"`
	AIOffer            int   `json:"ai_offer"`
	UserOffer          *int  `json:"user_offer"`
	ConcessionsUsed    int   `json:"concessions_used"`
	AtOrBelowStopFloor bool  `json:"at_or_below_stop_floor"`
	Ended              bool  `json:"ended"`
}

// Contract is the policy payload consumed by the reply renderer.
// The renderer may only show Pricing.OfferToShow, never a price below
// HardGuard.MustNotPriceBelow, and only describe Actions.Allowed.
type Contract struct {
	State     ContractState   `json:"state"`
	Pricing   ContractPricing `json:"pricing"`
	Actions   ContractActions `json:"actions"`
	Product   ContractProduct `json:"product"`
	Persona   Persona         `json:"persona"`
	NLG       NLGHints        `json:"nlg"`
	HardGuard HardGuard       `json:"hard_guard"`
}

type ContractState struct {
	Phase              Phase  `json:"phase"`
	Reason             string `json:"reason"`
	AtOrBelowStopFloor bool   `json:"at_or_below_stop_floor"`
	CanNegotiate       bool   `json:"can_negotiate"`
}

type ContractPricing struct {
	ListPrice       int  `json:"list_price"`
	BarPrice        int  `json:"bar_price"`
	StopFloor       int  `json:"stop_floor"`
	UserOffer       *int `json:"user_offer"`
	AIOffer         int  `json:"ai_offer"`
	OfferToShow     int  `json:"offer_to_show"`
	MaxConcessions  int  `json:"max_concessions"`
	UsedConcessions int  `json:"used_concessions"`
}

type ContractActions struct {
	Allowed   []Action `json:"allowed"`
	Forbidden []Action `json:"forbidden"`
}

type ContractProduct struct {
	Title        string   `json:"title"`
	ValueReasons []string `json:"value_reasons"`
}

type HardGuard struct {
	MustNotPriceBelow  int  `json:"must_not_price_below"`
	MustNotChangeState bool `json:"must_not_change_state"`
}

// CoreView is the minimal digest of summary, snapshot and contract for the renderer.
type CoreView struct {
	CustomerPrice  *int     `json:"customer_price"`
	AIOffer        int      `json:"ai_offer"`
	OfferToShow    int      `json:"offer_to_show"`
	LowestPrice    int      `json:"lowest_price"`
	Phase          Phase    `json:"phase"`
	Intent         Intent   `json:"intent"`
	CanNegotiate   bool     `json:"can_negotiate"`
	AllowedActions []Action `json:"allowed_actions"`
}

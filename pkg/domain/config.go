package domain

// Config holds the immutable guardrails of a single negotiation.
// Tags cover every supported profile format so one type decodes from all of them.
type Config struct {
	// ListPrice is the opening (anchor) price.
	ListPrice int `json:"list_price" yaml:"list_price" toml:"list_price" mapstructure:"list_price"`

	// BarPrice is the absolute floor; no offer is ever below it.
	BarPrice int `json:"bar_price" yaml:"bar_price" toml:"bar_price" mapstructure:"bar_price"`

	// StopFloor is where conceding stops and the machine holds.
	StopFloor int `json:"stop_floor" yaml:"stop_floor" toml:"stop_floor" mapstructure:"stop_floor"`

	// MaxConcessions caps the number of CONCESSION rounds.
	MaxConcessions int `json:"max_concessions" yaml:"max_concessions" toml:"max_concessions" mapstructure:"max_concessions"`

	JumpImproveThreshold int `json:"jump_improve_threshold" yaml:"jump_improve_threshold" toml:"jump_improve_threshold" mapstructure:"jump_improve_threshold"`
	PsychZonePrice       int `json:"psych_zone_price" yaml:"psych_zone_price" toml:"psych_zone_price" mapstructure:"psych_zone_price"`

	// Accelerate enables jumping straight to the floor when the counterparty
	// improves by JumpImproveThreshold or bids inside the psych zone.
	Accelerate bool `json:"accelerate" yaml:"accelerate" toml:"accelerate" mapstructure:"accelerate"`

	// FractionTowardsUser is how far, in (0,1), the next offer moves toward the user's price.
	FractionTowardsUser float64 `json:"fraction_towards_user" yaml:"fraction_towards_user" toml:"fraction_towards_user" mapstructure:"fraction_towards_user"`
	RoundBase           int     `json:"round_base" yaml:"round_base" toml:"round_base" mapstructure:"round_base"`
	MinTick             int     `json:"min_tick" yaml:"min_tick" toml:"min_tick" mapstructure:"min_tick"`

	// StepSchedule is used when a concession is requested without a price.
	// Indexed by the concession count and clamped to its last element.
	StepSchedule []int `json:"step_schedule" yaml:"step_schedule" toml:"step_schedule" mapstructure:"step_schedule"`

	Policy Policy `json:"policy" yaml:"policy" toml:"policy" mapstructure:"policy"`
}

// Policy is static material copied into the Contract for the reply renderer.
type Policy struct {
	ProductTitle string   `json:"product_title" yaml:"product_title" toml:"product_title" mapstructure:"product_title"`
	ValueReasons []string `json:"value_reasons" yaml:"value_reasons" toml:"value_reasons" mapstructure:"value_reasons"`
	Persona      Persona  `json:"persona" yaml:"persona" toml:"persona" mapstructure:"persona"`
	NLG          NLGHints `json:"nlg" yaml:"nlg" toml:"nlg" mapstructure:"nlg"`
}

type Persona struct {
	Style       string `json:"style" yaml:"style" toml:"style" mapstructure:"style"`
	Politeness  string `json:"politeness" yaml:"politeness" toml:"politeness" mapstructure:"politeness"`
	TokenBudget int    `json:"token_budget" yaml:"token_budget" toml:"token_budget" mapstructure:"token_budget"`
}

type NLGHints struct {
	Tone       string `json:"tone" yaml:"tone" toml:"tone" mapstructure:"tone"`
	LengthHint string `json:"length_hint" yaml:"length_hint" toml:"length_hint" mapstructure:"length_hint"`
	CTA        string `json:"cta" yaml:"cta" toml:"cta" mapstructure:"cta"`
}

// DefaultStepSchedule is the fallback decrement sequence.
var DefaultStepSchedule = []int{20, 10, 5, 3, 2}

// DefaultConfig returns the reference negotiation profile.
func DefaultConfig() Config {
	return Config{
		ListPrice:            500,
		BarPrice:             400,
		StopFloor:            420,
		MaxConcessions:       5,
		JumpImproveThreshold: 20,
		PsychZonePrice:       450,
		FractionTowardsUser:  0.5,
		RoundBase:            5,
		MinTick:              10,
		StepSchedule:         append([]int(nil), DefaultStepSchedule...),
		Policy:               DefaultPolicy(),
	}
}

// DefaultPolicy returns the renderer policy used when a profile sets none.
func DefaultPolicy() Policy {
	return Policy{
		ProductTitle: "Demo product",
		ValueReasons: []string{
			"Genuine product with after-sales support",
			"Better materials than comparable items",
			"In stock, expedited shipping available",
		},
		Persona: Persona{Style: "analytic", Politeness: "medium", TokenBudget: 256},
		NLG: NLGHints{
			Tone:       "professional",
			LengthHint: "2-4 sentences",
			CTA:        "Confirm now to lock the order with priority shipping",
		},
	}
}

// Floor is the lowest price the machine may ever offer.
func (c Config) Floor() int {
	return max(c.StopFloor, c.BarPrice)
}

// Step returns the scheduled decrement for concession number k.
func (c Config) Step(k int) int {
	if len(c.StepSchedule) == 0 {
		return 0
	}
	return c.StepSchedule[min(max(k, 0), len(c.StepSchedule)-1)]
}

// WithDefaults fills zero-valued optional fields from DefaultConfig.
// Price fields are never defaulted.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if len(c.StepSchedule) == 0 {
		c.StepSchedule = def.StepSchedule
	}
	if c.RoundBase == 0 {
		c.RoundBase = def.RoundBase
	}
	if c.MinTick == 0 {
		c.MinTick = def.MinTick
	}
	if c.FractionTowardsUser == 0 {
		c.FractionTowardsUser = def.FractionTowardsUser
	}
	if c.Policy.ProductTitle == "" && len(c.Policy.ValueReasons) == 0 {
		c.Policy = def.Policy
	}
	return c
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	c.StepSchedule = append([]int(nil), c.StepSchedule...)
	c.Policy.ValueReasons = append([]string(nil), c.Policy.ValueReasons...)
	return c
}

// Validate checks the config invariants and reports every failure at once.
func (c Config) Validate() error {
	var errs []error
	fail := func(key, reason string, value any) {
		errs = append(errs, &ValidationError{Key: key, Reason: reason, Value: value})
	}

	if c.ListPrice <= 0 {
		fail("list_price", "must be positive", c.ListPrice)
	}
	if c.BarPrice < 0 {
		fail("bar_price", "must not be negative", c.BarPrice)
	}
	if c.BarPrice > c.StopFloor {
		fail("bar_price", "must not exceed stop_floor", c.BarPrice)
	}
	if c.StopFloor > c.ListPrice {
		fail("stop_floor", "must not exceed list_price", c.StopFloor)
	}
	if c.MaxConcessions < 0 {
		fail("max_concessions", "must not be negative", c.MaxConcessions)
	}
	if c.JumpImproveThreshold < 0 {
		fail("jump_improve_threshold", "must not be negative", c.JumpImproveThreshold)
	}
	if c.PsychZonePrice < 0 {
		fail("psych_zone_price", "must not be negative", c.PsychZonePrice)
	}
	if c.FractionTowardsUser <= 0 || c.FractionTowardsUser >= 1 {
		fail("fraction_towards_user", "must be in the open interval (0,1)", c.FractionTowardsUser)
	}
	if c.RoundBase < 1 {
		fail("round_base", "must be at least 1", c.RoundBase)
	}
	if c.MinTick < 1 {
		fail("min_tick", "must be at least 1", c.MinTick)
	}
	if len(c.StepSchedule) == 0 {
		fail("step_schedule", "required", nil)
	}
	for i, step := range c.StepSchedule {
		if step <= 0 {
			fail("step_schedule", "steps must be positive", step)
			break
		}
		if i > 0 && step >= c.StepSchedule[i-1] {
			fail("step_schedule", "steps must be strictly decreasing", c.StepSchedule)
			break
		}
	}

	if len(errs) > 0 {
		return &ConfigError{Errors: errs}
	}
	return nil
}

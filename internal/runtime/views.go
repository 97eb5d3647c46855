package runtime

import "github.com/aretw0/bargain/pkg/domain"

// contractReason marks phases decided by the machine rather than by the renderer.
const contractReason = "auto_by_fsm"

// BuildSnapshot projects the state into the lightweight tracing view.
func BuildSnapshot(cfg domain.Config, s *domain.State) domain.Snapshot {
	return domain.Snapshot{
		Phase:              s.Phase,
		AIOffer:            s.AIOffer,
		UserOffer:          domain.CopyPrice(s.LastUserOffer),
		ConcessionsUsed:    s.Concessions,
		AtOrBelowStopFloor: reachedStop(cfg, s),
		Ended:              s.Ended,
	}
}

// BuildContract projects configuration, state and static policy into the payload
// the reply renderer must obey.
func BuildContract(cfg domain.Config, s *domain.State) domain.Contract {
	atStop := reachedStop(cfg, s)

	allowed := []domain.Action{domain.ActionConcession, domain.ActionHold, domain.ActionAccept}
	forbidden := []domain.Action{}
	if atStop {
		allowed = []domain.Action{domain.ActionHold, domain.ActionAccept}
		forbidden = []domain.Action{domain.ActionLowerPrice}
	}

	offerToShow := s.AIOffer
	if s.LastUserOffer != nil {
		offerToShow = max(s.AIOffer, *s.LastUserOffer)
	}

	return domain.Contract{
		State: domain.ContractState{
			Phase:              s.Phase,
			Reason:             contractReason,
			AtOrBelowStopFloor: atStop,
			CanNegotiate:       !atStop && !s.Ended,
		},
		Pricing: domain.ContractPricing{
			ListPrice:       cfg.ListPrice,
			BarPrice:        cfg.BarPrice,
			StopFloor:       cfg.StopFloor,
			UserOffer:       domain.CopyPrice(s.LastUserOffer),
			AIOffer:         s.AIOffer,
			OfferToShow:     offerToShow,
			MaxConcessions:  cfg.MaxConcessions,
			UsedConcessions: s.Concessions,
		},
		Actions: domain.ContractActions{
			Allowed:   allowed,
			Forbidden: forbidden,
		},
		Product: domain.ContractProduct{
			Title:        cfg.Policy.ProductTitle,
			ValueReasons: append([]string(nil), cfg.Policy.ValueReasons...),
		},
		Persona: cfg.Policy.Persona,
		NLG:     cfg.Policy.NLG,
		HardGuard: domain.HardGuard{
			MustNotPriceBelow:  cfg.Floor(),
			MustNotChangeState: true,
		},
	}
}

// BuildCoreView digests one turn into the minimal renderer payload. Prices and
// phase come from the snapshot and contract, so an input the machine ignored
// never shows up as an offer. Only the customer price and intent echo the summary.
func BuildCoreView(summary domain.Summary, snap domain.Snapshot, contract domain.Contract) domain.CoreView {
	view := domain.CoreView{
		CustomerPrice:  domain.CopyPrice(summary.Price),
		AIOffer:        snap.AIOffer,
		OfferToShow:    contract.Pricing.OfferToShow,
		LowestPrice:    contract.HardGuard.MustNotPriceBelow,
		Phase:          contract.State.Phase,
		Intent:         summary.Intent,
		CanNegotiate:   contract.State.CanNegotiate,
		AllowedActions: append([]domain.Action(nil), contract.Actions.Allowed...),
	}
	if view.Intent == "" {
		view.Intent = domain.IntentOther
	}
	return view
}

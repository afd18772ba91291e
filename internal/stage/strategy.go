package stage

import "github.com/mfuentes/insider-scout/internal/model"

// Strategy actions.
const (
	ActionConsiderEntry  = "consider_entry"
	ActionStrongConsider = "strong_consider"
	ActionCaution        = "caution"
	ActionGoodEntry      = "good_entry"
	ActionAvoid          = "avoid"
)

// strategyFor derives the recommendation from (stage, opportunity type). This
// table is the single source of truth: no other path may emit a strategy.
func strategyFor(stage model.Stage, oppType model.OpportunityType) model.Strategy {
	switch stage {
	case model.StageEarlyPositive:
		return model.Strategy{
			Action:       ActionConsiderEntry,
			PositionSize: "small-to-medium",
			StopLossPct:  -8,
			TargetPct:    15,
			Rationale:    "early validation",
		}
	case model.StageEarlyNegative:
		if oppType == model.TypeWhale {
			return model.Strategy{
				Action:       ActionStrongConsider,
				PositionSize: "medium",
				StopLossPct:  -10,
				TargetPct:    20,
				Rationale:    "conviction + discount",
			}
		}
		return model.Strategy{
			Action:       ActionCaution,
			PositionSize: "small",
			StopLossPct:  -8,
			TargetPct:    15,
			Rationale:    "ambiguous signal",
		}
	case model.StageConfirmed:
		return model.Strategy{
			Action:       ActionGoodEntry,
			PositionSize: "medium",
			StopLossPct:  -6,
			TargetPct:    12,
			Rationale:    "validated, lower risk",
		}
	default: // StageLate
		return model.Strategy{
			Action:       ActionAvoid,
			PositionSize: "none",
			Rationale:    "limited upside",
		}
	}
}

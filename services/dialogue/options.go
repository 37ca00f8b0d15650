package dialogue

import "vtcland/models"

// options returns the quick-reply buttons shown with a step's prompt.
func (e *Engine) options(step models.Step) []string {
	switch step {
	case models.StepWelcome:
		return []string{"GO !"}
	case models.StepTier:
		out := make([]string, 0, len(e.script.Tiers))
		for _, t := range e.script.Tiers {
			out = append(out, t.Label)
		}
		return out
	case models.StepPassengers:
		return e.script.PassengerOptions
	case models.StepBags:
		return e.script.BagOptions
	case models.StepLuggage, models.StepConfirm, models.StepRestart:
		return e.script.YesNoLabels()
	case models.StepPayment:
		out := make([]string, 0, len(e.script.Payments))
		for _, p := range e.script.Payments {
			out = append(out, p.Label)
		}
		return out
	}
	return nil
}

package models

// Step is a named position in the reservation dialogue.
type Step string

const (
	StepWelcome     Step = "welcome"
	StepName        Step = "name"
	StepTier        Step = "tier"
	StepPickup      Step = "pickup"
	StepHours       Step = "hours"
	StepDestination Step = "destination"
	StepPassengers  Step = "passengers"
	StepLuggage     Step = "luggage"
	StepBags        Step = "bags"
	StepDate        Step = "date"
	StepTime        Step = "time"
	StepPayment     Step = "payment"
	StepPhone       Step = "phone"
	StepCode        Step = "code"
	StepConfirm     Step = "confirm"
	StepRestart     Step = "restart"
	StepCompleted   Step = "completed"
	StepEnded       Step = "ended"
)

// Terminal reports whether the dialogue accepts no further input at this step.
func (s Step) Terminal() bool {
	return s == StepCompleted || s == StepEnded
}

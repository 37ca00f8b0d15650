package models

import (
	"strings"
	"time"
)

// TierOption describes one selectable service tier and its fee constants.
type TierOption struct {
	ID         ServiceTier `mapstructure:"id" json:"id"`
	Label      string      `mapstructure:"label" json:"label"`
	Aliases    []string    `mapstructure:"aliases" json:"aliases,omitempty"`
	Kind       TierKind    `mapstructure:"kind" json:"kind"`
	RatePerKm  float64     `mapstructure:"rate_per_km" json:"ratePerKm,omitempty"`
	HourlyRate float64     `mapstructure:"hourly_rate" json:"hourlyRate,omitempty"`
}

// Choice is an enumerated answer with the spellings accepted for it.
type Choice struct {
	Value   string   `mapstructure:"value" json:"value"`
	Label   string   `mapstructure:"label" json:"label"`
	Aliases []string `mapstructure:"aliases" json:"aliases,omitempty"`
}

// Script is the configuration data of the dialogue: choices, fee constants
// and every text the bot says. The engine only holds the transition logic.
type Script struct {
	Tiers             []TierOption      `mapstructure:"tiers"`
	Payments          []Choice          `mapstructure:"payments"`
	WelcomeTokens     []string          `mapstructure:"welcome_tokens"`
	YesTokens         []string          `mapstructure:"yes_tokens"`
	NoTokens          []string          `mapstructure:"no_tokens"`
	YesNoOptions      []string          `mapstructure:"yes_no_options"`
	PassengerOptions  []string          `mapstructure:"passenger_options"`
	BagOptions        []string          `mapstructure:"bag_options"`
	Prompts           map[Step]string   `mapstructure:"prompts"`
	Messages          map[string]string `mapstructure:"messages"`
	ReservationPrefix string            `mapstructure:"reservation_prefix"`
	CountryCode       string            `mapstructure:"country_code"`
	Currency          string            `mapstructure:"currency"`
	RedirectURL       string            `mapstructure:"redirect_url"`
	RedirectDelay     time.Duration     `mapstructure:"redirect_delay"`
}

// Tier looks up a tier by id.
func (s *Script) Tier(id ServiceTier) (TierOption, bool) {
	for _, t := range s.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	return TierOption{}, false
}

// TierKindOf returns the kind of the given tier, or "" when unknown.
func (s *Script) TierKindOf(id ServiceTier) TierKind {
	t, ok := s.Tier(id)
	if !ok {
		return ""
	}
	return t.Kind
}

// TierChoices exposes the tiers as generic choices.
func (s *Script) TierChoices() []Choice {
	out := make([]Choice, 0, len(s.Tiers))
	for _, t := range s.Tiers {
		out = append(out, Choice{Value: string(t.ID), Label: t.Label, Aliases: t.Aliases})
	}
	return out
}

// TierLabel returns the display label of a tier, falling back to its id.
func (s *Script) TierLabel(id ServiceTier) string {
	if t, ok := s.Tier(id); ok && t.Label != "" {
		return t.Label
	}
	return string(id)
}

// PaymentLabel returns the display label of a payment method.
func (s *Script) PaymentLabel(m PaymentMethod) string {
	for _, p := range s.Payments {
		if p.Value == string(m) && p.Label != "" {
			return p.Label
		}
	}
	return string(m)
}

// HasPayment reports whether m is one of the configured payment methods.
func (s *Script) HasPayment(m PaymentMethod) bool {
	for _, p := range s.Payments {
		if p.Value == string(m) {
			return true
		}
	}
	return false
}

// Prompt returns the prompt text of a step.
func (s *Script) Prompt(step Step) string {
	return s.Prompts[step]
}

// Message renders a named message, substituting {key} placeholders.
func (s *Script) Message(key string, params map[string]string) string {
	text, ok := s.Messages[key]
	if !ok {
		text = key
	}
	return fill(text, params)
}

// PromptWith renders the prompt of a step, substituting {key} placeholders.
func (s *Script) PromptWith(step Step, params map[string]string) string {
	return fill(s.Prompts[step], params)
}

// YesNoLabels returns the button labels of yes/no questions.
func (s *Script) YesNoLabels() []string {
	if len(s.YesNoOptions) > 0 {
		return s.YesNoOptions
	}
	var out []string
	if len(s.YesTokens) > 0 {
		out = append(out, s.YesTokens[0])
	}
	if len(s.NoTokens) > 0 {
		out = append(out, s.NoTokens[0])
	}
	return out
}

func fill(text string, params map[string]string) string {
	if len(params) == 0 {
		return text
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

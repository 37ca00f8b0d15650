package config

import (
	"fmt"
	"time"

	"vtcland/models"

	"github.com/spf13/viper"
)

// DefaultScript returns the built-in VTCLAND dialogue.
func DefaultScript() *models.Script {
	return &models.Script{
		Tiers: []models.TierOption{
			{ID: models.TierDirectComfort, Label: "Trajet classique", Aliases: []string{"classique", "comfort", "confort"}, Kind: models.TierKindDirect, RatePerKm: 3},
			{ID: models.TierDirectPremium, Label: "Trajet Premium", Aliases: []string{"premium"}, Kind: models.TierKindDirect, RatePerKm: 5},
			{ID: models.TierHourly, Label: "Mise à disposition", Aliases: []string{"mise a disposition", "disposition", "hourly"}, Kind: models.TierKindHourly, HourlyRate: 80},
		},
		Payments: []models.Choice{
			{Value: string(models.PaymentCash), Label: "Espèces", Aliases: []string{"especes", "liquide"}},
			{Value: string(models.PaymentCard), Label: "CB", Aliases: []string{"carte", "carte bancaire"}},
		},
		WelcomeTokens:    []string{"go", "go !", "go!", "commencer", "start"},
		YesTokens:        []string{"oui", "yes", "o", "y", "ok"},
		NoTokens:         []string{"non", "no", "n"},
		YesNoOptions:     []string{"Oui", "Non"},
		PassengerOptions: []string{"1", "2", "3"},
		BagOptions:       []string{"1", "2", "3", "4+"},
		Prompts: map[models.Step]string{
			models.StepWelcome:     "✨ Bienvenue chez VTCLAND, où l’excellence du transport rencontre l’innovation.\nJe suis VTCElite, votre assistant personnel dédié à une expérience haut de gamme, fluide et prestigieuse.\nVotre trajet est prêt, il ne vous reste plus qu’à me donner les détails ✨",
			models.StepName:        "Pouvez-vous me donner votre nom pour la réservation ?",
			models.StepTier:        "Chez VTCLAND, nous avons conçu des services exclusifs pour répondre à vos besoins :\n\n🚗 Mise à disposition – Un chauffeur privé à votre entière disposition.\n\n📍 Trajet direct – Un transport sur-mesure d’un point A à un point B.\n\nQuel service vous conviendrait le mieux ?",
			models.StepPickup:      "Pouvez-vous m'indiquer le lieu de prise en charge ?",
			models.StepHours:       "Pouvez-vous m'indiquer le nombre d'heures (1 à 48) ?",
			models.StepDestination: "Pouvez-vous m'indiquer le lieu de destination ?",
			models.StepPassengers:  "Combien de passagers êtes-vous ?",
			models.StepLuggage:     "Avez-vous des bagages ?",
			models.StepBags:        "Combien avez-vous de bagages ?",
			models.StepDate:        "Quelle date souhaitez-vous réserver ?",
			models.StepTime:        "À quelle heure souhaitez-vous être pris en charge ?",
			models.StepPayment:     "Comment souhaitez-vous régler ?",
			models.StepPhone:       "Quel est votre numéro de téléphone ?",
			models.StepCode:        "📲 Un code de vérification vous a été envoyé par SMS. Veuillez l’entrer pour valider votre réservation.",
			models.StepConfirm:     "Confirmez-vous votre demande de réservation ?",
			models.StepRestart:     "D'accord, votre réservation a été annulée. Souhaitez-vous recommencer depuis le début ?",
			models.StepCompleted:   "Merci ! Votre demande de réservation {number} est enregistrée et a été envoyée à notre équipe de planification. Une réponse vous sera envoyée dans quelques minutes pour confirmer la prise en charge et le montant. VTCLAND vous remercie pour votre confiance !",
			models.StepEnded:       "Merci de votre visite. À bientôt chez VTCLAND.",
		},
		Messages: map[string]string{
			"required":          "⚠️ Merci de fournir une réponse valide.",
			"invalid_choice":    "⚠️ Merci de choisir parmi : {options}.",
			"not_a_number":      "⚠️ Merci d'indiquer un nombre.",
			"out_of_range":      "⚠️ Merci d'indiquer un nombre entre {min} et {max}.",
			"invalid_date":      "⚠️ Date invalide. Utilisez le format AAAA-MM-JJ.",
			"past_date":         "⚠️ Veuillez sélectionner une date valide (à partir d'aujourd'hui).",
			"invalid_time":      "⚠️ Heure invalide. Utilisez le format HH:MM.",
			"invalid_phone":     "Numéro invalide. Veuillez entrer un numéro au format international (+XX XXXXXXXX).",
			"invalid_code":      "⚠️ Le code doit contenir uniquement des chiffres.",
			"hourly_price":      "Le tarif pour {hours} heure(s) de mise à disposition est de {price} {currency}.",
			"fare_estimate":     "🚗 Distance estimée (par la route) : {distance} — Tarif prévisionnel : {price} {currency} ({tier})",
			"fare_unavailable":  "⚠️ Le calcul du tarif est momentanément indisponible. Merci de renvoyer l'heure pour réessayer.",
			"guard_not_ready":   "⚠️ Erreur : la vérification anti-robot n'est pas initialisée. Rechargez la page puis réessayez.",
			"sms_failed":        "⚠️ Erreur lors de l'envoi du SMS. Veuillez réessayer.",
			"sms_rate_limited":  "⚠️ Trop de demandes de code pour ce numéro. Veuillez patienter quelques minutes.",
			"code_mismatch":     "⚠️ Code incorrect. Veuillez réessayer.",
			"code_reissued":     "⏱️ Le code a expiré. Un nouveau code vous a été envoyé par SMS.",
			"verified":          "✅ Vérification réussie ! Votre réservation est presque terminée.",
			"summary":           "Votre réservation {number} :\n👤 {name}\n📍 Départ : {pickup}\n📍 Destination : {destination}\n🛣️ Service : {tier}\n👥 Passagers : {passengers}\n🧳 Bagages : {bags}\n📅 {date}\n🕒 {time}\n💰 Prix : {price} {currency}\n💳 Paiement : {payment}",
			"submit_rejected":   "⚠️ Votre réservation est incomplète ({fields}). Utilisez « Retour » pour corriger.",
			"submit_failed":     "Erreur lors de l'enregistrement. Veuillez réessayer.",
			"slot_full":         "⚠️ Ce créneau est complet. Utilisez « Retour » pour choisir une autre date ou heure.",
			"already_submitted": "Votre réservation {number} est déjà enregistrée.",
			"session_closed":    "Cette conversation est terminée.",
			"provider_timeout":  "⚠️ Le service met trop de temps à répondre. Veuillez réessayer.",
			"generic_error":     "⚠️ Une erreur inattendue est survenue. Veuillez réessayer.",
			"not_applicable":    "N/A",
		},
		ReservationPrefix: "VTC",
		CountryCode:       "33",
		Currency:          "€",
		RedirectURL:       "https://lem9700.github.io/vtc-redirection/",
		RedirectDelay:     7 * time.Second,
	}
}

// LoadScript returns the default script, overlaid with the YAML file at path
// when one is given. Keys missing from the file keep their default value.
func LoadScript(path string) (*models.Script, error) {
	script := DefaultScript()
	if path == "" {
		return script, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read dialogue script %s: %w", path, err)
	}
	// Lists in the file replace the defaults instead of merging element by element.
	if v.IsSet("tiers") {
		script.Tiers = nil
	}
	if v.IsSet("payments") {
		script.Payments = nil
	}
	for key, list := range map[string]*[]string{
		"welcome_tokens":    &script.WelcomeTokens,
		"yes_tokens":        &script.YesTokens,
		"no_tokens":         &script.NoTokens,
		"yes_no_options":    &script.YesNoOptions,
		"passenger_options": &script.PassengerOptions,
		"bag_options":       &script.BagOptions,
	} {
		if v.IsSet(key) {
			*list = nil
		}
	}
	if err := v.Unmarshal(script); err != nil {
		return nil, fmt.Errorf("failed to decode dialogue script %s: %w", path, err)
	}
	if err := ValidateScript(script); err != nil {
		return nil, err
	}
	return script, nil
}

// ValidateScript checks that the script can drive the engine.
func ValidateScript(s *models.Script) error {
	if len(s.Tiers) == 0 {
		return fmt.Errorf("dialogue script: at least one tier is required")
	}
	for _, t := range s.Tiers {
		switch t.Kind {
		case models.TierKindDirect:
			if t.RatePerKm <= 0 {
				return fmt.Errorf("dialogue script: tier %s needs a positive rate_per_km", t.ID)
			}
		case models.TierKindHourly:
			if t.HourlyRate <= 0 {
				return fmt.Errorf("dialogue script: tier %s needs a positive hourly_rate", t.ID)
			}
		default:
			return fmt.Errorf("dialogue script: tier %s has unknown kind %q", t.ID, t.Kind)
		}
	}
	if len(s.Payments) == 0 {
		return fmt.Errorf("dialogue script: at least one payment method is required")
	}
	if len(s.YesTokens) == 0 || len(s.NoTokens) == 0 {
		return fmt.Errorf("dialogue script: yes and no tokens are required")
	}
	if s.ReservationPrefix == "" {
		return fmt.Errorf("dialogue script: reservation_prefix is required")
	}
	return nil
}

// Package messages holds the French user-facing strings returned by the API.
package messages

// Generic errors.
const (
	ErrDefault        = "Une erreur inattendue est survenue. Notre équipe a été notifiée."
	ErrRequiredFields = "Veuillez compléter tous les champs obligatoires marqués d'un astérisque (*)."
	ErrInvalidEmail   = "L'adresse email saisie n'est pas valide. Format attendu : exemple@domaine.com"
	ErrUnauthorized   = "Accès refusé. Veuillez vous connecter pour continuer."
	ErrForbidden      = "Vous n'avez pas les droits nécessaires pour cette action."
	ErrNotFound       = "La ressource demandée est introuvable ou a été supprimée."
	ErrSessionExpired = "Votre session a expiré. Veuillez vous reconnecter pour continuer."
	ErrFormValidation = "Veuillez vérifier les informations saisies et corriger les erreurs."
	ErrTooManyRequest = "Trop de tentatives. Veuillez patienter avant de réessayer."
)

// Authentication.
const (
	AuthLoginSuccess       = "Connexion réussie ! Redirection en cours..."
	AuthLogoutSuccess      = "Vous avez été déconnecté avec succès. À bientôt !"
	AuthRegisterSuccess    = "Inscription réussie ! Vérifiez votre boîte mail pour activer votre compte."
	AuthRegisterError      = "Impossible de créer votre compte. Veuillez réessayer ultérieurement."
	AuthEmailExists        = "Cette adresse email est déjà associée à un compte existant."
	AuthWeakPassword       = "Le mot de passe doit contenir au moins 8 caractères, dont des majuscules, des chiffres et des caractères spéciaux."
	AuthInvalidCredentials = "Identifiants invalides. Si vous avez oublié votre mot de passe, utilisez la fonction \"Mot de passe oublié\"."
	AuthGoogleLoginError   = "Échec de la connexion avec Google. Veuillez réessayer ou utiliser une autre méthode."
	AuthEmailNotConfirmed  = "Veuillez confirmer votre adresse email avant de vous connecter."
	AuthAccountLocked      = "Compte temporairement verrouillé après plusieurs tentatives. Réessayez dans quelques minutes."
	AuthInvalidLink        = "Ce lien est invalide ou a expiré. Veuillez en demander un nouveau."
	AuthLinkSent           = "Si un compte existe pour cette adresse, un email vient de vous être envoyé."
	AuthPasswordUpdated    = "Votre mot de passe a été modifié avec succès. Vous allez être redirigé vers la page de connexion."
	AuthPasswordIncorrect  = "Le mot de passe actuel est incorrect ou la confirmation ne correspond pas."
	AuthEmailChangeSent    = "Un lien de confirmation a été envoyé à votre nouvelle adresse email."
	AuthInviteSent         = "L'invitation a été envoyée."
)

// Payments.
const (
	PaymentSuccess        = "Paiement accepté ! Votre réservation est confirmée. Vous recevrez un email de confirmation sous peu."
	PaymentError          = "Le paiement n'a pas pu aboutir. Votre carte a peut-être été refusée ou une erreur est survenue."
	PaymentCancelled      = "Paiement annulé. Aucun prélèvement n'a été effectué."
	PaymentMissingInfo    = "Informations de réservation incomplètes. Veuillez réessayer."
	PaymentCardDeclined   = "Votre carte a été refusée. Veuillez essayer une autre méthode de paiement."
	PaymentExpiredCard    = "Votre carte a expiré. Veuillez utiliser une autre carte."
	PaymentInsufficient   = "Fonds insuffisants sur la carte."
	PaymentGenericFailure = "Une erreur est survenue lors du traitement de votre paiement."
	PaymentRefunded       = "Le remboursement a été effectué."
	PaymentMethodNotAllow = "Method not allowed"
)

// Profile and administration.
const (
	ProfileUpdateSuccess = "Vos informations ont été mises à jour avec succès."
	ProfileUpdateError   = "Impossible de mettre à jour votre profil. Veuillez vérifier les informations saisies."
	AdminDeleteSuccess   = "La suppression a été effectuée avec succès."
	AdminDeleteError     = "Impossible de supprimer cet élément. Il est peut-être lié à d'autres données."
	AdminSaveSuccess     = "Les modifications ont été enregistrées avec succès."
	AdminSaveError       = "Erreur lors de l'enregistrement. Veuillez vérifier les données saisies."
)

// Commissions, notifications and currency.
const (
	CommissionMarkedPaid    = "La commission a été marquée comme payée."
	CommissionMarkedPending = "La commission a été remise en attente."
	CommissionNotEligible   = "Seuls les paiements encaissés donnent lieu à une commission."
	NotificationsMarkedRead = "Toutes les notifications ont été marquées comme lues."
	CurrencyUnsupported     = "Devise non prise en charge."
	CurrencyRatesUpdated    = "Les taux de change ont été mis à jour."
	UploadInvalidFile       = "Format de fichier non pris en charge. Utilisez une image JPG, PNG, GIF ou WebP."
	UploadTooLarge          = "Le fichier dépasse la taille maximale autorisée (5 Mo)."

	EarningsPayoutRecorded      = "Le versement au partenaire a été enregistré."
	EarningsInsufficientPending = "Le montant dépasse les gains en attente du partenaire."
)

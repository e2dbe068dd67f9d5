package domain

import "time"

// VaccinationStatus of a dog.
type VaccinationStatus string

const (
	VaccinationUpToDate VaccinationStatus = "up_to_date"
	VaccinationExpired  VaccinationStatus = "expired"
	VaccinationUnknown  VaccinationStatus = "unknown"
)

// BackgroundCheckStatus for walker verification documents.
type BackgroundCheckStatus string

const (
	BackgroundCheckPending  BackgroundCheckStatus = "pending"
	BackgroundCheckApproved BackgroundCheckStatus = "approved"
	BackgroundCheckRejected BackgroundCheckStatus = "rejected"
)

// PaymentMethodType of a stored payment method.
type PaymentMethodType string

const (
	PaymentCreditCard  PaymentMethodType = "credit_card"
	PaymentDebitCard   PaymentMethodType = "debit_card"
	PaymentBankAccount PaymentMethodType = "bank_account"
)

// Location is an owner's service address.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zip_code"`
}

// Dog belongs to an owner.
type Dog struct {
	ID                string            `json:"id"`
	OwnerID           string            `json:"owner_id"`
	Name              string            `json:"name"`
	Breed             string            `json:"breed,omitempty"`
	Age               *int              `json:"age,omitempty"`
	Weight            *float64          `json:"weight,omitempty"`
	PhotoURL          string            `json:"photo_url,omitempty"`
	SpecialNeeds      string            `json:"special_needs,omitempty"`
	Temperament       string            `json:"temperament,omitempty"`
	VaccinationStatus VaccinationStatus `json:"vaccination_status,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// PaymentMethod is a stored payment instrument; only the last four
// digits are ever kept here.
type PaymentMethod struct {
	ID             string            `json:"id"`
	Type           PaymentMethodType `json:"type"`
	Last4          string            `json:"last4"`
	IsDefault      bool              `json:"is_default"`
	ExpirationDate string            `json:"expiration_date,omitempty"`
}

// BankInfo is a walker's payout destination.
type BankInfo struct {
	AccountNumber     string `json:"account_number,omitempty"`
	RoutingNumber     string `json:"routing_number,omitempty"`
	AccountHolderName string `json:"account_holder_name,omitempty"`
}

// VerificationDocuments tracks a walker's identity checks.
type VerificationDocuments struct {
	IDVerified            bool                  `json:"id_verified"`
	BackgroundCheckStatus BackgroundCheckStatus `json:"background_check_status"`
}

// WalkerListing is a row in the public walker directory. It is a
// projection of the walker profile plus marketplace stats, backed by
// the directory database rather than the identity provider.
type WalkerListing struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	DisplayName        string             `json:"display_name"`
	Bio                string             `json:"bio,omitempty"`
	City               string             `json:"city,omitempty"`
	HourlyRate         float64            `json:"hourly_rate"`
	Rating             float64            `json:"rating"`
	TotalWalks         int                `json:"total_walks"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time          `json:"created_at"`
}

// WalkerFilter narrows directory listings.
type WalkerFilter struct {
	City         string
	MinRating    float64
	MaxRate      float64
	VerifiedOnly bool
	Limit        int
}

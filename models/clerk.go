package models

import "encoding/json"

// Payload shapes for identity-provider (Clerk) webhooks. Field names mirror
// the provider's wire format exactly.

type ClerkVerification struct {
	Status string `json:"status"`
}

type ClerkEmailAddress struct {
	ID           string             `json:"id"`
	EmailAddress string             `json:"email_address"`
	Verification *ClerkVerification `json:"verification,omitempty"`
}

type ClerkPhoneNumber struct {
	ID           string             `json:"id"`
	PhoneNumber  string             `json:"phone_number"`
	Verification *ClerkVerification `json:"verification,omitempty"`
}

// ClerkUserData is the identity record carried by user.created/user.updated
// events (and the shape returned by the provider's user API).
type ClerkUserData struct {
	ID                    string                 `json:"id"`
	EmailAddresses        []ClerkEmailAddress    `json:"email_addresses"`
	PrimaryEmailAddressID *string                `json:"primary_email_address_id"`
	PhoneNumbers          []ClerkPhoneNumber     `json:"phone_numbers"`
	PrimaryPhoneNumberID  *string                `json:"primary_phone_number_id"`
	FirstName             *string                `json:"first_name"`
	LastName              *string                `json:"last_name"`
	ImageURL              *string                `json:"image_url"`
	PublicMetadata        map[string]interface{} `json:"public_metadata"`
	CreatedAt             int64                  `json:"created_at"`
	UpdatedAt             int64                  `json:"updated_at"`
}

// ClerkDeletedData is the payload of user.deleted events, which carry only a
// reference to the removed identity.
type ClerkDeletedData struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ClerkWebhookEvent is the outer envelope of every webhook delivery. Data is
// kept raw so each event type can decode its own shape.
type ClerkWebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

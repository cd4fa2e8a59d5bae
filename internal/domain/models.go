// Package domain holds the core data model for the MSL call logging
// service: the shared configuration document, call and plan records,
// and the credential/principal types used by authentication.
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ============================================================
// Shared configuration document
// ============================================================

// MSL is a field representative. The roster is seeded into the shared
// configuration document and treated as immutable by this service.
type MSL struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Manager bool   `json:"manager,omitempty"`
}

// MedRep is an external contact a call is logged against. Name is the
// unique key; zone and line are optional and default to empty strings.
type MedRep struct {
	Name string `json:"name"`
	Zone string `json:"zone"`
	Line string `json:"line"`
}

// UnmarshalJSON accepts both the current structured form and the legacy
// bare-string form ("Yaman Ali"). Normalization happens here, at the
// store boundary, so business logic only ever sees the structured form.
func (m *MedRep) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		m.Name = name
		m.Zone = ""
		m.Line = ""
		return nil
	}

	type structured MedRep
	var s structured
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = MedRep(s)
	return nil
}

// Product is a promoted product with its ordered default talking points.
// Message position defines display order (labeled A, B, C... in the UI).
type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Messages []string `json:"messages"`
}

// ProductID derives the catalog identifier from a display name:
// lowercased, runs of whitespace replaced with a single underscore.
func ProductID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// Config is the single shared configuration document. It is always
// read-modify-written as a whole; there is no per-field patching and no
// optimistic concurrency check, so concurrent writers can lose an update.
type Config struct {
	MSLs     []MSL     `json:"msls"`
	MedReps  []MedRep  `json:"medReps"`
	Products []Product `json:"products"`
}

// MSLByID returns the roster entry for the given id, or nil.
func (c *Config) MSLByID(id string) *MSL {
	for i := range c.MSLs {
		if c.MSLs[i].ID == id {
			return &c.MSLs[i]
		}
	}
	return nil
}

// MSLByEmail returns the roster entry for the given email, or nil.
func (c *Config) MSLByEmail(email string) *MSL {
	for i := range c.MSLs {
		if strings.EqualFold(c.MSLs[i].Email, email) {
			return &c.MSLs[i]
		}
	}
	return nil
}

// ProductByID returns the catalog entry for the given id, or nil.
// Callers must tolerate nil: a deleted product leaves orphaned calls
// whose id no longer resolves.
func (c *Config) ProductByID(id string) *Product {
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i]
		}
	}
	return nil
}

// ============================================================
// Per-MSL message overrides
// ============================================================

// MessageOverride is a per-(MSL, product) customized message list.
// An absent override means the product defaults apply.
type MessageOverride struct {
	MSLID     string    `json:"msl_id"`
	ProductID string    `json:"product_id"`
	Messages  []string  `json:"messages"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ============================================================
// Calls and plans
// ============================================================

// Call is one logged interaction. Calls are append-only and immutable;
// duplicate submissions create duplicate records.
type Call struct {
	ID        string    `json:"id,omitempty"`
	Date      string    `json:"date"`
	MSLID     string    `json:"msl_id"`
	MedRep    string    `json:"med_rep"`
	ProductID string    `json:"product_id"`
	Messages  []string  `json:"messages"`
	Score     int       `json:"score"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Plan is a scheduled future call: the Call fields minus any outcome
// data, with the MSL display name denormalized for the team view.
type Plan struct {
	ID        string    `json:"id,omitempty"`
	Date      string    `json:"date"`
	MSLID     string    `json:"msl_id"`
	MSLName   string    `json:"msl_name"`
	MedRep    string    `json:"med_rep"`
	ProductID string    `json:"product_id"`
	Messages  []string  `json:"messages,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ============================================================
// Auth
// ============================================================

// MSLCredential is a stored login credential for a roster member.
type MSLCredential struct {
	MSLID        string `json:"msl_id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the signed access token and the principal.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	MSL         MSL    `json:"msl"`
}

// SuccessResponse is a generic ack payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

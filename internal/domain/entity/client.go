package entity

import (
	"encoding/json"
	"time"
)

// ClientStatus is the lifecycle state of a client record.
type ClientStatus string

const (
	ClientActive      ClientStatus = "active"
	ClientInactive    ClientStatus = "inactive"
	ClientSuspended   ClientStatus = "suspended"
	ClientBlacklisted ClientStatus = "blacklisted"
)

// DocumentTypeDNI is the only document type the bureau can be queried with.
const DocumentTypeDNI = "DNI"

// Client is the subset of a back-office client record that the credit
// check reads and updates.
type Client struct {
	ID             int64
	Name           string
	DocumentType   string
	DocumentNumber string
	Status         ClientStatus
	Credit         *CreditInfo
}

// CreditInfo is the last assessment stored on a client.
type CreditInfo struct {
	Score          int
	RiskClass      RiskClass
	TotalDebts     float64
	ActiveCredits  int
	OverdueCredits int
	Evaluation     Recommendation
	Justification  string
	SuggestedLimit float64
	CheckedAt      time.Time
	RawData        json.RawMessage
}

// HasDNI reports whether the client is identified by an 8-character DNI.
func (c *Client) HasDNI() bool {
	return c.DocumentType == DocumentTypeDNI && len(c.DocumentNumber) == 8
}

// CanPerformCreditCheck reports whether the bureau may be queried for c.
func (c *Client) CanPerformCreditCheck() bool {
	return c.HasDNI() && c.Status == ClientActive
}

// NeedsCreditCheck reports whether the stored assessment is missing or older than maxAge.
func (c *Client) NeedsCreditCheck(now time.Time, maxAge time.Duration) bool {
	if c.Credit == nil || c.Credit.CheckedAt.IsZero() {
		return true
	}
	return now.Sub(c.Credit.CheckedAt) > maxAge
}

// NewCreditInfo projects an assessment onto the fields stored on a client.
func NewCreditInfo(a *CreditAssessment) (CreditInfo, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return CreditInfo{}, err
	}
	var overdue int
	for _, d := range a.Debts.Debts {
		if d.DaysOverdue > 0 {
			overdue++
		}
	}
	return CreditInfo{
		Score:          a.Profile.Score,
		RiskClass:      a.Profile.RiskClass,
		TotalDebts:     a.Debts.TotalDebt,
		ActiveCredits:  a.Debts.DebtCount,
		OverdueCredits: overdue,
		Evaluation:     a.Recommendation,
		Justification:  a.Justification,
		SuggestedLimit: a.SuggestedLimit,
		CheckedAt:      a.EvaluatedAt,
		RawData:        raw,
	}, nil
}

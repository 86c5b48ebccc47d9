package domain

// Customer is a brokerage client who owns accounts, IPO applications and a
// portfolio.
type Customer struct {
	CustomerID string `json:"customerID"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BOID       string `json:"boid"` // Beneficiary owner id at the depository
	IsActive   bool   `json:"isActive"`
	AuditFields
}

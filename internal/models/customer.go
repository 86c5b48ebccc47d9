package models

// Customer is the persisted form of a brokerage client.
type Customer struct {
	CustomerID string `db:"customer_id"`
	Name       string `db:"name"`
	Email      string `db:"email"`
	Phone      string `db:"phone"`
	BOID       string `db:"boid"`
	IsActive   bool   `db:"is_active"`
	AuditFields
}

package domain

import "time"

type Customer struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CPF       string    `db:"cpf" json:"cpf"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CustomerPatch carries the fields of a partial customer update; nil means
// "leave as is".
type CustomerPatch struct {
	Name  *string
	Email *string
	Phone *string
	CPF   *string
}

// CustomerSnapshot is the customer as seen through a sale join. Every field
// is nil when the referenced customer no longer resolves.
type CustomerSnapshot struct {
	Name  *string `db:"customer_name" json:"customerName"`
	Email *string `db:"customer_email" json:"customerEmail"`
	Phone *string `db:"customer_phone" json:"customerPhone"`
	CPF   *string `db:"customer_cpf" json:"customerCpf"`
}

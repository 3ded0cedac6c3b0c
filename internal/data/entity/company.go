package entity

type Company struct {
	Base
	Name  string `db:"name"`
	Email string `db:"email"`
	City  string `db:"city"`
}

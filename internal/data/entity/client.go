package entity

type Client struct {
	Base
	Name  string `db:"name"`
	Email string `db:"email"`
	CPF   string `db:"cpf"`
	City  string `db:"city"`
}

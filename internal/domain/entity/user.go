package entity

import "time"

// User representa um usuário autenticável. A relação com empresas fica em
// CompanyMember; CompanyID aqui é a empresa "corrente" do usuário (vazia até
// ele criar uma ou aceitar um convite).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // hash bcrypt, nunca texto plano depois de persistir
	Name         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package domain

import "errors"

// Erros de domínio (sem dependências externas).
// Todos são terminais para a requisição que os disparou: nenhum é re-tentado
// internamente. Acesso cross-tenant é mapeado para ErrNotFound para não vazar
// a existência de recursos de outra empresa.
var (
	ErrNotFound           = errors.New("recurso não encontrado")
	ErrUserNotFound       = errors.New("usuário não encontrado")
	ErrEmailAlreadyExists = errors.New("o email já está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("não autorizado")
	ErrForbidden          = errors.New("acesso negado")
	ErrConflict           = errors.New("conflito com o estado atual")
	ErrInvalidState       = errors.New("transição de estado inválida")
)

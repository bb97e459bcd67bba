package usecase

import "github.com/vasapolrittideah/notes-api/shared/apperror"

var (
	ErrInvalidCredentials = apperror.New(apperror.KindAuth,
		"Invalid credentials", "Credenciais inválidas")
	ErrUserAlreadyExists = apperror.New(apperror.KindConflict,
		"Username or email already exists", "Usuário ou email já existe")
	ErrUsernameTaken = apperror.New(apperror.KindConflict,
		"Username already exists", "Nome de usuário já existe")
	ErrEmailTaken = apperror.New(apperror.KindConflict,
		"Email already exists", "Email já existe")
	ErrInvalidCurrentPassword = apperror.New(apperror.KindAuth,
		"Invalid current password", "Senha atual inválida")
	ErrUserNotFound = apperror.New(apperror.KindNotFound,
		"User not found", "Usuário não encontrado")
	ErrInvalidGoogleToken = apperror.New(apperror.KindAuth,
		"Invalid Google token", "Token do Google inválido")
	ErrGoogleDisabled = apperror.New(apperror.KindValidation,
		"Google sign-in is not enabled", "Login com Google não está habilitado")

	ErrNoteNotFound = apperror.New(apperror.KindNotFound,
		"Note not found", "Nota não encontrada")
	ErrFieldCrypto = apperror.New(apperror.KindCrypto,
		"Field encryption failed", "Falha na criptografia do campo")

	ErrInvalidCode = apperror.New(apperror.KindValidation,
		"Invalid or expired code", "Código inválido ou expirado")

	ErrSettingNotFound = apperror.New(apperror.KindNotFound,
		"Setting not found", "Configuração não encontrada")
	ErrInvalidSettingName = apperror.New(apperror.KindValidation,
		"Setting name must contain only A-Z, 0-9 and _", "O nome da configuração deve conter apenas A-Z, 0-9 e _")
)

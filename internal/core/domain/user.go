package domain

import (
	"net/mail"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
)

const (
	MinPasswordLength = 6
	MaxNameLength     = 255
	MaxEmailLength    = 255
)

// HospitalUnits is the closed set of organizational units a user may belong
// to. It mirrors the hospital's registration form.
var HospitalUnits = []string{
	"Pronto Socorro", "Recepção", "Ambulatório", "Administrativo",
	"Faturamento", "Maternidade", "Clínica Médica", "Clínica Cirúrgica",
	"Centro Cirúrgico", "Tomografia", "HEMOPI", "Núcleos", "UTI",
	"Farmácia", "Almoxarifado", "Nutrição", "Laboratório", "Fisioterapia",
	"TI", "Manutenção",
}

// IsValidUnit reports whether the unit belongs to the closed set.
func IsValidUnit(unit string) bool {
	for _, valid := range HospitalUnits {
		if unit == valid {
			return true
		}
	}
	return false
}

// User is the external identity collaborator. The ticket core only consumes
// its id and name; credential checks stay in the auth service.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Unit         string
}

// UserRegistrationParams holds parameters for user registration.
type UserRegistrationParams struct {
	Name     string
	Email    string
	Password string
	Unit     string
}

// Validate validates user registration parameters.
func (p *UserRegistrationParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.Name == "" {
		errs.Add("nome", "Nome é obrigatório")
	} else if len(p.Name) > MaxNameLength {
		errs.Add("nome", "Nome excede o tamanho máximo")
	}

	if p.Email == "" {
		errs.Add("email", "Email é obrigatório")
	} else if len(p.Email) > MaxEmailLength {
		errs.Add("email", "Email excede o tamanho máximo")
	} else if !isValidEmail(p.Email) {
		errs.Add("email", "Email inválido")
	}

	if len(p.Password) < MinPasswordLength {
		errs.Add("senha", "Senha deve ter pelo menos 6 caracteres")
	}

	if p.Unit != "" && !IsValidUnit(p.Unit) {
		errs.Add("setor", "Setor inválido")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// CheckPassword verifies the provided password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperrors.ErrPasswordTooWeak
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// NewUser creates a user with validated parameters and a hashed password.
func NewUser(params UserRegistrationParams) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	return &User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		Unit:         params.Unit,
	}, nil
}

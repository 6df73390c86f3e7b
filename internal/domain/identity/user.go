package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/stitchline/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Gender of a registered customer
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// IsValid checks if the gender is one of the accepted values
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// DateLayout is the wire format of dates of birth and purchase dates
const DateLayout = "2006-01-02"

const (
	bcryptCost        = 12
	minPasswordLength = 6
	minAddressLength  = 10
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10,15}$`)
)

// User is a customer or administrator account
type User struct {
	shared.BaseEntity
	Name         string
	Email        string
	PasswordHash string
	Gender       Gender
	Phone        string
	DateOfBirth  *time.Time
	Address      string
	Role         shared.Role
	IsVerified   bool
}

// Registration is the self-service signup form
type Registration struct {
	Name     string
	Email    string
	Password string
	Gender   string
	Phone    string
	DOB      string
	Address  string
}

// Register validates a signup form and builds a verified customer account.
// Every failed rule is reported in a single validation error.
func Register(r Registration) (*User, error) {
	var violations []string

	name := strings.TrimSpace(r.Name)
	if name == "" {
		violations = append(violations, "Name is required")
	}
	email := normalizeEmail(r.Email)
	if !emailPattern.MatchString(email) {
		violations = append(violations, "Valid email is required")
	}
	if len(r.Password) < minPasswordLength {
		violations = append(violations, "Password must be at least 6 characters")
	}
	gender := Gender(strings.TrimSpace(r.Gender))
	if !gender.IsValid() {
		violations = append(violations, "Valid gender is required")
	}
	phone := strings.TrimSpace(r.Phone)
	if !phonePattern.MatchString(phone) {
		violations = append(violations, "Valid phone number is required (10-15 digits)")
	}
	dob, err := time.Parse(DateLayout, strings.TrimSpace(r.DOB))
	if err != nil {
		violations = append(violations, "Valid date of birth is required")
	}
	address := strings.TrimSpace(r.Address)
	if len(address) < minAddressLength {
		violations = append(violations, "Address must be at least 10 characters")
	}

	if len(violations) > 0 {
		return nil, shared.NewValidationError("Validation failed", violations)
	}

	hash, err := hashPassword(r.Password)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Gender:       gender,
		Phone:        phone,
		DateOfBirth:  &dob,
		Address:      address,
		Role:         shared.RoleUser,
		IsVerified:   true,
	}, nil
}

// NewUser creates an account from the admin back office
func NewUser(name, email, password, phone string, role shared.Role) (*User, error) {
	u := &User{BaseEntity: shared.NewBaseEntity(), IsVerified: true}
	if err := u.UpdateDetails(name, email, phone); err != nil {
		return nil, err
	}
	if role == "" {
		role = shared.RoleUser
	}
	if err := u.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateDetails changes name, email and phone
func (u *User) UpdateDetails(name, email, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name is required")
	}
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Valid email is required")
	}
	phone = strings.TrimSpace(phone)
	if phone != "" && !phonePattern.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Valid phone number is required (10-15 digits)")
	}

	u.Name = name
	u.Email = email
	u.Phone = phone
	u.UpdatedAt = time.Now()
	return nil
}

// UpdateProfile changes the self-editable contact fields.
// Empty values leave the current value in place.
func (u *User) UpdateProfile(phone, address string) error {
	phone = strings.TrimSpace(phone)
	address = strings.TrimSpace(address)

	if phone != "" && !phonePattern.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Valid phone number is required (10-15 digits)")
	}
	if address != "" && len(address) < minAddressLength {
		return shared.NewDomainError("INVALID_ADDRESS", "Address must be at least 10 characters")
	}

	if phone != "" {
		u.Phone = phone
	}
	if address != "" {
		u.Address = address
	}
	u.UpdatedAt = time.Now()
	return nil
}

// ChangeRole sets the account role
func (u *User) ChangeRole(role shared.Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be user or admin")
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// MarkVerified flags the account as having passed OTP verification
func (u *User) MarkVerified() {
	u.IsVerified = true
	u.UpdatedAt = time.Now()
}

// Principal returns the caller identity of this user
func (u *User) Principal() shared.Principal {
	return shared.NewPrincipal(u.ID, u.Role)
}

// ValidPhone reports whether the value matches the accepted phone format
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}

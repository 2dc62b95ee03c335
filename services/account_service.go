package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rkive-api/config"
	"rkive-api/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AccountService struct {
	db *gorm.DB
	// facultyCache is evicted when deleting an account removes its faculty entry.
	facultyCache Cache
}

func NewAccountService(db *gorm.DB) *AccountService {
	if db == nil {
		db = config.DB
	}
	return &AccountService{db: db, facultyCache: NewRedisService(nil)}
}

// AccountInput is the payload for creating an account.
type AccountInput struct {
	FirstName  string   `json:"first_name" validate:"max=255"`
	LastName   string   `json:"last_name" validate:"max=255"`
	Email      string   `json:"email" validate:"required,email,max=255"`
	Password   string   `json:"password" validate:"required"`
	RePassword string   `json:"repassword" validate:"required"`
	Roles      []string `json:"roles"`
	IsActive   *bool    `json:"is_active"`
}

// AccountPatch carries the fields of a partial update; nil means keep.
type AccountPatch struct {
	FirstName  *string   `json:"first_name" validate:"omitempty,max=255"`
	LastName   *string   `json:"last_name" validate:"omitempty,max=255"`
	Email      *string   `json:"email" validate:"omitempty,email,max=255"`
	Password   *string   `json:"password"`
	RePassword *string   `json:"repassword"`
	Roles      *[]string `json:"roles"`
	IsActive   *bool     `json:"is_active"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *AccountService) List() ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *AccountService) Get(id uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (s *AccountService) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (s *AccountService) emailTaken(tx *gorm.DB, email string, exceptID uint) (bool, error) {
	var count int64
	q := tx.Model(&models.Account{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create registers an account. Without explicit roles the account is a student.
func (s *AccountService) Create(input AccountInput) (*models.Account, error) {
	roles := models.NewRoles(models.RoleStudent)
	if input.Roles != nil {
		parsed, err := models.ParseRoleNames(input.Roles)
		if err != nil {
			return nil, err
		}
		roles = parsed
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	return s.create(input, roles, active)
}

// Register is the self-service signup: always an active student.
func (s *AccountService) Register(input AccountInput) (*models.Account, error) {
	return s.create(input, models.NewRoles(models.RoleStudent), true)
}

// CreateSuperuser creates an account holding every role.
func (s *AccountService) CreateSuperuser(email, password, firstName, lastName string) (*models.Account, error) {
	return s.create(AccountInput{
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Password:   password,
		RePassword: password,
	}, models.NewRoles(models.AllRoles...), true)
}

func (s *AccountService) create(input AccountInput, roles models.Roles, active bool) (*models.Account, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}
	if input.Password != input.RePassword {
		return nil, ErrPasswordMismatch
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	account := models.Account{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Password:  hashed,
		IsActive:  true,
		Roles:     roles,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := s.emailTaken(tx, email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		if !active {
			account.IsActive = false
			return tx.Model(&account).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Update overwrites only the fields present in patch.
func (s *AccountService) Update(id uint, patch AccountPatch) (*models.Account, error) {
	var account models.Account
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if patch.FirstName != nil {
			updates["first_name"] = strings.TrimSpace(*patch.FirstName)
		}
		if patch.LastName != nil {
			updates["last_name"] = strings.TrimSpace(*patch.LastName)
		}
		if patch.Email != nil {
			email := normalizeEmail(*patch.Email)
			if email == "" {
				return ErrEmailRequired
			}
			taken, err := s.emailTaken(tx, email, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrEmailTaken
			}
			updates["email"] = email
		}
		if patch.Password != nil && *patch.Password != "" {
			if patch.RePassword == nil || *patch.RePassword != *patch.Password {
				return ErrPasswordMismatch
			}
			hashed, err := hashPassword(*patch.Password)
			if err != nil {
				return err
			}
			updates["password"] = hashed
		}
		if patch.Roles != nil {
			roles, err := models.ParseRoleNames(*patch.Roles)
			if err != nil {
				return err
			}
			updates["roles"] = roles
		}
		if patch.IsActive != nil {
			updates["is_active"] = *patch.IsActive
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&account).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&account, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Delete removes the account permanently. Owned records survive with a NULL
// owner; the linked faculty directory entry is removed and every reference to
// it is cleared.
func (s *AccountService) Delete(id uint) error {
	var facultyIDs []uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.First(&account, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		for _, model := range []interface{}{
			&models.Manuscript{},
			&models.ApplicationDefense{},
			&models.PanelDefense{},
			&models.GenerationJob{},
		} {
			if err := tx.Model(model).Where("owner_id = ?", id).Update("owner_id", nil).Error; err != nil {
				return fmt.Errorf("failed to clear owner: %w", err)
			}
		}

		if err := tx.Model(&models.Faculty{}).Where("account_id = ?", id).Pluck("id", &facultyIDs).Error; err != nil {
			return err
		}
		if len(facultyIDs) > 0 {
			if err := clearFacultyReferences(tx, facultyIDs); err != nil {
				return err
			}
			if err := tx.Delete(&models.Faculty{}, facultyIDs).Error; err != nil {
				return fmt.Errorf("failed to delete faculty entry: %w", err)
			}
		}

		return tx.Delete(&account).Error
	})
	if err != nil {
		return err
	}
	if len(facultyIDs) > 0 {
		NewFacultyService(s.db, s.facultyCache).evict(facultyIDs...)
	}
	return nil
}

// Authenticate checks credentials and stamps last_login.
func (s *AccountService) Authenticate(email, password string) (*models.Account, error) {
	account, err := s.GetByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	s.touchLogin(account)
	return account, nil
}

// FindOrCreateExternal returns the account for an email verified by an identity
// provider, creating an active student with an unusable password when missing.
func (s *AccountService) FindOrCreateExternal(email, firstName, lastName string) (*models.Account, bool, error) {
	account, err := s.GetByEmail(email)
	if err == nil {
		if !account.IsActive {
			return nil, false, ErrInactiveAccount
		}
		s.touchLogin(account)
		return account, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	account = &models.Account{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     normalizeEmail(email),
		Password:  "!",
		IsActive:  true,
		Roles:     models.NewRoles(models.RoleStudent),
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, false, err
	}
	s.touchLogin(account)
	return account, true, nil
}

func (s *AccountService) touchLogin(account *models.Account) {
	now := time.Now()
	if err := s.db.Model(account).UpdateColumn("last_login", now).Error; err == nil {
		account.LastLogin = &now
	}
}

// ChangePassword replaces the password after checking the current one.
func (s *AccountService) ChangePassword(id uint, current, next string) error {
	if strings.TrimSpace(next) == "" {
		return ErrPasswordRequired
	}
	var account models.Account
	if err := s.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(current)) != nil {
		return ErrInvalidCredentials
	}

	hashed, err := hashPassword(next)
	if err != nil {
		return err
	}
	return s.db.Model(&account).Update("password", hashed).Error
}

// MigrationReport summarizes a MigratePlaintextPasswords run.
type MigrationReport struct {
	Rehashed int
	Skipped  int
	Failed   []string
}

// MigratePlaintextPasswords bcrypt-hashes every stored password that is not
// already a bcrypt hash. Unusable passwords ("!") are left alone.
func (s *AccountService) MigratePlaintextPasswords() (MigrationReport, error) {
	var report MigrationReport
	var accounts []models.Account
	if err := s.db.Select("id", "email", "password").Find(&accounts).Error; err != nil {
		return report, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for _, account := range accounts {
		if strings.HasPrefix(account.Password, "$2") || account.Password == "!" || account.Password == "" {
			report.Skipped++
			continue
		}
		hashed, err := hashPassword(account.Password)
		if err == nil {
			err = s.db.Model(&models.Account{}).Where("id = ?", account.ID).Update("password", hashed).Error
		}
		if err != nil {
			log.Printf("[accounts] rehash %s failed: %v", account.Email, err)
			report.Failed = append(report.Failed, account.Email)
			continue
		}
		report.Rehashed++
	}
	return report, nil
}

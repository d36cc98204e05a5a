package jsonfile

import (
	"sync"
	"time"

	"github.com/arefin/diamondledger/internal/domain"
)

const (
	adminsFile = "admins.json"
	pinFile    = "pin.json"
)

type pinDocument struct {
	AdminPIN  string     `json:"adminPin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// AdminRepository persists the chat-side admin roster and the admin panel
// PIN.
type AdminRepository struct {
	mu           sync.Mutex
	store        *Store
	bootstrapPIN string
}

// NewAdminRepository creates a new AdminRepository. bootstrapPIN seeds
// pin.json on first run; empty falls back to the default PIN.
func NewAdminRepository(store *Store, bootstrapPIN string) *AdminRepository {
	if bootstrapPIN == "" {
		bootstrapPIN = domain.DefaultPIN
	}
	return &AdminRepository{store: store, bootstrapPIN: bootstrapPIN}
}

func (r *AdminRepository) loadAdmins() ([]*domain.Admin, error) {
	var admins []*domain.Admin
	err := r.store.read(adminsFile, &admins, func() {
		admins = []*domain.Admin{}
	})
	if err != nil {
		return nil, err
	}
	return admins, nil
}

// List returns all chat admins.
func (r *AdminRepository) List() ([]*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadAdmins()
}

// Add registers a chat admin. Duplicate chat ids are rejected quietly with
// ok=false.
func (r *AdminRepository) Add(a *domain.Admin) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	admins, err := r.loadAdmins()
	if err != nil {
		return false, err
	}
	for _, existing := range admins {
		if existing.ChatID == a.ChatID {
			return false, nil
		}
	}
	if a.Role == "" {
		a.Role = domain.RoleAdmin
	}
	a.AddedAt = time.Now().UTC()
	admins = append(admins, a)
	return true, r.store.write(adminsFile, admins)
}

// Remove drops the admin with the given chat id.
func (r *AdminRepository) Remove(chatID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	admins, err := r.loadAdmins()
	if err != nil {
		return false, err
	}
	for i, a := range admins {
		if a.ChatID == chatID {
			admins = append(admins[:i], admins[i+1:]...)
			return true, r.store.write(adminsFile, admins)
		}
	}
	return false, nil
}

// IsAdmin reports whether the chat id belongs to a registered admin.
func (r *AdminRepository) IsAdmin(chatID string) (bool, error) {
	admins, err := r.List()
	if err != nil {
		return false, err
	}
	for _, a := range admins {
		if a.ChatID == chatID {
			return true, nil
		}
	}
	return false, nil
}

func (r *AdminRepository) loadPIN() (*pinDocument, error) {
	doc := &pinDocument{}
	err := r.store.read(pinFile, doc, func() {
		*doc = pinDocument{AdminPIN: r.bootstrapPIN, CreatedAt: time.Now().UTC()}
	})
	if err != nil {
		return nil, err
	}
	if doc.AdminPIN == "" {
		doc.AdminPIN = r.bootstrapPIN
	}
	return doc, nil
}

// VerifyPIN checks a panel login attempt.
func (r *AdminRepository) VerifyPIN(pin string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadPIN()
	if err != nil {
		return false, err
	}
	return doc.AdminPIN == pin, nil
}

// UpdatePIN replaces the panel PIN.
func (r *AdminRepository) UpdatePIN(pin string) error {
	if pin == "" {
		return domain.ErrInvalidPIN
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadPIN()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc.AdminPIN = pin
	doc.UpdatedAt = &now
	return r.store.write(pinFile, doc)
}

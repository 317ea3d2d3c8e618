// Package hash wraps bcrypt behind a process-scoped Hasher so the cost is
// configured once at startup and injected where passwords are handled.
package hash

import "golang.org/x/crypto/bcrypt"

type Hasher struct {
	cost int
}

// NewHasher clamps cost into bcrypt's valid range; zero picks the default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored bcrypt hash.
func (h *Hasher) Verify(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

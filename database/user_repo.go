package database

import (
	"context"
	"fmt"

	"github.com/tooldesk/tooldesk/backend/errs"
	"github.com/tooldesk/tooldesk/backend/models"
	"golang.org/x/crypto/bcrypt"
)

// UserRepo stores users with bcrypt-hashed passwords. No route uses it.
type UserRepo struct {
	store *Store
}

func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{store}
}

func (r *UserRepo) FindAll() []models.User {
	return listRows(r.store, r.store.users)
}

func (r *UserRepo) FindByID(id int) (models.User, bool) {
	return getRow(r.store, r.store.users, id)
}

func (r *UserRepo) FindByUsername(username string) (models.User, bool) {
	for _, user := range r.FindAll() {
		if user.Username == username {
			return user, true
		}
	}
	return models.User{}, false
}

// Add hashes the password and stores the user. Usernames are unique.
func (r *UserRepo) Add(ctx context.Context, input models.NewUser) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users.rows {
		if existing.Username == input.Username {
			return models.User{}, errs.NewAlreadyExists("user " + input.Username)
		}
	}

	id := s.users.allocate()
	user := models.User{ID: id, Username: input.Username, Password: string(hash), CreatedAt: s.now()}
	s.users.insert(id, user)
	return user, s.persistLocked(ctx)
}

// CheckPassword reports whether password matches the stored hash.
func (r *UserRepo) CheckPassword(user models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

func (r *UserRepo) Delete(ctx context.Context, id int) (bool, error) {
	return deleteRow(ctx, r.store, r.store.users, id)
}


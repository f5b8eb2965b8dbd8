package service

import (
	"context"
	"sync"
	"time"

	"feedbacktalent/internal/entity"

	"github.com/google/uuid"
)

// In-memory stand-ins for the gorm repositories. They mirror the guarded
// transition semantics of the real implementations so the state machine can
// be exercised without a database.

type fakeResetRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*entity.PasswordReset
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{records: make(map[uuid.UUID]*entity.PasswordReset)}
}

func (r *fakeResetRepo) Create(_ context.Context, reset *entity.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reset.ID == uuid.Nil {
		reset.ID = uuid.New()
	}
	stored := *reset
	r.records[reset.ID] = &stored
	return nil
}

func (r *fakeResetRepo) FindByRequestID(_ context.Context, requestID uuid.UUID) (*entity.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.RequestID == requestID {
			snapshot := *record
			return &snapshot, nil
		}
	}
	return nil, nil
}

func (r *fakeResetRepo) FindVerifiedByTokenHash(_ context.Context, tokenHash string) (*entity.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.Status == entity.ResetStatusVerified &&
			record.ResetTokenHash != nil && *record.ResetTokenHash == tokenHash {
			snapshot := *record
			return &snapshot, nil
		}
	}
	return nil, nil
}

func (r *fakeResetRepo) ExpireActiveByUser(_ context.Context, userID uuid.UUID, except uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, record := range r.records {
		if record.UserID != userID || id == except {
			continue
		}
		if record.Status == entity.ResetStatusPending || record.Status == entity.ResetStatusVerified {
			record.Status = entity.ResetStatusExpired
		}
	}
	return nil
}

func (r *fakeResetRepo) MarkExpired(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil
	}
	if record.Status == entity.ResetStatusPending || record.Status == entity.ResetStatusVerified {
		record.Status = entity.ResetStatusExpired
	}
	return nil
}

func (r *fakeResetRepo) MarkVerified(_ context.Context, id uuid.UUID, tokenHash string, tokenExpiresAt time.Time, verifiedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok || record.Status != entity.ResetStatusPending {
		return false, nil
	}
	record.Status = entity.ResetStatusVerified
	record.ResetTokenHash = &tokenHash
	record.ResetTokenExpiresAt = &tokenExpiresAt
	record.VerifiedAt = &verifiedAt
	record.LastAttemptAt = &verifiedAt
	return true, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok || record.Status != entity.ResetStatusVerified {
		return false, nil
	}
	record.Status = entity.ResetStatusUsed
	record.UsedAt = &usedAt
	return true, nil
}

func (r *fakeResetRepo) RecordFailedAttempt(_ context.Context, id uuid.UUID, attemptAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok || record.Status != entity.ResetStatusPending || record.AttemptsLeft <= 0 {
		return false, nil
	}
	record.AttemptsLeft--
	record.LastAttemptAt = &attemptAt
	if record.AttemptsLeft <= 0 {
		record.Status = entity.ResetStatusExpired
	}
	return true, nil
}

func (r *fakeResetRepo) RefreshPin(_ context.Context, id uuid.UUID, pinHash string, expiresAt time.Time, attempts int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok || record.Status != entity.ResetStatusPending {
		return false, nil
	}
	record.PinHash = pinHash
	record.ExpiresAt = expiresAt
	record.AttemptsLeft = attempts
	return true, nil
}

func (r *fakeResetRepo) TouchLastSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[id]; ok {
		record.LastSentAt = &sentAt
	}
	return nil
}

func (r *fakeResetRepo) CleanupExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, record := range r.records {
		if record.ExpiresAt.Before(time.Now()) {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *fakeResetRepo) byUser(userID uuid.UUID) []entity.PasswordReset {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.PasswordReset
	for _, record := range r.records {
		if record.UserID == userID {
			out = append(out, *record)
		}
	}
	return out
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || !user.IsActive {
		return nil, nil
	}
	snapshot := *user
	return &snapshot, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email && user.IsActive {
			snapshot := *user
			return &snapshot, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, userID uuid.UUID, name *string, description *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil
	}
	if name != nil {
		user.Name = *name
	}
	if description != nil {
		value := *description
		user.Description = &value
	}
	return nil
}

func (r *fakeUserRepo) ListCompanies(_ context.Context, limit, offset int) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.User
	for _, user := range r.users {
		if user.Role == entity.UserRoleCompany && user.IsActive {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SearchCompanies(_ context.Context, query string, limit int) ([]entity.User, error) {
	return r.ListCompanies(context.Background(), limit, 0)
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *fakeSessionRepo) FindByTokenHash(_ context.Context, hash string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.TokenHash == hash && session.RevokedAt == nil && session.ExpiresAt.After(time.Now()) {
			snapshot := *session
			return &snapshot, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) RotateToken(_ context.Context, sessionID uuid.UUID, newHash string, newExpiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[sessionID]; ok && session.RevokedAt == nil {
		session.TokenHash = newHash
		session.ExpiresAt = newExpiry
	}
	return nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[sessionID]; ok {
		now := time.Now()
		session.RevokedAt = &now
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllByUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, session := range r.sessions {
		if session.UserID == userID && session.RevokedAt == nil {
			session.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) CleanupExpired(_ context.Context) error {
	return nil
}

func (r *fakeSessionRepo) activeCount(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, session := range r.sessions {
		if session.UserID == userID && session.RevokedAt == nil {
			count++
		}
	}
	return count
}

type fakeSecurityLogRepo struct {
	mu      sync.Mutex
	entries []entity.SecurityLog
}

func (r *fakeSecurityLogRepo) Log(_ context.Context, log *entity.SecurityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *log)
	return nil
}

type sentMail struct {
	To        string
	Pin       string
	RequestID string
}

type fakeMailSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (s *fakeMailSender) SendResetPin(_ context.Context, email, pin, requestID string, _ time.Duration) error {
	return s.record(email, pin, requestID)
}

func (s *fakeMailSender) SendResetPinAgain(_ context.Context, email, pin, requestID string) error {
	return s.record(email, pin, requestID)
}

func (s *fakeMailSender) record(email, pin, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, sentMail{To: email, Pin: pin, RequestID: requestID})
	return nil
}

func (s *fakeMailSender) last() sentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentMail{}
	}
	return s.sent[len(s.sent)-1]
}

func (s *fakeMailSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

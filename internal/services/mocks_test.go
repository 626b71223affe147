package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/repository"

	"github.com/google/uuid"
)

// In-memory repositories shared by the service tests.

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	r := &mockUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *mockUserRepo) ListDoctors(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if u.ActsAsDoctor() {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out, nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *mockUserRepo) CountDoctors(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.ActsAsDoctor() {
			n++
		}
	}
	return n, nil
}

func (r *mockUserRepo) CountPatients(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role == models.RolePatient && !u.IsDoctor {
			n++
		}
	}
	return n, nil
}

type mockAppointmentRepo struct {
	mu           sync.Mutex
	users        *mockUserRepo
	appointments map[string]*models.Appointment
	clock        time.Time
	updates      int
	transitionFn func(id string) // runs before the conditional update, outside the lock
}

func newMockAppointmentRepo(users *mockUserRepo) *mockAppointmentRepo {
	return &mockAppointmentRepo{
		users:        users,
		appointments: make(map[string]*models.Appointment),
		clock:        time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (r *mockAppointmentRepo) Create(ctx context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.clock = r.clock.Add(time.Minute)
	a.CreatedAt = r.clock
	a.UpdatedAt = r.clock
	cp := *a
	cp.Patient = models.User{}
	cp.Doctor = models.User{}
	r.appointments[a.ID] = &cp
	return nil
}

func (r *mockAppointmentRepo) withParticipants(a models.Appointment) models.Appointment {
	if p, err := r.users.GetByID(context.Background(), a.PatientID); err == nil {
		a.Patient = *p
	}
	if d, err := r.users.GetByID(context.Background(), a.DoctorID); err == nil {
		a.Doctor = *d
	}
	return a
}

func (r *mockAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	a, ok := r.appointments[id]
	var cp models.Appointment
	if ok {
		cp = *a
	}
	r.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp = r.withParticipants(cp)
	return &cp, nil
}

func (r *mockAppointmentRepo) TransitionStatus(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (bool, error) {
	if r.transitionFn != nil {
		r.transitionFn(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if a.Status == s {
			a.Status = to
			r.updates++
			return true, nil
		}
	}
	return false, nil
}

// setStatus forces a status without going through the state machine.
func (r *mockAppointmentRepo) setStatus(id string, status models.AppointmentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[id].Status = status
}

func (r *mockAppointmentRepo) status(id string) models.AppointmentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appointments[id].Status
}

func (r *mockAppointmentRepo) list(keep func(*models.Appointment) bool) []models.Appointment {
	r.mu.Lock()
	var out []models.Appointment
	for _, a := range r.appointments {
		if keep(a) {
			out = append(out, *a)
		}
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	for i := range out {
		out[i] = r.withParticipants(out[i])
	}
	return out
}

func (r *mockAppointmentRepo) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return r.list(func(*models.Appointment) bool { return true }), nil
}

func (r *mockAppointmentRepo) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return r.list(func(a *models.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *mockAppointmentRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return r.list(func(a *models.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *mockAppointmentRepo) CountByStatus(ctx context.Context) (map[models.AppointmentStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[models.AppointmentStatus]int64)
	for _, a := range r.appointments {
		counts[a.Status]++
	}
	return counts, nil
}

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
	createErr     error
	clock         time.Time
	afterCount    func() // runs after CountUnread has read, outside the lock
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{clock: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
}

func (r *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	n.ID = uuid.NewString()
	r.clock = r.clock.Add(time.Second)
	n.CreatedAt = r.clock
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *mockNotificationRepo) forRecipient(recipientID string, unreadOnly bool) []models.Notification {
	var out []models.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead) {
			out = append(out, *n)
		}
	}
	return out
}

func (r *mockNotificationRepo) all() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, 0, len(r.notifications))
	for _, n := range r.notifications {
		out = append(out, *n)
	}
	return out
}

func (r *mockNotificationRepo) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.forRecipient(recipientID, false)
	total := int64(len(items))
	if offset >= len(items) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], total, nil
}

func (r *mockNotificationRepo) ListUnread(ctx context.Context, recipientID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forRecipient(recipientID, true), nil
}

func (r *mockNotificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	n := int64(len(r.forRecipient(recipientID, true)))
	hook := r.afterCount
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return n, nil
}

func (r *mockNotificationRepo) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *mockNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, item := range r.notifications {
		if item.RecipientID == recipientID && !item.IsRead {
			item.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *mockNotificationRepo) Delete(ctx context.Context, id, recipientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *mockNotificationRepo) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifications[:0]
	var removed int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return removed, nil
}

type mockCounter struct {
	mu          sync.Mutex
	values      map[string]int64
	versions    map[string]int64
	invalidated []string
	getErr      error
}

func newMockCounter() *mockCounter {
	return &mockCounter{values: make(map[string]int64), versions: make(map[string]int64)}
}

func (c *mockCounter) Get(ctx context.Context, userID string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	v, ok := c.values[userID]
	return v, ok, nil
}

func (c *mockCounter) Version(ctx context.Context, userID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[userID], nil
}

func (c *mockCounter) SetIfVersion(ctx context.Context, userID string, count, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[userID] != version {
		return false, nil
	}
	c.values[userID] = count
	return true, nil
}

// set seeds a cached value directly.
func (c *mockCounter) set(userID string, count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[userID] = count
}

func (c *mockCounter) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[userID]++
	delete(c.values, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

type mockPublisher struct {
	mu        sync.Mutex
	published map[string][]*models.Notification
}

func (p *mockPublisher) PublishNotification(userID string, n *models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.published == nil {
		p.published = make(map[string][]*models.Notification)
	}
	p.published[userID] = append(p.published[userID], n)
}

var errDatabaseDown = errors.New("database down")

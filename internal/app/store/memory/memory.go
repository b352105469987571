// internal/app/store/memory/memory.go

// Package memory is a process-local implementation of store.Store used in
// development and tests. State is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
)

type data struct {
	users           map[string]models.User
	collections     map[string]models.Collection
	collectionOrder []string
	impacts         []models.Impact
	activities      []models.Activity
	badges          []models.Badge
	tips            []models.EcoTip
	interests       map[string]models.MaterialInterest
	interestOrder   []string
	messages        []models.ChatMessage
	feedback        []models.Feedback
	centers         []models.RecyclingCenter
}

func newData() *data {
	return &data{
		users:       make(map[string]models.User),
		collections: make(map[string]models.Collection),
		interests:   make(map[string]models.MaterialInterest),
	}
}

// clone copies every table. Struct values are copied; pointer fields are
// shared, which is safe because the store replaces pointers rather than
// writing through them.
func (d *data) clone() *data {
	c := &data{
		users:           make(map[string]models.User, len(d.users)),
		collections:     make(map[string]models.Collection, len(d.collections)),
		collectionOrder: append([]string(nil), d.collectionOrder...),
		impacts:         append([]models.Impact(nil), d.impacts...),
		activities:      append([]models.Activity(nil), d.activities...),
		badges:          append([]models.Badge(nil), d.badges...),
		tips:            append([]models.EcoTip(nil), d.tips...),
		interests:       make(map[string]models.MaterialInterest, len(d.interests)),
		interestOrder:   append([]string(nil), d.interestOrder...),
		messages:        append([]models.ChatMessage(nil), d.messages...),
		feedback:        append([]models.Feedback(nil), d.feedback...),
		centers:         append([]models.RecyclingCenter(nil), d.centers...),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.collections {
		c.collections[k] = v
	}
	for k, v := range d.interests {
		c.interests[k] = v
	}
	return c
}

// Store keeps every table in maps guarded by one mutex.
//
// RunInTx holds the mutex for the whole callback, so transactions are
// serialized and see a consistent view. The tx value shares the tables but
// skips locking.
type Store struct {
	mu   *sync.Mutex
	d    *data
	inTx bool
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{mu: &sync.Mutex{}, d: newData()}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// RunInTx snapshots the tables, runs fn, and restores the snapshot if fn fails.
func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	tx := &Store{mu: s.mu, d: s.d, inTx: true}
	if err := fn(tx); err != nil {
		*s.d = *snapshot
		return err
	}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(ctx context.Context) error { return nil }

func now() time.Time { return time.Now().UTC() }

func f64(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func str(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

/*─────────────────────────────────────────────────────────────────────────────*
| Users                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	defer s.lock()()
	for _, existing := range s.d.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return store.ErrDuplicate
		}
		if u.GoogleUID != nil && existing.GoogleUID != nil && *existing.GoogleUID == *u.GoogleUID {
			return store.ErrDuplicate
		}
	}
	if _, ok := s.d.users[u.ID]; ok {
		return store.ErrDuplicate
	}
	s.d.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	defer s.lock()()
	u, ok := s.d.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	defer s.lock()()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.d.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) findUser(match func(models.User) bool) (models.User, error) {
	defer s.lock()()
	for _, u := range s.d.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *Store) GetUserByGoogleUID(ctx context.Context, uid string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.GoogleUID != nil && *u.GoogleUID == uid })
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, error) {
	defer s.lock()()
	u, ok := s.d.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	if upd.Email != nil && *upd.Email != u.Email {
		for _, other := range s.d.users {
			if other.ID != id && other.Email == *upd.Email {
				return models.User{}, store.ErrDuplicate
			}
		}
		u.Email = *upd.Email
	}
	if upd.GoogleUID != nil {
		for _, other := range s.d.users {
			if other.ID != id && other.GoogleUID != nil && *other.GoogleUID == *upd.GoogleUID {
				return models.User{}, store.ErrDuplicate
			}
		}
		u.GoogleUID = str(upd.GoogleUID)
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	if upd.BusinessName != nil {
		u.BusinessName = *upd.BusinessName
	}
	if upd.BusinessType != nil {
		u.BusinessType = *upd.BusinessType
	}
	if upd.BusinessDescription != nil {
		u.BusinessDescription = *upd.BusinessDescription
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.OnboardingCompleted != nil {
		u.OnboardingCompleted = *upd.OnboardingCompleted
	}
	u.UpdatedAt = now()
	s.d.users[id] = u
	return u, nil
}

func (s *Store) AddPoints(ctx context.Context, id string, delta int) (int, error) {
	defer s.lock()()
	u, ok := s.d.users[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	u.SustainabilityScore += delta
	u.UpdatedAt = now()
	s.d.users[id] = u
	return u.SustainabilityScore, nil
}

func (s *Store) ListUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	defer s.lock()()
	var out []models.User
	for _, u := range s.d.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Collections                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateCollection(ctx context.Context, c *models.Collection) error {
	defer s.lock()()
	if _, ok := s.d.collections[c.ID]; ok {
		return store.ErrDuplicate
	}
	s.d.collections[c.ID] = *c
	s.d.collectionOrder = append(s.d.collectionOrder, c.ID)
	return nil
}

func (s *Store) GetCollection(ctx context.Context, id string) (models.Collection, error) {
	defer s.lock()()
	c, ok := s.d.collections[id]
	if !ok {
		return models.Collection{}, store.ErrNotFound
	}
	return c, nil
}

func matchCollection(c models.Collection, q store.CollectionQuery) bool {
	if q.UserID != "" && c.UserID != q.UserID {
		return false
	}
	if q.CollectorID != "" && !c.IsAssignedTo(q.CollectorID) {
		return false
	}
	if len(q.Statuses) > 0 && !contains(q.Statuses, c.Status) {
		return false
	}
	if q.Claimed != nil && c.IsClaimed() != *q.Claimed {
		return false
	}
	return true
}

func (s *Store) ListCollections(ctx context.Context, q store.CollectionQuery) ([]models.Collection, error) {
	defer s.lock()()
	var out []models.Collection
	// newest first: walk insertion order backwards
	for i := len(s.d.collectionOrder) - 1; i >= 0; i-- {
		c := s.d.collections[s.d.collectionOrder[i]]
		if matchCollection(c, q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) UpdateCollection(ctx context.Context, id string, upd models.CollectionUpdate) (models.Collection, error) {
	defer s.lock()()
	c, ok := s.d.collections[id]
	if !ok {
		return models.Collection{}, store.ErrNotFound
	}
	if upd.CollectorID != nil {
		c.CollectorID = str(upd.CollectorID)
	}
	if upd.WasteType != nil {
		c.WasteType = *upd.WasteType
	}
	if upd.EstimatedAmount != nil {
		c.EstimatedAmount = f64(upd.EstimatedAmount)
	}
	if upd.WasteAmount != nil {
		c.WasteAmount = f64(upd.WasteAmount)
	}
	if upd.Address != nil {
		c.Address = *upd.Address
	}
	if upd.Location != nil {
		c.Location = *upd.Location
	}
	if upd.Latitude != nil {
		c.Latitude = f64(upd.Latitude)
	}
	if upd.Longitude != nil {
		c.Longitude = f64(upd.Longitude)
	}
	if upd.ScheduledDate != nil {
		c.ScheduledDate = *upd.ScheduledDate
	}
	if upd.CompletedDate != nil {
		t := *upd.CompletedDate
		c.CompletedDate = &t
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.Notes != nil {
		c.Notes = *upd.Notes
	}
	c.UpdatedAt = now()
	s.d.collections[id] = c
	return c, nil
}

func (s *Store) ClaimCollection(ctx context.Context, id, collectorID string) (models.Collection, error) {
	defer s.lock()()
	c, ok := s.d.collections[id]
	if !ok {
		return models.Collection{}, store.ErrNotFound
	}
	if c.IsClaimed() || c.Status == models.StatusCompleted || c.Status == models.StatusCancelled {
		return models.Collection{}, store.ErrConflict
	}
	c.CollectorID = &collectorID
	c.UpdatedAt = now()
	s.d.collections[id] = c
	return c, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Impacts, activities, badges                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateImpact(ctx context.Context, im *models.Impact) error {
	defer s.lock()()
	s.d.impacts = append(s.d.impacts, *im)
	return nil
}

func (s *Store) ListImpacts(ctx context.Context, q store.ImpactQuery) ([]models.Impact, error) {
	defer s.lock()()
	var out []models.Impact
	for _, im := range s.d.impacts {
		if q.UserID != "" && im.UserID != q.UserID {
			continue
		}
		if q.CollectionIDs != nil && (im.CollectionID == nil || !contains(q.CollectionIDs, *im.CollectionID)) {
			continue
		}
		out = append(out, im)
	}
	return out, nil
}

func (s *Store) CreateActivity(ctx context.Context, a *models.Activity) error {
	defer s.lock()()
	s.d.activities = append(s.d.activities, *a)
	return nil
}

func (s *Store) ListActivities(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	defer s.lock()()
	var out []models.Activity
	for i := len(s.d.activities) - 1; i >= 0; i-- {
		if s.d.activities[i].UserID != userID {
			continue
		}
		out = append(out, s.d.activities[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) AwardBadge(ctx context.Context, b *models.Badge) (bool, error) {
	defer s.lock()()
	for _, existing := range s.d.badges {
		if existing.UserID == b.UserID && existing.BadgeType == b.BadgeType {
			return false, nil
		}
	}
	s.d.badges = append(s.d.badges, *b)
	return true, nil
}

func (s *Store) ListBadges(ctx context.Context, userID string) ([]models.Badge, error) {
	defer s.lock()()
	var out []models.Badge
	for _, b := range s.d.badges {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Eco tips                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateEcoTip(ctx context.Context, t *models.EcoTip) error {
	defer s.lock()()
	s.d.tips = append(s.d.tips, *t)
	return nil
}

func (s *Store) ListEcoTips(ctx context.Context, wasteType string, limit int) ([]models.EcoTip, error) {
	defer s.lock()()
	var out []models.EcoTip
	for _, t := range s.d.tips {
		if wasteType != "" && t.WasteType != "" && t.WasteType != wasteType {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Material interests                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateInterest(ctx context.Context, mi *models.MaterialInterest) error {
	defer s.lock()()
	if _, ok := s.d.interests[mi.ID]; ok {
		return store.ErrDuplicate
	}
	s.d.interests[mi.ID] = *mi
	s.d.interestOrder = append(s.d.interestOrder, mi.ID)
	return nil
}

func (s *Store) GetInterest(ctx context.Context, id string) (models.MaterialInterest, error) {
	defer s.lock()()
	mi, ok := s.d.interests[id]
	if !ok {
		return models.MaterialInterest{}, store.ErrNotFound
	}
	return mi, nil
}

func (s *Store) ListInterests(ctx context.Context, q store.InterestQuery) ([]models.MaterialInterest, error) {
	defer s.lock()()
	var out []models.MaterialInterest
	for i := len(s.d.interestOrder) - 1; i >= 0; i-- {
		mi := s.d.interests[s.d.interestOrder[i]]
		if q.CollectionIDs != nil && !contains(q.CollectionIDs, mi.CollectionID) {
			continue
		}
		if q.RecyclerID != "" && mi.RecyclerID != q.RecyclerID {
			continue
		}
		if len(q.Statuses) > 0 && !contains(q.Statuses, mi.Status) {
			continue
		}
		out = append(out, mi)
	}
	return out, nil
}

func (s *Store) UpdateInterestStatus(ctx context.Context, id, status string) (models.MaterialInterest, error) {
	defer s.lock()()
	mi, ok := s.d.interests[id]
	if !ok {
		return models.MaterialInterest{}, store.ErrNotFound
	}
	mi.Status = status
	mi.UpdatedAt = now()
	s.d.interests[id] = mi
	return mi, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Chat                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateMessage(ctx context.Context, m *models.ChatMessage) error {
	defer s.lock()()
	s.d.messages = append(s.d.messages, *m)
	return nil
}

func (s *Store) ListConversation(ctx context.Context, a, b string) ([]models.ChatMessage, error) {
	defer s.lock()()
	var out []models.ChatMessage
	for _, m := range s.d.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) ListMessagesForUser(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	defer s.lock()()
	var out []models.ChatMessage
	for i := len(s.d.messages) - 1; i >= 0; i-- {
		m := s.d.messages[i]
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	defer s.lock()()
	var n int64
	for i := range s.d.messages {
		m := &s.d.messages[i]
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (s *Store) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	defer s.lock()()
	var n int64
	for _, m := range s.d.messages {
		if m.ReceiverID == receiverID && !m.Read {
			n++
		}
	}
	return n, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Feedback and recycling centers                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	defer s.lock()()
	s.d.feedback = append(s.d.feedback, *f)
	return nil
}

func (s *Store) ListFeedback(ctx context.Context, userID string) ([]models.Feedback, error) {
	defer s.lock()()
	var out []models.Feedback
	for i := len(s.d.feedback) - 1; i >= 0; i-- {
		f := s.d.feedback[i]
		if f.UserID != nil && *f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Store) CreateRecyclingCenter(ctx context.Context, c *models.RecyclingCenter) error {
	defer s.lock()()
	s.d.centers = append(s.d.centers, *c)
	return nil
}

func (s *Store) ListRecyclingCenters(ctx context.Context) ([]models.RecyclingCenter, error) {
	defer s.lock()()
	out := append([]models.RecyclingCenter(nil), s.d.centers...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

package memory

import (
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStorage is a process-local Storage used for development and tests.
// Returned records are copies; callers must write changes back explicitly.
type MemStorage struct {
	mu sync.RWMutex

	users      map[int64]*domain.User
	launches   map[int64]*domain.Launch
	comments   map[int64]*domain.Comment
	slots      map[string]*domain.PlacementSlot
	placements map[int64]*domain.Placement
	userSeq    int64
	launchSeq  int64
	commentSeq int64
	placeSeq   int64
	now        func() time.Time
}

func New() *MemStorage {
	return &MemStorage{
		users:      make(map[int64]*domain.User),
		launches:   make(map[int64]*domain.Launch),
		comments:   make(map[int64]*domain.Comment),
		slots:      make(map[string]*domain.PlacementSlot),
		placements: make(map[int64]*domain.Placement),
		now:        time.Now,
	}
}

// SeedSlots replaces the slot catalog.
func (s *MemStorage) SeedSlots(slots []domain.PlacementSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots = make(map[string]*domain.PlacementSlot, len(slots))
	for i := range slots {
		slot := slots[i]
		if slot.ID == 0 {
			slot.ID = int16(i + 1)
		}
		s.slots[slot.Code] = &slot
	}
}

func (s *MemStorage) Ping(_ context.Context) error {
	return nil
}

// --- User Methods ---

func (s *MemStorage) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrUserExists
		}
	}

	s.userSeq++
	user.ID = s.userSeq
	user.IsActive = true
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemStorage) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok || !user.IsActive {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *MemStorage) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) && user.IsActive {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *MemStorage) UpdateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	user.UpdatedAt = s.now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// --- Launch Methods ---

func (s *MemStorage) CreateLaunch(_ context.Context, launch *domain.Launch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.launches {
		if existing.Slug == launch.Slug {
			return repository.ErrSlugExists
		}
	}

	s.launchSeq++
	launch.ID = s.launchSeq
	launch.IsActive = true
	launch.CreatedAt = s.now().Add(time.Duration(s.launchSeq) * time.Microsecond)
	launch.UpdatedAt = launch.CreatedAt
	s.launches[launch.ID] = cloneLaunch(launch)
	return nil
}

func (s *MemStorage) GetLaunch(_ context.Context, id int64) (*domain.Launch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	launch, ok := s.launches[id]
	if !ok || !launch.IsActive {
		return nil, repository.ErrLaunchNotFound
	}
	return cloneLaunch(launch), nil
}

func (s *MemStorage) GetLaunchBySlug(_ context.Context, slug string) (*domain.Launch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, launch := range s.launches {
		if launch.Slug == slug && launch.IsActive {
			return cloneLaunch(launch), nil
		}
	}
	return nil, repository.ErrLaunchNotFound
}

func (s *MemStorage) SlugExists(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, launch := range s.launches {
		if launch.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStorage) UpdateLaunch(_ context.Context, launch *domain.Launch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.launches[launch.ID]
	if !ok || !existing.IsActive {
		return repository.ErrLaunchNotFound
	}
	launch.UpdatedAt = s.now()
	s.launches[launch.ID] = cloneLaunch(launch)
	return nil
}

func (s *MemStorage) DeleteLaunch(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	launch, ok := s.launches[id]
	if !ok || !launch.IsActive {
		return repository.ErrLaunchNotFound
	}
	launch.IsActive = false
	return nil
}

func (s *MemStorage) QueryLaunches(_ context.Context, filter domain.LaunchFilter) ([]*domain.Launch, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []*domain.Launch
	for _, launch := range s.launches {
		if !launch.IsActive {
			continue
		}
		if filter.Category != "" && !launch.Categories.Contains(filter.Category) {
			continue
		}
		if filter.Tier != "" && launch.Tier != filter.Tier {
			continue
		}
		if filter.UserID != nil && !launch.IsOwnedBy(*filter.UserID) {
			continue
		}
		if search != "" && !matchesSearch(launch, search) {
			continue
		}
		matched = append(matched, launch)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	page := make([]*domain.Launch, 0, end-start)
	for _, launch := range matched[start:end] {
		page = append(page, cloneLaunch(launch))
	}
	return page, total, nil
}

func (s *MemStorage) ClaimLaunch(_ context.Context, id int64, userID int64, claimedAt time.Time) (*domain.Launch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	launch, ok := s.launches[id]
	if !ok || !launch.IsActive {
		return nil, repository.ErrLaunchNotFound
	}
	if launch.UserID != nil {
		return nil, repository.ErrAlreadyClaimed
	}

	owner := userID
	at := claimedAt
	launch.UserID = &owner
	launch.ClaimedAt = &at
	launch.UpdatedAt = claimedAt
	return cloneLaunch(launch), nil
}

// --- Comment Methods ---

func (s *MemStorage) CreateComment(_ context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commentSeq++
	comment.ID = s.commentSeq
	comment.CreatedAt = s.now().Add(time.Duration(s.commentSeq) * time.Microsecond)
	comment.UpdatedAt = comment.CreatedAt
	cp := *comment
	s.comments[comment.ID] = &cp
	return nil
}

func (s *MemStorage) GetComment(_ context.Context, id int64) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrCommentNotFound
	}
	cp := *comment
	return &cp, nil
}

func (s *MemStorage) ListComments(_ context.Context, launchID int64, limit, offset int) ([]*domain.Comment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Comment
	for _, comment := range s.comments {
		if comment.LaunchID == launchID {
			cp := *comment
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *MemStorage) DeleteComment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return repository.ErrCommentNotFound
	}
	delete(s.comments, id)
	return nil
}

// --- Placement Methods ---

func (s *MemStorage) ListSlots(_ context.Context) ([]*domain.PlacementSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]*domain.PlacementSlot, 0, len(s.slots))
	for _, slot := range s.slots {
		if slot.IsActive {
			cp := *slot
			slots = append(slots, &cp)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })
	return slots, nil
}

func (s *MemStorage) GetSlot(_ context.Context, code string) (*domain.PlacementSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[code]
	if !ok || !slot.IsActive {
		return nil, repository.ErrSlotNotFound
	}
	cp := *slot
	return &cp, nil
}

func (s *MemStorage) GetPlacement(_ context.Context, id int64) (*domain.Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.placements[id]
	if !ok {
		return nil, repository.ErrPlacementNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemStorage) GetPlacementBySession(_ context.Context, sessionID string) (*domain.Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.bySessionLocked(sessionID)
	if p == nil {
		return nil, repository.ErrPlacementNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemStorage) ListUserPlacements(_ context.Context, userID int64) ([]*domain.Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Placement
	for _, p := range s.placements {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemStorage) ListLivePlacements(_ context.Context, now time.Time) ([]*domain.Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Placement
	for _, p := range s.placements {
		if p.Status == domain.PlacementStatusActive && p.IsPaid() && p.Overlaps(now, now) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *MemStorage) FindSlotHolder(_ context.Context, code string, start, end time.Time) (*domain.Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if holder := s.holderLocked(code, start, end); holder != nil {
		cp := *holder
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStorage) ReservePlacement(_ context.Context, p *domain.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := p.BookingWindow()
	if s.holderLocked(p.CodeName, start, end) != nil {
		return repository.ErrSlotUnavailable
	}

	now := s.now()
	if existing, ok := s.placements[p.ID]; ok && p.ID != 0 &&
		existing.UserID == p.UserID && existing.CodeName == p.CodeName && existing.IsReusableDraft() {
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = now
		cp := *p
		s.placements[p.ID] = &cp
		return nil
	}

	s.placeSeq++
	p.ID = s.placeSeq
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.placements[p.ID] = &cp
	return nil
}

func (s *MemStorage) ModifyPlacement(_ context.Context, id int64, fn func(p *domain.Placement) error) (*domain.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.placements[id]
	if !ok {
		return nil, repository.ErrPlacementNotFound
	}

	draft := *stored
	if err := fn(&draft); err != nil {
		return nil, err
	}

	stored.Title = draft.Title
	stored.Tagline = draft.Tagline
	stored.LogoURL = draft.LogoURL
	stored.BackgroundURL = draft.BackgroundURL
	stored.WebsiteURL = draft.WebsiteURL
	stored.Status = draft.Status
	stored.UpdatedAt = s.now()

	cp := *stored
	return &cp, nil
}

func (s *MemStorage) ApplyPlacementPayment(_ context.Context, sessionID string, payment domain.PaymentStatus) (*domain.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.bySessionLocked(sessionID)
	if p == nil {
		return nil, repository.ErrPlacementNotFound
	}
	p.ApplyPayment(payment)
	p.UpdatedAt = s.now()
	cp := *p
	return &cp, nil
}

func (s *MemStorage) ExpirePlacements(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, p := range s.placements {
		if p.Status != domain.PlacementStatusExpired && p.EndDate.Before(now) {
			p.Status = domain.PlacementStatusExpired
			p.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// --- Helpers ---

func (s *MemStorage) bySessionLocked(sessionID string) *domain.Placement {
	for _, p := range s.placements {
		if p.PaymentIntentID == sessionID {
			return p
		}
	}
	return nil
}

func (s *MemStorage) holderLocked(code string, start, end time.Time) *domain.Placement {
	for _, p := range s.placements {
		if p.CodeName == code && p.HoldsSlot() && p.Overlaps(start, end) {
			return p
		}
	}
	return nil
}

func cloneLaunch(l *domain.Launch) *domain.Launch {
	cp := *l
	cp.Categories = append(domain.CategoryList(nil), l.Categories...)
	return &cp
}

func matchesSearch(l *domain.Launch, search string) bool {
	return strings.Contains(strings.ToLower(l.Name), search) ||
		strings.Contains(strings.ToLower(l.Tagline), search) ||
		strings.Contains(strings.ToLower(l.Description), search)
}

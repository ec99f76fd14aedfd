package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/match-engine/locker"
	"github.com/Dosada05/match-engine/models"
	"github.com/Dosada05/match-engine/repositories"
)

// memStore - общее in-memory хранилище для фейковых репозиториев.
// Мьютекс делает его пригодным для конкурентных тестов инициализации.
type memStore struct {
	mu sync.Mutex

	eventTeams    map[int]*models.EventTeam
	memberships   map[int]int // userID -> eventTeamID
	templates     map[int]*models.MatchTemplate
	configs       map[int]*models.EventMatchConfig // по eventID
	teamMatches   map[int]*models.TeamMatch
	playerMatches map[int]*models.PlayerMatch
	sets          map[int]map[int]*models.MatchSet // playerMatchID -> setNumber
	participants  map[int][]*models.PlayerMatchParticipant

	nextID int
}

func newMemStore() *memStore {
	return &memStore{
		eventTeams:    make(map[int]*models.EventTeam),
		memberships:   make(map[int]int),
		templates:     make(map[int]*models.MatchTemplate),
		configs:       make(map[int]*models.EventMatchConfig),
		teamMatches:   make(map[int]*models.TeamMatch),
		playerMatches: make(map[int]*models.PlayerMatch),
		sets:          make(map[int]map[int]*models.MatchSet),
		participants:  make(map[int][]*models.PlayerMatchParticipant),
		nextID:        1000,
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

// fakeTransactor не открывает транзакцию: фейковые репозитории игнорируют
// SQLExecutor и ходят напрямую в хранилище.
type fakeTransactor struct{}

func (fakeTransactor) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeEventTeamRepo struct{ store *memStore }

func (r *fakeEventTeamRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.EventTeam, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	team, ok := r.store.eventTeams[id]
	if !ok {
		return nil, repositories.ErrEventTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (r *fakeEventTeamRepo) FindMemberTeam(_ context.Context, _ repositories.SQLExecutor, userID, eventID int) (*models.EventTeam, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	teamID, ok := r.store.memberships[userID]
	if !ok {
		return nil, repositories.ErrMembershipNotFound
	}
	team, ok := r.store.eventTeams[teamID]
	if !ok || team.EventID != eventID {
		return nil, repositories.ErrMembershipNotFound
	}
	copied := *team
	return &copied, nil
}

type fakeTemplateRepo struct{ store *memStore }

func (r *fakeTemplateRepo) Create(_ context.Context, _ repositories.SQLExecutor, template *models.MatchTemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	template.ID = r.store.id()
	for i := range template.Items {
		template.Items[i].ID = r.store.id()
		template.Items[i].TemplateID = template.ID
	}
	copied := *template
	r.store.templates[template.ID] = &copied
	return nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.MatchTemplate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	template, ok := r.store.templates[id]
	if !ok {
		return nil, repositories.ErrTemplateNotFound
	}
	copied := *template
	copied.Items = append([]models.TemplateItem(nil), template.Items...)
	return &copied, nil
}

func (r *fakeTemplateRepo) UpdateName(_ context.Context, _ repositories.SQLExecutor, id int, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	template, ok := r.store.templates[id]
	if !ok {
		return repositories.ErrTemplateNotFound
	}
	template.Name = name
	return nil
}

func (r *fakeTemplateRepo) ReplaceItems(_ context.Context, _ repositories.SQLExecutor, templateID int, items []models.TemplateItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	template, ok := r.store.templates[templateID]
	if !ok {
		return repositories.ErrTemplateNotFound
	}
	template.Items = append([]models.TemplateItem(nil), items...)
	for i := range template.Items {
		template.Items[i].ID = r.store.id()
		template.Items[i].TemplateID = templateID
	}
	return nil
}

type fakeMatchConfigRepo struct{ store *memStore }

func (r *fakeMatchConfigRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, config *models.EventMatchConfig) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if config.ID == 0 {
		config.ID = r.store.id()
	}
	copied := *config
	r.store.configs[config.EventID] = &copied
	return nil
}

func (r *fakeMatchConfigRepo) GetByEvent(_ context.Context, _ repositories.SQLExecutor, eventID int) (*models.EventMatchConfig, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	config, ok := r.store.configs[eventID]
	if !ok {
		return nil, repositories.ErrMatchConfigNotFound
	}
	copied := *config
	return &copied, nil
}

type fakeTeamMatchRepo struct{ store *memStore }

func (r *fakeTeamMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.TeamMatch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.teamMatches {
		if existing.EventID == match.EventID && existing.Number == match.Number {
			return repositories.ErrTeamMatchNumberConflict
		}
	}
	match.ID = r.store.id()
	match.CreatedAt = time.Now()
	copied := *match
	copied.PlayerMatches = nil
	r.store.teamMatches[match.ID] = &copied
	return nil
}

func (r *fakeTeamMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.TeamMatch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	match, ok := r.store.teamMatches[id]
	if !ok {
		return nil, repositories.ErrTeamMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakeTeamMatchRepo) ExistsByEventAndNumber(_ context.Context, _ repositories.SQLExecutor, eventID, number int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, match := range r.store.teamMatches {
		if match.EventID == eventID && match.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTeamMatchRepo) ListByEvent(_ context.Context, _ repositories.SQLExecutor, eventID int) ([]*models.TeamMatch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.TeamMatch
	for _, match := range r.store.teamMatches {
		if match.EventID == eventID {
			copied := *match
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *fakeTeamMatchRepo) UpdateStatusWinner(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus, winner models.Winner) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	match, ok := r.store.teamMatches[id]
	if !ok {
		return repositories.ErrTeamMatchNotFound
	}
	match.Status = status
	match.Winner = winner
	return nil
}

type fakePlayerMatchRepo struct{ store *memStore }

func (r *fakePlayerMatchRepo) CreateBulk(_ context.Context, _ repositories.SQLExecutor, matches []*models.PlayerMatch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, match := range matches {
		match.ID = r.store.id()
		match.CreatedAt = time.Now()
		copied := *match
		r.store.playerMatches[match.ID] = &copied
	}
	return nil
}

func (r *fakePlayerMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.PlayerMatch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	match, ok := r.store.playerMatches[id]
	if !ok {
		return nil, repositories.ErrPlayerMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakePlayerMatchRepo) ListByTeamMatch(_ context.Context, _ repositories.SQLExecutor, teamMatchID int) ([]*models.PlayerMatch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.PlayerMatch
	for _, match := range r.store.playerMatches {
		if match.TeamMatchID == teamMatchID {
			copied := *match
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *fakePlayerMatchRepo) UpdateStatusWinner(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus, winner models.Winner) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	match, ok := r.store.playerMatches[id]
	if !ok {
		return repositories.ErrPlayerMatchNotFound
	}
	match.Status = status
	match.Winner = winner
	return nil
}

type fakeMatchSetRepo struct{ store *memStore }

func (r *fakeMatchSetRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, set *models.MatchSet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byNumber, ok := r.store.sets[set.PlayerMatchID]
	if !ok {
		byNumber = make(map[int]*models.MatchSet)
		r.store.sets[set.PlayerMatchID] = byNumber
	}
	if existing, ok := byNumber[set.SetNumber]; ok {
		set.ID = existing.ID
	} else {
		set.ID = r.store.id()
	}
	copied := *set
	byNumber[set.SetNumber] = &copied
	return nil
}

func (r *fakeMatchSetRepo) ListByPlayerMatch(_ context.Context, _ repositories.SQLExecutor, playerMatchID int) ([]models.MatchSet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.MatchSet
	for _, set := range r.store.sets[playerMatchID] {
		out = append(out, *set)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out, nil
}

type fakeParticipantRepo struct{ store *memStore }

func (r *fakeParticipantRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, participant *models.PlayerMatchParticipant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing := r.store.participants[participant.PlayerMatchID]
	for i, p := range existing {
		if p.PlayerID != nil && participant.PlayerID != nil &&
			*p.PlayerID == *participant.PlayerID &&
			(p.Side != participant.Side || p.Position != participant.Position) {
			return repositories.ErrParticipantPlayerConflict
		}
		if p.Side == participant.Side && p.Position == participant.Position {
			participant.ID = p.ID
			copied := *participant
			existing[i] = &copied
			return nil
		}
	}
	participant.ID = r.store.id()
	copied := *participant
	r.store.participants[participant.PlayerMatchID] = append(existing, &copied)
	return nil
}

func (r *fakeParticipantRepo) ListByPlayerMatch(_ context.Context, _ repositories.SQLExecutor, playerMatchID int) ([]models.PlayerMatchParticipant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.PlayerMatchParticipant
	for _, p := range r.store.participants[playerMatchID] {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Side != out[j].Side {
			return out[i].Side < out[j].Side
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

// fakeLocker даёт настоящее взаимное исключение в пределах процесса и
// считает отказы в выдаче аренды.
type fakeLocker struct {
	mu      sync.Mutex
	held    map[string]bool
	denied  int
	granted int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) Available() bool { return true }

func (l *fakeLocker) Acquire(_ context.Context, key string, _, _ time.Duration) (locker.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		l.denied++
		return nil, locker.ErrNotAcquired
	}
	l.held[key] = true
	l.granted++
	return &fakeLock{locker: l, key: key}, nil
}

type fakeLock struct {
	locker *fakeLocker
	key    string
}

func (l *fakeLock) Unlock(_ context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	delete(l.locker.held, l.key)
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/match-engine/locker"
	"github.com/Dosada05/match-engine/models"
	"github.com/Dosada05/match-engine/repositories"
	"github.com/Dosada05/match-engine/rules"
	"golang.org/x/sync/errgroup"
)

// AssignPlayerInput - назначение участника на позицию встречи. Для
// зарегистрированного игрока сторона выводится из его команды события,
// переданное значение Side игнорируется. Для гостя Side обязательна.
type AssignPlayerInput struct {
	PlayerMatchID int         `json:"player_match_id"`
	PlayerID      *int        `json:"player_id,omitempty"`
	GuestName     string      `json:"guest_name,omitempty"`
	Side          models.Side `json:"side,omitempty"`
	Position      int         `json:"position"`
}

// ParticipantInput и PlayerMatchLineup описывают составы для создания
// командной встречи одним вызовом.
type ParticipantInput struct {
	PlayerID  *int        `json:"player_id,omitempty"`
	GuestName string      `json:"guest_name,omitempty"`
	Side      models.Side `json:"side,omitempty"`
	Position  int         `json:"position"`
}

type PlayerMatchLineup struct {
	Number       int                `json:"number"`
	Participants []ParticipantInput `json:"participants"`
}

// PlayerMatchOverview и TeamMatchOverview - read-модель для отображения
// встречи без мутаций.
type PlayerMatchOverview struct {
	Match        *models.PlayerMatch             `json:"match"`
	Participants []models.PlayerMatchParticipant `json:"participants"`
	Result       rules.MatchResult               `json:"result"`
}

type TeamMatchOverview struct {
	Match      *models.TeamMatch     `json:"match"`
	RuleConfig models.RuleConfig     `json:"rule_config"`
	Result     rules.MatchResult     `json:"result"`
	Players    []PlayerMatchOverview `json:"player_matches"`
}

type MatchService interface {
	// InitializeTeamMatch создаёт командную встречу и пустые одиночные
	// встречи по шаблону события под арендой на (event, match_number).
	InitializeTeamMatch(ctx context.Context, teamAID, teamBID, matchNumber int) (*models.TeamMatch, error)
	// CreateTeamMatchFull - инициализация плюс назначение составов одним вызовом.
	CreateTeamMatchFull(ctx context.Context, teamAID, teamBID, matchNumber int, lineups []PlayerMatchLineup) (*models.TeamMatch, error)
	// RecordSetScore записывает счёт сета и каскадно пересчитывает статусы:
	// сначала одиночную встречу, затем родительскую командную, в одной транзакции.
	RecordSetScore(ctx context.Context, playerMatchID, setNumber, scoreA, scoreB int) error
	AssignPlayerToMatch(ctx context.Context, input AssignPlayerInput) (*models.PlayerMatchParticipant, error)
	EvaluatePlayerMatch(ctx context.Context, playerMatchID int) (rules.MatchResult, error)
	EvaluateTeamMatch(ctx context.Context, teamMatchID int) (rules.MatchResult, error)
	GetTeamMatchOverview(ctx context.Context, teamMatchID int) (*TeamMatchOverview, error)
	ListEventMatches(ctx context.Context, eventID int) ([]*models.TeamMatch, error)
}

type matchService struct {
	tx              repositories.Transactor
	eventTeamRepo   repositories.EventTeamRepository
	templateRepo    repositories.TemplateRepository
	configRepo      repositories.MatchConfigRepository
	teamMatchRepo   repositories.TeamMatchRepository
	playerMatchRepo repositories.PlayerMatchRepository
	setRepo         repositories.MatchSetRepository
	participantRepo repositories.ParticipantRepository
	registry        *rules.Registry
	locker          locker.Locker
	lockWait        time.Duration
	lockTTL         time.Duration
	logger          *slog.Logger
}

func NewMatchService(
	tx repositories.Transactor,
	eventTeamRepo repositories.EventTeamRepository,
	templateRepo repositories.TemplateRepository,
	configRepo repositories.MatchConfigRepository,
	teamMatchRepo repositories.TeamMatchRepository,
	playerMatchRepo repositories.PlayerMatchRepository,
	setRepo repositories.MatchSetRepository,
	participantRepo repositories.ParticipantRepository,
	registry *rules.Registry,
	lk locker.Locker,
	lockWait, lockTTL time.Duration,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:              tx,
		eventTeamRepo:   eventTeamRepo,
		templateRepo:    templateRepo,
		configRepo:      configRepo,
		teamMatchRepo:   teamMatchRepo,
		playerMatchRepo: playerMatchRepo,
		setRepo:         setRepo,
		participantRepo: participantRepo,
		registry:        registry,
		locker:          lk,
		lockWait:        lockWait,
		lockTTL:         lockTTL,
		logger:          logger,
	}
}

func lockKey(eventID, matchNumber int) string {
	return fmt.Sprintf("lock:team_match_create:%d:%d", eventID, matchNumber)
}

func (s *matchService) InitializeTeamMatch(ctx context.Context, teamAID, teamBID, matchNumber int) (*models.TeamMatch, error) {
	if teamAID == teamBID {
		return nil, ErrSameTeam
	}

	teamA, err := s.getEventTeam(ctx, teamAID)
	if err != nil {
		return nil, err
	}
	teamB, err := s.getEventTeam(ctx, teamBID)
	if err != nil {
		return nil, err
	}
	if teamA.EventID != teamB.EventID {
		return nil, ErrTeamsNotInSameEvent
	}
	eventID := teamA.EventID

	// На этапе инициализации отсутствие конфигурации - ошибка настройки,
	// значения по умолчанию здесь не подставляются.
	config, err := s.configRepo.GetByEvent(ctx, nil, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchConfigNotFound) {
			return nil, ErrNoMatchConfiguration
		}
		return nil, fmt.Errorf("failed to load match config for event %d: %w", eventID, err)
	}

	template, err := s.templateRepo.GetByID(ctx, nil, config.TemplateID)
	if err != nil {
		if errors.Is(err, repositories.ErrTemplateNotFound) {
			return nil, ErrNoMatchConfiguration
		}
		return nil, fmt.Errorf("failed to load template %d: %w", config.TemplateID, err)
	}

	if !s.locker.Available() {
		// Деградированный путь без аренды: между проверкой и вставкой есть
		// окно гонки, последний рубеж - уникальный индекс (event, number).
		s.logger.Warn("lock backend unavailable, creating team match without lease",
			slog.Int("event_id", eventID), slog.Int("match_number", matchNumber))
		return s.createTeamMatch(ctx, eventID, teamAID, teamBID, matchNumber, template.Items)
	}

	lock, err := s.locker.Acquire(ctx, lockKey(eventID, matchNumber), s.lockWait, s.lockTTL)
	if err != nil {
		if errors.Is(err, locker.ErrNotAcquired) {
			return nil, ErrSystemBusy
		}
		return nil, fmt.Errorf("failed to acquire creation lock: %w", err)
	}
	defer func() {
		if unlockErr := lock.Unlock(ctx); unlockErr != nil {
			// TTL аренды снимет её сам, достаточно залогировать.
			s.logger.Error("failed to release creation lock", slog.Any("error", unlockErr))
		}
	}()

	return s.createTeamMatch(ctx, eventID, teamAID, teamBID, matchNumber, template.Items)
}

// createTeamMatch выполняет проверку номера и создание матча с дочерними
// встречами в одной транзакции. Проверка повторяется здесь, уже под арендой:
// exists-then-insert сам по себе не атомарен относительно других инициализаций.
func (s *matchService) createTeamMatch(ctx context.Context, eventID, teamAID, teamBID, matchNumber int, items []models.TemplateItem) (*models.TeamMatch, error) {
	teamMatch := &models.TeamMatch{
		EventID: eventID,
		TeamAID: teamAID,
		TeamBID: teamBID,
		Number:  matchNumber,
		Status:  models.StatusScheduled,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		exists, err := s.teamMatchRepo.ExistsByEventAndNumber(ctx, exec, eventID, matchNumber)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateMatchNumber
		}

		if err := s.teamMatchRepo.Create(ctx, exec, teamMatch); err != nil {
			return err
		}

		playerMatches := make([]*models.PlayerMatch, 0, len(items))
		for _, item := range items {
			playerMatches = append(playerMatches, &models.PlayerMatch{
				TeamMatchID: teamMatch.ID,
				Number:      item.Number,
				Format:      item.Format,
				Requirement: item.Requirement,
				Status:      models.StatusScheduled,
			})
		}
		if err := s.playerMatchRepo.CreateBulk(ctx, exec, playerMatches); err != nil {
			return err
		}

		teamMatch.PlayerMatches = make([]models.PlayerMatch, 0, len(playerMatches))
		for _, pm := range playerMatches {
			teamMatch.PlayerMatches = append(teamMatch.PlayerMatches, *pm)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTeamMatchNumberConflict) {
			return nil, ErrDuplicateMatchNumber
		}
		if errors.Is(err, ErrDuplicateMatchNumber) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create team match %d for event %d: %w", matchNumber, eventID, err)
	}
	return teamMatch, nil
}

func (s *matchService) CreateTeamMatchFull(ctx context.Context, teamAID, teamBID, matchNumber int, lineups []PlayerMatchLineup) (*models.TeamMatch, error) {
	teamMatch, err := s.InitializeTeamMatch(ctx, teamAID, teamBID, matchNumber)
	if err != nil {
		return nil, err
	}

	byNumber := make(map[int]int, len(teamMatch.PlayerMatches))
	for _, pm := range teamMatch.PlayerMatches {
		byNumber[pm.Number] = pm.ID
	}

	for _, lineup := range lineups {
		playerMatchID, ok := byNumber[lineup.Number]
		if !ok {
			continue
		}
		for _, p := range lineup.Participants {
			_, err := s.AssignPlayerToMatch(ctx, AssignPlayerInput{
				PlayerMatchID: playerMatchID,
				PlayerID:      p.PlayerID,
				GuestName:     p.GuestName,
				Side:          p.Side,
				Position:      p.Position,
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return teamMatch, nil
}

func (s *matchService) RecordSetScore(ctx context.Context, playerMatchID, setNumber, scoreA, scoreB int) error {
	if setNumber < 1 {
		return ErrInvalidSetNumber
	}
	if scoreA < 0 || scoreB < 0 {
		return ErrInvalidSetScore
	}

	playerMatch, err := s.getPlayerMatch(ctx, playerMatchID)
	if err != nil {
		return err
	}
	teamMatch, err := s.getTeamMatch(ctx, playerMatch.TeamMatchID)
	if err != nil {
		return err
	}

	cfg := s.ruleConfigForEvent(ctx, teamMatch.EventID)

	// Каскад строго лист -> родитель: пересчёт командной встречи должен
	// видеть уже записанное состояние одиночной.
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		set := &models.MatchSet{
			PlayerMatchID: playerMatchID,
			SetNumber:     setNumber,
			ScoreA:        scoreA,
			ScoreB:        scoreB,
		}
		if err := s.setRepo.Upsert(ctx, exec, set); err != nil {
			return err
		}

		if err := s.recomputePlayerMatch(ctx, exec, playerMatch, cfg); err != nil {
			return err
		}
		return s.recomputeTeamMatch(ctx, exec, teamMatch, cfg)
	})
	if err != nil {
		return fmt.Errorf("failed to record set %d for player match %d: %w", setNumber, playerMatchID, err)
	}
	return nil
}

func (s *matchService) recomputePlayerMatch(ctx context.Context, exec repositories.SQLExecutor, playerMatch *models.PlayerMatch, cfg models.RuleConfig) error {
	sets, err := s.setRepo.ListByPlayerMatch(ctx, exec, playerMatch.ID)
	if err != nil {
		return err
	}

	strategy, err := s.registry.Strategy(rules.KindPlayerMatch, cfg)
	if err != nil {
		return err
	}
	result := strategy.Evaluate(rules.Snapshot{Kind: rules.KindPlayerMatch, Sets: sets})

	newStatus, newWinner := derivedState(result)
	if playerMatch.Status == newStatus && playerMatch.Winner == newWinner {
		return nil
	}
	if err := s.playerMatchRepo.UpdateStatusWinner(ctx, exec, playerMatch.ID, newStatus, newWinner); err != nil {
		return err
	}
	playerMatch.Status = newStatus
	playerMatch.Winner = newWinner
	return nil
}

func (s *matchService) recomputeTeamMatch(ctx context.Context, exec repositories.SQLExecutor, teamMatch *models.TeamMatch, cfg models.RuleConfig) error {
	snapshot, _, err := s.teamSnapshot(ctx, exec, teamMatch.ID)
	if err != nil {
		return err
	}

	strategy, err := s.registry.Strategy(rules.KindTeamMatch, cfg)
	if err != nil {
		return err
	}
	result := strategy.Evaluate(snapshot)

	newStatus, newWinner := derivedState(result)
	if teamMatch.Status == newStatus && teamMatch.Winner == newWinner {
		return nil
	}
	if err := s.teamMatchRepo.UpdateStatusWinner(ctx, exec, teamMatch.ID, newStatus, newWinner); err != nil {
		return err
	}
	teamMatch.Status = newStatus
	teamMatch.Winner = newWinner
	return nil
}

func (s *matchService) AssignPlayerToMatch(ctx context.Context, input AssignPlayerInput) (*models.PlayerMatchParticipant, error) {
	if input.Position == 0 {
		input.Position = 1
	}
	if input.Position < 1 || input.Position > 2 {
		return nil, ErrInvalidPosition
	}

	playerMatch, err := s.getPlayerMatch(ctx, input.PlayerMatchID)
	if err != nil {
		return nil, err
	}
	teamMatch, err := s.getTeamMatch(ctx, playerMatch.TeamMatchID)
	if err != nil {
		return nil, err
	}

	side := input.Side
	if input.PlayerID != nil {
		// Сторона выводится из команды игрока, а не из входных данных.
		memberTeam, err := s.eventTeamRepo.FindMemberTeam(ctx, nil, *input.PlayerID, teamMatch.EventID)
		if err != nil {
			if errors.Is(err, repositories.ErrMembershipNotFound) {
				return nil, ErrPlayerNotInEvent
			}
			return nil, fmt.Errorf("failed to find event team of player %d: %w", *input.PlayerID, err)
		}
		switch memberTeam.ID {
		case teamMatch.TeamAID:
			side = models.SideA
		case teamMatch.TeamBID:
			side = models.SideB
		default:
			return nil, ErrPlayerNotInCompetingTeams
		}
	} else {
		if input.GuestName == "" {
			return nil, ErrGuestNameRequired
		}
		if side != models.SideA && side != models.SideB {
			return nil, ErrGuestSideRequired
		}
	}

	participant := &models.PlayerMatchParticipant{
		PlayerMatchID: input.PlayerMatchID,
		PlayerID:      input.PlayerID,
		GuestName:     input.GuestName,
		Side:          side,
		Position:      input.Position,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.participantRepo.Upsert(ctx, exec, participant)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantPlayerConflict) {
			return nil, ErrPlayerSlotConflict
		}
		return nil, fmt.Errorf("failed to assign participant to player match %d: %w", input.PlayerMatchID, err)
	}
	return participant, nil
}

func (s *matchService) EvaluatePlayerMatch(ctx context.Context, playerMatchID int) (rules.MatchResult, error) {
	playerMatch, err := s.getPlayerMatch(ctx, playerMatchID)
	if err != nil {
		return rules.MatchResult{}, err
	}
	teamMatch, err := s.getTeamMatch(ctx, playerMatch.TeamMatchID)
	if err != nil {
		return rules.MatchResult{}, err
	}

	cfg := s.ruleConfigForEvent(ctx, teamMatch.EventID)

	sets, err := s.setRepo.ListByPlayerMatch(ctx, nil, playerMatchID)
	if err != nil {
		return rules.MatchResult{}, err
	}

	strategy, err := s.registry.Strategy(rules.KindPlayerMatch, cfg)
	if err != nil {
		return rules.MatchResult{}, err
	}
	return strategy.Evaluate(rules.Snapshot{Kind: rules.KindPlayerMatch, Sets: sets}), nil
}

func (s *matchService) EvaluateTeamMatch(ctx context.Context, teamMatchID int) (rules.MatchResult, error) {
	teamMatch, err := s.getTeamMatch(ctx, teamMatchID)
	if err != nil {
		return rules.MatchResult{}, err
	}

	cfg := s.ruleConfigForEvent(ctx, teamMatch.EventID)

	snapshot, _, err := s.teamSnapshot(ctx, nil, teamMatchID)
	if err != nil {
		return rules.MatchResult{}, err
	}

	strategy, err := s.registry.Strategy(rules.KindTeamMatch, cfg)
	if err != nil {
		return rules.MatchResult{}, err
	}
	return strategy.Evaluate(snapshot), nil
}

func (s *matchService) GetTeamMatchOverview(ctx context.Context, teamMatchID int) (*TeamMatchOverview, error) {
	teamMatch, err := s.getTeamMatch(ctx, teamMatchID)
	if err != nil {
		return nil, err
	}

	var (
		cfg      models.RuleConfig
		children []*models.PlayerMatch
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg = s.ruleConfigForEvent(gCtx, teamMatch.EventID)
		return nil
	})
	g.Go(func() error {
		var listErr error
		children, listErr = s.playerMatchRepo.ListByTeamMatch(gCtx, nil, teamMatchID)
		return listErr
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load team match %d overview: %w", teamMatchID, err)
	}

	leaf, err := s.registry.Strategy(rules.KindPlayerMatch, cfg)
	if err != nil {
		return nil, err
	}

	overviews := make([]PlayerMatchOverview, len(children))
	childSnapshots := make([]rules.Snapshot, len(children))

	pg, pgCtx := errgroup.WithContext(ctx)
	for i, child := range children {
		i, child := i, child
		pg.Go(func() error {
			sets, setsErr := s.setRepo.ListByPlayerMatch(pgCtx, nil, child.ID)
			if setsErr != nil {
				return setsErr
			}
			participants, partErr := s.participantRepo.ListByPlayerMatch(pgCtx, nil, child.ID)
			if partErr != nil {
				return partErr
			}

			snap := rules.Snapshot{Kind: rules.KindPlayerMatch, Sets: sets}
			child.Sets = sets
			child.Participants = participants
			childSnapshots[i] = snap
			overviews[i] = PlayerMatchOverview{
				Match:        child,
				Participants: participants,
				Result:       leaf.Evaluate(snap),
			}
			return nil
		})
	}
	if err := pg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load player matches of team match %d: %w", teamMatchID, err)
	}

	composite, err := s.registry.Strategy(rules.KindTeamMatch, cfg)
	if err != nil {
		return nil, err
	}

	return &TeamMatchOverview{
		Match:      teamMatch,
		RuleConfig: cfg,
		Result:     composite.Evaluate(rules.Snapshot{Kind: rules.KindTeamMatch, Children: childSnapshots}),
		Players:    overviews,
	}, nil
}

func (s *matchService) ListEventMatches(ctx context.Context, eventID int) ([]*models.TeamMatch, error) {
	matches, err := s.teamMatchRepo.ListByEvent(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team matches for event %d: %w", eventID, err)
	}
	return matches, nil
}

// ruleConfigForEvent возвращает правила события, либо значения по умолчанию,
// если событие ещё не настроено: на этапе записи счёта это не ошибка.
func (s *matchService) ruleConfigForEvent(ctx context.Context, eventID int) models.RuleConfig {
	config, err := s.configRepo.GetByEvent(ctx, nil, eventID)
	if err != nil {
		if !errors.Is(err, repositories.ErrMatchConfigNotFound) {
			s.logger.Error("failed to load rule config, falling back to defaults",
				slog.Int("event_id", eventID), slog.Any("error", err))
		}
		return models.DefaultRuleConfig()
	}
	return config.RuleConfig
}

// teamSnapshot собирает снимок командной встречи: по снимку на каждую
// запланированную дочернюю встречу, в порядке номеров.
func (s *matchService) teamSnapshot(ctx context.Context, exec repositories.SQLExecutor, teamMatchID int) (rules.Snapshot, []*models.PlayerMatch, error) {
	children, err := s.playerMatchRepo.ListByTeamMatch(ctx, exec, teamMatchID)
	if err != nil {
		return rules.Snapshot{}, nil, err
	}

	snapshot := rules.Snapshot{Kind: rules.KindTeamMatch, Children: make([]rules.Snapshot, 0, len(children))}
	for _, child := range children {
		sets, err := s.setRepo.ListByPlayerMatch(ctx, exec, child.ID)
		if err != nil {
			return rules.Snapshot{}, nil, err
		}
		snapshot.Children = append(snapshot.Children, rules.Snapshot{Kind: rules.KindPlayerMatch, Sets: sets})
	}
	return snapshot, children, nil
}

func derivedState(result rules.MatchResult) (models.MatchStatus, models.Winner) {
	if result.IsCompleted {
		return models.StatusCompleted, result.Winner
	}
	return models.StatusInProgress, models.WinnerNone
}

func (s *matchService) getEventTeam(ctx context.Context, id int) (*models.EventTeam, error) {
	team, err := s.eventTeamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventTeamNotFound) {
			return nil, ErrEventTeamNotFound
		}
		return nil, fmt.Errorf("failed to load event team %d: %w", id, err)
	}
	return team, nil
}

func (s *matchService) getPlayerMatch(ctx context.Context, id int) (*models.PlayerMatch, error) {
	match, err := s.playerMatchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerMatchNotFound) {
			return nil, ErrPlayerMatchNotFound
		}
		return nil, fmt.Errorf("failed to load player match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) getTeamMatch(ctx context.Context, id int) (*models.TeamMatch, error) {
	match, err := s.teamMatchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamMatchNotFound) {
			return nil, ErrTeamMatchNotFound
		}
		return nil, fmt.Errorf("failed to load team match %d: %w", id, err)
	}
	return match, nil
}

package suggestions

import (
	"context"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trenny-dev/suggestbot/src/types"
)

const (
	shortIDLen       = 6
	createIDAttempts = 5
)

// Repository owns the suggestions and votes tables. All mutations that touch
// one suggestion's tally or status funnel through a per-id critical section,
// so concurrent voters on the same suggestion serialize while different
// suggestions proceed in parallel.
type Repository struct {
	db    *gorm.DB
	locks keyedMutex
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new suggestion, generating a fresh short id. Collisions
// are retried with a new id.
func (r *Repository) Create(ctx context.Context, s *types.Suggestion) (string, error) {
	for attempt := 0; attempt < createIDAttempts; attempt++ {
		s.ID = newShortID()
		err := r.db.WithContext(ctx).Create(s).Error
		if err == nil {
			return s.ID, nil
		}
		if isDuplicateKey(err) {
			continue
		}
		return "", storageErr("create suggestion", err)
	}
	return "", storageErr("create suggestion", errors.New("could not allocate a unique id"))
}

func (r *Repository) GetByID(ctx context.Context, id string) (types.Suggestion, error) {
	var s types.Suggestion
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Suggestion{}, ErrNotFound
	}
	if err != nil {
		return types.Suggestion{}, storageErr("load suggestion", err)
	}
	return s, nil
}

// ListByUser returns the author's suggestions in a guild, newest first.
func (r *Repository) ListByUser(ctx context.Context, guildID, userID string) ([]types.Suggestion, error) {
	var out []types.Suggestion
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND author_user_id = ?", guildID, userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, storageErr("list suggestions", err)
	}
	return out, nil
}

// LastByUser returns the author's most recent suggestion, for cooldown
// checks. ErrNotFound means the author has never submitted.
func (r *Repository) LastByUser(ctx context.Context, guildID, userID string) (types.Suggestion, error) {
	var s types.Suggestion
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND author_user_id = ?", guildID, userID).
		Order("created_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Suggestion{}, ErrNotFound
	}
	if err != nil {
		return types.Suggestion{}, storageErr("load last suggestion", err)
	}
	return s, nil
}

// CountSince counts the author's submissions at or after since, for the
// rolling daily limit.
func (r *Repository) CountSince(ctx context.Context, guildID, userID string, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&types.Suggestion{}).
		Where("guild_id = ? AND author_user_id = ? AND created_at >= ?", guildID, userID, since).
		Count(&n).Error
	if err != nil {
		return 0, storageErr("count suggestions", err)
	}
	return n, nil
}

// UpdateStatus atomically moves a suggestion to status, stamping the audit
// fields. It returns the updated record and the status it replaced.
// Archived suggestions refuse further transitions.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status types.Status, reason, actorID string, at time.Time) (types.Suggestion, types.Status, error) {
	if !status.Valid() {
		return types.Suggestion{}, "", ErrInvalidStatus
	}

	unlock := r.locks.lock(id)
	defer unlock()

	var s types.Suggestion
	var old types.Status
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&s, "id = ?", id).Error; err != nil {
			return err
		}
		old = s.Status
		if old.Terminal() {
			return ErrArchived
		}
		s.Status = status
		s.LastUpdateBy = actorID
		s.LastUpdateReason = reason
		s.LastUpdateAt = at
		return tx.Save(&s).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Suggestion{}, "", ErrNotFound
	}
	if errors.Is(err, ErrArchived) {
		return types.Suggestion{}, "", ErrArchived
	}
	if err != nil {
		return types.Suggestion{}, "", storageErr("update status", err)
	}
	return s, old, nil
}

// SetMessageRef records the rendered post's locator once the gateway has
// published it. A completion callback, not a new mutation of content.
func (r *Repository) SetMessageRef(ctx context.Context, id, channelID, messageID string) error {
	res := r.db.WithContext(ctx).Model(&types.Suggestion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"channel_id": channelID, "message_id": messageID})
	if res.Error != nil {
		return storageErr("set message ref", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInactive returns a guild's non-terminal suggestions untouched since
// cutoff, for the auto-archiver.
func (r *Repository) ListInactive(ctx context.Context, guildID string, cutoff time.Time) ([]types.Suggestion, error) {
	var out []types.Suggestion
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND status <> ? AND last_update_at < ?", guildID, types.StatusArchived, cutoff).
		Find(&out).Error
	if err != nil {
		return nil, storageErr("list inactive suggestions", err)
	}
	return out, nil
}

// VotesFor returns the live vote rows for a suggestion.
func (r *Repository) VotesFor(ctx context.Context, id string) ([]types.SuggestionVote, error) {
	var out []types.SuggestionVote
	err := r.db.WithContext(ctx).Where("suggestion_id = ?", id).Find(&out).Error
	if err != nil {
		return nil, storageErr("list votes", err)
	}
	return out, nil
}

// CastVote applies the toggle state machine for (suggestion, voter) and
// recomputes the materialized tally in the same transaction:
// no row inserts, a repeat of the same kind retracts, a different kind
// switches in place. Returns the fresh tally.
func (r *Repository) CastVote(ctx context.Context, id, voterID string, kind types.VoteKind) (types.VoteTally, error) {
	if !kind.Valid() {
		return types.VoteTally{}, ErrInvalidVote
	}

	unlock := r.locks.lock(id)
	defer unlock()

	var tally types.VoteTally
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s types.Suggestion
		if err := tx.First(&s, "id = ?", id).Error; err != nil {
			return err
		}
		if s.Status.Terminal() {
			return ErrArchived
		}

		now := time.Now().UTC()
		var existing types.SuggestionVote
		err := tx.Where("suggestion_id = ? AND voter_user_id = ?", id, voterID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := types.SuggestionVote{SuggestionID: id, VoterUserID: voterID, Kind: kind, CastAt: now}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case existing.Kind == kind:
			// Second click retracts.
			if err := tx.Where("suggestion_id = ? AND voter_user_id = ?", id, voterID).
				Delete(&types.SuggestionVote{}).Error; err != nil {
				return err
			}
		default:
			// Switching stance, not adding a second vote.
			if err := tx.Model(&types.SuggestionVote{}).
				Where("suggestion_id = ? AND voter_user_id = ?", id, voterID).
				Updates(map[string]interface{}{"kind": kind, "cast_at": now}).Error; err != nil {
				return err
			}
		}

		var err2 error
		tally, err2 = recomputeTally(tx, id)
		if err2 != nil {
			return err2
		}

		return tx.Model(&types.Suggestion{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"votes_up":       tally.Up,
				"votes_neutral":  tally.Neutral,
				"votes_down":     tally.Down,
				"last_update_at": now,
			}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.VoteTally{}, ErrNotFound
	}
	if errors.Is(err, ErrArchived) {
		return types.VoteTally{}, ErrArchived
	}
	if err != nil {
		return types.VoteTally{}, storageErr("cast vote", err)
	}
	return tally, nil
}

func recomputeTally(tx *gorm.DB, id string) (types.VoteTally, error) {
	type row struct {
		Kind  types.VoteKind
		Count int
	}
	var rows []row
	err := tx.Model(&types.SuggestionVote{}).
		Select("kind, count(*) as count").
		Where("suggestion_id = ?", id).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return types.VoteTally{}, err
	}

	var t types.VoteTally
	for _, r := range rows {
		switch r.Kind {
		case types.VoteUp:
			t.Up = r.Count
		case types.VoteNeutral:
			t.Neutral = r.Count
		case types.VoteDown:
			t.Down = r.Count
		}
	}
	return t, nil
}

// newShortID derives a 6-char uppercase base-36 token from fresh UUID
// entropy.
func newShortID() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8])

	var max uint64 = 1
	for i := 0; i < shortIDLen; i++ {
		max *= 36
	}
	id := strings.ToUpper(strconv.FormatUint(n%max, 36))
	if pad := shortIDLen - len(id); pad > 0 {
		id = strings.Repeat("0", pad) + id
	}
	return id
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// keyedMutex hands out one mutex per suggestion id, reference counted so the
// map does not grow without bound.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refLock)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &refLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

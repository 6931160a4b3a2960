package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/algoritmia-up/portal/internal/adapters/codeforces"
	"github.com/algoritmia-up/portal/internal/adapters/remote"
	"github.com/algoritmia-up/portal/internal/domain/listing"
	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/internal/domain/rank"
	"github.com/algoritmia-up/portal/internal/domain/tier"
	"github.com/algoritmia-up/portal/pkg/logger"
	"github.com/algoritmia-up/portal/pkg/metrics"
)

// unknownCountry is shown for members without a two-letter country code.
const unknownCountry = "XX"

// LeaderboardRow is one ranked member.
type LeaderboardRow struct {
	Rank          int          `json:"rank"`
	Member        model.Member `json:"member"`
	Tier          tier.Band    `json:"tier"`
	IsCurrentUser bool         `json:"isCurrentUser"`
}

// Leaderboard is the leaderboard as of its last sync.
type Leaderboard struct {
	Rows       []LeaderboardRow `json:"items"`
	LastSynced *time.Time       `json:"lastSynced"`
	Error      string           `json:"error,omitempty"`
}

// SyncLeaderboard rebuilds the leaderboard from the member list and
// Codeforces. Concurrent syncs share one run. On failure the leaderboard is
// emptied and the error returned.
func (s *Service) SyncLeaderboard(ctx context.Context, creds remote.Credentials) (int, error) {
	v, err, _ := s.syncGroup.Do("sync", func() (any, error) {
		return s.syncLeaderboard(context.WithoutCancel(ctx), creds)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (s *Service) syncLeaderboard(ctx context.Context, creds remote.Credentials) (int, error) {
	start := time.Now()
	members, err := s.buildMembers(ctx, creds)
	at := s.clock.Now()
	metrics.RecordLeaderboardSync(err, time.Since(start), len(members), at)
	if err != nil {
		s.board.Fail(err)
		return 0, err
	}

	s.board.Publish(rank.By(members, func(m model.Member) int { return m.Rating }), at)
	s.logger.Info(ctx, "leaderboard synced",
		logger.Int("members", len(members)),
		logger.Duration("elapsed", time.Since(start)))
	return len(members), nil
}

func (s *Service) buildMembers(ctx context.Context, creds remote.Credentials) ([]model.Member, error) {
	users, err := s.remote.ListUsers(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	handles := make([]string, 0, len(users))
	for _, u := range users {
		if u.CodeforcesHandle != "" {
			handles = append(handles, u.CodeforcesHandle)
		}
	}
	if len(handles) == 0 {
		return []model.Member{}, nil
	}

	records, err := s.ratings.UserInfo(ctx, handles)
	if err != nil {
		return nil, fmt.Errorf("codeforces user.info: %w", err)
	}
	return joinMembers(users, records), nil
}

// joinMembers matches users to Codeforces records by case-insensitive
// handle. Users without a handle or a record are left out.
func joinMembers(users []remote.User, records []codeforces.User) []model.Member {
	byHandle := make(map[string]codeforces.User, len(records))
	for _, r := range records {
		byHandle[strings.ToLower(r.Handle)] = r
	}

	members := make([]model.Member, 0, len(users))
	for _, u := range users {
		if u.CodeforcesHandle == "" {
			continue
		}
		cf, ok := byHandle[strings.ToLower(u.CodeforcesHandle)]
		if !ok {
			continue
		}
		m := model.Member{
			ID:          u.ID,
			Handle:      u.CodeforcesHandle,
			Name:        u.FullName,
			CountryCode: countryCode(u.Country),
			Rating:      cf.Rating,
			AvatarURL:   u.ProfileImageURL,
		}
		if cf.MaxRating > 0 {
			peak := cf.MaxRating
			m.MaxRating = &peak
		}
		members = append(members, m)
	}
	return members
}

func countryCode(c string) string {
	c = strings.TrimSpace(c)
	if len(c) != 2 {
		return unknownCountry
	}
	return strings.ToUpper(c)
}

// Leaderboard returns the synced rows matching query in sort order. Rows
// whose member id is currentUserID are flagged.
func (s *Service) Leaderboard(query string, sort listing.SortState, currentUserID string) Leaderboard {
	ranked, at, syncErr := s.board.Snapshot()
	ranked = listing.Leaderboard.Apply(ranked, query, sort)

	lb := Leaderboard{Rows: make([]LeaderboardRow, len(ranked))}
	for i, r := range ranked {
		lb.Rows[i] = LeaderboardRow{
			Rank:          r.Rank,
			Member:        r.Item,
			Tier:          s.tiers.Lookup(r.Item.Rating),
			IsCurrentUser: currentUserID != "" && r.Item.ID == currentUserID,
		}
	}
	if !at.IsZero() {
		lb.LastSynced = &at
	}
	if syncErr != nil {
		lb.Error = "Could not sync with Codeforces."
	}
	return lb
}
